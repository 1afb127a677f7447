package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/kova98/notegrep/models"
)

// DefaultMaxPages is used when neither the job nor the environment
// sets a page limit.
const DefaultMaxPages = 5

const defaultSearchURL = "https://substack.com/api/v1/note/search"

type AppConfig struct {
	WebhookURL  string
	SearchURL   string
	ConfigPath  string
	ProxyURL    string
	PostgresURL string
	Debug       bool
	LogLevel    slog.Level

	// MaxPagesOverride is the environment-level page limit; 0 means unset.
	MaxPagesOverride int
}

var Config AppConfig

func LoadConfig() {
	cfg := AppConfig{}

	cfg.WebhookURL = loadOptional("WEBHOOK_URL", "")
	cfg.SearchURL = loadOptional("NOTE_SEARCH_URL", defaultSearchURL)
	cfg.ConfigPath = loadOptional("CONFIG_PATH", "config.json")
	cfg.ProxyURL = loadOptional("PROXY_URL", "")
	cfg.PostgresURL = loadOptional("POSTGRES_URL", "")
	cfg.Debug = parseBool(loadOptional("DEBUG", "0"))
	cfg.MaxPagesOverride = loadMaxPagesOverride()

	lvlString := loadOptional("LOG_LEVEL", "INFO")
	var err error
	cfg.LogLevel, err = parseLogLevel(lvlString)
	if err != nil {
		slog.Error("Invalid LOG_LEVEL", "error", err)
		cfg.LogLevel = slog.LevelInfo
	}
	if cfg.Debug {
		cfg.LogLevel = slog.LevelDebug
	}

	Config = cfg
}

// ResolveMaxPages picks the page limit for a job: the job's own value wins
// when positive, then the environment override, then DefaultMaxPages.
func ResolveMaxPages(job models.Job) int {
	if job.MaxPages > 0 {
		return job.MaxPages
	}
	if Config.MaxPagesOverride > 0 {
		return Config.MaxPagesOverride
	}
	return DefaultMaxPages
}

func loadMaxPagesOverride() int {
	for _, key := range []string{"NOTE_SEARCH_MAX_PAGES", "MAX_PAGES"} {
		value := os.Getenv(key)
		if value == "" {
			continue
		}
		pages, err := strconv.Atoi(value)
		if err != nil || pages <= 0 {
			slog.Warn("ignoring invalid page limit", "key", key, "value", value)
			continue
		}
		return pages
	}
	return 0
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	var err = level.UnmarshalText([]byte(s))
	return level, err
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func loadOptional(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
