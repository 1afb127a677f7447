package main

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/joho/godotenv/autoload"
	_ "github.com/lib/pq"
	"github.com/playwright-community/playwright-go"

	"github.com/kova98/notegrep/browser"
	"github.com/kova98/notegrep/config"
	"github.com/kova98/notegrep/data"
	"github.com/kova98/notegrep/data/repos"
	"github.com/kova98/notegrep/delivery"
	"github.com/kova98/notegrep/models"
)

//go:embed data/migrations/*.sql
var embedMigrations embed.FS

func main() {
	config.LoadConfig()

	opts := slog.HandlerOptions{Level: config.Config.LogLevel}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &opts))
	slog.SetDefault(logger)

	outcome := run(logger)

	payload, _ := json.Marshal(outcome)
	fmt.Println(string(payload))
	if !outcome.OK {
		os.Exit(1)
	}
}

func run(logger *slog.Logger) models.RunOutcome {
	// Hard precondition: never start a run that cannot be delivered.
	if config.Config.WebhookURL == "" {
		logger.Error("WEBHOOK_URL is not set, aborting")
		return models.RunOutcome{Error: "WEBHOOK_URL environment variable is not set", Counts: []int{}}
	}

	jobs, err := config.LoadJobs(config.Config.ConfigPath)
	if err != nil {
		logger.Error("failed to load jobs", "path", config.Config.ConfigPath, "error", err)
		return models.RunOutcome{Error: err.Error(), Counts: []int{}}
	}
	logger.Info("loaded jobs", "count", len(jobs), "path", config.Config.ConfigPath)

	return Handle(logger, jobs)
}

// Handle runs jobs end to end and reports the outcome. A serverless
// wrapper can call it directly with jobs from the invocation payload
// instead of the jobs file.
func Handle(logger *slog.Logger, jobs []models.Job) models.RunOutcome {
	if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
		logger.Warn("playwright install failed, assuming browsers are present", "error", err)
	}

	manager := browser.NewManager(logger)
	if err := manager.Start(); err != nil {
		logger.Error("failed to start browser session", "error", err)
		return models.RunOutcome{Error: err.Error(), Counts: []int{}}
	}
	defer manager.Close()

	runner := NewRunner(logger, manager, config.Config.SearchURL, config.Config.Debug)
	result := runner.RunJobs(context.Background(), jobs)

	archiveRun(logger, result)

	counts := make([]int, 0, len(result.Results))
	for _, jobResult := range result.Results {
		counts = append(counts, len(jobResult.Notes))
	}

	client, err := delivery.NewClient(config.Config.ProxyURL)
	if err != nil {
		logger.Error("failed to create delivery client", "error", err)
		return models.RunOutcome{Error: err.Error(), Counts: counts}
	}

	webhook := delivery.NewWebhook(config.Config.WebhookURL, client, logger)
	if err := webhook.Deliver(context.Background(), result); err != nil {
		logger.Error("delivery failed", "error", err)
		return models.RunOutcome{Error: err.Error(), Counts: counts}
	}

	return models.RunOutcome{OK: true, Counts: counts}
}

// archiveRun stores the run in Postgres when POSTGRES_URL is configured.
// The archive is a side channel: failures are logged and never change the
// run outcome.
func archiveRun(logger *slog.Logger, result models.RunResult) {
	if config.Config.PostgresURL == "" {
		return
	}

	db, err := sqlx.Connect("postgres", config.Config.PostgresURL)
	if err != nil {
		logger.Error("archive: failed to connect to db", "error", err)
		return
	}
	defer db.Close()

	if err := data.RunMigrations(db.DB, embedMigrations); err != nil {
		logger.Error("archive: failed to run migrations", "error", err)
		return
	}

	repo := repos.NewArchiveRepo(db)
	if err := repo.SaveRun(result); err != nil {
		logger.Error("archive: failed to save run", "error", err)
		return
	}

	logger.Info("run archived", "run_id", result.RunID)

	if config.Config.Debug {
		logArchiveState(logger, repo, result)
	}
}

// logArchiveState reports, per keyword, how much history the archive now
// holds. Debug mode only.
func logArchiveState(logger *slog.Logger, repo *repos.ArchiveRepo, result models.RunResult) {
	for _, jobResult := range result.Results {
		recent, err := repo.RecentNotes(jobResult.Job.Keyword, 10)
		if err != nil {
			logger.Warn("archive: failed to read recent notes", "keyword", jobResult.Job.Keyword, "error", err)
			continue
		}
		logger.Debug("archive state", "keyword", jobResult.Job.Keyword, "recent", len(recent))
	}
}
