package notes

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/kova98/notegrep/models"
)

const noteURLPrefix = "https://substack.com/note/"

// epochMillisCutoff separates second- from millisecond-granularity epochs.
const epochMillisCutoff = 1_000_000_000_000

// Normalizer maps raw search results into canonical notes. KeepRaw copies
// the original item onto the note for debugging.
type Normalizer struct {
	KeepRaw bool
}

// Normalize returns the canonical Note for item. ok is false for items
// without a comment object or with a blank text body; the API returns
// such sparse results occasionally and they are simply dropped.
func (n Normalizer) Normalize(item models.RawItem) (models.Note, bool) {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(item))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return models.Note{}, false
	}

	comment, ok := raw["comment"].(map[string]any)
	if !ok {
		return models.Note{}, false
	}
	text, _ := comment["body"].(string)
	if strings.TrimSpace(text) == "" {
		return models.Note{}, false
	}

	note := models.Note{
		ID:   idString(comment["id"]),
		Type: "comment",
		Text: text,
	}
	note.AuthorHandle, _ = comment["handle"].(string)
	note.AuthorName = contextUserName(raw)

	if ts, ok := ParseTime(comment["date"]); ok {
		note.CreatedAt = &ts
	}

	note.Likes, note.CommentsCount, note.Restacks = counters(comment)
	note.Engagement = note.Likes + note.CommentsCount + note.Restacks

	if note.ID != "" {
		note.URL = noteURLPrefix + note.ID
	}
	if n.KeepRaw {
		note.Raw = item
	}
	return note, true
}

// ParseTime interprets v as a timestamp: numeric epochs (millisecond
// values above the cutoff are scaled down to seconds) or free-form date
// strings. The result is always UTC; anything unparseable reports ok
// false, never an error.
func ParseTime(v any) (time.Time, bool) {
	switch value := v.(type) {
	case json.Number:
		f, err := value.Float64()
		if err != nil {
			return time.Time{}, false
		}
		return epochTime(f)
	case float64:
		return epochTime(value)
	case int64:
		return epochTime(float64(value))
	case int:
		return epochTime(float64(value))
	case string:
		if strings.TrimSpace(value) == "" {
			return time.Time{}, false
		}
		t, err := dateparse.ParseAny(value)
		if err != nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	}
	return time.Time{}, false
}

func epochTime(f float64) (time.Time, bool) {
	if f == 0 {
		return time.Time{}, false
	}
	if f > epochMillisCutoff {
		f /= 1000
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
}

// counters coerces the three engagement fields. One bad value zeroes all
// three; counts are never reported partially.
func counters(comment map[string]any) (int, int, int) {
	likes, ok1 := toInt(comment["reaction_count"])
	comments, ok2 := toInt(comment["children_count"])
	restacks, ok3 := toInt(comment["restacks"])
	if !ok1 || !ok2 || !ok3 {
		return 0, 0, 0
	}
	return likes, comments, restacks
}

func toInt(v any) (int, bool) {
	switch value := v.(type) {
	case nil:
		return 0, true
	case json.Number:
		if i, err := value.Int64(); err == nil {
			return int(i), true
		}
		if f, err := value.Float64(); err == nil {
			return int(f), true
		}
		return 0, false
	case float64:
		return int(value), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

func idString(v any) string {
	switch value := v.(type) {
	case json.Number:
		return value.String()
	case string:
		return value
	}
	return ""
}

func contextUserName(raw map[string]any) string {
	context, ok := raw["context"].(map[string]any)
	if !ok {
		return ""
	}
	users, ok := context["users"].([]any)
	if !ok || len(users) == 0 {
		return ""
	}
	first, ok := users[0].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := first["name"].(string)
	return name
}
