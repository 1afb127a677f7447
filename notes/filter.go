package notes

import (
	"sort"
	"strings"
	"time"

	"github.com/kova98/notegrep/models"
)

// FilterAndSort applies the optional author and recency filters, then
// orders notes newest first, breaking timestamp ties by engagement.
// Undated notes sort last and are excluded entirely once a days limit is
// in effect.
func FilterAndSort(in []models.Note, authorHandle string, daysLimit int) []models.Note {
	handle := strings.ToLower(strings.TrimLeft(authorHandle, "@"))

	var threshold time.Time
	if daysLimit > 0 {
		threshold = time.Now().UTC().AddDate(0, 0, -daysLimit)
	}

	filtered := make([]models.Note, 0, len(in))
	for _, note := range in {
		if authorHandle != "" && strings.ToLower(note.AuthorHandle) != handle {
			continue
		}
		if daysLimit > 0 && (note.CreatedAt == nil || note.CreatedAt.Before(threshold)) {
			continue
		}
		filtered = append(filtered, note)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := createdOrZero(filtered[i]), createdOrZero(filtered[j])
		if !a.Equal(b) {
			return a.After(b)
		}
		return filtered[i].Engagement > filtered[j].Engagement
	})

	return filtered
}

func createdOrZero(note models.Note) time.Time {
	if note.CreatedAt == nil {
		return time.Time{}
	}
	return *note.CreatedAt
}
