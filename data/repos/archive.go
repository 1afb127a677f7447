package repos

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/kova98/notegrep/data"
	"github.com/kova98/notegrep/models"
)

type ArchiveRepo struct {
	db *sqlx.DB
}

func NewArchiveRepo(db *sqlx.DB) *ArchiveRepo {
	return &ArchiveRepo{db}
}

// SaveRun persists every note of a run. Re-archiving the same run is a
// no-op thanks to the conflict clause.
func (r *ArchiveRepo) SaveRun(result models.RunResult) error {
	rows := make([]data.ArchivedNote, 0, 64)
	for _, jobResult := range result.Results {
		for _, note := range jobResult.Notes {
			rows = append(rows, data.ArchivedNote{
				RunID:         result.RunID,
				Keyword:       jobResult.Job.Keyword,
				NoteID:        note.ID,
				AuthorHandle:  note.AuthorHandle,
				Text:          note.Text,
				Engagement:    note.Engagement,
				NoteCreatedAt: note.CreatedAt,
			})
		}
	}
	if len(rows) == 0 {
		return nil
	}

	query := `
		INSERT INTO archived_notes (run_id, keyword, note_id, author_handle, text, engagement, note_created_at)
		VALUES (:run_id, :keyword, :note_id, :author_handle, :text, :engagement, :note_created_at)
		ON CONFLICT (run_id, keyword, note_id) DO NOTHING`

	if _, err := r.db.NamedExec(query, rows); err != nil {
		return fmt.Errorf("archive notes: %w", err)
	}

	return nil
}

// RecentNotes returns the newest archived notes for a keyword.
func (r *ArchiveRepo) RecentNotes(keyword string, limit int) ([]data.ArchivedNote, error) {
	var rows []data.ArchivedNote
	query := `
		SELECT id, run_id, keyword, note_id, author_handle, text, engagement, note_created_at, archived_at
		FROM archived_notes
		WHERE keyword = $1
		ORDER BY archived_at DESC, engagement DESC
		LIMIT $2`

	if err := r.db.Select(&rows, query, keyword, limit); err != nil {
		return nil, fmt.Errorf("recent notes: %w", err)
	}

	return rows, nil
}
