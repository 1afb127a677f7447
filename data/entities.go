package data

import "time"

type ArchivedNote struct {
	ID            int64      `db:"id"`
	RunID         string     `db:"run_id"`
	Keyword       string     `db:"keyword"`
	NoteID        string     `db:"note_id"`
	AuthorHandle  string     `db:"author_handle"`
	Text          string     `db:"text"`
	Engagement    int        `db:"engagement"`
	NoteCreatedAt *time.Time `db:"note_created_at"`
	ArchivedAt    time.Time  `db:"archived_at"`
}
