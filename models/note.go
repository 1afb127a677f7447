package models

import (
	"encoding/json"
	"time"
)

// RawItem is one search result exactly as the upstream API returned it.
// The shape is not under our control, so it stays opaque until
// normalization.
type RawItem = json.RawMessage

// SearchPage is the envelope of one note search response. An absent items
// field or an empty NextCursor signals the end of pagination.
type SearchPage struct {
	Items      []RawItem `json:"items"`
	NextCursor string    `json:"nextCursor"`
}

// Note is the normalized form of one search result.
type Note struct {
	ID            string     `json:"id"`
	Type          string     `json:"type"`
	Text          string     `json:"text"`
	AuthorHandle  string     `json:"author_handle,omitempty"`
	AuthorName    string     `json:"author_name,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	Likes         int        `json:"likes"`
	CommentsCount int        `json:"comments_count"`
	Restacks      int        `json:"restacks"`
	Engagement    int        `json:"engagement"`
	URL           string     `json:"url,omitempty"`
	Raw           RawItem    `json:"raw,omitempty"`
}
