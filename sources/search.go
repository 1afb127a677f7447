package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	neturl "net/url"

	"github.com/kova98/notegrep/models"
)

// Searcher drives the cursor-paginated note search and aggregates raw
// items across pages, deduplicating by the nested comment id.
type Searcher struct {
	fetcher *Fetcher
	logger  *slog.Logger
	baseURL string
}

func NewSearcher(fetcher *Fetcher, logger *slog.Logger, baseURL string) *Searcher {
	return &Searcher{fetcher: fetcher, logger: logger, baseURL: baseURL}
}

// FetchAllPages fetches up to maxPages sequential pages for keyword. The
// first page carries no cursor; every next request passes the cursor the
// previous page returned. Pagination ends early, without error, when the
// response has no item list or no further cursor. Items without an id and
// ids already seen on an earlier page are dropped silently.
func (s *Searcher) FetchAllPages(ctx context.Context, keyword string, maxPages int) ([]models.RawItem, error) {
	var aggregated []models.RawItem
	seen := make(map[string]struct{})
	cursor := ""

	for pageNum := 1; pageNum <= maxPages; pageNum++ {
		s.logger.Info("fetching page", "page", pageNum, "keyword", keyword)
		payload, err := s.fetcher.Fetch(ctx, s.searchURL(keyword, cursor))
		if err != nil {
			return nil, err
		}

		var page models.SearchPage
		if err := json.Unmarshal(payload, &page); err != nil || page.Items == nil {
			s.logger.Warn("search response had no item list, stopping pagination", "page", pageNum)
			break
		}

		newItems := 0
		for _, item := range page.Items {
			id := commentID(item)
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			aggregated = append(aggregated, item)
			newItems++
		}
		s.logger.Debug("processed page", "page", pageNum, "items", len(page.Items), "new", newItems)

		cursor = page.NextCursor
		if cursor == "" {
			s.logger.Info("no more pages, ending search", "keyword", keyword)
			break
		}
	}

	return aggregated, nil
}

func (s *Searcher) searchURL(keyword, cursor string) string {
	params := neturl.Values{}
	params.Set("query", keyword)
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	return s.baseURL + "?" + params.Encode()
}

// commentID extracts the dedup key from a raw item. Numbers are kept in
// their literal form so the key matches the normalized note id exactly.
func commentID(item models.RawItem) string {
	var envelope struct {
		Comment struct {
			ID any `json:"id"`
		} `json:"comment"`
	}
	dec := json.NewDecoder(bytes.NewReader(item))
	dec.UseNumber()
	if err := dec.Decode(&envelope); err != nil {
		return ""
	}
	switch id := envelope.Comment.ID.(type) {
	case json.Number:
		return id.String()
	case string:
		return id
	}
	return ""
}
