package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSearcher(session Session) *Searcher {
	fetcher, _ := newTestFetcher(session)
	return NewSearcher(fetcher, testLogger(), "http://upstream/search")
}

func TestFetchAllPages_DedupsAcrossPages(t *testing.T) {
	session := &fakeSession{responses: []fakeResponse{
		{status: 200, body: `{
			"items": [
				{"comment": {"id": 1, "body": "first"}},
				{"comment": {"id": 2, "body": "second"}}
			],
			"nextCursor": "c1"
		}`},
		{status: 200, body: `{
			"items": [
				{"comment": {"id": 2, "body": "second again"}}
			]
		}`},
	}}
	searcher := newTestSearcher(session)

	items, err := searcher.FetchAllPages(context.Background(), "ai", 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	// Page 1 carries no cursor, page 2 passes the one page 1 returned.
	require.Len(t, session.calls, 2)
	assert.Equal(t, "http://upstream/search?query=ai", session.calls[0])
	assert.Contains(t, session.calls[1], "cursor=c1")
}

func TestFetchAllPages_StopsWhenCursorAbsent(t *testing.T) {
	session := &fakeSession{responses: []fakeResponse{
		{status: 200, body: `{"items": [{"comment": {"id": 1, "body": "only"}}]}`},
	}}
	searcher := newTestSearcher(session)

	items, err := searcher.FetchAllPages(context.Background(), "ai", 5)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Len(t, session.calls, 1)
}

func TestFetchAllPages_HonorsMaxPages(t *testing.T) {
	page := `{"items": [], "nextCursor": "more"}`
	session := &fakeSession{responses: []fakeResponse{
		{status: 200, body: page},
		{status: 200, body: page},
		{status: 200, body: page},
		{status: 200, body: page},
	}}
	searcher := newTestSearcher(session)

	_, err := searcher.FetchAllPages(context.Background(), "ai", 3)
	require.NoError(t, err)
	assert.Len(t, session.calls, 3)
}

func TestFetchAllPages_InvalidEnvelopeStopsWithoutError(t *testing.T) {
	for _, body := range []string{
		`"just a string"`,
		`[1, 2, 3]`,
		`{"noItems": true}`,
		`{"items": null, "nextCursor": "c1"}`,
	} {
		session := &fakeSession{responses: []fakeResponse{{status: 200, body: body}}}
		searcher := newTestSearcher(session)

		items, err := searcher.FetchAllPages(context.Background(), "ai", 5)
		require.NoError(t, err, "body: %s", body)
		assert.Empty(t, items, "body: %s", body)
		assert.Len(t, session.calls, 1, "body: %s", body)
	}
}

func TestFetchAllPages_PartialProgressSurvivesInvalidPage(t *testing.T) {
	session := &fakeSession{responses: []fakeResponse{
		{status: 200, body: `{"items": [{"comment": {"id": 1, "body": "kept"}}], "nextCursor": "c1"}`},
		{status: 200, body: `{"items": null}`},
	}}
	searcher := newTestSearcher(session)

	items, err := searcher.FetchAllPages(context.Background(), "ai", 5)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestFetchAllPages_DropsItemsWithoutID(t *testing.T) {
	session := &fakeSession{responses: []fakeResponse{
		{status: 200, body: `{
			"items": [
				{"comment": {"body": "no id"}},
				{"noComment": true},
				{"comment": {"id": 9, "body": "has id"}}
			]
		}`},
	}}
	searcher := newTestSearcher(session)

	items, err := searcher.FetchAllPages(context.Background(), "ai", 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "9", commentID(items[0]))
}

func TestFetchAllPages_FetchErrorPropagates(t *testing.T) {
	session := &fakeSession{responses: []fakeResponse{
		{status: 500}, {status: 500}, {status: 500},
	}}
	searcher := newTestSearcher(session)

	_, err := searcher.FetchAllPages(context.Background(), "ai", 5)
	assert.Error(t, err)
}

func TestCommentID(t *testing.T) {
	assert.Equal(t, "42", commentID([]byte(`{"comment": {"id": 42}}`)))
	assert.Equal(t, "abc", commentID([]byte(`{"comment": {"id": "abc"}}`)))
	assert.Equal(t, "9007199254740993", commentID([]byte(`{"comment": {"id": 9007199254740993}}`)))
	assert.Empty(t, commentID([]byte(`{"comment": {}}`)))
	assert.Empty(t, commentID([]byte(`{}`)))
	assert.Empty(t, commentID([]byte(`garbage`)))
}
