package sources

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResponse struct {
	status int
	body   string
	err    error
}

type fakeSession struct {
	responses []fakeResponse
	calls     []string
}

func (s *fakeSession) Get(ctx context.Context, url string) (int, []byte, error) {
	s.calls = append(s.calls, url)
	if len(s.responses) == 0 {
		return 0, nil, errors.New("fake session: no responses left")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp.status, []byte(resp.body), resp.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestFetcher(session Session) (*Fetcher, *[]time.Duration) {
	waits := &[]time.Duration{}
	f := NewFetcher(session, testLogger(), nil)
	f.sleep = func(d time.Duration) { *waits = append(*waits, d) }
	return f, waits
}

func TestFetch_SucceedsOnThirdAttemptWithBackoff(t *testing.T) {
	session := &fakeSession{responses: []fakeResponse{
		{status: 500, body: "boom"},
		{status: 500, body: "boom"},
		{status: 200, body: `{"items": []}`},
	}}
	fetcher, waits := newTestFetcher(session)

	payload, err := fetcher.Fetch(context.Background(), "http://upstream/search")
	require.NoError(t, err)
	assert.JSONEq(t, `{"items": []}`, string(payload))

	assert.Len(t, session.calls, 3)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *waits)
}

func TestFetch_ExhaustionPropagatesLastError(t *testing.T) {
	session := &fakeSession{responses: []fakeResponse{
		{status: 500}, {status: 502}, {status: 503},
	}}
	fetcher, waits := newTestFetcher(session)

	_, err := fetcher.Fetch(context.Background(), "http://upstream/search")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")

	// No wait after the final failed attempt.
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *waits)
	assert.Len(t, session.calls, 3)
}

func TestFetch_BadJSONIsRetryable(t *testing.T) {
	session := &fakeSession{responses: []fakeResponse{
		{status: 200, body: "<html>definitely not json</html>"},
		{status: 200, body: `{"ok": true}`},
	}}
	fetcher, _ := newTestFetcher(session)

	payload, err := fetcher.Fetch(context.Background(), "http://upstream/search")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok": true}`, string(payload))
	assert.Len(t, session.calls, 2)
}

func TestFetch_SessionClosedFailsFast(t *testing.T) {
	session := &fakeSession{responses: []fakeResponse{
		{err: errors.Wrap(ErrSessionClosed, "target gone")},
	}}
	fetcher, waits := newTestFetcher(session)

	_, err := fetcher.Fetch(context.Background(), "http://upstream/search")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Len(t, session.calls, 1)
	assert.Empty(t, *waits)
}
