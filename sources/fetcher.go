package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

const defaultMaxAttempts = 3

// ErrSessionClosed marks a fatal transport failure: the underlying session
// is gone and must be recreated before any further request. Session
// implementations wrap their disconnect errors with it.
var ErrSessionClosed = errors.New("browser session closed")

// Session performs an HTTP GET against the upstream API and returns the
// response status and body. The browser package provides the production
// implementation.
type Session interface {
	Get(ctx context.Context, url string) (int, []byte, error)
}

// Fetcher wraps one logical request with bounded retry and exponential
// backoff. A non-2xx status and an undecodable body are both retryable;
// after the last attempt the most recent error is propagated and the
// caller decides severity.
type Fetcher struct {
	session     Session
	logger      *slog.Logger
	recorder    *ResponseRecorder
	maxAttempts int
	sleep       func(time.Duration)
}

func NewFetcher(session Session, logger *slog.Logger, recorder *ResponseRecorder) *Fetcher {
	return &Fetcher{
		session:     session,
		logger:      logger,
		recorder:    recorder,
		maxAttempts: defaultMaxAttempts,
		sleep:       time.Sleep,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (json.RawMessage, error) {
	var lastErr error
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		payload, err := f.fetchOnce(ctx, url)
		if err == nil {
			return payload, nil
		}
		lastErr = err

		// Retrying on a dead session cannot succeed; surface it right
		// away so the job level can restart the browser.
		if errors.Is(err, ErrSessionClosed) {
			return nil, err
		}

		f.logger.Warn("fetch attempt failed",
			"attempt", attempt, "max_attempts", f.maxAttempts, "url", url, "error", truncateError(err))
		if attempt == f.maxAttempts {
			f.logger.Error("all fetch attempts failed", "url", url)
			break
		}

		wait := time.Duration(1<<attempt) * time.Second
		f.logger.Info("retrying fetch", "wait_seconds", wait.Seconds())
		f.sleep(wait)
	}
	return nil, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (json.RawMessage, error) {
	status, body, err := f.session.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, errors.Errorf("HTTP status %d", status)
	}

	var payload json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, "decode response body")
	}

	if f.recorder != nil {
		f.recorder.Record(payload)
	}
	return payload, nil
}

func truncateError(err error) error {
	msg := err.Error()
	if len(msg) > 300 {
		return fmt.Errorf("%s...", msg[:300])
	}
	return err
}
