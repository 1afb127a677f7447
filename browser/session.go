package browser

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/playwright-community/playwright-go"

	"github.com/kova98/notegrep/sources"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// requestTimeoutMs is the fixed per-call timeout for upstream requests.
const requestTimeoutMs = 15000

var launchArgs = []string{
	"--no-sandbox",
	"--disable-setuid-sandbox",
	"--disable-dev-shm-usage",
	"--disable-gpu",
	"--no-first-run",
	"--no-zygote",
	"--single-process",
}

// Session is one live headless Chromium instance with a request context.
// It is owned by a Manager and never shared across concurrent operations.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
}

func newSession() (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, errors.Wrap(err, "start playwright")
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args:     launchArgs,
	})
	if err != nil {
		_ = pw.Stop()
		return nil, errors.Wrap(err, "launch chromium")
	}

	browserContext, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(defaultUserAgent),
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, errors.Wrap(err, "create browser context")
	}

	return &Session{pw: pw, browser: browser, context: browserContext}, nil
}

// Get performs an HTTP GET through the browser's request context and
// returns the response status and body. A disconnected session is reported
// as ErrSessionClosed.
func (s *Session) Get(ctx context.Context, url string) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	resp, err := s.context.Request().Get(url, playwright.APIRequestContextGetOptions{
		Headers: map[string]string{"Accept": "application/json"},
		Timeout: playwright.Float(requestTimeoutMs),
	})
	if err != nil {
		return 0, nil, classify(err)
	}

	body, err := resp.Body()
	if err != nil {
		return resp.Status(), nil, classify(err)
	}

	return resp.Status(), body, nil
}

func (s *Session) close() {
	// Best effort; close errors during teardown are not actionable.
	if s.context != nil {
		_ = s.context.Close()
	}
	if s.browser != nil {
		_ = s.browser.Close()
	}
	if s.pw != nil {
		_ = s.pw.Stop()
	}
}

// classify maps driver errors onto sources.ErrSessionClosed. Playwright
// reports session loss only through its error text, so the string
// inspection is confined to this one place.
func classify(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "has been closed") ||
		strings.Contains(msg, "Target closed") ||
		strings.Contains(msg, "browser closed") ||
		strings.Contains(msg, "connection closed") {
		return errors.Wrap(sources.ErrSessionClosed, msg)
	}
	return err
}
