package browser

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/kova98/notegrep/sources"
)

// Manager owns the single browser session of a run: Absent -> Active ->
// Absent. Exactly one session is live at a time.
type Manager struct {
	logger *slog.Logger
	sess   *Session
}

func NewManager(logger *slog.Logger) *Manager {
	return &Manager{logger: logger}
}

func (m *Manager) Start() error {
	if m.sess != nil {
		return errors.New("session already active")
	}

	sess, err := newSession()
	if err != nil {
		return err
	}

	m.sess = sess
	m.logger.Info("browser session started")
	return nil
}

// Session returns the currently active session, or nil when absent.
func (m *Manager) Session() sources.Session {
	if m.sess == nil {
		return nil
	}
	return m.sess
}

// Restart tears the active session down completely and starts a fresh one.
// Callers use it at most once per failed job.
func (m *Manager) Restart() error {
	m.logger.Warn("restarting browser session")
	m.Close()
	return m.Start()
}

// Close releases the session if one is active. Safe to call on every exit
// path, including after Close itself.
func (m *Manager) Close() {
	if m.sess == nil {
		return
	}
	m.sess.close()
	m.sess = nil
	m.logger.Info("browser session closed")
}

// IsFatal reports whether err means the session is unusable, as opposed to
// an ordinary request failure.
func (m *Manager) IsFatal(err error) bool {
	return errors.Is(err, sources.ErrSessionClosed)
}
