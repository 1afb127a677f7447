package sources

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// ResponseRecorder persists raw upstream responses for offline inspection.
// It is diagnostics only: failures are logged and never reach the caller.
type ResponseRecorder struct {
	dir    string
	logger *slog.Logger
}

func NewResponseRecorder(dir string, logger *slog.Logger) *ResponseRecorder {
	return &ResponseRecorder{dir: dir, logger: logger}
}

func (r *ResponseRecorder) Record(body []byte) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		r.logger.Warn("failed to create debug directory", "dir", r.dir, "error", err)
		return
	}

	name := fmt.Sprintf("success_%d.json", time.Now().UnixNano())
	if err := os.WriteFile(filepath.Join(r.dir, name), body, 0644); err != nil {
		r.logger.Warn("failed to write debug response", "file", name, "error", err)
	}
}
