package ledger

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"scribe/internal/logging"
)

// FailureLog appends human-readable failure reports to a session-scoped text
// file. Recording is side-effect only: a failure to write the failure log is
// itself logged but never escalated, so it cannot mask the original error.
type FailureLog struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewFailureLog builds a failure log for one process run. The file is named
// with the process start time and created lazily on first record.
func NewFailureLog(dir string, logger *slog.Logger) *FailureLog {
	name := fmt.Sprintf("failures_%s.txt", time.Now().Format("20060102_150405"))
	return &FailureLog{
		path:   filepath.Join(dir, name),
		logger: logging.NewComponentLogger(logger, "failure-log"),
	}
}

// Path returns the failure log file location.
func (f *FailureLog) Path() string {
	return f.path
}

// Record appends one failure block to the log file.
func (f *FailureLog) Record(kind Kind, identifier, sourceRef, errorMessage string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var b strings.Builder
	b.WriteString("=== Failure Report ===\n")
	b.WriteString("Timestamp: " + time.Now().Format("2006-01-02 15:04:05") + "\n")
	b.WriteString("Type: " + string(kind) + "\n")
	b.WriteString("Identifier: " + identifier + "\n")
	b.WriteString("URL/Path: " + sourceRef + "\n")
	b.WriteString("Error: " + errorMessage + "\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		f.logger.Error("failed to open failure log", logging.Error(err), logging.String("path", f.path))
		return
	}
	defer file.Close()

	if _, err := file.WriteString(b.String()); err != nil {
		f.logger.Error("failed to write failure log", logging.Error(err), logging.String("path", f.path))
		return
	}
	f.logger.Info("failure logged", logging.String("path", f.path), logging.String(logging.FieldIdentifier, identifier))
}
