package pipeline

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/leadharvest/leadharvest/internal/logger"
)

// Reporter receives run progress. Implementations must tolerate being
// called from the run goroutine at page-scrape frequency.
type Reporter interface {
	SetProgress(percent int)
	SetStatus(message string)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) SetProgress(int)  {}
func (NopReporter) SetStatus(string) {}

// LogReporter mirrors progress into the log.
type LogReporter struct{}

func (LogReporter) SetProgress(percent int) {
	logger.Debug("run progress", "percent", percent)
}

func (LogReporter) SetStatus(message string) {
	logger.Info("run status", "message", message)
}

// FileReporter persists the latest progress as a small JSON file, the
// contract a supervising process polls to show run state.
type FileReporter struct {
	mu    sync.Mutex
	path  string
	state fileState
}

type fileState struct {
	Progress  int       `json:"progress"`
	Status    string    `json:"status_message"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFileReporter creates a FileReporter writing to path.
func NewFileReporter(path string) *FileReporter {
	return &FileReporter{path: path}
}

func (r *FileReporter) SetProgress(percent int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Progress = percent
	r.flush()
}

func (r *FileReporter) SetStatus(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Status = message
	r.flush()
}

// flush writes best-effort; a reporting hiccup never fails the run.
func (r *FileReporter) flush() {
	r.state.UpdatedAt = time.Now()
	payload, err := json.Marshal(r.state)
	if err != nil {
		return
	}
	if err := os.WriteFile(r.path, payload, 0o644); err != nil {
		logger.Debug("status file write failed", "path", r.path, "error", err)
	}
}

// MultiReporter fans out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) SetProgress(percent int) {
	for _, r := range m {
		r.SetProgress(percent)
	}
}

func (m MultiReporter) SetStatus(message string) {
	for _, r := range m {
		r.SetStatus(message)
	}
}
