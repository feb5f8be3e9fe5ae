package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogSuffix ends every session log file name.
const LogSuffix = "-session.jsonl"

// Logger receives session events.
type Logger interface {
	Log(event Event) error
	Close() error
}

// FileLogger appends one JSON object per event to a file.
type FileLogger struct {
	path string

	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

// NewFileLogger opens path for appending, creating it and its directory as
// needed.
func NewFileLogger(path string) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating session log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening session log: %w", err)
	}
	return &FileLogger{path: path, f: f, enc: json.NewEncoder(f)}, nil
}

// OpenLogger starts a fresh log in dir. An empty dir disables logging.
func OpenLogger(dir string) (Logger, error) {
	if dir == "" {
		return discard{}, nil
	}
	return NewFileLogger(LogPath(dir, time.Now()))
}

func (l *FileLogger) Log(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(event)
}

func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

func (l *FileLogger) Path() string { return l.path }

type discard struct{}

func (discard) Log(Event) error { return nil }
func (discard) Close() error    { return nil }

// LogPath names the log for a session started at t, e.g.
// dir/20250806T140309.000Z-session.jsonl.
func LogPath(dir string, t time.Time) string {
	return filepath.Join(dir, t.UTC().Format("20060102T150405.000Z")+LogSuffix)
}
