// Package oplog routes the process log to stdout and to an append-only
// daily log file, one file per calendar day.
package oplog

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DailyWriter appends to autopost_YYYYMMDD.log in dir, switching files
// when the calendar day changes between writes.
type DailyWriter struct {
	dir string

	mu      sync.Mutex
	day     string
	file    *os.File
	nowFunc func() time.Time
}

// NewDailyWriter creates the log directory if needed and returns a writer
// that appends to the current day's log file.
func NewDailyWriter(dir string) (*DailyWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	return &DailyWriter{dir: dir, nowFunc: time.Now}, nil
}

func (w *DailyWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	day := w.nowFunc().Format("20060102")
	if w.file == nil || day != w.day {
		if w.file != nil {
			w.file.Close()
		}
		path := filepath.Join(w.dir, "autopost_"+day+".log")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return 0, fmt.Errorf("opening log file: %w", err)
		}
		w.file = f
		w.day = day
	}

	return w.file.Write(p)
}

// Close releases the current log file.
func (w *DailyWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// Setup points the standard logger at stdout plus the daily file in dir.
// The returned closer must be called at process exit.
func Setup(dir string) (io.Closer, error) {
	w, err := NewDailyWriter(dir)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stdout, w))
	log.SetFlags(log.LstdFlags)
	return w, nil
}
