package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Appender writes records to the current UTC day's file, rolling over
// to a fresh file when the day changes. It is safe for concurrent use;
// each record is one complete line, so readers of a still-growing file
// never observe a torn record beyond the final line.
type Appender struct {
	dir    string
	prefix string

	mu   sync.Mutex
	day  string
	file *os.File
}

// NewAppender creates an Appender writing into dir. The day file itself
// is created lazily on first append.
func NewAppender(dir, prefix string) *Appender {
	return &Appender{dir: dir, prefix: prefix}
}

// Append marshals v and writes it as one line to today's file.
func (a *Appender) Append(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureFileLocked(Today()); err != nil {
		return err
	}
	if _, err := a.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

func (a *Appender) ensureFileLocked(day string) error {
	if a.file != nil && a.day == day {
		return nil
	}
	if a.file != nil {
		a.file.Close()
		a.file = nil
	}

	if err := os.MkdirAll(a.dir, 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(DayPath(a.dir, a.prefix, day), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open day file: %w", err)
	}
	a.file = f
	a.day = day
	return nil
}

// Close syncs and closes the current day file, if one is open.
func (a *Appender) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file == nil {
		return nil
	}
	if err := a.file.Sync(); err != nil {
		a.file.Close()
		a.file = nil
		return fmt.Errorf("sync day file: %w", err)
	}
	err := a.file.Close()
	a.file = nil
	if err != nil {
		return fmt.Errorf("close day file: %w", err)
	}
	return nil
}
