// Package store reads and writes per-day NDJSON log files. Each UTC
// calendar day gets one append-only file named <prefix>-<YYYY-MM-DD>.log
// holding one JSON-encoded record per line. Aged files may exist in
// zstd-compressed form with a .log.zst suffix; readers treat both forms
// as the same day's store.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	// FileExt is the suffix of a plain day file.
	FileExt = ".log"
	// CompressedExt is the suffix of an archived day file.
	CompressedExt = ".log.zst"

	dateLayout = "2006-01-02"
)

// FileName returns the day-file name for a date, e.g. "app-2025-12-18.log".
func FileName(prefix, date string) string {
	return fmt.Sprintf("%s-%s%s", prefix, date, FileExt)
}

// DayPath returns the full path of the plain day file for a date.
func DayPath(dir, prefix, date string) string {
	return filepath.Join(dir, FileName(prefix, date))
}

// Today returns the current UTC date in day-file form.
func Today() string {
	return time.Now().UTC().Format(dateLayout)
}

// DateFromFileName extracts the date from a day-file name, compressed
// or not. ok is false when the name does not match the store's pattern.
func DateFromFileName(prefix, name string) (date string, ok bool) {
	switch {
	case strings.HasSuffix(name, CompressedExt):
		name = strings.TrimSuffix(name, CompressedExt)
	case strings.HasSuffix(name, FileExt):
		name = strings.TrimSuffix(name, FileExt)
	default:
		return "", false
	}

	if !strings.HasPrefix(name, prefix+"-") {
		return "", false
	}
	date = strings.TrimPrefix(name, prefix+"-")
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", false
	}
	return date, true
}

// ListDates returns the dates that have a day file in dir, most recent
// first. A missing directory yields an empty list, not an error.
func ListDates(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list log dates: %w", err)
	}

	seen := make(map[string]bool)
	dates := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		date, ok := DateFromFileName(prefix, entry.Name())
		if !ok || seen[date] {
			continue
		}
		seen[date] = true
		dates = append(dates, date)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}
