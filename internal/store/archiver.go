package store

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Archiver maintains the day-file directory: day files older than
// CompressAfterDays are rewritten as .log.zst archives, and files older
// than RetentionDays are deleted. Either value set to zero disables
// that behavior. The current day's file is never touched.
type Archiver struct {
	Dir               string
	Prefix            string
	CompressAfterDays int
	RetentionDays     int
}

// Run sweeps the directory on the given interval until ctx is canceled.
func (ar *Archiver) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("Archiver started. Compress after: %dd, retention: %dd, interval: %v",
		ar.CompressAfterDays, ar.RetentionDays, interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ar.Sweep(); err != nil {
				log.Printf("Archiver sweep error: %v", err)
			}
		}
	}
}

// Sweep performs one pass over the directory.
func (ar *Archiver) Sweep() error {
	entries, err := os.ReadDir(ar.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read log directory: %w", err)
	}

	today := Today()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		date, ok := DateFromFileName(ar.Prefix, name)
		if !ok || date == today {
			continue
		}

		age := ageInDays(date)
		path := filepath.Join(ar.Dir, name)

		if ar.RetentionDays > 0 && age > ar.RetentionDays {
			if err := os.Remove(path); err != nil {
				log.Printf("Archiver: failed to delete %s: %v", name, err)
			} else {
				log.Printf("Expired day file deleted: %s", name)
			}
			continue
		}

		if ar.CompressAfterDays > 0 && age > ar.CompressAfterDays && strings.HasSuffix(name, FileExt) {
			if err := compressFile(path); err != nil {
				log.Printf("Archiver: failed to compress %s: %v", name, err)
			} else {
				log.Printf("Day file archived: %s", name)
			}
		}
	}
	return nil
}

func ageInDays(date string) int {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return 0
	}
	return int(time.Now().UTC().Sub(t).Hours() / 24)
}

// compressFile rewrites path as path-with-.zst and removes the
// original. The archive is written to a temp file and renamed so a
// crash never leaves a half-written archive under the final name.
func compressFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	target := strings.TrimSuffix(path, FileExt) + CompressedExt
	tmp := target + ".tmp"

	dst, err := os.Create(tmp)
	if err != nil {
		return err
	}

	enc, err := zstd.NewWriter(dst)
	if err != nil {
		dst.Close()
		os.Remove(tmp)
		return err
	}
	if _, err := io.Copy(enc, src); err != nil {
		enc.Close()
		dst.Close()
		os.Remove(tmp)
		return err
	}
	if err := enc.Close(); err != nil {
		dst.Close()
		os.Remove(tmp)
		return err
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Remove(path)
}
