package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/coffersTech/daylog/internal/config"
	"github.com/coffersTech/daylog/internal/model"
	"github.com/coffersTech/daylog/internal/store"
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow the active day file and print records as they arrive",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return tailDirectory(cfg.Log.Directory, cfg.Log.Prefix)
	},
}

func init() {
	rootCmd.AddCommand(tailCmd)
}

func tailDirectory(dir, prefix string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	// Start at the end of the current file; tail shows new records only.
	day := store.Today()
	var offset int64
	if info, err := os.Stat(store.DayPath(dir, prefix, day)); err == nil {
		offset = info.Size()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if today := store.Today(); today != day {
				day = today
				offset = 0
			}
			if filepath.Base(event.Name) != store.FileName(prefix, day) {
				continue
			}
			offset = printNewLines(store.DayPath(dir, prefix, day), offset)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		case <-quit:
			return nil
		}
	}
}

// printNewLines reads the file from offset onward, printing each
// complete record, and returns the new offset.
func printNewLines(path string, offset int64) int64 {
	f, err := os.Open(path)
	if err != nil {
		return offset
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return offset
	}

	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			// Keep a partial trailing line for the next write event.
			return offset
		}
		offset += int64(len(line))
		if rec, ok := store.DecodeLine(line); ok {
			printRecord(&rec)
		}
	}
}

func printRecord(rec *model.Record) {
	indent := ""
	if rec.Depth != nil && *rec.Depth > 0 {
		indent = strings.Repeat("  ", *rec.Depth)
	}
	fmt.Printf("%s %-5s [%s] %s%s\n", rec.Timestamp, strings.ToUpper(string(rec.Level)), rec.Package, indent, rec.Message)
}
