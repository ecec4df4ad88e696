package svcmgr

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// snapshotFile writes the last n lines of the file to w. A missing file
// yields no output: the service simply has not logged yet.
func snapshotFile(path string, n int, w io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading log file: %w", err)
	}

	for _, line := range lastLines(string(data), n) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// lastLines returns the trailing n complete lines of s. Only the final
// terminator is dropped: blank lines are content.
func lastLines(s string, n int) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

// tailFile emits the last n lines of the file and then streams appended
// lines until ctx is cancelled. Appends are detected through fsnotify
// write events on the containing directory, which also covers the file
// being created after the tail starts. Output is line-buffered: a
// trailing partial line is held until its newline arrives.
func tailFile(ctx context.Context, path string, n int, w io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	var offset int64
	if err := snapshotFile(path, n, w); err != nil {
		return err
	}
	if info, err := os.Stat(path); err == nil {
		offset = info.Size()
	}

	var partial strings.Builder

	drain := func() error {
		info, err := os.Stat(path)
		if err != nil {
			return nil // rotated away; wait for recreation
		}
		if info.Size() < offset {
			// truncated: restart from the top
			offset = 0
			partial.Reset()
		}
		if info.Size() == offset {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer func() { _ = f.Close() }()

		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return nil
		}
		data, err := io.ReadAll(f)
		if err != nil {
			return nil
		}
		offset += int64(len(data))

		partial.WriteString(string(data))
		chunk := partial.String()
		partial.Reset()

		idx := strings.LastIndexByte(chunk, '\n')
		if idx < 0 {
			partial.WriteString(chunk)
			return nil
		}
		complete := chunk[:idx]
		partial.WriteString(chunk[idx+1:])

		for _, line := range strings.Split(complete, "\n") {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := drain(); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				return fmt.Errorf("watch error: %w", err)
			}
		}
	}
}
