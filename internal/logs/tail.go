package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"byebye/internal/logging"
)

const (
	pollInterval = 250 * time.Millisecond
	maxLineBytes = 1024 * 1024
)

// Latest returns the newest dated log file in dir. Dated names sort
// chronologically, so the lexically greatest match wins.
func Latest(dir string) (string, error) {
	matches, err := filepath.Glob(logging.LogFilePattern(dir))
	if err != nil {
		return "", fmt.Errorf("list log files: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no log files in %s", dir)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// Options selects which lines Tail returns.
type Options struct {
	Limit int
	// Match keeps only lines containing the text, case-insensitively.
	Match string
}

func (o Options) keep(line string) bool {
	if o.Match == "" {
		return true
	}
	return strings.Contains(strings.ToLower(line), strings.ToLower(o.Match))
}

// Tail returns up to opts.Limit matching lines from the end of path and the
// offset just past them. A limit of zero returns every matching line. A
// missing file yields no lines at offset zero.
func Tail(path string, opts Options) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if !opts.keep(line) {
			continue
		}
		lines = append(lines, line)
		if opts.Limit > 0 && len(lines) > opts.Limit {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}

	offset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, fmt.Errorf("determine log offset: %w", err)
	}
	return lines, offset, nil
}

// Follow polls path from offset and calls emit for each new matching line
// until ctx ends. A file that shrinks is read again from the start.
func Follow(ctx context.Context, path string, offset int64, opts Options, emit func(string)) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		next, err := readFrom(path, offset, opts, emit)
		if err != nil {
			return err
		}
		offset = next

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func readFrom(path string, offset int64, opts Options, emit func(string)) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	if offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}

	// Only complete lines are consumed; a partial trailing line waits for
	// its newline on the next poll.
	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return offset, nil
			}
			return offset, fmt.Errorf("read log file: %w", err)
		}
		offset += int64(len(line))
		line = strings.TrimRight(line, "\r\n")
		if opts.keep(line) {
			emit(line)
		}
	}
}
