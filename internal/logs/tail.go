package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const pollInterval = 250 * time.Millisecond

// Entry is one log record as written to the file.
type Entry struct {
	Lines []string
}

// Text joins the record's lines.
func (e Entry) Text() string {
	return strings.Join(e.Lines, "\n")
}

func (e Entry) header() string {
	if len(e.Lines) == 0 {
		return ""
	}
	return e.Lines[0]
}

// TailOptions controls a Tail call. Offset < 0 returns the last Limit
// matching entries; otherwise reading resumes at Offset.
type TailOptions struct {
	Offset int64
	Limit  int
	Follow bool
	Wait   time.Duration
	Filter Filter
}

// TailResult carries the entries read and the offset to resume from.
type TailResult struct {
	Entries []Entry
	Offset  int64
}

// Tail reads entries from the log file at path. A missing file yields no
// entries and offset zero. With Follow set and nothing new to report, Tail
// polls for up to Wait before returning.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	result := TailResult{Offset: opts.Offset}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Offset = 0
			return result, nil
		}
		return result, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("log path %q is a directory", path)
	}
	opts.Wait = max(opts.Wait, 0)

	offset := opts.Offset
	if offset < 0 {
		entries, end, err := readEntries(path, 0, opts.Filter)
		if err != nil {
			return result, err
		}
		if opts.Limit > 0 && len(entries) > opts.Limit {
			entries = entries[len(entries)-opts.Limit:]
		}
		if len(entries) > 0 || !opts.Follow {
			return TailResult{Entries: entries, Offset: end}, nil
		}
		offset = end
	} else if offset > info.Size() {
		// The file was truncated or rotated; start again from the top.
		offset = 0
	}

	entries, end, err := readEntries(path, offset, opts.Filter)
	if err != nil {
		return result, err
	}
	if len(entries) > 0 || !opts.Follow || opts.Wait == 0 {
		return TailResult{Entries: entries, Offset: end}, nil
	}
	return waitForEntries(ctx, path, end, opts)
}

// readEntries groups the lines after offset into entries and keeps those
// matching filter. A record still being written at the end of the file is
// left for the next call.
func readEntries(path string, offset int64, filter Filter) ([]Entry, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}

	reader := bufio.NewReaderSize(file, 64*1024)
	var (
		entries []Entry
		current *Entry
		pos     = offset
		end     = offset
	)
	flush := func() {
		if current != nil && filter.Match(*current) {
			entries = append(entries, *current)
		}
		current = nil
	}
	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, 0, fmt.Errorf("read log file: %w", err)
		}
		if !strings.HasSuffix(line, "\n") {
			// Partial line: stop before it.
			break
		}
		pos += int64(len(line))
		text := strings.TrimRight(line, "\r\n")
		switch {
		case isContinuation(text) && current != nil:
			current.Lines = append(current.Lines, text)
		case strings.TrimSpace(text) == "":
			flush()
		default:
			flush()
			current = &Entry{Lines: []string{text}}
		}
		end = pos
	}
	flush()
	return entries, end, nil
}

func isContinuation(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

func waitForEntries(ctx context.Context, path string, offset int64, opts TailOptions) (TailResult, error) {
	deadline := time.Now().Add(opts.Wait)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	result := TailResult{Offset: offset}
	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-ticker.C:
		}

		entries, end, err := readEntries(path, result.Offset, opts.Filter)
		if err != nil {
			return result, err
		}
		result.Offset = end
		if len(entries) > 0 {
			result.Entries = entries
			return result, nil
		}
		if time.Now().After(deadline) {
			return result, nil
		}
	}
}
