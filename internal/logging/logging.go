// Package logging provides console logging, the JSONL activity journal and
// tail output.
package logging

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Journal appends activity events to a per-run JSONL file under
// <baseDir>/<data-slug>/<run-id>.jsonl.
type Journal struct {
	Dir     string
	RunID   string
	LogPath string
	file    *os.File
	writer  EventWriter
	now     func() time.Time
}

// NewJournal creates the journal directory for a data location and opens a
// fresh file for this run.
func NewJournal(baseDir, location string) (*Journal, error) {
	logDir, err := FindJournalDir(baseDir, location)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	runID := runID()
	logPath := filepath.Join(logDir, fmt.Sprintf("%s.jsonl", runID))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	return &Journal{
		Dir:     logDir,
		RunID:   runID,
		LogPath: logPath,
		file:    file,
		writer:  Normalize(NewStreamWriter(file)),
		now:     time.Now,
	}, nil
}

// Write appends one event. A zero timestamp is filled in.
func (j *Journal) Write(event Event) error {
	if j == nil || j.writer == nil {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = j.now().UTC()
	}
	return j.writer.Write(event)
}

// Close closes the journal file.
func (j *Journal) Close() error {
	if j == nil || j.file == nil {
		return nil
	}
	return j.file.Close()
}

// LazyJournal opens a Journal on its first write, so runs that change
// nothing leave no file behind.
type LazyJournal struct {
	baseDir  string
	location string
	journal  *Journal
	err      error
}

// NewLazyJournal returns a journal for location that is created on demand.
func NewLazyJournal(baseDir, location string) *LazyJournal {
	return &LazyJournal{baseDir: baseDir, location: location}
}

// Write opens the journal if needed and appends event. An open failure is
// returned on every write.
func (l *LazyJournal) Write(event Event) error {
	if l.journal == nil && l.err == nil {
		l.journal, l.err = NewJournal(l.baseDir, l.location)
	}
	if l.err != nil {
		return l.err
	}
	return l.journal.Write(event)
}

// Path returns the journal file path, or "" if nothing was written.
func (l *LazyJournal) Path() string {
	if l.journal == nil {
		return ""
	}
	return l.journal.LogPath
}

// Close closes the journal if it was opened.
func (l *LazyJournal) Close() error {
	return l.journal.Close()
}

// FindJournalDir returns the journal directory for a data location without
// creating it.
func FindJournalDir(baseDir, location string) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("log base dir is empty")
	}
	if abs, err := filepath.Abs(baseDir); err == nil {
		baseDir = abs
	}
	return filepath.Join(filepath.Clean(baseDir), dataSlug(location)), nil
}

// dataSlug names a data location: a readable part plus a short hash so two
// stores with the same base name do not share a journal.
func dataSlug(location string) string {
	name := strings.TrimRight(location, "/\\")
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	return fmt.Sprintf("%s-%s", slugify(name), hashPath(location))
}

func slugify(input string) string {
	if strings.TrimSpace(input) == "" {
		return "todos"
	}

	var b strings.Builder
	lastUnderscore := false
	for i := 0; i < len(input); i++ {
		c := input[i]
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '.' || c == '_' || c == '-'
		if !valid {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteByte(c)
		lastUnderscore = false
	}

	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "todos"
	}
	return slug
}

func hashPath(input string) string {
	sum := sha1.Sum([]byte(input))
	return hex.EncodeToString(sum[:])[:8]
}

func runID() string {
	return fmt.Sprintf("%s-%d", time.Now().UTC().Format("20060102-150405"), os.Getpid())
}

// FindLatestLog finds the latest JSONL log file in a directory.
func FindLatestLog(logDir string) (string, error) {
	runs, err := FindLogRuns(logDir)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", nil
	}
	return runs[0].Path, nil
}

// LogRun is one journal file.
type LogRun struct {
	RunID   string
	Path    string
	ModTime time.Time
	Size    int64
}

// FindLogRuns lists journal files newest first. A missing directory yields
// no runs.
func FindLogRuns(logDir string) ([]LogRun, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read log dir: %w", err)
	}

	runs := make([]LogRun, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		runs = append(runs, LogRun{
			RunID:   strings.TrimSuffix(name, ".jsonl"),
			Path:    filepath.Join(logDir, name),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].ModTime.Equal(runs[j].ModTime) {
			return runs[i].RunID > runs[j].RunID
		}
		return runs[i].ModTime.After(runs[j].ModTime)
	})

	return runs, nil
}

// TailLog writes the last n lines of a log file to w. With follow it keeps
// copying new data until ctx is cancelled.
func TailLog(ctx context.Context, w io.Writer, path string, n int, follow bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	// If n > 0, seek to show only last n lines
	if n > 0 {
		if err := tailSeek(file, n); err != nil {
			return fmt.Errorf("seek to tail position: %w", err)
		}
	}

	if follow {
		return tailFollow(ctx, w, file)
	}

	_, err = io.Copy(w, file)
	return err
}

// tailSeek positions file at the start of the last n lines.
func tailSeek(file *os.File, n int) error {
	stat, err := file.Stat()
	if err != nil {
		return err
	}
	size := stat.Size()
	if size == 0 {
		return nil
	}

	const chunk = 4096
	buf := make([]byte, chunk)
	newlines := 0
	offset := size

	// A trailing newline terminates the last line rather than starting a new one.
	last := make([]byte, 1)
	if _, err := file.ReadAt(last, size-1); err != nil {
		return err
	}
	if last[0] == '\n' {
		offset--
	}

	for offset > 0 {
		readSize := int64(chunk)
		if offset < readSize {
			readSize = offset
		}
		offset -= readSize
		if _, err := file.ReadAt(buf[:readSize], offset); err != nil && err != io.EOF {
			return err
		}
		for i := readSize - 1; i >= 0; i-- {
			if buf[i] != '\n' {
				continue
			}
			newlines++
			if newlines == n {
				_, err := file.Seek(offset+i+1, io.SeekStart)
				return err
			}
		}
	}

	_, err = file.Seek(0, io.SeekStart)
	return err
}

// tailFollow follows a file like tail -f.
func tailFollow(ctx context.Context, w io.Writer, file *os.File) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if _, err := io.Copy(w, file); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
