package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Event types recorded in the activity journal.
const (
	EventAdd    = "add"
	EventUpdate = "update"
	EventDelete = "delete"
	EventToggle = "toggle"
	EventImport = "import"
	EventExport = "export"
)

// Event is one line of the activity journal.
type Event struct {
	// Type is one of add, update, delete, toggle, import, export
	Type string `json:"type"`

	// Timestamp is when the event occurred
	Timestamp time.Time `json:"timestamp"`

	// ID is the affected todo, if any
	ID string `json:"id,omitempty"`

	// Title is the affected todo's title at the time of the event
	Title string `json:"title,omitempty"`

	// Detail is free text, such as a count or a file path
	Detail string `json:"detail,omitempty"`
}

// EventWriter writes journal events.
type EventWriter interface {
	Write(event Event) error
}

// StreamWriter writes events as JSON lines to an io.Writer.
type StreamWriter struct {
	w io.Writer
}

// NewStreamWriter creates an event writer over w.
func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{w: w}
}

// Write writes one JSON line.
func (s *StreamWriter) Write(event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	data = append(data, '\n')
	_, err = s.w.Write(data)
	return err
}

// ConsoleWriter mirrors events to a console logger at debug level.
type ConsoleWriter struct {
	logger *log.Logger
}

// NewConsoleWriter creates an event writer over logger.
func NewConsoleWriter(logger *log.Logger) *ConsoleWriter {
	return &ConsoleWriter{logger: logger}
}

// Write logs the event.
func (c *ConsoleWriter) Write(event Event) error {
	var fields []any
	if event.ID != "" {
		fields = append(fields, "id", event.ID)
	}
	if event.Title != "" {
		fields = append(fields, "title", event.Title)
	}
	if event.Detail != "" {
		fields = append(fields, "detail", event.Detail)
	}
	c.logger.Debug(event.Type, fields...)
	return nil
}

// MultiWriter writes to multiple event writers.
type MultiWriter struct {
	writers []EventWriter
}

// NewMultiWriter creates a new multi-writer.
func NewMultiWriter(writers ...EventWriter) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write writes the event to all underlying writers.
func (m *MultiWriter) Write(event Event) error {
	var errs []error
	for _, w := range m.writers {
		if w == nil {
			continue
		}
		if err := w.Write(event); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multi-writer errors: %v", errs)
	}
	return nil
}

// NullWriter drops events.
type NullWriter struct{}

// Write does nothing.
func (NullWriter) Write(event Event) error {
	return nil
}

type lockedWriter struct {
	mu     sync.Mutex
	writer EventWriter
}

func (l *lockedWriter) Write(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writer.Write(event)
}

// Normalize returns a writer safe for concurrent use. A nil writer becomes
// a NullWriter.
func Normalize(writer EventWriter) EventWriter {
	if writer == nil {
		return NullWriter{}
	}
	if _, ok := writer.(*lockedWriter); ok {
		return writer
	}
	return &lockedWriter{writer: writer}
}
