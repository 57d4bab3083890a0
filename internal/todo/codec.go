package todo

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "todos.schema.json"

// ErrImportFormat is returned when imported data is not a JSON array of todos.
var ErrImportFormat = errors.New("invalid import format")

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationOptions controls validation behavior.
type ValidationOptions struct {
	// Strict turns schema findings into errors instead of warnings.
	Strict bool
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid    bool
	Errors   []error
	Warnings []string
}

// Encode serializes a collection as a compact JSON array.
func Encode(todos []Todo) ([]byte, error) {
	if todos == nil {
		todos = []Todo{}
	}
	data, err := json.Marshal(todos)
	if err != nil {
		return nil, fmt.Errorf("marshal todos: %w", err)
	}
	return data, nil
}

// Decode parses a JSON array of todos.
func Decode(data []byte) ([]Todo, error) {
	var todos []Todo
	if err := json.Unmarshal(data, &todos); err != nil {
		return nil, fmt.Errorf("parse todos: %w", err)
	}
	if todos == nil {
		todos = []Todo{}
	}
	return todos, nil
}

// Export writes the collection to w with 2-space indentation and a
// trailing newline.
func Export(w io.Writer, todos []Todo) error {
	if todos == nil {
		todos = []Todo{}
	}
	data, err := json.MarshalIndent(todos, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal todos: %w", err)
	}

	// Add trailing newline
	data = append(data, '\n')

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// BackupFileName returns the default export file name for the UTC date of now.
func BackupFileName(now time.Time) string {
	return fmt.Sprintf("todos-backup-%s.json", now.UTC().Format(DateLayout))
}

// ImportResult holds the decoded collection and any non-fatal findings.
type ImportResult struct {
	Todos    []Todo
	Warnings []string
}

// Import parses exported data. Anything other than a JSON array fails with
// ErrImportFormat. Schema findings are warnings unless opts.Strict is set.
func Import(data []byte, opts ValidationOptions) (*ImportResult, error) {
	result := Validate(data, opts)
	if !result.Valid {
		return nil, fmt.Errorf("%w: %w", ErrImportFormat, errors.Join(result.Errors...))
	}

	todos, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImportFormat, err)
	}

	return &ImportResult{Todos: todos, Warnings: result.Warnings}, nil
}

// Validate checks serialized todos: the value must be a JSON array, and
// each element is checked against the embedded schema.
func Validate(data []byte, opts ValidationOptions) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{Err: fmt.Errorf("parse JSON: %w", err)})
		return result
	}
	items, ok := value.([]interface{})
	if !ok {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{Err: errors.New("parsed value is not an array")})
		return result
	}

	var findings []error
	schema, err := compiledSchema()
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("schema unavailable: %v", err))
	} else if err := schema.Validate(value); err != nil {
		findings = append(findings, schemaFindings(err)...)
	}
	findings = append(findings, duplicateIDs(items)...)

	if opts.Strict && len(findings) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, findings...)
		return result
	}
	for _, f := range findings {
		result.Warnings = append(result.Warnings, f.Error())
	}

	return result
}

// duplicateIDs reports every element whose id was already used by an
// earlier element.
func duplicateIDs(items []interface{}) []error {
	var out []error
	seen := make(map[string]int, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		id, ok := obj["id"].(string)
		if !ok || id == "" {
			continue
		}
		if first, dup := seen[id]; dup {
			out = append(out, &ValidationError{
				Path: fmt.Sprintf("[%d].id", i),
				Err:  fmt.Errorf("duplicate id %q (first used at [%d])", id, first),
			})
			continue
		}
		seen[id] = i
	}
	return out
}

var (
	schemaOnce sync.Once
	compiled   *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiled, schemaErr = compiler.Compile(schemaURL)
	})
	return compiled, schemaErr
}

func schemaFindings(err error) []error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []error{err}
	}
	var out []error
	collectSchemaErrors(&out, ve)
	return out
}

func collectSchemaErrors(out *[]error, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		*out = append(*out, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  errors.New(err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(out, cause)
	}
}

// jsonPointerToPath turns "/0/title" into "[0].title".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
