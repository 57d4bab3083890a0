package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nibzard/todos/internal/kv"
	"github.com/nibzard/todos/internal/logging"
	"github.com/nibzard/todos/internal/reminder"
	"github.com/nibzard/todos/internal/todo"
)

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	backend := strings.ToLower(strings.TrimSpace(c.StorageBackend))
	switch backend {
	case kv.BackendFile:
		if c.DataDir == "" {
			errs = append(errs, errors.New("data_dir is required for the file backend"))
		}
	case kv.BackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("sqlite_path is required for the sqlite backend"))
		}
	case kv.BackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("redis_addr is required for the redis backend"))
		}
		if c.RedisDB < 0 {
			errs = append(errs, fmt.Errorf("redis_db must not be negative, got %d", c.RedisDB))
		}
	case kv.BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("storage_backend %q must be one of: %s",
			c.StorageBackend, strings.Join(kv.Backends(), ", ")))
	}

	if strings.TrimSpace(c.StorageKey) == "" {
		errs = append(errs, errors.New("storage_key must not be empty"))
	}
	if _, err := todo.ParseSortKey(c.DefaultSort); err != nil {
		errs = append(errs, fmt.Errorf("default_sort: %w", err))
	}
	if c.DueSoonDays < 0 {
		errs = append(errs, fmt.Errorf("due_soon_days must not be negative, got %d", c.DueSoonDays))
	}
	if _, err := reminder.ParseSchedule(c.ReminderSchedule); err != nil {
		errs = append(errs, err)
	}
	if !logging.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level %q must be one of: debug, info, warn, error", c.LogLevel))
	}
	if !logging.ValidFormat(c.LogFormat) {
		errs = append(errs, fmt.Errorf("log_format %q must be one of: text, json, logfmt", c.LogFormat))
	}

	return errors.Join(errs...)
}

// KVOptions returns the backend options for kv.Open.
func (c *Config) KVOptions() kv.Options {
	return kv.Options{
		Backend:       c.StorageBackend,
		Dir:           c.DataDir,
		SQLitePath:    c.SQLitePath,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
	}
}

// DataLocation identifies where the collection lives. Two configs with the
// same location share a journal directory.
func (c *Config) DataLocation() string {
	switch strings.ToLower(strings.TrimSpace(c.StorageBackend)) {
	case kv.BackendSQLite:
		return c.SQLitePath + "#" + c.StorageKey
	case kv.BackendRedis:
		return fmt.Sprintf("redis://%s/%d#%s", c.RedisAddr, c.RedisDB, c.StorageKey)
	case kv.BackendMemory:
		return "memory#" + c.StorageKey
	default:
		return filepath.Join(c.DataDir, c.StorageKey)
	}
}
