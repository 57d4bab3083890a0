package config

import (
	"flag"
)

// flagToField maps flag names to config field names.
var flagToField = map[string]string{
	"backend":           "storage_backend",
	"data-dir":          "data_dir",
	"key":               "storage_key",
	"sqlite-path":       "sqlite_path",
	"redis-addr":        "redis_addr",
	"redis-password":    "redis_password",
	"redis-db":          "redis_db",
	"log-dir":           "log_dir",
	"log-level":         "log_level",
	"log-format":        "log_format",
	"log-timestamps":    "log_timestamps",
	"log-caller":        "log_caller",
	"sort":              "default_sort",
	"due-soon-days":     "due_soon_days",
	"reminder-schedule": "reminder_schedule",
	"import-strict":     "import_strict",
}

// parseFlags defines the global flags on fs, parses args and records which
// flags were set. Flag defaults are the values loaded so far, so unset flags
// leave the config unchanged.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("todos", flag.ContinueOnError)
	}

	// Storage
	fs.StringVar(&cfg.StorageBackend, "backend", cfg.StorageBackend, "Storage backend (file, sqlite, redis, memory)")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Data directory for the file backend")
	fs.StringVar(&cfg.StorageKey, "key", cfg.StorageKey, "Storage key")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database path")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address")
	fs.StringVar(&cfg.RedisPassword, "redis-password", cfg.RedisPassword, "Redis password")
	fs.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "Redis database number")

	// Logging
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Activity journal directory")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	// Behavior
	fs.StringVar(&cfg.DefaultSort, "sort", cfg.DefaultSort, "Sort order (created, deadline, priority)")
	fs.IntVar(&cfg.DueSoonDays, "due-soon-days", cfg.DueSoonDays, "Days before a deadline a todo counts as due soon")
	fs.StringVar(&cfg.ReminderSchedule, "reminder-schedule", cfg.ReminderSchedule, "Cron schedule for the watch command")
	fs.BoolVar(&cfg.ImportStrict, "import-strict", cfg.ImportStrict, "Reject imports with schema findings")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if sources != nil {
		fs.Visit(func(f *flag.Flag) {
			if field, ok := flagToField[f.Name]; ok {
				sources[field] = SourceFlag
			}
		})
	}
	return nil
}
