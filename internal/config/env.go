package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DotEnvFile is the name of the optional env file in the working directory.
const DotEnvFile = ".env"

// envKeys maps environment variables to config fields.
var envKeys = []struct {
	env   string
	field string
}{
	{"TODOS_STORAGE_BACKEND", "storage_backend"},
	{"TODOS_DATA_DIR", "data_dir"},
	{"TODOS_STORAGE_KEY", "storage_key"},
	{"TODOS_SQLITE_PATH", "sqlite_path"},
	{"TODOS_REDIS_ADDR", "redis_addr"},
	{"TODOS_REDIS_PASSWORD", "redis_password"},
	{"TODOS_REDIS_DB", "redis_db"},
	{"TODOS_LOG_DIR", "log_dir"},
	{"TODOS_LOG_LEVEL", "log_level"},
	{"TODOS_LOG_FORMAT", "log_format"},
	{"TODOS_LOG_TIMESTAMPS", "log_timestamps"},
	{"TODOS_LOG_CALLER", "log_caller"},
	{"TODOS_DEFAULT_SORT", "default_sort"},
	{"TODOS_DUE_SOON_DAYS", "due_soon_days"},
	{"TODOS_REMINDER_SCHEDULE", "reminder_schedule"},
	{"TODOS_IMPORT_STRICT", "import_strict"},
}

// readDotEnv reads ./.env if present. The process environment is not
// modified.
func readDotEnv() (map[string]string, string, error) {
	if _, err := os.Stat(DotEnvFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", nil
		}
		return nil, "", err
	}
	values, err := godotenv.Read(DotEnvFile)
	if err != nil {
		return nil, "", err
	}
	return values, DotEnvFile, nil
}

// loadFromEnv overrides config from environment variables, falling back to
// values read from .env for variables that are not set.
func loadFromEnv(cfg *Config, dotenv map[string]string, sources map[string]ConfigSource) error {
	for _, k := range envKeys {
		value, source, ok := lookupEnv(k.env, dotenv)
		if !ok {
			continue
		}
		if err := setField(cfg, k.field, value); err != nil {
			return fmt.Errorf("%s: %w", k.env, err)
		}
		if sources != nil {
			sources[k.field] = source
		}
	}
	return nil
}

func lookupEnv(key string, dotenv map[string]string) (string, ConfigSource, bool) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v, SourceEnv, true
	}
	if v, ok := dotenv[key]; ok && v != "" {
		return v, SourceDotEnv, true
	}
	return "", "", false
}

// setField assigns a string value to the named field, parsing ints and bools.
func setField(cfg *Config, field, value string) error {
	switch field {
	case "storage_backend":
		cfg.StorageBackend = value
	case "data_dir":
		cfg.DataDir = value
	case "storage_key":
		cfg.StorageKey = value
	case "sqlite_path":
		cfg.SQLitePath = value
	case "redis_addr":
		cfg.RedisAddr = value
	case "redis_password":
		cfg.RedisPassword = value
	case "redis_db":
		i, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		cfg.RedisDB = i
	case "log_dir":
		cfg.LogDir = value
	case "log_level":
		cfg.LogLevel = value
	case "log_format":
		cfg.LogFormat = value
	case "log_timestamps":
		cfg.LogTimestamps = boolFromString(value)
	case "log_caller":
		cfg.LogCaller = boolFromString(value)
	case "default_sort":
		cfg.DefaultSort = value
	case "due_soon_days":
		i, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		cfg.DueSoonDays = i
	case "reminder_schedule":
		cfg.ReminderSchedule = value
	case "import_strict":
		cfg.ImportStrict = boolFromString(value)
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// boolFromString accepts 1/true/yes/on in any case.
func boolFromString(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
