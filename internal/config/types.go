package config

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceDotEnv   ConfigSource = ".env"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource

	// Files actually read, in load order.
	UserFile    string
	ProjectFile string
	DotEnvFile  string
}

// Default values.
const (
	DefaultStorageBackend   = "file"
	DefaultDataDir          = "~/.todos/data"
	DefaultStorageKey       = "todos_app_data"
	DefaultSQLitePath       = "~/.todos/todos.db"
	DefaultRedisAddr        = "localhost:6379"
	DefaultLogDir           = "~/.todos/logs"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "text"
	DefaultSort             = "created"
	DefaultDueSoonDays      = 3
	DefaultReminderSchedule = "@every 1h"
)

// Config holds the full configuration for todos.
type Config struct {
	// Storage
	StorageBackend string `toml:"storage_backend"`
	DataDir        string `toml:"data_dir"`
	StorageKey     string `toml:"storage_key"`
	SQLitePath     string `toml:"sqlite_path"`
	RedisAddr      string `toml:"redis_addr"`
	RedisPassword  string `toml:"redis_password"`
	RedisDB        int    `toml:"redis_db"`

	// Logging configuration
	LogDir        string `toml:"log_dir"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Behavior
	DefaultSort      string `toml:"default_sort"`
	DueSoonDays      int    `toml:"due_soon_days"`
	ReminderSchedule string `toml:"reminder_schedule"`
	ImportStrict     bool   `toml:"import_strict"`

	// Working directory (computed)
	WorkDir string `toml:"-"`
}
