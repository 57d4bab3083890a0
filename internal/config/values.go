package config

import "strconv"

// Value returns the display value of a config field by its TOML key. The
// redis password is masked.
func (c *Config) Value(field string) string {
	switch field {
	case "storage_backend":
		return c.StorageBackend
	case "data_dir":
		return c.DataDir
	case "storage_key":
		return c.StorageKey
	case "sqlite_path":
		return c.SQLitePath
	case "redis_addr":
		return c.RedisAddr
	case "redis_password":
		if c.RedisPassword == "" {
			return ""
		}
		return "********"
	case "redis_db":
		return strconv.Itoa(c.RedisDB)
	case "log_dir":
		return c.LogDir
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return strconv.FormatBool(c.LogTimestamps)
	case "log_caller":
		return strconv.FormatBool(c.LogCaller)
	case "default_sort":
		return c.DefaultSort
	case "due_soon_days":
		return strconv.Itoa(c.DueSoonDays)
	case "reminder_schedule":
		return c.ReminderSchedule
	case "import_strict":
		return strconv.FormatBool(c.ImportStrict)
	}
	return ""
}
