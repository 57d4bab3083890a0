package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# todos configuration file
# Values can be overridden by .env, TODOS_* environment variables or CLI flags

# Storage backend: file, sqlite, redis or memory
storage_backend = "file"

# Key the collection is stored under
storage_key = "todos_app_data"

# file backend: one JSON file per key (supports ~ and $VAR expansion)
data_dir = "~/.todos/data"

# sqlite backend
sqlite_path = "~/.todos/todos.db"

# redis backend
redis_addr = "localhost:6379"
# redis_password = ""
redis_db = 0

# Activity journal directory
log_dir = "~/.todos/logs"

# Console logging: debug, info, warn, error / text, json, logfmt
log_level = "info"
log_format = "text"
log_timestamps = false
log_caller = false

# Default sort order: created, deadline or priority
default_sort = "created"

# Days before a deadline a pending todo counts as due soon
due_soon_days = 3

# Schedule for 'todos watch' (cron expression or @every <duration>)
reminder_schedule = "@every 1h"

# Reject imports that do not match the todo schema
import_strict = false
`
}
