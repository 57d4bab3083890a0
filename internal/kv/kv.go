// Package kv provides the key-value stores behind todo persistence.
//
// A Store holds opaque byte values under string keys. Every Set replaces the
// whole value; no backend offers more than single-write atomicity.
package kv

import (
	"context"
	"fmt"
	"strings"
)

// Backend names.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Backends lists the backend names accepted by Open.
func Backends() []string {
	return []string{BackendFile, BackendSQLite, BackendRedis, BackendMemory}
}

// Store is a persistent key-value store.
type Store interface {
	// Get returns the value for key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error
	// Close releases resources held by the store.
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend string

	// file
	Dir string

	// sqlite
	SQLitePath string

	// redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open creates the store named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	// A failed open must return a nil interface, not a typed nil pointer.
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		var fs *FileStore
		if fs, err = NewFileStore(opts.Dir); err == nil {
			s = fs
		}
	case BackendSQLite:
		var ss *SQLiteStore
		if ss, err = OpenSQLite(opts.SQLitePath); err == nil {
			s = ss
		}
	case BackendRedis:
		var rs *RedisStore
		if rs, err = OpenRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB); err == nil {
			s = rs
		}
	case BackendMemory:
		s = NewMemoryStore()
	default:
		err = fmt.Errorf("unknown storage backend %q, must be one of: %s",
			opts.Backend, strings.Join(Backends(), ", "))
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Describe returns a short human-readable location for the backend.
func Describe(opts Options) string {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		return fmt.Sprintf("file (%s)", opts.Dir)
	case BackendSQLite:
		return fmt.Sprintf("sqlite (%s)", opts.SQLitePath)
	case BackendRedis:
		return fmt.Sprintf("redis (%s db %d)", opts.RedisAddr, opts.RedisDB)
	default:
		return opts.Backend
	}
}
