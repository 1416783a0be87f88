// Package backend selects and opens the storage backend named by the
// configuration.
package backend

import (
	"fmt"

	"github.com/sindhu2707/expense-tracker/internal/config"
	"github.com/sindhu2707/expense-tracker/internal/storage"
)

// Type names a storage backend.
type Type string

const (
	Memory   Type = "memory"
	SQLite   Type = "sqlite"
	Postgres Type = "postgres"
)

func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite, Postgres:
		return true
	default:
		return false
	}
}

// Config holds what the factory needs to open a repository.
type Config struct {
	Type Type

	SQLiteDBPath string
	DatabaseURL  string
}

// CleanupFunc releases the resources held by a backend.
type CleanupFunc func() error

// Result is an opened repository with its cleanup.
type Result struct {
	Repository storage.Repository
	Cleanup    CleanupFunc
}

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	t := Type(appConfig.DataBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:         t,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		DatabaseURL:  appConfig.DatabaseURL,
	}, nil
}

// Validate checks that the settings for the selected backend are present.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLite:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case Postgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database URL is required for postgres backend")
		}
	}
	return nil
}
