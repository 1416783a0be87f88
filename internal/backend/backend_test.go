package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sindhu2707/expense-tracker/internal/config"
	"github.com/sindhu2707/expense-tracker/internal/core"
)

func TestType_IsValid(t *testing.T) {
	tests := []struct {
		t    Type
		want bool
	}{
		{Memory, true},
		{SQLite, true},
		{Postgres, true},
		{"sheets", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := tt.t.IsValid(); got != tt.want {
			t.Errorf("Type(%q).IsValid() = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("FromAppConfig(nil) should fail")
	}

	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "/tmp/x.db"})
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != SQLite || cfg.SQLiteDBPath != "/tmp/x.db" {
		t.Errorf("FromAppConfig() = %+v", cfg)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "mongo"}); err == nil {
		t.Error("FromAppConfig() accepted an unknown backend")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: Memory}, false},
		{"sqlite with path", Config{Type: SQLite, SQLiteDBPath: "a.db"}, false},
		{"sqlite without path", Config{Type: SQLite}, true},
		{"postgres without url", Config{Type: Postgres}, true},
		{"unknown", Config{Type: "csv"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFactory_OpenMemory(t *testing.T) {
	res, err := NewFactory(nil).Open(context.Background(), Config{Type: Memory})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer res.Cleanup()

	u, err := res.Repository.CreateUser(context.Background(), core.User{Email: "a@b.co", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if u.ID == 0 {
		t.Error("created user has no id")
	}
}

func TestFactory_OpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "expenses.db")
	res, err := NewFactory(nil).Open(context.Background(), Config{Type: SQLite, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer res.Cleanup()

	if err := res.Repository.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestFactory_OpenRejectsInvalidConfig(t *testing.T) {
	if _, err := NewFactory(nil).Open(context.Background(), Config{Type: SQLite}); err == nil {
		t.Error("Open() accepted sqlite without a path")
	}
}

func TestMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "m.db")
	if err := Migrate(Config{Type: SQLite, SQLiteDBPath: path}); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	// A second run finds nothing to apply.
	if err := Migrate(Config{Type: SQLite, SQLiteDBPath: path}); err != nil {
		t.Fatalf("Migrate() second run error = %v", err)
	}
	if err := Migrate(Config{Type: Memory}); err != nil {
		t.Errorf("Migrate(memory) error = %v", err)
	}
}
