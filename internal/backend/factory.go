package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sindhu2707/expense-tracker/internal/log"
	"github.com/sindhu2707/expense-tracker/internal/storage"
)

// Factory opens repositories. SQL repositories apply pending migrations
// while opening.
type Factory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Open creates the repository selected by cfg.
func (f *Factory) Open(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case Memory:
		return f.openMemory(), nil
	case SQLite:
		return f.openSQLite(cfg)
	case Postgres:
		return f.openPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}

func (f *Factory) openMemory() *Result {
	repo := storage.NewMemoryRepository()
	f.logger.Warn("Using in-memory backend, data is lost on restart")
	return &Result{Repository: repo, Cleanup: repo.Close}
}

func (f *Factory) openSQLite(cfg Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)

	return &Result{Repository: repo, Cleanup: repo.Close}, nil
}

func (f *Factory) openPostgres(ctx context.Context, cfg Config) (*Result, error) {
	repo, err := storage.NewPostgresRepository(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL repository: %w", err)
	}

	f.logger.Info("Initialized PostgreSQL backend")

	return &Result{Repository: repo, Cleanup: repo.Close}, nil
}

// Migrate applies the schema of a SQL backend without opening a
// repository. The memory backend has nothing to migrate.
func Migrate(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	switch cfg.Type {
	case SQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLiteDBPath), 0755); err != nil {
			return fmt.Errorf("create db directory: %w", err)
		}
		return storage.RunMigrations(storage.SQLiteDSN(cfg.SQLiteDBPath))
	case Postgres:
		return storage.RunPostgresMigrations(cfg.DatabaseURL)
	default:
		return nil
	}
}
