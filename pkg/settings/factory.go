package settings

import (
	"context"
	"fmt"
)

// RepositoryConfig contains configuration for creating a settings repository
type RepositoryConfig struct {
	// DB is required for PostgreSQL repositories
	DB DBTX
	// DataDir is required for file-based repositories
	DataDir string
}

// NewRepository creates a settings repository based on the persistence type
func NewRepository(ctx context.Context, persistenceType string, config RepositoryConfig) (Repository, error) {
	switch persistenceType {
	case "postgres", "postgresql":
		if config.DB == nil {
			return nil, fmt.Errorf("db required for postgres repository")
		}
		repo := NewPostgresRepository(config.DB)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	case "file":
		if config.DataDir == "" {
			return nil, fmt.Errorf("dataDir required for file repository")
		}
		return NewFileRepository(config.DataDir)
	case "memory", "inmem":
		return NewInMemRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported persistence type: %s (supported: postgres, file, memory)", persistenceType)
	}
}
