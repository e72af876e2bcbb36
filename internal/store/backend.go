package store

import (
	"context"
	"fmt"
	"os"

	"github.com/debemdeboas/the-feed/internal/config"
	"github.com/debemdeboas/the-feed/internal/db"
	"github.com/debemdeboas/the-feed/internal/util/compression"
)

// NewRepository builds the backend named by cfg.Backend. The returned close function releases
// whatever the backend holds open.
func NewRepository(ctx context.Context, cfg config.StoreConfig) (Repository, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemoryRepository(), noop, nil

	case config.BackendSQLite:
		compressor, err := compression.New(cfg.Compression)
		if err != nil {
			return nil, nil, err
		}

		sqlite := db.NewSQLite(cfg.SQLitePath)
		if err := sqlite.InitDB(); err != nil {
			return nil, nil, fmt.Errorf(config.ErrInitializeDatabaseFmt, err)
		}
		return NewDBRepository(sqlite, compressor), sqlite.Close, nil

	case config.BackendS3:
		repo, err := NewS3Repository(ctx, cfg.S3,
			os.Getenv(config.EnvS3AccessKeyID),
			os.Getenv(config.EnvS3SecretAccessKey),
		)
		if err != nil {
			return nil, nil, err
		}
		return repo, noop, nil

	default:
		return nil, nil, fmt.Errorf(config.ErrUnknownBackendFmt, cfg.Backend)
	}
}
