package backend

import (
	"context"
	"fmt"
	"log/slog"

	"ventas/internal/dataset"
	gsheet "ventas/internal/dataset/google"
	"ventas/internal/dataset/synthetic"
	"ventas/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SyntheticBackend:
		return f.createSyntheticBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSyntheticBackend(config Config) (*BackendResult, error) {
	cfg, err := config.Synthetic()
	if err != nil {
		return nil, err
	}
	gen := synthetic.New(cfg)

	f.logger.Info("Initialized synthetic backend",
		"seed", cfg.Seed,
		"size", cfg.Size)

	return &BackendResult{Source: gen}, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	if config.SQLiteSeed {
		if _, err := SeedSQLite(ctx, repo, config); err != nil {
			_ = repo.Close()
			return nil, err
		}
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"seeded", config.SQLiteSeed)

	return &BackendResult{
		Source:  repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend",
		"spreadsheet_id", config.GoogleSpreadsheetID,
		"sheet", config.GoogleSheetName)

	return &BackendResult{Source: cli}, nil
}

// SeedSQLite fills an empty database with generated records. A database
// that already holds rows is left alone and 0 is returned.
func SeedSQLite(ctx context.Context, repo *storage.SQLiteRepository, config Config) (int, error) {
	cfg, err := config.Synthetic()
	if err != nil {
		return 0, err
	}
	records, err := synthetic.New(cfg).Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("generate seed records: %w", err)
	}
	n, err := repo.SeedIfEmpty(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("seed SQLite database: %w", err)
	}
	return n, nil
}

// NewLoader creates the backend and wraps its source in a dataset.Loader.
func NewLoader(ctx context.Context, f Factory, config Config) (*dataset.Loader, *BackendResult, error) {
	res, err := f.CreateBackend(ctx, config)
	if err != nil {
		return nil, nil, err
	}
	return dataset.NewLoader(res.Source), res, nil
}
