package backend

import (
	"context"

	"ventas/internal/dataset"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the dataset source and optional cleanup function
type BackendResult struct {
	Source  dataset.Source
	Cleanup CleanupFunc
}

// Close runs the cleanup function, if any.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates dataset sources based on configuration
type Factory interface {
	// CreateBackend creates a source based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// Synthetic generator, also used to seed an empty SQLite database
	Seed  uint64
	Size  int
	Start string
	End   string

	// SQLite specific
	SQLiteDBPath string
	SQLiteSeed   bool

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	SyntheticBackend BackendType = "synthetic"
	SQLiteBackend    BackendType = "sqlite"
	SheetsBackend    BackendType = "sheets"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SyntheticBackend, SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}
