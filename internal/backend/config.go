package backend

import (
	"fmt"

	"ventas/internal/config"
	"ventas/internal/core"
	"ventas/internal/dataset/synthetic"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		Seed:  appConfig.DatasetSeed,
		Size:  appConfig.DatasetSize,
		Start: appConfig.DatasetStart,
		End:   appConfig.DatasetEnd,

		SQLiteDBPath: appConfig.SQLiteDBPath,
		SQLiteSeed:   appConfig.SQLiteSeed,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SyntheticBackend:
		if _, err := c.Synthetic(); err != nil {
			return err
		}

	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
		if c.SQLiteSeed {
			if _, err := c.Synthetic(); err != nil {
				return err
			}
		}

	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets backend")
		}
		if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
			return fmt.Errorf("either GoogleServiceAccountFile or GoogleServiceAccountJSON must be provided for sheets backend")
		}
	}

	return nil
}

// Synthetic builds the generator settings. Empty bounds fall back to the
// generator defaults.
func (c Config) Synthetic() (synthetic.Config, error) {
	cfg := synthetic.Config{Seed: c.Seed, Size: c.Size}
	if c.Start != "" {
		d, err := core.ParseDate(c.Start)
		if err != nil {
			return cfg, fmt.Errorf("dataset start: %w", err)
		}
		cfg.Start = d
	}
	if c.End != "" {
		d, err := core.ParseDate(c.End)
		if err != nil {
			return cfg, fmt.Errorf("dataset end: %w", err)
		}
		cfg.End = d
	}
	return cfg, nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{SyntheticBackend, SQLiteBackend, SheetsBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	strings := make([]string, len(types))
	for i, t := range types {
		strings[i] = t.String()
	}
	return strings
}
