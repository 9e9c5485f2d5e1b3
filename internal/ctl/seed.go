package ctl

import (
	"fmt"

	"github.com/spf13/cobra"

	"ventas/internal/backend"
	"ventas/internal/storage"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill the SQLite database with generated sales",
		Long: `Create (or migrate) the SQLite database at SQLITE_DB_PATH and fill it with
generated sales. A database that already holds rows is left untouched.

The generator honours DATASET_SEED, DATASET_SIZE, DATASET_START and
DATASET_END.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bcfg, err := backend.FromAppConfig(a.cfg)
			if err != nil {
				return err
			}

			repo, err := storage.NewSQLiteRepository(a.cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			n, err := backend.SeedSQLite(cmd.Context(), repo, bcfg)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s ya contiene datos\n", a.cfg.SQLiteDBPath)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d ventas generadas\n", a.cfg.SQLiteDBPath, n)
			return nil
		},
	}
}
