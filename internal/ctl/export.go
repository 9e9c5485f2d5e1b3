package ctl

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ventas/internal/analytics"
	"ventas/internal/export"
	"ventas/internal/log"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		sel    selectionFlags
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered rows to a CSV or XLSX file",
		Long: `Write every row of the selection to a file in dataset order, with the same
columns as the dashboard download buttons.

Use -o - to write to stdout.

Examples:
  ventasctl export
  ventasctl export --format xlsx -o ventas.xlsx --region Norte,Sur`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			ds, closeFn, err := a.dataset(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			req, err := sel.parse(cmd, ds, a.logger)
			if err != nil {
				return err
			}
			rows := analytics.FilterSelection(ds, req.Selection)
			body, err := export.Render(f, rows)
			if err != nil {
				return err
			}

			if out == "-" {
				_, err := cmd.OutOrStdout().Write(body)
				return err
			}
			if out == "" {
				out = f.FileName()
			}
			if err := os.WriteFile(out, body, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			fields := log.NewFields().
				WithOperation(log.OpExport).
				WithSelection(req.Selection).
				WithExport(string(f), len(rows), len(body))
			a.logger.InfoContext(cmd.Context(), "Export written", append(fields.ToSlice(), "path", out)...)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d filas\n", out, len(rows))
			return nil
		},
	}

	sel.register(cmd)
	cmd.Flags().StringVar(&format, "format", "csv", "File format: csv | xlsx")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Destination file (default: ventas_filtradas.<format>)")
	return cmd
}
