package ctl

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"ventas/internal/analytics"
	apphttp "ventas/internal/http"
)

func newSummaryCmd(a *app) *cobra.Command {
	var (
		sel    selectionFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the KPIs for a selection",
		Long: `Print total sales, mean order value and order count for the selection,
together with the comparison period and the deltas against it.

Output Format:
  yaml (default) | json

Examples:
  ventasctl summary
  ventasctl summary --from 2025-06-01 --to 2025-06-30 --compare last_year
  ventasctl summary --category Ropa,Hogar --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, closeFn, err := a.dataset(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			req, err := sel.parse(cmd, ds, a.logger)
			if err != nil {
				return err
			}
			resp := apphttp.BuildSnapshotResponse(analytics.Compute(ds, req.Selection), req.Ignored)
			return writeOutput(cmd.OutOrStdout(), output, resp)
		},
	}

	sel.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format: yaml | json")
	return cmd
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q: must be yaml or json", format)
	}
}
