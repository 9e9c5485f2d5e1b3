// Package ctl contains the ventasctl commands.
package ctl

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"ventas/internal/backend"
	"ventas/internal/cli"
	"ventas/internal/config"
	"ventas/internal/dataset"
	apphttp "ventas/internal/http"
	"ventas/internal/log"
)

// Version is the ventasctl release.
var Version = "0.1.0"

// app carries the state shared by every subcommand.
type app struct {
	envFile  string
	backend  string
	logLevel string

	cfg    *config.Config
	logger *log.Logger
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "ventasctl",
		Short: "Query and export the sales dataset",
		Long: `ventasctl reads the same dataset as the ventas dashboard and applies the
same filters, so a summary printed here matches the KPI cards on screen.

Configuration comes from the environment (and an optional .env file), exactly
as for the server. --backend overrides DATA_BACKEND.

Examples:
  ventasctl summary --from 2025-06-01 --to 2025-06-30 --region Norte
  ventasctl export --format xlsx -o junio.xlsx --compare none
  ventasctl seed
  ventasctl watch-exports`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Path to a .env file (ignored when missing)")
	root.PersistentFlags().StringVar(&a.backend, "backend", "", "Override DATA_BACKEND: synthetic | sqlite | sheets")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override LOG_LEVEL")

	root.AddCommand(
		newSummaryCmd(a),
		newExportCmd(a),
		newSeedCmd(a),
		newWatchCmd(a),
		newBackendsCmd(),
	)
	return root
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := cli.LoadEnvFile(a.envFile); err != nil {
		return err
	}

	cfg := config.Load()
	if a.backend != "" {
		cfg.DataBackend = a.backend
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	// Logs go to stderr so that stdout stays parseable.
	lcfg := log.DefaultConfig()
	lcfg.Level = log.ParseLevel(cfg.LogLevel)
	lcfg.Output = cmd.ErrOrStderr()
	a.logger = log.New(lcfg)
	log.SetDefault(a.logger)
	return nil
}

// dataset opens the configured backend and loads it once.
func (a *app) dataset(ctx context.Context) (*dataset.Dataset, func(), error) {
	loader, res, err := cli.OpenDataset(ctx, a.logger, a.cfg)
	if err != nil {
		return nil, nil, err
	}
	ds, err := loader.Get(ctx)
	if err != nil {
		res.Close()
		return nil, nil, err
	}
	return ds, func() { res.Close() }, nil
}

// selectionFlags mirrors the dashboard query parameters.
type selectionFlags struct {
	from, to   string
	categories []string
	regions    []string
	compare    string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "First day, YYYY-MM-DD (default: dataset start)")
	cmd.Flags().StringVar(&f.to, "to", "", "Last day, YYYY-MM-DD (default: dataset end)")
	cmd.Flags().StringSliceVar(&f.categories, "category", nil, "Categories to keep (default: all)")
	cmd.Flags().StringSliceVar(&f.regions, "region", nil, "Regions to keep (default: all)")
	cmd.Flags().StringVar(&f.compare, "compare", "", "Comparison: previous | last_year | none")
}

// query converts the flags into the same url.Values the dashboard sends, so
// both paths share ParseSelection.
func (f *selectionFlags) query(cmd *cobra.Command) url.Values {
	q := url.Values{}
	if f.from != "" {
		q.Set(apphttp.ParamFrom, f.from)
	}
	if f.to != "" {
		q.Set(apphttp.ParamTo, f.to)
	}
	if f.compare != "" {
		q.Set(apphttp.ParamCompare, f.compare)
	}
	if cmd.Flags().Changed("category") {
		q[apphttp.ParamCategory] = append([]string{""}, f.categories...)
	}
	if cmd.Flags().Changed("region") {
		q[apphttp.ParamRegion] = append([]string{""}, f.regions...)
	}
	return q
}

func (f *selectionFlags) parse(cmd *cobra.Command, ds *dataset.Dataset, logger *log.Logger) (apphttp.SelectionRequest, error) {
	req, err := apphttp.ParseSelection(f.query(cmd), ds)
	if err != nil {
		return req, err
	}
	if len(req.Ignored) > 0 {
		logger.WarnContext(cmd.Context(), "Ignoring unknown labels", "labels", req.Ignored)
	}
	return req, nil
}

func newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the available dataset backends",
		Args:  cobra.NoArgs,
		// No configuration needed.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, b := range backend.GetBackendTypeStrings() {
				fmt.Fprintln(cmd.OutOrStdout(), b)
			}
			return nil
		},
	}
}
