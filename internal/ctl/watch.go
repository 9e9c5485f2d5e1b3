package ctl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ventas/internal/amqp"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch-exports",
		Short: "Print export notifications as they arrive",
		Long: `Consume the export notification queue and print one JSON line per event.
Requires AMQP_URL. Stops on Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.AMQPURL == "" {
				return errors.New("AMQP_URL is not set")
			}
			client, err := amqp.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue)
			if err != nil {
				return err
			}
			defer client.Close()

			a.logger.InfoContext(cmd.Context(), "Watching export notifications",
				"exchange", a.cfg.AMQPExchange,
				"queue", a.cfg.AMQPQueue)

			enc := json.NewEncoder(cmd.OutOrStdout())
			err = client.ConsumeExports(cmd.Context(), func(ev *amqp.ExportEvent) error {
				if err := enc.Encode(ev); err != nil {
					return fmt.Errorf("print event %s: %w", ev.ID, err)
				}
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
