package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"orderdesk/internal/infra/db"
	"orderdesk/internal/infra/events"
	"orderdesk/internal/server"

	"github.com/spf13/cobra"
)

var sweepEvery time.Duration

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Extend or flag overdue reservations",
	Long: `sweep runs the overdue-reservation job once. With --every it keeps
running on that interval until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		gdb, err := db.Connect(cfg)
		if err != nil {
			return err
		}
		pub, err := events.New(cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := pub.Close(); err != nil {
				log.Warn("close event publisher", slog.Any("error", err))
			}
		}()

		c := server.NewContainer(cfg, gdb, pub, log)
		runOnce := func(ctx context.Context) error {
			//システム実行なのでactorは0
			_, err := c.Reservations.Sweep(ctx, 0)
			return err
		}

		if sweepEvery <= 0 {
			return runOnce(ctx)
		}

		ticker := time.NewTicker(sweepEvery)
		defer ticker.Stop()
		for {
			if err := runOnce(ctx); err != nil {
				log.Error("sweep failed", slog.Any("error", err))
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	},
}

func init() {
	sweepCmd.Flags().DurationVar(&sweepEvery, "every", 0, "repeat the sweep on this interval (e.g. 5m)")
}
