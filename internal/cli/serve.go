package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"orderdesk/internal/infra/db"
	"orderdesk/internal/infra/events"
	"orderdesk/internal/server"

	"github.com/spf13/cobra"
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		gdb, err := db.Connect(cfg)
		if err != nil {
			return err
		}
		if autoMigrate {
			if err := db.Migrate(gdb); err != nil {
				return err
			}
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
		e := server.NewEcho(cfg, c, log)
		return server.Start(ctx, ":"+cfg.Port, e, log)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "run migrations before serving")
}

// cobraはnil contextを渡すことがある
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
