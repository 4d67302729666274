package cli

import (
	"fmt"
	"log/slog"
	"os"

	"orderdesk/internal/config"
	"orderdesk/internal/logger"

	"github.com/spf13/cobra"
)

const serviceName = "orderdesk"

var cfgFile string

// サブコマンドが使う設定とロガー
var (
	cfg config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   serviceName,
	Short: "Order commit and table reservation service",
	Long: `orderdesk turns carts into orders, books dine-in tables and
keeps overdue reservations in check.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = c
		log = logger.New(serviceName, cfg.LogLevel)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (env and .env are always read)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(tokenCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
