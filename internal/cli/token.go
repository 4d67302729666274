package cli

import (
	"fmt"
	"time"

	"orderdesk/internal/auth"
	"orderdesk/internal/infra/db"
	infraRepo "orderdesk/internal/infra/repository"

	"github.com/spf13/cobra"
)

var tokenTTL time.Duration

// 開発用のアクセストークン発行
var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Print an access token for an existing user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var userID int64
		if _, err := fmt.Sscan(args[0], &userID); err != nil || userID <= 0 {
			return fmt.Errorf("invalid user id %q", args[0])
		}

		gdb, err := db.Connect(cfg)
		if err != nil {
			return err
		}
		user, err := infraRepo.NewUserGormRepository(gdb).FindByID(commandContext(cmd), userID)
		if err != nil {
			return err
		}

		iss, err := auth.NewIssuer(cfg.JWTSecret, tokenTTL)
		if err != nil {
			return err
		}
		tok, _, err := iss.Issue(*user, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
}
