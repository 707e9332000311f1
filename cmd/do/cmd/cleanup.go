package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/templui/apiplate/internal/app"
	"github.com/templui/apiplate/internal/config"
	"github.com/templui/apiplate/internal/logger"
)

func CleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired and used password reset codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger.Init(cfg.IsDevelopment(), cfg.LogLevel, cfg.SentryDSN)

			a, err := app.New(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.AuthService.CleanupExpiredResetTokens(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("removed %d reset codes\n", n)
			return nil
		},
	}
}
