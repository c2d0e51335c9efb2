package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vicu/vicu-api/internal/app"
	"github.com/vicu/vicu-api/internal/config"
	"github.com/vicu/vicu-api/internal/logger"
)

func RemindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "WhatsApp reminder jobs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "dispatch",
		Short: "Send today's reminders for every active goal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)
			defer logger.Flush()

			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.ReminderService.DispatchDue(cmd.Context())
			if err != nil {
				return fmt.Errorf("dispatch failed: %w", err)
			}

			out, _ := json.MarshalIndent(report, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	})
	return cmd
}
