package cmd

import (
	"context"
	"time"

	"boatbooking/internal/config"
	"boatbooking/internal/repositories"
	"boatbooking/internal/utils"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the bookings table if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := config.LoadEnv()
			if err != nil {
				return err
			}
			utils.ConfigureLogger(env.LogLevel)

			db, err := config.ConnectDB(env.DatabaseDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := (repositories.BookingRepository{DB: db}).EnsureSchema(ctx); err != nil {
				return err
			}
			utils.LogEvent("", "cli", "migrate", "bookings schema ready")
			return nil
		},
	}
}
