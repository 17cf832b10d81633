package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tarjama/internal/app"
	"tarjama/internal/config"
	"tarjama/internal/database"
)

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the database schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger := app.NewLogger(cfg.LogLevel, cfg.LogFormat)

			db, err := database.Connect(cmd.Context(), cfg.DatabaseURL, cfg.DBConnectRetries, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			direction := "up"
			if len(args) == 1 {
				direction = args[0]
			}

			switch direction {
			case "up":
				return database.MigrateUp(cmd.Context(), db, logger)
			case "down":
				return database.MigrateDown(cmd.Context(), db, logger)
			default:
				return fmt.Errorf("unknown migration direction %q", direction)
			}
		},
	}
}
