package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tarjama/internal/api"
	"tarjama/internal/config"
)

func tokenCmd(configPath *string) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set; API auth is disabled")
			}

			token, err := api.IssueToken([]byte(cfg.JWTSecret), subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "learner", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 72*time.Hour, "token lifetime")

	return cmd
}
