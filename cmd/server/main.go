package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "server",
		Short:         "Arabic to English translation and pronunciation practice service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file; environment variables override it")

	serve := serveCmd(&configPath)
	root.AddCommand(serve, migrateCmd(&configPath), tokenCmd(&configPath))

	// Running the binary without a subcommand starts the server.
	root.RunE = serve.RunE

	return root
}
