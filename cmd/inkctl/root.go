package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"Inkwell/internal/config"
	"Inkwell/internal/core/docstore"
	"Inkwell/internal/db"
)

var (
	verbose  bool
	envFiles []string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "inkctl",
	Short: "Administer an Inkwell blog backend",
	Long: `inkctl runs schema migrations and inspects posts and pricing plans
using the same configuration as the API server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "Environment files to load before reading configuration")
}

// openStore loads configuration and connects to the configured store
func openStore(ctx context.Context) (docstore.Store, error) {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, err
	}
	return db.OpenStore(ctx, cfg, slog.Default())
}
