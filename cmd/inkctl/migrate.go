package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"Inkwell/internal/config"
	"Inkwell/internal/db"
	"Inkwell/internal/db/migrations"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply, roll back or inspect Postgres migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		direction := "up"
		if len(args) == 1 {
			direction = args[0]
		}

		cfg, err := config.Load(envFiles...)
		if err != nil {
			return err
		}
		if cfg.StoreDriver != config.DriverPostgres {
			return fmt.Errorf("migrations apply to the postgres driver only (STORE_DRIVER=%s)", cfg.StoreDriver)
		}

		conn, err := db.OpenSQL(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()

		switch direction {
		case "down":
			err = migrations.Down(conn)
		case "status":
			err = migrations.Status(conn)
		default:
			err = migrations.Up(conn)
		}
		if err != nil {
			return err
		}
		if direction != "status" {
			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", direction)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
