package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"Inkwell/internal/core/pricing"
)

var (
	plansFile string
	plansJSON bool
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Inspect the pricing plan catalog",
}

var plansListCmd = &cobra.Command{
	Use:   "list",
	Short: "Validate and print a plan catalog (built-in plans when --file is empty)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := pricing.NewCatalog(pricing.DefaultPlans(), slog.Default())
		if plansFile != "" {
			var err error
			if catalog, err = pricing.LoadCatalog(plansFile, slog.Default()); err != nil {
				return err
			}
		}

		if plansJSON {
			return printJSON(cmd.OutOrStdout(), catalog.Plans())
		}
		for _, p := range catalog.Plans() {
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Price, strings.Join(p.Features, "; "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(plansCmd)
	plansCmd.AddCommand(plansListCmd)

	plansListCmd.Flags().StringVar(&plansFile, "file", "", "Path to a plans YAML file")
	plansListCmd.Flags().BoolVar(&plansJSON, "json", false, "Output in JSON format")
}
