package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kilianp07/crewsched/app"
)

var seedDSN string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print catalog statistics, driver bounds and shift warnings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(cmd, func(ctx context.Context, svc *app.Service) error {
			if _, err := svc.DescribeCatalog(ctx); err != nil {
				return err
			}
			if seedDSN != "" {
				return svc.SeedCatalog(ctx, seedDSN)
			}
			return nil
		})
	},
}

func init() {
	catalogCmd.Flags().StringVar(&seedDSN, "seed-postgres", "", "copy the catalog into the crew_shifts table at this DSN")
	rootCmd.AddCommand(catalogCmd)
}
