package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/crewsched/app"
	corestore "github.com/kilianp07/crewsched/core/store"
	"github.com/kilianp07/crewsched/infra/report"
)

var (
	runsLimit   int
	runsCatalog string
	runsSince   time.Duration
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(cmd, func(ctx context.Context, svc *app.Service) error {
			q := corestore.RunQuery{Catalog: runsCatalog, Limit: runsLimit}
			if runsSince > 0 {
				q.Start = time.Now().Add(-runsSince)
			}
			recs, err := svc.Runs(ctx, q)
			if err != nil {
				return err
			}
			report.New(cmd.OutOrStdout()).Runs(recs)
			return nil
		})
	},
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "show the most recent runs only")
	runsCmd.Flags().StringVar(&runsCatalog, "catalog", "", "filter by catalog name")
	runsCmd.Flags().DurationVar(&runsSince, "since", 0, "only runs newer than this duration")
	rootCmd.AddCommand(runsCmd)
}
