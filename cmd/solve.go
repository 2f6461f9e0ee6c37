package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kilianp07/crewsched/app"
	"github.com/kilianp07/crewsched/pkg/export"
)

var exportPath string

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Minimize the number of drivers, then their working time",
	RunE:  runSolve,
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, solveCmd} {
		c.Flags().StringVar(&exportPath, "export", "", "write the rosters to this .csv or .json file")
	}
	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, _ []string) error {
	return withService(cmd, func(ctx context.Context, svc *app.Service) error {
		res, err := svc.Solve(ctx)
		if err != nil {
			return err
		}
		if exportPath != "" {
			return export.WriteFile(exportPath, res.Schedule)
		}
		return nil
	})
}
