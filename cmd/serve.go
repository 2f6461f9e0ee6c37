package cmd

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/kilianp07/crewsched/api/runs"
	"github.com/kilianp07/crewsched/app"
	"github.com/kilianp07/crewsched/infra/logger"
	"github.com/kilianp07/crewsched/infra/metrics"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored runs on /api/runs and Prometheus metrics on /metrics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(cmd, func(ctx context.Context, svc *app.Service) error {
			addr := svc.Config().API.Addr
			if serveAddr != "" {
				addr = serveAddr
			}
			logger.New("serve").Infof("listening on %s", addr)
			return metrics.StartPromServer(ctx, addr, map[string]http.Handler{
				"/api/runs": runs.NewHandler(svc.Store(), svc.Config().API.Token),
			})
		})
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, overrides api.addr")
	rootCmd.AddCommand(serveCmd)
}
