package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kilianp07/crewsched/infra/logger"
)

// NewServeMux returns a mux exposing the default Prometheus registry on
// /metrics plus the extra routes.
func NewServeMux(routes map[string]http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	for pattern, h := range routes {
		mux.Handle(pattern, h)
	}
	return mux
}

// StartPromServer serves NewServeMux(routes) on addr until ctx is canceled.
func StartPromServer(ctx context.Context, addr string, routes map[string]http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: NewServeMux(routes), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.New("metrics").Errorf("prom server shutdown: %v", err)
		}
		cancel()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
