package monitoring

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/crewsched/config"
	coremon "github.com/kilianp07/crewsched/core/monitoring"
)

// NewSentryMonitor initializes Sentry using the provided configuration and
// returns a Monitor implementation. An empty DSN disables reporting.
func NewSentryMonitor(cfg config.SentryConfig) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	return newSentryMonitor(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate,
		Release:          cfg.Release,
	})
}

func newSentryMonitor(opts sentry.ClientOptions) (*sentryMonitor, error) {
	if err := sentry.Init(opts); err != nil {
		return nil, fmt.Errorf("sentry init: %w", err)
	}
	return &sentryMonitor{}, nil
}

type sentryMonitor struct{}

func (s *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	if len(tags) == 0 {
		sentry.CaptureException(err)
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

func (s *sentryMonitor) Recover() {
	if r := recover(); r != nil {
		s.RecoverValue(r)
		panic(r)
	}
}

// RecoverValue reports a panic value recovered by coremon.Recover.
func (s *sentryMonitor) RecoverValue(v any) {
	sentry.CurrentHub().Recover(v)
	sentry.Flush(2 * time.Second)
}

func (s *sentryMonitor) Flush(timeout time.Duration) { sentry.Flush(timeout) }
