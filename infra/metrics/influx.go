package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/crewsched/core/metrics"
	"github.com/kilianp07/crewsched/infra/logger"
)

// InfluxSink writes solve phases and rosters to an InfluxDB instance using
// the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordPhase writes one point per solve phase.
func (s *InfluxSink) RecordPhase(ev coremetrics.PhaseEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("solve_phase").
		AddTag("catalog", ev.Catalog).
		AddTag("phase", strconv.Itoa(ev.Phase)).
		AddTag("mode", ev.Mode).
		AddTag("status", ev.Status)
	if ev.RunID != "" {
		p = p.AddTag("run_id", ev.RunID)
	}
	p = p.AddField("drivers", ev.Drivers).
		AddField("objective", ev.Objective).
		AddField("bound", ev.Bound).
		AddField("variables", ev.Variables).
		AddField("constraints", ev.Constraints).
		AddField("branches", ev.Branches).
		AddField("conflicts", ev.Conflicts).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRoster writes the summary of one driver roster.
func (s *InfluxSink) RecordRoster(ev coremetrics.RosterEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("driver_roster").
		AddTag("catalog", ev.Catalog).
		AddTag("driver", strconv.Itoa(ev.Driver))
	if ev.RunID != "" {
		p = p.AddTag("run_id", ev.RunID)
	}
	p = p.AddField("shifts", ev.Shifts).
		AddField("driving_min", ev.DrivingTime).
		AddField("working_min", ev.WorkingTime).
		AddField("breaks", ev.Breaks).
		AddField("delay_min", ev.Delay).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
