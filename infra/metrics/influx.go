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

	coremetrics "github.com/fleetlab/dispatchsim/core/metrics"
	"github.com/fleetlab/dispatchsim/infra/logger"
)

// InfluxSink writes simulation statistics to an InfluxDB instance using the
// official client. Points carry the tick as a field; the write timestamp is
// assigned by the server.
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
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
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

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

// RecordTickStats writes the per-tick roll-up as a single point.
func (s *InfluxSink) RecordTickStats(st coremetrics.TickStats) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("tick_stats").
		AddTag("run_id", st.RunID).
		AddField("tick", st.Time).
		AddField("generated", st.Generated).
		AddField("expired", st.Expired).
		AddField("offers_proposed", st.OffersProposed).
		AddField("offers_accepted", st.OffersAccepted).
		AddField("assigned", st.Assigned).
		AddField("picked_up", st.PickedUp).
		AddField("delivered", st.Delivered).
		AddField("mutations", st.Mutations).
		AddField("served_total", st.ServedTotal).
		AddField("expired_total", st.ExpiredTotal).
		AddField("pending", st.Pending).
		AddField("in_transit", st.InTransit).
		AddField("idle_drivers", st.IdleDrivers).
		AddField("avg_wait", round3(st.AvgWait))
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordDriverState writes one point per driver.
func (s *InfluxSink) RecordDriverState(states []coremetrics.DriverState) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, ds := range states {
		p := write.NewPointWithMeasurement("driver_state").
			AddTag("run_id", ds.RunID).
			AddTag("driver_id", strconv.FormatInt(ds.DriverID, 10)).
			AddTag("status", ds.Status).
			AddTag("behavior", ds.Behavior).
			AddField("tick", ds.Time).
			AddField("x", round3(ds.X)).
			AddField("y", round3(ds.Y)).
			AddField("earnings", round3(ds.Earnings)).
			AddField("trips", ds.Trips)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordRunSummary writes the closing roll-up of a run.
func (s *InfluxSink) RecordRunSummary(sum coremetrics.RunSummary) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("run_summary").
		AddTag("run_id", sum.RunID).
		AddField("ticks", sum.Ticks).
		AddField("served_total", sum.ServedTotal).
		AddField("expired_total", sum.ExpiredTotal).
		AddField("avg_wait", round3(sum.AvgWait)).
		AddField("earnings", round3(sum.Earnings))
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
