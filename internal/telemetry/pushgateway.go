package telemetry

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

/*
 * Pushgateway worker, adapted from the source's StartPushgatewayWorker/
 * pushToGateway pair in prometheus.go: same ticker-driven push loop and
 * grouping-label convention, generalized from receiver GPS/callsign
 * labels to the station identity this module cares about.
 */

// PushgatewayConfig configures the periodic metrics push.
type PushgatewayConfig struct {
	Enabled    bool          `yaml:"enabled"`
	URL        string        `yaml:"url"`
	Instance   string        `yaml:"instance"`
	Token      string        `yaml:"token"`
	JobName    string        `yaml:"job_name"`
	Interval   time.Duration `yaml:"interval"`
	Callsign   string        `yaml:"callsign"`
	GridSquare string        `yaml:"grid_square"`
}

// Registry owns the process-wide Prometheus registerer and, when
// configured, a background Pushgateway worker.
type Registry struct {
	*prometheus.Registry
	pushCounter      prometheus.Counter
	pushFailures     prometheus.Counter
	pushLastUnixTime prometheus.Gauge
}

// NewRegistry builds a fresh registry with its own self-monitoring
// push counters registered under it.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		Registry: reg,
		pushCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldcore",
			Name:      "pushgateway_pushes_total",
			Help:      "Attempted metric pushes to the configured Pushgateway.",
		}),
		pushFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldcore",
			Name:      "pushgateway_failures_total",
			Help:      "Failed metric pushes to the configured Pushgateway.",
		}),
		pushLastUnixTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fieldcore",
			Name:      "pushgateway_last_push_unixtime",
			Help:      "Unix time of the last successful push.",
		}),
	}
	reg.MustRegister(r.pushCounter, r.pushFailures, r.pushLastUnixTime)
	return r
}

// StartPushgatewayWorker runs a ticker-driven push loop until ctx is
// canceled. A no-op if cfg is disabled or missing instance/token.
func (r *Registry) StartPushgatewayWorker(ctx context.Context, cfg PushgatewayConfig) {
	if !cfg.Enabled || cfg.Instance == "" || cfg.Token == "" {
		return
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 60 * time.Second
	}
	jobName := cfg.JobName
	if jobName == "" {
		jobName = "fieldcore"
	}

	log.Printf("starting pushgateway worker: url=%s job=%s instance=%s interval=%s", cfg.URL, jobName, cfg.Instance, interval)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		push := func() {
			r.pushCounter.Inc()
			if err := r.pushToGateway(cfg, jobName); err != nil {
				r.pushFailures.Inc()
				log.Printf("pushgateway push failed: %v", err)
				return
			}
			r.pushLastUnixTime.Set(float64(time.Now().Unix()))
		}

		push()
		for {
			select {
			case <-ctx.Done():
				log.Println("pushgateway worker stopped")
				return
			case <-ticker.C:
				push()
			}
		}
	}()
}

func (r *Registry) pushToGateway(cfg PushgatewayConfig, jobName string) error {
	pusher := push.New(cfg.URL, jobName).
		Gatherer(r.Registry).
		BasicAuth(cfg.Instance, cfg.Token).
		Grouping("instance", cfg.Instance)

	if cfg.Callsign != "" {
		pusher = pusher.Grouping("callsign", cfg.Callsign)
	}
	if cfg.GridSquare != "" {
		pusher = pusher.Grouping("grid_square", cfg.GridSquare)
	}

	if err := pusher.Push(); err != nil {
		return fmt.Errorf("push to gateway: %w", err)
	}
	return nil
}
