// Package metrics exposes allocation run statistics as Prometheus collectors.
// Batch runs have no scrape endpoint, so results are written to a
// node-exporter textfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rgehrsitz/psupdate/internal/domain"
)

// Registry holds the collectors for one run. It implements calculation.Recorder.
type Registry struct {
	registry *prometheus.Registry

	Participants     *prometheus.CounterVec
	Skipped          *prometheus.CounterVec
	Capped           *prometheus.CounterVec
	RunDuration      prometheus.Gauge
	RerunRequired    prometheus.Gauge
	InvalidRecords   prometheus.Gauge
	EndingBalance    prometheus.Gauge
	MaxOverTotal     prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
}

// NewRegistry creates a registry with all psupdate collectors registered
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		Participants: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "psupdate_participants_processed_total",
				Help: "Participants allocated, by kind",
			},
			[]string{"kind"},
		),
		Skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "psupdate_participants_skipped_total",
				Help: "Participants skipped as invalid, by kind and reason",
			},
			[]string{"kind", "reason"},
		),
		Capped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "psupdate_participants_capped_total",
				Help: "Participants over the maximum contribution",
			},
			[]string{"forfeiture_shortfall"},
		),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "psupdate_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		RerunRequired: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "psupdate_rerun_required",
			Help: "1 when the last run must be repeated with new point values",
		}),
		InvalidRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "psupdate_invalid_records",
			Help: "Invalid record count of the last run",
		}),
		EndingBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "psupdate_grand_total_ending_balance",
			Help: "Grand total ending balance of the last run",
		}),
		MaxOverTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "psupdate_grand_total_max_over",
			Help: "Sum of amounts over the maximum contribution in the last run",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "psupdate_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}

	r.registry.MustRegister(
		r.Participants,
		r.Skipped,
		r.Capped,
		r.RunDuration,
		r.RerunRequired,
		r.InvalidRecords,
		r.EndingBalance,
		r.MaxOverTotal,
		r.LastRunTimestamp,
	)
	return r
}

// Gatherer exposes the underlying registry
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

func (r *Registry) ParticipantProcessed(kind domain.ParticipantKind) {
	r.Participants.WithLabelValues(kind.String()).Inc()
}

func (r *Registry) ParticipantSkipped(kind domain.ParticipantKind, reason string) {
	r.Skipped.WithLabelValues(kind.String(), reason).Inc()
}

func (r *Registry) ParticipantCapped(shortfall bool) {
	r.Capped.WithLabelValues(fmt.Sprintf("%t", shortfall)).Inc()
}

func (r *Registry) RunFinished(outcome *domain.RunOutcome, elapsed time.Duration) {
	r.RunDuration.Set(elapsed.Seconds())
	if outcome.RerunRequired {
		r.RerunRequired.Set(1)
	} else {
		r.RerunRequired.Set(0)
	}
	r.InvalidRecords.Set(float64(outcome.InvalidRecordCount))
	r.EndingBalance.Set(outcome.GrandTotals.EndingBalance.InexactFloat64())
	r.MaxOverTotal.Set(outcome.GrandTotals.MaxOverTotal.InexactFloat64())
	r.LastRunTimestamp.SetToCurrentTime()
}

// WriteTextfile writes the current metric values in text exposition format
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
