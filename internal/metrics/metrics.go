// Package metrics defines the Prometheus collectors exposed on /metrics.
package metrics

import (
	"context"
	"time"

	"github.com/joestump/portfolio/internal/contact"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ThemeTogglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_theme_toggles_total",
		Help: "Theme toggles by resulting theme.",
	}, []string{"theme"})

	ContactSubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_contact_submissions_total",
		Help: "Contact form submissions by outcome (invalid, succeeded, failed).",
	}, []string{"result"})

	ContactSendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "portfolio_contact_send_duration_seconds",
		Help:    "Time spent delivering a validated contact message.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	PageViewsRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portfolio_page_views_recorded_total",
		Help: "Page view rows successfully written to the database.",
	})

	PageViewsRecordErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portfolio_page_views_record_errors_total",
		Help: "Page view insert failures.",
	})

	PageViewsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portfolio_page_views_dropped_total",
		Help: "Page views discarded because the writer queue was full.",
	})
)

// TrackContactForms exports the number of per-visitor contact forms held
// in memory. Call it once per process.
func TrackContactForms(count func() int) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "portfolio_contact_forms_active",
		Help: "Per-visitor contact forms currently held in memory.",
	}, func() float64 { return float64(count()) })
}

// InstrumentSender wraps s so every delivery attempt is timed and counted.
func InstrumentSender(s contact.Sender) contact.Sender {
	return contact.SenderFunc(func(ctx context.Context, m contact.Message) error {
		start := time.Now()
		err := s.Send(ctx, m)
		ContactSendDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			ContactSubmissionsTotal.WithLabelValues("failed").Inc()
		} else {
			ContactSubmissionsTotal.WithLabelValues("succeeded").Inc()
		}
		return err
	})
}
