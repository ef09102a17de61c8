// Package metrics holds the Prometheus collectors shared by the checker and
// the OpenTelemetry meter provider used to instrument outbound requests.
package metrics

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/prometheus/client_golang/prometheus"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15} //nolint: gochecknoglobals

// Lookup kinds used as the "kind" label of Lookups.
const (
	KindRegistration = "registration"
	KindTraffic      = "traffic"
	KindBacklinks    = "backlinks"
)

//nolint: gochecknoglobals
var (
	// Lookups counts every registration, traffic and backlink lookup by the
	// source that answered and the outcome: the registration status for
	// registration lookups, "ok" or "no_data" for the estimators.
	Lookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "domaincheck",
		Name:      "lookups_total",
		Help:      "Lookups performed per source and outcome.",
	}, []string{"kind", "source", "outcome"})

	// Domains counts processed domains by resolved registration status.
	Domains = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "domaincheck",
		Name:      "domains_checked_total",
		Help:      "Domains processed by the pipeline per registration status.",
	}, []string{"registration"})

	// DomainDuration observes how long the full pipeline takes per domain.
	DomainDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "domaincheck",
		Name:      "domain_duration_seconds",
		Help:      "Wall time spent checking a single domain, delays included.",
		Buckets:   append(append([]float64{}, DefaultBuckets...), 30, 60),
	})
)

// Register adds the shared collectors to reg. Collectors that are already
// registered are ignored so Register may be called more than once.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{Lookups, Domains, DomainDuration} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}

			return fmt.Errorf("could not register collector: %w", err)
		}
	}

	return nil
}

// NewMeterProvider creates an OpenTelemetry meter provider whose instruments
// are exported through reg.
func NewMeterProvider(reg prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)), nil
}
