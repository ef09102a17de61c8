// Package checker composes the registration resolver, the estimators and the
// brand heuristic into the per-domain pipeline and runs it over domain lists.
package checker

import (
	"context"
	"time"

	"domaincheck/internal/brand"
	"domaincheck/pkg/domain"
	"domaincheck/pkg/logger"
	"domaincheck/pkg/metrics"

	"go.uber.org/zap"
)

// checker is the concrete implementation of the Checker interface.
type checker struct {
	registrar Registrar
	traffic   Estimator
	backlinks Estimator
}

var _ Checker = checker{}

// New constructs a Checker from its collaborators.
func New(registrar Registrar, traffic, backlinks Estimator) Checker {
	return checker{registrar: registrar, traffic: traffic, backlinks: backlinks}
}

// Check resolves the registration of name and, only when it is registered,
// estimates traffic and backlinks. Unregistered or undetermined domains get
// domain.Skipped() estimates without touching the network.
func (c checker) Check(ctx context.Context, name string) domain.Result {
	start := time.Now()
	name = domain.Normalize(name)

	res := domain.Result{
		Domain: name,
		Brand:  brand.IsBrand(name),
	}

	res.Registration = c.registrar.Resolve(ctx, name)
	if res.Registered() {
		res.Traffic = c.traffic.Estimate(ctx, name)
		res.Backlinks = c.backlinks.Estimate(ctx, name)
	} else {
		res.Traffic = domain.Skipped()
		res.Backlinks = domain.Skipped()
	}

	metrics.Domains.WithLabelValues(res.Registration.Status.String()).Inc()
	metrics.DomainDuration.Observe(time.Since(start).Seconds())

	logger.Debug(ctx, "domain checked",
		zap.String("domain", name),
		zap.Stringer("registration", res.Registration.Status),
		zap.Int64("traffic", res.Traffic.Value),
		zap.Int64("backlinks", res.Backlinks.Value),
		zap.Bool("brand", res.Brand),
	)

	return res
}
