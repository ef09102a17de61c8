package main

import (
	"context"

	"domaincheck/internal/checker"
	"domaincheck/internal/config"
	"domaincheck/internal/estimate"
	"domaincheck/internal/registration"
	"domaincheck/pkg/fetch"
	"domaincheck/pkg/logger"
	"domaincheck/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

// pipeline holds the wired lookup components.
type pipeline struct {
	resolver *registration.Resolver
	checker  checker.Checker
}

// setupPipeline builds the fetch clients, lookups and checker from cfg and
// returns a cleanup function flushing the meter provider.
func setupPipeline(ctx context.Context, cfg *config.Config) (pipeline, func()) {
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Fatal(ctx, "could not register metrics", zap.Error(err))
	}
	mp, err := metrics.NewMeterProvider(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal(ctx, "could not create meter provider", zap.Error(err))
	}

	lookupClient, err := fetch.New(fetch.Options{
		Timeout:        cfg.Sources.LookupTimeout,
		UserAgent:      cfg.Sources.UserAgent,
		MeterProvider:  mp,
		TracerProvider: otel.GetTracerProvider(),
	})
	if err != nil {
		logger.Fatal(ctx, "could not create lookup client", zap.Error(err))
	}
	statsClient, err := fetch.New(fetch.Options{
		Timeout:        cfg.Sources.StatsTimeout,
		UserAgent:      cfg.Sources.UserAgent,
		MeterProvider:  mp,
		TracerProvider: otel.GetTracerProvider(),
	})
	if err != nil {
		logger.Fatal(ctx, "could not create stats client", zap.Error(err))
	}

	resolver := registration.New(lookupClient, registration.Options{
		RDAPBaseURL:  cfg.Sources.RDAPBaseURL,
		WhoisBaseURL: cfg.Sources.WhoisBaseURL,
		Delay:        cfg.Checker.Delay,
	})
	estimateOpts := estimate.Options{
		HypestatBaseURL: cfg.Sources.HypestatBaseURL,
		StatshowBaseURL: cfg.Sources.StatshowBaseURL,
		Delay:           cfg.Checker.Delay,
	}

	p := pipeline{
		resolver: resolver,
		checker: checker.New(resolver,
			estimate.NewTraffic(statsClient, estimateOpts),
			estimate.NewBacklinks(statsClient, estimateOpts),
		),
	}

	return p, func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			logger.Warn(ctx, "could not shut down meter provider", zap.Error(err))
		}
	}
}
