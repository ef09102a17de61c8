package checker

import (
	"context"

	"domaincheck/pkg/domain"
)

//go:generate mockgen -package mockchecker -source=interface.go -destination=mock/mockchecker.go *

// Registrar resolves the registration status of a domain.
type Registrar interface {
	Resolve(ctx context.Context, name string) domain.Registration
}

// Estimator produces a best-effort magnitude for a domain.
type Estimator interface {
	Estimate(ctx context.Context, name string) domain.Estimate
}

// Checker runs the per-domain pipeline, alone or over a batch.
type Checker interface {
	Check(ctx context.Context, name string) domain.Result
	Run(ctx context.Context, domains []string, opts RunOptions) (domain.ResultSet, error)
}
