package checker

import (
	"context"
	"sync"

	"domaincheck/internal/config"
	"domaincheck/pkg/domain"
	"domaincheck/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RunOptions configure a batch run.
type RunOptions struct {
	// Workers is the number of domains checked in parallel. Each worker is its
	// own request stream paced by the lookup delay. Values below 1 mean 1.
	Workers int
	// MaxDomains truncates the input; 0 checks every domain.
	MaxDomains int
	// CheckpointEvery calls OnCheckpoint each time the completed in-order
	// prefix grows by this many results; 0 disables checkpoints.
	CheckpointEvery int
	// OnProgress is called after every completed domain.
	OnProgress func(done, total int)
	// OnCheckpoint receives a copy of the completed in-order prefix. Errors are
	// logged and do not stop the run.
	OnCheckpoint func(ctx context.Context, results domain.ResultSet) error
}

// NewRunOptions constructs RunOptions from the application config.
func NewRunOptions(cfg *config.Config) RunOptions {
	return RunOptions{
		Workers:         cfg.Checker.Workers,
		MaxDomains:      cfg.Checker.MaxDomains,
		CheckpointEvery: cfg.Checker.CheckpointEvery,
	}
}

// Run checks domains with a bounded pool and returns one result per domain in
// input order, duplicates included. When ctx is cancelled Run stops
// dispatching and returns the completed in-order prefix together with
// ctx.Err().
func (c checker) Run(ctx context.Context, domains []string, opts RunOptions) (domain.ResultSet, error) {
	if opts.MaxDomains > 0 && len(domains) > opts.MaxDomains {
		domains = domains[:opts.MaxDomains]
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	total := len(domains)
	p := progress{
		results: make(domain.ResultSet, total),
		done:    make([]bool, total),
		opts:    opts,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i, name := range domains {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res := c.Check(gctx, name)
			// a cancelled check may carry truncated lookups
			if err := gctx.Err(); err != nil {
				return err
			}

			p.complete(gctx, i, res)

			return nil
		})
	}

	if err := g.Wait(); err != nil || ctx.Err() != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		logger.Warn(ctx, "run aborted", zap.Int("completed", p.prefix), zap.Int("total", total), zap.Error(err))

		return p.snapshot(), err
	}

	logger.Info(ctx, "run finished", zap.Int("total", total))

	return p.results, nil
}

// progress tracks completion of a run and emits progress and checkpoint callbacks.
type progress struct {
	mu sync.Mutex

	results domain.ResultSet
	done    []bool
	// completed counts finished domains, prefix the length of the finished in-order prefix.
	completed      int
	prefix         int
	lastCheckpoint int

	opts RunOptions
}

func (p *progress) complete(ctx context.Context, i int, res domain.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.results[i] = res
	p.done[i] = true
	p.completed++
	for p.prefix < len(p.done) && p.done[p.prefix] {
		p.prefix++
	}

	total := len(p.results)
	logger.Info(ctx, "domain done",
		zap.String("domain", res.Domain),
		zap.Stringer("registration", res.Registration.Status),
		zap.Int("done", p.completed),
		zap.Int("total", total),
	)

	if p.opts.OnProgress != nil {
		p.opts.OnProgress(p.completed, total)
	}

	every := p.opts.CheckpointEvery
	if every <= 0 || p.opts.OnCheckpoint == nil || p.prefix-p.lastCheckpoint < every {
		return
	}
	p.lastCheckpoint = p.prefix
	if err := p.opts.OnCheckpoint(ctx, p.snapshotLocked()); err != nil {
		logger.Warn(ctx, "checkpoint failed", zap.Int("results", p.prefix), zap.Error(err))
	}
}

func (p *progress) snapshot() domain.ResultSet {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.snapshotLocked()
}

func (p *progress) snapshotLocked() domain.ResultSet {
	out := make(domain.ResultSet, p.prefix)
	copy(out, p.results[:p.prefix])

	return out
}
