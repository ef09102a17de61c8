// Package estimate scrapes best-effort magnitudes (monthly visits, backlinks)
// from public statistics pages. Each metric has ranked sources; the first one
// yielding a number wins.
package estimate

import (
	"context"
	"math"
	"net/url"
	"strconv"
	"time"

	"domaincheck/pkg/domain"
	"domaincheck/pkg/fetch"
	"domaincheck/pkg/htmlmetric"
	"domaincheck/pkg/logger"
	"domaincheck/pkg/metrics"
	"domaincheck/pkg/serrors"

	"go.uber.org/zap"
)

// DaysPerMonth converts a daily visitor figure into a monthly one.
const DaysPerMonth = 30

// Source describes one statistics page and how to read a metric from it.
type Source struct {
	// Tag identifies the source in results and notes.
	Tag string
	// URL builds the page address for a domain.
	URL func(name string) string
	// Labels are tried in order to locate the metric on the page.
	Labels []htmlmetric.Label
	// Scale multiplies the extracted number; 0 means 1.
	Scale float64
}

// Options configure the standard estimators.
type Options struct {
	HypestatBaseURL string
	StatshowBaseURL string
	// Delay is slept once before Estimate returns.
	Delay time.Duration
}

// Estimator queries its sources in order.
type Estimator struct {
	client  fetch.Client
	kind    string
	sources []Source
	delay   time.Duration
}

// New constructs an Estimator for the metric kind over the ranked sources.
func New(client fetch.Client, kind string, delay time.Duration, sources ...Source) *Estimator {
	return &Estimator{client: client, kind: kind, sources: sources, delay: delay}
}

// NewTraffic estimates monthly visits: hypestat reports them directly, statshow
// reports daily visitors which are scaled to a month.
func NewTraffic(client fetch.Client, opts Options) *Estimator {
	return New(client, metrics.KindTraffic, opts.Delay,
		Source{
			Tag:    domain.SourceHypestat,
			URL:    pageURL(opts.HypestatBaseURL, "info"),
			Labels: []htmlmetric.Label{htmlmetric.Phrase("monthly visits"), htmlmetric.AllOf("monthly", "visit")},
		},
		Source{
			Tag:    domain.SourceStatshow,
			URL:    pageURL(opts.StatshowBaseURL, "www"),
			Labels: []htmlmetric.Label{htmlmetric.Phrase("daily visitors"), htmlmetric.Phrase("visitors per day")},
			Scale:  DaysPerMonth,
		},
	)
}

// NewBacklinks estimates the total backlink count, statshow first.
func NewBacklinks(client fetch.Client, opts Options) *Estimator {
	backlinks := []htmlmetric.Label{htmlmetric.Phrase("backlinks")}

	return New(client, metrics.KindBacklinks, opts.Delay,
		Source{Tag: domain.SourceStatshow, URL: pageURL(opts.StatshowBaseURL, "www"), Labels: backlinks},
		Source{Tag: domain.SourceHypestat, URL: pageURL(opts.HypestatBaseURL, "info"), Labels: backlinks},
	)
}

func pageURL(base, section string) func(string) string {
	return func(name string) string {
		return fetch.JoinURL(base, section, url.PathEscape(name))
	}
}

// Estimate returns the value of the first source that yields one. When every
// source fails the result is domain.NoData().
func (e *Estimator) Estimate(ctx context.Context, name string) domain.Estimate {
	name = domain.Normalize(name)
	ctx = logger.WithFields(ctx, zap.String("domain", name), zap.String("kind", e.kind))
	defer fetch.Pause(ctx, e.delay)

	for _, src := range e.sources {
		est, ok := e.try(ctx, src, name)
		logger.Debug(ctx, "estimate attempt",
			zap.String("source", src.Tag),
			zap.Bool("ok", ok),
			zap.Int64("value", est.Value),
			zap.String("note", est.Note),
		)
		if ok {
			metrics.Lookups.WithLabelValues(e.kind, src.Tag, "ok").Inc()

			return est
		}
	}

	metrics.Lookups.WithLabelValues(e.kind, domain.SourceNone, domain.NoteNoData).Inc()

	return domain.NoData()
}

// try queries a single source. The returned estimate carries the note of the
// attempt even when it yields no value.
func (e *Estimator) try(ctx context.Context, src Source, name string) (domain.Estimate, bool) {
	est := domain.Estimate{Source: src.Tag}

	resp, err := e.client.Get(ctx, src.URL(name))
	if err != nil {
		est.Note = serrors.Note(src.Tag, err)

		return est, false
	}

	est.Note = "http=" + strconv.Itoa(resp.StatusCode)
	if !resp.OK() {
		return est, false
	}

	doc, err := htmlmetric.Parse(resp.Body)
	if err != nil {
		est.Note = serrors.Note(src.Tag, err)

		return est, false
	}

	v, ok := htmlmetric.Extract(doc, src.Labels...)
	if ok && src.Scale != 0 {
		v *= src.Scale
	}
	// Digit concatenation can yield values past the int64 range.
	v = math.Round(v)
	if !ok || v < 0 || math.IsNaN(v) || v >= math.MaxInt64 {
		est.Note += domain.NoteSuffixNoData

		return est, false
	}

	est.Value = int64(v)
	est.Note += domain.NoteSuffixOK

	return est, true
}
