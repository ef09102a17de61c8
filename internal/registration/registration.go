// Package registration decides whether a domain is registered. It asks an
// RDAP service first and falls back to scraping a who.is page when RDAP has
// no conclusive answer.
package registration

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"domaincheck/pkg/domain"
	"domaincheck/pkg/fetch"
	"domaincheck/pkg/logger"
	"domaincheck/pkg/metrics"
	"domaincheck/pkg/serrors"

	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

var (
	// availableMarkers on a who.is page mean nobody holds the domain.
	availableMarkers = [][]byte{[]byte("no match for"), []byte("is available"), []byte("not found")}
	// registeredMarkers only appear when a registrar record is shown.
	registeredMarkers = [][]byte{
		[]byte("registrar"), []byte("creation date"), []byte("expiry date"), []byte("updated date"),
	}
)

// Options configure a Resolver.
type Options struct {
	RDAPBaseURL  string
	WhoisBaseURL string
	// Delay is slept before every Resolve call returns.
	Delay time.Duration
}

// Resolver implements the RDAP then who.is lookup chain.
type Resolver struct {
	client fetch.Client
	opts   Options
}

// New constructs a Resolver issuing its requests through client.
func New(client fetch.Client, opts Options) *Resolver {
	return &Resolver{client: client, opts: opts}
}

// Resolve returns the registration status of name. It never fails: transport
// and parse problems end up in the note of an Unknown result.
func (r *Resolver) Resolve(ctx context.Context, name string) domain.Registration {
	name = domain.Normalize(name)
	ctx = logger.WithFields(ctx, zap.String("domain", name))

	reg, conclusive := r.rdap(ctx, name)
	if !conclusive {
		fallback := r.whois(ctx, name)
		fallback.Note = reg.Note + ";" + fallback.Note
		reg = fallback
	}

	metrics.Lookups.WithLabelValues(metrics.KindRegistration, reg.Source, reg.Status.String()).Inc()
	logger.Debug(ctx, "registration resolved",
		zap.String("source", reg.Source),
		zap.Stringer("status", reg.Status),
		zap.String("note", reg.Note),
	)

	fetch.Pause(ctx, r.opts.Delay)

	return reg
}

// rdap queries the structured lookup. The bool is false when the answer is not
// conclusive and the who.is page has to be consulted.
func (r *Resolver) rdap(ctx context.Context, name string) (domain.Registration, bool) {
	resp, err := r.client.Get(ctx, fetch.JoinURL(r.opts.RDAPBaseURL, "domain", url.PathEscape(name)))
	if err != nil {
		logger.Debug(ctx, "rdap lookup failed", zap.Error(err))

		return domain.Registration{Source: domain.SourceRDAP, Note: serrors.Note(domain.SourceRDAP, err)}, false
	}

	note := "http=" + strconv.Itoa(resp.StatusCode)
	switch {
	case resp.OK():
		// Any 2xx is conclusive. The body shape is only logged.
		logger.Debug(ctx, "rdap answered", zap.Bool("rdap_object", isDomainObject(resp.Body)))

		return domain.Registration{Status: domain.StatusRegistered, Source: domain.SourceRDAP, Note: note}, true
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnprocessableEntity:
		return domain.Registration{Status: domain.StatusAvailable, Source: domain.SourceRDAP, Note: note}, true
	default:
		return domain.Registration{Source: domain.SourceRDAP, Note: domain.SourceRDAP + "_" + note}, false
	}
}

func (r *Resolver) whois(ctx context.Context, name string) domain.Registration {
	reg := domain.Registration{Source: domain.SourceWhois}

	resp, err := r.client.Get(ctx, fetch.JoinURL(r.opts.WhoisBaseURL, "whois", url.PathEscape(name)))
	if err != nil {
		logger.Debug(ctx, "who.is lookup failed", zap.Error(err))
		reg.Note = serrors.Note("whois", err)

		return reg
	}

	reg.Note = "http=" + strconv.Itoa(resp.StatusCode)
	if !resp.OK() {
		return reg
	}

	reg.Status = classifyWhoisPage(resp.Body)

	return reg
}

// classifyWhoisPage applies the substring heuristics to a who.is page body.
func classifyWhoisPage(body []byte) domain.RegistrationStatus {
	page := bytes.ToLower(body)
	for _, m := range availableMarkers {
		if bytes.Contains(page, m) {
			return domain.StatusAvailable
		}
	}
	for _, m := range registeredMarkers {
		if bytes.Contains(page, m) {
			return domain.StatusRegistered
		}
	}

	return domain.StatusUnknown
}

// isDomainObject reports whether body is a JSON object carrying one of the
// members an RDAP domain object always has.
func isDomainObject(body []byte) bool {
	d := jx.DecodeBytes(body)
	if d.Next() != jx.Object {
		return false
	}

	found := false
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "ldhName", "handle", "events", "entities":
			found = true
		}

		return d.Skip()
	})
	if err != nil {
		return false
	}

	return found
}
