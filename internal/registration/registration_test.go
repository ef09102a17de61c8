package registration_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"domaincheck/internal/registration"
	"domaincheck/pkg/domain"
	"domaincheck/pkg/fetch"

	"github.com/stretchr/testify/require"
)

const (
	rdapBase  = "https://rdap.test"
	whoisBase = "https://whois.test"
)

type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

type reply struct {
	status int
	body   string
	err    error
}

func respond(r *http.Request, rep reply) (*http.Response, error) {
	if rep.err != nil {
		return nil, rep.err
	}

	return &http.Response{
		StatusCode: rep.status,
		Header:     http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
		Body:       io.NopCloser(strings.NewReader(rep.body)),
		Request:    r,
	}, nil
}

// newResolver routes requests by host and counts calls per host.
func newResolver(t *testing.T, rdap, whois *reply) (*registration.Resolver, *int32, *int32) {
	t.Helper()

	var rdapCalls, whoisCalls int32
	client, err := fetch.New(fetch.Options{Transport: rtFunc(func(r *http.Request) (*http.Response, error) {
		switch r.URL.Host {
		case "rdap.test":
			atomic.AddInt32(&rdapCalls, 1)
			require.Equal(t, "/domain/example.com", r.URL.Path)

			return respond(r, *rdap)
		case "whois.test":
			atomic.AddInt32(&whoisCalls, 1)
			require.Equal(t, "/whois/example.com", r.URL.Path)
			require.NotNil(t, whois, "who.is must not be queried")

			return respond(r, *whois)
		}
		t.Fatalf("unexpected host %s", r.URL.Host)

		return nil, nil
	})})
	require.NoError(t, err)

	return registration.New(client, registration.Options{RDAPBaseURL: rdapBase, WhoisBaseURL: whoisBase}),
		&rdapCalls, &whoisCalls
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		rdap       reply
		whois      *reply
		wantStatus domain.RegistrationStatus
		wantSource string
		wantNote   string
	}{
		{
			name:       "rdap domain object",
			rdap:       reply{status: http.StatusOK, body: `{"ldhName":"example.com"}`},
			wantStatus: domain.StatusRegistered,
			wantSource: domain.SourceRDAP,
			wantNote:   "http=200",
		},
		{
			name:       "rdap 2xx with unparsable body",
			rdap:       reply{status: http.StatusOK, body: `<html>ok</html>`},
			wantStatus: domain.StatusRegistered,
			wantSource: domain.SourceRDAP,
			wantNote:   "http=200",
		},
		{
			name:       "rdap not found",
			rdap:       reply{status: http.StatusNotFound},
			wantStatus: domain.StatusAvailable,
			wantSource: domain.SourceRDAP,
			wantNote:   "http=404",
		},
		{
			name:       "rdap unprocessable",
			rdap:       reply{status: http.StatusUnprocessableEntity},
			wantStatus: domain.StatusAvailable,
			wantSource: domain.SourceRDAP,
			wantNote:   "http=422",
		},
		{
			name:       "who.is reports no match",
			rdap:       reply{status: http.StatusInternalServerError},
			whois:      &reply{status: http.StatusOK, body: "<p>No match for EXAMPLE.COM</p>"},
			wantStatus: domain.StatusAvailable,
			wantSource: domain.SourceWhois,
			wantNote:   "rdap_http=500;http=200",
		},
		{
			name:       "who.is shows registrar",
			rdap:       reply{status: http.StatusInternalServerError},
			whois:      &reply{status: http.StatusOK, body: "<dt>Registrar</dt><dd>Example Inc.</dd>"},
			wantStatus: domain.StatusRegistered,
			wantSource: domain.SourceWhois,
			wantNote:   "rdap_http=500;http=200",
		},
		{
			name:       "who.is inconclusive page",
			rdap:       reply{err: timeoutErr{}},
			whois:      &reply{status: http.StatusOK, body: "<p>please try again later</p>"},
			wantStatus: domain.StatusUnknown,
			wantSource: domain.SourceWhois,
			wantNote:   "rdap_error=TIMEOUT;http=200",
		},
		{
			name:       "both failing",
			rdap:       reply{err: io.ErrUnexpectedEOF},
			whois:      &reply{status: http.StatusServiceUnavailable},
			wantStatus: domain.StatusUnknown,
			wantSource: domain.SourceWhois,
			wantNote:   "rdap_error=TRANSPORT;http=503",
		},
		{
			name:       "both unreachable",
			rdap:       reply{status: http.StatusTooManyRequests},
			whois:      &reply{err: io.ErrUnexpectedEOF},
			wantStatus: domain.StatusUnknown,
			wantSource: domain.SourceWhois,
			wantNote:   "rdap_http=429;whois_error=TRANSPORT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, rdapCalls, whoisCalls := newResolver(t, &tt.rdap, tt.whois)

			got := r.Resolve(context.Background(), " Example.COM ")
			require.Equal(t, tt.wantStatus, got.Status)
			require.Equal(t, tt.wantSource, got.Source)
			require.Equal(t, tt.wantNote, got.Note)

			require.EqualValues(t, 1, atomic.LoadInt32(rdapCalls))
			if tt.whois == nil {
				require.Zero(t, atomic.LoadInt32(whoisCalls))
			} else {
				require.EqualValues(t, 1, atomic.LoadInt32(whoisCalls))
			}
		})
	}
}

func TestResolveSleepsOnEveryOutcome(t *testing.T) {
	for _, rdap := range []reply{
		{status: http.StatusOK},
		{status: http.StatusNotFound},
		{status: http.StatusBadGateway},
	} {
		client, err := fetch.New(fetch.Options{Transport: rtFunc(func(r *http.Request) (*http.Response, error) {
			if r.URL.Host == "rdap.test" {
				return respond(r, rdap)
			}

			return respond(r, reply{status: http.StatusOK, body: "nothing here"})
		})})
		require.NoError(t, err)

		r := registration.New(client, registration.Options{
			RDAPBaseURL:  rdapBase,
			WhoisBaseURL: whoisBase,
			Delay:        20 * time.Millisecond,
		})

		start := time.Now()
		r.Resolve(context.Background(), "example.com")
		require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond, "status %d", rdap.status)
	}
}
