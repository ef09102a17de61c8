// Package fetch performs the GET requests issued by the lookups: a fixed
// User-Agent, a per-client timeout, a bounded body and charset decoding.
package fetch

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"domaincheck/pkg/serrors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/net/html/charset"
)

// MaxBodyBytes caps how much of a response body is read.
const MaxBodyBytes = 8 << 20

// DefaultUserAgent identifies the checker to the remote sites.
const DefaultUserAgent = "Mozilla/5.0 (compatible; DomainChecker/1.0; +https://example.com)"

// Response is the part of an HTTP response the lookups care about.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the response has a 2xx status.
func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client performs a GET request and returns the status code and body.
type Client interface {
	Get(ctx context.Context, URL string) (Response, error)
}

// Options configure an HTTPClient.
type Options struct {
	// Timeout bounds a single request including reading the body.
	Timeout time.Duration
	// UserAgent is sent with every request; DefaultUserAgent when empty.
	UserAgent string
	// Transport overrides http.DefaultTransport, mostly for tests.
	Transport http.RoundTripper
	// MeterProvider receives request counters and latency; no-op when nil.
	MeterProvider metric.MeterProvider
	// TracerProvider receives one client span per request; no-op when nil.
	TracerProvider trace.TracerProvider
}

// HTTPClient implements Client on top of net/http. It is safe for concurrent use.
type HTTPClient struct {
	httpClient *http.Client
	userAgent  string

	requests metric.Int64Counter
	duration metric.Float64Histogram
	tracer   trace.Tracer
}

var _ Client = (*HTTPClient)(nil)

// New constructs an HTTPClient from opts.
func New(opts Options) (*HTTPClient, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MeterProvider == nil {
		opts.MeterProvider = noop.NewMeterProvider()
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = tracenoop.NewTracerProvider()
	}

	meter := opts.MeterProvider.Meter("domaincheck/pkg/fetch")
	requests, err := meter.Int64Counter("fetch.requests",
		metric.WithDescription("Outbound GET requests by host and status class."))
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrInternal, err, "could not create request counter")
	}
	duration, err := meter.Float64Histogram("fetch.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Outbound GET request latency."))
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrInternal, err, "could not create duration histogram")
	}

	return &HTTPClient{
		httpClient: &http.Client{Timeout: opts.Timeout, Transport: opts.Transport},
		userAgent:  opts.UserAgent,
		requests:   requests,
		duration:   duration,
		tracer:     opts.TracerProvider.Tracer("domaincheck/pkg/fetch"),
	}, nil
}

// Get issues a GET request for URL. Any response, whatever its status, is
// returned without error; only transport failures produce an error, classified
// as serrors.ErrTimeout or serrors.ErrTransport.
func (c *HTTPClient) Get(ctx context.Context, URL string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, URL, nil)
	if err != nil {
		return Response{}, serrors.Wrap(serrors.ErrBadInput, err, "could not create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")

	ctx, span := c.tracer.Start(ctx, "GET "+req.URL.Hostname(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("url.full", URL)),
	)
	defer span.End()
	req = req.WithContext(ctx)

	start := time.Now()
	status := "error"
	defer func() {
		attrs := metric.WithAttributes(
			attribute.String("host", req.URL.Hostname()),
			attribute.String("status", status),
		)
		c.requests.Add(ctx, 1, attrs)
		c.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = serrors.Classify(err, "could not send request")
		span.RecordError(err)
		span.SetStatus(codes.Error, serrors.KindName(err))

		return Response{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	status = strconv.Itoa(resp.StatusCode/100) + "xx"
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	b, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return Response{}, serrors.Classify(err, "could not read response body")
	}

	return Response{
		StatusCode: resp.StatusCode,
		Body:       decode(b, resp.Header.Get("Content-Type")),
	}, nil
}

// decode converts a body in a legacy charset to UTF-8. A body without a
// declared charset that is already valid UTF-8 is returned as is, since
// sniffing only looks at the first 1024 bytes. Bodies that cannot be decoded
// are returned unchanged.
func decode(body []byte, contentType string) []byte {
	if !declaresCharset(contentType) && utf8.Valid(body) {
		return body
	}
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return body
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return body
	}

	return out
}

func declaresCharset(contentType string) bool {
	_, params, err := mime.ParseMediaType(contentType)

	return err == nil && params["charset"] != ""
}
