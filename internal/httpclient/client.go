package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Provider names attached to outbound spans.
const (
	ProviderGemini   = "Gemini"
	ProviderSupabase = "Supabase"
)

// DefaultTransport is the base transport used by the instrumented client.
var DefaultTransport http.RoundTripper = http.DefaultTransport

type contextKey string

const providerKey contextKey = "httpclient.provider"

// WithProvider adds a provider name to the context for tracing.
func WithProvider(ctx context.Context, provider string) context.Context {
	return context.WithValue(ctx, providerKey, provider)
}

// ProviderFrom returns the provider stored by WithProvider, if any.
func ProviderFrom(ctx context.Context) string {
	provider, _ := ctx.Value(providerKey).(string)
	return provider
}

// providerTransport is a RoundTripper that adds provider attributes to the current span.
type providerTransport struct {
	base     http.RoundTripper
	provider string
}

func (t *providerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	span := trace.SpanFromContext(req.Context())
	if provider := t.providerFor(req); provider != "" {
		span.SetAttributes(attribute.String("provider", provider))
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if resp.StatusCode >= 400 {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP status %d", resp.StatusCode))
	}
	return resp, nil
}

func (t *providerTransport) providerFor(req *http.Request) string {
	if provider := ProviderFrom(req.Context()); provider != "" {
		return provider
	}
	return t.provider
}

func newOtelTransport(base http.RoundTripper, provider string) http.RoundTripper {
	pt := &providerTransport{base: base, provider: provider}
	return otelhttp.NewTransport(pt,
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			if p := pt.providerFor(r); p != "" {
				return fmt.Sprintf("%s: %s %s", p, r.Method, r.URL.Path)
			}
			return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
		}),
	)
}

// NewInstrumentedClient returns an http.Client with OpenTelemetry
// instrumentation. Every span it emits is tagged with provider unless the
// request context carries its own via WithProvider.
func NewInstrumentedClient(provider string, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: newOtelTransport(DefaultTransport, provider),
		Timeout:   timeout,
	}
}

// WrapClient wraps an existing http.Client's transport with OpenTelemetry instrumentation.
func WrapClient(client *http.Client, provider string) *http.Client {
	if client.Transport == nil {
		client.Transport = DefaultTransport
	}
	client.Transport = newOtelTransport(client.Transport, provider)
	return client
}
