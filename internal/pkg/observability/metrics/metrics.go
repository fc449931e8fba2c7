package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the portal's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal          metric.Int64Counter
	HTTPRequestDuration        metric.Float64Histogram
	GuardRedirectsTotal        metric.Int64Counter
	APIUnauthorizedTotal       metric.Int64Counter
	APIRequestDuration         metric.Float64Histogram
	ProfileStoreFallbacksTotal metric.Int64Counter
	TemplateRenderDuration     metric.Float64Histogram
}

const meterName = "techsupport-portal"

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments from the global MeterProvider.
// Safe to call more than once; only the first call does work.
func InitAppMetrics() {
	once.Do(func() {
		meter := Meter()
		var err error
		m := &AppMetrics{}

		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_requests_total: %v", err)
		}

		m.HTTPRequestDuration, err = meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_request_duration_seconds: %v", err)
		}

		m.GuardRedirectsTotal, err = meter.Int64Counter(
			"guard_redirects_total",
			metric.WithDescription("Navigations redirected by the route guard"),
			metric.WithUnit("{redirect}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create guard_redirects_total: %v", err)
		}

		m.APIUnauthorizedTotal, err = meter.Int64Counter(
			"api_unauthorized_total",
			metric.WithDescription("API responses with status 401 seen by the client interceptor"),
			metric.WithUnit("{response}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create api_unauthorized_total: %v", err)
		}

		m.APIRequestDuration, err = meter.Float64Histogram(
			"api_request_duration_seconds",
			metric.WithDescription("Duration of upstream API requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create api_request_duration_seconds: %v", err)
		}

		m.ProfileStoreFallbacksTotal, err = meter.Int64Counter(
			"profile_store_fallbacks_total",
			metric.WithDescription("Profile stores that switched to the in-memory fallback"),
			metric.WithUnit("{store}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create profile_store_fallbacks_total: %v", err)
		}

		m.TemplateRenderDuration, err = meter.Float64Histogram(
			"template_render_duration_seconds",
			metric.WithDescription("Duration of template rendering in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create template_render_duration_seconds: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the instruments, creating them on first use. Before the
// observability providers are installed the global provider is a no-op,
// so callers in tests record into nothing.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

// Meter returns the portal's meter from the global provider, for
// components that register their own observable instruments.
func Meter() metric.Meter {
	return otel.GetMeterProvider().Meter(meterName)
}
