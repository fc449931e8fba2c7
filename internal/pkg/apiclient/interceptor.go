package apiclient

import (
	"context"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/techsupport-hub/portal/internal/pkg/access"
	"github.com/techsupport-hub/portal/internal/pkg/observability/metrics"
)

type endpointKey struct{}

// interceptor sees every completed response of one client. It never alters
// the response; the caller still gets the original status as an *APIError.
type interceptor struct {
	next     http.RoundTripper
	group    Group
	basePath string
	table    *access.Table
	exempt   map[string]struct{}
	env      Env
	logger   *zap.Logger
}

func (i *interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := i.next.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	i.onUnauthorized(req)
	return resp, nil
}

func (i *interceptor) onUnauthorized(req *http.Request) {
	ctx := context.WithoutCancel(req.Context())
	endpoint := i.endpointOf(req)
	mutation := access.IsMutation(req.Method)

	if _, ok := i.exempt[endpoint]; ok {
		i.logger.Debug("Unauthorized response from session endpoint, no recovery",
			zap.String("endpoint", endpoint),
			zap.String("method", req.Method))
		i.record(ctx, mutation, "exempt")
		return
	}

	if i.env.Profiles != nil {
		i.env.Profiles.Clear(ctx)
	}

	current := i.table.HomePath
	if i.env.Browser != nil {
		current = i.env.Browser.CurrentPath()
	}

	redirect := i.table.ShouldRedirectToLogin(current, mutation) && !i.table.IsLogin(current)
	if redirect && i.env.Browser != nil {
		i.env.Browser.Navigate(i.table.LoginPath)
	}

	i.logger.Warn("Session rejected by API, cached profile cleared",
		zap.String("group", string(i.group)),
		zap.String("endpoint", endpoint),
		zap.String("method", req.Method),
		zap.String("current_path", current),
		zap.Bool("redirect", redirect))

	outcome := "stay"
	if redirect {
		outcome = "redirect"
	}
	i.record(ctx, mutation, outcome)
}

func (i *interceptor) record(ctx context.Context, mutation bool, outcome string) {
	metrics.Get().APIUnauthorizedTotal.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("group", string(i.group)),
			attribute.Bool("mutation", mutation),
			attribute.String("outcome", outcome),
		))
}

func (i *interceptor) endpointOf(req *http.Request) string {
	if e, ok := req.Context().Value(endpointKey{}).(string); ok && e != "" {
		return cleanEndpoint(e)
	}
	return cleanEndpoint(strings.TrimPrefix(req.URL.Path, strings.TrimRight(i.basePath, "/")))
}
