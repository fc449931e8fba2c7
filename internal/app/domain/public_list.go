package domain

import (
	"context"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/techsupport-hub/portal/internal/app/middleware"
	"github.com/techsupport-hub/portal/internal/pkg/apiclient"
	"github.com/techsupport-hub/portal/internal/pkg/cache"
)

// PublicList lists one API group for a public page. Visitors without a
// session share the cached copy; signed-in visitors always read through.
func PublicList[T any](h *BaseHandler, c *gin.Context, shared *cache.UnifiedCache[[]T], group apiclient.Group, query url.Values) ([]T, error) {
	load := func(ctx context.Context) ([]T, error) {
		return apiclient.NewResource[T](h.Client(c, group)).List(ctx, query)
	}
	if middleware.GetClaimsFromContext(c) != nil || !shared.Enabled() {
		return load(c.Request.Context())
	}
	return shared.GetOrLoad(c.Request.Context(), string(group)+"?"+query.Encode(), load)
}
