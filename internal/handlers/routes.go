package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/quotalink/internal/ratelimit"
)

// RegisterRoutes registers the link routes with their rate limit configuration.
func RegisterRoutes(api huma.API, links *LinkHandler) {
	// Shortening allocates store entries, so it gets its own tighter budget.
	huma.Register(api, huma.Operation{
		OperationID:   "shorten",
		Method:        http.MethodPost,
		Path:          "/shorten",
		Summary:       "Create short link",
		Description:   "Creates a short link with a redirect quota and an expiry deadline.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusCreated,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 10},
					{Window: time.Hour, Max: 100},
					{Window: 24 * time.Hour, Max: 500},
				},
			},
		},
	}, links.Shorten)

	huma.Register(api, huma.Operation{
		OperationID:   "redirect",
		Method:        http.MethodGet,
		Path:          "/{code}",
		Summary:       "Follow short link",
		Description:   "Consumes one redirect of the link quota and redirects to the target URL.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusFound,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeRedirect},
		},
	}, links.Redirect)

	huma.Register(api, huma.Operation{
		OperationID: "list-links",
		Method:      http.MethodGet,
		Path:        "/links",
		Summary:     "List owned links",
		Tags:        []string{"Links"},
	}, links.ListOwned)

	huma.Register(api, huma.Operation{
		OperationID: "update-quota",
		Method:      http.MethodPut,
		Path:        "/links/{code}/quota",
		Summary:     "Update link quota",
		Description: "Replaces the redirect quota. The new quota must exceed the redirects already consumed.",
		Tags:        []string{"Links"},
	}, links.UpdateQuota)

	huma.Register(api, huma.Operation{
		OperationID: "delete-link",
		Method:      http.MethodDelete,
		Path:        "/links/{code}",
		Summary:     "Delete link",
		Tags:        []string{"Links"},
	}, links.Delete)

	huma.Register(api, huma.Operation{
		OperationID: "link-stats",
		Method:      http.MethodGet,
		Path:        "/links/{code}/stats",
		Summary:     "Link statistics",
		Tags:        []string{"Links"},
	}, links.Stats)
}
