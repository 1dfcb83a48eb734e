package ratelimit

import "github.com/danielgtaylor/huma/v2"

// Scope categorizes a request for rate limiting purposes.
type Scope string

const (
	// ScopeGlobal applies to all requests.
	ScopeGlobal Scope = "global"
	// ScopeRead applies to reads (GET, HEAD, OPTIONS).
	ScopeRead Scope = "read"
	// ScopeWrite applies to writes (POST, PUT, PATCH, DELETE).
	ScopeWrite Scope = "write"
	// ScopeRedirect applies to short code redirects, which consume link quota
	// and are budgeted apart from management reads.
	ScopeRedirect Scope = "redirect"
	// ScopeEndpoint labels limits declared on a single operation.
	ScopeEndpoint Scope = "endpoint"
)

// MetadataKey is the key used to store rate limit config in operation metadata.
const MetadataKey = "rateLimit"

// EndpointConfig is per-endpoint rate limit configuration attached to a huma
// operation through its Metadata.
//
// When Limits is non-empty the endpoint is checked against those limits only
// and Scope is ignored. Otherwise the policy limits of the resolved scopes
// apply, with Scope overriding method-based detection when set.
type EndpointConfig struct {
	Scope    Scope
	Limits   []LimitConfig
	Disabled bool
}

// ScopeResolver determines which scopes apply to a given request.
type ScopeResolver interface {
	Resolve(ctx huma.Context) []Scope
}

// MethodScopeResolver resolves scopes from the HTTP method.
type MethodScopeResolver struct{}

// NewMethodScopeResolver creates a new method-based scope resolver.
func NewMethodScopeResolver() *MethodScopeResolver {
	return &MethodScopeResolver{}
}

// Resolve returns the global scope plus read or write depending on the method.
func (r *MethodScopeResolver) Resolve(ctx huma.Context) []Scope {
	switch ctx.Method() {
	case "GET", "HEAD", "OPTIONS":
		return []Scope{ScopeGlobal, ScopeRead}
	default:
		return []Scope{ScopeGlobal, ScopeWrite}
	}
}

// OperationScopeResolver prefers the scope declared in operation metadata and
// falls back to method-based detection.
type OperationScopeResolver struct {
	fallback *MethodScopeResolver
}

// NewOperationScopeResolver creates a new operation-aware scope resolver.
func NewOperationScopeResolver() *OperationScopeResolver {
	return &OperationScopeResolver{
		fallback: NewMethodScopeResolver(),
	}
}

func (r *OperationScopeResolver) Resolve(ctx huma.Context) []Scope {
	if cfg := GetEndpointConfig(ctx); cfg != nil && cfg.Scope != "" {
		return []Scope{ScopeGlobal, cfg.Scope}
	}

	return r.fallback.Resolve(ctx)
}

// GetEndpointConfig extracts the EndpointConfig from operation metadata.
func GetEndpointConfig(ctx huma.Context) *EndpointConfig {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return nil
	}

	cfg, ok := op.Metadata[MetadataKey].(EndpointConfig)
	if !ok {
		return nil
	}

	return &cfg
}
