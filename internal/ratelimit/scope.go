package ratelimit

import "github.com/danielgtaylor/huma/v2"

// MetadataKey is the key used to store rate limit config in operation metadata.
const MetadataKey = "rateLimit"

// EndpointConfig defines per-endpoint rate limit configuration.
// It is attached to Huma operations via the Metadata field.
type EndpointConfig struct {
	// Preset selects the shared rule for this endpoint. Empty means the resolver decides.
	Preset Preset

	// Rule overrides the preset's rule while keeping the preset's counters and message.
	Rule *Rule

	// Disabled skips rate limiting entirely for this endpoint.
	Disabled bool
}

// Policy is the resolved limit for a single request.
type Policy struct {
	Preset  Preset
	Rule    Rule
	Message string
}

// Resolver determines which policy applies to a request.
// The boolean result is false when the request is not rate limited.
type Resolver interface {
	Resolve(ctx huma.Context) (Policy, bool)
}

// MethodResolver resolves policies from the HTTP method.
// GET, HEAD and OPTIONS use the public preset, all other methods the API preset.
type MethodResolver struct{}

// NewMethodResolver creates a new method-based resolver.
func NewMethodResolver() *MethodResolver {
	return &MethodResolver{}
}

// Resolve returns the policy for the request's HTTP method.
func (r *MethodResolver) Resolve(ctx huma.Context) (Policy, bool) {
	switch ctx.Method() {
	case "GET", "HEAD", "OPTIONS":
		return policyFor(PresetPublic, nil), true
	default:
		return policyFor(PresetAPI, nil), true
	}
}

// OperationResolver checks operation metadata first, then falls back to the method.
type OperationResolver struct {
	fallback *MethodResolver
}

// NewOperationResolver creates a new operation-aware resolver.
func NewOperationResolver() *OperationResolver {
	return &OperationResolver{
		fallback: NewMethodResolver(),
	}
}

// Resolve returns the policy for a request, checking operation metadata first.
func (r *OperationResolver) Resolve(ctx huma.Context) (Policy, bool) {
	cfg := GetEndpointConfig(ctx)
	if cfg == nil {
		return r.fallback.Resolve(ctx)
	}

	if cfg.Disabled {
		return Policy{}, false
	}

	if cfg.Preset == "" {
		policy, ok := r.fallback.Resolve(ctx)
		if cfg.Rule != nil {
			policy.Rule = *cfg.Rule
		}

		return policy, ok
	}

	return policyFor(cfg.Preset, cfg.Rule), true
}

func policyFor(preset Preset, override *Rule) Policy {
	policy := Policy{
		Preset:  preset,
		Rule:    RuleFor(preset),
		Message: Messages[preset],
	}

	if override != nil {
		policy.Rule = *override
	}

	if policy.Message == "" {
		policy.Message = "Too many requests, please try again later."
	}

	return policy
}

// GetEndpointConfig extracts the EndpointConfig from operation metadata, if present.
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
