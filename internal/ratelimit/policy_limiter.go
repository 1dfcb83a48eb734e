package ratelimit

import (
	"context"
	"fmt"
)

// LimitExceeded describes the limit a request ran into.
type LimitExceeded struct {
	Scope  Scope
	Config LimitConfig
	Count  int64
}

// PolicyLimiter enforces a Policy against a Store.
type PolicyLimiter struct {
	store  Store
	policy *Policy
}

// NewPolicyLimiter creates a new policy-based rate limiter.
func NewPolicyLimiter(store Store, policy *Policy) *PolicyLimiter {
	return &PolicyLimiter{
		store:  store,
		policy: policy,
	}
}

// Allow records the request against every limit of the given scopes and
// reports whether all of them still hold. The first limit exceeded stops the
// check and is returned.
func (l *PolicyLimiter) Allow(ctx context.Context, clientKey string, scopes []Scope) (bool, *LimitExceeded, error) {
	for _, scope := range scopes {
		allowed, exceeded, err := l.check(ctx, clientKey, scope, l.policy.Limits[scope])
		if err != nil || !allowed {
			return allowed, exceeded, err
		}
	}

	return true, nil, nil
}

// AllowLimits is like Allow but checks explicit limits under a single scope,
// bypassing the policy.
func (l *PolicyLimiter) AllowLimits(
	ctx context.Context,
	clientKey string,
	scope Scope,
	limits []LimitConfig,
) (bool, *LimitExceeded, error) {
	return l.check(ctx, clientKey, scope, limits)
}

func (l *PolicyLimiter) check(
	ctx context.Context,
	clientKey string,
	scope Scope,
	limits []LimitConfig,
) (bool, *LimitExceeded, error) {
	for _, limit := range limits {
		count, err := l.store.Record(ctx, buildKey(clientKey, scope, limit), limit.Window)
		if err != nil {
			return false, nil, fmt.Errorf("record %s: %w", scope, err)
		}

		if count > limit.Max {
			return false, &LimitExceeded{Scope: scope, Config: limit, Count: count}, nil
		}
	}

	return true, nil, nil
}

// Policy returns the policy being enforced.
func (l *PolicyLimiter) Policy() *Policy {
	return l.policy
}

// buildKey tracks every client, scope and window combination independently.
func buildKey(clientKey string, scope Scope, limit LimitConfig) string {
	return fmt.Sprintf("%s:%s:%d", clientKey, scope, limit.Window.Milliseconds())
}
