package shortener

import (
	"context"
	"time"
)

// Repository owns every link. Implementations must make Redeem and
// UpdateQuota atomic per link and must not serialize unrelated links.
type Repository interface {
	// Create inserts a new link with Consumed set to zero.
	// Returns ErrCodeTaken if the code is already in use.
	Create(ctx context.Context, link *Link) error

	// Get returns a snapshot of the link without applying liveness rules.
	Get(ctx context.Context, code Code) (*Link, error)

	// Redeem consumes one redirect if the link is live at now and returns the
	// snapshot taken right after the increment.
	Redeem(ctx context.Context, code Code, now time.Time) (*Link, error)

	// UpdateQuota replaces the quota of a link owned by ownerID.
	UpdateQuota(ctx context.Context, code Code, ownerID string, quota int) (*Link, error)

	// Delete removes a link owned by ownerID.
	Delete(ctx context.Context, code Code, ownerID string) error

	// ListByOwner returns the codes of every link owned by ownerID.
	ListByOwner(ctx context.Context, ownerID string) ([]Code, error)

	// SweepExpired removes every link whose deadline is before now and returns
	// the removed links.
	SweepExpired(ctx context.Context, now time.Time) ([]Link, error)
}

// UserRegistry bootstraps self-asserted identities.
type UserRegistry interface {
	// Resolve returns token if it is registered, otherwise it registers and
	// returns a freshly minted identity.
	Resolve(ctx context.Context, token string) (string, error)
}
