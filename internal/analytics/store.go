package analytics

import "context"

// Store persists analytics events.
type Store interface {
	SaveLinkCreated(ctx context.Context, event *LinkCreatedEvent) error
	SaveLinkRedeemed(ctx context.Context, event *LinkRedeemedEvent) error
	SaveLinkDeleted(ctx context.Context, event *LinkDeletedEvent) error
	SaveLinkExpired(ctx context.Context, event *LinkExpiredEvent) error
}
