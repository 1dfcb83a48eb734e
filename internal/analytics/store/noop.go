package store

import (
	"context"

	"github.com/serroba/quotalink/internal/analytics"
	"go.uber.org/zap"
)

// Noop is an analytics.Store that only logs events.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new logging analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveLinkCreated(_ context.Context, event *analytics.LinkCreatedEvent) error {
	n.logger.Info("link created",
		zap.String("code", event.Code),
		zap.String("originalUrl", event.OriginalURL),
		zap.String("ownerId", event.OwnerID),
		zap.Int("quota", event.Quota),
		zap.Time("deadline", event.Deadline),
	)

	return nil
}

func (n *Noop) SaveLinkRedeemed(_ context.Context, event *analytics.LinkRedeemedEvent) error {
	n.logger.Info("link redeemed",
		zap.String("code", event.Code),
		zap.Int("consumed", event.Consumed),
		zap.Int("quota", event.Quota),
		zap.String("referrer", event.Referrer),
	)

	return nil
}

func (n *Noop) SaveLinkDeleted(_ context.Context, event *analytics.LinkDeletedEvent) error {
	n.logger.Info("link deleted",
		zap.String("code", event.Code),
		zap.String("ownerId", event.OwnerID),
	)

	return nil
}

func (n *Noop) SaveLinkExpired(_ context.Context, event *analytics.LinkExpiredEvent) error {
	n.logger.Info("link expired",
		zap.String("code", event.Code),
		zap.Int("consumed", event.Consumed),
		zap.Int("quota", event.Quota),
		zap.Time("sweptAt", event.SweptAt),
	)

	return nil
}

// Compile-time check.
var _ analytics.Store = (*Noop)(nil)
