package analytics

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/quotalink/internal/messaging"
	"go.uber.org/zap"
)

// NewConsumers creates one consumer per link topic, each persisting into store.
func NewConsumers(subscriber message.Subscriber, store Store, logger *zap.Logger) []messaging.Runnable {
	return []messaging.Runnable{
		messaging.NewConsumer(subscriber, TopicLinkCreated, store.SaveLinkCreated, logger),
		messaging.NewConsumer(subscriber, TopicLinkRedeemed, store.SaveLinkRedeemed, logger),
		messaging.NewConsumer(subscriber, TopicLinkDeleted, store.SaveLinkDeleted, logger),
		messaging.NewConsumer(subscriber, TopicLinkExpired, store.SaveLinkExpired, logger),
	}
}
