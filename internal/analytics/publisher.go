package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/quotalink/internal/messaging"
	"github.com/serroba/quotalink/internal/shortener"
)

// Publishers bundles the typed publish functions for every link topic.
type Publishers struct {
	LinkCreated  messaging.Publish[LinkCreatedEvent]
	LinkRedeemed messaging.Publish[LinkRedeemedEvent]
	LinkDeleted  messaging.Publish[LinkDeletedEvent]
	LinkExpired  messaging.Publish[LinkExpiredEvent]
}

// NewPublishers binds one publish function per topic to publisher.
func NewPublishers(publisher message.Publisher) *Publishers {
	return &Publishers{
		LinkCreated:  messaging.NewPublishFunc[LinkCreatedEvent](publisher, TopicLinkCreated),
		LinkRedeemed: messaging.NewPublishFunc[LinkRedeemedEvent](publisher, TopicLinkRedeemed),
		LinkDeleted:  messaging.NewPublishFunc[LinkDeletedEvent](publisher, TopicLinkDeleted),
		LinkExpired:  messaging.NewPublishFunc[LinkExpiredEvent](publisher, TopicLinkExpired),
	}
}

// NoopPublishers returns publishers that drop every event.
func NoopPublishers() *Publishers {
	return &Publishers{
		LinkCreated:  messaging.NoopPublish[LinkCreatedEvent](),
		LinkRedeemed: messaging.NoopPublish[LinkRedeemedEvent](),
		LinkDeleted:  messaging.NoopPublish[LinkDeletedEvent](),
		LinkExpired:  messaging.NoopPublish[LinkExpiredEvent](),
	}
}

// PublishExpired publishes one expiry event per swept link and joins errors.
func (p *Publishers) PublishExpired(ctx context.Context, swept []shortener.Link, sweptAt time.Time) error {
	var errs []error

	for i := range swept {
		link := &swept[i]

		err := p.LinkExpired(ctx, &LinkExpiredEvent{
			Code:     string(link.Code),
			OwnerID:  link.OwnerID,
			Consumed: link.Consumed,
			Quota:    link.Quota,
			Deadline: link.Deadline,
			SweptAt:  sweptAt,
		})
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
