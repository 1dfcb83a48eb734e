package analytics

import "time"

const (
	TopicLinkCreated  = "link.created"
	TopicLinkRedeemed = "link.redeemed"
	TopicLinkDeleted  = "link.deleted"
	TopicLinkExpired  = "link.expired"
)

// LinkCreatedEvent is emitted when a link is shortened.
type LinkCreatedEvent struct {
	Code        string    `json:"code"`
	OriginalURL string    `json:"originalUrl"`
	OwnerID     string    `json:"ownerId"`
	Quota       int       `json:"quota"`
	Deadline    time.Time `json:"deadline"`
	CreatedAt   time.Time `json:"createdAt"`
	ClientIP    string    `json:"clientIp"`
	UserAgent   string    `json:"userAgent"`
}

// LinkRedeemedEvent is emitted after a redirect slot was consumed.
type LinkRedeemedEvent struct {
	Code       string    `json:"code"`
	Consumed   int       `json:"consumed"`
	Quota      int       `json:"quota"`
	RedeemedAt time.Time `json:"redeemedAt"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
	Referrer   string    `json:"referrer"`
}

// LinkDeletedEvent is emitted when an owner deletes a link.
type LinkDeletedEvent struct {
	Code      string    `json:"code"`
	OwnerID   string    `json:"ownerId"`
	DeletedAt time.Time `json:"deletedAt"`
}

// LinkExpiredEvent is emitted for each link removed by the sweeper.
type LinkExpiredEvent struct {
	Code     string    `json:"code"`
	OwnerID  string    `json:"ownerId"`
	Consumed int       `json:"consumed"`
	Quota    int       `json:"quota"`
	Deadline time.Time `json:"deadline"`
	SweptAt  time.Time `json:"sweptAt"`
}
