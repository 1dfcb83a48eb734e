package store

import (
	"context"
	_ "embed"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/quotalink/internal/analytics"
)

//go:embed schema.sql
var schema string

const insertEvent = `
	INSERT INTO link_events
		(event_type, code, owner_id, consumed, quota, client_ip, user_agent, referrer, payload, occurred_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

// Postgres is an analytics.Store that appends events to the link_events table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a new PostgreSQL analytics store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the link_events table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schema)

	return err
}

type row struct {
	eventType  string
	code       string
	ownerID    string
	consumed   *int
	quota      *int
	clientIP   string
	userAgent  string
	referrer   string
	payload    any
	occurredAt time.Time
}

func (p *Postgres) insert(ctx context.Context, r row) error {
	_, err := p.pool.Exec(ctx, insertEvent,
		r.eventType,
		r.code,
		nullableString(r.ownerID),
		r.consumed,
		r.quota,
		nullableString(r.clientIP),
		nullableString(r.userAgent),
		nullableString(r.referrer),
		r.payload,
		r.occurredAt,
	)

	return err
}

func (p *Postgres) SaveLinkCreated(ctx context.Context, event *analytics.LinkCreatedEvent) error {
	return p.insert(ctx, row{
		eventType:  analytics.TopicLinkCreated,
		code:       event.Code,
		ownerID:    event.OwnerID,
		quota:      &event.Quota,
		clientIP:   event.ClientIP,
		userAgent:  event.UserAgent,
		payload:    event,
		occurredAt: event.CreatedAt,
	})
}

func (p *Postgres) SaveLinkRedeemed(ctx context.Context, event *analytics.LinkRedeemedEvent) error {
	return p.insert(ctx, row{
		eventType:  analytics.TopicLinkRedeemed,
		code:       event.Code,
		consumed:   &event.Consumed,
		quota:      &event.Quota,
		clientIP:   event.ClientIP,
		userAgent:  event.UserAgent,
		referrer:   event.Referrer,
		payload:    event,
		occurredAt: event.RedeemedAt,
	})
}

func (p *Postgres) SaveLinkDeleted(ctx context.Context, event *analytics.LinkDeletedEvent) error {
	return p.insert(ctx, row{
		eventType:  analytics.TopicLinkDeleted,
		code:       event.Code,
		ownerID:    event.OwnerID,
		payload:    event,
		occurredAt: event.DeletedAt,
	})
}

func (p *Postgres) SaveLinkExpired(ctx context.Context, event *analytics.LinkExpiredEvent) error {
	return p.insert(ctx, row{
		eventType:  analytics.TopicLinkExpired,
		code:       event.Code,
		ownerID:    event.OwnerID,
		consumed:   &event.Consumed,
		quota:      &event.Quota,
		payload:    event,
		occurredAt: event.SweptAt,
	})
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// Compile-time check.
var _ analytics.Store = (*Postgres)(nil)
