package shortener

import (
	"context"
	"errors"
	"time"
)

const maxCodeAttempts = 5

// MaxTTLHours caps lifetime overrides at ten years.
const MaxTTLHours = 87600

// CodeGenerator generates candidate short codes.
type CodeGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// Settings holds the defaults applied when a shorten request omits overrides.
type Settings struct {
	DefaultQuota int
	DefaultTTL   time.Duration
}

// ShortenRequest describes a new link. Nil overrides fall back to Settings.
type ShortenRequest struct {
	TargetURL string
	Identity  string
	Quota     *int
	TTLHours  *int
}

// Service exposes the link operations used by request handlers.
type Service struct {
	store        Repository
	users        UserRegistry
	generateCode CodeGenerator
	settings     Settings
	now          Clock
}

// NewService creates a new link service.
func NewService(store Repository, users UserRegistry, generator CodeGenerator, settings Settings) *Service {
	return &Service{
		store:        store,
		users:        users,
		generateCode: generator,
		settings:     settings,
		now:          time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *Service) WithClock(now Clock) *Service {
	s.now = now

	return s
}

// Shorten creates a link owned by the resolved identity of the request.
func (s *Service) Shorten(ctx context.Context, req ShortenRequest) (*Link, error) {
	owner, err := s.users.Resolve(ctx, req.Identity)
	if err != nil {
		return nil, err
	}

	quota := s.settings.DefaultQuota
	if req.Quota != nil {
		quota = *req.Quota
	}

	if quota < 0 {
		return nil, ErrInvalidQuota
	}

	ttl := s.settings.DefaultTTL
	if req.TTLHours != nil {
		if *req.TTLHours < 0 || *req.TTLHours > MaxTTLHours {
			return nil, ErrInvalidTTL
		}

		ttl = time.Duration(*req.TTLHours) * time.Hour
	}

	now := s.now()

	for range maxCodeAttempts {
		link := &Link{
			Code:      Code(s.generateCode()),
			TargetURL: req.TargetURL,
			OwnerID:   owner,
			Deadline:  now.Add(ttl),
			Quota:     quota,
			CreatedAt: now,
		}

		err = s.store.Create(ctx, link)
		if err == nil {
			return link, nil
		}

		if !errors.Is(err, ErrCodeTaken) {
			return nil, err
		}
	}

	return nil, ErrCodeSpaceExhausted
}

// Redeem consumes one redirect and returns the link to redirect to.
func (s *Service) Redeem(ctx context.Context, code Code) (*Link, error) {
	return s.store.Redeem(ctx, code, s.now())
}

// UpdateQuota raises or lowers the quota of a link owned by caller. Missing
// links and foreign owners are reported before the quota is validated.
func (s *Service) UpdateQuota(ctx context.Context, code Code, caller string, quota int) (*Link, error) {
	return s.store.UpdateQuota(ctx, code, caller, quota)
}

// Delete removes a link owned by caller.
func (s *Service) Delete(ctx context.Context, code Code, caller string) error {
	return s.store.Delete(ctx, code, caller)
}

// Stats returns a snapshot of a link owned by caller. Links past their
// deadline stay visible until they are swept.
func (s *Service) Stats(ctx context.Context, code Code, caller string) (*Link, error) {
	link, err := s.store.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	if link.OwnerID != caller {
		return nil, ErrForbidden
	}

	return link, nil
}

// ListOwned returns the codes of every link owned by caller.
func (s *Service) ListOwned(ctx context.Context, caller string) ([]Code, error) {
	return s.store.ListByOwner(ctx, caller)
}

// Sweep removes links whose deadline has passed.
func (s *Service) Sweep(ctx context.Context) ([]Link, error) {
	return s.store.SweepExpired(ctx, s.now())
}
