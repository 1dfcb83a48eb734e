package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/quotalink/internal/analytics"
	"github.com/serroba/quotalink/internal/shortener"
	"go.uber.org/zap"
)

// LinkHandler exposes the link service over HTTP.
type LinkHandler struct {
	service    *shortener.Service
	baseURL    string
	publishers *analytics.Publishers
	logger     *zap.Logger
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(
	service *shortener.Service,
	baseURL string,
	publishers *analytics.Publishers,
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		service:    service,
		baseURL:    baseURL,
		publishers: publishers,
		logger:     logger,
	}
}

func (h *LinkHandler) Shorten(ctx context.Context, req *ShortenRequest) (*ShortenResponse, error) {
	link, err := h.service.Shorten(ctx, shortener.ShortenRequest{
		TargetURL: req.Body.URL,
		Identity:  req.UserID,
		Quota:     req.Body.Quota,
		TTLHours:  req.Body.TTLHours,
	})
	if err != nil {
		return nil, h.httpError(err, "")
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.LinkCreatedEvent{
		Code:        string(link.Code),
		OriginalURL: link.TargetURL,
		OwnerID:     link.OwnerID,
		Quota:       link.Quota,
		Deadline:    link.Deadline,
		CreatedAt:   link.CreatedAt,
		ClientIP:    meta.ClientIP,
		UserAgent:   meta.UserAgent,
	}

	if err := h.publishers.LinkCreated(ctx, event); err != nil {
		h.logPublishError(event.Code, analytics.TopicLinkCreated, err)
	}

	shortURL := fmt.Sprintf("%s/%s", h.baseURL, link.Code)

	resp := &ShortenResponse{Location: shortURL}
	resp.Body.Code = string(link.Code)
	resp.Body.ShortURL = shortURL
	resp.Body.UserID = link.OwnerID

	return resp, nil
}

func (h *LinkHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	link, err := h.service.Redeem(ctx, shortener.Code(req.Code))
	if err != nil {
		return nil, h.httpError(err, req.Code)
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.LinkRedeemedEvent{
		Code:       req.Code,
		Consumed:   link.Consumed,
		Quota:      link.Quota,
		RedeemedAt: time.Now(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referrer:   meta.Referrer,
	}

	if err := h.publishers.LinkRedeemed(ctx, event); err != nil {
		h.logPublishError(event.Code, analytics.TopicLinkRedeemed, err)
	}

	return &RedirectResponse{
		Status:   http.StatusFound,
		Location: link.TargetURL,
	}, nil
}

func (h *LinkHandler) UpdateQuota(ctx context.Context, req *UpdateQuotaRequest) (*UpdateQuotaResponse, error) {
	link, err := h.service.UpdateQuota(ctx, shortener.Code(req.Code), req.UserID, req.Body.Quota)
	if err != nil {
		return nil, h.httpError(err, req.Code)
	}

	resp := &UpdateQuotaResponse{}
	resp.Body.Message = "quota updated"
	resp.Body.Quota = link.Quota

	return resp, nil
}

func (h *LinkHandler) Delete(ctx context.Context, req *LinkRequest) (*DeleteResponse, error) {
	if err := h.service.Delete(ctx, shortener.Code(req.Code), req.UserID); err != nil {
		return nil, h.httpError(err, req.Code)
	}

	event := &analytics.LinkDeletedEvent{
		Code:      req.Code,
		OwnerID:   req.UserID,
		DeletedAt: time.Now(),
	}

	if err := h.publishers.LinkDeleted(ctx, event); err != nil {
		h.logPublishError(event.Code, analytics.TopicLinkDeleted, err)
	}

	resp := &DeleteResponse{}
	resp.Body.Message = "link deleted"

	return resp, nil
}

func (h *LinkHandler) Stats(ctx context.Context, req *LinkRequest) (*StatsResponse, error) {
	link, err := h.service.Stats(ctx, shortener.Code(req.Code), req.UserID)
	if err != nil {
		return nil, h.httpError(err, req.Code)
	}

	resp := &StatsResponse{}
	resp.Body.OriginalURL = link.TargetURL
	resp.Body.ExpiryTime = link.Deadline
	resp.Body.ClickCount = link.Consumed
	resp.Body.MaxClicks = link.Quota

	return resp, nil
}

func (h *LinkHandler) ListOwned(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	codes, err := h.service.ListOwned(ctx, req.UserID)
	if err != nil {
		return nil, h.httpError(err, "")
	}

	resp := &ListResponse{}
	resp.Body.Links = make([]string, 0, len(codes))

	for _, code := range codes {
		resp.Body.Links = append(resp.Body.Links, string(code))
	}

	return resp, nil
}

// httpError maps domain errors to huma status errors. Unknown errors are
// logged and hidden behind a 500.
func (h *LinkHandler) httpError(err error, code string) error {
	switch {
	case errors.Is(err, shortener.ErrNotFound):
		return huma.Error404NotFound("link not found")
	case errors.Is(err, shortener.ErrForbidden):
		return huma.Error403Forbidden("link belongs to another user")
	case errors.Is(err, shortener.ErrQuotaExhausted):
		return huma.NewError(http.StatusGone, "link quota exhausted")
	case errors.Is(err, shortener.ErrInvalidQuota):
		return huma.Error422UnprocessableEntity("quota must exceed the redirects already consumed")
	case errors.Is(err, shortener.ErrInvalidTTL):
		return huma.Error422UnprocessableEntity(fmt.Sprintf("ttlHours must be between 0 and %d", shortener.MaxTTLHours))
	}

	h.logger.Error("link operation failed", zap.String("code", code), zap.Error(err))

	return huma.Error500InternalServerError("internal server error")
}

func (h *LinkHandler) logPublishError(code, topic string, err error) {
	h.logger.Error("failed to publish analytics event",
		zap.String("code", code),
		zap.String("topic", topic),
		zap.Error(err),
	)
}
