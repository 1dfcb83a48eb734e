package shortener

import "errors"

var (
	// ErrNotFound is returned when no link exists for a code. Redemption also
	// returns it for links whose deadline has passed but were not swept yet.
	ErrNotFound = errors.New("link not found")

	// ErrForbidden is returned when the caller does not own the link.
	ErrForbidden = errors.New("caller does not own link")

	// ErrQuotaExhausted is returned when a link has no redirects left.
	ErrQuotaExhausted = errors.New("link quota exhausted")

	// ErrInvalidQuota is returned for a quota that is negative or not greater
	// than the number of redirects already served.
	ErrInvalidQuota = errors.New("invalid quota")

	// ErrInvalidTTL is returned for a lifetime override that is negative or
	// above MaxTTLHours.
	ErrInvalidTTL = errors.New("invalid ttl")

	// ErrCodeTaken is returned by a Repository when a code is already in use.
	ErrCodeTaken = errors.New("code already in use")

	// ErrCodeSpaceExhausted is returned when no free code was found after
	// several attempts.
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique code")
)
