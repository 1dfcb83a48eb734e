package shortener

import "time"

// Code is the opaque short identifier of a link.
type Code string

// Link is a snapshot of one shortened mapping.
//
// Code, TargetURL, OwnerID and Deadline never change after creation. Quota only
// changes through an owner update and Consumed only through redemption.
type Link struct {
	Code      Code
	TargetURL string
	OwnerID   string
	Deadline  time.Time
	Quota     int
	Consumed  int
	CreatedAt time.Time
}

// Expired reports whether the deadline has been reached at now.
func (l *Link) Expired(now time.Time) bool {
	return !now.Before(l.Deadline)
}

// Exhausted reports whether every redirect slot has been used.
func (l *Link) Exhausted() bool {
	return l.Consumed >= l.Quota
}

// Live reports whether the link can still be redeemed at now.
func (l *Link) Live(now time.Time) bool {
	return !l.Expired(now) && !l.Exhausted()
}

// Remaining returns the number of redirects left before the quota is reached.
func (l *Link) Remaining() int {
	if l.Exhausted() {
		return 0
	}

	return l.Quota - l.Consumed
}
