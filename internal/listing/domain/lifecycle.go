package domain

import (
	"fmt"
	"time"
)

// ExpiryCutoff returns the creation time at or before which a listing is stale.
func ExpiryCutoff(now time.Time) time.Time {
	return now.Add(-ListingLifetime)
}

// IsStale reports whether the listing has outlived ListingLifetime but is not yet marked Expired.
func (l *Listing) IsStale(now time.Time) bool {
	return l.Status != StatusExpired && !l.CreatedAt.After(ExpiryCutoff(now))
}

// Expire moves any non-expired listing to Expired.
func (l *Listing) Expire(now time.Time) error {
	if l.Status == StatusExpired {
		return ErrListingExpired
	}
	l.Status = StatusExpired
	l.UpdatedAt = now
	return nil
}

// TransitionTo applies a user-requested status change.
//
//	Draft       -> Published   (sets PublishedAt on first publish)
//	Published   -> Unpublished
//	Unpublished -> Published
//
// Expired is terminal. Moving into Expired goes through Expire.
func (l *Listing) TransitionTo(target ListingStatus, now time.Time) error {
	if l.Status == StatusExpired {
		return ErrListingExpired
	}
	if !target.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, target)
	}

	allowed := false
	switch l.Status {
	case StatusDraft:
		allowed = target == StatusPublished
	case StatusPublished:
		allowed = target == StatusUnpublished
	case StatusUnpublished:
		allowed = target == StatusPublished
	}
	if !allowed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, l.Status, target)
	}

	if target == StatusPublished && l.PublishedAt == nil {
		published := now
		l.PublishedAt = &published
	}
	l.Status = target
	l.UpdatedAt = now
	return nil
}

// DayOf truncates t to midnight UTC, the key used for DailyImpressions.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
