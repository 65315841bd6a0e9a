package domain

import (
	"context"
	"time"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	Update(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	FindByAuthor(ctx context.Context, authorID string) ([]*Listing, error)
	// FindByCountry returns Published listings for country created after cutoff.
	FindByCountry(ctx context.Context, country string, cutoff time.Time) ([]*Listing, error)
	// ExpireStale marks every non-expired listing created at or before cutoff as Expired.
	// An empty authorID applies the update across all authors.
	ExpireStale(ctx context.Context, authorID string, cutoff time.Time) (int64, error)
	PushAttachment(ctx context.Context, id, ref string) error
	IncrementImpression(ctx context.Context, id string, day time.Time) error
	IncrementClick(ctx context.Context, id string) error
}

type UserRepository interface {
	GetEmailByID(ctx context.Context, userID string) (string, error)
}
