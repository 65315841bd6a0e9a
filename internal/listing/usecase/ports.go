package usecase

import (
	"context"

	"github.com/FaizanHaider108/lookvisa/internal/listing/domain"
)

// Storage keeps attachment files and returns a public reference to each.
type Storage interface {
	Upload(ctx context.Context, fileName string, data []byte) (string, error)
	Delete(ctx context.Context, ref string) error
}

// ListingCache caches the searchable listings of a country.
// GetCountry returns (nil, nil) on a miss.
type ListingCache interface {
	GetCountry(ctx context.Context, country string) ([]*domain.Listing, error)
	SetCountry(ctx context.Context, country string, listings []*domain.Listing) error
	InvalidateCountry(ctx context.Context, country string) error
}

type EventPublisher interface {
	PublishListingCreated(ctx context.Context, listing *domain.Listing) error
	PublishListingUpdated(ctx context.Context, listing *domain.Listing) error
	PublishListingStatusChanged(ctx context.Context, listing *domain.Listing, from domain.ListingStatus) error
	PublishListingDeleted(ctx context.Context, listingID string) error
	PublishListingsExpired(ctx context.Context, authorID string, count int64) error
}

// Notifier sends transactional email about listings.
type Notifier interface {
	SendListingCreated(ctx context.Context, to string, listing *domain.Listing) error
}
