package usecase

import (
	"context"
	"time"

	"github.com/FaizanHaider108/lookvisa/internal/listing/domain"
	"github.com/stretchr/testify/mock"
)

type MockListingRepository struct{ mock.Mock }

func (m *MockListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}
func (m *MockListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}
func (m *MockListingRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}
func (m *MockListingRepository) FindByAuthor(ctx context.Context, authorID string) ([]*domain.Listing, error) {
	args := m.Called(ctx, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}
func (m *MockListingRepository) FindByCountry(ctx context.Context, country string, cutoff time.Time) ([]*domain.Listing, error) {
	args := m.Called(ctx, country, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}
func (m *MockListingRepository) ExpireStale(ctx context.Context, authorID string, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, authorID, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockListingRepository) PushAttachment(ctx context.Context, id, ref string) error {
	args := m.Called(ctx, id, ref)
	return args.Error(0)
}
func (m *MockListingRepository) IncrementImpression(ctx context.Context, id string, day time.Time) error {
	args := m.Called(ctx, id, day)
	return args.Error(0)
}
func (m *MockListingRepository) IncrementClick(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) GetEmailByID(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

type MockListingCache struct{ mock.Mock }

func (m *MockListingCache) GetCountry(ctx context.Context, country string) ([]*domain.Listing, error) {
	args := m.Called(ctx, country)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}
func (m *MockListingCache) SetCountry(ctx context.Context, country string, listings []*domain.Listing) error {
	args := m.Called(ctx, country, listings)
	return args.Error(0)
}
func (m *MockListingCache) InvalidateCountry(ctx context.Context, country string) error {
	args := m.Called(ctx, country)
	return args.Error(0)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) PublishListingCreated(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}
func (m *MockEventPublisher) PublishListingUpdated(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}
func (m *MockEventPublisher) PublishListingStatusChanged(ctx context.Context, listing *domain.Listing, from domain.ListingStatus) error {
	args := m.Called(ctx, listing, from)
	return args.Error(0)
}
func (m *MockEventPublisher) PublishListingDeleted(ctx context.Context, listingID string) error {
	args := m.Called(ctx, listingID)
	return args.Error(0)
}
func (m *MockEventPublisher) PublishListingsExpired(ctx context.Context, authorID string, count int64) error {
	args := m.Called(ctx, authorID, count)
	return args.Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) SendListingCreated(ctx context.Context, to string, listing *domain.Listing) error {
	args := m.Called(ctx, to, listing)
	return args.Error(0)
}

type MockStorage struct{ mock.Mock }

func (m *MockStorage) Upload(ctx context.Context, fileName string, data []byte) (string, error) {
	args := m.Called(ctx, fileName, data)
	return args.String(0), args.Error(1)
}
func (m *MockStorage) Delete(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}
