package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/FaizanHaider108/lookvisa/internal/auth"
	"github.com/FaizanHaider108/lookvisa/internal/listing/domain"
	"github.com/FaizanHaider108/lookvisa/internal/listing/search"
	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"github.com/FaizanHaider108/lookvisa/internal/platform/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/FaizanHaider108/lookvisa/internal/listing/usecase")

type Option func(*options)

type options struct {
	now        func() time.Time
	pageSize   int
	legacySort bool
}

// WithClock replaces time.Now, used by tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

func WithLegacySort(legacy bool) Option {
	return func(o *options) { o.legacySort = legacy }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, pageSize: search.DefaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type ListingUsecase struct {
	repo     domain.ListingRepository
	users    domain.UserRepository
	cache    ListingCache
	events   EventPublisher
	notifier Notifier
	metrics  *metrics.MetricsManager
	logger   *logger.Logger
	input    *inputValidator
	opts     options
}

// NewListingUsecase wires the listing operations. users, cache, events, notifier and m may be nil.
func NewListingUsecase(
	repo domain.ListingRepository,
	users domain.UserRepository,
	cache ListingCache,
	events EventPublisher,
	notifier Notifier,
	m *metrics.MetricsManager,
	log *logger.Logger,
	opts ...Option,
) *ListingUsecase {
	return &ListingUsecase{
		repo:     repo,
		users:    users,
		cache:    cache,
		events:   events,
		notifier: notifier,
		metrics:  m,
		logger:   log.Named("listing_usecase"),
		input:    newInputValidator(),
		opts:     buildOptions(opts),
	}
}

func (uc *ListingUsecase) now() time.Time {
	return uc.opts.now().UTC()
}

func (uc *ListingUsecase) CreateListing(ctx context.Context, session auth.Session, in ListingInput) (*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.CreateListing")
	defer span.End()

	if !session.IsSponsor() {
		uc.logger.Warn("ListingUsecase.CreateListing: caller is not a visa sponsor",
			zap.String("user_id", session.UserID), zap.String("role", string(session.Role)))
		return nil, domain.ErrForbidden
	}
	if err := uc.input.check(&in); err != nil {
		return nil, err
	}

	now := uc.now()
	expires := now.Add(domain.ListingLifetime)
	listing := &domain.Listing{
		AuthorID:    session.UserID,
		Status:      domain.StatusDraft,
		Attachments: []string{},
		ExpiresAt:   &expires,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	in.apply(listing)
	if err := listing.Validate(); err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, listing); err != nil {
		uc.logger.Error("ListingUsecase.CreateListing: failed to create listing",
			zap.String("user_id", session.UserID), zap.Error(err))
		return nil, fmt.Errorf("ListingUsecase.CreateListing: %w", err)
	}
	span.SetAttributes(attribute.String("listing.id", listing.ID))
	uc.logger.Info("ListingUsecase.CreateListing: listing created",
		zap.String("listing_id", listing.ID), zap.String("user_id", session.UserID))

	uc.metrics.ListingCreated()
	uc.invalidate(ctx, listing.CountryForInvestment)
	if uc.events != nil {
		if err := uc.events.PublishListingCreated(ctx, listing); err != nil {
			uc.logger.Warn("Failed to publish NATS event for listing created",
				zap.String("listing_id", listing.ID), zap.Error(err))
		}
	}
	uc.notifyCreated(ctx, session, listing)
	return listing, nil
}

// notifyCreated emails the sponsor. Failures are logged and never fail the creation.
func (uc *ListingUsecase) notifyCreated(ctx context.Context, session auth.Session, listing *domain.Listing) {
	if uc.notifier == nil {
		return
	}
	to := session.Email
	if to == "" && uc.users != nil {
		email, err := uc.users.GetEmailByID(ctx, session.UserID)
		if err != nil {
			uc.logger.Debug("Sponsor email lookup failed, using listing contact",
				zap.String("user_id", session.UserID), zap.Error(err))
		}
		to = email
	}
	if to == "" {
		to = listing.Contact.Email
	}
	if err := uc.notifier.SendListingCreated(ctx, to, listing); err != nil {
		uc.logger.Warn("Failed to send listing created email",
			zap.String("listing_id", listing.ID), zap.Error(err))
	}
}

func (uc *ListingUsecase) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.GetListing")
	defer span.End()

	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrListingNotFound) {
			uc.logger.Error("ListingUsecase.GetListing: failed to find listing", zap.String("listing_id", id), zap.Error(err))
		}
		return nil, fmt.Errorf("ListingUsecase.GetListing: %w", err)
	}
	return listing, nil
}

// ownedListing loads id and checks that session is its author.
func (uc *ListingUsecase) ownedListing(ctx context.Context, session auth.Session, id, op string) (*domain.Listing, error) {
	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrListingNotFound) {
			uc.logger.Error(op+": failed to find listing", zap.String("listing_id", id), zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !listing.IsAuthor(session.UserID) {
		uc.logger.Warn(op+": forbidden",
			zap.String("listing_id", id),
			zap.String("listing_owner_id", listing.AuthorID),
			zap.String("user_id", session.UserID))
		return nil, domain.ErrForbidden
	}
	return listing, nil
}

// expireIfStale persists the Expired status for a stale listing and reports whether it did.
func (uc *ListingUsecase) expireIfStale(ctx context.Context, listing *domain.Listing, op string) (bool, error) {
	now := uc.now()
	if !listing.IsStale(now) {
		return false, nil
	}
	if err := listing.Expire(now); err != nil {
		return false, err
	}
	if err := uc.repo.Update(ctx, listing); err != nil {
		uc.logger.Error(op+": failed to persist expiry", zap.String("listing_id", listing.ID), zap.Error(err))
		return false, fmt.Errorf("%s: %w", op, err)
	}
	uc.metrics.ListingsExpired(1)
	uc.invalidate(ctx, listing.CountryForInvestment)
	return true, nil
}

func (uc *ListingUsecase) UpdateListing(ctx context.Context, session auth.Session, id string, in ListingInput) (*domain.Listing, error) {
	const op = "ListingUsecase.UpdateListing"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	listing, err := uc.ownedListing(ctx, session, id, op)
	if err != nil {
		return nil, err
	}
	if listing.Status == domain.StatusExpired {
		return nil, domain.ErrListingExpired
	}
	if expired, err := uc.expireIfStale(ctx, listing, op); err != nil {
		return nil, err
	} else if expired {
		return nil, domain.ErrListingExpired
	}
	if err := uc.input.check(&in); err != nil {
		return nil, err
	}

	previousCountry := listing.CountryForInvestment
	in.apply(listing)
	listing.UpdatedAt = uc.now()
	if err := listing.Validate(); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, listing); err != nil {
		uc.logger.Error(op+": failed to update listing", zap.String("listing_id", id), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	uc.invalidate(ctx, previousCountry)
	if previousCountry != listing.CountryForInvestment {
		uc.invalidate(ctx, listing.CountryForInvestment)
	}
	if uc.events != nil {
		if err := uc.events.PublishListingUpdated(ctx, listing); err != nil {
			uc.logger.Warn("Failed to publish NATS event for listing updated", zap.String("listing_id", id), zap.Error(err))
		}
	}
	return listing, nil
}

func (uc *ListingUsecase) DeleteListing(ctx context.Context, session auth.Session, id string) error {
	const op = "ListingUsecase.DeleteListing"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	listing, err := uc.ownedListing(ctx, session, id, op)
	if err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		uc.logger.Error(op+": failed to delete listing", zap.String("listing_id", id), zap.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	uc.logger.Info(op+": listing deleted", zap.String("listing_id", id), zap.String("user_id", session.UserID))

	uc.invalidate(ctx, listing.CountryForInvestment)
	if uc.events != nil {
		if err := uc.events.PublishListingDeleted(ctx, id); err != nil {
			uc.logger.Warn("Failed to publish NATS event for listing deleted", zap.String("listing_id", id), zap.Error(err))
		}
	}
	return nil
}

// SetStatus applies a sponsor-requested status change. A listing past its lifetime is
// expired instead and ErrListingExpired returned.
func (uc *ListingUsecase) SetStatus(ctx context.Context, session auth.Session, id string, target domain.ListingStatus) (*domain.Listing, error) {
	const op = "ListingUsecase.SetStatus"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.String("listing.id", id), attribute.String("listing.target_status", string(target)))

	listing, err := uc.ownedListing(ctx, session, id, op)
	if err != nil {
		return nil, err
	}
	if expired, err := uc.expireIfStale(ctx, listing, op); err != nil {
		return nil, err
	} else if expired {
		return nil, domain.ErrListingExpired
	}

	from := listing.Status
	if err := listing.TransitionTo(target, uc.now()); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, listing); err != nil {
		uc.logger.Error(op+": failed to update listing", zap.String("listing_id", id), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	uc.logger.Info(op+": status changed",
		zap.String("listing_id", id), zap.String("from", string(from)), zap.String("to", string(target)))

	uc.metrics.StatusChanged(string(target))
	uc.invalidate(ctx, listing.CountryForInvestment)
	if uc.events != nil {
		if err := uc.events.PublishListingStatusChanged(ctx, listing, from); err != nil {
			uc.logger.Warn("Failed to publish NATS event for status change", zap.String("listing_id", id), zap.Error(err))
		}
	}
	return listing, nil
}

// MyListings expires the caller's stale listings and then returns all of them, newest first.
// If the expiry update fails nothing is returned.
func (uc *ListingUsecase) MyListings(ctx context.Context, session auth.Session) ([]*domain.Listing, error) {
	const op = "ListingUsecase.MyListings"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	if session.UserID == "" {
		return nil, domain.ErrForbidden
	}

	expired, err := uc.repo.ExpireStale(ctx, session.UserID, domain.ExpiryCutoff(uc.now()))
	if err != nil {
		uc.logger.Error(op+": failed to expire stale listings", zap.String("user_id", session.UserID), zap.Error(err))
		return nil, fmt.Errorf("%s: expire stale listings: %w", op, err)
	}
	if expired > 0 {
		uc.logger.Info(op+": expired stale listings", zap.String("user_id", session.UserID), zap.Int64("count", expired))
		uc.metrics.ListingsExpired(expired)
		if uc.events != nil {
			if err := uc.events.PublishListingsExpired(ctx, session.UserID, expired); err != nil {
				uc.logger.Warn("Failed to publish NATS event for expired listings", zap.Error(err))
			}
		}
	}

	listings, err := uc.repo.FindByAuthor(ctx, session.UserID)
	if err != nil {
		uc.logger.Error(op+": failed to find listings", zap.String("user_id", session.UserID), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return listings, nil
}

// ExpireAll expires stale listings of every author.
func (uc *ListingUsecase) ExpireAll(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.ExpireAll")
	defer span.End()

	n, err := uc.repo.ExpireStale(ctx, "", domain.ExpiryCutoff(uc.now()))
	if err != nil {
		return 0, fmt.Errorf("ListingUsecase.ExpireAll: %w", err)
	}
	if n > 0 {
		uc.metrics.ListingsExpired(n)
		if uc.events != nil {
			if err := uc.events.PublishListingsExpired(ctx, "", n); err != nil {
				uc.logger.Warn("Failed to publish NATS event for expired listings", zap.Error(err))
			}
		}
	}
	return n, nil
}

// FindByCountry returns the searchable listings of country, reading through the cache.
func (uc *ListingUsecase) FindByCountry(ctx context.Context, country string) ([]*domain.Listing, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.FindByCountry")
	defer span.End()

	country = strings.TrimSpace(country)
	if country == "" {
		return nil, fmt.Errorf("%w: country is required", domain.ErrInvalidListingData)
	}
	now := uc.now()

	if uc.cache != nil {
		cached, err := uc.cache.GetCountry(ctx, country)
		if err != nil {
			uc.logger.Warn("Failed to read country listings from cache", zap.String("country", country), zap.Error(err))
		} else if cached != nil {
			uc.logger.Debug("Country listings served from cache", zap.String("country", country))
			return dropStale(cached, now), nil
		}
	}

	listings, err := uc.repo.FindByCountry(ctx, country, domain.ExpiryCutoff(now))
	if err != nil {
		uc.logger.Error("ListingUsecase.FindByCountry: failed to fetch listings", zap.String("country", country), zap.Error(err))
		return nil, fmt.Errorf("ListingUsecase.FindByCountry: %w", err)
	}
	if listings == nil {
		listings = []*domain.Listing{}
	}

	if uc.cache != nil {
		if err := uc.cache.SetCountry(ctx, country, listings); err != nil {
			uc.logger.Warn("Failed to cache country listings", zap.String("country", country), zap.Error(err))
		}
	}
	return listings, nil
}

func dropStale(listings []*domain.Listing, now time.Time) []*domain.Listing {
	out := make([]*domain.Listing, 0, len(listings))
	for _, l := range listings {
		if l.Status == domain.StatusPublished && !l.IsStale(now) {
			out = append(out, l)
		}
	}
	return out
}

type SearchQuery struct {
	Country  string
	Industry string
	Sort     string
	Page     int
}

// SearchByCountry builds one result page of a country's listings.
func (uc *ListingUsecase) SearchByCountry(ctx context.Context, q SearchQuery) (search.Page, error) {
	ctx, span := tracer.Start(ctx, "ListingUsecase.SearchByCountry")
	defer span.End()
	span.SetAttributes(attribute.String("search.country", q.Country), attribute.Int("search.page", q.Page))

	empty := search.Page{Items: []*domain.Listing{}, CurrentPage: 1}
	sortOption, err := search.ParseSortOption(q.Sort)
	if err != nil {
		return empty, err
	}
	listings, err := uc.FindByCountry(ctx, q.Country)
	if err != nil {
		return empty, err
	}
	return search.BuildPage(listings, search.Options{
		Industry:   domain.Industry(q.Industry),
		Sort:       sortOption,
		Page:       q.Page,
		PageSize:   uc.opts.pageSize,
		LegacySort: uc.opts.legacySort,
	})
}

func (uc *ListingUsecase) invalidate(ctx context.Context, country string) {
	if uc.cache == nil || country == "" {
		return
	}
	if err := uc.cache.InvalidateCountry(ctx, country); err != nil {
		uc.logger.Warn("Failed to invalidate country cache", zap.String("country", country), zap.Error(err))
	}
}
