package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/FaizanHaider108/lookvisa/internal/auth"
	"github.com/FaizanHaider108/lookvisa/internal/listing/domain"
	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"go.uber.org/zap"
)

type AttachmentUsecase struct {
	storage Storage
	repo    domain.ListingRepository
	cache   ListingCache
	logger  *logger.Logger
	opts    options
}

func NewAttachmentUsecase(storage Storage, repo domain.ListingRepository, cache ListingCache, log *logger.Logger, opts ...Option) *AttachmentUsecase {
	return &AttachmentUsecase{
		storage: storage,
		repo:    repo,
		cache:   cache,
		logger:  log.Named("attachment_usecase"),
		opts:    buildOptions(opts),
	}
}

// AddAttachment uploads a file and appends its reference to the listing. A listing
// that already holds MaxAttachments is refused before anything is uploaded.
func (uc *AttachmentUsecase) AddAttachment(ctx context.Context, session auth.Session, listingID, fileName string, data []byte) (string, error) {
	const op = "AttachmentUsecase.AddAttachment"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	listing, err := uc.repo.FindByID(ctx, listingID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if !listing.IsAuthor(session.UserID) {
		return "", domain.ErrForbidden
	}
	if listing.Status == domain.StatusExpired || listing.IsStale(uc.opts.now().UTC()) {
		return "", domain.ErrListingExpired
	}
	if len(listing.Attachments) >= domain.MaxAttachments {
		return "", domain.ErrTooManyAttachments
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty attachment", domain.ErrInvalidListingData)
	}

	ref, err := uc.storage.Upload(ctx, fileName, data)
	if err != nil {
		uc.logger.Error(op+": upload failed", zap.String("listing_id", listingID), zap.Error(err))
		return "", fmt.Errorf("%s: upload: %w", op, err)
	}

	if err := uc.repo.PushAttachment(ctx, listingID, ref); err != nil {
		// a concurrent upload may have taken the last slot
		if delErr := uc.storage.Delete(ctx, ref); delErr != nil {
			uc.logger.Warn(op+": failed to remove orphaned upload", zap.String("ref", ref), zap.Error(delErr))
		}
		if errors.Is(err, domain.ErrTooManyAttachments) || errors.Is(err, domain.ErrListingNotFound) {
			return "", err
		}
		uc.logger.Error(op+": failed to attach upload", zap.String("listing_id", listingID), zap.Error(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if uc.cache != nil {
		if err := uc.cache.InvalidateCountry(ctx, listing.CountryForInvestment); err != nil {
			uc.logger.Warn("Failed to invalidate country cache", zap.String("country", listing.CountryForInvestment), zap.Error(err))
		}
	}
	uc.logger.Info(op+": attachment added", zap.String("listing_id", listingID), zap.String("ref", ref))
	return ref, nil
}
