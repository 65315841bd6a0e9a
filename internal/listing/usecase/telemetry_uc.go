package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/FaizanHaider108/lookvisa/internal/listing/domain"
	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"github.com/FaizanHaider108/lookvisa/internal/platform/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TelemetryUsecase records impressions and clicks. It satisfies search.TelemetrySink.
type TelemetryUsecase struct {
	repo    domain.ListingRepository
	metrics *metrics.MetricsManager
	logger  *logger.Logger
	opts    options
}

func NewTelemetryUsecase(repo domain.ListingRepository, m *metrics.MetricsManager, log *logger.Logger, opts ...Option) *TelemetryUsecase {
	return &TelemetryUsecase{
		repo:    repo,
		metrics: m,
		logger:  log.Named("telemetry_usecase"),
		opts:    buildOptions(opts),
	}
}

// IncrementImpression bumps the lifetime counter and today's daily bucket.
func (uc *TelemetryUsecase) IncrementImpression(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "TelemetryUsecase.IncrementImpression",
		oteltrace.WithAttributes(attribute.String("listing.id", id)))
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return domain.ErrListingNotFound
	}
	if err := uc.repo.IncrementImpression(ctx, id, domain.DayOf(uc.opts.now())); err != nil {
		span.SetStatus(codes.Error, err.Error())
		if !errors.Is(err, domain.ErrListingNotFound) {
			uc.logger.Error("TelemetryUsecase.IncrementImpression: failed", zap.String("listing_id", id), zap.Error(err))
		}
		return fmt.Errorf("TelemetryUsecase.IncrementImpression: %w", err)
	}
	uc.metrics.ImpressionRecorded()
	return nil
}

func (uc *TelemetryUsecase) IncrementClick(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "TelemetryUsecase.IncrementClick",
		oteltrace.WithAttributes(attribute.String("listing.id", id)))
	defer span.End()

	if strings.TrimSpace(id) == "" {
		return domain.ErrListingNotFound
	}
	if err := uc.repo.IncrementClick(ctx, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		if !errors.Is(err, domain.ErrListingNotFound) {
			uc.logger.Error("TelemetryUsecase.IncrementClick: failed", zap.String("listing_id", id), zap.Error(err))
		}
		return fmt.Errorf("TelemetryUsecase.IncrementClick: %w", err)
	}
	uc.metrics.ClickRecorded()
	return nil
}
