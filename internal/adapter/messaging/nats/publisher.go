package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/FaizanHaider108/lookvisa/internal/config"
	"github.com/FaizanHaider108/lookvisa/internal/listing/domain"
	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	ListingCreatedSubject       = "listing.created"
	ListingUpdatedSubject       = "listing.updated"
	ListingStatusChangedSubject = "listing.status_changed"
	ListingDeletedSubject       = "listing.deleted"
	ListingsExpiredSubject      = "listing.expired"
)

type StatusChangedPayload struct {
	ID         string               `json:"id"`
	AuthorID   string               `json:"authorId"`
	Country    string               `json:"countryForInvestment"`
	From       domain.ListingStatus `json:"from"`
	To         domain.ListingStatus `json:"to"`
	OccurredAt time.Time            `json:"occurredAt"`
}

type DeletedPayload struct {
	ID string `json:"id"`
}

type ExpiredPayload struct {
	AuthorID string `json:"authorId,omitempty"`
	Count    int64  `json:"count"`
}

type Publisher struct {
	nc     *nats.Conn
	logger *logger.Logger
}

func NewPublisher(cfg *config.NATSConfig, serviceName string, log *logger.Logger) (*Publisher, error) {
	log = log.Named("nats_publisher")
	opts := []nats.Option{
		nats.Name(serviceName),
		nats.Timeout(cfg.ConnectTimeout),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			log.Error("NATS error", zap.String("subject", subject), zap.Error(err))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info("Successfully connected to NATS", zap.String("url", nc.ConnectedUrl()))
	return &Publisher{nc: nc, logger: log}, nil
}

func (p *Publisher) publish(subject string, payload interface{}, fields ...zap.Field) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for %s: %w", subject, err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Error("Failed to publish NATS message", append(fields, zap.String("subject", subject), zap.Error(err))...)
		return fmt.Errorf("failed to publish NATS message for %s: %w", subject, err)
	}
	p.logger.Debug("Published NATS message", append(fields, zap.String("subject", subject))...)
	return nil
}

func (p *Publisher) PublishListingCreated(_ context.Context, listing *domain.Listing) error {
	return p.publish(ListingCreatedSubject, listing, zap.String("listing_id", listing.ID))
}

func (p *Publisher) PublishListingUpdated(_ context.Context, listing *domain.Listing) error {
	return p.publish(ListingUpdatedSubject, listing, zap.String("listing_id", listing.ID))
}

func (p *Publisher) PublishListingStatusChanged(_ context.Context, listing *domain.Listing, from domain.ListingStatus) error {
	return p.publish(ListingStatusChangedSubject, StatusChangedPayload{
		ID:         listing.ID,
		AuthorID:   listing.AuthorID,
		Country:    listing.CountryForInvestment,
		From:       from,
		To:         listing.Status,
		OccurredAt: listing.UpdatedAt,
	}, zap.String("listing_id", listing.ID))
}

func (p *Publisher) PublishListingDeleted(_ context.Context, listingID string) error {
	return p.publish(ListingDeletedSubject, DeletedPayload{ID: listingID}, zap.String("listing_id", listingID))
}

func (p *Publisher) PublishListingsExpired(_ context.Context, authorID string, count int64) error {
	return p.publish(ListingsExpiredSubject, ExpiredPayload{AuthorID: authorID, Count: count},
		zap.String("author_id", authorID), zap.Int64("count", count))
}

// Close drains pending messages before closing the connection.
func (p *Publisher) Close() {
	if p.nc == nil || p.nc.IsClosed() {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.logger.Warn("NATS drain failed, closing", zap.Error(err))
		p.nc.Close()
	}
}
