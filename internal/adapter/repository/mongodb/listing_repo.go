package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/FaizanHaider108/lookvisa/internal/listing/domain"
	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const listingsCollection = "listings"

type ListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewListingRepository(db *mongo.Database, log *logger.Logger) *ListingRepository {
	return &ListingRepository{
		collection: db.Collection(listingsCollection),
		logger:     log.Named("listing_repository"),
	}
}

// objectID parses a listing id. Malformed ids cannot exist in the collection,
// so they are reported as not found.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrListingNotFound
	}
	return oid, nil
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	if err := listing.Validate(); err != nil {
		return err
	}
	doc, err := toListingDocument(listing)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to insert listing", zap.Error(err))
		return fmt.Errorf("ListingRepository.Create: %w", err)
	}
	listing.ID = doc.ID.Hex()
	return nil
}

// Update writes the editable fields and the lifecycle state. Counters and the
// author are never overwritten.
func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	if err := listing.Validate(); err != nil {
		return err
	}
	doc, err := toListingDocument(listing)
	if err != nil {
		return domain.ErrListingNotFound
	}

	set := bson.M{
		"country_for_investment":  doc.CountryForInvestment,
		"sponsorship_description": doc.SponsorshipDescription,
		"investment_industry":     doc.InvestmentIndustry,
		"project_description":     doc.ProjectDescription,
		"minimum_investment":      doc.MinimumInvestment,
		"countries_for_investors": doc.CountriesForInvestors,
		"investment_timetable":    doc.InvestmentTimetable,
		"contact":                 doc.Contact,
		"attachments":             doc.Attachments,
		"status":                  doc.Status,
		"published_at":            doc.PublishedAt,
		"expires_at":              doc.ExpiresAt,
		"updated_at":              doc.UpdatedAt,
	}
	filter := bson.M{"_id": doc.ID}
	if listing.Status != domain.StatusExpired {
		// a concurrent batch expiry wins over a stale in-memory status
		filter["status"] = bson.M{"$ne": string(domain.StatusExpired)}
	}

	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		r.logger.Error("Failed to update listing", zap.String("listing_id", listing.ID), zap.Error(err))
		return fmt.Errorf("ListingRepository.Update: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.missingOrExpired(ctx, doc.ID)
	}
	return nil
}

func (r *ListingRepository) missingOrExpired(ctx context.Context, oid primitive.ObjectID) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("ListingRepository: %w", err)
	}
	if n == 0 {
		return domain.ErrListingNotFound
	}
	return domain.ErrListingExpired
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.logger.Error("Failed to delete listing", zap.String("listing_id", id), zap.Error(err))
		return fmt.Errorf("ListingRepository.Delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc listingDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		r.logger.Error("Failed to find listing", zap.String("listing_id", id), zap.Error(err))
		return nil, fmt.Errorf("ListingRepository.FindByID: %w", err)
	}
	return toDomainListing(&doc), nil
}

func (r *ListingRepository) FindByAuthor(ctx context.Context, authorID string) ([]*domain.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"author_id": authorID}, opts)
}

func (r *ListingRepository) FindByCountry(ctx context.Context, country string, cutoff time.Time) ([]*domain.Listing, error) {
	filter := bson.M{
		"country_for_investment": country,
		"status":                 string(domain.StatusPublished),
		"created_at":             bson.M{"$gt": cutoff},
	}
	opts := options.Find().SetSort(bson.D{{Key: "published_at", Value: -1}, {Key: "_id", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *ListingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Listing, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to query listings", zap.Any("filter", filter), zap.Error(err))
		return nil, fmt.Errorf("ListingRepository.find: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("ListingRepository.find: decode: %w", err)
	}
	return toDomainListings(docs), nil
}

func (r *ListingRepository) ExpireStale(ctx context.Context, authorID string, cutoff time.Time) (int64, error) {
	filter := bson.M{
		"created_at": bson.M{"$lte": cutoff},
		"status":     bson.M{"$ne": string(domain.StatusExpired)},
	}
	if authorID != "" {
		filter["author_id"] = authorID
	}
	update := bson.M{"$set": bson.M{
		"status":     string(domain.StatusExpired),
		"updated_at": time.Now().UTC(),
	}}

	res, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to expire stale listings", zap.String("author_id", authorID), zap.Error(err))
		return 0, fmt.Errorf("ListingRepository.ExpireStale: %w", err)
	}
	return res.ModifiedCount, nil
}

// PushAttachment appends ref unless the listing already holds MaxAttachments.
func (r *ListingRepository) PushAttachment(ctx context.Context, id, ref string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	filter := bson.M{
		"_id": oid,
		fmt.Sprintf("attachments.%d", domain.MaxAttachments-1): bson.M{"$exists": false},
	}
	update := bson.M{
		"$push": bson.M{"attachments": ref},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("ListingRepository.PushAttachment: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := r.collection.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return fmt.Errorf("ListingRepository.PushAttachment: %w", err)
		}
		if n == 0 {
			return domain.ErrListingNotFound
		}
		return domain.ErrTooManyAttachments
	}
	return nil
}

// IncrementImpression bumps the lifetime counter and the bucket for day. The bucket
// is created by a conditional push so concurrent first impressions of a day still
// produce a single entry.
func (r *ListingRepository) IncrementImpression(ctx context.Context, id string, day time.Time) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	bump := func() (bool, error) {
		res, err := r.collection.UpdateOne(ctx,
			bson.M{"_id": oid, "daily_impressions.date": day},
			bson.M{"$inc": bson.M{"impressions": 1, "daily_impressions.$.impressions": 1}},
		)
		if err != nil {
			return false, err
		}
		return res.MatchedCount > 0, nil
	}

	if ok, err := bump(); err != nil {
		return fmt.Errorf("ListingRepository.IncrementImpression: %w", err)
	} else if ok {
		return nil
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "daily_impressions.date": bson.M{"$ne": day}},
		bson.M{
			"$inc":  bson.M{"impressions": 1},
			"$push": bson.M{"daily_impressions": dailyImpressionDocument{Date: day, Impressions: 1}},
		},
	)
	if err != nil {
		return fmt.Errorf("ListingRepository.IncrementImpression: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	// lost the race to create today's bucket
	if ok, err := bump(); err != nil {
		return fmt.Errorf("ListingRepository.IncrementImpression: %w", err)
	} else if ok {
		return nil
	}
	return domain.ErrListingNotFound
}

func (r *ListingRepository) IncrementClick(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"clicks": 1}})
	if err != nil {
		return fmt.Errorf("ListingRepository.IncrementClick: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}
