package mongodb

import (
	"fmt"
	"time"

	"github.com/FaizanHaider108/lookvisa/internal/listing/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contactDocument struct {
	Email    string `bson:"email"`
	Phone    string `bson:"phone,omitempty"`
	Telegram string `bson:"telegram,omitempty"`
	WhatsApp string `bson:"whatsapp,omitempty"`
}

type dailyImpressionDocument struct {
	Date        time.Time `bson:"date"`
	Impressions int64     `bson:"impressions"`
}

type listingDocument struct {
	ID                     primitive.ObjectID        `bson:"_id,omitempty"`
	AuthorID               string                    `bson:"author_id"`
	CountryForInvestment   string                    `bson:"country_for_investment"`
	SponsorshipDescription string                    `bson:"sponsorship_description"`
	InvestmentIndustry     string                    `bson:"investment_industry"`
	ProjectDescription     string                    `bson:"project_description"`
	MinimumInvestment      string                    `bson:"minimum_investment"`
	CountriesForInvestors  []string                  `bson:"countries_for_investors"`
	InvestmentTimetable    time.Time                 `bson:"investment_timetable"`
	Contact                contactDocument           `bson:"contact"`
	Attachments            []string                  `bson:"attachments"`
	Status                 string                    `bson:"status"`
	PublishedAt            *time.Time                `bson:"published_at,omitempty"`
	ExpiresAt              *time.Time                `bson:"expires_at,omitempty"`
	CreatedAt              time.Time                 `bson:"created_at"`
	UpdatedAt              time.Time                 `bson:"updated_at"`
	Impressions            int64                     `bson:"impressions"`
	Clicks                 int64                     `bson:"clicks"`
	DailyImpressions       []dailyImpressionDocument `bson:"daily_impressions"`
}

// toListingDocument converts a domain listing. An empty ID stays NilObjectID so the
// insert generates one.
func toListingDocument(l *domain.Listing) (*listingDocument, error) {
	if l == nil {
		return nil, nil
	}

	docID := primitive.NilObjectID
	if l.ID != "" {
		var err error
		docID, err = primitive.ObjectIDFromHex(l.ID)
		if err != nil {
			return nil, fmt.Errorf("toListingDocument: invalid ID format '%s': %w", l.ID, err)
		}
	}

	attachments := l.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	daily := make([]dailyImpressionDocument, 0, len(l.DailyImpressions))
	for _, d := range l.DailyImpressions {
		daily = append(daily, dailyImpressionDocument{Date: d.Date, Impressions: d.Impressions})
	}

	return &listingDocument{
		ID:                     docID,
		AuthorID:               l.AuthorID,
		CountryForInvestment:   l.CountryForInvestment,
		SponsorshipDescription: l.SponsorshipDescription,
		InvestmentIndustry:     string(l.InvestmentIndustry),
		ProjectDescription:     l.ProjectDescription,
		MinimumInvestment:      l.MinimumInvestment,
		CountriesForInvestors:  l.CountriesForInvestors,
		InvestmentTimetable:    l.InvestmentTimetable,
		Contact: contactDocument{
			Email:    l.Contact.Email,
			Phone:    l.Contact.Phone,
			Telegram: l.Contact.Telegram,
			WhatsApp: l.Contact.WhatsApp,
		},
		Attachments:      attachments,
		Status:           string(l.Status),
		PublishedAt:      l.PublishedAt,
		ExpiresAt:        l.ExpiresAt,
		CreatedAt:        l.CreatedAt,
		UpdatedAt:        l.UpdatedAt,
		Impressions:      l.Impressions,
		Clicks:           l.Clicks,
		DailyImpressions: daily,
	}, nil
}

func toDomainListing(d *listingDocument) *domain.Listing {
	if d == nil {
		return nil
	}
	attachments := d.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	var daily []domain.DailyImpression
	for _, di := range d.DailyImpressions {
		daily = append(daily, domain.DailyImpression{Date: di.Date.UTC(), Impressions: di.Impressions})
	}
	return &domain.Listing{
		ID:                     d.ID.Hex(),
		AuthorID:               d.AuthorID,
		CountryForInvestment:   d.CountryForInvestment,
		SponsorshipDescription: d.SponsorshipDescription,
		InvestmentIndustry:     domain.Industry(d.InvestmentIndustry),
		ProjectDescription:     d.ProjectDescription,
		MinimumInvestment:      d.MinimumInvestment,
		CountriesForInvestors:  d.CountriesForInvestors,
		InvestmentTimetable:    d.InvestmentTimetable.UTC(),
		Contact: domain.Contact{
			Email:    d.Contact.Email,
			Phone:    d.Contact.Phone,
			Telegram: d.Contact.Telegram,
			WhatsApp: d.Contact.WhatsApp,
		},
		Attachments:      attachments,
		Status:           domain.ListingStatus(d.Status),
		PublishedAt:      utcPtr(d.PublishedAt),
		ExpiresAt:        utcPtr(d.ExpiresAt),
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
		Impressions:      d.Impressions,
		Clicks:           d.Clicks,
		DailyImpressions: daily,
	}
}

func toDomainListings(docs []*listingDocument) []*domain.Listing {
	out := make([]*domain.Listing, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toDomainListing(doc))
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
