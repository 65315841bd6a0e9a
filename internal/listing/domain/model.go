package domain

import (
	"fmt"
	"strings"
	"time"
)

type ListingStatus string

const (
	StatusDraft       ListingStatus = "Draft"
	StatusPublished   ListingStatus = "Published"
	StatusUnpublished ListingStatus = "Unpublished"
	StatusExpired     ListingStatus = "Expired"
)

func (s ListingStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusUnpublished, StatusExpired:
		return true
	}
	return false
}

const (
	// MaxAttachments is the upper bound on Listing.Attachments.
	MaxAttachments = 3
	// ListingLifetime is how long a listing stays live after creation.
	ListingLifetime = 30 * 24 * time.Hour
)

type Industry string

const (
	IndustryAgriculture    Industry = "Agriculture"
	IndustryConstruction   Industry = "Construction"
	IndustryEducation      Industry = "Education"
	IndustryEnergy         Industry = "Energy"
	IndustryFinance        Industry = "Finance"
	IndustryHealthcare     Industry = "Healthcare"
	IndustryHospitality    Industry = "Hospitality"
	IndustryIT             Industry = "Information Technology"
	IndustryManufacturing  Industry = "Manufacturing"
	IndustryMining         Industry = "Mining"
	IndustryRealEstate     Industry = "Real Estate"
	IndustryRetail         Industry = "Retail"
	IndustryTourism        Industry = "Tourism"
	IndustryTransportation Industry = "Transportation"
	IndustryOther          Industry = "Other"
)

var industries = []Industry{
	IndustryAgriculture, IndustryConstruction, IndustryEducation, IndustryEnergy,
	IndustryFinance, IndustryHealthcare, IndustryHospitality, IndustryIT,
	IndustryManufacturing, IndustryMining, IndustryRealEstate, IndustryRetail,
	IndustryTourism, IndustryTransportation, IndustryOther,
}

// Industries returns the accepted industry values in display order.
func Industries() []Industry {
	out := make([]Industry, len(industries))
	copy(out, industries)
	return out
}

func (i Industry) IsValid() bool {
	for _, known := range industries {
		if i == known {
			return true
		}
	}
	return false
}

type Contact struct {
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Telegram string `json:"telegram,omitempty"`
	WhatsApp string `json:"whatsapp,omitempty"`
}

// DailyImpression counts impressions for one UTC calendar day.
type DailyImpression struct {
	Date        time.Time `json:"date"`
	Impressions int64     `json:"impressions"`
}

type Listing struct {
	ID                     string            `json:"id"`
	AuthorID               string            `json:"authorId"`
	CountryForInvestment   string            `json:"countryForInvestment"`
	SponsorshipDescription string            `json:"sponsorShipDescription"`
	InvestmentIndustry     Industry          `json:"investmentIndustry"`
	ProjectDescription     string            `json:"projectDescription"`
	MinimumInvestment      string            `json:"minimumInvestment"`
	CountriesForInvestors  []string          `json:"countriesForInvestors"`
	InvestmentTimetable    time.Time         `json:"investmentTimeTable"`
	Contact                Contact           `json:"contact"`
	Attachments            []string          `json:"attachments"`
	Status                 ListingStatus     `json:"status"`
	PublishedAt            *time.Time        `json:"publishedAt,omitempty"`
	ExpiresAt              *time.Time        `json:"expiresAt,omitempty"`
	CreatedAt              time.Time         `json:"createdAt"`
	UpdatedAt              time.Time         `json:"updatedAt"`
	Impressions            int64             `json:"impressions"`
	Clicks                 int64             `json:"clicks"`
	DailyImpressions       []DailyImpression `json:"dailyImpressions,omitempty"`
}

// Validate checks the invariants every stored listing must satisfy.
func (l *Listing) Validate() error {
	var missing []string
	if strings.TrimSpace(l.AuthorID) == "" {
		missing = append(missing, "author")
	}
	if strings.TrimSpace(l.CountryForInvestment) == "" {
		missing = append(missing, "countryForInvestment")
	}
	if strings.TrimSpace(l.SponsorshipDescription) == "" {
		missing = append(missing, "sponsorShipDescription")
	}
	if strings.TrimSpace(l.ProjectDescription) == "" {
		missing = append(missing, "projectDescription")
	}
	if strings.TrimSpace(l.MinimumInvestment) == "" {
		missing = append(missing, "minimumInvestment")
	}
	if len(l.CountriesForInvestors) == 0 {
		missing = append(missing, "countriesForInvestors")
	}
	if l.InvestmentTimetable.IsZero() {
		missing = append(missing, "investmentTimeTable")
	}
	if strings.TrimSpace(l.Contact.Email) == "" {
		missing = append(missing, "contact.email")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidListingData, strings.Join(missing, ", "))
	}
	if !l.InvestmentIndustry.IsValid() {
		return fmt.Errorf("%w: unknown industry %q", ErrInvalidListingData, l.InvestmentIndustry)
	}
	if !l.Status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidListingData, l.Status)
	}
	if len(l.Attachments) > MaxAttachments {
		return ErrTooManyAttachments
	}
	return nil
}

// IsAuthor reports whether userID owns the listing.
func (l *Listing) IsAuthor(userID string) bool {
	return userID != "" && l.AuthorID == userID
}
