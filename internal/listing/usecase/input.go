package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/FaizanHaider108/lookvisa/internal/listing/domain"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// ListingInput is the editable part of a listing as submitted by its sponsor.
type ListingInput struct {
	CountryForInvestment   string    `json:"countryForInvestment" validate:"required,max=100"`
	SponsorshipDescription string    `json:"sponsorShipDescription" validate:"required,max=5000"`
	InvestmentIndustry     string    `json:"investmentIndustry" validate:"required,industry"`
	ProjectDescription     string    `json:"projectDescription" validate:"required,max=10000"`
	MinimumInvestment      string    `json:"minimumInvestment" validate:"required,max=200"`
	CountriesForInvestors  []string  `json:"countriesForInvestors" validate:"required,min=1,dive,required,max=100"`
	InvestmentTimetable    time.Time `json:"investmentTimeTable"`
	ContactEmail           string    `json:"contactEmail" validate:"required,email"`
	ContactPhone           string    `json:"contactPhone" validate:"omitempty,max=50"`
	Telegram               string    `json:"telegram" validate:"omitempty,max=100"`
	WhatsApp               string    `json:"whatsapp" validate:"omitempty,max=50"`
	Attachments            []string  `json:"attachments" validate:"max=3,dive,required"`
}

type inputValidator struct {
	validate *validator.Validate
	policy   *bluemonday.Policy
}

func newInputValidator() *inputValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("industry", func(fl validator.FieldLevel) bool {
		return domain.Industry(fl.Field().String()).IsValid()
	})
	return &inputValidator{validate: v, policy: bluemonday.StrictPolicy()}
}

// check sanitizes free text in place and validates the result.
func (iv *inputValidator) check(in *ListingInput) error {
	if len(in.Attachments) > domain.MaxAttachments {
		return domain.ErrTooManyAttachments
	}

	in.CountryForInvestment = strings.TrimSpace(in.CountryForInvestment)
	in.SponsorshipDescription = strings.TrimSpace(iv.policy.Sanitize(in.SponsorshipDescription))
	in.ProjectDescription = strings.TrimSpace(iv.policy.Sanitize(in.ProjectDescription))
	in.MinimumInvestment = strings.TrimSpace(iv.policy.Sanitize(in.MinimumInvestment))
	in.ContactEmail = strings.TrimSpace(in.ContactEmail)

	if err := iv.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", domain.ErrInvalidListingData, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidListingData, err)
	}
	if in.InvestmentTimetable.IsZero() {
		return fmt.Errorf("%w: investmentTimeTable is required", domain.ErrInvalidListingData)
	}
	return nil
}

// apply copies the input onto l.
func (in *ListingInput) apply(l *domain.Listing) {
	l.CountryForInvestment = in.CountryForInvestment
	l.SponsorshipDescription = in.SponsorshipDescription
	l.InvestmentIndustry = domain.Industry(in.InvestmentIndustry)
	l.ProjectDescription = in.ProjectDescription
	l.MinimumInvestment = in.MinimumInvestment
	l.CountriesForInvestors = append([]string(nil), in.CountriesForInvestors...)
	l.InvestmentTimetable = in.InvestmentTimetable.UTC()
	l.Contact = domain.Contact{
		Email:    in.ContactEmail,
		Phone:    in.ContactPhone,
		Telegram: in.Telegram,
		WhatsApp: in.WhatsApp,
	}
	if in.Attachments != nil {
		l.Attachments = append([]string(nil), in.Attachments...)
	}
}
