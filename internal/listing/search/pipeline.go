// Package search filters, orders and pages the listings of one country.
package search

import (
	"fmt"
	"sort"
	"time"

	"github.com/FaizanHaider108/lookvisa/internal/listing/domain"
)

// DefaultPageSize is the number of listings on one result page.
const DefaultPageSize = 10

type SortOption string

const (
	SortNone       SortOption = ""
	SortAmountAsc  SortOption = "investmentAmountAsc"
	SortAmountDesc SortOption = "investmentAmountDesc"
	SortDateAsc    SortOption = "datePostedAsc"
	SortDateDesc   SortOption = "datePostedDesc"
)

func ParseSortOption(s string) (SortOption, error) {
	switch opt := SortOption(s); opt {
	case SortNone, SortAmountAsc, SortAmountDesc, SortDateAsc, SortDateDesc:
		return opt, nil
	}
	return SortNone, fmt.Errorf("%w: %q", domain.ErrInvalidSortOption, s)
}

// Options controls BuildPage.
type Options struct {
	Industry domain.Industry
	Sort     SortOption
	Page     int
	PageSize int
	// LegacySort flips every ordering, matching the first web client whose
	// ascending labels sorted descending and vice versa.
	LegacySort bool
}

type Page struct {
	Items       []*domain.Listing `json:"items"`
	TotalPages  int               `json:"totalPages"`
	CurrentPage int               `json:"currentPage"`
	Total       int               `json:"total"`
}

// BuildPage runs filter, sort and paginate over listings. The input slice is not modified.
func BuildPage(listings []*domain.Listing, opts Options) (Page, error) {
	filtered := FilterByIndustry(listings, opts.Industry)
	sorted, err := SortListings(filtered, opts.Sort, opts.LegacySort)
	if err != nil {
		return Page{Items: []*domain.Listing{}, CurrentPage: 1}, err
	}
	items, totalPages, current := Paginate(sorted, opts.Page, opts.PageSize)
	return Page{
		Items:       items,
		TotalPages:  totalPages,
		CurrentPage: current,
		Total:       len(sorted),
	}, nil
}

// FilterByIndustry keeps listings whose industry equals industry exactly.
// An empty industry keeps everything.
func FilterByIndustry(listings []*domain.Listing, industry domain.Industry) []*domain.Listing {
	out := make([]*domain.Listing, 0, len(listings))
	for _, l := range listings {
		if industry == "" || l.InvestmentIndustry == industry {
			out = append(out, l)
		}
	}
	return out
}

// SortListings returns a stably sorted copy of listings.
func SortListings(listings []*domain.Listing, option SortOption, legacy bool) ([]*domain.Listing, error) {
	if _, err := ParseSortOption(string(option)); err != nil {
		return nil, err
	}
	out := make([]*domain.Listing, len(listings))
	copy(out, listings)
	if option == SortNone {
		return out, nil
	}

	ascending := option == SortAmountAsc || option == SortDateAsc
	if legacy {
		ascending = !ascending
	}

	switch option {
	case SortAmountAsc, SortAmountDesc:
		keys := make(map[*domain.Listing]float64, len(out))
		for _, l := range out {
			keys[l] = domain.ParseMinimumInvestment(l.MinimumInvestment)
		}
		sort.SliceStable(out, func(i, j int) bool {
			if ascending {
				return keys[out[i]] < keys[out[j]]
			}
			return keys[out[i]] > keys[out[j]]
		})
	case SortDateAsc, SortDateDesc:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := publishedAt(out[i]), publishedAt(out[j])
			if ascending {
				return a.Before(b)
			}
			return a.After(b)
		})
	}
	return out, nil
}

func publishedAt(l *domain.Listing) time.Time {
	if l.PublishedAt == nil {
		return time.Time{}
	}
	return *l.PublishedAt
}

// Paginate returns the requested page, the page count and the page actually served.
// Pages below 1 are served as page 1; a page past the end is empty.
func Paginate(listings []*domain.Listing, page, pageSize int) ([]*domain.Listing, int, int) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	totalPages := TotalPages(len(listings), pageSize)

	start := (page - 1) * pageSize
	if start >= len(listings) {
		return []*domain.Listing{}, totalPages, page
	}
	end := min(start+pageSize, len(listings))
	return listings[start:end], totalPages, page
}

func TotalPages(n, pageSize int) int {
	if n <= 0 || pageSize <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}
