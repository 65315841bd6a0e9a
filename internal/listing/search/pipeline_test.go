package search

import (
	"fmt"
	"testing"
	"time"

	"github.com/FaizanHaider108/lookvisa/internal/listing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listing(id string, industry domain.Industry, amount string, published *time.Time) *domain.Listing {
	return &domain.Listing{
		ID:                 id,
		InvestmentIndustry: industry,
		MinimumInvestment:  amount,
		PublishedAt:        published,
		Status:             domain.StatusPublished,
	}
}

func ids(listings []*domain.Listing) []string {
	out := make([]string, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.ID)
	}
	return out
}

func at(day int) *time.Time {
	t := time.Date(2024, 5, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func manyListings(n int) []*domain.Listing {
	out := make([]*domain.Listing, n)
	for i := range out {
		out[i] = listing(fmt.Sprintf("l%02d", i), domain.IndustryEnergy, "100", nil)
	}
	return out
}

func TestFilterByIndustry_PreservesOrder(t *testing.T) {
	in := []*domain.Listing{
		listing("a", domain.IndustryEnergy, "", nil),
		listing("b", domain.IndustryMining, "", nil),
		listing("c", domain.IndustryEnergy, "", nil),
	}

	assert.Equal(t, []string{"a", "c"}, ids(FilterByIndustry(in, domain.IndustryEnergy)))
	assert.Equal(t, []string{"a", "b", "c"}, ids(FilterByIndustry(in, "")))
	assert.Empty(t, FilterByIndustry(in, "energy"), "filter is case sensitive")
}

func TestSortListings_Amount(t *testing.T) {
	in := []*domain.Listing{
		listing("two-million", domain.IndustryEnergy, "2 million", nil),
		listing("half-million", domain.IndustryEnergy, "500,000", nil),
	}

	asc, err := SortListings(in, SortAmountAsc, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"half-million", "two-million"}, ids(asc))

	desc, err := SortListings(in, SortAmountDesc, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"two-million", "half-million"}, ids(desc))

	assert.Equal(t, []string{"two-million", "half-million"}, ids(in), "input is not reordered")
}

func TestSortListings_LegacyLabelsInvert(t *testing.T) {
	in := []*domain.Listing{
		listing("two-million", domain.IndustryEnergy, "2 million", nil),
		listing("half-million", domain.IndustryEnergy, "500,000", nil),
	}

	asc, err := SortListings(in, SortAmountAsc, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"two-million", "half-million"}, ids(asc))

	desc, err := SortListings(in, SortAmountDesc, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"half-million", "two-million"}, ids(desc))
}

func TestSortListings_DateWithMissingPublishedAt(t *testing.T) {
	in := []*domain.Listing{
		listing("may-10", domain.IndustryEnergy, "", at(10)),
		listing("never", domain.IndustryEnergy, "", nil),
		listing("may-2", domain.IndustryEnergy, "", at(2)),
	}

	asc, err := SortListings(in, SortDateAsc, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"never", "may-2", "may-10"}, ids(asc))

	desc, err := SortListings(in, SortDateDesc, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"may-10", "may-2", "never"}, ids(desc))
}

func TestSortListings_StableForEqualKeys(t *testing.T) {
	in := []*domain.Listing{
		listing("first", domain.IndustryEnergy, "1 million", nil),
		listing("cheap", domain.IndustryEnergy, "10", nil),
		listing("second", domain.IndustryEnergy, "1,000,000", nil),
		listing("third", domain.IndustryEnergy, "$1 million", nil),
	}

	out, err := SortListings(in, SortAmountDesc, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third", "cheap"}, ids(out))
}

func TestSortListings_UnknownOption(t *testing.T) {
	_, err := SortListings(nil, SortOption("priceAsc"), false)
	assert.ErrorIs(t, err, domain.ErrInvalidSortOption)
}

func TestPaginate(t *testing.T) {
	all := manyListings(23)

	items, total, current := Paginate(all, 1, 10)
	assert.Len(t, items, 10)
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, current)

	items, _, _ = Paginate(all, 3, 10)
	assert.Equal(t, []string{"l20", "l21", "l22"}, ids(items))

	items, _, current = Paginate(all, 0, 10)
	assert.Equal(t, 1, current)
	assert.Equal(t, "l00", items[0].ID)

	items, total, current = Paginate(all, 4, 10)
	assert.Empty(t, items)
	assert.Equal(t, 3, total)
	assert.Equal(t, 4, current)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(1, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
}

func TestBuildPage(t *testing.T) {
	in := append(manyListings(12), listing("mining", domain.IndustryMining, "5 million", at(1)))

	page, err := BuildPage(in, Options{Industry: domain.IndustryEnergy, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, []string{"l10", "l11"}, ids(page.Items))

	page, err = BuildPage(in, Options{Industry: domain.IndustryHealthcare})
	require.NoError(t, err)
	assert.Equal(t, 0, page.TotalPages)
	assert.Empty(t, page.Items)

	_, err = BuildPage(in, Options{Sort: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidSortOption)
}

func TestParseSortOption(t *testing.T) {
	for _, s := range []string{"", "investmentAmountAsc", "investmentAmountDesc", "datePostedAsc", "datePostedDesc"} {
		opt, err := ParseSortOption(s)
		require.NoError(t, err)
		assert.Equal(t, SortOption(s), opt)
	}
	_, err := ParseSortOption("newest")
	assert.ErrorIs(t, err, domain.ErrInvalidSortOption)
}
