package search

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/FaizanHaider108/lookvisa/internal/listing/domain"
	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) FindByCountry(ctx context.Context, country string) ([]*domain.Listing, error) {
	args := m.Called(ctx, country)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Listing), args.Error(1)
}

// recordingSink counts telemetry calls per listing id.
type recordingSink struct {
	mu          sync.Mutex
	impressions map[string]int
	clicks      map[string]int
	err         error
}

func newRecordingSink() *recordingSink {
	return &recordingSink{impressions: map[string]int{}, clicks: map[string]int{}}
}

func (s *recordingSink) IncrementImpression(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.impressions[id]++
	return s.err
}

func (s *recordingSink) IncrementClick(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clicks[id]++
	return s.err
}

func (s *recordingSink) impressionCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.impressions[id]
}

func (s *recordingSink) clickCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clicks[id]
}

func TestBrowser_ImpressionsOncePerListing(t *testing.T) {
	source := new(MockSource)
	source.On("FindByCountry", mock.Anything, "Portugal").Return(manyListings(15), nil)
	sink := newRecordingSink()
	b := NewBrowser(source, sink, logger.NewNop())

	require.NoError(t, b.SelectCountry(context.Background(), "Portugal"))
	b.Visible(context.Background())
	b.Visible(context.Background())
	require.True(t, b.NextPage())
	b.Visible(context.Background())
	require.True(t, b.PrevPage())
	b.Visible(context.Background())
	b.Wait()

	for _, l := range manyListings(15) {
		assert.Equal(t, 1, sink.impressionCount(l.ID), l.ID)
	}
}

func TestBrowser_ClicksCountEveryOpen(t *testing.T) {
	sink := newRecordingSink()
	b := NewBrowser(new(MockSource), sink, logger.NewNop())

	b.Open(context.Background(), "l01")
	b.Open(context.Background(), "l01")
	b.Wait()

	assert.Equal(t, 2, sink.clickCount("l01"))
}

func TestBrowser_TelemetryFailureDoesNotAffectView(t *testing.T) {
	source := new(MockSource)
	source.On("FindByCountry", mock.Anything, "Spain").Return(manyListings(3), nil)
	sink := newRecordingSink()
	sink.err = errors.New("network down")
	b := NewBrowser(source, sink, logger.NewNop())

	require.NoError(t, b.SelectCountry(context.Background(), "Spain"))
	page := b.Visible(context.Background())
	b.Wait()

	assert.Len(t, page.Items, 3)
	assert.Equal(t, 1, sink.impressionCount("l00"))
	b.Visible(context.Background())
	b.Wait()
	assert.Equal(t, 1, sink.impressionCount("l00"), "failed impressions are not retried")
}

func TestBrowser_FilterAndSortResetPage(t *testing.T) {
	source := new(MockSource)
	source.On("FindByCountry", mock.Anything, "Greece").Return(manyListings(25), nil)
	b := NewBrowser(source, newRecordingSink(), logger.NewNop())
	require.NoError(t, b.SelectCountry(context.Background(), "Greece"))

	b.GoToPage(3)
	assert.Equal(t, 3, b.Current().CurrentPage)
	b.SetIndustry(domain.IndustryEnergy)
	assert.Equal(t, 1, b.Current().CurrentPage)

	b.GoToPage(2)
	require.NoError(t, b.SetSort(SortDateDesc))
	assert.Equal(t, 1, b.Current().CurrentPage)

	assert.ErrorIs(t, b.SetSort("bogus"), domain.ErrInvalidSortOption)
	b.GoToPage(99)
	assert.Equal(t, 3, b.Current().CurrentPage)
	assert.False(t, b.NextPage())
}

func TestBrowser_FetchErrorEmptiesView(t *testing.T) {
	source := new(MockSource)
	source.On("FindByCountry", mock.Anything, "Italy").Return(manyListings(4), nil)
	source.On("FindByCountry", mock.Anything, "Malta").Return(nil, errors.New("store unavailable"))
	b := NewBrowser(source, newRecordingSink(), logger.NewNop())

	require.NoError(t, b.SelectCountry(context.Background(), "Italy"))
	require.Error(t, b.SelectCountry(context.Background(), "Malta"))

	page := b.Current()
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalPages)
	assert.Equal(t, "Malta", b.Country())
}

// blockingSource releases the first country's result only after the second selection finishes.
type blockingSource struct {
	release chan struct{}
	started chan struct{}
}

func (s *blockingSource) FindByCountry(_ context.Context, country string) ([]*domain.Listing, error) {
	if country == "slow" {
		close(s.started)
		<-s.release
		return manyListings(7), nil
	}
	return manyListings(2), nil
}

func TestBrowser_DropsSupersededResponse(t *testing.T) {
	src := &blockingSource{release: make(chan struct{}), started: make(chan struct{})}
	b := NewBrowser(src, newRecordingSink(), logger.NewNop())

	done := make(chan error)
	go func() { done <- b.SelectCountry(context.Background(), "slow") }()
	<-src.started

	require.NoError(t, b.SelectCountry(context.Background(), "fast"))
	close(src.release)
	require.NoError(t, <-done)

	assert.Equal(t, "fast", b.Country())
	assert.Equal(t, 2, b.Current().Total)
}
