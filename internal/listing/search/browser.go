package search

import (
	"context"
	"sync"

	"github.com/FaizanHaider108/lookvisa/internal/listing/domain"
	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"go.uber.org/zap"
)

// Source supplies every searchable listing of a country.
type Source interface {
	FindByCountry(ctx context.Context, country string) ([]*domain.Listing, error)
}

// TelemetrySink receives impression and click increments.
type TelemetrySink interface {
	IncrementImpression(ctx context.Context, id string) error
	IncrementClick(ctx context.Context, id string) error
}

type BrowserOption func(*Browser)

func WithPageSize(n int) BrowserOption {
	return func(b *Browser) {
		if n > 0 {
			b.pageSize = n
		}
	}
}

func WithLegacySort(legacy bool) BrowserOption {
	return func(b *Browser) { b.legacy = legacy }
}

// Browser holds the state of one search page view: the selected country and its
// listings, the industry filter, the sort option, the current page and the set of
// listings whose impression was already reported.
type Browser struct {
	source   Source
	sink     TelemetrySink
	logger   *logger.Logger
	pageSize int
	legacy   bool

	mu         sync.Mutex
	generation uint64
	country    string
	listings   []*domain.Listing
	industry   domain.Industry
	sort       SortOption
	page       int
	seen       map[string]struct{}

	inflight sync.WaitGroup
}

func NewBrowser(source Source, sink TelemetrySink, log *logger.Logger, opts ...BrowserOption) *Browser {
	b := &Browser{
		source:   source,
		sink:     sink,
		logger:   log.Named("browser"),
		pageSize: DefaultPageSize,
		page:     1,
		seen:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SelectCountry loads the listings of country. If another SelectCountry starts before
// this one finishes, the older result is dropped. On a fetch error the view is emptied
// and the error returned.
func (b *Browser) SelectCountry(ctx context.Context, country string) error {
	b.mu.Lock()
	b.generation++
	gen := b.generation
	b.mu.Unlock()

	listings, err := b.source.FindByCountry(ctx, country)

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.generation {
		b.logger.Debug("Dropping superseded country result", zap.String("country", country))
		return nil
	}
	b.country = country
	b.page = 1
	if err != nil {
		b.listings = nil
		b.logger.Error("Failed to fetch listings for country", zap.String("country", country), zap.Error(err))
		return err
	}
	b.listings = listings
	return nil
}

// SetIndustry changes the industry filter and returns to page 1.
func (b *Browser) SetIndustry(industry domain.Industry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.industry = industry
	b.page = 1
}

// SetSort changes the sort option and returns to page 1.
func (b *Browser) SetSort(option SortOption) error {
	if _, err := ParseSortOption(string(option)); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sort = option
	b.page = 1
	return nil
}

// GoToPage moves to page n, clamped to the available pages.
func (b *Browser) GoToPage(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	page := b.buildLocked()
	switch {
	case n < 1:
		n = 1
	case page.TotalPages > 0 && n > page.TotalPages:
		n = page.TotalPages
	}
	b.page = n
}

func (b *Browser) NextPage() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page >= b.buildLocked().TotalPages {
		return false
	}
	b.page++
	return true
}

func (b *Browser) PrevPage() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page <= 1 {
		return false
	}
	b.page--
	return true
}

func (b *Browser) Country() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.country
}

// Current returns the page the view would render, without reporting impressions.
func (b *Browser) Current() Page {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buildLocked()
}

// Visible returns the current page and reports an impression for every listing on it
// not reported before during this view.
func (b *Browser) Visible(ctx context.Context) Page {
	b.mu.Lock()
	page := b.buildLocked()
	var fresh []string
	for _, l := range page.Items {
		if _, ok := b.seen[l.ID]; ok {
			continue
		}
		b.seen[l.ID] = struct{}{}
		fresh = append(fresh, l.ID)
	}
	b.mu.Unlock()

	for _, id := range fresh {
		b.fire(ctx, "impression", id, b.sink.IncrementImpression)
	}
	return page
}

// Open reports a click on listing id. Every open counts.
func (b *Browser) Open(ctx context.Context, id string) {
	b.fire(ctx, "click", id, b.sink.IncrementClick)
}

// Wait blocks until all telemetry started so far has completed.
func (b *Browser) Wait() {
	b.inflight.Wait()
}

func (b *Browser) fire(ctx context.Context, kind, id string, send func(context.Context, string) error) {
	ctx = context.WithoutCancel(ctx)
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		if err := send(ctx, id); err != nil {
			b.logger.Warn("Failed to record listing telemetry",
				zap.String("kind", kind), zap.String("listing_id", id), zap.Error(err))
		}
	}()
}

func (b *Browser) buildLocked() Page {
	page, err := BuildPage(b.listings, Options{
		Industry:   b.industry,
		Sort:       b.sort,
		Page:       b.page,
		PageSize:   b.pageSize,
		LegacySort: b.legacy,
	})
	if err != nil {
		b.logger.Error("Failed to build page", zap.Error(err))
	}
	return page
}
