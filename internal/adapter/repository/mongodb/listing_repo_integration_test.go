//go:build integration

package mongodb

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/FaizanHaider108/lookvisa/internal/listing/domain"
	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var testDB *mongo.Database

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}
	if err := pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mongo",
		Tag:        "6.0",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start MongoDB resource: %s", err)
	}
	_ = resource.Expire(120)

	uri := fmt.Sprintf("mongodb://%s", resource.GetHostPort("27017/tcp"))
	var client *mongo.Client
	if err := pool.Retry(func() error {
		var errRetry error
		client, errRetry = mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
		if errRetry != nil {
			return errRetry
		}
		return client.Ping(context.Background(), nil)
	}); err != nil {
		log.Fatalf("Could not connect to MongoDB: %s", err)
	}
	testDB = client.Database("lookvisa_test")
	if err := EnsureIndexes(context.Background(), testDB); err != nil {
		log.Fatalf("Could not create indexes: %s", err)
	}

	code := m.Run()

	_ = client.Disconnect(context.Background())
	if err := pool.Purge(resource); err != nil {
		log.Printf("Could not purge MongoDB resource: %s", err)
	}
	os.Exit(code)
}

func newRepo(t *testing.T) *ListingRepository {
	t.Helper()
	_, err := testDB.Collection(listingsCollection).DeleteMany(context.Background(), bson.M{})
	require.NoError(t, err)
	return NewListingRepository(testDB, logger.NewNop())
}

func seed(t *testing.T, repo *ListingRepository, author, country string, status domain.ListingStatus, created time.Time) *domain.Listing {
	t.Helper()
	l := &domain.Listing{
		AuthorID:               author,
		CountryForInvestment:   country,
		SponsorshipDescription: "sponsorship",
		InvestmentIndustry:     domain.IndustryEnergy,
		ProjectDescription:     "project",
		MinimumInvestment:      "1 million",
		CountriesForInvestors:  []string{"India"},
		InvestmentTimetable:    created,
		Contact:                domain.Contact{Email: "a@example.com"},
		Status:                 status,
		CreatedAt:              created,
		UpdatedAt:              created,
	}
	require.NoError(t, repo.Create(context.Background(), l))
	return l
}

func TestListingRepository_ExpireStaleThenFindByAuthor(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	old := seed(t, repo, "sponsor-1", "Portugal", domain.StatusPublished, now.Add(-31*24*time.Hour))
	fresh := seed(t, repo, "sponsor-1", "Portugal", domain.StatusPublished, now.Add(-24*time.Hour))
	otherAuthor := seed(t, repo, "sponsor-2", "Portugal", domain.StatusPublished, now.Add(-40*24*time.Hour))

	n, err := repo.ExpireStale(ctx, "sponsor-1", domain.ExpiryCutoff(now))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	listings, err := repo.FindByAuthor(ctx, "sponsor-1")
	require.NoError(t, err)
	statuses := map[string]domain.ListingStatus{}
	for _, l := range listings {
		statuses[l.ID] = l.Status
	}
	assert.Equal(t, domain.StatusExpired, statuses[old.ID])
	assert.Equal(t, domain.StatusPublished, statuses[fresh.ID])

	other, err := repo.FindByID(ctx, otherAuthor.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, other.Status, "only the caller's listings are expired")

	n, err = repo.ExpireStale(ctx, "sponsor-1", domain.ExpiryCutoff(now))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestListingRepository_FindByCountry(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()
	live := seed(t, repo, "s", "Spain", domain.StatusPublished, now.Add(-time.Hour))
	seed(t, repo, "s", "Spain", domain.StatusDraft, now.Add(-time.Hour))
	seed(t, repo, "s", "Spain", domain.StatusPublished, now.Add(-31*24*time.Hour))
	seed(t, repo, "s", "Italy", domain.StatusPublished, now.Add(-time.Hour))

	listings, err := repo.FindByCountry(ctx, "Spain", domain.ExpiryCutoff(now))
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, live.ID, listings[0].ID)
}

func TestListingRepository_ConcurrentImpressionsSingleDailyBucket(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	l := seed(t, repo, "s", "Spain", domain.StatusPublished, time.Now().UTC())
	day := domain.DayOf(time.Now())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.IncrementImpression(ctx, l.ID, day))
		}()
	}
	wg.Wait()
	require.NoError(t, repo.IncrementClick(ctx, l.ID))

	got, err := repo.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), got.Impressions)
	assert.Equal(t, int64(1), got.Clicks)
	require.Len(t, got.DailyImpressions, 1)
	assert.Equal(t, int64(20), got.DailyImpressions[0].Impressions)
	assert.True(t, day.Equal(got.DailyImpressions[0].Date))

	assert.ErrorIs(t, repo.IncrementClick(ctx, "000000000000000000000000"), domain.ErrListingNotFound)
	assert.ErrorIs(t, repo.IncrementImpression(ctx, "000000000000000000000000", day), domain.ErrListingNotFound)
}

func TestListingRepository_PushAttachmentCapsAtThree(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	l := seed(t, repo, "s", "Spain", domain.StatusDraft, time.Now().UTC())

	for i := 0; i < domain.MaxAttachments; i++ {
		require.NoError(t, repo.PushAttachment(ctx, l.ID, fmt.Sprintf("ref-%d", i)))
	}
	assert.ErrorIs(t, repo.PushAttachment(ctx, l.ID, "ref-4"), domain.ErrTooManyAttachments)

	got, err := repo.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Len(t, got.Attachments, domain.MaxAttachments)
}

func TestListingRepository_UpdateAndDelete(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	l := seed(t, repo, "s", "Spain", domain.StatusDraft, time.Now().UTC())

	require.NoError(t, l.TransitionTo(domain.StatusPublished, time.Now().UTC()))
	require.NoError(t, repo.Update(ctx, l))
	got, err := repo.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, got.Status)
	assert.NotNil(t, got.PublishedAt)

	require.NoError(t, repo.Delete(ctx, l.ID))
	_, err = repo.FindByID(ctx, l.ID)
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, l.ID), domain.ErrListingNotFound)
}
