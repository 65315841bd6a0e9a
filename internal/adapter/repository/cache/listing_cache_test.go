package cache

import (
	"context"
	"testing"
	"time"

	"github.com/FaizanHaider108/lookvisa/internal/listing/domain"
	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*ListingCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewListingCache(client, time.Minute, logger.NewNop()), mr
}

func TestListingCache_MissThenHit(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	got, err := c.GetCountry(ctx, "Portugal")
	require.NoError(t, err)
	assert.Nil(t, got)

	published := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	listings := []*domain.Listing{{ID: "a", Status: domain.StatusPublished, PublishedAt: &published}}
	require.NoError(t, c.SetCountry(ctx, "Portugal", listings))
	assert.True(t, mr.Exists("listings:country:Portugal"))
	assert.Equal(t, time.Minute, mr.TTL("listings:country:Portugal"))

	got, err = c.GetCountry(ctx, "Portugal")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
	assert.True(t, published.Equal(*got[0].PublishedAt))
}

func TestListingCache_EmptySetIsAHit(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetCountry(ctx, "Malta", []*domain.Listing{}))
	got, err := c.GetCountry(ctx, "Malta")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListingCache_Invalidate(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.SetCountry(ctx, "Spain", []*domain.Listing{{ID: "x"}}))

	require.NoError(t, c.InvalidateCountry(ctx, "Spain"))

	assert.False(t, mr.Exists("listings:country:Spain"))
}

func TestListingCache_CorruptedEntryIsDropped(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("listings:country:Greece", "{not json"))

	got, err := c.GetCountry(context.Background(), "Greece")

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists("listings:country:Greece"))
}

func TestListingCache_ServerDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, err := c.GetCountry(context.Background(), "Spain")
	assert.Error(t, err)
}
