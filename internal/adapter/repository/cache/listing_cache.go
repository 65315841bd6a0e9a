package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/FaizanHaider108/lookvisa/internal/config"
	"github.com/FaizanHaider108/lookvisa/internal/listing/domain"
	"github.com/FaizanHaider108/lookvisa/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const countryKeyPrefix = "listings:country:"

func NewRedisClient(cfg *config.RedisConfig, log *logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Error("Failed to connect to Redis", zap.String("address", cfg.Address), zap.Error(err))
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Address, err)
	}
	log.Info("Successfully connected to Redis", zap.String("address", cfg.Address))
	return rdb, nil
}

// ListingCache stores the searchable listings of a country as one JSON value.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

func NewListingCache(client *redis.Client, ttl time.Duration, log *logger.Logger) *ListingCache {
	return &ListingCache{client: client, ttl: ttl, logger: log.Named("listing_cache")}
}

func countryKey(country string) string {
	return countryKeyPrefix + country
}

// GetCountry returns (nil, nil) on a cache miss.
func (c *ListingCache) GetCountry(ctx context.Context, country string) ([]*domain.Listing, error) {
	key := countryKey(country)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("ListingCache.GetCountry for key '%s': %w", key, err)
	}

	listings := []*domain.Listing{}
	if err := json.Unmarshal(data, &listings); err != nil {
		c.logger.Warn("Dropping corrupted cache entry", zap.String("key", key), zap.Error(err))
		if delErr := c.client.Del(ctx, key).Err(); delErr != nil {
			c.logger.Warn("Failed to delete corrupted cache entry", zap.String("key", key), zap.Error(delErr))
		}
		return nil, nil
	}
	return listings, nil
}

func (c *ListingCache) SetCountry(ctx context.Context, country string, listings []*domain.Listing) error {
	key := countryKey(country)
	data, err := json.Marshal(listings)
	if err != nil {
		return fmt.Errorf("ListingCache.SetCountry: marshal: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("ListingCache.SetCountry for key '%s': %w", key, err)
	}
	c.logger.Debug("Cached country listings", zap.String("key", key), zap.Int("count", len(listings)), zap.Duration("ttl", c.ttl))
	return nil
}

func (c *ListingCache) InvalidateCountry(ctx context.Context, country string) error {
	key := countryKey(country)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("ListingCache.InvalidateCountry for key '%s': %w", key, err)
	}
	return nil
}
