package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"eclat/internal/config"
	"eclat/internal/models"

	"github.com/redis/go-redis/v9"
)

const dayKeyPrefix = "day_schedule:"

// RedisScheduleCache stores computed day schedules in redis with a short TTL.
// The cache serves the advisory read path only; the booking write path always
// recomputes against the store.
type RedisScheduleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient creates a redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}
	return redis.NewClient(options)
}

func NewRedisScheduleCache(client *redis.Client, ttl time.Duration) *RedisScheduleCache {
	if ttl <= 0 {
		ttl = models.DefaultScheduleTTL * time.Second
	}
	return &RedisScheduleCache{client: client, ttl: ttl}
}

func (r *RedisScheduleCache) GetDay(ctx context.Context, date string) (*models.DaySchedule, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, dayKeyPrefix+date).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get day schedule from redis: %w", err)
	}

	var day models.DaySchedule
	if err := json.Unmarshal([]byte(val), &day); err != nil {
		return nil, fmt.Errorf("failed to unmarshal day schedule: %w", err)
	}
	return &day, nil
}

func (r *RedisScheduleCache) SetDay(ctx context.Context, day *models.DaySchedule) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(day)
	if err != nil {
		return fmt.Errorf("failed to marshal day schedule: %w", err)
	}
	if err := r.client.Set(ctx, dayKeyPrefix+day.Date, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set day schedule in redis: %w", err)
	}
	return nil
}

func (r *RedisScheduleCache) InvalidateDay(ctx context.Context, date string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, dayKeyPrefix+date).Err(); err != nil {
		return fmt.Errorf("failed to invalidate day schedule: %w", err)
	}
	return nil
}

// Flush drops every cached day. Used when a closure changes, since a closure
// can span an arbitrary date range.
func (r *RedisScheduleCache) Flush(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	iter := r.client.Scan(ctx, 0, dayKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to flush day schedules: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan day schedules: %w", err)
	}
	return nil
}
