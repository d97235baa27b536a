// Package cache keeps a read-through copy of the capacity board in redis. The
// transaction table stays the source of truth; entries are dropped on every
// state change and rebuilt by the reconcile job.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Pridoh/Project-UKK-sub000/internal/domain"
	"github.com/redis/go-redis/v9"
)

const BoardKey = "parking:capacity:board"

// BoardSource computes the capacity board from storage.
type BoardSource interface {
	Board(ctx context.Context) ([]domain.CapacityStatus, error)
}

type CapacityCache struct {
	rdb    redis.Cmdable
	source BoardSource
	ttl    time.Duration
}

func NewCapacityCache(rdb redis.Cmdable, source BoardSource, ttl time.Duration) *CapacityCache {
	return &CapacityCache{rdb: rdb, source: source, ttl: ttl}
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}

// Board serves the cached board, falling back to the source when the entry is
// missing, unreadable or redis is down.
func (c *CapacityCache) Board(ctx context.Context) ([]domain.CapacityStatus, error) {
	cached, err := c.rdb.Get(ctx, BoardKey).Result()
	switch {
	case err == nil:
		var board []domain.CapacityStatus
		if jsonErr := json.Unmarshal([]byte(cached), &board); jsonErr == nil {
			return board, nil
		}
		log.Printf("CapacityCache: discarding unreadable entry %s", BoardKey)
	case errors.Is(err, redis.Nil):
	default:
		log.Printf("CapacityCache: redis get failed, reading through: %v", err)
	}
	return c.load(ctx)
}

// Refresh recomputes the board and stores it.
func (c *CapacityCache) Refresh(ctx context.Context) error {
	_, err := c.load(ctx)
	return err
}

func (c *CapacityCache) load(ctx context.Context) ([]domain.CapacityStatus, error) {
	board, err := c.source.Board(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(board)
	if err != nil {
		return nil, fmt.Errorf("encode capacity board: %w", err)
	}
	if err := c.rdb.Set(ctx, BoardKey, string(payload), c.ttl).Err(); err != nil {
		log.Printf("CapacityCache: redis set failed: %v", err)
	}
	return board, nil
}

func (c *CapacityCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, BoardKey).Err()
}

// Publish drops the cached board after any committed transaction change.
func (c *CapacityCache) Publish(ctx context.Context, event domain.TransactionEvent) {
	if err := c.Invalidate(context.WithoutCancel(ctx)); err != nil {
		log.Printf("CapacityCache: invalidate after %s failed: %v", event.Type, err)
	}
}
