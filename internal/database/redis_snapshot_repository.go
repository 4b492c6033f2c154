package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/petwords/pkg/models"
)

// RedisSnapshotRepository stores snapshots as JSON strings under "<prefix>:snapshot:<account>"
type RedisSnapshotRepository struct {
	rdb    *redis.Client
	prefix string
}

// OpenRedis connects to Redis and verifies the connection
func OpenRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewRedisSnapshotRepository creates a new repository instance
func NewRedisSnapshotRepository(rdb *redis.Client, prefix string) *RedisSnapshotRepository {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "petwords"
	}
	return &RedisSnapshotRepository{rdb: rdb, prefix: prefix}
}

func (r *RedisSnapshotRepository) key(accountID string) string {
	return r.prefix + ":snapshot:" + accountID
}

// Load returns the stored snapshot, or nil when the account has none
func (r *RedisSnapshotRepository) Load(ctx context.Context, accountID string) (*models.AccountSnapshot, error) {
	raw, err := r.rdb.Get(ctx, r.key(accountID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decodeSnapshot(accountID, raw)
}

// Save replaces the stored snapshot for the account
func (r *RedisSnapshotRepository) Save(ctx context.Context, snap *models.AccountSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key(snap.AccountID), raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
