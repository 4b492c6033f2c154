package database

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedisSnapshotKey(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer rdb.Close()

	if got := NewRedisSnapshotRepository(rdb, "").key("alice"); got != "petwords:snapshot:alice" {
		t.Fatalf("unexpected default key %q", got)
	}
	if got := NewRedisSnapshotRepository(rdb, " app ").key("bob"); got != "app:snapshot:bob" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestRedisSnapshotUnreachable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()
	repo := NewRedisSnapshotRepository(rdb, "test")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	snap, err := repo.Load(ctx, "alice")
	if err == nil {
		t.Fatal("expected error from unreachable redis")
	}
	if snap != nil {
		t.Fatalf("expected nil snapshot, got %+v", snap)
	}
}
