package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) (RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return RedisStore{Client: client}, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	if _, found, err := store.Get(ctx, "price:final:x"); err != nil || found {
		t.Fatalf("expected a clean miss, got found=%t err=%v", found, err)
	}

	if err := store.Set(ctx, "price:final:x", []byte(`{"price":"67.5"}`), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	data, found, err := store.Get(ctx, "price:final:x")
	if err != nil || !found {
		t.Fatalf("expected a hit, got found=%t err=%v", found, err)
	}
	if string(data) != `{"price":"67.5"}` {
		t.Fatalf("unexpected payload %q", data)
	}
}

func TestRedisStoreExpiry(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "price:final:x", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, found, _ := store.Get(ctx, "price:final:x"); found {
		t.Fatal("expected the key to expire")
	}
}

func TestRedisStoreNilClientAndZeroTTL(t *testing.T) {
	ctx := context.Background()

	var empty RedisStore
	if _, found, err := empty.Get(ctx, "k"); err != nil || found {
		t.Fatalf("expected a nil client to behave as a miss, got found=%t err=%v", found, err)
	}
	if err := empty.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("expected a nil client set to be a no-op: %v", err)
	}

	store, mr := newRedisStore(t)
	if err := store.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if mr.Exists("k") {
		t.Fatal("expected a zero-TTL set to skip the write")
	}
}
