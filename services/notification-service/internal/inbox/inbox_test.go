package inbox

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeRedis struct {
	keys    map[string]time.Duration
	deleted []string
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, ok := f.keys[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.keys, k)
		f.deleted = append(f.deleted, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestRedisRecordDedupes(t *testing.T) {
	rdb := &fakeRedis{keys: map[string]time.Duration{}}
	in := NewRedis(rdb, "", 0)
	ctx := context.Background()

	ok, err := in.Record(ctx, "req-1", "booking.request.submitted.v1")
	if err != nil || !ok {
		t.Fatalf("expected first record, got %v %v", ok, err)
	}
	if ttl := rdb.keys["inbox:booking.request.submitted.v1:req-1"]; ttl != DefaultTTL {
		t.Fatalf("expected default ttl, got %v", ttl)
	}
	ok, err = in.Record(ctx, "req-1", "booking.request.submitted.v1")
	if err != nil || ok {
		t.Fatalf("expected duplicate, got %v %v", ok, err)
	}

	if err := in.Forget(ctx, "req-1", "booking.request.submitted.v1"); err != nil {
		t.Fatalf("forget: %v", err)
	}
	ok, _ = in.Record(ctx, "req-1", "booking.request.submitted.v1")
	if !ok {
		t.Fatal("expected record after forget")
	}
}

func TestRecordRejectsEmptyID(t *testing.T) {
	if _, err := NewRedis(&fakeRedis{keys: map[string]time.Duration{}}, "x", time.Hour).Record(context.Background(), "", "t"); err == nil {
		t.Fatal("expected error for empty id")
	}
	if _, err := NewMemory(time.Hour).Record(context.Background(), "", "t"); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestMemoryExpires(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	in := NewMemory(time.Hour)
	in.now = func() time.Time { return now }
	ctx := context.Background()

	if ok, _ := in.Record(ctx, "a", "t"); !ok {
		t.Fatal("expected first record")
	}
	if ok, _ := in.Record(ctx, "a", "t"); ok {
		t.Fatal("expected duplicate")
	}
	if ok, _ := in.Record(ctx, "a", "other"); !ok {
		t.Fatal("event types are separate")
	}
	now = now.Add(2 * time.Hour)
	if ok, _ := in.Record(ctx, "a", "t"); !ok {
		t.Fatal("expected record after ttl")
	}
}
