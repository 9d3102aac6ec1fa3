package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestEntryStale(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	e := &Entry{Key: "k", Timestamp: base, TTL: time.Minute}

	tests := []struct {
		name  string
		now   time.Time
		stale bool
	}{
		{name: "just written", now: base, stale: false},
		{name: "exactly ttl old", now: base.Add(time.Minute), stale: false},
		{name: "past ttl", now: base.Add(time.Minute + time.Nanosecond), stale: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Stale(tt.now); got != tt.stale {
				t.Fatalf("Stale: got %v, want %v (age %s)", got, tt.stale, e.Age(tt.now))
			}
		})
	}
}

func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing): got %v, want ErrNotFound", err)
	}

	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	if err := s.Put(ctx, &Entry{Key: "a", Data: json.RawMessage(`{"v":1}`), Timestamp: ts, TTL: time.Hour}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, &Entry{Key: "a", Data: json.RawMessage(`{"v":2}`), Timestamp: ts, TTL: time.Hour}); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}

	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got.Data) != `{"v":2}` {
		t.Errorf("Data: got %s, want last write", got.Data)
	}
	if !got.Timestamp.Equal(ts) || got.TTL != time.Hour || got.Key != "a" {
		t.Errorf("entry metadata mismatch: %+v", got)
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestMemoryStoreCopiesData(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	data := []byte(`"x"`)
	_ = s.Put(ctx, &Entry{Key: "k", Data: data})
	data[1] = 'y'

	got, _ := s.Get(ctx, "k")
	if string(got.Data) != `"x"` {
		t.Fatalf("stored data was aliased: %s", got.Data)
	}
}

func TestMemoryStoreConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Put(ctx, &Entry{Key: fmt.Sprintf("k%d", i%5), Data: json.RawMessage(fmt.Sprint(i))})
			_, _ = s.Get(ctx, "k0")
		}(i)
	}
	wg.Wait()

	if s.Len() != 5 {
		t.Fatalf("Len: got %d, want 5", s.Len())
	}
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	s := NewRedisStore(rdb, RedisConfig{Retention: 24 * time.Hour})
	testStore(t, s)

	if !mr.Exists("service-cache:a") {
		t.Fatal("expected prefixed key in redis")
	}
	if ttl := mr.TTL("service-cache:a"); ttl != 24*time.Hour {
		t.Errorf("retention: got %s, want 24h", ttl)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	s := NewRedisStore(rdb, RedisConfig{})
	if _, err := s.Get(context.Background(), "a"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected connection error, got %v", err)
	}
}
