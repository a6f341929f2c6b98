package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/salam-labs/adzan/internal/domain"
)

func TestScheduleCache_Key(t *testing.T) {
	c := NewScheduleCache(nil, "", 0)
	if got := c.key("2026-02-06"); got != "adzan:schedule:2026-02-06" {
		t.Fatalf("key: got %q", got)
	}
	if c.ttl != defaultTTL {
		t.Fatalf("ttl: want %v, got %v", defaultTTL, c.ttl)
	}
}

// Nécessite un serveur: ADZAN_TEST_REDIS_ADDR=127.0.0.1:6379
func TestScheduleCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("ADZAN_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ADZAN_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb := NewClient(Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	c := NewScheduleCache(rdb, "adzan-test", time.Minute)
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	sched := domain.FallbackDailySchedule(time.Date(2026, time.February, 6, 0, 0, 0, 0, time.UTC))
	if err := c.Put(ctx, sched); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := c.Get(ctx, sched.Date)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Timings != sched.Timings {
		t.Fatalf("timings mismatch: %v", got.Timings.Timings())
	}
}
