package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/ports"
)

const defaultTTL = 48 * time.Hour

type Options struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// ScheduleCache stocke les horaires validés dans Redis, une clé par date.
type ScheduleCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

func NewScheduleCache(rdb *redis.Client, prefix string, ttl time.Duration) *ScheduleCache {
	if prefix == "" {
		prefix = "adzan"
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &ScheduleCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *ScheduleCache) key(date string) string {
	return c.prefix + ":schedule:" + date
}

func (c *ScheduleCache) Get(ctx context.Context, date string) (domain.DailySchedule, error) {
	b, err := c.rdb.Get(ctx, c.key(date)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.DailySchedule{}, ports.ErrNotFound
		}
		return domain.DailySchedule{}, err
	}
	var sched domain.DailySchedule
	if err := json.Unmarshal(b, &sched); err != nil {
		return domain.DailySchedule{}, ports.ErrNotFound
	}
	return sched, nil
}

func (c *ScheduleCache) Put(ctx context.Context, sched domain.DailySchedule) error {
	b, err := json.Marshal(sched)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(sched.Date), b, c.ttl).Err()
}

func (c *ScheduleCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
