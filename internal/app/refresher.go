package app

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/ports"
)

// cachePruner est implémenté par les caches qui ne gèrent pas d'expiration eux-mêmes (sqlite).
type cachePruner interface {
	Prune(ctx context.Context, before string) (int64, error)
}

// Refresher planifie le rechargement quotidien juste après minuit et une vérification
// périodique qui retente la source distante après un fallback.
type Refresher struct {
	logger    zerolog.Logger
	schedules *ScheduleService
	pruner    cachePruner
	clock     clockwork.Clock

	CheckInterval time.Duration
	JobTimeout    time.Duration
	CacheRetain   time.Duration

	mu        sync.Mutex
	scheduler gocron.Scheduler
	loc       *time.Location
}

// NewRefresher accepte n'importe quel cache ; il n'est purgé que s'il sait le faire.
func NewRefresher(logger zerolog.Logger, schedules *ScheduleService, cache any, clock clockwork.Clock) *Refresher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	pruner, _ := cache.(cachePruner)
	return &Refresher{
		logger:        logger,
		schedules:     schedules,
		pruner:        pruner,
		clock:         clock,
		CheckInterval: 15 * time.Minute,
		JobTimeout:    30 * time.Second,
		CacheRetain:   30 * 24 * time.Hour,
	}
}

func (r *Refresher) Start(loc *time.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.start(loc)
}

func (r *Refresher) start(loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	s, err := gocron.NewScheduler(gocron.WithLocation(loc), gocron.WithClock(r.clock))
	if err != nil {
		return err
	}

	if _, err := s.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 1, 0))),
		gocron.NewTask(r.daily),
		gocron.WithName("schedule.daily"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return err
	}

	interval := r.CheckInterval
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if _, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(r.check),
		gocron.WithName("schedule.check"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return err
	}

	s.Start()
	r.scheduler = s
	r.loc = loc
	r.logger.Info().Dur("check_interval", interval).Str("tz", loc.String()).Msg("refresher started")
	return nil
}

// Location renvoie le fuseau dans lequel tombe le job de minuit, nil avant Start.
func (r *Refresher) Location() *time.Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loc
}

// Relocate recrée le planificateur quand le fuseau de l'horaire a changé.
func (r *Refresher) Relocate(loc *time.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scheduler == nil || loc == nil || loc.String() == r.loc.String() {
		return nil
	}
	if err := r.scheduler.Shutdown(); err != nil {
		r.logger.Warn().Err(err).Msg("refresher shutdown before relocation failed")
	}
	r.scheduler = nil
	return r.start(loc)
}

// Follow recale le job quotidien à chaque schedule.updated, jusqu'à l'annulation de ctx.
func (r *Refresher) Follow(ctx context.Context, bus ports.EventBus) {
	events, unsubscribe := bus.Subscribe(ports.TopicScheduleUpdated)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			if err := r.Relocate(r.schedules.Snapshot().Location); err != nil {
				r.logger.Error().Err(err).Msg("refresher relocation failed")
			}
		}
	}
}

func (r *Refresher) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.scheduler == nil {
		return nil
	}
	err := r.scheduler.Shutdown()
	r.scheduler = nil
	return err
}

func (r *Refresher) jobContext() (context.Context, context.CancelFunc) {
	timeout := r.JobTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

func (r *Refresher) daily() {
	ctx, cancel := r.jobContext()
	defer cancel()

	if _, err := r.schedules.Refresh(ctx); err != nil {
		r.logger.Warn().Err(err).Msg("daily refresh degraded")
	}
	r.prune(ctx)
}

func (r *Refresher) check() {
	ctx, cancel := r.jobContext()
	defer cancel()

	refreshed, err := r.schedules.EnsureFresh(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("freshness check degraded")
		return
	}
	if refreshed {
		r.logger.Debug().Msg("schedule reloaded by freshness check")
	}
}

func (r *Refresher) prune(ctx context.Context) {
	if r.pruner == nil || r.CacheRetain <= 0 {
		return
	}
	before := domain.DateKey(r.clock.Now().Add(-r.CacheRetain))
	n, err := r.pruner.Prune(ctx, before)
	if err != nil {
		r.logger.Warn().Err(err).Msg("schedule cache prune failed")
		return
	}
	if n > 0 {
		r.logger.Info().Int64("removed", n).Str("before", before).Msg("schedule cache pruned")
	}
}
