package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/ports"
)

// PrayerPoller évalue l'horaire courant à intervalle fixe et publie sur le bus
// la prière active, le compte à rebours et les notifications dues.
type PrayerPoller struct {
	logger    zerolog.Logger
	schedules *ScheduleService
	lastRead  ports.LastReadRepository
	history   ports.NotificationRepository
	bus       ports.EventBus
	clock     clockwork.Clock

	TickInterval   time.Duration
	RefreshTimeout time.Duration

	mu             sync.Mutex
	state          *domain.FireState
	lastActive     domain.PrayerKey
	lastCountdown  string
	refreshRunning atomic.Bool
}

func NewPrayerPoller(logger zerolog.Logger, schedules *ScheduleService, lastRead ports.LastReadRepository, history ports.NotificationRepository, bus ports.EventBus, clock clockwork.Clock) *PrayerPoller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PrayerPoller{
		logger:         logger,
		schedules:      schedules,
		lastRead:       lastRead,
		history:        history,
		bus:            bus,
		clock:          clock,
		TickInterval:   60 * time.Second,
		RefreshTimeout: 30 * time.Second,
		state:          domain.NewFireState(),
	}
}

func (p *PrayerPoller) Run(ctx context.Context) {
	if p == nil || p.schedules == nil {
		return
	}
	interval := p.TickInterval
	if interval <= 0 {
		interval = 60 * time.Second
	}
	p.restore(ctx)

	ticker := p.clock.NewTicker(interval)
	defer ticker.Stop()

	p.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("prayer poller stopped")
			return
		case <-ticker.Chan():
			p.Tick(ctx)
		}
	}
}

// restore recharge la dernière minute déclenchée depuis l'historique pour ne pas
// renvoyer une notification après un redémarrage dans la même minute.
func (p *PrayerPoller) restore(ctx context.Context) {
	if p.history == nil {
		return
	}
	loc := p.schedules.Snapshot().Location
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, kind := range []domain.NotificationKind{domain.NotificationPrayer, domain.NotificationReading} {
		n, err := p.history.Latest(ctx, kind)
		if err != nil {
			if !errors.Is(err, ports.ErrNotFound) {
				p.logger.Warn().Err(err).Str("kind", string(kind)).Msg("fire state restore failed")
			}
			continue
		}
		p.state.Mark(kind, n.FiredAt.In(loc))
	}
}

// Tick fait une évaluation complète sur un seul instantané de l'horaire.
func (p *PrayerPoller) Tick(ctx context.Context) domain.Tick {
	snap := p.schedules.Snapshot()
	now := p.clock.Now().In(snap.Location)

	if !snap.Daily.IsFor(now) {
		p.refreshAsync(ctx)
	}

	p.mu.Lock()
	tick := domain.Evaluate(snap.Daily.Timings, now, p.state)
	activeChanged := tick.Active != p.lastActive
	p.lastActive = tick.Active
	countdown := tick.Next.Time + tick.Next.RemainingLabel
	countdownChanged := countdown != p.lastCountdown
	p.lastCountdown = countdown
	readingDue := now.Minute() == 0 && p.state.ShouldFire(domain.NotificationReading, now)
	p.mu.Unlock()

	if activeChanged {
		p.publish(ports.TopicPrayerActive, tick)
	}
	if countdownChanged {
		p.publish(ports.TopicPrayerCountdown, tick.Next)
	}
	if tick.Due != nil {
		p.logger.Info().Str("prayer", string(tick.Due.Prayer)).Str("at", now.Format("15:04")).Msg("prayer due")
		p.publish(ports.TopicPrayerDue, tick.Due)
	}
	if readingDue {
		p.checkReading(ctx, now)
	}
	return tick
}

func (p *PrayerPoller) checkReading(ctx context.Context, now time.Time) {
	var last *domain.LastRead
	if p.lastRead != nil {
		lr, err := p.lastRead.Get(ctx)
		switch {
		case err == nil:
			last = &lr
		case errors.Is(err, ports.ErrNotFound):
		default:
			p.logger.Warn().Err(err).Msg("last read lookup failed")
			return
		}
	}
	n, ok := domain.ReadingReminder(last, now)
	if !ok {
		return
	}

	p.mu.Lock()
	fire := p.state.ShouldFire(domain.NotificationReading, now)
	if fire {
		p.state.Mark(domain.NotificationReading, now)
	}
	p.mu.Unlock()
	if !fire {
		return
	}
	p.logger.Info().Str("title", n.Title).Msg("reading reminder due")
	p.publish(ports.TopicReadingDue, n)
}

func (p *PrayerPoller) refreshAsync(parent context.Context) {
	if !p.refreshRunning.CompareAndSwap(false, true) {
		return
	}
	timeout := p.RefreshTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	go func() {
		defer p.refreshRunning.Store(false)
		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), timeout)
		defer cancel()
		if _, err := p.schedules.Refresh(ctx); err != nil {
			p.logger.Warn().Err(err).Msg("day rollover refresh degraded")
		}
	}()
}

func (p *PrayerPoller) publish(topic string, v any) {
	if p.bus == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		p.logger.Warn().Err(err).Str("topic", topic).Msg("event encode failed")
		return
	}
	p.bus.Publish(topic, b)
}
