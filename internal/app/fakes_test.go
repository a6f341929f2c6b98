package app

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/ports"
)

var testDay = time.Date(2026, 2, 6, 0, 0, 0, 0, time.UTC)

func testTimings() map[string]string {
	return map[string]string{
		"Imsak":   "04:30",
		"Fajr":    "04:40",
		"Dhuhr":   "12:01",
		"Asr":     "15:14",
		"Maghrib": "18:08",
		"Isha":    "19:19",
	}
}

type recordingBus struct {
	mu     sync.Mutex
	events []ports.Event
}

func (b *recordingBus) Publish(topic string, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ports.Event{Topic: topic, Payload: payload})
}

func (b *recordingBus) Subscribe(topics ...string) (<-chan ports.Event, func()) {
	ch := make(chan ports.Event)
	return ch, func() {}
}

func (b *recordingBus) count(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e.Topic == topic {
			n++
		}
	}
	return n
}

func (b *recordingBus) last(topic string) (ports.Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.events) - 1; i >= 0; i-- {
		if b.events[i].Topic == topic {
			return b.events[i], true
		}
	}
	return ports.Event{}, false
}

type memSettingsRepo struct {
	mu       sync.Mutex
	settings domain.Settings
	err      error
}

func newMemSettingsRepo(loc *domain.Location) *memSettingsRepo {
	s := domain.DefaultSettings()
	s.Timezone = "UTC"
	s.Location = loc
	return &memSettingsRepo{settings: s}
}

func (r *memSettingsRepo) Get(ctx context.Context) (domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Settings{}, r.err
	}
	return r.settings, nil
}

func (r *memSettingsRepo) Put(ctx context.Context, s domain.Settings) (domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = s
	return s, nil
}

func (r *memSettingsRepo) update(fn func(*domain.Settings)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.settings)
}

type fakeSource struct {
	mu       sync.Mutex
	timings  map[string]string
	timezone string
	err      error
	calls    int
	days     []string
	monthly  []domain.DailySchedule
}

func (s *fakeSource) Daily(ctx context.Context, loc domain.Coordinates, method int, day time.Time) (domain.DailySchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.days = append(s.days, domain.DateKey(day))
	if s.err != nil {
		return domain.DailySchedule{}, s.err
	}
	tz := s.timezone
	if tz == "" {
		tz = "UTC"
	}
	sched, err := domain.NewSchedule(s.timings)
	if err != nil {
		return domain.DailySchedule{}, err
	}
	return domain.DailySchedule{
		Date:      domain.DateKey(day),
		Hijri:     domain.HijriDate{Day: "18", Month: "Sha'ban", Year: "1447"},
		Timezone:  tz,
		Timings:   sched,
		Source:    domain.SourceRemote,
		FetchedAt: day,
	}, nil
}

func (s *fakeSource) Monthly(ctx context.Context, loc domain.Coordinates, method int, year int, month time.Month) ([]domain.DailySchedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.monthly, nil
}

func (s *fakeSource) set(timings map[string]string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timings = timings
	s.err = err
}

func (s *fakeSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *fakeSource) requestedDays() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.days...)
}

type memCache struct {
	mu     sync.Mutex
	byDate map[string]domain.DailySchedule
	pruned []string
}

func newMemCache() *memCache {
	return &memCache{byDate: map[string]domain.DailySchedule{}}
}

func (c *memCache) Get(ctx context.Context, date string) (domain.DailySchedule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.byDate[date]
	if !ok {
		return domain.DailySchedule{}, ports.ErrNotFound
	}
	return d, nil
}

func (c *memCache) Put(ctx context.Context, d domain.DailySchedule) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byDate[d.Date] = d
	return nil
}

func (c *memCache) Prune(ctx context.Context, before string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruned = append(c.pruned, before)
	var n int64
	for date := range c.byDate {
		if date < before {
			delete(c.byDate, date)
			n++
		}
	}
	return n, nil
}

type memHistory struct {
	mu    sync.Mutex
	items []domain.Notification
}

func (h *memHistory) Record(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = append(h.items, n)
	return n, nil
}

func (h *memHistory) List(ctx context.Context, limit int) ([]domain.Notification, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := append([]domain.Notification(nil), h.items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].FiredAt.After(out[j].FiredAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (h *memHistory) Latest(ctx context.Context, kind domain.NotificationKind) (domain.Notification, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var (
		latest domain.Notification
		found  bool
	)
	for _, n := range h.items {
		if n.Kind == kind && (!found || n.FiredAt.After(latest.FiredAt)) {
			latest, found = n, true
		}
	}
	if !found {
		return domain.Notification{}, ports.ErrNotFound
	}
	return latest, nil
}

type memLastRead struct {
	mu sync.Mutex
	lr *domain.LastRead
}

func (r *memLastRead) Get(ctx context.Context) (domain.LastRead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lr == nil {
		return domain.LastRead{}, ports.ErrNotFound
	}
	return *r.lr, nil
}

func (r *memLastRead) Put(ctx context.Context, lr domain.LastRead) (domain.LastRead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lr = &lr
	return lr, nil
}

type fakeGeocoder struct {
	loc domain.Location
	err error
}

func (g *fakeGeocoder) Reverse(ctx context.Context, at domain.Coordinates) (domain.Location, error) {
	if g.err != nil {
		return domain.Location{}, g.err
	}
	out := g.loc
	out.Coordinates = at
	return out, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
	err  error
}

func (n *fakeNotifier) Notify(ctx context.Context, notif domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notif)
	return n.err
}

type fakeStatePublisher struct {
	mu    sync.Mutex
	ticks []domain.Tick
}

func (p *fakeStatePublisher) PublishState(ctx context.Context, tick domain.Tick) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ticks = append(p.ticks, tick)
	return nil
}

var errUpstream = errors.New("upstream down")
