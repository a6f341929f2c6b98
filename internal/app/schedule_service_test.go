package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/ports"
)

var jakarta = &domain.Location{Coordinates: domain.Coordinates{Latitude: -6.2, Longitude: 106.8}, City: "Jakarta"}

type scheduleFixture struct {
	svc      *ScheduleService
	source   *fakeSource
	cache    *memCache
	settings *memSettingsRepo
	bus      *recordingBus
	clock    *clockwork.FakeClock
}

func newScheduleFixture(t *testing.T, at time.Time) scheduleFixture {
	t.Helper()
	f := scheduleFixture{
		source:   &fakeSource{timings: testTimings()},
		cache:    newMemCache(),
		settings: newMemSettingsRepo(jakarta),
		bus:      &recordingBus{},
		clock:    clockwork.NewFakeClockAt(at),
	}
	f.svc = NewScheduleService(zerolog.Nop(), f.source, f.cache, f.settings.Get, f.bus, f.clock)
	return f
}

func TestScheduleService_SnapshotBeforeRefreshIsFallback(t *testing.T) {
	f := newScheduleFixture(t, testDay.Add(10*time.Hour))
	snap := f.svc.Snapshot()
	require.NotNil(t, snap)
	require.Equal(t, domain.SourceFallback, snap.Daily.Source)
	require.Equal(t, domain.FallbackTimings, snap.Daily.Timings.Timings())
}

func TestScheduleService_RefreshRemoteFillsCache(t *testing.T) {
	f := newScheduleFixture(t, testDay.Add(10*time.Hour))

	daily, err := f.svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.SourceRemote, daily.Source)
	require.Equal(t, "2026-02-06", daily.Date)

	cached, err := f.cache.Get(context.Background(), "2026-02-06")
	require.NoError(t, err)
	require.Equal(t, "12:01", cached.Timings.At(domain.Dhuhr).String())

	require.Equal(t, daily, f.svc.Snapshot().Daily)
	require.Equal(t, 1, f.bus.count(ports.TopicScheduleUpdated))
}

func TestScheduleService_RefreshPrefersCacheOverFallback(t *testing.T) {
	f := newScheduleFixture(t, testDay.Add(10*time.Hour))
	_, err := f.svc.Refresh(context.Background())
	require.NoError(t, err)

	f.source.set(nil, errUpstream)
	daily, err := f.svc.Refresh(context.Background())
	require.ErrorIs(t, err, errUpstream)
	require.Equal(t, domain.SourceCache, daily.Source)
	require.Equal(t, "12:01", daily.Timings.At(domain.Dhuhr).String())
}

func TestScheduleService_RefreshFallsBackWithoutCache(t *testing.T) {
	f := newScheduleFixture(t, testDay.Add(10*time.Hour))
	f.source.set(nil, errUpstream)

	daily, err := f.svc.Refresh(context.Background())
	require.ErrorIs(t, err, errUpstream)
	require.Equal(t, domain.SourceFallback, daily.Source)
	require.Equal(t, "04:30", daily.Timings.At(domain.Imsak).String())
	require.Equal(t, "19:25", daily.Timings.At(domain.Isha).String())
	require.Equal(t, "2026-02-06", daily.Date)
}

func TestScheduleService_RefreshRejectsNonMonotonicPayload(t *testing.T) {
	f := newScheduleFixture(t, testDay.Add(10*time.Hour))
	bad := testTimings()
	bad["Asr"] = "11:00"
	f.source.set(bad, nil)

	daily, err := f.svc.Refresh(context.Background())
	require.ErrorIs(t, err, domain.ErrInvalidSchedule)
	require.Equal(t, domain.SourceFallback, daily.Source)
}

func TestScheduleService_RefreshWithoutLocation(t *testing.T) {
	f := newScheduleFixture(t, testDay.Add(10*time.Hour))
	f.settings.update(func(s *domain.Settings) { s.Location = nil })

	daily, err := f.svc.Refresh(context.Background())
	require.ErrorIs(t, err, ErrLocationNotSet)
	require.Equal(t, domain.SourceFallback, daily.Source)
	require.Equal(t, 0, f.source.callCount())
}

func TestScheduleService_EnsureFresh(t *testing.T) {
	f := newScheduleFixture(t, testDay.Add(10*time.Hour))
	ctx := context.Background()

	refreshed, err := f.svc.EnsureFresh(ctx)
	require.NoError(t, err)
	require.True(t, refreshed)

	refreshed, err = f.svc.EnsureFresh(ctx)
	require.NoError(t, err)
	require.False(t, refreshed)

	f.clock.Advance(24 * time.Hour)
	refreshed, err = f.svc.EnsureFresh(ctx)
	require.NoError(t, err)
	require.True(t, refreshed)
	require.Equal(t, "2026-02-07", f.svc.Snapshot().Daily.Date)
}

func TestScheduleService_EnsureFreshRetriesAfterFallback(t *testing.T) {
	f := newScheduleFixture(t, testDay.Add(10*time.Hour))
	ctx := context.Background()
	f.source.set(nil, errUpstream)
	_, _ = f.svc.Refresh(ctx)

	f.source.set(testTimings(), nil)
	refreshed, err := f.svc.EnsureFresh(ctx)
	require.NoError(t, err)
	require.True(t, refreshed)
	require.Equal(t, domain.SourceRemote, f.svc.Snapshot().Daily.Source)
}

func TestScheduleService_Today(t *testing.T) {
	f := newScheduleFixture(t, testDay.Add(12*time.Hour+30*time.Minute))
	_, err := f.svc.Refresh(context.Background())
	require.NoError(t, err)

	view := f.svc.Today()
	require.Equal(t, domain.Dhuhr, view.Active)
	require.Equal(t, "Dzuhur", view.ActiveName)
	require.Equal(t, domain.Asr, view.Next.Key)
	require.Equal(t, "-2j 44m", view.Next.RemainingLabel)
	require.Equal(t, "18 Sha'ban 1447 H", view.HijriLabel)
	require.Equal(t, "Jakarta", view.Place.City)
	require.Len(t, view.Prayers, 6)
	require.Equal(t, "29m lalu", view.Prayers[2].Label)
}

func TestScheduleService_Monthly(t *testing.T) {
	f := newScheduleFixture(t, testDay)
	f.source.monthly = []domain.DailySchedule{domain.FallbackDailySchedule(testDay)}

	days, err := f.svc.Monthly(context.Background(), 2026, time.February)
	require.NoError(t, err)
	require.Len(t, days, 1)

	_, err = f.svc.Monthly(context.Background(), 2026, 13)
	var coded *CodedError
	require.True(t, errors.As(err, &coded))
	require.Equal(t, "invalid_params", coded.Code)

	f.settings.update(func(s *domain.Settings) { s.Location = nil })
	_, err = f.svc.Monthly(context.Background(), 2026, time.February)
	require.ErrorIs(t, err, ErrLocationNotSet)
}

func TestScheduleService_SnapshotStableAcrossRefresh(t *testing.T) {
	f := newScheduleFixture(t, testDay.Add(12*time.Hour+1*time.Minute))
	_, err := f.svc.Refresh(context.Background())
	require.NoError(t, err)

	held := f.svc.Snapshot()
	now := f.clock.Now()
	before := domain.Evaluate(held.Daily.Timings, now, nil)

	shifted := testTimings()
	shifted["Dhuhr"] = "12:30"
	f.source.set(shifted, nil)
	_, err = f.svc.Refresh(context.Background())
	require.NoError(t, err)

	after := domain.Evaluate(held.Daily.Timings, now, nil)
	require.Equal(t, before, after)
	require.NotNil(t, after.Due)
	require.Equal(t, "12:30", f.svc.Snapshot().Daily.Timings.At(domain.Dhuhr).String())
}

// Fixture sans fuseau configuré: la source annonce celui de la localisation.
func newZonelessFixture(t *testing.T, at time.Time, sourceTZ string) scheduleFixture {
	t.Helper()
	f := newScheduleFixture(t, at)
	f.settings.update(func(s *domain.Settings) { s.Timezone = "" })
	f.source.timezone = sourceTZ
	return f
}

func TestScheduleService_SourceTimezoneAheadOfMachine(t *testing.T) {
	// 20:00 UTC = 03:00 le lendemain à Jakarta.
	f := newZonelessFixture(t, testDay.Add(20*time.Hour), "Asia/Jakarta")
	ctx := context.Background()

	daily, err := f.svc.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, "2026-02-07", daily.Date)

	snap := f.svc.Snapshot()
	require.Equal(t, "Asia/Jakarta", snap.Location.String())
	require.True(t, snap.Daily.IsFor(f.svc.Now()))
	days := f.source.requestedDays()
	require.Equal(t, "2026-02-07", days[len(days)-1])

	calls := f.source.callCount()
	for i := 0; i < 5; i++ {
		refreshed, err := f.svc.EnsureFresh(ctx)
		require.NoError(t, err)
		require.False(t, refreshed)
		f.clock.Advance(time.Minute)
	}
	require.Equal(t, calls, f.source.callCount())
}

func TestScheduleService_RefreshReusesSourceTimezone(t *testing.T) {
	f := newZonelessFixture(t, testDay.Add(20*time.Hour), "Asia/Jakarta")
	ctx := context.Background()
	_, err := f.svc.Refresh(ctx)
	require.NoError(t, err)

	calls := f.source.callCount()
	f.clock.Advance(time.Hour)
	daily, err := f.svc.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, "2026-02-07", daily.Date)
	require.Equal(t, calls+1, f.source.callCount())
	require.Equal(t, []string{"2026-02-07"}, f.source.requestedDays()[calls:])
}

func TestScheduleService_SettingsTimezoneWinsOverSource(t *testing.T) {
	f := newScheduleFixture(t, testDay.Add(20*time.Hour))
	f.settings.update(func(s *domain.Settings) { s.Timezone = "Asia/Jakarta" })

	daily, err := f.svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2026-02-07", daily.Date)
	require.Equal(t, "Asia/Jakarta", f.svc.Snapshot().Location.String())
	require.Equal(t, 1, f.source.callCount())
}

func TestScheduleService_MachineTimezoneAsLastResort(t *testing.T) {
	for _, tz := range []string{"Local", "Mars/Olympus_Mons"} {
		f := newZonelessFixture(t, testDay.Add(20*time.Hour), tz)

		daily, err := f.svc.Refresh(context.Background())
		require.NoError(t, err, tz)
		require.Equal(t, time.Local, f.svc.Snapshot().Location, tz)
		require.Equal(t, domain.DateKey(f.clock.Now().In(time.Local)), daily.Date, tz)
		require.Equal(t, 1, f.source.callCount(), tz)
	}
}
