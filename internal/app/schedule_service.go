package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/ports"
)

// Snapshot est l'horaire en vigueur avec le fuseau qui sert à calculer "maintenant".
// Il n'est jamais modifié: un refresh en publie un nouveau.
type Snapshot struct {
	Daily    domain.DailySchedule
	Location *time.Location
	Place    *domain.Location
}

type SettingsGetter func(ctx context.Context) (domain.Settings, error)

// ScheduleService détient la référence vers l'horaire du jour et la remplace
// d'un bloc à chaque refresh, pour qu'un tick de polling ne voie jamais un état partiel.
type ScheduleService struct {
	logger   zerolog.Logger
	source   ports.ScheduleSource
	cache    ports.ScheduleCache
	settings SettingsGetter
	bus      ports.EventBus
	clock    clockwork.Clock

	current   atomic.Pointer[Snapshot]
	refreshMu sync.Mutex
}

func NewScheduleService(logger zerolog.Logger, source ports.ScheduleSource, cache ports.ScheduleCache, settings SettingsGetter, bus ports.EventBus, clock clockwork.Clock) *ScheduleService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ScheduleService{logger: logger, source: source, cache: cache, settings: settings, bus: bus, clock: clock}
}

// Snapshot renvoie l'horaire courant ; avant le premier refresh, le fallback du jour.
func (s *ScheduleService) Snapshot() *Snapshot {
	if snap := s.current.Load(); snap != nil {
		return snap
	}
	now := s.clock.Now()
	return &Snapshot{Daily: domain.FallbackDailySchedule(now), Location: now.Location()}
}

func (s *ScheduleService) Now() time.Time {
	return s.clock.Now().In(s.Snapshot().Location)
}

// Refresh recharge l'horaire du jour: source distante, puis cache du même jour, puis
// fallback. Le Schedule renvoyé est toujours utilisable ; l'erreur décrit seulement
// l'échec amont éventuel.
func (s *ScheduleService) Refresh(ctx context.Context) (domain.DailySchedule, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	settings := domain.DefaultSettings()
	if s.settings != nil {
		st, err := s.settings(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("settings unavailable, using defaults")
		} else {
			settings = st
		}
	}

	// Sans fuseau configuré, on reprend celui annoncé par la source au refresh précédent.
	zone := settings.Timezone
	if zone == "" {
		if prev := s.current.Load(); prev != nil {
			zone = prev.Location.String()
		}
	}
	loc := resolveTimezone(zone)
	today := s.clock.Now().In(loc)

	daily, fetchErr := s.fetch(ctx, settings, today)
	if settings.Timezone == "" && daily.Timezone != "" {
		if reported := resolveTimezone(daily.Timezone); reported.String() != loc.String() {
			loc = reported
			// La date demandée doit être "aujourd'hui" dans le fuseau qui sert au polling.
			if local := s.clock.Now().In(loc); !daily.IsFor(local) {
				daily, fetchErr = s.fetch(ctx, settings, local)
			}
		}
	}

	snap := &Snapshot{Daily: daily, Location: loc, Place: settings.Location}
	s.current.Store(snap)

	ev := s.logger.Info()
	if fetchErr != nil {
		ev = s.logger.Warn().Err(fetchErr)
	}
	ev.Str("date", daily.Date).Str("source", string(daily.Source)).Str("tz", loc.String()).Msg("schedule refreshed")

	if s.bus != nil {
		if b, err := json.Marshal(daily); err == nil {
			s.bus.Publish(ports.TopicScheduleUpdated, b)
		}
	}
	return daily, fetchErr
}

func (s *ScheduleService) fetch(ctx context.Context, settings domain.Settings, today time.Time) (domain.DailySchedule, error) {
	date := domain.DateKey(today)

	var fetchErr error
	if settings.Location == nil {
		fetchErr = ErrLocationNotSet
	} else if s.source == nil {
		fetchErr = errors.New("no schedule source configured")
	} else {
		daily, err := s.source.Daily(ctx, settings.Location.Coordinates, settings.Method, today)
		if err == nil {
			err = daily.Timings.Validate()
		}
		if err == nil {
			if s.cache != nil {
				if err := s.cache.Put(ctx, daily); err != nil {
					s.logger.Warn().Err(err).Str("date", daily.Date).Msg("schedule cache write failed")
				}
			}
			return daily, nil
		}
		fetchErr = err
	}

	// Last-known-good pour la même date.
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, date)
		if err == nil && cached.Timings.Validate() == nil {
			cached.Source = domain.SourceCache
			return cached, fetchErr
		}
		if err != nil && !errors.Is(err, ports.ErrNotFound) {
			s.logger.Warn().Err(err).Str("date", date).Msg("schedule cache read failed")
		}
	}
	return domain.FallbackDailySchedule(today), fetchErr
}

// EnsureFresh relance un refresh si l'horaire n'est plus celui du jour, ou s'il ne
// vient pas de la source distante (nouvelle tentative après un fallback).
func (s *ScheduleService) EnsureFresh(ctx context.Context) (bool, error) {
	snap := s.current.Load()
	if snap != nil {
		now := s.clock.Now().In(snap.Location)
		if snap.Daily.IsFor(now) && snap.Daily.Source == domain.SourceRemote {
			return false, nil
		}
	}
	_, err := s.Refresh(ctx)
	return true, err
}

type TodayView struct {
	domain.DailySchedule
	Now        time.Time                  `json:"now"`
	HijriLabel string                     `json:"hijriLabel,omitempty"`
	Place      *domain.Location           `json:"place,omitempty"`
	Active     domain.PrayerKey           `json:"active"`
	ActiveName string                     `json:"activeName"`
	Next       domain.NextPrayerCountdown `json:"next"`
	Prayers    []domain.PrayerStatus      `json:"prayers"`
}

// Today calcule la vue du jour sur un seul instantané.
func (s *ScheduleService) Today() TodayView {
	snap := s.Snapshot()
	now := s.clock.Now().In(snap.Location)
	active := domain.ActivePrayer(snap.Daily.Timings, now)
	return TodayView{
		DailySchedule: snap.Daily,
		Now:           now,
		HijriLabel:    snap.Daily.Hijri.String(),
		Place:         snap.Place,
		Active:        active,
		ActiveName:    active.Label(),
		Next:          domain.NextPrayer(snap.Daily.Timings, now),
		Prayers:       domain.Statuses(snap.Daily.Timings, now),
	}
}

func (s *ScheduleService) Monthly(ctx context.Context, year int, month time.Month) ([]domain.DailySchedule, error) {
	if month < time.January || month > time.December || year < 1 {
		return nil, &CodedError{Code: "invalid_params", Message: fmt.Sprintf("invalid month %d/%d", month, year)}
	}
	if s.source == nil || s.settings == nil {
		return nil, errors.New("no schedule source configured")
	}
	settings, err := s.settings(ctx)
	if err != nil {
		return nil, err
	}
	if settings.Location == nil {
		return nil, ErrLocationNotSet
	}
	return s.source.Monthly(ctx, settings.Location.Coordinates, settings.Method, year, month)
}

func resolveTimezone(names ...string) *time.Location {
	for _, name := range names {
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.Local
}
