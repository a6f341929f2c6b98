package app

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/salam-labs/adzan/internal/domain"
)

func newLocationFixture(t *testing.T, geo *fakeGeocoder) (*LocationService, scheduleFixture) {
	t.Helper()
	sf := newScheduleFixture(t, testDay.Add(10*time.Hour))
	sf.settings.update(func(s *domain.Settings) { s.Location = nil })
	settings := NewSettingsService(sf.settings, sf.bus)
	if geo == nil {
		return NewLocationService(zerolog.Nop(), settings, nil, sf.svc), sf
	}
	return NewLocationService(zerolog.Nop(), settings, geo, sf.svc), sf
}

func TestLocationService_SetResolvesCityAndRefreshes(t *testing.T) {
	svc, sf := newLocationFixture(t, &fakeGeocoder{loc: domain.Location{City: "Bandung", Country: "Indonesia"}})

	out, err := svc.Set(context.Background(), domain.Location{Coordinates: domain.Coordinates{Latitude: -6.91, Longitude: 107.61}})
	require.NoError(t, err)
	require.Equal(t, "Bandung", out.Settings.Location.City)
	require.Equal(t, domain.SourceRemote, out.Schedule.Source)
	require.Empty(t, out.Warning)
	require.Equal(t, 1, sf.source.callCount())
	require.Equal(t, "Bandung", sf.svc.Snapshot().Place.City)
}

func TestLocationService_SetGeocodeFailure(t *testing.T) {
	svc, sf := newLocationFixture(t, &fakeGeocoder{err: errUpstream})
	sf.source.set(nil, errUpstream)

	out, err := svc.Set(context.Background(), domain.Location{Coordinates: domain.Coordinates{Latitude: 1, Longitude: 2}})
	require.NoError(t, err)
	require.Equal(t, DetectedCity, out.Settings.Location.City)
	require.Equal(t, domain.SourceFallback, out.Schedule.Source)
	require.NotEmpty(t, out.Warning)
}

func TestLocationService_SetRejectsInvalidCoordinates(t *testing.T) {
	svc, _ := newLocationFixture(t, nil)
	_, err := svc.Set(context.Background(), domain.Location{Coordinates: domain.Coordinates{Latitude: 91, Longitude: 0}})
	require.ErrorIs(t, err, ErrInvalidSettings)
}

func TestLocationService_Qibla(t *testing.T) {
	svc, _ := newLocationFixture(t, nil)
	ctx := context.Background()

	_, err := svc.Qibla(ctx, nil)
	require.ErrorIs(t, err, ErrLocationNotSet)

	q, err := svc.Qibla(ctx, &domain.Coordinates{Latitude: -6.2088, Longitude: 106.8456})
	require.NoError(t, err)
	require.Equal(t, "NW", q.Direction)

	_, err = svc.Set(ctx, domain.Location{Coordinates: domain.Coordinates{Latitude: 51.5074, Longitude: -0.1278}, City: "London"})
	require.NoError(t, err)
	q, err = svc.Qibla(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, "SE", q.Direction)
}
