package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/ports"
)

// DetectedCity est le nom affiché quand le géocodage inverse échoue.
const DetectedCity = "Lokasi Terdeteksi"

type LocationService struct {
	logger    zerolog.Logger
	settings  *SettingsService
	geocoder  ports.Geocoder
	schedules *ScheduleService
}

func NewLocationService(logger zerolog.Logger, settings *SettingsService, geocoder ports.Geocoder, schedules *ScheduleService) *LocationService {
	return &LocationService{logger: logger, settings: settings, geocoder: geocoder, schedules: schedules}
}

type LocationUpdate struct {
	Settings domain.Settings      `json:"settings"`
	Schedule domain.DailySchedule `json:"schedule"`
	// Warning est renseigné quand la source distante n'a pas répondu et qu'on sert le cache ou le fallback.
	Warning string `json:"warning,omitempty"`
}

// Set enregistre de nouvelles coordonnées puis recharge immédiatement l'horaire.
// La ville fournie par l'appelant est gardée ; sinon on tente le géocodage inverse.
func (s *LocationService) Set(ctx context.Context, loc domain.Location) (LocationUpdate, error) {
	if err := loc.Validate(); err != nil {
		return LocationUpdate{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	loc.City = strings.TrimSpace(loc.City)
	if loc.City == "" {
		loc.City = DetectedCity
		if s.geocoder != nil {
			resolved, err := s.geocoder.Reverse(ctx, loc.Coordinates)
			if err != nil {
				s.logger.Warn().Err(err).Float64("lat", loc.Latitude).Float64("lng", loc.Longitude).Msg("reverse geocoding failed")
			} else {
				loc.City = resolved.City
				loc.Country = resolved.Country
			}
		}
	}

	settings, err := s.settings.SetLocation(ctx, loc)
	if err != nil {
		return LocationUpdate{}, err
	}

	out := LocationUpdate{Settings: settings}
	if s.schedules != nil {
		daily, err := s.schedules.Refresh(ctx)
		out.Schedule = daily
		if err != nil {
			out.Warning = err.Error()
		}
	}
	return out, nil
}

// Qibla calcule la direction depuis from, ou depuis la localisation enregistrée si from est nil.
func (s *LocationService) Qibla(ctx context.Context, from *domain.Coordinates) (domain.Qibla, error) {
	if from == nil {
		settings, err := s.settings.Get(ctx)
		if err != nil {
			return domain.Qibla{}, err
		}
		if settings.Location == nil {
			return domain.Qibla{}, ErrLocationNotSet
		}
		c := settings.Location.Coordinates
		from = &c
	}
	q, err := domain.QiblaFrom(*from)
	if err != nil {
		return domain.Qibla{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return q, nil
}
