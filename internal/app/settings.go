package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/ports"
)

type SettingsService struct {
	repo ports.SettingsRepository
	bus  ports.EventBus
}

func NewSettingsService(repo ports.SettingsRepository, bus ports.EventBus) *SettingsService {
	return &SettingsService{repo: repo, bus: bus}
}

func (s *SettingsService) Get(ctx context.Context) (domain.Settings, error) {
	return s.repo.Get(ctx)
}

// Put valide puis enregistre. Location nil conserve la localisation existante:
// elle se change via LocationService.
func (s *SettingsService) Put(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	existing, err := s.repo.Get(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	if settings.Location == nil {
		settings.Location = existing.Location
	}
	if settings.Method <= 0 {
		settings.Method = domain.DefaultSettings().Method
	}
	settings.Timezone = strings.TrimSpace(settings.Timezone)
	if settings.Timezone != "" {
		if _, err := time.LoadLocation(settings.Timezone); err != nil {
			return domain.Settings{}, fmt.Errorf("%w: unknown timezone %q", ErrInvalidSettings, settings.Timezone)
		}
	}
	return s.save(ctx, settings)
}

func (s *SettingsService) SetLocation(ctx context.Context, loc domain.Location) (domain.Settings, error) {
	if err := loc.Validate(); err != nil {
		return domain.Settings{}, err
	}
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	settings.Location = &loc
	return s.save(ctx, settings)
}

func (s *SettingsService) save(ctx context.Context, settings domain.Settings) (domain.Settings, error) {
	updated, err := s.repo.Put(ctx, settings)
	if err != nil {
		return domain.Settings{}, err
	}
	if s.bus != nil {
		if b, err := json.Marshal(updated); err == nil {
			s.bus.Publish(ports.TopicSettingsUpdated, b)
		}
	}
	return updated, nil
}
