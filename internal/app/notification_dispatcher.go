package app

import (
	"context"
	"encoding/json"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/ports"
)

// NotificationDispatcher consomme les événements du poller, applique les réglages
// utilisateur, historise puis pousse vers le Notifier.
type NotificationDispatcher struct {
	logger   zerolog.Logger
	bus      ports.EventBus
	settings SettingsGetter
	history  ports.NotificationRepository
	notifier ports.Notifier
	state    ports.StatePublisher
}

func NewNotificationDispatcher(logger zerolog.Logger, bus ports.EventBus, settings SettingsGetter, history ports.NotificationRepository, notifier ports.Notifier, state ports.StatePublisher) *NotificationDispatcher {
	return &NotificationDispatcher{logger: logger, bus: bus, settings: settings, history: history, notifier: notifier, state: state}
}

func (d *NotificationDispatcher) Run(ctx context.Context) {
	if d == nil || d.bus == nil {
		return
	}
	ch, cancel := d.bus.Subscribe(ports.TopicPrayerDue, ports.TopicReadingDue, ports.TopicPrayerActive)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info().Msg("notification dispatcher stopped")
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			d.handleEvent(ctx, evt)
		}
	}
}

func (d *NotificationDispatcher) handleEvent(ctx context.Context, evt ports.Event) {
	switch evt.Topic {
	case ports.TopicPrayerActive:
		if d.state == nil {
			return
		}
		var tick domain.Tick
		if err := json.Unmarshal(evt.Payload, &tick); err != nil {
			return
		}
		if err := d.state.PublishState(ctx, tick); err != nil {
			d.logger.Warn().Err(err).Msg("state publish failed")
		}
	case ports.TopicPrayerDue, ports.TopicReadingDue:
		var n domain.Notification
		if err := json.Unmarshal(evt.Payload, &n); err != nil {
			return
		}
		d.dispatch(ctx, n)
	}
}

func (d *NotificationDispatcher) dispatch(ctx context.Context, n domain.Notification) {
	settings := domain.DefaultSettings()
	if d.settings != nil {
		st, err := d.settings(ctx)
		if err != nil {
			d.logger.Warn().Err(err).Msg("settings unavailable, using defaults")
		} else {
			settings = st
		}
	}
	if !settings.NotificationsEnabled {
		return
	}
	if n.Kind == domain.NotificationReading && !settings.ReadingReminders {
		return
	}
	if settings.AdzanMuted {
		n.Adzan = domain.AdzanNone
	}
	if n.ID == "" {
		n.ID = xid.New().String()
	}

	if d.history != nil {
		recorded, err := d.history.Record(ctx, n)
		if err != nil {
			d.logger.Warn().Err(err).Str("notification_id", n.ID).Msg("failed to record notification")
		} else {
			n = recorded
		}
	}

	// Best-effort.
	if d.notifier != nil {
		if err := d.notifier.Notify(ctx, n); err != nil {
			d.logger.Warn().Err(err).Str("notification_id", n.ID).Msg("notify failed")
		}
	}

	if b, err := json.Marshal(n); err == nil {
		d.bus.Publish(ports.TopicNotificationSent, b)
	}
}
