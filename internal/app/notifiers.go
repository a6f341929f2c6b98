package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/ports"
)

// LogNotifier écrit chaque notification dans les logs. C'est le notifier par défaut
// quand aucun broker n'est configuré.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, notif domain.Notification) error {
	ev := n.logger.Info().
		Str("notification_id", notif.ID).
		Str("kind", string(notif.Kind)).
		Str("title", notif.Title)
	if notif.Prayer != "" {
		ev = ev.Str("prayer", string(notif.Prayer))
	}
	if notif.Adzan != domain.AdzanNone {
		ev = ev.Str("adzan", string(notif.Adzan))
	}
	ev.Msg(notif.Message)
	return nil
}

// MultiNotifier envoie à tous les notifiers et agrège les erreurs.
type MultiNotifier []ports.Notifier

func (m MultiNotifier) Notify(ctx context.Context, n domain.Notification) error {
	var errs []error
	for _, notifier := range m {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
