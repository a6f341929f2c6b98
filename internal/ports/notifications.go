package ports

import (
	"context"

	"github.com/salam-labs/adzan/internal/domain"
)

type NotificationRepository interface {
	Record(ctx context.Context, n domain.Notification) (domain.Notification, error)
	List(ctx context.Context, limit int) ([]domain.Notification, error)
	// Latest renvoie ErrNotFound si aucun envoi du type demandé.
	Latest(ctx context.Context, kind domain.NotificationKind) (domain.Notification, error)
}

// Notifier pousse une notification déclenchée vers l'extérieur (broker, log, ...).
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

type LastReadRepository interface {
	// Get renvoie ErrNotFound tant que rien n'a été lu.
	Get(ctx context.Context) (domain.LastRead, error)
	Put(ctx context.Context, lr domain.LastRead) (domain.LastRead, error)
}

type Geocoder interface {
	Reverse(ctx context.Context, at domain.Coordinates) (domain.Location, error)
}

// StatePublisher reçoit l'état courant (prière active, compte à rebours) à chaque changement.
type StatePublisher interface {
	PublishState(ctx context.Context, tick domain.Tick) error
}
