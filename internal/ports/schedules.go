package ports

import (
	"context"
	"time"

	"github.com/salam-labs/adzan/internal/domain"
)

// ScheduleSource fournit les horaires calculés pour des coordonnées.
type ScheduleSource interface {
	Daily(ctx context.Context, loc domain.Coordinates, method int, day time.Time) (domain.DailySchedule, error)
	Monthly(ctx context.Context, loc domain.Coordinates, method int, year int, month time.Month) ([]domain.DailySchedule, error)
}

// ScheduleCache garde le dernier horaire valide par date ("2006-01-02").
// Get renvoie ErrNotFound si la date est absente.
type ScheduleCache interface {
	Get(ctx context.Context, date string) (domain.DailySchedule, error)
	Put(ctx context.Context, sched domain.DailySchedule) error
}
