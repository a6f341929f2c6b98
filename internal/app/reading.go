package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/salam-labs/adzan/internal/domain"
	"github.com/salam-labs/adzan/internal/ports"
)

const surahCount = 114

type ReadingService struct {
	repo  ports.LastReadRepository
	clock clockwork.Clock
}

func NewReadingService(repo ports.LastReadRepository, clock clockwork.Clock) *ReadingService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ReadingService{repo: repo, clock: clock}
}

// Get renvoie nil tant qu'aucune lecture n'a été enregistrée.
func (s *ReadingService) Get(ctx context.Context) (*domain.LastRead, error) {
	lr, err := s.repo.Get(ctx)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lr, nil
}

func (s *ReadingService) Put(ctx context.Context, lr domain.LastRead) (domain.LastRead, error) {
	lr.SurahName = strings.TrimSpace(lr.SurahName)
	if lr.SurahNumber < 1 || lr.SurahNumber > surahCount {
		return domain.LastRead{}, fmt.Errorf("%w: surah number must be in 1..%d", ErrInvalidLastRead, surahCount)
	}
	if lr.SurahName == "" {
		return domain.LastRead{}, fmt.Errorf("%w: surah name required", ErrInvalidLastRead)
	}
	if lr.Ayah < 0 {
		return domain.LastRead{}, fmt.Errorf("%w: ayah must be positive", ErrInvalidLastRead)
	}
	if lr.UpdatedAt.IsZero() {
		lr.UpdatedAt = s.clock.Now()
	}
	return s.repo.Put(ctx, lr)
}
