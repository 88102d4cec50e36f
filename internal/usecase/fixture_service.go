package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/riskibarqy/gameweek-draft/internal/domain/fixture"
	"github.com/riskibarqy/gameweek-draft/internal/domain/minigame"
)

const (
	currentGameweekLookback  = 21 * 24 * time.Hour
	currentGameweekLookahead = 35 * 24 * time.Hour
)

type FixtureService struct {
	provider fixture.Provider
	clock    clockwork.Clock
}

func NewFixtureService(provider fixture.Provider, clock clockwork.Clock) *FixtureService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &FixtureService{provider: provider, clock: clock}
}

func (s *FixtureService) ListByGameweek(ctx context.Context, gameweek int) ([]fixture.Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.ListByGameweek")
	defer span.End()

	if !minigame.ValidGameweek(gameweek) {
		return nil, fmt.Errorf("%w: gameweek must be between %d and %d", ErrInvalidInput, minigame.MinGameweek, minigame.MaxGameweek)
	}
	items, err := s.provider.ListByGameweek(ctx, gameweek)
	if err != nil {
		return nil, upstreamError("list fixtures by gameweek", err)
	}
	return items, nil
}

// CurrentGameweek looks at matches three weeks back and five weeks ahead.
func (s *FixtureService) CurrentGameweek(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureService.CurrentGameweek")
	defer span.End()

	now := s.clock.Now().UTC()
	items, err := s.provider.ListByDateRange(ctx, now.Add(-currentGameweekLookback), now.Add(currentGameweekLookahead))
	if err != nil {
		return 0, upstreamError("list fixtures by date range", err)
	}
	return fixture.CurrentGameweek(items), nil
}
