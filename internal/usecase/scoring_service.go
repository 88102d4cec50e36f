package usecase

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/riskibarqy/gameweek-draft/internal/domain/fixture"
	"github.com/riskibarqy/gameweek-draft/internal/domain/minigame"
	"github.com/riskibarqy/gameweek-draft/internal/domain/room"
	"github.com/riskibarqy/gameweek-draft/internal/platform/logging"
)

// resultsRefresher is implemented by providers that cache fixtures. An
// explicit recalculation drops the cached gameweek so it scores against the
// latest results.
type resultsRefresher interface {
	Forget(ctx context.Context, gameweek int)
}

type RecalculateResult struct {
	Scored       int
	ResultsKnown int
	Records      []minigame.ScoreRecord
}

// ScoringService scores sessions against the latest known results. Every run
// overwrites the previous records.
type ScoringService struct {
	repo     minigame.Repository
	rooms    room.Repository
	fixtures fixture.Provider
	clock    clockwork.Clock
	logger   *logging.Logger
}

func NewScoringService(
	repo minigame.Repository,
	rooms room.Repository,
	fixtures fixture.Provider,
	clock clockwork.Clock,
	logger *logging.Logger,
) *ScoringService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ScoringService{
		repo:     repo,
		rooms:    rooms,
		fixtures: fixtures,
		clock:    clock,
		logger:   logging.OrDefault(logger),
	}
}

// RecalculateAsLeader is Recalculate restricted to the room leader.
func (s *ScoringService) RecalculateAsLeader(ctx context.Context, key minigame.SessionKey, actorID string) (RecalculateResult, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return RecalculateResult{}, err
	}
	item, exists, err := s.rooms.GetRoom(ctx, key.RoomCode)
	if err != nil {
		return RecalculateResult{}, fmt.Errorf("get room: %w", err)
	}
	if !exists {
		return RecalculateResult{}, fmt.Errorf("%w: room=%s", ErrNotFound, key.RoomCode)
	}
	if item.LeaderID != actorID {
		return RecalculateResult{}, classify(room.ErrNotLeader)
	}
	s.refreshResults(ctx, key.Gameweek)
	return s.Recalculate(ctx, key)
}

func (s *ScoringService) refreshResults(ctx context.Context, gameweek int) {
	if r, ok := s.fixtures.(resultsRefresher); ok {
		r.Forget(ctx, gameweek)
	}
}

func (s *ScoringService) Recalculate(ctx context.Context, key minigame.SessionKey) (RecalculateResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.Recalculate")
	defer span.End()
	annotateSpan(span, key)

	key, err := normalizeKey(key)
	if err != nil {
		return RecalculateResult{}, err
	}

	session, ok, err := s.repo.GetSession(ctx, key)
	if err != nil {
		return RecalculateResult{}, fmt.Errorf("get session: %w", err)
	}
	if !ok {
		return RecalculateResult{}, classify(minigame.ErrSessionNotFound)
	}
	if len(session.Players) == 0 || len(session.FixtureIDs) == 0 {
		return RecalculateResult{}, fmt.Errorf("%w: session has no players or fixtures", ErrInvalidInput)
	}

	items, err := s.fixtures.ListByGameweek(ctx, key.Gameweek)
	if err != nil {
		recordSpanError(span, err)
		return RecalculateResult{}, upstreamError("list fixtures", err)
	}
	results := fixture.Results(items)
	if len(results) == 0 {
		return RecalculateResult{}, nil
	}

	picks, err := s.repo.ListPicks(ctx, key)
	if err != nil {
		return RecalculateResult{}, fmt.Errorf("list picks: %w", err)
	}
	locks, err := s.repo.ListGoldenLocks(ctx, key)
	if err != nil {
		return RecalculateResult{}, fmt.Errorf("list golden locks: %w", err)
	}

	records := minigame.ComputeScores(session, picks, locks, results, s.clock.Now().UTC())
	if err := s.repo.UpsertScoreRecords(ctx, key, records); err != nil {
		recordSpanError(span, err)
		return RecalculateResult{}, fmt.Errorf("upsert score records: %w", err)
	}

	s.logger.InfoContext(ctx, "session scores recalculated",
		"room_code", key.RoomCode,
		"gameweek", key.Gameweek,
		"players", len(records),
		"results_known", len(results),
	)
	return RecalculateResult{
		Scored:       len(records),
		ResultsKnown: len(results),
		Records:      records,
	}, nil
}

// ListScores returns the stored records of a session to a room member.
func (s *ScoringService) ListScores(ctx context.Context, key minigame.SessionKey, viewerID string) ([]minigame.ScoreRecord, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.ListScores")
	defer span.End()

	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}
	if _, ok, err := s.rooms.GetMember(ctx, key.RoomCode, viewerID); err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	} else if !ok {
		return nil, classify(room.ErrNotMember)
	}
	records, err := s.repo.ListScoreRecords(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("list score records: %w", err)
	}
	return records, nil
}
