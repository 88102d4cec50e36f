package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/riskibarqy/gameweek-draft/internal/domain/fixture"
	"github.com/riskibarqy/gameweek-draft/internal/domain/minigame"
	"github.com/riskibarqy/gameweek-draft/internal/domain/room"
	"github.com/riskibarqy/gameweek-draft/internal/platform/id"
	"github.com/riskibarqy/gameweek-draft/internal/platform/logging"
	"github.com/riskibarqy/gameweek-draft/internal/platform/resilience"
)

const defaultFixturesPerSession = 10

type SessionServiceConfig struct {
	FixturesPerSession int
	Retry              resilience.RetryConfig
}

// SessionService drives a session through start, draft and golden phases.
type SessionService struct {
	repo     minigame.Repository
	rooms    room.Repository
	fixtures fixture.Provider
	ids      id.Generator
	shuffler minigame.Shuffler
	clock    clockwork.Clock
	cfg      SessionServiceConfig
	logger   *logging.Logger
}

func NewSessionService(
	repo minigame.Repository,
	rooms room.Repository,
	fixtures fixture.Provider,
	ids id.Generator,
	shuffler minigame.Shuffler,
	clock clockwork.Clock,
	cfg SessionServiceConfig,
	logger *logging.Logger,
) *SessionService {
	if shuffler == nil {
		shuffler = minigame.RandomShuffler{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cfg.FixturesPerSession <= 0 {
		cfg.FixturesPerSession = defaultFixturesPerSession
	}
	return &SessionService{
		repo:     repo,
		rooms:    rooms,
		fixtures: fixtures,
		ids:      ids,
		shuffler: shuffler,
		clock:    clock,
		cfg:      cfg,
		logger:   logging.OrDefault(logger),
	}
}

// SessionView is what a room member sees when polling a session.
type SessionView struct {
	Session    minigame.Session
	ActiveTurn *minigame.Turn
	Picks      []minigame.Pick
	Locks      []LockStatus
	MyGolden   *minigame.GoldenLock
}

type LockStatus struct {
	PlayerID string
	Locked   bool
	// FixtureID and Score are only filled once the session is revealed.
	FixtureID int64
	Score     *minigame.Score
}

func (s *SessionService) StartSession(ctx context.Context, key minigame.SessionKey, leaderID string) (minigame.Session, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.StartSession")
	defer span.End()
	annotateSpan(span, key)

	key, err := normalizeKey(key)
	if err != nil {
		return minigame.Session{}, err
	}
	leaderID = strings.TrimSpace(leaderID)

	item, exists, err := s.rooms.GetRoom(ctx, key.RoomCode)
	if err != nil {
		return minigame.Session{}, fmt.Errorf("get room: %w", err)
	}
	if !exists {
		return minigame.Session{}, fmt.Errorf("%w: room=%s", ErrNotFound, key.RoomCode)
	}
	if item.LeaderID != leaderID {
		return minigame.Session{}, classify(room.ErrNotLeader)
	}

	lobby, err := s.rooms.ListLobby(ctx, key.RoomCode, key.Gameweek)
	if err != nil {
		return minigame.Session{}, fmt.Errorf("list lobby: %w", err)
	}
	players := make([]string, 0, len(lobby))
	for _, entry := range lobby {
		players = append(players, entry.UserID)
	}
	if len(players) < 2 {
		return minigame.Session{}, classify(fmt.Errorf("%w: lobby has %d", minigame.ErrNotEnoughPlayers, len(players)))
	}

	fixtures, err := s.fixtures.ListByGameweek(ctx, key.Gameweek)
	if err != nil {
		return minigame.Session{}, upstreamError("list fixtures", err)
	}
	if len(fixtures) == 0 {
		return minigame.Session{}, classify(fmt.Errorf("%w: gameweek=%d", minigame.ErrNoFixtures, key.Gameweek))
	}
	if len(fixtures) > s.cfg.FixturesPerSession {
		fixtures = fixtures[:s.cfg.FixturesPerSession]
	}
	fixtureIDs := make([]int64, 0, len(fixtures))
	for _, f := range fixtures {
		fixtureIDs = append(fixtureIDs, f.ID)
	}

	sessionID, err := s.ids.NewID()
	if err != nil {
		return minigame.Session{}, fmt.Errorf("generate session id: %w", err)
	}
	params := minigame.StartParams{
		ID:         sessionID,
		Key:        key,
		LeaderID:   leaderID,
		Players:    s.shuffler.Shuffle(players),
		FixtureIDs: fixtureIDs,
		Now:        s.clock.Now().UTC(),
	}

	var started minigame.Session
	err = runInTx(ctx, s.repo, s.cfg.Retry, func(ctx context.Context, tx minigame.Tx) error {
		started = minigame.Session{}

		existing, ok, err := tx.GetSession(ctx, key)
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		var current *minigame.Session
		if ok {
			current = &existing
		}

		next, err := minigame.NewSession(params, current)
		if err != nil {
			return err
		}
		if err := tx.PutSession(ctx, next); err != nil {
			return fmt.Errorf("put session: %w", err)
		}
		started = next
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		return minigame.Session{}, classify(err)
	}

	s.logger.InfoContext(ctx, "draft session started",
		"room_code", key.RoomCode,
		"gameweek", key.Gameweek,
		"session_id", started.ID,
		"players", len(started.Players),
		"fixtures", len(started.FixtureIDs),
	)
	return started, nil
}

func (s *SessionService) SubmitPick(ctx context.Context, key minigame.SessionKey, playerID, rawScore string) (minigame.Session, minigame.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.SubmitPick")
	defer span.End()
	annotateSpan(span, key)

	key, err := normalizeKey(key)
	if err != nil {
		return minigame.Session{}, minigame.Pick{}, err
	}
	score, err := minigame.ParseScore(rawScore)
	if err != nil {
		return minigame.Session{}, minigame.Pick{}, classify(err)
	}

	var (
		updated minigame.Session
		created minigame.Pick
	)
	err = runInTx(ctx, s.repo, s.cfg.Retry, func(ctx context.Context, tx minigame.Tx) error {
		updated, created = minigame.Session{}, minigame.Pick{}

		session, ok, err := tx.GetSession(ctx, key)
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		if !ok {
			return minigame.ErrSessionNotFound
		}
		turn, err := session.PickTurn(playerID)
		if err != nil {
			return err
		}
		_, taken, err := tx.FindPickByScore(ctx, key, turn.FixtureID, score)
		if err != nil {
			return fmt.Errorf("find pick by score: %w", err)
		}
		_, picked, err := tx.GetPick(ctx, key, playerID, turn.FixtureID)
		if err != nil {
			return fmt.Errorf("get pick: %w", err)
		}

		next, pick, err := minigame.ApplyPick(session, turn, score, taken, picked, s.clock.Now().UTC())
		if err != nil {
			return err
		}
		if err := tx.PutSession(ctx, next); err != nil {
			return fmt.Errorf("put session: %w", err)
		}
		if err := tx.CreatePick(ctx, key, pick); err != nil {
			return fmt.Errorf("create pick: %w", err)
		}
		updated, created = next, pick
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		return minigame.Session{}, minigame.Pick{}, classify(err)
	}

	if updated.State == minigame.StateGolden {
		s.logger.InfoContext(ctx, "draft complete",
			"room_code", key.RoomCode,
			"gameweek", key.Gameweek,
			"turns", updated.TotalTurns,
		)
	}
	return updated, created, nil
}

func (s *SessionService) LockGolden(ctx context.Context, key minigame.SessionKey, playerID string, fixtureID int64, rawScore string) (minigame.Session, minigame.GoldenLock, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.LockGolden")
	defer span.End()
	annotateSpan(span, key)

	key, err := normalizeKey(key)
	if err != nil {
		return minigame.Session{}, minigame.GoldenLock{}, err
	}
	if fixtureID <= 0 {
		return minigame.Session{}, minigame.GoldenLock{}, fmt.Errorf("%w: fixture id is required", ErrInvalidInput)
	}
	score, err := minigame.ParseScore(rawScore)
	if err != nil {
		return minigame.Session{}, minigame.GoldenLock{}, classify(err)
	}
	req := minigame.GoldenRequest{PlayerID: playerID, FixtureID: fixtureID, Score: score}

	var (
		updated minigame.Session
		locked  minigame.GoldenLock
	)
	err = runInTx(ctx, s.repo, s.cfg.Retry, func(ctx context.Context, tx minigame.Tx) error {
		updated, locked = minigame.Session{}, minigame.GoldenLock{}

		session, ok, err := tx.GetSession(ctx, key)
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		if !ok {
			return minigame.ErrSessionNotFound
		}
		if err := session.RequireGoldenPhase(); err != nil {
			return err
		}

		var pick *minigame.Pick
		found, ok, err := tx.GetPick(ctx, key, playerID, fixtureID)
		if err != nil {
			return fmt.Errorf("get pick: %w", err)
		}
		if ok {
			pick = &found
		}
		locks, err := tx.GetGoldenLocks(ctx, key, session.Players)
		if err != nil {
			return fmt.Errorf("get golden locks: %w", err)
		}

		next, lock, err := minigame.ApplyGoldenLock(session, req, pick, locks, s.clock.Now().UTC())
		if err != nil {
			return err
		}
		if err := tx.PutGoldenLock(ctx, key, lock); err != nil {
			return fmt.Errorf("put golden lock: %w", err)
		}
		if err := tx.PutSession(ctx, next); err != nil {
			return fmt.Errorf("put session: %w", err)
		}
		updated, locked = next, lock
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		return minigame.Session{}, minigame.GoldenLock{}, classify(err)
	}

	if updated.State == minigame.StateReveal {
		s.logger.InfoContext(ctx, "session revealed",
			"room_code", key.RoomCode,
			"gameweek", key.Gameweek,
			"session_id", updated.ID,
		)
	}
	return updated, locked, nil
}

// GetSessionView returns the session as viewerID may see it. While golden
// locks are being chosen only the viewer's own picks are visible.
func (s *SessionService) GetSessionView(ctx context.Context, key minigame.SessionKey, viewerID string) (SessionView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SessionService.GetSessionView")
	defer span.End()

	key, err := normalizeKey(key)
	if err != nil {
		return SessionView{}, err
	}
	if _, ok, err := s.rooms.GetMember(ctx, key.RoomCode, viewerID); err != nil {
		return SessionView{}, fmt.Errorf("get member: %w", err)
	} else if !ok {
		return SessionView{}, classify(room.ErrNotMember)
	}

	session, ok, err := s.repo.GetSession(ctx, key)
	if err != nil {
		return SessionView{}, fmt.Errorf("get session: %w", err)
	}
	if !ok {
		return SessionView{}, classify(minigame.ErrSessionNotFound)
	}
	picks, err := s.repo.ListPicks(ctx, key)
	if err != nil {
		return SessionView{}, fmt.Errorf("list picks: %w", err)
	}
	locks, err := s.repo.ListGoldenLocks(ctx, key)
	if err != nil {
		return SessionView{}, fmt.Errorf("list golden locks: %w", err)
	}

	view := SessionView{Session: session}
	if turn, ok := session.ActiveTurn(); ok {
		view.ActiveTurn = &turn
	}

	hideOthers := session.State == minigame.StateGolden
	view.Picks = make([]minigame.Pick, 0, len(picks))
	for _, p := range picks {
		if hideOthers && p.PlayerID != viewerID {
			continue
		}
		view.Picks = append(view.Picks, p)
	}

	byPlayer := make(map[string]minigame.GoldenLock, len(locks))
	for _, l := range locks {
		byPlayer[l.PlayerID] = l
	}
	view.Locks = make([]LockStatus, 0, len(session.Players))
	for _, playerID := range session.Players {
		l, ok := byPlayer[playerID]
		status := LockStatus{PlayerID: playerID, Locked: ok && l.Locked}
		if status.Locked && session.State == minigame.StateReveal {
			score := l.Score
			status.FixtureID = l.FixtureID
			status.Score = &score
		}
		view.Locks = append(view.Locks, status)
		if ok && playerID == viewerID {
			own := l
			view.MyGolden = &own
		}
	}
	return view, nil
}

func normalizeKey(key minigame.SessionKey) (minigame.SessionKey, error) {
	code, err := room.NormalizeCode(key.RoomCode)
	if err != nil {
		return minigame.SessionKey{}, classify(err)
	}
	if !minigame.ValidGameweek(key.Gameweek) {
		return minigame.SessionKey{}, fmt.Errorf("%w: gameweek must be between %d and %d", ErrInvalidInput, minigame.MinGameweek, minigame.MaxGameweek)
	}
	return minigame.SessionKey{RoomCode: code, Gameweek: key.Gameweek}, nil
}
