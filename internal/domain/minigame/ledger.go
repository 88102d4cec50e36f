package minigame

import (
	"fmt"
	"time"
)

// StartParams carries everything needed to open the draft.
type StartParams struct {
	ID         string
	Key        SessionKey
	LeaderID   string
	Players    []string
	FixtureIDs []int64
	Now        time.Time
}

// NewSession builds the DRAFT session from the shuffled roster. existing is the
// session currently stored under the key, if any.
func NewSession(params StartParams, existing *Session) (Session, error) {
	from := StateLobby
	if existing != nil {
		if existing.State.Started() {
			return Session{}, ErrAlreadyStarted
		}
		from = existing.State
	}
	if len(params.Players) < 2 {
		return Session{}, ErrNotEnoughPlayers
	}
	if len(params.FixtureIDs) == 0 {
		return Session{}, ErrNoFixtures
	}

	state, err := Transition(OpStart, from, true)
	if err != nil {
		return Session{}, err
	}

	session := Session{
		ID:          params.ID,
		Key:         params.Key,
		State:       state,
		LeaderID:    params.LeaderID,
		Players:     append([]string(nil), params.Players...),
		FixtureIDs:  append([]int64(nil), params.FixtureIDs...),
		CurrentTurn: 0,
		TotalTurns:  TotalTurns(params.Players, params.FixtureIDs),
		CreatedAt:   params.Now,
		StartedAt:   params.Now,
		UpdatedAt:   params.Now,
	}
	if existing != nil {
		session.Version = existing.Version
		if !existing.CreatedAt.IsZero() {
			session.CreatedAt = existing.CreatedAt
		}
		if existing.ID != "" {
			session.ID = existing.ID
		}
	}
	return session, nil
}

// PickTurn checks that playerID may pick right now and returns the turn.
func (s Session) PickTurn(playerID string) (Turn, error) {
	if err := Require(OpPick, s.State); err != nil {
		return Turn{}, err
	}
	if s.CurrentTurn >= s.TotalTurns {
		return Turn{}, ErrDraftComplete
	}
	turn, ok := ActiveTurn(s.Players, s.FixtureIDs, s.CurrentTurn)
	if !ok {
		return Turn{}, ErrDraftComplete
	}
	if turn.PlayerID != playerID {
		return Turn{}, ErrNotYourTurn
	}
	return turn, nil
}

// ApplyPick decides a pick from reads taken in the same transaction: whether
// the score is already claimed on the fixture and whether the player already
// picked it. It returns the session to write back and the pick to create.
func ApplyPick(s Session, turn Turn, score Score, scoreTaken, alreadyPicked bool, now time.Time) (Session, Pick, error) {
	if scoreTaken {
		return Session{}, Pick{}, fmt.Errorf("%w: %s on fixture %d", ErrScoreTaken, score, turn.FixtureID)
	}
	if alreadyPicked {
		return Session{}, Pick{}, ErrAlreadyPicked
	}

	next := s
	next.CurrentTurn++
	state, err := Transition(OpPick, s.State, next.CurrentTurn >= next.TotalTurns)
	if err != nil {
		return Session{}, Pick{}, err
	}
	next.State = state
	next.UpdatedAt = now

	return next, Pick{
		PlayerID:  turn.PlayerID,
		FixtureID: turn.FixtureID,
		Score:     score,
		CreatedAt: now,
	}, nil
}

// RequireGoldenPhase fails fast before any golden read is issued.
func (s Session) RequireGoldenPhase() error {
	if err := Require(OpLockGolden, s.State); err != nil {
		return err
	}
	if len(s.Players) == 0 {
		return ErrNoPlayers
	}
	return nil
}

// GoldenRequest is the lock a player asks for.
type GoldenRequest struct {
	PlayerID  string
	FixtureID int64
	Score     Score
}

// ApplyGoldenLock decides a golden lock. pick is the acting player's pick on
// the requested fixture (nil when absent) and locks holds every player's lock
// as read in the same transaction. The phase completes when this lock brings
// the locked count to the number of players.
func ApplyGoldenLock(s Session, req GoldenRequest, pick *Pick, locks map[string]GoldenLock, now time.Time) (Session, GoldenLock, error) {
	if err := s.RequireGoldenPhase(); err != nil {
		return Session{}, GoldenLock{}, err
	}
	if pick == nil || pick.PlayerID != req.PlayerID || pick.FixtureID != req.FixtureID || pick.Score != req.Score {
		return Session{}, GoldenLock{}, ErrInvalidGoldenReference
	}
	if own, ok := locks[req.PlayerID]; ok && own.Locked {
		return Session{}, GoldenLock{}, ErrAlreadyLocked
	}

	lockedBefore := 0
	for _, playerID := range s.Players {
		if l, ok := locks[playerID]; ok && l.Locked {
			lockedBefore++
		}
	}

	next := s
	state, err := Transition(OpLockGolden, s.State, lockedBefore+1 >= len(s.Players))
	if err != nil {
		return Session{}, GoldenLock{}, err
	}
	next.State = state
	next.UpdatedAt = now

	return next, GoldenLock{
		PlayerID:  req.PlayerID,
		FixtureID: req.FixtureID,
		Score:     pick.Score,
		Locked:    true,
		LockedAt:  now,
	}, nil
}
