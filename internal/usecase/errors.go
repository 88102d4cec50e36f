package usecase

import (
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/gameweek-draft/internal/domain/minigame"
	"github.com/riskibarqy/gameweek-draft/internal/domain/room"
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrNotFound               = errors.New("resource not found")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("state conflict")
	ErrUpstream               = errors.New("upstream failure")
	ErrRateLimited            = errors.New("upstream rate limited")
	ErrDependencyUnavailable  = errors.New("dependency unavailable")
	ErrTemporarilyUnavailable = errors.New("temporarily unavailable")
)

// RateLimitError reports an upstream throttle. It matches ErrRateLimited.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: retry after %s", ErrRateLimited, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// RetryAfter extracts the throttle hint carried by err, if any.
func RetryAfter(err error) (time.Duration, bool) {
	var limited *RateLimitError
	if errors.As(err, &limited) && limited.RetryAfter > 0 {
		return limited.RetryAfter, true
	}
	return 0, false
}

// classify joins a domain error to its usecase class so callers can match
// both with errors.Is. Errors that already carry a class pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden),
		errors.Is(err, ErrConflict), errors.Is(err, ErrUpstream), errors.Is(err, ErrTemporarilyUnavailable):
		return err
	case errors.Is(err, minigame.ErrInvalidScore), errors.Is(err, room.ErrInvalidRoomCode):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, minigame.ErrSessionNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, room.ErrNotLeader), errors.Is(err, room.ErrNotMember):
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	case errors.Is(err, minigame.ErrWrongPhase),
		errors.Is(err, minigame.ErrNotYourTurn),
		errors.Is(err, minigame.ErrDraftComplete),
		errors.Is(err, minigame.ErrScoreTaken),
		errors.Is(err, minigame.ErrAlreadyPicked),
		errors.Is(err, minigame.ErrInvalidGoldenReference),
		errors.Is(err, minigame.ErrAlreadyLocked),
		errors.Is(err, minigame.ErrAlreadyStarted),
		errors.Is(err, minigame.ErrNotEnoughPlayers),
		errors.Is(err, minigame.ErrNoFixtures),
		errors.Is(err, minigame.ErrNoPlayers),
		errors.Is(err, room.ErrRoomExists):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return err
	}
}
