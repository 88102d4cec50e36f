package minigame

import "errors"

var (
	ErrSessionNotFound        = errors.New("session not found")
	ErrInvalidScore           = errors.New("score must be two non-negative integers formatted as H-A")
	ErrWrongPhase             = errors.New("session is not in the required phase")
	ErrNotYourTurn            = errors.New("not your turn")
	ErrDraftComplete          = errors.New("draft already complete")
	ErrScoreTaken             = errors.New("score already taken for this fixture")
	ErrAlreadyPicked          = errors.New("fixture already picked by this player")
	ErrInvalidGoldenReference = errors.New("golden must reference one of your own picks")
	ErrAlreadyLocked          = errors.New("golden already locked")
	ErrAlreadyStarted         = errors.New("session already started")
	ErrNotEnoughPlayers       = errors.New("at least two players are required")
	ErrNoFixtures             = errors.New("no fixtures for this gameweek")
	ErrNoPlayers              = errors.New("session has no players")
)

// Store contract errors.
var (
	// ErrTxConflict means a document read by the transaction changed before
	// commit. The whole action may be retried from a fresh read.
	ErrTxConflict = errors.New("transaction conflict")
	// ErrReadAfterWrite is returned when a transaction reads after it has
	// already issued a write.
	ErrReadAfterWrite = errors.New("transaction reads must precede writes")
)
