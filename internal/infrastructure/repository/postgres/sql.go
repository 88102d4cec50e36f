package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/riskibarqy/gameweek-draft/internal/domain/minigame"
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateUniqueViolation      = "23505"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isTxConflict reports errors that a fresh retry of the whole transaction
// can resolve.
func isTxConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch string(pqErr.Code) {
	case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateUniqueViolation:
		return true
	default:
		return false
	}
}

// wrapTxError marks retryable failures with minigame.ErrTxConflict.
func wrapTxError(op string, err error) error {
	if err == nil {
		return nil
	}
	if isTxConflict(err) {
		return fmt.Errorf("%w: %s: %w", minigame.ErrTxConflict, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
