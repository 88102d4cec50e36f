package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/riskibarqy/gameweek-draft/internal/domain/minigame"
	"github.com/riskibarqy/gameweek-draft/internal/platform/resilience"
)

func isTxConflict(err error) bool {
	return errors.Is(err, minigame.ErrTxConflict)
}

// runInTx retries fn from a fresh read whenever the store reports a commit
// conflict. fn runs once per attempt, so anything it captures must be reset at
// the top of fn.
func runInTx(ctx context.Context, repo minigame.Repository, cfg resilience.RetryConfig, fn func(ctx context.Context, tx minigame.Tx) error) error {
	err := resilience.Retry(ctx, cfg, isTxConflict, func(ctx context.Context) error {
		return repo.RunInTx(ctx, fn)
	})
	if errors.Is(err, resilience.ErrRetriesExhausted) {
		return fmt.Errorf("%w: %w", ErrTemporarilyUnavailable, err)
	}
	return err
}

// upstreamError keeps an already classified provider error and marks
// anything else as an upstream failure.
func upstreamError(op string, err error) error {
	if errors.Is(err, ErrUpstream) || errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrDependencyUnavailable) || errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrUpstream, op, err)
}
