package resilience

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v5"
)

var ErrRetriesExhausted = errors.New("retries exhausted")

// Retry runs op with exponential backoff while retryable(err) holds. Any
// other error stops the loop and is returned as is. When the attempts run out
// the last error is wrapped with ErrRetriesExhausted.
func Retry(ctx context.Context, cfg RetryConfig, retryable func(error) bool, op func(ctx context.Context) error) error {
	cfg = NormalizeRetryConfig(cfg)

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = cfg.InitialBackoff
	policy.MaxInterval = cfg.MaxBackoff

	attempts := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempts++
		err := op(ctx)
		if err == nil {
			return struct{}{}, nil
		}
		if retryable == nil || !retryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, backoff.WithBackOff(policy), backoff.WithMaxTries(uint(cfg.MaxAttempts)), backoff.WithMaxElapsedTime(0))
	if err == nil {
		return nil
	}
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Unwrap()
	}
	if retryable != nil && retryable(err) {
		return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, err)
	}
	return err
}
