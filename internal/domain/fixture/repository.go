package fixture

import (
	"context"
	"time"
)

// Provider exposes read access to the upstream fixture feed.
type Provider interface {
	ListByGameweek(ctx context.Context, gameweek int) ([]Fixture, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]Fixture, error)
}
