package minigame

import (
	"fmt"
	"time"
)

const (
	MinGameweek = 1
	MaxGameweek = 38
)

// SessionKey identifies the single session a room plays for one gameweek.
type SessionKey struct {
	RoomCode string
	Gameweek int
}

func (k SessionKey) String() string {
	return fmt.Sprintf("%s/gw-%d", k.RoomCode, k.Gameweek)
}

// Session is the root document of one gameweek's draft game.
type Session struct {
	ID          string
	Key         SessionKey
	State       State
	LeaderID    string
	Players     []string
	FixtureIDs  []int64
	CurrentTurn int
	TotalTurns  int
	CreatedAt   time.Time
	StartedAt   time.Time
	UpdatedAt   time.Time
	Version     int64
}

// HasPlayer reports whether playerID is part of the draft order.
func (s Session) HasPlayer(playerID string) bool {
	for _, p := range s.Players {
		if p == playerID {
			return true
		}
	}
	return false
}

// HasFixture reports whether fixtureID was fixed into the session at start.
func (s Session) HasFixture(fixtureID int64) bool {
	for _, id := range s.FixtureIDs {
		if id == fixtureID {
			return true
		}
	}
	return false
}

// Pick is one player's immutable score prediction for one fixture.
type Pick struct {
	PlayerID  string
	FixtureID int64
	Score     Score
	CreatedAt time.Time
}

// GoldenLock marks the pick whose points a player wants doubled.
type GoldenLock struct {
	PlayerID  string
	FixtureID int64
	Score     Score
	Locked    bool
	LockedAt  time.Time
}

// BreakdownEntry explains the points awarded for one fixture.
type BreakdownEntry struct {
	Predicted     *Score
	Actual        Score
	BasePoints    int
	IsGolden      bool
	AwardedPoints int
}

// ScoreRecord is recomputed and overwritten on every recalculation.
type ScoreRecord struct {
	PlayerID   string
	Points     int
	Breakdown  map[int64]BreakdownEntry
	ComputedAt time.Time
}

func ValidGameweek(gw int) bool {
	return gw >= MinGameweek && gw <= MaxGameweek
}
