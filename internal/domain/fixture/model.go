package fixture

import (
	"strings"
	"time"

	"github.com/riskibarqy/gameweek-draft/internal/domain/minigame"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusTimed     = "TIMED"
	StatusLive      = "LIVE"
	StatusInPlay    = "IN_PLAY"
	StatusPaused    = "PAUSED"
	StatusFinished  = "FINISHED"
	StatusCancelled = "CANCELLED"
	StatusPostponed = "POSTPONED"
	StatusSuspended = "SUSPENDED"

	DefaultVenue = "TBD"
)

type Team struct {
	ID   int64
	Name string
}

// Fixture represents one scheduled match.
type Fixture struct {
	ID        int64
	Gameweek  int
	KickoffAt time.Time
	Venue     string
	Status    string
	HomeTeam  Team
	AwayTeam  Team
	HomeScore *int
	AwayScore *int
}

// Result is the full-time score, present only for finished matches.
func (f Fixture) Result() (minigame.Score, bool) {
	if !IsFinishedStatus(f.Status) || f.HomeScore == nil || f.AwayScore == nil {
		return minigame.Score{}, false
	}
	return minigame.Score{Home: *f.HomeScore, Away: *f.AwayScore}, true
}

// Results collects the known results keyed by fixture ID.
func Results(items []Fixture) map[int64]minigame.Score {
	out := make(map[int64]minigame.Score, len(items))
	for _, item := range items {
		if score, ok := item.Result(); ok {
			out[item.ID] = score
		}
	}
	return out
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusFinished, "AWARDED":
		return true
	default:
		return false
	}
}
