package footballdata

import (
	"strings"
	"time"

	"github.com/riskibarqy/gameweek-draft/internal/domain/fixture"
)

type matchesEnvelope struct {
	Matches []matchPayload `json:"matches"`
}

type matchPayload struct {
	ID       int64        `json:"id"`
	UTCDate  string       `json:"utcDate"`
	Status   string       `json:"status"`
	Matchday *int         `json:"matchday"`
	Venue    *string      `json:"venue"`
	HomeTeam teamPayload  `json:"homeTeam"`
	AwayTeam teamPayload  `json:"awayTeam"`
	Score    scorePayload `json:"score"`
}

type teamPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type scorePayload struct {
	FullTime scoreLine `json:"fullTime"`
}

type scoreLine struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

func mapMatches(items []matchPayload) []fixture.Fixture {
	out := make([]fixture.Fixture, 0, len(items))
	for _, item := range items {
		if item.ID <= 0 {
			continue
		}
		out = append(out, mapMatch(item))
	}
	return out
}

// mapMatch keeps full-time scores only once the match is finished, so live
// scores never count as results.
func mapMatch(item matchPayload) fixture.Fixture {
	status := fixture.NormalizeStatus(item.Status)
	out := fixture.Fixture{
		ID:       item.ID,
		Venue:    fixture.DefaultVenue,
		Status:   status,
		HomeTeam: fixture.Team{ID: item.HomeTeam.ID, Name: strings.TrimSpace(item.HomeTeam.Name)},
		AwayTeam: fixture.Team{ID: item.AwayTeam.ID, Name: strings.TrimSpace(item.AwayTeam.Name)},
	}
	if item.Matchday != nil {
		out.Gameweek = *item.Matchday
	}
	if item.Venue != nil && strings.TrimSpace(*item.Venue) != "" {
		out.Venue = strings.TrimSpace(*item.Venue)
	}
	if kickoff, err := time.Parse(time.RFC3339, strings.TrimSpace(item.UTCDate)); err == nil {
		out.KickoffAt = kickoff.UTC()
	}
	if status == fixture.StatusFinished && item.Score.FullTime.Home != nil && item.Score.FullTime.Away != nil {
		home, away := *item.Score.FullTime.Home, *item.Score.FullTime.Away
		out.HomeScore = &home
		out.AwayScore = &away
	}
	return out
}
