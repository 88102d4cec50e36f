package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/gameweek-draft/internal/domain/minigame"
	"github.com/riskibarqy/gameweek-draft/internal/domain/room"
	"github.com/riskibarqy/gameweek-draft/internal/platform/logging"
)

const defaultLeaderboardConcurrency = 4

type LeaderboardEntry struct {
	UserID      string
	DisplayName string
	Points      int
	Gameweeks   map[int]int
}

type Leaderboard struct {
	RoomCode string
	UpTo     int
	Entries  []LeaderboardEntry
}

// LeaderboardService sums stored score records of a room across gameweeks.
type LeaderboardService struct {
	repo           minigame.Repository
	rooms          room.Repository
	maxConcurrency int
	logger         *logging.Logger
}

func NewLeaderboardService(repo minigame.Repository, rooms room.Repository, maxConcurrency int, logger *logging.Logger) *LeaderboardService {
	if maxConcurrency <= 0 {
		maxConcurrency = defaultLeaderboardConcurrency
	}
	return &LeaderboardService{
		repo:           repo,
		rooms:          rooms,
		maxConcurrency: maxConcurrency,
		logger:         logging.OrDefault(logger),
	}
}

type gameweekScores struct {
	gameweek int
	records  []minigame.ScoreRecord
}

// Get returns room totals over gameweeks 1..upTo. upTo <= 0 means all.
func (s *LeaderboardService) Get(ctx context.Context, rawCode, viewerID string, upTo int) (Leaderboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.Get")
	defer span.End()

	code, err := room.NormalizeCode(rawCode)
	if err != nil {
		return Leaderboard{}, classify(err)
	}
	if upTo <= 0 || upTo > minigame.MaxGameweek {
		upTo = minigame.MaxGameweek
	}
	if _, ok, err := s.rooms.GetMember(ctx, code, viewerID); err != nil {
		return Leaderboard{}, fmt.Errorf("get member: %w", err)
	} else if !ok {
		return Leaderboard{}, classify(room.ErrNotMember)
	}

	sessions, err := s.repo.ListSessionsByRoom(ctx, code)
	if err != nil {
		return Leaderboard{}, fmt.Errorf("list sessions by room: %w", err)
	}
	members, err := s.rooms.ListMembers(ctx, code)
	if err != nil {
		return Leaderboard{}, fmt.Errorf("list members: %w", err)
	}

	p := pool.NewWithResults[gameweekScores]().
		WithMaxGoroutines(s.maxConcurrency).
		WithContext(ctx).
		WithCancelOnError()
	for _, session := range sessions {
		if session.Key.Gameweek > upTo || !session.State.Started() {
			continue
		}
		key := session.Key
		p.Go(func(ctx context.Context) (gameweekScores, error) {
			records, err := s.repo.ListScoreRecords(ctx, key)
			if err != nil {
				return gameweekScores{}, fmt.Errorf("list score records %s: %w", key, err)
			}
			return gameweekScores{gameweek: key.Gameweek, records: records}, nil
		})
	}
	weeks, err := p.Wait()
	if err != nil {
		recordSpanError(span, err)
		return Leaderboard{}, err
	}

	return Leaderboard{
		RoomCode: code,
		UpTo:     upTo,
		Entries:  buildLeaderboard(members, weeks),
	}, nil
}

func buildLeaderboard(members []room.Member, weeks []gameweekScores) []LeaderboardEntry {
	byUser := make(map[string]*LeaderboardEntry, len(members))
	for _, member := range members {
		byUser[member.UserID] = &LeaderboardEntry{
			UserID:      member.UserID,
			DisplayName: member.DisplayName,
			Gameweeks:   map[int]int{},
		}
	}
	for _, week := range weeks {
		for _, record := range week.records {
			entry, ok := byUser[record.PlayerID]
			if !ok {
				// kicked players keep their history
				entry = &LeaderboardEntry{UserID: record.PlayerID, DisplayName: record.PlayerID, Gameweeks: map[int]int{}}
				byUser[record.PlayerID] = entry
			}
			entry.Gameweeks[week.gameweek] += record.Points
			entry.Points += record.Points
		}
	}

	out := make([]LeaderboardEntry, 0, len(byUser))
	for _, entry := range byUser {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}
