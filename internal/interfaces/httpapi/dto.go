package httpapi

import (
	"sort"
	"strconv"
	"time"

	"github.com/riskibarqy/gameweek-draft/internal/domain/fixture"
	"github.com/riskibarqy/gameweek-draft/internal/domain/minigame"
	"github.com/riskibarqy/gameweek-draft/internal/domain/room"
	"github.com/riskibarqy/gameweek-draft/internal/usecase"
)

type createRoomRequest struct {
	RoomCode    string `json:"roomCode" validate:"required,roomcode"`
	DisplayName string `json:"displayName" validate:"omitempty,max=40"`
}

type joinRoomRequest struct {
	DisplayName string `json:"displayName" validate:"omitempty,max=40"`
}

type submitPickRequest struct {
	Score string `json:"score" validate:"required,score"`
}

type lockGoldenRequest struct {
	FixtureID int64  `json:"fixtureId" validate:"required,gt=0"`
	Score     string `json:"score" validate:"required,score"`
}

type recalculateGameweekRequest struct {
	Gameweek int `json:"gameweek" validate:"required,min=1,max=38"`
}

type roomDTO struct {
	Code      string    `json:"code"`
	LeaderID  string    `json:"leaderId"`
	CreatedAt time.Time `json:"createdAt"`
}

type memberDTO struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joinedAt"`
}

type lobbyEntryDTO struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	JoinedAt    time.Time `json:"joinedAt"`
	LastSeenAt  time.Time `json:"lastSeenAt"`
}

type teamDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type fixtureDTO struct {
	FixtureID int64      `json:"fixtureId"`
	Gameweek  int        `json:"gameweek"`
	Kickoff   *time.Time `json:"kickoff,omitempty"`
	Venue     string     `json:"venue"`
	Status    string     `json:"status"`
	Home      teamDTO    `json:"home"`
	Away      teamDTO    `json:"away"`
	Result    *string    `json:"result"`
}

type turnDTO struct {
	Index     int    `json:"index"`
	PlayerID  string `json:"playerId"`
	FixtureID int64  `json:"fixtureId"`
}

type pickDTO struct {
	PlayerID  string    `json:"playerId"`
	FixtureID int64     `json:"fixtureId"`
	Score     string    `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

type lockStatusDTO struct {
	PlayerID  string  `json:"playerId"`
	Locked    bool    `json:"locked"`
	FixtureID int64   `json:"fixtureId,omitempty"`
	Score     *string `json:"score,omitempty"`
}

type goldenLockDTO struct {
	PlayerID  string    `json:"playerId"`
	FixtureID int64     `json:"fixtureId"`
	Score     string    `json:"score"`
	Locked    bool      `json:"locked"`
	LockedAt  time.Time `json:"lockedAt"`
}

type sessionDTO struct {
	ID          string     `json:"id"`
	RoomCode    string     `json:"roomCode"`
	Gameweek    int        `json:"gameweek"`
	State       string     `json:"state"`
	LeaderID    string     `json:"leaderId"`
	Players     []string   `json:"players"`
	FixtureIDs  []int64    `json:"fixtureIds"`
	CurrentTurn int        `json:"currentTurn"`
	TotalTurns  int        `json:"totalTurns"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type sessionViewDTO struct {
	Session    sessionDTO      `json:"session"`
	ActiveTurn *turnDTO        `json:"activeTurn"`
	Picks      []pickDTO       `json:"picks"`
	Locks      []lockStatusDTO `json:"locks"`
	MyGolden   *goldenLockDTO  `json:"myGolden,omitempty"`
}

type pickResultDTO struct {
	Session sessionDTO `json:"session"`
	Pick    pickDTO    `json:"pick"`
}

type goldenResultDTO struct {
	Session sessionDTO    `json:"session"`
	Lock    goldenLockDTO `json:"lock"`
}

type breakdownDTO struct {
	FixtureID     int64   `json:"fixtureId"`
	Predicted     *string `json:"predicted"`
	Actual        string  `json:"actual"`
	BasePoints    int     `json:"basePoints"`
	IsGolden      bool    `json:"isGolden"`
	AwardedPoints int     `json:"awardedPoints"`
}

type scoreRecordDTO struct {
	PlayerID   string         `json:"playerId"`
	Points     int            `json:"points"`
	Breakdown  []breakdownDTO `json:"breakdown"`
	ComputedAt time.Time      `json:"computedAt"`
}

type recalculateResultDTO struct {
	Scored       int              `json:"scored"`
	ResultsKnown int              `json:"resultsKnown"`
	Records      []scoreRecordDTO `json:"records"`
}

type leaderboardEntryDTO struct {
	Rank        int            `json:"rank"`
	UserID      string         `json:"userId"`
	DisplayName string         `json:"displayName"`
	Points      int            `json:"points"`
	Gameweeks   map[string]int `json:"gameweeks"`
}

type leaderboardDTO struct {
	RoomCode string                `json:"roomCode"`
	UpTo     int                   `json:"upTo"`
	Entries  []leaderboardEntryDTO `json:"entries"`
}

type recalculateTaskDTO struct {
	RoomCode   string `json:"roomCode"`
	Status     string `json:"status"`
	Scored     int    `json:"scored"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

type recalculateGameweekDTO struct {
	Gameweek     int                  `json:"gameweek"`
	SuccessCount int                  `json:"successCount"`
	SkippedCount int                  `json:"skippedCount"`
	FailedCount  int                  `json:"failedCount"`
	Tasks        []recalculateTaskDTO `json:"tasks"`
}

func roomToDTO(v room.Room) roomDTO {
	return roomDTO{Code: v.Code, LeaderID: v.LeaderID, CreatedAt: v.CreatedAt}
}

func memberToDTO(v room.Member) memberDTO {
	return memberDTO{UserID: v.UserID, DisplayName: v.DisplayName, Role: string(v.Role), JoinedAt: v.JoinedAt}
}

func lobbyEntryToDTO(v room.LobbyEntry) lobbyEntryDTO {
	return lobbyEntryDTO{UserID: v.UserID, DisplayName: v.DisplayName, JoinedAt: v.JoinedAt, LastSeenAt: v.LastSeenAt}
}

func fixtureToDTO(v fixture.Fixture) fixtureDTO {
	out := fixtureDTO{
		FixtureID: v.ID,
		Gameweek:  v.Gameweek,
		Venue:     v.Venue,
		Status:    v.Status,
		Home:      teamDTO{ID: v.HomeTeam.ID, Name: v.HomeTeam.Name},
		Away:      teamDTO{ID: v.AwayTeam.ID, Name: v.AwayTeam.Name},
	}
	if !v.KickoffAt.IsZero() {
		kickoff := v.KickoffAt
		out.Kickoff = &kickoff
	}
	if score, ok := v.Result(); ok {
		result := score.String()
		out.Result = &result
	}
	return out
}

func sessionToDTO(v minigame.Session) sessionDTO {
	out := sessionDTO{
		ID:          v.ID,
		RoomCode:    v.Key.RoomCode,
		Gameweek:    v.Key.Gameweek,
		State:       string(v.State),
		LeaderID:    v.LeaderID,
		Players:     append([]string{}, v.Players...),
		FixtureIDs:  append([]int64{}, v.FixtureIDs...),
		CurrentTurn: v.CurrentTurn,
		TotalTurns:  v.TotalTurns,
		UpdatedAt:   v.UpdatedAt,
	}
	if !v.StartedAt.IsZero() {
		started := v.StartedAt
		out.StartedAt = &started
	}
	return out
}

func pickToDTO(v minigame.Pick) pickDTO {
	return pickDTO{PlayerID: v.PlayerID, FixtureID: v.FixtureID, Score: v.Score.String(), CreatedAt: v.CreatedAt}
}

func goldenLockToDTO(v minigame.GoldenLock) goldenLockDTO {
	return goldenLockDTO{
		PlayerID:  v.PlayerID,
		FixtureID: v.FixtureID,
		Score:     v.Score.String(),
		Locked:    v.Locked,
		LockedAt:  v.LockedAt,
	}
}

func sessionViewToDTO(v usecase.SessionView) sessionViewDTO {
	out := sessionViewDTO{
		Session: sessionToDTO(v.Session),
		Picks:   make([]pickDTO, 0, len(v.Picks)),
		Locks:   make([]lockStatusDTO, 0, len(v.Locks)),
	}
	if v.ActiveTurn != nil {
		out.ActiveTurn = &turnDTO{Index: v.ActiveTurn.Index, PlayerID: v.ActiveTurn.PlayerID, FixtureID: v.ActiveTurn.FixtureID}
	}
	for _, p := range v.Picks {
		out.Picks = append(out.Picks, pickToDTO(p))
	}
	for _, l := range v.Locks {
		item := lockStatusDTO{PlayerID: l.PlayerID, Locked: l.Locked, FixtureID: l.FixtureID}
		if l.Score != nil {
			score := l.Score.String()
			item.Score = &score
		}
		out.Locks = append(out.Locks, item)
	}
	if v.MyGolden != nil {
		own := goldenLockToDTO(*v.MyGolden)
		out.MyGolden = &own
	}
	return out
}

func scoreRecordToDTO(v minigame.ScoreRecord) scoreRecordDTO {
	out := scoreRecordDTO{
		PlayerID:   v.PlayerID,
		Points:     v.Points,
		Breakdown:  make([]breakdownDTO, 0, len(v.Breakdown)),
		ComputedAt: v.ComputedAt,
	}
	for fixtureID, entry := range v.Breakdown {
		item := breakdownDTO{
			FixtureID:     fixtureID,
			Actual:        entry.Actual.String(),
			BasePoints:    entry.BasePoints,
			IsGolden:      entry.IsGolden,
			AwardedPoints: entry.AwardedPoints,
		}
		if entry.Predicted != nil {
			predicted := entry.Predicted.String()
			item.Predicted = &predicted
		}
		out.Breakdown = append(out.Breakdown, item)
	}
	sort.Slice(out.Breakdown, func(i, j int) bool {
		return out.Breakdown[i].FixtureID < out.Breakdown[j].FixtureID
	})
	return out
}

func scoreRecordsToDTO(items []minigame.ScoreRecord) []scoreRecordDTO {
	out := make([]scoreRecordDTO, 0, len(items))
	for _, item := range items {
		out = append(out, scoreRecordToDTO(item))
	}
	return out
}

// leaderboardToDTO ranks entries competition style: ties share a rank.
func leaderboardToDTO(v usecase.Leaderboard) leaderboardDTO {
	out := leaderboardDTO{
		RoomCode: v.RoomCode,
		UpTo:     v.UpTo,
		Entries:  make([]leaderboardEntryDTO, 0, len(v.Entries)),
	}
	rank := 0
	for i, entry := range v.Entries {
		if i == 0 || entry.Points != v.Entries[i-1].Points {
			rank = i + 1
		}
		gameweeks := make(map[string]int, len(entry.Gameweeks))
		for gw, points := range entry.Gameweeks {
			gameweeks[strconv.Itoa(gw)] = points
		}
		out.Entries = append(out.Entries, leaderboardEntryDTO{
			Rank:        rank,
			UserID:      entry.UserID,
			DisplayName: entry.DisplayName,
			Points:      entry.Points,
			Gameweeks:   gameweeks,
		})
	}
	return out
}

func recalculateGameweekToDTO(v usecase.RecalculateGameweekResult) recalculateGameweekDTO {
	out := recalculateGameweekDTO{
		Gameweek:     v.Gameweek,
		SuccessCount: v.SuccessCount,
		SkippedCount: v.SkippedCount,
		FailedCount:  v.FailedCount,
		Tasks:        make([]recalculateTaskDTO, 0, len(v.Tasks)),
	}
	for _, task := range v.Tasks {
		out.Tasks = append(out.Tasks, recalculateTaskDTO{
			RoomCode:   task.RoomCode,
			Status:     task.Status,
			Scored:     task.Scored,
			Message:    task.Message,
			DurationMs: task.DurationMs,
		})
	}
	return out
}
