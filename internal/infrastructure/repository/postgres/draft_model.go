package postgres

import (
	"time"

	"github.com/lib/pq"
)

const (
	tableDraftSessions = "draft_sessions"
	tableDraftPicks    = "draft_picks"
	tableGoldenLocks   = "draft_golden_locks"
	tableScoreRecords  = "draft_score_records"
)

type draftSessionTableModel struct {
	RoomCode    string         `db:"room_code"`
	Gameweek    int            `db:"gameweek"`
	SessionID   string         `db:"session_id"`
	State       string         `db:"state"`
	LeaderID    string         `db:"leader_id"`
	Players     pq.StringArray `db:"players"`
	FixtureIDs  pq.Int64Array  `db:"fixture_ids"`
	CurrentTurn int            `db:"current_turn"`
	TotalTurns  int            `db:"total_turns"`
	Version     int64          `db:"version"`
	CreatedAt   time.Time      `db:"created_at"`
	StartedAt   *time.Time     `db:"started_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

type draftPickTableModel struct {
	RoomCode  string    `db:"room_code"`
	Gameweek  int       `db:"gameweek"`
	PlayerID  string    `db:"player_id"`
	FixtureID int64     `db:"fixture_id"`
	ScoreHome int       `db:"score_home"`
	ScoreAway int       `db:"score_away"`
	CreatedAt time.Time `db:"created_at"`
}

type goldenLockTableModel struct {
	RoomCode  string    `db:"room_code"`
	Gameweek  int       `db:"gameweek"`
	PlayerID  string    `db:"player_id"`
	FixtureID int64     `db:"fixture_id"`
	ScoreHome int       `db:"score_home"`
	ScoreAway int       `db:"score_away"`
	Locked    bool      `db:"locked"`
	LockedAt  time.Time `db:"locked_at"`
}

type scoreRecordTableModel struct {
	RoomCode   string    `db:"room_code"`
	Gameweek   int       `db:"gameweek"`
	PlayerID   string    `db:"player_id"`
	Points     int       `db:"points"`
	Breakdown  []byte    `db:"breakdown"`
	ComputedAt time.Time `db:"computed_at"`
}

// scoreRecordInsertModel carries breakdown as text so lib/pq does not send
// it as bytea.
type scoreRecordInsertModel struct {
	RoomCode   string    `db:"room_code"`
	Gameweek   int       `db:"gameweek"`
	PlayerID   string    `db:"player_id"`
	Points     int       `db:"points"`
	Breakdown  string    `db:"breakdown"`
	ComputedAt time.Time `db:"computed_at"`
}

type breakdownDocument struct {
	FixtureID     int64   `json:"fixtureId"`
	Predicted     *string `json:"predicted,omitempty"`
	Actual        string  `json:"actual"`
	BasePoints    int     `json:"basePoints"`
	IsGolden      bool    `json:"isGolden"`
	AwardedPoints int     `json:"awardedPoints"`
}
