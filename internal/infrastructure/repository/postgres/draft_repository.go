package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/riskibarqy/gameweek-draft/internal/domain/minigame"
	qb "github.com/riskibarqy/gameweek-draft/internal/platform/querybuilder"
)

// DraftRepository stores sessions in postgres. Every RunInTx is a
// SERIALIZABLE transaction, so a concurrent commit that invalidates what fn
// read surfaces as a serialization failure and maps to ErrTxConflict.
type DraftRepository struct {
	db *sqlx.DB
}

func NewDraftRepository(db *sqlx.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

func (r *DraftRepository) RunInTx(ctx context.Context, fn func(ctx context.Context, tx minigame.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return wrapTxError("begin draft tx", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, &draftTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrapTxError("commit draft tx", err)
	}
	return nil
}

func (r *DraftRepository) GetSession(ctx context.Context, key minigame.SessionKey) (minigame.Session, bool, error) {
	return getSession(ctx, r.db, key)
}

func (r *DraftRepository) ListPicks(ctx context.Context, key minigame.SessionKey) ([]minigame.Pick, error) {
	query, args, err := qb.Select("*").From(tableDraftPicks).
		Where(qb.Eq("room_code", key.RoomCode), qb.Eq("gameweek", key.Gameweek)).
		OrderBy("created_at", "player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list picks query: %w", err)
	}

	var rows []draftPickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}
	out := make([]minigame.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, pickFromRow(row))
	}
	return out, nil
}

func (r *DraftRepository) ListGoldenLocks(ctx context.Context, key minigame.SessionKey) ([]minigame.GoldenLock, error) {
	query, args, err := qb.Select("*").From(tableGoldenLocks).
		Where(qb.Eq("room_code", key.RoomCode), qb.Eq("gameweek", key.Gameweek)).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list golden locks query: %w", err)
	}

	var rows []goldenLockTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list golden locks: %w", err)
	}
	out := make([]minigame.GoldenLock, 0, len(rows))
	for _, row := range rows {
		out = append(out, lockFromRow(row))
	}
	return out, nil
}

func (r *DraftRepository) ListScoreRecords(ctx context.Context, key minigame.SessionKey) ([]minigame.ScoreRecord, error) {
	query, args, err := qb.Select("*").From(tableScoreRecords).
		Where(qb.Eq("room_code", key.RoomCode), qb.Eq("gameweek", key.Gameweek)).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list score records query: %w", err)
	}

	var rows []scoreRecordTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list score records: %w", err)
	}
	out := make([]minigame.ScoreRecord, 0, len(rows))
	for _, row := range rows {
		record, err := scoreRecordFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

func (r *DraftRepository) UpsertScoreRecords(ctx context.Context, key minigame.SessionKey, records []minigame.ScoreRecord) error {
	if len(records) == 0 {
		return nil
	}

	models := make([]scoreRecordInsertModel, 0, len(records))
	for _, record := range records {
		breakdown, err := encodeBreakdown(record.Breakdown)
		if err != nil {
			return fmt.Errorf("encode breakdown for %s: %w", record.PlayerID, err)
		}
		models = append(models, scoreRecordInsertModel{
			RoomCode:   key.RoomCode,
			Gameweek:   key.Gameweek,
			PlayerID:   record.PlayerID,
			Points:     record.Points,
			Breakdown:  breakdown,
			ComputedAt: record.ComputedAt,
		})
	}

	insert, err := qb.InsertModels(tableScoreRecords, models)
	if err != nil {
		return fmt.Errorf("build score records insert: %w", err)
	}
	query, args, err := insert.OnConflictUpdate("room_code", "gameweek", "player_id").ToSQL()
	if err != nil {
		return fmt.Errorf("build score records upsert query: %w", err)
	}
	// one statement, so the batch lands atomically
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert score records: %w", err)
	}
	return nil
}

func (r *DraftRepository) ListSessionsByRoom(ctx context.Context, roomCode string) ([]minigame.Session, error) {
	query, args, err := qb.Select("*").From(tableDraftSessions).
		Where(qb.Eq("room_code", roomCode)).
		OrderBy("gameweek").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list sessions by room query: %w", err)
	}

	var rows []draftSessionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list sessions by room: %w", err)
	}
	out := make([]minigame.Session, 0, len(rows))
	for _, row := range rows {
		session, err := sessionFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, session)
	}
	return out, nil
}

func (r *DraftRepository) ListSessionKeysByGameweek(ctx context.Context, gameweek int) ([]minigame.SessionKey, error) {
	query, args, err := qb.Select("room_code", "gameweek").From(tableDraftSessions).
		Where(qb.Eq("gameweek", gameweek)).
		OrderBy("room_code").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list session keys query: %w", err)
	}

	var rows []struct {
		RoomCode string `db:"room_code"`
		Gameweek int    `db:"gameweek"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list session keys: %w", err)
	}
	out := make([]minigame.SessionKey, 0, len(rows))
	for _, row := range rows {
		out = append(out, minigame.SessionKey{RoomCode: row.RoomCode, Gameweek: row.Gameweek})
	}
	return out, nil
}

type draftTx struct {
	tx    *sqlx.Tx
	wrote bool
}

func (t *draftTx) beginRead() error {
	if t.wrote {
		return minigame.ErrReadAfterWrite
	}
	return nil
}

func (t *draftTx) GetSession(ctx context.Context, key minigame.SessionKey) (minigame.Session, bool, error) {
	if err := t.beginRead(); err != nil {
		return minigame.Session{}, false, err
	}
	return getSession(ctx, t.tx, key)
}

func (t *draftTx) FindPickByScore(ctx context.Context, key minigame.SessionKey, fixtureID int64, score minigame.Score) (minigame.Pick, bool, error) {
	if err := t.beginRead(); err != nil {
		return minigame.Pick{}, false, err
	}
	query, args, err := qb.Select("*").From(tableDraftPicks).
		Where(
			qb.Eq("room_code", key.RoomCode),
			qb.Eq("gameweek", key.Gameweek),
			qb.Eq("fixture_id", fixtureID),
			qb.Eq("score_home", score.Home),
			qb.Eq("score_away", score.Away),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return minigame.Pick{}, false, fmt.Errorf("build find pick by score query: %w", err)
	}
	return getPick(ctx, t.tx, query, args)
}

func (t *draftTx) GetPick(ctx context.Context, key minigame.SessionKey, playerID string, fixtureID int64) (minigame.Pick, bool, error) {
	if err := t.beginRead(); err != nil {
		return minigame.Pick{}, false, err
	}
	query, args, err := qb.Select("*").From(tableDraftPicks).
		Where(
			qb.Eq("room_code", key.RoomCode),
			qb.Eq("gameweek", key.Gameweek),
			qb.Eq("player_id", playerID),
			qb.Eq("fixture_id", fixtureID),
		).
		ToSQL()
	if err != nil {
		return minigame.Pick{}, false, fmt.Errorf("build get pick query: %w", err)
	}
	return getPick(ctx, t.tx, query, args)
}

func (t *draftTx) GetGoldenLocks(ctx context.Context, key minigame.SessionKey, playerIDs []string) (map[string]minigame.GoldenLock, error) {
	if err := t.beginRead(); err != nil {
		return nil, err
	}
	query, args, err := qb.Select("*").From(tableGoldenLocks).
		Where(
			qb.Eq("room_code", key.RoomCode),
			qb.Eq("gameweek", key.Gameweek),
			qb.Expr("player_id = ANY(?)", pq.Array(playerIDs)),
		).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build get golden locks query: %w", err)
	}

	var rows []goldenLockTableModel
	if err := t.tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapTxError("get golden locks", err)
	}
	out := make(map[string]minigame.GoldenLock, len(rows))
	for _, row := range rows {
		out[row.PlayerID] = lockFromRow(row)
	}
	return out, nil
}

func (t *draftTx) PutSession(ctx context.Context, session minigame.Session) error {
	t.wrote = true

	var startedAt *time.Time
	if !session.StartedAt.IsZero() {
		v := session.StartedAt
		startedAt = &v
	}
	insert, err := qb.InsertModel(tableDraftSessions, draftSessionTableModel{
		RoomCode:    session.Key.RoomCode,
		Gameweek:    session.Key.Gameweek,
		SessionID:   session.ID,
		State:       string(session.State),
		LeaderID:    session.LeaderID,
		Players:     pq.StringArray(session.Players),
		FixtureIDs:  pq.Int64Array(session.FixtureIDs),
		CurrentTurn: session.CurrentTurn,
		TotalTurns:  session.TotalTurns,
		Version:     session.Version + 1,
		CreatedAt:   session.CreatedAt,
		StartedAt:   startedAt,
		UpdatedAt:   session.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("build session insert: %w", err)
	}
	query, args, err := insert.OnConflictUpdate("room_code", "gameweek").ToSQL()
	if err != nil {
		return fmt.Errorf("build session upsert query: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return wrapTxError("put session", err)
	}
	return nil
}

func (t *draftTx) CreatePick(ctx context.Context, key minigame.SessionKey, pick minigame.Pick) error {
	t.wrote = true

	insert, err := qb.InsertModel(tableDraftPicks, draftPickTableModel{
		RoomCode:  key.RoomCode,
		Gameweek:  key.Gameweek,
		PlayerID:  pick.PlayerID,
		FixtureID: pick.FixtureID,
		ScoreHome: pick.Score.Home,
		ScoreAway: pick.Score.Away,
		CreatedAt: pick.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("build pick insert: %w", err)
	}
	query, args, err := insert.ToSQL()
	if err != nil {
		return fmt.Errorf("build pick insert query: %w", err)
	}
	// the unique indexes on (player, fixture) and (fixture, score) turn a
	// lost race into 23505, which retries as a conflict
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return wrapTxError("create pick", err)
	}
	return nil
}

func (t *draftTx) PutGoldenLock(ctx context.Context, key minigame.SessionKey, lock minigame.GoldenLock) error {
	t.wrote = true

	insert, err := qb.InsertModel(tableGoldenLocks, goldenLockTableModel{
		RoomCode:  key.RoomCode,
		Gameweek:  key.Gameweek,
		PlayerID:  lock.PlayerID,
		FixtureID: lock.FixtureID,
		ScoreHome: lock.Score.Home,
		ScoreAway: lock.Score.Away,
		Locked:    lock.Locked,
		LockedAt:  lock.LockedAt,
	})
	if err != nil {
		return fmt.Errorf("build golden lock insert: %w", err)
	}
	query, args, err := insert.OnConflictUpdate("room_code", "gameweek", "player_id").ToSQL()
	if err != nil {
		return fmt.Errorf("build golden lock upsert query: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return wrapTxError("put golden lock", err)
	}
	return nil
}

func getSession(ctx context.Context, q sqlx.QueryerContext, key minigame.SessionKey) (minigame.Session, bool, error) {
	query, args, err := qb.Select("*").From(tableDraftSessions).
		Where(qb.Eq("room_code", key.RoomCode), qb.Eq("gameweek", key.Gameweek)).
		ToSQL()
	if err != nil {
		return minigame.Session{}, false, fmt.Errorf("build get session query: %w", err)
	}

	var row draftSessionTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return minigame.Session{}, false, nil
		}
		return minigame.Session{}, false, wrapTxError("get session", err)
	}
	session, err := sessionFromRow(row)
	if err != nil {
		return minigame.Session{}, false, err
	}
	return session, true, nil
}

func getPick(ctx context.Context, q sqlx.QueryerContext, query string, args []any) (minigame.Pick, bool, error) {
	var row draftPickTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return minigame.Pick{}, false, nil
		}
		return minigame.Pick{}, false, wrapTxError("get pick", err)
	}
	return pickFromRow(row), true, nil
}

func sessionFromRow(row draftSessionTableModel) (minigame.Session, error) {
	state, err := minigame.ParseState(row.State)
	if err != nil {
		return minigame.Session{}, fmt.Errorf("session %s/%d: %w", row.RoomCode, row.Gameweek, err)
	}
	session := minigame.Session{
		ID:          row.SessionID,
		Key:         minigame.SessionKey{RoomCode: row.RoomCode, Gameweek: row.Gameweek},
		State:       state,
		LeaderID:    row.LeaderID,
		Players:     append([]string(nil), row.Players...),
		FixtureIDs:  append([]int64(nil), row.FixtureIDs...),
		CurrentTurn: row.CurrentTurn,
		TotalTurns:  row.TotalTurns,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		Version:     row.Version,
	}
	if row.StartedAt != nil {
		session.StartedAt = *row.StartedAt
	}
	return session, nil
}

func pickFromRow(row draftPickTableModel) minigame.Pick {
	return minigame.Pick{
		PlayerID:  row.PlayerID,
		FixtureID: row.FixtureID,
		Score:     minigame.Score{Home: row.ScoreHome, Away: row.ScoreAway},
		CreatedAt: row.CreatedAt,
	}
}

func lockFromRow(row goldenLockTableModel) minigame.GoldenLock {
	return minigame.GoldenLock{
		PlayerID:  row.PlayerID,
		FixtureID: row.FixtureID,
		Score:     minigame.Score{Home: row.ScoreHome, Away: row.ScoreAway},
		Locked:    row.Locked,
		LockedAt:  row.LockedAt,
	}
}

func encodeBreakdown(breakdown map[int64]minigame.BreakdownEntry) (string, error) {
	docs := make([]breakdownDocument, 0, len(breakdown))
	for fixtureID, entry := range breakdown {
		doc := breakdownDocument{
			FixtureID:     fixtureID,
			Actual:        entry.Actual.String(),
			BasePoints:    entry.BasePoints,
			IsGolden:      entry.IsGolden,
			AwardedPoints: entry.AwardedPoints,
		}
		if entry.Predicted != nil {
			predicted := entry.Predicted.String()
			doc.Predicted = &predicted
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].FixtureID < docs[j].FixtureID })

	raw, err := sonic.Marshal(docs)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func scoreRecordFromRow(row scoreRecordTableModel) (minigame.ScoreRecord, error) {
	var docs []breakdownDocument
	if len(row.Breakdown) > 0 {
		if err := sonic.Unmarshal(row.Breakdown, &docs); err != nil {
			return minigame.ScoreRecord{}, fmt.Errorf("decode breakdown for %s: %w", row.PlayerID, err)
		}
	}

	record := minigame.ScoreRecord{
		PlayerID:   row.PlayerID,
		Points:     row.Points,
		Breakdown:  make(map[int64]minigame.BreakdownEntry, len(docs)),
		ComputedAt: row.ComputedAt,
	}
	for _, doc := range docs {
		actual, err := minigame.ParseScore(doc.Actual)
		if err != nil {
			return minigame.ScoreRecord{}, fmt.Errorf("decode breakdown actual for %s: %w", row.PlayerID, err)
		}
		entry := minigame.BreakdownEntry{
			Actual:        actual,
			BasePoints:    doc.BasePoints,
			IsGolden:      doc.IsGolden,
			AwardedPoints: doc.AwardedPoints,
		}
		if doc.Predicted != nil {
			predicted, err := minigame.ParseScore(*doc.Predicted)
			if err != nil {
				return minigame.ScoreRecord{}, fmt.Errorf("decode breakdown prediction for %s: %w", row.PlayerID, err)
			}
			entry.Predicted = &predicted
		}
		record.Breakdown[doc.FixtureID] = entry
	}
	return record, nil
}
