package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/gameweek-draft/internal/domain/room"
	qb "github.com/riskibarqy/gameweek-draft/internal/platform/querybuilder"
)

type RoomRepository struct {
	db *sqlx.DB
}

func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) CreateRoom(ctx context.Context, item room.Room, leader room.Member) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx create room: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	insert, err := qb.InsertModel(tableRooms, roomTableModel{
		Code:      item.Code,
		LeaderID:  item.LeaderID,
		CreatedAt: item.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("build room insert: %w", err)
	}
	query, args, err := insert.Suffix("ON CONFLICT (code) DO NOTHING").ToSQL()
	if err != nil {
		return fmt.Errorf("build room insert query: %w", err)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("room rows affected: %w", err)
	} else if n == 0 {
		return room.ErrRoomExists
	}

	if err := upsertMember(ctx, tx, leader); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create room: %w", err)
	}
	return nil
}

func (r *RoomRepository) GetRoom(ctx context.Context, code string) (room.Room, bool, error) {
	query, args, err := qb.Select("*").From(tableRooms).Where(qb.Eq("code", code)).ToSQL()
	if err != nil {
		return room.Room{}, false, fmt.Errorf("build get room query: %w", err)
	}

	var row roomTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return room.Room{}, false, nil
		}
		return room.Room{}, false, fmt.Errorf("get room: %w", err)
	}
	return room.Room{Code: row.Code, LeaderID: row.LeaderID, CreatedAt: row.CreatedAt}, true, nil
}

func (r *RoomRepository) UpsertMember(ctx context.Context, member room.Member) error {
	return upsertMember(ctx, r.db, member)
}

// upsertMember keeps the original role and join time of an existing member.
func upsertMember(ctx context.Context, exec sqlx.ExecerContext, member room.Member) error {
	insert, err := qb.InsertModel(tableRoomMembers, roomMemberTableModel{
		RoomCode:    member.RoomCode,
		UserID:      member.UserID,
		DisplayName: member.DisplayName,
		Role:        string(member.Role),
		JoinedAt:    member.JoinedAt,
	})
	if err != nil {
		return fmt.Errorf("build member insert: %w", err)
	}
	query, args, err := insert.
		Suffix("ON CONFLICT (room_code, user_id) DO UPDATE SET display_name = EXCLUDED.display_name").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build member upsert query: %w", err)
	}
	if _, err := exec.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert member: %w", err)
	}
	return nil
}

func (r *RoomRepository) GetMember(ctx context.Context, code, userID string) (room.Member, bool, error) {
	query, args, err := qb.Select("*").From(tableRoomMembers).
		Where(qb.Eq("room_code", code), qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return room.Member{}, false, fmt.Errorf("build get member query: %w", err)
	}

	var row roomMemberTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return room.Member{}, false, nil
		}
		return room.Member{}, false, fmt.Errorf("get member: %w", err)
	}
	return memberFromRow(row), true, nil
}

func (r *RoomRepository) ListMembers(ctx context.Context, code string) ([]room.Member, error) {
	query, args, err := qb.Select("*").From(tableRoomMembers).
		Where(qb.Eq("room_code", code)).
		OrderBy("joined_at", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list members query: %w", err)
	}

	var rows []roomMemberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	out := make([]room.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, memberFromRow(row))
	}
	return out, nil
}

func (r *RoomRepository) DeleteMember(ctx context.Context, code, userID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx delete member: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, table := range []string{tableLobbyEntries, tableRoomMembers} {
		query, args, err := qb.DeleteFrom(table).
			Where(qb.Eq("room_code", code), qb.Eq("user_id", userID)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build delete from %s query: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete member: %w", err)
	}
	return nil
}

func (r *RoomRepository) UpsertLobbyEntry(ctx context.Context, entry room.LobbyEntry) error {
	insert, err := qb.InsertModel(tableLobbyEntries, lobbyEntryTableModel{
		RoomCode:    entry.RoomCode,
		Gameweek:    entry.Gameweek,
		UserID:      entry.UserID,
		DisplayName: entry.DisplayName,
		JoinedAt:    entry.JoinedAt,
		LastSeenAt:  entry.LastSeenAt,
	})
	if err != nil {
		return fmt.Errorf("build lobby entry insert: %w", err)
	}
	query, args, err := insert.
		Suffix(`ON CONFLICT (room_code, gameweek, user_id) DO UPDATE SET
    display_name = EXCLUDED.display_name,
    last_seen_at = EXCLUDED.last_seen_at`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build lobby entry upsert query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert lobby entry: %w", err)
	}
	return nil
}

func (r *RoomRepository) DeleteLobbyEntry(ctx context.Context, code string, gameweek int, userID string) error {
	query, args, err := qb.DeleteFrom(tableLobbyEntries).
		Where(qb.Eq("room_code", code), qb.Eq("gameweek", gameweek), qb.Eq("user_id", userID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete lobby entry query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete lobby entry: %w", err)
	}
	return nil
}

func (r *RoomRepository) ListLobby(ctx context.Context, code string, gameweek int) ([]room.LobbyEntry, error) {
	query, args, err := qb.Select("*").From(tableLobbyEntries).
		Where(qb.Eq("room_code", code), qb.Eq("gameweek", gameweek)).
		OrderBy("joined_at", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list lobby query: %w", err)
	}

	var rows []lobbyEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list lobby: %w", err)
	}
	out := make([]room.LobbyEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, room.LobbyEntry{
			RoomCode:    row.RoomCode,
			Gameweek:    row.Gameweek,
			UserID:      row.UserID,
			DisplayName: row.DisplayName,
			JoinedAt:    row.JoinedAt,
			LastSeenAt:  row.LastSeenAt,
		})
	}
	return out, nil
}

func memberFromRow(row roomMemberTableModel) room.Member {
	return room.Member{
		RoomCode:    row.RoomCode,
		UserID:      row.UserID,
		DisplayName: row.DisplayName,
		Role:        room.Role(row.Role),
		JoinedAt:    row.JoinedAt,
	}
}
