package postgres

import "time"

const (
	tableRooms        = "rooms"
	tableRoomMembers  = "room_members"
	tableLobbyEntries = "room_lobby_entries"
)

type roomTableModel struct {
	Code      string    `db:"code"`
	LeaderID  string    `db:"leader_id"`
	CreatedAt time.Time `db:"created_at"`
}

type roomMemberTableModel struct {
	RoomCode    string    `db:"room_code"`
	UserID      string    `db:"user_id"`
	DisplayName string    `db:"display_name"`
	Role        string    `db:"role"`
	JoinedAt    time.Time `db:"joined_at"`
}

type lobbyEntryTableModel struct {
	RoomCode    string    `db:"room_code"`
	Gameweek    int       `db:"gameweek"`
	UserID      string    `db:"user_id"`
	DisplayName string    `db:"display_name"`
	JoinedAt    time.Time `db:"joined_at"`
	LastSeenAt  time.Time `db:"last_seen_at"`
}
