package room

import "context"

// Repository persists rooms, their members and per-gameweek lobbies.
type Repository interface {
	// CreateRoom stores the room together with its leader membership. It fails
	// with ErrRoomExists when the code is taken.
	CreateRoom(ctx context.Context, room Room, leader Member) error
	GetRoom(ctx context.Context, code string) (Room, bool, error)

	UpsertMember(ctx context.Context, member Member) error
	GetMember(ctx context.Context, code, userID string) (Member, bool, error)
	ListMembers(ctx context.Context, code string) ([]Member, error)
	DeleteMember(ctx context.Context, code, userID string) error

	UpsertLobbyEntry(ctx context.Context, entry LobbyEntry) error
	DeleteLobbyEntry(ctx context.Context, code string, gameweek int, userID string) error
	ListLobby(ctx context.Context, code string, gameweek int) ([]LobbyEntry, error)
}
