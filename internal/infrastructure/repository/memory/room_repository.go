package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/gameweek-draft/internal/domain/room"
)

type lobbyKey struct {
	code     string
	gameweek int
}

type RoomRepository struct {
	mu      sync.RWMutex
	rooms   map[string]room.Room
	members map[string]map[string]room.Member
	lobbies map[lobbyKey]map[string]room.LobbyEntry
}

func NewRoomRepository() *RoomRepository {
	return &RoomRepository{
		rooms:   make(map[string]room.Room),
		members: make(map[string]map[string]room.Member),
		lobbies: make(map[lobbyKey]map[string]room.LobbyEntry),
	}
}

func (r *RoomRepository) CreateRoom(_ context.Context, item room.Room, leader room.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[item.Code]; ok {
		return room.ErrRoomExists
	}
	r.rooms[item.Code] = item
	r.members[item.Code] = map[string]room.Member{leader.UserID: leader}
	return nil
}

func (r *RoomRepository) GetRoom(_ context.Context, code string) (room.Room, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.rooms[code]
	return item, ok, nil
}

func (r *RoomRepository) UpsertMember(_ context.Context, member room.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.members[member.RoomCode] == nil {
		r.members[member.RoomCode] = make(map[string]room.Member)
	}
	if existing, ok := r.members[member.RoomCode][member.UserID]; ok {
		member.JoinedAt = existing.JoinedAt
		member.Role = existing.Role
	}
	r.members[member.RoomCode][member.UserID] = member
	return nil
}

func (r *RoomRepository) GetMember(_ context.Context, code, userID string) (room.Member, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.members[code][userID]
	return m, ok, nil
}

func (r *RoomRepository) ListMembers(_ context.Context, code string) ([]room.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]room.Member, 0, len(r.members[code]))
	for _, m := range r.members[code] {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (r *RoomRepository) DeleteMember(_ context.Context, code, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.members[code], userID)
	for key, entries := range r.lobbies {
		if key.code == code {
			delete(entries, userID)
		}
	}
	return nil
}

func (r *RoomRepository) UpsertLobbyEntry(_ context.Context, entry room.LobbyEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := lobbyKey{code: entry.RoomCode, gameweek: entry.Gameweek}
	if r.lobbies[key] == nil {
		r.lobbies[key] = make(map[string]room.LobbyEntry)
	}
	if existing, ok := r.lobbies[key][entry.UserID]; ok {
		entry.JoinedAt = existing.JoinedAt
	}
	r.lobbies[key][entry.UserID] = entry
	return nil
}

func (r *RoomRepository) DeleteLobbyEntry(_ context.Context, code string, gameweek int, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.lobbies[lobbyKey{code: code, gameweek: gameweek}], userID)
	return nil
}

func (r *RoomRepository) ListLobby(_ context.Context, code string, gameweek int) ([]room.LobbyEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.lobbies[lobbyKey{code: code, gameweek: gameweek}]
	out := make([]room.LobbyEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].JoinedAt.Before(out[j].JoinedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}
