package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/riskibarqy/gameweek-draft/internal/domain/minigame"
	"github.com/riskibarqy/gameweek-draft/internal/domain/room"
	"github.com/riskibarqy/gameweek-draft/internal/platform/logging"
)

const maxDisplayNameLength = 40

// RoomService manages rooms, membership and the per-gameweek lobby.
type RoomService struct {
	rooms  room.Repository
	clock  clockwork.Clock
	logger *logging.Logger
}

func NewRoomService(rooms room.Repository, clock clockwork.Clock, logger *logging.Logger) *RoomService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RoomService{rooms: rooms, clock: clock, logger: logging.OrDefault(logger)}
}

func (s *RoomService) CreateRoom(ctx context.Context, rawCode, userID, displayName string) (room.Room, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoomService.CreateRoom")
	defer span.End()

	code, err := room.NormalizeCode(rawCode)
	if err != nil {
		return room.Room{}, classify(err)
	}
	name, err := normalizeDisplayName(displayName, userID)
	if err != nil {
		return room.Room{}, err
	}

	now := s.clock.Now().UTC()
	item := room.Room{Code: code, LeaderID: userID, CreatedAt: now}
	leader := room.Member{RoomCode: code, UserID: userID, DisplayName: name, Role: room.RoleLeader, JoinedAt: now}
	if err := s.rooms.CreateRoom(ctx, item, leader); err != nil {
		if errors.Is(err, room.ErrRoomExists) {
			return room.Room{}, classify(err)
		}
		return room.Room{}, fmt.Errorf("create room: %w", err)
	}

	s.logger.InfoContext(ctx, "room created", "room_code", code, "leader_id", userID)
	return item, nil
}

func (s *RoomService) JoinRoom(ctx context.Context, rawCode, userID, displayName string) (room.Member, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoomService.JoinRoom")
	defer span.End()

	code, err := s.requireRoom(ctx, rawCode)
	if err != nil {
		return room.Member{}, err
	}
	name, err := normalizeDisplayName(displayName, userID)
	if err != nil {
		return room.Member{}, err
	}

	member := room.Member{
		RoomCode:    code,
		UserID:      userID,
		DisplayName: name,
		Role:        room.RoleMember,
		JoinedAt:    s.clock.Now().UTC(),
	}
	if err := s.rooms.UpsertMember(ctx, member); err != nil {
		return room.Member{}, fmt.Errorf("upsert member: %w", err)
	}
	stored, _, err := s.rooms.GetMember(ctx, code, userID)
	if err != nil {
		return room.Member{}, fmt.Errorf("get member: %w", err)
	}
	return stored, nil
}

// KickMember removes a member and their lobby presence. Only the leader may
// kick, and the leader cannot be kicked.
func (s *RoomService) KickMember(ctx context.Context, rawCode, actorID, targetID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoomService.KickMember")
	defer span.End()

	code, err := room.NormalizeCode(rawCode)
	if err != nil {
		return classify(err)
	}
	item, exists, err := s.rooms.GetRoom(ctx, code)
	if err != nil {
		return fmt.Errorf("get room: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: room=%s", ErrNotFound, code)
	}
	if item.LeaderID != actorID {
		return classify(room.ErrNotLeader)
	}
	if targetID == item.LeaderID {
		return fmt.Errorf("%w: leader cannot be removed", ErrInvalidInput)
	}
	if _, ok, err := s.rooms.GetMember(ctx, code, targetID); err != nil {
		return fmt.Errorf("get member: %w", err)
	} else if !ok {
		return fmt.Errorf("%w: member=%s", ErrNotFound, targetID)
	}

	if err := s.rooms.DeleteMember(ctx, code, targetID); err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	s.logger.InfoContext(ctx, "member removed", "room_code", code, "user_id", targetID)
	return nil
}

func (s *RoomService) ListMembers(ctx context.Context, rawCode, viewerID string) ([]room.Member, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoomService.ListMembers")
	defer span.End()

	code, err := s.requireMember(ctx, rawCode, viewerID)
	if err != nil {
		return nil, err
	}
	members, err := s.rooms.ListMembers(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// EnterLobby marks the member present for the gameweek, or refreshes
// LastSeenAt when already present.
func (s *RoomService) EnterLobby(ctx context.Context, key minigame.SessionKey, userID string) (room.LobbyEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoomService.EnterLobby")
	defer span.End()

	key, err := normalizeKey(key)
	if err != nil {
		return room.LobbyEntry{}, err
	}
	member, ok, err := s.rooms.GetMember(ctx, key.RoomCode, userID)
	if err != nil {
		return room.LobbyEntry{}, fmt.Errorf("get member: %w", err)
	}
	if !ok {
		return room.LobbyEntry{}, classify(room.ErrNotMember)
	}

	now := s.clock.Now().UTC()
	entry := room.LobbyEntry{
		RoomCode:    key.RoomCode,
		Gameweek:    key.Gameweek,
		UserID:      userID,
		DisplayName: member.DisplayName,
		JoinedAt:    now,
		LastSeenAt:  now,
	}
	current, err := s.rooms.ListLobby(ctx, key.RoomCode, key.Gameweek)
	if err != nil {
		return room.LobbyEntry{}, fmt.Errorf("list lobby: %w", err)
	}
	for _, existing := range current {
		if existing.UserID == userID {
			entry.JoinedAt = existing.JoinedAt
			break
		}
	}
	if err := s.rooms.UpsertLobbyEntry(ctx, entry); err != nil {
		return room.LobbyEntry{}, fmt.Errorf("upsert lobby entry: %w", err)
	}
	return entry, nil
}

func (s *RoomService) LeaveLobby(ctx context.Context, key minigame.SessionKey, userID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoomService.LeaveLobby")
	defer span.End()

	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	if err := s.rooms.DeleteLobbyEntry(ctx, key.RoomCode, key.Gameweek, userID); err != nil {
		return fmt.Errorf("delete lobby entry: %w", err)
	}
	return nil
}

func (s *RoomService) ListLobby(ctx context.Context, key minigame.SessionKey, viewerID string) ([]room.LobbyEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RoomService.ListLobby")
	defer span.End()

	key, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireMember(ctx, key.RoomCode, viewerID); err != nil {
		return nil, err
	}
	entries, err := s.rooms.ListLobby(ctx, key.RoomCode, key.Gameweek)
	if err != nil {
		return nil, fmt.Errorf("list lobby: %w", err)
	}
	return entries, nil
}

func (s *RoomService) requireRoom(ctx context.Context, rawCode string) (string, error) {
	code, err := room.NormalizeCode(rawCode)
	if err != nil {
		return "", classify(err)
	}
	_, exists, err := s.rooms.GetRoom(ctx, code)
	if err != nil {
		return "", fmt.Errorf("get room: %w", err)
	}
	if !exists {
		return "", fmt.Errorf("%w: room=%s", ErrNotFound, code)
	}
	return code, nil
}

func (s *RoomService) requireMember(ctx context.Context, rawCode, userID string) (string, error) {
	code, err := s.requireRoom(ctx, rawCode)
	if err != nil {
		return "", err
	}
	_, ok, err := s.rooms.GetMember(ctx, code, userID)
	if err != nil {
		return "", fmt.Errorf("get member: %w", err)
	}
	if !ok {
		return "", classify(room.ErrNotMember)
	}
	return code, nil
}

func normalizeDisplayName(raw, fallback string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		name = fallback
	}
	if len([]rune(name)) > maxDisplayNameLength {
		return "", fmt.Errorf("%w: display name must be at most %d characters", ErrInvalidInput, maxDisplayNameLength)
	}
	return name, nil
}
