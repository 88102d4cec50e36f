package room

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

type Role string

const (
	RoleLeader Role = "leader"
	RoleMember Role = "member"
)

var (
	ErrRoomExists      = errors.New("room already exists")
	ErrInvalidRoomCode = errors.New("room code must be 4-8 letters or digits")
	ErrNotLeader       = errors.New("only the room leader can do this")
	ErrNotMember       = errors.New("not a member of this room")
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{4,8}$`)

type Room struct {
	Code      string
	LeaderID  string
	CreatedAt time.Time
}

type Member struct {
	RoomCode    string
	UserID      string
	DisplayName string
	Role        Role
	JoinedAt    time.Time
}

// LobbyEntry marks a member as present for a gameweek. The lobby is the roster
// a session starts with.
type LobbyEntry struct {
	RoomCode    string
	Gameweek    int
	UserID      string
	DisplayName string
	JoinedAt    time.Time
	LastSeenAt  time.Time
}

// NormalizeCode upper-cases and validates a room code.
func NormalizeCode(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if !codePattern.MatchString(code) {
		return "", ErrInvalidRoomCode
	}
	return code, nil
}

func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}
