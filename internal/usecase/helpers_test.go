package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/riskibarqy/gameweek-draft/internal/domain/fixture"
	"github.com/riskibarqy/gameweek-draft/internal/domain/minigame"
	"github.com/riskibarqy/gameweek-draft/internal/domain/room"
	"github.com/riskibarqy/gameweek-draft/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/gameweek-draft/internal/platform/id"
	"github.com/riskibarqy/gameweek-draft/internal/platform/logging"
	"github.com/riskibarqy/gameweek-draft/internal/platform/resilience"
)

var testNow = time.Date(2025, 9, 20, 11, 30, 0, 0, time.UTC)

// stubProvider serves a fixed fixture list and can be switched to finished
// results between calls.
type stubProvider struct {
	mu       sync.Mutex
	fixtures  []fixture.Fixture
	err       error
	forgotten []int
}

func (p *stubProvider) Forget(_ context.Context, gameweek int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.forgotten = append(p.forgotten, gameweek)
}

func (p *stubProvider) forgetCalls() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.forgotten...)
}

func (p *stubProvider) ListByGameweek(_ context.Context, gameweek int) ([]fixture.Fixture, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	out := make([]fixture.Fixture, 0, len(p.fixtures))
	for _, f := range p.fixtures {
		if f.Gameweek == gameweek {
			out = append(out, f)
		}
	}
	return out, nil
}

func (p *stubProvider) ListByDateRange(_ context.Context, _, _ time.Time) ([]fixture.Fixture, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	return append([]fixture.Fixture(nil), p.fixtures...), nil
}

func (p *stubProvider) finish(fixtureID int64, home, away int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.fixtures {
		if p.fixtures[i].ID == fixtureID {
			h, a := home, away
			p.fixtures[i].Status = fixture.StatusFinished
			p.fixtures[i].HomeScore = &h
			p.fixtures[i].AwayScore = &a
		}
	}
}

func scheduledFixtures(gameweek int, ids ...int64) []fixture.Fixture {
	out := make([]fixture.Fixture, 0, len(ids))
	for i, fixtureID := range ids {
		out = append(out, fixture.Fixture{
			ID:        fixtureID,
			Gameweek:  gameweek,
			KickoffAt: testNow.Add(time.Duration(i) * time.Hour),
			Venue:     fixture.DefaultVenue,
			Status:    fixture.StatusTimed,
		})
	}
	return out
}

type draftHarness struct {
	key      minigame.SessionKey
	clock    *clockwork.FakeClock
	drafts   *memory.DraftRepository
	rooms    *memory.RoomRepository
	provider *stubProvider
	sessions *SessionService
	scoring  *ScoringService
}

// newDraftHarness creates room ROOM1 led by the first player, with every
// player in the gameweek 5 lobby in the given order.
func newDraftHarness(t *testing.T, players []string, fixtureIDs ...int64) *draftHarness {
	t.Helper()

	ctx := context.Background()
	h := &draftHarness{
		key:      minigame.SessionKey{RoomCode: "ROOM1", Gameweek: 5},
		clock:    clockwork.NewFakeClockAt(testNow),
		drafts:   memory.NewDraftRepository(),
		rooms:    memory.NewRoomRepository(),
		provider: &stubProvider{fixtures: scheduledFixtures(5, fixtureIDs...)},
	}

	leader := room.Member{RoomCode: h.key.RoomCode, UserID: players[0], DisplayName: players[0], Role: room.RoleLeader, JoinedAt: testNow}
	if err := h.rooms.CreateRoom(ctx, room.Room{Code: h.key.RoomCode, LeaderID: players[0], CreatedAt: testNow}, leader); err != nil {
		t.Fatalf("create room: %v", err)
	}
	for i, player := range players {
		joinedAt := testNow.Add(time.Duration(i) * time.Second)
		if i > 0 {
			member := room.Member{RoomCode: h.key.RoomCode, UserID: player, DisplayName: player, Role: room.RoleMember, JoinedAt: joinedAt}
			if err := h.rooms.UpsertMember(ctx, member); err != nil {
				t.Fatalf("upsert member: %v", err)
			}
		}
		entry := room.LobbyEntry{RoomCode: h.key.RoomCode, Gameweek: h.key.Gameweek, UserID: player, DisplayName: player, JoinedAt: joinedAt, LastSeenAt: joinedAt}
		if err := h.rooms.UpsertLobbyEntry(ctx, entry); err != nil {
			t.Fatalf("upsert lobby entry: %v", err)
		}
	}

	retry := resilience.RetryConfig{MaxAttempts: 50, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
	h.sessions = NewSessionService(
		h.drafts,
		h.rooms,
		h.provider,
		&id.Sequence{IDs: []string{"session-1", "session-2"}},
		minigame.KeepOrder,
		h.clock,
		SessionServiceConfig{Retry: retry},
		logging.NewNop(),
	)
	h.scoring = NewScoringService(h.drafts, h.rooms, h.provider, h.clock, logging.NewNop())
	return h
}

func (h *draftHarness) start(t *testing.T) minigame.Session {
	t.Helper()
	session, err := h.sessions.StartSession(context.Background(), h.key, h.leader())
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	return session
}

func (h *draftHarness) leader() string {
	item, _, _ := h.rooms.GetRoom(context.Background(), h.key.RoomCode)
	return item.LeaderID
}

// draftAll plays every turn, giving the player on turn t the score "t-0".
func (h *draftHarness) draftAll(t *testing.T) minigame.Session {
	t.Helper()
	ctx := context.Background()
	session, ok, err := h.drafts.GetSession(ctx, h.key)
	if err != nil || !ok {
		t.Fatalf("get session: ok=%v err=%v", ok, err)
	}
	for session.State == minigame.StateDraft {
		turn, _ := session.ActiveTurn()
		session, _, err = h.sessions.SubmitPick(ctx, h.key, turn.PlayerID, minigame.Score{Home: turn.Index}.String())
		if err != nil {
			t.Fatalf("submit pick turn=%d: %v", turn.Index, err)
		}
	}
	return session
}

func findRecord(t *testing.T, records []minigame.ScoreRecord, playerID string) minigame.ScoreRecord {
	t.Helper()
	for _, record := range records {
		if record.PlayerID == playerID {
			return record
		}
	}
	t.Fatalf("no score record for %s", playerID)
	return minigame.ScoreRecord{}
}

// addRoom creates another room in the harness with every player in its
// gameweek lobby and starts its session.
func (h *draftHarness) addRoom(t *testing.T, code string, players ...string) minigame.SessionKey {
	t.Helper()

	ctx := context.Background()
	key := minigame.SessionKey{RoomCode: code, Gameweek: h.key.Gameweek}
	leader := room.Member{RoomCode: code, UserID: players[0], DisplayName: players[0], Role: room.RoleLeader, JoinedAt: testNow}
	if err := h.rooms.CreateRoom(ctx, room.Room{Code: code, LeaderID: players[0], CreatedAt: testNow}, leader); err != nil {
		t.Fatalf("create room: %v", err)
	}
	for i, player := range players {
		joinedAt := testNow.Add(time.Duration(i) * time.Second)
		if i > 0 {
			if err := h.rooms.UpsertMember(ctx, room.Member{RoomCode: code, UserID: player, DisplayName: player, Role: room.RoleMember, JoinedAt: joinedAt}); err != nil {
				t.Fatalf("upsert member: %v", err)
			}
		}
		if err := h.rooms.UpsertLobbyEntry(ctx, room.LobbyEntry{RoomCode: code, Gameweek: key.Gameweek, UserID: player, JoinedAt: joinedAt, LastSeenAt: joinedAt}); err != nil {
			t.Fatalf("upsert lobby entry: %v", err)
		}
	}
	if _, err := h.sessions.StartSession(ctx, key, players[0]); err != nil {
		t.Fatalf("start session %s: %v", code, err)
	}
	return key
}
