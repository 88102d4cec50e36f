package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/gameweek-draft/internal/domain/minigame"
)

var testKey = minigame.SessionKey{RoomCode: "ROOM1", Gameweek: 5}

func seedSession(t *testing.T, repo *DraftRepository) minigame.Session {
	t.Helper()

	s := minigame.Session{
		ID:         "s-1",
		Key:        testKey,
		State:      minigame.StateDraft,
		Players:    []string{"A", "B"},
		FixtureIDs: []int64{101, 102},
		TotalTurns: 4,
	}
	err := repo.RunInTx(context.Background(), func(ctx context.Context, tx minigame.Tx) error {
		return tx.PutSession(ctx, s)
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return s
}

func TestRunInTxCommitsBufferedWrites(t *testing.T) {
	t.Parallel()

	repo := NewDraftRepository()
	seedSession(t, repo)

	ctx := context.Background()
	got, ok, err := repo.GetSession(ctx, testKey)
	if err != nil || !ok {
		t.Fatalf("get session: ok=%v err=%v", ok, err)
	}
	if got.Version != 1 {
		t.Fatalf("unexpected version: got=%d want=1", got.Version)
	}

	got.Players[0] = "mutated"
	again, _, _ := repo.GetSession(ctx, testKey)
	if again.Players[0] != "A" {
		t.Fatalf("stored session must not alias returned slices")
	}
}

func TestRunInTxDiscardsWritesOnError(t *testing.T) {
	t.Parallel()

	repo := NewDraftRepository()
	seedSession(t, repo)
	boom := errors.New("boom")

	err := repo.RunInTx(context.Background(), func(ctx context.Context, tx minigame.Tx) error {
		if err := tx.CreatePick(ctx, testKey, minigame.Pick{PlayerID: "A", FixtureID: 101, Score: minigame.MustParseScore("1-0")}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}

	picks, _ := repo.ListPicks(context.Background(), testKey)
	if len(picks) != 0 {
		t.Fatalf("expected no picks after failed tx, got=%d", len(picks))
	}
}

func TestReadAfterWriteIsRejected(t *testing.T) {
	t.Parallel()

	repo := NewDraftRepository()
	seedSession(t, repo)

	err := repo.RunInTx(context.Background(), func(ctx context.Context, tx minigame.Tx) error {
		if err := tx.PutGoldenLock(ctx, testKey, minigame.GoldenLock{PlayerID: "A", Locked: true}); err != nil {
			return err
		}
		_, _, err := tx.GetSession(ctx, testKey)
		return err
	})
	if !errors.Is(err, minigame.ErrReadAfterWrite) {
		t.Fatalf("expected ErrReadAfterWrite, got %v", err)
	}
}

func TestStaleReadConflictsAtCommit(t *testing.T) {
	t.Parallel()

	repo := NewDraftRepository()
	seedSession(t, repo)
	ctx := context.Background()

	err := repo.RunInTx(ctx, func(ctx context.Context, tx minigame.Tx) error {
		if _, _, err := tx.FindPickByScore(ctx, testKey, 101, minigame.MustParseScore("1-1")); err != nil {
			return err
		}

		// A competing transaction claims the same score before this one commits.
		if err := repo.RunInTx(ctx, func(ctx context.Context, other minigame.Tx) error {
			return other.CreatePick(ctx, testKey, minigame.Pick{PlayerID: "B", FixtureID: 101, Score: minigame.MustParseScore("1-1")})
		}); err != nil {
			t.Errorf("competing commit: %v", err)
		}

		return tx.CreatePick(ctx, testKey, minigame.Pick{PlayerID: "A", FixtureID: 101, Score: minigame.MustParseScore("1-1"), CreatedAt: time.Now()})
	})
	if !errors.Is(err, minigame.ErrTxConflict) {
		t.Fatalf("expected ErrTxConflict, got %v", err)
	}

	picks, _ := repo.ListPicks(ctx, testKey)
	if len(picks) != 1 || picks[0].PlayerID != "B" {
		t.Fatalf("unexpected picks: %+v", picks)
	}
}

func TestSameScoreOnOtherFixtureDoesNotConflict(t *testing.T) {
	t.Parallel()

	repo := NewDraftRepository()
	seedSession(t, repo)
	ctx := context.Background()

	err := repo.RunInTx(ctx, func(ctx context.Context, tx minigame.Tx) error {
		if _, _, err := tx.FindPickByScore(ctx, testKey, 102, minigame.MustParseScore("1-1")); err != nil {
			return err
		}
		if err := repo.RunInTx(ctx, func(ctx context.Context, other minigame.Tx) error {
			return other.CreatePick(ctx, testKey, minigame.Pick{PlayerID: "B", FixtureID: 101, Score: minigame.MustParseScore("1-1")})
		}); err != nil {
			t.Errorf("competing commit: %v", err)
		}
		return tx.CreatePick(ctx, testKey, minigame.Pick{PlayerID: "A", FixtureID: 102, Score: minigame.MustParseScore("1-1")})
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGoldenLocksReadSetCoversEveryPlayer(t *testing.T) {
	t.Parallel()

	repo := NewDraftRepository()
	seedSession(t, repo)
	ctx := context.Background()

	err := repo.RunInTx(ctx, func(ctx context.Context, tx minigame.Tx) error {
		locks, err := tx.GetGoldenLocks(ctx, testKey, []string{"A", "B"})
		if err != nil {
			return err
		}
		if len(locks) != 0 {
			t.Errorf("expected no locks, got=%d", len(locks))
		}
		if err := repo.RunInTx(ctx, func(ctx context.Context, other minigame.Tx) error {
			return other.PutGoldenLock(ctx, testKey, minigame.GoldenLock{PlayerID: "B", FixtureID: 101, Locked: true})
		}); err != nil {
			t.Errorf("competing commit: %v", err)
		}
		return tx.PutGoldenLock(ctx, testKey, minigame.GoldenLock{PlayerID: "A", FixtureID: 101, Locked: true})
	})
	if !errors.Is(err, minigame.ErrTxConflict) {
		t.Fatalf("expected ErrTxConflict, got %v", err)
	}
}

func TestScoreRecordsUpsertOverwrites(t *testing.T) {
	t.Parallel()

	repo := NewDraftRepository()
	ctx := context.Background()
	first := []minigame.ScoreRecord{{PlayerID: "A", Points: 1}, {PlayerID: "B", Points: 3}}
	second := []minigame.ScoreRecord{{PlayerID: "A", Points: 4}, {PlayerID: "B", Points: 3}}

	if err := repo.UpsertScoreRecords(ctx, testKey, first); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.UpsertScoreRecords(ctx, testKey, second); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, _ := repo.ListScoreRecords(ctx, testKey)
	if len(got) != 2 || got[0].PlayerID != "A" || got[0].Points != 4 {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestListSessionsIndexes(t *testing.T) {
	t.Parallel()

	repo := NewDraftRepository()
	seedSession(t, repo)
	ctx := context.Background()

	other := minigame.Session{ID: "s-2", Key: minigame.SessionKey{RoomCode: "ROOM2", Gameweek: 5}, State: minigame.StateDraft}
	if err := repo.RunInTx(ctx, func(ctx context.Context, tx minigame.Tx) error { return tx.PutSession(ctx, other) }); err != nil {
		t.Fatalf("put session: %v", err)
	}

	keys, _ := repo.ListSessionKeysByGameweek(ctx, 5)
	if len(keys) != 2 || keys[0].RoomCode != "ROOM1" {
		t.Fatalf("unexpected keys: %+v", keys)
	}
	sessions, _ := repo.ListSessionsByRoom(ctx, "ROOM2")
	if len(sessions) != 1 || sessions[0].ID != "s-2" {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}
}
