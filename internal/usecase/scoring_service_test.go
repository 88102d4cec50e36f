package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

// playThreePlayerDraft drafts alice, bob and carol over fixtures 101 and 102
// and locks one golden pick each.
func playThreePlayerDraft(t *testing.T) *draftHarness {
	t.Helper()

	ctx := context.Background()
	h := newDraftHarness(t, []string{"alice", "bob", "carol"}, 101, 102)
	h.start(t)

	picks := []struct{ player, score string }{
		{"alice", "1-1"}, {"bob", "2-0"}, {"carol", "0-0"},
		{"bob", "1-1"}, {"carol", "2-2"}, {"alice", "0-1"},
	}
	for _, p := range picks {
		if _, _, err := h.sessions.SubmitPick(ctx, h.key, p.player, p.score); err != nil {
			t.Fatalf("submit pick %s %s: %v", p.player, p.score, err)
		}
	}
	locks := []struct {
		player  string
		fixture int64
		score   string
	}{
		{"alice", 101, "1-1"},
		{"bob", 102, "1-1"},
		{"carol", 101, "0-0"},
	}
	for _, l := range locks {
		if _, _, err := h.sessions.LockGolden(ctx, h.key, l.player, l.fixture, l.score); err != nil {
			t.Fatalf("lock golden %s: %v", l.player, err)
		}
	}
	return h
}

func TestScoringService_RecalculateWithoutResultsWritesNothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := playThreePlayerDraft(t)

	got, err := h.scoring.Recalculate(ctx, h.key)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if got.Scored != 0 || got.ResultsKnown != 0 {
		t.Fatalf("unexpected result: scored=%d known=%d", got.Scored, got.ResultsKnown)
	}
	records, err := h.scoring.ListScores(ctx, h.key, "alice")
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("unexpected records: got=%d want=0", len(records))
	}
}

func TestScoringService_RecalculateAppliesGoldenAndIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := playThreePlayerDraft(t)
	h.provider.finish(101, 1, 1)
	h.provider.finish(102, 1, 1)

	first, err := h.scoring.Recalculate(ctx, h.key)
	if err != nil {
		t.Fatalf("recalculate: %v", err)
	}
	if first.Scored != 3 || first.ResultsKnown != 2 {
		t.Fatalf("unexpected result: scored=%d known=%d", first.Scored, first.ResultsKnown)
	}

	want := map[string]int{
		"alice": 4, // exact on golden 101
		"bob":   4, // exact on golden 102
		"carol": 3, // outcome on golden 101, outcome on 102
	}
	records, err := h.scoring.ListScores(ctx, h.key, "alice")
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	for _, record := range records {
		if record.Points != want[record.PlayerID] {
			t.Fatalf("unexpected points for %s: got=%d want=%d", record.PlayerID, record.Points, want[record.PlayerID])
		}
	}
	carol := findRecord(t, records, "carol")
	if entry := carol.Breakdown[101]; !entry.IsGolden || entry.BasePoints != 1 || entry.AwardedPoints != 2 {
		t.Fatalf("unexpected golden breakdown: %+v", entry)
	}

	h.clock.Advance(10 * time.Minute)
	if _, err := h.scoring.Recalculate(ctx, h.key); err != nil {
		t.Fatalf("recalculate again: %v", err)
	}
	again, err := h.scoring.ListScores(ctx, h.key, "alice")
	if err != nil {
		t.Fatalf("list scores: %v", err)
	}
	if len(again) != len(records) {
		t.Fatalf("unexpected record count: got=%d want=%d", len(again), len(records))
	}
	for _, record := range again {
		prev := findRecord(t, records, record.PlayerID)
		if record.Points != prev.Points || !reflect.DeepEqual(record.Breakdown, prev.Breakdown) {
			t.Fatalf("recalculation changed %s: got=%+v want=%+v", record.PlayerID, record, prev)
		}
	}
}

func TestScoringService_RecalculateErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newDraftHarness(t, []string{"alice", "bob"}, 101)

	if _, err := h.scoring.Recalculate(ctx, h.key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	h.start(t)
	h.provider.err = errors.New("boom")
	if _, err := h.scoring.Recalculate(ctx, h.key); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}

	h.provider.err = nil
	if _, err := h.scoring.RecalculateAsLeader(ctx, h.key, "bob"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for non leader, got %v", err)
	}
	if _, err := h.scoring.RecalculateAsLeader(ctx, h.key, "alice"); err != nil {
		t.Fatalf("recalculate as leader: %v", err)
	}
	if got := h.provider.forgetCalls(); len(got) != 1 || got[0] != h.key.Gameweek {
		t.Fatalf("leader recalculation must refresh cached results once, got %v", got)
	}
	if _, err := h.scoring.ListScores(ctx, h.key, "mallory"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for non member, got %v", err)
	}
}
