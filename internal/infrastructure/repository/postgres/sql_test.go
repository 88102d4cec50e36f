package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"

	"github.com/riskibarqy/gameweek-draft/internal/domain/minigame"
)

func TestIsTxConflict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "serialization failure", err: &pq.Error{Code: "40001"}, want: true},
		{name: "deadlock", err: &pq.Error{Code: "40P01"}, want: true},
		{name: "unique violation wrapped", err: fmt.Errorf("insert pick: %w", &pq.Error{Code: "23505"}), want: true},
		{name: "undefined table", err: &pq.Error{Code: "42P01"}, want: false},
		{name: "plain error", err: errors.New("pq: relation does not exist"), want: false},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := isTxConflict(tc.err); got != tc.want {
				t.Fatalf("unexpected result: got=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestWrapTxError(t *testing.T) {
	t.Parallel()

	if wrapTxError("commit", nil) != nil {
		t.Fatalf("nil error must stay nil")
	}

	conflict := wrapTxError("commit", &pq.Error{Code: "40001"})
	if !errors.Is(conflict, minigame.ErrTxConflict) {
		t.Fatalf("expected tx conflict, got %v", conflict)
	}

	other := wrapTxError("commit", sql.ErrConnDone)
	if errors.Is(other, minigame.ErrTxConflict) || !errors.Is(other, sql.ErrConnDone) {
		t.Fatalf("unexpected wrapping: %v", other)
	}
	if !isNotFound(fmt.Errorf("get: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
}
