package fixture

import "testing"

func matchday(gw, total, finished int) []Fixture {
	out := make([]Fixture, 0, total)
	for i := 0; i < total; i++ {
		status := StatusTimed
		if i < finished {
			status = StatusFinished
		}
		out = append(out, Fixture{ID: int64(gw*100 + i), Gameweek: gw, Status: status})
	}
	return out
}

func TestCurrentGameweek(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		items []Fixture
		want  int
	}{
		{name: "empty window", items: nil, want: 1},
		{name: "first open matchday", items: append(matchday(4, 10, 10), matchday(5, 10, 3)...), want: 5},
		{name: "partial matchday counts as open", items: append(matchday(4, 8, 8), matchday(5, 10, 0)...), want: 4},
		{name: "all finished advances", items: append(matchday(6, 10, 10), matchday(7, 10, 10)...), want: 8},
		{name: "clamped to last", items: matchday(38, 10, 10), want: 38},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CurrentGameweek(tc.items); got != tc.want {
				t.Fatalf("unexpected gameweek: got=%d want=%d", got, tc.want)
			}
		})
	}
}

func TestResultRequiresFinishedStatusAndScores(t *testing.T) {
	t.Parallel()

	two, one := 2, 1
	finished := Fixture{ID: 1, Status: "finished", HomeScore: &two, AwayScore: &one}
	if score, ok := finished.Result(); !ok || score.String() != "2-1" {
		t.Fatalf("unexpected result: %v %v", score, ok)
	}

	live := Fixture{ID: 2, Status: StatusInPlay, HomeScore: &two, AwayScore: &one}
	if _, ok := live.Result(); ok {
		t.Fatalf("live match must not have a result")
	}

	missing := Fixture{ID: 3, Status: StatusFinished, HomeScore: &two}
	if _, ok := missing.Result(); ok {
		t.Fatalf("missing away score must not have a result")
	}

	results := Results([]Fixture{finished, live, missing})
	if len(results) != 1 {
		t.Fatalf("unexpected results count: got=%d want=1", len(results))
	}
}
