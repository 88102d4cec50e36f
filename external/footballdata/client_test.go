package footballdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/gameweek-draft/internal/platform/resilience"
	"github.com/riskibarqy/gameweek-draft/internal/usecase"
)

const matchesFixture = `{
  "matches": [
    {
      "id": 101,
      "utcDate": "2025-09-20T14:00:00Z",
      "status": "FINISHED",
      "matchday": 5,
      "venue": "Anfield",
      "homeTeam": {"id": 64, "name": "Liverpool FC"},
      "awayTeam": {"id": 76, "name": "Wolverhampton Wanderers FC"},
      "score": {"fullTime": {"home": 2, "away": 1}}
    },
    {
      "id": 102,
      "utcDate": "2025-09-20T16:30:00Z",
      "status": "IN_PLAY",
      "matchday": 5,
      "venue": null,
      "homeTeam": {"id": 57, "name": "Arsenal FC"},
      "awayTeam": {"id": 61, "name": "Chelsea FC"},
      "score": {"fullTime": {"home": 1, "away": 0}}
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, maxRetries int) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(ClientConfig{
		BaseURL:      server.URL,
		Token:        "secret-token",
		Timeout:      2 * time.Second,
		MaxRetries:   maxRetries,
		RetryBackoff: time.Millisecond,
		CacheTTL:     time.Minute,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})
}

func TestListByGameweekMapsMatches(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/competitions/PL/matches" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("matchday"); got != "5" {
			t.Errorf("unexpected matchday: got=%s want=5", got)
		}
		if got := r.URL.Query().Get("season"); got != "2025" {
			t.Errorf("unexpected season: got=%s want=2025", got)
		}
		if got := r.Header.Get("X-Auth-Token"); got != "secret-token" {
			t.Errorf("unexpected auth header: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(matchesFixture))
	}, 0)

	items, err := client.ListByGameweek(context.Background(), 5)
	if err != nil {
		t.Fatalf("list by gameweek: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("unexpected fixture count: got=%d want=2", len(items))
	}

	finished := items[0]
	if finished.Gameweek != 5 || finished.Venue != "Anfield" || finished.HomeTeam.Name != "Liverpool FC" {
		t.Fatalf("unexpected mapping: %+v", finished)
	}
	if score, ok := finished.Result(); !ok || score.String() != "2-1" {
		t.Fatalf("unexpected result: %v ok=%v", score, ok)
	}
	if !finished.KickoffAt.Equal(time.Date(2025, 9, 20, 14, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected kickoff: %s", finished.KickoffAt)
	}

	live := items[1]
	if live.Venue != "TBD" {
		t.Fatalf("unexpected default venue: got=%s want=TBD", live.Venue)
	}
	if live.HomeScore != nil || live.AwayScore != nil {
		t.Fatalf("live match must not carry scores")
	}

	if _, err := client.ListByGameweek(context.Background(), 5); err != nil {
		t.Fatalf("cached list: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected cached second call: got=%d want=1", got)
	}
}

func TestListByDateRangeFormatsDates(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("dateFrom") != "2025-09-01" || query.Get("dateTo") != "2025-10-06" {
			t.Errorf("unexpected range: %s", r.URL.RawQuery)
		}
		if query.Has("matchday") {
			t.Errorf("date range query must not carry matchday")
		}
		_, _ = w.Write([]byte(`{"matches":[]}`))
	}, 0)

	from := time.Date(2025, 9, 1, 23, 0, 0, 0, time.UTC)
	items, err := client.ListByDateRange(context.Background(), from, from.Add(35*24*time.Hour))
	if err != nil {
		t.Fatalf("list by date range: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("unexpected fixtures: %d", len(items))
	}
}

func TestUnpublishedMatchdayReturnsEmpty(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound} {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}, 2)
		items, err := client.ListByGameweek(context.Background(), 38)
		if err != nil {
			t.Fatalf("status %d: unexpected error: %v", status, err)
		}
		if items == nil || len(items) != 0 {
			t.Fatalf("status %d: expected empty list, got %v", status, items)
		}
	}
}

func TestServerErrorsAreRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(matchesFixture))
	}, 2)

	items, err := client.ListByGameweek(context.Background(), 5)
	if err != nil {
		t.Fatalf("expected recovery after retries: %v", err)
	}
	if len(items) != 2 || calls.Load() != 3 {
		t.Fatalf("unexpected outcome: items=%d calls=%d", len(items), calls.Load())
	}
}

func TestRateLimitCarriesRetryAfter(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}, 1)

	_, err := client.ListByGameweek(context.Background(), 5)
	if !errors.Is(err, usecase.ErrRateLimited) {
		t.Fatalf("expected rate limited error, got %v", err)
	}
	retryAfter, ok := usecase.RetryAfter(err)
	if !ok || retryAfter != 30*time.Second {
		t.Fatalf("unexpected retry after: got=%s ok=%v", retryAfter, ok)
	}
}

func TestPermanentStatusIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"token secret-token is restricted"}`))
	}, 3)

	_, err := client.ListByGameweek(context.Background(), 5)
	if !errors.Is(err, usecase.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if isTransient(err) {
		t.Fatalf("forbidden must not be transient: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("unexpected attempts: got=%d want=1", got)
	}
}

func TestCircuitBreakerOpensAfterTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, 0)

	for gw := 1; gw <= 2; gw++ {
		if _, err := client.ListByGameweek(context.Background(), gw); !errors.Is(err, usecase.ErrUpstream) {
			t.Fatalf("gameweek %d: expected upstream error, got %v", gw, err)
		}
	}

	_, err := client.ListByGameweek(context.Background(), 3)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("open breaker must not reach the provider: got=%d want=2", got)
	}
}

func TestSanitizeSensitiveText(t *testing.T) {
	t.Parallel()

	got := sanitizeSensitiveText(" dial failed for token abc123 ", "abc123")
	if got != "dial failed for token REDACTED" {
		t.Fatalf("unexpected sanitized text: %q", got)
	}
	if got := parseRetryAfter("nonsense"); got != defaultRetryAfter {
		t.Fatalf("unexpected default retry after: got=%s want=%s", got, defaultRetryAfter)
	}
}

func TestForgetDropsCachedGameweek(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(matchesFixture))
	}, 0)
	ctx := context.Background()

	for range 2 {
		if _, err := client.ListByGameweek(ctx, 5); err != nil {
			t.Fatalf("list gameweek: %v", err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("cached reads: got=%d want=1 upstream calls", got)
	}

	client.Forget(ctx, 5)
	if _, err := client.ListByGameweek(ctx, 5); err != nil {
		t.Fatalf("list gameweek: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("after forget: got=%d want=2 upstream calls", got)
	}
}
