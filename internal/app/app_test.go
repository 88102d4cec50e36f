package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/gameweek-draft/internal/config"
	"github.com/riskibarqy/gameweek-draft/internal/platform/logging"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv:                    config.EnvDev,
		HTTPAddr:                  ":0",
		ReadTimeout:               time.Second,
		WriteTimeout:              time.Second,
		CORSAllowedOrigins:        []string{"*"},
		StoreDriver:               config.StoreMemory,
		StoreTxMaxAttempts:        3,
		StoreTxInitialBackoff:     time.Millisecond,
		StoreTxMaxBackoff:         time.Millisecond,
		FootballDataBaseURL:       "http://127.0.0.1:1",
		FootballDataCompetition:   "PL",
		FootballDataSeason:        2025,
		FootballDataTimeout:       time.Second,
		FixturesCacheTTL:          time.Minute,
		FixturesPerSession:        10,
		AccountBaseURL:            "http://127.0.0.1:1",
		AccountTimeout:            time.Second,
		AccountCacheTTL:           time.Minute,
		JobWorkerCount:            2,
		LeaderboardMaxConcurrency: 2,
		InternalJobToken:          "job-token",
	}
}

func TestNew_MemoryStoreServesHealthz(t *testing.T) {
	app, err := New(context.Background(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	t.Cleanup(func() {
		if err := app.Close(); err != nil {
			t.Fatalf("close app: %v", err)
		}
	})

	if app.Server.Addr != ":0" || app.Server.ReadTimeout != time.Second {
		t.Fatalf("unexpected server config: addr=%s read=%s", app.Server.Addr, app.Server.ReadTimeout)
	}

	rec := httptest.NewRecorder()
	app.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected healthz status: got=%d want=200", rec.Code)
	}

	rec = httptest.NewRecorder()
	app.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/rooms", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected unauthenticated status: got=%d want=401", rec.Code)
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.HTTPAddr = ""
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for empty http addr")
	}

	cfg = memoryConfig()
	cfg.StoreDriver = "sqlite"
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for unsupported store driver")
	}
}
