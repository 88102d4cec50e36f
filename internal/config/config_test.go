package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StoreDriver != StoreMemory {
		t.Fatalf("unexpected store driver: got=%s want=%s", cfg.StoreDriver, StoreMemory)
	}
	if cfg.FootballDataCompetition != "PL" || cfg.FootballDataSeason != 2025 {
		t.Fatalf("unexpected competition defaults: %s/%d", cfg.FootballDataCompetition, cfg.FootballDataSeason)
	}
	if cfg.FixturesPerSession != 10 {
		t.Fatalf("unexpected fixtures per session: got=%d want=10", cfg.FixturesPerSession)
	}
	if cfg.FixturesCacheTTL != 60*time.Second {
		t.Fatalf("unexpected fixtures cache ttl: %s", cfg.FixturesCacheTTL)
	}
	if cfg.StoreTxMaxAttempts != 5 || cfg.StoreTxInitialBackoff != 20*time.Millisecond {
		t.Fatalf("unexpected tx retry defaults: %d/%s", cfg.StoreTxMaxAttempts, cfg.StoreTxInitialBackoff)
	}
	if cfg.AccountIntrospectPath != "/v1/auth/introspect" {
		t.Fatalf("unexpected introspect path: %s", cfg.AccountIntrospectPath)
	}
	if cfg.LogLevel.String() != "info" {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel)
	}
}

func TestLoad_StoreDriverValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "redis")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown STORE_DRIVER")
		}
	})

	t.Run("postgres", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "Postgres")
		t.Setenv("DB_MAX_OPEN_CONNS", "25")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StoreDriver != StorePostgres || cfg.DBMaxOpenConns != 25 {
			t.Fatalf("unexpected store config: %s/%d", cfg.StoreDriver, cfg.DBMaxOpenConns)
		}
	})

	t.Run("backoff ordering", func(t *testing.T) {
		t.Setenv("STORE_TX_INITIAL_BACKOFF", "1s")
		t.Setenv("STORE_TX_MAX_BACKOFF", "10ms")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when max backoff is below initial backoff")
		}
	})
}

func TestLoad_NumericValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	tests := []struct {
		key   string
		value string
	}{
		{key: "FIXTURES_PER_SESSION", value: "0"},
		{key: "FOOTBALLDATA_MAX_RETRIES", value: "-1"},
		{key: "FOOTBALLDATA_TIMEOUT", value: "0s"},
		{key: "ACCOUNT_CACHE_TTL", value: "soon"},
		{key: "JOB_WORKER_COUNT", value: "many"},
		{key: "ACCOUNT_CIRCUIT_ENABLED", value: "maybe"},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestLoad_ProdRequiresFootballDataToken(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("FOOTBALLDATA_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when APP_ENV=prod without FOOTBALLDATA_TOKEN")
	}

	t.Setenv("FOOTBALLDATA_TOKEN", "fd-token")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.FootballDataToken != "fd-token" {
		t.Fatalf("unexpected football-data token")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `foo=bar, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected uptrace dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_PprofDefaultsAddrWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PPROF_ENABLED", "true")
	t.Setenv("PPROF_ADDR", "  ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PprofAddr != ":6060" {
		t.Fatalf("expected default pprof addr :6060, got %q", cfg.PprofAddr)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_SERVICE_NAME", "gameweek-draft-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "gameweek-draft-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://draft.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://draft.example.com" || cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("only separators", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " , ,")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for empty CORS origin list")
		}
	})
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	content := "FOOTBALLDATA_COMPETITION=bl1\nJOB_WORKER_COUNT=7\nINTERNAL_JOB_TOKEN=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("ENV_FILE", path)
	t.Setenv("APP_ENV", EnvDev)
	// Variables already set win over the file.
	t.Setenv("INTERNAL_JOB_TOKEN", "from-env")
	// Registered for cleanup so values loaded from the file do not leak.
	t.Setenv("FOOTBALLDATA_COMPETITION", "")
	t.Setenv("JOB_WORKER_COUNT", "")
	_ = os.Unsetenv("FOOTBALLDATA_COMPETITION")
	_ = os.Unsetenv("JOB_WORKER_COUNT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.FootballDataCompetition != "BL1" {
		t.Fatalf("unexpected competition: got=%s want=BL1", cfg.FootballDataCompetition)
	}
	if cfg.JobWorkerCount != 7 {
		t.Fatalf("unexpected worker count: got=%d want=7", cfg.JobWorkerCount)
	}
	if cfg.InternalJobToken != "from-env" {
		t.Fatalf("environment must win over env file: got=%s", cfg.InternalJobToken)
	}
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
	t.Setenv("APP_ENV", EnvDev)

	if _, err := Load(); err != nil {
		t.Fatalf("missing env file must be ignored: %v", err)
	}
}
