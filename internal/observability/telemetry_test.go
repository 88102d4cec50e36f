package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"

	"github.com/riskibarqy/gameweek-draft/internal/config"
	"github.com/riskibarqy/gameweek-draft/internal/platform/logging"
)

func TestStart_AllDisabled(t *testing.T) {
	cfg := config.Config{ServiceName: "gameweek-draft-api", ServiceVersion: "dev", AppEnv: config.EnvDev}

	tel, err := Start(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("start telemetry: %v", err)
	}
	if len(tel.stoppers) != 0 {
		t.Fatalf("got=%d want=0 stoppers", len(tel.stoppers))
	}
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestStart_UptraceEmptyDSNStaysDisabled(t *testing.T) {
	cfg := config.Config{UptraceEnabled: true, UptraceDSN: "  ", ServiceName: "gameweek-draft-api"}

	tel, err := Start(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("start telemetry: %v", err)
	}
	if len(tel.stoppers) != 0 {
		t.Fatalf("uptrace must not register a stopper without a dsn")
	}
}

func TestStart_PprofServesAndStops(t *testing.T) {
	cfg := config.Config{PprofEnabled: true, PprofAddr: "127.0.0.1:0"}

	stop, err := startPprof(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("start pprof: %v", err)
	}
	if err := stop(context.Background()); err != nil {
		t.Fatalf("stop pprof: %v", err)
	}
}

func TestStart_PprofPortTakenFailsAndUnwinds(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	cfg := config.Config{PprofEnabled: true, PprofAddr: ln.Addr().String()}
	if _, err := Start(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error when the pprof port is taken")
	}
}

func TestShutdown_JoinsErrorsInReverseOrder(t *testing.T) {
	var order []string
	boom := errors.New("flush failed")
	tel := &Telemetry{
		logger: logging.NewNop(),
		stoppers: []stopper{
			{name: "first", stop: func(context.Context) error { order = append(order, "first"); return nil }},
			{name: "second", stop: func(context.Context) error { order = append(order, "second"); return boom }},
		},
	}

	err := tel.Shutdown(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("got=%v want=%v", err, boom)
	}
	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Fatalf("unexpected shutdown order: %v", order)
	}
}

func TestPprofMux_ServesIndex(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	if _, pattern := pprofMux().Handler(req); pattern == "" {
		t.Fatalf("pprof index route missing")
	}
}
