// Package observability owns process-wide tracing, log export and profiling.
package observability

import (
	"context"
	"errors"

	"github.com/riskibarqy/gameweek-draft/internal/config"
	"github.com/riskibarqy/gameweek-draft/internal/platform/logging"
)

// Telemetry holds the shutdown hooks of every enabled backend.
type Telemetry struct {
	logger   *logging.Logger
	stoppers []stopper
}

type stopper struct {
	name string
	stop func(context.Context) error
}

// Start enables Uptrace, Pyroscope and the pprof listener according to cfg.
// On error every backend already started is stopped again.
func Start(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Telemetry, error) {
	t := &Telemetry{logger: logging.OrDefault(logger)}

	steps := []struct {
		name  string
		start func(config.Config, *logging.Logger) (func(context.Context) error, error)
	}{
		{"uptrace", startUptrace},
		{"pyroscope", startPyroscope},
		{"pprof", startPprof},
	}
	for _, step := range steps {
		stop, err := step.start(cfg, t.logger)
		if err != nil {
			return nil, errors.Join(err, t.Shutdown(ctx))
		}
		if stop != nil {
			t.stoppers = append(t.stoppers, stopper{name: step.name, stop: stop})
		}
	}
	return t, nil
}

// Shutdown stops backends in reverse start order.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(t.stoppers) - 1; i >= 0; i-- {
		s := t.stoppers[i]
		if err := s.stop(ctx); err != nil {
			t.logger.WarnContext(ctx, "telemetry shutdown failed", "backend", s.name, "error", err)
			errs = append(errs, err)
		}
	}
	t.stoppers = nil
	return errors.Join(errs...)
}
