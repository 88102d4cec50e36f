package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/riskibarqy/gameweek-draft/internal/app"
	"github.com/riskibarqy/gameweek-draft/internal/config"
	"github.com/riskibarqy/gameweek-draft/internal/platform/logging"
)

const usage = `usage: migration <command> [arg]

commands:
  up              apply every pending migration
  down [n]        roll back n migrations (default 1)
  version         print the current version and dirty flag
  force <v>       set the version without running migrations
  goto <v>        migrate up or down to version v`

var errUsage = errors.New(usage)

var migrationDirCandidates = []string{"./db/migrations", "/app/db/migrations"}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	logger := logging.NewJSON(cfg.LogLevel).With("service", "gameweek-draft-migration", "env", cfg.AppEnv)

	if err := run(cfg, logger, os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		logger.Error("migration failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(cfg config.Config, logger *logging.Logger, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	command, rest := strings.ToLower(strings.TrimSpace(args[0])), args[1:]

	dbURL := app.MigrationURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	if dbURL == "" {
		return errors.New("DB_URL is required")
	}
	dir, err := migrationsDir()
	if err != nil {
		return err
	}
	source := "file://" + filepath.ToSlash(dir)

	m, err := migrate.New(source, dbURL)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err := errors.Join(srcErr, dbErr); err != nil {
			logger.Warn("close migrator", "error", err)
		}
	}()

	switch command {
	case "up":
		return applied(logger, m.Up(), "migrations applied", "source", source)
	case "down":
		steps := 1
		if len(rest) > 0 {
			if steps, err = positiveInt(rest[0]); err != nil {
				return err
			}
		}
		return applied(logger, m.Steps(-steps), "migrations rolled back", "steps", steps)
	case "goto", "migrate":
		target, err := versionArg(rest)
		if err != nil {
			return err
		}
		return applied(logger, m.Migrate(target), "migrated", "version", target)
	case "force":
		target, err := versionArg(rest)
		if err != nil {
			return err
		}
		if err := m.Force(int(target)); err != nil {
			return fmt.Errorf("force version %d: %w", target, err)
		}
		logger.Info("version forced", "version", target)
		return nil
	case "version":
		version, dirty, err := m.Version()
		switch {
		case errors.Is(err, migrate.ErrNilVersion):
			fmt.Println("version: none\ndirty: false")
		case err != nil:
			return fmt.Errorf("read version: %w", err)
		default:
			fmt.Printf("version: %d\ndirty: %t\n", version, dirty)
		}
		return nil
	default:
		return errUsage
	}
}

// applied treats ErrNoChange as success.
func applied(logger *logging.Logger, err error, msg string, args ...any) error {
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("no migration changes")
		return nil
	case err != nil:
		return err
	}
	logger.Info(msg, args...)
	return nil
}

func positiveInt(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid step count %q: must be a positive integer", raw)
	}
	return n, nil
}

// versionArg parses a migration version. Versions are unix timestamps and
// must fit an int because Force takes one.
func versionArg(rest []string) (uint, error) {
	if len(rest) == 0 {
		return 0, errUsage
	}
	v, err := strconv.ParseUint(strings.TrimSpace(rest[0]), 10, strconv.IntSize-1)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", rest[0], err)
	}
	return uint(v), nil
}

func migrationsDir() (string, error) {
	candidates := migrationDirCandidates
	if fromEnv := strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")); fromEnv != "" {
		candidates = []string{fromEnv}
	}
	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}
	return "", fmt.Errorf("migration directory not found in %s", strings.Join(candidates, ", "))
}
