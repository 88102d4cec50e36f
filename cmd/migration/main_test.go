package main

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestPositiveInt(t *testing.T) {
	if got, err := positiveInt(" 3 "); err != nil || got != 3 {
		t.Fatalf("got=%d err=%v want=3", got, err)
	}
	for _, raw := range []string{"0", "-2", "two"} {
		if _, err := positiveInt(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestVersionArg(t *testing.T) {
	got, err := versionArg([]string{"1760486400"})
	if err != nil || got != 1760486400 {
		t.Fatalf("got=%d err=%v want=1760486400", got, err)
	}
	if _, err := versionArg(nil); !errors.Is(err, errUsage) {
		t.Fatalf("missing version must be a usage error: %v", err)
	}
	if _, err := versionArg([]string{"-1"}); err == nil {
		t.Fatalf("expected error for negative version")
	}
}

func TestMigrationsDir_PrefersEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MIGRATIONS_DIR", dir)

	got, err := migrationsDir()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want, _ := filepath.Abs(dir)
	if got != want {
		t.Fatalf("got=%s want=%s", got, want)
	}

	t.Setenv("MIGRATIONS_DIR", filepath.Join(dir, "missing"))
	if _, err := migrationsDir(); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
