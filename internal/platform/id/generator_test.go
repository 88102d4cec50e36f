package id

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGeneratorIssuesVersion7(t *testing.T) {
	t.Parallel()

	gen := NewUUIDGenerator()
	first, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	second, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct ids, got %s twice", first)
	}

	parsed, err := uuid.Parse(first)
	if err != nil {
		t.Fatalf("parse id: %v", err)
	}
	if parsed.Version() != 7 {
		t.Fatalf("unexpected version: got=%d want=7", parsed.Version())
	}
}

func TestSequenceExhausts(t *testing.T) {
	t.Parallel()

	seq := &Sequence{IDs: []string{"a"}}
	if v, err := seq.NewID(); err != nil || v != "a" {
		t.Fatalf("unexpected first id: %q %v", v, err)
	}
	if _, err := seq.NewID(); err == nil {
		t.Fatalf("expected exhaustion error")
	}
}
