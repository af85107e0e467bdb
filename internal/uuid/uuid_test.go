package uuid

import (
	"testing"

	googleuuid "github.com/google/uuid"
)

func TestNew(t *testing.T) {
	id := New()
	parsed, err := googleuuid.Parse(id)
	if err != nil {
		t.Fatalf("expected valid uuid, got %q: %v", id, err)
	}
	if parsed.Version() != 7 {
		t.Errorf("expected version 7, got %d", parsed.Version())
	}
	if New() == id {
		t.Error("expected distinct ids")
	}
}

func TestOrDefault(t *testing.T) {
	t.Run("keeps_valid", func(t *testing.T) {
		in := "0191f5a2-7c3e-7b1a-9c2d-1e2f3a4b5c6d"
		if got := OrDefault(in); got != in {
			t.Errorf("expected %s, got %s", in, got)
		}
	})

	t.Run("replaces_invalid", func(t *testing.T) {
		got := OrDefault("not-a-uuid")
		if got == "not-a-uuid" || !IsValid(got) {
			t.Errorf("expected fresh uuid, got %s", got)
		}
	})

	t.Run("replaces_empty", func(t *testing.T) {
		if !IsValid(OrDefault("")) {
			t.Error("expected fresh uuid")
		}
	})
}
