package uid

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerate(t *testing.T) {
	g := NewUUID()

	a, b := g.Generate(), g.Generate()
	if a == b {
		t.Fatalf("Generate() returned the same id twice: %s", a)
	}

	id, err := uuid.Parse(a)
	if err != nil {
		t.Fatalf("uuid.Parse(%q) error = %v", a, err)
	}
	if id.Version() != 7 {
		t.Errorf("version = %d, want 7", id.Version())
	}
}
