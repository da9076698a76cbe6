package idgen

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewID(t *testing.T) {
	if _, err := uuid.Parse(NewID()); err != nil {
		t.Fatalf("NewID is not a uuid: %v", err)
	}
}

func TestReference(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		ref := Reference()
		if len(ref) != 8 {
			t.Fatalf("len(%q) = %d", ref, len(ref))
		}
		for _, r := range ref {
			if !strings.ContainsRune(referenceAlphabet, r) {
				t.Fatalf("%q has %q outside the alphabet", ref, r)
			}
		}
		seen[ref] = true
	}
	if len(seen) < 95 {
		t.Fatalf("only %d distinct references out of 100", len(seen))
	}
}
