package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := InvalidTarget("Invalid target")
	kind, ok := KindOf(err)
	if !ok || kind != KindInvalidTarget {
		t.Fatalf("Expected InvalidTarget, got %v ok=%v", kind, ok)
	}

	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("Plain errors carry no kind")
	}
	if _, ok := KindOf(nil); ok {
		t.Error("nil carries no kind")
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("resolving kill: %w", NotFound("Player not found"))
	if !Is(wrapped, KindNotFound) {
		t.Error("Kind should survive wrapping")
	}
	if Is(wrapped, KindConflict) {
		t.Error("Wrong kind must not match")
	}
}

func TestErrorMessage(t *testing.T) {
	err := Conflict("Nickname %q already taken", "alice")
	if err.Error() != `Nickname "alice" already taken` {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindNotFound:      "not_found",
		KindInvalidState:  "invalid_state",
		KindInvalidTarget: "invalid_target",
		KindConflict:      "conflict",
		Kind(99):          "unknown",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("Kind(%d).String() = %s, want %s", kind, got, want)
		}
	}
}
