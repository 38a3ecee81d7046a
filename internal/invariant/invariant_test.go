package invariant_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dhamidi/sqlgram/internal/invariant"
)

func expectPanic(t *testing.T, kind, text string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected %s panic", kind)
		}
		msg := fmt.Sprintf("%v", r)
		if !strings.Contains(msg, kind+" VIOLATION") {
			t.Errorf("expected %s VIOLATION, got: %s", kind, msg)
		}
		if !strings.Contains(msg, text) {
			t.Errorf("expected message %q, got: %s", text, msg)
		}
		if !strings.Contains(msg, "at ") {
			t.Errorf("expected caller location, got: %s", msg)
		}
	}()
	fn()
}

func TestPassingChecksDoNotPanic(t *testing.T) {
	invariant.Precondition(true, "ok")
	invariant.Postcondition(1+1 == 2, "ok")
	invariant.Invariant(len("x") == 1, "ok")
	invariant.NotNil(t, "t")
}

func TestFailingChecksPanic(t *testing.T) {
	expectPanic(t, "PRECONDITION", "marker 3 already resolved", func() {
		invariant.Precondition(false, "marker %d already resolved", 3)
	})
	expectPanic(t, "POSTCONDITION", "cursor moved", func() {
		invariant.Postcondition(false, "cursor moved")
	})
	expectPanic(t, "INVARIANT", "frame stack", func() {
		invariant.Invariant(false, "frame stack")
	})
	expectPanic(t, "PRECONDITION", "builder must not be nil", func() {
		invariant.NotNil(nil, "builder")
	})
}
