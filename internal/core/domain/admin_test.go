package domain

import "testing"

func TestInvalidSentinel(t *testing.T) {
	if Invalid.IsValid() {
		t.Error("Invalid.IsValid() = true")
	}

	real := &Administrator{Username: "alice", Token: "t"}
	if !real.IsValid() {
		t.Error("record.IsValid() = false")
	}

	// Identity, not structural equality: an empty record that is not the
	// sentinel is still valid.
	empty := &Administrator{}
	if !empty.IsValid() {
		t.Error("non-sentinel empty record reported invalid")
	}
}
