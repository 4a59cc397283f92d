package domain

import (
	"testing"
	"time"
)

func TestParseState(t *testing.T) {
	cases := []struct {
		in   string
		want State
		ok   bool
	}{
		{"confirmed", StateConfirmed, true},
		{" Ready_For_Pickup ", StateReady, true},
		{"confirmado", StateConfirmed, true},
		{"listo_para_recoger", StateReady, true},
		{"cancelado", StateCancelled, true},
		{"shipped", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseState(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseState(%q) = (%q,%v); want (%q,%v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCanTransition(t *testing.T) {
	if !CanTransition(StatePending, StateConfirmed) || !CanTransition(StateReady, StateCompleted) {
		t.Fatalf("forward edges must be allowed")
	}
	for _, s := range ActiveStates() {
		if !CanTransition(s, StateCancelled) {
			t.Fatalf("%s -> cancelled must be allowed", s)
		}
	}
	if CanTransition(StateCancelled, StateConfirmed) || CanTransition(StateCompleted, StateCancelled) {
		t.Fatalf("terminal states must not move")
	}
	if CanTransition(StatePending, StateCompleted) {
		t.Fatalf("skipping states must not be canonical")
	}
}

func TestStampTime_SetOnce(t *testing.T) {
	var o Order
	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	if o.StampTime(StatePending, t1) {
		t.Fatalf("pending owns no timestamp")
	}
	if !o.StampTime(StateCancelled, t1) {
		t.Fatalf("first cancel stamp should write")
	}
	if o.StampTime(StateCancelled, t2) {
		t.Fatalf("second cancel stamp must not overwrite")
	}
	if !o.CancelledAt.Equal(t1) {
		t.Fatalf("CancelledAt = %v; want %v", o.CancelledAt, t1)
	}
}

func TestParsePriority(t *testing.T) {
	if p, ok := ParsePriority("alta"); !ok || p != PriorityHigh {
		t.Fatalf("alta -> %q,%v", p, ok)
	}
	if p, ok := ParsePriority("urgente"); ok || p != PriorityMedium {
		t.Fatalf("unknown must fall back to medium,false; got %q,%v", p, ok)
	}
	if PriorityLow.Label() != "BAJA" {
		t.Fatalf("label mismatch")
	}
}
