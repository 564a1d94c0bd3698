package registry

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateUninitialized, StateActive, true},
		{StateUninitialized, StateFailed, true},
		{StateActive, StateSuspended, true},
		{StateSuspended, StateActive, true},
		{StateActive, StateTornDown, true},
		{StateSuspended, StateTornDown, true},
		{StateUninitialized, StateSuspended, false},
		{StateFailed, StateActive, false},
		{StateTornDown, StateActive, false},
		{StateTornDown, StateUninitialized, false},
		{StateActive, StateFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestStateLive(t *testing.T) {
	live := map[State]bool{
		StateUninitialized: false,
		StateActive:        true,
		StateSuspended:     true,
		StateTornDown:      false,
		StateFailed:        false,
	}
	for s, want := range live {
		if s.Live() != want {
			t.Errorf("%s.Live() = %v, want %v", s, s.Live(), want)
		}
	}
	if State(42).String() != "unknown" {
		t.Errorf("unexpected string for invalid state: %s", State(42))
	}
}

func TestParseVariant(t *testing.T) {
	for _, v := range DefaultOrder {
		got, ok := ParseVariant(string(v))
		if !ok || got != v {
			t.Errorf("ParseVariant(%q) = %q, %v", v, got, ok)
		}
	}
	if _, ok := ParseVariant("audio"); ok {
		t.Error("expected unknown variant to be rejected")
	}
}

func TestConstructionError(t *testing.T) {
	err := &ConstructionError{Variant: MIDI, Err: ErrDuplicate}
	if err.Error() != "construct midi: variant already registered" {
		t.Errorf("unexpected message: %s", err)
	}
	te := &TransitionError{Variant: OSC, From: StateTornDown, To: StateActive}
	if te.Error() != "osc: illegal transition torn_down -> active" {
		t.Errorf("unexpected message: %s", te)
	}
}
