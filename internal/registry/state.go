package registry

// Variant identifies one kind of subsystem.
type Variant string

const (
	Patch Variant = "patch"
	MIDI  Variant = "midi"
	OSC   Variant = "osc"
	Scene Variant = "scene"
)

// DefaultOrder is the dependency order used at startup. The patch engine
// comes first because it reads the synchronized lib tree.
var DefaultOrder = []Variant{Patch, MIDI, OSC, Scene}

// ParseVariant converts a name into a Variant.
func ParseVariant(s string) (Variant, bool) {
	switch v := Variant(s); v {
	case Patch, MIDI, OSC, Scene:
		return v, true
	}
	return "", false
}

// State is the lifecycle state of a registry entry.
type State int

const (
	StateUninitialized State = iota
	StateActive
	StateSuspended
	StateTornDown
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateSuspended:
		return "suspended"
	case StateTornDown:
		return "torn_down"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Live reports whether an entry in this state holds a usable instance.
func (s State) Live() bool {
	return s == StateActive || s == StateSuspended
}

// transitions lists the allowed moves. TornDown and Failed are terminal.
var transitions = map[State][]State{
	StateUninitialized: {StateActive, StateFailed},
	StateActive:        {StateSuspended, StateTornDown},
	StateSuspended:     {StateActive, StateTornDown},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
