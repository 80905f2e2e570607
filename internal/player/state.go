package player

// State is the element's transport state. Play moves any state to Playing,
// Stop moves any state to Stopped, and Pause and Resume only swap Playing
// and Paused. Every other request leaves the state unchanged.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

var stateNames = [...]string{Stopped: "stopped", Playing: "playing", Paused: "paused"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Loaded reports whether a track is attached to the element.
func (s State) Loaded() bool { return s != Stopped }

// CanPause reports whether Pause has an effect.
func (s State) CanPause() bool { return s == Playing }

// CanResume reports whether Resume has an effect.
func (s State) CanResume() bool { return s == Paused }
