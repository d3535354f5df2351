package rounds

// State of a Controller.
type State int

const (
	Running State = iota
	Won
	Exhausted
	Aborted
)

func (s State) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Won:
		return "WON"
	case Exhausted:
		return "EXHAUSTED"
	case Aborted:
		return "ABORTED"
	}
	return "UNKNOWN"
}

// Terminal reports whether the controller stops in this state.
func (s State) Terminal() bool {
	return s != Running
}
