package load

// Phase tracks where a session is in its lifecycle. Checkpointing is its
// own phase because a failure there has different consequences than a
// failure while loading: transaction logging is still off.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDispatching
	PhaseDraining
	PhaseCheckpointing
	PhaseDone
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDispatching:
		return "dispatching"
	case PhaseDraining:
		return "draining"
	case PhaseCheckpointing:
		return "checkpointing"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}
