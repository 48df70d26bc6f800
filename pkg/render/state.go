package render

// State is a segment controller lifecycle state.
type State int

const (
	// StateIdle is the initial state before a render is invoked.
	StateIdle State = iota
	// StateSeeking waits for the source to land on the clip start.
	StateSeeking
	// StatePriming routes audio, negotiates the format and starts the
	// encoder before playback begins.
	StatePriming
	// StateCapturing runs the frame compositor loop.
	StateCapturing
	// StateCompleted holds the assembled artifact. Terminal.
	StateCompleted
	// StateFailed holds a typed failure. Terminal.
	StateFailed
	// StateCancelled ends an operation aborted by its context. Terminal.
	StateCancelled
)

// Terminal reports whether no further events can advance the state.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSeeking:
		return "seeking"
	case StatePriming:
		return "priming"
	case StateCapturing:
		return "capturing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// action is the effect a transition asks the run loop to perform.
type action int

const (
	actNone action = iota
	// actSeek resolves metadata and positions the source at the clip start.
	actSeek
	// actCheckSeek verifies the landed position against the tolerance.
	actCheckSeek
	// actPrime routes audio, negotiates a format and starts the encoder.
	actPrime
	// actCompose runs one compositor tick for a delivered frame.
	actCompose
	// actFinish pauses the source and flushes the encoder.
	actFinish
	// actComplete assembles the artifact and releases resources.
	actComplete
	// actFail releases resources and reports the failure.
	actFail
	// actCancel releases resources and reports cancellation.
	actCancel
)

// transition is the pure state machine: given a state and an event it
// returns the next state and the effect to perform. Effects are executed
// by the run loop, never here, so transitions stay free of reentrancy.
func transition(s State, ev event) (State, action) {
	// Cancellation and errors preempt everything non-terminal.
	if !s.Terminal() {
		switch ev.kind {
		case evCancel:
			return StateCancelled, actCancel
		case evError:
			return StateFailed, actFail
		}
	}

	switch s {
	case StateIdle:
		if ev.kind == evStart {
			return StateSeeking, actSeek
		}
	case StateSeeking:
		if ev.kind == evSeekDone {
			return StateSeeking, actCheckSeek
		}
		if ev.kind == evSeekVerified {
			return StatePriming, actPrime
		}
	case StatePriming:
		if ev.kind == evPrimed {
			return StateCapturing, actNone
		}
	case StateCapturing:
		switch ev.kind {
		case evFrame:
			return StateCapturing, actCompose
		case evBoundary, evSourceEnded:
			return StateCapturing, actFinish
		case evFlushed:
			return StateCompleted, actComplete
		}
	}

	return s, actNone
}
