package reco

// AudioState is the local audio-feed lifecycle axis.
type AudioState int

const (
	AudioIdle AudioState = iota
	AudioReady
	AudioSending
	AudioStopping
)

func (s AudioState) String() string {
	switch s {
	case AudioReady:
		return "Ready"
	case AudioSending:
		return "Sending"
	case AudioStopping:
		return "Stopping"
	default:
		return "Idle"
	}
}

// ProtocolState is the remote turn lifecycle axis.
type ProtocolState int

const (
	ProtocolIdle ProtocolState = iota
	ProtocolWaitingForTurnStart
	ProtocolWaitingForPhrase
	ProtocolWaitingForIntent
	ProtocolWaitingForIntent2
	ProtocolWaitingForTurnEnd
	ProtocolError
	ProtocolTerminating
	ProtocolZombie
)

func (s ProtocolState) String() string {
	switch s {
	case ProtocolWaitingForTurnStart:
		return "WaitingForTurnStart"
	case ProtocolWaitingForPhrase:
		return "WaitingForPhrase"
	case ProtocolWaitingForIntent:
		return "WaitingForIntent"
	case ProtocolWaitingForIntent2:
		return "WaitingForIntent2"
	case ProtocolWaitingForTurnEnd:
		return "WaitingForTurnEnd"
	case ProtocolError:
		return "Error"
	case ProtocolTerminating:
		return "Terminating"
	case ProtocolZombie:
		return "Zombie"
	default:
		return "Idle"
	}
}

// terminal reports whether a protocol state forbids all transitions
// except the three explicit exceptions below.
func (s ProtocolState) terminal() bool {
	return s == ProtocolError || s == ProtocolZombie || s == ProtocolTerminating
}

// pair is a snapshot of both state axes.
type pair struct {
	audio    AudioState
	protocol ProtocolState
}

// allowedException reports whether (from, to) is one of the three
// explicit escapes from a terminal protocol state: a self-loop,
// Error->Terminating, or Terminating->Zombie.
func allowedException(from, to ProtocolState) bool {
	if from == to {
		return true
	}
	if from == ProtocolError && to == ProtocolTerminating {
		return true
	}
	if from == ProtocolTerminating && to == ProtocolZombie {
		return true
	}
	return false
}

// guardTransition is the pure validator: given the current pair and a
// requested (fromAudio, fromProto, toProto) move, it reports whether
// the move is legal. The target audio state plays no part in the rule,
// so it is not a parameter. It never mutates state; the
// caller installs the target pair itself while still holding the
// adapter's lock. This is the single place the guard rule from the
// data model's invariants is expressed.
func guardTransition(current pair, fromAudio AudioState, fromProto ProtocolState, toProto ProtocolState) bool {
	if current.audio != fromAudio || current.protocol != fromProto {
		return false
	}
	if fromProto.terminal() && !allowedException(fromProto, toProto) {
		return false
	}
	return true
}
