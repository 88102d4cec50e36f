package minigame

import (
	"fmt"
	"strings"
)

// State is the closed set of session phases.
type State string

const (
	StateLobby  State = "LOBBY"
	StateDraft  State = "DRAFT"
	StateGolden State = "GOLDEN"
	StateReveal State = "REVEAL"
)

func ParseState(raw string) (State, error) {
	switch State(strings.ToUpper(strings.TrimSpace(raw))) {
	case StateLobby:
		return StateLobby, nil
	case StateDraft:
		return StateDraft, nil
	case StateGolden:
		return StateGolden, nil
	case StateReveal:
		return StateReveal, nil
	default:
		return "", fmt.Errorf("unknown session state %q", raw)
	}
}

// Started reports whether the session has left the lobby.
func (s State) Started() bool {
	return s == StateDraft || s == StateGolden || s == StateReveal
}

// Operation is an action that drives the session state machine.
type Operation string

const (
	OpStart      Operation = "start"
	OpPick       Operation = "pick"
	OpLockGolden Operation = "lock_golden"
)

// transition declares the source state an operation requires, the state it
// keeps the session in, and the state it moves to once the phase completes.
type transition struct {
	from      State
	to        State
	completed State
}

var transitions = map[Operation]transition{
	OpStart:      {from: StateLobby, to: StateDraft, completed: StateDraft},
	OpPick:       {from: StateDraft, to: StateDraft, completed: StateGolden},
	OpLockGolden: {from: StateGolden, to: StateGolden, completed: StateReveal},
}

// Require fails with ErrWrongPhase unless op may run in state.
func Require(op Operation, state State) error {
	t, ok := transitions[op]
	if !ok {
		return fmt.Errorf("unknown operation %q", op)
	}
	if state != t.from {
		return fmt.Errorf("%w: %s requires %s, session is %s", ErrWrongPhase, op, t.from, state)
	}
	return nil
}

// Transition returns the state after op ran from state. phaseDone is true when the
// operation completed the phase (last pick, last golden lock).
func Transition(op Operation, state State, phaseDone bool) (State, error) {
	if err := Require(op, state); err != nil {
		return state, err
	}
	t := transitions[op]
	if phaseDone {
		return t.completed, nil
	}
	return t.to, nil
}
