package esgea

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionKind is the type of action a player takes on their turn.
type ActionKind string

const (
	NoAction          = ActionKind("")
	ActionStrike      = ActionKind("STRIKE")
	ActionWait        = ActionKind("WAIT")
	ActionCapture     = ActionKind("CAPTURE")
	ActionHideSignals = ActionKind("HIDE_SIGNALS")
	ActionInvisible   = ActionKind("INVISIBLE")
	ActionPrepare     = ActionKind("PREPARE")
	ActionMove        = ActionKind("MOVE")
	ActionReveal      = ActionKind("REVEAL")
)

// Action is a player's action for a turn.
type Action struct {
	Kind ActionKind `json:"kind"`
	// Only populated for Kind == ActionMove
	To *LocationID `json:"to,omitempty"`
	// Only populated for Kind == ActionReveal. When nil, the reveal covers
	// everyone.
	Target *PlayerID `json:"target,omitempty"`
}

func Strike() Action      { return Action{Kind: ActionStrike} }
func Wait() Action        { return Action{Kind: ActionWait} }
func Capture() Action     { return Action{Kind: ActionCapture} }
func HideSignals() Action { return Action{Kind: ActionHideSignals} }
func Invisible() Action   { return Action{Kind: ActionInvisible} }
func Prepare() Action     { return Action{Kind: ActionPrepare} }

// Move is an action to travel along an edge to the given location.
func Move(to LocationID) Action {
	return Action{Kind: ActionMove, To: &to}
}

// RevealPlayer is an action to find a specific player.
func RevealPlayer(target PlayerID) Action {
	return Action{Kind: ActionReveal, Target: &target}
}

// RevealAll is an action to find everyone at the acting player's location.
func RevealAll() Action {
	return Action{Kind: ActionReveal}
}

var textActions = map[string]ActionKind{
	"strike":       ActionStrike,
	"wait":         ActionWait,
	"capture":      ActionCapture,
	"hide_signals": ActionHideSignals,
	"invisible":    ActionInvisible,
	"prepare":      ActionPrepare,
	"move":         ActionMove,
	"reveal":       ActionReveal,
}

// ParseAction parses the text form of an action, e.g. "strike", "move:3",
// "reveal" or "reveal:1".
func ParseAction(s string) (Action, error) {
	name, arg, hasArg := strings.Cut(strings.ToLower(strings.TrimSpace(s)), ":")
	kind, ok := textActions[name]
	if !ok {
		return Action{}, fmt.Errorf("%w %q", ErrUnknownAction, s)
	}

	switch kind {
	case ActionMove:
		if !hasArg {
			return Action{}, fmt.Errorf("%w: move needs a destination, like 'move:2'", ErrUnknownAction)
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return Action{}, fmt.Errorf("%w: bad location %q", ErrUnknownAction, arg)
		}
		return Move(LocationID(n)), nil
	case ActionReveal:
		if !hasArg {
			return RevealAll(), nil
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return Action{}, fmt.Errorf("%w: bad player %q", ErrUnknownAction, arg)
		}
		return RevealPlayer(PlayerID(n)), nil
	}

	if hasArg {
		return Action{}, fmt.Errorf("%w: %q takes no argument", ErrUnknownAction, name)
	}
	return Action{Kind: kind}, nil
}

// String returns the text form accepted by ParseAction.
func (a Action) String() string {
	s := strings.ToLower(string(a.Kind))
	switch a.Kind {
	case ActionMove:
		if a.To != nil {
			s += ":" + a.To.String()
		}
	case ActionReveal:
		if a.Target != nil {
			s += ":" + a.Target.String()
		}
	}
	return s
}

// Validate checks that the action carries the fields its kind needs.
func (a Action) Validate() error {
	switch a.Kind {
	case ActionStrike, ActionWait, ActionCapture, ActionHideSignals, ActionInvisible, ActionPrepare, ActionReveal:
		return nil
	case ActionMove:
		if a.To == nil {
			return fmt.Errorf("%w: move without a destination", ErrUnknownAction)
		}
		return nil
	default:
		return fmt.Errorf("%w %q", ErrUnknownAction, a.Kind)
	}
}
