// Package esgea holds the types shared by the rules engine, the transport
// layer, and the storage layer of a game of esgea.
package esgea

import (
	"errors"
	"strconv"
)

var (
	// ErrNotEnoughIntel means a purchase was attempted with an insufficient
	// balance. The balance is left unchanged.
	ErrNotEnoughIntel = errors.New("esgea: not enough intel")
	// ErrWouldNoop means the action would have had no effect, like enabling a
	// flag that's already on or moving across an edge that doesn't exist.
	ErrWouldNoop = errors.New("esgea: action would have no effect")
	// ErrNotYourTurn is part of the error taxonomy, but nothing in the rules
	// engine raises it. Turn order belongs to whoever drives the game.
	ErrNotYourTurn = errors.New("esgea: not your turn")
	// ErrInvalidHandle means a player or location handle was out of range.
	ErrInvalidHandle = errors.New("esgea: invalid handle")
	// ErrUnknownAction means an action couldn't be understood.
	ErrUnknownAction = errors.New("esgea: unknown action")

	ErrGameNotFound = errors.New("esgea: game not found")
)

// Intel is the single spendable resource.
type Intel uint32

// PlayerID is a player's position in the roster. It never changes, even after
// the player is eliminated.
type PlayerID int

func (p PlayerID) String() string {
	return strconv.Itoa(int(p))
}

// LocationID is a stable handle to a node on the board.
type LocationID int

func (l LocationID) String() string {
	return strconv.Itoa(int(l))
}

// GameID identifies a game instance to the transport and storage layers.
type GameID string

// Location is a node on the board.
type Location struct {
	// ID is the location's index on the board, assigned once.
	ID   LocationID `json:"id"`
	Name string     `json:"name"`
	// BaseIncome is paid every turn to whoever controls the location.
	BaseIncome Intel `json:"base_income"`
	// Control is the controlling player, if any.
	Control *PlayerID `json:"control,omitempty"`
	// PendingBonus is extra income for a player starting their turn here.
	PendingBonus *Intel `json:"pending_bonus,omitempty"`
	// Boost is reserved for a third action per turn. Nothing reads it yet.
	Boost bool `json:"boost"`
}

// Clone returns a deep copy of the location.
func (l Location) Clone() Location {
	lc := l
	if l.Control != nil {
		c := *l.Control
		lc.Control = &c
	}
	if l.PendingBonus != nil {
		b := *l.PendingBonus
		lc.PendingBonus = &b
	}
	return lc
}

// ControlledBy reports whether pID controls the location.
func (l Location) ControlledBy(pID PlayerID) bool {
	return l.Control != nil && *l.Control == pID
}

// Player is one participant in a game.
type Player struct {
	ID    PlayerID `json:"id"`
	Alive bool     `json:"alive"`
	Intel Intel    `json:"intel"`
	// HiddenSignals keeps the kind of intel purchases out of the notices sent
	// to everyone else.
	HiddenSignals bool `json:"hidden_signals"`
	// VisibleViolence means strikes elsewhere on the map are reported with
	// their location.
	VisibleViolence bool `json:"visible_violence"`
	// ActiveScan reveals anyone at a location this player moves onto.
	ActiveScan bool `json:"active_scan"`
	// Concealed players aren't observed by their enemies.
	Concealed bool `json:"concealed"`
	// Invisible overrides Concealed, and lasts until the player's next turn.
	Invisible bool       `json:"invisible"`
	Location  LocationID `json:"location"`
}

// EffectivelyConcealed reports whether the player is hidden from observers.
func (p *Player) EffectivelyConcealed() bool {
	return p.Invisible || p.Concealed
}

// Purchase deducts the cost of kind from the player's balance, or returns
// ErrNotEnoughIntel and leaves the balance alone.
func (p *Player) Purchase(kind IntelKind) error {
	cost := kind.Cost()
	if cost > p.Intel {
		return ErrNotEnoughIntel
	}
	p.Intel = p.Intel.Sub(cost)
	return nil
}

// Add returns i+n, clamped at the maximum balance.
func (i Intel) Add(n Intel) Intel {
	if s := i + n; s >= i {
		return s
	}
	return ^Intel(0)
}

// Sub returns i-n, clamped at zero.
func (i Intel) Sub(n Intel) Intel {
	if n > i {
		return 0
	}
	return i - n
}

// IntelKind is one of the effects a player can buy with intel.
type IntelKind string

const (
	NoIntelKind      = IntelKind("")
	IntelHideSignals = IntelKind("HIDE_SIGNALS")
	IntelReveal      = IntelKind("REVEAL")
	IntelInvisible   = IntelKind("INVISIBLE")
	IntelPrepare     = IntelKind("PREPARE")
)

// Cost is the fixed price of the effect.
func (k IntelKind) Cost() Intel {
	switch k {
	case IntelHideSignals, IntelInvisible:
		return 2
	case IntelReveal:
		return 1
	default:
		return 0
	}
}

func (k IntelKind) String() string {
	switch k {
	case IntelHideSignals:
		return "HideSignals"
	case IntelReveal:
		return "Reveal"
	case IntelInvisible:
		return "Invisible"
	case IntelPrepare:
		return "Prepare"
	}
	return ""
}

// Edge is an unordered pair of connected locations. A is always the endpoint
// that was passed first when the edge was created.
type Edge struct {
	A LocationID `json:"a"`
	B LocationID `json:"b"`
}

// State is a complete snapshot of a game, suitable for storing and restoring.
type State struct {
	Locations []Location `json:"locations"`
	Edges     []Edge     `json:"edges"`
	Players   []Player   `json:"players"`
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	sc := &State{
		Edges:   append([]Edge(nil), s.Edges...),
		Players: append([]Player(nil), s.Players...),
	}
	for _, l := range s.Locations {
		sc.Locations = append(sc.Locations, l.Clone())
	}
	return sc
}
