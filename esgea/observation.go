package esgea

import "fmt"

// ObservationKind tags the fact an Observation describes.
type ObservationKind string

const (
	ObservedDeath         = ObservationKind("DEATH")
	ObservedStrike        = ObservationKind("STRIKE")
	ObservedWait          = ObservationKind("WAIT")
	ObservedCapture       = ObservationKind("CAPTURE")
	ObservedIntel         = ObservationKind("INTEL")
	ObservedReveal        = ObservationKind("REVEAL")
	ObservedRevealFailure = ObservationKind("REVEAL_FAILURE")
)

// Observation is one fact a recipient is allowed to learn about a change in
// the game. The same fact can be observed differently by different players,
// so there's no canonical form, each recipient gets the payload built for
// them.
type Observation struct {
	Kind ObservationKind `json:"kind"`
	// By is the acting player. Nil when the actor isn't known.
	By *PlayerID `json:"by,omitempty"`
	// Who is the player the observation is about: the eliminated player for
	// deaths, and the found (or not found) player for reveals.
	Who *PlayerID `json:"who,omitempty"`
	// At is where it happened, when the recipient gets to know.
	At *LocationID `json:"at,omitempty"`
	// Intel is what was purchased, for intel notices where it isn't withheld.
	Intel *IntelKind `json:"intel,omitempty"`
}

// Death says by eliminated of.
func Death(by, of PlayerID) Observation {
	return Observation{Kind: ObservedDeath, By: &by, Who: &of}
}

// StrikeAt says by struck, and where if at is non-nil.
func StrikeAt(by PlayerID, at *LocationID) Observation {
	return Observation{Kind: ObservedStrike, By: &by, At: cloneLoc(at)}
}

// Waited says by passed their action.
func Waited(by PlayerID) Observation {
	return Observation{Kind: ObservedWait, By: &by}
}

// Captured says by took control of at.
func Captured(by PlayerID, at LocationID) Observation {
	return Observation{Kind: ObservedCapture, By: &by, At: &at}
}

// SpentIntel says by spent intel, on kind if it's non-nil.
func SpentIntel(by PlayerID, kind *IntelKind) Observation {
	obs := Observation{Kind: ObservedIntel, By: &by}
	if kind != nil {
		k := *kind
		obs.Intel = &k
	}
	return obs
}

// Revealed says who was found at at.
func Revealed(who PlayerID, at LocationID) Observation {
	return Observation{Kind: ObservedReveal, Who: &who, At: &at}
}

// RevealFailed says an attempt to find who failed. It never carries a
// location.
func RevealFailed(who PlayerID) Observation {
	return Observation{Kind: ObservedRevealFailure, Who: &who}
}

func cloneLoc(l *LocationID) *LocationID {
	if l == nil {
		return nil
	}
	lc := *l
	return &lc
}

// Describe returns a one line, human readable description of the observation.
func (o Observation) Describe() string {
	switch o.Kind {
	case ObservedDeath:
		return fmt.Sprintf("Player %s eliminated player %s", pidStr(o.By), pidStr(o.Who))
	case ObservedStrike:
		switch {
		case o.By != nil && o.At != nil:
			return fmt.Sprintf("Player %s struck location %s", o.By, o.At)
		case o.By != nil:
			return fmt.Sprintf("Player %s launched a covert strike", o.By)
		default:
			return "A mysterious strike occurred"
		}
	case ObservedWait:
		if o.By == nil {
			return "An unknown player waited"
		}
		return fmt.Sprintf("Player %s waited", o.By)
	case ObservedCapture:
		return fmt.Sprintf("Player %s captured location %s", pidStr(o.By), locStr(o.At))
	case ObservedIntel:
		switch {
		case o.By != nil && o.Intel != nil:
			return fmt.Sprintf("Player %s spent intel on %s", o.By, o.Intel)
		case o.By != nil:
			return fmt.Sprintf("Player %s spent intel", o.By)
		default:
			return "Intel activity detected"
		}
	case ObservedReveal:
		return fmt.Sprintf("Player %s was revealed at %s", pidStr(o.Who), locStr(o.At))
	case ObservedRevealFailure:
		return fmt.Sprintf("Attempted reveal on player %s failed", pidStr(o.Who))
	}
	return fmt.Sprintf("Unknown observation %q", o.Kind)
}

func pidStr(p *PlayerID) string {
	if p == nil {
		return "?"
	}
	return p.String()
}

func locStr(l *LocationID) string {
	if l == nil {
		return "?"
	}
	return l.String()
}
