package esgea

import "golang.org/x/exp/slices"

// Event records the observations produced by one resolution cycle: a private
// queue per player, and a public queue everyone learns from. An Event is
// handed to the transport layer once the cycle is done and then thrown away,
// it's never trimmed.
type Event struct {
	Private map[PlayerID][]Observation `json:"private"`
	Public  []Observation              `json:"public"`
}

// NewEvent returns an empty Event.
func NewEvent() *Event {
	return &Event{Private: make(map[PlayerID][]Observation)}
}

// Note records an observation only pID gets to learn.
func (e *Event) Note(pID PlayerID, obs Observation) {
	if e.Private == nil {
		e.Private = make(map[PlayerID][]Observation)
	}
	e.Private[pID] = append(e.Private[pID], obs)
}

// Broadcast records an observation for everyone.
func (e *Event) Broadcast(obs Observation) {
	e.Public = append(e.Public, obs)
}

// For returns the private observations for pID, in the order they happened.
func (e *Event) For(pID PlayerID) []Observation {
	if e == nil {
		return nil
	}
	return e.Private[pID]
}

// Empty reports whether nothing was recorded.
func (e *Event) Empty() bool {
	if e == nil {
		return true
	}
	if len(e.Public) > 0 {
		return false
	}
	for _, obs := range e.Private {
		if len(obs) > 0 {
			return false
		}
	}
	return true
}

// Recipients returns the players with private observations, in ID order.
func (e *Event) Recipients() []PlayerID {
	if e == nil {
		return nil
	}
	var out []PlayerID
	for pID, obs := range e.Private {
		if len(obs) > 0 {
			out = append(out, pID)
		}
	}
	slices.Sort(out)
	return out
}
