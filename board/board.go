// Package board implements the map of an esgea game: an undirected graph of
// locations, stored as an arena indexed by esgea.LocationID.
package board

import (
	"fmt"

	"github.com/bcspragu/esgea/esgea"
	"golang.org/x/exp/slices"
)

// Board is an undirected graph of locations. The zero value is an empty
// board, ready to use.
type Board struct {
	locations []esgea.Location
	// adj[i] lists the neighbors of location i, in the order the edges were
	// added.
	adj [][]esgea.LocationID
	// edges lists every edge once, in the order they were added.
	edges []esgea.Edge
}

// New returns an empty board.
func New() *Board {
	return &Board{}
}

// FromState rebuilds a board from stored locations and edges.
func FromState(locs []esgea.Location, edges []esgea.Edge) (*Board, error) {
	b := New()
	for i, l := range locs {
		if l.ID != esgea.LocationID(i) {
			return nil, fmt.Errorf("location %q at index %d has ID %d: %w", l.Name, i, l.ID, esgea.ErrInvalidHandle)
		}
		b.locations = append(b.locations, l.Clone())
		b.adj = append(b.adj, nil)
	}
	for _, e := range edges {
		if err := b.Connect(e.A, e.B); err != nil {
			return nil, fmt.Errorf("edge %d--%d: %w", e.A, e.B, err)
		}
	}
	return b, nil
}

// AddLocation creates an uncontrolled location with no pending bonus, and
// returns its handle.
func (b *Board) AddLocation(name string, baseIncome esgea.Intel) esgea.LocationID {
	id := esgea.LocationID(len(b.locations))
	b.locations = append(b.locations, esgea.Location{
		ID:         id,
		Name:       name,
		BaseIncome: baseIncome,
	})
	b.adj = append(b.adj, nil)
	return id
}

// Connect adds an edge between a and c. Connecting two locations that are
// already connected, in either order, does nothing, as does connecting a
// location to itself.
func (b *Board) Connect(a, c esgea.LocationID) error {
	if err := b.check(a); err != nil {
		return err
	}
	if err := b.check(c); err != nil {
		return err
	}
	if a == c || b.Adjacent(a, c) {
		return nil
	}
	b.adj[a] = append(b.adj[a], c)
	b.adj[c] = append(b.adj[c], a)
	b.edges = append(b.edges, esgea.Edge{A: a, B: c})
	return nil
}

// Adjacent reports whether there's an edge between a and c. Invalid handles
// are never adjacent to anything.
func (b *Board) Adjacent(a, c esgea.LocationID) bool {
	if b.check(a) != nil || b.check(c) != nil {
		return false
	}
	return slices.Contains(b.adj[a], c)
}

// Neighbors returns the locations connected to id.
func (b *Board) Neighbors(id esgea.LocationID) ([]esgea.LocationID, error) {
	if err := b.check(id); err != nil {
		return nil, err
	}
	return slices.Clone(b.adj[id]), nil
}

// Location returns a copy of the location with the given handle.
func (b *Board) Location(id esgea.LocationID) (esgea.Location, error) {
	if err := b.check(id); err != nil {
		return esgea.Location{}, err
	}
	return b.locations[id].Clone(), nil
}

// Locations returns a snapshot of every location on the board.
func (b *Board) Locations() []esgea.Location {
	out := make([]esgea.Location, len(b.locations))
	for i, l := range b.locations {
		out[i] = l.Clone()
	}
	return out
}

// Edges returns every edge on the board exactly once.
func (b *Board) Edges() []esgea.Edge {
	return slices.Clone(b.edges)
}

// Len is the number of locations on the board.
func (b *Board) Len() int {
	return len(b.locations)
}

// Update applies fn to the location with the given handle. fn can't change
// the location's ID.
func (b *Board) Update(id esgea.LocationID, fn func(*esgea.Location)) error {
	if err := b.check(id); err != nil {
		return err
	}
	fn(&b.locations[id])
	b.locations[id].ID = id
	return nil
}

// Each calls fn with every location, in handle order, without copying.
// fn must not hold on to the pointer.
func (b *Board) Each(fn func(*esgea.Location)) {
	for i := range b.locations {
		fn(&b.locations[i])
	}
}

func (b *Board) check(id esgea.LocationID) error {
	if id < 0 || int(id) >= len(b.locations) {
		return fmt.Errorf("location %d: %w", id, esgea.ErrInvalidHandle)
	}
	return nil
}
