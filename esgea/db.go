package esgea

import (
	"time"

	"golang.org/x/exp/slices"
)

// Game is a stored game instance.
type Game struct {
	ID        GameID    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	State     *State    `json:"state"`
	// Seqs is the last sequence number sent to each player, indexed by
	// PlayerID. Players who haven't been sent anything may be missing off the
	// end.
	Seqs []uint64 `json:"seqs,omitempty"`
}

// Clone returns a deep copy of the game.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	gc := *g
	gc.State = g.State.Clone()
	gc.Seqs = slices.Clone(g.Seqs)
	return &gc
}

// DB persists game instances. Implementations hand out copies, so callers are
// free to modify what they get back.
type DB interface {
	NewGame(*Game) (GameID, error)
	Game(GameID) (*Game, error)
	Games() ([]GameID, error)
	// UpdateState replaces a game's state and sequence numbers together.
	UpdateState(gID GameID, state *State, seqs []uint64) error
}
