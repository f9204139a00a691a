package game

import (
	"fmt"
	"io"

	"github.com/bcspragu/esgea/board"
	"github.com/bcspragu/esgea/esgea"
)

// Game is a single game of esgea: the board, the roster of players, and the
// rules that change them.
//
// A Game is not safe for concurrent use. Whoever drives it (usually the web
// package) has to make sure only one call is in flight at a time.
type Game struct {
	board   *board.Board
	players []esgea.Player
}

// New returns a game on the given board, with nobody playing yet.
func New(b *board.Board) *Game {
	if b == nil {
		b = board.New()
	}
	return &Game{board: b}
}

// FromState restores a game from a snapshot taken with State.
func FromState(s *esgea.State) (*Game, error) {
	if s == nil {
		return nil, fmt.Errorf("no state given")
	}
	b, err := board.FromState(s.Locations, s.Edges)
	if err != nil {
		return nil, fmt.Errorf("invalid board: %w", err)
	}

	g := &Game{board: b}
	for i, p := range s.Players {
		if p.ID != esgea.PlayerID(i) {
			return nil, fmt.Errorf("player at index %d has ID %d: %w", i, p.ID, esgea.ErrInvalidHandle)
		}
		if _, err := b.Location(p.Location); err != nil {
			return nil, fmt.Errorf("player %d: %w", p.ID, err)
		}
		g.players = append(g.players, p)
	}
	return g, nil
}

// State returns a snapshot of the whole game.
func (g *Game) State() *esgea.State {
	return &esgea.State{
		Locations: g.board.Locations(),
		Edges:     g.board.Edges(),
		Players:   g.Players(),
	}
}

// Board returns the game's board. Changes made to it are seen by the game.
func (g *Game) Board() *board.Board {
	return g.board
}

// Locations returns a snapshot of every location.
func (g *Game) Locations() []esgea.Location {
	return g.board.Locations()
}

// Neighbors returns the locations connected to id.
func (g *Game) Neighbors(id esgea.LocationID) ([]esgea.LocationID, error) {
	return g.board.Neighbors(id)
}

// Render writes a graphviz description of the board.
// TODO: Use perspective to hide what the player isn't entitled to see, once
// players are drawn on the map.
func (g *Game) Render(w io.Writer, perspective esgea.PlayerID) error {
	return g.board.Render(w)
}

// SpawnPlayer adds a living player at start, with no intel and no flags set.
// Their ID is the number of players before them.
func (g *Game) SpawnPlayer(start esgea.LocationID) (esgea.PlayerID, error) {
	if _, err := g.board.Location(start); err != nil {
		return 0, fmt.Errorf("can't spawn player: %w", err)
	}
	id := esgea.PlayerID(len(g.players))
	g.players = append(g.players, esgea.Player{
		ID:       id,
		Alive:    true,
		Location: start,
	})
	return id, nil
}

// Players returns a snapshot of the roster, indexed by player ID. Eliminated
// players are still in it.
func (g *Game) Players() []esgea.Player {
	return append([]esgea.Player(nil), g.players...)
}

// Player returns a copy of the player with the given ID.
func (g *Game) Player(pID esgea.PlayerID) (esgea.Player, error) {
	p, err := g.player(pID)
	if err != nil {
		return esgea.Player{}, err
	}
	return *p, nil
}

// UpdatePlayer applies fn to a player. It's meant for setting up scenarios
// and for game masters, the rules don't need it. fn can't change the player's
// ID, or move them off the board.
func (g *Game) UpdatePlayer(pID esgea.PlayerID, fn func(*esgea.Player)) error {
	p, err := g.player(pID)
	if err != nil {
		return err
	}
	up := *p
	fn(&up)
	up.ID = pID
	if _, err := g.board.Location(up.Location); err != nil {
		return fmt.Errorf("can't move player %d: %w", pID, err)
	}
	*p = up
	return nil
}

// UpdateLocation applies fn to a location, see board.Board.Update.
func (g *Game) UpdateLocation(id esgea.LocationID, fn func(*esgea.Location)) error {
	return g.board.Update(id, fn)
}

func (g *Game) player(pID esgea.PlayerID) (*esgea.Player, error) {
	if pID < 0 || int(pID) >= len(g.players) {
		return nil, fmt.Errorf("player %d: %w", pID, esgea.ErrInvalidHandle)
	}
	return &g.players[pID], nil
}
