// Command esgea-local is a hot-seat game of esgea on a single terminal.
// Players take turns at the keyboard, entering as many actions as they like
// before typing 'end'. Everything anyone observes is printed to the shared
// log, so it's more of a rules sandbox than a fair game.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/bcspragu/esgea/boardgen"
	"github.com/bcspragu/esgea/cryptorand"
	"github.com/bcspragu/esgea/esgea"
	"github.com/bcspragu/esgea/game"
	termio "github.com/bcspragu/esgea/io"
	"github.com/namsral/flag"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

func main() {
	var (
		mapName = flag.String("map", "demo", "'demo', 'random', or the path to a map file")
		mapSize = flag.Int("map_size", 8, "Number of locations on random maps")
		seed    = flag.Uint64("seed", 0, "Seed for random maps, 0 to pick unpredictably")
		intel   = flag.Uint("intel", boardgen.DemoIntel, "Intel each player starts with on non-demo maps")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	g, err := newGame(*mapName, *mapSize, *seed, esgea.Intel(*intel))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up game")
	}

	l := &termio.Log{Out: os.Stdout}
	p := &termio.Prompt{In: os.Stdin, Out: os.Stdout}
	if err := play(g, l, p); err != nil {
		log.Fatal().Err(err).Msg("game ended unexpectedly")
	}
}

// newGame sets up a two player game. The demo map comes with its players,
// other maps get one player at each end of the location list.
func newGame(mapName string, mapSize int, seed uint64, intel esgea.Intel) (*game.Game, error) {
	if mapName == "demo" {
		return boardgen.Demo()
	}

	var src rand.Source = cryptorand.NewSource()
	if seed != 0 {
		src = rand.NewSource(seed)
	}
	b, err := boardgen.Load(mapName, mapSize, rand.New(src))
	if err != nil {
		return nil, err
	}

	g := game.New(b)
	for _, start := range []esgea.LocationID{0, esgea.LocationID(b.Len() - 1)} {
		pID, err := g.SpawnPlayer(start)
		if err != nil {
			return nil, err
		}
		if err := g.UpdatePlayer(pID, func(p *esgea.Player) { p.Intel = intel }); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func play(g *game.Game, l *termio.Log, p *termio.Prompt) error {
	active := esgea.PlayerID(0)
	for {
		ev, err := g.StartTurn(active)
		if err != nil {
			return fmt.Errorf("failed to start turn for player %d: %w", active, err)
		}
		l.Record(ev)

		if err := takeTurn(g, l, p, active); err != nil {
			if errors.Is(err, termio.ErrQuit) {
				return nil
			}
			return err
		}

		next, ok := nextAlive(g.Players(), active)
		if !ok {
			fmt.Fprintf(p.Out, "Player %d is the last one standing.\n", active)
			return nil
		}
		active = next
	}
}

func takeTurn(g *game.Game, l *termio.Log, p *termio.Prompt, active esgea.PlayerID) error {
	for {
		neighbors := make(map[esgea.LocationID][]esgea.LocationID)
		for _, loc := range g.Locations() {
			neighbors[loc.ID], _ = g.Neighbors(loc.ID)
		}
		termio.PrintLocations(p.Out, g.Locations(), neighbors)
		me, err := g.Player(active)
		if err != nil {
			return err
		}
		termio.PrintPlayers(p.Out, []esgea.Player{me})

		a, err := p.Action(active)
		switch {
		case errors.Is(err, termio.ErrEndTurn):
			return nil
		case errors.Is(err, termio.ErrQuit):
			return err
		case err != nil:
			fmt.Fprintf(p.Out, "Couldn't understand that: %v\n", err)
			continue
		}

		ev, err := g.DoAction(active, a)
		if err != nil {
			fmt.Fprintf(p.Out, "Can't do that: %v\n", err)
			continue
		}
		l.Record(ev)
	}
}

// nextAlive returns the living player after cur, wrapping around. It
// returns false if nobody else is alive.
func nextAlive(players []esgea.Player, cur esgea.PlayerID) (esgea.PlayerID, bool) {
	for i := 1; i < len(players); i++ {
		next := players[(int(cur)+i)%len(players)]
		if next.Alive {
			return next.ID, true
		}
	}
	return 0, false
}
