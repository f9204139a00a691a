// Package boardgen builds maps for esgea games: the small demo map, random
// connected maps, and maps read from text files.
package boardgen

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bcspragu/esgea/board"
	"github.com/bcspragu/esgea/esgea"
	"github.com/bcspragu/esgea/game"
	"golang.org/x/exp/rand"
)

// DemoIntel is what both demo players start with.
const DemoIntel = 4

var names = []string{
	"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot", "Golf", "Hotel",
	"India", "Juliett", "Kilo", "Lima", "Mike", "November", "Oscar", "Papa",
	"Quebec", "Romeo", "Sierra", "Tango", "Uniform", "Victor", "Whiskey",
	"Xray", "Yankee", "Zulu",
}

// DemoBoard is a four location cycle, Alpha - Bravo - Charlie - Delta - Alpha.
func DemoBoard() *board.Board {
	b := board.New()
	alpha := b.AddLocation("Alpha", 2)
	bravo := b.AddLocation("Bravo", 1)
	charlie := b.AddLocation("Charlie", 1)
	delta := b.AddLocation("Delta", 3)

	// None of these can fail, the handles all came from this board.
	_ = b.Connect(alpha, bravo)
	_ = b.Connect(bravo, charlie)
	_ = b.Connect(charlie, delta)
	_ = b.Connect(delta, alpha)
	return b
}

// Demo returns a two player game on the demo board. Player 0 starts at (and
// controls) Alpha, player 1 starts at (and controls) Delta.
func Demo() (*game.Game, error) {
	g := game.New(DemoBoard())
	for _, start := range []esgea.LocationID{0, 3} {
		pID, err := g.SpawnPlayer(start)
		if err != nil {
			return nil, err
		}
		if err := g.UpdatePlayer(pID, func(p *esgea.Player) { p.Intel = DemoIntel }); err != nil {
			return nil, err
		}
		err = g.UpdateLocation(start, func(l *esgea.Location) {
			c := pID
			l.Control = &c
		})
		if err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Random returns a connected board with n locations. Every location after
// the first is attached to a random earlier one, then about n/2 extra edges
// are sprinkled on top. Base incomes are between 1 and 3.
func Random(n int, r *rand.Rand) *board.Board {
	b := board.New()
	for i := 0; i < n; i++ {
		b.AddLocation(name(i), esgea.Intel(1+r.Intn(3)))
	}

	for _, i := range r.Perm(n) {
		if i == 0 {
			continue
		}
		_ = b.Connect(esgea.LocationID(i), esgea.LocationID(r.Intn(i)))
	}

	if n < 3 {
		return b
	}
	for i := 0; i < n/2; i++ {
		// Self edges and duplicates are ignored by the board.
		_ = b.Connect(esgea.LocationID(r.Intn(n)), esgea.LocationID(r.Intn(n)))
	}
	return b
}

func name(i int) string {
	if i < len(names) {
		return names[i]
	}
	return names[i%len(names)] + strconv.Itoa(i/len(names)+1)
}

// Parse reads a map in the text format:
//
//	# comments and blank lines are ignored
//	location Alpha 2
//	location Bravo 1
//	edge Alpha Bravo
//
// Locations have to be declared before they're used in an edge, and names
// have to be unique.
func Parse(rd io.Reader) (*board.Board, error) {
	b := board.New()
	byName := make(map[string]esgea.LocationID)

	sc := bufio.NewScanner(rd)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "location":
			if len(fields) != 3 {
				return nil, fmt.Errorf("line %d: want 'location <name> <income>', got %q", lineNo, line)
			}
			if _, ok := byName[fields[1]]; ok {
				return nil, fmt.Errorf("line %d: location %q declared twice", lineNo, fields[1])
			}
			income, err := strconv.ParseUint(fields[2], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad income %q: %w", lineNo, fields[2], err)
			}
			byName[fields[1]] = b.AddLocation(fields[1], esgea.Intel(income))
		case "edge":
			if len(fields) != 3 {
				return nil, fmt.Errorf("line %d: want 'edge <from> <to>', got %q", lineNo, line)
			}
			a, ok := byName[fields[1]]
			if !ok {
				return nil, fmt.Errorf("line %d: unknown location %q", lineNo, fields[1])
			}
			c, ok := byName[fields[2]]
			if !ok {
				return nil, fmt.Errorf("line %d: unknown location %q", lineNo, fields[2])
			}
			if err := b.Connect(a, c); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		default:
			return nil, fmt.Errorf("line %d: unknown directive %q", lineNo, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read map: %w", err)
	}
	return b, nil
}

// Load returns the map described by name: "demo" for the demo board,
// "random" for a random board with size locations, or otherwise the path of
// a map file to Parse.
func Load(name string, size int, r *rand.Rand) (*board.Board, error) {
	switch name {
	case "demo":
		return DemoBoard(), nil
	case "random":
		if size < 1 {
			return nil, fmt.Errorf("random maps need at least one location, got %d", size)
		}
		return Random(size, r), nil
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open map file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}
