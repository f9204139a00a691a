// Command mapgen prints a map as graphviz text, e.g.
//
//	mapgen --map=random --map_size=12 | dot -Tsvg > map.svg
package main

import (
	"os"

	"github.com/bcspragu/esgea/boardgen"
	"github.com/bcspragu/esgea/cryptorand"
	"github.com/namsral/flag"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

func main() {
	var (
		mapName = flag.String("map", "random", "'demo', 'random', or the path to a map file")
		mapSize = flag.Int("map_size", 8, "Number of locations on random maps")
		seed    = flag.Uint64("seed", 0, "Seed for random maps, 0 to pick unpredictably")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var src rand.Source = cryptorand.NewSource()
	if *seed != 0 {
		src = rand.NewSource(*seed)
	}

	b, err := boardgen.Load(*mapName, *mapSize, rand.New(src))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load map")
	}
	if err := b.Render(os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("failed to render map")
	}
}
