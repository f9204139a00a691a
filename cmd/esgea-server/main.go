package main

import (
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/bcspragu/esgea/board"
	"github.com/bcspragu/esgea/boardgen"
	"github.com/bcspragu/esgea/cryptorand"
	"github.com/bcspragu/esgea/esgea"
	"github.com/bcspragu/esgea/memdb"
	"github.com/bcspragu/esgea/sqldb"
	"github.com/bcspragu/esgea/web"
	"github.com/namsral/flag"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

func main() {
	var (
		addr         = flag.String("addr", ":8080", "HTTP service address")
		dbType       = flag.String("db_type", "sqlite", "Where to store games, 'sqlite' or 'memory'")
		dbPath       = flag.String("db_path", "esgea.db", "Path to the SQLite DB file")
		hashKeyFile  = flag.String("hash_key_file", "hashKey", "File holding the cookie hash key, generated if it doesn't exist")
		blockKeyFile = flag.String("block_key_file", "blockKey", "File holding the cookie block key, generated if it doesn't exist")
		logLevel     = flag.String("log_level", "info", "Minimum level to log at")
		mapName      = flag.String("map", "demo", "Map for new games: 'demo', 'random', or the path to a map file")
		mapSize      = flag.Int("map_size", 8, "Number of locations on random maps")
		seed         = flag.Uint64("seed", 0, "Seed for random maps, 0 to pick unpredictably")
	)

	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	lvl, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		log.Fatal().Err(err).Str("log_level", *logLevel).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(lvl)

	var (
		db      esgea.DB
		closeDB = func() error { return nil }
	)
	switch *dbType {
	case "sqlite":
		sdb, err := sqldb.New(*dbPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize datastore")
		}
		db, closeDB = sdb, sdb.Close
	case "memory":
		db = memdb.New()
	default:
		log.Fatal().Str("db_type", *dbType).Msg("unknown db type")
	}

	sc, err := web.LoadKeys(*hashKeyFile, *blockKeyFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load cookie keys")
	}

	var src rand.Source = cryptorand.NewSource()
	if *seed != 0 {
		src = rand.NewSource(*seed)
	}
	r := rand.New(src)

	// Make sure the map is loadable before we start taking requests.
	if _, err := boardgen.Load(*mapName, *mapSize, r); err != nil {
		log.Fatal().Err(err).Str("map", *mapName).Msg("failed to load map")
	}

	var mu sync.Mutex
	newMap := func() (*board.Board, error) {
		mu.Lock()
		defer mu.Unlock()
		return boardgen.Load(*mapName, *mapSize, r)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c
		if err := closeDB(); err != nil {
			log.Error().Err(err).Msg("failed to close datastore")
		}
		os.Exit(1)
	}()

	log.Info().Str("addr", *addr).Str("db_type", *dbType).Str("map", *mapName).Msg("server is running")
	if err := http.ListenAndServe(*addr, web.New(db, sc, newMap)); err != nil {
		log.Fatal().Err(err).Msg("ListenAndServe")
	}
}
