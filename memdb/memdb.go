// Package memdb is an in-memory implementation of esgea.DB, used for tests
// and for servers that don't need games to outlive them.
package memdb

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bcspragu/esgea/esgea"
	"golang.org/x/exp/slices"
)

type idNamespace string

const gameID = idNamespace("game")

type DB struct {
	mu    sync.Mutex
	ids   map[idNamespace]int
	games map[esgea.GameID]*esgea.Game
}

func New() *DB {
	return &DB{
		ids:   make(map[idNamespace]int),
		games: make(map[esgea.GameID]*esgea.Game),
	}
}

func (db *DB) NewGame(g *esgea.Game) (esgea.GameID, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	gID := esgea.GameID(db.newID(gameID))

	gc := g.Clone()
	gc.ID = gID
	db.games[gID] = gc

	return gID, nil
}

func (db *DB) Game(gID esgea.GameID) (*esgea.Game, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	g, ok := db.games[gID]
	if !ok {
		return nil, fmt.Errorf("game %q: %w", gID, esgea.ErrGameNotFound)
	}

	return g.Clone(), nil
}

// Games returns every game ID, oldest first.
func (db *DB) Games() ([]esgea.GameID, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var gIDs []esgea.GameID
	for _, g := range db.games {
		gIDs = append(gIDs, g.ID)
	}
	sort.Slice(gIDs, func(i, j int) bool {
		gi, gj := db.games[gIDs[i]], db.games[gIDs[j]]
		if !gi.CreatedAt.Equal(gj.CreatedAt) {
			return gi.CreatedAt.Before(gj.CreatedAt)
		}
		return gi.ID < gj.ID
	})
	return gIDs, nil
}

func (db *DB) UpdateState(gID esgea.GameID, s *esgea.State, seqs []uint64) error {
	return db.updateGame(gID, func(g *esgea.Game) {
		g.State = s.Clone()
		g.Seqs = slices.Clone(seqs)
	})
}

func (db *DB) updateGame(gID esgea.GameID, update func(*esgea.Game)) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	g, ok := db.games[gID]
	if !ok {
		return fmt.Errorf("game %q: %w", gID, esgea.ErrGameNotFound)
	}
	update(g)
	return nil
}

func (db *DB) newID(ns idNamespace) string {
	idx := db.ids[ns]
	id := fmt.Sprintf("%s_%d", ns, idx)
	db.ids[ns]++
	return id
}
