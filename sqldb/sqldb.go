// Package sqldb implements esgea.DB on top of a SQLite database. Game states
// are stored as JSON snapshots.
package sqldb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bcspragu/esgea/esgea"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	state TEXT NOT NULL,
	seqs TEXT NOT NULL DEFAULT '[]'
);`

// ErrClosed is returned by calls made after the DB has been closed.
var ErrClosed = errors.New("sqldb: database is closed")

// DB implements the esgea database API, backed by a SQLite database.
// NOTE: Since the database doesn't support concurrent writers, we don't
// actually hold the *sql.DB in this struct, we force all callers to get a
// handle via channels.
type DB struct {
	dbChan   chan func(*sql.DB)
	doneChan chan struct{}
	closed   chan error

	closeOnce sync.Once
	closeErr  error
}

// New creates a new *DB that is stored on disk at the given filename, creating
// the schema if it doesn't exist yet.
func New(fn string) (*DB, error) {
	sdb, err := sql.Open("sqlite3", fn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := sdb.Exec(schema); err != nil {
		sdb.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	db := &DB{
		dbChan:   make(chan func(*sql.DB)),
		doneChan: make(chan struct{}),
		closed:   make(chan error, 1),
	}
	go db.run(sdb)
	log.Info().Str("path", fn).Msg("opened sqlite database")
	return db, nil
}

// run handles all database calls, and ensures that only one thing is happening
// against the database at a time.
func (s *DB) run(sdb *sql.DB) {
	for {
		select {
		case dbFn := <-s.dbChan:
			dbFn(sdb)
		case <-s.doneChan:
			s.closed <- sdb.Close()
			return
		}
	}
}

// Close shuts down the database. The DB can't be used afterwards, calls on it
// return ErrClosed. Closing more than once returns the first result.
func (s *DB) Close() error {
	s.closeOnce.Do(func() {
		close(s.doneChan)
		s.closeErr = <-s.closed
	})
	return s.closeErr
}

func (s *DB) do(fn func(*sql.DB) error) error {
	errC := make(chan error, 1)
	select {
	case s.dbChan <- func(sdb *sql.DB) {
		errC <- fn(sdb)
	}:
	case <-s.doneChan:
		return ErrClosed
	}
	return <-errC
}

func (s *DB) NewGame(g *esgea.Game) (esgea.GameID, error) {
	gID := esgea.GameID(uuid.NewString())
	dat, seqs, err := encode(g.State, g.Seqs)
	if err != nil {
		return "", err
	}

	err = s.do(func(sdb *sql.DB) error {
		_, err := sdb.Exec(`INSERT INTO games (id, created_at, state, seqs) VALUES (?, ?, ?, ?)`, string(gID), g.CreatedAt.UnixNano(), dat, seqs)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to insert game: %w", err)
	}
	return gID, nil
}

func (s *DB) Game(gID esgea.GameID) (*esgea.Game, error) {
	var (
		createdAt int64
		dat       string
		seqDat    string
	)
	err := s.do(func(sdb *sql.DB) error {
		return sdb.QueryRow(`SELECT created_at, state, seqs FROM games WHERE id = ?`, string(gID)).Scan(&createdAt, &dat, &seqDat)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("game %q: %w", gID, esgea.ErrGameNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game %q: %w", gID, err)
	}

	var state *esgea.State
	if err := json.Unmarshal([]byte(dat), &state); err != nil {
		return nil, fmt.Errorf("failed to decode state of game %q: %w", gID, err)
	}
	var seqs []uint64
	if err := json.Unmarshal([]byte(seqDat), &seqs); err != nil {
		return nil, fmt.Errorf("failed to decode sequence numbers of game %q: %w", gID, err)
	}
	if len(seqs) == 0 {
		seqs = nil
	}

	return &esgea.Game{
		ID:        gID,
		CreatedAt: time.Unix(0, createdAt).UTC(),
		State:     state,
		Seqs:      seqs,
	}, nil
}

// Games returns every game ID, oldest first.
func (s *DB) Games() ([]esgea.GameID, error) {
	var gIDs []esgea.GameID
	err := s.do(func(sdb *sql.DB) error {
		rows, err := sdb.Query(`SELECT id FROM games ORDER BY created_at, id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return err
			}
			gIDs = append(gIDs, esgea.GameID(id))
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return gIDs, nil
}

func (s *DB) UpdateState(gID esgea.GameID, state *esgea.State, seqs []uint64) error {
	dat, seqDat, err := encode(state, seqs)
	if err != nil {
		return err
	}

	var n int64
	err = s.do(func(sdb *sql.DB) error {
		res, err := sdb.Exec(`UPDATE games SET state = ?, seqs = ? WHERE id = ?`, dat, seqDat, string(gID))
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update game %q: %w", gID, err)
	}
	if n == 0 {
		return fmt.Errorf("game %q: %w", gID, esgea.ErrGameNotFound)
	}
	return nil
}

func encode(state *esgea.State, seqs []uint64) (string, string, error) {
	dat, err := json.Marshal(state)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode state: %w", err)
	}
	if seqs == nil {
		seqs = []uint64{}
	}
	seqDat, err := json.Marshal(seqs)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode sequence numbers: %w", err)
	}
	return string(dat), string(seqDat), nil
}
