package sqldb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/bcspragu/esgea/esgea"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "esgea.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testState() *esgea.State {
	ctrl := esgea.PlayerID(0)
	bonus := esgea.Intel(3)
	return &esgea.State{
		Locations: []esgea.Location{
			{ID: 0, Name: "Alpha", BaseIncome: 2, Control: &ctrl, PendingBonus: &bonus},
			{ID: 1, Name: "Bravo", BaseIncome: 1},
		},
		Edges: []esgea.Edge{{A: 0, B: 1}},
		Players: []esgea.Player{
			{ID: 0, Alive: true, Intel: 4, HiddenSignals: true},
			{ID: 1, Alive: false, Location: 1},
		},
	}
}

func TestNewGame(t *testing.T) {
	db := setup(t)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	gID, err := db.NewGame(&esgea.Game{CreatedAt: created, State: testState()})
	require.NoError(t, err)
	require.NotEmpty(t, gID)

	got, err := db.Game(gID)
	require.NoError(t, err)

	want := &esgea.Game{ID: gID, CreatedAt: created, State: testState()}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected game (-want +got)\n%s", diff)
	}
}

func TestGames(t *testing.T) {
	db := setup(t)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	var want []esgea.GameID
	for i := 0; i < 3; i++ {
		gID, err := db.NewGame(&esgea.Game{CreatedAt: created.Add(time.Duration(i) * time.Hour), State: &esgea.State{}})
		require.NoError(t, err)
		want = append(want, gID)
	}

	got, err := db.Games()
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected games (-want +got)\n%s", diff)
	}
}

func TestUpdateState(t *testing.T) {
	db := setup(t)
	gID, err := db.NewGame(&esgea.Game{CreatedAt: time.Now(), State: &esgea.State{}})
	require.NoError(t, err)

	require.NoError(t, db.UpdateState(gID, testState(), []uint64{4, 2}))

	got, err := db.Game(gID)
	require.NoError(t, err)
	if diff := cmp.Diff(testState(), got.State); diff != "" {
		t.Errorf("unexpected state (-want +got)\n%s", diff)
	}
	if diff := cmp.Diff([]uint64{4, 2}, got.Seqs); diff != "" {
		t.Errorf("unexpected seqs (-want +got)\n%s", diff)
	}
}

func TestClose(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "esgea.db"))
	require.NoError(t, err)

	gID, err := db.NewGame(&esgea.Game{CreatedAt: time.Now(), State: &esgea.State{}})
	require.NoError(t, err)

	require.NoError(t, db.Close())
	// Closing again is fine.
	require.NoError(t, db.Close())

	_, err = db.Game(gID)
	require.ErrorIs(t, err, ErrClosed)
	err = db.UpdateState(gID, testState(), nil)
	require.ErrorIs(t, err, ErrClosed)
}

func TestMissingGame(t *testing.T) {
	db := setup(t)

	_, err := db.Game("nope")
	require.ErrorIs(t, err, esgea.ErrGameNotFound)

	err = db.UpdateState("nope", testState(), nil)
	require.ErrorIs(t, err, esgea.ErrGameNotFound)
}
