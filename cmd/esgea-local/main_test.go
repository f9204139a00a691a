package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bcspragu/esgea/esgea"
	termio "github.com/bcspragu/esgea/io"
	"github.com/stretchr/testify/require"
)

func TestNextAlive(t *testing.T) {
	players := []esgea.Player{
		{ID: 0, Alive: true},
		{ID: 1, Alive: false},
		{ID: 2, Alive: true},
	}

	next, ok := nextAlive(players, 0)
	require.True(t, ok)
	require.Equal(t, esgea.PlayerID(2), next)

	next, ok = nextAlive(players, 2)
	require.True(t, ok)
	require.Equal(t, esgea.PlayerID(0), next)

	players[2].Alive = false
	_, ok = nextAlive(players, 0)
	require.False(t, ok)
}

func TestPlayDemo(t *testing.T) {
	g, err := newGame("demo", 0, 0, 0)
	require.NoError(t, err)

	// Player 0 walks over to Delta and strikes, which ends the game.
	in := strings.Join([]string{
		"capture",
		"fly",
		"move:3",
		"strike",
		"end",
	}, "\n")
	var out bytes.Buffer
	l := &termio.Log{}
	require.NoError(t, play(g, l, &termio.Prompt{In: strings.NewReader(in), Out: &out}))

	want := []string{
		"Player 0 captured location 0",
		"[P0] Player 0 eliminated player 1",
		"[P1] Player 0 eliminated player 1",
		"[P1] Player 0 struck location 3",
	}
	require.Equal(t, want, l.Lines())
	require.Contains(t, out.String(), "Player 0 is the last one standing.")
}

func TestNewGameRandom(t *testing.T) {
	g, err := newGame("random", 5, 3, 7)
	require.NoError(t, err)

	players := g.Players()
	require.Len(t, players, 2)
	require.Equal(t, esgea.LocationID(0), players[0].Location)
	require.Equal(t, esgea.LocationID(4), players[1].Location)
	require.Equal(t, esgea.Intel(7), players[1].Intel)
}
