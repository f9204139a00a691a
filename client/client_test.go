package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bcspragu/esgea/board"
	"github.com/bcspragu/esgea/boardgen"
	"github.com/bcspragu/esgea/esgea"
	"github.com/bcspragu/esgea/memdb"
	"github.com/bcspragu/esgea/web"
	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/securecookie"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) string {
	t.Helper()
	sc := securecookie.New(securecookie.GenerateRandomKey(32), securecookie.GenerateRandomKey(32))
	srv := httptest.NewServer(web.New(memdb.New(), sc, func() (*board.Board, error) {
		return boardgen.DemoBoard(), nil
	}))
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://")
}

func newClient(t *testing.T, addr string) *Client {
	t.Helper()
	c, err := New("http", addr)
	require.NoError(t, err)
	return c
}

func TestGameFlow(t *testing.T) {
	addr := setup(t)
	c0, c1 := newClient(t, addr), newClient(t, addr)

	gID, err := c0.CreateGame()
	require.NoError(t, err)

	p0, err := c0.JoinGame(gID, nil)
	require.NoError(t, err)
	start := esgea.LocationID(3)
	p1, err := c1.JoinGame(gID, &start)
	require.NoError(t, err)
	require.Equal(t, esgea.PlayerID(0), p0)
	require.Equal(t, esgea.PlayerID(1), p1)

	games, err := c1.Games()
	require.NoError(t, err)
	require.Len(t, games, 1)
	require.Equal(t, 2, games[0].Players)

	_, err = c0.StartTurn(gID)
	require.NoError(t, err)

	obs, err := c0.Act(gID, esgea.Capture())
	require.NoError(t, err)
	want := []*web.Observation{{Seq: 1, Public: true, Observation: esgea.Captured(0, 0), Description: "Player 0 captured location 0"}}
	if diff := cmp.Diff(want, obs); diff != "" {
		t.Errorf("unexpected observations (-want +got)\n%s", diff)
	}

	me, err := c1.Me(gID)
	require.NoError(t, err)
	require.Equal(t, start, me.Location)

	_, err = c0.Act(gID, esgea.HideSignals())
	var herr *HTTPError
	require.True(t, errors.As(err, &herr), "got error %v, want an *HTTPError", err)
	require.Equal(t, http.StatusPaymentRequired, herr.StatusCode)

	locs, err := c0.Locations(gID)
	require.NoError(t, err)
	require.Len(t, locs, 4)
	require.True(t, locs[0].ControlledBy(p0))

	ns, err := c0.Neighbors(gID, 3)
	require.NoError(t, err)
	require.Equal(t, []esgea.LocationID{2, 0}, ns)

	dot, err := c0.Render(gID)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dot, "graph {"))
}

func TestListenForUpdates(t *testing.T) {
	addr := setup(t)
	c0, c1 := newClient(t, addr), newClient(t, addr)

	gID, err := c0.CreateGame()
	require.NoError(t, err)
	_, err = c0.JoinGame(gID, nil)
	require.NoError(t, err)
	_, err = c1.JoinGame(gID, nil)
	require.NoError(t, err)

	connected := make(chan struct{})
	got := make(chan *web.Observation, 100)
	go c1.ListenForUpdates(gID, WSHooks{
		OnConnect:     func() { close(connected) },
		OnObservation: func(obs *web.Observation) { got <- obs },
	})

	select {
	case <-connected:
	case <-time.After(5 * time.Second):
		t.Fatal("never connected")
	}

	// The server registers the connection shortly after the handshake, so
	// keep waiting until something makes it through.
	var obs *web.Observation
	require.Eventually(t, func() bool {
		if _, err := c0.Act(gID, esgea.Wait()); err != nil {
			t.Errorf("Act: %v", err)
			return true
		}
		select {
		case obs = <-got:
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	require.NotNil(t, obs)
	require.True(t, obs.Public)
	if diff := cmp.Diff(esgea.Waited(0), obs.Observation); diff != "" {
		t.Errorf("unexpected observation (-want +got)\n%s", diff)
	}
}

func TestHandleMessagesSkipsBadMessages(t *testing.T) {
	got := make(chan *web.Observation, 1)
	ws := &wsClient{
		msgs: make(chan []byte, 2),
		done: make(chan struct{}),
		hooks: WSHooks{
			OnObservation: func(obs *web.Observation) { got <- obs },
		},
	}
	defer close(ws.done)

	// Observations marshal as a whole envelope.
	msg, err := json.Marshal(&web.Observation{Seq: 7, Public: true, Observation: esgea.Waited(1)})
	require.NoError(t, err)

	ws.msgs <- []byte("not json")
	ws.msgs <- msg
	go ws.handleMessages()

	select {
	case obs := <-got:
		require.Equal(t, uint64(7), obs.Seq)
	case <-time.After(5 * time.Second):
		t.Fatal("stopped handling messages after a bad one")
	}
}
