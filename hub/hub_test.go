package hub

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bcspragu/esgea/esgea"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type testMsg struct {
	Text string `json:"text"`
}

func setup(t *testing.T) (*Hub, func(esgea.PlayerID) *websocket.Conn) {
	t.Helper()
	h := New()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pID, err := strconv.Atoi(r.URL.Query().Get("player"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		h.Register(ws, "game", esgea.PlayerID(pID))
	}))
	t.Cleanup(srv.Close)

	dial := func(pID esgea.PlayerID) *websocket.Conn {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?player=" + pID.String()
		ws, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { ws.Close() })
		return ws
	}
	return h, dial
}

func read(t *testing.T, ws *websocket.Conn) testMsg {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg testMsg
	require.NoError(t, ws.ReadJSON(&msg))
	return msg
}

func waitForConns(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return h.Connections("game") == n
	}, 5*time.Second, 10*time.Millisecond)
}

func TestToPlayer(t *testing.T) {
	h, dial := setup(t)
	p0 := dial(0)
	p1 := dial(1)
	waitForConns(t, h, 2)

	require.NoError(t, h.ToPlayer("game", 1, testMsg{Text: "for one"}))
	require.NoError(t, h.ToPlayer("game", 0, testMsg{Text: "for zero"}))

	// Each player only sees their own message, so the first thing they read
	// is addressed to them.
	require.Equal(t, "for zero", read(t, p0).Text)
	require.Equal(t, "for one", read(t, p1).Text)
}

func TestToGame(t *testing.T) {
	h, dial := setup(t)
	p0 := dial(0)
	p1 := dial(1)
	waitForConns(t, h, 2)

	require.NoError(t, h.ToGame("game", testMsg{Text: "everyone"}))

	require.Equal(t, "everyone", read(t, p0).Text)
	require.Equal(t, "everyone", read(t, p1).Text)
}

func TestUnregisterOnClose(t *testing.T) {
	h, dial := setup(t)
	ws := dial(0)
	waitForConns(t, h, 1)

	require.NoError(t, ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	ws.Close()
	waitForConns(t, h, 0)

	// Nobody's listening, but sending still works.
	require.NoError(t, h.ToPlayer("game", 0, testMsg{Text: "anyone?"}))
}

func TestEncodeError(t *testing.T) {
	h := New()
	require.Error(t, h.ToPlayer("game", 0, make(chan int)))
}
