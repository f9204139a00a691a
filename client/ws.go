package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bcspragu/esgea/esgea"
	"github.com/bcspragu/esgea/web"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type wsClient struct {
	conn  *websocket.Conn
	msgs  chan []byte
	done  chan struct{}
	hooks WSHooks
}

// WSHooks are called as messages arrive. Hooks are called one at a time, in
// the order the messages arrived.
type WSHooks struct {
	OnConnect      func()
	OnObservation  func(*web.Observation)
	OnPlayerJoined func(*web.PlayerJoined)
}

// ListenForUpdates streams the calling player's messages for a game to hooks.
// It blocks until the connection is closed, and always returns a non-nil
// error.
func (c *Client) ListenForUpdates(gID esgea.GameID, hooks WSHooks) error {
	scheme := "ws"
	if c.scheme == "https" {
		scheme = "wss"
	}

	addr := scheme + "://" + c.addr + gamePath(gID, "/ws")

	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 45 * time.Second,
		Jar:              c.http.Jar,
	}
	conn, _, err := dialer.Dial(addr, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer conn.Close()

	if hooks.OnConnect != nil {
		go hooks.OnConnect()
	}

	wsc := &wsClient{
		conn: conn,
		done: make(chan struct{}),
		// We buffer it in case messages come in while we're waiting on user input.
		// We don't want to process messages concurrently, because that seems
		// likely to cause tricky problems.
		msgs:  make(chan []byte, 100),
		hooks: hooks,
	}

	go wsc.handleMessages()

	return wsc.read()
}

func (ws *wsClient) read() error {
	defer close(ws.done)
	for {
		messageType, message, err := ws.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("ReadMessage: %w", err)
		}

		if messageType != websocket.TextMessage {
			continue
		}

		ws.msgs <- message
	}
}

func (ws *wsClient) handleMessages() {
	for {
		select {
		case <-ws.done:
			return
		case msg := <-ws.msgs:
			var env web.Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				log.Error().Err(err).Msg("failed to unmarshal message from server")
				continue
			}

			switch env.Action {
			case web.ActionObservation:
				ws.handleObservation(env.Data)
			case web.ActionPlayerJoined:
				ws.handlePlayerJoined(env.Data)
			default:
				log.Warn().Str("action", env.Action).Msg("unknown message action")
			}
		}
	}
}

func (ws *wsClient) handleObservation(dat []byte) {
	var obs web.Observation
	if err := json.Unmarshal(dat, &obs); err != nil {
		log.Error().Err(err).Msg("handleObservation")
		return
	}

	if ws.hooks.OnObservation == nil {
		return
	}
	ws.hooks.OnObservation(&obs)
}

func (ws *wsClient) handlePlayerJoined(dat []byte) {
	var pj web.PlayerJoined
	if err := json.Unmarshal(dat, &pj); err != nil {
		log.Error().Err(err).Msg("handlePlayerJoined")
		return
	}

	if ws.hooks.OnPlayerJoined == nil {
		return
	}
	ws.hooks.OnPlayerJoined(&pj)
}
