// Package hub fans messages out to the websocket connections of the players
// in a game.
package hub

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/bcspragu/esgea/esgea"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Hub maintains the set of active connections and delivers messages to them.
type Hub struct {
	// Registered connections.
	connections map[esgea.GameID][]*connection

	// Messages to send to everyone in a game.
	broadcast chan *broadcastMsg

	// Messages to send to a single player in a game.
	player chan *playerMsg

	// Register requests from the connections.
	register chan *connection

	// Unregister requests from connections.
	unregister chan *connection

	// count requests, used to see how many connections a game has.
	count chan *countReq

	nextID atomic.Uint64
}

// New creates a new Hub and starts it in a background Go routine.
func New() *Hub {
	h := &Hub{
		broadcast:   make(chan *broadcastMsg),
		player:      make(chan *playerMsg),
		register:    make(chan *connection),
		unregister:  make(chan *connection),
		count:       make(chan *countReq),
		connections: make(map[esgea.GameID][]*connection),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			conns := h.connections[c.gameID]
			h.connections[c.gameID] = append(conns, c)
			log.Debug().Str("game", string(c.gameID)).Stringer("player", c.playerID).Msg("connection registered")
		case c := <-h.unregister:
			h.deleteConn(c)
		case m := <-h.broadcast:
			// Iterate over a copy, deleteConn modifies the slice.
			for _, c := range append([]*connection(nil), h.connections[m.gameID]...) {
				h.deliver(c, m.msg)
			}
		case m := <-h.player:
			for _, c := range append([]*connection(nil), h.connections[m.gameID]...) {
				if c.playerID == m.playerID {
					h.deliver(c, m.msg)
				}
			}
		case req := <-h.count:
			req.resp <- len(h.connections[req.gameID])
		}
	}
}

func (h *Hub) deliver(c *connection, msg []byte) {
	select {
	case c.send <- msg:
	default:
		log.Warn().Str("game", string(c.gameID)).Stringer("player", c.playerID).Msg("send buffer full, dropping connection")
		h.deleteConn(c)
	}
}

func (h *Hub) deleteConn(c *connection) {
	rconns := h.connections[c.gameID]
	for i, rconn := range rconns {
		if rconn.id == c.id {
			close(c.send)
			// Remove the connection.
			copy(rconns[i:], rconns[i+1:])
			rconns[len(rconns)-1] = nil
			h.connections[c.gameID] = rconns[:len(rconns)-1]
			if len(h.connections[c.gameID]) == 0 {
				delete(h.connections, c.gameID)
			}
			log.Debug().Str("game", string(c.gameID)).Stringer("player", c.playerID).Msg("connection removed")
			return
		}
	}
}

type broadcastMsg struct {
	gameID esgea.GameID
	msg    []byte
}

// ToGame sends a message to everyone connected to a game.
func (h *Hub) ToGame(gID esgea.GameID, msg interface{}) error {
	buf, err := encode(msg)
	if err != nil {
		return err
	}

	h.broadcast <- &broadcastMsg{
		gameID: gID,
		msg:    buf,
	}

	return nil
}

type playerMsg struct {
	gameID   esgea.GameID
	playerID esgea.PlayerID
	msg      []byte
}

// ToPlayer sends a message to every connection a single player has open in a
// game.
func (h *Hub) ToPlayer(gID esgea.GameID, pID esgea.PlayerID, msg interface{}) error {
	buf, err := encode(msg)
	if err != nil {
		return err
	}

	h.player <- &playerMsg{
		gameID:   gID,
		playerID: pID,
		msg:      buf,
	}

	return nil
}

func encode(msg interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(msg); err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return buf.Bytes(), nil
}

type countReq struct {
	gameID esgea.GameID
	resp   chan int
}

// Connections returns the number of open connections to a game.
func (h *Hub) Connections(gID esgea.GameID) int {
	req := &countReq{gameID: gID, resp: make(chan int, 1)}
	h.count <- req
	return <-req.resp
}

// Register associates a connection with the hub and a given player in a game.
func (h *Hub) Register(ws *websocket.Conn, gID esgea.GameID, pID esgea.PlayerID) {
	conn := &connection{
		id:       h.newID(gID),
		h:        h,
		gameID:   gID,
		playerID: pID,
		send:     make(chan []byte, 256),
		ws:       ws,
	}
	h.register <- conn
	go conn.writePump()
	go conn.readPump()
}

func (h *Hub) newID(gID esgea.GameID) string {
	return fmt.Sprintf("%s-%d", gID, h.nextID.Add(1))
}
