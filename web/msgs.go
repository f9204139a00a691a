package web

import (
	"encoding/json"

	"github.com/bcspragu/esgea/esgea"
)

// Message actions, sent as the "action" field of everything written to a
// websocket.
const (
	ActionObservation  = "OBSERVATION"
	ActionPlayerJoined = "PLAYER_JOINED"
)

// Observation is a single observation delivered to one player. Seq counts up
// from 1 for each player in a game, public observations included, so a
// client can tell when it missed something.
type Observation struct {
	Seq         uint64            `json:"seq"`
	Public      bool              `json:"public"`
	Observation esgea.Observation `json:"observation"`
	Description string            `json:"description"`
}

func (o *Observation) MarshalJSON() ([]byte, error) {
	type alias Observation
	return withAction(ActionObservation, (*alias)(o))
}

// PlayerJoined is sent to everyone in a game when a new player joins.
type PlayerJoined struct {
	PlayerID esgea.PlayerID `json:"player_id"`
	Players  int            `json:"players"`
}

func (pj *PlayerJoined) MarshalJSON() ([]byte, error) {
	type alias PlayerJoined
	return withAction(ActionPlayerJoined, (*alias)(pj))
}

// Envelope is the wire form of every message, used by clients to figure out
// what to decode Data into.
type Envelope struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

func withAction(action string, msg interface{}) ([]byte, error) {
	return json.Marshal(struct {
		Action string      `json:"action"`
		Data   interface{} `json:"data"`
	}{action, msg})
}
