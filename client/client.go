// Package client talks to an esgea server over HTTP, and listens for a
// player's observations over a websocket.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strconv"

	"github.com/bcspragu/esgea/esgea"
	"github.com/bcspragu/esgea/web"
)

// Client is a single player's connection to a server. The server
// identifies players by cookie, so each player needs their own Client.
type Client struct {
	scheme string
	addr   string
	http   *http.Client
}

func New(scheme, addr string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %v", err)
	}

	return &Client{
		scheme: scheme,
		addr:   addr,
		http:   &http.Client{Jar: jar},
	}, nil
}

func (c *Client) url(path string) string {
	return c.scheme + "://" + c.addr + path
}

func gamePath(gID esgea.GameID, rest string) string {
	return "/api/game/" + string(gID) + rest
}

func (c *Client) CreateGame() (esgea.GameID, error) {
	req, err := http.NewRequest(http.MethodPost, c.url("/api/game"), nil)
	if err != nil {
		return "", fmt.Errorf("failed to form request: %w", err)
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	return esgea.GameID(resp.ID), nil
}

func (c *Client) Games() ([]web.GameSummary, error) {
	req, err := http.NewRequest(http.MethodGet, c.url("/api/games"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to form request: %w", err)
	}

	var resp []web.GameSummary
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return resp, nil
}

// JoinGame joins a game as a new player. If start is nil, the server picks
// where the player starts.
func (c *Client) JoinGame(gID esgea.GameID, start *esgea.LocationID) (esgea.PlayerID, error) {
	body := struct {
		Start *esgea.LocationID `json:"start,omitempty"`
	}{start}

	req, err := http.NewRequest(http.MethodPost, c.url(gamePath(gID, "/join")), toBody(body))
	if err != nil {
		return 0, fmt.Errorf("failed to form request: %w", err)
	}

	var resp struct {
		PlayerID esgea.PlayerID `json:"player_id"`
	}
	if err := c.do(req, &resp); err != nil {
		return 0, fmt.Errorf("failed to join game: %w", err)
	}
	return resp.PlayerID, nil
}

// Me returns the calling player.
func (c *Client) Me(gID esgea.GameID) (*esgea.Player, error) {
	req, err := http.NewRequest(http.MethodGet, c.url(gamePath(gID, "/me")), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to form request: %w", err)
	}

	var p esgea.Player
	if err := c.do(req, &p); err != nil {
		return nil, fmt.Errorf("failed to load player: %w", err)
	}
	return &p, nil
}

// StartTurn starts the calling player's turn, and returns what they observed.
func (c *Client) StartTurn(gID esgea.GameID) ([]*web.Observation, error) {
	req, err := http.NewRequest(http.MethodPost, c.url(gamePath(gID, "/turn")), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to form request: %w", err)
	}

	obs, err := c.doResult(req)
	if err != nil {
		return nil, fmt.Errorf("failed to start turn: %w", err)
	}
	return obs, nil
}

// Act takes an action for the calling player, and returns what they observed.
func (c *Client) Act(gID esgea.GameID, a esgea.Action) ([]*web.Observation, error) {
	body := struct {
		Action string `json:"action"`
	}{a.String()}

	req, err := http.NewRequest(http.MethodPost, c.url(gamePath(gID, "/action")), toBody(body))
	if err != nil {
		return nil, fmt.Errorf("failed to form request: %w", err)
	}

	obs, err := c.doResult(req)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", a, err)
	}
	return obs, nil
}

func (c *Client) Locations(gID esgea.GameID) ([]esgea.Location, error) {
	req, err := http.NewRequest(http.MethodGet, c.url(gamePath(gID, "/locations")), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to form request: %w", err)
	}

	var resp []esgea.Location
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}
	return resp, nil
}

func (c *Client) Neighbors(gID esgea.GameID, loc esgea.LocationID) ([]esgea.LocationID, error) {
	req, err := http.NewRequest(http.MethodGet, c.url(gamePath(gID, "/locations/"+strconv.Itoa(int(loc))+"/neighbors")), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to form request: %w", err)
	}

	var resp []esgea.LocationID
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("failed to load neighbors of %d: %w", loc, err)
	}
	return resp, nil
}

// Render returns the graphviz description of the board.
func (c *Client) Render(gID esgea.GameID) (string, error) {
	req, err := http.NewRequest(http.MethodGet, c.url(gamePath(gID, "/render")), nil)
	if err != nil {
		return "", fmt.Errorf("failed to form request: %w", err)
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return "", handleError(httpResp)
	}

	dat, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read render: %w", err)
	}
	return string(dat), nil
}

func (c *Client) doResult(req *http.Request) ([]*web.Observation, error) {
	var resp struct {
		Observations []web.Envelope `json:"observations"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}

	var out []*web.Observation
	for _, env := range resp.Observations {
		var obs web.Observation
		if err := json.Unmarshal(env.Data, &obs); err != nil {
			return nil, fmt.Errorf("failed to decode observation: %w", err)
		}
		out = append(out, &obs)
	}
	return out, nil
}

func (c *Client) do(req *http.Request, resp interface{}) error {
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	httpResp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return handleError(httpResp)
	}

	if resp != nil {
		if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
			return fmt.Errorf("failed to decode response body: %w", err)
		}
	}

	return nil
}

// HTTPError is returned when the server responds with anything but a 200.
type HTTPError struct {
	StatusCode int
	Body       string
	err        error
}

func (h *HTTPError) Error() string {
	if h.err != nil {
		return fmt.Sprintf("[%d] failed to handle error: %v", h.StatusCode, h.err)
	}
	return fmt.Sprintf("[%d] error from server: %s", h.StatusCode, h.Body)
}

func handleError(resp *http.Response) error {
	dat, err := io.ReadAll(resp.Body)
	if err != nil {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			err:        fmt.Errorf("failed to read error response body: %w", err),
		}
	}

	return &HTTPError{
		StatusCode: resp.StatusCode,
		Body:       string(bytes.TrimSpace(dat)),
	}
}

func toBody(req interface{}) io.Reader {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		return &errReader{err: err}
	}
	return &buf
}

type errReader struct {
	err error
}

func (e *errReader) Read(_ []byte) (int, error) {
	return 0, e.err
}
