// Package web serves the esgea HTTP API, and streams each player's
// observations to them over a websocket.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/bcspragu/esgea/board"
	"github.com/bcspragu/esgea/esgea"
	"github.com/bcspragu/esgea/game"
	"github.com/bcspragu/esgea/httperr"
	"github.com/bcspragu/esgea/hub"
	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

// MapFunc returns the board for a newly created game.
type MapFunc func() (*board.Board, error)

type Srv struct {
	sc     *securecookie.SecureCookie
	h      *hub.Hub
	mux    *mux.Router
	db     esgea.DB
	newMap MapFunc
	now    func() time.Time

	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[esgea.GameID]*session
}

// session is a game that's being played. Only one request at a time gets to
// touch a game.
type session struct {
	mu sync.Mutex
	g  *game.Game
	// seqs holds the last sequence number handed to each player, indexed by
	// PlayerID. It's saved alongside the game state.
	seqs []uint64
}

// New returns an initialized server.
func New(db esgea.DB, sc *securecookie.SecureCookie, newMap MapFunc) *Srv {
	s := &Srv{
		sc:       sc,
		h:        hub.New(),
		db:       db,
		newMap:   newMap,
		now:      time.Now,
		sessions: make(map[esgea.GameID]*session),
	}

	s.mux = s.initMux()

	return s
}

func (s *Srv) initMux() *mux.Router {
	m := mux.NewRouter()
	// New game.
	m.HandleFunc("/api/game", s.handleError(s.serveCreateGame)).Methods("POST")
	// List games.
	m.HandleFunc("/api/games", s.handleError(s.serveGames)).Methods("GET")
	// Join game.
	m.HandleFunc("/api/game/{id}/join", s.handleError(s.serveJoinGame)).Methods("POST")
	// The calling player, as they see themselves.
	m.HandleFunc("/api/game/{id}/me", s.handleError(s.requirePlayer(s.serveMe))).Methods("GET")
	// Start the calling player's turn.
	m.HandleFunc("/api/game/{id}/turn", s.handleError(s.requirePlayer(s.serveStartTurn))).Methods("POST")
	// Take an action.
	m.HandleFunc("/api/game/{id}/action", s.handleError(s.requirePlayer(s.serveAction))).Methods("POST")
	// Board queries.
	m.HandleFunc("/api/game/{id}/locations", s.handleError(s.serveLocations)).Methods("GET")
	m.HandleFunc("/api/game/{id}/locations/{loc}/neighbors", s.handleError(s.serveNeighbors)).Methods("GET")
	m.HandleFunc("/api/game/{id}/render", s.handleError(s.requirePlayer(s.serveRender))).Methods("GET")

	// WebSocket handler for a player's observations.
	m.HandleFunc("/api/game/{id}/ws", s.handleError(s.requirePlayer(s.serveData))).Methods("GET")

	return m
}

func (s *Srv) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Srv) handleError(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		code, userMsg := httperr.Extract(err)
		ev := log.Warn()
		if code >= http.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Err(err).Str("path", r.URL.Path).Int("code", code).Msg("request failed")
		http.Error(w, userMsg, code)
	}
}

// playerHandlerFunc is a handler for a request made by a player in a game
// that's been loaded.
type playerHandlerFunc func(w http.ResponseWriter, r *http.Request, gID esgea.GameID, sess *session, pID esgea.PlayerID) error

func (s *Srv) requirePlayer(h playerHandlerFunc) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		gID := esgea.GameID(mux.Vars(r)["id"])
		sess, err := s.session(gID)
		if err != nil {
			return err
		}

		pID, ok := s.loadPlayer(r, gID)
		if !ok {
			return httperr.
				Unauthorized("no player cookie for game %q", gID).
				WithMessage("join the game first")
		}
		return h(w, r, gID, sess, pID)
	}
}

func (s *Srv) serveCreateGame(w http.ResponseWriter, r *http.Request) error {
	b, err := s.newMap()
	if err != nil {
		return fmt.Errorf("failed to make map: %w", err)
	}

	g := game.New(b)
	gID, err := s.db.NewGame(&esgea.Game{
		CreatedAt: s.now(),
		State:     g.State(),
	})
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	log.Info().Str("game", string(gID)).Int("locations", b.Len()).Msg("created game")
	jsonResp(w, struct {
		ID string `json:"id"`
	}{string(gID)})
	return nil
}

// GameSummary is an entry in the list of games.
type GameSummary struct {
	ID        esgea.GameID `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Players   int          `json:"players"`
	Locations int          `json:"locations"`
}

func (s *Srv) serveGames(w http.ResponseWriter, r *http.Request) error {
	gIDs, err := s.db.Games()
	if err != nil {
		return fmt.Errorf("failed to list games: %w", err)
	}

	out := []GameSummary{}
	for _, gID := range gIDs {
		g, err := s.db.Game(gID)
		if err != nil {
			return fmt.Errorf("failed to load game %q: %w", gID, err)
		}
		sum := GameSummary{ID: g.ID, CreatedAt: g.CreatedAt}
		if g.State != nil {
			sum.Players = len(g.State.Players)
			sum.Locations = len(g.State.Locations)
		}
		out = append(out, sum)
	}

	jsonResp(w, out)
	return nil
}

func (s *Srv) serveJoinGame(w http.ResponseWriter, r *http.Request) error {
	gID := esgea.GameID(mux.Vars(r)["id"])
	sess, err := s.session(gID)
	if err != nil {
		return err
	}

	if _, ok := s.loadPlayer(r, gID); ok {
		return httperr.Conflict("already in game %q", gID).WithMessage("already in this game")
	}

	var req struct {
		Start *esgea.LocationID `json:"start"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return httperr.BadRequest("bad join request: %v", err).WithMessage("malformed request")
		}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	before := sess.g.State()
	start := esgea.LocationID(0)
	if req.Start != nil {
		start = *req.Start
	} else if n := sess.g.Board().Len(); n > 0 {
		// Spread players out over the map.
		start = esgea.LocationID(len(sess.g.Players()) % n)
	}

	pID, err := sess.g.SpawnPlayer(start)
	if err != nil {
		return gameErr(err)
	}
	if err := s.save(gID, sess, before, sess.seqs); err != nil {
		return err
	}

	encoded, err := s.sc.Encode(cookieName(gID), pID)
	if err != nil {
		return fmt.Errorf("failed to encode cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(gID),
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
	})

	players := len(sess.g.Players())
	if err := s.h.ToGame(gID, &PlayerJoined{PlayerID: pID, Players: players}); err != nil {
		log.Error().Err(err).Str("game", string(gID)).Msg("failed to announce player")
	}
	log.Info().Str("game", string(gID)).Stringer("player", pID).Stringer("start", start).Msg("player joined")

	jsonResp(w, struct {
		PlayerID esgea.PlayerID `json:"player_id"`
	}{pID})
	return nil
}

func (s *Srv) serveMe(w http.ResponseWriter, r *http.Request, gID esgea.GameID, sess *session, pID esgea.PlayerID) error {
	sess.mu.Lock()
	p, err := sess.g.Player(pID)
	sess.mu.Unlock()
	if err != nil {
		return gameErr(err)
	}
	jsonResp(w, p)
	return nil
}

// Result is the response to starting a turn or taking an action: everything
// the calling player observed as a result. The same observations are also
// sent over their websocket.
type Result struct {
	Observations []*Observation `json:"observations"`
}

func (s *Srv) serveStartTurn(w http.ResponseWriter, r *http.Request, gID esgea.GameID, sess *session, pID esgea.PlayerID) error {
	return s.resolve(w, gID, sess, pID, "start_turn", func() (*esgea.Event, error) {
		return sess.g.StartTurn(pID)
	})
}

func (s *Srv) serveAction(w http.ResponseWriter, r *http.Request, gID esgea.GameID, sess *session, pID esgea.PlayerID) error {
	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return httperr.BadRequest("bad action request: %v", err).WithMessage("malformed request")
	}
	a, err := esgea.ParseAction(req.Action)
	if err != nil {
		return gameErr(err)
	}

	return s.resolve(w, gID, sess, pID, a.String(), func() (*esgea.Event, error) {
		return sess.g.DoAction(pID, a)
	})
}

// resolve runs fn against the game, saves the result, and sends everyone
// what they observed.
func (s *Srv) resolve(w http.ResponseWriter, gID esgea.GameID, sess *session, pID esgea.PlayerID, what string, fn func() (*esgea.Event, error)) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	before := sess.g.State()
	ev, err := fn()
	if err != nil {
		log.Info().Err(err).Str("game", string(gID)).Stringer("player", pID).Str("action", what).Msg("rejected")
		return gameErr(err)
	}

	msgs, seqs := sequence(sess.seqs, ev, len(sess.g.Players()))
	if err := s.save(gID, sess, before, seqs); err != nil {
		return err
	}
	sess.seqs = seqs
	for _, to := range sortedRecipients(msgs) {
		for _, msg := range msgs[to] {
			if err := s.h.ToPlayer(gID, to, msg); err != nil {
				log.Error().Err(err).Str("game", string(gID)).Stringer("player", to).Msg("failed to deliver observation")
			}
		}
	}
	log.Debug().Str("game", string(gID)).Stringer("player", pID).Str("action", what).Int("public", len(ev.Public)).Msg("resolved")

	res := Result{Observations: msgs[pID]}
	if res.Observations == nil {
		res.Observations = []*Observation{}
	}
	jsonResp(w, res)
	return nil
}

// save stores the game's state along with seqs. If that fails, the game is put
// back the way it was before, so a change is never live without being stored.
// The caller must hold sess.mu.
func (s *Srv) save(gID esgea.GameID, sess *session, before *esgea.State, seqs []uint64) error {
	err := s.db.UpdateState(gID, sess.g.State(), seqs)
	if err == nil {
		return nil
	}

	if g, rerr := game.FromState(before); rerr == nil {
		sess.g = g
	} else {
		// Make the next request load whatever was stored last.
		log.Error().Err(rerr).Str("game", string(gID)).Msg("failed to roll back game")
		s.mu.Lock()
		delete(s.sessions, gID)
		s.mu.Unlock()
	}
	return fmt.Errorf("failed to save game %q: %w", gID, err)
}

// sequence turns an event into the messages for each player, and returns the
// sequence numbers that follow from last. Each player gets their private
// observations followed by the public ones, numbered with their own sequence.
// last isn't modified.
func sequence(last []uint64, ev *esgea.Event, players int) (map[esgea.PlayerID][]*Observation, []uint64) {
	seqs := make([]uint64, players)
	copy(seqs, last)

	out := make(map[esgea.PlayerID][]*Observation)
	for i := 0; i < players; i++ {
		pID := esgea.PlayerID(i)
		add := func(obs esgea.Observation, public bool) {
			seqs[pID]++
			out[pID] = append(out[pID], &Observation{
				Seq:         seqs[pID],
				Public:      public,
				Observation: obs,
				Description: obs.Describe(),
			})
		}
		for _, obs := range ev.For(pID) {
			add(obs, false)
		}
		for _, obs := range ev.Public {
			add(obs, true)
		}
	}
	return out, seqs
}

func sortedRecipients(msgs map[esgea.PlayerID][]*Observation) []esgea.PlayerID {
	out := make([]esgea.PlayerID, 0, len(msgs))
	for pID := range msgs {
		out = append(out, pID)
	}
	slices.Sort(out)
	return out
}

func (s *Srv) serveLocations(w http.ResponseWriter, r *http.Request) error {
	sess, err := s.session(esgea.GameID(mux.Vars(r)["id"]))
	if err != nil {
		return err
	}

	sess.mu.Lock()
	locs := sess.g.Locations()
	sess.mu.Unlock()

	jsonResp(w, locs)
	return nil
}

func (s *Srv) serveNeighbors(w http.ResponseWriter, r *http.Request) error {
	vars := mux.Vars(r)
	sess, err := s.session(esgea.GameID(vars["id"]))
	if err != nil {
		return err
	}

	loc, err := strconv.Atoi(vars["loc"])
	if err != nil {
		return httperr.BadRequest("bad location %q: %v", vars["loc"], err).WithMessage("bad location")
	}

	sess.mu.Lock()
	ns, err := sess.g.Neighbors(esgea.LocationID(loc))
	sess.mu.Unlock()
	if err != nil {
		return gameErr(err)
	}
	if ns == nil {
		ns = []esgea.LocationID{}
	}

	jsonResp(w, ns)
	return nil
}

func (s *Srv) serveRender(w http.ResponseWriter, r *http.Request, gID esgea.GameID, sess *session, pID esgea.PlayerID) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	w.Header().Set("Content-Type", "text/vnd.graphviz")
	return sess.g.Render(w, pID)
}

func (s *Srv) serveData(w http.ResponseWriter, r *http.Request, gID esgea.GameID, sess *session, pID esgea.PlayerID) error {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an error response.
		log.Warn().Err(err).Str("game", string(gID)).Msg("failed to upgrade websocket")
		return nil
	}
	s.h.Register(ws, gID, pID)
	return nil
}

// session returns the game being played, loading it from the database if
// nobody's touched it yet.
func (s *Srv) session(gID esgea.GameID) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[gID]; ok {
		return sess, nil
	}

	stored, err := s.db.Game(gID)
	if errors.Is(err, esgea.ErrGameNotFound) {
		return nil, httperr.NotFound("%w", err).WithMessage("game not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game %q: %w", gID, err)
	}

	g, err := game.FromState(stored.State)
	if err != nil {
		return nil, fmt.Errorf("failed to restore game %q: %w", gID, err)
	}

	sess := &session{g: g, seqs: stored.Seqs}
	s.sessions[gID] = sess
	return sess, nil
}

func cookieName(gID esgea.GameID) string {
	return "esgea-" + string(gID)
}

func (s *Srv) loadPlayer(r *http.Request, gID esgea.GameID) (esgea.PlayerID, bool) {
	c, err := r.Cookie(cookieName(gID))
	if err != nil {
		return 0, false
	}

	var pID esgea.PlayerID
	if err := s.sc.Decode(cookieName(gID), c.Value, &pID); err != nil {
		// If we can't parse it, assume it's an old cookie and treat them as not
		// in the game.
		return 0, false
	}
	return pID, true
}

// gameErr maps errors from the rules engine to HTTP errors.
func gameErr(err error) error {
	switch {
	case errors.Is(err, esgea.ErrNotEnoughIntel):
		return httperr.PaymentRequired("%w", err).WithMessage("not enough intel")
	case errors.Is(err, esgea.ErrWouldNoop):
		return httperr.Conflict("%w", err).WithMessage("that wouldn't do anything")
	case errors.Is(err, esgea.ErrNotYourTurn):
		return httperr.Forbidden("%w", err).WithMessage("it isn't your turn")
	case errors.Is(err, esgea.ErrInvalidHandle):
		return httperr.BadRequest("%w", err).WithMessage("no such player or location")
	case errors.Is(err, esgea.ErrUnknownAction):
		return httperr.BadRequest("%w", err).WithMessage(err.Error())
	case errors.Is(err, esgea.ErrGameNotFound):
		return httperr.NotFound("%w", err).WithMessage("game not found")
	}
	return err
}

// LoadKeys loads the cookie keys from the given files, generating them if
// the files don't exist.
func LoadKeys(hashKeyFile, blockKeyFile string) (*securecookie.SecureCookie, error) {
	hashKey, err := loadOrGenKey(hashKeyFile)
	if err != nil {
		return nil, err
	}

	blockKey, err := loadOrGenKey(blockKeyFile)
	if err != nil {
		return nil, err
	}

	return securecookie.New(hashKey, blockKey), nil
}

func loadOrGenKey(name string) ([]byte, error) {
	f, err := os.ReadFile(name)
	if err == nil {
		return f, nil
	}

	dat := securecookie.GenerateRandomKey(32)
	if dat == nil {
		return nil, errors.New("failed to generate key")
	}

	if err := os.WriteFile(name, dat, 0600); err != nil {
		return nil, fmt.Errorf("failed to write key file %q: %w", name, err)
	}
	return dat, nil
}

func jsonResp(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("jsonResp")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
