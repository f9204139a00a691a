package game

import (
	"fmt"

	"github.com/bcspragu/esgea/esgea"
)

// DoAction applies a player's action and returns the observations it
// produced. When an error is returned, the game hasn't changed and there's
// nothing for anyone to observe.
//
// Turn order isn't checked here, see esgea.ErrNotYourTurn.
func (g *Game) DoAction(pID esgea.PlayerID, a esgea.Action) (*esgea.Event, error) {
	if _, err := g.player(pID); err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	ev := esgea.NewEvent()
	var err error
	switch a.Kind {
	case esgea.ActionStrike:
		g.strike(ev, pID)
	case esgea.ActionWait:
		g.wait(ev, pID)
	case esgea.ActionCapture:
		g.capture(ev, pID)
	case esgea.ActionHideSignals:
		err = g.hideSignals(ev, pID)
	case esgea.ActionInvisible:
		err = g.invisible(ev, pID)
	case esgea.ActionPrepare:
		err = g.prepare(ev, pID)
	case esgea.ActionMove:
		err = g.move(ev, pID, *a.To)
	case esgea.ActionReveal:
		err = g.reveal(ev, pID, a.Target)
	default:
		err = fmt.Errorf("%w %q", esgea.ErrUnknownAction, a.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("%s by player %d: %w", a, pID, err)
	}
	return ev, nil
}

// strike eliminates everyone sharing the striker's location. Every other
// player hears about the strike, but only learns where it happened if they
// have visible violence, or if they were on the receiving end.
func (g *Game) strike(ev *esgea.Event, pID esgea.PlayerID) {
	at := g.players[pID].Location
	for i := range g.players {
		pl := &g.players[i]
		if pl.ID == pID {
			continue
		}

		died := false
		if pl.Location == at {
			pl.Alive = false
			died = true
			ev.Note(pID, esgea.Death(pID, pl.ID))
			ev.Note(pl.ID, esgea.Death(pID, pl.ID))
		}

		if pl.VisibleViolence || died {
			ev.Note(pl.ID, esgea.StrikeAt(pID, &at))
		} else {
			ev.Note(pl.ID, esgea.StrikeAt(pID, nil))
		}
	}
}

func (g *Game) wait(ev *esgea.Event, pID esgea.PlayerID) {
	ev.Broadcast(esgea.Waited(pID))
}

// capture takes control of the player's current location.
func (g *Game) capture(ev *esgea.Event, pID esgea.PlayerID) {
	at := g.players[pID].Location
	// The player's location is always on the board.
	_ = g.board.Update(at, func(l *esgea.Location) {
		c := pID
		l.Control = &c
	})
	ev.Broadcast(esgea.Captured(pID, at))
}

func (g *Game) hideSignals(ev *esgea.Event, pID esgea.PlayerID) error {
	p := &g.players[pID]
	if p.HiddenSignals {
		return esgea.ErrWouldNoop
	}
	if err := p.Purchase(esgea.IntelHideSignals); err != nil {
		return err
	}
	// The purchase itself is announced before the signals go dark.
	g.announceIntel(ev, pID, esgea.IntelHideSignals)
	p.HiddenSignals = true
	return nil
}

func (g *Game) invisible(ev *esgea.Event, pID esgea.PlayerID) error {
	p := &g.players[pID]
	if p.Invisible {
		return esgea.ErrWouldNoop
	}
	if err := p.Purchase(esgea.IntelInvisible); err != nil {
		return err
	}
	g.announceIntel(ev, pID, esgea.IntelInvisible)
	p.Invisible = true
	return nil
}

func (g *Game) prepare(ev *esgea.Event, pID esgea.PlayerID) error {
	if err := g.players[pID].Purchase(esgea.IntelPrepare); err != nil {
		return err
	}
	g.announceIntel(ev, pID, esgea.IntelPrepare)
	return nil
}

// move relocates the player along an edge. A player with an active scan
// finds anyone at the destination who isn't invisible.
func (g *Game) move(ev *esgea.Event, pID esgea.PlayerID, to esgea.LocationID) error {
	if _, err := g.board.Location(to); err != nil {
		return err
	}
	p := &g.players[pID]
	if !g.board.Adjacent(p.Location, to) {
		return fmt.Errorf("no edge from %d to %d: %w", p.Location, to, esgea.ErrWouldNoop)
	}
	p.Location = to

	if !p.ActiveScan {
		return nil
	}
	for _, pl := range g.players {
		if pl.ID != pID && pl.Location == to && !pl.Invisible {
			ev.Note(pID, esgea.Revealed(pl.ID, to))
		}
	}
	return nil
}

// reveal charges for a reveal no matter how it turns out, then tells the
// player what they found.
func (g *Game) reveal(ev *esgea.Event, pID esgea.PlayerID, target *esgea.PlayerID) error {
	if target != nil {
		if _, err := g.player(*target); err != nil {
			return err
		}
	}
	if err := g.players[pID].Purchase(esgea.IntelReveal); err != nil {
		return err
	}
	for _, n := range Reveals(g.players, pID, target) {
		ev.Note(n.To, n.Observation)
	}
	g.announceIntel(ev, pID, esgea.IntelReveal)
	return nil
}

// announceIntel tells everyone that pID spent intel, and on what unless
// their signals are hidden.
func (g *Game) announceIntel(ev *esgea.Event, pID esgea.PlayerID, kind esgea.IntelKind) {
	if g.players[pID].HiddenSignals {
		ev.Broadcast(esgea.SpentIntel(pID, nil))
		return
	}
	ev.Broadcast(esgea.SpentIntel(pID, &kind))
}
