package game

import "github.com/bcspragu/esgea/esgea"

// StartTurn begins pID's turn. It has to be called once per turn, before the
// player acts.
//
// The player collects income: the base income of every location they
// control, plus the pending bonus where they're standing. The bonus isn't
// used up. Anyone sharing their location who isn't invisible loses their
// concealment and is revealed to them. Finally, the player's own
// invisibility wears off.
func (g *Game) StartTurn(pID esgea.PlayerID) (*esgea.Event, error) {
	p, err := g.player(pID)
	if err != nil {
		return nil, err
	}
	ev := esgea.NewEvent()

	g.players[pID].Intel = p.Intel.Add(g.Income(pID))

	for i := range g.players {
		pl := &g.players[i]
		if pl.ID == pID || pl.Invisible || pl.Location != p.Location {
			continue
		}
		pl.Concealed = false
		ev.Note(pID, esgea.Revealed(pl.ID, pl.Location))
	}

	p.Invisible = false
	return ev, nil
}

// Income is what pID would collect if their turn started now.
func (g *Game) Income(pID esgea.PlayerID) esgea.Intel {
	if _, err := g.player(pID); err != nil {
		return 0
	}
	here := g.players[pID].Location

	var income esgea.Intel
	g.board.Each(func(l *esgea.Location) {
		if l.ControlledBy(pID) {
			income = income.Add(l.BaseIncome)
		}
		if l.ID == here && l.PendingBonus != nil {
			income = income.Add(*l.PendingBonus)
		}
	})
	return income
}
