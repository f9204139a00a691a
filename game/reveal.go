package game

import "github.com/bcspragu/esgea/esgea"

// Note is an observation addressed to a single player.
type Note struct {
	To          esgea.PlayerID
	Observation esgea.Observation
}

// Reveals works out what player by learns from a reveal. With a target, by
// finds the target wherever they are, unless they're invisible. Without one,
// by checks every other player: the ones sharing by's location who aren't
// invisible are found, and everyone else is reported as a failure.
//
// players must be indexed by ID, and target, if given, must be in range.
func Reveals(players []esgea.Player, by esgea.PlayerID, target *esgea.PlayerID) []Note {
	if target != nil {
		t := players[*target]
		if t.Invisible {
			return []Note{{To: by, Observation: esgea.RevealFailed(t.ID)}}
		}
		return []Note{{To: by, Observation: esgea.Revealed(t.ID, t.Location)}}
	}

	here := players[by].Location
	var out []Note
	for _, pl := range players {
		if pl.ID == by {
			continue
		}
		if !pl.Invisible && pl.Location == here {
			out = append(out, Note{To: by, Observation: esgea.Revealed(pl.ID, pl.Location)})
		} else {
			out = append(out, Note{To: by, Observation: esgea.RevealFailed(pl.ID)})
		}
	}
	return out
}
