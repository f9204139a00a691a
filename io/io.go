// Package io handles playing esgea on a terminal: printing the board and the
// players, reading actions, and keeping a log of what everyone observed.
package io

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bcspragu/esgea/esgea"
	"github.com/olekukonko/tablewriter"
)

var playerColors = []int{
	tablewriter.FgHiRedColor,
	tablewriter.FgBlueColor,
	tablewriter.FgGreenColor,
	tablewriter.FgYellowColor,
}

func playerColor(pID esgea.PlayerID) tablewriter.Colors {
	return tablewriter.Colors{playerColors[int(pID)%len(playerColors)]}
}

// PrintLocations writes a table of locations, colored by who controls them.
// neighbors maps each location to the locations it's connected to, and can be
// nil.
func PrintLocations(w io.Writer, locs []esgea.Location, neighbors map[esgea.LocationID][]esgea.LocationID) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "Income", "Control", "Bonus", "Neighbors"})

	for _, l := range locs {
		control, bonus := "-", "-"
		var c tablewriter.Colors
		if l.Control != nil {
			control = "P" + l.Control.String()
			c = playerColor(*l.Control)
		}
		if l.PendingBonus != nil {
			bonus = strconv.FormatUint(uint64(*l.PendingBonus), 10)
		}
		var ns []string
		for _, n := range neighbors[l.ID] {
			ns = append(ns, n.String())
		}

		row := []string{l.ID.String(), l.Name, strconv.FormatUint(uint64(l.BaseIncome), 10), control, bonus, strings.Join(ns, ",")}
		colors := make([]tablewriter.Colors, len(row))
		for i := range colors {
			colors[i] = c
		}
		table.Rich(row, colors)
	}

	table.Render()
}

// PrintPlayers writes a table of players. It shows everything about them, so
// only hand it players the reader is allowed to see.
func PrintPlayers(w io.Writer, players []esgea.Player) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Player", "Alive", "Intel", "Location", "Flags"})

	for _, p := range players {
		var flags []string
		for _, f := range []struct {
			on   bool
			name string
		}{
			{p.HiddenSignals, "hidden-signals"},
			{p.VisibleViolence, "visible-violence"},
			{p.ActiveScan, "active-scan"},
			{p.Concealed, "concealed"},
			{p.Invisible, "invisible"},
		} {
			if f.on {
				flags = append(flags, f.name)
			}
		}

		row := []string{
			"P" + p.ID.String(),
			strconv.FormatBool(p.Alive),
			strconv.FormatUint(uint64(p.Intel), 10),
			p.Location.String(),
			strings.Join(flags, " "),
		}
		colors := make([]tablewriter.Colors, len(row))
		colors[0] = playerColor(p.ID)
		table.Rich(row, colors)
	}

	table.Render()
}

// Prompt asks the user on the terminal to enter actions.
type Prompt struct {
	// In is a reader where the user's actions are read from.
	In io.Reader
	// Out is where the prompts should be written out to.
	Out io.Writer

	sc *bufio.Scanner
}

var (
	// ErrQuit is returned by Action when the user asks to stop playing, or
	// runs out of input.
	ErrQuit = errors.New("quit")
	// ErrEndTurn is returned by Action when the user is done with their turn.
	ErrEndTurn = errors.New("end of turn")
)

// Action asks pID for their next action, in the form esgea.ParseAction
// understands. Entering "end" returns ErrEndTurn, and "quit" returns ErrQuit.
func (p *Prompt) Action(pID esgea.PlayerID) (esgea.Action, error) {
	if p.sc == nil {
		p.sc = bufio.NewScanner(p.In)
	}
	fmt.Fprintf(p.Out, "Player %d, enter an action [ex. 'move:2', 'reveal:1', 'end']: ", pID)
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return esgea.Action{}, fmt.Errorf("scanner error: %w", err)
		}
		return esgea.Action{}, ErrQuit
	}
	txt := strings.TrimSpace(p.sc.Text())
	switch txt {
	case "quit":
		return esgea.Action{}, ErrQuit
	case "end":
		return esgea.Action{}, ErrEndTurn
	}
	return esgea.ParseAction(txt)
}

// Wait shows msg and waits for the user to press enter. It returns ErrQuit
// if there's no more input.
func (p *Prompt) Wait(msg string) error {
	if p.sc == nil {
		p.sc = bufio.NewScanner(p.In)
	}
	fmt.Fprint(p.Out, msg)
	if !p.sc.Scan() {
		return ErrQuit
	}
	return nil
}

// Log is a record of every observation made during a game, public and
// private. Private observations are prefixed with who made them.
type Log struct {
	// Out, if set, gets each line as it's recorded.
	Out io.Writer

	lines []string
}

// Record adds an event to the log: public observations first, then private
// ones by player.
func (l *Log) Record(ev *esgea.Event) {
	if ev == nil {
		return
	}
	for _, obs := range ev.Public {
		l.add(obs.Describe())
	}
	for _, pID := range ev.Recipients() {
		for _, obs := range ev.For(pID) {
			l.add(fmt.Sprintf("[P%d] %s", pID, obs.Describe()))
		}
	}
}

func (l *Log) add(line string) {
	l.lines = append(l.lines, line)
	if l.Out != nil {
		fmt.Fprintln(l.Out, line)
	}
}

// Lines returns everything recorded so far.
func (l *Log) Lines() []string {
	return append([]string(nil), l.lines...)
}
