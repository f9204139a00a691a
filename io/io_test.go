package io

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/bcspragu/esgea/esgea"
	"github.com/google/go-cmp/cmp"
)

func TestLog(t *testing.T) {
	var buf bytes.Buffer
	l := &Log{Out: &buf}

	ev := esgea.NewEvent()
	ev.Note(1, esgea.Death(0, 1))
	ev.Note(0, esgea.Death(0, 1))
	ev.Broadcast(esgea.Waited(2))
	l.Record(ev)
	l.Record(nil)

	want := []string{
		"Player 2 waited",
		"[P0] Player 0 eliminated player 1",
		"[P1] Player 0 eliminated player 1",
	}
	if diff := cmp.Diff(want, l.Lines()); diff != "" {
		t.Errorf("unexpected log (-want +got)\n%s", diff)
	}
	if got := buf.String(); got != strings.Join(want, "\n")+"\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestPrompt(t *testing.T) {
	var out bytes.Buffer
	p := &Prompt{In: strings.NewReader("move:2\nfly\nend\nquit\n"), Out: &out}

	a, err := p.Action(0)
	if err != nil {
		t.Fatalf("Action: %v", err)
	}
	if diff := cmp.Diff(esgea.Move(2), a); diff != "" {
		t.Errorf("unexpected action (-want +got)\n%s", diff)
	}

	if _, err := p.Action(0); !errors.Is(err, esgea.ErrUnknownAction) {
		t.Errorf("Action = %v, want ErrUnknownAction", err)
	}
	if _, err := p.Action(0); !errors.Is(err, ErrEndTurn) {
		t.Errorf("Action = %v, want ErrEndTurn", err)
	}
	if _, err := p.Action(1); !errors.Is(err, ErrQuit) {
		t.Errorf("Action = %v, want ErrQuit", err)
	}
	// Out of input.
	if _, err := p.Action(1); !errors.Is(err, ErrQuit) {
		t.Errorf("Action = %v, want ErrQuit", err)
	}

	if !strings.HasPrefix(out.String(), "Player 0, enter an action") {
		t.Errorf("unexpected prompt %q", out.String())
	}
}

func TestPrintLocations(t *testing.T) {
	ctrl := esgea.PlayerID(1)
	var buf bytes.Buffer
	PrintLocations(&buf, []esgea.Location{
		{ID: 0, Name: "Alpha", BaseIncome: 2},
		{ID: 1, Name: "Bravo", BaseIncome: 1, Control: &ctrl},
	}, map[esgea.LocationID][]esgea.LocationID{0: {1}, 1: {0}})

	for _, want := range []string{"Alpha", "Bravo", "P1", "NEIGHBORS"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output %q doesn't contain %q", buf.String(), want)
		}
	}
}

func TestPrintPlayers(t *testing.T) {
	var buf bytes.Buffer
	PrintPlayers(&buf, []esgea.Player{{ID: 0, Alive: true, Intel: 4, Invisible: true}})

	for _, want := range []string{"P0", "true", "invisible"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output %q doesn't contain %q", buf.String(), want)
		}
	}
}

func TestWait(t *testing.T) {
	var out bytes.Buffer
	p := &Prompt{In: strings.NewReader("\nwait\n"), Out: &out}

	if err := p.Wait("Press ENTER"); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	// Input is shared with Action.
	a, err := p.Action(0)
	if err != nil {
		t.Fatalf("Action: %v", err)
	}
	if a.Kind != esgea.ActionWait {
		t.Errorf("got action %q, want wait", a.Kind)
	}
	if err := p.Wait("Press ENTER"); !errors.Is(err, ErrQuit) {
		t.Errorf("Wait = %v, want ErrQuit", err)
	}
}
