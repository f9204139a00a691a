package esgea

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIntelArithmetic(t *testing.T) {
	top := ^Intel(0)
	tests := []struct {
		desc string
		got  Intel
		want Intel
	}{
		{"add", Intel(2).Add(3), 5},
		{"add saturates", (top - 1).Add(5), top},
		{"sub", Intel(5).Sub(3), 2},
		{"sub clamps", Intel(1).Sub(3), 0},
	}
	for _, test := range tests {
		if test.got != test.want {
			t.Errorf("%s: got %d, want %d", test.desc, test.got, test.want)
		}
	}
}

func TestPurchase(t *testing.T) {
	p := &Player{Intel: 3}

	if err := p.Purchase(IntelHideSignals); err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if p.Intel != 1 {
		t.Errorf("got %d intel after purchase, want 1", p.Intel)
	}

	if err := p.Purchase(IntelInvisible); !errors.Is(err, ErrNotEnoughIntel) {
		t.Errorf("Purchase = %v, want ErrNotEnoughIntel", err)
	}
	if p.Intel != 1 {
		t.Errorf("failed purchase changed balance to %d", p.Intel)
	}

	if err := p.Purchase(IntelPrepare); err != nil {
		t.Errorf("Purchase(Prepare): %v", err)
	}
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in   string
		want Action
	}{
		{"strike", Strike()},
		{" WAIT ", Wait()},
		{"capture", Capture()},
		{"hide_signals", HideSignals()},
		{"invisible", Invisible()},
		{"prepare", Prepare()},
		{"move:3", Move(3)},
		{"reveal", RevealAll()},
		{"reveal:1", RevealPlayer(1)},
	}

	for _, test := range tests {
		got, err := ParseAction(test.in)
		if err != nil {
			t.Errorf("ParseAction(%q): %v", test.in, err)
			continue
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("ParseAction(%q) (-want +got)\n%s", test.in, diff)
		}
		if again, err := ParseAction(got.String()); err != nil || !cmp.Equal(got, again) {
			t.Errorf("ParseAction(%q) = %+v, %v, want %+v", got.String(), again, err, got)
		}
	}
}

func TestParseActionErrors(t *testing.T) {
	for _, in := range []string{"", "fly", "move", "move:x", "move:-1", "reveal:me", "wait:2"} {
		if _, err := ParseAction(in); !errors.Is(err, ErrUnknownAction) {
			t.Errorf("ParseAction(%q) = %v, want ErrUnknownAction", in, err)
		}
	}
}

func TestDescribe(t *testing.T) {
	hide := IntelHideSignals
	at := LocationID(2)
	tests := []struct {
		obs  Observation
		want string
	}{
		{Death(0, 1), "Player 0 eliminated player 1"},
		{StrikeAt(0, &at), "Player 0 struck location 2"},
		{StrikeAt(0, nil), "Player 0 launched a covert strike"},
		{Observation{Kind: ObservedStrike}, "A mysterious strike occurred"},
		{Waited(1), "Player 1 waited"},
		{Captured(1, 2), "Player 1 captured location 2"},
		{SpentIntel(1, &hide), "Player 1 spent intel on HideSignals"},
		{SpentIntel(1, nil), "Player 1 spent intel"},
		{Revealed(1, 2), "Player 1 was revealed at 2"},
		{RevealFailed(1), "Attempted reveal on player 1 failed"},
	}
	for _, test := range tests {
		if got := test.obs.Describe(); got != test.want {
			t.Errorf("Describe(%+v) = %q, want %q", test.obs, got, test.want)
		}
	}
}

func TestEvent(t *testing.T) {
	ev := NewEvent()
	if !ev.Empty() {
		t.Fatal("new event isn't empty")
	}

	ev.Note(2, Waited(0))
	ev.Note(0, Waited(1))
	ev.Note(2, Waited(1))
	ev.Broadcast(Captured(0, 1))

	if ev.Empty() {
		t.Error("event with observations is empty")
	}
	if diff := cmp.Diff([]PlayerID{0, 2}, ev.Recipients()); diff != "" {
		t.Errorf("unexpected recipients (-want +got)\n%s", diff)
	}
	if diff := cmp.Diff([]Observation{Waited(0), Waited(1)}, ev.For(2)); diff != "" {
		t.Errorf("unexpected observations (-want +got)\n%s", diff)
	}
	if got := ev.For(1); len(got) != 0 {
		t.Errorf("player 1 got %v, want nothing", got)
	}
}

func TestStateClone(t *testing.T) {
	ctrl := PlayerID(0)
	s := &State{
		Locations: []Location{{ID: 0, Name: "A", Control: &ctrl}},
		Players:   []Player{{ID: 0, Alive: true}},
	}
	sc := s.Clone()
	*sc.Locations[0].Control = 3
	sc.Players[0].Alive = false

	if *s.Locations[0].Control != 0 || !s.Players[0].Alive {
		t.Error("changing the clone changed the original")
	}
}
