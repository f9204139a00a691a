package board

import (
	"errors"
	"strings"
	"testing"

	"github.com/bcspragu/esgea/esgea"
	"github.com/google/go-cmp/cmp"
)

func TestAddLocation(t *testing.T) {
	b := New()
	a := b.AddLocation("Alpha", 2)
	c := b.AddLocation("Bravo", 1)

	if a != 0 || c != 1 {
		t.Fatalf("got handles %d, %d, want 0, 1", a, c)
	}

	want := []esgea.Location{
		{ID: 0, Name: "Alpha", BaseIncome: 2},
		{ID: 1, Name: "Bravo", BaseIncome: 1},
	}
	if diff := cmp.Diff(want, b.Locations()); diff != "" {
		t.Errorf("unexpected locations (-want +got)\n%s", diff)
	}
}

func TestConnectIsIdempotent(t *testing.T) {
	b := New()
	a := b.AddLocation("Alpha", 2)
	c := b.AddLocation("Bravo", 1)

	for _, pair := range [][2]esgea.LocationID{{a, c}, {a, c}, {c, a}} {
		if err := b.Connect(pair[0], pair[1]); err != nil {
			t.Fatalf("Connect(%d, %d): %v", pair[0], pair[1], err)
		}
	}

	if diff := cmp.Diff([]esgea.Edge{{A: a, B: c}}, b.Edges()); diff != "" {
		t.Errorf("unexpected edges (-want +got)\n%s", diff)
	}

	for _, id := range []esgea.LocationID{a, c} {
		ns, err := b.Neighbors(id)
		if err != nil {
			t.Fatalf("Neighbors(%d): %v", id, err)
		}
		if len(ns) != 1 {
			t.Errorf("Neighbors(%d) = %v, want exactly one neighbor", id, ns)
		}
	}
	if !b.Adjacent(a, c) || !b.Adjacent(c, a) {
		t.Error("expected edge to be usable in both directions")
	}
}

func TestConnectSelf(t *testing.T) {
	b := New()
	a := b.AddLocation("Alpha", 2)
	if err := b.Connect(a, a); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if len(b.Edges()) != 0 {
		t.Errorf("expected no self edges, got %v", b.Edges())
	}
	if b.Adjacent(a, a) {
		t.Error("location shouldn't be adjacent to itself")
	}
}

func TestInvalidHandles(t *testing.T) {
	b := New()
	a := b.AddLocation("Alpha", 2)

	if err := b.Connect(a, 7); !errors.Is(err, esgea.ErrInvalidHandle) {
		t.Errorf("Connect to missing location = %v, want ErrInvalidHandle", err)
	}
	if _, err := b.Neighbors(-1); !errors.Is(err, esgea.ErrInvalidHandle) {
		t.Errorf("Neighbors(-1) = %v, want ErrInvalidHandle", err)
	}
	if _, err := b.Location(1); !errors.Is(err, esgea.ErrInvalidHandle) {
		t.Errorf("Location(1) = %v, want ErrInvalidHandle", err)
	}
	if b.Adjacent(a, 3) {
		t.Error("invalid handles shouldn't be adjacent")
	}
}

func TestLocationsIsASnapshot(t *testing.T) {
	b := New()
	a := b.AddLocation("Alpha", 2)
	owner := esgea.PlayerID(0)
	if err := b.Update(a, func(l *esgea.Location) { l.Control = &owner }); err != nil {
		t.Fatalf("Update: %v", err)
	}

	locs := b.Locations()
	*locs[0].Control = 3
	locs[0].Name = "Changed"

	got, err := b.Location(a)
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if got.Name != "Alpha" || !got.ControlledBy(0) {
		t.Errorf("board was modified through a snapshot: %+v", got)
	}
}

func TestUpdateKeepsID(t *testing.T) {
	b := New()
	a := b.AddLocation("Alpha", 2)
	if err := b.Update(a, func(l *esgea.Location) { l.ID = 12 }); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := b.Location(a)
	if got.ID != a {
		t.Errorf("location ID = %d, want %d", got.ID, a)
	}
}

func TestFromState(t *testing.T) {
	b := New()
	a := b.AddLocation("Alpha", 2)
	c := b.AddLocation("Bravo", 1)
	d := b.AddLocation("Charlie", 1)
	b.Connect(a, c)
	b.Connect(c, d)

	got, err := FromState(b.Locations(), b.Edges())
	if err != nil {
		t.Fatalf("FromState: %v", err)
	}
	if diff := cmp.Diff(b.Locations(), got.Locations()); diff != "" {
		t.Errorf("unexpected locations (-want +got)\n%s", diff)
	}
	if diff := cmp.Diff(b.Edges(), got.Edges()); diff != "" {
		t.Errorf("unexpected edges (-want +got)\n%s", diff)
	}

	bad := b.Locations()
	bad[1].ID = 5
	if _, err := FromState(bad, nil); !errors.Is(err, esgea.ErrInvalidHandle) {
		t.Errorf("FromState with mismatched IDs = %v, want ErrInvalidHandle", err)
	}
}

func TestRender(t *testing.T) {
	b := New()
	a := b.AddLocation("Alpha", 2)
	c := b.AddLocation("Bravo", 1)
	d := b.AddLocation("Charlie", 4)
	b.Connect(a, c)
	b.Connect(c, a)
	b.Connect(c, d)

	owner := esgea.PlayerID(1)
	bonus := esgea.Intel(3)
	b.Update(a, func(l *esgea.Location) {
		l.Control = &owner
		l.PendingBonus = &bonus
	})

	var sb strings.Builder
	if err := b.Render(&sb); err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := strings.Join([]string{
		"graph {",
		`  0 [ size=0.5 style=filled fillcolor=blue label="3" tooltip="Alpha" ]`,
		`  1 [ size=0.25 style=filled fillcolor=white label="" tooltip="Bravo" ]`,
		`  2 [ size=1 style=filled fillcolor=white label="" tooltip="Charlie" ]`,
		"  0 -- 1;",
		"  1 -- 2;",
		"}",
		"",
	}, "\n")
	if diff := cmp.Diff(want, sb.String()); diff != "" {
		t.Errorf("unexpected render (-want +got)\n%s", diff)
	}
}
