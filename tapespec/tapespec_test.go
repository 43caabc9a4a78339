package tapespec

import "testing"

func TestResolveGeometryInvariant(t *testing.T) {
	for _, id := range TapeIDs() {
		// Capacity applies the catalog's margin swap and rounding with no
		// centering on top, so this checks the margin arithmetic itself,
		// not the occupancy check.
		g, err := Capacity(id)
		if err != nil {
			t.Fatalf("tape %q: unexpected error: %v", id, err)
		}
		if rem := (g.LeftMarginPins + g.RightMarginPins) % 4; rem != 0 {
			t.Errorf("tape %q: left+right=%d not a multiple of 4", id, g.LeftMarginPins+g.RightMarginPins)
		}
		total := g.LeftMarginPins + g.RightMarginPins + uint(4*g.UsableHeight)
		if total != TotalPins {
			t.Errorf("tape %q: left+right+4*usable = %d, want %d", id, total, TotalPins)
		}
	}
}

func Test35mmGeometry(t *testing.T) {
	g, err := Resolve("3.5 mm", false, 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.LeftMarginPins != 264 || g.RightMarginPins != 248 {
		t.Fatalf("got left=%d right=%d, want left=264 right=248", g.LeftMarginPins, g.RightMarginPins)
	}
	if g.UsableHeight != 12 {
		t.Fatalf("got usable=%d, want 12", g.UsableHeight)
	}
}

func TestResolveUnknownTape(t *testing.T) {
	_, err := Resolve("FLe 21 mm x 45 mm", false, 10)
	if err == nil {
		t.Fatal("expected error for tape with unresolved margins")
	}
	var unk *ErrUnknownTape
	if _, ok := err.(*ErrUnknownTape); !ok {
		t.Fatalf("got %T, want %T", err, unk)
	}
}

func TestResolveImageTooTall(t *testing.T) {
	_, err := Resolve("24 mm", false, 1000)
	if _, ok := err.(*ErrImageTooTall); !ok {
		t.Fatalf("got %T, want *ErrImageTooTall", err)
	}
}

func TestResolveGeometryMismatch(t *testing.T) {
	_, err := Resolve("24 mm", false, 5)
	if _, ok := err.(*ErrGeometryMismatch); !ok {
		t.Fatalf("got %T, want *ErrGeometryMismatch", err)
	}
}

func TestCapacityMatchesExactFitResolve(t *testing.T) {
	capacity, err := Capacity("24 mm")
	if err != nil {
		t.Fatalf("Capacity: %v", err)
	}
	g, err := Resolve("24 mm", false, capacity.UsableHeight)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if g != capacity {
		t.Fatalf("Capacity() = %+v, exact-fit Resolve() = %+v, want equal", capacity, g)
	}
}

func TestResolveCentered(t *testing.T) {
	g, err := Resolve("24 mm", true, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.LeftMarginPins+uint(4*5)+g.RightMarginPins != TotalPins {
		t.Fatalf("centered geometry does not fill 560 pins: left=%d right=%d", g.LeftMarginPins, g.RightMarginPins)
	}
}
