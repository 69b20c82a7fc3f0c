package world

import "testing"

func TestAdjacentCoordsParity(t *testing.T) {
	// Even column: north-side diagonals share the row above.
	even := AdjacentCoords(Coord{X: 4, Y: 5})
	wantEven := map[Coord]bool{
		{5, 5}: true, {5, 4}: true, {4, 4}: true,
		{3, 4}: true, {3, 5}: true, {4, 6}: true,
	}
	for _, c := range even {
		if !wantEven[c] {
			t.Errorf("even col: unexpected neighbor %v", c)
		}
	}

	// Odd column: south-side diagonals share the row below.
	odd := AdjacentCoords(Coord{X: 5, Y: 5})
	wantOdd := map[Coord]bool{
		{6, 6}: true, {6, 5}: true, {5, 4}: true,
		{4, 5}: true, {4, 6}: true, {5, 6}: true,
	}
	for _, c := range odd {
		if !wantOdd[c] {
			t.Errorf("odd col: unexpected neighbor %v", c)
		}
	}
}

func TestInDirectionMatchesAdjacency(t *testing.T) {
	for _, c := range []Coord{{0, 0}, {3, 7}, {4, 2}} {
		adj := AdjacentCoords(c)
		for d := 0; d < 6; d++ {
			if got := InDirection(c, d); got != adj[d] {
				t.Errorf("InDirection(%v,%d)=%v, want %v", c, d, got, adj[d])
			}
		}
		// Directions wrap mod 6.
		if InDirection(c, 6) != adj[0] || InDirection(c, -1) != adj[5] {
			t.Errorf("direction wrap broken at %v", c)
		}
	}
}

func TestMod(t *testing.T) {
	cases := []struct{ x, m, want int }{
		{5, 10, 5},
		{-1, 10, 9},
		{10, 10, 0},
		{-10, 10, 0},
		{-13, 10, 7},
	}
	for _, c := range cases {
		if got := mod(c.x, c.m); got != c.want {
			t.Errorf("mod(%d,%d)=%d, want %d", c.x, c.m, got, c.want)
		}
	}
}

func TestMapPosWrapsX(t *testing.T) {
	m := NewMap(10, 8, 1, testRegistry())
	if m.Pos(Coord{X: -1, Y: 5}) != m.Pos(Coord{X: 9, Y: 5}) {
		t.Error("x=-1 should wrap to x=9")
	}
	if m.Pos(Coord{X: 12, Y: 3}) != m.Pos(Coord{X: 2, Y: 3}) {
		t.Error("x=12 should wrap to x=2")
	}
}

func TestNormalizeClampsY(t *testing.T) {
	m := NewMap(10, 8, 1, testRegistry())
	if _, ok := m.Normalize(Coord{X: 5, Y: -1}); ok {
		t.Error("y=-1 is off the map")
	}
	if _, ok := m.Normalize(Coord{X: 5, Y: 8}); ok {
		t.Error("y=height is off the map")
	}
	if n, ok := m.Normalize(Coord{X: -3, Y: 0}); !ok || n.X != 7 {
		t.Errorf("normalize(-3,0) = %v,%v; want x=7", n, ok)
	}
}
