package world

// DefaultStepLength makes the straight ray of each wedge branch every
// step, producing a dense filled wedge. Larger values are a tuning knob
// that trades coverage for work.
const DefaultStepLength = 1

// losRay is one ray of the wedge expansion. maxElev is the running
// sightline ceiling a tile must reach to be seen; slope is how much the
// ceiling grows per step once a blocker has been passed.
type losRay struct {
	c         Coord
	dir       int
	steps     int
	maxElev   float64
	slope     float64
	branching bool // only wedge trunks spawn side branches
	toBranch  int  // steps until the next branch spawn
}

// VisibleTilesFrom returns every coord visible from c within rng using
// hex raycasting: six wedges, each a straight trunk ray that spawns
// left and right branch rays every stepLength steps. A tile is visible
// when its total elevation reaches the ray's current ceiling; a tile
// above the ceiling becomes a blocker and tilts the sightline upward
// behind it. The origin is always included.
func (m *Map) VisibleTilesFrom(c Coord, rng, stepLength int) []Coord {
	origin := m.TileAt(c)
	if origin == nil || rng <= 0 {
		if origin != nil {
			return []Coord{origin.Coords}
		}
		return nil
	}
	if stepLength <= 0 {
		stepLength = DefaultStepLength
	}

	seen := map[int]bool{m.Pos(origin.Coords): true}
	out := []Coord{origin.Coords}

	// The ceiling starts at ground level regardless of the viewer's own
	// elevation: standing on a peak never blinds a unit to the lowlands
	// at its feet. Blockers along the ray raise the ceiling behind them.
	rays := make([]losRay, 0, 6)
	for d := 0; d < 6; d++ {
		rays = append(rays, losRay{
			c:         origin.Coords,
			dir:       d,
			steps:     rng,
			branching: true,
			toBranch:  stepLength,
		})
	}

	for len(rays) > 0 {
		r := rays[len(rays)-1]
		rays = rays[:len(rays)-1]

		for r.steps > 0 {
			raw := InDirection(r.c, r.dir)
			nc, ok := m.Normalize(raw)
			if !ok {
				break
			}
			r.c = nc
			r.steps--
			r.maxElev += r.slope

			t := m.Tiles[m.Pos(nc)]
			elev := float64(t.TotalElevation(m.reg))
			if elev >= r.maxElev {
				pos := m.Pos(nc)
				if !seen[pos] {
					seen[pos] = true
					out = append(out, nc)
				}
			}
			// A tile above the sightline blocks what lies behind it.
			if rise := elev - r.maxElev; rise > r.slope {
				r.slope = rise
			}

			if r.branching {
				r.toBranch--
				if r.toBranch <= 0 {
					r.toBranch = stepLength
					if r.steps > 0 {
						left := r
						left.dir = mod(r.dir-1, 6)
						left.branching = false
						right := r
						right.dir = mod(r.dir+1, 6)
						right.branching = false
						rays = append(rays, left, right)
					}
				}
			}
		}
	}
	return out
}

// VisibleTilesForUnit enumerates the unit's vision cone, or its attack
// envelope (attack range) when isAttack is set. A unit without a ranged
// attack has an attack range of 0, so its envelope is its own tile.
func (m *Map) VisibleTilesForUnit(u *Unit, isAttack bool) []Coord {
	if u.Coords == nil {
		return nil
	}
	stats := u.Stats(m.reg)
	rng := stats.VisionRange
	if isAttack {
		rng = stats.AttackRange
	}
	return m.VisibleTilesFrom(*u.Coords, rng, DefaultStepLength)
}
