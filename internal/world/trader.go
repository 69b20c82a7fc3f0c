package world

import "github.com/talgya/hexrealm/internal/economy"

// Trader movement and capacity defaults.
const (
	TraderSpeed    = 1
	TraderCapacity = 10
)

// Route is the fixed ordered path a trader walks, producer first, sink
// last, with the total movement-cost distance of the walk.
type Route struct {
	Coords   []Coord `json:"coords"`
	Distance int     `json:"distance"`
}

// Trader is a resource carrier shuttling between a producer improvement
// and a sink along a fixed route. The cycle is a round trip: loaded at
// the producer, it walks to the sink, unloads, and walks back. Producer
// and sink are addressed by tile flat index so that no back-pointers
// into the map are held.
type Trader struct {
	CivID    int
	Route    Route
	Producer int // flat tile index of route start
	Sink     int // flat tile index of route end
	Speed    int
	Capacity economy.Yield
	Carried  economy.Yield
	Expired  bool

	// Position along the route and travel direction. outbound means
	// walking toward the sink.
	Step     int
	Outbound bool
}

// LoadCargo loads up to the trader's free capacity from share and
// returns the part that did not fit.
func (t *Trader) LoadCargo(share economy.Yield) economy.Yield {
	free := t.Capacity.Clone()
	free.Sub(t.Carried)
	taken := share.Min(free)
	t.Carried.Add(taken)
	surplus := share.Clone()
	surplus.Sub(taken)
	return surplus
}

// shunt advances the trader by its speed along the route, bouncing at
// either end. Arriving at the sink offloads the cargo into the sink's
// store; if the sink no longer needs resources the trader expires.
func (t *Trader) shunt(m *Map) {
	if t.Expired {
		return
	}
	last := len(t.Route.Coords) - 1
	if last < 1 {
		t.Expired = true
		return
	}
	// A replaced or razed producer releases its traders.
	if pt := m.tileAtPos(t.Producer); pt == nil || pt.Improvement == nil {
		t.Expired = true
		return
	}

	for i := 0; i < t.Speed; i++ {
		if t.Outbound {
			t.Step++
			if t.Step >= last {
				t.Step = last
				t.arrive(m)
				t.Outbound = false
			}
		} else {
			t.Step--
			if t.Step <= 0 {
				t.Step = 0
				t.Outbound = true
			}
		}
	}
}

// arrive unloads into the sink improvement and expires the trader when
// the sink has no live errand left to feed.
func (t *Trader) arrive(m *Map) {
	sink := m.tileAtPos(t.Sink)
	if sink == nil || sink.Improvement == nil {
		t.Expired = true
		return
	}
	im := sink.Improvement
	if !t.Carried.IsZero() {
		delivered := t.Carried.Clone()
		overflow := im.Store.Incr(delivered)
		t.Carried = overflow
		if im.Errand != nil {
			got := delivered.Clone()
			got.Sub(overflow)
			im.Errand.StoredThisTurn.Add(got)
		}
	}
	if im.Errand == nil || im.Errand.Completed {
		t.Expired = true
	}
}
