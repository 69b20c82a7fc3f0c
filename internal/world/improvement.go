package world

import (
	"github.com/talgya/hexrealm/internal/economy"
	"github.com/talgya/hexrealm/internal/rules"
)

// ErrandType names what kind of work an errand performs on completion.
type ErrandType string

const (
	ErrandConstruction ErrandType = "CONSTRUCTION"
	ErrandUnitTraining ErrandType = "UNIT_TRAINING"
	ErrandResearch     ErrandType = "RESEARCH"
)

// WorkErrand is an in-progress production task hosted by an improvement.
// It shares the host's store: while the errand is live the store's
// capacity is raised to cover the cost, and restored on completion. An
// errand exists only while incomplete; the map removes it right after
// its completion effect runs.
type WorkErrand struct {
	Type           ErrandType
	Option         string // improvement type / unit type / knowledge branch
	Cost           economy.Yield
	StoredThisTurn economy.Yield
	Completed      bool
	Location       *Coord // UNIT_TRAINING spawn point; nil = the worksite
}

// Improvement is a structure occupying a tile. It yields resources into
// its own store each turn and can host one errand at a time. Traders is
// the list of outgoing carriers this improvement loads; Suppliers the
// incoming carriers feeding it.
type Improvement struct {
	Type     rules.ImprovementType
	Pillaged bool
	Natural  bool
	Store    *economy.Store
	Errand   *WorkErrand

	Traders   []*Trader
	Suppliers []*Trader
}

// NewImprovement creates an improvement of the given type with its
// default storage capacity.
func NewImprovement(t rules.ImprovementType, reg *rules.Registry) *Improvement {
	stats := reg.Improvements[t]
	return &Improvement{
		Type:    t,
		Natural: stats.Natural,
		Store:   economy.NewStore(stats.StoreCap),
	}
}

// Yield returns the improvement's own per-turn output. Natural features
// and pillaged structures produce nothing beyond the tile's baseline.
func (im *Improvement) Yield(reg *rules.Registry) economy.Yield {
	if im.Natural || im.Pillaged {
		return economy.NewYield()
	}
	return reg.Improvements[im.Type].Yield.Clone()
}

// StartErrand attaches a new errand, raising the store's capacity to
// cover the cost. Refused when an errand is already live: preemption is
// deliberately not supported.
func (im *Improvement) StartErrand(e *WorkErrand) bool {
	if im.Errand != nil {
		return false
	}
	e.StoredThisTurn = economy.NewYield()
	im.Errand = e
	im.Store.Capacity = im.Store.Capacity.Max(e.Cost)
	return true
}

// CanSupply reports whether this improvement can act as producer for a
// requirement: it must output at least one of the requested resource
// kinds and not be busy with its own errand.
func (im *Improvement) CanSupply(requirement economy.Yield, reg *rules.Registry) bool {
	if im.Errand != nil || im.Pillaged {
		return false
	}
	own := reg.Improvements[im.Type].Yield
	for k, v := range requirement {
		if v > 0 && own[k] > 0 {
			return true
		}
	}
	return false
}

// work advances the improvement by one turn:
//
//  1. complete the errand if storage covers its cost (suppliers expire,
//     cost is deducted, default capacity restored);
//  2. reset the errand's per-turn intake;
//  3. split storage evenly across live outgoing traders;
//  4. add the improvement's own yield;
//  5. clamp storage to capacity, discarding the extra.
func (im *Improvement) work(reg *rules.Registry) {
	if im.Errand != nil && !im.Errand.Completed && im.Store.Fulfills(im.Errand.Cost) {
		im.Errand.Completed = true
		for _, t := range im.Suppliers {
			t.Expired = true
		}
		im.Store.Decr(im.Errand.Cost)
		im.Store.Capacity = reg.Improvements[im.Type].StoreCap.Clone()
	}

	if im.Errand != nil {
		im.Errand.StoredThisTurn = economy.NewYield()
	}

	live := 0
	for _, t := range im.Traders {
		if !t.Expired {
			live++
		}
	}
	if live > 0 {
		share := im.Store.DivNumber(live)
		kept := im.Traders[:0]
		for _, t := range im.Traders {
			if t.Expired {
				continue
			}
			surplus := t.LoadCargo(share)
			taken := share.Clone()
			taken.Sub(surplus)
			im.Store.Decr(taken)
			if !t.Expired {
				kept = append(kept, t)
			}
		}
		im.Traders = kept
	}

	im.Store.Incr(im.Yield(reg))
	im.Store.Clamp()
}

// release expires every attached carrier, incoming and outgoing. Called
// before the improvement is replaced on its tile: traders address
// endpoints by flat tile index, so without this they would keep
// shunting against the successor's store.
func (im *Improvement) release() {
	for _, t := range im.Traders {
		t.Expired = true
	}
	for _, t := range im.Suppliers {
		t.Expired = true
	}
}

// pruneTrader drops a reaped trader from both subscriber lists.
func (im *Improvement) pruneTrader(tr *Trader) {
	im.Traders = removeTrader(im.Traders, tr)
	im.Suppliers = removeTrader(im.Suppliers, tr)
}

func removeTrader(list []*Trader, tr *Trader) []*Trader {
	out := list[:0]
	for _, t := range list {
		if t != tr {
			out = append(out, t)
		}
	}
	return out
}
