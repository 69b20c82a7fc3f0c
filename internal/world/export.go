package world

import (
	"fmt"

	"github.com/talgya/hexrealm/internal/economy"
	"github.com/talgya/hexrealm/internal/rules"
)

// Export shapes. Import must accept any output of Export and rebuild an
// equivalent simulation: traders reattach to improvements through their
// route endpoints, tile ownership is replayed through SetTileOwner from
// each city's owned-coord set.

type ErrandExport struct {
	Type           ErrandType    `json:"type"`
	Option         string        `json:"option"`
	Cost           economy.Yield `json:"cost"`
	StoredThisTurn economy.Yield `json:"storedThisTurn"`
	Completed      bool          `json:"completed"`
	Location       *Coord        `json:"location,omitempty"`
}

type ImprovementExport struct {
	Type     rules.ImprovementType `json:"type"`
	Pillaged bool                  `json:"pillaged"`
	Natural  bool                  `json:"natural"`
	Value    economy.Yield         `json:"value"`
	Capacity economy.Yield         `json:"capacity"`
	Errand   *ErrandExport         `json:"errand,omitempty"`
}

type TileExport struct {
	Terrain      Terrain                         `json:"terrain"`
	BaseYield    economy.Yield                   `json:"baseYield"`
	Knowledge    map[rules.KnowledgeBranch]int   `json:"knowledge,omitempty"`
	DiscoveredBy []bool                          `json:"discoveredBy"`
	VisibleTo    []int                           `json:"visibleTo"`
	Improvement  *ImprovementExport              `json:"improvement,omitempty"`
}

type TraderExport struct {
	CivID    int           `json:"civId"`
	Route    Route         `json:"route"`
	Speed    int           `json:"speed"`
	Capacity economy.Yield `json:"capacity"`
	Carried  economy.Yield `json:"carried"`
	Expired  bool          `json:"expired"`
	Step     int           `json:"step"`
	Outbound bool          `json:"outbound"`
}

type MapExport struct {
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	CivCount   int            `json:"civCount"`
	NextCityID int            `json:"nextCityId"`
	Tiles      []TileExport   `json:"tiles"`
	Cities     []*City        `json:"cities"`
	Traders    []TraderExport `json:"traders"`
}

// Export snapshots the map and everything it owns.
func (m *Map) Export() MapExport {
	out := MapExport{
		Width:      m.Width,
		Height:     m.Height,
		CivCount:   m.CivCount,
		NextCityID: m.nextCityID,
		Tiles:      make([]TileExport, len(m.Tiles)),
		Cities:     m.Cities,
	}
	for i, t := range m.Tiles {
		te := TileExport{
			Terrain:      t.Terrain,
			BaseYield:    t.BaseYield.Clone(),
			DiscoveredBy: append([]bool(nil), t.discoveredBy...),
			VisibleTo:    append([]int(nil), t.visibleTo...),
		}
		if len(t.Knowledge) > 0 {
			te.Knowledge = make(map[rules.KnowledgeBranch]int, len(t.Knowledge))
			for k, v := range t.Knowledge {
				te.Knowledge[k] = v
			}
		}
		if im := t.Improvement; im != nil {
			ie := &ImprovementExport{
				Type:     im.Type,
				Pillaged: im.Pillaged,
				Natural:  im.Natural,
				Value:    im.Store.Value.Clone(),
				Capacity: im.Store.Capacity.Clone(),
			}
			if e := im.Errand; e != nil {
				ie.Errand = &ErrandExport{
					Type:           e.Type,
					Option:         e.Option,
					Cost:           e.Cost.Clone(),
					StoredThisTurn: e.StoredThisTurn.Clone(),
					Completed:      e.Completed,
					Location:       e.Location,
				}
			}
			te.Improvement = ie
		}
		out.Tiles[i] = te
	}
	for _, tr := range m.Traders {
		out.Traders = append(out.Traders, TraderExport{
			CivID:    tr.CivID,
			Route:    tr.Route,
			Speed:    tr.Speed,
			Capacity: tr.Capacity.Clone(),
			Carried:  tr.Carried.Clone(),
			Expired:  tr.Expired,
			Step:     tr.Step,
			Outbound: tr.Outbound,
		})
	}
	return out
}

// ImportMap rebuilds a map from a snapshot. Fatal on any shape the
// snapshot cannot reconstruct; no partial state escapes.
func ImportMap(ex MapExport, reg *rules.Registry) (*Map, error) {
	if ex.Width <= 0 || ex.Height <= 0 || len(ex.Tiles) != ex.Width*ex.Height {
		return nil, fmt.Errorf("import map: bad dimensions %dx%d with %d tiles", ex.Width, ex.Height, len(ex.Tiles))
	}
	m := NewMap(ex.Width, ex.Height, ex.CivCount, reg)
	if ex.NextCityID > 0 {
		m.nextCityID = ex.NextCityID
	}

	for i, te := range ex.Tiles {
		t := m.Tiles[i]
		t.Terrain = te.Terrain
		t.BaseYield = te.BaseYield.Clone()
		if te.BaseYield == nil {
			t.BaseYield = te.Terrain.BaseYield()
		}
		for k, v := range te.Knowledge {
			t.Knowledge[k] = v
		}
		copy(t.discoveredBy, te.DiscoveredBy)
		copy(t.visibleTo, te.VisibleTo)
		if ie := te.Improvement; ie != nil {
			im := &Improvement{
				Type:     ie.Type,
				Pillaged: ie.Pillaged,
				Natural:  ie.Natural,
				Store: &economy.Store{
					Value:    ie.Value.Clone(),
					Capacity: ie.Capacity.Clone(),
				},
			}
			if ee := ie.Errand; ee != nil {
				im.Errand = &WorkErrand{
					Type:           ee.Type,
					Option:         ee.Option,
					Cost:           ee.Cost.Clone(),
					StoredThisTurn: ee.StoredThisTurn.Clone(),
					Completed:      ee.Completed,
					Location:       ee.Location,
				}
			}
			t.Improvement = im
		}
	}

	// Ownership is replayed, not copied: each city re-claims its coords
	// without overwriting, which also restores tile owner handles.
	for _, city := range ex.Cities {
		m.Cities = append(m.Cities, city)
		for _, c := range city.Owned {
			m.SetTileOwner(city, c, false)
		}
	}

	// Traders reattach to improvements by their route endpoints.
	for _, tre := range ex.Traders {
		if len(tre.Route.Coords) < 2 {
			return nil, fmt.Errorf("import map: trader route too short")
		}
		producer := m.TileAt(tre.Route.Coords[0])
		sink := m.TileAt(tre.Route.Coords[len(tre.Route.Coords)-1])
		if producer == nil || producer.Improvement == nil || sink == nil || sink.Improvement == nil {
			return nil, fmt.Errorf("import map: trader endpoints missing improvements")
		}
		tr := &Trader{
			CivID:    tre.CivID,
			Route:    tre.Route,
			Producer: m.Pos(producer.Coords),
			Sink:     m.Pos(sink.Coords),
			Speed:    tre.Speed,
			Capacity: tre.Capacity.Clone(),
			Carried:  tre.Carried.Clone(),
			Expired:  tre.Expired,
			Step:     tre.Step,
			Outbound: tre.Outbound,
		}
		producer.Improvement.Traders = append(producer.Improvement.Traders, tr)
		sink.Improvement.Suppliers = append(sink.Improvement.Suppliers, tr)
		m.Traders = append(m.Traders, tr)
	}

	// Replayed ownership queued change notices; a freshly imported game
	// publishes full maps instead.
	m.updates = nil
	return m, nil
}
