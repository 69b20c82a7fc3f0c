package world

import (
	"github.com/talgya/hexrealm/internal/economy"
	"github.com/talgya/hexrealm/internal/rules"
)

// Terrain names one of the closed set of tile terrain types.
type Terrain string

const (
	TerrainOcean        Terrain = "ocean"
	TerrainFrozenOcean  Terrain = "frozen_ocean"
	TerrainCoastal      Terrain = "coastal"
	TerrainFrozenCoastal Terrain = "frozen_coastal"
	TerrainRiver        Terrain = "river"
	TerrainGrass        Terrain = "grass"
	TerrainPlains       Terrain = "plains"
	TerrainForest       Terrain = "forest"
	TerrainDesert       Terrain = "desert"
	TerrainTundra       Terrain = "tundra"
	TerrainMountain     Terrain = "mountain"
)

// TerrainStats describes movement and height per terrain; settle and
// build legality live in settleBlocked and buildBlocked.
// A zero movement cost means the terrain is impassable for that class.
type TerrainStats struct {
	MovementCost map[rules.MovementClass]int
	Height       int
}

// terrainTable is read-only after init.
var terrainTable = map[Terrain]TerrainStats{
	TerrainOcean:         {MovementCost: map[rules.MovementClass]int{rules.Water: 1}},
	TerrainFrozenOcean:   {MovementCost: map[rules.MovementClass]int{}},
	TerrainCoastal:       {MovementCost: map[rules.MovementClass]int{rules.Water: 1}},
	TerrainFrozenCoastal: {MovementCost: map[rules.MovementClass]int{}},
	TerrainRiver:         {MovementCost: map[rules.MovementClass]int{rules.Land: 2, rules.Water: 1}},
	TerrainGrass:         {MovementCost: map[rules.MovementClass]int{rules.Land: 1}},
	TerrainPlains:        {MovementCost: map[rules.MovementClass]int{rules.Land: 1}},
	TerrainForest:        {MovementCost: map[rules.MovementClass]int{rules.Land: 2}, Height: 1},
	TerrainDesert:        {MovementCost: map[rules.MovementClass]int{rules.Land: 1}},
	TerrainTundra:        {MovementCost: map[rules.MovementClass]int{rules.Land: 1}},
	TerrainMountain:      {MovementCost: map[rules.MovementClass]int{}, Height: 3},
}

// Stats returns the stats row for a terrain type.
func (t Terrain) Stats() TerrainStats {
	return terrainTable[t]
}

// MovementCost returns the step cost for a movement class, 0 = impassable.
func (t Terrain) MovementCost(mc rules.MovementClass) int {
	return terrainTable[t].MovementCost[mc]
}

// baseYieldTable gives the intrinsic yield of bare terrain.
var baseYieldTable = map[Terrain]economy.Yield{
	TerrainGrass:   {economy.Food: 2},
	TerrainPlains:  {economy.Food: 1, economy.Production: 1},
	TerrainRiver:   {economy.Food: 2},
	TerrainForest:  {economy.Food: 1, economy.Production: 1},
	TerrainTundra:  {economy.Food: 1},
	TerrainCoastal: {economy.Food: 1},
}

// BaseYield returns a copy of the intrinsic yield of bare terrain.
func (t Terrain) BaseYield() economy.Yield {
	base, ok := baseYieldTable[t]
	if !ok {
		return economy.NewYield()
	}
	return base.Clone()
}

// settleBlocked lists terrain a city can never be founded on.
var settleBlocked = map[Terrain]bool{
	TerrainOcean:         true,
	TerrainFrozenOcean:   true,
	TerrainMountain:      true,
	TerrainCoastal:       true,
	TerrainFrozenCoastal: true,
	TerrainRiver:         true,
}

// buildBlocked lists terrain no improvement can occupy.
var buildBlocked = map[Terrain]bool{
	TerrainOcean:       true,
	TerrainFrozenOcean: true,
	TerrainMountain:    true,
}
