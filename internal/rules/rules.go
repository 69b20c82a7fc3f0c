// Package rules holds the static game data tables: improvement stats,
// unit stats, and knowledge branch bounds. A Registry is built once at
// startup and treated as read-only afterwards.
package rules

import "github.com/talgya/hexrealm/internal/economy"

// ImprovementType enumerates the closed set of tile improvements.
type ImprovementType string

const (
	Settlement ImprovementType = "settlement"
	Encampment ImprovementType = "encampment"
	Farm       ImprovementType = "farm"
	Mine       ImprovementType = "mine"
	Forest     ImprovementType = "forest"
	Worksite   ImprovementType = "worksite"
	Campus     ImprovementType = "campus"
)

// UnitType enumerates the closed set of trainable units.
type UnitType string

const (
	Settler UnitType = "settler"
	Builder UnitType = "builder"
	Scout   UnitType = "scout"
	Warrior UnitType = "warrior"
	Archer  UnitType = "archer"
)

// PromotionClass tags what a unit can do.
type PromotionClass string

const (
	Civillian PromotionClass = "CIVILLIAN"
	Melee     PromotionClass = "MELEE"
	Ranged    PromotionClass = "RANGED"
	Recon     PromotionClass = "RECON"
)

// MovementClass tags what terrain a unit traverses.
type MovementClass string

const (
	Land  MovementClass = "LAND"
	Water MovementClass = "WATER"
	Air   MovementClass = "AIR"
)

// KnowledgeBranch names a research track accumulated on tiles.
type KnowledgeBranch string

const (
	Agriculture KnowledgeBranch = "agriculture"
	Masonry     KnowledgeBranch = "masonry"
	Military    KnowledgeBranch = "military"
	Seafaring   KnowledgeBranch = "seafaring"
)

// ImprovementStats describes one improvement type.
type ImprovementStats struct {
	Yield    economy.Yield // Per-turn output added to the improvement's store
	StoreCap economy.Yield // Default storage capacity
	Height   int           // Added to terrain height for line of sight
	Natural  bool          // Pre-existing feature; contributes no yield of its own
}

// UnitStats describes one unit type.
type UnitStats struct {
	Movement    int
	VisionRange int
	AttackRange int // 0 = cannot attack at range
	HP          int
	Promotion   PromotionClass
	Move        MovementClass
	Cost        economy.Yield
}

// Registry bundles every static table. Injected into the game at
// construction; never mutated afterwards.
type Registry struct {
	Improvements map[ImprovementType]ImprovementStats
	Units        map[UnitType]UnitStats
	Knowledge    map[KnowledgeBranch]int // branch → max points per tile
}

// Default returns the standard rule set.
func Default() *Registry {
	return &Registry{
		Improvements: map[ImprovementType]ImprovementStats{
			Settlement: {
				Yield:    economy.Yield{economy.Food: 1, economy.Production: 1},
				StoreCap: economy.Yield{economy.Food: 20, economy.Production: 20, economy.Science: 10, economy.Gold: 50},
				Height:   1,
			},
			Encampment: {
				Yield:    economy.Yield{economy.Production: 1},
				StoreCap: economy.Yield{economy.Food: 10, economy.Production: 10},
				Height:   1,
			},
			Farm: {
				Yield:    economy.Yield{economy.Food: 2},
				StoreCap: economy.Yield{economy.Food: 10},
			},
			Mine: {
				Yield:    economy.Yield{economy.Production: 2},
				StoreCap: economy.Yield{economy.Production: 10},
			},
			Forest: {
				Natural:  true,
				StoreCap: economy.Yield{},
				Height:   1,
			},
			Worksite: {
				StoreCap: economy.Yield{},
			},
			Campus: {
				Yield:    economy.Yield{economy.Science: 2},
				StoreCap: economy.Yield{economy.Science: 10},
			},
		},
		Units: map[UnitType]UnitStats{
			Settler: {Movement: 2, VisionRange: 2, HP: 10, Promotion: Civillian, Move: Land, Cost: economy.Yield{economy.Food: 10, economy.Production: 5}},
			Builder: {Movement: 2, VisionRange: 2, HP: 10, Promotion: Civillian, Move: Land, Cost: economy.Yield{economy.Production: 5}},
			Scout:   {Movement: 3, VisionRange: 3, HP: 15, Promotion: Recon, Move: Land, Cost: economy.Yield{economy.Production: 5}},
			Warrior: {Movement: 2, VisionRange: 2, HP: 25, Promotion: Melee, Move: Land, Cost: economy.Yield{economy.Production: 8}},
			Archer:  {Movement: 2, VisionRange: 2, AttackRange: 2, HP: 20, Promotion: Ranged, Move: Land, Cost: economy.Yield{economy.Production: 10}},
		},
		Knowledge: map[KnowledgeBranch]int{
			Agriculture: 100,
			Masonry:     100,
			Military:    100,
			Seafaring:   100,
		},
	}
}

// ConstructionCost returns the cost to build an improvement at a worksite.
func (r *Registry) ConstructionCost(t ImprovementType) economy.Yield {
	switch t {
	case Farm:
		return economy.Yield{economy.Food: 5}
	case Mine:
		return economy.Yield{economy.Production: 5}
	case Campus:
		return economy.Yield{economy.Production: 8}
	case Encampment:
		return economy.Yield{economy.Production: 6}
	default:
		return economy.Yield{economy.Production: 5}
	}
}

// ResearchCost returns the cost to research a knowledge branch at a tile.
func (r *Registry) ResearchCost(KnowledgeBranch) economy.Yield {
	return economy.Yield{economy.Science: 5}
}
