// Package world holds the game's ECS component types and the in-memory
// World Store that ties ecs.Store[T] instances, per-map resources, and the
// Map State Index together for the tick pipelines to operate on.
package world

import "github.com/pbellchambers/rustyhack-server-go/internal/ecs"

// Colour is a small enum matching the client's display palette.
type Colour int

const (
	ColourWhite Colour = iota
	ColourRed
	ColourGreen
	ColourYellow
	ColourCyan
	ColourMagenta
)

// DefaultMap is the map new players land on and dead players respawn on.
const DefaultMap = "Home"

// DeadMapSuffix is appended to a map's name to form the sentinel map used
// to tell clients about despawned entities without a dedicated protocol
// message — see GLOSSARY "Dead map" in SPEC_FULL.md.
const DeadMapSuffix = "Dead"

func DeadMapFor(mapName string) string { return mapName + DeadMapSuffix }

// PlayerIdentity marks an entity as a player and carries session/identity
// data that never changes shape after creation.
type PlayerIdentity struct {
	ID      string // stable UUID-like identifier, assigned once at creation
	Name    string
	Online  bool
}

// MonsterIdentity marks an entity as a monster.
type MonsterIdentity struct {
	ID            string
	Archetype     string
	SpawnPosition Point
	// CurrentTarget is nil when the monster has no target. It is an
	// EntityID, not a direct component pointer, so a target entity's
	// destruction (or map change) is observed safely on next read instead
	// of dereferencing freed memory — see SPEC_FULL.md §9.
	CurrentTarget *ecs.EntityID
}

// ItemIdentity marks an entity as a dropped, pickable-up item.
type ItemIdentity struct {
	ID       string
	PickedUp bool
}

// Display is the renderable appearance of an entity.
type Display struct {
	Glyph      rune
	Colour     Colour
	Visible    bool
	Collidable bool
}

// Point is a bare (x, y) pair, used for spawn positions and respawn tables
// where a full Position (with Map + velocity) would be redundant.
type Point struct {
	X, Y int
}

// Position is the authoritative location of an entity on a named map.
// VelX/VelY are at most ±1 per axis and are always zeroed by the end of
// the movement phase that consumed them — they never persist across ticks.
type Position struct {
	Map             string
	X, Y            int
	VelX, VelY      int8
	UpdateAvailable bool
}

// Stats holds combat and progression state.
type Stats struct {
	Level           int
	HP, MaxHP       int
	Str, Dex, Con   int
	Exp             int64
	ExpToNext       int64
	StatPoints      int
	InCombat        bool
	UpdateAvailable bool
}

// ItemKind tags which variant of Item is populated — Go has no native
// tagged union, so the teacher's convention (one struct, a kind tag, and
// only the matching fields meaningful) is reused here instead of an
// interface-per-variant scheme, matching how Inventory data is kept in
// the teacher's own persistence layer.
type ItemKind int

const (
	ItemKindWeapon ItemKind = iota
	ItemKindArmour
	ItemKindGold
	ItemKindTrinket
)

type Item struct {
	Kind ItemKind
	Name string

	// Weapon fields
	DamageMin, DamageMax int
	Accuracy             float64

	// Armour fields
	DamageReduction float64

	// Gold fields
	Amount int64
}

// Inventory is an entity's carried items plus currently equipped gear.
type Inventory struct {
	Weapon          *Item
	Armour          *Item
	Gold            int64
	Items           []Item
	UpdateAvailable bool
}

// SessionRef links an ECS entity to a network session without internal/world
// importing internal/netio — avoids the import cycle the teacher's own
// component/session.go works around the same way.
type SessionRef struct {
	SessionID uint64
}
