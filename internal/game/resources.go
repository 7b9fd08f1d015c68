// Package game wires together the packages every tick pipeline system
// needs: the World Store, the Map Registry, the Spawn Catalogue, the Map
// State Index, and per-tick scratch state (combat pairings, broadcast
// collation). This is the Go constructor-injection analogue of the
// original Rust implementation's #[resource] system parameters — Go has
// no attribute-based dependency injection, so systems take an explicit
// *Resources the way the teacher's systems take an explicit *handler.Deps.
package game

import (
	"math/rand"

	"github.com/pbellchambers/rustyhack-server-go/internal/catalogue"
	"github.com/pbellchambers/rustyhack-server-go/internal/combat"
	"github.com/pbellchambers/rustyhack-server-go/internal/ecs"
	"github.com/pbellchambers/rustyhack-server-go/internal/mapdata"
	"github.com/pbellchambers/rustyhack-server-go/internal/mapstate"
	"github.com/pbellchambers/rustyhack-server-go/internal/scripting"
	"github.com/pbellchambers/rustyhack-server-go/internal/world"
)

// CombatPairing is one recorded attacker/defender match from CombatCheck,
// consumed by ResolveCombat in the same or a later pipeline run.
type CombatPairing struct {
	Attacker ecs.EntityID
	Defender ecs.EntityID
}

// BroadcastEntry is one collated entity snapshot awaiting Emit, which
// hands its ID to Resources.Publish.
type BroadcastEntry struct {
	ID      ecs.EntityID
	Map     string
	X, Y    int
	Glyph   rune
	Colour  world.Colour
	Name    string
	IsDead  bool // routed via the <map>Dead sentinel
}

// SystemMessage is a colour-coded line queued for delivery to one player.
type SystemMessage struct {
	PlayerID ecs.EntityID
	Text     string
	Colour   world.Colour
}

// Stream tags which of spec.md §4.H's per-player broadcast streams a
// PersonalUpdate carries. Distinct from BroadcastEntry/stream 22, which
// fans every entity's position out to every player sharing its map.
type Stream int

const (
	StreamPosition  Stream = 20
	StreamStats     Stream = 21
	StreamInventory Stream = 24
)

// PersonalUpdate flags that id's own Position/Stats/Inventory changed this
// broadcast tick and should be pushed to that player alone, on the given
// stream — ported from original_source's send_player_position_updates/
// send_player_stats_updates/send_player_inventory_updates.
type PersonalUpdate struct {
	PlayerID ecs.EntityID
	Stream   Stream
}

// Resources is the shared, mutable scratch state threaded through every
// pipeline run this tick.
type Resources struct {
	World     *world.State
	Maps      *mapdata.Registry
	Catalogue *catalogue.Catalogue
	Index     *mapstate.Index
	Scripts   *scripting.Engine
	Rand      *rand.Rand

	Pairings        []CombatPairing
	Broadcast       []BroadcastEntry
	PersonalUpdates []PersonalUpdate
	Messages        []SystemMessage
	ExpRate         float64
	SpawnChance     int // percentage, per-archetype-per-map-per-tick

	// Publish is called by the Publish system once per online player whose
	// components changed, and by Emit once per collated broadcast entry,
	// with the entity id to serialize and send.
	Publish func(id ecs.EntityID)

	// PublishPersonal is Publish's counterpart for PersonalUpdate entries:
	// called once per flagged player/stream pair.
	PublishPersonal func(id ecs.EntityID, stream Stream)
}

func New(w *world.State, maps *mapdata.Registry, cat *catalogue.Catalogue, idx *mapstate.Index, scripts *scripting.Engine, rng *rand.Rand) *Resources {
	return &Resources{
		World:       w,
		Maps:        maps,
		Catalogue:   cat,
		Index:       idx,
		Scripts:     scripts,
		Rand:        rng,
		ExpRate:     1.0,
		SpawnChance: combat.TickSpawnChancePercentage,
	}
}

func (r *Resources) QueueMessage(id ecs.EntityID, text string, colour world.Colour) {
	r.Messages = append(r.Messages, SystemMessage{PlayerID: id, Text: text, Colour: colour})
}
