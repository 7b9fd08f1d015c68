package world

import (
	"math/rand"

	"github.com/pbellchambers/rustyhack-server-go/internal/ecs"
)

// State is the authoritative World Store: the ECS core plus one
// ecs.Store[T] per component type, wired into the Registry so a destroyed
// entity's data is cleared everywhere. It is only ever mutated from the
// single main-loop goroutine — see SPEC_FULL.md §5.
type State struct {
	ECS *ecs.World

	PlayerIdentity  *ecs.Store[PlayerIdentity]
	MonsterIdentity *ecs.Store[MonsterIdentity]
	ItemIdentity    *ecs.Store[ItemIdentity]
	Display         *ecs.Store[Display]
	Position        *ecs.Store[Position]
	Stats           *ecs.Store[Stats]
	Inventory       *ecs.Store[Inventory]
	SessionRef      *ecs.Store[SessionRef]

	Rand *rand.Rand
}

func NewState(rng *rand.Rand) *State {
	s := &State{
		ECS: ecs.NewWorld(),

		PlayerIdentity:  ecs.NewStore[PlayerIdentity](),
		MonsterIdentity: ecs.NewStore[MonsterIdentity](),
		ItemIdentity:    ecs.NewStore[ItemIdentity](),
		Display:         ecs.NewStore[Display](),
		Position:        ecs.NewStore[Position](),
		Stats:           ecs.NewStore[Stats](),
		Inventory:       ecs.NewStore[Inventory](),
		SessionRef:      ecs.NewStore[SessionRef](),

		Rand: rng,
	}

	reg := s.ECS.Registry()
	reg.Register(s.PlayerIdentity)
	reg.Register(s.MonsterIdentity)
	reg.Register(s.ItemIdentity)
	reg.Register(s.Display)
	reg.Register(s.Position)
	reg.Register(s.Stats)
	reg.Register(s.Inventory)
	reg.Register(s.SessionRef)

	return s
}

// SpawnPlayer creates a brand new player entity with default placement,
// per original_source's PlayerDetails::default()/Position::default().
func (s *State) SpawnPlayer(name string) ecs.EntityID {
	id := s.ECS.CreateEntity()
	s.PlayerIdentity.Set(id, &PlayerIdentity{ID: name, Name: name, Online: true})
	s.Display.Set(id, &Display{Glyph: '@', Colour: ColourWhite, Visible: true, Collidable: true})
	s.Position.Set(id, &Position{Map: DefaultMap, X: 16, Y: 6})
	s.Stats.Set(id, &Stats{Level: 1, HP: 45, MaxHP: 45, Str: 5, Dex: 5, Con: 5, ExpToNext: 1000})
	s.Inventory.Set(id, &Inventory{})
	return id
}

// SpawnMonster creates a monster entity from catalogue-supplied template data.
func (s *State) SpawnMonster(archetype, mapName string, at Point, display Display, stats Stats, inv Inventory, id string) ecs.EntityID {
	eid := s.ECS.CreateEntity()
	s.MonsterIdentity.Set(eid, &MonsterIdentity{ID: id, Archetype: archetype, SpawnPosition: at})
	s.Display.Set(eid, &display)
	s.Position.Set(eid, &Position{Map: mapName, X: at.X, Y: at.Y})
	s.Stats.Set(eid, &stats)
	s.Inventory.Set(eid, &inv)
	return eid
}

// SpawnItem creates a dropped item entity at a given tile.
func (s *State) SpawnItem(item Item, mapName string, at Point, id string) ecs.EntityID {
	eid := s.ECS.CreateEntity()
	s.ItemIdentity.Set(eid, &ItemIdentity{ID: id})
	s.Display.Set(eid, &Display{Glyph: '$', Colour: ColourYellow, Visible: true, Collidable: false})
	s.Position.Set(eid, &Position{Map: mapName, X: at.X, Y: at.Y})
	s.Inventory.Set(eid, &Inventory{Items: []Item{item}})
	return eid
}

// FindOfflinePlayerByName returns the entity id of a known-but-offline
// player with the given name, for PlayerJoin's rebind path.
func (s *State) FindOfflinePlayerByName(name string) (ecs.EntityID, bool) {
	var found ecs.EntityID
	var ok bool
	s.PlayerIdentity.Each(func(id ecs.EntityID, pi *PlayerIdentity) {
		if ok || pi.Name != name {
			return
		}
		if !pi.Online {
			found, ok = id, true
		}
	})
	return found, ok
}

// FindOnlinePlayerByName returns the entity id of a currently-online player
// with the given name, used to reject a duplicate join.
func (s *State) FindOnlinePlayerByName(name string) (ecs.EntityID, bool) {
	var found ecs.EntityID
	var ok bool
	s.PlayerIdentity.Each(func(id ecs.EntityID, pi *PlayerIdentity) {
		if ok || pi.Name != name {
			return
		}
		if pi.Online {
			found, ok = id, true
		}
	})
	return found, ok
}
