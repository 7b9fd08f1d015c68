package system

import (
	"fmt"
	"time"

	"github.com/pbellchambers/rustyhack-server-go/internal/ecs"
	"github.com/pbellchambers/rustyhack-server-go/internal/game"
	"github.com/pbellchambers/rustyhack-server-go/internal/tick"
	"github.com/pbellchambers/rustyhack-server-go/internal/world"
)

// Respawn tops up each map's living monster count per archetype against
// catalogue.DefaultCounts, with one TickSpawnChancePercentage roll per
// (map, archetype) pair below its count per run — step 14 of §4.F, ported from original_source's
// spawn.rs tick_spawn_monsters.
type Respawn struct {
	res *game.Resources
}

func NewRespawn(res *game.Resources) *Respawn {
	return &Respawn{res: res}
}

func (s *Respawn) Phase() tick.Phase { return tick.PhasePersist }

func (s *Respawn) Update(time.Duration) {
	w := s.res.World
	for mapName, counts := range s.res.Catalogue.DefaultCounts {
		living := s.livingCounts(mapName)
		for archetype, want := range counts {
			have := living[archetype]
			if have >= want {
				continue
			}
			positions := s.res.Catalogue.Positions(mapName, archetype)
			if len(positions) == 0 {
				continue
			}
			// Only spawn at most one of each archetype per map per tick,
			// regardless of how large the deficit is — one roll, not one
			// roll per missing unit.
			if s.res.Rand.Intn(100) >= s.res.SpawnChance {
				continue
			}
			tmpl, ok := s.res.Catalogue.Template(archetype)
			if !ok {
				continue
			}
			at := positions[s.res.Rand.Intn(len(positions))]
			id := fmt.Sprintf("%s-%d", archetype, s.res.Rand.Int63())
			w.SpawnMonster(archetype, mapName, at, tmpl.Display, tmpl.Stats, tmpl.Inventory, id)
		}
	}
}

func (s *Respawn) livingCounts(mapName string) map[string]int {
	counts := make(map[string]int)
	s.res.World.MonsterIdentity.Each(func(id ecs.EntityID, mi *world.MonsterIdentity) {
		pos, ok := s.res.World.Position.Get(id)
		if !ok || pos.Map != mapName {
			return
		}
		counts[mi.Archetype]++
	})
	return counts
}
