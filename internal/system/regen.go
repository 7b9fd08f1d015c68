package system

import (
	"time"

	"github.com/pbellchambers/rustyhack-server-go/internal/combat"
	"github.com/pbellchambers/rustyhack-server-go/internal/ecs"
	"github.com/pbellchambers/rustyhack-server-go/internal/game"
	"github.com/pbellchambers/rustyhack-server-go/internal/tick"
	"github.com/pbellchambers/rustyhack-server-go/internal/world"
)

// Regen heals every combatant not currently InCombat, at the regen
// pipeline's own interval, independent of the server and broadcast ticks —
// SPEC_FULL.md §4.F Regen formula: round(max_hp*0.0075 + con*0.02 + con/5).
type Regen struct {
	res *game.Resources
}

func NewRegen(res *game.Resources) *Regen {
	return &Regen{res: res}
}

func (s *Regen) Phase() tick.Phase { return tick.PhaseUpdate }

func (s *Regen) Update(time.Duration) {
	s.res.World.Stats.Each(func(id ecs.EntityID, st *world.Stats) {
		if st.InCombat || st.HP >= st.MaxHP || st.HP <= 0 {
			return
		}
		gain := s.res.Scripts.Regen(st.MaxHP, st.Con, func() int {
			return combat.Regen(st.MaxHP, st.Con)
		})
		st.HP += gain
		if st.HP > st.MaxHP {
			st.HP = st.MaxHP
		}
		st.UpdateAvailable = true
	})
}
