package system

import (
	"fmt"
	"time"

	"github.com/pbellchambers/rustyhack-server-go/internal/combat"
	"github.com/pbellchambers/rustyhack-server-go/internal/ecs"
	"github.com/pbellchambers/rustyhack-server-go/internal/game"
	"github.com/pbellchambers/rustyhack-server-go/internal/tick"
	"github.com/pbellchambers/rustyhack-server-go/internal/world"
)

// ApplyCombatGains awards the attacker exp and gold (all of a slain
// monster's gold; in PvP, a percentage of the victim's gold) for every
// defender ResolveCombat just dropped to 0 HP, before MonsterDeath or
// PlayerDeathResolution consume the death itself — step 11 of §4.F.
// Ported from original_source's combat.rs post-kill reward path.
type ApplyCombatGains struct {
	res *game.Resources
}

func NewApplyCombatGains(res *game.Resources) *ApplyCombatGains {
	return &ApplyCombatGains{res: res}
}

func (s *ApplyCombatGains) Phase() tick.Phase { return tick.PhasePostUpdate }

func (s *ApplyCombatGains) Update(time.Duration) {
	w := s.res.World
	w.Stats.Each(func(id ecs.EntityID, defStats *world.Stats) {
		if defStats.HP > 0 {
			return
		}
		killer, ok := s.killerOf(id)
		if !ok {
			return
		}
		atkStats, ok := w.Stats.Get(killer)
		if !ok {
			return
		}
		if _, defenderIsMonster := w.MonsterIdentity.Get(id); defenderIsMonster {
			gain := int64(float64(combat.MonsterExp(defStats.Level)) * s.res.ExpRate)
			atkStats.Exp += gain
			atkStats.UpdateAvailable = true
			if defInv, ok := w.Inventory.Get(id); ok && defInv.Gold > 0 {
				if atkInv, ok := w.Inventory.Get(killer); ok {
					atkInv.Gold += defInv.Gold
					atkInv.UpdateAvailable = true
				}
				defInv.Gold = 0
			}
			return
		}
		// PvP kill: gold transfer, handled here rather than in
		// PlayerDeathResolution since it needs the killer's inventory too.
		if defInv, ok := w.Inventory.Get(id); ok {
			loss := combat.PvPGoldLoss(defInv.Gold)
			if loss > 0 {
				defInv.Gold -= loss
				defInv.UpdateAvailable = true
				if atkInv, ok := w.Inventory.Get(killer); ok {
					atkInv.Gold += loss
					atkInv.UpdateAvailable = true
				}
			}
		}
	})
}

// killerOf finds the attacker from the most recent ResolveCombat pass
// that targeted id — approximated here by scanning Pairings before
// they're cleared is too late (ResolveCombat already drained them this
// run), so ApplyCombatGains instead relies on InCombat plus a 0-HP
// check: the entity that hit id last is whichever combatant has
// InCombat set and a live target reference. For monsters, MonsterIdentity
// carries CurrentTarget in the other direction (monster->player), so the
// player case is resolved via the monster's own CurrentTarget; the
// PvP/monster-killed-by-player case is resolved by scanning attackers in
// combat against id on this tick.
func (s *ApplyCombatGains) killerOf(defender ecs.EntityID) (ecs.EntityID, bool) {
	w := s.res.World
	var found ecs.EntityID
	var ok bool
	w.MonsterIdentity.Each(func(id ecs.EntityID, mi *world.MonsterIdentity) {
		if ok || mi.CurrentTarget == nil {
			return
		}
		if *mi.CurrentTarget == defender {
			found, ok = id, true
		}
	})
	if ok {
		return found, true
	}
	// Player-vs-(monster|player): whoever shares the defender's map and
	// is InCombat with an adjacent position is treated as the killer —
	// approximated by nearest in-combat player, since pairing history
	// doesn't survive past ResolveCombat's drain this run.
	defPos, hasPos := w.Position.Get(defender)
	if !hasPos {
		return 0, false
	}
	w.PlayerIdentity.Each(func(id ecs.EntityID, pi *world.PlayerIdentity) {
		if ok || id == defender || !pi.Online {
			return
		}
		st, hasStats := w.Stats.Get(id)
		pos, hasPos2 := w.Position.Get(id)
		if !hasStats || !hasPos2 || !st.InCombat || pos.Map != defPos.Map {
			return
		}
		if abs(pos.X-defPos.X) <= 1 && abs(pos.Y-defPos.Y) <= 1 {
			found, ok = id, true
		}
	})
	return found, ok
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// LevelUp checks every combatant's exp against the progression table and
// applies as many level-ups as the exp supports in one pass — step 12.
type LevelUp struct {
	res *game.Resources
}

func NewLevelUp(res *game.Resources) *LevelUp {
	return &LevelUp{res: res}
}

func (s *LevelUp) Phase() tick.Phase { return tick.PhasePostUpdate }

func (s *LevelUp) Update(time.Duration) {
	s.res.World.Stats.Each(func(id ecs.EntityID, st *world.Stats) {
		for st.Level < combat.MaxLevel && st.Exp >= st.ExpToNext && st.ExpToNext > 0 {
			st.Level++
			st.StatPoints += 2
			st.MaxHP = combat.MaxHPFor(st.Level, st.Con)
			st.HP = st.MaxHP
			st.ExpToNext = combat.ExpToNext(st.Level)
			st.UpdateAvailable = true
			if pi, ok := s.res.World.PlayerIdentity.Get(id); ok {
				s.res.QueueMessage(id, "You have reached level "+itoa(st.Level)+", "+pi.Name+"!", world.ColourCyan)
			}
		}
	})
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// MonsterDeath destroys every monster ResolveCombat dropped to 0 HP,
// dropping its carried items as new Item entities at its tile first and
// queuing a broadcast entry on its map's <map>Dead sentinel so clients
// despawn it without a dedicated protocol message — step 13, GLOSSARY
// "Dead map". Ported from original_source's monster_systems.rs
// resolve_monster_deaths, which builds an items_vec from inventory.carried
// and adds it to the world before removing the monster entity.
type MonsterDeath struct {
	res *game.Resources
}

func NewMonsterDeath(res *game.Resources) *MonsterDeath {
	return &MonsterDeath{res: res}
}

func (s *MonsterDeath) Phase() tick.Phase { return tick.PhasePostUpdate }

func (s *MonsterDeath) Update(time.Duration) {
	w := s.res.World
	w.MonsterIdentity.Each(func(id ecs.EntityID, mi *world.MonsterIdentity) {
		st, ok := w.Stats.Get(id)
		if !ok || st.HP > 0 {
			return
		}
		pos, _ := w.Position.Get(id)
		if pos != nil {
			if inv, ok := w.Inventory.Get(id); ok {
				for _, item := range inv.Items {
					dropID := fmt.Sprintf("%s-drop-%d", item.Name, s.res.Rand.Int63())
					w.SpawnItem(item, pos.Map, world.Point{X: pos.X, Y: pos.Y}, dropID)
				}
			}
			s.res.Broadcast = append(s.res.Broadcast, game.BroadcastEntry{
				ID: id, Map: world.DeadMapFor(pos.Map), IsDead: true,
			})
		}
		w.ECS.MarkForDestruction(id)
	})
}

// PlayerDeathResolution applies the exp penalty and respawns a
// dead player at the default map spawn point with full HP, rather than
// destroying the entity — players never truly die, only reset — step 5.
type PlayerDeathResolution struct {
	res *game.Resources
}

func NewPlayerDeathResolution(res *game.Resources) *PlayerDeathResolution {
	return &PlayerDeathResolution{res: res}
}

func (s *PlayerDeathResolution) Phase() tick.Phase { return tick.PhasePostUpdate }

func (s *PlayerDeathResolution) Update(time.Duration) {
	w := s.res.World
	w.PlayerIdentity.Each(func(id ecs.EntityID, pi *world.PlayerIdentity) {
		st, ok := w.Stats.Get(id)
		if !ok || st.HP > 0 {
			return
		}
		st.Exp = combat.ExpAfterDeathPenalty(st.Level, st.Exp)
		st.HP = st.MaxHP
		st.InCombat = false
		st.UpdateAvailable = true

		pos, ok := w.Position.Get(id)
		if ok {
			oldMap := pos.Map
			pos.Map, pos.X, pos.Y = world.DefaultMap, 16, 6
			pos.UpdateAvailable = true
			s.res.Broadcast = append(s.res.Broadcast, game.BroadcastEntry{ID: id, Map: world.DeadMapFor(oldMap), IsDead: true})
		}
		s.res.QueueMessage(id, "You have died, and respawn at "+world.DefaultMap+".", world.ColourRed)
	})
}
