package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/pbellchambers/rustyhack-server-go/internal/combat"
	"github.com/pbellchambers/rustyhack-server-go/internal/ecs"
	"github.com/pbellchambers/rustyhack-server-go/internal/game"
	"github.com/pbellchambers/rustyhack-server-go/internal/mapstate"
	"github.com/pbellchambers/rustyhack-server-go/internal/scripting"
	"github.com/pbellchambers/rustyhack-server-go/internal/tick"
	"github.com/pbellchambers/rustyhack-server-go/internal/world"
)

// entityLabel returns the name a system message should use for id: a
// player's name, or a monster's archetype id.
func entityLabel(w *world.State, id ecs.EntityID) string {
	if pi, ok := w.PlayerIdentity.Get(id); ok {
		return pi.Name
	}
	if mi, ok := w.MonsterIdentity.Get(id); ok {
		return mi.Archetype
	}
	return "unknown"
}

// occupantFor builds the Map State Index record for id, classifying it as
// player or monster the same way ResetPopulate does.
func occupantFor(w *world.State, id ecs.EntityID, collidable bool) mapstate.Occupant {
	if pi, ok := w.PlayerIdentity.Get(id); ok {
		return mapstateOccupant(id, pi.Name, pi.Online, true, collidable)
	}
	if mi, ok := w.MonsterIdentity.Get(id); ok {
		return mapstateOccupant(id, mi.ID, true, false, collidable)
	}
	return mapstateOccupant(id, "", false, false, collidable)
}

// CombatCheck turns a move onto an occupied, hostile tile into an attack
// instead of a blocked step. Registered before TileCollision so the
// pairing is queued before collision zeroes the velocity for the same
// reason. Ported from original_source's combat_systems.rs check_for_combat.
type CombatCheck struct {
	res *game.Resources
}

func NewCombatCheck(res *game.Resources) *CombatCheck {
	return &CombatCheck{res: res}
}

func (s *CombatCheck) Phase() tick.Phase { return tick.PhaseUpdate }

func (s *CombatCheck) Update(time.Duration) {
	w := s.res.World
	w.Position.Each(func(id ecs.EntityID, pos *world.Position) {
		st, hasStats := w.Stats.Get(id)

		// Not moving, or already dead: no combat this tick. in_combat is
		// cleared here, not batched onto the regen interval, so a
		// combatant who stops attacking regens again as soon as the next
		// tick runs instead of waiting out the regen tick's own period.
		if pos.VelX == 0 && pos.VelY == 0 || (hasStats && st.HP <= 0) {
			if hasStats {
				st.InCombat = false
			}
			return
		}
		destX, destY := pos.X+int(pos.VelX), pos.Y+int(pos.VelY)
		blockedByOccupant := false
		for _, occ := range s.res.Index.OccupantsAt(pos.Map, destX, destY) {
			if occ.EntityID == id || !occ.Collidable {
				continue
			}
			if hostile(w, id, occ.EntityID) {
				pos.VelX, pos.VelY = 0, 0
				s.res.Pairings = append(s.res.Pairings, game.CombatPairing{Attacker: id, Defender: occ.EntityID})
				return
			}
			// Collidable but not hostile (e.g. another monster): the move
			// is not an attack, but TileCollision will still block it below,
			// so the Index must not be mirrored as if it succeeded.
			blockedByOccupant = true
		}
		if blockedByOccupant {
			if hasStats {
				st.InCombat = false
			}
			return
		}
		if s.res.Maps.TileAt(pos.Map, destX, destY).Collidable() {
			if hasStats {
				st.InCombat = false
			}
			return
		}

		// Destination unoccupied and passable: mirror the move into the Map
		// State Index immediately so a later entity processed in this same
		// Each pass (e.g. one stepping into the tile this entity is
		// vacating) sees the updated occupancy instead of racing it —
		// spec.md §4.F step 4. TileCollision/ApplyMovement run after this
		// and would otherwise re-derive the identical outcome redundantly;
		// checked here too so a blocked move is never mirrored as if it
		// succeeded.
		if hasStats {
			st.InCombat = false
		}
		disp, ok := w.Display.Get(id)
		if !ok {
			return
		}
		occ := occupantFor(w, id, disp.Collidable)
		s.res.Index.RemoveAt(pos.Map, pos.X, pos.Y, occ)
		s.res.Index.InsertAt(pos.Map, destX, destY, occ)
	})
}

// hostile reports whether attacker may fight defender: player-vs-monster
// and monster-vs-player always qualify; player-vs-player is PvP and also
// qualifies (no factions/parties in this scope — SPEC_FULL.md Non-goals).
func hostile(w *world.State, attacker, defender ecs.EntityID) bool {
	_, attackerIsMonster := w.MonsterIdentity.Get(attacker)
	_, defenderIsMonster := w.MonsterIdentity.Get(defender)
	if attackerIsMonster && defenderIsMonster {
		return false
	}
	return true
}

// ResolveCombat applies every pairing CombatCheck (or MonsterAI) queued
// this run: accuracy roll, then damage roll, via internal/combat's
// formulas with Lua override hooks — step 10 of §4.F.
type ResolveCombat struct {
	res *game.Resources
	log *zap.Logger
}

func NewResolveCombat(res *game.Resources, log *zap.Logger) *ResolveCombat {
	return &ResolveCombat{res: res, log: log}
}

func (s *ResolveCombat) Phase() tick.Phase { return tick.PhaseUpdate }

func (s *ResolveCombat) Update(time.Duration) {
	w := s.res.World
	for _, pair := range s.res.Pairings {
		atkStats, ok := w.Stats.Get(pair.Attacker)
		if !ok {
			continue
		}
		defStats, ok := w.Stats.Get(pair.Defender)
		if !ok {
			continue
		}
		atkStats.InCombat, defStats.InCombat = true, true

		weapon := weaponOf(w, pair.Attacker)
		armour := armourOf(w, pair.Defender)

		atkName, defName := entityLabel(w, pair.Attacker), entityLabel(w, pair.Defender)

		roll := s.res.Rand.Float64() * 100
		hit := s.res.Scripts.HasHit(scripting.HitContext{
			WeaponAccuracy: weapon.Accuracy,
			AttackerDex:    atkStats.Dex,
			DefenderDex:    defStats.Dex,
			Roll:           roll,
		}, func() bool {
			return combat.Hit(weapon, combat.Combatant{Str: atkStats.Str, Dex: atkStats.Dex},
				combat.Combatant{Str: defStats.Str, Dex: defStats.Dex}, roll)
		})
		if !hit {
			s.res.QueueMessage(pair.Attacker, "You miss "+defName+".", world.ColourYellow)
			s.res.QueueMessage(pair.Defender, atkName+" misses you.", world.ColourYellow)
			continue
		}

		weaponRoll := weapon.DamageMin + s.res.Rand.Float64()*(weapon.DamageMax-weapon.DamageMin)
		dmg := s.res.Scripts.Damage(scripting.DamageContext{
			WeaponRoll:      weaponRoll,
			AttackerStr:     atkStats.Str,
			ArmourReduction: armour.DamageReduction,
		}, func() int {
			return combat.Damage(weapon, combat.Combatant{Str: atkStats.Str, Dex: atkStats.Dex},
				atkStats.Str, armour, weaponRoll)
		})

		defStats.HP -= dmg
		defStats.UpdateAvailable = true
		if defStats.HP < 0 {
			defStats.HP = 0
		}

		dmgStr := itoa(dmg)
		s.res.QueueMessage(pair.Attacker, "You hit "+defName+" for "+dmgStr+" damage.", world.ColourRed)
		s.res.QueueMessage(pair.Defender, atkName+" hits you for "+dmgStr+" damage.", world.ColourRed)
		if defStats.HP <= 0 {
			s.res.QueueMessage(pair.Attacker, "You have killed "+defName+"!", world.ColourMagenta)
		}
	}
	s.res.Pairings = s.res.Pairings[:0]
}

func weaponOf(w *world.State, id ecs.EntityID) combat.Weapon {
	inv, ok := w.Inventory.Get(id)
	if !ok || inv.Weapon == nil {
		return combat.Weapon{DamageMin: 1, DamageMax: 2, Accuracy: 50}
	}
	return combat.Weapon{
		DamageMin: float64(inv.Weapon.DamageMin),
		DamageMax: float64(inv.Weapon.DamageMax),
		Accuracy:  inv.Weapon.Accuracy,
	}
}

func armourOf(w *world.State, id ecs.EntityID) combat.Armour {
	inv, ok := w.Inventory.Get(id)
	if !ok || inv.Armour == nil {
		return combat.Armour{}
	}
	return combat.Armour{DamageReduction: inv.Armour.DamageReduction}
}
