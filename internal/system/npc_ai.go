package system

import (
	"time"

	"github.com/pbellchambers/rustyhack-server-go/internal/combat"
	"github.com/pbellchambers/rustyhack-server-go/internal/ecs"
	"github.com/pbellchambers/rustyhack-server-go/internal/game"
	"github.com/pbellchambers/rustyhack-server-go/internal/tick"
	"github.com/pbellchambers/rustyhack-server-go/internal/world"
)

// MonsterAI chases an acquired target, returns to its spawn point once it
// has wandered outside combat.MonsterDistanceActivation, or else takes one
// random step — step 8 of §4.F. Ported from original_source's
// monster_systems.rs update_monster_velocities and movement.rs
// move_towards_target/move_randomly/check_if_outside_spawn_range.
//
// CurrentTarget is stored as *ecs.EntityID, not a direct reference, so a
// target that logs out or changes map mid-tick is observed safely on the
// next read instead of dereferencing stale data — SPEC_FULL.md §9. Per
// that same Open Question, a target is only ever cleared when the monster
// gives up and returns to spawn, or overwritten by a freshly acquired
// one — never simply dropped because it's out of range this tick.
type MonsterAI struct {
	res *game.Resources
}

func NewMonsterAI(res *game.Resources) *MonsterAI {
	return &MonsterAI{res: res}
}

func (s *MonsterAI) Phase() tick.Phase { return tick.PhaseUpdate }

func (s *MonsterAI) Update(time.Duration) {
	w := s.res.World
	w.MonsterIdentity.Each(func(id ecs.EntityID, mi *world.MonsterIdentity) {
		pos, ok := w.Position.Get(id)
		if !ok {
			return
		}

		if target, ok := s.validTarget(mi, pos); ok {
			if targetPos, ok := w.Position.Get(target); ok && targetPos.Map == pos.Map {
				if abs(targetPos.X-pos.X) <= 1 && abs(targetPos.Y-pos.Y) <= 1 {
					s.res.Pairings = append(s.res.Pairings, game.CombatPairing{Attacker: id, Defender: target})
					return
				}
				pos.VelX, pos.VelY = stepToward(s.res, pos, targetPos)
				return
			}
		}

		if outsideSpawnRange(mi.SpawnPosition, pos) {
			mi.CurrentTarget = nil
			spawnPos := &world.Position{Map: pos.Map, X: mi.SpawnPosition.X, Y: mi.SpawnPosition.Y}
			pos.VelX, pos.VelY = stepToward(s.res, pos, spawnPos)
			return
		}

		if newTarget, ok := s.acquireTarget(id, pos); ok {
			t := newTarget
			mi.CurrentTarget = &t
			if targetPos, ok := w.Position.Get(newTarget); ok {
				pos.VelX, pos.VelY = stepToward(s.res, pos, targetPos)
			}
			return
		}

		pos.VelX, pos.VelY = moveRandomly(s.res)
	})
}

func (s *MonsterAI) validTarget(mi *world.MonsterIdentity, pos *world.Position) (ecs.EntityID, bool) {
	if mi.CurrentTarget == nil {
		return 0, false
	}
	target := *mi.CurrentTarget
	pi, ok := s.res.World.PlayerIdentity.Get(target)
	if !ok || !pi.Online {
		return 0, false
	}
	targetPos, ok := s.res.World.Position.Get(target)
	if !ok || targetPos.Map != pos.Map {
		return 0, false
	}
	if abs(targetPos.X-pos.X) > combat.MonsterDistanceActivation || abs(targetPos.Y-pos.Y) > combat.MonsterDistanceActivation {
		return 0, false
	}
	return target, true
}

func (s *MonsterAI) acquireTarget(self ecs.EntityID, pos *world.Position) (ecs.EntityID, bool) {
	w := s.res.World
	var best ecs.EntityID
	bestDist := combat.MonsterDistanceActivation + 1
	found := false
	w.PlayerIdentity.Each(func(id ecs.EntityID, pi *world.PlayerIdentity) {
		if !pi.Online {
			return
		}
		ppos, ok := w.Position.Get(id)
		if !ok || ppos.Map != pos.Map {
			return
		}
		dist := maxInt(abs(ppos.X-pos.X), abs(ppos.Y-pos.Y))
		if dist <= combat.MonsterDistanceActivation && dist < bestDist {
			best, bestDist, found = id, dist, true
		}
	})
	_ = self
	return best, found
}

// outsideSpawnRange reports whether pos has wandered further than
// combat.MonsterDistanceActivation from spawn on either axis, ported from
// movement.rs check_if_outside_spawn_range.
func outsideSpawnRange(spawn world.Point, pos *world.Position) bool {
	return abs(pos.X-spawn.X) > combat.MonsterDistanceActivation || abs(pos.Y-spawn.Y) > combat.MonsterDistanceActivation
}

// stepToward picks the next single-axis step from mPos towards tPos,
// ported verbatim from movement.rs move_towards_target: far apart on both
// axes moves a uniformly random one of the two axes; aligned-but-distant
// on one axis moves toward it 5/6 of the time and dodges to one side 1/6
// of the time; adjacent-in-line takes the final step that lets
// CombatCheck turn it into an attack. Never both axes at once.
func stepToward(res *game.Resources, mPos, tPos *world.Position) (int8, int8) {
	diffX, diffY := mPos.X-tPos.X, mPos.Y-tPos.Y
	newX, newY := mPos.X, mPos.Y

	switch {
	case (abs(diffX) >= 1 && abs(diffY) >= 1) || (diffX == 0 && diffY == 0):
		if res.Rand.Intn(2) == 0 {
			newX = moveTowards(diffX, mPos.X)
		} else {
			newY = moveTowards(diffY, mPos.Y)
		}
	case abs(diffX) > 1 && diffY == 0:
		if res.Rand.Intn(6) > 0 {
			newX = moveTowards(diffX, mPos.X)
		} else if res.Rand.Intn(2) == 0 {
			newY = moveTowards(diffY+1, mPos.Y)
		} else {
			newY = moveTowards(diffY-1, mPos.Y)
		}
	case diffX == 0 && abs(diffY) > 1:
		if res.Rand.Intn(6) > 0 {
			newY = moveTowards(diffY, mPos.Y)
		} else if res.Rand.Intn(2) == 0 {
			newX = moveTowards(diffX+1, mPos.X)
		} else {
			newX = moveTowards(diffX-1, mPos.X)
		}
	case abs(diffX) == 1 && diffY == 0:
		newX = moveTowards(diffX, mPos.X)
	case diffX == 0 && abs(diffY) == 1:
		newY = moveTowards(diffY, mPos.Y)
	}
	return int8(newX - mPos.X), int8(newY - mPos.Y)
}

func moveTowards(diff, position int) int {
	if diff > 0 {
		return position - 1
	}
	return position + 1
}

// moveRandomly picks one of the four cardinal directions uniformly,
// ported from movement.rs move_randomly.
func moveRandomly(res *game.Resources) (int8, int8) {
	switch res.Rand.Intn(4) {
	case 0:
		return 1, 0
	case 1:
		return -1, 0
	case 2:
		return 0, 1
	default:
		return 0, -1
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
