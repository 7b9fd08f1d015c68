package system

import (
	"time"

	"github.com/pbellchambers/rustyhack-server-go/internal/ecs"
	"github.com/pbellchambers/rustyhack-server-go/internal/game"
	"github.com/pbellchambers/rustyhack-server-go/internal/tick"
	"github.com/pbellchambers/rustyhack-server-go/internal/world"
)

// TileCollision resolves every entity's pending VelX/VelY intent against
// the Map Registry's tile data and the Map State Index's occupant
// collision, step 3 of §4.F. A blocked move is zeroed in place; an
// unblocked move is left for ApplyMovement. Ported from
// original_source's movement_systems.rs move_player/move_monster
// collision gate.
type TileCollision struct {
	res *game.Resources
}

func NewTileCollision(res *game.Resources) *TileCollision {
	return &TileCollision{res: res}
}

func (s *TileCollision) Phase() tick.Phase { return tick.PhaseUpdate }

func (s *TileCollision) Update(time.Duration) {
	w := s.res.World
	w.Position.Each(func(id ecs.EntityID, pos *world.Position) {
		if pos.VelX == 0 && pos.VelY == 0 {
			return
		}
		destX, destY := pos.X+int(pos.VelX), pos.Y+int(pos.VelY)

		if s.res.Maps.TileAt(pos.Map, destX, destY).Collidable() {
			pos.VelX, pos.VelY = 0, 0
			return
		}
		if blocked, occ := s.res.Index.CollisionAt(pos.Map, destX, destY); blocked && occ.EntityID != id {
			pos.VelX, pos.VelY = 0, 0
		}
	})
}

// ApplyMovement commits every still-pending VelX/VelY to X/Y and zeroes
// it — velocity never survives past the phase that consumed it.
type ApplyMovement struct {
	res *game.Resources
}

func NewApplyMovement(res *game.Resources) *ApplyMovement {
	return &ApplyMovement{res: res}
}

func (s *ApplyMovement) Phase() tick.Phase { return tick.PhaseUpdate }

func (s *ApplyMovement) Update(time.Duration) {
	s.res.World.Position.Each(func(_ ecs.EntityID, pos *world.Position) {
		if pos.VelX == 0 && pos.VelY == 0 {
			return
		}
		pos.X += int(pos.VelX)
		pos.Y += int(pos.VelY)
		pos.VelX, pos.VelY = 0, 0
		pos.UpdateAvailable = true
	})
}
