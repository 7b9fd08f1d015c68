package system

import (
	"time"

	"github.com/pbellchambers/rustyhack-server-go/internal/ecs"
	"github.com/pbellchambers/rustyhack-server-go/internal/game"
	"github.com/pbellchambers/rustyhack-server-go/internal/tick"
	"github.com/pbellchambers/rustyhack-server-go/internal/world"
)

// MapExit checks every online player's tile against the Map Registry's
// exit table (assets/map_exits/<name>.json, written by cmd/mapexitconv)
// and relocates anyone standing on one. Runs after ApplyMovement so the
// check sees the player's post-move position, and before Publish so the
// map change is included in the same player-pipeline ack.
type MapExit struct {
	res *game.Resources
}

func NewMapExit(res *game.Resources) *MapExit {
	return &MapExit{res: res}
}

func (s *MapExit) Phase() tick.Phase { return tick.PhaseUpdate }

func (s *MapExit) Update(time.Duration) {
	w := s.res.World
	w.PlayerIdentity.Each(func(id ecs.EntityID, pi *world.PlayerIdentity) {
		if !pi.Online {
			return
		}
		pos, ok := w.Position.Get(id)
		if !ok {
			return
		}
		exit, ok := s.res.Maps.ExitAt(pos.Map, pos.X, pos.Y)
		if !ok {
			return
		}
		pos.Map = exit.DestMap
		pos.X, pos.Y = exit.DestX, exit.DestY
		pos.VelX, pos.VelY = 0, 0
		pos.UpdateAvailable = true
	})
}
