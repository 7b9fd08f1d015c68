package system

import (
	"time"

	"github.com/pbellchambers/rustyhack-server-go/internal/ecs"
	"github.com/pbellchambers/rustyhack-server-go/internal/game"
	"github.com/pbellchambers/rustyhack-server-go/internal/tick"
	"github.com/pbellchambers/rustyhack-server-go/internal/world"
)

// Publish is the player pipeline's own Output-phase system: it gives the
// moving/fighting player an immediate state update without waiting for
// the next broadcast-pipeline run, by collating just that player's
// components (not the whole world) — step 7 of §4.F. The broadcast
// pipeline's Collate+Emit still runs independently for every other
// online player who needs to see the change.
type Publish struct {
	res *game.Resources
}

func NewPublish(res *game.Resources) *Publish {
	return &Publish{res: res}
}

func (s *Publish) Phase() tick.Phase { return tick.PhaseOutput }

func (s *Publish) Update(time.Duration) {
	w := s.res.World
	w.PlayerIdentity.Each(func(id ecs.EntityID, pi *world.PlayerIdentity) {
		if !pi.Online {
			return
		}
		pos, hasPos := w.Position.Get(id)
		st, hasStats := w.Stats.Get(id)
		inv, hasInv := w.Inventory.Get(id)
		changed := (hasPos && pos.UpdateAvailable) || (hasStats && st.UpdateAvailable) || (hasInv && inv.UpdateAvailable)
		if changed && s.res.Publish != nil {
			s.res.Publish(id)
		}
	})
}
