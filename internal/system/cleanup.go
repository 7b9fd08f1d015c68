package system

import (
	"time"

	"github.com/pbellchambers/rustyhack-server-go/internal/ecs"
	"github.com/pbellchambers/rustyhack-server-go/internal/tick"
)

// Cleanup flushes the deferred entity destruction queue at the end of
// every pipeline run, not just end of tick — SPEC_FULL.md §4.C.
type Cleanup struct {
	world *ecs.World
}

func NewCleanup(world *ecs.World) *Cleanup {
	return &Cleanup{world: world}
}

func (s *Cleanup) Phase() tick.Phase { return tick.PhaseCleanup }

func (s *Cleanup) Update(time.Duration) {
	s.world.FlushDestroyQueue()
}
