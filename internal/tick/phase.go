// Package tick is the Tick Scheduler (SPEC_FULL.md §4.E): three
// independent wall-clock timers (player-input-driven, server/monster tick,
// broadcast) plus a backup snapshot timer, all multiplexed onto one
// LoopTick cadence. Directly generalizes the teacher's
// internal/core/system.Runner (phase-sorted System list, one Tick per
// call) from a single cadence to three, and its cmd/l1jgo/main.go
// dual-ticker main loop (systemTicker + inputPoll) from two timers to the
// spec's three-plus-backup schedule.
package tick

import (
	"sort"
	"time"
)

// Phase orders system execution within one pipeline run, matching the
// teacher's system.Phase enum.
type Phase int

const (
	PhaseInput Phase = iota
	PhasePreUpdate
	PhaseUpdate
	PhasePostUpdate
	PhaseOutput
	PhasePersist
	PhaseCleanup
)

// System is a single unit of per-pipeline-run work.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

// Pipeline runs its registered systems in phase order once per Run call —
// the player-update, server-tick, and broadcast pipelines of §4.F are each
// one Pipeline.
type Pipeline struct {
	name    string
	systems []System
	sorted  bool
}

func NewPipeline(name string) *Pipeline {
	return &Pipeline{name: name, systems: make([]System, 0, 16)}
}

func (p *Pipeline) Register(s System) {
	p.systems = append(p.systems, s)
	p.sorted = false
}

func (p *Pipeline) Name() string { return p.name }

func (p *Pipeline) Run(dt time.Duration) {
	if !p.sorted {
		sort.SliceStable(p.systems, func(i, j int) bool {
			return p.systems[i].Phase() < p.systems[j].Phase()
		})
		p.sorted = true
	}
	for _, s := range p.systems {
		s.Update(dt)
	}
}
