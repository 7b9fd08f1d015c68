package tick

import (
	"time"

	"go.uber.org/zap"
)

// Scheduler drives the Player, ServerTick, Broadcast, Regen, and Snapshot
// pipelines off their own wall-clock timers at the fixed LoopTick cadence.
// The three gameplay clocks (player/server/broadcast) are never merged —
// SPEC_FULL.md §9 — even though they share one loop goroutine.
type Scheduler struct {
	log *zap.Logger

	loopTick      time.Duration
	serverTick    time.Duration
	broadcastTick time.Duration
	regenTick     time.Duration
	snapshotTick  time.Duration

	player     *Pipeline
	serverTk   *Pipeline
	broadcast  *Pipeline
	regen      *Pipeline
	onSnapshot func()

	// PlayerDue is set by the caller (the dispatcher drain) whenever an
	// inbound request mutated a player; cleared after the player pipeline runs.
	PlayerDue bool

	stop chan struct{}
}

type Config struct {
	LoopTick      time.Duration
	ServerTick    time.Duration
	BroadcastTick time.Duration
	RegenTick     time.Duration
	SnapshotTick  time.Duration
}

func NewScheduler(cfg Config, log *zap.Logger, player, serverTk, broadcast, regen *Pipeline, onSnapshot func()) *Scheduler {
	return &Scheduler{
		log:           log,
		loopTick:      cfg.LoopTick,
		serverTick:    cfg.ServerTick,
		broadcastTick: cfg.BroadcastTick,
		regenTick:     cfg.RegenTick,
		snapshotTick:  cfg.SnapshotTick,
		player:        player,
		serverTk:      serverTk,
		broadcast:     broadcast,
		regen:         regen,
		onSnapshot:    onSnapshot,
		stop:          make(chan struct{}),
	}
}

// Run blocks, driving pipelines until Stop is called. drainInbound is
// invoked every loop iteration and must return true if it mutated any
// player state (queuing the player pipeline for this iteration).
func (s *Scheduler) Run(drainInbound func() bool) {
	loop := time.NewTicker(s.loopTick)
	defer loop.Stop()

	var sinceServer, sinceBroadcast, sinceRegen, sinceSnapshot time.Duration
	last := time.Now()

	for {
		select {
		case <-s.stop:
			s.runSnapshot()
			return
		case now := <-loop.C:
			dt := now.Sub(last)
			last = now
			if dt > 2*s.loopTick {
				s.log.Warn("loop overran, resuming without catch-up burst",
					zap.Duration("actual", dt), zap.Duration("target", s.loopTick))
			}

			if drainInbound() {
				s.PlayerDue = true
			}
			sinceServer += dt
			sinceBroadcast += dt
			sinceRegen += dt
			sinceSnapshot += dt

			if s.PlayerDue {
				s.player.Run(dt)
				s.PlayerDue = false
			}
			if sinceServer >= s.serverTick {
				s.serverTk.Run(sinceServer)
				sinceServer = 0
			}
			if sinceRegen >= s.regenTick {
				s.regen.Run(sinceRegen)
				sinceRegen = 0
			}
			if sinceBroadcast >= s.broadcastTick {
				s.broadcast.Run(sinceBroadcast)
				sinceBroadcast = 0
			}
			if sinceSnapshot >= s.snapshotTick {
				s.runSnapshot()
				sinceSnapshot = 0
			}
		}
	}
}

func (s *Scheduler) runSnapshot() {
	if s.onSnapshot != nil {
		s.onSnapshot()
	}
}

// Stop requests the loop exit after one final snapshot — mirrors the
// teacher's shutdown-saves-all-players-before-exit behaviour.
func (s *Scheduler) Stop() {
	close(s.stop)
}
