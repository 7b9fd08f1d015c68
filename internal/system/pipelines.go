package system

import (
	"go.uber.org/zap"

	"github.com/pbellchambers/rustyhack-server-go/internal/game"
	"github.com/pbellchambers/rustyhack-server-go/internal/tick"
)

// BuildPipelines assembles the four pipelines the Tick Scheduler drives —
// player (input-driven), server (monster AI/respawn), broadcast (collate
// + emit), and regen — in the exact step order SPEC_FULL.md §4.F lists.
// Registration order within a phase is preserved by Pipeline.Run's stable
// sort, so CombatCheck (which must see an unmolested velocity) is
// registered before TileCollision even though both are PhaseUpdate.
func BuildPipelines(res *game.Resources, log *zap.Logger) (player, serverTk, broadcast, regen *tick.Pipeline) {
	player = tick.NewPipeline("player")
	player.Register(NewResetPopulate(res))
	player.Register(NewCombatCheck(res))
	player.Register(NewTileCollision(res))
	player.Register(NewApplyMovement(res))
	player.Register(NewMapExit(res))
	player.Register(NewResolveCombat(res, log))
	player.Register(NewApplyCombatGains(res))
	player.Register(NewLevelUp(res))
	player.Register(NewMonsterDeath(res))
	player.Register(NewPlayerDeathResolution(res))
	player.Register(NewPublish(res))
	player.Register(NewCleanup(res.World.ECS))

	serverTk = tick.NewPipeline("server")
	serverTk.Register(NewResetPopulate(res))
	serverTk.Register(NewMonsterAI(res))
	serverTk.Register(NewCombatCheck(res))
	serverTk.Register(NewTileCollision(res))
	serverTk.Register(NewApplyMovement(res))
	serverTk.Register(NewMapExit(res))
	serverTk.Register(NewResolveCombat(res, log))
	serverTk.Register(NewApplyCombatGains(res))
	serverTk.Register(NewLevelUp(res))
	serverTk.Register(NewMonsterDeath(res))
	serverTk.Register(NewRespawn(res))
	serverTk.Register(NewPublish(res))
	serverTk.Register(NewCleanup(res.World.ECS))

	broadcast = tick.NewPipeline("broadcast")
	broadcast.Register(NewCollate(res))
	broadcast.Register(NewPlayerUpdates(res))
	broadcast.Register(NewEmit(res))
	broadcast.Register(NewCleanup(res.World.ECS))

	regen = tick.NewPipeline("regen")
	regen.Register(NewRegen(res))
	regen.Register(NewCleanup(res.World.ECS))

	return player, serverTk, broadcast, regen
}
