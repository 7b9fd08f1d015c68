// Package scripting loads combat and regen formula overrides from Lua
// once at boot, so operators can retune rates without a rebuild. Adapted from the
// teacher's internal/scripting/engine.go (gopher-lua engine wrapping a
// single *lua.LState, loaded once at boot from subdirectories), repointed
// from Lineage melee/ranged attack tables to this project's three
// formulas: calc_hit, calc_damage, calc_regen (SPEC_FULL.md §4.G). Falls
// back to the Go implementation in internal/combat whenever a script
// doesn't define the function, or a call errors — the engine never lets
// a bad script crash the tick loop.
package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for formula overrides.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads every .lua file under
// scriptsDir/combat. A missing directory is not an error — it just means
// no overrides are installed and every formula falls back to Go.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	combatPath := filepath.Join(scriptsDir, "combat")
	if err := e.loadDir(combatPath); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load combat scripts: %w", err)
	}
	return e, nil
}

func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// HitContext is the pre-packed input to an overridable calc_hit(ctx).
type HitContext struct {
	WeaponAccuracy       float64
	AttackerDex, DefenderDex int
	Roll                 float64 // uniform draw in [0,100], passed in so Lua stays deterministic-testable
}

// HasHit calls Lua calc_hit(ctx) if defined, else falls back to
// combat.Hit's formula (the caller supplies that fallback).
func (e *Engine) HasHit(ctx HitContext, fallback func() bool) bool {
	fn := e.vm.GetGlobal("calc_hit")
	if fn == lua.LNil {
		return fallback()
	}
	t := e.vm.NewTable()
	t.RawSetString("weapon_accuracy", lua.LNumber(ctx.WeaponAccuracy))
	t.RawSetString("attacker_dex", lua.LNumber(ctx.AttackerDex))
	t.RawSetString("defender_dex", lua.LNumber(ctx.DefenderDex))
	t.RawSetString("roll", lua.LNumber(ctx.Roll))

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, t); err != nil {
		e.log.Error("lua calc_hit error", zap.Error(err))
		return fallback()
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return result == lua.LTrue
}

// DamageContext is the pre-packed input to an overridable calc_damage(ctx).
type DamageContext struct {
	WeaponRoll      float64 // uniform draw in [min,max]
	AttackerStr     int
	ArmourReduction float64
}

// Damage calls Lua calc_damage(ctx) if defined, else falls back.
func (e *Engine) Damage(ctx DamageContext, fallback func() int) int {
	fn := e.vm.GetGlobal("calc_damage")
	if fn == lua.LNil {
		return fallback()
	}
	t := e.vm.NewTable()
	t.RawSetString("weapon_roll", lua.LNumber(ctx.WeaponRoll))
	t.RawSetString("attacker_str", lua.LNumber(ctx.AttackerStr))
	t.RawSetString("armour_reduction", lua.LNumber(ctx.ArmourReduction))

	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, t); err != nil {
		e.log.Error("lua calc_damage error", zap.Error(err))
		return fallback()
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return int(lua.LVAsNumber(result))
}

// Regen calls Lua calc_regen(max_hp, con) if defined, else falls back.
func (e *Engine) Regen(maxHP, con int, fallback func() int) int {
	fn := e.vm.GetGlobal("calc_regen")
	if fn == lua.LNil {
		return fallback()
	}
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true},
		lua.LNumber(maxHP), lua.LNumber(con)); err != nil {
		e.log.Error("lua calc_regen error", zap.Error(err))
		return fallback()
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return int(lua.LVAsNumber(result))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
