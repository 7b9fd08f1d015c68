package combat

import "math"

// Weapon and Armour are the minimal inputs resolve_combat needs from an
// entity's equipped Inventory, kept separate from world.Item so this
// package never imports internal/world (avoids a combat<->world cycle
// since world systems import combat, not the reverse).
type Weapon struct {
	DamageMin, DamageMax float64
	Accuracy             float64
}

type Combatant struct {
	Str, Dex int
}

type Armour struct {
	DamageReduction float64
}

// Hit decides whether an attack connects:
// accuracy = weapon.accuracy + (100-accuracy)*atk.dex/100 - (100-accuracy)*def.dex/100
// hit iff accuracy >= U(0,100]. roll must be in [0,100].
func Hit(w Weapon, attacker, defender Combatant, roll float64) bool {
	accuracy := w.Accuracy +
		(100-w.Accuracy)*float64(attacker.Dex)/100 -
		(100-w.Accuracy)*float64(defender.Dex)/100
	return accuracy >= roll
}

// Damage computes the rounded damage a successful hit deals:
// damage = round(U(min,max) * (1+str/100) * (1-armour/100)).
// weaponRoll must already be a uniform draw in [min, max].
func Damage(w Weapon, attacker Combatant, atkStr int, armour Armour, weaponRoll float64) int {
	dealt := weaponRoll * (1 + float64(atkStr)/100)
	received := dealt * (1 - armour.DamageReduction/100)
	return int(math.Round(received))
}

// Regen computes the per-regen-tick HP gain for a non-combat entity:
// round(max_hp*0.0075 + con*0.02 + con/5).
func Regen(maxHP, con int) int {
	v := float64(maxHP)*BaseHealthRegenPercent/100 +
		float64(con)*HealthRegenConPercent/100 +
		float64(con)/HealthRegenConStaticFactor
	return int(math.Round(v))
}

// MonsterExp is the exp awarded for killing a monster of the given level.
func MonsterExp(monsterLevel int) int64 {
	return int64(monsterLevel) * MonsterExpMultiplicationFac
}

// ExpAfterDeathPenalty applies the fixed death exp loss, never dropping
// below the current level's cumulative floor (0 at level 1).
func ExpAfterDeathPenalty(level int, exp int64) int64 {
	loss := exp * ExpLossOnDeathPercentage / 100
	newExp := exp - loss
	floor := int64(0)
	if level > 1 {
		floor = CumulativeExpTable[level-2]
	}
	if newExp < floor {
		newExp = floor
	}
	return newExp
}

// PvPGoldLoss is the gold a defeated player forfeits to their killer,
// only triggered when the defender holds more than 100 gold.
func PvPGoldLoss(defenderGold int64) int64 {
	if defenderGold <= 100 {
		return 0
	}
	return defenderGold * GoldLossOnPvPDeathPercent / 100
}
