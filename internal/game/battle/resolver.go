package battle

import (
	"github.com/cory-johannsen/decade/internal/game/content"
	"github.com/cory-johannsen/decade/internal/game/dice"
)

// Strike constants.
const (
	BaseCritChance      = 0.05
	CritMultiplier      = 1.5
	MinFlatBonus        = 1
	MaxFlatBonus        = 10
	MaxDamageReduction  = 75.0
	CounterDamageFactor = 2
)

// AttackResult holds the outcome of a single strike before passive layers.
type AttackResult struct {
	// BaseDamage is AttackStat × Weight / 2 plus the flat bonus.
	BaseDamage int
	FlatBonus  int
	Critical   bool
	// Damage is the post-critical, post-defense amount, at least 1.
	Damage int
}

// Passives is the summed passive modifiers of a character's skills, in whole percents.
type Passives struct {
	Evasion         float64
	LifeSteal       float64
	Critical        float64
	DamageReduction float64
	Thorns          float64
	Counter         float64
}

// SumPassives totals every PassiveSkill in skills.
func SumPassives(skills []content.Skill) Passives {
	var p Passives
	for _, s := range skills {
		ps, ok := s.(*content.PassiveSkill)
		if !ok {
			continue
		}
		p.Evasion += ps.EvasionPercent
		p.LifeSteal += ps.LifeStealPercent
		p.Critical += ps.CriticalPercent
		p.DamageReduction += ps.DamageReductionPercent
		p.Thorns += ps.ThornsPercent
		p.Counter += ps.CounterPercent
	}
	return p
}

// ResolveStrike rolls a regular class-weighted strike from attacker against target.
// critBonus is an extra critical chance in whole percents.
//
// Precondition: attacker, target, and rng must be non-nil.
// Postcondition: Damage >= 1.
func ResolveStrike(attacker, target *Combatant, critBonus float64, rng dice.RNG) AttackResult {
	flat := rng.UniformIntRange(MinFlatBonus, MaxFlatBonus)
	base := int(float64(attacker.AttackStat)*attacker.Weight/2) + flat
	critChance := BaseCritChance + float64(attacker.Luck)/1000 + critBonus/100
	crit := rng.Chance(critChance)
	raw := base
	if crit {
		raw = int(float64(base) * CritMultiplier)
	}
	return AttackResult{
		BaseDamage: base,
		FlatBonus:  flat,
		Critical:   crit,
		Damage:     max(raw-target.Defense(), 1),
	}
}

// CounterDamage is the damage of a counter-attack: half a regular non-critical strike.
//
// Postcondition: Returns >= 1.
func CounterDamage(attacker, target *Combatant, rng dice.RNG) int {
	flat := rng.UniformIntRange(MinFlatBonus, MaxFlatBonus)
	base := int(float64(attacker.AttackStat)*attacker.Weight/2) + flat
	return max((base-target.Defense())/CounterDamageFactor, 1)
}

// SkillDamage returns the damage of an active skill proc against target.
//
// Postcondition: Returns >= 1.
func SkillDamage(s *content.ActiveSkill, scalingValue int, target *Combatant) int {
	dmg := s.BaseDamage + int(float64(scalingValue)*s.Scaling)
	return max(dmg-target.Defense(), 1)
}

// ReduceIncoming applies a damage-reduction percentage, capped at MaxDamageReduction.
//
// Postcondition: Returns >= 1 when damage >= 1.
func ReduceIncoming(damage int, reductionPercent float64) int {
	pct := min(reductionPercent, MaxDamageReduction)
	if pct <= 0 {
		return damage
	}
	return max(int(float64(damage)*(1-pct/100)), 1)
}
