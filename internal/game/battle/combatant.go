// Package battle implements the time-based autonomous battle simulator.
package battle

import (
	"github.com/cory-johannsen/decade/internal/game/character"
	"github.com/cory-johannsen/decade/internal/game/content"
)

// Side distinguishes the player from the enemy.
type Side string

const (
	SidePlayer Side = "player"
	SideEnemy  Side = "enemy"
)

// Outcome is the terminal state of a battle.
type Outcome string

const (
	Victory Outcome = "victory"
	Defeat  Outcome = "defeat"
	Draw    Outcome = "draw"
	Fled    Outcome = "fled"
)

// Class damage weights.
const (
	WarriorWeight = 1.2
	MageWeight    = 1.3
	RogueWeight   = 1.1
	EnemyWeight   = 1.0
)

// Combatant is one participant's battle-local state.
type Combatant struct {
	Side      Side
	Name      string
	MaxHP     int
	CurrentHP int
	// AttackStat is the class-specific stat behind regular strikes.
	AttackStat int
	Weight     float64
	Agility    int
	Endurance  int
	Luck       int
}

// IsPlayer reports whether c is the player.
func (c *Combatant) IsPlayer() bool { return c.Side == SidePlayer }

// Alive reports whether c has health remaining.
func (c *Combatant) Alive() bool { return c.CurrentHP > 0 }

// ApplyDamage reduces CurrentHP by amount. CurrentHP may go negative; callers
// report it floored at zero.
//
// Precondition: amount must be >= 0.
func (c *Combatant) ApplyDamage(amount int) {
	c.CurrentHP -= amount
}

// Heal restores up to amount health, capped at MaxHP.
//
// Postcondition: CurrentHP <= MaxHP.
func (c *Combatant) Heal(amount int) int {
	before := c.CurrentHP
	c.CurrentHP = min(c.CurrentHP+amount, c.MaxHP)
	return c.CurrentHP - before
}

// Defense returns the flat damage reduction c applies to incoming hits.
func (c *Combatant) Defense() int { return c.Endurance / 5 }

// PlayerCombatant builds the player side from c.
func PlayerCombatant(c *character.Character) *Combatant {
	stat, weight := classAttack(c)
	return &Combatant{
		Side:       SidePlayer,
		Name:       c.Name,
		MaxHP:      c.MaxHealth,
		CurrentHP:  c.CurrentHealth,
		AttackStat: stat,
		Weight:     weight,
		Agility:    c.Stats.Agility,
		Endurance:  c.Stats.Endurance,
		Luck:       c.Stats.Luck,
	}
}

// EnemyCombatant builds the enemy side from e.
func EnemyCombatant(e *content.EnemyTemplate) *Combatant {
	return &Combatant{
		Side:       SideEnemy,
		Name:       e.Name,
		MaxHP:      e.Health,
		CurrentHP:  e.Health,
		AttackStat: max(e.Strength, e.Intelligence),
		Weight:     EnemyWeight,
		Agility:    e.Agility,
		Endurance:  e.Endurance,
	}
}

func classAttack(c *character.Character) (int, float64) {
	switch c.Class {
	case character.Mage:
		return c.Stats.Intelligence, MageWeight
	case character.Rogue:
		return c.Stats.Agility, RogueWeight
	default:
		return c.Stats.Strength, WarriorWeight
	}
}
