// Package progression implements leveling, final scoring, and ending selection.
package progression

import "github.com/cory-johannsen/decade/internal/game/character"

// Level-up pool increases.
const (
	HealthPerLevel = 10
	EnergyPerLevel = 5
)

// Ending is the epilogue tier awarded when the timeline completes.
type Ending string

const (
	EndingLegend     Ending = "legend"
	EndingHero       Ending = "hero"
	EndingAdventurer Ending = "adventurer"
	EndingWanderer   Ending = "wanderer"
	EndingCommoner   Ending = "commoner"
)

// Narrative returns the epilogue line for e.
func (e Ending) Narrative() string {
	switch e {
	case EndingLegend:
		return "Bards will sing of your deeds for a thousand years."
	case EndingHero:
		return "The realm remembers you as a hero."
	case EndingAdventurer:
		return "You retire a seasoned adventurer with tales to spare."
	case EndingWanderer:
		return "You wander on, wiser if not richer."
	default:
		return "You return to a quiet life among common folk."
	}
}

// LevelUp summarizes a level increase.
type LevelUp struct {
	FromLevel       int `json:"from_level"`
	ToLevel         int `json:"to_level"`
	MaxHealthBefore int `json:"max_health_before"`
	MaxHealthAfter  int `json:"max_health_after"`
	MaxEnergyBefore int `json:"max_energy_before"`
	MaxEnergyAfter  int `json:"max_energy_after"`
}

// ExperienceRequiredForLevel returns level² × 50.
func ExperienceRequiredForLevel(level int) int {
	return level * level * 50
}

// CheckLevelUp raises c by one level if its experience meets the requirement for
// the next level.
//
// Precondition: c must be non-nil.
// Postcondition: On level-up, Level is incremented once, MaxHealth grows by
// HealthPerLevel, MaxEnergy by EnergyPerLevel, both pools are refilled, and a
// non-nil summary is returned. Otherwise c is untouched and nil is returned.
func CheckLevelUp(c *character.Character) *LevelUp {
	if c.Experience < ExperienceRequiredForLevel(c.Level+1) {
		return nil
	}
	lu := &LevelUp{
		FromLevel:       c.Level,
		MaxHealthBefore: c.MaxHealth,
		MaxEnergyBefore: c.MaxEnergy,
	}
	c.Level++
	c.MaxHealth += HealthPerLevel
	c.MaxEnergy += EnergyPerLevel
	c.CurrentHealth = c.MaxHealth
	c.CurrentEnergy = c.MaxEnergy

	lu.ToLevel = c.Level
	lu.MaxHealthAfter = c.MaxHealth
	lu.MaxEnergyAfter = c.MaxEnergy
	return lu
}

// FinalScore returns TotalPower×10 + Level×100 + Gold/10 + Reputation×5 + victories×50.
func FinalScore(c *character.Character, victories int) int {
	return c.TotalPower()*10 + c.Level*100 + c.Gold/10 + c.Reputation*5 + victories*50
}

// DetermineEnding walks the ending ladder top-down; the first match wins.
func DetermineEnding(c *character.Character) Ending {
	power := c.TotalPower()
	switch {
	case power >= 500 && c.Reputation >= 100:
		return EndingLegend
	case power >= 400:
		return EndingHero
	case power >= 300:
		return EndingAdventurer
	case power >= 200:
		return EndingWanderer
	default:
		return EndingCommoner
	}
}
