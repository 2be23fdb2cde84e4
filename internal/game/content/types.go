// Package content defines the immutable authored game data consumed by the
// simulation: enemy templates, skills, random events, training scenarios, and
// storybooks. Content is loaded from YAML, validated once, and read-only after.
package content

import (
	"fmt"

	"github.com/cory-johannsen/decade/internal/game/character"
)

// Action is a player turn action.
type Action string

const (
	ActionTrain   Action = "train"
	ActionRest    Action = "rest"
	ActionExplore Action = "explore"
	ActionBattle  Action = "battle"
	ActionStudy   Action = "study"

	// ActionChoice marks a recorded event choice. It is not a playable turn.
	ActionChoice Action = "choice"
)

// ParseAction returns the Action named s.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionTrain, ActionRest, ActionExplore, ActionBattle, ActionStudy:
		return Action(s), nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Rarity grades how uncommon a random event is.
type Rarity string

const (
	Common    Rarity = "common"
	Uncommon  Rarity = "uncommon"
	Rare      Rarity = "rare"
	Epic      Rarity = "epic"
	Legendary Rarity = "legendary"
)

// Boost returns the weight multiplier applied when higher rarities are preferred.
// Unknown rarities boost like Common.
func (r Rarity) Boost() float64 {
	switch r {
	case Uncommon:
		return 1.5
	case Rare:
		return 2.0
	case Epic:
		return 2.5
	case Legendary:
		return 3.0
	default:
		return 1.0
	}
}

// EnemyTemplate is a read-only combat opponent.
type EnemyTemplate struct {
	ID               int64              `yaml:"id"`
	Name             string             `yaml:"name"`
	Description      string             `yaml:"description"`
	Strength         int                `yaml:"strength"`
	Agility          int                `yaml:"agility"`
	Intelligence     int                `yaml:"intelligence"`
	Endurance        int                `yaml:"endurance"`
	Health           int                `yaml:"health"`
	Tier             int                `yaml:"tier"`
	ExperienceReward int                `yaml:"experience_reward"`
	GoldReward       int                `yaml:"gold_reward"`
	ReputationReward int                `yaml:"reputation_reward"`
	Seasons          []character.Season `yaml:"seasons"`
}

// Validate checks that the template satisfies basic invariants.
//
// Postcondition: Returns nil iff ID > 0, Name is non-empty, Health >= 1, Tier in
// [1, 10], rewards are non-negative, and every season is known.
func (e *EnemyTemplate) Validate() error {
	if e.ID <= 0 {
		return fmt.Errorf("enemy: id must be > 0")
	}
	if e.Name == "" {
		return fmt.Errorf("enemy %d: name must not be empty", e.ID)
	}
	if e.Health < 1 {
		return fmt.Errorf("enemy %d: health must be >= 1", e.ID)
	}
	if e.Tier < 1 || e.Tier > 10 {
		return fmt.Errorf("enemy %d: tier must be 1-10, got %d", e.ID, e.Tier)
	}
	if e.ExperienceReward < 0 || e.GoldReward < 0 || e.ReputationReward < 0 {
		return fmt.Errorf("enemy %d: rewards must be >= 0", e.ID)
	}
	return validateSeasons(fmt.Sprintf("enemy %d", e.ID), e.Seasons)
}

// AllowedIn reports whether the enemy may appear in season s.
func (e *EnemyTemplate) AllowedIn(s character.Season) bool {
	return seasonAllowed(e.Seasons, s)
}

// Storybook is an equippable item granting percentage training bonuses.
type Storybook struct {
	ID          int64                  `yaml:"id"`
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	StatBonuses map[character.Stat]int `yaml:"stat_bonuses"`
}

// Validate checks the storybook's invariants.
func (b *Storybook) Validate() error {
	if b.ID <= 0 {
		return fmt.Errorf("storybook: id must be > 0")
	}
	if b.Name == "" {
		return fmt.Errorf("storybook %d: name must not be empty", b.ID)
	}
	for st, pct := range b.StatBonuses {
		if _, err := character.ParseStat(string(st)); err != nil {
			return fmt.Errorf("storybook %d: %w", b.ID, err)
		}
		if pct < 0 {
			return fmt.Errorf("storybook %d: bonus for %s must be >= 0", b.ID, st)
		}
	}
	return nil
}

// Equipped converts the storybook into a loadout entry for slot.
func (b *Storybook) Equipped(slot int) character.EquippedItem {
	return character.EquippedItem{
		Slot:        slot,
		ItemID:      b.ID,
		Name:        b.Name,
		StatBonuses: b.StatBonuses,
	}
}

func validateSeasons(owner string, seasons []character.Season) error {
	for _, s := range seasons {
		if _, ok := character.ParseSeason(string(s)); !ok {
			return fmt.Errorf("%s: unknown season %q", owner, s)
		}
	}
	return nil
}

func seasonAllowed(seasons []character.Season, s character.Season) bool {
	if len(seasons) == 0 {
		return true
	}
	for _, allowed := range seasons {
		if allowed == s {
			return true
		}
	}
	return false
}
