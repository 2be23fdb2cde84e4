package content

import (
	"fmt"

	"github.com/cory-johannsen/decade/internal/game/character"
)

// ScenarioKind separates physical training from study sessions.
type ScenarioKind string

const (
	KindTraining ScenarioKind = "training"
	KindStudy    ScenarioKind = "study"
)

// TrainingScenario describes one training or study activity.
type TrainingScenario struct {
	ID          int64        `yaml:"id"`
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Kind        ScenarioKind `yaml:"kind"`

	PrimaryStat   character.Stat `yaml:"primary_stat"`
	PrimaryGain   int            `yaml:"primary_gain"`
	SecondaryStat character.Stat `yaml:"secondary_stat"`
	SecondaryGain int            `yaml:"secondary_gain"`
	TertiaryStat  character.Stat `yaml:"tertiary_stat"`
	TertiaryGain  int            `yaml:"tertiary_gain"`

	EnergyCost           int     `yaml:"energy_cost"`
	BonusChance          float64 `yaml:"bonus_chance"`
	BonusAmount          int     `yaml:"bonus_amount"`
	FailureChance        float64 `yaml:"failure_chance"`
	FailureHealthPenalty int     `yaml:"failure_health_penalty"`

	// Seasons lists the bonus seasons in which SeasonMultiplier applies.
	Seasons          []character.Season `yaml:"seasons"`
	SeasonMultiplier float64            `yaml:"season_multiplier"`

	ExperienceReward int `yaml:"experience_reward"`
	RequiredLevel    int `yaml:"required_level"`
}

// InBonusSeason reports whether s is one of the scenario's bonus seasons.
func (t *TrainingScenario) InBonusSeason(s character.Season) bool {
	for _, bonus := range t.Seasons {
		if bonus == s {
			return true
		}
	}
	return false
}

// Validate checks the scenario's invariants.
func (t *TrainingScenario) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("training: id must be > 0")
	}
	if t.Name == "" {
		return fmt.Errorf("training %d: name must not be empty", t.ID)
	}
	switch t.Kind {
	case KindTraining, KindStudy:
	default:
		return fmt.Errorf("training %d: kind must be training or study, got %q", t.ID, t.Kind)
	}
	if _, err := character.ParseStat(string(t.PrimaryStat)); err != nil {
		return fmt.Errorf("training %d: primary_stat: %w", t.ID, err)
	}
	for _, st := range []character.Stat{t.SecondaryStat, t.TertiaryStat} {
		if st == "" {
			continue
		}
		if _, err := character.ParseStat(string(st)); err != nil {
			return fmt.Errorf("training %d: %w", t.ID, err)
		}
	}
	if t.EnergyCost < 0 {
		return fmt.Errorf("training %d: energy_cost must be >= 0", t.ID)
	}
	for name, p := range map[string]float64{"bonus_chance": t.BonusChance, "failure_chance": t.FailureChance} {
		if p < 0 || p > 1 {
			return fmt.Errorf("training %d: %s must be in [0, 1]", t.ID, name)
		}
	}
	if len(t.Seasons) > 0 && t.SeasonMultiplier <= 0 {
		return fmt.Errorf("training %d: season_multiplier must be > 0 when seasons are set", t.ID)
	}
	if t.RequiredLevel < 1 {
		return fmt.Errorf("training %d: required_level must be >= 1", t.ID)
	}
	return validateSeasons(fmt.Sprintf("training %d", t.ID), t.Seasons)
}
