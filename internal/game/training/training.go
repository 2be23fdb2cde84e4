// Package training resolves training and study sessions into stat gains.
package training

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/decade/internal/game/character"
	"github.com/cory-johannsen/decade/internal/game/content"
	"github.com/cory-johannsen/decade/internal/game/dice"
	"github.com/cory-johannsen/decade/internal/game/progression"
)

// VarianceSpread is the maximum random uplift applied to every gain.
const VarianceSpread = 0.25

// Result is the outcome of one training session.
type Result struct {
	ScenarioID int64  `json:"scenario_id"`
	Success    bool   `json:"success"`
	Narrative  string `json:"narrative"`
	// Injured is set when the session failed its failure roll; energy was spent
	// and health lost, but nothing was gained.
	Injured          bool                   `json:"injured"`
	EnergySpent      int                    `json:"energy_spent"`
	Changes          []character.StatChange `json:"changes"`
	BonusTriggered   bool                   `json:"bonus_triggered"`
	ExperienceGained int                    `json:"experience_gained"`
	LevelUp          *progression.LevelUp   `json:"level_up,omitempty"`
}

// Resolver applies training scenarios to characters.
type Resolver struct {
	rng    dice.RNG
	logger *zap.Logger
}

// NewResolver creates a Resolver drawing from rng.
//
// Precondition: rng and logger must be non-nil.
func NewResolver(rng dice.RNG, logger *zap.Logger) *Resolver {
	return &Resolver{rng: rng, logger: logger}
}

// Resolve runs scenario s for c. held is the character's acquired skills; only
// bonus skills affect training.
//
// Precondition: c and s must be non-nil.
// Postcondition: If c lacks energy or level, Success is false and c is
// unchanged. Otherwise energy is spent, and either an injury is applied or
// stat gains are recorded in primary, secondary, tertiary order with any bonus
// folded into the primary entry, followed by the experience award and a
// level-up check.
func (r *Resolver) Resolve(c *character.Character, s *content.TrainingScenario, held []content.Skill) Result {
	res := Result{ScenarioID: s.ID}
	if c.CurrentEnergy < s.EnergyCost {
		res.Narrative = fmt.Sprintf("You have insufficient energy for %s (need %d, have %d).", s.Name, s.EnergyCost, c.CurrentEnergy)
		return res
	}
	if c.Level < s.RequiredLevel {
		res.Narrative = fmt.Sprintf("Your level is too low for %s (requires level %d).", s.Name, s.RequiredLevel)
		return res
	}

	spent := c.AdjustResource(character.Energy, -s.EnergyCost)
	res.EnergySpent = -spent.Delta
	res.Success = true

	if r.rng.Chance(s.FailureChance) {
		hurt := c.AdjustResource(character.Health, -s.FailureHealthPenalty)
		res.Injured = true
		res.Changes = []character.StatChange{hurt}
		res.Narrative = fmt.Sprintf("You pushed too hard at %s and were injured, losing %d health.", s.Name, -hurt.Delta)
		r.logger.Debug("training injury",
			zap.Int64("character_id", c.ID),
			zap.Int64("scenario_id", s.ID),
			zap.Int("health_lost", -hurt.Delta),
		)
		return res
	}

	seasonal := 1.0
	if s.InBonusSeason(c.Season()) {
		seasonal = s.SeasonMultiplier
	}
	equipment := 1 + float64(c.Loadout.BonusPercent(s.PrimaryStat))/100

	primaryGain := r.gain(s.PrimaryGain, seasonal*equipment)
	var secondaryGain, tertiaryGain int
	if s.SecondaryStat != "" {
		secondaryGain = r.gain(s.SecondaryGain, seasonal)
	}
	if s.TertiaryStat != "" {
		tertiaryGain = r.gain(s.TertiaryGain, seasonal)
	}
	if r.rng.Chance(s.BonusChance + float64(c.Stats.Luck)/1000) {
		res.BonusTriggered = true
		primaryGain += s.BonusAmount
	}

	res.Changes = append(res.Changes, c.AdjustStat(s.PrimaryStat, primaryGain))
	if s.SecondaryStat != "" {
		res.Changes = append(res.Changes, c.AdjustStat(s.SecondaryStat, secondaryGain))
	}
	if s.TertiaryStat != "" {
		res.Changes = append(res.Changes, c.AdjustStat(s.TertiaryStat, tertiaryGain))
	}

	_, expPct := content.EconomicBonus(held)
	exp := c.AdjustResource(character.Experience, content.ApplyPercent(s.ExperienceReward, expPct))
	res.ExperienceGained = exp.Delta
	res.LevelUp = progression.CheckLevelUp(c)
	res.Narrative = narrate(s, res)

	r.logger.Debug("training resolved",
		zap.Int64("character_id", c.ID),
		zap.Int64("scenario_id", s.ID),
		zap.Bool("bonus", res.BonusTriggered),
		zap.Int("experience", res.ExperienceGained),
	)
	return res
}

// gain returns floor(base × multiplier × (1 + Float01 × VarianceSpread)).
func (r *Resolver) gain(base int, multiplier float64) int {
	return int(math.Floor(float64(base) * multiplier * (1 + r.rng.Float01()*VarianceSpread)))
}

func narrate(s *content.TrainingScenario, res Result) string {
	parts := make([]string, 0, len(res.Changes))
	for _, ch := range res.Changes {
		parts = append(parts, fmt.Sprintf("%s %+d", ch.Name, ch.Delta))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You completed %s: %s.", s.Name, strings.Join(parts, ", "))
	if res.BonusTriggered {
		b.WriteString(" A breakthrough gave you extra progress.")
	}
	fmt.Fprintf(&b, " You gained %d experience.", res.ExperienceGained)
	if res.LevelUp != nil {
		fmt.Fprintf(&b, " You reached level %d!", res.LevelUp.ToLevel)
	}
	return b.String()
}
