package content

import (
	"fmt"

	"github.com/cory-johannsen/decade/internal/game/character"
)

// SkillKind distinguishes the skill variants.
type SkillKind string

const (
	KindPassive SkillKind = "passive"
	KindActive  SkillKind = "active"
	KindBonus   SkillKind = "bonus"
)

// Skill is one of PassiveSkill, ActiveSkill, or BonusSkill.
type Skill interface {
	SkillID() int64
	SkillName() string
	Kind() SkillKind
}

// PassiveSkill is a continuous battle modifier. Percentages are whole percents.
type PassiveSkill struct {
	ID                     int64
	Name                   string
	Description            string
	EvasionPercent         float64
	LifeStealPercent       float64
	CriticalPercent        float64
	DamageReductionPercent float64
	ThornsPercent          float64
	CounterPercent         float64
}

func (s *PassiveSkill) SkillID() int64    { return s.ID }
func (s *PassiveSkill) SkillName() string { return s.Name }
func (s *PassiveSkill) Kind() SkillKind   { return KindPassive }

// ActiveSkill procs at most once per battle for TriggerChance, dealing
// BaseDamage + ScalingStat × Scaling.
type ActiveSkill struct {
	ID            int64
	Name          string
	Description   string
	TriggerChance float64
	BaseDamage    int
	ScalingStat   character.Stat
	Scaling       float64
	Narrative     string
}

func (s *ActiveSkill) SkillID() int64    { return s.ID }
func (s *ActiveSkill) SkillName() string { return s.Name }
func (s *ActiveSkill) Kind() SkillKind   { return KindActive }

// BonusSkill is a non-combat economic modifier in whole percents.
type BonusSkill struct {
	ID                int64
	Name              string
	Description       string
	GoldPercent       int
	ExperiencePercent int
}

func (s *BonusSkill) SkillID() int64    { return s.ID }
func (s *BonusSkill) SkillName() string { return s.Name }
func (s *BonusSkill) Kind() SkillKind   { return KindBonus }

// skillRecord is the flat YAML shape of a skill before it is split into a variant.
type skillRecord struct {
	ID          int64  `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Kind        string `yaml:"kind"`

	Evasion         float64 `yaml:"evasion"`
	LifeSteal       float64 `yaml:"life_steal"`
	Critical        float64 `yaml:"critical"`
	DamageReduction float64 `yaml:"damage_reduction"`
	Thorns          float64 `yaml:"thorns"`
	Counter         float64 `yaml:"counter"`

	TriggerChance float64 `yaml:"trigger_chance"`
	BaseDamage    int     `yaml:"base_damage"`
	ScalingStat   string  `yaml:"scaling_stat"`
	Scaling       float64 `yaml:"scaling"`
	Narrative     string  `yaml:"narrative"`

	GoldPercent       int `yaml:"gold_percent"`
	ExperiencePercent int `yaml:"experience_percent"`
}

// toSkill validates the record and returns its variant.
func (r skillRecord) toSkill() (Skill, error) {
	if r.ID <= 0 {
		return nil, fmt.Errorf("skill: id must be > 0")
	}
	if r.Name == "" {
		return nil, fmt.Errorf("skill %d: name must not be empty", r.ID)
	}
	switch SkillKind(r.Kind) {
	case KindPassive:
		for _, pct := range []float64{r.Evasion, r.LifeSteal, r.Critical, r.DamageReduction, r.Thorns, r.Counter} {
			if pct < 0 || pct > 100 {
				return nil, fmt.Errorf("skill %d: passive percentages must be in [0, 100]", r.ID)
			}
		}
		return &PassiveSkill{
			ID:                     r.ID,
			Name:                   r.Name,
			Description:            r.Description,
			EvasionPercent:         r.Evasion,
			LifeStealPercent:       r.LifeSteal,
			CriticalPercent:        r.Critical,
			DamageReductionPercent: r.DamageReduction,
			ThornsPercent:          r.Thorns,
			CounterPercent:         r.Counter,
		}, nil
	case KindActive:
		if r.TriggerChance < 0 || r.TriggerChance > 1 {
			return nil, fmt.Errorf("skill %d: trigger_chance must be in [0, 1]", r.ID)
		}
		if r.BaseDamage < 0 {
			return nil, fmt.Errorf("skill %d: base_damage must be >= 0", r.ID)
		}
		var st character.Stat
		if r.ScalingStat != "" {
			parsed, err := character.ParseStat(r.ScalingStat)
			if err != nil {
				return nil, fmt.Errorf("skill %d: %w", r.ID, err)
			}
			st = parsed
		}
		return &ActiveSkill{
			ID:            r.ID,
			Name:          r.Name,
			Description:   r.Description,
			TriggerChance: r.TriggerChance,
			BaseDamage:    r.BaseDamage,
			ScalingStat:   st,
			Scaling:       r.Scaling,
			Narrative:     r.Narrative,
		}, nil
	case KindBonus:
		return &BonusSkill{
			ID:                r.ID,
			Name:              r.Name,
			Description:       r.Description,
			GoldPercent:       r.GoldPercent,
			ExperiencePercent: r.ExperiencePercent,
		}, nil
	}
	return nil, fmt.Errorf("skill %d: unknown kind %q", r.ID, r.Kind)
}

// EconomicBonus sums the gold and experience percentages of every BonusSkill in skills.
func EconomicBonus(skills []Skill) (goldPercent, experiencePercent int) {
	for _, s := range skills {
		if b, ok := s.(*BonusSkill); ok {
			goldPercent += b.GoldPercent
			experiencePercent += b.ExperiencePercent
		}
	}
	return goldPercent, experiencePercent
}

// ApplyPercent returns base increased by pct percent, truncated toward zero.
func ApplyPercent(base, pct int) int {
	return base + base*pct/100
}
