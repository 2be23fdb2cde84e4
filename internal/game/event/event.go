// Package event selects weighted random events and resolves the player's choices.
package event

import (
	"context"
	"errors"

	"github.com/cory-johannsen/decade/internal/game/character"
	"github.com/cory-johannsen/decade/internal/game/content"
	"github.com/cory-johannsen/decade/internal/game/dice"
)

// ErrChoiceNotFound is returned when an event has no choice with the requested id.
var ErrChoiceNotFound = errors.New("choice not found")

// LuckWeightDivisor scales the luck bonus applied to every event weight.
const LuckWeightDivisor = 500

// Repository is the content the engine reads.
type Repository interface {
	EligibleEvents(ctx context.Context, action content.Action, season character.Season, itemIDs []int64) ([]*content.RandomEvent, error)
	EventByID(ctx context.Context, id int64) (*content.RandomEvent, error)
	EnemyByID(ctx context.Context, id int64) (*content.EnemyTemplate, error)
	SkillByID(ctx context.Context, id int64) (content.Skill, error)
}

// ChoiceView presents one choice. Hidden choices are listed but not selectable.
type ChoiceView struct {
	ID              int64          `json:"id"`
	Text            string         `json:"text"`
	Hidden          bool           `json:"hidden"`
	CheckStat       character.Stat `json:"check_stat,omitempty"`
	CheckDifficulty int            `json:"check_difficulty,omitempty"`
}

// View presents an event and all of its choices to a character.
type View struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Rarity      content.Rarity `json:"rarity"`
	Choices     []ChoiceView   `json:"choices"`
}

// NewView presents ev to a character with stats. Every choice is listed; those
// whose requirements stats do not meet are flagged Hidden.
func NewView(ev *content.RandomEvent, stats character.Stats) *View {
	v := &View{
		ID:          ev.ID,
		Title:       ev.Title,
		Description: ev.Description,
		Rarity:      ev.Rarity,
		Choices:     make([]ChoiceView, 0, len(ev.Choices)),
	}
	for _, ch := range ev.Choices {
		v.Choices = append(v.Choices, ChoiceView{
			ID:              ch.ID,
			Text:            ch.Text,
			Hidden:          !ch.Requirements.Met(stats),
			CheckStat:       ch.CheckStat,
			CheckDifficulty: ch.CheckDifficulty,
		})
	}
	return v
}

// FirstVisible returns the first selectable choice, or nil when every choice is hidden.
func (v *View) FirstVisible() *ChoiceView {
	for i := range v.Choices {
		if !v.Choices[i].Hidden {
			return &v.Choices[i]
		}
	}
	return nil
}

// Weight returns the selection weight of ev for a character with the given
// luck: baseProbability × item multiplier × (1 + luck/500), further multiplied
// by the rarity boost when preferHigherRarity is set. Eligible item-tied events
// always carry their item multiplier.
func Weight(ev *content.RandomEvent, luck int, preferHigherRarity bool) float64 {
	w := ev.BaseProbability
	if ev.TriggerItemID != 0 {
		w *= ev.ItemTriggerMultiplier
	}
	w *= 1 + float64(luck)/LuckWeightDivisor
	if preferHigherRarity {
		w *= ev.Rarity.Boost()
	}
	return w
}

// SelectWeighted draws r = Float01 × total and returns the index of the first
// entry whose cumulative weight exceeds r. Returns -1 when weights is empty or
// sums to zero. The last positive entry is returned if rounding leaves r
// unreached.
func SelectWeighted(rng dice.RNG, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return -1
	}
	r := rng.Float01() * total
	cumulative := 0.0
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		cumulative += w
		if cumulative > r {
			return i
		}
	}
	return last
}
