package content

import (
	"fmt"

	"github.com/cory-johannsen/decade/internal/game/character"
)

// Payload is the set of effects applied by one branch of a choice.
type Payload struct {
	Narrative  string                 `yaml:"narrative"`
	StatDeltas map[character.Stat]int `yaml:"stats"`
	Energy     int                    `yaml:"energy"`
	Health     int                    `yaml:"health"`
	Gold       int                    `yaml:"gold"`
	Reputation int                    `yaml:"reputation"`
	Experience int                    `yaml:"experience"`
	// GrantSkillID is a skill granted by this branch; 0 means none.
	GrantSkillID int64 `yaml:"grant_skill"`
	// FollowUpEventID is an event presented after this branch; 0 means none.
	FollowUpEventID int64 `yaml:"follow_up_event"`
	// BattleEnemyID starts a battle against this enemy; 0 means none.
	BattleEnemyID int64 `yaml:"battle_enemy"`
}

// EventChoice is one option of a random event.
//
// Failure is only meaningful when CheckStat is set.
type EventChoice struct {
	ID              int64          `yaml:"id"`
	Text            string         `yaml:"text"`
	Requirements    Requirements   `yaml:"requirements"`
	CheckStat       character.Stat `yaml:"check_stat"`
	CheckDifficulty int            `yaml:"check_difficulty"`
	Success         Payload        `yaml:"success"`
	Failure         *Payload       `yaml:"failure"`
}

// HasCheck reports whether the choice rolls a stat check.
func (c *EventChoice) HasCheck() bool { return c.CheckStat != "" }

// RandomEvent is a narrative event with a list of choices.
type RandomEvent struct {
	ID          int64  `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	// Actions lists the turn actions that can trigger the event; empty means any.
	Actions []Action `yaml:"actions"`
	// Seasons restricts the event to these seasons; empty means any.
	Seasons []character.Season `yaml:"seasons"`
	// TriggerItemID ties the event to an equipped storybook; 0 means untied.
	TriggerItemID         int64         `yaml:"trigger_item"`
	ItemTriggerMultiplier float64       `yaml:"item_trigger_multiplier"`
	BaseProbability       float64       `yaml:"base_probability"`
	Rarity                Rarity        `yaml:"rarity"`
	Requirements          Requirements  `yaml:"requirements"`
	Choices               []EventChoice `yaml:"choices"`
}

// Choice returns the choice with id.
func (e *RandomEvent) Choice(id int64) (*EventChoice, bool) {
	for i := range e.Choices {
		if e.Choices[i].ID == id {
			return &e.Choices[i], true
		}
	}
	return nil, false
}

// TriggeredBy reports whether action can trigger the event.
func (e *RandomEvent) TriggeredBy(action Action) bool {
	if len(e.Actions) == 0 {
		return true
	}
	for _, a := range e.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// AllowedIn reports whether the event may occur in season s.
func (e *RandomEvent) AllowedIn(s character.Season) bool {
	return seasonAllowed(e.Seasons, s)
}

// Validate checks the event's local invariants. Cross references are checked
// by the Catalog.
func (e *RandomEvent) Validate() error {
	if e.ID <= 0 {
		return fmt.Errorf("event: id must be > 0")
	}
	if e.Title == "" {
		return fmt.Errorf("event %d: title must not be empty", e.ID)
	}
	if e.BaseProbability <= 0 {
		return fmt.Errorf("event %d: base_probability must be > 0", e.ID)
	}
	if e.TriggerItemID != 0 && e.ItemTriggerMultiplier <= 0 {
		return fmt.Errorf("event %d: item_trigger_multiplier must be > 0 when trigger_item is set", e.ID)
	}
	switch e.Rarity {
	case "", Common, Uncommon, Rare, Epic, Legendary:
	default:
		return fmt.Errorf("event %d: unknown rarity %q", e.ID, e.Rarity)
	}
	for _, a := range e.Actions {
		if _, err := ParseAction(string(a)); err != nil {
			return fmt.Errorf("event %d: %w", e.ID, err)
		}
	}
	if err := validateSeasons(fmt.Sprintf("event %d", e.ID), e.Seasons); err != nil {
		return err
	}
	if len(e.Choices) == 0 {
		return fmt.Errorf("event %d: must have at least one choice", e.ID)
	}
	seen := make(map[int64]bool, len(e.Choices))
	for i := range e.Choices {
		ch := &e.Choices[i]
		if ch.ID <= 0 {
			return fmt.Errorf("event %d: choice[%d] id must be > 0", e.ID, i)
		}
		if seen[ch.ID] {
			return fmt.Errorf("event %d: duplicate choice id %d", e.ID, ch.ID)
		}
		seen[ch.ID] = true
		if ch.HasCheck() {
			if _, err := character.ParseStat(string(ch.CheckStat)); err != nil {
				return fmt.Errorf("event %d choice %d: %w", e.ID, ch.ID, err)
			}
		}
		if err := validatePayload(ch.Success); err != nil {
			return fmt.Errorf("event %d choice %d success: %w", e.ID, ch.ID, err)
		}
		if ch.Failure != nil {
			if err := validatePayload(*ch.Failure); err != nil {
				return fmt.Errorf("event %d choice %d failure: %w", e.ID, ch.ID, err)
			}
		}
	}
	return nil
}

func validatePayload(p Payload) error {
	for st := range p.StatDeltas {
		if _, err := character.ParseStat(string(st)); err != nil {
			return err
		}
	}
	return nil
}
