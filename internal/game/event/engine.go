package event

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/decade/internal/game/battle"
	"github.com/cory-johannsen/decade/internal/game/character"
	"github.com/cory-johannsen/decade/internal/game/content"
	"github.com/cory-johannsen/decade/internal/game/dice"
	"github.com/cory-johannsen/decade/internal/game/progression"
)

// Stat check dice: one d100 plus a tenth of the checked stat.
const (
	CheckDieSides   = 100
	CheckStatDivide = 10
)

// CheckRoll is the audit trail of a choice's stat check.
type CheckRoll struct {
	Stat       character.Stat `json:"stat"`
	Roll       int            `json:"roll"`
	Bonus      int            `json:"bonus"`
	Total      int            `json:"total"`
	Difficulty int            `json:"difficulty"`
	Passed     bool           `json:"passed"`
}

// ChoiceResult is the outcome of resolving one event choice.
type ChoiceResult struct {
	EventID   int64                  `json:"event_id"`
	ChoiceID  int64                  `json:"choice_id"`
	Success   bool                   `json:"success"`
	Narrative string                 `json:"narrative"`
	Changes   []character.StatChange `json:"changes"`
	Check     *CheckRoll             `json:"check,omitempty"`
	// LearnedSkillID is set only when the branch granted a skill not already held.
	LearnedSkillID int64 `json:"learned_skill_id,omitempty"`
	// FollowUp is the next event, embedded with its full choice list.
	FollowUp *View                `json:"follow_up,omitempty"`
	Battle   *battle.Result       `json:"battle,omitempty"`
	LevelUp  *progression.LevelUp `json:"level_up,omitempty"`
}

// Engine triggers random events and resolves choices.
type Engine struct {
	repo    Repository
	rng     dice.RNG
	battles *battle.Simulator
	logger  *zap.Logger
}

// NewEngine creates an Engine.
//
// Precondition: all arguments must be non-nil.
func NewEngine(repo Repository, rng dice.RNG, battles *battle.Simulator, logger *zap.Logger) *Engine {
	return &Engine{repo: repo, rng: rng, battles: battles, logger: logger}
}

// TryTrigger picks an event for c after action, or returns nil when no
// eligible event's requirements are met.
//
// Postcondition: Draws exactly one Float01 when at least one event qualifies,
// and nothing otherwise. c is not mutated.
func (e *Engine) TryTrigger(ctx context.Context, c *character.Character, action content.Action, preferHigherRarity bool) (*View, error) {
	eligible, err := e.repo.EligibleEvents(ctx, action, c.Season(), c.Loadout.ItemIDs())
	if err != nil {
		return nil, fmt.Errorf("loading eligible events: %w", err)
	}
	var candidates []*content.RandomEvent
	var weights []float64
	for _, ev := range eligible {
		if !ev.Requirements.Met(c.Stats) {
			continue
		}
		candidates = append(candidates, ev)
		weights = append(weights, Weight(ev, c.Stats.Luck, preferHigherRarity))
	}
	idx := SelectWeighted(e.rng, weights)
	if idx < 0 {
		return nil, nil
	}
	chosen := candidates[idx]
	e.logger.Debug("event triggered",
		zap.Int64("character_id", c.ID),
		zap.String("action", string(action)),
		zap.Int64("event_id", chosen.ID),
		zap.Int("candidates", len(candidates)),
	)
	return NewView(chosen, c.Stats), nil
}

// ProcessChoice resolves choiceID of eventID for c. held is the character's
// acquired skills.
//
// Precondition: c must be non-nil.
// Postcondition: Returns ErrChoiceNotFound (wrapped) for an unknown choice and
// storage errors for an unknown event. Selecting a hidden choice yields
// Success=false with c unchanged. Otherwise the branch payload is applied and
// its skill grant, battle, and follow-up are resolved.
func (e *Engine) ProcessChoice(ctx context.Context, c *character.Character, eventID, choiceID int64, held []content.Skill) (ChoiceResult, error) {
	res := ChoiceResult{EventID: eventID, ChoiceID: choiceID}
	ev, err := e.repo.EventByID(ctx, eventID)
	if err != nil {
		return res, fmt.Errorf("loading event: %w", err)
	}
	ch, ok := ev.Choice(choiceID)
	if !ok {
		return res, fmt.Errorf("event %d choice %d: %w", eventID, choiceID, ErrChoiceNotFound)
	}
	if !ev.Requirements.Met(c.Stats) || !ch.Requirements.Met(c.Stats) {
		res.Narrative = "That choice is not open to you."
		return res, nil
	}

	res.Success = true
	if ch.HasCheck() {
		res.Check = e.check(c, ch)
		res.Success = res.Check.Passed
	}
	var payload content.Payload
	switch {
	case res.Success:
		payload = ch.Success
	case ch.Failure != nil:
		payload = *ch.Failure
	}

	goldPct, expPct := content.EconomicBonus(held)
	res.Changes = ApplyPayload(c, payload, goldPct, expPct)

	var narrative strings.Builder
	narrative.WriteString(payload.Narrative)
	if narrative.Len() == 0 {
		if res.Success {
			narrative.WriteString("You chose: " + ch.Text)
		} else {
			narrative.WriteString("Your attempt failed.")
		}
	}

	if payload.GrantSkillID != 0 {
		skill, err := e.repo.SkillByID(ctx, payload.GrantSkillID)
		if err != nil {
			return res, fmt.Errorf("loading granted skill: %w", err)
		}
		if c.Skills.Grant(skill.SkillID()) {
			res.LearnedSkillID = skill.SkillID()
			held = append(append([]content.Skill(nil), held...), skill)
			fmt.Fprintf(&narrative, " You learned %s!", skill.SkillName())
		}
	}
	for _, change := range res.Changes {
		if change.Name == string(character.Experience) && change.Delta > 0 {
			res.LevelUp = progression.CheckLevelUp(c)
			if res.LevelUp != nil {
				fmt.Fprintf(&narrative, " You reached level %d!", res.LevelUp.ToLevel)
			}
		}
	}

	if payload.BattleEnemyID != 0 {
		enemy, err := e.repo.EnemyByID(ctx, payload.BattleEnemyID)
		if err != nil {
			return res, fmt.Errorf("loading battle enemy: %w", err)
		}
		b := e.battles.Simulate(c, enemy, held)
		res.Battle = &b
		narrative.WriteString(" " + b.Narrative)
	}

	if payload.FollowUpEventID != 0 {
		next, err := e.repo.EventByID(ctx, payload.FollowUpEventID)
		if err != nil {
			return res, fmt.Errorf("loading follow-up event: %w", err)
		}
		res.FollowUp = NewView(next, c.Stats)
	}

	res.Narrative = narrative.String()
	e.logger.Debug("event choice resolved",
		zap.Int64("character_id", c.ID),
		zap.Int64("event_id", eventID),
		zap.Int64("choice_id", choiceID),
		zap.Bool("success", res.Success),
	)
	return res, nil
}

func (e *Engine) check(c *character.Character, ch *content.EventChoice) *CheckRoll {
	roll := e.rng.DiceSum(CheckDieSides, 1)
	bonus := c.Stats.Get(ch.CheckStat) / CheckStatDivide
	return &CheckRoll{
		Stat:       ch.CheckStat,
		Roll:       roll,
		Bonus:      bonus,
		Total:      roll + bonus,
		Difficulty: ch.CheckDifficulty,
		Passed:     roll+bonus >= ch.CheckDifficulty,
	}
}

// ApplyPayload applies p to c and records every non-zero change: stats in
// canonical order, then energy, health, gold, reputation, and experience.
// Positive gold and experience are raised by goldPct and expPct percent.
func ApplyPayload(c *character.Character, p content.Payload, goldPct, expPct int) []character.StatChange {
	var out []character.StatChange
	for _, st := range character.AllStats {
		if d := p.StatDeltas[st]; d != 0 {
			out = append(out, c.AdjustStat(st, d))
		}
	}
	gold, exp := p.Gold, p.Experience
	if gold > 0 {
		gold = content.ApplyPercent(gold, goldPct)
	}
	if exp > 0 {
		exp = content.ApplyPercent(exp, expPct)
	}
	resources := []struct {
		r     character.Resource
		delta int
	}{
		{character.Energy, p.Energy},
		{character.Health, p.Health},
		{character.Gold, gold},
		{character.Reputation, p.Reputation},
		{character.Experience, exp},
	}
	for _, rd := range resources {
		if rd.delta != 0 {
			out = append(out, c.AdjustResource(rd.r, rd.delta))
		}
	}
	return out
}
