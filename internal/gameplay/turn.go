package gameplay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/decade/internal/game/battle"
	"github.com/cory-johannsen/decade/internal/game/character"
	"github.com/cory-johannsen/decade/internal/game/content"
	"github.com/cory-johannsen/decade/internal/game/dice"
	"github.com/cory-johannsen/decade/internal/game/event"
	"github.com/cory-johannsen/decade/internal/game/progression"
	"github.com/cory-johannsen/decade/internal/game/training"
	"github.com/cory-johannsen/decade/internal/observability"
	"github.com/cory-johannsen/decade/internal/storage"
)

// Turn tuning.
const (
	RestEnergy             = 50
	RestHealthPercent      = 25
	RestEventChance        = 0.15
	TrainEventChance       = 0.25
	ExploreEnergyCost      = 10
	ExploreLuckDivisor     = 10
	ExploreMicroGainChance = 0.20
)

// TurnResult is the outcome of one action.
type TurnResult struct {
	SessionID uuid.UUID              `json:"session_id"`
	Action    content.Action         `json:"action"`
	Success   bool                   `json:"success"`
	Narrative string                 `json:"narrative"`
	Changes   []character.StatChange `json:"changes"`

	// Calendar after the turn.
	Turn  int `json:"turn"`
	Year  int `json:"year"`
	Month int `json:"month"`

	Training *training.Result     `json:"training,omitempty"`
	Battle   *battle.Result       `json:"battle,omitempty"`
	Event    *event.View          `json:"event,omitempty"`
	LevelUp  *progression.LevelUp `json:"level_up,omitempty"`

	Completed  bool               `json:"completed"`
	FinalScore int                `json:"final_score,omitempty"`
	Ending     progression.Ending `json:"ending,omitempty"`
}

// ResolveTurn performs action for the session's character. targetID selects a
// scenario for Train and Study or an enemy for Battle; zero picks one.
//
// Precondition: action must be a known content.Action.
// Postcondition: Unknown session, character, scenario, or enemy returns
// storage.ErrNotFound (wrapped) and persists nothing. A completed game yields
// Success=false and JourneyEnded without touching state. A successful action
// advances the calendar one month; reaching character.MaxTurns completes the
// session with its final score and ending.
func (s *Service) ResolveTurn(ctx context.Context, sessionID uuid.UUID, action content.Action, targetID int64) (TurnResult, error) {
	sess, err := s.store.SessionByID(ctx, sessionID)
	if err != nil {
		return TurnResult{}, fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	c, err := s.loadCharacter(ctx, sess.CharacterID)
	if err != nil {
		return TurnResult{}, err
	}
	res := TurnResult{SessionID: sessionID, Action: action}
	if sess.State == storage.SessionCompleted || c.IsComplete() {
		res.Narrative = JourneyEnded
		res.Completed = true
		res.FinalScore = sess.FinalScore
		res.Ending = progression.Ending(sess.Ending)
		res.Turn, res.Year, res.Month = c.TotalTurns, c.CurrentYear, c.CurrentMonth
		return res, nil
	}

	turn := turnState{TurnResult: &res, year: c.CurrentYear, month: c.CurrentMonth}
	switch action {
	case content.ActionTrain:
		err = s.train(ctx, c, content.KindTraining, targetID, &turn)
	case content.ActionStudy:
		err = s.train(ctx, c, content.KindStudy, targetID, &turn)
	case content.ActionRest:
		err = s.rest(ctx, c, &turn)
	case content.ActionExplore:
		err = s.explore(ctx, c, &turn)
	case content.ActionBattle:
		err = s.fightTurn(ctx, c, targetID, &turn)
	default:
		return TurnResult{}, fmt.Errorf("unknown action %q", action)
	}
	if err != nil {
		return TurnResult{}, err
	}
	res.Narrative = strings.Join(turn.narrative, " ")

	if res.Success {
		c.AdvanceMonth()
	}
	res.Turn, res.Year, res.Month = c.TotalTurns, c.CurrentYear, c.CurrentMonth

	if err := s.store.UpdateCharacter(ctx, c); err != nil {
		return TurnResult{}, fmt.Errorf("saving character: %w", err)
	}
	if res.Battle != nil && res.Battle.Outcome != battle.Fled {
		if err := s.store.AppendBattleLog(ctx, storage.NewBattleLog(c.ID, *res.Battle)); err != nil {
			return TurnResult{}, fmt.Errorf("logging battle: %w", err)
		}
	}
	record := &storage.GameEventRecord{
		SessionID:   sess.ID,
		CharacterID: c.ID,
		Turn:        c.TotalTurns,
		Year:        turn.year,
		Month:       turn.month,
		Action:      action,
		Success:     res.Success,
		Narrative:   res.Narrative,
		Changes:     res.Changes,
	}
	if err := s.store.AppendGameEvent(ctx, record); err != nil {
		return TurnResult{}, fmt.Errorf("recording turn: %w", err)
	}

	if c.IsComplete() {
		if err := s.complete(ctx, sess, c, &res); err != nil {
			return TurnResult{}, err
		}
	}

	observability.ForSession(s.logger, sessionID, c.ID).Info("turn resolved",
		zap.String("action", string(action)),
		zap.Bool("success", res.Success),
		zap.Int("turn", c.TotalTurns),
		zap.Bool("completed", res.Completed),
	)
	return res, nil
}

// turnState accumulates a turn's narrative alongside its result. year and
// month are the calendar position the action happened in.
type turnState struct {
	*TurnResult
	narrative []string
	year      int
	month     int
}

func (t *turnState) say(format string, args ...any) {
	t.narrative = append(t.narrative, fmt.Sprintf(format, args...))
}

func (s *Service) complete(ctx context.Context, sess *storage.Session, c *character.Character, res *TurnResult) error {
	victories, err := s.store.CountVictories(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("counting victories: %w", err)
	}
	now := time.Now().UTC()
	ending := progression.DetermineEnding(c)
	sess.State = storage.SessionCompleted
	sess.FinalScore = progression.FinalScore(c, victories)
	sess.Ending = string(ending)
	sess.CompletedAt = &now
	if err := s.store.UpdateSession(ctx, sess); err != nil {
		return fmt.Errorf("completing session: %w", err)
	}
	res.Completed = true
	res.FinalScore = sess.FinalScore
	res.Ending = ending
	res.Narrative = strings.TrimSpace(res.Narrative + " " + ending.Narrative())
	observability.ForSession(s.logger, sess.ID, c.ID).Info("game completed",
		zap.Int("final_score", sess.FinalScore),
		zap.String("ending", sess.Ending),
		zap.Int("victories", victories),
	)
	return nil
}

// train resolves a training or study scenario. A successful, uninjured
// training session may raise a random event.
func (s *Service) train(ctx context.Context, c *character.Character, kind content.ScenarioKind, targetID int64, t *turnState) error {
	scenario, err := s.pickScenario(ctx, c, kind, targetID)
	if err != nil {
		return err
	}
	if scenario == nil {
		t.say("Nothing here is suited to your level.")
		return nil
	}
	held, err := storage.HeldSkills(ctx, s.store, c)
	if err != nil {
		return err
	}
	tr := s.trainer.Resolve(c, scenario, held)
	t.Training = &tr
	t.Success = tr.Success
	t.Changes = append(t.Changes, tr.Changes...)
	t.LevelUp = tr.LevelUp
	t.say("%s", tr.Narrative)

	if kind == content.KindTraining && tr.Success && !tr.Injured && s.rng.Chance(TrainEventChance) {
		return s.raiseEvent(ctx, c, content.ActionTrain, false, t)
	}
	return nil
}

// pickScenario returns targetID, or the highest-level scenario of kind the
// character qualifies for. Ties go to the earliest authored.
func (s *Service) pickScenario(ctx context.Context, c *character.Character, kind content.ScenarioKind, targetID int64) (*content.TrainingScenario, error) {
	if targetID != 0 {
		sc, err := s.store.ScenarioByID(ctx, targetID)
		if err != nil {
			return nil, fmt.Errorf("loading scenario %d: %w", targetID, err)
		}
		return sc, nil
	}
	all, err := s.store.ScenariosByKind(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("loading %s scenarios: %w", kind, err)
	}
	var best *content.TrainingScenario
	for _, sc := range all {
		if sc.RequiredLevel > c.Level {
			continue
		}
		if best == nil || sc.RequiredLevel > best.RequiredLevel {
			best = sc
		}
	}
	return best, nil
}

func (s *Service) rest(ctx context.Context, c *character.Character, t *turnState) error {
	energy := c.AdjustResource(character.Energy, RestEnergy)
	health := c.AdjustResource(character.Health, c.MaxHealth*RestHealthPercent/100)
	t.Success = true
	t.Changes = append(t.Changes, energy, health)
	t.say("You rest, recovering %d energy and %d health.", energy.Delta, health.Delta)
	if s.rng.Chance(RestEventChance) {
		return s.raiseEvent(ctx, c, content.ActionRest, false, t)
	}
	return nil
}

// explore always attempts an event, favoring rarer ones. When none fires the
// character finds gold and may sharpen one stat.
func (s *Service) explore(ctx context.Context, c *character.Character, t *turnState) error {
	if c.CurrentEnergy < ExploreEnergyCost {
		t.say("You are too tired to explore (need %d energy, have %d).", ExploreEnergyCost, c.CurrentEnergy)
		return nil
	}
	t.Changes = append(t.Changes, c.AdjustResource(character.Energy, -ExploreEnergyCost))
	t.Success = true
	if err := s.raiseEvent(ctx, c, content.ActionExplore, true, t); err != nil {
		return err
	}
	if t.Event != nil {
		return nil
	}

	held, err := storage.HeldSkills(ctx, s.store, c)
	if err != nil {
		return err
	}
	goldPct, _ := content.EconomicBonus(held)
	roll := dice.Evaluate(s.rng, s.exploreGold)
	s.logger.Debug("explore gold roll", zap.Int64("character_id", c.ID), zap.Stringer("roll", roll))
	base := max(roll.Total(), 0) + c.Stats.Luck/ExploreLuckDivisor
	gold := c.AdjustResource(character.Gold, content.ApplyPercent(base, goldPct))
	t.Changes = append(t.Changes, gold)
	t.say("You roam the countryside and find %d gold.", gold.Delta)

	if s.rng.Chance(ExploreMicroGainChance) {
		st := character.AllStats[s.rng.UniformInt(len(character.AllStats))]
		t.Changes = append(t.Changes, c.AdjustStat(st, 1))
		t.say("The journey sharpens your %s.", st)
	}
	return nil
}

func (s *Service) fightTurn(ctx context.Context, c *character.Character, enemyID int64, t *turnState) error {
	res, err := s.fight(ctx, c, enemyID)
	if err != nil {
		return err
	}
	t.Battle = &res
	t.Success = res.Outcome != battle.Fled
	t.Changes = append(t.Changes, res.Changes...)
	t.LevelUp = res.LevelUp
	t.say("%s", res.Narrative)
	return nil
}

// raiseEvent attaches a triggered event, if any, to the turn.
func (s *Service) raiseEvent(ctx context.Context, c *character.Character, action content.Action, prefer bool, t *turnState) error {
	view, err := s.events.TryTrigger(ctx, c, action, prefer)
	if err != nil {
		return err
	}
	if view == nil {
		return nil
	}
	t.Event = view
	t.say("%s: %s", view.Title, view.Description)
	return nil
}
