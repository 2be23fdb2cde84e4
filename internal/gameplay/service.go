// Package gameplay orchestrates turns: it loads a character, dispatches the
// chosen action to the training, battle, and event resolvers, advances the
// calendar, and persists the outcome once.
package gameplay

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/decade/internal/game/battle"
	"github.com/cory-johannsen/decade/internal/game/character"
	"github.com/cory-johannsen/decade/internal/game/content"
	"github.com/cory-johannsen/decade/internal/game/dice"
	"github.com/cory-johannsen/decade/internal/game/event"
	"github.com/cory-johannsen/decade/internal/game/training"
	"github.com/cory-johannsen/decade/internal/observability"
	"github.com/cory-johannsen/decade/internal/storage"
)

// ErrChoiceNotFound is returned, wrapped, when an event has no choice with the requested id.
var ErrChoiceNotFound = event.ErrChoiceNotFound

// DefaultExploreGold is rolled for Explore's gold find when NewService is given
// a zero Expression.
var DefaultExploreGold = dice.MustParse("2d10")

// JourneyEnded is the narrative of every action attempted after the timeline completes.
const JourneyEnded = "Your journey has ended. There are no more months to live."

// Service exposes the engine's operations over a storage port.
//
// Precondition: All fields must be non-nil after construction.
type Service struct {
	store       storage.Store
	rng         dice.RNG
	exploreGold dice.Expression
	trainer     *training.Resolver
	battles     *battle.Simulator
	events      *event.Engine
	logger      *zap.Logger
}

// NewService wires the resolvers around store and rng.
//
// Precondition: store, rng, and logger must be non-nil; exploreGold must come
// from dice.Parse or be the zero Expression, which selects DefaultExploreGold.
// Postcondition: Returns a non-nil Service.
func NewService(store storage.Store, rng dice.RNG, exploreGold dice.Expression, logger *zap.Logger) *Service {
	if exploreGold.Count == 0 {
		exploreGold = DefaultExploreGold
	}
	sim := battle.NewSimulator(rng, logger)
	return &Service{
		store:       store,
		rng:         rng,
		exploreGold: exploreGold,
		trainer:     training.NewResolver(rng, logger),
		battles:     sim,
		events:      event.NewEngine(store, rng, sim, logger),
		logger:      logger,
	}
}

// CreateGame creates a character and opens a session for it.
//
// Precondition: name must be non-empty; class may be empty (defaults to warrior).
// Postcondition: Returns the persisted session and character, or an error.
func (s *Service) CreateGame(ctx context.Context, name string, class character.Class) (*storage.Session, *character.Character, error) {
	c, err := character.New(name, class)
	if err != nil {
		return nil, nil, err
	}
	if err := s.store.CreateCharacter(ctx, c); err != nil {
		return nil, nil, fmt.Errorf("creating character: %w", err)
	}
	sess := &storage.Session{CharacterID: c.ID, State: storage.SessionInProgress}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, nil, fmt.Errorf("creating session: %w", err)
	}
	s.logger.Info("game created",
		zap.String("session_id", sess.ID.String()),
		zap.Int64("character_id", c.ID),
		zap.String("class", string(c.Class)),
	)
	return sess, c, nil
}

// ResolveTraining applies one training or study scenario outside the turn
// cycle. The calendar does not move.
//
// Postcondition: Unknown character or scenario returns storage.ErrNotFound
// (wrapped) and persists nothing. A completed timeline yields Success=false.
func (s *Service) ResolveTraining(ctx context.Context, characterID, scenarioID int64) (training.Result, error) {
	c, err := s.loadCharacter(ctx, characterID)
	if err != nil {
		return training.Result{}, err
	}
	scenario, err := s.store.ScenarioByID(ctx, scenarioID)
	if err != nil {
		return training.Result{}, fmt.Errorf("loading scenario %d: %w", scenarioID, err)
	}
	if c.IsComplete() {
		return training.Result{ScenarioID: scenarioID, Narrative: JourneyEnded}, nil
	}
	held, err := storage.HeldSkills(ctx, s.store, c)
	if err != nil {
		return training.Result{}, err
	}
	res := s.trainer.Resolve(c, scenario, held)
	if !res.Success {
		return res, nil
	}
	if err := s.store.UpdateCharacter(ctx, c); err != nil {
		return training.Result{}, fmt.Errorf("saving character: %w", err)
	}
	return res, nil
}

// ResolveBattle fights enemyID, or a random enemy near the character's level
// when enemyID is zero. The calendar does not move.
//
// Postcondition: Unknown character or enemy returns storage.ErrNotFound
// (wrapped). Every fought battle is logged.
func (s *Service) ResolveBattle(ctx context.Context, characterID, enemyID int64) (battle.Result, error) {
	c, err := s.loadCharacter(ctx, characterID)
	if err != nil {
		return battle.Result{}, err
	}
	if c.IsComplete() {
		return battle.Result{EnemyID: enemyID, Outcome: battle.Fled, Narrative: JourneyEnded}, nil
	}
	res, err := s.fight(ctx, c, enemyID)
	if err != nil {
		return battle.Result{}, err
	}
	if err := s.persistBattle(ctx, c, res); err != nil {
		return battle.Result{}, err
	}
	return res, nil
}

// ResolveEventChoice resolves one choice of an event already presented to the
// character. Choices stay resolvable after the timeline completes so an event
// raised by the final turn can still be answered.
//
// Postcondition: Unknown character, session, or event returns
// storage.ErrNotFound and an unknown choice returns ErrChoiceNotFound, both
// wrapped, with nothing persisted. Every resolved choice, including a refused
// hidden one, appends a game-event record to the character's session.
func (s *Service) ResolveEventChoice(ctx context.Context, characterID, eventID, choiceID int64) (event.ChoiceResult, error) {
	c, err := s.loadCharacter(ctx, characterID)
	if err != nil {
		return event.ChoiceResult{}, err
	}
	sess, err := s.store.SessionByCharacter(ctx, characterID)
	if err != nil {
		return event.ChoiceResult{}, fmt.Errorf("loading session for character %d: %w", characterID, err)
	}
	held, err := storage.HeldSkills(ctx, s.store, c)
	if err != nil {
		return event.ChoiceResult{}, err
	}
	res, err := s.events.ProcessChoice(ctx, c, eventID, choiceID, held)
	if err != nil {
		return event.ChoiceResult{}, err
	}
	if res.Success || len(res.Changes) > 0 || res.Check != nil {
		if err := s.store.UpdateCharacter(ctx, c); err != nil {
			return event.ChoiceResult{}, fmt.Errorf("saving character: %w", err)
		}
		if res.LearnedSkillID != 0 {
			if err := s.store.GrantSkill(ctx, c.ID, res.LearnedSkillID); err != nil {
				return event.ChoiceResult{}, fmt.Errorf("granting skill: %w", err)
			}
		}
		if res.Battle != nil && res.Battle.Outcome != battle.Fled {
			if err := s.store.AppendBattleLog(ctx, storage.NewBattleLog(c.ID, *res.Battle)); err != nil {
				return event.ChoiceResult{}, fmt.Errorf("logging battle: %w", err)
			}
		}
	}
	record := &storage.GameEventRecord{
		SessionID:   sess.ID,
		CharacterID: c.ID,
		Turn:        c.TotalTurns,
		Year:        c.CurrentYear,
		Month:       c.CurrentMonth,
		Action:      content.ActionChoice,
		EventID:     eventID,
		ChoiceID:    choiceID,
		Success:     res.Success,
		Narrative:   res.Narrative,
		Changes:     res.Changes,
	}
	if err := s.store.AppendGameEvent(ctx, record); err != nil {
		return event.ChoiceResult{}, fmt.Errorf("recording choice: %w", err)
	}
	observability.ForSession(s.logger, sess.ID, c.ID).Info("event choice resolved",
		zap.Int64("event_id", eventID),
		zap.Int64("choice_id", choiceID),
		zap.Bool("success", res.Success),
	)
	return res, nil
}

// EquipResult reports a loadout change.
type EquipResult struct {
	Success   bool                    `json:"success"`
	Narrative string                  `json:"narrative"`
	Displaced *character.EquippedItem `json:"displaced,omitempty"`
	Removed   *character.EquippedItem `json:"removed,omitempty"`
}

// EquipItem places storybook itemID into slot.
//
// Postcondition: An invalid slot yields Success=false and persists nothing;
// an unknown storybook returns storage.ErrNotFound (wrapped).
func (s *Service) EquipItem(ctx context.Context, characterID int64, slot int, itemID int64) (EquipResult, error) {
	c, err := s.loadCharacter(ctx, characterID)
	if err != nil {
		return EquipResult{}, err
	}
	book, err := s.store.StorybookByID(ctx, itemID)
	if err != nil {
		return EquipResult{}, fmt.Errorf("loading storybook %d: %w", itemID, err)
	}
	displaced, err := c.Loadout.Equip(book.Equipped(slot))
	if err != nil {
		if errors.Is(err, character.ErrInvalidSlot) {
			return EquipResult{Narrative: fmt.Sprintf("You cannot equip %s there: %v.", book.Name, err)}, nil
		}
		return EquipResult{}, err
	}
	if err := s.store.UpdateCharacter(ctx, c); err != nil {
		return EquipResult{}, fmt.Errorf("saving character: %w", err)
	}
	res := EquipResult{Success: true, Narrative: fmt.Sprintf("You equip %s in slot %d.", book.Name, slot), Displaced: displaced}
	if displaced != nil {
		res.Narrative += fmt.Sprintf(" %s is set aside.", displaced.Name)
	}
	return res, nil
}

// UnequipItem empties slot.
//
// Postcondition: An invalid slot yields Success=false; an empty slot succeeds
// with Removed nil.
func (s *Service) UnequipItem(ctx context.Context, characterID int64, slot int) (EquipResult, error) {
	c, err := s.loadCharacter(ctx, characterID)
	if err != nil {
		return EquipResult{}, err
	}
	removed, err := c.Loadout.Unequip(slot)
	if err != nil {
		if errors.Is(err, character.ErrInvalidSlot) {
			return EquipResult{Narrative: fmt.Sprintf("You cannot unequip that: %v.", err)}, nil
		}
		return EquipResult{}, err
	}
	if removed == nil {
		return EquipResult{Success: true, Narrative: fmt.Sprintf("Slot %d is already empty.", slot)}, nil
	}
	if err := s.store.UpdateCharacter(ctx, c); err != nil {
		return EquipResult{}, fmt.Errorf("saving character: %w", err)
	}
	return EquipResult{Success: true, Narrative: fmt.Sprintf("You put away %s.", removed.Name), Removed: removed}, nil
}

// Session returns the session with id.
func (s *Service) Session(ctx context.Context, id uuid.UUID) (*storage.Session, error) {
	sess, err := s.store.SessionByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	return sess, nil
}

// Character returns the character with id.
func (s *Service) Character(ctx context.Context, id int64) (*character.Character, error) {
	return s.loadCharacter(ctx, id)
}

func (s *Service) loadCharacter(ctx context.Context, id int64) (*character.Character, error) {
	c, err := s.store.CharacterByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading character %d: %w", id, err)
	}
	return c, nil
}

// fight simulates a battle against enemyID, or a random enemy from the
// character's tier range that is in season when enemyID is zero. With no
// candidate enemy the result is Fled with nothing spent.
func (s *Service) fight(ctx context.Context, c *character.Character, enemyID int64) (battle.Result, error) {
	var enemy *content.EnemyTemplate
	if enemyID != 0 {
		e, err := s.store.EnemyByID(ctx, enemyID)
		if err != nil {
			return battle.Result{}, fmt.Errorf("loading enemy %d: %w", enemyID, err)
		}
		enemy = e
	} else {
		lo, hi := battle.TierRange(c.Level)
		season := c.Season()
		candidates, err := s.store.EligibleEnemies(ctx, lo, hi, season)
		if err != nil {
			return battle.Result{}, fmt.Errorf("loading %s enemies for tiers %d-%d: %w", season, lo, hi, err)
		}
		enemy = battle.PickEnemy(s.rng, candidates)
		if enemy == nil {
			return battle.Result{Outcome: battle.Fled, Narrative: "No foe crosses your path."}, nil
		}
	}
	held, err := storage.HeldSkills(ctx, s.store, c)
	if err != nil {
		return battle.Result{}, err
	}
	return s.battles.Simulate(c, enemy, held), nil
}

// persistBattle saves c and logs res when a battle was actually fought.
func (s *Service) persistBattle(ctx context.Context, c *character.Character, res battle.Result) error {
	if res.EnemyID == 0 || res.Outcome == battle.Fled {
		return nil
	}
	if err := s.store.UpdateCharacter(ctx, c); err != nil {
		return fmt.Errorf("saving character: %w", err)
	}
	if err := s.store.AppendBattleLog(ctx, storage.NewBattleLog(c.ID, res)); err != nil {
		return fmt.Errorf("logging battle: %w", err)
	}
	return nil
}
