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
	"github.com/cory-johannsen/decade/internal/game/event"
	"github.com/cory-johannsen/decade/internal/game/progression"
)

// MaxFollowUps bounds how many chained follow-up events Play answers after one turn.
const MaxFollowUps = 5

// Summary reports a played-out session.
type Summary struct {
	SessionID  uuid.UUID          `json:"session_id"`
	Attempts   int                `json:"attempts"`
	Turns      int                `json:"turns"`
	Events     int                `json:"events"`
	Battles    int                `json:"battles"`
	Completed  bool               `json:"completed"`
	FinalScore int                `json:"final_score"`
	Ending     progression.Ending `json:"ending"`
}

// Play repeats plan against the session until the timeline completes, always
// answering a raised event with its first visible choice. It stops early when
// ctx is cancelled or after maxAttempts actions.
//
// Precondition: plan must be non-empty; maxAttempts must be > 0.
// Postcondition: Returns the summary so far alongside any error.
func (s *Service) Play(ctx context.Context, sessionID uuid.UUID, plan []content.Action, maxAttempts int) (Summary, error) {
	sum := Summary{SessionID: sessionID}
	if len(plan) == 0 {
		return sum, errors.New("play: plan must not be empty")
	}
	sess, err := s.Session(ctx, sessionID)
	if err != nil {
		return sum, err
	}
	for sum.Attempts < maxAttempts {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		action := plan[sum.Attempts%len(plan)]
		sum.Attempts++
		res, err := s.ResolveTurn(ctx, sessionID, action, 0)
		if err != nil {
			return sum, fmt.Errorf("turn %d (%s): %w", sum.Attempts, action, err)
		}
		if res.Success {
			sum.Turns++
		}
		if res.Battle != nil && res.Success {
			sum.Battles++
		}
		if res.Event != nil {
			n, fought, err := s.answer(ctx, sess.CharacterID, res.Event)
			if err != nil {
				return sum, err
			}
			sum.Events += n
			sum.Battles += fought
		}
		if res.Completed {
			sum.Completed = true
			sum.FinalScore = res.FinalScore
			sum.Ending = res.Ending
			break
		}
	}
	s.logger.Info("play finished",
		zap.String("session_id", sessionID.String()),
		zap.Int("attempts", sum.Attempts),
		zap.Int("turns", sum.Turns),
		zap.Bool("completed", sum.Completed),
	)
	return sum, nil
}

// answer resolves view and up to MaxFollowUps of its follow-ups with the first
// visible choice. It returns the number of events answered and battles fought.
func (s *Service) answer(ctx context.Context, characterID int64, view *event.View) (int, int, error) {
	answered, fought := 0, 0
	for depth := 0; view != nil && depth <= MaxFollowUps; depth++ {
		choice := view.FirstVisible()
		if choice == nil {
			s.logger.Debug("no open choice", zap.Int64("event_id", view.ID))
			break
		}
		res, err := s.ResolveEventChoice(ctx, characterID, view.ID, choice.ID)
		if err != nil {
			return answered, fought, fmt.Errorf("answering event %d: %w", view.ID, err)
		}
		answered++
		if res.Battle != nil && res.Battle.Outcome != battle.Fled {
			fought++
		}
		view = res.FollowUp
	}
	return answered, fought, nil
}

// ParsePlan converts action names into a plan.
func ParsePlan(names []string) ([]content.Action, error) {
	plan := make([]content.Action, 0, len(names))
	for _, n := range names {
		a, err := content.ParseAction(n)
		if err != nil {
			return nil, err
		}
		plan = append(plan, a)
	}
	if len(plan) == 0 {
		return nil, errors.New("plan must name at least one action")
	}
	return plan, nil
}

// DefaultMaxAttempts allows every month several failed attempts before giving up.
const DefaultMaxAttempts = character.MaxTurns * 10
