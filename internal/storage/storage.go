// Package storage defines the persistence port consumed by the simulation
// engine, the records it persists, and a content reader shared by adapters.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/decade/internal/game/battle"
	"github.com/cory-johannsen/decade/internal/game/character"
	"github.com/cory-johannsen/decade/internal/game/content"
)

// ErrNotFound is returned, possibly wrapped, when a keyed lookup yields nothing.
var ErrNotFound = errors.New("not found")

// SessionState is the lifecycle state of a game session.
type SessionState string

const (
	SessionInProgress SessionState = "in_progress"
	SessionCompleted  SessionState = "completed"
)

// Session tracks one playthrough of a character's timeline.
//
// Invariant: State moves from SessionInProgress to SessionCompleted exactly once.
type Session struct {
	ID          uuid.UUID
	CharacterID int64
	State       SessionState
	FinalScore  int
	Ending      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// BattleLog is an append-only record of one battle.
type BattleLog struct {
	ID          uuid.UUID
	CharacterID int64
	EnemyID     int64
	EnemyName   string
	Outcome     battle.Outcome
	DurationMs  int
	Rewards     battle.Rewards
	Rounds      []battle.Round
	CreatedAt   time.Time
}

// NewBattleLog builds a log record from a battle result.
func NewBattleLog(characterID int64, res battle.Result) *BattleLog {
	return &BattleLog{
		ID:          uuid.New(),
		CharacterID: characterID,
		EnemyID:     res.EnemyID,
		EnemyName:   res.EnemyName,
		Outcome:     res.Outcome,
		DurationMs:  res.DurationMs,
		Rewards:     res.Rewards,
		Rounds:      res.Rounds,
	}
}

// GameEventRecord is an append-only record of one resolved turn or event
// choice. EventID and ChoiceID are set only when Action is content.ActionChoice.
type GameEventRecord struct {
	ID          uuid.UUID
	SessionID   uuid.UUID
	CharacterID int64
	Turn        int
	Year        int
	Month       int
	Action      content.Action
	EventID     int64
	ChoiceID    int64
	Success     bool
	Narrative   string
	Changes     []character.StatChange
	CreatedAt   time.Time
}

// ContentReader serves read-only authored content.
type ContentReader interface {
	EnemyByID(ctx context.Context, id int64) (*content.EnemyTemplate, error)
	EligibleEnemies(ctx context.Context, minTier, maxTier int, season character.Season) ([]*content.EnemyTemplate, error)
	EventByID(ctx context.Context, id int64) (*content.RandomEvent, error)
	EligibleEvents(ctx context.Context, action content.Action, season character.Season, itemIDs []int64) ([]*content.RandomEvent, error)
	ScenarioByID(ctx context.Context, id int64) (*content.TrainingScenario, error)
	ScenariosByKind(ctx context.Context, kind content.ScenarioKind) ([]*content.TrainingScenario, error)
	SkillByID(ctx context.Context, id int64) (content.Skill, error)
	StorybookByID(ctx context.Context, id int64) (*content.Storybook, error)
}

// CharacterStore persists mutable character state.
type CharacterStore interface {
	// CreateCharacter inserts c and sets its ID and timestamps.
	CreateCharacter(ctx context.Context, c *character.Character) error
	// CharacterByID returns a fresh copy of the character with its loadout and skills.
	CharacterByID(ctx context.Context, id int64) (*character.Character, error)
	// UpdateCharacter persists scalar fields and the loadout of c.
	UpdateCharacter(ctx context.Context, c *character.Character) error
	// GrantSkill records a skill for a character. Granting a held skill is a no-op.
	GrantSkill(ctx context.Context, characterID, skillID int64) error
}

// SessionStore persists game sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, s *Session) error
	SessionByID(ctx context.Context, id uuid.UUID) (*Session, error)
	// SessionByCharacter returns the character's most recently created session.
	SessionByCharacter(ctx context.Context, characterID int64) (*Session, error)
	UpdateSession(ctx context.Context, s *Session) error
}

// LogStore persists append-only battle and turn records.
type LogStore interface {
	AppendBattleLog(ctx context.Context, l *BattleLog) error
	BattleLogs(ctx context.Context, characterID int64) ([]*BattleLog, error)
	CountVictories(ctx context.Context, characterID int64) (int, error)
	AppendGameEvent(ctx context.Context, r *GameEventRecord) error
	GameEvents(ctx context.Context, sessionID uuid.UUID) ([]*GameEventRecord, error)
}

// Store is the full persistence port.
type Store interface {
	ContentReader
	CharacterStore
	SessionStore
	LogStore
}
