package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/decade/internal/game/battle"
	"github.com/cory-johannsen/decade/internal/game/character"
	"github.com/cory-johannsen/decade/internal/storage"
)

// AppendBattleLog inserts l. Rounds and rewards are stored as JSONB.
func (s *Store) AppendBattleLog(ctx context.Context, l *storage.BattleLog) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	rounds := l.Rounds
	if rounds == nil {
		rounds = []battle.Round{}
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO battle_logs (id, character_id, enemy_id, enemy_name, outcome, duration_ms, rewards, rounds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		l.ID, l.CharacterID, l.EnemyID, l.EnemyName, l.Outcome, l.DurationMs, l.Rewards, rounds,
	).Scan(&l.CreatedAt)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("character %d: %w", l.CharacterID, storage.ErrNotFound)
		}
		return fmt.Errorf("inserting battle log: %w", err)
	}
	return nil
}

// BattleLogs returns a character's battle logs, oldest first.
func (s *Store) BattleLogs(ctx context.Context, characterID int64) ([]*storage.BattleLog, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, character_id, enemy_id, enemy_name, outcome, duration_ms, rewards, rounds, created_at
		FROM battle_logs WHERE character_id = $1 ORDER BY created_at, id`, characterID)
	if err != nil {
		return nil, fmt.Errorf("querying battle logs: %w", err)
	}
	logs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*storage.BattleLog, error) {
		var l storage.BattleLog
		err := row.Scan(&l.ID, &l.CharacterID, &l.EnemyID, &l.EnemyName, &l.Outcome,
			&l.DurationMs, &l.Rewards, &l.Rounds, &l.CreatedAt)
		return &l, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning battle logs: %w", err)
	}
	return logs, nil
}

// CountVictories returns how many battles the character has won.
func (s *Store) CountVictories(ctx context.Context, characterID int64) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM battle_logs WHERE character_id = $1 AND outcome = $2`,
		characterID, battle.Victory,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting victories: %w", err)
	}
	return n, nil
}

// AppendGameEvent inserts r. Changes are stored as JSONB.
func (s *Store) AppendGameEvent(ctx context.Context, r *storage.GameEventRecord) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	changes := r.Changes
	if changes == nil {
		changes = []character.StatChange{}
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO game_events (id, session_id, character_id, turn, year, month, action, event_id, choice_id,
			success, narrative, changes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at`,
		r.ID, r.SessionID, r.CharacterID, r.Turn, r.Year, r.Month, r.Action, r.EventID, r.ChoiceID,
		r.Success, r.Narrative, changes,
	).Scan(&r.CreatedAt)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("session %s: %w", r.SessionID, storage.ErrNotFound)
		}
		return fmt.Errorf("inserting game event: %w", err)
	}
	return nil
}

// GameEvents returns a session's turn records in insertion order.
func (s *Store) GameEvents(ctx context.Context, sessionID uuid.UUID) ([]*storage.GameEventRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, session_id, character_id, turn, year, month, action, event_id, choice_id,
			success, narrative, changes, created_at
		FROM game_events WHERE session_id = $1 ORDER BY turn, created_at`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying game events: %w", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*storage.GameEventRecord, error) {
		var r storage.GameEventRecord
		err := row.Scan(&r.ID, &r.SessionID, &r.CharacterID, &r.Turn, &r.Year, &r.Month,
			&r.Action, &r.EventID, &r.ChoiceID, &r.Success, &r.Narrative, &r.Changes, &r.CreatedAt)
		return &r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning game events: %w", err)
	}
	return records, nil
}
