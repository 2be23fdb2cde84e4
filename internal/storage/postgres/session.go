package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/decade/internal/storage"
)

// CreateSession inserts sess, assigning an ID when it has none.
//
// Postcondition: Returns an error wrapping storage.ErrNotFound when the
// character does not exist.
func (s *Store) CreateSession(ctx context.Context, sess *storage.Session) error {
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO game_sessions (id, character_id, state, final_score, ending)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		sess.ID, sess.CharacterID, sess.State, sess.FinalScore, sess.Ending,
	).Scan(&sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("character %d: %w", sess.CharacterID, storage.ErrNotFound)
		}
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// SessionByID loads a session.
//
// Postcondition: Returns the Session or an error wrapping storage.ErrNotFound.
func (s *Store) SessionByID(ctx context.Context, id uuid.UUID) (*storage.Session, error) {
	var sess storage.Session
	err := s.db.QueryRow(ctx, `
		SELECT id, character_id, state, final_score, ending, created_at, updated_at, completed_at
		FROM game_sessions WHERE id = $1`, id,
	).Scan(&sess.ID, &sess.CharacterID, &sess.State, &sess.FinalScore, &sess.Ending,
		&sess.CreatedAt, &sess.UpdatedAt, &sess.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session %s: %w", id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return &sess, nil
}

// SessionByCharacter loads the character's most recently created session.
//
// Postcondition: Returns the Session or an error wrapping storage.ErrNotFound.
func (s *Store) SessionByCharacter(ctx context.Context, characterID int64) (*storage.Session, error) {
	var sess storage.Session
	err := s.db.QueryRow(ctx, `
		SELECT id, character_id, state, final_score, ending, created_at, updated_at, completed_at
		FROM game_sessions WHERE character_id = $1
		ORDER BY created_at DESC LIMIT 1`, characterID,
	).Scan(&sess.ID, &sess.CharacterID, &sess.State, &sess.FinalScore, &sess.Ending,
		&sess.CreatedAt, &sess.UpdatedAt, &sess.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session for character %d: %w", characterID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return &sess, nil
}

// UpdateSession persists state, score, ending, and completion time.
func (s *Store) UpdateSession(ctx context.Context, sess *storage.Session) error {
	err := s.db.QueryRow(ctx, `
		UPDATE game_sessions
		SET state = $2, final_score = $3, ending = $4, completed_at = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		sess.ID, sess.State, sess.FinalScore, sess.Ending, sess.CompletedAt,
	).Scan(&sess.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("session %s: %w", sess.ID, storage.ErrNotFound)
		}
		return fmt.Errorf("updating session: %w", err)
	}
	return nil
}
