// Package memory provides an in-process implementation of storage.Store.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/decade/internal/game/battle"
	"github.com/cory-johannsen/decade/internal/game/character"
	"github.com/cory-johannsen/decade/internal/game/content"
	"github.com/cory-johannsen/decade/internal/storage"
)

// Store keeps all mutable state in maps guarded by a mutex. Every read returns
// a copy so callers never share state across operations.
type Store struct {
	*storage.CatalogReader

	mu         sync.RWMutex
	nextID     int64
	characters map[int64]*character.Character
	sessions   map[uuid.UUID]*storage.Session
	sessionIDs []uuid.UUID
	battles    []*storage.BattleLog
	events     []*storage.GameEventRecord
	now        func() time.Time
}

var _ storage.Store = (*Store)(nil)

// New creates an empty Store serving content from catalog.
//
// Precondition: catalog must be non-nil.
func New(catalog *content.Catalog) *Store {
	return &Store{
		CatalogReader: storage.NewCatalogReader(catalog),
		characters:    make(map[int64]*character.Character),
		sessions:      make(map[uuid.UUID]*storage.Session),
		now:           time.Now,
	}
}

func (s *Store) CreateCharacter(_ context.Context, c *character.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	s.characters[c.ID] = c.Clone()
	return nil
}

func (s *Store) CharacterByID(_ context.Context, id int64) (*character.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.characters[id]
	if !ok {
		return nil, fmt.Errorf("character %d: %w", id, storage.ErrNotFound)
	}
	return c.Clone(), nil
}

// UpdateCharacter stores scalar fields and the loadout. Skills only change
// through GrantSkill.
func (s *Store) UpdateCharacter(_ context.Context, c *character.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.characters[c.ID]
	if !ok {
		return fmt.Errorf("character %d: %w", c.ID, storage.ErrNotFound)
	}
	next := c.Clone()
	next.Skills = stored.Clone().Skills
	next.CreatedAt = stored.CreatedAt
	next.UpdatedAt = s.now()
	c.UpdatedAt = next.UpdatedAt
	s.characters[c.ID] = next
	return nil
}

func (s *Store) GrantSkill(_ context.Context, characterID, skillID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.characters[characterID]
	if !ok {
		return fmt.Errorf("character %d: %w", characterID, storage.ErrNotFound)
	}
	c.Skills.Grant(skillID)
	return nil
}

func (s *Store) CreateSession(_ context.Context, sess *storage.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.characters[sess.CharacterID]; !ok {
		return fmt.Errorf("character %d: %w", sess.CharacterID, storage.ErrNotFound)
	}
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	sess.CreatedAt = s.now()
	sess.UpdatedAt = sess.CreatedAt
	cp := *sess
	s.sessions[sess.ID] = &cp
	s.sessionIDs = append(s.sessionIDs, sess.ID)
	return nil
}

func (s *Store) SessionByID(_ context.Context, id uuid.UUID) (*storage.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, storage.ErrNotFound)
	}
	cp := *sess
	return &cp, nil
}

func (s *Store) SessionByCharacter(_ context.Context, characterID int64) (*storage.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.sessionIDs) - 1; i >= 0; i-- {
		if sess := s.sessions[s.sessionIDs[i]]; sess.CharacterID == characterID {
			cp := *sess
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("session for character %d: %w", characterID, storage.ErrNotFound)
}

func (s *Store) UpdateSession(_ context.Context, sess *storage.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[sess.ID]
	if !ok {
		return fmt.Errorf("session %s: %w", sess.ID, storage.ErrNotFound)
	}
	cp := *sess
	cp.CreatedAt = stored.CreatedAt
	cp.UpdatedAt = s.now()
	sess.UpdatedAt = cp.UpdatedAt
	s.sessions[sess.ID] = &cp
	return nil
}

func (s *Store) AppendBattleLog(_ context.Context, l *storage.BattleLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.CreatedAt = s.now()
	cp := *l
	cp.Rounds = append([]battle.Round(nil), l.Rounds...)
	s.battles = append(s.battles, &cp)
	return nil
}

func (s *Store) BattleLogs(_ context.Context, characterID int64) ([]*storage.BattleLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*storage.BattleLog
	for _, l := range s.battles {
		if l.CharacterID == characterID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) CountVictories(_ context.Context, characterID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, l := range s.battles {
		if l.CharacterID == characterID && l.Outcome == battle.Victory {
			n++
		}
	}
	return n, nil
}

func (s *Store) AppendGameEvent(_ context.Context, r *storage.GameEventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.CreatedAt = s.now()
	cp := *r
	cp.Changes = append([]character.StatChange(nil), r.Changes...)
	s.events = append(s.events, &cp)
	return nil
}

func (s *Store) GameEvents(_ context.Context, sessionID uuid.UUID) ([]*storage.GameEventRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*storage.GameEventRecord
	for _, r := range s.events {
		if r.SessionID == sessionID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}
