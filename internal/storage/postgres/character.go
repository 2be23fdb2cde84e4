package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cory-johannsen/decade/internal/game/character"
	"github.com/cory-johannsen/decade/internal/storage"
)

const characterColumns = `id, name, class,
	strength, agility, intelligence, endurance, charisma, luck,
	current_energy, max_energy, current_health, max_health,
	level, experience, gold, reputation,
	current_year, current_month, total_turns, created_at, updated_at`

func scanTargets(c *character.Character) []any {
	return []any{
		&c.ID, &c.Name, &c.Class,
		&c.Stats.Strength, &c.Stats.Agility, &c.Stats.Intelligence,
		&c.Stats.Endurance, &c.Stats.Charisma, &c.Stats.Luck,
		&c.CurrentEnergy, &c.MaxEnergy, &c.CurrentHealth, &c.MaxHealth,
		&c.Level, &c.Experience, &c.Gold, &c.Reputation,
		&c.CurrentYear, &c.CurrentMonth, &c.TotalTurns, &c.CreatedAt, &c.UpdatedAt,
	}
}

// CreateCharacter inserts c with its loadout and sets ID and timestamps.
//
// Precondition: c.Name must be non-empty.
func (s *Store) CreateCharacter(ctx context.Context, c *character.Character) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO characters
				(name, class, strength, agility, intelligence, endurance, charisma, luck,
				 current_energy, max_energy, current_health, max_health,
				 level, experience, gold, reputation, current_year, current_month, total_turns)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
			RETURNING id, created_at, updated_at`,
			c.Name, c.Class,
			c.Stats.Strength, c.Stats.Agility, c.Stats.Intelligence,
			c.Stats.Endurance, c.Stats.Charisma, c.Stats.Luck,
			c.CurrentEnergy, c.MaxEnergy, c.CurrentHealth, c.MaxHealth,
			c.Level, c.Experience, c.Gold, c.Reputation,
			c.CurrentYear, c.CurrentMonth, c.TotalTurns,
		).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return fmt.Errorf("inserting character: %w", err)
		}
		if err := writeLoadout(ctx, tx, c); err != nil {
			return err
		}
		for _, id := range c.Skills.IDs() {
			if _, err := tx.Exec(ctx, `
				INSERT INTO character_skills (character_id, skill_id) VALUES ($1, $2)
				ON CONFLICT DO NOTHING`, c.ID, id); err != nil {
				return fmt.Errorf("inserting character skill: %w", err)
			}
		}
		return nil
	})
}

// CharacterByID loads a character with its equipment and skills.
//
// Postcondition: Returns the Character or an error wrapping storage.ErrNotFound.
func (s *Store) CharacterByID(ctx context.Context, id int64) (*character.Character, error) {
	var c character.Character
	err := s.db.QueryRow(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = $1`, id).
		Scan(scanTargets(&c)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("character %d: %w", id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT slot, item_id FROM character_equipment
		WHERE character_id = $1 ORDER BY slot`, id)
	if err != nil {
		return nil, fmt.Errorf("querying equipment: %w", err)
	}
	type equipped struct {
		slot   int
		itemID int64
	}
	var items []equipped
	for rows.Next() {
		var e equipped
		if err := rows.Scan(&e.slot, &e.itemID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning equipment row: %w", err)
		}
		items = append(items, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading equipment: %w", err)
	}
	for _, e := range items {
		book, err := s.StorybookByID(ctx, e.itemID)
		if err != nil {
			return nil, fmt.Errorf("character %d slot %d: %w", id, e.slot, err)
		}
		if _, err := c.Loadout.Equip(book.Equipped(e.slot)); err != nil {
			return nil, fmt.Errorf("character %d: %w", id, err)
		}
	}

	skillIDs, err := collectInt64s(ctx, s, `
		SELECT skill_id FROM character_skills WHERE character_id = $1 ORDER BY skill_id`, id)
	if err != nil {
		return nil, fmt.Errorf("querying skills: %w", err)
	}
	c.Skills = character.NewSkillSet(skillIDs...)
	return &c, nil
}

// UpdateCharacter persists scalar fields and replaces the stored loadout.
//
// Postcondition: Returns nil on success or an error wrapping storage.ErrNotFound
// if no row matched.
func (s *Store) UpdateCharacter(ctx context.Context, c *character.Character) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE characters SET
				name = $2, class = $3,
				strength = $4, agility = $5, intelligence = $6,
				endurance = $7, charisma = $8, luck = $9,
				current_energy = $10, max_energy = $11, current_health = $12, max_health = $13,
				level = $14, experience = $15, gold = $16, reputation = $17,
				current_year = $18, current_month = $19, total_turns = $20,
				updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at`,
			c.ID, c.Name, c.Class,
			c.Stats.Strength, c.Stats.Agility, c.Stats.Intelligence,
			c.Stats.Endurance, c.Stats.Charisma, c.Stats.Luck,
			c.CurrentEnergy, c.MaxEnergy, c.CurrentHealth, c.MaxHealth,
			c.Level, c.Experience, c.Gold, c.Reputation,
			c.CurrentYear, c.CurrentMonth, c.TotalTurns,
		).Scan(&c.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("character %d: %w", c.ID, storage.ErrNotFound)
			}
			return fmt.Errorf("updating character: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM character_equipment WHERE character_id = $1`, c.ID); err != nil {
			return fmt.Errorf("clearing equipment: %w", err)
		}
		return writeLoadout(ctx, tx, c)
	})
}

// GrantSkill records skillID for the character. Re-granting is a no-op.
func (s *Store) GrantSkill(ctx context.Context, characterID, skillID int64) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO character_skills (character_id, skill_id) VALUES ($1, $2)
		ON CONFLICT (character_id, skill_id) DO NOTHING`,
		characterID, skillID,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("character %d: %w", characterID, storage.ErrNotFound)
		}
		return fmt.Errorf("granting skill: %w", err)
	}
	return nil
}

func writeLoadout(ctx context.Context, tx pgx.Tx, c *character.Character) error {
	for _, item := range c.Loadout.Items() {
		if _, err := tx.Exec(ctx, `
			INSERT INTO character_equipment (character_id, slot, item_id) VALUES ($1, $2, $3)`,
			c.ID, item.Slot, item.ItemID); err != nil {
			return fmt.Errorf("inserting equipment slot %d: %w", item.Slot, err)
		}
	}
	return nil
}

func collectInt64s(ctx context.Context, s *Store, sql string, args ...any) ([]int64, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}
