package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/cory-johannsen/decade/internal/game/character"
	"github.com/cory-johannsen/decade/internal/game/content"
)

// CatalogReader implements ContentReader over an in-memory content.Catalog.
// Adapters embed it; authored content is never stored in the database.
type CatalogReader struct {
	catalog *content.Catalog
}

var _ ContentReader = (*CatalogReader)(nil)

// NewCatalogReader wraps catalog.
//
// Precondition: catalog must be non-nil.
func NewCatalogReader(catalog *content.Catalog) *CatalogReader {
	return &CatalogReader{catalog: catalog}
}

func (r *CatalogReader) EnemyByID(_ context.Context, id int64) (*content.EnemyTemplate, error) {
	e, ok := r.catalog.Enemy(id)
	if !ok {
		return nil, fmt.Errorf("enemy %d: %w", id, ErrNotFound)
	}
	return e, nil
}

func (r *CatalogReader) EligibleEnemies(_ context.Context, minTier, maxTier int, season character.Season) ([]*content.EnemyTemplate, error) {
	return r.catalog.EligibleEnemies(minTier, maxTier, season), nil
}

func (r *CatalogReader) EventByID(_ context.Context, id int64) (*content.RandomEvent, error) {
	ev, ok := r.catalog.Event(id)
	if !ok {
		return nil, fmt.Errorf("event %d: %w", id, ErrNotFound)
	}
	return ev, nil
}

func (r *CatalogReader) EligibleEvents(_ context.Context, action content.Action, season character.Season, itemIDs []int64) ([]*content.RandomEvent, error) {
	return r.catalog.EligibleEvents(action, season, itemIDs), nil
}

func (r *CatalogReader) ScenarioByID(_ context.Context, id int64) (*content.TrainingScenario, error) {
	t, ok := r.catalog.Scenario(id)
	if !ok {
		return nil, fmt.Errorf("training scenario %d: %w", id, ErrNotFound)
	}
	return t, nil
}

func (r *CatalogReader) ScenariosByKind(_ context.Context, kind content.ScenarioKind) ([]*content.TrainingScenario, error) {
	return r.catalog.Scenarios(kind), nil
}

func (r *CatalogReader) SkillByID(_ context.Context, id int64) (content.Skill, error) {
	s, ok := r.catalog.Skill(id)
	if !ok {
		return nil, fmt.Errorf("skill %d: %w", id, ErrNotFound)
	}
	return s, nil
}

func (r *CatalogReader) StorybookByID(_ context.Context, id int64) (*content.Storybook, error) {
	b, ok := r.catalog.Storybook(id)
	if !ok {
		return nil, fmt.Errorf("storybook %d: %w", id, ErrNotFound)
	}
	return b, nil
}

// HeldSkills resolves a character's skill ids to content. Ids with no
// matching content are skipped.
func HeldSkills(ctx context.Context, r ContentReader, c *character.Character) ([]content.Skill, error) {
	var out []content.Skill
	for _, id := range c.Skills.IDs() {
		s, err := r.SkillByID(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
