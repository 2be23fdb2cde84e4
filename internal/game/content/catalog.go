package content

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/decade/internal/game/character"
)

// Catalog is the validated, read-only set of authored content.
//
// A Catalog is safe for concurrent reads; nothing mutates it after construction.
type Catalog struct {
	enemies    map[int64]*EnemyTemplate
	skills     map[int64]Skill
	events     map[int64]*RandomEvent
	scenarios  map[int64]*TrainingScenario
	storybooks map[int64]*Storybook

	enemyOrder    []int64
	eventOrder    []int64
	scenarioOrder []int64
}

// Set is the raw content handed to NewCatalog.
type Set struct {
	Enemies    []*EnemyTemplate
	Skills     []Skill
	Events     []*RandomEvent
	Scenarios  []*TrainingScenario
	Storybooks []*Storybook
}

// NewCatalog validates set and indexes it by id.
//
// Postcondition: Returns an error on any invalid record, duplicate id, or
// dangling reference from an event to an enemy, skill, event, or storybook.
func NewCatalog(set Set) (*Catalog, error) {
	c := &Catalog{
		enemies:    make(map[int64]*EnemyTemplate, len(set.Enemies)),
		skills:     make(map[int64]Skill, len(set.Skills)),
		events:     make(map[int64]*RandomEvent, len(set.Events)),
		scenarios:  make(map[int64]*TrainingScenario, len(set.Scenarios)),
		storybooks: make(map[int64]*Storybook, len(set.Storybooks)),
	}
	for _, e := range set.Enemies {
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.enemies[e.ID]; dup {
			return nil, fmt.Errorf("duplicate enemy id %d", e.ID)
		}
		c.enemies[e.ID] = e
		c.enemyOrder = append(c.enemyOrder, e.ID)
	}
	for _, s := range set.Skills {
		if _, dup := c.skills[s.SkillID()]; dup {
			return nil, fmt.Errorf("duplicate skill id %d", s.SkillID())
		}
		c.skills[s.SkillID()] = s
	}
	for _, b := range set.Storybooks {
		if err := b.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.storybooks[b.ID]; dup {
			return nil, fmt.Errorf("duplicate storybook id %d", b.ID)
		}
		c.storybooks[b.ID] = b
	}
	for _, t := range set.Scenarios {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.scenarios[t.ID]; dup {
			return nil, fmt.Errorf("duplicate training id %d", t.ID)
		}
		c.scenarios[t.ID] = t
		c.scenarioOrder = append(c.scenarioOrder, t.ID)
	}
	for _, ev := range set.Events {
		if err := ev.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.events[ev.ID]; dup {
			return nil, fmt.Errorf("duplicate event id %d", ev.ID)
		}
		c.events[ev.ID] = ev
		c.eventOrder = append(c.eventOrder, ev.ID)
	}
	for _, ev := range set.Events {
		if err := c.checkReferences(ev); err != nil {
			return nil, err
		}
	}
	sortIDs(c.enemyOrder)
	sortIDs(c.eventOrder)
	sortIDs(c.scenarioOrder)
	return c, nil
}

func (c *Catalog) checkReferences(ev *RandomEvent) error {
	if ev.TriggerItemID != 0 {
		if _, ok := c.storybooks[ev.TriggerItemID]; !ok {
			return fmt.Errorf("event %d: unknown trigger_item %d", ev.ID, ev.TriggerItemID)
		}
	}
	for _, ch := range ev.Choices {
		payloads := []Payload{ch.Success}
		if ch.Failure != nil {
			payloads = append(payloads, *ch.Failure)
		}
		for _, p := range payloads {
			if p.GrantSkillID != 0 {
				if _, ok := c.skills[p.GrantSkillID]; !ok {
					return fmt.Errorf("event %d choice %d: unknown skill %d", ev.ID, ch.ID, p.GrantSkillID)
				}
			}
			if p.FollowUpEventID != 0 {
				if _, ok := c.events[p.FollowUpEventID]; !ok {
					return fmt.Errorf("event %d choice %d: unknown follow-up event %d", ev.ID, ch.ID, p.FollowUpEventID)
				}
			}
			if p.BattleEnemyID != 0 {
				if _, ok := c.enemies[p.BattleEnemyID]; !ok {
					return fmt.Errorf("event %d choice %d: unknown enemy %d", ev.ID, ch.ID, p.BattleEnemyID)
				}
			}
		}
	}
	return nil
}

// Enemy returns the enemy template with id.
func (c *Catalog) Enemy(id int64) (*EnemyTemplate, bool) {
	e, ok := c.enemies[id]
	return e, ok
}

// EligibleEnemies returns the enemies with minTier <= tier <= maxTier that may
// appear in season, ordered by id.
func (c *Catalog) EligibleEnemies(minTier, maxTier int, season character.Season) []*EnemyTemplate {
	var out []*EnemyTemplate
	for _, id := range c.enemyOrder {
		e := c.enemies[id]
		if e.Tier >= minTier && e.Tier <= maxTier && e.AllowedIn(season) {
			out = append(out, e)
		}
	}
	return out
}

// Skill returns the skill with id.
func (c *Catalog) Skill(id int64) (Skill, bool) {
	s, ok := c.skills[id]
	return s, ok
}

// Event returns the event with id.
func (c *Catalog) Event(id int64) (*RandomEvent, bool) {
	ev, ok := c.events[id]
	return ev, ok
}

// EligibleEvents returns the events action can trigger in season, ordered by id.
// Events tied to an item are eligible only while that item is equipped.
// Event-level stat requirements are not evaluated here.
func (c *Catalog) EligibleEvents(action Action, season character.Season, equippedItemIDs []int64) []*RandomEvent {
	equipped := make(map[int64]bool, len(equippedItemIDs))
	for _, id := range equippedItemIDs {
		equipped[id] = true
	}
	var out []*RandomEvent
	for _, id := range c.eventOrder {
		ev := c.events[id]
		if !ev.TriggeredBy(action) || !ev.AllowedIn(season) {
			continue
		}
		if ev.TriggerItemID != 0 && !equipped[ev.TriggerItemID] {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Scenario returns the training scenario with id.
func (c *Catalog) Scenario(id int64) (*TrainingScenario, bool) {
	t, ok := c.scenarios[id]
	return t, ok
}

// Scenarios returns every scenario of kind, ordered by id.
func (c *Catalog) Scenarios(kind ScenarioKind) []*TrainingScenario {
	var out []*TrainingScenario
	for _, id := range c.scenarioOrder {
		if t := c.scenarios[id]; t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

// Storybook returns the storybook with id.
func (c *Catalog) Storybook(id int64) (*Storybook, bool) {
	b, ok := c.storybooks[id]
	return b, ok
}

// MalformedRequirements lists "event N" / "event N choice M" for every
// requirement block that failed to parse and was treated as empty.
func (c *Catalog) MalformedRequirements() []string {
	var out []string
	for _, id := range c.eventOrder {
		ev := c.events[id]
		if ev.Requirements.Malformed {
			out = append(out, fmt.Sprintf("event %d", ev.ID))
		}
		for _, ch := range ev.Choices {
			if ch.Requirements.Malformed {
				out = append(out, fmt.Sprintf("event %d choice %d", ev.ID, ch.ID))
			}
		}
	}
	return out
}

// LoadCatalog reads every *.yaml file under the enemies, skills, events,
// training, and storybooks subdirectories of dir. Each file holds a YAML list.
// A missing subdirectory contributes nothing.
//
// Precondition: dir must be a readable directory; logger must be non-nil.
// Postcondition: Returns a validated Catalog or an error on the first read,
// parse, or validation failure.
func LoadCatalog(dir string, logger *zap.Logger) (*Catalog, error) {
	var set Set
	var err error
	if set.Enemies, err = loadList[*EnemyTemplate](filepath.Join(dir, "enemies")); err != nil {
		return nil, err
	}
	records, err := loadList[skillRecord](filepath.Join(dir, "skills"))
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		s, err := r.toSkill()
		if err != nil {
			return nil, err
		}
		set.Skills = append(set.Skills, s)
	}
	if set.Events, err = loadList[*RandomEvent](filepath.Join(dir, "events")); err != nil {
		return nil, err
	}
	if set.Scenarios, err = loadList[*TrainingScenario](filepath.Join(dir, "training")); err != nil {
		return nil, err
	}
	if set.Storybooks, err = loadList[*Storybook](filepath.Join(dir, "storybooks")); err != nil {
		return nil, err
	}

	c, err := NewCatalog(set)
	if err != nil {
		return nil, fmt.Errorf("validating content in %q: %w", dir, err)
	}
	for _, where := range c.MalformedRequirements() {
		logger.Warn("malformed requirements treated as none", zap.String("record", where))
	}
	logger.Info("content loaded",
		zap.String("dir", dir),
		zap.Int("enemies", len(c.enemies)),
		zap.Int("skills", len(c.skills)),
		zap.Int("events", len(c.events)),
		zap.Int("scenarios", len(c.scenarios)),
		zap.Int("storybooks", len(c.storybooks)),
	)
	return c, nil
}

// ParseSkills decodes a YAML list of skills into their variants.
func ParseSkills(data []byte) ([]Skill, error) {
	var records []skillRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing skills YAML: %w", err)
	}
	out := make([]Skill, 0, len(records))
	for _, r := range records {
		s, err := r.toSkill()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func loadList[T any](dir string) ([]T, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading content dir %q: %w", dir, err)
	}

	var out []T
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var items []T
		if err := yaml.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		out = append(out, items...)
	}
	return out, nil
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
