// Package character defines the character domain model: core stats, resource
// pools, progression fields, the calendar, the loadout, and acquired skills.
package character

import (
	"fmt"
	"sort"
	"time"
)

// Stat identifies one of the six core stats.
type Stat string

const (
	Strength     Stat = "strength"
	Agility      Stat = "agility"
	Intelligence Stat = "intelligence"
	Endurance    Stat = "endurance"
	Charisma     Stat = "charisma"
	Luck         Stat = "luck"
)

// AllStats lists the core stats in canonical order.
var AllStats = []Stat{Strength, Agility, Intelligence, Endurance, Charisma, Luck}

// ParseStat returns the Stat named s.
//
// Postcondition: Returns an error iff s is not one of the six core stat names.
func ParseStat(s string) (Stat, error) {
	for _, st := range AllStats {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown stat %q", s)
}

// Resource identifies a non-stat quantity a payload can change.
type Resource string

const (
	Energy     Resource = "energy"
	Health     Resource = "health"
	Gold       Resource = "gold"
	Reputation Resource = "reputation"
	Experience Resource = "experience"
)

// Stat bounds.
const (
	MinStat = 0
	MaxStat = 999
)

// MaxTurns is the length of a full game: ten years of months.
const MaxTurns = 120

// Class selects a character's combat archetype.
type Class string

const (
	Warrior Class = "warrior"
	Mage    Class = "mage"
	Rogue   Class = "rogue"
)

// ParseClass returns the Class named s; the empty string yields Warrior.
func ParseClass(s string) (Class, error) {
	switch Class(s) {
	case "":
		return Warrior, nil
	case Warrior, Mage, Rogue:
		return Class(s), nil
	}
	return "", fmt.Errorf("unknown class %q", s)
}

// Stats holds the six core stat values.
type Stats struct {
	Strength     int
	Agility      int
	Intelligence int
	Endurance    int
	Charisma     int
	Luck         int
}

// Get returns the value of s; unknown stats read as 0.
func (s Stats) Get(st Stat) int {
	switch st {
	case Strength:
		return s.Strength
	case Agility:
		return s.Agility
	case Intelligence:
		return s.Intelligence
	case Endurance:
		return s.Endurance
	case Charisma:
		return s.Charisma
	case Luck:
		return s.Luck
	}
	return 0
}

func (s *Stats) set(st Stat, v int) {
	switch st {
	case Strength:
		s.Strength = v
	case Agility:
		s.Agility = v
	case Intelligence:
		s.Intelligence = v
	case Endurance:
		s.Endurance = v
	case Charisma:
		s.Charisma = v
	case Luck:
		s.Luck = v
	}
}

// Total returns the sum of all six stats.
func (s Stats) Total() int {
	return s.Strength + s.Agility + s.Intelligence + s.Endurance + s.Charisma + s.Luck
}

// StatChange records one mutation of a stat or resource.
//
// Invariant: After == Before + Delta.
type StatChange struct {
	Name   string `json:"name"`
	Before int    `json:"before"`
	After  int    `json:"after"`
	Delta  int    `json:"delta"`
}

func change(name string, before, after int) StatChange {
	return StatChange{Name: name, Before: before, After: after, Delta: after - before}
}

// Character is a player character's full mutable state.
//
// ID is set by the persistence layer; zero indicates an unsaved character.
type Character struct {
	ID    int64
	Name  string
	Class Class

	Stats Stats

	CurrentEnergy int
	MaxEnergy     int
	CurrentHealth int
	MaxHealth     int

	Level      int
	Experience int
	Gold       int
	Reputation int

	CurrentYear  int
	CurrentMonth int
	TotalTurns   int

	Loadout Loadout
	Skills  SkillSet

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalPower returns the sum of the six core stats.
func (c *Character) TotalPower() int {
	return c.Stats.Total()
}

// AdjustStat adds delta to st, clamping the result to [MinStat, MaxStat].
//
// Postcondition: the returned change reports the applied (post-clamp) delta.
func (c *Character) AdjustStat(st Stat, delta int) StatChange {
	before := c.Stats.Get(st)
	after := clamp(before+delta, MinStat, MaxStat)
	c.Stats.set(st, after)
	return change(string(st), before, after)
}

// AdjustResource adds delta to r, clamping to the resource's range:
// energy [0, MaxEnergy], health [1, MaxHealth], gold/reputation/experience >= 0.
//
// Postcondition: the returned change reports the applied (post-clamp) delta.
func (c *Character) AdjustResource(r Resource, delta int) StatChange {
	var before, after int
	switch r {
	case Energy:
		before = c.CurrentEnergy
		after = clamp(before+delta, 0, c.MaxEnergy)
		c.CurrentEnergy = after
	case Health:
		before = c.CurrentHealth
		after = clamp(before+delta, 1, c.MaxHealth)
		c.CurrentHealth = after
	case Gold:
		before = c.Gold
		after = max(before+delta, 0)
		c.Gold = after
	case Reputation:
		before = c.Reputation
		after = max(before+delta, 0)
		c.Reputation = after
	case Experience:
		before = c.Experience
		after = max(before+delta, 0)
		c.Experience = after
	}
	return change(string(r), before, after)
}

// SetHealth sets CurrentHealth to hp clamped into [1, MaxHealth].
func (c *Character) SetHealth(hp int) StatChange {
	return c.AdjustResource(Health, hp-c.CurrentHealth)
}

// Clone returns a deep copy of c.
func (c *Character) Clone() *Character {
	out := *c
	out.Loadout = c.Loadout.clone()
	out.Skills = c.Skills.clone()
	return &out
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}

// SkillSet is the set of skill ids a character has acquired.
type SkillSet struct {
	ids map[int64]struct{}
}

// NewSkillSet returns a SkillSet holding ids.
func NewSkillSet(ids ...int64) SkillSet {
	var s SkillSet
	for _, id := range ids {
		s.Grant(id)
	}
	return s
}

// Grant adds id to the set.
//
// Postcondition: Returns true iff id was not already held.
func (s *SkillSet) Grant(id int64) bool {
	if s.ids == nil {
		s.ids = make(map[int64]struct{})
	}
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Has reports whether id is held.
func (s SkillSet) Has(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

// IDs returns the held skill ids in ascending order.
func (s SkillSet) IDs() []int64 {
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of held skills.
func (s SkillSet) Len() int { return len(s.ids) }

func (s SkillSet) clone() SkillSet {
	return NewSkillSet(s.IDs()...)
}
