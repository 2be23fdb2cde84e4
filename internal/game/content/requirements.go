package content

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/decade/internal/game/character"
)

// Requirements is a set of minimum stat thresholds.
//
// Authored requirement data that cannot be parsed is treated as no requirement
// at all; Malformed records that this happened so loaders can report it.
type Requirements struct {
	thresholds map[character.Stat]int
	Malformed  bool
}

// NewRequirements returns Requirements with the given thresholds.
func NewRequirements(thresholds map[character.Stat]int) Requirements {
	r := Requirements{thresholds: make(map[character.Stat]int, len(thresholds))}
	for st, v := range thresholds {
		r.thresholds[st] = v
	}
	return r
}

// UnmarshalYAML decodes a stat→threshold mapping. It never fails: any decoding
// problem or unknown stat name yields empty Requirements with Malformed set.
func (r *Requirements) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]int
	if err := node.Decode(&raw); err != nil {
		*r = Requirements{Malformed: true}
		return nil
	}
	parsed := make(map[character.Stat]int, len(raw))
	for name, v := range raw {
		st, err := character.ParseStat(name)
		if err != nil {
			*r = Requirements{Malformed: true}
			return nil
		}
		parsed[st] = v
	}
	*r = NewRequirements(parsed)
	return nil
}

// Met reports whether every threshold is satisfied by stats.
//
// Postcondition: empty Requirements are always met.
func (r Requirements) Met(stats character.Stats) bool {
	for st, min := range r.thresholds {
		if stats.Get(st) < min {
			return false
		}
	}
	return true
}

// Empty reports whether there are no thresholds.
func (r Requirements) Empty() bool { return len(r.thresholds) == 0 }

// Threshold returns the minimum for st and whether one is set.
func (r Requirements) Threshold(st character.Stat) (int, bool) {
	v, ok := r.thresholds[st]
	return v, ok
}

// Stats returns the constrained stats in canonical order.
func (r Requirements) Stats() []character.Stat {
	out := make([]character.Stat, 0, len(r.thresholds))
	for st := range r.thresholds {
		out = append(out, st)
	}
	order := make(map[character.Stat]int, len(character.AllStats))
	for i, st := range character.AllStats {
		order[st] = i
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i]] < order[out[j]] })
	return out
}
