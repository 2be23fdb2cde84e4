// Package dice provides the randomness port for the simulation engine: raw
// sources, dice expressions, and the RNG contract every resolver draws through.
package dice

import "fmt"

// RollResult holds the full audit trail for a single dice roll evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // original expression string, e.g. "2d6+3"
	Dice       []int  // individual die results before modifier
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of all die results plus the modifier.
//
// Postcondition: return value == sum(r.Dice) + r.Modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string in the format:
//
//	"2d6+3 → [4 5] +3 = 12"
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	diceStr := fmt.Sprintf("%v", r.Dice)
	modStr := fmt.Sprintf("%+d", r.Modifier)
	return fmt.Sprintf("%s → %s %s = %d", r.Expression, diceStr, modStr, r.Total())
}

// Source is the raw randomness provider behind every draw.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0, 1).
	Float64() float64
}

// RNG is the randomness contract consumed by the simulation resolvers.
// No resolver draws from any other random source.
type RNG interface {
	// UniformInt returns an int in [0, max). Returns 0 when max <= 0.
	UniformInt(max int) int
	// UniformIntRange returns an int in [min, max], inclusive on both ends.
	UniformIntRange(min, max int) int
	// Float01 returns a float in [0, 1).
	Float01() float64
	// Chance reports whether a fresh Float01 draw is strictly less than p.
	Chance(p float64) bool
	// DiceSum rolls count dice with the given number of sides and sums them.
	DiceSum(sides, count int) int
}
