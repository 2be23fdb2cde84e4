package dice

import "sort"

// MustParse parses expr and panics on error. Useful for package-level constants.
//
// Precondition: expr must be a valid dice expression.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}

// Evaluate rolls expr through rng, one UniformIntRange draw per die, keeping
// the highest KeepHighest dice when set.
//
// Precondition: expr must come from Parse; rng must be non-nil.
// Postcondition: len(result.Dice) == expr.Count, or expr.KeepHighest when set;
// result.Total() == sum(result.Dice) + expr.Modifier.
func Evaluate(rng RNG, expr Expression) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = rng.UniformIntRange(1, expr.Sides)
	}
	kept := rolled
	if expr.KeepHighest > 0 && expr.KeepHighest < len(rolled) {
		sorted := append([]int(nil), rolled...)
		sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
		kept = sorted[:expr.KeepHighest]
	}
	return RollResult{Expression: expr.Raw, Dice: kept, Modifier: expr.Modifier}
}
