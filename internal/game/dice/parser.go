package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Expression represents a parsed dice expression ready to be rolled.
// Precondition: Count >= 1, Sides >= 2 after successful Parse.
type Expression struct {
	Raw         string // original input string
	Count       int    // number of dice
	Sides       int    // faces per die
	Modifier    int    // flat modifier (may be negative)
	KeepHighest int    // if > 0, keep only the N highest dice (e.g. 4d6kh3)
}

// Min returns the lowest total the expression can produce.
func (e Expression) Min() int {
	return e.kept() + e.Modifier
}

// Max returns the highest total the expression can produce.
func (e Expression) Max() int {
	return e.kept()*e.Sides + e.Modifier
}

func (e Expression) kept() int {
	if e.KeepHighest > 0 {
		return e.KeepHighest
	}
	return e.Count
}

// count, sides (digits or %), keep-highest, modifier.
var exprPattern = regexp.MustCompile(`^(\d*)d(\d+|%)(?:kh(\d+))?([+-]\d+)?$`)

// Parse parses a dice expression string into an Expression.
// Supported forms: "d20", "2d6", "2d6+3", "4d8-2", "4d6kh3", "d%" (d100).
// Whitespace is ignored and letters are case-insensitive.
//
// Precondition: expr must be a non-empty string.
// Postcondition: Returns a valid Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	if strings.TrimSpace(expr) == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}
	norm := strings.ToLower(strings.Join(strings.Fields(expr), ""))
	m := exprPattern.FindStringSubmatch(norm)
	if m == nil {
		return Expression{}, fmt.Errorf("dice: malformed expression %q", expr)
	}

	e := Expression{Raw: expr, Count: 1}
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: must be >= 1", expr)
		}
		e.Count = n
	}

	if m[2] == "%" {
		e.Sides = 100
	} else {
		n, err := strconv.Atoi(m[2])
		if err != nil || n < 2 {
			return Expression{}, fmt.Errorf("dice: invalid die sides in %q: must be >= 2", expr)
		}
		e.Sides = n
	}

	if m[3] != "" {
		kh, err := strconv.Atoi(m[3])
		if err != nil || kh < 1 || kh >= e.Count {
			return Expression{}, fmt.Errorf("dice: kh value in %q must be > 0 and < count %d", expr, e.Count)
		}
		e.KeepHighest = kh
	}

	if m[4] != "" {
		mod, err := strconv.Atoi(m[4])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", expr, err)
		}
		e.Modifier = mod
	}
	return e, nil
}
