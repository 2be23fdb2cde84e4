package character

// Season is one of four calendar buckets derived from the month.
type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Autumn Season = "autumn"
	Winter Season = "winter"
)

// ParseSeason returns the Season named s.
func ParseSeason(s string) (Season, bool) {
	switch Season(s) {
	case Spring, Summer, Autumn, Winter:
		return Season(s), true
	}
	return "", false
}

// SeasonForMonth maps a month to its season: spring 3-5, summer 6-8,
// autumn 9-11, winter 12, 1, 2.
//
// Precondition: month is in [1, 12].
func SeasonForMonth(month int) Season {
	switch {
	case month >= 3 && month <= 5:
		return Spring
	case month >= 6 && month <= 8:
		return Summer
	case month >= 9 && month <= 11:
		return Autumn
	default:
		return Winter
	}
}

// Season returns the character's current season.
func (c *Character) Season() Season {
	return SeasonForMonth(c.CurrentMonth)
}

// AdvanceMonth moves the calendar forward one month, wrapping December into
// January of the next year, and counts one turn.
//
// Postcondition: TotalTurns is incremented by exactly one.
func (c *Character) AdvanceMonth() {
	c.CurrentMonth++
	if c.CurrentMonth > 12 {
		c.CurrentMonth = 1
		c.CurrentYear++
	}
	c.TotalTurns++
}

// IsComplete reports whether the character has lived the full timeline.
func (c *Character) IsComplete() bool {
	return c.TotalTurns >= MaxTurns
}
