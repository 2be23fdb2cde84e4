package character

import "errors"

// Starting values for a new character.
const (
	StartingStat   = 10
	StartingEnergy = 100
	StartingHealth = 100
)

// New constructs a level-1 character at the start of the timeline.
//
// Precondition: name must be non-empty.
// Postcondition: Returns a Character ready for persistence, or a non-nil error.
func New(name string, class Class) (*Character, error) {
	if name == "" {
		return nil, errors.New("character name must not be empty")
	}
	if class == "" {
		class = Warrior
	}
	return &Character{
		Name:  name,
		Class: class,
		Stats: Stats{
			Strength:     StartingStat,
			Agility:      StartingStat,
			Intelligence: StartingStat,
			Endurance:    StartingStat,
			Charisma:     StartingStat,
			Luck:         StartingStat,
		},
		CurrentEnergy: StartingEnergy,
		MaxEnergy:     StartingEnergy,
		CurrentHealth: StartingHealth,
		MaxHealth:     StartingHealth,
		Level:         1,
		CurrentYear:   1,
		CurrentMonth:  1,
	}, nil
}
