package character

import (
	"errors"
	"fmt"
	"sort"
)

// MaxEquipped is the number of loadout slots; slots are numbered 1..MaxEquipped.
const MaxEquipped = 5

// ErrInvalidSlot is returned when a slot number is outside 1..MaxEquipped.
var ErrInvalidSlot = errors.New("invalid slot")

// EquippedItem is a storybook occupying one loadout slot.
type EquippedItem struct {
	Slot   int
	ItemID int64
	Name   string
	// StatBonuses maps a stat to a percentage bonus applied to training gains.
	StatBonuses map[Stat]int
}

// Loadout holds up to MaxEquipped items, one per slot.
//
// Invariant: no two slots hold the same ItemID.
type Loadout struct {
	slots map[int]EquippedItem
}

// Equip places item into item.Slot. An occupant of that slot is replaced; if
// the same item sits in another slot it moves.
//
// Precondition: item.Slot in [1, MaxEquipped].
// Postcondition: Returns the displaced occupant (if any) or ErrInvalidSlot.
func (l *Loadout) Equip(item EquippedItem) (*EquippedItem, error) {
	if item.Slot < 1 || item.Slot > MaxEquipped {
		return nil, fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidSlot, item.Slot, MaxEquipped)
	}
	if l.slots == nil {
		l.slots = make(map[int]EquippedItem, MaxEquipped)
	}
	for slot, held := range l.slots {
		if held.ItemID == item.ItemID && slot != item.Slot {
			delete(l.slots, slot)
		}
	}
	var displaced *EquippedItem
	if prev, ok := l.slots[item.Slot]; ok && prev.ItemID != item.ItemID {
		displaced = &prev
	}
	l.slots[item.Slot] = item
	return displaced, nil
}

// Unequip empties slot.
//
// Postcondition: Returns the removed item, nil for an empty slot, or ErrInvalidSlot.
func (l *Loadout) Unequip(slot int) (*EquippedItem, error) {
	if slot < 1 || slot > MaxEquipped {
		return nil, fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidSlot, slot, MaxEquipped)
	}
	prev, ok := l.slots[slot]
	if !ok {
		return nil, nil
	}
	delete(l.slots, slot)
	return &prev, nil
}

// InSlot returns the item in slot, or nil when the slot is empty.
func (l Loadout) InSlot(slot int) *EquippedItem {
	item, ok := l.slots[slot]
	if !ok {
		return nil
	}
	return &item
}

// Items returns the equipped items ordered by slot.
func (l Loadout) Items() []EquippedItem {
	out := make([]EquippedItem, 0, len(l.slots))
	for _, item := range l.slots {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out
}

// ItemIDs returns the equipped item ids ordered by slot.
func (l Loadout) ItemIDs() []int64 {
	items := l.Items()
	out := make([]int64, len(items))
	for i, item := range items {
		out[i] = item.ItemID
	}
	return out
}

// Len returns the number of occupied slots.
func (l Loadout) Len() int { return len(l.slots) }

// BonusPercent sums the equipped items' percentage bonuses for st.
func (l Loadout) BonusPercent(st Stat) int {
	total := 0
	for _, item := range l.slots {
		total += item.StatBonuses[st]
	}
	return total
}

func (l Loadout) clone() Loadout {
	var out Loadout
	for _, item := range l.slots {
		_, _ = out.Equip(item)
	}
	return out
}
