package inventory

import (
	"errors"
	"fmt"
)

var (
	// ErrItemNotFound is returned when an operation names an id the inventory does not hold.
	ErrItemNotFound = errors.New("item not found")
	// ErrInsufficientQuantity is returned when consuming more units than are held.
	ErrInsufficientQuantity = errors.New("insufficient quantity")
)

// Inventory is an ordered list of item entries with unique ids.
// The zero value is an empty inventory.
type Inventory []Item

// Add places item into the inventory. An entry with the same id absorbs the
// quantity; otherwise the item is appended. It is atomic: on error the
// inventory is unchanged.
//
// Precondition: item.Quantity >= 1.
// Postcondition: every entry has Quantity >= 1 and ids are unique.
func (inv *Inventory) Add(item Item) error {
	if verr := item.Validate(); verr != nil {
		return verr
	}
	for i := range *inv {
		if (*inv)[i].ID == item.ID {
			(*inv)[i].Quantity += item.Quantity
			return nil
		}
	}
	*inv = append(*inv, item)
	return nil
}

// Find returns the entry with id and whether it was found.
func (inv Inventory) Find(id string) (Item, bool) {
	for _, it := range inv {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Consume removes n units of id and returns the entry as it was before the
// call. An entry reaching quantity 0 is removed.
//
// Precondition: n >= 1.
// Postcondition: on error the inventory is unchanged.
func (inv *Inventory) Consume(id string, n int) (Item, error) {
	if n < 1 {
		return Item{}, fmt.Errorf("consume %q: quantity must be >= 1, got %d", id, n)
	}
	for i := range *inv {
		if (*inv)[i].ID != id {
			continue
		}
		before := (*inv)[i]
		if before.Quantity < n {
			return Item{}, fmt.Errorf("consume %q: have %d, need %d: %w", id, before.Quantity, n, ErrInsufficientQuantity)
		}
		(*inv)[i].Quantity -= n
		if (*inv)[i].Quantity == 0 {
			*inv = append((*inv)[:i], (*inv)[i+1:]...)
		}
		return before, nil
	}
	return Item{}, fmt.Errorf("consume %q: %w", id, ErrItemNotFound)
}

// Remove drops the entry with id entirely.
func (inv *Inventory) Remove(id string) error {
	for i := range *inv {
		if (*inv)[i].ID == id {
			*inv = append((*inv)[:i], (*inv)[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("remove %q: %w", id, ErrItemNotFound)
}

// Clone returns an independent copy.
func (inv Inventory) Clone() Inventory {
	if inv == nil {
		return nil
	}
	out := make(Inventory, len(inv))
	copy(out, inv)
	return out
}

// TotalUnits returns the sum of all quantities.
func (inv Inventory) TotalUnits() int {
	n := 0
	for _, it := range inv {
		n += it.Quantity
	}
	return n
}
