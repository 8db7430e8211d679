// Package slots manages the local save slots: a bounded set of named
// snapshots plus one auto-save slot that does not count toward the limit.
package slots

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

const (
	// AutoSaveID is the reserved slot written by AutoSave.
	AutoSaveID = "auto-save"
	// AutoSaveName is the display name of the auto-save slot.
	AutoSaveName = "Auto Save"
	// DefaultMaxSlots is the named slot limit when none is configured.
	DefaultMaxSlots = 3
)

// ErrSlotNotFound is returned by a Store when no slot has the requested id.
var ErrSlotNotFound = errors.New("slot not found")

// Slot is one stored snapshot. Data is the serialized game document.
type Slot struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Store persists slots. Put overwrites a slot with the same id.
type Store interface {
	Put(ctx context.Context, s Slot) error
	Get(ctx context.Context, id string) (Slot, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Slot, error)
	Clear(ctx context.Context) error
}
