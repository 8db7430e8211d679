package slots

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Manager applies the slot limit and eviction policy over a Store. Storage
// failures are logged and reported as a false or empty result; they are
// never returned to the caller.
type Manager struct {
	store    Store
	maxSlots int
	logger   *zap.Logger
	now      func() time.Time
}

// NewManager creates a Manager.
//
// Precondition: store and logger must be non-nil. maxSlots <= 0 uses DefaultMaxSlots.
func NewManager(store Store, maxSlots int, logger *zap.Logger) *Manager {
	if maxSlots <= 0 {
		maxSlots = DefaultMaxSlots
	}
	return &Manager{store: store, maxSlots: maxSlots, logger: logger, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// MaxSlots returns the named slot limit.
func (m *Manager) MaxSlots() int { return m.maxSlots }

// Save serializes data into slot id. An existing slot is overwritten in
// place; a new named slot that would exceed the limit first evicts the
// oldest named slot. The auto-save slot is exempt from the limit.
//
// Postcondition: the number of named slots never exceeds MaxSlots.
func (m *Manager) Save(ctx context.Context, id, name string, data any) bool {
	raw, err := json.Marshal(data)
	if err != nil {
		m.logger.Error("failed to save", zap.String("slot", id), zap.Error(err))
		return false
	}
	return m.put(ctx, Slot{ID: id, Name: name, Timestamp: m.now().UTC(), Data: raw}, "failed to save")
}

// AutoSave writes data to the auto-save slot.
func (m *Manager) AutoSave(ctx context.Context, data any) bool {
	return m.Save(ctx, AutoSaveID, AutoSaveName, data)
}

func (m *Manager) put(ctx context.Context, s Slot, failMsg string) bool {
	s.ID = strings.TrimSpace(s.ID)
	if s.ID == "" {
		m.logger.Error(failMsg, zap.Error(errors.New("slot id is required")))
		return false
	}
	if err := m.evictFor(ctx, s.ID); err != nil {
		m.logger.Error(failMsg, zap.String("slot", s.ID), zap.Error(err))
		return false
	}
	if err := m.store.Put(ctx, s); err != nil {
		m.logger.Error(failMsg, zap.String("slot", s.ID), zap.Error(err))
		return false
	}
	m.logger.Debug("slot saved", zap.String("slot", s.ID), zap.Int("bytes", len(s.Data)))
	return true
}

// evictFor removes the oldest named slots until id fits under the limit.
func (m *Manager) evictFor(ctx context.Context, id string) error {
	if id == AutoSaveID {
		return nil
	}
	all, err := m.store.List(ctx)
	if err != nil {
		return fmt.Errorf("listing slots: %w", err)
	}
	var named []Slot
	for _, s := range all {
		if s.ID == id {
			return nil
		}
		if s.ID != AutoSaveID {
			named = append(named, s)
		}
	}
	sort.Slice(named, func(i, j int) bool { return named[i].Timestamp.Before(named[j].Timestamp) })
	for len(named) >= m.maxSlots {
		victim := named[0]
		if err := m.store.Delete(ctx, victim.ID); err != nil && !errors.Is(err, ErrSlotNotFound) {
			return fmt.Errorf("evicting slot %q: %w", victim.ID, err)
		}
		m.logger.Info("evicted oldest slot", zap.String("slot", victim.ID))
		named = named[1:]
	}
	return nil
}

// Load returns the document stored in slot id.
func (m *Manager) Load(ctx context.Context, id string) (json.RawMessage, bool) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrSlotNotFound) {
			m.logger.Error("failed to load save", zap.String("slot", id), zap.Error(err))
		}
		return nil, false
	}
	return s.Data, true
}

// LoadInto decodes slot id into dst.
func (m *Manager) LoadInto(ctx context.Context, id string, dst any) bool {
	raw, ok := m.Load(ctx, id)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		m.logger.Error("failed to load save", zap.String("slot", id), zap.Error(err))
		return false
	}
	return true
}

// LastAutoSave returns the auto-save document.
func (m *Manager) LastAutoSave(ctx context.Context) (json.RawMessage, bool) {
	return m.Load(ctx, AutoSaveID)
}

// Delete removes slot id. Deleting a missing slot succeeds.
func (m *Manager) Delete(ctx context.Context, id string) bool {
	if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrSlotNotFound) {
		m.logger.Error("failed to delete save", zap.String("slot", id), zap.Error(err))
		return false
	}
	return true
}

// List returns every slot, newest first.
func (m *Manager) List(ctx context.Context) []Slot {
	all, err := m.store.List(ctx)
	if err != nil {
		m.logger.Error("failed to load save slots", zap.Error(err))
		return []Slot{}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Timestamp.After(all[j].Timestamp) })
	return all
}

// Export returns slot id as indented JSON.
func (m *Manager) Export(ctx context.Context, id string) (string, bool) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrSlotNotFound) {
			m.logger.Error("failed to export save", zap.String("slot", id), zap.Error(err))
		}
		return "", false
	}
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		m.logger.Error("failed to export save", zap.String("slot", id), zap.Error(err))
		return "", false
	}
	return string(out), true
}

// Import stores a slot previously produced by Export. The imported slot is
// subject to the same limit as Save; a missing timestamp is set to now.
func (m *Manager) Import(ctx context.Context, data string) bool {
	var s Slot
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		m.logger.Error("failed to import save", zap.Error(err))
		return false
	}
	if len(s.Data) == 0 || !json.Valid(s.Data) {
		m.logger.Error("failed to import save", zap.String("slot", s.ID), zap.Error(errors.New("slot data is missing")))
		return false
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = m.now().UTC()
	}
	return m.put(ctx, s, "failed to import save")
}

// Clear removes every slot including the auto-save.
func (m *Manager) Clear(ctx context.Context) bool {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("failed to clear saves", zap.Error(err))
		return false
	}
	return true
}
