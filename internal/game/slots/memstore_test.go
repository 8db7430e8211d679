package slots_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cory-johannsen/dungeon/internal/game/slots"
)

// memStore is a map-backed slots.Store with optional injected failures.
type memStore struct {
	mu      sync.Mutex
	slots   map[string]slots.Slot
	failPut bool
	failAll bool
}

func newMemStore() *memStore { return &memStore{slots: map[string]slots.Slot{}} }

var errBroken = errors.New("disk on fire")

func (m *memStore) Put(_ context.Context, s slots.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut || m.failAll {
		return errBroken
	}
	m.slots[s.ID] = s
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (slots.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return slots.Slot{}, errBroken
	}
	s, ok := m.slots[id]
	if !ok {
		return slots.Slot{}, fmt.Errorf("get %q: %w", id, slots.ErrSlotNotFound)
	}
	return s, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errBroken
	}
	if _, ok := m.slots[id]; !ok {
		return slots.ErrSlotNotFound
	}
	delete(m.slots, id)
	return nil
}

func (m *memStore) List(_ context.Context) ([]slots.Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errBroken
	}
	out := make([]slots.Slot, 0, len(m.slots))
	for _, s := range m.slots {
		out = append(out, s)
	}
	return out, nil
}

func (m *memStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errBroken
	}
	m.slots = map[string]slots.Slot{}
	return nil
}
