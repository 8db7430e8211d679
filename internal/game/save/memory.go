package save

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-process Repository. Records are stored as JSON
// so callers never share memory with the store.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string][]byte)}
}

// Upsert implements Repository.
func (m *MemoryRepository) Upsert(_ context.Context, s *Session) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := true
	if raw, ok := m.sessions[s.SaveID]; ok {
		var prev Session
		if err := json.Unmarshal(raw, &prev); err != nil {
			return false, fmt.Errorf("decoding stored save %q: %w", s.SaveID, err)
		}
		if !prev.IsActive() {
			return false, fmt.Errorf("upsert %q: %w", s.SaveID, ErrDeleted)
		}
		s.CreatedAt = prev.CreatedAt
		created = false
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return false, fmt.Errorf("encoding save %q: %w", s.SaveID, err)
	}
	m.sessions[s.SaveID] = raw
	return created, nil
}

// Get implements Repository.
func (m *MemoryRepository) Get(_ context.Context, saveID string) (*Session, error) {
	m.mu.RLock()
	raw, ok := m.sessions[saveID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("get %q: %w", saveID, ErrNotFound)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decoding stored save %q: %w", saveID, err)
	}
	return &s, nil
}

// ListRecent implements Repository.
func (m *MemoryRepository) ListRecent(_ context.Context, playerID string, limit int) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Summary
	for id, raw := range m.sessions {
		var s Session
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decoding stored save %q: %w", id, err)
		}
		if s.PlayerID == playerID && s.IsActive() {
			out = append(out, s.Summarize())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].SaveID < out[j].SaveID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SoftDelete implements Repository.
func (m *MemoryRepository) SoftDelete(_ context.Context, saveID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.sessions[saveID]
	if !ok {
		return fmt.Errorf("delete %q: %w", saveID, ErrNotFound)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("decoding stored save %q: %w", saveID, err)
	}
	s.State = StateDeleted
	s.UpdatedAt = at
	raw, err := json.Marshal(&s)
	if err != nil {
		return fmt.Errorf("encoding save %q: %w", saveID, err)
	}
	m.sessions[saveID] = raw
	return nil
}

// Ping implements Repository.
func (m *MemoryRepository) Ping(context.Context) error { return nil }

// MemoryProfileRepository is an in-process ProfileRepository.
type MemoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

var _ ProfileRepository = (*MemoryProfileRepository)(nil)

// NewMemoryProfileRepository returns an empty MemoryProfileRepository.
func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{profiles: make(map[string]*Profile)}
}

// Touch implements ProfileRepository.
func (m *MemoryProfileRepository) Touch(_ context.Context, playerID string, at time.Time, newSave bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[playerID]
	if !ok {
		p = &Profile{PlayerID: playerID, CreatedAt: at, Achievements: []string{}}
		m.profiles[playerID] = p
	}
	p.LastPlayed = at
	if newSave {
		p.PlayCount++
	}
	return nil
}

// Get implements ProfileRepository.
func (m *MemoryProfileRepository) Get(_ context.Context, playerID string) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[playerID]
	if !ok {
		return nil, fmt.Errorf("profile %q: %w", playerID, ErrNotFound)
	}
	cp := *p
	cp.Achievements = append([]string(nil), p.Achievements...)
	return &cp, nil
}

// SetDisplayName implements ProfileRepository.
func (m *MemoryProfileRepository) SetDisplayName(_ context.Context, playerID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[playerID]
	if !ok {
		return fmt.Errorf("profile %q: %w", playerID, ErrNotFound)
	}
	p.DisplayName = name
	return nil
}

// AddAchievement implements ProfileRepository.
func (m *MemoryProfileRepository) AddAchievement(_ context.Context, playerID, achievement string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[playerID]
	if !ok {
		return fmt.Errorf("profile %q: %w", playerID, ErrNotFound)
	}
	p.AddAchievement(achievement)
	return nil
}
