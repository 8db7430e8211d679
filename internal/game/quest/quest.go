// Package quest tracks the quests a player has accepted and completed.
package quest

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/cory-johannsen/dungeon/internal/game/validation"
)

var (
	// ErrQuestNotFound is returned when no active quest has the requested id.
	ErrQuestNotFound = errors.New("quest not found")
	// ErrQuestExists is returned when accepting a quest that is already active or completed.
	ErrQuestExists = errors.New("quest already accepted")
)

// MaxProgress is the progress value of a finished quest.
const MaxProgress = 100

// Quest is an accepted objective. Rewards is an opaque payload interpreted by
// whoever completes the quest.
type Quest struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Objectives  []string        `json:"objectives"`
	Progress    int             `json:"progress"`
	Rewards     json.RawMessage `json:"rewards,omitempty"`
}

// Validate checks that the quest has an id and title and that progress is in range.
func (q Quest) Validate() *validation.Error {
	v := &validation.Error{}
	v.Length("id", q.ID, 1, 100)
	v.Length("title", q.Title, 1, 200)
	v.Range("progress", q.Progress, 0, MaxProgress)
	if len(v.Fields) == 0 {
		return nil
	}
	return v
}

// Log holds active quests in acceptance order and the ids of completed ones.
type Log struct {
	Active    []Quest  `json:"activeQuests"`
	Completed []string `json:"completedQuests"`
}

// Accept adds q to the active list.
//
// Precondition: q passes Validate.
// Postcondition: on success q is the last active quest.
func (l *Log) Accept(q Quest) error {
	if verr := q.Validate(); verr != nil {
		return verr
	}
	if l.index(q.ID) >= 0 || slices.Contains(l.Completed, q.ID) {
		return fmt.Errorf("accept %q: %w", q.ID, ErrQuestExists)
	}
	l.Active = append(l.Active, q)
	return nil
}

// Advance adds delta to the progress of quest id, clamped to [0, MaxProgress],
// and returns the new progress.
func (l *Log) Advance(id string, delta int) (int, error) {
	i := l.index(id)
	if i < 0 {
		return 0, fmt.Errorf("advance %q: %w", id, ErrQuestNotFound)
	}
	p := l.Active[i].Progress + delta
	p = max(0, min(p, MaxProgress))
	l.Active[i].Progress = p
	return p, nil
}

// Complete removes quest id from the active list and records its id as
// completed. The removed quest is returned so its rewards can be granted.
func (l *Log) Complete(id string) (Quest, error) {
	i := l.index(id)
	if i < 0 {
		return Quest{}, fmt.Errorf("complete %q: %w", id, ErrQuestNotFound)
	}
	q := l.Active[i]
	l.Active = slices.Delete(l.Active, i, i+1)
	l.Completed = append(l.Completed, q.ID)
	return q, nil
}

// IsCompleted reports whether id has been completed.
func (l Log) IsCompleted(id string) bool { return slices.Contains(l.Completed, id) }

// Clone returns a deep copy.
func (l Log) Clone() Log {
	out := Log{Active: make([]Quest, len(l.Active)), Completed: slices.Clone(l.Completed)}
	for i, q := range l.Active {
		q.Objectives = slices.Clone(q.Objectives)
		q.Rewards = slices.Clone(q.Rewards)
		out.Active[i] = q
	}
	return out
}

func (l Log) index(id string) int {
	return slices.IndexFunc(l.Active, func(q Quest) bool { return q.ID == id })
}
