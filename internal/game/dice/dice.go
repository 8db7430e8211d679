// Package dice provides the randomness abstraction and roll-result types
// used by the combat resolver and reward tables.
package dice

import "fmt"

// RollResult holds the full audit trail for a single dice roll evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // original expression string, e.g. "1d20+9"
	Dice       []int  // individual die results before modifier
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of all die results plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String returns a human-readable audit string in the format:
//
//	"2d6+3 → [4 5] +3 = 12"
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	return fmt.Sprintf("%s → %v %+d = %d", r.Expression, r.Dice, r.Modifier, r.Total())
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Below returns a uniform value in [0, n), or 0 when n <= 0.
// Stat-driven rolls use it so a zero stat yields a zero roll instead of a panic.
func Below(src Source, n int) int {
	if n <= 0 {
		return 0
	}
	return src.Intn(n)
}

// Chance reports true with probability num/den.
//
// Precondition: 0 <= num <= den and den > 0.
func Chance(src Source, num, den int) bool {
	return src.Intn(den) < num
}
