package reactive

import (
	"errors"
	"sync"
)

// ErrFlushBudget is returned by Flush when effects keep re-scheduling each
// other past MaxEffectRunsPerFlush. The remaining effects stay pending.
var ErrFlushBudget = errors.New("reactive: effect run budget exceeded during flush")

// MaxEffectRunsPerFlush bounds the number of effect runs a single Flush may
// perform. It protects against effects that write to their own sources.
var MaxEffectRunsPerFlush = 10000

// EffectBudget is consulted before every deferred effect run.
type EffectBudget interface {
	// CheckEffectRun returns an error if the effect may not run now.
	CheckEffectRun() error
}

// RunBudget is an EffectBudget with a fixed number of runs.
type RunBudget struct {
	max  int
	runs int
	mu   sync.Mutex
}

// NewRunBudget returns a budget allowing max effect runs. Zero means no limit.
func NewRunBudget(max int) *RunBudget {
	return &RunBudget{max: max}
}

// CheckEffectRun implements EffectBudget.
func (b *RunBudget) CheckEffectRun() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.max > 0 && b.runs >= b.max {
		return ErrFlushBudget
	}
	b.runs++
	return nil
}

// Exceeded reports whether the budget has been used up.
func (b *RunBudget) Exceeded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.max > 0 && b.runs >= b.max
}

// Runs returns the number of runs granted so far.
func (b *RunBudget) Runs() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.runs
}

// Flush runs every pending effect in the process until none remain.
// Effects scheduled by other effects run in the same Flush, in a later pass.
// A panic raised by an effect body propagates to the caller of Flush.
func Flush() error {
	budget := NewRunBudget(MaxEffectRunsPerFlush)
	for root.hasPending() {
		root.runPending(budget)
		if budget.Exceeded() && root.hasPending() {
			return ErrFlushBudget
		}
	}
	return nil
}

// Pending reports whether any effect is waiting for the next Flush.
func Pending() bool {
	return root.hasPending()
}
