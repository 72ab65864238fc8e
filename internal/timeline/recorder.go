// Package timeline implements the bounded append-only record of resolved
// casts kept for display and history.
package timeline

import (
	"sync"

	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/state"
)

// DefaultLimit is the default number of retained entries.
const DefaultLimit = 200

// Recorder is an append-only, bounded record of resolved casts. Oldest
// entries are evicted beyond the limit; nothing else is ever removed
// except by Clear at combat boundaries.
//
// Appends come from the character's worker only, but reads may come from
// other goroutines (display queries), so access is guarded.
type Recorder struct {
	mu      sync.RWMutex
	limit   int
	entries []state.ResolvedCast
}

// NewRecorder creates a recorder retaining at most limit entries.
// A non-positive limit falls back to DefaultLimit.
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Recorder{limit: limit}
}

// Append adds a resolved cast, evicting the oldest entry if full.
func (r *Recorder) Append(rc state.ResolvedCast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, rc)
	if len(r.entries) > r.limit {
		r.entries = r.entries[len(r.entries)-r.limit:]
	}
}

// Len returns the number of retained entries.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Recent returns a copy of the most recent n entries, oldest first.
// n <= 0 returns everything retained. The copy is independent: callers
// may re-query at any time to restart iteration.
func (r *Recorder) Recent(n int) []state.ResolvedCast {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n <= 0 || n > len(r.entries) {
		n = len(r.entries)
	}
	out := make([]state.ResolvedCast, n)
	copy(out, r.entries[len(r.entries)-n:])
	return out
}

// Clear drops all retained entries (combat end).
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = r.entries[:0]
}
