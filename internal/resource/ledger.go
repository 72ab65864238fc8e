// Package resource implements the per-character resource ledger and the
// bounded counter used by capped gauges.
package resource

import (
	"time"

	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/rules"
)

// historyLimit bounds the retained delta history per ledger.
const historyLimit = 64

// Delta records one applied change for diagnostics.
type Delta struct {
	Kind    rules.Kind
	Amount  int
	Value   int // value after applying
	Clamped bool
	At      time.Time
}

type pool struct {
	current int
	max     int
}

// Ledger tracks the current PA/PM/PW values for one character.
// It is single-owner: only the character's worker mutates it.
type Ledger struct {
	pools   map[rules.Kind]*pool
	history []Delta
}

// NewLedger creates a ledger with every kind at its configured maximum.
func NewLedger(maxima map[rules.Kind]int) *Ledger {
	l := &Ledger{pools: make(map[rules.Kind]*pool, len(rules.Kinds))}
	for _, kind := range rules.Kinds {
		max := maxima[kind]
		l.pools[kind] = &pool{current: max, max: max}
	}
	return l
}

// Value returns the current value for a kind.
func (l *Ledger) Value(kind rules.Kind) int {
	if p, ok := l.pools[kind]; ok {
		return p.current
	}
	return 0
}

// Max returns the configured maximum for a kind.
func (l *Ledger) Max(kind rules.Kind) int {
	if p, ok := l.pools[kind]; ok {
		return p.max
	}
	return 0
}

// Apply adds delta to the kind's current value, clamping to [0, max].
// The clamped flag is surfaced to the caller, never raised as an error.
func (l *Ledger) Apply(kind rules.Kind, delta int, at time.Time) (newValue int, clamped bool) {
	p, ok := l.pools[kind]
	if !ok {
		return 0, false
	}
	next := p.current + delta
	if next < 0 {
		next = 0
		clamped = true
	}
	if next > p.max {
		next = p.max
		clamped = true
	}
	p.current = next
	l.record(Delta{Kind: kind, Amount: delta, Value: next, Clamped: clamped, At: at})
	return next, clamped
}

// Reset restores a single kind to its maximum (new turn).
func (l *Ledger) Reset(kind rules.Kind, at time.Time) int {
	p, ok := l.pools[kind]
	if !ok {
		return 0
	}
	delta := p.max - p.current
	p.current = p.max
	if delta != 0 {
		l.record(Delta{Kind: kind, Amount: delta, Value: p.current, At: at})
	}
	return p.current
}

// ResetAll restores every kind to its maximum.
func (l *Ledger) ResetAll(at time.Time) {
	for _, kind := range rules.Kinds {
		l.Reset(kind, at)
	}
}

// SetMaxima replaces the configured maxima, clamping current values into
// the new bounds. Used by ruleset reloads.
func (l *Ledger) SetMaxima(maxima map[rules.Kind]int) {
	for _, kind := range rules.Kinds {
		p := l.pools[kind]
		p.max = maxima[kind]
		if p.current > p.max {
			p.current = p.max
		}
	}
}

// History returns a copy of the retained delta history, oldest first.
func (l *Ledger) History() []Delta {
	out := make([]Delta, len(l.history))
	copy(out, l.history)
	return out
}

func (l *Ledger) record(d Delta) {
	l.history = append(l.history, d)
	if len(l.history) > historyLimit {
		l.history = l.history[len(l.history)-historyLimit:]
	}
}
