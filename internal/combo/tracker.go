// Package combo implements the per-archetype combo chain state machine.
package combo

import (
	"time"

	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/rules"
)

// TransitionKind describes what happened to a chain.
type TransitionKind int

// Transition kinds.
const (
	Advanced TransitionKind = iota
	Reset
	Completed
)

// Transition is one observable chain state change.
type Transition struct {
	Chain string
	Kind  TransitionKind
	Step  int // current step after the transition (1-based, 0 for reset)
	Steps int // total chain length
}

// Tracker advances combo chains from the cost tokens of resolved casts.
// It is single-owner: only the character's worker mutates it.
type Tracker struct {
	chains    []rules.Combo
	progress  map[string]int
	lastStep  map[string]time.Time
	completed map[string]bool
	now       func() time.Time
}

// New creates a tracker over the given active chains.
func New(chains []rules.Combo, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		chains:    chains,
		progress:  make(map[string]int),
		lastStep:  make(map[string]time.Time),
		completed: make(map[string]bool),
		now:       now,
	}
}

// SetRules swaps the chain definitions. Progress on chains that no
// longer exist is dropped; surviving chains keep their progress.
func (t *Tracker) SetRules(chains []rules.Combo) {
	t.chains = chains
	known := make(map[string]bool, len(chains))
	for _, c := range chains {
		known[c.Name] = true
	}
	for name := range t.progress {
		if !known[name] {
			delete(t.progress, name)
			delete(t.lastStep, name)
			delete(t.completed, name)
		}
	}
}

// Progress returns the 0-based step index a chain is waiting on.
func (t *Tracker) Progress(chain string) int {
	return t.progress[chain]
}

// Advance feeds the cost token of a resolved cast through every chain.
//
// Matching chains advance together; other in-progress chains reset
// unless they already completed this turn. A non-matching token resets
// in-progress chains configured to break on mismatch and is otherwise
// ignored as filler. Chains whose inter-step window elapsed reset before
// any matching happens.
func (t *Tracker) Advance(token string) []Transition {
	now := t.now()
	var out []Transition

	// Inter-step windows first: an expired chain is back at its initial
	// state before this cast is considered.
	for _, chain := range t.chains {
		window := chain.Window.Std()
		if window <= 0 || t.progress[chain.Name] == 0 {
			continue
		}
		if now.Sub(t.lastStep[chain.Name]) > window {
			t.progress[chain.Name] = 0
			out = append(out, Transition{Chain: chain.Name, Kind: Reset, Steps: len(chain.Steps)})
		}
	}

	var matched []rules.Combo
	for _, chain := range t.chains {
		if t.completed[chain.Name] {
			continue
		}
		step := t.progress[chain.Name]
		if step < len(chain.Steps) && chain.Steps[step] == token {
			matched = append(matched, chain)
		}
	}

	if len(matched) > 0 {
		matchedNames := make(map[string]bool, len(matched))
		for _, chain := range matched {
			matchedNames[chain.Name] = true
			t.progress[chain.Name]++
			t.lastStep[chain.Name] = now
			step := t.progress[chain.Name]
			if step >= len(chain.Steps) {
				t.completed[chain.Name] = true
				t.progress[chain.Name] = 0
				out = append(out, Transition{Chain: chain.Name, Kind: Completed, Step: step, Steps: len(chain.Steps)})
			} else {
				out = append(out, Transition{Chain: chain.Name, Kind: Advanced, Step: step, Steps: len(chain.Steps)})
			}
		}
		// A progressing cast resets every other in-progress chain.
		for _, chain := range t.chains {
			if matchedNames[chain.Name] || t.completed[chain.Name] || t.progress[chain.Name] == 0 {
				continue
			}
			t.progress[chain.Name] = 0
			out = append(out, Transition{Chain: chain.Name, Kind: Reset, Steps: len(chain.Steps)})
		}
		return out
	}

	// No chain advanced: break the ones that treat off-chain casts as
	// combo breakers, then see if this cast starts a fresh chain.
	for _, chain := range t.chains {
		if !chain.BreakOnMismatch || t.completed[chain.Name] || t.progress[chain.Name] == 0 {
			continue
		}
		t.progress[chain.Name] = 0
		out = append(out, Transition{Chain: chain.Name, Kind: Reset, Steps: len(chain.Steps)})
	}
	for _, chain := range t.chains {
		if t.completed[chain.Name] || len(chain.Steps) == 0 || chain.Steps[0] != token {
			continue
		}
		t.progress[chain.Name] = 1
		t.lastStep[chain.Name] = now
		out = append(out, Transition{Chain: chain.Name, Kind: Advanced, Step: 1, Steps: len(chain.Steps)})
		break
	}
	return out
}

// ResetAll returns every chain to its initial state (turn or combat
// boundary) and re-arms completed chains.
func (t *Tracker) ResetAll() []Transition {
	var out []Transition
	for _, chain := range t.chains {
		if t.progress[chain.Name] > 0 {
			out = append(out, Transition{Chain: chain.Name, Kind: Reset, Steps: len(chain.Steps)})
		}
		t.progress[chain.Name] = 0
		delete(t.lastStep, chain.Name)
	}
	t.completed = make(map[string]bool)
	return out
}
