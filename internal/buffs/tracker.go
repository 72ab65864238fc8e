// Package buffs implements the per-character buff and proc tracker.
package buffs

import (
	"time"

	"github.com/wakfulog/wakfulog-go/internal/resource"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/rules"
)

// Instance is one active buff or proc.
type instance struct {
	kind      string
	counter   *resource.BoundedCounter
	policy    rules.Buff
	appliedAt time.Time
	turnsLeft int
}

func (in *instance) singleUse() bool {
	return in.policy.Expiry == rules.ExpirySingleUse
}

// expired reports whether a single-use proc has outlived its window.
func (in *instance) expiredAt(now time.Time) bool {
	if !in.singleUse() {
		return false
	}
	window := in.policy.Window.Std()
	if window <= 0 {
		return false
	}
	return now.Sub(in.appliedAt) > window
}

// ApplyResult reports the outcome of applying a gain.
type ApplyResult struct {
	Value  int
	Capped bool
	// Wraps is how many times a wrapping gauge overflowed while
	// absorbing this gain.
	Wraps int
}

// Tracker owns the set of active effects for one character. It is
// single-owner: only the character's worker mutates it.
type Tracker struct {
	arch     *rules.Archetype
	active   map[string]*instance
	ceilings map[string]int // talent-adjusted ceilings, by kind
	now      func() time.Time
}

// New creates an empty tracker whose per-kind policy comes from arch.
func New(arch *rules.Archetype, now func() time.Time) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		arch:     arch,
		active:   make(map[string]*instance),
		ceilings: make(map[string]int),
		now:      now,
	}
}

// SetRules swaps the archetype rules without touching accumulated state.
func (t *Tracker) SetRules(arch *rules.Archetype) {
	t.arch = arch
	for _, in := range t.active {
		if policy, ok := arch.Buff(in.kind); ok {
			in.policy = *policy
			in.counter.SetCeiling(t.ceilingFor(in.kind, policy))
		}
	}
}

func (t *Tracker) ceilingFor(kind string, policy *rules.Buff) int {
	if c, ok := t.ceilings[kind]; ok {
		return c
	}
	return policy.Ceiling
}

func (t *Tracker) policy(kind string) rules.Buff {
	if p, ok := t.arch.Buff(kind); ok {
		return *p
	}
	// Unknown kinds default to a persistent absolute gauge.
	return rules.Buff{Name: kind}
}

// Apply records a gain for kind. Absolute-mode gauges are set to the
// reported total; additive gauges accumulate. Both clamp at the kind's
// ceiling, and wrapping gauges wrap modulo their wrap value.
func (t *Tracker) Apply(kind string, magnitude int) ApplyResult {
	in, ok := t.active[kind]
	if !ok {
		policy := t.policy(kind)
		in = &instance{
			kind:      kind,
			policy:    policy,
			counter:   resource.NewBoundedCounter(t.ceilingFor(kind, &policy)),
			turnsLeft: policy.Turns,
		}
		t.active[kind] = in
	}
	in.appliedAt = t.now()
	if in.policy.Expiry == rules.ExpiryTurns {
		in.turnsLeft = in.policy.Turns
	}

	raw := magnitude
	if in.policy.Mode == rules.ModeAdditive {
		raw = in.counter.Value() + magnitude
	}

	var wraps int
	if in.policy.Wrap > 0 && raw >= in.policy.Wrap {
		wraps = raw / in.policy.Wrap
		raw = raw % in.policy.Wrap
	}

	value, capped := in.counter.Set(raw)
	return ApplyResult{Value: value, Capped: capped, Wraps: wraps}
}

// Remove drops the kind entirely. Returns false if it was not active.
func (t *Tracker) Remove(kind string) bool {
	if _, ok := t.active[kind]; !ok {
		return false
	}
	delete(t.active, kind)
	return true
}

// AddStacks adjusts the kind's value by delta, clamping into bounds.
// The kind is removed when it reaches zero. Returns the new value.
func (t *Tracker) AddStacks(kind string, delta int) (int, bool) {
	in, ok := t.active[kind]
	if !ok {
		if delta <= 0 {
			return 0, false
		}
		res := t.Apply(kind, 0)
		_ = res
		in = t.active[kind]
	}
	value, _ := in.counter.Add(delta)
	if value == 0 {
		delete(t.active, kind)
	}
	return value, true
}

// ConsumeIfPresent consumes a single-use proc. It returns true exactly
// once per application: after a successful consume, the proc must be
// re-applied before it can be consumed again. An expired proc is dropped
// silently and reported as absent.
func (t *Tracker) ConsumeIfPresent(kind string) bool {
	in, ok := t.active[kind]
	if !ok || !in.singleUse() {
		return false
	}
	delete(t.active, kind)
	return !in.expiredAt(t.now())
}

// Active reports whether the kind is currently active and unexpired.
func (t *Tracker) Active(kind string) bool {
	in, ok := t.active[kind]
	if !ok {
		return false
	}
	if in.expiredAt(t.now()) {
		delete(t.active, kind)
		return false
	}
	return true
}

// Value returns the current magnitude for the kind, zero if inactive.
func (t *Tracker) Value(kind string) int {
	if !t.Active(kind) {
		return 0
	}
	return t.active[kind].counter.Value()
}

// SetCeiling overrides the ceiling for a kind (talent-modified limits),
// clamping any current value into the new bound.
func (t *Tracker) SetCeiling(kind string, ceiling int) {
	t.ceilings[kind] = ceiling
	if in, ok := t.active[kind]; ok {
		in.counter.SetCeiling(ceiling)
	}
}

// ClearCeiling removes a talent ceiling override.
func (t *Tracker) ClearCeiling(kind string) {
	delete(t.ceilings, kind)
	if in, ok := t.active[kind]; ok {
		if policy, pok := t.arch.Buff(kind); pok {
			in.counter.SetCeiling(policy.Ceiling)
		}
	}
}

// Ceiling returns the effective ceiling for a kind.
func (t *Tracker) Ceiling(kind string) int {
	if c, ok := t.ceilings[kind]; ok {
		return c
	}
	if policy, ok := t.arch.Buff(kind); ok {
		return policy.Ceiling
	}
	return 0
}

// Tick expires duration-based effects after elapsed turns. Tick(0) never
// changes state. Expired turn-based kinds are returned; outdated
// single-use procs are pruned silently.
func (t *Tracker) Tick(elapsedTurns int) []string {
	if elapsedTurns <= 0 {
		return nil
	}
	var expired []string
	now := t.now()
	for kind, in := range t.active {
		switch {
		case in.policy.Expiry == rules.ExpiryTurns:
			in.turnsLeft -= elapsedTurns
			if in.turnsLeft <= 0 {
				delete(t.active, kind)
				expired = append(expired, kind)
			}
		case in.expiredAt(now):
			delete(t.active, kind)
		}
	}
	return expired
}

// Clear drops every active effect and returns the kinds removed.
func (t *Tracker) Clear() []string {
	kinds := make([]string, 0, len(t.active))
	for kind := range t.active {
		kinds = append(kinds, kind)
	}
	t.active = make(map[string]*instance)
	return kinds
}
