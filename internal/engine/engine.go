// Package engine interprets classified log events into resource, buff,
// combo and timeline state for one tracked character.
//
// A Character is single-owner: exactly one goroutine calls HandleEvent.
// Every call returns the state-change notifications the event produced,
// possibly none.
package engine

import (
	"io"
	"log/slog"
	"time"

	"github.com/wakfulog/wakfulog-go/internal/buffs"
	"github.com/wakfulog/wakfulog-go/internal/combo"
	"github.com/wakfulog/wakfulog-go/internal/resolve"
	"github.com/wakfulog/wakfulog-go/internal/resource"
	"github.com/wakfulog/wakfulog-go/internal/timeline"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/event"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/rules"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/state"
)

// DefaultAmendWindow bounds how long a variable-cost cast stays open for
// its follow-up line before it is committed at its base cost.
const DefaultAmendWindow = 5 * time.Second

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// pendingCast is a variable-cost cast held open until a follow-up line
// pins its real cost, or until the amend window closes.
type pendingCast struct {
	ev       event.Event
	spell    *rules.Spell
	res      resolve.Resolution
	deadline time.Time
}

// Character tracks resources, buffs, combos and the cast timeline for
// one fighter.
type Character struct {
	name      string
	autoAdopt bool
	arch      *rules.Archetype

	ledger   *resource.Ledger
	buffs    *buffs.Tracker
	combos   *combo.Tracker
	timeline *timeline.Recorder

	pending *pendingCast
	// pendingRemoval names a buff whose loss is confirmed by the next
	// damage line: the cast arms it, the hit spends it.
	pendingRemoval string
	lastCaster     string
	inCombat       bool
	training       bool
	lastGain       map[string]int

	now           func() time.Time
	amendWindow   time.Duration
	timelineLimit int
	log           *slog.Logger
}

// Option configures a Character.
type Option func(*Character)

// WithLogger sets the structured logger. Defaults to a discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Character) {
		if logger != nil {
			c.log = logger
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Character) {
		if now != nil {
			c.now = now
		}
	}
}

// WithAmendWindow overrides the variable-cost amend window.
func WithAmendWindow(d time.Duration) Option {
	return func(c *Character) {
		if d > 0 {
			c.amendWindow = d
		}
	}
}

// WithTimelineLimit overrides the timeline retention limit.
func WithTimelineLimit(n int) Option {
	return func(c *Character) {
		if n > 0 {
			c.timelineLimit = n
		}
	}
}

// New creates a character over the given archetype rules. An empty name
// makes the character adopt the first fighter seen casting one of the
// archetype's spells.
func New(name string, arch *rules.Archetype, opts ...Option) *Character {
	c := &Character{
		name:          name,
		autoAdopt:     name == "",
		arch:          arch,
		lastGain:      make(map[string]int),
		now:           time.Now,
		amendWindow:   DefaultAmendWindow,
		timelineLimit: timeline.DefaultLimit,
		log:           discardLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ledger = resource.NewLedger(maximaFor(arch))
	c.buffs = buffs.New(arch, c.now)
	c.combos = combo.New(arch.ActiveCombos(), c.now)
	c.timeline = timeline.NewRecorder(c.timelineLimit)
	return c
}

func maximaFor(arch *rules.Archetype) map[rules.Kind]int {
	maxima := make(map[rules.Kind]int, len(rules.Kinds))
	for _, kind := range rules.Kinds {
		maxima[kind] = arch.ResourceMax(kind)
	}
	return maxima
}

// Name returns the tracked fighter's name, empty until adopted.
func (c *Character) Name() string { return c.name }

// Archetype returns the archetype the character is tracked under.
func (c *Character) Archetype() string { return c.arch.Name }

// InCombat reports whether a combat is currently open.
func (c *Character) InCombat() bool { return c.inCombat }

// Resource returns the current value and maximum for a resource kind.
func (c *Character) Resource(kind rules.Kind) (value, max int) {
	return c.ledger.Value(kind), c.ledger.Max(kind)
}

// Buffs returns a point-in-time copy of the active buff state.
func (c *Character) Buffs() buffs.Snapshot { return c.buffs.Snapshot() }

// Timeline returns the character's cast timeline.
func (c *Character) Timeline() *timeline.Recorder { return c.timeline }

// SetRules swaps the detection rules without discarding accumulated
// state. An open pending cast is dropped: its spell definition may no
// longer exist.
func (c *Character) SetRules(arch *rules.Archetype) {
	c.arch = arch
	c.buffs.SetRules(arch)
	c.combos.SetRules(arch.ActiveCombos())
	c.ledger.SetMaxima(maximaFor(arch))
	c.pending = nil
}

// HandleEvent interprets one classified event and returns the state
// changes it produced. Unrecognized events never change state.
func (c *Character) HandleEvent(ev event.Event) []state.Notification {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = c.now()
	}

	var notes []state.Notification
	if c.pending != nil && (ts.After(c.pending.deadline) || !c.amends(ev)) {
		notes = append(notes, c.finalizePending(ts)...)
	}

	switch ev.Type {
	case event.SpellCast:
		notes = append(notes, c.handleCast(ev, ts)...)
	case event.CostHint:
		notes = append(notes, c.handleHint(ev, ts)...)
	case event.ProcTriggered:
		notes = append(notes, c.handleProc(ev, ts)...)
	case event.BuffGained:
		notes = append(notes, c.handleGain(ev, ts)...)
	case event.BuffRemoved:
		notes = append(notes, c.handleRemoved(ev, ts)...)
	case event.BuffConsumed:
		notes = append(notes, c.handleConsumed(ev, ts)...)
	case event.BuffCapReached:
		notes = append(notes, c.handleCapReached(ev, ts)...)
	case event.Damage:
		notes = append(notes, c.handleDamage(ev, ts)...)
	case event.TurnEnd:
		notes = append(notes, c.handleTurnEnd(ev, ts)...)
	case event.CombatEnd:
		notes = append(notes, c.endCombat(ts)...)
	case event.FighterKO:
		// Training-dummy fights have no end-of-combat line: the dummy
		// going down is the end.
		if c.training {
			notes = append(notes, c.endCombat(ts)...)
		}
	case event.TrainingStart:
		c.training = true
	}
	return notes
}

// amends reports whether ev may still change the cost of the open
// pending cast instead of forcing its commit.
func (c *Character) amends(ev event.Event) bool {
	switch ev.Type {
	case event.CostHint:
		return true
	case event.ProcTriggered:
		_, ok := c.arch.CostOverride(ev.Buff, c.pending.spell.Name)
		return ok
	}
	return false
}

// finalizePending commits the open pending cast at its current cost.
func (c *Character) finalizePending(ts time.Time) []state.Notification {
	p := c.pending
	if p == nil {
		return nil
	}
	c.pending = nil
	at := p.ev.Timestamp
	if at.IsZero() {
		at = ts
	}
	return c.commit(p.ev, p.spell, p.res, at)
}

func (c *Character) buffNote(kind string, stacks int, status state.BuffStatus, ts time.Time) state.Notification {
	return state.Notification{
		Kind:      state.BuffChanged,
		Character: c.name,
		Timestamp: ts,
		Buff:      kind,
		Stacks:    stacks,
		Status:    status,
	}
}

func (c *Character) resourceNote(kind rules.Kind, value int, clamped bool, ts time.Time) state.Notification {
	return state.Notification{
		Kind:      state.ResourceChanged,
		Character: c.name,
		Timestamp: ts,
		Resource:  kind,
		Value:     value,
		Max:       c.ledger.Max(kind),
		Clamped:   clamped,
	}
}

func (c *Character) comboNote(tr combo.Transition, ts time.Time) state.Notification {
	kind := state.ComboAdvanced
	switch tr.Kind {
	case combo.Reset:
		kind = state.ComboReset
	case combo.Completed:
		kind = state.ComboCompleted
	}
	return state.Notification{
		Kind:      kind,
		Character: c.name,
		Timestamp: ts,
		Chain:     tr.Chain,
		Step:      tr.Step,
		Steps:     tr.Steps,
	}
}
