// Package event defines the typed log events produced by classification.
package event

import "time"

// Type identifies the semantic kind of a classified log line.
type Type string

// Event types.
const (
	// Unrecognized marks lines that matched no rule. Never an error.
	Unrecognized Type = "unrecognized"

	// SpellCast is "<caster>: lance le sort <spell>".
	SpellCast Type = "spell_cast"

	// BuffGained is "<buff> (+N Niv.)", optionally tagged with the talent
	// that produced it, e.g. "(Compulsion)".
	BuffGained Type = "buff_gained"

	// BuffRemoved is "n'est plus sous l'emprise de '<buff>'".
	BuffRemoved Type = "buff_removed"

	// BuffConsumed is an explicit stack consumption line, e.g.
	// "Consomme Pointe affûtée".
	BuffConsumed Type = "buff_consumed"

	// BuffCapReached is "Valeur maximale de <buff> atteinte !".
	BuffCapReached Type = "buff_cap_reached"

	// ProcTriggered is a proc firing line, e.g. "Impétueux (+2 PA) (Impétueux)".
	ProcTriggered Type = "proc_triggered"

	// CostHint is a follow-up line that pins the real cost of the
	// preceding variable-cost cast.
	CostHint Type = "cost_hint"

	// Damage is "<target>: -N PV (Element) [(Tag)]".
	Damage Type = "damage"

	// TurnEnd is the leftover-seconds carryover line that marks a turn
	// being passed.
	TurnEnd Type = "turn_end"

	// CombatEnd is "Combat terminé ...".
	CombatEnd Type = "combat_end"

	// FighterKO is "... est KO !" or "... est hors-combat".
	FighterKO Type = "fighter_ko"

	// TrainingStart marks the start of a training-dummy fight.
	TrainingStart Type = "training_start"
)

// HintKind distinguishes the cost-hint follow-up lines.
type HintKind string

// Cost hint kinds.
const (
	HintSummon    HintKind = "summon"    // "Invoque un(e) Étendard de Bravoure"
	HintTeleport  HintKind = "teleport"  // "se téléporte"
	HintDestroyed HintKind = "destroyed" // "... est détruit"
	HintApproach  HintKind = "approach"  // "Se rapproche de N case(s)"
)

// Event is one classified log line. Events are immutable once produced:
// a value is created per line and never mutated afterwards.
type Event struct {
	// Type is the classified event kind.
	Type Type `json:"type"`

	// Seq is the arrival order of the underlying line.
	Seq uint64 `json:"seq,omitempty"`

	// Timestamp is the arrival time. Wakfu chat lines carry no parseable
	// timestamp of their own.
	Timestamp time.Time `json:"timestamp,omitzero"`

	// Archetype is the archetype context the line was classified under.
	Archetype string `json:"archetype,omitempty"`

	// Caster is the acting fighter for cast and buff lines.
	Caster string `json:"caster,omitempty"`

	// Spell is the spell name for SpellCast events.
	Spell string `json:"spell,omitempty"`

	// Buff is the canonical buff kind for buff and proc events.
	Buff string `json:"buff,omitempty"`

	// Level is the magnitude reported by "(+N Niv.)" lines.
	Level int `json:"level,omitempty"`

	// Tag is the trailing provenance tag, e.g. "Compulsion" or "Courroux".
	Tag string `json:"tag,omitempty"`

	// Hint and Cells describe CostHint events.
	Hint  HintKind `json:"hint,omitempty"`
	Cells int      `json:"cells,omitempty"`

	// Target, Amount and Element describe Damage events.
	Target  string `json:"target,omitempty"`
	Amount  int    `json:"amount,omitempty"`
	Element string `json:"element,omitempty"`

	// RawLine is the original log line, populated only when requested.
	RawLine string `json:"raw_line,omitempty"`
}
