// Package state defines the state-change notifications emitted by the
// tracking engine, together with the resolved cast record kept on the
// timeline.
package state

import (
	"time"

	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/rules"
)

// ResolvedCast is one fully resolved spell cast. Immutable once appended
// to the timeline.
type ResolvedCast struct {
	Seq       uint64     `json:"seq"`
	Caster    string     `json:"caster"`
	Spell     string     `json:"spell"`
	Base      rules.Cost `json:"base"`
	Final     rules.Cost `json:"final"`
	// Contributing lists the buffs and procs that changed the cost,
	// captured at resolution time.
	Contributing []string  `json:"contributing,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Kind identifies a notification type.
type Kind string

// Notification kinds.
const (
	ResourceChanged Kind = "resource_changed"
	BuffChanged     Kind = "buff_changed"
	CastResolved    Kind = "cast_resolved"
	ComboAdvanced   Kind = "combo_advanced"
	ComboReset      Kind = "combo_reset"
	ComboCompleted  Kind = "combo_completed"
	TurnEnded       Kind = "turn_ended"
	CombatEnded     Kind = "combat_ended"
)

// BuffStatus describes what happened to a buff in a BuffChanged
// notification.
type BuffStatus string

// Buff statuses.
const (
	BuffActive   BuffStatus = "active"
	BuffExpired  BuffStatus = "expired"
	BuffConsumed BuffStatus = "consumed"
)

// Notification is one state change emitted to the presentation layer.
// Only the fields relevant to the Kind are populated.
type Notification struct {
	Kind      Kind      `json:"kind"`
	Character string    `json:"character"`
	Timestamp time.Time `json:"timestamp,omitzero"`

	// ResourceChanged fields.
	Resource rules.Kind `json:"resource,omitempty"`
	Value    int        `json:"value,omitempty"`
	Max      int        `json:"max,omitempty"`
	// Clamped marks a delta that would have left [0, max] and was
	// clamped; an anomaly, not an error.
	Clamped bool `json:"clamped,omitempty"`

	// BuffChanged fields.
	Buff   string     `json:"buff,omitempty"`
	Stacks int        `json:"stacks,omitempty"`
	Status BuffStatus `json:"status,omitempty"`

	// CastResolved payload.
	Cast *ResolvedCast `json:"cast,omitempty"`

	// Combo fields.
	Chain string `json:"chain,omitempty"`
	Step  int    `json:"step,omitempty"`
	Steps int    `json:"steps,omitempty"`
}
