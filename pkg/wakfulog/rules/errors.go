package rules

import "fmt"

// ValidationError represents a schema-level validation error: the ruleset
// as a whole violates a structural requirement.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// RuleError represents an error in an individual rule entry.
type RuleError struct {
	Archetype string
	Section   string // spells, buffs, overrides, discounts, combos
	Name      string // entry name (may be empty if the name is missing)
	Field     string
	Message   string
	Cause     error
}

func (e *RuleError) Error() string {
	where := e.Section
	if e.Name != "" {
		where = fmt.Sprintf("%s %q", e.Section, e.Name)
	}
	if e.Field != "" {
		return fmt.Sprintf("archetype %q: %s: %s: %s", e.Archetype, where, e.Field, e.Message)
	}
	return fmt.Sprintf("archetype %q: %s: %s", e.Archetype, where, e.Message)
}

// Unwrap returns the underlying cause, enabling errors.Is/As.
func (e *RuleError) Unwrap() error {
	return e.Cause
}
