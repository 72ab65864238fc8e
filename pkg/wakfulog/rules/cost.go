package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies a resource pool.
type Kind string

// Resource kinds as they appear in the game logs.
const (
	KindPA Kind = "PA" // action points
	KindPM Kind = "PM" // movement points
	KindPW Kind = "PW" // wakfu points
)

// Kinds lists all resource kinds in display order.
var Kinds = []Kind{KindPA, KindPM, KindPW}

// Cost is an amount of a single resource kind.
type Cost struct {
	Amount int
	Kind   Kind
}

// ParseCost parses a cost expression like "3 PA", "1PM" or "0 PA".
// The amount must be non-negative and the kind one of PA/PM/PW.
func ParseCost(s string) (Cost, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Cost{}, fmt.Errorf("empty cost")
	}

	// Split off the trailing kind (with or without a separating space).
	var kind Kind
	var numPart string
	for _, k := range Kinds {
		if strings.HasSuffix(trimmed, string(k)) {
			kind = k
			numPart = strings.TrimSpace(strings.TrimSuffix(trimmed, string(k)))
			break
		}
	}
	if kind == "" {
		return Cost{}, fmt.Errorf("cost %q: unknown resource kind", s)
	}

	amount, err := strconv.Atoi(numPart)
	if err != nil {
		return Cost{}, fmt.Errorf("cost %q: invalid amount: %w", s, err)
	}
	if amount < 0 {
		return Cost{}, fmt.Errorf("cost %q: amount must be non-negative", s)
	}

	return Cost{Amount: amount, Kind: kind}, nil
}

// String formats the cost as it appears in spell tables, e.g. "3 PA".
func (c Cost) String() string {
	return fmt.Sprintf("%d %s", c.Amount, c.Kind)
}

// Token formats the cost in the compact form used by combo step
// definitions, e.g. "3PA".
func (c Cost) Token() string {
	return fmt.Sprintf("%d%s", c.Amount, c.Kind)
}

// IsZero reports whether the cost has no kind set.
func (c Cost) IsZero() bool {
	return c.Kind == ""
}
