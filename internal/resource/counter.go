package resource

// BoundedCounter is a non-negative counter with a hard ceiling. All
// mutation clamps into [0, ceiling]; a zero ceiling means unbounded.
type BoundedCounter struct {
	value   int
	ceiling int
}

// NewBoundedCounter creates a counter at zero with the given ceiling.
func NewBoundedCounter(ceiling int) *BoundedCounter {
	return &BoundedCounter{ceiling: ceiling}
}

// Value returns the current value.
func (c *BoundedCounter) Value() int { return c.value }

// Ceiling returns the configured ceiling (0 = unbounded).
func (c *BoundedCounter) Ceiling() int { return c.ceiling }

// Add adds delta and clamps. Returns the new value and whether clamping
// occurred.
func (c *BoundedCounter) Add(delta int) (int, bool) {
	return c.Set(c.value + delta)
}

// Set assigns the value and clamps. Returns the new value and whether
// clamping occurred.
func (c *BoundedCounter) Set(v int) (int, bool) {
	clamped := false
	if v < 0 {
		v = 0
		clamped = true
	}
	if c.ceiling > 0 && v > c.ceiling {
		v = c.ceiling
		clamped = true
	}
	c.value = v
	return v, clamped
}

// SetCeiling changes the ceiling and clamps the current value into the
// new bound (talent-modified limits).
func (c *BoundedCounter) SetCeiling(ceiling int) {
	c.ceiling = ceiling
	if ceiling > 0 && c.value > ceiling {
		c.value = ceiling
	}
}
