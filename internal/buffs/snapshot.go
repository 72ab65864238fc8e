package buffs

// View is the immutable per-kind view exposed to the cost resolver.
type View struct {
	Kind      string
	Stacks    int
	SingleUse bool
}

// Snapshot is an immutable copy of the tracker state at one instant.
// The cost resolver reads snapshots only; it never mutates the tracker.
type Snapshot map[string]View

// Snapshot captures the current state, excluding expired procs.
func (t *Tracker) Snapshot() Snapshot {
	snap := make(Snapshot, len(t.active))
	now := t.now()
	for kind, in := range t.active {
		if in.expiredAt(now) {
			continue
		}
		snap[kind] = View{
			Kind:      kind,
			Stacks:    in.counter.Value(),
			SingleUse: in.singleUse(),
		}
	}
	return snap
}

// Active reports whether the kind was active when the snapshot was taken.
func (s Snapshot) Active(kind string) bool {
	_, ok := s[kind]
	return ok
}

// Stacks returns the snapshotted magnitude for the kind.
func (s Snapshot) Stacks(kind string) int {
	return s[kind].Stacks
}
