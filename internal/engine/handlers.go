package engine

import (
	"time"

	"github.com/wakfulog/wakfulog-go/internal/resolve"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/event"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/rules"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/state"
)

func (c *Character) handleCast(ev event.Event, ts time.Time) []state.Notification {
	c.lastCaster = ev.Caster
	if c.name == "" {
		if !c.autoAdopt || ev.Caster == "" || !c.arch.KnowsSpell(ev.Spell) {
			return nil
		}
		c.name = ev.Caster
		c.log.Info("tracking character", "character", c.name, "archetype", c.arch.Name)
	}
	if ev.Caster != "" && ev.Caster != c.name {
		return nil
	}
	spell, ok := c.arch.Spell(ev.Spell)
	if !ok {
		return nil
	}

	var notes []state.Notification
	if !c.inCombat {
		notes = append(notes, c.openCombat(ts)...)
	}

	res := resolve.Resolve(spell, c.arch, c.buffs.Snapshot())
	if spell.Variable {
		c.pending = &pendingCast{ev: ev, spell: spell, res: res, deadline: ts.Add(c.amendWindow)}
		return notes
	}
	return append(notes, c.commit(ev, spell, res, ts)...)
}

// openCombat marks combat as started and applies combat-start buffs.
func (c *Character) openCombat(ts time.Time) []state.Notification {
	c.inCombat = true
	c.log.Debug("combat opened", "character", c.name)
	var notes []state.Notification
	for i := range c.arch.Buffs {
		b := &c.arch.Buffs[i]
		if b.CombatStart == 0 {
			continue
		}
		r := c.buffs.Apply(b.Name, b.CombatStart)
		notes = append(notes, c.buffNote(b.Name, r.Value, state.BuffActive, ts))
	}
	return notes
}

// commit settles a resolved cast: consumed procs, ledger delta, timeline
// append, combo advancement and the spell's own side effects.
func (c *Character) commit(ev event.Event, spell *rules.Spell, res resolve.Resolution, ts time.Time) []state.Notification {
	var notes []state.Notification
	for _, kind := range res.Consume {
		if c.buffs.ConsumeIfPresent(kind) {
			notes = append(notes, c.buffNote(kind, 0, state.BuffConsumed, ts))
		}
	}
	if res.Final.Amount != 0 {
		value, clamped := c.ledger.Apply(res.Final.Kind, -res.Final.Amount, ts)
		if clamped {
			c.log.Warn("resource delta clamped",
				"character", c.name, "spell", spell.Name,
				"resource", res.Final.Kind, "cost", res.Final.Amount)
		}
		notes = append(notes, c.resourceNote(res.Final.Kind, value, clamped, ts))
	}

	rc := state.ResolvedCast{
		Seq:          ev.Seq,
		Caster:       c.name,
		Spell:        spell.Name,
		Base:         res.Base,
		Final:        res.Final,
		Contributing: res.Contributing,
		Timestamp:    ts,
	}
	c.timeline.Append(rc)
	notes = append(notes, state.Notification{
		Kind:      state.CastResolved,
		Character: c.name,
		Timestamp: ts,
		Cast:      &rc,
	})

	for _, tr := range c.combos.Advance(res.Final.Token()) {
		notes = append(notes, c.comboNote(tr, ts))
	}

	notes = append(notes, c.castEffects(spell, ts)...)

	// A cast while a damage-confirmed buff is up arms its removal; the
	// next damage line spends it.
	for i := range c.arch.Buffs {
		b := &c.arch.Buffs[i]
		if b.RemovedOnDamageAfterCast && c.buffs.Active(b.Name) {
			c.pendingRemoval = b.Name
			break
		}
	}
	return notes
}

// castEffects applies the spell's declared buff side effects.
func (c *Character) castEffects(spell *rules.Spell, ts time.Time) []state.Notification {
	var notes []state.Notification
	if spell.RemovesBuff != "" && c.buffs.Remove(spell.RemovesBuff) {
		notes = append(notes, c.buffNote(spell.RemovesBuff, 0, state.BuffExpired, ts))
	}
	if spell.GrantsBuff != "" {
		r := c.buffs.Apply(spell.GrantsBuff, 1)
		notes = append(notes, c.buffNote(spell.GrantsBuff, r.Value, state.BuffActive, ts))
	}
	if spell.ConsumesStack != "" && c.buffs.Active(spell.ConsumesStack) {
		v, _ := c.buffs.AddStacks(spell.ConsumesStack, -1)
		notes = append(notes, c.buffNote(spell.ConsumesStack, v, state.BuffConsumed, ts))
	}
	if d := spell.Drain; d != nil && (d.While == "" || c.buffs.Active(d.While)) && c.buffs.Active(d.Buff) {
		v, _ := c.buffs.AddStacks(d.Buff, -d.Amount)
		status := state.BuffActive
		if v == 0 {
			status = state.BuffExpired
		}
		notes = append(notes, c.buffNote(d.Buff, v, status, ts))
	}
	return notes
}

// handleHint amends the open pending cast with its pinned real cost.
// Hints with no pending cast are dropped.
func (c *Character) handleHint(ev event.Event, ts time.Time) []state.Notification {
	p := c.pending
	if p == nil {
		return nil
	}
	switch ev.Hint {
	case event.HintApproach:
		if cost, ok := resolve.AmendApproach(p.spell, ev.Cells); ok {
			p.res.Final = cost
		}
	default:
		if cost, ok := p.spell.VariantCost(string(ev.Hint)); ok {
			p.res.Final = cost
		}
	}
	return c.finalizePending(ts)
}

func (c *Character) handleProc(ev event.Event, ts time.Time) []state.Notification {
	if ev.Buff == "" {
		return nil
	}
	// A proc line right after a matching variable-cost cast settles the
	// cast at the override cost.
	if p := c.pending; p != nil {
		if o, ok := c.arch.CostOverride(ev.Buff, p.spell.Name); ok {
			p.res.Final = o.OverrideCost()
			p.res.Contributing = append(p.res.Contributing, ev.Buff)
			return c.finalizePending(ts)
		}
	}
	// Otherwise the proc is stored and spent by the next eligible cast.
	r := c.buffs.Apply(ev.Buff, 1)
	return []state.Notification{c.buffNote(ev.Buff, r.Value, state.BuffActive, ts)}
}

func (c *Character) handleGain(ev event.Event, ts time.Time) []state.Notification {
	if ev.Buff == "" {
		return nil
	}
	policy, known := c.arch.Buff(ev.Buff)
	if !known {
		return nil
	}
	if ev.Caster != "" {
		if c.name == "" && c.autoAdopt {
			c.name = ev.Caster
			c.log.Info("tracking character", "character", c.name, "archetype", c.arch.Name)
		}
		if c.name != "" && ev.Caster != c.name {
			return nil
		}
	}
	if c.name == "" {
		return nil
	}

	// A gain above the talent ceiling means the talent is not in force
	// after all: drop the override before applying.
	if policy.TalentCeiling > 0 && ev.Level > policy.TalentCeiling &&
		c.buffs.Ceiling(ev.Buff) == policy.TalentCeiling {
		c.buffs.ClearCeiling(ev.Buff)
		c.log.Debug("talent ceiling revoked", "character", c.name, "buff", ev.Buff, "talent", policy.TalentName)
	}
	if policy.TalentCeiling > 0 {
		c.lastGain[ev.Buff] = ev.Level
	}

	r := c.buffs.Apply(ev.Buff, ev.Level)
	notes := []state.Notification{c.buffNote(ev.Buff, r.Value, state.BuffActive, ts)}
	if r.Wraps == 0 {
		return notes
	}

	for _, g := range policy.WrapGrants {
		gained := r.Wraps
		if g.Max > 0 {
			if room := g.Max - c.buffs.Value(g.Buff); gained > room {
				gained = room
			}
		}
		if gained <= 0 {
			continue
		}
		v, _ := c.buffs.AddStacks(g.Buff, gained)
		notes = append(notes, c.buffNote(g.Buff, v, state.BuffActive, ts))
	}
	if policy.WrapRemoves != "" && c.buffs.Remove(policy.WrapRemoves) {
		notes = append(notes, c.buffNote(policy.WrapRemoves, 0, state.BuffExpired, ts))
	}
	return notes
}

func (c *Character) handleRemoved(ev event.Event, ts time.Time) []state.Notification {
	if ev.Buff == "" {
		return nil
	}
	if ev.Caster != "" && c.name != "" && ev.Caster != c.name {
		return nil
	}
	policy, known := c.arch.Buff(ev.Buff)
	if !known {
		return nil
	}
	// An explicit removal line supersedes a deferred one.
	if ev.Buff == c.pendingRemoval {
		c.pendingRemoval = ""
	}
	if policy.RemovalDelta > 0 && c.buffs.Active(ev.Buff) {
		v, _ := c.buffs.AddStacks(ev.Buff, -policy.RemovalDelta)
		status := state.BuffActive
		if v == 0 {
			status = state.BuffExpired
		}
		return []state.Notification{c.buffNote(ev.Buff, v, status, ts)}
	}
	if c.buffs.Remove(ev.Buff) {
		return []state.Notification{c.buffNote(ev.Buff, 0, state.BuffExpired, ts)}
	}
	return nil
}

func (c *Character) handleConsumed(ev event.Event, ts time.Time) []state.Notification {
	if ev.Buff == "" || !c.buffs.Active(ev.Buff) {
		return nil
	}
	v, _ := c.buffs.AddStacks(ev.Buff, -1)
	return []state.Notification{c.buffNote(ev.Buff, v, state.BuffConsumed, ts)}
}

// handleCapReached detects talent-lowered ceilings: the cap line firing
// while the gauge sits above the talent ceiling means the talent is
// active, unless the last gain was a full-gauge grant that explains the
// cap on its own.
func (c *Character) handleCapReached(ev event.Event, ts time.Time) []state.Notification {
	policy, ok := c.arch.Buff(ev.Buff)
	if !ok || policy.TalentCeiling == 0 {
		return nil
	}
	if c.buffs.Ceiling(ev.Buff) == policy.TalentCeiling {
		return nil
	}
	if policy.FullGain > 0 && c.lastGain[ev.Buff] == policy.FullGain {
		return nil
	}
	if c.buffs.Value(ev.Buff) <= policy.TalentCeiling {
		return nil
	}
	c.buffs.SetCeiling(ev.Buff, policy.TalentCeiling)
	c.log.Debug("talent ceiling detected", "character", c.name, "buff", ev.Buff, "talent", policy.TalentName)
	return []state.Notification{c.buffNote(ev.Buff, c.buffs.Value(ev.Buff), state.BuffActive, ts)}
}

func (c *Character) handleDamage(ev event.Event, ts time.Time) []state.Notification {
	var notes []state.Notification
	if c.pendingRemoval != "" {
		kind := c.pendingRemoval
		c.pendingRemoval = ""
		if c.buffs.Remove(kind) {
			notes = append(notes, c.buffNote(kind, 0, state.BuffExpired, ts))
		}
	}
	if ev.Tag != "" {
		if policy, ok := c.arch.Buff(ev.Tag); ok && policy.RemovedOnTaggedDamage && c.buffs.Remove(policy.Name) {
			notes = append(notes, c.buffNote(policy.Name, 0, state.BuffExpired, ts))
		}
	}
	return notes
}

func (c *Character) handleTurnEnd(ev event.Event, ts time.Time) []state.Notification {
	if c.name == "" {
		return nil
	}
	// The carryover line belongs to whoever acted last.
	if c.lastCaster != "" && c.lastCaster != c.name {
		return nil
	}

	var notes []state.Notification
	c.pendingRemoval = ""
	for _, kind := range rules.Kinds {
		before := c.ledger.Value(kind)
		if v := c.ledger.Reset(kind, ts); v != before {
			notes = append(notes, c.resourceNote(kind, v, false, ts))
		}
	}
	for _, kind := range c.buffs.Tick(1) {
		notes = append(notes, c.buffNote(kind, 0, state.BuffExpired, ts))
	}
	for i := range c.arch.Buffs {
		b := &c.arch.Buffs[i]
		if b.RemovedOnTurnEnd && c.buffs.Remove(b.Name) {
			notes = append(notes, c.buffNote(b.Name, 0, state.BuffExpired, ts))
		}
	}
	for _, tr := range c.combos.ResetAll() {
		notes = append(notes, c.comboNote(tr, ts))
	}
	notes = append(notes, state.Notification{Kind: state.TurnEnded, Character: c.name, Timestamp: ts})
	return notes
}

// endCombat drops all per-combat state. Safe to call when no combat is
// open; it then changes nothing and emits nothing.
func (c *Character) endCombat(ts time.Time) []state.Notification {
	wasOpen := c.inCombat
	c.inCombat = false
	c.training = false
	c.pending = nil
	c.pendingRemoval = ""
	c.lastCaster = ""
	clear(c.lastGain)

	var notes []state.Notification
	for _, kind := range c.buffs.Clear() {
		notes = append(notes, c.buffNote(kind, 0, state.BuffExpired, ts))
	}
	for _, kind := range rules.Kinds {
		before := c.ledger.Value(kind)
		if v := c.ledger.Reset(kind, ts); v != before {
			notes = append(notes, c.resourceNote(kind, v, false, ts))
		}
	}
	for _, tr := range c.combos.ResetAll() {
		notes = append(notes, c.comboNote(tr, ts))
	}
	c.timeline.Clear()

	if wasOpen {
		notes = append(notes, state.Notification{Kind: state.CombatEnded, Character: c.name, Timestamp: ts})
		c.log.Debug("combat ended", "character", c.name)
	}
	if c.autoAdopt {
		c.name = ""
	}
	return notes
}
