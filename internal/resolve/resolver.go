// Package resolve computes the actual resource cost of a cast from the
// spell's declared base cost and the buff state at resolution time.
package resolve

import (
	"github.com/wakfulog/wakfulog-go/internal/buffs"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/rules"
)

// Resolution is the outcome of resolving one cast. The resolver is a
// pure function of the spell, the rules and the snapshot: committing the
// ledger delta and consuming the listed procs is the caller's job.
type Resolution struct {
	Base  rules.Cost
	Final rules.Cost
	// Contributing lists the buffs and procs that changed the cost.
	Contributing []string
	// Consume lists single-use kinds the caller must consume on commit.
	Consume []string
}

// Resolve applies the archetype's modifier rules to the spell's base
// cost. Modifier precedence is fixed:
//
//  1. single-use full-cost overrides, in declaration order; the first
//     override whose proc is active wins and ends resolution,
//  2. percentage discounts, in declaration order,
//  3. flat discounts, in declaration order,
//  4. floor clamp at zero.
func Resolve(spell *rules.Spell, arch *rules.Archetype, snap buffs.Snapshot) Resolution {
	res := Resolution{
		Base:  spell.BaseCost(),
		Final: spell.BaseCost(),
	}

	for _, o := range arch.SpellOverrides(spell.Name) {
		if !snap.Active(o.Proc) {
			continue
		}
		res.Final = o.OverrideCost()
		res.Contributing = append(res.Contributing, o.Proc)
		res.Consume = append(res.Consume, o.Proc)
		return res
	}

	amount := res.Final.Amount
	for _, d := range arch.Discounts {
		if d.Percent == 0 || !discountApplies(&d, spell.Name, snap) {
			continue
		}
		amount -= amount * d.Percent / 100
		res.Contributing = append(res.Contributing, d.Buff)
		if d.Consumes {
			res.Consume = append(res.Consume, d.Buff)
		}
	}
	for _, d := range arch.Discounts {
		if d.Flat == 0 || !discountApplies(&d, spell.Name, snap) {
			continue
		}
		amount -= d.Flat
		res.Contributing = append(res.Contributing, d.Buff)
		if d.Consumes {
			res.Consume = append(res.Consume, d.Buff)
		}
	}
	if amount < 0 {
		amount = 0
	}
	res.Final.Amount = amount
	return res
}

func discountApplies(d *rules.Discount, spell string, snap buffs.Snapshot) bool {
	if d.Spell != "" && d.Spell != spell {
		return false
	}
	return snap.Active(d.Buff)
}

// AmendApproach recomputes a movement spell's cost from the number of
// cells approached: base plus the per-cell surcharge.
func AmendApproach(spell *rules.Spell, cells int) (rules.Cost, bool) {
	step, ok := spell.ApproachCost()
	if !ok || cells < 0 {
		return rules.Cost{}, false
	}
	final := spell.BaseCost()
	final.Amount += step.Amount * cells
	return final, true
}
