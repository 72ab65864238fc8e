package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wakfulog/wakfulog-go/internal/buffs"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/rules"
)

func compile(t *testing.T, arch rules.Archetype) *rules.Archetype {
	t.Helper()
	rs := &rules.Ruleset{Version: rules.SupportedVersion, Archetypes: []rules.Archetype{arch}}
	_, err := rs.Compile()
	require.NoError(t, err)
	out, ok := rs.Archetype(arch.Name)
	require.True(t, ok)
	return out
}

func TestResolve_BaseCost(t *testing.T) {
	arch := compile(t, rules.Archetype{
		Name:   "test",
		Spells: []rules.Spell{{Name: "Jabs", Cost: "3 PA"}},
	})
	spell, _ := arch.Spell("Jabs")

	res := Resolve(spell, arch, buffs.Snapshot{})
	assert.Equal(t, rules.Cost{Amount: 3, Kind: rules.KindPA}, res.Base)
	assert.Equal(t, res.Base, res.Final)
	assert.Empty(t, res.Contributing)
	assert.Empty(t, res.Consume)
}

func TestResolve_OverrideWins(t *testing.T) {
	arch := compile(t, rules.Archetype{
		Name:   "test",
		Spells: []rules.Spell{{Name: "Bond", Cost: "4 PA"}},
		Buffs: []rules.Buff{
			{Name: "Impétueux", Expiry: rules.ExpirySingleUse},
		},
		Overrides: []rules.Override{
			{Proc: "Impétueux", Spell: "Bond", Cost: "0 PA"},
		},
	})
	spell, _ := arch.Spell("Bond")

	snap := buffs.Snapshot{"Impétueux": buffs.View{Kind: "Impétueux", SingleUse: true}}
	res := Resolve(spell, arch, snap)
	assert.Equal(t, rules.Cost{Amount: 0, Kind: rules.KindPA}, res.Final)
	assert.Equal(t, []string{"Impétueux"}, res.Contributing)
	assert.Equal(t, []string{"Impétueux"}, res.Consume)
}

func TestResolve_OverrideInactiveProc(t *testing.T) {
	arch := compile(t, rules.Archetype{
		Name:   "test",
		Spells: []rules.Spell{{Name: "Bond", Cost: "4 PA"}},
		Buffs: []rules.Buff{
			{Name: "Impétueux", Expiry: rules.ExpirySingleUse},
		},
		Overrides: []rules.Override{
			{Proc: "Impétueux", Spell: "Bond", Cost: "0 PA"},
		},
	})
	spell, _ := arch.Spell("Bond")

	res := Resolve(spell, arch, buffs.Snapshot{})
	assert.Equal(t, rules.Cost{Amount: 4, Kind: rules.KindPA}, res.Final)
	assert.Empty(t, res.Consume)
}

func TestResolve_PercentBeforeFlat(t *testing.T) {
	arch := compile(t, rules.Archetype{
		Name:   "test",
		Spells: []rules.Spell{{Name: "Ravage", Cost: "10 PA"}},
		Buffs: []rules.Buff{
			{Name: "Allègement"},
			{Name: "Faveur"},
		},
		Discounts: []rules.Discount{
			{Buff: "Faveur", Flat: 2},
			{Buff: "Allègement", Percent: 50},
		},
	})
	spell, _ := arch.Spell("Ravage")

	snap := buffs.Snapshot{
		"Allègement": buffs.View{Kind: "Allègement"},
		"Faveur":     buffs.View{Kind: "Faveur"},
	}
	res := Resolve(spell, arch, snap)
	// 10 - 50% = 5, then -2 flat = 3. Percent applies first regardless of
	// declaration order.
	assert.Equal(t, 3, res.Final.Amount)
	assert.Equal(t, []string{"Allègement", "Faveur"}, res.Contributing)
}

func TestResolve_FloorAtZero(t *testing.T) {
	arch := compile(t, rules.Archetype{
		Name:   "test",
		Spells: []rules.Spell{{Name: "Rafale", Cost: "1 PA"}},
		Buffs:  []rules.Buff{{Name: "Faveur"}},
		Discounts: []rules.Discount{
			{Buff: "Faveur", Flat: 5},
		},
	})
	spell, _ := arch.Spell("Rafale")

	snap := buffs.Snapshot{"Faveur": buffs.View{Kind: "Faveur"}}
	res := Resolve(spell, arch, snap)
	assert.Zero(t, res.Final.Amount)
}

func TestResolve_SpellScopedDiscount(t *testing.T) {
	arch := compile(t, rules.Archetype{
		Name: "test",
		Spells: []rules.Spell{
			{Name: "Jabs", Cost: "3 PA"},
			{Name: "Rafale", Cost: "1 PA"},
		},
		Buffs: []rules.Buff{{Name: "Faveur"}},
		Discounts: []rules.Discount{
			{Buff: "Faveur", Spell: "Jabs", Flat: 1},
		},
	})
	snap := buffs.Snapshot{"Faveur": buffs.View{Kind: "Faveur"}}

	jabs, _ := arch.Spell("Jabs")
	assert.Equal(t, 2, Resolve(jabs, arch, snap).Final.Amount)

	rafale, _ := arch.Spell("Rafale")
	assert.Equal(t, 1, Resolve(rafale, arch, snap).Final.Amount)
}

func TestAmendApproach(t *testing.T) {
	arch := compile(t, rules.Archetype{
		Name: "test",
		Spells: []rules.Spell{
			{Name: "Charge", Cost: "1 PA", Variable: true, ApproachStep: "1 PA"},
			{Name: "Jabs", Cost: "3 PA"},
		},
	})

	charge, _ := arch.Spell("Charge")
	cost, ok := AmendApproach(charge, 2)
	require.True(t, ok)
	assert.Equal(t, rules.Cost{Amount: 3, Kind: rules.KindPA}, cost)

	cost, ok = AmendApproach(charge, 0)
	require.True(t, ok)
	assert.Equal(t, 1, cost.Amount)

	_, ok = AmendApproach(charge, -1)
	assert.False(t, ok)

	jabs, _ := arch.Spell("Jabs")
	_, ok = AmendApproach(jabs, 2)
	assert.False(t, ok, "spells without an approach step cannot amend")
}
