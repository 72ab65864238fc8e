package rules_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/rules"
)

func minimalRuleset() *rules.Ruleset {
	return &rules.Ruleset{
		Version: rules.SupportedVersion,
		Archetypes: []rules.Archetype{
			{
				Name: "iop",
				Spells: []rules.Spell{
					{Name: "Jabs", Cost: "3 PA"},
					{Name: "Bond", Cost: "4 PA", Variable: true},
				},
				Buffs: []rules.Buff{
					{Name: "Courroux", Ceiling: 4},
					{Name: "Impétueux", Expiry: rules.ExpirySingleUse},
				},
				Overrides: []rules.Override{
					{Proc: "Impétueux", Spell: "Bond", Cost: "0 PA"},
				},
				Combos: []rules.Combo{
					{Name: "Poussée", Steps: []string{"1PA", "1PA", "2PA"}},
				},
			},
		},
	}
}

func TestCompile_Valid(t *testing.T) {
	rs := minimalRuleset()
	report, err := rs.Compile()
	require.NoError(t, err)
	assert.Empty(t, report.Disabled)
	assert.True(t, rs.Compiled())

	arch, ok := rs.Archetype("iop")
	require.True(t, ok)

	spell, ok := arch.Spell("Jabs")
	require.True(t, ok)
	assert.Equal(t, rules.Cost{Amount: 3, Kind: rules.KindPA}, spell.BaseCost())

	o, ok := arch.CostOverride("Impétueux", "Bond")
	require.True(t, ok)
	assert.Equal(t, rules.Cost{Amount: 0, Kind: rules.KindPA}, o.OverrideCost())

	assert.Len(t, arch.ActiveCombos(), 1)
}

func TestCompile_UnsupportedVersion(t *testing.T) {
	rs := minimalRuleset()
	rs.Version = 99
	_, err := rs.Compile()
	require.Error(t, err)
	var valErr *rules.ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, err.Error(), "unsupported version")
}

func TestCompile_DuplicateSpell(t *testing.T) {
	rs := minimalRuleset()
	rs.Archetypes[0].Spells = append(rs.Archetypes[0].Spells, rules.Spell{Name: "Jabs", Cost: "1 PA"})
	_, err := rs.Compile()
	require.Error(t, err)
	var ruleErr *rules.RuleError
	require.True(t, errors.As(err, &ruleErr))
	assert.Contains(t, err.Error(), "duplicate spell")
}

func TestCompile_InvalidSpellCost(t *testing.T) {
	rs := minimalRuleset()
	rs.Archetypes[0].Spells[0].Cost = "3 XP"
	_, err := rs.Compile()
	require.Error(t, err)
	var ruleErr *rules.RuleError
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, "cost", ruleErr.Field)
}

func TestCompile_OverrideUnknownSpell(t *testing.T) {
	rs := minimalRuleset()
	rs.Archetypes[0].Overrides[0].Spell = "Inconnu"
	_, err := rs.Compile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown spell")
}

func TestCompile_BadComboStepDisablesChain(t *testing.T) {
	rs := minimalRuleset()
	rs.Archetypes[0].Combos = append(rs.Archetypes[0].Combos, rules.Combo{
		Name:  "Cassé",
		Steps: []string{"1PA", "beaucoup"},
	})
	report, err := rs.Compile()
	require.NoError(t, err)
	require.Len(t, report.Disabled, 1)
	assert.Equal(t, "Cassé", report.Disabled[0].Chain)
	assert.Contains(t, report.Disabled[0].Reason, "not a valid cost token")

	arch, _ := rs.Archetype("iop")
	assert.Len(t, arch.ActiveCombos(), 1, "valid chain must survive")
}

func TestCompile_AliasClash(t *testing.T) {
	rs := minimalRuleset()
	rs.Archetypes[0].Buffs = append(rs.Archetypes[0].Buffs,
		rules.Buff{Name: "A", Aliases: []string{"X"}},
		rules.Buff{Name: "B", Aliases: []string{"X"}},
	)
	_, err := rs.Compile()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already maps to")
}

func TestArchetype_CanonicalBuff(t *testing.T) {
	rs := minimalRuleset()
	rs.Archetypes[0].Buffs = append(rs.Archetypes[0].Buffs, rules.Buff{
		Name:    "Préparation",
		Aliases: []string{"Préparation (Concentration)"},
	})
	_, err := rs.Compile()
	require.NoError(t, err)

	arch, _ := rs.Archetype("iop")
	assert.Equal(t, "Préparation", arch.CanonicalBuff("Préparation (Concentration)"))
	assert.Equal(t, "Préparation", arch.CanonicalBuff("Préparation"))
	assert.Equal(t, "Autre", arch.CanonicalBuff("Autre"))
}

func TestArchetype_ResourceMax(t *testing.T) {
	rs := minimalRuleset()
	rs.Archetypes[0].Resources = map[rules.Kind]int{rules.KindPA: 10}
	_, err := rs.Compile()
	require.NoError(t, err)

	arch, _ := rs.Archetype("iop")
	assert.Equal(t, 10, arch.ResourceMax(rules.KindPA))
	// Missing kinds fall back to the defaults.
	assert.Equal(t, 6, arch.ResourceMax(rules.KindPM))
	assert.Equal(t, 6, arch.ResourceMax(rules.KindPW))
}

func TestDefaultRuleset(t *testing.T) {
	rs := rules.DefaultRuleset()
	assert.True(t, rs.Compiled())

	iop, ok := rs.Archetype(rules.ArchetypeIop)
	require.True(t, ok)
	assert.True(t, iop.KnowsSpell("Super Iop Punch"))

	bond, ok := iop.Spell("Bond")
	require.True(t, ok)
	assert.True(t, bond.Variable)

	etendard, ok := iop.Spell("Étendard de bravoure")
	require.True(t, ok)
	c, ok := etendard.VariantCost("teleport")
	require.True(t, ok)
	assert.Equal(t, rules.Cost{Amount: 2, Kind: rules.KindPA}, c)

	charge, ok := iop.Spell("Charge")
	require.True(t, ok)
	step, ok := charge.ApproachCost()
	require.True(t, ok)
	assert.Equal(t, rules.Cost{Amount: 1, Kind: rules.KindPA}, step)

	cra, ok := rs.Archetype(rules.ArchetypeCra)
	require.True(t, ok)
	precision, ok := cra.Buff("Précision")
	require.True(t, ok)
	assert.Equal(t, 300, precision.Ceiling)
	assert.Equal(t, 200, precision.TalentCeiling)
	assert.Equal(t, "Esprit affûté", precision.TalentName)
}
