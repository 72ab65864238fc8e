package wakfulog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/rules"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/state"
)

const combatLog = `Bienvenue sur le serveur Pandora
[Information (combat)] Belluya: lance le sort Jabs
[Information (combat)] Sac à patates: -64 PV (Feu)
[Information (combat)] Belluya: lance le sort Fulgur
[Information (combat)] Sac à patates: -102 PV (Feu)
[Information (combat)] 12 secondes reportées pour le tour suivant
[Information (combat)] Combat terminé
`

func writeCombatLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wakfu_chat.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func kindsOf(notes []state.Notification) []state.Kind {
	kinds := make([]state.Kind, len(notes))
	for i, n := range notes {
		kinds[i] = n.Kind
	}
	return kinds
}

func TestProcessFile(t *testing.T) {
	tr, err := wakfulog.NewTracker()
	require.NoError(t, err)

	notes, err := tr.ProcessFile(writeCombatLog(t, combatLog))
	require.NoError(t, err)

	kinds := kindsOf(notes)
	assert.Contains(t, kinds, state.CastResolved)
	assert.Contains(t, kinds, state.ResourceChanged)
	assert.Contains(t, kinds, state.TurnEnded)
	assert.Contains(t, kinds, state.CombatEnded)

	var casts []string
	for _, n := range notes {
		if n.Kind == state.CastResolved {
			casts = append(casts, n.Cast.Spell)
			assert.Equal(t, "Belluya", n.Cast.Caster)
		}
	}
	assert.Equal(t, []string{"Jabs", "Fulgur"}, casts)
}

func TestProcessFile_KindFilter(t *testing.T) {
	tr, err := wakfulog.NewTracker(
		wakfulog.WithIncludeKinds(state.CastResolved))
	require.NoError(t, err)

	notes, err := tr.ProcessFile(writeCombatLog(t, combatLog))
	require.NoError(t, err)
	require.NotEmpty(t, notes)
	for _, n := range notes {
		assert.Equal(t, state.CastResolved, n.Kind)
	}
}

func TestProcessFile_NamedCharacter(t *testing.T) {
	tr, err := wakfulog.NewTracker(
		wakfulog.WithCharacter("Autre", rules.ArchetypeIop))
	require.NoError(t, err)

	notes, err := tr.ProcessFile(writeCombatLog(t, combatLog))
	require.NoError(t, err)
	for _, n := range notes {
		assert.NotEqual(t, state.CastResolved, n.Kind,
			"casts by other fighters must not resolve")
	}
}

func TestProcessFile_NotFound(t *testing.T) {
	tr, err := wakfulog.NewTracker()
	require.NoError(t, err)

	_, err = tr.ProcessFile(filepath.Join(t.TempDir(), "missing.log"))
	require.Error(t, err)
}

func TestProcessFile_AfterClose(t *testing.T) {
	tr, err := wakfulog.NewTracker()
	require.NoError(t, err)
	require.NoError(t, tr.Close())

	_, err = tr.ProcessFile(writeCombatLog(t, combatLog))
	assert.ErrorIs(t, err, wakfulog.ErrTrackerClosed)
}

func TestTracker_Timeline(t *testing.T) {
	tr, err := wakfulog.NewTracker()
	require.NoError(t, err)

	// Drop the trailing combat end so the timeline survives.
	log := `[Information (combat)] Belluya: lance le sort Jabs
[Information (combat)] Belluya: lance le sort Fulgur
`
	_, err = tr.ProcessFile(writeCombatLog(t, log))
	require.NoError(t, err)

	casts := tr.Timeline("")
	require.Len(t, casts, 2)
	assert.Equal(t, "Jabs", casts[0].Spell)
	assert.Equal(t, "Fulgur", casts[1].Spell)
}

func TestTracker_UnrecognizedCount(t *testing.T) {
	tr, err := wakfulog.NewTracker()
	require.NoError(t, err)

	_, err = tr.ProcessFile(writeCombatLog(t, combatLog))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), tr.UnrecognizedCount())
}

func TestTracker_ReloadRules(t *testing.T) {
	tr, err := wakfulog.NewTracker()
	require.NoError(t, err)

	require.NoError(t, tr.ReloadRules(rules.DefaultRuleset()))

	// An uncompiled ruleset is rejected.
	err = tr.ReloadRules(&rules.Ruleset{Version: rules.SupportedVersion})
	require.Error(t, err)

	// A ruleset missing the tracked archetype is rejected.
	rs := &rules.Ruleset{
		Version: rules.SupportedVersion,
		Archetypes: []rules.Archetype{
			{Name: "ecaflip", Spells: []rules.Spell{{Name: "Pile ou Face", Cost: "3 PA"}}},
		},
	}
	_, err = rs.Compile()
	require.NoError(t, err)
	err = tr.ReloadRules(rs)
	assert.ErrorIs(t, err, wakfulog.ErrUnknownArchetype)
}

func TestTracker_ReloadPreservesState(t *testing.T) {
	tr, err := wakfulog.NewTracker()
	require.NoError(t, err)

	log := `[Information (combat)] Belluya: lance le sort Jabs
`
	_, err = tr.ProcessFile(writeCombatLog(t, log))
	require.NoError(t, err)
	require.Len(t, tr.Timeline(""), 1)

	require.NoError(t, tr.ReloadRules(rules.DefaultRuleset()))
	assert.Len(t, tr.Timeline(""), 1, "reload must not discard accumulated state")
}
