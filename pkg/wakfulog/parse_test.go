package wakfulog_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/event"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/rules"
)

const sampleLog = `Bienvenue sur le serveur Pandora
[Information (combat)] Belluya: lance le sort Jabs
[Information (combat)] Sac à patates: -64 PV (Feu)
quelque chose sans rapport
[Information (combat)] Belluya: Courroux (+1 Niv.) (Compulsion)
[Information (combat)] 12 secondes reportées pour le tour suivant
[Information (combat)] Combat terminé
`

func TestParseLine(t *testing.T) {
	ev, err := wakfulog.ParseLine("[Information (combat)] Belluya: lance le sort Bond")
	require.NoError(t, err)
	assert.Equal(t, event.SpellCast, ev.Type)
	assert.Equal(t, "Belluya", ev.Caster)
	assert.Equal(t, "Bond", ev.Spell)
}

func TestParseLine_Unrecognized(t *testing.T) {
	ev, err := wakfulog.ParseLine("foo bar baz")
	require.NoError(t, err)
	assert.Equal(t, event.Unrecognized, ev.Type)
}

func TestParseLine_InvalidOptions(t *testing.T) {
	_, err := wakfulog.ParseLine("anything", wakfulog.WithArchetype("ecaflip"))
	require.Error(t, err)
	assert.ErrorIs(t, err, wakfulog.ErrUnknownArchetype)
}

func TestParseReader(t *testing.T) {
	events, err := wakfulog.ParseReader(strings.NewReader(sampleLog))
	require.NoError(t, err)

	types := make([]event.Type, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	assert.Equal(t, []event.Type{
		event.SpellCast,
		event.Damage,
		event.BuffGained,
		event.TurnEnd,
		event.CombatEnd,
	}, types)
}

func TestParseReader_EmitUnrecognized(t *testing.T) {
	events, err := wakfulog.ParseReader(strings.NewReader(sampleLog),
		wakfulog.WithEmitUnrecognized(true))
	require.NoError(t, err)
	assert.Len(t, events, 7)
}

func TestParseReader_TypeFilter(t *testing.T) {
	events, err := wakfulog.ParseReader(strings.NewReader(sampleLog),
		wakfulog.WithIncludeEvents(event.SpellCast))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.SpellCast, events[0].Type)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wakfu_chat.log")
	require.NoError(t, os.WriteFile(path, []byte(sampleLog), 0644))

	events, err := wakfulog.ParseFile(path, wakfulog.WithIncludeRawLine(true))
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Contains(t, events[0].RawLine, "lance le sort Jabs")
	assert.Equal(t, rules.ArchetypeIop, events[0].Archetype)
}

func TestParseFile_NotFound(t *testing.T) {
	_, err := wakfulog.ParseFile(filepath.Join(t.TempDir(), "missing.log"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening chat log")
}
