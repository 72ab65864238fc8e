package combo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/rules"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time { return f.t }

func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func testChains() []rules.Combo {
	return []rules.Combo{
		{Name: "Poussée", Steps: []string{"1PA", "1PA", "2PA"}, Window: rules.Duration(30 * time.Second), BreakOnMismatch: true},
		{Name: "Vol de vie", Steps: []string{"1PM", "3PA", "3PA"}, Window: rules.Duration(30 * time.Second), BreakOnMismatch: true},
	}
}

func transitionsOf(trs []Transition, kind TransitionKind) []string {
	var names []string
	for _, tr := range trs {
		if tr.Kind == kind {
			names = append(names, tr.Chain)
		}
	}
	return names
}

func TestAdvance_Completes(t *testing.T) {
	tr := New(testChains(), nil)

	trs := tr.Advance("1PA")
	assert.Equal(t, []string{"Poussée"}, transitionsOf(trs, Advanced))

	trs = tr.Advance("1PA")
	assert.Equal(t, []string{"Poussée"}, transitionsOf(trs, Advanced))

	trs = tr.Advance("2PA")
	assert.Equal(t, []string{"Poussée"}, transitionsOf(trs, Completed))
	assert.Zero(t, tr.Progress("Poussée"))
}

func TestAdvance_BreakOnMismatch(t *testing.T) {
	tr := New(testChains(), nil)

	tr.Advance("1PA")
	trs := tr.Advance("6PA")
	assert.Equal(t, []string{"Poussée"}, transitionsOf(trs, Reset))
	assert.Zero(t, tr.Progress("Poussée"))
}

func TestAdvance_FillerWhenNotBreaking(t *testing.T) {
	chains := []rules.Combo{
		{Name: "Calme", Steps: []string{"1PA", "2PA"}},
	}
	tr := New(chains, nil)

	tr.Advance("1PA")
	trs := tr.Advance("6PA")
	assert.Empty(t, trs, "off-chain casts are filler for non-breaking chains")
	assert.Equal(t, 1, tr.Progress("Calme"))

	trs = tr.Advance("2PA")
	assert.Equal(t, []string{"Calme"}, transitionsOf(trs, Completed))
}

func TestAdvance_WindowExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	tr := New(testChains(), clock.now)

	tr.Advance("1PA")
	clock.advance(31 * time.Second)
	trs := tr.Advance("1PA")
	assert.Contains(t, transitionsOf(trs, Reset), "Poussée")
	// The same cast restarts the chain from scratch.
	assert.Contains(t, transitionsOf(trs, Advanced), "Poussée")
	assert.Equal(t, 1, tr.Progress("Poussée"))
}

func TestAdvance_ProgressingCastResetsOthers(t *testing.T) {
	tr := New(testChains(), nil)

	tr.Advance("1PM") // Vol de vie step 1
	trs := tr.Advance("1PA")
	assert.Equal(t, []string{"Poussée"}, transitionsOf(trs, Advanced))
	assert.Equal(t, []string{"Vol de vie"}, transitionsOf(trs, Reset))
}

func TestAdvance_CompletedProtectedThisTurn(t *testing.T) {
	tr := New(testChains(), nil)

	tr.Advance("1PA")
	tr.Advance("1PA")
	tr.Advance("2PA") // Poussée completed

	// A completed chain neither advances nor resets until re-armed.
	trs := tr.Advance("1PA")
	assert.NotContains(t, transitionsOf(trs, Advanced), "Poussée")
	trs = tr.Advance("6PA")
	assert.NotContains(t, transitionsOf(trs, Reset), "Poussée")
}

func TestResetAll(t *testing.T) {
	tr := New(testChains(), nil)

	tr.Advance("1PA")
	tr.Advance("1PA")
	trs := tr.ResetAll()
	assert.Equal(t, []string{"Poussée"}, transitionsOf(trs, Reset))
	assert.Zero(t, tr.Progress("Poussée"))

	// Completed chains are re-armed by the turn boundary.
	tr.Advance("1PA")
	tr.Advance("1PA")
	tr.Advance("2PA")
	tr.ResetAll()
	trs = tr.Advance("1PA")
	assert.Equal(t, []string{"Poussée"}, transitionsOf(trs, Advanced))
}

func TestSetRules_DropsRemovedChains(t *testing.T) {
	tr := New(testChains(), nil)

	tr.Advance("1PA")
	tr.Advance("1PM")

	tr.SetRules([]rules.Combo{testChains()[0]})
	assert.Equal(t, 1, tr.Progress("Poussée"), "surviving chain keeps progress")
	assert.Zero(t, tr.Progress("Vol de vie"))
}

func TestAdvance_StepNumbers(t *testing.T) {
	tr := New(testChains(), nil)

	trs := tr.Advance("1PA")
	assert.Equal(t, 1, trs[0].Step)
	assert.Equal(t, 3, trs[0].Steps)

	trs = tr.Advance("1PA")
	assert.Equal(t, 2, trs[0].Step)
}
