package resource

import (
	"testing"
	"time"

	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/rules"
)

func testMaxima() map[rules.Kind]int {
	return map[rules.Kind]int{
		rules.KindPA: 12,
		rules.KindPM: 6,
		rules.KindPW: 6,
	}
}

func TestLedger_StartsFull(t *testing.T) {
	l := NewLedger(testMaxima())
	for _, kind := range rules.Kinds {
		if got, want := l.Value(kind), l.Max(kind); got != want {
			t.Errorf("%s: got %d, want %d", kind, got, want)
		}
	}
}

func TestLedger_Apply(t *testing.T) {
	l := NewLedger(testMaxima())
	now := time.Now()

	v, clamped := l.Apply(rules.KindPA, -3, now)
	if v != 9 || clamped {
		t.Errorf("got (%d, %v), want (9, false)", v, clamped)
	}
	v, clamped = l.Apply(rules.KindPA, -4, now)
	if v != 5 || clamped {
		t.Errorf("got (%d, %v), want (5, false)", v, clamped)
	}
}

func TestLedger_ClampsAtZero(t *testing.T) {
	l := NewLedger(testMaxima())
	now := time.Now()

	v, clamped := l.Apply(rules.KindPM, -10, now)
	if v != 0 || !clamped {
		t.Errorf("got (%d, %v), want (0, true)", v, clamped)
	}
}

func TestLedger_ClampsAtMax(t *testing.T) {
	l := NewLedger(testMaxima())
	now := time.Now()

	l.Apply(rules.KindPA, -2, now)
	v, clamped := l.Apply(rules.KindPA, 5, now)
	if v != 12 || !clamped {
		t.Errorf("got (%d, %v), want (12, true)", v, clamped)
	}
}

func TestLedger_UnknownKind(t *testing.T) {
	l := NewLedger(testMaxima())

	v, clamped := l.Apply(rules.Kind("XP"), -1, time.Now())
	if v != 0 || clamped {
		t.Errorf("got (%d, %v), want (0, false)", v, clamped)
	}
}

func TestLedger_Reset(t *testing.T) {
	l := NewLedger(testMaxima())
	now := time.Now()

	l.Apply(rules.KindPA, -7, now)
	if v := l.Reset(rules.KindPA, now); v != 12 {
		t.Errorf("got %d, want 12", v)
	}
}

func TestLedger_ResetAll(t *testing.T) {
	l := NewLedger(testMaxima())
	now := time.Now()

	l.Apply(rules.KindPA, -7, now)
	l.Apply(rules.KindPM, -2, now)
	l.ResetAll(now)
	for _, kind := range rules.Kinds {
		if l.Value(kind) != l.Max(kind) {
			t.Errorf("%s not restored to max", kind)
		}
	}
}

func TestLedger_SetMaxima(t *testing.T) {
	l := NewLedger(testMaxima())

	l.SetMaxima(map[rules.Kind]int{
		rules.KindPA: 8,
		rules.KindPM: 6,
		rules.KindPW: 6,
	})
	if l.Max(rules.KindPA) != 8 {
		t.Errorf("max: got %d, want 8", l.Max(rules.KindPA))
	}
	// Current value is clamped into the new bound.
	if l.Value(rules.KindPA) != 8 {
		t.Errorf("value: got %d, want 8", l.Value(rules.KindPA))
	}
}

func TestLedger_History(t *testing.T) {
	l := NewLedger(testMaxima())
	now := time.Now()

	l.Apply(rules.KindPA, -3, now)
	l.Apply(rules.KindPM, -1, now)

	h := l.History()
	if len(h) != 2 {
		t.Fatalf("got %d entries, want 2", len(h))
	}
	if h[0].Kind != rules.KindPA || h[0].Amount != -3 || h[0].Value != 9 {
		t.Errorf("unexpected first delta: %+v", h[0])
	}
}

func TestLedger_HistoryBounded(t *testing.T) {
	l := NewLedger(testMaxima())
	now := time.Now()

	for i := 0; i < historyLimit+10; i++ {
		l.Apply(rules.KindPA, -1, now)
		l.Reset(rules.KindPA, now)
	}
	if got := len(l.History()); got != historyLimit {
		t.Errorf("got %d entries, want %d", got, historyLimit)
	}
}
