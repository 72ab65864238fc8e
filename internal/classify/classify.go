// Package classify converts raw Wakfu chat log lines into typed events
// using an ordered list of per-archetype pattern rules.
package classify

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/event"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/rules"
)

// Classifier classifies log lines under one archetype context.
//
// Classification never fails: lines that match no rule come back as
// event.Unrecognized. Rules are evaluated most specific first; the first
// matching rule wins.
type Classifier struct {
	arch *rules.Archetype

	// Now supplies event timestamps; defaults to time.Now.
	Now func() time.Time
	// IncludeRaw copies the original line into Event.RawLine.
	IncludeRaw bool

	seq          atomic.Uint64
	unrecognized atomic.Uint64
}

// New creates a classifier for the given archetype rules.
func New(arch *rules.Archetype) *Classifier {
	return &Classifier{arch: arch, Now: time.Now}
}

// SetRules swaps the archetype rules (configuration reload).
func (c *Classifier) SetRules(arch *rules.Archetype) {
	c.arch = arch
}

// UnrecognizedCount returns how many lines classified as Unrecognized.
func (c *Classifier) UnrecognizedCount() uint64 {
	return c.unrecognized.Load()
}

// Classify converts one raw line into a typed event. Input is untrusted
// free text; anything unmatched is Unrecognized, never an error.
func (c *Classifier) Classify(line string) event.Event {
	// Trim trailing CR for Windows CRLF compatibility.
	line = strings.TrimRight(line, "\r")

	ev := event.Event{
		Type:      event.Unrecognized,
		Seq:       c.seq.Add(1),
		Timestamp: c.Now(),
		Archetype: c.arch.Name,
	}
	if c.IncludeRaw {
		ev.RawLine = line
	}

	// Training-dummy detection works on any line, combat-tagged or not.
	if isTrainingStart(line) {
		ev.Type = event.TrainingStart
		return ev
	}

	if !strings.Contains(line, combatTag) {
		c.unrecognized.Add(1)
		return ev
	}

	if match := castColonPattern.FindStringSubmatch(line); match != nil {
		ev.Type = event.SpellCast
		ev.Caster = strings.TrimSpace(match[1])
		ev.Spell = strings.TrimSpace(match[2])
		return ev
	}
	if match := castBarePattern.FindStringSubmatch(line); match != nil {
		ev.Type = event.SpellCast
		ev.Caster = strings.TrimSpace(match[1])
		ev.Spell = strings.TrimSpace(match[2])
		return ev
	}

	if strings.Contains(line, "Combat terminé") {
		ev.Type = event.CombatEnd
		return ev
	}
	if strings.Contains(line, "reportée pour le tour suivant") ||
		strings.Contains(line, "reportées pour le tour suivant") {
		ev.Type = event.TurnEnd
		return ev
	}
	if koPattern.MatchString(line) {
		ev.Type = event.FighterKO
		return ev
	}

	if impetuousProcPattern.MatchString(line) {
		ev.Type = event.ProcTriggered
		ev.Buff = c.arch.CanonicalBuff("Impétueux")
		return ev
	}

	// Cost hints amend the preceding variable-cost cast.
	if strings.Contains(line, "Invoque un(e) Étendard de Bravoure") {
		ev.Type = event.CostHint
		ev.Hint = event.HintSummon
		return ev
	}
	if strings.Contains(line, "est détruit") && strings.Contains(line, "Étendard de Bravoure") {
		ev.Type = event.CostHint
		ev.Hint = event.HintDestroyed
		return ev
	}
	if match := approachPattern.FindStringSubmatch(line); match != nil {
		cells, err := strconv.Atoi(match[1])
		if err == nil {
			ev.Type = event.CostHint
			ev.Hint = event.HintApproach
			ev.Cells = cells
			return ev
		}
	}
	if strings.Contains(line, "se téléporte") {
		ev.Type = event.CostHint
		ev.Hint = event.HintTeleport
		return ev
	}

	if match := buffRemovedPattern.FindStringSubmatch(line); match != nil {
		ev.Type = event.BuffRemoved
		ev.Caster = strings.TrimSpace(match[1])
		ev.Buff = c.canonical(strings.TrimSpace(match[2]), strings.TrimSpace(match[3]))
		ev.Tag = strings.TrimSpace(match[3])
		return ev
	}

	if match := consumePattern.FindStringSubmatch(line); match != nil {
		ev.Type = event.BuffConsumed
		ev.Buff = c.canonical(strings.TrimSpace(match[1]), "")
		return ev
	}

	if match := capReachedPattern.FindStringSubmatch(line); match != nil {
		ev.Type = event.BuffCapReached
		ev.Buff = c.canonical(strings.TrimSpace(match[1]), "")
		return ev
	}

	if match := precisionShotPattern.FindStringSubmatch(line); match != nil {
		level, _ := strconv.Atoi(match[1])
		ev.Type = event.BuffGained
		ev.Buff = c.canonical("Tir précis", "")
		ev.Level = level
		return ev
	}

	if match := buffGainPattern.FindStringSubmatch(line); match != nil {
		if level, err := strconv.Atoi(match[3]); err == nil {
			ev.Type = event.BuffGained
			ev.Caster = strings.TrimSpace(match[1])
			ev.Tag = strings.TrimSpace(match[4])
			ev.Buff = c.canonical(strings.TrimSpace(match[2]), ev.Tag)
			ev.Level = level
			return ev
		}
	}

	if match := damagePattern.FindStringSubmatch(line); match != nil {
		if amount, err := strconv.Atoi(match[2]); err == nil {
			ev.Type = event.Damage
			ev.Target = strings.TrimSpace(match[1])
			ev.Amount = amount
			ev.Element = strings.TrimSpace(match[3])
			ev.Tag = strings.TrimSpace(match[4])
			return ev
		}
	}

	c.unrecognized.Add(1)
	return ev
}

// canonical maps an observed buff spelling (optionally tagged with the
// interacting talent) to its canonical kind. Some buffs appear under
// multiple spellings depending on active talents; the alias table in the
// ruleset folds them into one kind.
func (c *Classifier) canonical(name, tag string) string {
	if tag != "" {
		tagged := fmt.Sprintf("%s (%s)", name, tag)
		if resolved := c.arch.CanonicalBuff(tagged); resolved != tagged {
			return resolved
		}
	}
	return c.arch.CanonicalBuff(name)
}

func isTrainingStart(line string) bool {
	if !strings.Contains(line, "Sac à patate") {
		return false
	}
	for _, phrase := range trainingPhrases {
		if strings.Contains(line, phrase) {
			return true
		}
	}
	return false
}
