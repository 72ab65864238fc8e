package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/event"
	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/state"
)

// ValidFormats lists all valid output formats.
var ValidFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

// OutputEvent writes a classified event in the given format.
func OutputEvent(format string, ev event.Event, out io.Writer) error {
	switch format {
	case "jsonl":
		return outputJSON(ev, out)
	case "pretty":
		return outputPrettyEvent(ev, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputNotification writes a state-change notification in the given
// format.
func OutputNotification(format string, note state.Notification, out io.Writer) error {
	switch format {
	case "jsonl":
		return outputJSON(note, out)
	case "pretty":
		return outputPrettyNotification(note, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func outputJSON(v any, out io.Writer) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func outputPrettyEvent(ev event.Event, out io.Writer) error {
	ts := ev.Timestamp.Format("15:04:05")

	var err error
	switch ev.Type {
	case event.SpellCast:
		_, err = fmt.Fprintf(out, "[%s] * %s casts %s\n", ts, ev.Caster, ev.Spell)
	case event.BuffGained:
		_, err = fmt.Fprintf(out, "[%s] + %s %s (+%d)\n", ts, ev.Caster, ev.Buff, ev.Level)
	case event.BuffRemoved:
		_, err = fmt.Fprintf(out, "[%s] - %s loses %s\n", ts, ev.Caster, ev.Buff)
	case event.ProcTriggered:
		_, err = fmt.Fprintf(out, "[%s] ! %s procs\n", ts, ev.Buff)
	case event.Damage:
		_, err = fmt.Fprintf(out, "[%s] ! %s takes %d (%s)\n", ts, ev.Target, ev.Amount, ev.Element)
	case event.TurnEnd:
		_, err = fmt.Fprintf(out, "[%s] ~ turn passed\n", ts)
	case event.CombatEnd:
		_, err = fmt.Fprintf(out, "[%s] ~ combat ended\n", ts)
	default:
		_, err = fmt.Fprintf(out, "[%s] ? %s\n", ts, ev.Type)
	}
	return err
}

func outputPrettyNotification(note state.Notification, out io.Writer) error {
	ts := note.Timestamp.Format("15:04:05")

	var err error
	switch note.Kind {
	case state.ResourceChanged:
		suffix := ""
		if note.Clamped {
			suffix = " (clamped)"
		}
		_, err = fmt.Fprintf(out, "[%s] %s: %d/%d %s%s\n",
			ts, note.Character, note.Value, note.Max, note.Resource, suffix)
	case state.BuffChanged:
		_, err = fmt.Fprintf(out, "[%s] %s: %s x%d (%s)\n",
			ts, note.Character, note.Buff, note.Stacks, note.Status)
	case state.CastResolved:
		line := fmt.Sprintf("[%s] %s casts %s for %s",
			ts, note.Character, note.Cast.Spell, note.Cast.Final)
		if note.Cast.Final != note.Cast.Base {
			line += fmt.Sprintf(" (base %s", note.Cast.Base)
			if len(note.Cast.Contributing) > 0 {
				line += ", " + strings.Join(note.Cast.Contributing, ", ")
			}
			line += ")"
		}
		_, err = fmt.Fprintln(out, line)
	case state.ComboAdvanced:
		_, err = fmt.Fprintf(out, "[%s] %s: combo %s %d/%d\n",
			ts, note.Character, note.Chain, note.Step, note.Steps)
	case state.ComboCompleted:
		_, err = fmt.Fprintf(out, "[%s] %s: combo %s completed!\n",
			ts, note.Character, note.Chain)
	case state.ComboReset:
		_, err = fmt.Fprintf(out, "[%s] %s: combo %s reset\n",
			ts, note.Character, note.Chain)
	case state.TurnEnded:
		_, err = fmt.Fprintf(out, "[%s] %s: ~ turn ended\n", ts, note.Character)
	case state.CombatEnded:
		_, err = fmt.Fprintf(out, "[%s] %s: ~ combat ended\n", ts, note.Character)
	default:
		_, err = fmt.Fprintf(out, "[%s] ? %s\n", ts, note.Kind)
	}
	return err
}
