// Package wakfulog tracks combat resources from Wakfu chat logs.
//
// The package follows the game's chat log file, classifies French
// combat lines into typed events, and interprets those events into
// per-character state: PA/PM/PW pools, buff and proc gauges, combo
// chains and a timeline of resolved casts. State changes are delivered
// as a stream of notifications.
//
// # Tracking
//
// To track a character against the live chat log:
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	notes, errs, err := wakfulog.Track(ctx,
//	    wakfulog.WithCharacter("Lylith", rules.ArchetypeIop),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for {
//	    select {
//	    case note, ok := <-notes:
//	        if !ok {
//	            return
//	        }
//	        switch note.Kind {
//	        case state.ResourceChanged:
//	            fmt.Printf("%s: %d/%d %s\n", note.Character, note.Value, note.Max, note.Resource)
//	        case state.CastResolved:
//	            fmt.Printf("%s casts %s for %s\n", note.Character, note.Cast.Spell, note.Cast.Final)
//	        }
//	    case err, ok := <-errs:
//	        if !ok {
//	            return
//	        }
//	        log.Printf("error: %v", err)
//	    }
//	}
//
// # Events
//
// For the raw event stream without state interpretation, use [Watch],
// or [ParseFile] and [ParseLine] for offline classification.
//
// # Detection rules
//
// Spell costs, buff policies, combo chains and resource maxima are
// configuration, not code. The built-in rules cover the Iop and Crâ
// archetypes; [WithRulesFile] loads replacements from YAML, and
// [Tracker.ReloadRules] swaps rules at runtime without losing tracked
// state. See the rules subpackage.
//
// # Platform support
//
// Chat log locations are auto-detected from the Ankama launcher's data
// directories on Windows and Linux; WAKFULOG_LOGDIR overrides them.
//
// # Disclaimer
//
// This is an unofficial tool and is not affiliated with Ankama Games.
package wakfulog
