package classify

import "regexp"

// combatTag prefixes every combat log line the classifier cares about.
const combatTag = "[Information (combat)]"

// Compiled patterns for event detection. Ordering in Classify is most
// specific first so the patterns stay mutually exclusive in practice.
var (
	// Matches: "[Information (combat)] Belluya: lance le sort Bond"
	// Captures: (1) caster, (2) spell name (trailing parenthetical trimmed)
	castColonPattern = regexp.MustCompile(
		`\[Information \(combat\)\]\s+([^:]+):\s+lance le sort\s+([^(\n]+)`,
	)

	// Matches the colon-less variant: "[Information (combat)] Belluya lance le sort Bond"
	castBarePattern = regexp.MustCompile(
		`\[Information \(combat\)\]\s+(\S[^:]*?)\s+lance le sort\s+([^(\n]+)`,
	)

	// Matches: "Impétueux (+2 PA) (Impétueux)"
	impetuousProcPattern = regexp.MustCompile(
		`Impétueux \(\+[^)]*\)\s*\(Impétueux\)`,
	)

	// Matches: "Se rapproche de 2 cases" / "Se rapproche de 1 case"
	// Captures: (1) cell count
	approachPattern = regexp.MustCompile(
		`Se rapproche de (\d+) cases?`,
	)

	// Matches: "Belluya: n'est plus sous l'emprise de 'Courroux' (Compulsion)"
	// Captures: (1) fighter (optional), (2) buff name, (3) tag (optional)
	buffRemovedPattern = regexp.MustCompile(
		`(?:([^:\]]+):\s+)?n'est plus sous l'emprise de '([^']+)'(?:\s*\(([^)]+)\))?`,
	)

	// Matches: "Belluya: Préparation (+20 Niv.)" or "Courroux (+1 Niv.) (Compulsion)"
	// Captures: (1) fighter (optional), (2) buff name, (3) level, (4) tag (optional)
	buffGainPattern = regexp.MustCompile(
		`\[Information \(combat\)\]\s+(?:([^:]+):\s+)?([\p{L}'’ -]+?)\s+\(\+(\d+)\s+Niv\.\)(?:\s+\(([^)]+)\))?`,
	)

	// Matches: "Tir précis (Niv. 1)"
	// Captures: (1) level
	precisionShotPattern = regexp.MustCompile(
		`Tir précis \(Niv\.\s*(\d+)\)`,
	)

	// Matches: "Consomme Pointe affûtée"
	// Captures: (1) buff name
	consumePattern = regexp.MustCompile(
		`Consomme ([\p{L}'’ ]+)`,
	)

	// Matches: "Valeur maximale de Précision atteinte !"
	// Captures: (1) buff name
	capReachedPattern = regexp.MustCompile(
		`Valeur maximale de ([\p{L}'’ ]+?) atteinte`,
	)

	// Matches: "Sac à patates: -64 PV (Feu)" or "... -133 PV (Feu) (Courroux)"
	// Captures: (1) target, (2) amount, (3) element (optional), (4) tag (optional)
	damagePattern = regexp.MustCompile(
		`\[Information \(combat\)\]\s+([^:]+):\s*-(\d+)\s*PV(?:\s*\(([^)]+)\))?(?:\s*\(([^)]+)\))?`,
	)

	// Matches: "... est KO !" / "... est hors-combat"
	koPattern = regexp.MustCompile(
		`est KO !|est hors-combat`,
	)
)

// trainingDialogue marks the start of a training-dummy fight: the dummy
// line plus one of its scripted phrases.
var trainingPhrases = []string{
	"Quand tu auras fini de me frapper",
	"abandonner",
	"Abandonne le combat",
}
