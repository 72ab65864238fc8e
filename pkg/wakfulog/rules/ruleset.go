// Package rules holds the detection configuration: per-archetype spell
// tables, buff policies, proc overrides and combo chain definitions.
// Rulesets can be loaded from YAML files or taken from the built-in
// defaults, and must be compiled before use.
package rules

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// SupportedVersion is the currently supported ruleset file format version.
const SupportedVersion = 1

// Archetype names used by the built-in rulesets.
const (
	ArchetypeIop = "iop"
	ArchetypeCra = "cra"
)

// Duration wraps time.Duration with YAML support for values like "30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Magnitude modes for buff gauges.
const (
	// ModeAbsolute means the value in the log line is the running total
	// (the game reports "Courroux (+3 Niv.)" where 3 is the new total).
	ModeAbsolute = "absolute"
	// ModeAdditive means each gain is a delta added to the tracked value.
	ModeAdditive = "additive"
)

// Expiry policies for buffs and procs.
const (
	ExpiryPersistent = "persistent"
	ExpiryTurns      = "turns"
	ExpirySingleUse  = "single_use"
)

// Spell describes one castable spell of an archetype.
type Spell struct {
	Name string `yaml:"name"`
	// Cost is the declared base cost, e.g. "3 PA".
	Cost string `yaml:"cost"`
	// Variable marks spells whose real cost is pinned by a follow-up log
	// line (Étendard de bravoure, Charge, Bond).
	Variable bool `yaml:"variable,omitempty"`
	// Variants maps cost-hint kinds (summon, teleport, destroyed) to the
	// cost charged when that hint follows the cast.
	Variants map[string]string `yaml:"variants,omitempty"`
	// ApproachStep is the per-cell surcharge for movement spells whose
	// cost grows with distance, e.g. "1 PA" for Charge.
	ApproachStep string `yaml:"approach_step,omitempty"`
	// RemovesBuff drops all stacks of the named buff when cast
	// (Super Iop Punch and friends clear Courroux).
	RemovesBuff string `yaml:"removes_buff,omitempty"`
	// GrantsBuff applies the named buff when cast (Fulgur grants Égaré).
	GrantsBuff string `yaml:"grants_buff,omitempty"`
	// ConsumesStack removes one stack of the named buff when cast
	// (Balise spells consume Balise affûtée).
	ConsumesStack string `yaml:"consumes_stack,omitempty"`
	// Drain describes a gauge drained by casting this spell while a
	// gating buff is active (Tir précis drains Précision).
	Drain *Drain `yaml:"drain,omitempty"`

	baseCost     Cost
	approachStep Cost
	variants     map[string]Cost
}

// Drain is a conditional gauge drain attached to a spell.
type Drain struct {
	Buff   string `yaml:"buff"`
	Amount int    `yaml:"amount"`
	// While gates the drain on another buff being active; empty means
	// the drain always applies.
	While string `yaml:"while,omitempty"`
}

// BaseCost returns the compiled base cost. Valid after Compile.
func (s *Spell) BaseCost() Cost { return s.baseCost }

// ApproachCost returns the compiled per-cell surcharge, if any.
func (s *Spell) ApproachCost() (Cost, bool) {
	return s.approachStep, !s.approachStep.IsZero()
}

// VariantCost returns the compiled cost for a hint kind, if declared.
func (s *Spell) VariantCost(hint string) (Cost, bool) {
	c, ok := s.variants[hint]
	return c, ok
}

// WrapGrant is a stack grant fired when a wrapping gauge overflows.
type WrapGrant struct {
	Buff string `yaml:"buff"`
	Max  int    `yaml:"max,omitempty"`
}

// Buff describes the tracking policy for one buff or proc kind.
type Buff struct {
	Name string `yaml:"name"`
	// Ceiling is the hard upper bound for the tracked magnitude.
	// Zero means unbounded.
	Ceiling int `yaml:"ceiling,omitempty"`
	// Mode is ModeAbsolute (default) or ModeAdditive.
	Mode string `yaml:"mode,omitempty"`
	// Expiry is ExpiryPersistent (default), ExpiryTurns or ExpirySingleUse.
	Expiry string `yaml:"expiry,omitempty"`
	// Turns is the duration for ExpiryTurns buffs.
	Turns int `yaml:"turns,omitempty"`
	// Window is the real-time validity window for ExpirySingleUse procs;
	// an unconsumed proc is silently dropped after it elapses.
	Window Duration `yaml:"window,omitempty"`
	// Wrap makes the gauge wrap modulo this value on overflow
	// (Concentration and Affûtage wrap at 100).
	Wrap int `yaml:"wrap,omitempty"`
	// WrapGrants are stacks granted per wrap overflow.
	WrapGrants []WrapGrant `yaml:"wrap_grants,omitempty"`
	// WrapRemoves names a buff dropped when the gauge overflows
	// (Concentration overflow removes Égaré).
	WrapRemoves string `yaml:"wrap_removes,omitempty"`
	// RemovedOnTurnEnd drops the buff when the owner's turn passes.
	RemovedOnTurnEnd bool `yaml:"removed_on_turn_end,omitempty"`
	// RemovedOnDamageAfterCast defers removal until a damage line
	// confirms the owner's next cast landed (Préparation).
	RemovedOnDamageAfterCast bool `yaml:"removed_on_damage_after_cast,omitempty"`
	// RemovalDelta, when non-zero, turns a removal line into a partial
	// loss of that many points instead of a full drop (Puissance).
	RemovalDelta int `yaml:"removal_delta,omitempty"`
	// RemovedOnTaggedDamage drops the buff when a damage line carries
	// this buff's name as its trailing tag (Courroux damage).
	RemovedOnTaggedDamage bool `yaml:"removed_on_tagged_damage,omitempty"`
	// CombatStart, when non-zero, applies this magnitude when the
	// tracked character opens a combat (Puissance starts at 30).
	CombatStart int `yaml:"combat_start,omitempty"`
	// Aliases lists alternate textual spellings that classify to this
	// kind (Préparation under Concentration/Compulsion interactions).
	Aliases []string `yaml:"aliases,omitempty"`
	// TalentName and TalentCeiling describe a talent-reduced ceiling
	// detected at runtime (Esprit affûté caps Précision at 200).
	TalentName    string `yaml:"talent_name,omitempty"`
	TalentCeiling int    `yaml:"talent_ceiling,omitempty"`
	// FullGain is the gain magnitude that legitimately fills the gauge;
	// a cap-reached line following it does not indicate the talent.
	FullGain int `yaml:"full_gain,omitempty"`
}

// Override is a single-use proc that replaces a spell's cost outright.
type Override struct {
	Proc  string `yaml:"proc"`
	Spell string `yaml:"spell"`
	Cost  string `yaml:"cost"`

	cost Cost
}

// OverrideCost returns the compiled override cost. Valid after Compile.
func (o *Override) OverrideCost() Cost { return o.cost }

// Discount is a cost reduction granted by an active buff.
type Discount struct {
	Buff string `yaml:"buff"`
	// Spell restricts the discount to one spell; empty applies to all.
	Spell   string `yaml:"spell,omitempty"`
	Percent int    `yaml:"percent,omitempty"`
	Flat    int    `yaml:"flat,omitempty"`
	// Consumes marks the backing buff as single-use for this discount.
	Consumes bool `yaml:"consumes,omitempty"`
}

// Combo is an ordered chain of cost steps.
type Combo struct {
	Name string `yaml:"name"`
	// Steps are compact cost tokens, e.g. ["1PM", "3PA", "3PA"].
	Steps []string `yaml:"steps"`
	// Window is the maximum time between consecutive steps; zero means
	// the chain only resets at turn boundaries.
	Window Duration `yaml:"window,omitempty"`
	// BreakOnMismatch makes any off-chain cast reset the chain; when
	// false, non-matching casts are treated as filler.
	BreakOnMismatch bool `yaml:"break_on_mismatch,omitempty"`
}

// Archetype bundles all detection rules for one character class.
type Archetype struct {
	Name      string       `yaml:"name"`
	Spells    []Spell      `yaml:"spells"`
	Buffs     []Buff       `yaml:"buffs,omitempty"`
	Overrides []Override   `yaml:"overrides,omitempty"`
	Discounts []Discount   `yaml:"discounts,omitempty"`
	Combos    []Combo      `yaml:"combos,omitempty"`
	Resources map[Kind]int `yaml:"resources,omitempty"`

	spellIndex map[string]*Spell
	buffIndex  map[string]*Buff
	aliasIndex map[string]string
	active     []Combo
}

// Spell looks up a spell by name. Valid after Compile.
func (a *Archetype) Spell(name string) (*Spell, bool) {
	s, ok := a.spellIndex[name]
	return s, ok
}

// KnowsSpell reports whether the spell belongs to this archetype.
func (a *Archetype) KnowsSpell(name string) bool {
	_, ok := a.spellIndex[name]
	return ok
}

// Buff looks up a buff policy by canonical name. Valid after Compile.
func (a *Archetype) Buff(name string) (*Buff, bool) {
	b, ok := a.buffIndex[name]
	return b, ok
}

// CanonicalBuff maps an observed buff spelling to its canonical kind.
// Unknown spellings are returned unchanged.
func (a *Archetype) CanonicalBuff(observed string) string {
	if canonical, ok := a.aliasIndex[observed]; ok {
		return canonical
	}
	return observed
}

// CostOverride returns the override applying to a (proc, spell) pair.
func (a *Archetype) CostOverride(proc, spell string) (*Override, bool) {
	for i := range a.Overrides {
		o := &a.Overrides[i]
		if o.Proc == proc && o.Spell == spell {
			return o, true
		}
	}
	return nil, false
}

// SpellOverrides returns the overrides declared for a spell, in
// declaration order.
func (a *Archetype) SpellOverrides(spell string) []*Override {
	var out []*Override
	for i := range a.Overrides {
		if a.Overrides[i].Spell == spell {
			out = append(out, &a.Overrides[i])
		}
	}
	return out
}

// ActiveCombos returns the combo chains that survived compilation.
func (a *Archetype) ActiveCombos() []Combo { return a.active }

// ResourceMax returns the configured maximum for a resource kind.
func (a *Archetype) ResourceMax(kind Kind) int {
	if max, ok := a.Resources[kind]; ok {
		return max
	}
	return defaultResourceMax[kind]
}

var defaultResourceMax = map[Kind]int{
	KindPA: 12,
	KindPM: 6,
	KindPW: 6,
}

// Ruleset is the root detection configuration.
type Ruleset struct {
	Version    int         `yaml:"version"`
	Archetypes []Archetype `yaml:"archetypes"`

	compiled bool
}

// Archetype looks up an archetype by name. Valid after Compile.
func (rs *Ruleset) Archetype(name string) (*Archetype, bool) {
	for i := range rs.Archetypes {
		if rs.Archetypes[i].Name == name {
			return &rs.Archetypes[i], true
		}
	}
	return nil, false
}

// Compiled reports whether Compile has run successfully.
func (rs *Ruleset) Compiled() bool { return rs.compiled }

// DisabledChain records a combo chain rejected during compilation.
type DisabledChain struct {
	Archetype string
	Chain     string
	Reason    string
}

// Report summarizes non-fatal compilation outcomes.
type Report struct {
	Disabled []DisabledChain
}

// Compile validates the ruleset, builds lookup indexes and parses all
// cost expressions. Structural problems (missing names, duplicate
// entries, unparsable costs) are fatal. A combo chain whose steps use an
// invalid cost token is disabled and reported, leaving the remaining
// chains functional.
func (rs *Ruleset) Compile() (*Report, error) {
	if rs.Version != SupportedVersion {
		return nil, &ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (only version %d is supported)", rs.Version, SupportedVersion),
		}
	}
	if len(rs.Archetypes) == 0 {
		return nil, &ValidationError{Field: "archetypes", Message: "at least one archetype is required"}
	}

	report := &Report{}
	seenArch := make(map[string]bool, len(rs.Archetypes))

	for i := range rs.Archetypes {
		a := &rs.Archetypes[i]
		if a.Name == "" {
			return nil, &ValidationError{Field: "archetypes", Message: fmt.Sprintf("archetype[%d]: name is required", i)}
		}
		if seenArch[a.Name] {
			return nil, &ValidationError{Field: "archetypes", Message: fmt.Sprintf("duplicate archetype %q", a.Name)}
		}
		seenArch[a.Name] = true

		if err := a.compile(report); err != nil {
			return nil, err
		}
	}

	rs.compiled = true
	return report, nil
}

func (a *Archetype) compile(report *Report) error {
	if len(a.Spells) == 0 {
		return &RuleError{Archetype: a.Name, Section: "spells", Message: "at least one spell is required"}
	}

	a.spellIndex = make(map[string]*Spell, len(a.Spells))
	for i := range a.Spells {
		s := &a.Spells[i]
		if s.Name == "" {
			return &RuleError{Archetype: a.Name, Section: "spells", Message: fmt.Sprintf("spell[%d]: name is required", i)}
		}
		if _, dup := a.spellIndex[s.Name]; dup {
			return &RuleError{Archetype: a.Name, Section: "spells", Name: s.Name, Message: "duplicate spell"}
		}

		cost, err := ParseCost(s.Cost)
		if err != nil {
			return &RuleError{Archetype: a.Name, Section: "spells", Name: s.Name, Field: "cost", Message: err.Error()}
		}
		s.baseCost = cost

		if s.ApproachStep != "" {
			step, err := ParseCost(s.ApproachStep)
			if err != nil {
				return &RuleError{Archetype: a.Name, Section: "spells", Name: s.Name, Field: "approach_step", Message: err.Error()}
			}
			s.approachStep = step
		}
		if len(s.Variants) > 0 {
			s.variants = make(map[string]Cost, len(s.Variants))
			for hint, raw := range s.Variants {
				c, err := ParseCost(raw)
				if err != nil {
					return &RuleError{Archetype: a.Name, Section: "spells", Name: s.Name, Field: "variants." + hint, Message: err.Error()}
				}
				s.variants[hint] = c
			}
		}

		a.spellIndex[s.Name] = s
	}

	a.buffIndex = make(map[string]*Buff, len(a.Buffs))
	a.aliasIndex = make(map[string]string)
	for i := range a.Buffs {
		b := &a.Buffs[i]
		if b.Name == "" {
			return &RuleError{Archetype: a.Name, Section: "buffs", Message: fmt.Sprintf("buff[%d]: name is required", i)}
		}
		if _, dup := a.buffIndex[b.Name]; dup {
			return &RuleError{Archetype: a.Name, Section: "buffs", Name: b.Name, Message: "duplicate buff"}
		}
		switch b.Mode {
		case "", ModeAbsolute, ModeAdditive:
		default:
			return &RuleError{Archetype: a.Name, Section: "buffs", Name: b.Name, Field: "mode", Message: fmt.Sprintf("unknown mode %q", b.Mode)}
		}
		switch b.Expiry {
		case "", ExpiryPersistent, ExpiryTurns, ExpirySingleUse:
		default:
			return &RuleError{Archetype: a.Name, Section: "buffs", Name: b.Name, Field: "expiry", Message: fmt.Sprintf("unknown expiry %q", b.Expiry)}
		}
		if b.Expiry == ExpiryTurns && b.Turns <= 0 {
			return &RuleError{Archetype: a.Name, Section: "buffs", Name: b.Name, Field: "turns", Message: "turn-based expiry requires turns > 0"}
		}
		if b.Ceiling < 0 || b.Wrap < 0 {
			return &RuleError{Archetype: a.Name, Section: "buffs", Name: b.Name, Message: "ceiling and wrap must be non-negative"}
		}

		a.buffIndex[b.Name] = b
		a.aliasIndex[b.Name] = b.Name
		for _, alias := range b.Aliases {
			if existing, clash := a.aliasIndex[alias]; clash && existing != b.Name {
				return &RuleError{Archetype: a.Name, Section: "buffs", Name: b.Name, Field: "aliases", Message: fmt.Sprintf("alias %q already maps to %q", alias, existing)}
			}
			a.aliasIndex[alias] = b.Name
		}
	}

	for i := range a.Overrides {
		o := &a.Overrides[i]
		if o.Proc == "" || o.Spell == "" {
			return &RuleError{Archetype: a.Name, Section: "overrides", Message: fmt.Sprintf("override[%d]: proc and spell are required", i)}
		}
		if !a.KnowsSpell(o.Spell) {
			return &RuleError{Archetype: a.Name, Section: "overrides", Name: o.Proc, Field: "spell", Message: fmt.Sprintf("unknown spell %q", o.Spell)}
		}
		cost, err := ParseCost(o.Cost)
		if err != nil {
			return &RuleError{Archetype: a.Name, Section: "overrides", Name: o.Proc, Field: "cost", Message: err.Error()}
		}
		o.cost = cost
	}

	for i := range a.Discounts {
		d := &a.Discounts[i]
		if d.Buff == "" {
			return &RuleError{Archetype: a.Name, Section: "discounts", Message: fmt.Sprintf("discount[%d]: buff is required", i)}
		}
		if d.Percent < 0 || d.Percent > 100 {
			return &RuleError{Archetype: a.Name, Section: "discounts", Name: d.Buff, Field: "percent", Message: "percent must be within [0, 100]"}
		}
		if d.Flat < 0 {
			return &RuleError{Archetype: a.Name, Section: "discounts", Name: d.Buff, Field: "flat", Message: "flat must be non-negative"}
		}
	}

	// Combo chains with invalid steps are disabled, not fatal.
	a.active = a.active[:0]
	seenCombo := make(map[string]bool, len(a.Combos))
	for _, combo := range a.Combos {
		if combo.Name == "" {
			return &RuleError{Archetype: a.Name, Section: "combos", Message: "combo name is required"}
		}
		if seenCombo[combo.Name] {
			return &RuleError{Archetype: a.Name, Section: "combos", Name: combo.Name, Message: "duplicate combo"}
		}
		seenCombo[combo.Name] = true

		if reason := validateComboSteps(combo.Steps); reason != "" {
			report.Disabled = append(report.Disabled, DisabledChain{
				Archetype: a.Name,
				Chain:     combo.Name,
				Reason:    reason,
			})
			continue
		}
		a.active = append(a.active, combo)
	}

	return nil
}

func validateComboSteps(steps []string) string {
	if len(steps) == 0 {
		return "chain has no steps"
	}
	for _, step := range steps {
		if _, err := ParseCost(step); err != nil {
			return fmt.Sprintf("step %q is not a valid cost token", step)
		}
	}
	return ""
}
