package rules

import "time"

// DefaultRuleset returns the built-in, already-compiled detection rules
// for the Iop and Crâ archetypes.
func DefaultRuleset() *Ruleset {
	rs := &Ruleset{
		Version:    SupportedVersion,
		Archetypes: []Archetype{defaultIop(), defaultCra()},
	}
	// Built-in tables are kept valid; a compile failure here is a
	// programming error.
	if _, err := rs.Compile(); err != nil {
		panic("rules: default ruleset failed to compile: " + err.Error())
	}
	return rs
}

func defaultIop() Archetype {
	return Archetype{
		Name: ArchetypeIop,
		Resources: map[Kind]int{
			KindPA: 12,
			KindPM: 6,
			KindPW: 6,
		},
		Spells: []Spell{
			{Name: "Épée céleste", Cost: "2 PA"},
			{Name: "Fulgur", Cost: "3 PA", GrantsBuff: "Égaré"},
			{Name: "Super Iop Punch", Cost: "4 PA", RemovesBuff: "Courroux"},
			{Name: "Jugement", Cost: "1 PA"},
			{Name: "Colère de Iop", Cost: "6 PA", GrantsBuff: "Égaré"},
			{Name: "Ébranler", Cost: "2 PA"},
			{Name: "Roknocerok", Cost: "4 PA", RemovesBuff: "Courroux"},
			{Name: "Fendoir", Cost: "3 PA"},
			{Name: "Ravage", Cost: "5 PA"},
			{Name: "Jabs", Cost: "3 PA"},
			{Name: "Rafale", Cost: "1 PA"},
			{Name: "Torgnole", Cost: "2 PA"},
			{Name: "Tannée", Cost: "4 PA", RemovesBuff: "Courroux"},
			{Name: "Épée de Iop", Cost: "3 PA"},
			{
				Name:     "Bond",
				Cost:     "4 PA",
				Variable: true,
			},
			{Name: "Focus", Cost: "2 PA"},
			{Name: "Éventrail", Cost: "1 PM"},
			{Name: "Uppercut", Cost: "1 PW"},
			{Name: "Amplification", Cost: "2 PM"},
			{Name: "Duel", Cost: "1 PA"},
			{
				Name:     "Étendard de bravoure",
				Cost:     "3 PA",
				Variable: true,
				Variants: map[string]string{
					"summon":    "3 PA",
					"teleport":  "2 PA",
					"destroyed": "2 PA",
				},
			},
			{Name: "Vertu", Cost: "2 PA"},
			{
				Name:         "Charge",
				Cost:         "1 PA",
				Variable:     true,
				ApproachStep: "1 PA",
			},
		},
		Buffs: []Buff{
			{
				Name:        "Concentration",
				Ceiling:     100,
				Wrap:        100,
				WrapRemoves: "Égaré",
			},
			{
				Name:                  "Courroux",
				Ceiling:               4,
				RemovedOnTaggedDamage: true,
			},
			{
				Name:         "Puissance",
				Ceiling:      50,
				RemovalDelta: 10,
				CombatStart:  30,
			},
			{
				Name:                     "Préparation",
				RemovedOnDamageAfterCast: true,
				Aliases: []string{
					"Préparation (Concentration)",
					"Préparation (Compulsion)",
				},
			},
			{
				Name:             "Égaré",
				Ceiling:          1,
				Mode:             ModeAdditive,
				RemovedOnTurnEnd: true,
			},
			{
				Name:   "Impétueux",
				Expiry: ExpirySingleUse,
				Window: Duration(10 * time.Second),
			},
		},
		Overrides: []Override{
			{Proc: "Impétueux", Spell: "Bond", Cost: "0 PA"},
		},
		Combos: []Combo{
			{Name: "Vol de vie", Steps: []string{"1PM", "3PA", "3PA"}, Window: Duration(30 * time.Second), BreakOnMismatch: true},
			{Name: "Poussée", Steps: []string{"1PA", "1PA", "2PA"}, Window: Duration(30 * time.Second), BreakOnMismatch: true},
			{Name: "Préparation", Steps: []string{"1PM", "1PM", "1PW"}, Window: Duration(30 * time.Second), BreakOnMismatch: true},
			{Name: "Dommages supplémentaires", Steps: []string{"2PA", "1PA", "1PM"}, Window: Duration(30 * time.Second), BreakOnMismatch: true},
			{Name: "Combo PA", Steps: []string{"1PW", "3PA", "1PW", "1PA"}, Window: Duration(30 * time.Second), BreakOnMismatch: true},
		},
	}
}

func defaultCra() Archetype {
	drain := func(amount int) *Drain {
		return &Drain{Buff: "Précision", Amount: amount, While: "Tir précis"}
	}
	return Archetype{
		Name: ArchetypeCra,
		Resources: map[Kind]int{
			KindPA: 12,
			KindPM: 6,
			KindPW: 6,
		},
		Spells: []Spell{
			{Name: "Flèche criblante", Cost: "4 PA", Drain: drain(60)},
			{Name: "Flèche fulminante", Cost: "3 PA", Drain: drain(45)},
			{Name: "Flèche d'immolation", Cost: "2 PA", Drain: drain(30)},
			{Name: "Flèche enflammée", Cost: "4 PA", Drain: drain(60)},
			{Name: "Flèche Ardente", Cost: "2 PA", Drain: drain(30)},
			{Name: "Flèche explosive", Cost: "6 PA", Drain: drain(90)},
			{Name: "Flèche cinglante", Cost: "3 PA", Drain: drain(45)},
			{Name: "Flèche perçante", Cost: "5 PA", Drain: drain(75)},
			{Name: "Flèche destructrice", Cost: "6 PA", Drain: drain(105)},
			{Name: "Flèche chercheuse", Cost: "2 PA", Drain: drain(30)},
			{Name: "Flèche de recul", Cost: "4 PA", Drain: drain(60)},
			{Name: "Flèche tempête", Cost: "3 PA", Drain: drain(45)},
			{Name: "Flèche harcelante", Cost: "3 PA", Drain: drain(45)},
			{Name: "Flèche statique", Cost: "6 PA", Drain: drain(90)},
			{Name: "Balise de destruction", Cost: "2 PA", ConsumesStack: "Balise affûtée", Drain: drain(30)},
			{Name: "Balise d'alignement", Cost: "2 PA", ConsumesStack: "Balise affûtée", Drain: drain(30)},
			{Name: "Balise de contact", Cost: "2 PA", ConsumesStack: "Balise affûtée", Drain: drain(30)},
			{Name: "Tir précis", Cost: "1 PA"},
			{Name: "Débalisage", Cost: "1 PA", Drain: drain(30)},
			{Name: "Eclaireur", Cost: "1 PM", Drain: drain(30)},
		},
		Buffs: []Buff{
			{
				Name:    "Affûtage",
				Ceiling: 100,
				Wrap:    100,
				WrapGrants: []WrapGrant{
					{Buff: "Pointe affûtée", Max: 3},
					{Buff: "Balise affûtée", Max: 3},
				},
			},
			{
				Name:          "Précision",
				Ceiling:       300,
				Mode:          ModeAdditive,
				TalentName:    "Esprit affûté",
				TalentCeiling: 200,
				FullGain:      300,
			},
			{Name: "Pointe affûtée", Ceiling: 3, Mode: ModeAdditive},
			{Name: "Balise affûtée", Ceiling: 3, Mode: ModeAdditive},
			{Name: "Tir précis", Ceiling: 1, Mode: ModeAdditive},
		},
	}
}
