package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wakfulog/wakfulog-go/pkg/wakfulog/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate detection rules",
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Validate a detection rules YAML file",
	Long: `Load and compile a detection rules file, reporting problems.

Structural errors (bad costs, unknown buff references) are fatal. Combo
chains with invalid steps are only disabled; they are listed so the
file can be fixed, but the rest of the ruleset stays usable.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, report, err := rules.Load(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ok: %d archetype(s)\n", len(rs.Archetypes))
		for _, d := range report.Disabled {
			fmt.Fprintf(out, "disabled combo %q (%s): %s\n", d.Chain, d.Archetype, d.Reason)
		}
		return nil
	},
}

var rulesDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the built-in detection rules as YAML",
	Long: `Print the built-in Iop and Crâ detection rules as YAML. Use this as
a starting point for a custom rules file:

  wakfulog rules dump > rules.yaml
  wakfulog watch --rules rules.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(rules.DefaultRuleset())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rulesCmd.AddCommand(rulesValidateCmd)
	rulesCmd.AddCommand(rulesDumpCmd)
	rootCmd.AddCommand(rulesCmd)
}
