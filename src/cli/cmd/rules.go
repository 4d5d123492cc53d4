package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sofmeright/coffeefreight/src/lint"
	"github.com/sofmeright/coffeefreight/src/lint/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the registered lint rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := rules.Default()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "RULE\tLEVEL\tDESCRIPTION")
		for _, name := range reg.Names() {
			r, err := reg.Get(name)
			if err != nil {
				return err
			}
			d := r.Descriptor()
			fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Name, d.Level, firstLine(d.Description))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", lint.SyntaxErrorRule, lint.LevelError, "Source the lexer cannot tokenize.")
		return tw.Flush()
	},
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
