// Package cli implements roundctl, an offline front end to the asset
// heuristics.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the roundctl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "roundctl",
		Short: "Score assets with Round's identity, readiness and valuation rules",
		Long: "roundctl runs the same heuristics as the Round API against local\n" +
			"YAML or JSON files, without a database or an account.",
		SilenceUsage: true,
	}
	root.AddCommand(newScoreCommand())
	root.AddCommand(newClassifyCommand())
	return root
}
