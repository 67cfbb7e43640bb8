package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"round/internal/round"
)

type classification struct {
	Category string             `json:"category"`
	HomeLike bool               `json:"home_like"`
	Profile  round.ValueProfile `json:"profile"`
}

func newClassifyCommand() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "classify CATEGORY...",
		Short: "Show home-likeness and value profile for category names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]classification, 0, len(args))
			for _, category := range args {
				results = append(results, classification{
					Category: category,
					HomeLike: round.IsHomeLike(category),
					Profile:  round.InferValueProfile(category),
				})
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(results)
			}

			width := 0
			for _, result := range results {
				width = max(width, len(result.Category))
			}
			for _, result := range results {
				home := ""
				if result.HomeLike {
					home = readyStyle.Render("home")
				}
				line := fmt.Sprintf("%s  %-12s %s", result.Category+strings.Repeat(" ", width-len(result.Category)), result.Profile, home)
				fmt.Fprintln(out, strings.TrimRight(line, " "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print results as JSON")
	return cmd
}
