package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"round/internal/round"
)

type scoreOptions struct {
	rules   string
	asOf    string
	jsonOut bool
}

type scoreResult struct {
	Source    string          `json:"source"`
	Title     string          `json:"title"`
	Insights  round.Insights  `json:"insights"`
	Valuation round.Valuation `json:"valuation"`
	Display   string          `json:"display"`
}

func newScoreCommand() *cobra.Command {
	opts := &scoreOptions{}
	cmd := &cobra.Command{
		Use:   "score FILE...",
		Short: "Score assets read from YAML or JSON files",
		Long: `Read assets from YAML or JSON files and print their identity, value
profile, Round-Ready status and rule-based estimate.

A file may hold a single asset or a list of assets. Use "-" to read stdin.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.rules, "rules", round.StandardRules.Name, "identity rules: standard or exact")
	cmd.Flags().StringVar(&opts.asOf, "as-of", "", "valuation date (YYYY-MM-DD or RFC 3339), defaults to today")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print results as JSON")
	return cmd
}

func runScore(cmd *cobra.Command, args []string, opts *scoreOptions) error {
	rules, err := round.RulesByName(opts.rules)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if opts.asOf != "" {
		parsed, ok := round.ParseDate(opts.asOf)
		if !ok {
			return fmt.Errorf("invalid --as-of %q: want YYYY-MM-DD or RFC 3339", opts.asOf)
		}
		now = parsed
	}

	var results []scoreResult
	for _, path := range args {
		assets, err := readAssets(cmd.InOrStdin(), path)
		if err != nil {
			return err
		}
		for _, asset := range assets {
			valuation := round.ComputeRuleBasedValuation(asset, now)
			results = append(results, scoreResult{
				Source:    path,
				Title:     asset.Title,
				Insights:  round.Evaluate(asset, rules),
				Valuation: valuation,
				Display:   valuation.Display(),
			})
		}
	}

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	}
	for i, result := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printScore(out, result)
	}
	return nil
}

func printScore(out io.Writer, result scoreResult) {
	title := result.Title
	if title == "" {
		title = "(untitled)"
	}
	insights := result.Insights

	fmt.Fprintln(out, titleStyle.Render(title))
	fmt.Fprintf(out, "  %s%s\n", keyStyle.Render("profile"), insights.Profile)
	fmt.Fprintf(out, "  %s%s %s\n", keyStyle.Render("identity"),
		identityStyle(insights.Identity).Render(string(insights.Identity.Level)),
		mutedStyle.Render(fmt.Sprintf("(%s, score %d)", insights.Identity.Basis, insights.Identity.Score)))
	fmt.Fprintf(out, "  %s%s %s\n", keyStyle.Render("readiness"),
		readinessStyle(insights.Readiness).Render(insights.Readiness.Label),
		mutedStyle.Render(insights.Readiness.Description))
	fmt.Fprintf(out, "  %s%s %s\n", keyStyle.Render("estimate"), result.Display,
		mutedStyle.Render(result.Valuation.Source))
}

// readAssets decodes one asset or a list of assets. JSON input is read by
// the YAML decoder as well.
func readAssets(stdin io.Reader, path string) ([]round.Asset, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s: no assets found", path)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%s: no assets found", path)
	}

	node := doc.Content[0]
	switch node.Kind {
	case yaml.SequenceNode:
		var assets []round.Asset
		if err := node.Decode(&assets); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return assets, nil
	case yaml.MappingNode:
		var asset round.Asset
		if err := node.Decode(&asset); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return []round.Asset{asset}, nil
	default:
		return nil, errors.New(path + ": expected an asset or a list of assets")
	}
}
