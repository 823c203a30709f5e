package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Alexsovich5/DAPP-sub000/internal/config"
	"github.com/Alexsovich5/DAPP-sub000/internal/corpus"
	"github.com/Alexsovich5/DAPP-sub000/internal/dimension"
	"github.com/Alexsovich5/DAPP-sub000/internal/engine"
	"github.com/Alexsovich5/DAPP-sub000/internal/profile"
)

func readProfileFile(path string) (*profile.UserProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var p profile.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &p, nil
}

func readProfilesFile(path string) ([]*profile.UserProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var ps []*profile.UserProfile
	if err := json.Unmarshal(data, &ps); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return ps, nil
}

// localEngine builds an engine from config without any server. The corpus
// starts untrained; scoring falls back to keyword overlap.
func localEngine() (*engine.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	weights, err := engine.NewWeights(weightsOrNil(cfg))
	if err != nil {
		return nil, err
	}
	return engine.New(corpus.NewManager(), weights, engine.NewEmbeddingCache(nil)), nil
}

func weightsOrNil(cfg config.Config) map[string]float64 {
	if len(cfg.Engine.Weights) == 0 {
		return nil
	}
	return cfg.Engine.Weights
}

func printResult(r engine.Result) {
	fmt.Printf("\n%s %.1f  (confidence %.1f)\n",
		colorize(colorBold, "Overall:"), r.Overall, r.Confidence)
	for _, name := range dimension.Names() {
		if score, ok := r.Breakdown[name]; ok {
			fmt.Printf("  %-16s %.1f\n", name, score)
		}
	}
	if r.Semantic.TextSimilarity > 0 {
		fmt.Printf("  %-16s %.1f\n", "text similarity", r.Semantic.TextSimilarity)
	}
	if len(r.Insights.Strengths) > 0 {
		fmt.Printf("\n%s\n", colorize(colorBold, "Strengths"))
		for _, s := range r.Insights.Strengths {
			fmt.Printf("  - %s\n", s)
		}
	}
	if len(r.Insights.GrowthAreas) > 0 {
		fmt.Printf("\n%s\n", colorize(colorBold, "Growth areas"))
		for _, g := range r.Insights.GrowthAreas {
			fmt.Printf("  - %s\n", g)
		}
	}
	if len(r.Insights.ConversationStarters) > 0 {
		fmt.Printf("\n%s\n", colorize(colorBold, "Conversation starters"))
		for _, c := range r.Insights.ConversationStarters {
			fmt.Printf("  - %s\n", c)
		}
	}
	fmt.Printf("\n  %s %s\n", colorize(colorBold, "Result ID:"), r.ID)
}

// --- score ---

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score the compatibility of one profile pair",
	Long: `Score the compatibility of one profile pair.

Examples:
  compat score --user-a alice.json --user-b bob.json
  compat score --user-a alice.json --user-b bob.json --local
  compat score --user-a alice.json --user-b bob.json --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pathA, _ := cmd.Flags().GetString("user-a")
		pathB, _ := cmd.Flags().GetString("user-b")
		local, _ := cmd.Flags().GetBool("local")
		asJSON, _ := cmd.Flags().GetBool("json")

		if pathA == "" || pathB == "" {
			return fmt.Errorf("both --user-a and --user-b are required")
		}

		a, err := readProfileFile(pathA)
		if err != nil {
			return err
		}
		b, err := readProfileFile(pathB)
		if err != nil {
			return err
		}

		var result engine.Result
		if local {
			eng, err := localEngine()
			if err != nil {
				return err
			}
			result = eng.Score(cmd.Context(), a, b)
		} else {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			resp, err := client.post(cmd.Context(), "/score", map[string]any{
				"user_a": a,
				"user_b": b,
			})
			if err != nil {
				return err
			}
			if err := decodeJSON(resp, &result); err != nil {
				return err
			}
		}

		if result.Degraded() {
			return fmt.Errorf("scoring degraded: %s", result.Err)
		}
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		printResult(result)
		return nil
	},
}

func init() {
	scoreCmd.Flags().String("user-a", "", "path to the first profile JSON file")
	scoreCmd.Flags().String("user-b", "", "path to the second profile JSON file")
	scoreCmd.Flags().Bool("local", false, "score in-process instead of calling the server")
	scoreCmd.Flags().Bool("json", false, "print the full result as JSON")
}

// --- match ---

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank candidate profiles against a target",
	Long: `Rank candidate profiles against a target.

Examples:
  compat match --target alice.json --candidates pool.json
  compat match --target alice.json --candidates pool.json --limit 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		targetPath, _ := cmd.Flags().GetString("target")
		candidatesPath, _ := cmd.Flags().GetString("candidates")
		limit, _ := cmd.Flags().GetInt("limit")

		if targetPath == "" || candidatesPath == "" {
			return fmt.Errorf("both --target and --candidates are required")
		}

		target, err := readProfileFile(targetPath)
		if err != nil {
			return err
		}
		candidates, err := readProfilesFile(candidatesPath)
		if err != nil {
			return err
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.post(cmd.Context(), "/match", map[string]any{
			"target":     target,
			"candidates": candidates,
		})
		if err != nil {
			return err
		}

		var batch engine.BatchResult
		if err := decodeJSON(resp, &batch); err != nil {
			return err
		}

		if batch.Failed > 0 {
			printWarning("%d candidate(s) could not be scored", batch.Failed)
		}
		if len(batch.Results) == 0 {
			fmt.Println("No matches.")
			return nil
		}

		// Server preserves candidate order; rank by overall for display.
		results := batch.Results
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Overall > results[j].Overall
		})
		if limit > 0 && len(results) > limit {
			results = results[:limit]
		}

		for i, r := range results {
			fmt.Printf("%2d. %s  %.1f (confidence %.1f)\n",
				i+1, colorize(colorCyan, r.UserB), r.Overall, r.Confidence)
		}
		return nil
	},
}

func init() {
	matchCmd.Flags().String("target", "", "path to the target profile JSON file")
	matchCmd.Flags().String("candidates", "", "path to a JSON array of candidate profiles")
	matchCmd.Flags().Int("limit", 10, "maximum number of matches to show")
}

// --- train ---

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the corpus model over a set of profiles",
	Long: `Train the corpus model over a set of profiles.

Example:
  compat train --profiles corpus.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		profilesPath, _ := cmd.Flags().GetString("profiles")
		if profilesPath == "" {
			return fmt.Errorf("--profiles is required")
		}

		profiles, err := readProfilesFile(profilesPath)
		if err != nil {
			return err
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.post(cmd.Context(), "/corpus/train", map[string]any{
			"profiles": profiles,
		})
		if err != nil {
			return err
		}

		var result struct {
			Trained      bool `json:"trained"`
			ProfileCount int  `json:"profile_count"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Trained corpus over %d profiles", result.ProfileCount)
		return nil
	},
}

func init() {
	trainCmd.Flags().String("profiles", "", "path to a JSON array of profiles")
}

// --- results ---

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Browse stored match results",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent results for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		limit, _ := cmd.Flags().GetInt("limit")
		if user == "" {
			return fmt.Errorf("--user is required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), fmt.Sprintf("/results?user=%s&limit=%d", user, limit))
		if err != nil {
			return err
		}

		var results []engine.Result
		if err := decodeJSON(resp, &results); err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No results found.")
			return nil
		}

		for _, r := range results {
			fmt.Printf("%s  %s × %s  %.1f\n",
				colorize(colorCyan, r.ID[:8]), r.UserA, r.UserB, r.Overall)
		}
		return nil
	},
}

var resultsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one stored result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), "/results/"+args[0])
		if err != nil {
			return err
		}

		var result any
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	resultsListCmd.Flags().String("user", "", "user id to list results for")
	resultsListCmd.Flags().Int("limit", 20, "maximum number of results to list")
	resultsCmd.AddCommand(resultsListCmd)
	resultsCmd.AddCommand(resultsShowCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configSetTokenCmd = &cobra.Command{
	Use:   "set-token <token>",
	Short: "Store the API token in the platform secret store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetToken(args[0]); err != nil {
			return err
		}
		printSuccess("API token stored")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetTokenCmd)
}
