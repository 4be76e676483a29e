package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keywatchhq/keywatch/internal/config"
)

var (
	evalConfig   string
	evalKeywords []string
)

var evalCmd = &cobra.Command{
	Use:   "eval [message text]",
	Short: "Evaluate one message against a keyword list",
	Long: `Runs the match pipeline for a single message and prints the verdict.
Keywords use the rule syntax: "quoted" for exact, [bracketed] for
all-required, anything else for smart matching.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if evalConfig != "" {
			var err error
			cfg, err = config.Load(evalConfig)
			if err != nil {
				return err
			}
		}

		pipeline, err := cfg.Pipeline()
		if err != nil {
			return err
		}

		text := strings.Join(args, " ")
		res := pipeline.Evaluate(text, evalKeywords)

		if !res.Matched {
			fmt.Println("no match")
			return nil
		}

		for _, d := range res.Details {
			fmt.Printf("matched %q (%s) — %s\n", d.Keyword, d.Type, d.Evidence)
		}
		for _, hit := range res.Intents {
			fmt.Printf("intent %q captured %q → %s\n", hit.Phrase, hit.Capture, hit.Target)
		}
		return nil
	},
}

func init() {
	evalCmd.Flags().StringVarP(&evalConfig, "config", "c", "", "matcher config file (YAML)")
	evalCmd.Flags().StringArrayVarP(&evalKeywords, "keyword", "k", nil, "keyword rule (repeatable)")
}
