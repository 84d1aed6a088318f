// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-assistant/internal/intent"
	"github.com/pdiddy/research-assistant/pkg/types"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [text...]",
	Short: "Show the category and topic detected for a request",
	Long: `Classify runs only the intent rules and topic extraction, without
generating a document. Useful for checking how a request will be routed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		utterance := strings.Join(args, " ")
		legacy, _ := cmd.Flags().GetBool("legacy")

		var opts []intent.Option
		if legacy {
			opts = append(opts, intent.WithSubstringStripping())
		}
		result := struct {
			Category types.Category `json:"category"`
			Topic    string         `json:"topic"`
		}{
			Category: intent.Classify(utterance),
			Topic:    intent.NewExtractor(opts...).Extract(utterance),
		}

		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "category: %s\ntopic:    %s\n", result.Category, result.Topic)
		return nil
	},
}

func init() {
	classifyCmd.Flags().Bool("json", false, "output as JSON")
	classifyCmd.Flags().Bool("legacy", false, "strip request words as raw substrings")

	rootCmd.AddCommand(classifyCmd)
}
