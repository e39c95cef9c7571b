package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/retracehq/retrace/internal/config"
	"github.com/retracehq/retrace/internal/export"
	"github.com/retracehq/retrace/internal/thought"
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [dir]",
	Short: "Print the summary of an exported timeline",
	Long: `Print aggregate statistics from a previously exported session.

Example:
  retrace summary agent_logs
  retrace summary agent_logs --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().Bool("json", false, "print the raw summary document as JSON")
}

func runSummary(cmd *cobra.Command, args []string) error {
	dir := ""
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		dir = cfg.Output.Dir
	}

	doc, err := export.ReadSummary(filepath.Join(dir, export.SummaryFilename))
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	printSummary(doc)
	return nil
}

func printSummary(doc *export.SummaryDocument) {
	fmt.Printf("Steps:    %d total, %d complete (%.0f%%), %d implicit\n",
		doc.Steps.TotalSteps, doc.Steps.CompleteSteps,
		doc.Steps.CompletionRate*100, doc.Steps.ImplicitSteps)
	if doc.Steps.SuccessCount+doc.Steps.FailureCount > 0 {
		fmt.Printf("Outcomes: %d success, %d failure (%.0f%% success)\n",
			doc.Steps.SuccessCount, doc.Steps.FailureCount, doc.Steps.SuccessRatio*100)
	}
	if doc.Steps.TotalDurationSeconds > 0 {
		fmt.Printf("Duration: %.1fs total, %.1fs avg per step\n",
			doc.Steps.TotalDurationSeconds, doc.Steps.AvgDurationSeconds)
	}

	fmt.Printf("Thoughts: %d recorded (%d detected, %d duplicates)\n",
		doc.Thoughts.Processed, doc.Thoughts.Detected, doc.Thoughts.Duplicates)
	for _, c := range thought.Categories() {
		if n := doc.Thoughts.Counts[c]; n > 0 {
			fmt.Printf("  %-11s %d\n", string(c)+":", n)
		}
	}

	if doc.LLM != nil {
		fmt.Printf("LLM:      %d calls, %d tokens, $%.4f estimated\n",
			doc.LLM.TotalCalls, doc.LLM.TotalTokens, doc.LLM.EstimatedCost)
		models := make([]string, 0, len(doc.LLM.Models))
		for name := range doc.LLM.Models {
			models = append(models, name)
		}
		sort.Strings(models)
		for _, name := range models {
			ms := doc.LLM.Models[name]
			fmt.Printf("  %-24s %d req, %d resp, %d tokens\n",
				name, ms.Requests, ms.Responses, ms.Tokens)
		}
	}

	if doc.Diagnostics.UnknownRetained+doc.Diagnostics.UnknownDropped > 0 {
		fmt.Printf("Unknown:  %d retained, %d dropped\n",
			doc.Diagnostics.UnknownRetained, doc.Diagnostics.UnknownDropped)
	}
}
