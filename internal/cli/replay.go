package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/retracehq/retrace/internal/config"
	"github.com/retracehq/retrace/internal/diag"
	"github.com/retracehq/retrace/internal/pattern"
	"github.com/retracehq/retrace/internal/tracker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var replayCmd = &cobra.Command{
	Use:   "replay [logfile]",
	Short: "Reconstruct a timeline from a captured agent log",
	Long: `Replay a captured agent log through the interceptor and write the
timeline artifacts. Pass "-" (or no argument) to read from stdin.

Example:
  retrace replay agent.log --output agent_logs
  tail -f agent.log | retrace replay - --output agent_logs`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringP("output", "o", "", "output directory for artifacts (default from config)")
	replayCmd.Flags().String("title", "", "timeline title")
	replayCmd.Flags().String("prompt", "", "task prompt recorded in the timeline")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	outputDir, _ := cmd.Flags().GetString("output")
	if outputDir == "" {
		outputDir = cfg.Output.Dir
	}
	title, _ := cmd.Flags().GetString("title")
	if title == "" {
		title = cfg.Output.Title
	}

	session, err := buildSession(cfg, outputDir, title)
	if err != nil {
		return err
	}
	if prompt, _ := cmd.Flags().GetString("prompt"); prompt != "" {
		session.SetPrompt(prompt)
	}

	input, closeInput, err := openInput(args)
	if err != nil {
		return err
	}
	defer closeInput()

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines int
	for scanner.Scan() {
		session.Intercept(tracker.Line{Text: scanner.Text(), Time: time.Now()})
		lines++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read log: %w", err)
	}

	summary, err := session.FinishTracking()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}

	fmt.Printf("Replayed %d lines: %d steps, %d thoughts, %d unrecognized\n",
		lines, summary.Steps.TotalSteps, summary.Thoughts.Processed,
		summary.Diagnostics.UnknownRetained+summary.Diagnostics.UnknownDropped)
	fmt.Println("Artifacts written to", outputDir)
	return nil
}

// buildSession assembles a tracking session from loaded config.
func buildSession(cfg *config.Config, outputDir, title string) (*tracker.Session, error) {
	flush, err := cfg.FlushInterval()
	if err != nil {
		return nil, err
	}

	opts := []tracker.Option{
		tracker.WithTitle(title),
		tracker.WithOutputDir(outputDir),
		tracker.WithUnknownCap(cfg.Session.UnknownCap),
		tracker.WithFlushInterval(flush),
		tracker.WithScreenshots(!cfg.Session.DisableScreenshots),
	}
	if viper.GetBool("verbose") {
		opts = append(opts, tracker.WithDiagnostics(diag.New(os.Stderr, "")))
	}

	if cfg.Patterns.File != "" {
		rules, err := pattern.LoadRules(cfg.Patterns.File)
		if err != nil {
			return nil, fmt.Errorf("failed to load pattern rules: %w", err)
		}
		registry := pattern.NewRegistry()
		registry.Append(rules...)
		opts = append(opts, tracker.WithRegistry(registry))
	}

	return tracker.New(opts...), nil
}

// openInput resolves the replay input: a file path, or stdin for "-" or no
// argument.
func openInput(args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return os.Stdin, func() {}, nil
	}
	file, err := os.Open(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, func() { file.Close() }, nil
}
