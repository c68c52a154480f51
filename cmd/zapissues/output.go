package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zapissues/zapissues/internal/extract"
	"github.com/zapissues/zapissues/internal/pipeline"
	"github.com/zapissues/zapissues/internal/publisher"
	"github.com/zapissues/zapissues/internal/synthesis"
)

func addModeFlags(cmd *cobra.Command) {
	cmd.Flags().String("extraction", "", "Extraction mode: structural or assisted")
	cmd.Flags().String("synthesis", "", "Synthesis mode: auto, template or assisted")
}

// applyModeFlags copies mode flags that the command defines and the user set into cfg
func applyModeFlags(cmd *cobra.Command) {
	if f := cmd.Flags().Lookup("extraction"); f != nil && f.Value.String() != "" {
		mode, err := extract.ParseMode(f.Value.String())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg.ExtractionMode = mode
	}
	if f := cmd.Flags().Lookup("synthesis"); f != nil && f.Value.String() != "" {
		mode, err := synthesis.ParseMode(f.Value.String())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg.SynthesisMode = mode
	}
}

// printResult writes a per-draft summary of a run
func printResult(w io.Writer, result *pipeline.Result) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()

	if len(result.Outcomes) == 0 {
		fmt.Fprintf(w, "%s No high or medium severity vulnerabilities found\n", green("✓"))
		return
	}

	fmt.Fprintf(w, "\n%s Run %s: %d findings, %d drafts\n\n", cyan("📋"), result.RunID, len(result.Records), len(result.Outcomes))
	for _, o := range result.Outcomes {
		switch o.State {
		case publisher.StatePublished:
			fmt.Fprintf(w, "  %s Created %s\n    %s\n", green("✓"), o.Draft.Title, o.Created.URL)
		case publisher.StateDuplicateSkipped:
			existing := ""
			if o.Decision != nil && o.Decision.Match != nil {
				existing = o.Decision.Match.URL
			}
			fmt.Fprintf(w, "  %s Skipped duplicate %s\n    matches %s\n", yellow("↷"), o.Draft.Title, existing)
		case publisher.StatePublishFailed:
			fmt.Fprintf(w, "  %s Failed %s\n    %v\n", red("✗"), o.Draft.Title, o.Err)
		}
	}

	fmt.Fprintf(w, "\nCreated: %d  Duplicates: %d  Failed: %d\n",
		result.Count(publisher.StatePublished),
		result.Count(publisher.StateDuplicateSkipped),
		result.Count(publisher.StatePublishFailed))
}
