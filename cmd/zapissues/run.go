package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zapissues/zapissues/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run [report]",
	Short: "Extract findings from a report and file them as issues",
	Long: `Run the full pipeline: extract High and Medium findings from a ZAP report,
synthesize issue drafts, skip drafts that duplicate a recent open issue and
create the rest. The extracted records are also written to the records file.

Failures talking to the AI provider or to GitHub are logged and never abort
the run; only an unreadable report or invalid configuration does.

Examples:
  zapissues run                          # Read ./zap-report.html
  zapissues run reports/zap.html         # Read a specific report
  zapissues run --synthesis template     # One issue per finding`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 1 {
			cfg.Report = args[0]
		}
		applyModeFlags(cmd)

		ctx := context.Background()

		report, err := pipeline.ReadReport(cfg.Report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		p, err := pipeline.FromConfig(ctx, cfg, true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer p.Close()

		result, err := p.Run(ctx, report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			p.Close()
			os.Exit(1)
		}

		printResult(os.Stdout, result)
	},
}

func init() {
	addModeFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}
