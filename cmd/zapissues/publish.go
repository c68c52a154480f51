package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zapissues/zapissues/internal/pipeline"
	"github.com/zapissues/zapissues/internal/records"
)

var publishCmd = &cobra.Command{
	Use:   "publish [records.json]",
	Short: "File issues for previously extracted findings",
	Long: `Read a records file written by "zapissues extract" and file its findings as
GitHub issues, skipping drafts that duplicate a recent open issue.

Examples:
  zapissues publish                           # Read ./vulnerabilities.json
  zapissues publish out.json --synthesis template`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 1 {
			cfg.RecordsPath = args[0]
		}
		applyModeFlags(cmd)

		ctx := context.Background()

		recs, err := records.Load(cfg.RecordsPath)
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

		result, err := p.Publish(ctx, recs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			p.Close()
			os.Exit(1)
		}

		printResult(os.Stdout, result)
	},
}

func init() {
	publishCmd.Flags().String("synthesis", "", "Synthesis mode: auto, template or assisted")
	rootCmd.AddCommand(publishCmd)
}
