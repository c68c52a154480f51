package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zapissues/zapissues/internal/pipeline"
	"github.com/zapissues/zapissues/internal/records"
)

var extractCmd = &cobra.Command{
	Use:   "extract [report]",
	Short: "Extract findings from a report without filing issues",
	Long: `Extract the High and Medium findings of a ZAP report, write them to the
records file and print them as a table. File them later with "zapissues publish".

Examples:
  zapissues extract                             # ./zap-report.html -> ./vulnerabilities.json
  zapissues extract reports/zap.html -o out.json
  zapissues extract --xlsx findings.xlsx        # Also export a workbook
  zapissues extract --extraction assisted       # Let the AI provider read the report`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 1 {
			cfg.Report = args[0]
		}
		if out, _ := cmd.Flags().GetString("output"); out != "" {
			cfg.RecordsPath = out
		}
		xlsxPath, _ := cmd.Flags().GetString("xlsx")
		applyModeFlags(cmd)

		ctx := context.Background()

		report, err := pipeline.ReadReport(cfg.Report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		p, err := pipeline.FromConfig(ctx, cfg, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer p.Close()

		recs, err := p.Extract(ctx, report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			p.Close()
			os.Exit(1)
		}

		if err := records.Save(cfg.RecordsPath, recs); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			p.Close()
			os.Exit(1)
		}

		if len(recs) == 0 {
			green := color.New(color.FgGreen).SprintFunc()
			fmt.Printf("%s No high or medium severity vulnerabilities found\n", green("✓"))
		} else {
			cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
			fmt.Printf("\n%s Extracted %d vulnerabilities:\n\n", cyan("🔍"), len(recs))
			if err := records.WriteTable(os.Stdout, recs); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to render table: %v\n", err)
			}
		}
		fmt.Printf("\nRecords written to %s\n", cfg.RecordsPath)

		if xlsxPath != "" {
			if err := records.ExportXLSX(xlsxPath, recs); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				p.Close()
				os.Exit(1)
			}
			fmt.Printf("Workbook written to %s\n", xlsxPath)
		}
	},
}

func init() {
	extractCmd.Flags().StringP("output", "o", "", "Records file to write (default: vulnerabilities.json)")
	extractCmd.Flags().String("xlsx", "", "Also export the findings to an Excel workbook")
	extractCmd.Flags().String("extraction", "", "Extraction mode: structural or assisted")
	rootCmd.AddCommand(extractCmd)
}
