package records

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/zapissues/zapissues/internal/types"
)

const maxSolutionWidth = 60

// WriteTable renders records as a bordered table
func WriteTable(w io.Writer, records []types.VulnerabilityRecord) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.On}},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNormal,
				},
				Alignment:    tw.CellAlignment{Global: tw.AlignLeft},
				ColMaxWidths: tw.CellWidth{Global: maxSolutionWidth},
			},
		}),
	)

	table.Header(Headers)
	for _, r := range records {
		urls := fmt.Sprintf("%d", len(r.URLs))
		if len(r.URLs) == 1 {
			urls = r.URLs[0]
		}
		if err := table.Append([]string{
			r.Name,
			string(r.Severity),
			instancesText(r.InstanceCount),
			urls,
			truncate(r.Solution, maxSolutionWidth*2),
		}); err != nil {
			return fmt.Errorf("adding table row: %w", err)
		}
	}

	return table.Render()
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
