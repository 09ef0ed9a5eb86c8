// Package report renders scan reports for the console and as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rxtech-lab/argo-scanner/internal/types"
	"github.com/rxtech-lab/argo-scanner/pkg/errors"
)

// Format selects the output of Write.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	faintStyle  = lipgloss.NewStyle().Faint(true)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// RenderTable renders the report as a title, a pattern table and the exclusion lists.
func RenderTable(report types.Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Scan %s (%s) at %s",
		shortID(report.CycleID), report.Frequency, report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))))
	b.WriteString("\n")

	if len(report.Results) == 0 {
		b.WriteString(faintStyle.Render("No patterns matched"))
		b.WriteString("\n")
	} else {
		rows := make([][]string, 0, len(report.Results))
		for _, result := range report.Results {
			rows = append(rows, []string{
				string(result.Name),
				fmt.Sprintf("%d", len(result.Symbols)),
				strings.Join(result.Symbols, ", "),
			})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(borderStyle).
			Headers("PATTERN", "HITS", "SYMBOLS").
			Rows(rows...).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}

				return cellStyle
			})

		b.WriteString(t.Render())
		b.WriteString("\n")
	}

	writeExclusions(&b, "Missing data", report.MissingData)
	writeExclusions(&b, "Missing analysis", report.MissingAnalysis)

	return b.String()
}

func writeExclusions(b *strings.Builder, label string, symbols []string) {
	if len(symbols) == 0 {
		return
	}

	b.WriteString(faintStyle.Render(fmt.Sprintf("%s (%d): %s", label, len(symbols), strings.Join(symbols, ", "))))
	b.WriteString("\n")
}

// RenderJSON renders the report as indented JSON. Empty lists are written as [].
func RenderJSON(report types.Report) ([]byte, error) {
	data, err := json.MarshalIndent(normalize(report), "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParameter, "failed to marshal report", err)
	}

	return data, nil
}

// Write renders report in format to w.
func Write(w io.Writer, report types.Report, format Format) error {
	switch format {
	case FormatJSON:
		data, err := RenderJSON(report)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(w, string(data))

		return err
	case FormatTable, "":
		_, err := io.WriteString(w, RenderTable(report))

		return err
	default:
		return errors.Newf(errors.ErrCodeInvalidParameter, "unsupported report format %q", format)
	}
}

func normalize(report types.Report) types.Report {
	if report.Results == nil {
		report.Results = []types.SignalResult{}
	}

	if report.MissingData == nil {
		report.MissingData = []string{}
	}

	if report.MissingAnalysis == nil {
		report.MissingAnalysis = []string{}
	}

	return report
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}
