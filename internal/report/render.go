package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"github.com/prompt-sanitizer/host/internal/types"
)

// Bucket thresholds used by the engine when it counts risk buckets.
const (
	HighRisk   = 70
	MediumRisk = 40
)

type PrintOptions struct {
	NoColor bool
	// Source names the input (a file path or "stdin") in the header.
	Source string
	// HideText omits the sanitized text block.
	HideText bool
}

var (
	highStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	mediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	lowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

// Bucket names the risk bucket a 0-100 value falls in.
func Bucket(risk int) string {
	switch {
	case risk >= HighRisk:
		return "high"
	case risk >= MediumRisk:
		return "medium"
	default:
		return "low"
	}
}

// PrintReport writes a human-readable summary of resp.
func PrintReport(w io.Writer, resp types.Response, opts PrintOptions) {
	paint := func(s *lipgloss.Style, text string) string {
		if opts.NoColor {
			return text
		}
		return s.Render(text)
	}
	bucketStyle := func(b string) *lipgloss.Style {
		switch b {
		case "high":
			return &highStyle
		case "medium":
			return &mediumStyle
		}
		return &lowStyle
	}

	if opts.Source != "" {
		fmt.Fprintln(w, paint(&titleStyle, "Source: "+opts.Source))
	}
	level := Bucket(resp.RiskScore)
	fmt.Fprintf(w, "Risk score: %s\n", paint(bucketStyle(level), fmt.Sprintf("%d (%s)", resp.RiskScore, level)))

	if len(resp.Findings) == 0 {
		fmt.Fprintln(w, "No sensitive data found ✅")
	} else {
		fmt.Fprintf(w, "Findings: %d (high: %d, medium: %d, low: %d)\n",
			resp.Stats.TotalFindings, resp.Stats.HighRiskCount, resp.Stats.MediumRiskCount, resp.Stats.LowRiskCount)

		table := tablewriter.NewWriter(w)
		table.Header("Risk", "Type", "Span", "Confidence", "Replacement", "Preview", "Reason")
		for _, f := range resp.Findings {
			b := Bucket(f.Risk)
			_ = table.Append([]string{
				paint(bucketStyle(b), fmt.Sprintf("%s %d", b, f.Risk)),
				f.Type,
				fmt.Sprintf("%d-%d", f.Start, f.End),
				strconv.FormatFloat(f.Confidence, 'f', 2, 64),
				f.Replacement,
				f.ReplacementPreview,
				f.Reason,
			})
		}
		_ = table.Render()

		cats := lo.Keys(resp.Stats.ByCategory)
		sort.Strings(cats)
		ct := tablewriter.NewWriter(w)
		ct.Header("Category", "Count")
		for _, c := range cats {
			_ = ct.Append([]string{c, strconv.Itoa(resp.Stats.ByCategory[c])})
		}
		_ = ct.Render()
	}

	fmt.Fprintf(w, "Engine version: %s\n", resp.Version)
	if !opts.HideText {
		fmt.Fprintln(w)
		fmt.Fprintln(w, paint(&titleStyle, "Sanitized text:"))
		fmt.Fprintln(w, resp.SanitizedText)
	}
}
