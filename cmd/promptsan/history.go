package promptsan

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/prompt-sanitizer/host/internal/audit"
)

var (
	flagHistoryLog   string
	flagHistoryLimit int
)

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded sanitize calls from the audit log",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	cmd.Flags().StringVar(&flagHistoryLog, "audit-log", "", "audit log file (default: audit_log from config)")
	cmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "show at most this many records (0 = all)")
	rootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	path := pickString(flagHistoryLog, current.file.AuditLog, nil)
	if path == "" {
		return errors.New("no audit log configured (set audit_log in .promptsan.yml or pass --audit-log)")
	}
	al := audit.NewAuditLog(path)
	records, err := al.LoadHistory()
	if err != nil {
		return err
	}
	if flagHistoryLimit > 0 && len(records) > flagHistoryLimit {
		records = records[:flagHistoryLimit]
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	if len(records) == 0 {
		_, err := fmt.Fprintf(out, "No calls recorded in %s.\n", al.Path())
		return err
	}
	table := tablewriter.NewWriter(out)
	table.Header("Time", "Source", "Findings", "High", "Medium", "Low", "Score", "Engine", "Text")
	for _, r := range records {
		_ = table.Append([]string{
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			r.Source,
			strconv.Itoa(r.TotalFindings),
			strconv.Itoa(r.HighRisk),
			strconv.Itoa(r.MediumRisk),
			strconv.Itoa(r.LowRisk),
			strconv.Itoa(r.RiskScore),
			r.EngineVersion,
			fmt.Sprintf("%s (%d bytes)", r.TextFP, r.TextBytes),
		})
	}
	return table.Render()
}
