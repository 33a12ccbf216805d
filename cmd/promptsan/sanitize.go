package promptsan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prompt-sanitizer/host/internal/audit"
	"github.com/prompt-sanitizer/host/internal/report"
	"github.com/prompt-sanitizer/host/internal/types"
)

var (
	flagText       string
	flagFile       string
	flagMode       string
	flagStrategy   string
	flagLevel      string
	flagSemantic   string
	flagCategories string
	flagAllow      string
	flagCopy       bool
	flagFailOn     string
	flagSARIF      bool
	flagHideText   bool
	flagAuditLog   string
)

func init() {
	cmd := &cobra.Command{
		Use:   "sanitize",
		Short: "Send text to the engine and report findings",
		Long: "Sanitize reads text from --text, --file or stdin, sends it to the engine and prints the\n" +
			"engine's findings and sanitized text. Options left unset fall back to the config file defaults.",
		Args: cobra.NoArgs,
		RunE: runSanitize,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagText, "text", "t", "", "text to sanitize")
	cmd.Flags().StringVarP(&flagFile, "file", "f", "", "read the text from this file")
	cmd.Flags().StringVar(&flagMode, "mode", "", "annotate | sanitize (default sanitize)")
	cmd.Flags().StringVar(&flagStrategy, "strategy", "", "mask | redact | pseudonym (default redact)")
	cmd.Flags().StringVar(&flagLevel, "level", "", "lenient | standard | strict (default standard)")
	cmd.Flags().StringVar(&flagSemantic, "semantic", "", "semantic detection: off | on (default off)")
	cmd.Flags().StringVar(&flagCategories, "categories", "", "comma-separated categories to enable (empty = engine default)")
	cmd.Flags().StringVar(&flagAllow, "allow", "", "comma-separated values the engine must not flag")
	cmd.Flags().BoolVar(&flagCopy, "copy", false, "copy the sanitized text to the clipboard")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "none", "exit 1 when findings at or above: low|medium|high|none")
	cmd.Flags().BoolVar(&flagSARIF, "sarif", false, "emit SARIF 2.1.0")
	cmd.Flags().BoolVar(&flagHideText, "hide-text", false, "omit the sanitized text from the report")
	cmd.Flags().StringVar(&flagAuditLog, "audit-log", "", "append a record of this call (counts and fingerprints only) to this file")
	cmd.MarkFlagsMutuallyExclusive("text", "file")
}

func runSanitize(cmd *cobra.Command, _ []string) error {
	if _, err := report.ShouldFail(types.Stats{}, flagFailOn); err != nil {
		return err
	}
	svc, err := current.service()
	if err != nil {
		return err
	}

	text, source, err := readInput(cmd, svc.ReadFile)
	if err != nil {
		return err
	}
	req := buildRequest(text)

	started := time.Now()
	resp, err := svc.Sanitize(req)
	if err != nil {
		return err
	}
	if path := pickString(flagAuditLog, current.file.AuditLog, nil); path != "" {
		al := audit.NewAuditLog(path)
		rec := audit.CreateCallRecord(source, req, resp, time.Since(started))
		if err := al.LogCall(rec); err != nil {
			current.log.Warn("audit record not written", zap.String("path", al.Path()), zap.Error(err))
		} else {
			current.log.Debug("audit record written", zap.String("path", al.Path()))
		}
	}

	out := cmd.OutOrStdout()
	switch {
	case flagSARIF:
		if err := report.WriteSARIF(out, source, resp); err != nil {
			return err
		}
	case flagJSON:
		if err := writeJSON(out, resp); err != nil {
			return err
		}
	default:
		report.PrintReport(out, resp, report.PrintOptions{
			NoColor:  !current.colorEnabled(out),
			Source:   source,
			HideText: flagHideText,
		})
	}

	if flagCopy {
		if err := clipboard.WriteAll(resp.SanitizedText); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		current.log.Info("sanitized text copied to clipboard", zap.Int("bytes", len(resp.SanitizedText)))
		if !flagJSON && !flagSARIF {
			fmt.Fprintln(cmd.ErrOrStderr(), "Sanitized text copied to clipboard.")
		}
	}

	fail, _ := report.ShouldFail(resp.Stats, flagFailOn)
	if fail {
		return exitCode(1)
	}
	return nil
}

func readInput(cmd *cobra.Command, readFile func(string) (string, error)) (text, source string, err error) {
	switch {
	case flagText != "":
		return flagText, "argument", nil
	case flagFile != "":
		text, err = readFile(flagFile)
		return text, flagFile, err
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), "stdin", nil
}

// buildRequest fills unset options from the config defaults, then the
// engine's own defaults.
func buildRequest(text string) types.Request {
	d := current.file.GetDefaults()
	return types.Request{
		Text:              text,
		Mode:              types.Mode(pickString(flagMode, d.Mode, strPtr(string(types.ModeSanitize)))),
		Strategy:          types.Strategy(pickString(flagStrategy, d.Strategy, strPtr(string(types.StrategyRedact)))),
		Level:             types.Level(pickString(flagLevel, d.Level, strPtr(string(types.LevelStandard)))),
		SemanticMode:      types.SemanticMode(pickString(flagSemantic, d.SemanticMode, strPtr(string(types.SemanticOff)))),
		EnabledCategories: pickList(flagCategories, d.EnabledCategories),
		Allowlist:         pickList(flagAllow, d.Allowlist),
	}
}

func writeJSON(w io.Writer, resp types.Response) error {
	doc, err := types.MarshalResponse(resp)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}
