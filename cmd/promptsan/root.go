package promptsan

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagJSON        bool
	flagNoColor     bool
	flagLogLevel    string
	flagEngine      string
	flagResourceDir string
	flagConfig      string

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the promptsan CLI.
var rootCmd = &cobra.Command{
	Use:               "promptsan",
	Short:             "Detect and sanitize sensitive data in prompts",
	Long:              "promptsan sends text to the prompt-sanitizer engine and reports what it found and how it was rewritten.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
}

// exitCode ends the process with a specific status and no error message.
type exitCode int

func (e exitCode) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

// Execute runs the promptsan CLI. It should be called by the main package.
func Execute() {
	err := rootCmd.Execute()
	if current != nil {
		_ = current.log.Sync()
	}
	if err == nil {
		return
	}
	var code exitCode
	if errors.As(err, &code) {
		os.Exit(int(code))
	}
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(2)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (default warn)")
	rootCmd.PersistentFlags().StringVar(&flagEngine, "engine", "", "explicit engine executable path (skips discovery)")
	rootCmd.PersistentFlags().StringVar(&flagResourceDir, "resource-dir", "", "packaged resource directory (default: directory of this executable)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: .promptsan.yml, then $XDG_CONFIG_HOME/promptsan/config.yml)")
}
