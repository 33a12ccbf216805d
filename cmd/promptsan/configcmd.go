package promptsan

import (
	"fmt"
	"os"

	semver "github.com/blang/semver/v4"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/prompt-sanitizer/host/internal/config"
	"github.com/prompt-sanitizer/host/internal/types"
)

var (
	cfgOutput     string
	cfgEngine     string
	cfgStrategy   string
	cfgLevel      string
	cfgCategories string
	cfgAllow      string
	cfgSearchPath bool
	cfgMinVersion string
	cfgForce      bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .promptsan.yml with engine and request defaults",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "output", ".promptsan.yml", "output file path")
	initCmd.Flags().StringVar(&cfgEngine, "engine-binary", "", "pin the engine executable path")
	initCmd.Flags().StringVar(&cfgStrategy, "strategy", string(types.StrategyRedact), "default replacement strategy")
	initCmd.Flags().StringVar(&cfgLevel, "level", string(types.LevelStandard), "default detection level")
	initCmd.Flags().StringVar(&cfgCategories, "categories", "", "comma-separated default categories")
	initCmd.Flags().StringVar(&cfgAllow, "allow", "", "comma-separated default allowlist")
	initCmd.Flags().BoolVar(&cfgSearchPath, "search-path", false, "also look for the engine on $PATH")
	initCmd.Flags().StringVar(&cfgMinVersion, "min-engine-version", "", "warn when the engine is older than this version")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if _, err := os.Stat(cfgOutput); err == nil && !cfgForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgOutput)
	}

	fc := config.FileConfig{
		Engine: &config.EngineConfig{
			Binary:     optStrPtr(cfgEngine),
			SearchPath: boolPtr(cfgSearchPath),
			MinVersion: optStrPtr(cfgMinVersion),
		},
		Defaults: &config.RequestDefaults{
			Mode:              strPtr(string(types.ModeSanitize)),
			Strategy:          strPtr(cfgStrategy),
			Level:             strPtr(cfgLevel),
			SemanticMode:      strPtr(string(types.SemanticOff)),
			EnabledCategories: splitList(cfgCategories),
			Allowlist:         splitList(cfgAllow),
		},
	}
	if cfgMinVersion != "" {
		if _, err := semver.ParseTolerant(cfgMinVersion); err != nil {
			return fmt.Errorf("--min-engine-version: %w", err)
		}
	}

	b, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfgOutput, b, 0o644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", cfgOutput)
	return nil
}

func optStrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
