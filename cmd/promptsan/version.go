package promptsan

import (
	"encoding/json"
	"fmt"
	"runtime/debug"

	semver "github.com/blang/semver/v4"
	"github.com/spf13/cobra"

	"github.com/prompt-sanitizer/host/internal/types"
)

var flagCheckEngine bool

// probeText is sent to the engine to learn its version; it contains nothing
// the engine should flag.
const probeText = "version probe"

func init() {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the host version, and optionally the engine's",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
	cmd.Flags().BoolVar(&flagCheckEngine, "check-engine", false, "run the engine once and report its version")
	rootCmd.AddCommand(cmd)
}

type versionInfo struct {
	Host         string `json:"host"`
	Revision     string `json:"revision,omitempty"`
	Engine       string `json:"engine,omitempty"`
	MinEngine    string `json:"min_engine,omitempty"`
	EngineTooOld bool   `json:"engine_too_old,omitempty"`
}

func runVersion(cmd *cobra.Command, _ []string) error {
	info := versionInfo{Host: version}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				info.Revision = s.Value
			}
		}
	}

	if flagCheckEngine {
		svc, err := current.service()
		if err != nil {
			return err
		}
		resp, err := svc.Sanitize(types.Request{
			Text:         probeText,
			Mode:         types.ModeAnnotate,
			Strategy:     types.StrategyRedact,
			Level:        types.LevelStandard,
			SemanticMode: types.SemanticOff,
		})
		if err != nil {
			return err
		}
		info.Engine = resp.Version
		if minV, ok, err := current.minEngineVersion(); err != nil {
			return err
		} else if ok {
			info.MinEngine = minV.String()
			if v, err := semver.ParseTolerant(resp.Version); err == nil && v.LT(minV) {
				info.EngineTooOld = true
			}
		}
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return json.NewEncoder(out).Encode(info)
	}
	fmt.Fprintf(out, "promptsan %s\n", info.Host)
	if info.Revision != "" {
		fmt.Fprintf(out, "revision %s\n", info.Revision)
	}
	if info.Engine != "" {
		fmt.Fprintf(out, "engine %s\n", info.Engine)
	}
	if info.EngineTooOld {
		fmt.Fprintf(out, "warning: engine is older than the configured minimum %s\n", info.MinEngine)
	}
	return nil
}
