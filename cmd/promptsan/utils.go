package promptsan

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	semver "github.com/blang/semver/v4"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/prompt-sanitizer/host/internal/config"
	"github.com/prompt-sanitizer/host/internal/host"
	"github.com/prompt-sanitizer/host/internal/locator"
	"github.com/prompt-sanitizer/host/internal/logging"
)

// settings is the resolved configuration for one CLI invocation.
type settings struct {
	file config.FileConfig
	env  config.EnvConfig
	log  *zap.Logger
}

var current *settings

// loadSettings merges config files, environment and flags, then builds the
// logger. Precedence: flag > env > local file > global file > default.
func loadSettings(cmd *cobra.Command, _ []string) error {
	var file config.FileConfig
	if flagConfig != "" {
		fc, err := config.LoadFile(flagConfig)
		if err != nil {
			return fmt.Errorf("load config %s: %w", flagConfig, err)
		}
		file = fc
	} else {
		global, err := config.LoadGlobal()
		if err != nil && !errors.Is(err, config.ErrNoConfig) {
			return fmt.Errorf("load global config: %w", err)
		}
		local, err := config.LoadLocal(".")
		if err != nil && !errors.Is(err, config.ErrNoConfig) {
			return fmt.Errorf("load local config: %w", err)
		}
		file = global.Merge(local)
	}

	env, err := config.LoadEnv()
	if err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	level := pickString(flagLogLevel, optStrPtr(env.LogLevel), file.LogLevel)
	if level == "" {
		level = logging.DefaultLevel
	}
	log, err := logging.New(level)
	if err != nil {
		return err
	}
	current = &settings{file: file, env: env, log: log}
	log.Debug("settings loaded", zap.String("command", cmd.CommandPath()), zap.String("log_level", level))
	return nil
}

func (s *settings) locatorOptions() locator.Options {
	eng := s.file.GetEngine()
	opts := locator.Options{
		Override:    pickString(flagEngine, optStrPtr(s.env.Engine), optStrPtr(eng.GetBinary())),
		ResourceDir: locator.ExecutableDir,
		SearchPATH:  eng.IsSearchPathEnabled(),
	}
	if eng.Name != nil {
		opts.Name = *eng.Name
	}
	if dir := pickString(flagResourceDir, optStrPtr(s.env.ResourceDir), eng.ResourceDir); dir != "" {
		opts.ResourceDir = func() (string, error) { return dir, nil }
	}
	return opts
}

func (s *settings) engineLocator() *locator.Locator {
	return locator.New(s.locatorOptions())
}

func (s *settings) service() (*host.Service, error) {
	eng := s.file.GetEngine()
	var opts []host.Option
	if eng.MaxDiagnosticBytes != nil {
		opts = append(opts, host.WithDiagnosticLimit(*eng.MaxDiagnosticBytes))
	}
	if v, ok, err := s.minEngineVersion(); err != nil {
		return nil, err
	} else if ok {
		opts = append(opts, host.WithMinEngineVersion(v))
	}
	return host.New(s.engineLocator(), s.log, opts...), nil
}

func (s *settings) minEngineVersion() (semver.Version, bool, error) {
	raw := s.file.GetEngine().GetMinVersion()
	if raw == "" {
		return semver.Version{}, false, nil
	}
	v, err := semver.ParseTolerant(raw)
	if err != nil {
		return semver.Version{}, false, fmt.Errorf("engine.min_version %q: %w", raw, err)
	}
	return v, true, nil
}

// colorEnabled reports whether w is a terminal and color was not disabled.
func (s *settings) colorEnabled(w io.Writer) bool {
	if flagNoColor || pickBool(false, s.file.NoColor, nil) {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickList(cli string, fallback []string) []string {
	if strings.TrimSpace(cli) == "" {
		return fallback
	}
	return splitList(cli)
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}

// splitList parses a comma-separated flag value, dropping blanks and duplicates.
func splitList(s string) []string {
	parts := lo.Map(strings.Split(s, ","), func(p string, _ int) string { return strings.TrimSpace(p) })
	return lo.Uniq(lo.Compact(parts))
}

func strPtr(s string) *string { return &s }
func boolPtr(v bool) *bool    { return &v }
