package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape for promptsan.
type FileConfig struct {
	LogLevel *string `yaml:"log_level,omitempty"`
	NoColor  *bool   `yaml:"no_color,omitempty"`

	// AuditLog appends one JSON line per sanitize call to this file.
	AuditLog *string `yaml:"audit_log,omitempty"`

	// Engine controls how the sanitization engine is found and invoked.
	Engine *EngineConfig `yaml:"engine,omitempty"`

	// Defaults fill request fields the CLI caller leaves unset.
	Defaults *RequestDefaults `yaml:"defaults,omitempty"`
}

// EngineConfig holds engine discovery settings.
type EngineConfig struct {
	// Binary is an explicit engine path. When set, no other location is tried.
	Binary *string `yaml:"binary,omitempty"`

	// Name overrides the engine executable base name.
	Name *string `yaml:"name,omitempty"`

	// ResourceDir is where a packaged engine lives. Defaults to the directory
	// of the running executable.
	ResourceDir *string `yaml:"resource_dir,omitempty"`

	// SearchPath also looks the engine up on $PATH after the dev layouts.
	SearchPath *bool `yaml:"search_path,omitempty"`

	// MinVersion logs a warning when the engine reports an older version.
	MinVersion *string `yaml:"min_version,omitempty"`

	// MaxDiagnosticBytes bounds engine output quoted in errors.
	MaxDiagnosticBytes *int `yaml:"max_diagnostic_bytes,omitempty"`
}

// RequestDefaults mirrors the request options of `promptsan sanitize`.
type RequestDefaults struct {
	Mode              *string  `yaml:"mode,omitempty"`
	Strategy          *string  `yaml:"strategy,omitempty"`
	Level             *string  `yaml:"level,omitempty"`
	SemanticMode      *string  `yaml:"semantic_mode,omitempty"`
	EnabledCategories []string `yaml:"enabled_categories,omitempty"`
	Allowlist         []string `yaml:"allowlist,omitempty"`
}

// EnvConfig holds the PROMPTSAN_* environment overrides.
type EnvConfig struct {
	Engine      string `envconfig:"ENGINE"`
	ResourceDir string `envconfig:"RESOURCE_DIR"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
}

// ErrNoConfig reports that no config file exists where one was looked for.
var ErrNoConfig = errors.New("no config file")

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "PROMPTSAN"

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadLocal searches for a project-local config file in the given root.
// It supports .promptsan.yml/.yaml and promptsan.yml/.yaml. When none exists
// the error is ErrNoConfig; a file that exists but does not parse is an error
// naming it.
func LoadLocal(root string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range []string{".promptsan.yml", ".promptsan.yaml", "promptsan.yml", "promptsan.yaml"} {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return loadNamed(p)
		}
	}
	return cfg, fmt.Errorf("local: %w", ErrNoConfig)
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, fmt.Errorf("no config dir: %w", ErrNoConfig)
	}
	p := filepath.Join(base, "promptsan", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return loadNamed(p)
	}
	return cfg, fmt.Errorf("global: %w", ErrNoConfig)
}

func loadNamed(path string) (FileConfig, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnv reads PROMPTSAN_* variables. A .env file in the working directory
// is loaded first if present; variables already set win over it.
func LoadEnv() (EnvConfig, error) {
	_ = godotenv.Load()
	var env EnvConfig
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return env, err
	}
	return env, nil
}

// Merge overlays o onto fc field by field. Set fields in o win.
func (fc FileConfig) Merge(o FileConfig) FileConfig {
	out := fc
	if o.LogLevel != nil {
		out.LogLevel = o.LogLevel
	}
	if o.NoColor != nil {
		out.NoColor = o.NoColor
	}
	if o.AuditLog != nil {
		out.AuditLog = o.AuditLog
	}
	if o.Engine != nil {
		e := fc.GetEngine()
		if o.Engine.Binary != nil {
			e.Binary = o.Engine.Binary
		}
		if o.Engine.Name != nil {
			e.Name = o.Engine.Name
		}
		if o.Engine.ResourceDir != nil {
			e.ResourceDir = o.Engine.ResourceDir
		}
		if o.Engine.SearchPath != nil {
			e.SearchPath = o.Engine.SearchPath
		}
		if o.Engine.MinVersion != nil {
			e.MinVersion = o.Engine.MinVersion
		}
		if o.Engine.MaxDiagnosticBytes != nil {
			e.MaxDiagnosticBytes = o.Engine.MaxDiagnosticBytes
		}
		out.Engine = &e
	}
	if o.Defaults != nil {
		d := fc.GetDefaults()
		if o.Defaults.Mode != nil {
			d.Mode = o.Defaults.Mode
		}
		if o.Defaults.Strategy != nil {
			d.Strategy = o.Defaults.Strategy
		}
		if o.Defaults.Level != nil {
			d.Level = o.Defaults.Level
		}
		if o.Defaults.SemanticMode != nil {
			d.SemanticMode = o.Defaults.SemanticMode
		}
		if o.Defaults.EnabledCategories != nil {
			d.EnabledCategories = o.Defaults.EnabledCategories
		}
		if o.Defaults.Allowlist != nil {
			d.Allowlist = o.Defaults.Allowlist
		}
		out.Defaults = &d
	}
	return out
}

// GetEngine returns the engine section, empty if absent.
func (fc FileConfig) GetEngine() EngineConfig {
	if fc.Engine == nil {
		return EngineConfig{}
	}
	return *fc.Engine
}

// GetDefaults returns the request defaults section, empty if absent.
func (fc FileConfig) GetDefaults() RequestDefaults {
	if fc.Defaults == nil {
		return RequestDefaults{}
	}
	return *fc.Defaults
}

// GetBinary returns the configured engine path or empty string.
func (ec EngineConfig) GetBinary() string {
	if ec.Binary == nil {
		return ""
	}
	return *ec.Binary
}

// GetMinVersion returns the minimum engine version or empty string.
func (ec EngineConfig) GetMinVersion() string {
	if ec.MinVersion == nil {
		return ""
	}
	return *ec.MinVersion
}

// IsSearchPathEnabled reports whether $PATH lookup is on (default: false).
func (ec EngineConfig) IsSearchPathEnabled() bool {
	return ec.SearchPath != nil && *ec.SearchPath
}
