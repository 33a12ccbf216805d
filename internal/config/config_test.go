package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}

func TestLoadFile_Basic(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "promptsan.yaml", `log_level: debug
engine:
  binary: /opt/engine/prompt-sanitizer
  search_path: true
  min_version: 0.2.0
  max_diagnostic_bytes: 512
defaults:
  strategy: redact
  enabled_categories: [phone, email]
`)
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.LogLevel == nil || *cfg.LogLevel != "debug" {
		t.Fatalf("expected log_level=debug, got %#v", cfg.LogLevel)
	}
	e := cfg.GetEngine()
	if e.GetBinary() != "/opt/engine/prompt-sanitizer" {
		t.Fatalf("expected engine.binary, got %q", e.GetBinary())
	}
	if !e.IsSearchPathEnabled() {
		t.Fatalf("expected search_path=true")
	}
	if e.GetMinVersion() != "0.2.0" {
		t.Fatalf("expected min_version=0.2.0, got %q", e.GetMinVersion())
	}
	if e.MaxDiagnosticBytes == nil || *e.MaxDiagnosticBytes != 512 {
		t.Fatalf("expected max_diagnostic_bytes=512, got %#v", e.MaxDiagnosticBytes)
	}
	d := cfg.GetDefaults()
	if d.Strategy == nil || *d.Strategy != "redact" {
		t.Fatalf("expected strategy=redact, got %#v", d.Strategy)
	}
	if len(d.EnabledCategories) != 2 || d.EnabledCategories[1] != "email" {
		t.Fatalf("expected two categories, got %#v", d.EnabledCategories)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "promptsan.yaml", "engine: [not, a, map]\n")
	if _, err := LoadFile(p); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestLoadLocal_PrefersDotfile(t *testing.T) {
	dir := t.TempDir()
	// place both, expect the dotfile to be picked first by search order
	writeTemp(t, dir, "promptsan.yaml", "log_level: error\n")
	writeTemp(t, dir, ".promptsan.yaml", "log_level: info\n")
	cfg, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("LoadLocal: %v", err)
	}
	if cfg.LogLevel == nil || *cfg.LogLevel != "info" {
		t.Fatalf("expected log_level=info from .promptsan.yaml, got %#v", cfg.LogLevel)
	}
}

func TestLoadLocal_NoConfig(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadLocal(dir)
	if !errors.Is(err, ErrNoConfig) {
		t.Fatalf("expected ErrNoConfig when no local config exists, got %v", err)
	}
}

func TestLoadLocal_MalformedIsNotMissing(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, ".promptsan.yml", "engine:\n  binary: [oops\n")
	_, err := LoadLocal(dir)
	if err == nil {
		t.Fatal("expected parse error for malformed local config")
	}
	if errors.Is(err, ErrNoConfig) {
		t.Fatalf("malformed config reported as missing: %v", err)
	}
	if !strings.Contains(err.Error(), ".promptsan.yml") {
		t.Fatalf("expected error to name the file, got %v", err)
	}
}

func TestLoadGlobal_MalformedIsNotMissing(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "promptsan")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeTemp(t, cfgDir, "config.yml", "no_color: [1, 2\n")
	t.Setenv("XDG_CONFIG_HOME", dir)
	_, err := LoadGlobal()
	if err == nil || errors.Is(err, ErrNoConfig) {
		t.Fatalf("expected parse error for malformed global config, got %v", err)
	}
}

func TestLoadGlobal_XDG_Config(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "promptsan")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeTemp(t, cfgDir, "config.yml", "no_color: true\n")
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if cfg.NoColor == nil || !*cfg.NoColor {
		t.Fatalf("expected no_color=true from global config, got %#v", cfg.NoColor)
	}
}

func TestLoadGlobal_NoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	// Simulate no HOME as well by clearing HOME; LoadGlobal should error
	t.Setenv("HOME", "")
	if _, err := LoadGlobal(); !errors.Is(err, ErrNoConfig) {
		t.Fatalf("expected ErrNoConfig when no global config dir exists, got %v", err)
	}
}

func TestMerge_LocalOverGlobal(t *testing.T) {
	global, err := LoadFile(writeTemp(t, t.TempDir(), "g.yml", `log_level: error
engine:
  name: engine-a
  min_version: 0.1.0
defaults:
  mode: annotate
  allowlist: [corp.example]
`))
	if err != nil {
		t.Fatal(err)
	}
	local, err := LoadFile(writeTemp(t, t.TempDir(), "l.yml", `engine:
  min_version: 0.3.0
defaults:
  mode: sanitize
`))
	if err != nil {
		t.Fatal(err)
	}

	got := global.Merge(local)
	if *got.LogLevel != "error" {
		t.Fatalf("expected global log_level kept, got %q", *got.LogLevel)
	}
	e := got.GetEngine()
	if e.Name == nil || *e.Name != "engine-a" {
		t.Fatalf("expected global engine.name kept, got %#v", e.Name)
	}
	if e.GetMinVersion() != "0.3.0" {
		t.Fatalf("expected local min_version, got %q", e.GetMinVersion())
	}
	d := got.GetDefaults()
	if *d.Mode != "sanitize" {
		t.Fatalf("expected local mode, got %q", *d.Mode)
	}
	if len(d.Allowlist) != 1 {
		t.Fatalf("expected global allowlist kept, got %#v", d.Allowlist)
	}
	if *global.GetEngine().MinVersion != "0.1.0" {
		t.Fatalf("merge mutated its receiver")
	}
}

func TestLoadEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PROMPTSAN_ENGINE", "/usr/local/bin/prompt-sanitizer")
	t.Setenv("PROMPTSAN_LOG_LEVEL", "debug")
	env, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if env.Engine != "/usr/local/bin/prompt-sanitizer" || env.LogLevel != "debug" {
		t.Fatalf("unexpected env config %#v", env)
	}
}

func TestLoadEnv_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeTemp(t, dir, ".env", "PROMPTSAN_RESOURCE_DIR=/opt/resources\nPROMPTSAN_LOG_LEVEL=error\n")
	// registered for restore, then removed so the .env value can apply
	t.Setenv("PROMPTSAN_RESOURCE_DIR", "")
	os.Unsetenv("PROMPTSAN_RESOURCE_DIR")
	t.Setenv("PROMPTSAN_LOG_LEVEL", "info")

	env, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if env.ResourceDir != "/opt/resources" {
		t.Fatalf("expected resource dir from .env, got %q", env.ResourceDir)
	}
	if env.LogLevel != "info" {
		t.Fatalf("expected process env to win over .env, got %q", env.LogLevel)
	}
}
