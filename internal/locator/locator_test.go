package locator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prompt-sanitizer/host/internal/errs"
)

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	return path
}

func staticDir(dir string) func() (string, error) {
	return func() (string, error) { return dir, nil }
}

func TestFind_PackagedTakesPrecedence(t *testing.T) {
	work := t.TempDir()
	res := t.TempDir()
	touch(t, filepath.Join(work, "bin", "prompt-sanitizer"))
	want := touch(t, filepath.Join(res, "prompt-sanitizer"))

	l := New(Options{GOOS: "linux", WorkDir: work, ResourceDir: staticDir(res)})
	c, err := l.Resolve()
	require.NoError(t, err)
	assert.Equal(t, want, c.Path)
	assert.Equal(t, "packaged resource directory", c.Description)
}

func TestFind_PackagedUsesPlatformSuffix(t *testing.T) {
	res := t.TempDir()
	touch(t, filepath.Join(res, "prompt-sanitizer"))
	want := touch(t, filepath.Join(res, "prompt-sanitizer.exe"))

	l := New(Options{GOOS: "windows", WorkDir: t.TempDir(), ResourceDir: staticDir(res)})
	got, err := l.Find()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFind_DevelopmentOrder(t *testing.T) {
	work := t.TempDir()
	touch(t, filepath.Join(work, "src-tauri", "bin", "prompt-sanitizer"))
	want := touch(t, filepath.Join(work, "bin", "prompt-sanitizer"))

	l := New(Options{GOOS: "linux", WorkDir: work})
	got, err := l.Find()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFind_ExeSuffixFirstWithinLayout(t *testing.T) {
	work := t.TempDir()
	touch(t, filepath.Join(work, "bin", "prompt-sanitizer"))
	want := touch(t, filepath.Join(work, "bin", "prompt-sanitizer.exe"))

	got, err := New(Options{GOOS: "linux", WorkDir: work}).Find()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFind_ResourceDirErrorFallsThrough(t *testing.T) {
	work := t.TempDir()
	want := touch(t, filepath.Join(work, "src-tauri", "bin", "prompt-sanitizer"))

	l := New(Options{
		GOOS:        "linux",
		WorkDir:     work,
		ResourceDir: func() (string, error) { return "", errors.New("no bundle") },
	})
	got, err := l.Find()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFind_EmptyPackagedDirFallsThrough(t *testing.T) {
	work := t.TempDir()
	want := touch(t, filepath.Join(work, "bin", "prompt-sanitizer"))

	got, err := New(Options{GOOS: "linux", WorkDir: work, ResourceDir: staticDir(t.TempDir())}).Find()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFind_DirectoryIsNotACandidate(t *testing.T) {
	work := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(work, "bin", "prompt-sanitizer"), 0o755))

	_, err := New(Options{GOOS: "linux", WorkDir: work}).Find()
	assert.ErrorIs(t, err, errs.ErrLocator)
}

func TestFind_NotFound_NoPackage(t *testing.T) {
	work := t.TempDir()
	l := New(Options{GOOS: "linux", WorkDir: work})

	got, err := l.Find()
	require.Error(t, err)
	assert.Empty(t, got)
	assert.ErrorIs(t, err, errs.ErrLocator)
	assert.Contains(t, err.Error(), "not found")
	assert.Contains(t, err.Error(), "no packaged resource directory available")
	assert.Contains(t, err.Error(), "not built")
	assert.Contains(t, err.Error(), filepath.Join(work, "bin", "prompt-sanitizer"))
}

func TestFind_NotFound_PackageMissingBinary(t *testing.T) {
	res := t.TempDir()
	_, err := New(Options{GOOS: "linux", WorkDir: t.TempDir(), ResourceDir: staticDir(res)}).Find()
	require.Error(t, err)
	assert.Contains(t, err.Error(), filepath.Join(res, "prompt-sanitizer")+" does not exist")
}

func TestFind_Override(t *testing.T) {
	work := t.TempDir()
	res := t.TempDir()
	touch(t, filepath.Join(res, "prompt-sanitizer"))
	custom := touch(t, filepath.Join(t.TempDir(), "my-engine"))

	l := New(Options{GOOS: "linux", WorkDir: work, ResourceDir: staticDir(res), Override: custom})
	c, err := l.Resolve()
	require.NoError(t, err)
	assert.Equal(t, custom, c.Path)
	assert.Len(t, l.Candidates(), 1)
}

func TestFind_OverrideMissingDoesNotFallBack(t *testing.T) {
	work := t.TempDir()
	touch(t, filepath.Join(work, "bin", "prompt-sanitizer"))

	_, err := New(Options{GOOS: "linux", WorkDir: work, Override: "/nonexistent/engine"}).Find()
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrLocator)
	assert.Contains(t, err.Error(), "configured engine path not found: /nonexistent/engine")
}

func TestCandidates_Order(t *testing.T) {
	l := New(Options{GOOS: "linux", WorkDir: "w", ResourceDir: staticDir("r")})
	cs := l.Candidates()
	require.Len(t, cs, 9)
	assert.Equal(t, filepath.Join("r", "prompt-sanitizer"), cs[0].Path)
	assert.Equal(t, filepath.Join("w", "bin", "prompt-sanitizer.exe"), cs[1].Path)
	assert.Equal(t, filepath.Join("w", "bin", "prompt-sanitizer"), cs[2].Path)
	assert.Equal(t, filepath.Join("w", "..", "..", "engine", "go", "cmd", "main.exe"), cs[5].Path)
	assert.Equal(t, filepath.Join("w", "..", "..", "engine", "go", "cmd", "prompt-sanitizer"), cs[8].Path)
}

func TestNew_Defaults(t *testing.T) {
	l := New(Options{})
	assert.Equal(t, DefaultName, l.opts.Name)
	assert.Equal(t, ".", l.opts.WorkDir)
	assert.NotEmpty(t, l.opts.GOOS)
}

func TestExecutableDir(t *testing.T) {
	dir, err := ExecutableDir()
	require.NoError(t, err)
	assert.DirExists(t, dir)
}
