// Package locator resolves the sanitization engine executable across packaged
// and development layouts.
package locator

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/prompt-sanitizer/host/internal/errs"
)

// DefaultName is the engine executable base name, without platform suffix.
const DefaultName = "prompt-sanitizer"

// Candidate is one place the engine may live.
type Candidate struct {
	Description string
	Path        string
}

// Options describe the host context the locator searches from.
type Options struct {
	// Name is the engine base name. Defaults to DefaultName.
	Name string
	// GOOS selects the executable suffix convention. Defaults to runtime.GOOS.
	GOOS string
	// WorkDir anchors the development candidates. Defaults to ".".
	WorkDir string
	// ResourceDir reports the packaged-resource directory. Nil or an error
	// means the host is not running from a package.
	ResourceDir func() (string, error)
	// Override is an explicit engine path. When set it is the only candidate.
	Override string
	// SearchPATH appends an $PATH lookup after the development candidates.
	SearchPATH bool
}

// Locator finds the engine executable. It holds no mutable state.
type Locator struct {
	opts Options
}

// New creates a locator with defaults applied.
func New(opts Options) *Locator {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}
	return &Locator{opts: opts}
}

// ExecutableDir is the default ResourceDir: the directory holding the running
// host binary, which is where installers place bundled sidecars.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

func (l *Locator) exeName(base string) string {
	if l.opts.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}

// packaged returns the packaged candidate and whether a resource directory
// was available at all.
func (l *Locator) packaged() (Candidate, bool) {
	if l.opts.ResourceDir == nil {
		return Candidate{}, false
	}
	dir, err := l.opts.ResourceDir()
	if err != nil || dir == "" {
		return Candidate{}, false
	}
	return Candidate{
		Description: "packaged resource directory",
		Path:        filepath.Join(dir, l.exeName(l.opts.Name)),
	}, true
}

// development lists the conventional build-output locations, in order.
func (l *Locator) development() []Candidate {
	layouts := []struct {
		desc string
		dir  string
		base string
	}{
		{"development bin/", "bin", l.opts.Name},
		{"tauri src-tauri/bin/", filepath.Join("src-tauri", "bin"), l.opts.Name},
		{"engine build output", filepath.Join("..", "..", "engine", "go", "cmd"), "main"},
		{"engine build output", filepath.Join("..", "..", "engine", "go", "cmd"), l.opts.Name},
	}
	var out []Candidate
	for _, lay := range layouts {
		for _, name := range []string{lay.base + ".exe", lay.base} {
			out = append(out, Candidate{
				Description: lay.desc,
				Path:        filepath.Join(l.opts.WorkDir, lay.dir, name),
			})
		}
	}
	return out
}

// Candidates returns the ordered search list. An override replaces the list;
// otherwise the packaged candidate, when available, always comes first.
func (l *Locator) Candidates() []Candidate {
	if l.opts.Override != "" {
		return []Candidate{{Description: "configured engine path", Path: l.opts.Override}}
	}
	var out []Candidate
	if c, ok := l.packaged(); ok {
		out = append(out, c)
	}
	return append(out, l.development()...)
}

// Find returns the path of the first existing candidate.
func (l *Locator) Find() (string, error) {
	c, err := l.Resolve()
	if err != nil {
		return "", err
	}
	return c.Path, nil
}

// Resolve returns the first existing candidate. The check is existence only;
// an engine that cannot be executed fails later when it is spawned.
func (l *Locator) Resolve() (Candidate, error) {
	if l.opts.Override != "" {
		if exists(l.opts.Override) {
			return Candidate{Description: "configured engine path", Path: l.opts.Override}, nil
		}
		return Candidate{}, errs.New(errs.KindLocator, "locate", "configured engine path not found: %s", l.opts.Override)
	}

	for _, c := range l.Candidates() {
		if exists(c.Path) {
			return c, nil
		}
	}

	if l.opts.SearchPATH {
		if p, err := exec.LookPath(l.opts.Name); err == nil {
			return Candidate{Description: "$PATH", Path: p}, nil
		}
	}

	return Candidate{}, l.notFound()
}

func (l *Locator) notFound() error {
	var b strings.Builder
	b.WriteString("engine executable not found.\n")
	if c, ok := l.packaged(); ok {
		b.WriteString("  not packaged: " + c.Path + " does not exist\n")
	} else {
		b.WriteString("  not packaged: no packaged resource directory available\n")
	}
	b.WriteString("  not built: searched")
	for _, c := range l.development() {
		b.WriteString("\n    " + c.Path)
	}
	if l.opts.SearchPATH {
		b.WriteString("\n    $PATH (" + l.opts.Name + ")")
	}
	b.WriteString("\n\nBuild the engine into bin/ or set PROMPTSAN_ENGINE to its path.")
	return errs.New(errs.KindLocator, "locate", "%s", b.String())
}

func exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
