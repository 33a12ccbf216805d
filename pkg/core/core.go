package core

import (
	"go.uber.org/zap"

	"github.com/prompt-sanitizer/host/internal/errs"
	"github.com/prompt-sanitizer/host/internal/host"
	"github.com/prompt-sanitizer/host/internal/locator"
	"github.com/prompt-sanitizer/host/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type Request = types.Request
type Response = types.Response
type Finding = types.Finding
type Stats = types.Stats

// Error sentinels, for errors.Is.
var (
	ErrLocator       = errs.ErrLocator
	ErrEncode        = errs.ErrEncode
	ErrSpawn         = errs.ErrSpawn
	ErrWrite         = errs.ErrWrite
	ErrEngine        = errs.ErrEngine
	ErrDecode        = errs.ErrDecode
	ErrIO            = errs.ErrIO
	ErrUnimplemented = errs.ErrUnimplemented
)

// Options control engine discovery for the facade calls.
type Options struct {
	// EnginePath pins the engine executable. Discovery is skipped.
	EnginePath string
	// ResourceDir holds a packaged engine. Defaults to the directory of the
	// running executable.
	ResourceDir string
	// WorkDir anchors the development build locations. Defaults to ".".
	WorkDir string
	// SearchPATH also looks the engine up on $PATH.
	SearchPATH bool
	// DiagnosticLimit bounds engine output quoted in errors.
	DiagnosticLimit int
	Logger          *zap.Logger
}

func (o Options) locator() *locator.Locator {
	lo := locator.Options{
		Override:    o.EnginePath,
		WorkDir:     o.WorkDir,
		SearchPATH:  o.SearchPATH,
		ResourceDir: locator.ExecutableDir,
	}
	if o.ResourceDir != "" {
		dir := o.ResourceDir
		lo.ResourceDir = func() (string, error) { return dir, nil }
	}
	return locator.New(lo)
}

// Sanitize is the stable entrypoint for other programs: it locates the engine
// and runs one request through it.
func Sanitize(req Request, opts Options) (Response, error) {
	svc := host.New(opts.locator(), opts.Logger, host.WithDiagnosticLimit(opts.DiagnosticLimit))
	return svc.Sanitize(req)
}

// Locate returns the engine executable Sanitize would run.
func Locate(opts Options) (string, error) {
	return opts.locator().Find()
}
