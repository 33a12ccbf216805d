// Package host exposes the operations an interactive application invokes:
// sanitize, read_file and the file dialog stub. Each call is independent; a
// Service may be shared by any number of goroutines.
package host

import (
	"os"
	"unicode/utf8"

	semver "github.com/blang/semver/v4"
	"go.uber.org/zap"

	"github.com/prompt-sanitizer/host/internal/bridge"
	"github.com/prompt-sanitizer/host/internal/errs"
	"github.com/prompt-sanitizer/host/internal/types"
)

// Locator resolves the engine executable for each call.
type Locator interface {
	Find() (string, error)
}

// Service implements the host commands.
type Service struct {
	locator    Locator
	log        *zap.Logger
	diagLimit  int
	minVersion *semver.Version
}

// Option configures a Service.
type Option func(*Service)

// WithDiagnosticLimit bounds engine output quoted in errors.
func WithDiagnosticLimit(n int) Option {
	return func(s *Service) { s.diagLimit = n }
}

// WithMinEngineVersion logs a warning whenever the engine reports an older
// version. The response is still returned.
func WithMinEngineVersion(v semver.Version) Option {
	return func(s *Service) { s.minVersion = &v }
}

// New creates a Service. A nil logger discards output.
func New(loc Locator, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{locator: loc, log: log}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Sanitize locates the engine and runs one round trip. Errors from either
// stage are returned unchanged.
func (s *Service) Sanitize(req types.Request) (types.Response, error) {
	path, err := s.locator.Find()
	if err != nil {
		return types.Response{}, err
	}
	b := bridge.New(path, bridge.WithLogger(s.log), bridge.WithDiagnosticLimit(s.diagLimit))
	resp, err := b.Sanitize(req)
	if err != nil {
		return types.Response{}, err
	}
	s.checkEngineVersion(resp.Version)
	return resp, nil
}

func (s *Service) checkEngineVersion(reported string) {
	if s.minVersion == nil {
		return
	}
	v, err := semver.ParseTolerant(reported)
	if err != nil {
		s.log.Debug("engine version is not semver", zap.String("engine_version", reported))
		return
	}
	if v.LT(*s.minVersion) {
		s.log.Warn("engine is older than the configured minimum",
			zap.String("engine_version", v.String()),
			zap.String("min_version", s.minVersion.String()),
		)
	}
}

// ReadFile returns the whole file at path as text. No path policy is applied.
func (s *Service) ReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", errs.Wrap(errs.KindIO, "read_file", err, "failed to read file")
	}
	if !utf8.Valid(b) {
		return "", errs.New(errs.KindIO, "read_file", "failed to read file: %s is not valid UTF-8 text", path)
	}
	return string(b), nil
}

// OpenFileDialog is not wired to a native dialog. It fails the same way on
// every call.
func (s *Service) OpenFileDialog() (string, error) {
	return "", errs.New(errs.KindUnimplemented, "open_file_dialog",
		"file dialog is not configured for this host; enter a file path or paste the text instead")
}
