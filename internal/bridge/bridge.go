// Package bridge runs one request/response round trip against the engine
// executable: spawn, write the request to stdin, close it, wait, decode stdout.
//
// There is no retry, timeout or cancellation. The engine is a local, trusted,
// short-lived child; a call blocks until it exits. Every return path waits for
// the child, so its pipes are drained and closed before the call returns.
package bridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prompt-sanitizer/host/internal/errs"
	"github.com/prompt-sanitizer/host/internal/types"
)

// DefaultDiagnosticLimit bounds how much raw engine output is embedded in errors.
const DefaultDiagnosticLimit = 4096

// Bridge talks to one engine executable. It is safe for concurrent use: each
// call owns its own child process, pipes and buffers.
type Bridge struct {
	binaryPath string
	log        *zap.Logger
	diagLimit  int
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.log = l
		}
	}
}

// WithDiagnosticLimit bounds the engine output quoted in errors. Values <= 0
// keep the default.
func WithDiagnosticLimit(n int) Option {
	return func(b *Bridge) {
		if n > 0 {
			b.diagLimit = n
		}
	}
}

// New creates a bridge for the engine at binaryPath.
func New(binaryPath string, opts ...Option) *Bridge {
	b := &Bridge{
		binaryPath: binaryPath,
		log:        zap.NewNop(),
		diagLimit:  DefaultDiagnosticLimit,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Path returns the engine executable this bridge spawns.
func (b *Bridge) Path() string { return b.binaryPath }

// Sanitize sends req to the engine and returns its decoded, structurally
// checked response.
func (b *Bridge) Sanitize(req types.Request) (types.Response, error) {
	payload, err := types.MarshalRequest(req)
	if err != nil {
		return types.Response{}, errs.Wrap(errs.KindEncode, "sanitize", err, "failed to serialize request")
	}

	log := b.log.With(
		zap.String("call_id", uuid.NewString()),
		zap.String("text_fp", fmt.Sprintf("%016x", xxhash.Sum64String(req.Text))),
		zap.Int("text_bytes", len(req.Text)),
	)
	out, err := b.exchange(log, payload)
	if err != nil {
		return types.Response{}, err
	}

	resp, err := types.UnmarshalResponse(out)
	if err == nil {
		err = resp.Check()
	}
	if err == nil {
		err = resp.CheckSpans(req.Text)
	}
	if err != nil {
		log.Warn("engine response rejected", zap.Error(err))
		return types.Response{}, errs.New(errs.KindDecode, "sanitize",
			"failed to parse engine response: %v\n\nEngine output:\n%s", err, truncate(string(out), b.diagLimit))
	}

	log.Info("sanitize complete",
		zap.Int("findings", len(resp.Findings)),
		zap.Int("risk_score", resp.RiskScore),
		zap.String("engine_version", resp.Version),
	)
	return resp, nil
}

// Exchange performs one raw round trip: payload in, engine stdout out.
func (b *Bridge) Exchange(payload []byte) ([]byte, error) {
	return b.exchange(b.log.With(zap.String("call_id", uuid.NewString())), payload)
}

func (b *Bridge) exchange(log *zap.Logger, payload []byte) ([]byte, error) {
	started := time.Now()
	log = log.With(zap.String("engine", b.binaryPath))

	// No arguments: everything travels on stdin.
	cmd := exec.Command(b.binaryPath)
	setPlatformSpecificAttrs(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errs.Wrap(errs.KindSpawn, "spawn", err, "failed to open engine stdin")
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		log.Error("engine spawn failed", zap.Error(err))
		return nil, errs.Wrap(errs.KindSpawn, "spawn", err,
			"failed to start engine %s (make sure the engine binary is built and executable)", b.binaryPath)
	}

	_, writeErr := stdin.Write(payload)
	if closeErr := stdin.Close(); writeErr == nil {
		writeErr = closeErr
	}

	waitErr := cmd.Wait()
	log = log.With(
		zap.Int("bytes_in", len(payload)),
		zap.Int("bytes_out", stdout.Len()),
		zap.Int("exit_code", cmd.ProcessState.ExitCode()),
		zap.Duration("elapsed", time.Since(started)),
	)

	if waitErr != nil {
		log.Warn("engine failed", zap.Error(waitErr))
		return nil, b.engineFailure(waitErr, stderr.String(), stdout.String())
	}
	if writeErr != nil {
		log.Warn("engine request not delivered", zap.Error(writeErr))
		return nil, errs.Wrap(errs.KindWrite, "write", writeErr, "failed to send request to engine")
	}

	log.Debug("engine exited")
	return stdout.Bytes(), nil
}

// engineFailure builds the error for a non-zero exit. The engine reports its
// own failures as {"error": "..."} on stdout when stderr is empty.
func (b *Bridge) engineFailure(waitErr error, stderr, stdout string) error {
	diag := strings.TrimSpace(stderr)
	if diag == "" {
		diag = stdoutError(stdout)
	}
	if diag == "" {
		diag = strings.TrimSpace(stdout)
	}
	if diag == "" {
		diag = "(no output)"
	}
	diag = truncate(diag, b.diagLimit)

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return &errs.Error{
			Kind: errs.KindEngine,
			Op:   "sanitize",
			Msg:  fmt.Sprintf("engine failed (%s)\n\nEngine error output:\n%s", exitStatus(exitErr), diag),
		}
	}
	return errs.New(errs.KindEngine, "sanitize", "engine execution failed: %v\n\nEngine error output:\n%s", waitErr, diag)
}

// exitStatus names how the engine ended. A process killed by a signal has no
// exit code.
func exitStatus(exitErr *exec.ExitError) string {
	if code := exitErr.ExitCode(); code >= 0 {
		return fmt.Sprintf("exit code %d", code)
	}
	return exitErr.String()
}

func stdoutError(stdout string) string {
	var doc struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(stdout)), &doc); err != nil {
		return ""
	}
	return doc.Error
}

// truncate keeps at most limit bytes of s, cutting on a rune boundary.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return fmt.Sprintf("%s… (%d more bytes)", s[:cut], len(s)-cut)
}
