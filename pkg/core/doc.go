// Package core provides a small, stable facade over the host's internal
// packages for programs that embed the sanitizer without the CLI.
//
// Example:
//
//	resp, err := core.Sanitize(core.Request{Text: prompt, Mode: "sanitize", Strategy: "redact", Level: "standard", SemanticMode: "off"}, core.Options{})
//	if errors.Is(err, core.ErrLocator) { /* engine not installed */ }
//	_ = core.MarshalResponse(os.Stdout, resp)
package core
