// Package promptsan provides the command-line host for the prompt sanitizer
// engine. It resolves the engine, forwards sanitize requests to it and
// renders the results; `serve` exposes the same commands as MCP tools over
// stdio for an embedding application.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/prompt-sanitizer/host/cmd/promptsan"
//	func main() { promptsan.Execute() }
package promptsan
