//go:build !componentstore_debug

// Package debugcheck centralizes the engine's debug-build assertions: the
// source's debug_assert! calls become no-ops in release builds (this file)
// and panics in builds compiled with -tags componentstore_debug (see
// debugcheck_debug.go). Release code must never pay for these checks.
package debugcheck

// Enabled reports whether assertions are compiled in.
const Enabled = false

// Assert is a no-op in release builds. cond and msg are still evaluated by
// the caller's expression, so callers should keep the check itself cheap.
func Assert(cond bool, msg string) {}

// Assertf is the no-op, lazily-formatted counterpart of Assert, avoiding
// the cost of Sprintf on the release hot path.
func Assertf(cond bool, format string, args ...any) {}
