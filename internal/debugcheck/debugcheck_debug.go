//go:build componentstore_debug

package debugcheck

import "fmt"

// Enabled reports whether assertions are compiled in.
const Enabled = true

// Assert panics with msg if cond is false.
func Assert(cond bool, msg string) {
	if !cond {
		panic("componentstore: " + msg)
	}
}

// Assertf panics with a formatted message if cond is false.
func Assertf(cond bool, format string, args ...any) {
	if !cond {
		panic("componentstore: " + fmt.Sprintf(format, args...))
	}
}
