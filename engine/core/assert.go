package core

import "fmt"

// Assert panics when cond is false. Reserved for violated internal
// invariants (stale handle reaching Get, pool corruption) — never used for
// conditions an external caller could trigger through ordinary misuse.
func Assert(cond bool, msg string, args ...interface{}) {
	if !cond {
		LogError(msg, args...)
		panic(fmt.Sprintf(msg, args...))
	}
}
