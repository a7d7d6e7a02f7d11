// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package value

import "fmt"

// Error is the type of all execution errors. Errors are raised by
// panicking with an Error and recovered at the run loop; anything else
// that reaches the recover is a genuine crash and is re-panicked.
//
// The error text is a one-byte context glyph (the failing verb, the
// letter of an unbound variable or failing scope, or a space when
// there is none) followed by a four-byte token naming the
// kind. Out-of-memory and refcount-overflow are fatal: the run loop
// terminates the process when it sees them.
type Error string

func (err Error) Error() string {
	return string(err)
}

// The four-byte error tokens.
const (
	errNYI    = " nyi" // not yet implemented
	errRank   = " rnk" // shape mismatch
	errLength = " len" // element-count mismatch
	errType   = " typ" // no kernel for this tag combination
	errDomain = " dom" // argument outside the verb's domain
	errIndex  = " idx" // index out of bounds
	errMemory = " oom" // pool or handle table exhausted; fatal
	errRef    = " ref" // refcount overflow; fatal
	errParse  = " prs" // malformed source
	errInUse  = " stk" // scope redefined or re-entered while active
)

// Fatal reports whether err must terminate the process.
func (err Error) Fatal() bool {
	s := string(err)
	if len(s) < 4 {
		return false
	}
	switch s[len(s)-4:] {
	case errMemory, errRef:
		return true
	}
	return false
}

// Errorf panics with a formatted Error.
func Errorf(format string, args ...interface{}) {
	panic(Error(fmt.Sprintf(format, args...)))
}

// throw panics with the token for kind, prefixed by the context glyph.
func throw(glyph byte, kind string) {
	panic(Error(string(glyph) + kind))
}
