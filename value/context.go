// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package value

import "github.com/thinpo/tik/config"

// Context is the execution context threaded through every operation.
// The only implementation is ../exec/Context, but the interface is
// defined here because the dispatch tables need it and the exec
// package depends on this one.
type Context interface {
	// Config returns the configuration state for evaluation.
	Config() *config.Config

	// Mem returns the memory core: handle table, pools, workers.
	Mem() *Mem
}
