// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Tik is a terse array-language interpreter: typed rank-1 arrays and
// small matrices, right-to-left evaluation, vectorized kernels.
//
// Usage:
//
//	tik [-n N] [script-file ...]
//
// The -n flag sets the worker count for large kernels. Script files
// run in order as if typed; with a terminal on standard input, an
// interactive session follows.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/thinpo/tik/config"
	"github.com/thinpo/tik/exec"
	"github.com/thinpo/tik/parse"
	"github.com/thinpo/tik/run"
)

var (
	workers = flag.Int("n", 1, "worker count for large kernels")
	seed    = flag.Uint64("seed", 0, "random seed; 0 selects the fixed default")
	prompt  = flag.String("prompt", "", "command prompt")
)

var conf config.Config

func main() {
	log.SetFlags(0)
	log.SetPrefix("tik: ")

	flag.Usage = usage
	flag.Parse()

	conf.SetWorkers(*workers)
	conf.SetSeed(*seed)
	conf.SetPrompt(*prompt)

	run.Calibrate()
	ctx := exec.NewContext(&conf)
	p := parse.NewParser(ctx)

	for _, name := range flag.Args() {
		if !run.Script(p, ctx, name) {
			os.Exit(1)
		}
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		run.REPL(p, ctx)
	} else if len(flag.Args()) == 0 {
		if !run.Run(p, ctx, os.Stdin, false) {
			os.Exit(1)
		}
	}
	os.Exit(0)
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: tik [options] [script-file ...]\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
	os.Exit(2)
}
