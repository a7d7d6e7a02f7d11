// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package run provides the execution control for the interpreter: the
// read-eval-print loop, the meta-command dispatcher, and script
// loading. It is factored out of main so it can be used for tests.
package run

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/thinpo/tik/exec"
	"github.com/thinpo/tik/parse"
	"github.com/thinpo/tik/value"
)

const historyFile = ".tik_history"

// loopOverheadNS is the measured cost of one empty timing iteration,
// subtracted from \t results.
var loopOverheadNS int64

var calibrateSink int

// Calibrate measures the timing loop overhead against a 200,000
// iteration empty loop. Called once at startup.
func Calibrate() {
	const n = 200000
	start := time.Now()
	for i := 0; i < n; i++ {
		calibrateNop()
	}
	loopOverheadNS = time.Since(start).Nanoseconds() / n
}

//go:noinline
func calibrateNop() {
	calibrateSink++
}

// Run reads and executes lines from r until EOF or \q. The return
// value reports whether the stream ended cleanly (EOF or quit).
func Run(p *parse.Parser, ctx *exec.Context, r io.Reader, interactive bool) bool {
	conf := ctx.Config()
	sc := bufio.NewScanner(r)
	for {
		if interactive {
			fmt.Fprint(conf.Output(), conf.Prompt())
		}
		if !sc.Scan() {
			return sc.Err() == nil
		}
		if Line(p, ctx, sc.Text()) {
			return true
		}
	}
}

// REPL runs the interactive loop with line editing and history.
// It returns when the user quits or closes the input.
func REPL(p *parse.Parser, ctx *exec.Context) {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		text, err := ln.Prompt(ctx.Config().Prompt())
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(ctx.Config().Output())
			return
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			return
		}
		if strings.TrimSpace(text) != "" {
			ln.AppendHistory(text)
		}
		if Line(p, ctx, text) {
			return
		}
	}
}

// Line executes one line of input: a comment, a meta-command, or
// source to compile and evaluate. It reports whether the caller
// should stop (the \q meta-command).
func Line(p *parse.Parser, ctx *exec.Context, line string) (quit bool) {
	line = strings.TrimRight(line, "\r\n")
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "/") {
		return false
	}
	if strings.HasPrefix(trimmed, "\\") {
		return meta(p, ctx, trimmed)
	}
	eval(p, ctx, line, true)
	return false
}

// eval compiles and runs one line, printing statement values when
// print is set. Errors print their four-byte token and, when fatal,
// terminate the process.
func eval(p *parse.Parser, ctx *exec.Context, line string, print bool) bool {
	conf := ctx.Config()
	return guard(ctx, func() {
		p.Line(line)
		ctx.EvalTop(func(w value.Word) {
			if print {
				fmt.Fprintln(conf.Output(), value.Sprint(ctx, w))
			}
			ctx.Mem().Release(w)
		})
	})
}

// meta handles the backslash commands:
//
//	\q          quit
//	\l FILE     load and execute a script
//	\t [N] EXPR time N iterations of EXPR, print ns/iteration
//	\w          workspace size in bytes
//	\v          defined variable letters
//	\?          verb table
func meta(p *parse.Parser, ctx *exec.Context, line string) (quit bool) {
	conf := ctx.Config()
	out := conf.Output()
	cmd, rest := line, ""
	if i := strings.IndexByte(line, ' '); i >= 0 {
		cmd, rest = line[:i], strings.TrimSpace(line[i+1:])
	}
	switch cmd {
	case `\q`:
		return true
	case `\l`:
		if rest == "" {
			fmt.Fprintln(conf.ErrOutput(), " prs")
			return false
		}
		Script(p, ctx, rest)
	case `\t`:
		timeExpr(p, ctx, rest)
	case `\w`:
		fmt.Fprintln(out, ctx.Mem().WorkspaceBytes())
	case `\v`:
		fmt.Fprintln(out, ctx.VarNames())
	case `\?`:
		fmt.Fprintln(out, value.Help())
	default:
		fmt.Fprintln(conf.ErrOutput(), " prs")
	}
	return false
}

// timeExpr evaluates \t: an optional iteration count, then an
// expression, timed and reported as nanoseconds per iteration.
func timeExpr(p *parse.Parser, ctx *exec.Context, rest string) {
	conf := ctx.Config()
	n := 1
	if i := strings.IndexByte(rest, ' '); i > 0 {
		if count, err := strconv.Atoi(rest[:i]); err == nil && count > 0 {
			n = count
			rest = strings.TrimSpace(rest[i+1:])
		}
	}
	if rest == "" {
		fmt.Fprintln(conf.ErrOutput(), " prs")
		return
	}
	// Compile once; time only the evaluation.
	ok := guard(ctx, func() { p.Line(rest) })
	if !ok {
		return
	}
	release := func(w value.Word) { ctx.Mem().Release(w) }
	start := time.Now()
	for i := 0; i < n; i++ {
		if !guard(ctx, func() { ctx.EvalTop(release) }) {
			return
		}
	}
	per := time.Since(start).Nanoseconds()/int64(n) - loopOverheadNS
	if per < 0 {
		per = 0
	}
	fmt.Fprintln(conf.Output(), per)
}

// guard runs f, turning a raised Error into a printed token.
func guard(ctx *exec.Context, f func()) (ok bool) {
	conf := ctx.Config()
	defer func() {
		e := recover()
		if e == nil {
			return
		}
		if err, isErr := e.(value.Error); isErr {
			fmt.Fprintln(conf.ErrOutput(), err)
			if err.Fatal() {
				os.Exit(1)
			}
			ok = false
			return
		}
		panic(e)
	}()
	f()
	return true
}

// Script opens and executes a file as if its lines had been typed.
func Script(p *parse.Parser, ctx *exec.Context, path string) bool {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(ctx.Config().ErrOutput(), "tik: %s\n", err)
		return false
	}
	defer f.Close()
	return Run(p, ctx, f, false)
}
