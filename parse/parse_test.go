// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import (
	"strings"
	"testing"

	"github.com/thinpo/tik/config"
	"github.com/thinpo/tik/exec"
	"github.com/thinpo/tik/value"
)

// evalLines compiles and evaluates each line, returning every printed
// value as text.
func evalLines(t *testing.T, lines ...string) []string {
	t.Helper()
	ctx := exec.NewContext(&config.Config{})
	p := NewParser(ctx)
	var out []string
	for _, line := range lines {
		p.Line(line)
		ctx.EvalTop(func(w value.Word) {
			out = append(out, value.Sprint(ctx, w))
			ctx.Mem().Release(w)
		})
	}
	ctx.Teardown()
	if n := ctx.Mem().Live(); n != 0 {
		t.Fatalf("%q leaks %d handles", lines, n)
	}
	return out
}

func evalOne(t *testing.T, line string) string {
	t.Helper()
	out := evalLines(t, line)
	if len(out) != 1 {
		t.Fatalf("%q printed %d values: %v", line, len(out), out)
	}
	return out[0]
}

type evalTest struct {
	input string
	want  string
}

var evalTests = []evalTest{
	{"+/!10", "45"},
	{"2*3+4", "14"},
	{"x:1 2 3; x+x", "2 4 6"},
	{`"abc","de"`, "abcde"},
	{"1+1", "2"},
	{"-3", "-3"},
	{"2*-3", "-6"},
	{"(1+2)*3", "9"},
	{"1 2 3+10", "11 12 13"},
	{"10+1 2 3", "11 12 13"},
	{"1.5+1", "2.5"},
	{"!5", "0 1 2 3 4"},
	{"|!5", "4 3 2 1 0"},
	{"#!7", "7"},
	{"*7 8 9", "7"},
	{"3#1 2", "1 2 1"},
	{"2_1 2 3 4", "3 4"},
	{"1 2 3[1]", "2"},
	{"2 4 6@2", "6"},
	{"7!3", "1"},
	{"10 11 12!5", "0 1 2"},
	{"2<1 2 3", "0 0 1"},
	{"3&5", "3"},
	{"3|5", "5"},
	{"&/4 1 7", "1"},
	{"|/4 1 7", "7"},
	{"*/1 2 3 4", "24"},
	{"~0 1 2", "1 0 0"},
	{"@-5", "5"},
	{"_2.7", "2"},
	{"`i$1.9", "1"},
	{"`f$3", "3"},
	{"`a,`b", "`a `b"},
	{"2 3#!6", "0 1 2\n3 4 5"},
	{"+2 3#!6", "0 3\n1 4\n2 5"},
	{"!2 2#!4", "0 3"},
	{"a::{x+1}; a 4", "5"},
	{"a::x*x; a 5", "25"},
	{"<3 1 2", "1 2 0"},
	{">3 1 2", "0 2 1"},
	{"&0 2 0 1", "1 1 3"},
}

func TestEval(t *testing.T) {
	for _, test := range evalTests {
		if got := evalOne(t, test.input); got != test.want {
			t.Errorf("%q = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestStatements(t *testing.T) {
	out := evalLines(t, "1+1; 2+2")
	if len(out) != 2 || out[0] != "2" || out[1] != "4" {
		t.Fatalf("two statements printed %v", out)
	}
	// Assignments print nothing.
	out = evalLines(t, "x:5")
	if len(out) != 0 {
		t.Fatalf("assignment printed %v", out)
	}
	// Variables persist across lines.
	out = evalLines(t, "x:5", "x*2")
	if len(out) != 1 || out[0] != "10" {
		t.Fatalf("persistent variable: %v", out)
	}
}

func TestFloatsAndStrings(t *testing.T) {
	if got := evalOne(t, "0.5+0.25"); got != "0.75" {
		t.Errorf("0.5+0.25 = %q", got)
	}
	if got := evalOne(t, "1e10+0"); !strings.HasPrefix(got, "1e10") {
		t.Errorf("1e10 prints as %q", got)
	}
	if got := evalOne(t, `"hello"`); got != "hello" {
		t.Errorf("string echo = %q", got)
	}
	if got := evalOne(t, "`abc"); got != "`abc" {
		t.Errorf("symbol echo = %q", got)
	}
}

func TestUserFunctions(t *testing.T) {
	out := evalLines(t, "a::{x+1}", "a a 4")
	if len(out) != 1 || out[0] != "6" {
		t.Fatalf("a a 4 = %v", out)
	}
	// Redefinition takes effect.
	out = evalLines(t, "a::{x+1}", "a::{x*10}", "a 4")
	if len(out) != 1 || out[0] != "40" {
		t.Fatalf("redefined a 4 = %v", out)
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{"(1+2", "1+2)", "x[", "{1+1}", "1+", "+"}
	for _, input := range bad {
		err := catch(func() { evalBad(input) })
		if err == "" {
			t.Errorf("%q did not fail", input)
		}
	}
}

func evalBad(line string) {
	ctx := exec.NewContext(&config.Config{})
	p := NewParser(ctx)
	p.Line(line)
	ctx.EvalTop(func(w value.Word) { ctx.Mem().Release(w) })
}

func catch(f func()) (err value.Error) {
	defer func() {
		if e := recover(); e != nil {
			err = e.(value.Error)
		}
	}()
	f()
	return ""
}

func TestLiteralLimit(t *testing.T) {
	// More literal constants than slots must fail to compile.
	var b strings.Builder
	for i := 0; i < exec.MaxLits+1; i++ {
		if i > 0 {
			b.WriteString("+(")
		}
		b.WriteString("1")
	}
	for i := 0; i < exec.MaxLits; i++ {
		b.WriteString(")")
	}
	err := catch(func() { evalBad(b.String()) })
	if err == "" {
		t.Error("literal overflow did not fail")
	}
}
