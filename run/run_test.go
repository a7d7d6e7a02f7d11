// Copyright 2014 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package run

import (
	"bytes"
	"strings"
	"testing"

	"github.com/thinpo/tik/config"
	"github.com/thinpo/tik/exec"
	"github.com/thinpo/tik/parse"
)

func testSession() (*parse.Parser, *exec.Context, *bytes.Buffer, *bytes.Buffer) {
	var conf config.Config
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	conf.SetOutput(stdout)
	conf.SetErrOutput(stderr)
	ctx := exec.NewContext(&conf)
	return parse.NewParser(ctx), ctx, stdout, stderr
}

func TestRunReader(t *testing.T) {
	p, ctx, stdout, stderr := testSession()
	in := "x:2\nx*21\n/ comment\n\n1 2+3 4\n"
	if !Run(p, ctx, strings.NewReader(in), false) {
		t.Fatal("Run reported failure")
	}
	if stderr.Len() != 0 {
		t.Fatalf("stderr: %s", stderr)
	}
	want := "42\n4 6\n"
	if stdout.String() != want {
		t.Errorf("output = %q, want %q", stdout.String(), want)
	}
}

func TestRunQuit(t *testing.T) {
	p, ctx, stdout, _ := testSession()
	in := "1+1\n\\q\n2+2\n"
	if !Run(p, ctx, strings.NewReader(in), false) {
		t.Fatal("quit not clean")
	}
	if stdout.String() != "2\n" {
		t.Errorf("output after quit = %q", stdout.String())
	}
}

func TestErrorsResume(t *testing.T) {
	p, ctx, stdout, stderr := testSession()
	in := "1 2+1 2 3\n5+5\n"
	Run(p, ctx, strings.NewReader(in), false)
	if !strings.Contains(stderr.String(), " len") {
		t.Errorf("stderr = %q, want a len error", stderr.String())
	}
	if !strings.Contains(stdout.String(), "10") {
		t.Error("evaluation did not resume after the error")
	}
}

func TestCalibrate(t *testing.T) {
	Calibrate()
	if loopOverheadNS < 0 {
		t.Errorf("overhead %d < 0", loopOverheadNS)
	}
}
