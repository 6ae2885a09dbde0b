// Copyright 2026 The SVPP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sv

import (
	"testing"
)

func TestDefaultArgument(t *testing.T) {
	src := "`define D(x, y = 2) x + y\n"
	for _, v := range []struct{ use, expect string }{
		{"`D(1)", "\n1 + 2\n"},
		{"`D(1, 3)", "\n1 + 3\n"},
		{"`D()", "\n + 2\n"},
	} {
		if g, e := expandOK(t, src+v.use+"\n"), v.expect; g != e {
			t.Fatalf("%s: got %q, expected %q", v.use, g, e)
		}
	}
}

func TestTooManyArguments(t *testing.T) {
	out, diags := expandString(t, "`define D(x, y = 2) x + y\n`D(1, 2, 3)\n")
	expectDiag(t, diags, 1, "too many arguments")
	if g, e := out, "\n\n"; g != e {
		t.Fatalf("got %q, expected %q", g, e)
	}
}

func TestNotEnoughArguments(t *testing.T) {
	_, diags := expandString(t, "`define E(x, y) x y\n`E(1)\n")
	expectDiag(t, diags, 1, "not enough arguments")
}

func TestMissingArgumentList(t *testing.T) {
	out, diags := expandString(t, "`define F(x) x\n`F 1\n")
	expectDiag(t, diags, 1, "expected macro arguments")
	if g, e := out, "\n 1\n"; g != e {
		t.Fatalf("got %q, expected %q", g, e)
	}
}

func TestEmptyArgumentPastesToNothing(t *testing.T) {
	src := "`define CAT(a, b) a``b\n`CAT(x, )\n"
	if g, e := expandOK(t, src), "\nx\n"; g != e {
		t.Fatalf("got %q, expected %q", g, e)
	}
}

func TestNestedDelimitersInArgument(t *testing.T) {
	src := "`define ID(x) x\n`ID({a, b[1], (c)})\n"
	if g, e := expandOK(t, src), "\n{a, b[1], (c)}\n"; g != e {
		t.Fatalf("got %q, expected %q", g, e)
	}
}

func TestUnbalancedDelimiterInArgument(t *testing.T) {
	_, diags := expandString(t, "`define F(x) x\n`F([1, 2)\n")
	if len(diags) == 0 {
		t.Fatal("expected diagnostics")
	}

	expectDiag(t, diags, len(diags), "unbalanced [")
}

func TestArgumentSpanningLines(t *testing.T) {
	src := "`define ID(x) x\n`ID(a +\nb)\n"
	if g, e := expandOK(t, src), "\na +\nb\n"; g != e {
		t.Fatalf("got %q, expected %q", g, e)
	}
}

func TestDefaultStopsAtComma(t *testing.T) {
	src := "`define D(x = 1, y = 2) x + y\n`D()\n"
	if g, e := expandOK(t, src), "\n1 + 2\n"; g != e {
		t.Fatalf("got %q, expected %q", g, e)
	}
}

func TestDefaultWithDelimiters(t *testing.T) {
	src := "`define D(x = (1, 2)) x\n`D()\n"
	if g, e := expandOK(t, src), "\n(1, 2)\n"; g != e {
		t.Fatalf("got %q, expected %q", g, e)
	}
}
