// Copyright 2026 The SVPP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sv

import (
	"testing"
)

func TestRedefineIdentical(t *testing.T) {
	src := "`define X 1\n`define X 1\n`X\n"
	if g, e := expandOK(t, src), "\n\n1\n"; g != e {
		t.Fatalf("got %q, expected %q", g, e)
	}
}

func TestRedefineDifferent(t *testing.T) {
	out, diags := expandString(t, "`define X 1\n`define X 2\n`X\n")
	expectDiag(t, diags, 1, "macro X redefined")
	if g, e := out, "\n\n2\n"; g != e {
		t.Fatalf("got %q, expected %q", g, e)
	}
}

func TestRedefineDifferentFormals(t *testing.T) {
	_, diags := expandString(t, "`define X(a) a\n`define X(b) b\n")
	expectDiag(t, diags, 1, "macro X redefined")
}

func TestRedefineBuiltin(t *testing.T) {
	out, diags := expandString(t, "`define __svpp__ 2\n`__svpp__\n")
	expectDiag(t, diags, 1, "macro __svpp__ redefined")
	if g, e := out, "\n1\n"; g != e {
		t.Fatalf("got %q, expected %q", g, e)
	}
}

func TestUndef(t *testing.T) {
	_, diags := expandString(t, "`define X 1\n`undef X\n`X\n")
	expectDiag(t, diags, 1, "unknown macro or compiler directive `X")
}

func TestUndefUnknown(t *testing.T) {
	_, diags := expandString(t, "`undef NOPE\n")
	expectDiag(t, diags, 1, "macro NOPE is not defined")
}

func TestUndefBuiltin(t *testing.T) {
	_, diags := expandString(t, "`undef __LINE__\n")
	expectDiag(t, diags, 1, "built-in macro __LINE__ cannot be undefined")
}

func TestUndefineAll(t *testing.T) {
	p := New(nil)
	if err := p.SetSource(NewStringSource("test.sv", "`define X 1\n`undefineall\n")); err != nil {
		t.Fatal(err)
	}

	p.All()
	if p.Defined("X") {
		t.Fatal("X still defined")
	}

	// Builtins survive.
	for _, nm := range []string{"__FILE__", "__LINE__", "__svpp__"} {
		if !p.Defined(nm) {
			t.Fatalf("%s not defined", nm)
		}
	}
}

func TestEscapedIdentifierMacroName(t *testing.T) {
	if g, e := expandOK(t, "`define \\FOO 1\n`FOO\n"), "\n1\n"; g != e {
		t.Fatalf("got %q, expected %q", g, e)
	}
}

func TestIsSameMacro(t *testing.T) {
	p := New(nil)
	if err := p.SetSource(NewStringSource("test.sv", "`define A(x, y = 1) x y\n`define B(x, y = 1) x y\n`define C(x, y = 2) x y\n")); err != nil {
		t.Fatal(err)
	}

	p.All()
	a := p.macros[dict.SID("A")].syntax
	b := p.macros[dict.SID("B")].syntax
	c := p.macros[dict.SID("C")].syntax
	if !IsSameMacro(a, b) {
		t.Fatal("A and B differ")
	}

	if IsSameMacro(a, c) {
		t.Fatal("A and C considered same")
	}
}

func TestPredefine(t *testing.T) {
	p := New(nil)
	p.Define("WIDTH=8")
	p.Define("DEBUG")
	if !p.Defined("WIDTH") || !p.Defined("DEBUG") {
		t.Fatal("predefines not installed")
	}

	if err := p.SetSource(NewStringSource("test.sv", "`WIDTH\n")); err != nil {
		t.Fatal(err)
	}

	if g, e := Render(p.All()), "8\n"; g != e {
		t.Fatalf("got %q, expected %q", g, e)
	}

	if err := p.Error(); err != nil {
		t.Fatal(err)
	}
}

func TestPredefineUndef(t *testing.T) {
	p := New(nil)
	p.Define("X=1")
	p.Undef("X")
	if p.Defined("X") {
		t.Fatal("X still defined")
	}
}

func TestDefineMissingName(t *testing.T) {
	_, diags := expandString(t, "`define\nx\n")
	expectDiag(t, diags, 1, "expected identifier")
}
