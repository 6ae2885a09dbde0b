// Copyright 2026 The SVPP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sv

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	lx := newLexer(newContext(nil), "test.sv", []byte(src))
	var toks []Token
	for {
		tok := lx.next()
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks
		}
	}
}

func kinds(toks []Token) []TokenKind {
	var r []TokenKind
	for _, v := range toks {
		r = append(r, v.Kind)
	}
	return r
}

func TestLexRoundTrip(t *testing.T) {
	for _, src := range []string{
		"module m; // c\n/* b */ x = 12_3 \"s\\\"t\";\nendmodule\n",
		"`define FOO(a, b) a``b `\"x`\" `\\`\"\n",
		"a \\\nb\n",
		"\\bus$sel x\n",
		"a ` b\n",
	} {
		if g, e := Render(lexAll(t, src)), src; g != e {
			t.Fatalf("got %q, expected %q", g, e)
		}
	}
}

func TestLexKinds(t *testing.T) {
	toks := lexAll(t, "`define FOO(x) `\"x`` `\\`\" 12\"s\"\n")
	e := []TokenKind{
		Directive, Identifier, OpenParen, Identifier, CloseParen,
		MacroQuote, Identifier, MacroPaste, MacroEscapedQuote,
		IntegerLiteral, StringLiteral, EOF,
	}
	if diff := cmp.Diff(e, kinds(toks)); diff != "" {
		t.Fatalf("kinds mismatch (-expected +got):\n%s", diff)
	}
}

func TestLexKeyword(t *testing.T) {
	toks := lexAll(t, "module foo\n")
	if g, e := toks[0].Kind, Keyword; g != e {
		t.Fatalf("got %v, expected %v", g, e)
	}

	if g, e := toks[1].Kind, Identifier; g != e {
		t.Fatalf("got %v, expected %v", g, e)
	}
}

func TestLexEscapedIdentifier(t *testing.T) {
	toks := lexAll(t, "\\bus$sel x\n")
	if g, e := toks[0].Kind, Identifier; g != e {
		t.Fatalf("got %v, expected %v", g, e)
	}

	if g, e := toks[0].ValueText(), "bus$sel"; g != e {
		t.Fatalf("got %q, expected %q", g, e)
	}
}

func TestLexLineContinuation(t *testing.T) {
	toks := lexAll(t, "a \\\nb\n")
	e := []TokenKind{Identifier, LineContinuation, Identifier, EOF}
	if diff := cmp.Diff(e, kinds(toks)); diff != "" {
		t.Fatalf("kinds mismatch (-expected +got):\n%s", diff)
	}

	// The continuation swallows its newline; b continues the logical line.
	if !toks[2].OnSameLine() {
		t.Fatal("token after line continuation not on same line")
	}
}

func TestLexOnSameLine(t *testing.T) {
	toks := lexAll(t, "a\nb /* x\ny */ c d\n")
	for i, e := range []bool{true, false, false, true, false} {
		if g := toks[i].OnSameLine(); g != e {
			t.Fatalf("token %d: got %v, expected %v", i, g, e)
		}
	}
}

func TestLexDirectiveKind(t *testing.T) {
	toks := lexAll(t, "`define `undef `undefineall `foo\n")
	for i, e := range []DirectiveKind{DefineDirective, UndefDirective, UndefineAllDirective, MacroUsage} {
		if g := toks[i].DirectiveKind(); g != e {
			t.Fatalf("token %d: got %v, expected %v", i, g, e)
		}
	}
}

func TestLexUnterminatedString(t *testing.T) {
	ctx := newContext(nil)
	lx := newLexer(ctx, "test.sv", []byte("x = \"abc\ny\n"))
	var toks []Token
	for {
		tok := lx.next()
		toks = append(toks, tok)
		if tok.Kind == EOF {
			break
		}
	}

	if g, e := toks[2].Kind, StringLiteral; g != e {
		t.Fatalf("got %v, expected %v", g, e)
	}

	if g := len(ctx.diags); g != 1 {
		t.Fatalf("got %d diagnostics, expected 1", g)
	}

	if g, e := ctx.diags[0].Code, ExpectedClosingQuote; g != e {
		t.Fatalf("got %v, expected %v", g, e)
	}
}

func TestConcatenateTokens(t *testing.T) {
	ctx := newContext(nil)
	toks := lexAll(t, "fo o 1 2 x +\n")
	if g := ctx.concatenateTokens(toks[0], toks[1]); g.Text() != "foo" || g.Kind != Identifier {
		t.Fatalf("got %v %q", g.Kind, g.Text())
	}

	if g := ctx.concatenateTokens(toks[2], toks[3]); g.Text() != "12" || g.Kind != IntegerLiteral {
		t.Fatalf("got %v %q", g.Kind, g.Text())
	}

	// "x+" does not re-lex to a single token.
	if g := ctx.concatenateTokens(toks[4], toks[5]); g.Valid() {
		t.Fatalf("got %v %q, expected invalid", g.Kind, g.Text())
	}
}

func TestStringifyTokens(t *testing.T) {
	ctx := newContext(nil)
	toks := lexAll(t, "a + b\n")
	g := ctx.stringifyTokens(Location{}, nil, toks[:3])
	if e := "\"a + b\""; g.Text() != e {
		t.Fatalf("got %q, expected %q", g.Text(), e)
	}

	if s, ok := g.StringValue(); !ok || s != "a + b" {
		t.Fatalf("got %q %v", s, ok)
	}
}

func TestTokenValues(t *testing.T) {
	toks := lexAll(t, "12_3 \"a\\tb\"\n")
	if n, ok := toks[0].IntValue(); !ok || n != 123 {
		t.Fatalf("got %v %v", n, ok)
	}

	if s, ok := toks[1].StringValue(); !ok || s != "a\tb" {
		t.Fatalf("got %q %v", s, ok)
	}
}
