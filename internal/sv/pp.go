// Copyright 2026 The SVPP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sv

import (
	"strings"
)

// Preprocessor is the macro preprocessing engine. It consumes one source
// buffer, maintains the macro table across `define/`undef/`undefineall, and
// delivers the fully expanded token stream through Next or All.
//
// Use is single threaded.
type Preprocessor struct {
	*context
	lx        *lexer
	macros    map[int]macroDef
	macroToks []Token // Current fully expanded run.
	macroIdx  int     // Read cursor into macroToks.
	ungets    []Token
}

// New returns a newly created Preprocessor. tweaks being nil is the same as
// passing &Tweaks{}.
func New(tweaks *Tweaks) *Preprocessor {
	p := &Preprocessor{
		context: newContext(tweaks),
		macros:  map[int]macroDef{},
	}
	p.registerBuiltins()
	return p
}

// SetSource installs the input buffer to preprocess. Definitions made before
// the call, via Define or an earlier buffer, stay in effect.
func (p *Preprocessor) SetSource(src Source) error {
	b, err := loadSource(src)
	if err != nil {
		return err
	}

	p.lx = newLexer(p.context, src.Name(), b)
	return nil
}

// SourceManager returns the source manager holding all buffers and expansion
// records of p.
func (p *Preprocessor) SourceManager() *SourceManager { return p.sm }

// Defined reports whether name currently resolves to a macro.
func (p *Preprocessor) Defined(name string) bool {
	return p.macros[dict.SID(name)].valid()
}

// Define processes a command line style definition, NAME, NAME=VALUE or
// NAME(args)=VALUE, as if a corresponding `define had been read.
func (p *Preprocessor) Define(def string) {
	text := def
	if i := strings.IndexByte(text, '='); i >= 0 {
		text = text[:i] + " " + text[i+1:]
	}
	p.directiveLine("`define " + text + "\n")
}

// Undef removes a definition as if a `undef had been read.
func (p *Preprocessor) Undef(name string) { p.directiveLine("`undef " + name + "\n") }

func (p *Preprocessor) directiveLine(text string) {
	saved := p.lx
	p.lx = newLexer(p.context, "<command-line>", []byte(text))
	for {
		if t := p.Next(); t.Kind == EOF {
			break
		}
	}
	p.lx = saved
}

// readAny returns the next raw token: pushed back tokens first, then the
// current expansion run, then the lexer.
func (p *Preprocessor) readAny() Token {
	if n := len(p.ungets); n != 0 {
		t := p.ungets[n-1]
		p.ungets = p.ungets[:n-1]
		return t
	}

	if p.macroIdx < len(p.macroToks) {
		t := p.macroToks[p.macroIdx]
		p.macroIdx++
		return t
	}

	if p.lx == nil {
		return Token{Kind: EOF}
	}

	return p.lx.next()
}

func (p *Preprocessor) unget(t Token) { p.ungets = append(p.ungets, t) }

func (p *Preprocessor) peekTok() Token {
	t := p.readAny()
	p.unget(t)
	return t
}

func (p *Preprocessor) consumeTok() Token { return p.readAny() }

func (p *Preprocessor) expectTok(kind TokenKind) Token {
	if t := p.peekTok(); t.Kind != kind {
		p.diag(ExpectedToken, t.Loc, kindText(kind))
		return Token{Kind: kind, Loc: t.Loc}
	}

	return p.consumeTok()
}

// Next returns the next fully preprocessed token. Directives mutating the
// macro table are handled inline and never surface; macro usages are
// expanded and their results delivered token by token. At end of input an
// EOF token carrying the trailing trivia is returned, repeatedly.
//
// The leading trivia of a consumed directive is carried over onto the next
// delivered token so line structure survives in rendered output.
func (p *Preprocessor) Next() Token {
	var pending []Trivia
	for {
		t := p.readAny()
		if t.Kind != Directive {
			if len(pending) != 0 {
				t = t.WithTrivia(append(pending, t.Trivia...))
			}
			return t
		}

		pending = append(pending, t.Trivia...)
		switch t.DirectiveKind() {
		case DefineDirective:
			p.handleDefine(t)
		case UndefDirective:
			p.handleUndef(t)
		case UndefineAllDirective:
			p.undefineAllMacros()
		default:
			p.HandleMacroUse(t)
		}
	}
}

// All drains the stream and returns every token including the final EOF.
func (p *Preprocessor) All() []Token {
	var toks []Token
	for {
		t := p.Next()
		toks = append(toks, t)
		if t.Kind == EOF {
			return toks
		}
	}
}

// handleDefine parses the remainder of a `define directive. The body extends
// to the end of the logical line; line continuation tokens swallow their
// newline so continuation lines collect naturally.
func (p *Preprocessor) handleDefine(directive Token) {
	name := p.peekTok()
	if name.Kind != Identifier && name.Kind != Keyword || !name.OnSameLine() {
		p.diag(ExpectedIdentifier, name.Loc)
		p.skipRestOfLine()
		return
	}

	p.consumeTok()
	d := &DefineSyntax{Directive: directive, Name: name}

	// A formal list opens only with a parenthesis glued to the name.
	// `define FOO (x) defines an object like macro with body (x).
	if t := p.peekTok(); t.Kind == OpenParen && len(t.Trivia) == 0 && t.OnSameLine() {
		d.Formals = newMacroParser(p).parseFormalArgumentList()
	}

	for {
		t := p.peekTok()
		if t.Kind == EOF || !t.OnSameLine() {
			break
		}

		d.Body = append(d.Body, p.consumeTok())
	}
	p.defineMacro(d)
}

func (p *Preprocessor) handleUndef(directive Token) {
	name := p.peekTok()
	if name.Kind != Identifier && name.Kind != Keyword || !name.OnSameLine() {
		p.diag(ExpectedIdentifier, name.Loc)
		return
	}

	p.consumeTok()
	p.undefMacro(name)
}

func (p *Preprocessor) skipRestOfLine() {
	for {
		t := p.peekTok()
		if t.Kind == EOF || !t.OnSameLine() {
			return
		}

		p.consumeTok()
	}
}

// Diagnostics returns the diagnostics produced so far, sorted by source
// position.
func (p *Preprocessor) Diagnostics() []Diagnostic {
	p.Lock()

	defer p.Unlock()

	return p.diags.sorted(p.sm)
}

// DiagnosticStrings renders the diagnostics produced so far, one line each.
func (p *Preprocessor) DiagnosticStrings() []string {
	var r []string
	for _, d := range p.Diagnostics() {
		r = append(r, d.Render(p.sm))
	}
	return r
}

// Error returns nil if no diagnostics were produced, otherwise an error
// aggregating their rendered messages.
func (p *Preprocessor) Error() error { return p.error() }
