// Copyright 2026 The SVPP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sv

import (
	"strconv"
	"strings"
)

// DefineSyntax is a parsed macro definition. Bodies are opaque token
// sequences; they are only interpreted during expansion. Immutable once
// constructed.
type DefineSyntax struct {
	Directive Token
	Name      Token
	Formals   *FormalArgumentList
	Body      []Token
}

// FormalArgumentList is the parenthesized formal parameter list of a
// function like macro.
type FormalArgumentList struct {
	OpenParen  Token
	Args       []*FormalArgument
	CloseParen Token
}

// FormalArgument is one formal parameter with an optional default.
type FormalArgument struct {
	Name    Token
	Default *ArgumentDefault
}

// ArgumentDefault is the `= tokens` default of a formal parameter.
type ArgumentDefault struct {
	Equals Token
	Tokens []Token
}

// ActualArgumentList is a parsed call site argument list.
type ActualArgumentList struct {
	OpenParen  Token
	Args       []*ActualArgument
	CloseParen Token
}

func (l *ActualArgumentList) firstLoc() Location {
	if len(l.Args) != 0 && len(l.Args[0].Tokens) != 0 {
		return l.Args[0].Tokens[0].Loc
	}

	return l.OpenParen.Loc
}

func (l *ActualArgumentList) lastToken() Token { return l.CloseParen }

// ActualArgument is one call site argument token span.
type ActualArgument struct {
	Tokens []Token
}

// intrinsicKind tags macros resolved by engine logic rather than a stored
// body.
type intrinsicKind int

const (
	intrinsicNone intrinsicKind = iota // Internal error tag.
	intrinsicFile
	intrinsicLine
)

// macroDef is a macro table entry. The zero value means "not found".
type macroDef struct {
	syntax    *DefineSyntax
	intrinsic intrinsicKind
	builtIn   bool
}

func (m macroDef) valid() bool       { return m.syntax != nil || m.intrinsic != intrinsicNone }
func (m macroDef) isIntrinsic() bool { return m.intrinsic != intrinsicNone }
func (m macroDef) needsArgs() bool   { return m.syntax != nil && m.syntax.Formals != nil }

// findMacro resolves a macro usage token to its definition. The leading
// grave is stripped by ValueText; a leading escape marker is stripped here.
// Lookup is case sensitive. The zero macroDef signals "not found".
func (p *Preprocessor) findMacro(directive Token) macroDef {
	name := directive.ValueText()
	if strings.HasPrefix(name, "\\") {
		name = name[1:]
	}
	if name == "" {
		return macroDef{}
	}

	return p.macros[dict.SID(name)]
}

func (p *Preprocessor) registerBuiltins() {
	p.createIntrinsicMacro("__FILE__", intrinsicFile)
	p.createIntrinsicMacro("__LINE__", intrinsicLine)
	p.createBuiltInMacro("__svpp__", 1)
}

func (p *Preprocessor) createIntrinsicMacro(name string, kind intrinsicKind) {
	p.macros[dict.SID(name)] = macroDef{intrinsic: kind, builtIn: true}
}

// createBuiltInMacro registers a non-intrinsic builtin expanding to an
// integer value.
func (p *Preprocessor) createBuiltInMacro(name string, value int) {
	valueStr := strconv.Itoa(value)
	syntax := &DefineSyntax{
		Directive: Token{Kind: Directive, Val: dict.SID("`define")},
		Name:      Token{Kind: Identifier, Val: dict.SID(name)},
		Body:      []Token{{Kind: IntegerLiteral, Val: dict.SID(valueStr)}},
	}
	p.macros[dict.SID(name)] = macroDef{syntax: syntax, builtIn: true}
}

// defineMacro installs a parsed definition, diagnosing structurally
// different redefinitions. Redefining with an identical shape is silently
// idempotent; builtins cannot be redefined.
func (p *Preprocessor) defineMacro(syntax *DefineSyntax) {
	nm := dict.SID(syntax.Name.ValueText())
	if ex, ok := p.macros[nm]; ok {
		if ex.builtIn {
			p.diag(MacroRedefined, syntax.Name.Loc, syntax.Name.ValueText())
			return
		}

		if IsSameMacro(ex.syntax, syntax) {
			return
		}

		p.diag(MacroRedefined, syntax.Name.Loc, syntax.Name.ValueText())
	}
	p.macros[nm] = macroDef{syntax: syntax}
}

// undefMacro removes a binding. Unknown names and builtins are diagnosed but
// processing continues.
func (p *Preprocessor) undefMacro(name Token) {
	nm := dict.SID(name.ValueText())
	ex, ok := p.macros[nm]
	if !ok {
		p.diag(UnknownMacro, name.Loc, name.ValueText())
		return
	}

	if ex.builtIn {
		p.diag(UndefineBuiltinDirective, name.Loc, name.ValueText())
		return
	}

	delete(p.macros, nm)
}

// undefineAllMacros removes every non-builtin binding.
func (p *Preprocessor) undefineAllMacros() {
	for nm, m := range p.macros {
		if !m.builtIn {
			delete(p.macros, nm)
		}
	}
}

func isSameTrivia(a, b []Trivia) bool {
	if len(a) != len(b) {
		return false
	}

	for i, v := range a {
		if v.Kind != b[i].Kind || v.Val != b[i].Val {
			return false
		}
	}
	return true
}

func isSameToken(a, b Token) bool {
	return a.Kind == b.Kind && a.Val == b.Val && isSameTrivia(a.Trivia, b.Trivia)
}

func isSameTokenList(a, b []Token) bool {
	if len(a) != len(b) {
		return false
	}

	for i, v := range a {
		if !isSameToken(v, b[i]) {
			return false
		}
	}
	return true
}

// IsSameMacro reports structural equality of two definitions: same formal
// names and defaults, same body tokens including trivia. Names are assumed
// to match already.
func IsSameMacro(a, b *DefineSyntax) bool {
	if (a.Formals != nil) != (b.Formals != nil) {
		return false
	}

	if a.Formals != nil {
		la, lb := a.Formals.Args, b.Formals.Args
		if len(la) != len(lb) {
			return false
		}

		for i, fa := range la {
			fb := lb[i]
			if !isSameToken(fa.Name, fb.Name) {
				return false
			}

			if (fa.Default != nil) != (fb.Default != nil) {
				return false
			}

			if fa.Default != nil && !isSameTokenList(fa.Default.Tokens, fb.Default.Tokens) {
				return false
			}
		}
	}

	return isSameTokenList(a.Body, b.Body)
}
