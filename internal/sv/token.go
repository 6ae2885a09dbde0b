// Copyright 2026 The SVPP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sv

import (
	"strconv"
	"strings"
)

// TokenKind classifies preprocessor tokens.
type TokenKind int

// Token kinds.
const (
	Unknown TokenKind = iota // Zero value, also the kind of an invalid Token.
	EOF
	Identifier
	Keyword
	IntegerLiteral
	StringLiteral
	Directive          // `name
	MacroQuote         // `"
	MacroPaste         // ``
	MacroEscapedQuote  // `\`"
	LineContinuation   // backslash followed by a newline
	EmptyMacroArgument // Zero width marker carrying trivia.

	OpenParen
	CloseParen
	OpenBracket
	CloseBracket
	OpenBrace
	CloseBrace
	Comma
	Dot
	Semicolon
	Colon
	Equals
	Plus
	Minus
	Star
	Slash
	Percent
	Amp
	Pipe
	Caret
	Tilde
	Bang
	Lt
	Gt
	Question
	Hash
	At
	Apostrophe

	maxTokenKind
)

var tokenKindNames = map[TokenKind]string{
	Unknown:            "Unknown",
	EOF:                "EOF",
	Identifier:         "Identifier",
	Keyword:            "Keyword",
	IntegerLiteral:     "IntegerLiteral",
	StringLiteral:      "StringLiteral",
	Directive:          "Directive",
	MacroQuote:         "MacroQuote",
	MacroPaste:         "MacroPaste",
	MacroEscapedQuote:  "MacroEscapedQuote",
	LineContinuation:   "LineContinuation",
	EmptyMacroArgument: "EmptyMacroArgument",
	OpenParen:          "OpenParen",
	CloseParen:         "CloseParen",
	OpenBracket:        "OpenBracket",
	CloseBracket:       "CloseBracket",
	OpenBrace:          "OpenBrace",
	CloseBrace:         "CloseBrace",
	Comma:              "Comma",
	Dot:                "Dot",
	Semicolon:          "Semicolon",
	Colon:              "Colon",
	Equals:             "Equals",
	Plus:               "Plus",
	Minus:              "Minus",
	Star:               "Star",
	Slash:              "Slash",
	Percent:            "Percent",
	Amp:                "Amp",
	Pipe:               "Pipe",
	Caret:              "Caret",
	Tilde:              "Tilde",
	Bang:               "Bang",
	Lt:                 "Lt",
	Gt:                 "Gt",
	Question:           "Question",
	Hash:               "Hash",
	At:                 "At",
	Apostrophe:         "Apostrophe",
}

func (k TokenKind) String() string {
	if s, ok := tokenKindNames[k]; ok {
		return s
	}

	return "TokenKind(" + strconv.Itoa(int(k)) + ")"
}

var punctText = map[TokenKind]string{
	OpenParen:    "(",
	CloseParen:   ")",
	OpenBracket:  "[",
	CloseBracket: "]",
	OpenBrace:    "{",
	CloseBrace:   "}",
	Comma:        ",",
	Dot:          ".",
	Semicolon:    ";",
	Colon:        ":",
	Equals:       "=",
	Plus:         "+",
	Minus:        "-",
	Star:         "*",
	Slash:        "/",
	Percent:      "%",
	Amp:          "&",
	Pipe:         "|",
	Caret:        "^",
	Tilde:        "~",
	Bang:         "!",
	Lt:           "<",
	Gt:           ">",
	Question:     "?",
	Hash:         "#",
	At:           "@",
	Apostrophe:   "'",
}

// kindText returns the canonical spelling of k for diagnostics.
func kindText(k TokenKind) string {
	if s, ok := punctText[k]; ok {
		return s
	}

	return k.String()
}

// delimCloseKind returns the closing delimiter kind matching an opener, or
// Unknown when k does not open a delimited pair.
func delimCloseKind(k TokenKind) TokenKind {
	switch k {
	case OpenParen:
		return CloseParen
	case OpenBracket:
		return CloseBracket
	case OpenBrace:
		return CloseBrace
	default:
		return Unknown
	}
}

// delimOpenText names the opener matching a closing delimiter kind.
func delimOpenText(k TokenKind) string {
	switch k {
	case CloseParen:
		return "("
	case CloseBracket:
		return "["
	case CloseBrace:
		return "{"
	default:
		return kindText(k)
	}
}

// DirectiveKind discriminates directive tokens.
type DirectiveKind int

// Directive kinds. Every directive name that is not one of the handled
// table-mutating directives is treated as a macro usage.
const (
	MacroUsage DirectiveKind = iota
	DefineDirective
	UndefDirective
	UndefineAllDirective
)

// TriviaKind classifies non-semantic text attached to tokens.
type TriviaKind int

// Trivia kinds.
const (
	TriviaWhitespace TriviaKind = iota
	TriviaEndOfLine
	TriviaLineComment
	TriviaBlockComment
)

// Trivia is a run of non-semantic text preceding a token.
type Trivia struct {
	Kind TriviaKind
	Val  int // Raw text ID.
}

// Text returns the raw text of the trivia.
func (t Trivia) Text() string { return string(dict.S(t.Val)) }

// Token is an immutable lexed token. The zero Token is invalid.
type Token struct {
	Kind   TokenKind
	Val    int // Raw text ID.
	Loc    Location
	Trivia []Trivia
}

// Valid reports whether t is a real token.
func (t Token) Valid() bool { return t.Kind != Unknown || t.Val != 0 }

// Text returns the raw text of the token.
func (t Token) Text() string { return string(dict.S(t.Val)) }

// End returns the location one past the last character of the token.
func (t Token) End() Location { return t.Loc.add(len(dict.S(t.Val))) }

// ValueText returns the semantic text of the token: escaped identifiers are
// stripped of their leading backslash and directives of their leading grave.
func (t Token) ValueText() string {
	s := t.Text()
	switch t.Kind {
	case Identifier:
		if strings.HasPrefix(s, "\\") {
			return s[1:]
		}
	case Directive:
		return s[1:]
	}
	return s
}

// DirectiveKind classifies a Directive token by its name. For any other
// token kind the result is meaningless.
func (t Token) DirectiveKind() DirectiveKind {
	name := t.ValueText()
	if strings.HasPrefix(name, "\\") {
		name = name[1:]
	}
	switch dict.SID(name) {
	case idDefine:
		return DefineDirective
	case idUndef:
		return UndefDirective
	case idUndefineAll:
		return UndefineAllDirective
	default:
		return MacroUsage
	}
}

// OnSameLine reports whether the token continues the line of the previous
// token, ie. none of its trivia contains a line break. Line continuations
// swallow their newline, so tokens following one remain on the same line.
func (t Token) OnSameLine() bool {
	for _, v := range t.Trivia {
		switch v.Kind {
		case TriviaEndOfLine:
			return false
		case TriviaBlockComment:
			if strings.ContainsRune(v.Text(), '\n') {
				return false
			}
		}
	}
	return true
}

// WithTrivia returns a copy of t carrying the given trivia.
func (t Token) WithTrivia(trivia []Trivia) Token {
	t.Trivia = trivia
	return t
}

// WithLoc returns a copy of t at the given location.
func (t Token) WithLoc(loc Location) Token {
	t.Loc = loc
	return t
}

// WithText returns a copy of t spelled s.
func (t Token) WithText(s string) Token {
	t.Val = dict.SID(s)
	return t
}

// IntValue returns the value of an integer literal token.
func (t Token) IntValue() (int64, bool) {
	if t.Kind != IntegerLiteral {
		return 0, false
	}

	s := strings.ReplaceAll(t.Text(), "_", "")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}

	return n, true
}

// StringValue returns the value of a string literal token with the
// surrounding quotes removed and escapes resolved.
func (t Token) StringValue() (string, bool) {
	if t.Kind != StringLiteral {
		return "", false
	}

	s := t.Text()
	if len(s) < 2 || s[0] != '"' {
		return "", false
	}

	s = s[1:]
	if s[len(s)-1] == '"' {
		s = s[:len(s)-1]
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			b.WriteByte(c)
			continue
		}

		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String(), true
}

// triviaText returns the concatenated raw text of the token's trivia.
func (t Token) triviaText() string {
	var b strings.Builder
	for _, v := range t.Trivia {
		b.WriteString(v.Text())
	}
	return b.String()
}
