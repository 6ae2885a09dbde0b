// Copyright 2026 The SVPP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sv

import (
	"strings"
)

// lexer produces trivia attached tokens from one buffer. The same machinery
// re-lexes synthesized text for token pasting, escaped identifier splitting
// and intrinsic expansion; in that mode base points at the original text so
// the fresh tokens keep resolvable locations.
type lexer struct {
	*context
	src    []byte
	base   Location
	off    int
	trivia []Trivia
}

// newLexer registers src as a file buffer of the context's SourceManager and
// returns a lexer over it.
func newLexer(ctx *context, name string, src []byte) *lexer {
	return &lexer{context: ctx, src: src, base: ctx.sm.AddFile(name, src)}
}

// newTextLexer returns a lexer over a slice of already registered text.
func newTextLexer(ctx *context, base Location, src []byte) *lexer {
	return &lexer{context: ctx, src: src, base: base}
}

func (l *lexer) loc() Location { return l.base.add(l.off) }

func (l *lexer) byte(i int) byte {
	if i >= len(l.src) {
		return 0
	}

	return l.src[i]
}

func (l *lexer) addTrivia(kind TriviaKind, start int) {
	l.trivia = append(l.trivia, Trivia{Kind: kind, Val: dict.ID(l.src[start:l.off])})
}

func (l *lexer) takeTrivia() []Trivia {
	r := l.trivia
	l.trivia = nil
	return r
}

func (l *lexer) scanTrivia() {
	for l.off < len(l.src) {
		start := l.off
		switch c := l.src[l.off]; {
		case c == ' ' || c == '\t':
			for l.off < len(l.src) && (l.src[l.off] == ' ' || l.src[l.off] == '\t') {
				l.off++
			}
			l.addTrivia(TriviaWhitespace, start)
		case c == '\n':
			l.off++
			l.addTrivia(TriviaEndOfLine, start)
		case c == '\r':
			l.off++
			if l.byte(l.off) == '\n' {
				l.off++
			}
			l.addTrivia(TriviaEndOfLine, start)
		case c == '/' && l.byte(l.off+1) == '/':
			for l.off < len(l.src) && l.src[l.off] != '\n' {
				l.off++
			}
			l.addTrivia(TriviaLineComment, start)
		case c == '/' && l.byte(l.off+1) == '*':
			l.off += 2
			for l.off < len(l.src) && !(l.src[l.off] == '*' && l.byte(l.off+1) == '/') {
				l.off++
			}
			if l.off < len(l.src) {
				l.off += 2
			}
			l.addTrivia(TriviaBlockComment, start)
		default:
			return
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentChar(c byte) bool { return isIdentStart(c) || c >= '0' && c <= '9' }

func (l *lexer) token(kind TokenKind, start int, trivia []Trivia) Token {
	return Token{
		Kind:   kind,
		Val:    dict.ID(l.src[start:l.off]),
		Loc:    l.base.add(start),
		Trivia: trivia,
	}
}

// next returns the next token of the buffer. At end of input it returns an
// EOF token carrying any trailing trivia; further calls keep returning EOF.
func (l *lexer) next() Token {
	l.scanTrivia()
	trivia := l.takeTrivia()
	start := l.off
	if l.off >= len(l.src) {
		return Token{Kind: EOF, Loc: l.loc(), Trivia: trivia}
	}

	c := l.src[l.off]
	switch {
	case c == '\\':
		if l.byte(l.off+1) == '\n' || l.byte(l.off+1) == '\r' {
			l.off += 2
			if l.src[l.off-1] == '\r' && l.byte(l.off) == '\n' {
				l.off++
			}
			return l.token(LineContinuation, start, trivia)
		}

		// Escaped identifier, extends until whitespace.
		l.off++
		for l.off < len(l.src) && l.src[l.off] > ' ' {
			l.off++
		}
		return l.token(Identifier, start, trivia)
	case c == '`':
		switch l.byte(l.off + 1) {
		case '"':
			l.off += 2
			return l.token(MacroQuote, start, trivia)
		case '`':
			l.off += 2
			return l.token(MacroPaste, start, trivia)
		case '\\':
			if l.byte(l.off+2) == '`' && l.byte(l.off+3) == '"' {
				l.off += 4
				return l.token(MacroEscapedQuote, start, trivia)
			}
		}
		if isIdentStart(l.byte(l.off + 1)) {
			l.off++
			for l.off < len(l.src) && isIdentChar(l.src[l.off]) {
				l.off++
			}
			return l.token(Directive, start, trivia)
		}

		l.off++
		return l.token(Unknown, start, trivia)
	case isIdentStart(c):
		for l.off < len(l.src) && isIdentChar(l.src[l.off]) {
			l.off++
		}
		t := l.token(Identifier, start, trivia)
		if keywords[t.Val] {
			t.Kind = Keyword
		}
		return t
	case c >= '0' && c <= '9':
		for l.off < len(l.src) && (l.src[l.off] >= '0' && l.src[l.off] <= '9' || l.src[l.off] == '_') {
			l.off++
		}
		return l.token(IntegerLiteral, start, trivia)
	case c == '"':
		l.off++
		for l.off < len(l.src) && l.src[l.off] != '"' && l.src[l.off] != '\n' {
			if l.src[l.off] == '\\' && l.off+1 < len(l.src) {
				l.off++
			}
			l.off++
		}
		if l.byte(l.off) == '"' {
			l.off++
		} else {
			l.diag(ExpectedClosingQuote, l.base.add(start))
		}
		return l.token(StringLiteral, start, trivia)
	default:
		l.off++
		if kind, ok := punctKinds[c]; ok {
			return l.token(kind, start, trivia)
		}

		return l.token(Unknown, start, trivia)
	}
}

var punctKinds = map[byte]TokenKind{
	'(': OpenParen,
	')': CloseParen,
	'[': OpenBracket,
	']': CloseBracket,
	'{': OpenBrace,
	'}': CloseBrace,
	',': Comma,
	'.': Dot,
	';': Semicolon,
	':': Colon,
	'=': Equals,
	'+': Plus,
	'-': Minus,
	'*': Star,
	'/': Slash,
	'%': Percent,
	'&': Amp,
	'|': Pipe,
	'^': Caret,
	'~': Tilde,
	'!': Bang,
	'<': Lt,
	'>': Gt,
	'?': Question,
	'#': Hash,
	'@': At,
	'\'': Apostrophe,
}

// relex lexes text anew as if spelled at base and returns the resulting
// tokens without the trailing EOF.
func (c *context) relex(base Location, text string) []Token {
	lx := newTextLexer(c, base, []byte(text))
	var toks []Token
	for {
		t := lx.next()
		if t.Kind == EOF {
			return toks
		}

		toks = append(toks, t)
	}
}

// concatenateTokens pastes right onto left. The combined text must re-lex to
// exactly one token, otherwise the zero Token is returned and the caller
// decides how to recover.
func (c *context) concatenateTokens(left, right Token) Token {
	text := left.Text() + right.Text()
	toks := c.relex(left.Loc, text)
	if len(toks) != 1 || len(toks[0].Trivia) != 0 {
		return Token{}
	}

	return toks[0].WithTrivia(left.Trivia).WithLoc(left.Loc)
}

// splitTokens re-lexes the text of tok starting at offset into fresh tokens.
// Used when an escaped identifier embeds a token operator and must be taken
// apart.
func (c *context) splitTokens(tok Token, offset int) []Token {
	text := tok.Text()
	if offset >= len(text) {
		return nil
	}

	return c.relex(tok.Loc.add(offset), text[offset:])
}

// stringifyTokens renders toks into a single string literal token placed at
// loc and carrying the given trivia. Spacing between the tokens is preserved
// from their own trivia.
func (c *context) stringifyTokens(loc Location, trivia []Trivia, toks []Token) Token {
	var b strings.Builder
	b.WriteByte('"')
	for i, v := range toks {
		if i != 0 {
			b.WriteString(v.triviaText())
		}
		switch v.Kind {
		case StringLiteral:
			s := v.Text()
			s = strings.ReplaceAll(s, `\`, `\\`)
			s = strings.ReplaceAll(s, `"`, `\"`)
			b.WriteString(s)
		case MacroEscapedQuote:
			b.WriteString(`\"`)
		case EmptyMacroArgument:
			// Contributes only the trivia written above.
		default:
			b.WriteString(v.Text())
		}
	}
	b.WriteByte('"')
	return Token{
		Kind:   StringLiteral,
		Val:    dict.SID(b.String()),
		Loc:    loc,
		Trivia: trivia,
	}
}

// commentify folds toks into a single block comment trivia.
func (c *context) commentify(toks []Token) Trivia {
	var b strings.Builder
	for i, v := range toks {
		if i != 0 {
			b.WriteString(v.triviaText())
		}
		b.WriteString(v.Text())
	}
	return Trivia{Kind: TriviaBlockComment, Val: dict.SID(b.String())}
}
