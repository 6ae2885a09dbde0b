// Copyright 2026 The SVPP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sv

// macroParser consumes call site and definition argument lists. It reads
// from an explicit token buffer first and falls back to the preprocessor's
// raw stream once the buffer is exhausted, so the same parser serves both
// nested expansion buffers and top level invocations.
type macroParser struct {
	pp     *Preprocessor
	buffer []Token
	idx    int
}

func newMacroParser(p *Preprocessor) *macroParser { return &macroParser{pp: p} }

func (m *macroParser) setBuffer(toks []Token) {
	m.buffer = toks
	m.idx = 0
}

// next returns the next buffered token or the zero Token once the buffer is
// exhausted. It never touches the fallback stream.
func (m *macroParser) next() Token {
	if m.idx < len(m.buffer) {
		t := m.buffer[m.idx]
		m.idx++
		return t
	}

	return Token{}
}

func (m *macroParser) peek() Token {
	if m.idx < len(m.buffer) {
		return m.buffer[m.idx]
	}

	return m.pp.peekTok()
}

func (m *macroParser) consume() Token {
	if t := m.next(); t.Valid() {
		return t
	}

	return m.pp.consumeTok()
}

func (m *macroParser) expect(kind TokenKind) Token {
	if m.idx >= len(m.buffer) {
		return m.pp.expectTok(kind)
	}

	if t := m.buffer[m.idx]; t.Kind != kind {
		m.pp.diag(ExpectedToken, t.Loc, kindText(kind))
		return Token{Kind: kind, Loc: t.Loc}
	}

	return m.next()
}

// parseFormalArgumentList parses the formal parameter list of a `define,
// starting at the open parenthesis.
func (m *macroParser) parseFormalArgumentList() *FormalArgumentList {
	openParen := m.consume()
	var args []*FormalArgument
	m.parseArgumentList(func() { args = append(args, m.parseFormalArgument()) })
	return &FormalArgumentList{
		OpenParen:  openParen,
		Args:       args,
		CloseParen: m.expect(CloseParen),
	}
}

// parseActualArgumentList parses a call site argument list. The macro name
// token prev must be immediately followed by an open parenthesis; its
// absence fails the invocation.
func (m *macroParser) parseActualArgumentList(prev Token) *ActualArgumentList {
	if m.peek().Kind != OpenParen {
		m.pp.diag(ExpectedMacroArgs, prev.End())
		return nil
	}

	openParen := m.consume()
	var args []*ActualArgument
	m.parseArgumentList(func() { args = append(args, &ActualArgument{Tokens: m.parseTokenList(true)}) })
	return &ActualArgumentList{
		OpenParen:  openParen,
		Args:       args,
		CloseParen: m.expect(CloseParen),
	}
}

func (m *macroParser) parseArgumentList(parseItem func()) {
	for {
		parseItem()

		if m.peek().Kind != Comma {
			// The caller expects the closing parenthesis here.
			return
		}

		m.consume()
	}
}

func (m *macroParser) parseFormalArgument() *FormalArgument {
	arg := m.peek()
	if arg.Kind == Identifier || arg.Kind == Keyword {
		m.consume()
	} else {
		arg = m.expect(Identifier)
	}

	var def *ArgumentDefault
	if m.peek().Kind == Equals {
		eq := m.consume()
		def = &ArgumentDefault{Equals: eq, Tokens: m.parseTokenList(false)}
	}
	return &FormalArgument{Name: arg, Default: def}
}

// parseTokenList swallows tokens for one argument. A comma or close paren
// terminates the span only outside any nested (), [] or {} pair; running out
// of input while delimiters remain open is diagnosed naming the unmatched
// opener.
func (m *macroParser) parseTokenList(allowNewlines bool) []Token {
	var toks []Token
	var delimStack []TokenKind
	for {
		t := m.peek()
		if t.Kind == EOF || !allowNewlines && !t.OnSameLine() {
			if len(delimStack) != 0 {
				loc := t.Loc
				if len(toks) != 0 {
					loc = toks[len(toks)-1].Loc
				}
				m.pp.diag(UnbalancedMacroArgDims, loc, delimOpenText(delimStack[len(delimStack)-1]))
			}
			return toks
		}

		if len(delimStack) == 0 {
			if t.Kind == Comma || t.Kind == CloseParen {
				return toks
			}
		} else if delimStack[len(delimStack)-1] == t.Kind {
			delimStack = delimStack[:len(delimStack)-1]
		}

		toks = append(toks, m.consume())

		if ck := delimCloseKind(t.Kind); ck != Unknown {
			delimStack = append(delimStack, ck)
		}
	}
}
