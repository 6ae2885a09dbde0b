// Copyright 2026 The SVPP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sv

import (
	"fmt"
	"strconv"
	"strings"
)

// HandleMacroUse expands a macro usage token. The parsed actual argument
// list is returned even when expansion fails so the caller can resynchronize
// past the consumed tokens; the bool reports whether an expansion was
// produced. On success the expanded run is installed as the preprocessor's
// pending token cursor; an empty run splices nothing.
func (p *Preprocessor) HandleMacroUse(directive Token) (*ActualArgumentList, bool) {
	m := p.findMacro(directive)
	if !m.valid() {
		p.diag(UnknownDirective, directive.Loc, directive.ValueText())

		// If an open parenthesis follows, assume a function like macro
		// invocation and consume the balanced argument list.
		if p.peekTok().Kind == OpenParen {
			return newMacroParser(p).parseActualArgumentList(directive), false
		}
		return nil, false
	}

	var actualArgs *ActualArgumentList
	if m.needsArgs() {
		if actualArgs = newMacroParser(p).parseActualArgumentList(directive); actualArgs == nil {
			return nil, false
		}
	}

	var buf []Token
	expansion := macroExpansion{sm: p.sm, dest: &buf, usageSite: directive, isTopLevel: true}
	if !p.expandMacro(m, &expansion, actualArgs) {
		return actualArgs, false
	}

	// The macro is expanded out into tokens, but some of those may be
	// further macro usages, or operators performing stringification or
	// concatenation. Concatenation can form new valid macro names, so the
	// fixed point loop below keys off explicit "did work" results of both
	// passes.
	alreadyExpanded := map[*DefineSyntax]struct{}{}
	if !m.isIntrinsic() {
		alreadyExpanded[m.syntax] = struct{}{}
	}

	// The run accumulates locally; a failure on any iteration must leave
	// the preprocessor's pending cursor exactly as it was.
	toks := buf
	var run []Token
	for {
		var changed, ok bool
		if toks, changed, ok = p.expandReplacementList(toks, alreadyExpanded); !ok {
			return actualArgs, false
		}

		run = run[:0]
		anyNewMacros := p.applyMacroOps(toks, &run)
		if !anyNewMacros && !changed {
			break
		}

		toks = append([]Token(nil), run...)
	}

	p.macroToks = run
	p.macroIdx = 0
	if f := p.tweaks.TrackExpand; f != nil {
		for _, v := range p.macroToks {
			f(v.Text())
		}
	}
	return actualArgs, true
}

// expandMacro substitutes bound arguments into the definition body and
// appends the result to the expansion buffer. Arguments are fully expanded,
// with a fresh recursion scope, before their first substitution and the
// result memoized.
func (p *Preprocessor) expandMacro(m macroDef, expansion *macroExpansion, actualArgs *ActualArgumentList) bool {
	if m.isIntrinsic() {
		// No intrinsic takes arguments.
		return p.expandIntrinsic(m.intrinsic, expansion)
	}

	d := m.syntax
	body := d.Body
	if len(body) == 0 {
		return true
	}

	if d.Formals == nil {
		// Simple macro; just take body tokens. Each expansion gets its
		// own location record. Line continuations survive only inside a
		// nested `define under construction.
		nm := dict.SID(d.Name.ValueText())
		start := body[0].Loc
		rng := expansion.getRange()
		expansionLoc := p.sm.CreateExpansionLoc(start, rng, nm)
		inDefineDirective := false
		for _, tok := range body {
			if inDefineDirective && !tok.OnSameLine() {
				inDefineDirective = false
			}
			if tok.Kind == Directive && tok.DirectiveKind() == DefineDirective {
				inDefineDirective = true
			}
			expansion.append(tok, &expansionLoc, &start, rng, nm, inDefineDirective)
		}
		return true
	}

	formalList := d.Formals.Args
	actualList := actualArgs.Args
	if len(actualList) > len(formalList) {
		p.diag(TooManyActualMacroArgs, actualArgs.firstLoc())
		return false
	}

	type argTokens struct {
		toks     []Token
		expanded bool
	}
	argumentMap := map[int]*argTokens{}

	for i, formal := range formalList {
		var toks []Token
		switch {
		case i < len(actualList):
			toks = actualList[i].Tokens
			// An empty actual argument takes the default when there
			// is one.
			if len(toks) == 0 && formal.Default != nil {
				toks = formal.Default.Tokens
			}
		case formal.Default != nil:
			toks = formal.Default.Tokens
		default:
			p.diag(NotEnoughMacroArgs, actualArgs.CloseParen.Loc)
			return false
		}

		if nm := dict.SID(formal.Name.ValueText()); nm != 0 {
			argumentMap[nm] = &argTokens{toks: toks}
		}
	}

	endOfArgs := actualArgs.lastToken()
	expansionRange := SourceRange{Start: expansion.getRange().Start, End: endOfArgs.End()}

	nm := dict.SID(d.Name.ValueText())
	start := body[0].Loc
	expansionLoc := p.sm.CreateExpansionLoc(start, expansionRange, nm)

	appendTok := func(tok Token) bool {
		expansion.append(tok, &expansionLoc, &start, expansionRange, nm, false)
		return true
	}

	inDefineDirective := false

	handleToken := func(tok Token) bool {
		if inDefineDirective && !tok.OnSameLine() {
			inDefineDirective = false
		}

		if tok.Kind != Identifier && tok.Kind != Keyword && tok.Kind != Directive {
			// Not a name, cannot be argument substituted.
			return appendTok(tok)
		}

		text := tok.ValueText()
		if tok.Kind == Directive {
			if text == "" {
				return appendTok(tok)
			}

			if tok.DirectiveKind() != MacroUsage {
				// The start of a nested `define; substitution below
				// it must insert line continuations.
				if tok.DirectiveKind() == DefineDirective {
					inDefineDirective = true
				}
				return appendTok(tok)
			}

			// Other tools allow arguments to replace matching directive
			// names, eg.
			//	`define FOO(bar) `bar
			//	`define ONE 1
			//	`FOO(ONE)	// expands to 1
			if strings.HasPrefix(text, "\\") {
				text = text[1:]
			}
		}

		it := argumentMap[dict.SID(text)]
		if it == nil {
			return appendTok(tok)
		}

		// Fully expand arguments before substitution so a macro usage in
		// a replacement list can be told apart from illegal recursion.
		// Arguments resolve in the caller's context: the recursion scope
		// starts empty.
		if !it.expanded {
			fresh := map[*DefineSyntax]struct{}{}
			argToks, _, ok := p.expandReplacementList(it.toks, fresh)
			if !ok {
				return false
			}

			it.toks = argToks
			it.expanded = true
		}

		if len(it.toks) == 0 {
			// The argument contained no tokens. A zero width marker
			// still goes out so the formal's trivia is passed on.
			empty := Token{Kind: EmptyMacroArgument, Loc: tok.Loc, Trivia: tok.Trivia}
			return appendTok(empty)
		}

		// The leading substituted token takes its spacing from the
		// formal used in the macro body, not from the argument itself.
		first := it.toks[0].WithTrivia(tok.Trivia)
		firstLoc := first.Loc

		// Arguments get their own expansion record: the original location
		// comes from the source file, the expansion location points into
		// the macro body where the formal was used.
		tokenLoc := expansion.adjustLoc(tok, &expansionLoc, &start, expansionRange, nm)
		argRange := SourceRange{Start: tokenLoc, End: tokenLoc.add(len(tok.Text()))}
		argLoc := p.sm.CreateArgExpansionLoc(firstLoc, argRange)

		// A directive being argument replaced needs the grave fabricated
		// back onto the substituted name.
		if tok.Kind == Directive {
			grave := Token{Kind: Unknown, Val: idGrave, Loc: firstLoc, Trivia: first.Trivia}
			if combined := p.concatenateTokens(grave, first.WithTrivia(nil)); combined.Valid() {
				first = combined.WithTrivia(first.Trivia)
			} else {
				p.diag(MisplacedDirectiveChar, firstLoc)
			}
		}

		rest := it.toks[1:]
		if inDefineDirective {
			// Inside a `define body under construction every line break
			// the substitution introduces needs a line continuation so
			// the resulting definition stays one logical line.
			appendBody := func(tok Token) {
				if !tok.OnSameLine() {
					// The continuation replaces the raw newline, and the
					// split keeps both it and the token on the logical
					// line so the nested body collects whole.
					pre, post := splitAtLineBreak(tok.Trivia)
					lc := Token{Kind: LineContinuation, Val: idBackslashNL, Loc: tok.Loc, Trivia: pre}
					expansion.append(lc, &argLoc, &firstLoc, argRange, 0, true)
					tok = tok.WithTrivia(post)
				}
				expansion.append(tok, &argLoc, &firstLoc, argRange, 0, false)
			}

			appendBody(first)
			for _, t := range rest {
				appendBody(t)
			}
		} else {
			expansion.append(first, &argLoc, &firstLoc, argRange, 0, false)
			for _, t := range rest {
				expansion.append(t, &argLoc, &firstLoc, argRange, 0, false)
			}
		}

		return true
	}

	for _, tok := range body {
		if tok.Kind == Identifier && strings.HasPrefix(tok.Text(), "\\") {
			// Escaped identifier; may need to be broken apart so its
			// pieces are substituted individually.
			if index := strings.Index(tok.Text(), "``"); index >= 0 {
				if !handleToken(tok.WithText(tok.Text()[:index])) {
					return false
				}

				splits := p.splitTokens(tok, index)
				for _, t := range splits {
					if !handleToken(t) {
						return false
					}
				}

				// A trailing marker makes sure a space ends the escaped
				// identifier once it gets concatenated again.
				if len(splits) != 0 {
					last := splits[len(splits)-1]
					empty := Token{
						Kind:   EmptyMacroArgument,
						Loc:    last.End(),
						Trivia: []Trivia{{Kind: TriviaWhitespace, Val: idSpace}},
					}
					if !handleToken(empty) {
						return false
					}
				}
				continue
			}
		}

		if !handleToken(tok) {
			return false
		}
	}
	return true
}

// splitAtLineBreak partitions trivia at the first line break, which is
// dropped.
func splitAtLineBreak(trivia []Trivia) (pre, post []Trivia) {
	seen := false
	for _, v := range trivia {
		switch {
		case !seen && v.Kind == TriviaEndOfLine:
			seen = true
		case !seen:
			pre = append(pre, v)
		default:
			post = append(post, v)
		}
	}
	return pre, post
}

// expandReplacementList rescans toks for macro usages and expands them,
// recursively, guarding against re-entering any definition already in
// flight on this path. It returns the possibly rewritten run, whether any
// expansion was performed, and whether processing may continue.
func (p *Preprocessor) expandReplacementList(toks []Token, alreadyExpanded map[*DefineSyntax]struct{}) (out []Token, changed, ok bool) {
	var outBuf []Token

	parser := newMacroParser(p)
	parser.setBuffer(toks)

	for {
		token := parser.next()
		if !token.Valid() {
			break
		}

		if token.Kind != Directive || token.DirectiveKind() != MacroUsage {
			outBuf = append(outBuf, token)
			continue
		}

		m := p.findMacro(token)
		if !m.valid() {
			// Keep going; a later expansion may form this name.
			outBuf = append(outBuf, token)
			continue
		}

		if !m.isIntrinsic() {
			if _, hit := alreadyExpanded[m.syntax]; hit {
				p.diag(RecursiveMacro, token.Loc, token.ValueText())
				return nil, false, false
			}
		}

		var actualArgs *ActualArgumentList
		if m.needsArgs() {
			if actualArgs = parser.parseActualArgumentList(token); actualArgs == nil {
				return nil, false, false
			}
		}

		var expansionBuf []Token
		expansion := macroExpansion{sm: p.sm, dest: &expansionBuf, usageSite: token}
		if !p.expandMacro(m, &expansion, actualArgs) {
			return nil, false, false
		}

		// Recursively expand nested usages with this definition pushed
		// onto the active path.
		if !m.isIntrinsic() {
			alreadyExpanded[m.syntax] = struct{}{}
		}
		expanded, _, ok := p.expandReplacementList(expansionBuf, alreadyExpanded)
		if !ok {
			return nil, false, false
		}

		if !m.isIntrinsic() {
			delete(alreadyExpanded, m.syntax)
		}
		outBuf = append(outBuf, expanded...)
		changed = true
	}

	if !changed {
		return toks, false, true
	}

	return outBuf, true, true
}

// applyMacroOps makes a single left to right pass over tokens applying
// stringification, token pasting and their interplay, writing the result to
// dest. It reports whether the pass formed a token shaped like a new macro
// usage.
func (p *Preprocessor) applyMacroOps(tokens []Token, dest *[]Token) bool {
	var emptyArgTrivia []Trivia
	var stringifyBuf []Token
	var commentBuf []Token
	var stringify Token
	var syntheticComment Token
	anyNewMacros := false
	didConcat := false

	for i := 0; i < len(tokens); i++ {
		var newToken Token
		nextDidConcat := false

		// A `" opens a capture region: subsequent tokens are buffered for
		// stringification instead of emitted.
		token := tokens[i]
		switch token.Kind {
		case MacroQuote:
			if !stringify.Valid() {
				stringify = token
				stringifyBuf = stringifyBuf[:0]
			} else {
				// All done stringifying; render saved tokens.
				newToken = p.stringifyTokens(stringify.Loc, stringify.Trivia, stringifyBuf)
				stringify = Token{}
			}
		case MacroPaste:
			switch {
			case i == 0 || i == len(tokens)-1 || len(token.Trivia) != 0 ||
				len(tokens[i+1].Trivia) != 0 || len(emptyArgTrivia) != 0:
				// A paste on either end of the run or bordering
				// whitespace is dropped; its trivia is kept so spacing
				// survives.
				p.diag(IgnoredMacroPaste, token.Loc)
				emptyArgTrivia = append(emptyArgTrivia, token.Trivia...)
			case stringify.Valid():
				// Right after the opening quote or right before the
				// closing quote this would concatenate with nothing.
				if len(stringifyBuf) == 0 || tokens[i+1].Kind == MacroQuote {
					p.diag(IgnoredMacroPaste, token.Loc)
				} else if t := p.concatenateTokens(stringifyBuf[len(stringifyBuf)-1], tokens[i+1]); t.Valid() {
					newToken = t
					stringifyBuf = stringifyBuf[:len(stringifyBuf)-1]
					i++
				}
			case syntheticComment.Valid():
				// Only a *``/ closes the synthetic comment. Any other
				// paste is ignored, it is all becoming a comment anyway.
				if commentBuf[len(commentBuf)-1].Kind == Star && tokens[i+1].Kind == Slash {
					commentBuf = append(commentBuf, tokens[i+1])
					i++

					emptyArgTrivia = append(emptyArgTrivia, syntheticComment.Trivia...)
					emptyArgTrivia = append(emptyArgTrivia, p.commentify(commentBuf))
					syntheticComment = Token{}
				}
			default:
				// Dest cannot be empty here, the boundary case above
				// catches i == 0.
				left := (*dest)[len(*dest)-1]
				right := tokens[i+1]

				// Other tools allow pasting '/' against '*' to form a
				// block comment. Real world code depends on it, so it is
				// replicated here.
				if left.Kind == Slash && right.Kind == Star {
					commentBuf = commentBuf[:0]
					syntheticComment = left
					*dest = (*dest)[:len(*dest)-1]
					i++

					commentBuf = append(commentBuf, left.WithTrivia(nil))
					newToken = right
				} else if t := p.concatenateTokens(left, right); t.Valid() {
					newToken = t
					*dest = (*dest)[:len(*dest)-1]
					i++

					nextDidConcat = true
					if t.Kind == Directive && t.DirectiveKind() == MacroUsage {
						anyNewMacros = true
					}
				}
			}
		default:
			// After a concatenation a token with no leading trivia is
			// still textually adjacent: continue pasting greedily.
			if didConcat && len(token.Trivia) == 0 && len(emptyArgTrivia) == 0 {
				if t := p.concatenateTokens((*dest)[len(*dest)-1], token); t.Valid() {
					newToken = t
					*dest = (*dest)[:len(*dest)-1]
					nextDidConcat = true
					break
				}
			}

			newToken = token
		}

		didConcat = nextDidConcat
		if !newToken.Valid() {
			continue
		}

		// An empty macro argument only donates its trivia to the next
		// token. Leftovers at the end of the pass are fine, nothing
		// observes them after the macro's tokens end.
		if newToken.Kind == EmptyMacroArgument {
			emptyArgTrivia = append(emptyArgTrivia, newToken.Trivia...)
			continue
		}

		if len(emptyArgTrivia) != 0 {
			trivia := append([]Trivia(nil), emptyArgTrivia...)
			newToken = newToken.WithTrivia(append(trivia, newToken.Trivia...))
			emptyArgTrivia = nil
		}

		if !stringify.Valid() {
			if syntheticComment.Valid() {
				commentBuf = append(commentBuf, newToken)
			} else {
				*dest = append(*dest, newToken)
			}
			continue
		}

		// An escaped identifier embedding a `" splits there: the left
		// half finishes the stringification, the rest is re-lexed and
		// re-run through the ops pass.
		if newToken.Kind == Identifier && strings.HasPrefix(newToken.Text(), "\\") {
			if offset := strings.Index(newToken.Text(), "`\""); offset >= 0 {
				split := newToken.WithText(newToken.Text()[:offset])
				stringifyBuf = append(stringifyBuf, split)

				*dest = append(*dest, p.stringifyTokens(stringify.Loc, stringify.Trivia, stringifyBuf))
				stringify = Token{}

				splits := p.splitTokens(newToken, offset+2)
				if p.applyMacroOps(splits, dest) {
					anyNewMacros = true
				}
				continue
			}
		}

		stringifyBuf = append(stringifyBuf, newToken)
	}

	if stringify.Valid() {
		p.diag(ExpectedMacroStringifyEnd, stringify.Loc)
	}
	return anyNewMacros
}

// expandIntrinsic synthesizes the single token of a builtin intrinsic at the
// use site's location. A usage nested in another macro resolves to the spot
// in the file the outermost expansion replaces.
func (p *Preprocessor) expandIntrinsic(kind intrinsicKind, expansion *macroExpansion) bool {
	loc := expansion.getRange().Start
	fileLoc := p.sm.FullyExpandedLoc(loc)
	switch kind {
	case intrinsicFile:
		tok := Token{
			Kind: StringLiteral,
			Val:  dict.SID(fmt.Sprintf("%q", p.sm.FileName(fileLoc))),
			Loc:  loc,
		}
		expansion.appendAt(tok, loc, false)
	case intrinsicLine:
		tok := Token{
			Kind: IntegerLiteral,
			Val:  dict.SID(strconv.Itoa(p.sm.Position(fileLoc).Line)),
			Loc:  loc,
		}
		expansion.appendAt(tok, loc, false)
	default:
		panic("internal error")
	}
	return true
}
