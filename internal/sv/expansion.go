// Copyright 2026 The SVPP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sv

// macroExpansion is the per invocation destination buffer plus the
// incremental location synthesizer. Tokens from one body share a single
// expansion record while their underlying buffer matches; crossing into a
// different buffer allocates a new record threaded to the prior one, so
// synthesis costs one allocation per buffer transition, not per token.
type macroExpansion struct {
	sm         *SourceManager
	dest       *[]Token
	usageSite  Token
	isTopLevel bool
	any        bool
}

// getRange returns the call site span of the usage token in the caller's
// coordinates.
func (e *macroExpansion) getRange() SourceRange {
	loc := e.usageSite.Loc
	return SourceRange{Start: loc, End: loc.add(len(e.usageSite.Text()))}
}

// adjustLoc synthesizes the expanded location of tok. While tok stays on the
// buffer of *firstLoc the result is an O(1) offset from *macroLoc; on a
// buffer transition a fresh expansion record is allocated and both cursors
// move to it. The new record keeps macroName; argument substitution passes 0
// so only its records carry the argument flag.
func (e *macroExpansion) adjustLoc(tok Token, macroLoc, firstLoc *Location, rng SourceRange, macroName int) Location {
	if tok.Loc.buf != firstLoc.buf {
		*firstLoc = tok.Loc
		if macroName != 0 {
			*macroLoc = e.sm.CreateExpansionLoc(*firstLoc, rng, macroName)
		} else {
			*macroLoc = e.sm.CreateArgExpansionLoc(*firstLoc, rng)
		}
	}

	return macroLoc.add(int(tok.Loc.off - firstLoc.off))
}

func (e *macroExpansion) append(tok Token, macroLoc, firstLoc *Location, rng SourceRange, macroName int, allowLineContinuation bool) {
	loc := e.adjustLoc(tok, macroLoc, firstLoc, rng, macroName)
	e.appendAt(tok, loc, allowLineContinuation)
}

// appendAt emits tok at the synthesized location. The first token of a
// nested expansion takes over the usage site's trivia; at top level it is
// stripped instead. Line continuations are normally dissolved into newline
// trivia on a zero width marker; substitution into a `define body being
// constructed passes allowLineContinuation to keep them.
func (e *macroExpansion) appendAt(tok Token, loc Location, allowLineContinuation bool) {
	if !e.any {
		if !e.isTopLevel {
			tok = tok.WithTrivia(e.usageSite.Trivia)
		} else {
			tok = tok.WithTrivia(nil)
		}
		e.any = true
	}

	if tok.Kind == LineContinuation && !allowLineContinuation {
		trivia := append([]Trivia(nil), tok.Trivia...)
		trivia = append(trivia, Trivia{Kind: TriviaEndOfLine, Val: dict.SID(tok.Text()[1:])})
		*e.dest = append(*e.dest, Token{Kind: EmptyMacroArgument, Loc: loc, Trivia: trivia})
		return
	}

	*e.dest = append(*e.dest, tok.WithLoc(loc))
}
