// Copyright 2026 The SVPP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sv

import (
	"reflect"
	"strings"

	"modernc.org/strutil"
	"modernc.org/xc"
)

var printHooks = strutil.PrettyPrintHooks{}

func init() {
	for k, v := range xc.PrintHooks {
		printHooks[k] = v
	}
	printHooks[reflect.TypeOf(Token{})] = func(f strutil.Formatter, v interface{}, prefix, suffix string) {
		t := v.(Token)
		if !t.Valid() {
			return
		}

		f.Format(prefix)
		f.Format("%v: %q", t.Kind, t.Text())
		f.Format(suffix)
	}
	printHooks[reflect.TypeOf(Location{})] = func(f strutil.Formatter, v interface{}, prefix, suffix string) {
		l := v.(Location)
		if !l.Valid() {
			return
		}

		f.Format(prefix)
		f.Format("%v@%v", l.Buffer(), l.Offset())
		f.Format(suffix)
	}
	printHooks[reflect.TypeOf(TokenKind(0))] = func(f strutil.Formatter, v interface{}, prefix, suffix string) {
		f.Format(prefix)
		f.Format("%v", v.(TokenKind))
		f.Format(suffix)
	}
}

// PrettyString returns a human readable representation of v.
func PrettyString(v interface{}) string { return strutil.PrettyString(v, "", "", printHooks) }

// Render writes toks back out as text, trivia included. An EOF token
// contributes only its trailing trivia.
func Render(toks []Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.triviaText())
		if t.Kind == EOF || t.Kind == EmptyMacroArgument {
			continue
		}

		b.WriteString(t.Text())
	}
	return b.String()
}

// TokenText returns the space separated text of toks, trivia dropped. Handy
// in tests and tracing.
func TokenText(toks []Token) string {
	var a []string
	for _, t := range toks {
		if t.Kind == EOF || t.Kind == EmptyMacroArgument {
			continue
		}

		a = append(a, t.Text())
	}
	return strings.Join(a, " ")
}
