// Copyright 2026 The SVPP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sv

import (
	"fmt"
	"io"
	"sort"
	"strconv"
)

// DiagCode identifies a diagnostic produced by the preprocessor.
type DiagCode int

// Diagnostic codes.
const (
	_ DiagCode = iota
	ExpectedClosingQuote
	ExpectedIdentifier
	ExpectedMacroArgs
	ExpectedMacroStringifyEnd
	ExpectedToken
	IgnoredMacroPaste
	MacroRedefined
	MisplacedDirectiveChar
	NotEnoughMacroArgs
	RecursiveMacro
	TooManyActualMacroArgs
	UnbalancedMacroArgDims
	UndefineBuiltinDirective
	UnknownDirective
	UnknownMacro
)

var diagNames = map[DiagCode]string{
	ExpectedClosingQuote:      "ExpectedClosingQuote",
	ExpectedIdentifier:        "ExpectedIdentifier",
	ExpectedMacroArgs:         "ExpectedMacroArgs",
	ExpectedMacroStringifyEnd: "ExpectedMacroStringifyEnd",
	ExpectedToken:             "ExpectedToken",
	IgnoredMacroPaste:         "IgnoredMacroPaste",
	MacroRedefined:            "MacroRedefined",
	MisplacedDirectiveChar:    "MisplacedDirectiveChar",
	NotEnoughMacroArgs:        "NotEnoughMacroArgs",
	RecursiveMacro:            "RecursiveMacro",
	TooManyActualMacroArgs:    "TooManyActualMacroArgs",
	UnbalancedMacroArgDims:    "UnbalancedMacroArgDims",
	UndefineBuiltinDirective:  "UndefineBuiltinDirective",
	UnknownDirective:          "UnknownDirective",
	UnknownMacro:              "UnknownMacro",
}

var diagText = map[DiagCode]string{
	ExpectedClosingQuote:      "missing closing quote",
	ExpectedIdentifier:        "expected identifier",
	ExpectedMacroArgs:         "expected macro arguments",
	ExpectedMacroStringifyEnd: "unterminated macro stringification",
	ExpectedToken:             "expected %s",
	IgnoredMacroPaste:         "paste token ignored",
	MacroRedefined:            "macro %s redefined",
	MisplacedDirectiveChar:    "misplaced directive character",
	NotEnoughMacroArgs:        "not enough arguments provided to macro",
	RecursiveMacro:            "recursive macro usage of %s",
	TooManyActualMacroArgs:    "too many arguments provided to macro",
	UnbalancedMacroArgDims:    "unbalanced %s in macro argument",
	UndefineBuiltinDirective:  "built-in macro %s cannot be undefined",
	UnknownDirective:          "unknown macro or compiler directive `%s",
	UnknownMacro:              "macro %s is not defined",
}

func (c DiagCode) String() string {
	if s, ok := diagNames[c]; ok {
		return s
	}

	return "DiagCode(" + strconv.Itoa(int(c)) + ")"
}

// Diagnostic is one recorded problem: a code, the location it was detected
// at (possibly inside an expansion), and message substitution arguments.
// Rendering is left to the consumer; Message and Render are conveniences.
type Diagnostic struct {
	Code DiagCode
	Loc  Location
	Args []interface{}
}

// Message returns the diagnostic text without position information.
func (d Diagnostic) Message() string {
	return fmt.Sprintf(diagText[d.Code], d.Args...)
}

// Render resolves the diagnostic location through macro expansions using sm.
func (d Diagnostic) Render(sm *SourceManager) string {
	return fmt.Sprintf("%v: %s", sm.Position(d.Loc), d.Message())
}

// DiagSink receives diagnostics as they are produced. The engine decides
// which diagnostic and where; the sink decides what to do with it.
type DiagSink interface {
	Add(Diagnostic)
}

type diagList []Diagnostic

func (l *diagList) Add(d Diagnostic) { *l = append(*l, d) }

func (l diagList) sorted(sm *SourceManager) diagList {
	r := append(diagList(nil), l...)
	sort.SliceStable(r, func(i, j int) bool {
		a, b := sm.FullyOriginalLoc(r[i].Loc), sm.FullyOriginalLoc(r[j].Loc)
		if a.buf != b.buf {
			return a.buf < b.buf
		}

		return a.off < b.off
	})
	return r
}

func printDiags(w io.Writer, sm *SourceManager, diags []Diagnostic) {
	for i, v := range diags {
		fmt.Fprintf(w, "%s\n", v.Render(sm))
		if i == 50 {
			fmt.Fprintln(w, "too many errors")
			break
		}
	}
}
