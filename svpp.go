// Copyright 2026 The SVPP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package svpp preprocesses SystemVerilog source text: `define macro
// definitions, function like macros with defaults, stringification and token
// pasting, and the intrinsic directives `__FILE__ and `__LINE__.
package svpp

import (
	"modernc.org/svpp/internal/sv"
)

// Option amends the behavior of a preprocessing run.
type Option func(*config)

type config struct {
	defines []string
	undefs  []string
	tweaks  sv.Tweaks
}

// Define predefines a macro before the source is read, NAME or NAME=VALUE.
func Define(def string) Option { return func(c *config) { c.defines = append(c.defines, def) } }

// Undef removes a definition before the source is read.
func Undef(name string) Option { return func(c *config) { c.undefs = append(c.undefs, name) } }

// TrackExpand installs f to be called with the text of every token leaving a
// top level macro expansion.
func TrackExpand(f func(string)) Option {
	return func(c *config) { c.tweaks.TrackExpand = f }
}

// Result is the outcome of one preprocessing run.
type Result struct {
	Text        string   // Rendered output, trivia included.
	Diagnostics []string // One line per diagnostic, sorted by source position.
}

func run(src sv.Source, opts []Option) (*Result, error) {
	var c config
	for _, o := range opts {
		o(&c)
	}

	p := sv.New(&c.tweaks)
	for _, v := range c.defines {
		p.Define(v)
	}
	for _, v := range c.undefs {
		p.Undef(v)
	}
	if err := p.SetSource(src); err != nil {
		return nil, err
	}

	return &Result{Text: sv.Render(p.All()), Diagnostics: p.DiagnosticStrings()}, nil
}

// PreprocessString preprocesses src under the presumed file name. The error
// is non-nil only when the input cannot be read; macro level problems are
// reported in Result.Diagnostics.
func PreprocessString(name, src string, opts ...Option) (*Result, error) {
	return run(sv.NewStringSource(name, src), opts)
}

// PreprocessFile preprocesses the named file.
func PreprocessFile(path string, opts ...Option) (*Result, error) {
	return run(sv.NewFileSource(path), opts)
}
