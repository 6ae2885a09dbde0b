// Copyright 2026 The SVPP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sv implements the macro preprocessing engine of a SystemVerilog
// front end: macro definition and lookup, argument parsing and binding,
// iterative expansion with token paste and stringification, and the
// expansion location bookkeeping that keeps diagnostics traceable through
// arbitrarily deep nesting.
//
//	[0]: IEEE Std 1800-2017, clause 22, compiler directives
package sv

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"modernc.org/mathutil"
	"modernc.org/xc"
)

var (
	_ Source = (*FileSource)(nil)
	_ Source = (*StringSource)(nil)
)

var (
	dict = xc.Dict

	idDefine      = dict.SID("define")
	idUndef       = dict.SID("undef")
	idUndefineAll = dict.SID("undefineall")

	idGrave       = dict.SID("`")
	idSpace       = dict.SID(" ")
	idBackslashNL = dict.SID("\\\n")
)

// keywords lists word tokens lexed with Keyword kind. The preprocessor
// treats them like identifiers but they are kept distinct for the parser
// downstream.
var keywords = map[int]bool{}

func init() {
	for _, v := range strings.Fields(`
		always assign begin case else end endcase endfunction endgenerate
		endmodule endtask for function generate if initial inout input int
		integer localparam logic module output parameter real reg task
		while wire`) {
		keywords[dict.SID(v)] = true
	}
}

// Tweaks amend the behavior of the preprocessor.
type Tweaks struct {
	TrackExpand func(string) // If non-nil, called with the text of every token leaving a top-level expansion.
}

// Preprocessing context shared by the lexer, the macro table and the
// expansion driver. All use is single threaded; the mutex only protects the
// diagnostic list for consumers that render while the engine runs.
type context struct {
	diags  diagList
	sink   DiagSink
	sm     *SourceManager
	tweaks *Tweaks
	sync.Mutex
}

func newContext(tweaks *Tweaks) *context {
	if tweaks == nil {
		tweaks = &Tweaks{}
	}
	c := &context{
		sm:     NewSourceManager(),
		tweaks: tweaks,
	}
	c.sink = &c.diags
	return c
}

func (c *context) diag(code DiagCode, loc Location, args ...interface{}) {
	c.Lock()
	c.sink.Add(Diagnostic{Code: code, Loc: loc, Args: args})
	c.Unlock()
}

func (c *context) position(loc Location) Position { return c.sm.Position(loc) }

func (c *context) error() error {
	c.Lock()

	defer c.Unlock()

	if len(c.diags) == 0 {
		return nil
	}

	var b strings.Builder
	printDiags(&b, c.sm, c.diags.sorted(c.sm))
	return fmt.Errorf("%s", strings.TrimRight(b.String(), "\n"))
}

// Source represents preprocessor input.
type Source interface {
	Name() string                       // Result will be used in reporting source code positions.
	ReadCloser() (io.ReadCloser, error) // Where to read the source from.
	Size() (int64, error)               // Report the size of the source in bytes.
}

// FileSource is a Source reading from a named file.
type FileSource struct {
	*bufio.Reader
	f    *os.File
	path string
}

// NewFileSource returns a newly created *FileSource reading from name.
func NewFileSource(name string) *FileSource { return &FileSource{path: name} }

// Close implements io.ReadCloser.
func (s *FileSource) Close() error { return s.f.Close() }

// Name implements Source.
func (s *FileSource) Name() string { return s.path }

// ReadCloser implements Source.
func (s *FileSource) ReadCloser() (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}

	s.f = f
	s.Reader = bufio.NewReader(f)
	return s, nil
}

// Size implements Source.
func (s *FileSource) Size() (int64, error) {
	fi, err := os.Stat(s.path)
	if err != nil {
		return 0, err
	}

	return fi.Size(), nil
}

// StringSource is a Source reading from a string.
type StringSource struct {
	*strings.Reader
	name string
	src  string
}

// NewStringSource returns a newly created *StringSource reading from src and
// having the presumed name.
func NewStringSource(name, src string) *StringSource { return &StringSource{name: name, src: src} }

// Close implements io.ReadCloser.
func (s *StringSource) Close() error { return nil }

// Name implements Source.
func (s *StringSource) Name() string { return s.name }

// Size implements Source.
func (s *StringSource) Size() (int64, error) { return int64(len(s.src)), nil }

// ReadCloser implements Source.
func (s *StringSource) ReadCloser() (io.ReadCloser, error) {
	s.Reader = strings.NewReader(s.src)
	return s, nil
}

func loadSource(src Source) ([]byte, error) {
	sz, err := src.Size()
	if err != nil {
		return nil, err
	}

	if sz > int64(mathutil.MaxInt) {
		return nil, fmt.Errorf("%v: file too big: %v", src.Name(), sz)
	}

	r, err := src.ReadCloser()
	if err != nil {
		return nil, err
	}

	b, err := io.ReadAll(r)
	if e := r.Close(); e != nil && err == nil {
		err = e
	}
	if err != nil {
		return nil, err
	}

	return b, nil
}
