// Copyright 2026 The SVPP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sv

import (
	"fmt"
	"sort"
)

type bufferID int32 // 0 is invalid

// Location is a compact (buffer, offset) pair. Buffers are either file
// buffers owned by a SourceManager or synthesized expansion buffers that
// remap macro-expanded tokens back onto their origins.
type Location struct {
	buf bufferID
	off int32
}

// Valid reports whether l points into some buffer.
func (l Location) Valid() bool { return l.buf != 0 }

// Buffer returns the buffer the location points into.
func (l Location) Buffer() int { return int(l.buf) }

// Offset returns the offset within the buffer.
func (l Location) Offset() int { return int(l.off) }

func (l Location) add(n int) Location {
	l.off += int32(n)
	return l
}

// SourceRange is a half open location interval within one buffer.
type SourceRange struct {
	Start Location
	End   Location
}

// Position is a human readable resolved location.
type Position struct {
	Filename string
	Line     int // 1-based
	Col      int // 1-based
}

func (p Position) String() string {
	if p.Filename == "" && p.Line == 0 {
		return "-"
	}

	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Col)
}

type fileInfo struct {
	name  string
	src   []byte
	lines []int32 // Offsets of line starts.
}

// expansionInfo records one macro expansion: where the expanded tokens were
// spelled, the range they replace in the caller's coordinates, and the name
// of the macro (0 for argument expansions). Ranges of nested expansions point
// into earlier expansion buffers, threading records into a finite chain.
type expansionInfo struct {
	spelling  Location
	rng       SourceRange
	macroName int // Name ID, 0 when isArg.
	isArg     bool
}

type buffer struct {
	file *fileInfo
	exp  *expansionInfo
}

// SourceManager owns all source buffers of one compilation and allocates
// expansion location records. Buffers are append only and live for the whole
// compilation; locations stay resolvable for as long as the manager does.
type SourceManager struct {
	buffers []buffer
}

// NewSourceManager returns an empty SourceManager.
func NewSourceManager() *SourceManager { return &SourceManager{} }

func (s *SourceManager) alloc(b buffer) bufferID {
	s.buffers = append(s.buffers, b)
	return bufferID(len(s.buffers))
}

func (s *SourceManager) buf(l Location) *buffer {
	if !l.Valid() || int(l.buf) > len(s.buffers) {
		return nil
	}

	return &s.buffers[l.buf-1]
}

// AddFile registers the content of a source file and returns the location of
// its first byte.
func (s *SourceManager) AddFile(name string, src []byte) Location {
	lines := []int32{0}
	for i, c := range src {
		if c == '\n' {
			lines = append(lines, int32(i+1))
		}
	}
	id := s.alloc(buffer{file: &fileInfo{name: name, src: src, lines: lines}})
	return Location{buf: id}
}

// CreateExpansionLoc allocates an expansion record for a macro body starting
// at spelling and replacing rng at the use site. The returned location is the
// base of the new expansion buffer.
func (s *SourceManager) CreateExpansionLoc(spelling Location, rng SourceRange, macroName int) Location {
	id := s.alloc(buffer{exp: &expansionInfo{spelling: spelling, rng: rng, macroName: macroName}})
	return Location{buf: id}
}

// CreateArgExpansionLoc is CreateExpansionLoc for macro argument
// substitution, which has no macro name of its own.
func (s *SourceManager) CreateArgExpansionLoc(spelling Location, rng SourceRange) Location {
	id := s.alloc(buffer{exp: &expansionInfo{spelling: spelling, rng: rng, isArg: true}})
	return Location{buf: id}
}

// IsMacroLoc reports whether l points into an expansion buffer.
func (s *SourceManager) IsMacroLoc(l Location) bool {
	b := s.buf(l)
	return b != nil && b.exp != nil
}

// IsFileLoc reports whether l points into a file buffer.
func (s *SourceManager) IsFileLoc(l Location) bool {
	b := s.buf(l)
	return b != nil && b.file != nil
}

// ExpansionSpelling returns the spelling side of an expansion location.
func (s *SourceManager) ExpansionSpelling(l Location) Location {
	b := s.buf(l)
	if b == nil || b.exp == nil {
		return Location{}
	}

	return b.exp.spelling.add(int(l.off))
}

// ExpansionRange returns the use site range of an expansion location.
func (s *SourceManager) ExpansionRange(l Location) SourceRange {
	b := s.buf(l)
	if b == nil || b.exp == nil {
		return SourceRange{}
	}

	return b.exp.rng
}

// ExpansionMacroName returns the name ID of the macro an expansion location
// belongs to, or 0 for argument expansions and file locations.
func (s *SourceManager) ExpansionMacroName(l Location) int {
	b := s.buf(l)
	if b == nil || b.exp == nil {
		return 0
	}

	return b.exp.macroName
}

// FullyOriginalLoc walks the spelling chain of l down to a file buffer
// offset. The chain is finite because every record references only buffers
// allocated before it.
func (s *SourceManager) FullyOriginalLoc(l Location) Location {
	for s.IsMacroLoc(l) {
		l = s.ExpansionSpelling(l)
	}
	return l
}

// FullyExpandedLoc walks the use site chain of l out to the file buffer
// containing the outermost macro usage.
func (s *SourceManager) FullyExpandedLoc(l Location) Location {
	for s.IsMacroLoc(l) {
		l = s.ExpansionRange(l).Start
	}
	return l
}

// FileName resolves l to the name of the file it was originally spelled in.
func (s *SourceManager) FileName(l Location) string {
	b := s.buf(s.FullyOriginalLoc(l))
	if b == nil || b.file == nil {
		return ""
	}

	return b.file.name
}

// LineNumber resolves l to its original 1-based line number.
func (s *SourceManager) LineNumber(l Location) int { return s.Position(l).Line }

// ColumnNumber resolves l to its original 1-based column number.
func (s *SourceManager) ColumnNumber(l Location) int { return s.Position(l).Col }

// Position resolves l through any expansions to a file position.
func (s *SourceManager) Position(l Location) Position {
	l = s.FullyOriginalLoc(l)
	b := s.buf(l)
	if b == nil || b.file == nil {
		return Position{}
	}

	f := b.file
	i := sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > l.off })
	return Position{
		Filename: f.name,
		Line:     i,
		Col:      int(l.off-f.lines[i-1]) + 1,
	}
}

// Text returns n bytes of file buffer content at l, or "" when l does not
// point into a file buffer.
func (s *SourceManager) Text(l Location, n int) string {
	b := s.buf(l)
	if b == nil || b.file == nil {
		return ""
	}

	src := b.file.src
	if int(l.off) >= len(src) {
		return ""
	}

	if int(l.off)+n > len(src) {
		n = len(src) - int(l.off)
	}
	return string(src[l.off : int(l.off)+n])
}
