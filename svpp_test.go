// Copyright 2026 The SVPP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package svpp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocessString(t *testing.T) {
	r, err := PreprocessString("t.sv", "`define WIDTH 8\nlogic [`WIDTH-1:0] bus;\n")
	require.NoError(t, err)
	assert.Empty(t, r.Diagnostics)
	assert.Equal(t, "\nlogic [8-1:0] bus;\n", r.Text)
}

func TestPreprocessStringDiagnostics(t *testing.T) {
	r, err := PreprocessString("t.sv", "`UNDEFINED\n")
	require.NoError(t, err)
	require.Len(t, r.Diagnostics, 1)
	assert.Contains(t, r.Diagnostics[0], "t.sv:1:1")
	assert.Contains(t, r.Diagnostics[0], "unknown macro or compiler directive `UNDEFINED")
}

func TestPreprocessStringDefineOption(t *testing.T) {
	r, err := PreprocessString("t.sv", "`N\n", Define("N=3"))
	require.NoError(t, err)
	assert.Empty(t, r.Diagnostics)
	assert.Equal(t, "3\n", r.Text)
}

func TestPreprocessStringUndefOption(t *testing.T) {
	r, err := PreprocessString("t.sv", "`N\n", Define("N=3"), Undef("N"))
	require.NoError(t, err)
	require.Len(t, r.Diagnostics, 1)
	assert.Contains(t, r.Diagnostics[0], "unknown macro or compiler directive `N")
}

func TestPreprocessStringTrackExpand(t *testing.T) {
	var got []string
	_, err := PreprocessString("t.sv", "`define M a b\n`M\n",
		TrackExpand(func(s string) { got = append(got, s) }))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestPreprocessFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.sv")
	require.NoError(t, os.WriteFile(path, []byte("`define X 1\n`X\n"), 0o600))
	r, err := PreprocessFile(path)
	require.NoError(t, err)
	assert.Empty(t, r.Diagnostics)
	assert.Equal(t, "\n1\n", r.Text)
}

func TestPreprocessFileMissing(t *testing.T) {
	_, err := PreprocessFile(filepath.Join(t.TempDir(), "nope.sv"))
	require.Error(t, err)
}
