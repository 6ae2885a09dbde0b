// Copyright 2026 The SVPP Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command svpp preprocesses SystemVerilog sources and writes the expanded
// text to stdout or a file. The exit status is nonzero when any diagnostics
// were emitted.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"modernc.org/svpp"
)

func main() {
	cmd := &cli.Command{
		Name:      "svpp",
		Usage:     "SystemVerilog macro preprocessor",
		ArgsUsage: "<file.sv>...",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "define",
				Aliases: []string{"D"},
				Usage:   "Predefine a macro, NAME or NAME=VALUE; repeatable",
			},
			&cli.StringSliceFlag{
				Name:    "undef",
				Aliases: []string{"U"},
				Usage:   "Undefine a macro before reading input; repeatable",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file instead of stdout",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Suppress diagnostic messages",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return fmt.Errorf("usage: svpp [-D NAME[=VALUE]] [-o output] <file.sv>...")
	}

	var opts []svpp.Option
	for _, v := range cmd.StringSlice("define") {
		opts = append(opts, svpp.Define(v))
	}
	for _, v := range cmd.StringSlice("undef") {
		opts = append(opts, svpp.Undef(v))
	}

	var out strings.Builder
	var diags []string
	for _, path := range cmd.Args().Slice() {
		r, err := svpp.PreprocessFile(path, opts...)
		if err != nil {
			return err
		}

		out.WriteString(r.Text)
		diags = append(diags, r.Diagnostics...)
	}

	if cmd.String("output") != "" {
		if err := os.WriteFile(cmd.String("output"), []byte(out.String()), 0o644); err != nil {
			return err
		}
	} else {
		fmt.Print(out.String())
	}

	if !cmd.Bool("quiet") {
		for _, v := range diags {
			fmt.Fprintln(os.Stderr, v)
		}
	}
	if len(diags) != 0 {
		os.Exit(1)
	}
	return nil
}
