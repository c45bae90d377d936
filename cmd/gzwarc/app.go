// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const (
	// ExitCodeSuccess is successful error code.
	ExitCodeSuccess int = iota

	// ExitCodeFlagParseError is the exit code for a flag parsing error.
	ExitCodeFlagParseError

	// ExitCodeUnknownError is the exit code for an unknown error.
	ExitCodeUnknownError
)

// ErrFlagParse is a flag parsing error.
var ErrFlagParse = errors.New("parsing flags")

// ErrGzwarcCLI is the base error for CLI-layer failures.
var ErrGzwarcCLI = errors.New("gzwarc")

func init() {
	// Set the HelpFlag to a random name so that it isn't used. `cli`
	// handles the flag with the root command such that it takes a command
	// name argument but we don't use commands.
	//
	// This is done because `gzwarc --help foo` would otherwise display a
	// "command foo not found" error instead of the help.
	//
	// This flag is hidden by the help output.
	// See: github.com/urfave/cli/issues/1809
	cli.HelpFlag = &cli.BoolFlag{
		Name:               "d41d8cd98f00b204e980",
		DisableDefaultText: true,
	}
}

func must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

func newGzwarcApp(log *logrus.Logger) *cli.App {
	env := loadEnvDefaults(log)

	return &cli.App{
		Name:  filepath.Base(os.Args[0]),
		Usage: "Diagnose the gzip compression layout of WARC files.",
		Description: strings.Join([]string{
			"gzwarc(1) inspects a file nominally encoded as gzip and reports",
			"whether it is stored as one independently-decompressible gzip",
			"member per record, one monolithic member, or something malformed.",
		}, "\n"),
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "snippet",
				Usage:   "number of leading decompressed bytes to capture per member",
				Aliases: []string{"n"},
				Value:   env.snippetSize,
			},
			&cli.BoolFlag{
				Name:               "warc-check",
				Usage:              "also evaluate the WARC record sanity predicate per member",
				Aliases:            []string{"w"},
				Value:              env.warcCheck,
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "json",
				Usage:              "emit the report as JSON instead of the table/summary text form",
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "help",
				Usage:              "print this help text and exit",
				Aliases:            []string{"h"},
				DisableDefaultText: true,
			},
			&cli.BoolFlag{
				Name:               "version",
				Usage:              "print version information and exit",
				Aliases:            []string{"v"},
				DisableDefaultText: true,
			},
		},
		ArgsUsage:       "[PATH]...",
		Copyright:       "Google LLC",
		HideHelp:        true,
		HideHelpCommand: true,
		Action: func(c *cli.Context) error {
			if c.Bool("help") {
				check(cli.ShowAppHelp(c))
				return nil
			}

			if c.Bool("version") {
				return printVersion(c)
			}

			if c.Args().Len() == 0 {
				check(cli.ShowAppHelp(c))
				return nil
			}

			for _, path := range c.Args().Slice() {
				a := analyzeCmd{
					path:      path,
					snippet:   c.Int("snippet"),
					warcCheck: c.Bool("warc-check"),
					json:      c.Bool("json"),
					log:       log,
					out:       c.App.Writer,
				}
				if err := a.Run(); err != nil {
					return err
				}
			}

			return nil
		},
		ExitErrHandler: func(c *cli.Context, err error) {
			if err == nil {
				return
			}

			_ = must(fmt.Fprintf(c.App.ErrWriter, "%s: %v\n", c.App.Name, err))
			if errors.Is(err, ErrFlagParse) {
				cli.OsExiter(ExitCodeFlagParseError)
				return
			}

			cli.OsExiter(ExitCodeUnknownError)
		},
	}
}

// check panics if err is non-nil, matching the teacher's "fail loudly on a
// truly unexpected writer error" convention used around cli.ShowAppHelp.
func check(err error) {
	if err != nil {
		panic(err)
	}
}
