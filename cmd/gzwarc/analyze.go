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
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/nlnwa/gzwarc"
)

// analyzeCmd analyzes one file and prints its Report.
type analyzeCmd struct {
	path      string
	snippet   int
	warcCheck bool
	json      bool

	log *logrus.Logger
	out io.Writer
}

func (a *analyzeCmd) Run() error {
	analyzer := &gzwarc.CompressionAnalyzer{SnippetWidth: a.snippet}

	report, err := analyzer.Analyze(a.path)
	if err != nil {
		a.log.WithError(err).WithField("path", a.path).Error("analysis failed")
		return fmt.Errorf("%w: analyzing %q: %w", ErrGzwarcCLI, a.path, err)
	}

	switch report.Status {
	case gzwarc.StatusFaultyCompressed, gzwarc.StatusTruncated, gzwarc.StatusGarbageAtEnd:
		a.log.WithFields(logrus.Fields{
			"path":   a.path,
			"status": report.Status.String(),
		}).Warn("structural gzip problem found")
	}

	if a.json {
		return a.printJSON(report)
	}
	return printReport(a.out, report, a.warcCheck)
}

// jsonMember mirrors gzwarc.Member with an additional warcCheck field, and
// exists only so the CLI's JSON form can carry that derived value without
// changing the library's exported type.
type jsonMember struct {
	ID              int    `json:"id"`
	Offset          int64  `json:"offset"`
	CompressedLen   int64  `json:"compressedLen"`
	UncompressedLen uint32 `json:"uncompressedLen"`
	Snippet         string `json:"snippet"`
	WarcCheck       *bool  `json:"warcCheck,omitempty"`
}

type jsonReport struct {
	Filename         string       `json:"filename,omitempty"`
	Status           string       `json:"status"`
	Members          []jsonMember `json:"members"`
	TotalCompressed  int64        `json:"totalCompressed"`
	TotalUncompessed int64        `json:"totalUncompressed"`
	Recommendation   string       `json:"recommendation"`
	Error            string       `json:"error,omitempty"`
}

func (a *analyzeCmd) printJSON(report *gzwarc.Report) error {
	out := jsonReport{
		Filename:         report.Filename,
		Status:           report.Status.String(),
		TotalCompressed:  report.TotalCompressed(),
		TotalUncompessed: report.TotalUncompressedBySum(),
		Recommendation:   report.Recommendation(),
	}
	if report.Err != nil {
		out.Error = report.Err.Error()
	}
	for _, m := range report.Members {
		jm := jsonMember{
			ID:              m.ID,
			Offset:          m.Offset,
			CompressedLen:   m.CompressedLen,
			UncompressedLen: m.UncompressedLen,
			Snippet:         gzwarc.EscapeSnippet(m.Snippet),
		}
		if a.warcCheck {
			ok := gzwarc.WarcCheck(m)
			jm.WarcCheck = &ok
		}
		out.Members = append(out.Members, jm)
	}

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("%w: encoding report: %w", ErrGzwarcCLI, err)
	}
	return nil
}
