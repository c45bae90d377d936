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
	"fmt"
	"io"

	"github.com/rodaine/table"

	"github.com/nlnwa/gzwarc"
)

// printReport writes report's one-line summary, a per-member table, and a
// recommendation to out. When withWarcCheck is set, an additional column
// reports the WARC record sanity predicate for each member.
func printReport(out io.Writer, report *gzwarc.Report, withWarcCheck bool) error {
	if _, err := fmt.Fprintln(out, report.String()); err != nil {
		return fmt.Errorf("%w: writing report: %w", ErrGzwarcCLI, err)
	}

	headers := []interface{}{"entry", "offset", "end", "compressed", "uncompressed"}
	if withWarcCheck {
		headers = append(headers, "warc")
	}
	tbl := table.New(headers...).WithWriter(out)

	for _, m := range report.Members {
		row := []interface{}{
			m.ID,
			m.Offset,
			m.Offset + m.CompressedLen,
			m.CompressedLen,
			m.UncompressedLen,
		}
		if withWarcCheck {
			row = append(row, gzwarc.WarcCheck(m))
		}
		tbl.AddRow(row...)
	}
	tbl.Print()

	if rec := report.Recommendation(); rec != "" {
		if _, err := fmt.Fprintln(out, rec); err != nil {
			return fmt.Errorf("%w: writing recommendation: %w", ErrGzwarcCLI, err)
		}
	}

	return nil
}
