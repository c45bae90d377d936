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

package gzwarc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportTotals(t *testing.T) {
	t.Parallel()

	r := &Report{
		Members: []Member{
			{ID: 0, Offset: 0, CompressedLen: 30, UncompressedLen: 10},
			{ID: 1, Offset: 30, CompressedLen: 25, UncompressedLen: 12},
		},
	}

	assert.EqualValues(t, 55, r.TotalCompressed())
	assert.EqualValues(t, 22, r.TotalUncompressedBySum())
	assert.EqualValues(t, 30+12, r.TotalUncompressedByOffset())
}

func TestReportTotalsEmpty(t *testing.T) {
	t.Parallel()

	r := &Report{}
	assert.Zero(t, r.TotalCompressed())
	assert.Zero(t, r.TotalUncompressedBySum())
	assert.Zero(t, r.TotalUncompressedByOffset())
}

func TestReportString(t *testing.T) {
	t.Parallel()

	r := &Report{
		Status: StatusMultiCompressed,
		Members: []Member{
			{CompressedLen: 10, UncompressedLen: 5},
		},
	}
	assert.Equal(t,
		"GzipReport(status=multiCompressed, #entries=1, compressed=10 bytes, uncompressed=5 bytes, exception=none)",
		r.String(),
	)
}

func TestReportRecommendation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		report *Report
		want   string
	}{
		{
			name:   "uncompressed no gz ext",
			report: &Report{Filename: "data.txt", Status: StatusUncompressed},
			want:   "file is not compressed; consider compressing it",
		},
		{
			name:   "uncompressed with gz ext",
			report: &Report{Filename: "data.txt.gz", Status: StatusUncompressed},
			want:   "file name ends in .gz but the content is not gzip-compressed: remove the extension or compress the file",
		},
		{
			name:   "single member",
			report: &Report{Filename: "data.warc.gz", Status: StatusSingleCompressed},
			want:   "file is a single gzip member; random access to individual records is impossible; recompress with one gzip member per record",
		},
		{
			name:   "multi member correctly named",
			report: &Report{Filename: "data.warc.gz", Status: StatusMultiCompressed},
			want:   "file is correctly stored as one gzip member per record",
		},
		{
			name:   "multi member missing extension",
			report: &Report{Filename: "data.warc", Status: StatusMultiCompressed},
			want:   "file is correctly stored as one gzip member per record; rename it to add a .gz extension",
		},
		{
			name:   "recompressed",
			report: &Report{Filename: "data.warc.gz.gz", Status: StatusRecompressed},
			want:   "file is double-wrapped: the whole file is one gzip member whose content is itself a multi-member gzip stream; unwrap it once and keep the .gz extension",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.report.Recommendation())
		})
	}
}

func TestMemberLine(t *testing.T) {
	t.Parallel()

	m := Member{ID: 2, Offset: 100, CompressedLen: 20, UncompressedLen: 15, Snippet: []byte("abc\n\tdef")}

	assert.Equal(t,
		"Entry #2: source(100->120), compressed=20 bytes, uncompressed=15 bytes",
		MemberLine(m, false),
	)
	assert.Equal(t,
		`Entry #2: source(100->120), compressed=20 bytes, uncompressed=15 bytes snippet=abc\n\tdef`,
		MemberLine(m, true),
	)
}

func TestEscapeSnippet(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `hi\r\n`, EscapeSnippet([]byte("hi\r\n")))
	assert.Equal(t, `\x00\x01`, EscapeSnippet([]byte{0x00, 0x01}))
	assert.Equal(t, "plain text", EscapeSnippet([]byte("plain text")))
}
