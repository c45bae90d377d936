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
	"compress/flate"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nlnwa/gzwarc/internal/gzfixture"
)

func TestAnalyzeBytesUncompressed(t *testing.T) {
	t.Parallel()

	a := NewCompressionAnalyzer()
	report, err := a.AnalyzeBytes("plain.txt", []byte("just some text"))
	require.NoError(t, err)
	assert.Equal(t, StatusUncompressed, report.Status)
	assert.Empty(t, report.Members)
}

func TestAnalyzeBytesEmptyFile(t *testing.T) {
	t.Parallel()

	a := NewCompressionAnalyzer()
	report, err := a.AnalyzeBytes("empty.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, StatusUncompressed, report.Status)
	assert.Empty(t, report.Members)
}

func TestAnalyzeBytesSingleMember(t *testing.T) {
	t.Parallel()

	data := gzfixture.Member([]byte("one record"), flate.DefaultCompression)

	a := NewCompressionAnalyzer()
	report, err := a.AnalyzeBytes("single.txt.gz", data)
	require.NoError(t, err)
	assert.Equal(t, StatusSingleCompressed, report.Status)
	require.Len(t, report.Members, 1)
	assert.EqualValues(t, 10, report.Members[0].UncompressedLen)
}

func TestAnalyzeBytesMultiMember(t *testing.T) {
	t.Parallel()

	data := gzfixture.Concat(
		gzfixture.Member([]byte("record one"), flate.DefaultCompression),
		gzfixture.Member([]byte("record two"), flate.DefaultCompression),
		gzfixture.Member([]byte("record three"), flate.DefaultCompression),
	)

	a := NewCompressionAnalyzer()
	report, err := a.AnalyzeBytes("multi.warc.gz", data)
	require.NoError(t, err)
	assert.Equal(t, StatusMultiCompressed, report.Status)
	assert.Len(t, report.Members, 3)
}

func TestAnalyzeBytesGarbageAtEnd(t *testing.T) {
	t.Parallel()

	data := gzfixture.Concat(
		gzfixture.Member([]byte("record"), flate.DefaultCompression),
		[]byte("trailing junk"),
	)

	a := NewCompressionAnalyzer()
	report, err := a.AnalyzeBytes("dirty.warc.gz", data)
	require.NoError(t, err)
	assert.Equal(t, StatusGarbageAtEnd, report.Status)
	require.Len(t, report.Members, 1)
	assert.Error(t, report.Err)
}

func TestAnalyzeBytesTruncated(t *testing.T) {
	t.Parallel()

	member := gzfixture.Member([]byte("record"), flate.DefaultCompression)
	truncated := gzfixture.Truncate(member, 3)

	a := NewCompressionAnalyzer()
	report, err := a.AnalyzeBytes("partial.warc.gz", truncated)
	require.NoError(t, err)
	assert.Equal(t, StatusTruncated, report.Status)
}

func TestAnalyzeBytesFaultyCRC(t *testing.T) {
	t.Parallel()

	good := gzfixture.Member([]byte("record one"), flate.DefaultCompression)
	bad := gzfixture.FlipCRC(gzfixture.Member([]byte("record two"), flate.DefaultCompression))
	data := gzfixture.Concat(good, bad)

	a := NewCompressionAnalyzer()
	report, err := a.AnalyzeBytes("corrupt.warc.gz", data)
	require.NoError(t, err)
	assert.Equal(t, StatusFaultyCompressed, report.Status)
	require.Len(t, report.Members, 1)
}

func TestAnalyzeBytesRecompressed(t *testing.T) {
	t.Parallel()

	inner := gzfixture.Concat(
		gzfixture.Member([]byte("record one"), flate.DefaultCompression),
		gzfixture.Member([]byte("record two"), flate.DefaultCompression),
	)
	outer := gzfixture.Member(inner, flate.DefaultCompression)

	a := NewCompressionAnalyzer()
	report, err := a.AnalyzeBytes("double.warc.gz.gz", outer)
	require.NoError(t, err)
	assert.Equal(t, StatusRecompressed, report.Status)
	assert.Len(t, report.Members, 2)
}

func TestAnalyzeOpenNonexistentFile(t *testing.T) {
	t.Parallel()

	a := NewCompressionAnalyzer()
	report, err := a.Analyze("/nonexistent/path/to/file.gz")
	require.Error(t, err)
	assert.Nil(t, report)
}
