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
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
)

// CompressionAnalyzer drives a CountingGzipDecoder over a file, optionally
// performs a second decoding pass on the already-decoded bytes to detect
// double-wrapping, and maps the observations to a Status.
type CompressionAnalyzer struct {
	// SnippetWidth is the number of leading decompressed bytes captured
	// per member. A value <= 0 is treated as DefaultSnippetWidth.
	SnippetWidth int
}

// NewCompressionAnalyzer returns a CompressionAnalyzer using
// DefaultSnippetWidth.
func NewCompressionAnalyzer() *CompressionAnalyzer {
	return &CompressionAnalyzer{SnippetWidth: DefaultSnippetWidth}
}

// opener returns a fresh, independently-readable-from-the-start handle on
// the same underlying bytes; Analyze needs to open the input twice
// (sequentially, never concurrently) when double-wrap detection runs.
type opener func() (io.ReadCloser, error)

// Analyze opens path and classifies its compression layout.
//
// A true I/O error (the file cannot be opened, or a read fails for a
// reason unrelated to gzip structure) is returned as the second value and
// no Report is produced. Any gzip structural problem is instead captured
// in the returned Report's Status and Err.
func (a *CompressionAnalyzer) Analyze(path string) (*Report, error) {
	return a.analyze(path, func() (io.ReadCloser, error) {
		return os.Open(path)
	})
}

// AnalyzeBytes classifies data as if it were the contents of a file named
// name. It is primarily useful for tests that want to exercise
// CompressionAnalyzer without touching the filesystem.
func (a *CompressionAnalyzer) AnalyzeBytes(name string, data []byte) (*Report, error) {
	return a.analyze(name, func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}

func (a *CompressionAnalyzer) analyze(name string, open opener) (*Report, error) {
	snippetWidth := a.SnippetWidth
	if snippetWidth <= 0 {
		snippetWidth = DefaultSnippetWidth
	}

	f, err := open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening %q: %w", ErrGzwarc, name, err)
	}
	defer f.Close()

	dec := NewCountingGzipDecoder(NewPositionTrackingReader(f), true, snippetWidth)
	_, derr := dec.Drain()

	var de *DecodeError
	if errors.As(derr, &de) && de.Kind == KindIO {
		return nil, fmt.Errorf("%w: reading %q: %w", ErrGzwarc, name, derr)
	}

	status, statusErr := classify(derr, dec.Members())
	report := &Report{
		Filename: name,
		Status:   status,
		Members:  dec.Members(),
		Err:      statusErr,
	}

	if status == StatusSingleCompressed {
		if inner, ok := a.tryDoubleWrap(open, snippetWidth); ok {
			report.Status = StatusRecompressed
			report.Members = inner
			report.Err = nil
		}
	}

	return report, nil
}

// classify maps a decoder's terminal error (possibly nil, for a clean
// stop) and its recorded members to a Status. It has no case for KindIO,
// which would be reported as StatusFaultyCompressed; callers must check for
// that before calling classify.
func classify(derr error, members []Member) (Status, error) {
	if derr == nil {
		switch len(members) {
		case 0:
			return StatusUncompressed, nil
		case 1:
			return StatusSingleCompressed, nil
		default:
			return StatusMultiCompressed, nil
		}
	}

	var de *DecodeError
	if !errors.As(derr, &de) {
		return StatusFaultyCompressed, derr
	}

	switch de.Kind {
	case KindNotGzip:
		return StatusUncompressed, nil
	case KindGarbageAfterValidStream:
		return StatusGarbageAtEnd, derr
	case KindTruncated:
		return StatusTruncated, derr
	default:
		return StatusFaultyCompressed, derr
	}
}

// tryDoubleWrap reopens the input, unwraps it once with the standard
// library's single-pass compress/gzip, and feeds the result into a fresh
// CountingGzipDecoder. If that inner decoder terminates cleanly with two
// or more members, its members are returned together with ok=true.
func (a *CompressionAnalyzer) tryDoubleWrap(open opener, snippetWidth int) ([]Member, bool) {
	f, err := open()
	if err != nil {
		return nil, false
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, false
	}
	defer gz.Close()

	decoded, err := io.ReadAll(gz)
	if err != nil {
		return nil, false
	}

	inner := NewCountingGzipDecoder(NewPositionTrackingReader(bytes.NewReader(decoded)), true, snippetWidth)
	_, derr := inner.Drain()
	if derr != nil {
		return nil, false
	}

	members := inner.Members()
	if len(members) < 2 {
		return nil, false
	}
	return members, true
}
