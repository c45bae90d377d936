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
	"fmt"
	"strings"
)

// Status classifies the overall compression shape of an analyzed file.
// The zero value is StatusUncompressed.
type Status int

const (
	// StatusUncompressed means the input is empty or does not begin with
	// the gzip magic number. A first member that starts correctly but is
	// malformed or cut short is StatusFaultyCompressed or StatusTruncated.
	StatusUncompressed Status = iota

	// StatusSingleCompressed means exactly one valid member and no
	// trailing bytes were found.
	StatusSingleCompressed

	// StatusMultiCompressed means two or more valid members and no
	// trailing bytes were found.
	StatusMultiCompressed

	// StatusFaultyCompressed means zero or more members parsed, then an
	// error occurred inside a gzip structure (bad CRC, ISIZE mismatch,
	// reserved flags, an unsupported method, or malformed DEFLATE data).
	StatusFaultyCompressed

	// StatusGarbageAtEnd means at least one valid member was found,
	// followed by bytes that do not begin a valid gzip header.
	StatusGarbageAtEnd

	// StatusRecompressed means the whole file is a single member, but
	// its decompressed bytes themselves form a valid multi-member gzip
	// stream.
	StatusRecompressed

	// StatusTruncated means at least one member may have parsed, then
	// EOF was reached inside a member's header, DEFLATE payload, or
	// trailer. Kept distinct from StatusFaultyCompressed because the
	// originating condition (ran out of bytes) is unambiguous, unlike a
	// CRC/ISIZE mismatch or a reserved-flags/unsupported-method error.
	StatusTruncated
)

// String returns a human-readable name for s.
func (s Status) String() string {
	switch s {
	case StatusUncompressed:
		return "uncompressed"
	case StatusSingleCompressed:
		return "singleCompressed"
	case StatusMultiCompressed:
		return "multiCompressed"
	case StatusFaultyCompressed:
		return "faultyCompressed"
	case StatusGarbageAtEnd:
		return "garbageAtEnd"
	case StatusRecompressed:
		return "recompressed"
	case StatusTruncated:
		return "truncated"
	default:
		return "unknown"
	}
}

// Report bundles the outcome of analyzing one file. It is immutable once
// returned by CompressionAnalyzer.Analyze, and freely shareable across
// goroutines thereafter.
type Report struct {
	// Filename is the name or path given to Analyze, if any. It is used
	// only to drive the .gz-extension checks in Recommendation.
	Filename string

	// Status is the overall compression shape classification.
	Status Status

	// Members is the sequence of members parsed before Status was
	// determined. For StatusRecompressed these are the *inner* members
	// (what a caller would see after unwrapping once).
	Members []Member

	// Err is the structural decode error that led to a non-clean
	// Status, or nil for StatusUncompressed, StatusSingleCompressed,
	// StatusMultiCompressed, and StatusRecompressed.
	Err error
}

// TotalCompressed returns the sum of all members' CompressedLen.
func (r *Report) TotalCompressed() int64 {
	var total int64
	for _, m := range r.Members {
		total += m.CompressedLen
	}
	return total
}

// TotalUncompressedByOffset returns last.Offset + last.UncompressedLen for
// the final member, or 0 if there are no members. This mixes a compressed
// offset with an uncompressed length; it is kept only for compatibility
// with tooling that expects this convention. Prefer
// TotalUncompressedBySum for a semantically clean total.
func (r *Report) TotalUncompressedByOffset() int64 {
	if len(r.Members) == 0 {
		return 0
	}
	last := r.Members[len(r.Members)-1]
	return last.Offset + int64(last.UncompressedLen)
}

// TotalUncompressedBySum returns the sum of every member's
// UncompressedLen.
func (r *Report) TotalUncompressedBySum() int64 {
	var total int64
	for _, m := range r.Members {
		total += int64(m.UncompressedLen)
	}
	return total
}

func hasGzExt(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".gz")
}

// Recommendation returns a human-readable recommendation driven by the
// Report's Status and, for a few statuses, whether Filename carries a .gz
// extension.
func (r *Report) Recommendation() string {
	extNote := ""
	if r.Filename != "" && !hasGzExt(r.Filename) {
		extNote = " the file name is also missing a .gz extension"
	}

	switch r.Status {
	case StatusUncompressed:
		if r.Filename != "" && hasGzExt(r.Filename) {
			return "file name ends in .gz but the content is not gzip-compressed: remove the extension or compress the file"
		}
		return "file is not compressed; consider compressing it"
	case StatusSingleCompressed:
		return "file is a single gzip member; random access to individual records is impossible; recompress with one gzip member per record"
	case StatusMultiCompressed:
		if r.Filename != "" && !hasGzExt(r.Filename) {
			return "file is correctly stored as one gzip member per record; rename it to add a .gz extension"
		}
		return "file is correctly stored as one gzip member per record"
	case StatusFaultyCompressed:
		msg := "file contains gzip structure errors after " + memberCountPhrase(len(r.Members)) + ";" + extNote
		return strings.TrimSuffix(msg, ";")
	case StatusTruncated:
		msg := "file is truncated inside a gzip member after " + memberCountPhrase(len(r.Members)) + ";" + extNote
		return strings.TrimSuffix(msg, ";")
	case StatusGarbageAtEnd:
		msg := "file has non-gzip trailing bytes after " + memberCountPhrase(len(r.Members)) + ";" + extNote
		return strings.TrimSuffix(msg, ";")
	case StatusRecompressed:
		return "file is double-wrapped: the whole file is one gzip member whose content is itself a multi-member gzip stream; unwrap it once and keep the .gz extension"
	default:
		return ""
	}
}

func memberCountPhrase(n int) string {
	if n == 1 {
		return "1 valid member"
	}
	return fmt.Sprintf("%d valid members", n)
}

// String returns the one-line summary form described by the report
// textual form contract: GzipReport(status=S, #entries=N,
// compressed=C bytes, uncompressed=U bytes, exception=E).
func (r *Report) String() string {
	exception := "none"
	if r.Err != nil {
		exception = r.Err.Error()
	}
	return fmt.Sprintf(
		"GzipReport(status=%s, #entries=%d, compressed=%d bytes, uncompressed=%d bytes, exception=%s)",
		r.Status, len(r.Members), r.TotalCompressed(), r.TotalUncompressedBySum(), exception,
	)
}

// MemberLine formats one member as: "Entry #id: source(off->off+clen),
// compressed=C bytes, uncompressed=U bytes", optionally followed by
// "snippet=..." with non-printable bytes escaped as \n, \r, \t, or \xHH.
func MemberLine(m Member, withSnippet bool) string {
	line := fmt.Sprintf(
		"Entry #%d: source(%d->%d), compressed=%d bytes, uncompressed=%d bytes",
		m.ID, m.Offset, m.Offset+m.CompressedLen, m.CompressedLen, m.UncompressedLen,
	)
	if withSnippet {
		line += " snippet=" + EscapeSnippet(m.Snippet)
	}
	return line
}

// EscapeSnippet renders b for display, escaping '\n', '\r', '\t' as their
// usual two-character forms and any other non-printable byte as \xHH.
func EscapeSnippet(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		switch c {
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c >= 0x20 && c < 0x7f {
				sb.WriteByte(c)
			} else {
				fmt.Fprintf(&sb, `\x%02x`, c)
			}
		}
	}
	return sb.String()
}
