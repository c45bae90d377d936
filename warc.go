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
	"regexp"
	"strconv"
)

// warcHeaderPattern matches a WARC record's leading "WARC/<version>" line
// through its Content-Length field and the blank line ending the header
// block. It is evaluated against an ASCII-filtered snippet, never the raw
// bytes, since a member's decompressed content is not guaranteed to be
// valid UTF-8.
var warcHeaderPattern = regexp.MustCompile(`(?s)^WARC/.*?Content-Length: (\d+).*?\r\n\r\n`)

// WarcCheck reports whether m's snippet looks like the start of a WARC
// record whose declared Content-Length is consistent with m's
// UncompressedLen. A false result with no WARC header found is not an
// error: most members of a non-WARC gzip file simply aren't WARC records.
func WarcCheck(m Member) bool {
	snippet := asciiFilter(m.Snippet)

	match := warcHeaderPattern.FindSubmatchIndex(snippet)
	if match == nil {
		return false
	}

	statedLength, err := strconv.ParseUint(string(snippet[match[2]:match[3]]), 10, 32)
	if err != nil {
		return false
	}

	headerSize := int64(match[1] - match[0])
	// +4 for the record body's own trailing "\r\n\r\n".
	expected := headerSize + int64(statedLength) + 4
	return expected == int64(m.UncompressedLen)
}

// asciiFilter drops every byte outside the printable-ASCII-plus-control
// range 1-127, so a regexp anchored on literal ASCII text can be applied
// safely to arbitrary decompressed bytes.
func asciiFilter(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c >= 1 && c <= 127 {
			out = append(out, c)
		}
	}
	return out
}
