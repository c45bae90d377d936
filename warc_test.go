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

func TestWarcCheckMatchingContentLength(t *testing.T) {
	t.Parallel()

	content := "WARC/1.0\r\nContent-Length: 5\r\n\r\nhello\r\n\r\n"
	m := Member{Snippet: []byte(content), UncompressedLen: uint32(len(content))}
	assert.True(t, WarcCheck(m))
}

func TestWarcCheckWrongContentLength(t *testing.T) {
	t.Parallel()

	content := "WARC/1.0\r\nContent-Length: 5\r\n\r\nhello\r\n\r\n"
	m := Member{Snippet: []byte(content), UncompressedLen: uint32(len(content)) + 1}
	assert.False(t, WarcCheck(m))
}

func TestWarcCheckNotAWarcRecord(t *testing.T) {
	t.Parallel()

	m := Member{Snippet: []byte("just some plain text, not a record"), UncompressedLen: 35}
	assert.False(t, WarcCheck(m))
}

func TestWarcCheckNonASCIIBytesIgnored(t *testing.T) {
	t.Parallel()

	content := "WARC/1.0\r\nContent-Length: 5\r\n\r\nhello\r\n\r\n"
	snippet := append([]byte{0x00, 0xff}, []byte(content)...)
	m := Member{Snippet: snippet, UncompressedLen: uint32(len(content))}
	assert.True(t, WarcCheck(m))
}
