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

// Package gzfixture builds raw gzip byte sequences for tests, member by
// member, with deliberate control over header flags and trailer fields that
// compress/gzip's own Writer does not expose.
package gzfixture

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"hash/crc32"
)

// gzip header constants, per RFC 1952 section 2.3.
const (
	gzipID1     byte = 0x1f
	gzipID2     byte = 0x8b
	gzipDeflate byte = 8
)

// FLG bits, per RFC 1952 section 2.3.1.
const (
	FlgText    = 1 << 0
	FlgHCRC    = 1 << 1
	FlgExtra   = 1 << 2
	FlgName    = 1 << 3
	FlgComment = 1 << 4
)

// Member builds one gzip member's raw bytes: content is compressed with
// DEFLATE at the given level and wrapped in a standard 10-byte header and
// 8-byte CRC32/ISIZE trailer. It is the fixture-building analogue of
// ianlewis/go-dictzip's Writer.writeHeader/flushCompressor, trimmed to a
// single non-chunked member with no EXTRA field by default.
func Member(content []byte, level int) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{gzipID1, gzipID2, gzipDeflate, 0, 0, 0, 0, 0, 0, 0xff})

	fw, err := flate.NewWriter(&buf, level)
	if err != nil {
		panic(err)
	}
	if _, err := fw.Write(content); err != nil {
		panic(err)
	}
	if err := fw.Close(); err != nil {
		panic(err)
	}

	digest := crc32.ChecksumIEEE(content)
	var trailer [8]byte
	binary.LittleEndian.PutUint32(trailer[0:4], digest)
	//nolint:gosec // ISIZE is defined as the count modulo 2^32.
	binary.LittleEndian.PutUint32(trailer[4:8], uint32(len(content)))
	buf.Write(trailer[:])

	return buf.Bytes()
}

// MemberWithName builds one gzip member like Member, additionally setting
// the FNAME flag and writing name as a NUL-terminated header field.
func MemberWithName(content []byte, level int, name string) []byte {
	header := []byte{gzipID1, gzipID2, gzipDeflate, FlgName, 0, 0, 0, 0, 0, 0xff}
	return withPayload(header, append([]byte(name), 0), content, level)
}

// MemberWithExtra builds one gzip member like Member, additionally setting
// the FEXTRA flag and writing extra as the XLEN-prefixed EXTRA field.
func MemberWithExtra(content []byte, level int, extra []byte) []byte {
	header := []byte{gzipID1, gzipID2, gzipDeflate, FlgExtra, 0, 0, 0, 0, 0, 0xff}
	var xlenField [2]byte
	binary.LittleEndian.PutUint16(xlenField[:], uint16(len(extra)))
	return withPayload(header, append(xlenField[:], extra...), content, level)
}

// MemberWithReservedFlag builds one gzip member with one of the FLG byte's
// reserved bits (5, 6, or 7) set, which is invalid per RFC 1952 and should
// be rejected by any conforming decoder.
func MemberWithReservedFlag(content []byte, level int) []byte {
	header := []byte{gzipID1, gzipID2, gzipDeflate, 1 << 5, 0, 0, 0, 0, 0, 0xff}
	return withPayload(header, nil, content, level)
}

// MemberWithUnsupportedMethod builds one gzip member whose CM byte is not 8
// (DEFLATE), which is invalid per RFC 1952.
func MemberWithUnsupportedMethod(content []byte, level int) []byte {
	header := []byte{gzipID1, gzipID2, 0, 0, 0, 0, 0, 0, 0, 0xff}
	return withPayload(header, nil, content, level)
}

func withPayload(header, extraFields, content []byte, level int) []byte {
	var buf bytes.Buffer
	buf.Write(header)
	buf.Write(extraFields)

	fw, err := flate.NewWriter(&buf, level)
	if err != nil {
		panic(err)
	}
	if _, err := fw.Write(content); err != nil {
		panic(err)
	}
	if err := fw.Close(); err != nil {
		panic(err)
	}

	digest := crc32.ChecksumIEEE(content)
	var trailer [8]byte
	binary.LittleEndian.PutUint32(trailer[0:4], digest)
	//nolint:gosec // ISIZE is defined as the count modulo 2^32.
	binary.LittleEndian.PutUint32(trailer[4:8], uint32(len(content)))
	buf.Write(trailer[:])

	return buf.Bytes()
}

// Concat joins members into one byte sequence, as in a concatenated-gzip
// WARC-style file.
func Concat(members ...[]byte) []byte {
	var buf bytes.Buffer
	for _, m := range members {
		buf.Write(m)
	}
	return buf.Bytes()
}

// FlipCRC flips every bit of the first CRC32 byte of a member built by this
// package, corrupting it while leaving every other byte (including ISIZE)
// intact. member must be the full byte slice of exactly one member.
func FlipCRC(member []byte) []byte {
	out := append([]byte(nil), member...)
	out[len(out)-8] ^= 0xff
	return out
}

// Truncate drops the trailing n bytes from member.
func Truncate(member []byte, n int) []byte {
	return member[:len(member)-n]
}
