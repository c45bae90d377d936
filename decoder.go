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
	"encoding/binary"
	"errors"
	"hash"
	"hash/crc32"
	"io"
)

// gzip header constants, per RFC 1952 section 2.3.
const (
	gzipID1     byte = 0x1f
	gzipID2     byte = 0x8b
	gzipDeflate byte = 8
)

// FLG (Flags) bits, per RFC 1952 section 2.3.1.
const (
	flgText     = 1 << 0
	flgHCRC     = 1 << 1
	flgExtra    = 1 << 2
	flgName     = 1 << 3
	flgComment  = 1 << 4
	flgReserved = 1<<5 | 1<<6 | 1<<7
)

// DefaultSnippetWidth is the default number of leading decompressed bytes
// captured per member when a caller doesn't request otherwise.
const DefaultSnippetWidth = 30

// Member describes one gzip member found in a concatenated gzip stream.
// Once appended to a decoder's member sequence it is never mutated.
type Member struct {
	// ID is the dense, 0-based index of the member within the file.
	ID int

	// Offset is the byte position of the member's first byte (the magic
	// 0x1f 0x8b) within the original input, measured from 0.
	Offset int64

	// CompressedLen is the byte length of the member: header + DEFLATE
	// payload + 8-byte trailer.
	CompressedLen int64

	// UncompressedLen is the member's declared ISIZE (uncompressed
	// length modulo 2^32), verified to equal the number of bytes
	// actually produced.
	UncompressedLen uint32

	// Snippet holds up to N leading bytes of the member's decompressed
	// output, verbatim (including any zero bytes).
	Snippet []byte
}

// memberState tracks the in-progress decoding of one member.
type memberState struct {
	id      int
	origin  int64
	flate   io.ReadCloser
	crc     hash.Hash32
	count   uint64
	snippet []byte
	snipCap int
}

// CountingGzipDecoder parses concatenated gzip members from a
// PositionTrackingReader, producing a linear sequence of Member
// descriptors while optionally yielding the decompressed byte stream to
// the caller via Read.
//
// Constructed with concatenated=true, it consumes members until true EOF.
// With concatenated=false, it stops after the first member's trailer,
// leaving the reader positioned immediately after it.
//
// A CountingGzipDecoder is not safe for concurrent use.
type CountingGzipDecoder struct {
	pr           *PositionTrackingReader
	concatenated bool
	snippetWidth int

	members []Member
	cur     *memberState
	err     error
	closed  bool
}

// NewCountingGzipDecoder returns a decoder reading from pr. snippetWidth
// must be >= 0; a value of 0 disables snippet capture.
func NewCountingGzipDecoder(pr *PositionTrackingReader, concatenated bool, snippetWidth int) *CountingGzipDecoder {
	return &CountingGzipDecoder{
		pr:           pr,
		concatenated: concatenated,
		snippetWidth: snippetWidth,
	}
}

// Members returns the sequence of members successfully parsed so far, in
// file order.
func (d *CountingGzipDecoder) Members() []Member {
	return d.members
}

// Read implements io.Reader, delivering decompressed bytes across member
// boundaries (if concatenated) until the input is exhausted or a
// structural error is encountered. The returned error is io.EOF on a
// clean end of input, or a *DecodeError otherwise.
func (d *CountingGzipDecoder) Read(dst []byte) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	if len(dst) == 0 {
		return 0, nil
	}

	for {
		if d.err != nil {
			return 0, d.err
		}
		if d.cur == nil {
			if !d.startMember() {
				return 0, d.err
			}
		}

		n, ferr := d.cur.flate.Read(dst)
		if n > 0 {
			d.cur.crc.Write(dst[:n])
			d.cur.count += uint64(n)
			if len(d.cur.snippet) < d.cur.snipCap {
				need := d.cur.snipCap - len(d.cur.snippet)
				if need > n {
					need = n
				}
				d.cur.snippet = append(d.cur.snippet, dst[:need]...)
			}
		}

		switch {
		case ferr == nil:
			return n, nil
		case errors.Is(ferr, io.EOF):
			if err := d.finishMember(); err != nil {
				d.err = err
				if n > 0 {
					return n, nil
				}
				return 0, err
			}
			d.cur = nil
			if n > 0 {
				return n, nil
			}
			// No output this call (e.g. a zero-length member); loop to
			// either start the next member or observe clean EOF.
			continue
		default:
			d.err = wrapDeflateErr(ferr)
			if n > 0 {
				return n, nil
			}
			return 0, d.err
		}
	}
}

// Drain repeatedly discards decompressed output until EOF, then closes the
// decoder. It returns the total number of uncompressed bytes read.
func (d *CountingGzipDecoder) Drain() (int64, error) {
	var total int64
	buf := make([]byte, 32*1024)
	for {
		n, err := d.Read(buf)
		total += int64(n)
		if err != nil {
			cerr := d.Close()
			// Read returns the bare io.EOF sentinel only on a clean end; a
			// *DecodeError wrapping io.EOF (e.g. KindTruncated) is a failure.
			if err == io.EOF { //nolint:errorlint // exact sentinel intended

				return total, cerr
			}
			return total, err
		}
	}
}

// Close releases the decoder's inflater. It is idempotent.
func (d *CountingGzipDecoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.cur != nil && d.cur.flate != nil {
		_ = d.cur.flate.Close()
		d.cur = nil
	}
	return nil
}

// startMember attempts to begin decoding the next member. It returns false
// (with d.err set) if there is no next member, whether because the input
// is cleanly exhausted (d.err == io.EOF) or because of a structural error.
func (d *CountingGzipDecoder) startMember() bool {
	origin := d.pr.Position()

	var magic [2]byte
	_, err := io.ReadFull(d.pr, magic[:])
	if err != nil {
		if errors.Is(err, io.EOF) && len(d.members) > 0 && d.concatenated {
			d.err = io.EOF
			return false
		}
		d.err = newMagicError(len(d.members), err)
		return false
	}
	if magic[0] != gzipID1 || magic[1] != gzipID2 {
		d.err = newMagicError(len(d.members), nil)
		return false
	}

	if err := d.readHeaderFields(); err != nil {
		d.err = err
		return false
	}

	fr := flate.NewReader(d.pr)
	d.cur = &memberState{
		id:      len(d.members),
		origin:  origin,
		flate:   fr,
		crc:     crc32.NewIEEE(),
		snipCap: d.snippetWidth,
	}
	return true
}

// newMagicError returns the KindNotGzip error for the first member, or
// KindGarbageAfterValidStream once at least one member has already been
// parsed, per spec. A non-EOF-class ioErr is a genuine I/O failure and is
// reported as KindIO instead, since it has nothing to do with the bytes
// actually seen.
func newMagicError(membersSoFar int, ioErr error) *DecodeError {
	if ioErr != nil && !errors.Is(ioErr, io.EOF) && !errors.Is(ioErr, io.ErrUnexpectedEOF) {
		return newDecodeError(KindIO, ioErr)
	}
	if membersSoFar == 0 {
		return newDecodeError(KindNotGzip, ioErr)
	}
	return newDecodeError(KindGarbageAfterValidStream, ioErr)
}

// wrapReadErr classifies a read failure encountered while parsing a gzip
// header or trailer field. EOF-class errors mean the input ran out
// mid-structure (KindTruncated); anything else is a genuine I/O failure
// that must propagate to the caller rather than be folded into a Report.
func wrapReadErr(err error) *DecodeError {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return newDecodeError(KindTruncated, err)
	}
	return newDecodeError(KindIO, err)
}

// wrapDeflateErr classifies an error returned by the DEFLATE decompressor.
// A malformed bitstream is KindDeflateFormat; running out of input
// mid-stream is KindTruncated; anything else is a genuine I/O failure from
// the underlying reader, surfaced as KindIO.
func wrapDeflateErr(ferr error) *DecodeError {
	var corrupt flate.CorruptInputError
	var internal flate.InternalError
	switch {
	case errors.As(ferr, &corrupt), errors.As(ferr, &internal):
		return newDecodeError(KindDeflateFormat, ferr)
	case errors.Is(ferr, io.ErrUnexpectedEOF):
		return newDecodeError(KindTruncated, ferr)
	default:
		return newDecodeError(KindIO, ferr)
	}
}

// readHeaderFields reads the remainder of the gzip header (everything
// after the 2-byte magic): CM, FLG, MTIME, XFL, OS, and any of FEXTRA,
// FNAME, FCOMMENT, FHCRC indicated by FLG.
func (d *CountingGzipDecoder) readHeaderFields() error {
	var rest [8]byte
	if _, err := io.ReadFull(d.pr, rest[:]); err != nil {
		return wrapReadErr(err)
	}
	cm := rest[0]
	flg := rest[1]
	// rest[2:6] is MTIME, rest[6] is XFL, rest[7] is OS: not validated,
	// and not needed by the classification this decoder performs.

	if cm != gzipDeflate {
		return newDecodeError(KindUnsupportedMethod, nil)
	}
	if flg&flgReserved != 0 {
		return newDecodeError(KindReservedFlagsSet, nil)
	}

	if flg&flgExtra != 0 {
		var lenBuf [2]byte
		if _, err := io.ReadFull(d.pr, lenBuf[:]); err != nil {
			return wrapReadErr(err)
		}
		xlen := int64(binary.LittleEndian.Uint16(lenBuf[:]))
		if _, err := d.pr.Skip(xlen); err != nil {
			return wrapReadErr(err)
		}
	}

	if flg&flgName != 0 {
		if err := d.skipCString(); err != nil {
			return err
		}
	}

	if flg&flgComment != 0 {
		if err := d.skipCString(); err != nil {
			return err
		}
	}

	if flg&flgHCRC != 0 {
		var crcBuf [2]byte
		if _, err := io.ReadFull(d.pr, crcBuf[:]); err != nil {
			return wrapReadErr(err)
		}
	}

	return nil
}

// skipCString reads (and discards) a NUL-terminated ISO-8859-1 string, as
// used by the gzip header's FNAME and FCOMMENT fields.
func (d *CountingGzipDecoder) skipCString() error {
	for {
		b, err := d.pr.ReadByte()
		if err != nil {
			return wrapReadErr(err)
		}
		if b == 0 {
			return nil
		}
	}
}

// finishMember validates the trailer of the in-progress member and, on
// success, appends it to d.members.
func (d *CountingGzipDecoder) finishMember() error {
	cur := d.cur
	_ = cur.flate.Close()

	var trailer [8]byte
	if _, err := io.ReadFull(d.pr, trailer[:]); err != nil {
		return wrapReadErr(err)
	}
	storedCRC := binary.LittleEndian.Uint32(trailer[0:4])
	storedISIZE := binary.LittleEndian.Uint32(trailer[4:8])

	if cur.crc.Sum32() != storedCRC {
		return newDecodeError(KindCorruptCRC, nil)
	}
	//nolint:gosec // ISIZE is defined as the count modulo 2^32.
	if uint32(cur.count) != storedISIZE {
		return newDecodeError(KindCorruptISIZE, nil)
	}

	m := Member{
		ID:              cur.id,
		Offset:          cur.origin,
		CompressedLen:   d.pr.Position() - cur.origin,
		UncompressedLen: storedISIZE,
		Snippet:         cur.snippet,
	}
	d.members = append(d.members, m)

	if !d.concatenated {
		d.err = io.EOF
	}
	return nil
}
