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
	"io"
)

// ErrResetUnsupported is returned by [PositionTrackingReader.Reset] when no
// mark was ever set, or when more than the mark's readlimit bytes have been
// consumed since the mark, making the mark unusable.
var ErrResetUnsupported = fmt.Errorf("%w: reset unsupported", ErrGzwarc)

// PositionTrackingReader wraps an io.Reader, reporting the absolute byte
// position consumed so far, and supports mark/reset with the position
// restored on reset. It implements io.Reader and io.ByteReader so that it
// can be handed directly to compress/flate's decompressor without an
// additional, position-obscuring bufio layer (see decoder.go).
//
// If the underlying source cannot itself mark, PositionTrackingReader
// transparently buffers bytes consumed since the last Mark, up to
// readlimit, so Reset can replay them; the caller never needs to know
// whether the source supports seeking.
type PositionTrackingReader struct {
	r   io.Reader
	pos int64

	marked     bool
	markPos    int64
	readlimit  int
	markBuf    []byte
	markCursor int
	overflowed bool
}

// NewPositionTrackingReader returns a PositionTrackingReader reading from r.
func NewPositionTrackingReader(r io.Reader) *PositionTrackingReader {
	return &PositionTrackingReader{r: r}
}

// Position returns the count of bytes successfully delivered to the caller
// (via Read, ReadByte, or Skip) since construction.
func (p *PositionTrackingReader) Position() int64 {
	return p.pos
}

// Mark records the current position. A subsequent Reset restores both the
// tracked position and the stream of bytes returned by Read/ReadByte to
// this point, as long as no more than readlimit bytes are consumed before
// Reset is called.
func (p *PositionTrackingReader) Mark(readlimit int) {
	p.marked = true
	p.markPos = p.pos
	p.readlimit = readlimit
	// Keep any already-buffered unread replay bytes (a Reset without an
	// intervening Mark simply re-plays from the same point); only the
	// bytes consumed from here on are newly tracked.
	if p.markCursor > 0 {
		p.markBuf = append([]byte(nil), p.markBuf[p.markCursor:]...)
		p.markCursor = 0
	}
	p.overflowed = len(p.markBuf) > readlimit
}

// Reset restores the position and input stream to the most recent Mark.
func (p *PositionTrackingReader) Reset() error {
	if !p.marked {
		return ErrResetUnsupported
	}
	if p.overflowed {
		return ErrResetUnsupported
	}
	p.pos = p.markPos
	p.markCursor = 0
	return nil
}

// Skip discards n bytes, advancing the position. It returns the number of
// bytes actually skipped.
func (p *PositionTrackingReader) Skip(n int64) (int64, error) {
	var skipped int64
	buf := make([]byte, 4096)
	for skipped < n {
		want := n - skipped
		if want > int64(len(buf)) {
			want = int64(len(buf))
		}
		rn, err := p.Read(buf[:want])
		skipped += int64(rn)
		if err != nil {
			return skipped, err
		}
	}
	return skipped, nil
}

// Read implements io.Reader.
func (p *PositionTrackingReader) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}

	// Serve replayed bytes from a prior Mark first.
	if p.markCursor < len(p.markBuf) {
		n := copy(b, p.markBuf[p.markCursor:])
		p.markCursor += n
		p.pos += int64(n)
		return n, nil
	}

	n, err := p.r.Read(b)
	if n > 0 {
		p.pos += int64(n)
		if p.marked {
			p.record(b[:n])
		}
	}
	return n, err
}

// ReadByte implements io.ByteReader.
func (p *PositionTrackingReader) ReadByte() (byte, error) {
	if p.markCursor < len(p.markBuf) {
		c := p.markBuf[p.markCursor]
		p.markCursor++
		p.pos++
		return c, nil
	}

	var buf [1]byte
	n, err := p.r.Read(buf[:])
	if n == 1 {
		p.pos++
		if p.marked {
			p.record(buf[:1])
		}
		return buf[0], nil
	}
	if err == nil {
		err = io.ErrNoProgress
	}
	return 0, err
}

// record appends freshly-read bytes (not replayed ones) to the mark
// buffer, bounding growth at readlimit; once the limit is exceeded the mark
// is flagged unusable and Reset will fail.
func (p *PositionTrackingReader) record(b []byte) {
	if p.overflowed {
		return
	}
	if len(p.markBuf)+len(b) > p.readlimit {
		p.overflowed = true
		p.markBuf = nil
		p.markCursor = 0
		return
	}
	p.markBuf = append(p.markBuf, b...)
	p.markCursor = len(p.markBuf)
}

// Close closes the underlying reader if it implements io.Closer.
func (p *PositionTrackingReader) Close() error {
	if c, ok := p.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
