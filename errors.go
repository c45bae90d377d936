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
	"errors"
	"fmt"
)

// ErrGzwarc is the base error for all gzwarc errors.
var ErrGzwarc = errors.New("gzwarc")

// Kind identifies the category of a DecodeError. Implementations should
// match on Kind rather than on an error's message text.
type Kind int

const (
	// KindIO is an underlying read failure unrelated to gzip structure.
	KindIO Kind = iota

	// KindNotGzip indicates the first two bytes of the very first member
	// are not the gzip magic number.
	KindNotGzip

	// KindGarbageAfterValidStream indicates bytes following at least one
	// valid member do not begin a new, valid gzip header.
	KindGarbageAfterValidStream

	// KindUnsupportedMethod indicates the CM (compression method) header
	// byte is not 8 (DEFLATE).
	KindUnsupportedMethod

	// KindReservedFlagsSet indicates one of the FLG header's reserved
	// bits (5, 6, or 7) is set.
	KindReservedFlagsSet

	// KindTruncated indicates EOF was reached inside a member's header,
	// DEFLATE payload, or trailer.
	KindTruncated

	// KindCorruptCRC indicates the trailer's stored CRC32 does not match
	// the CRC32 of the decompressed bytes.
	KindCorruptCRC

	// KindCorruptISIZE indicates the trailer's stored ISIZE does not
	// match the low 32 bits of the decompressed byte count.
	KindCorruptISIZE

	// KindDeflateFormat indicates the DEFLATE payload itself is
	// malformed (rejected by the underlying inflater).
	KindDeflateFormat
)

// String returns a human-readable name for k.
func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindNotGzip:
		return "not-gzip"
	case KindGarbageAfterValidStream:
		return "garbage-after-valid-stream"
	case KindUnsupportedMethod:
		return "unsupported-method"
	case KindReservedFlagsSet:
		return "reserved-flags-set"
	case KindTruncated:
		return "truncated"
	case KindCorruptCRC:
		return "corrupt-crc"
	case KindCorruptISIZE:
		return "corrupt-isize"
	case KindDeflateFormat:
		return "deflate-format"
	default:
		return "unknown"
	}
}

// DecodeError is returned by CountingGzipDecoder when it cannot continue.
// Callers should match on Kind, not on Error()'s message text: the message
// is for humans and may change.
type DecodeError struct {
	Kind Kind
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrGzwarc, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrGzwarc, e.Kind)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrGzwarc, so that errors.Is(err, ErrGzwarc)
// succeeds for any DecodeError.
func (e *DecodeError) Is(target error) bool {
	return target == ErrGzwarc
}

func newDecodeError(kind Kind, err error) *DecodeError {
	return &DecodeError{Kind: kind, Err: err}
}
