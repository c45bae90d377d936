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

// Package gzwarc diagnoses the compression layout of a file nominally
// encoded as gzip, with the specific operational goal of validating WARC
// files.
//
// The question this package answers is not "does it decompress?" but "how
// is it compressed?": whether the file is a sequence of independently
// decompressible gzip members (required for random record access in a
// WARC), a single monolithic gzip stream (which destroys random access), a
// gzip stream that has itself been gzipped again, or something malformed.
//
// The standard library's compress/gzip silently stops at the first member
// and does not expose byte offsets, so this package implements its own
// member-aware decoder from RFC 1952 primitives.
//
// Unless otherwise informed clients should not assume implementations in
// this package are safe for parallel execution.
package gzwarc
