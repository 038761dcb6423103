// Copyright 2019 The Wuffs Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package chunkfeed provides support for testing that a decoder's output
// does not depend on how finely its source bytes are chopped up across
// suspending calls.
package chunkfeed

import (
	"testing"

	"github.com/wuffs-gif/gif/lib/gif"
)

// Decoder is satisfied by *gif.LZWDecoder and *gif.Decoder: one call
// consumes as much of src as it can, appends decoded bytes to dst, and
// reports a Status.
type Decoder interface {
	Decode(dst, src *gif.Buffer) gif.Status
}

// Drive feeds all of full to d in pieces of at most chunkSize bytes,
// draining dst whenever it fills, until d reports StatusOK, and returns
// the concatenated decoded bytes. It fails tt if d ever reports a
// terminal error.
func Drive(tt *testing.T, d Decoder, full []byte, chunkSize int) []byte {
	tt.Helper()
	if chunkSize <= 0 {
		chunkSize = 1
	}

	src := &gif.Buffer{Bytes: make([]byte, chunkSize)}
	dst := &gif.Buffer{Bytes: make([]byte, 4096)}
	var out []byte
	pos := 0

	for {
		if src.ReadIndex > 0 {
			n := copy(src.Bytes, src.Bytes[src.ReadIndex:src.WriteIndex])
			src.ReadIndex = 0
			src.WriteIndex = n
		}
		for src.WriteIndex < len(src.Bytes) && pos < len(full) {
			src.Bytes[src.WriteIndex] = full[pos]
			src.WriteIndex++
			pos++
		}
		src.Closed = pos >= len(full)

		status := d.Decode(dst, src)

		out = append(out, dst.Bytes[:dst.WriteIndex]...)
		dst.WriteIndex = 0
		dst.ReadIndex = 0

		switch status {
		case gif.StatusOK:
			return out
		case gif.StatusShortRead, gif.StatusShortWrite:
			continue
		default:
			tt.Fatalf("chunkfeed: Decode: %v", status)
			return nil
		}
	}
}

// AssertStableAcrossChunkSizes calls newDecoder once per entry in
// chunkSizes (each run gets a fresh Decoder, so that no state carries over
// from the previous run), drives each to completion with Drive,
// and fails tt if any run's decoded bytes differ from the first.
func AssertStableAcrossChunkSizes(tt *testing.T, newDecoder func() Decoder, full []byte, chunkSizes []int) []byte {
	tt.Helper()
	var want []byte
	for i, cs := range chunkSizes {
		got := Drive(tt, newDecoder(), full, cs)
		if i == 0 {
			want = got
			continue
		}
		if len(got) != len(want) {
			tt.Errorf("chunkfeed: chunkSize=%d: decoded length: got %d, want %d", cs, len(got), len(want))
			continue
		}
		for j := range got {
			if got[j] != want[j] {
				tt.Errorf("chunkfeed: chunkSize=%d: byte %d: got %#02x, want %#02x", cs, j, got[j], want[j])
				break
			}
		}
	}
	return want
}
