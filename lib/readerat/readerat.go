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

// ----------------

// Package readerat provides utilities for the io.ReaderAt type.
package readerat

import (
	"io"

	"github.com/wuffs-gif/gif/lib/gif"
)

// FillChunk reads up to chunkSize bytes from r at off into buf's writable
// region, advancing buf.WriteIndex by however many bytes actually arrived
// and marking buf.Closed once r reports io.EOF.
//
// It is meant to be called in a loop, alternating with a gif.Decoder (or
// gif.LZWDecoder) call on the same buf: each call makes one bounded
// ReadAt, so a caller feeding a decoder from a large file never has to
// hold more than chunkSize unread bytes in memory at once. Because each
// caller tracks its own off and owns its own Buffer, several goroutines
// can drive independent decodes over the same underlying ReaderAt (e.g.
// the same os.File) without sharing mutable state -- see cmd/gifdump's
// concurrent mode.
func FillChunk(r io.ReaderAt, off int64, buf *gif.Buffer, chunkSize int) (newOff int64, err error) {
	if buf.ReadIndex > 0 {
		n := copy(buf.Bytes, buf.Bytes[buf.ReadIndex:buf.WriteIndex])
		buf.ReadIndex = 0
		buf.WriteIndex = n
	}
	space := buf.Writable()
	if len(space) > chunkSize {
		space = space[:chunkSize]
	}
	if len(space) == 0 {
		return off, nil
	}
	n, err := r.ReadAt(space, off)
	buf.WriteIndex += n
	off += int64(n)
	if err == io.EOF {
		buf.Closed = true
		return off, nil
	}
	return off, err
}
