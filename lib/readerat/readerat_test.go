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

package readerat

import (
	"bytes"
	"testing"

	"github.com/wuffs-gif/gif/lib/gif"
)

func TestFillChunk(t *testing.T) {
	want := []byte("the quick brown fox jumps over the lazy dog")
	r := bytes.NewReader(want)

	buf := &gif.Buffer{Bytes: make([]byte, 6)}
	var off int64
	var got []byte

	for {
		newOff, err := FillChunk(r, off, buf, 3)
		if err != nil {
			t.Fatalf("FillChunk: %v", err)
		}
		off = newOff

		got = append(got, buf.Readable()...)
		buf.ReadIndex = buf.WriteIndex

		if buf.Closed && buf.ReadIndex >= buf.WriteIndex {
			break
		}
	}

	if !bytes.Equal(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFillChunkCompactsPartiallyReadBuffer(t *testing.T) {
	r := bytes.NewReader([]byte("0123456789"))
	buf := &gif.Buffer{Bytes: make([]byte, 4)}

	if _, err := FillChunk(r, 0, buf, 4); err != nil {
		t.Fatalf("FillChunk: %v", err)
	}
	if !bytes.Equal(buf.Readable(), []byte("0123")) {
		t.Fatalf("got %q, want %q", buf.Readable(), "0123")
	}

	// Simulate a decoder consuming some, but not all, of the buffer.
	buf.ReadIndex = 3

	off, err := FillChunk(r, 4, buf, 4)
	if err != nil {
		t.Fatalf("FillChunk: %v", err)
	}
	if buf.ReadIndex != 0 {
		t.Fatalf("ReadIndex was not reset to 0 by compaction: got %d", buf.ReadIndex)
	}
	if !bytes.Equal(buf.Readable(), []byte("3456")) {
		t.Fatalf("got %q, want %q", buf.Readable(), "3456")
	}
	if off != 7 {
		t.Fatalf("newOff: got %d, want 7", off)
	}
}
