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

package gif

import (
	"bytes"
	"compress/lzw"
	"testing"

	"github.com/wuffs-gif/gif/internal/chunkfeed"
)

// encodeGIFLZW compresses data the same way the GIF format does: LSB-first
// bit packing, literalWidth-bit raw codes. The standard library's
// compress/lzw already implements this exact variant when given lzw.LSB,
// so there is no need for a hand-rolled test encoder.
func encodeGIFLZW(tt *testing.T, data []byte, literalWidth int) []byte {
	tt.Helper()
	w := &bytes.Buffer{}
	enc := lzw.NewWriter(w, lzw.LSB, literalWidth)
	if _, err := enc.Write(data); err != nil {
		tt.Fatalf("encodeGIFLZW: Write: %v", err)
	}
	if err := enc.Close(); err != nil {
		tt.Fatalf("encodeGIFLZW: Close: %v", err)
	}
	return w.Bytes()
}

func decodeAllAtOnce(tt *testing.T, encoded []byte, literalWidth int) []byte {
	tt.Helper()
	d := NewLZWDecoder(Version, false)
	if st := d.SetLiteralWidth(literalWidth); st != StatusOK {
		tt.Fatalf("SetLiteralWidth: %v", st)
	}
	src := &Buffer{Bytes: encoded, WriteIndex: len(encoded), Closed: true}
	dst := &Buffer{Bytes: make([]byte, 1<<20)}
	if st := d.Decode(dst, src); st != StatusOK {
		tt.Fatalf("Decode: %v", st)
	}
	return dst.Bytes[:dst.WriteIndex]
}

func TestLZWRoundTrip(t *testing.T) {
	testCases := []struct {
		name         string
		literalWidth int
		data         []byte
	}{
		{"empty", 8, nil},
		{"one byte", 8, []byte{0x42}},
		{"repeats", 8, bytes.Repeat([]byte{0x07}, 5000)},
		{"ascending", 4, func() []byte {
			b := make([]byte, 4096)
			for i := range b {
				b[i] = byte(i) & 0x0f
			}
			return b
		}()},
		{"random-ish", 8, []byte("the quick brown fox jumps over the lazy dog, repeatedly, " +
			"the quick brown fox jumps over the lazy dog, repeatedly")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded := encodeGIFLZW(t, tc.data, tc.literalWidth)
			got := decodeAllAtOnce(t, encoded, tc.literalWidth)
			if !bytes.Equal(got, tc.data) {
				t.Fatalf("got %d bytes, want %d bytes (mismatch)", len(got), len(tc.data))
			}
		})
	}
}

func TestLZWResumableAcrossChunkSizes(t *testing.T) {
	data := bytes.Repeat([]byte("abcabcabcxyzxyzxyz"), 400)
	encoded := encodeGIFLZW(t, data, 8)

	newDecoder := func() chunkfeed.Decoder {
		d := NewLZWDecoder(Version, false)
		if st := d.SetLiteralWidth(8); st != StatusOK {
			t.Fatalf("SetLiteralWidth: %v", st)
		}
		return d
	}

	got := chunkfeed.AssertStableAcrossChunkSizes(t, newDecoder, encoded,
		[]int{1, 2, 3, 5, 7, 16, 64, 997, len(encoded)})
	if !bytes.Equal(got, data) {
		t.Fatalf("decoded bytes did not match the original input")
	}
}

func TestLZWBadCode(t *testing.T) {
	d := NewLZWDecoder(Version, false)
	if st := d.SetLiteralWidth(2); st != StatusOK {
		t.Fatalf("SetLiteralWidth: %v", st)
	}
	// literalWidth 2 means clear_code = 4, end_code = 5, and an initial
	// code width of 3 bits. The first 3 bits of 0x06 (0b110) decode to
	// code 6, which is neither a literal, clear_code, end_code, nor an
	// already-assigned dictionary entry (save_code starts at 5).
	src := &Buffer{Bytes: []byte{0x06}, Closed: true}
	src.WriteIndex = len(src.Bytes)
	dst := &Buffer{Bytes: make([]byte, 64)}
	st := d.Decode(dst, src)
	if st != ErrLZWCodeIsOutOfRange {
		t.Fatalf("Decode: got %v, want %v", st, ErrLZWCodeIsOutOfRange)
	}
	if !st.IsError() {
		t.Fatalf("IsError: got false, want true")
	}
	// The instance is now poisoned: every subsequent call returns the same
	// error without touching the buffers.
	if st2 := d.Decode(dst, src); st2 != ErrLZWCodeIsOutOfRange {
		t.Fatalf("Decode (after poisoning): got %v, want %v", st2, ErrLZWCodeIsOutOfRange)
	}
}

func TestLZWConstructionProtocol(t *testing.T) {
	if st := NewLZWDecoder(999, false).Decode(&Buffer{}, &Buffer{}); st != ErrBadVersion {
		t.Fatalf("bad version: got %v, want %v", st, ErrBadVersion)
	}

	var zero LZWDecoder
	if st := zero.Decode(&Buffer{}, &Buffer{}); st != ErrConstructorNotCalled {
		t.Fatalf("zero value: got %v, want %v", st, ErrConstructorNotCalled)
	}

	var nilD *LZWDecoder
	if st := nilD.Decode(&Buffer{}, &Buffer{}); st != ErrBadReceiver {
		t.Fatalf("nil receiver: got %v, want %v", st, ErrBadReceiver)
	}

	d := NewLZWDecoder(Version, false)
	if st := d.SetLiteralWidth(1); st != ErrBadArgument {
		t.Fatalf("literal width too small: got %v, want %v", st, ErrBadArgument)
	}
	d = NewLZWDecoder(Version, false)
	if st := d.SetLiteralWidth(9); st != ErrBadArgument {
		t.Fatalf("literal width too large: got %v, want %v", st, ErrBadArgument)
	}
}

// TestLZWSelfReferentialCode exercises the KwKwK case: a code that refers to
// itself, because the encoder assigned it the very slot the decoder is about
// to fill in. Five repeats of the same 2-bit literal reliably produces this
// (clear, 0, 6, 6, end -- the first "6" is emitted before its own table
// entry would otherwise exist), and a correct decoder must still recover the
// original five zero bytes.
func TestLZWSelfReferentialCode(t *testing.T) {
	data := []byte{0, 0, 0, 0, 0}
	encoded := encodeGIFLZW(t, data, 2)
	got := decodeAllAtOnce(t, encoded, 2)
	if !bytes.Equal(got, data) {
		t.Fatalf("got %v, want %v", got, data)
	}
}

// TestLZWCyclicalPrefixChain corrupts a dictionary entry's prefix to point
// back at itself, then dispatches that code directly, bypassing the normal
// bitstream framing. A well-formed stream can never produce this (every
// prefix chain terminates at a literal by construction), but a malformed one
// claiming to be well-formed must not spin forever or walk off the start of
// stack: the walk is bounded by stack's length, and running out of room
// before reaching a literal is reported as ErrLZWPrefixChainIsCyclical.
func TestLZWCyclicalPrefixChain(t *testing.T) {
	d := NewLZWDecoder(Version, false)
	d.literalWidth = 2
	d.clearCode = 4
	d.endCode = 5
	d.width = 3
	d.saveCode = 7
	d.useSaveCode = true
	d.started = true

	// Code 6 is a "dictionary" code (clearCode < 6 <= saveCode, and 6 !=
	// saveCode so this isn't the separate self-referential-dispatch case):
	// its prefix chain should lead back to a literal, but here it points at
	// itself instead.
	d.prefixes[6] = 6
	d.suffixes[6] = 0

	src := &Buffer{Bytes: []byte{0x06}, WriteIndex: 1, Closed: true}
	dst := &Buffer{Bytes: make([]byte, 64)}

	st := d.run(dst, src)
	if st != ErrLZWPrefixChainIsCyclical {
		t.Fatalf("run: got %v, want %v", st, ErrLZWPrefixChainIsCyclical)
	}
	// The walk consumes stack back to front; a chain that never terminates
	// is only caught once it reaches stack[0].
	if d.stack[0] != d.suffixes[6] {
		t.Fatalf("stack[0]: got %v, want %v (the last slot the walk touched)", d.stack[0], d.suffixes[6])
	}
}

func TestLZWClosedDestinationDuringDictionaryFlush(t *testing.T) {
	// Build a stream guaranteed to produce a dictionary-lookup (not
	// literal) code: repeat a two-byte pattern enough times that the
	// encoder assigns it a multi-byte code.
	data := bytes.Repeat([]byte{0x01, 0x02}, 100)
	encoded := encodeGIFLZW(t, data, 8)

	d := NewLZWDecoder(Version, false)
	if st := d.SetLiteralWidth(8); st != StatusOK {
		t.Fatalf("SetLiteralWidth: %v", st)
	}
	src := &Buffer{Bytes: encoded, WriteIndex: len(encoded), Closed: true}
	dst := &Buffer{Bytes: make([]byte, 1), Closed: true}

	// The first code is always a literal (the table starts with only
	// literal entries), so the very first Decode call should not hit the
	// closed-for-writes check: it fills dst with the first literal and
	// stops at the second. Only once a dictionary-lookup code is
	// dispatched should ErrClosedForWrites become possible, which happens
	// on the next call, after dst is drained.
	if st := d.Decode(dst, src); st != StatusShortWrite {
		t.Fatalf("first Decode: got %v, want %v", st, StatusShortWrite)
	}
	dst.WriteIndex = 0
	if st := d.Decode(dst, src); st != ErrClosedForWrites {
		t.Fatalf("second Decode: got %v, want %v", st, ErrClosedForWrites)
	}
}
