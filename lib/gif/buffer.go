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

// Buffer is a bounded byte region with read and write cursors, the external
// collaborator type that every decode call in this package borrows (never
// owns) for its source and destination.
//
// The readable span is Bytes[ReadIndex:WriteIndex]; the writable span is
// Bytes[WriteIndex:len(Bytes)]. A decoder mutates ReadIndex on a source
// Buffer and WriteIndex (plus the bytes at and after it) on a destination
// Buffer; it never mutates Bytes on a source Buffer, nor Closed on either.
//
// The zero value is a valid, empty, open Buffer.
type Buffer struct {
	// Bytes is the buffer's backing storage. Its length is the Buffer's
	// capacity; it does not grow.
	Bytes []byte

	// WriteIndex is the count of bytes written. Invariant: WriteIndex <=
	// len(Bytes).
	WriteIndex int

	// ReadIndex is the count of bytes read. Invariant: ReadIndex <=
	// WriteIndex.
	ReadIndex int

	// Closed, once true, asserts that no further bytes will ever be
	// appended to Bytes. On a source Buffer this lets the decoder tell
	// "ran dry for now" (StatusShortRead) apart from "ran dry forever"
	// (ErrUnexpectedEOF). On a destination Buffer it lets the decoder
	// tell "the consumer isn't ready yet" apart from "the consumer will
	// never be ready" (ErrClosedForWrites) on the one code path that
	// checks it — see the LZW decoder's dictionary-lookup branch.
	Closed bool
}

// Readable returns the unread portion of Bytes.
func (b *Buffer) Readable() []byte {
	return b.Bytes[b.ReadIndex:b.WriteIndex]
}

// Writable returns the unwritten portion of Bytes.
func (b *Buffer) Writable() []byte {
	return b.Bytes[b.WriteIndex:]
}

// Reset rewinds both cursors to zero and clears Closed, so the same backing
// array can be reused for a new source or destination.
func (b *Buffer) Reset() {
	b.WriteIndex = 0
	b.ReadIndex = 0
	b.Closed = false
}

// readByte consumes and returns the next unread byte of src. The second
// return value is StatusOK on success, StatusShortRead if src has no
// unread bytes but is not Closed, or ErrUnexpectedEOF if it is.
func readByte(src *Buffer) (byte, Status) {
	if src.ReadIndex >= src.WriteIndex {
		if src.Closed {
			return 0, ErrUnexpectedEOF
		}
		return 0, StatusShortRead
	}
	c := src.Bytes[src.ReadIndex]
	src.ReadIndex++
	return c, StatusOK
}
