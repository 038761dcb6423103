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

// Status is the result of a decode call: success, a suspension asking the
// caller to refill or drain a Buffer, or a terminal error.
//
// Status values are not guaranteed stable across versions of this package.
// Callers should compare against the named constants, not against numbers.
type Status int32

const (
	// StatusOK means the operation completed, or reached a natural
	// terminator (the LZW end code, or the GIF trailer byte).
	StatusOK Status = iota

	// StatusShortRead means the source Buffer is exhausted (ReadIndex ==
	// WriteIndex) but not Closed. The caller should append more bytes and
	// call again.
	StatusShortRead

	// StatusShortWrite means the destination Buffer is full
	// (WriteIndex == len(Bytes)). The caller should drain it and call
	// again.
	StatusShortWrite

	// ErrBadVersion means the version stamp passed to a constructor did
	// not match this package's version.
	ErrBadVersion

	// ErrBadReceiver means a method was called on a nil receiver.
	ErrBadReceiver

	// ErrBadArgument means a required argument (a Buffer, or a literal
	// width outside [2, 8]) was missing or invalid.
	ErrBadArgument

	// ErrConstructorNotCalled means the instance's magic sentinel was not
	// set, i.e. its constructor was never run.
	ErrConstructorNotCalled

	// ErrUnexpectedEOF means the source Buffer ran out of readable bytes
	// and is Closed, so no more will ever arrive.
	ErrUnexpectedEOF

	// ErrClosedForWrites means the destination Buffer is Closed (the
	// caller has declared it will never accept more bytes) while the
	// decoder still had bytes to write.
	ErrClosedForWrites

	// ErrBadGIFHeader means the first six bytes of the source were not
	// "GIF87a" or "GIF89a".
	ErrBadGIFHeader

	// ErrLZWCodeIsOutOfRange means an LZW code exceeded the current save
	// code: the stream referenced a table entry that has not been
	// assigned yet.
	ErrLZWCodeIsOutOfRange

	// ErrLZWPrefixChainIsCyclical means walking a code's prefix chain
	// exhausted the 4096-entry stack without reaching a literal code,
	// which is only possible if the code table has a cycle.
	ErrLZWPrefixChainIsCyclical

	// ErrBadExtensionLabel means a 0x21 extension introducer was
	// followed by a label byte other than 0xF9, 0xFE, 0xFF, or 0x01.
	ErrBadExtensionLabel

	// ErrBadImageDescriptor means an image descriptor's geometry did not
	// fit within the logical screen, or a block introducer byte was
	// neither 0x21, 0x2C, nor 0x3B where one of those was expected.
	ErrBadImageDescriptor

	// ErrBadColorTableSize means a global or local color table's byte
	// length did not match the size encoded in its packed fields.
	ErrBadColorTableSize

	// ErrBadBlockTerminator means a graphic control extension's block
	// size byte was not 4.
	ErrBadBlockTerminator
)

// statusStrings holds the human-readable description for each Status,
// indexed by its integer value. Keep in lockstep with the const block
// above.
var statusStrings = [...]string{
	StatusOK:                     "gif: ok",
	StatusShortRead:              "gif: short read",
	StatusShortWrite:             "gif: short write",
	ErrBadVersion:                "gif: bad version",
	ErrBadReceiver:               "gif: bad receiver",
	ErrBadArgument:               "gif: bad argument",
	ErrConstructorNotCalled:      "gif: constructor not called",
	ErrUnexpectedEOF:             "gif: unexpected EOF",
	ErrClosedForWrites:           "gif: closed for writes",
	ErrBadGIFHeader:              "gif: bad GIF header",
	ErrLZWCodeIsOutOfRange:       "gif: LZW code is out of range",
	ErrLZWPrefixChainIsCyclical:  "gif: LZW prefix chain is cyclical",
	ErrBadExtensionLabel:         "gif: bad extension label",
	ErrBadImageDescriptor:        "gif: bad image descriptor",
	ErrBadColorTableSize:         "gif: bad color table size",
	ErrBadBlockTerminator:        "gif: bad block terminator",
}

// IsError reports whether s is a terminal error, as opposed to StatusOK or a
// suspension (StatusShortRead, StatusShortWrite).
//
// Unlike the C original, the classification isn't encoded as a low bit of
// the numeric value: Go gives us a closed, named enum instead, so it's
// spelled out as a switch.
func (s Status) IsError() bool {
	switch s {
	case StatusOK, StatusShortRead, StatusShortWrite:
		return false
	default:
		return true
	}
}

// String returns a human-readable description of s.
func (s Status) String() string {
	if i := int(s); i >= 0 && i < len(statusStrings) && statusStrings[i] != "" {
		return statusStrings[i]
	}
	return "gif: unknown status"
}

// Error implements the standard error interface, so that an error-classified
// Status can be returned anywhere a Go error is expected without this
// package depending on anything to make that so.
func (s Status) Error() string {
	return s.String()
}

// AsError returns nil if s is StatusOK or a suspension, or s itself
// otherwise. Use this at a package boundary that wants to hand callers a
// plain Go error rather than a Status, e.g. `if err := st.AsError(); err !=
// nil { return err }`.
func (s Status) AsError() error {
	if !s.IsError() {
		return nil
	}
	return s
}
