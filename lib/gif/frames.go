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

// Frame describes one decoded image within a GIF file, whose pixel-index
// bytes were written to dst: its placement within the logical screen, its
// color table, and whatever graphic control extension preceded it.
//
// ColorTable is nil if the image has neither a local color table nor the
// file a global one; it is the caller's job to assign meaning to palette
// indices in that case.
type Frame struct {
	Left, Top     uint16
	Width, Height uint16
	Interlaced    bool
	ColorTable    []byte

	// HasGraphicControl reports whether a graphic control extension (GCE)
	// preceded this image. The remaining fields are meaningless if it is
	// false: a GIF with no GCE has no specified disposal method, delay, or
	// transparency.
	HasGraphicControl bool

	// DisposalMethod is the GCE's 3-bit disposal code: 0 (unspecified/no
	// action), 1 (do not dispose), 2 (restore to background color), 3
	// (restore to previous). Values above 3 are reserved by the format and
	// passed through uninterpreted.
	DisposalMethod byte

	UserInput             bool
	TransparentColorFlag  bool
	DelayTime             uint16 // hundredths of a second
	TransparentColorIndex byte
}
