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

package main

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func TestRawRoundTrip(t *testing.T) {
	pal := color.Palette{color.RGBA{0, 0, 0, 255}, color.RGBA{255, 255, 255, 255}}
	src := image.NewPaletted(image.Rect(0, 0, 5, 3), pal)
	for i := range src.Pix {
		src.Pix[i] = byte(i % 2)
	}

	buf := &bytes.Buffer{}
	if err := writeRaw(buf, src); err != nil {
		t.Fatalf("writeRaw: %v", err)
	}

	got, err := readRaw(buf)
	if err != nil {
		t.Fatalf("readRaw: %v", err)
	}
	if got.Bounds() != src.Bounds() {
		t.Fatalf("bounds: got %v, want %v", got.Bounds(), src.Bounds())
	}
	if !bytes.Equal(got.Pix, src.Pix) {
		t.Fatalf("pixels did not round-trip")
	}
}

func TestReadRawRejectsBadMagic(t *testing.T) {
	if _, err := readRaw(bytes.NewReader([]byte("not a raw dump at all"))); err == nil {
		t.Fatalf("readRaw: got nil error, want an error for bad magic")
	}
}
