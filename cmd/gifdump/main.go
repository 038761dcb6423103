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

// gifdump decodes the first frame of a GIF file with lib/gif, applies its
// color table, and writes the result to stdout as a PNG (or, with -raw, as
// raw palette-index bytes behind a small header of this command's own
// devising).
package main

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"flag"
	"image"
	"image/color"
	"image/png"
	"io"
	"io/ioutil"
	"os"
	"sync"

	"golang.org/x/image/draw"

	"github.com/wuffs-gif/gif/lib/gif"
	"github.com/wuffs-gif/gif/lib/readerat"
)

var (
	rawFlag        = flag.Bool("raw", false, "write raw palette-index bytes (with a small header) instead of PNG")
	scaleFlag      = flag.Uint("scale", 0, "if non-zero, scale the frame so its longer side is this many pixels")
	chunkSizeFlag  = flag.Uint("chunksize", 4096, "how many bytes to read from the input at a time")
	concurrentFlag = flag.Bool("concurrent", false, "decode the input twice, concurrently, and check the two runs agree")
)

const usageStr = `gifdump decodes the first frame of a GIF file.

Usage: gifdump [flags] [path]

The path to the input GIF file is optional. If omitted, stdin is read (in
full, since -concurrent and chunked reading both need random access).

The output is a PNG, written to stdout, unless -raw is given. With
-concurrent, the output is always an unscaled PNG: -raw and -scale are not
applied in that mode.
`

func main() {
	if err := main1(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func main1() error {
	flag.Usage = func() { os.Stderr.WriteString(usageStr) }
	flag.Parse()

	data, err := readInput()
	if err != nil {
		return err
	}

	if *concurrentFlag {
		return verifyConcurrentDecodes(data, int(*chunkSizeFlag))
	}

	img, err := decodeFirstFrame(bytes.NewReader(data), int(*chunkSizeFlag))
	if err != nil {
		return err
	}

	if *scaleFlag != 0 {
		img = scaleToLongestSide(img, int(*scaleFlag))
	}

	out := bufio.NewWriter(os.Stdout)
	if *rawFlag {
		err = writeRaw(out, img)
	} else {
		err = png.Encode(out, img)
	}
	if err != nil {
		return err
	}
	return out.Flush()
}

func readInput() ([]byte, error) {
	switch flag.NArg() {
	case 0:
		return ioutil.ReadAll(os.Stdin)
	case 1:
		return ioutil.ReadFile(flag.Arg(0))
	default:
		return nil, errors.New("gifdump: too many filenames; the maximum is one")
	}
}

// rawMagic tags the header of the -raw output format: 4 bytes "GDR1", then
// width and height as big-endian uint32s, then width*height palette-index
// bytes. It exists only so this command's own tests can round-trip a
// decoded frame without re-decoding a PNG.
var rawMagic = [4]byte{'G', 'D', 'R', '1'}

func writeRaw(w io.Writer, img *image.Paletted) error {
	b := img.Bounds()
	if _, err := w.Write(rawMagic[:]); err != nil {
		return err
	}
	var dims [8]byte
	binary.BigEndian.PutUint32(dims[0:4], uint32(b.Dx()))
	binary.BigEndian.PutUint32(dims[4:8], uint32(b.Dy()))
	if _, err := w.Write(dims[:]); err != nil {
		return err
	}
	_, err := w.Write(img.Pix)
	return err
}

func readRaw(r io.Reader) (*image.Paletted, error) {
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	if !bytes.Equal(header[:4], rawMagic[:]) {
		return nil, errors.New("gifdump: not a -raw dump (bad magic)")
	}
	w := int(binary.BigEndian.Uint32(header[4:8]))
	h := int(binary.BigEndian.Uint32(header[8:12]))
	pix := make([]byte, w*h)
	if _, err := io.ReadFull(r, pix); err != nil {
		return nil, err
	}
	img := image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{color.RGBA{0, 0, 0, 0xff}})
	copy(img.Pix, pix)
	return img, nil
}

// scaleToLongestSide resizes src so that its longer side becomes n pixels,
// preserving aspect ratio. The scaling algorithm and call shape match the
// one lib/handsum uses for its own thumbnailing.
func scaleToLongestSide(src image.Image, n int) *image.Paletted {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	var newW, newH int
	switch {
	case w <= 0 || h <= 0:
		newW, newH = 1, 1
	case w >= h:
		newW, newH = n, (h*n+w/2)/w
	default:
		newH, newW = n, (w*n+h/2)/h
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	pal, _ := src.(*image.Paletted)
	var dstPalette color.Palette
	if pal != nil {
		dstPalette = pal.Palette
	} else {
		dstPalette = color.Palette{color.RGBA{0, 0, 0, 0xff}}
	}
	dst := image.NewPaletted(image.Rect(0, 0, newW, newH), dstPalette)
	draw.BiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// decodeFirstFrame decodes just the first frame of r, a GIF file exposed
// as an io.ReaderAt, feeding the core decoder in chunkSize-sized pieces
// via readerat.FillChunk.
func decodeFirstFrame(r io.ReaderAt, chunkSize int) (*image.Paletted, error) {
	g := gif.NewDecoder(gif.Version, false)
	src := &gif.Buffer{Bytes: make([]byte, chunkSize)}
	dst := &gif.Buffer{Bytes: make([]byte, 1<<20)}
	var off int64

	for {
		frame, ok, status := g.NextFrame(dst, src)
		switch status {
		case gif.StatusOK:
			if !ok {
				return nil, errors.New("gifdump: the file had no frames")
			}
			return frameToImage(frame, dst.Bytes[:dst.WriteIndex]), nil
		case gif.StatusShortRead:
			newOff, err := readerat.FillChunk(r, off, src, chunkSize)
			if err != nil {
				return nil, err
			}
			off = newOff
		case gif.StatusShortWrite:
			return nil, errors.New("gifdump: the frame's pixel data exceeded the internal buffer")
		default:
			return nil, status.AsError()
		}
	}
}

func frameToImage(frame gif.Frame, pix []byte) *image.Paletted {
	pal := make(color.Palette, 0, len(frame.ColorTable)/3)
	for i := 0; i+2 < len(frame.ColorTable); i += 3 {
		pal = append(pal, color.RGBA{frame.ColorTable[i], frame.ColorTable[i+1], frame.ColorTable[i+2], 0xff})
	}
	if len(pal) == 0 {
		pal = color.Palette{color.RGBA{0, 0, 0, 0xff}}
	}
	img := image.NewPaletted(image.Rect(0, 0, int(frame.Width), int(frame.Height)), pal)
	copy(img.Pix, pix)
	return img
}

// verifyConcurrentDecodes decodes data on two goroutines at once, each with
// its own Decoder and Buffer pair sharing the same bytes.Reader, to
// demonstrate that distinct instances are independent and safe to run in
// parallel.
func verifyConcurrentDecodes(data []byte, chunkSize int) error {
	r := bytes.NewReader(data)

	var wg sync.WaitGroup
	imgs := make([]*image.Paletted, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			imgs[i], errs[i] = decodeFirstFrame(r, chunkSize)
		}(i)
	}
	wg.Wait()

	if errs[0] != nil {
		return errs[0]
	}
	if errs[1] != nil {
		return errs[1]
	}
	if !bytes.Equal(imgs[0].Pix, imgs[1].Pix) {
		return errors.New("gifdump: concurrent decodes disagreed")
	}
	os.Stderr.WriteString("gifdump: two concurrent decodes agreed\n")
	out := bufio.NewWriter(os.Stdout)
	if err := png.Encode(out, imgs[0]); err != nil {
		return err
	}
	return out.Flush()
}
