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

// Package gif implements a streaming decoder for the GIF image file format:
// the file framing (signature, logical screen descriptor, extension and
// image blocks, sub-block chaining) and the LZW entropy coding it wraps.
//
// The decoder works against bounded Buffers rather than io.Reader/io.Writer:
// callers supply a source Buffer that may hold only a prefix of the whole
// file, and a destination Buffer to receive decoded palette-index bytes.
// Decode and NextFrame make as much progress as the buffers allow and
// return a Status describing why they stopped -- success, a suspension
// asking the caller to refill the source or drain the destination, or a
// terminal error.
//
// This package decodes palette indices, not RGBA pixels: applying a color
// table to produce a renderable image is left to the caller (see
// cmd/gifdump for one way to do that).
package gif

// stage is the outer framer's position in the GIF file grammar. Each value
// names the next thing Decode expects to read; advance resumes from exactly
// this stage (and whatever partial progress fixedReader/colorTablePos/
// subBlockRemaining record) on every call, so a suspension never re-reads a
// byte it already consumed.
type stage uint8

const (
	stageHeader stage = iota
	stageLSD
	stageGCT
	stageBlockIntro
	stageExtLabel
	stageGCELen
	stageGCEData
	stageExtDiscard
	stageImageDescriptor
	stageLCT
	stageMinCodeSize
	stageImageData
	stageDone
)

// fixedReader accumulates a fixed number of bytes across however many calls
// it takes, for the file's several small fixed-size structures (the 6-byte
// signature, the 7-byte logical screen descriptor, the 9-byte image
// descriptor, the graphic control extension's length and body bytes).
type fixedReader struct {
	buf  [9]byte
	need int
	pos  int
}

func (r *fixedReader) start(need int) {
	r.need = need
	r.pos = 0
}

func (r *fixedReader) read(src *Buffer) Status {
	for r.pos < r.need {
		b, st := readByte(src)
		if st != StatusOK {
			return st
		}
		r.buf[r.pos] = b
		r.pos++
	}
	return StatusOK
}

func (r *fixedReader) bytes() []byte {
	return r.buf[:r.need]
}

func le16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

// Decoder recognises the GIF file header and drives an embedded LZWDecoder
// across the whole file: the logical screen descriptor, an optional global
// color table, a chain of extension and image blocks, each image's
// sub-block-chained LZW data, and the trailer.
//
// The zero value is not usable; construct one with NewDecoder.
//
// A single Decoder is not safe for concurrent use. Distinct instances are
// independent and may run in parallel.
type Decoder struct {
	status Status
	magic  uint32
	lzw    LZWDecoder

	stage stage
	fixed fixedReader

	screenWidth          uint16
	screenHeight         uint16
	backgroundColorIndex byte
	globalColorTable     []byte

	// colorTable and colorTablePos are reused for both the global and a
	// local color table: only one is ever being read at a time.
	colorTable    []byte
	colorTablePos int

	// The most recently seen graphic control extension, cached until the
	// image descriptor that follows it consumes it. GIF attaches a GCE to
	// the next image, not the one it textually follows.
	haveGCE                  bool
	gceDisposalMethod        byte
	gceUserInput             bool
	gceTransparentColorFlag  bool
	gceDelayTime             uint16
	gceTransparentColorIndex byte

	imgLeft            uint16
	imgTop             uint16
	imgWidth           uint16
	imgHeight          uint16
	imgInterlace       bool
	imgLocalColorTable []byte

	// subBlockRemaining is shared by extension-skipping and image-data
	// feeding: only one sub-block chain is ever being walked at a time.
	subBlockRemaining int
	imageDataDone     bool

	// lzwBuf is the destuffed (length-prefix-stripped) view of the
	// current image's LZW bitstream that the embedded lzw decodes from.
	// It is a small, fixed-capacity rolling window, not the whole image:
	// destuff refills it from src a sub-block at a time.
	lzwScratch [512]byte
	lzwBuf     Buffer

	currentFrame Frame
}

// NewDecoder is the constructor. version must equal Version. alreadyZeroed
// documents the construction protocol's nested-construction convention but
// has no effect, since a freshly allocated *Decoder is always zeroed.
func NewDecoder(version uint32, alreadyZeroed bool) *Decoder {
	g := &Decoder{}
	if version != Version {
		g.status = ErrBadVersion
		return g
	}
	_ = alreadyZeroed
	g.magic = magicGIF
	g.lzw = *NewLZWDecoder(Version, true)
	g.lzwBuf.Bytes = g.lzwScratch[:]
	g.fixed.start(6)
	return g
}

func (g *Decoder) prologue(dst, src *Buffer) Status {
	if g.status.IsError() {
		return g.status
	}
	if g.magic != magicGIF {
		g.status = ErrConstructorNotCalled
		return g.status
	}
	if dst == nil || src == nil {
		g.status = ErrBadArgument
		return g.status
	}
	return StatusOK
}

// Decode drives the parse from wherever it left off, through as many
// blocks as the buffers allow, returning StatusOK once the trailer byte is
// consumed. For a multi-frame (animated) GIF, it concatenates every
// frame's decoded index bytes into dst, back to back, with no boundary
// markers; callers that need per-frame structure should use NextFrame
// instead.
func (g *Decoder) Decode(dst, src *Buffer) Status {
	if g == nil {
		return ErrBadReceiver
	}
	if st := g.prologue(dst, src); st != StatusOK {
		return st
	}
	_, st := g.advance(dst, src, false)
	if st.IsError() {
		g.status = st
	}
	return st
}

// NextFrame decodes exactly one image's worth of pixel indices into dst and
// returns its metadata. Repeated calls walk an animated GIF one frame at a
// time. Once the trailer has been consumed, NextFrame returns a zero Frame,
// ok == false, and StatusOK: a natural end, not an error. Calling it again
// after that keeps returning the same thing.
func (g *Decoder) NextFrame(dst, src *Buffer) (frame Frame, ok bool, status Status) {
	if g == nil {
		return Frame{}, false, ErrBadReceiver
	}
	if st := g.prologue(dst, src); st != StatusOK {
		return Frame{}, false, st
	}
	if g.stage == stageDone {
		return Frame{}, false, StatusOK
	}
	frameDone, st := g.advance(dst, src, true)
	if st.IsError() {
		g.status = st
	}
	if st != StatusOK {
		return Frame{}, false, st
	}
	if !frameDone {
		return Frame{}, false, StatusOK
	}
	return g.currentFrame, true, StatusOK
}

// advance runs the block-chain state machine. If stopAfterImage is true, it
// returns (true, StatusOK) as soon as one image's pixel data has been fully
// decoded, leaving g.stage positioned at the next block's introducer; the
// frame's metadata is available via g.currentFrame. Otherwise it keeps
// going until the trailer (stage becomes stageDone) or a suspension/error.
func (g *Decoder) advance(dst, src *Buffer, stopAfterImage bool) (bool, Status) {
	for {
		switch g.stage {
		case stageHeader:
			if st := g.fixed.read(src); st != StatusOK {
				return false, st
			}
			sig := g.fixed.bytes()
			if sig[0] != 'G' || sig[1] != 'I' || sig[2] != 'F' || sig[3] != '8' ||
				(sig[4] != '7' && sig[4] != '9') || sig[5] != 'a' {
				return false, ErrBadGIFHeader
			}
			g.fixed.start(7)
			g.stage = stageLSD

		case stageLSD:
			if st := g.fixed.read(src); st != StatusOK {
				return false, st
			}
			b := g.fixed.bytes()
			g.screenWidth = le16(b[0:2])
			g.screenHeight = le16(b[2:4])
			packed := b[4]
			g.backgroundColorIndex = b[5]
			// b[6], the pixel aspect ratio, is not interpreted by the core.
			if packed&0x80 != 0 {
				n := packed & 0x07
				g.colorTable = make([]byte, 3*(1<<(n+1)))
				g.colorTablePos = 0
				g.stage = stageGCT
			} else {
				g.stage = stageBlockIntro
			}

		case stageGCT:
			if st := g.readColorTable(src); st != StatusOK {
				return false, st
			}
			g.globalColorTable = g.colorTable
			g.colorTable = nil
			g.stage = stageBlockIntro

		case stageBlockIntro:
			b, st := readByte(src)
			if st != StatusOK {
				return false, st
			}
			switch b {
			case 0x21:
				g.stage = stageExtLabel
			case 0x2C:
				g.fixed.start(9)
				g.stage = stageImageDescriptor
			case 0x3B:
				g.stage = stageDone
				return false, StatusOK
			default:
				return false, ErrBadImageDescriptor
			}

		case stageExtLabel:
			b, st := readByte(src)
			if st != StatusOK {
				return false, st
			}
			switch b {
			case 0xF9:
				g.fixed.start(1)
				g.stage = stageGCELen
			case 0xFE, 0xFF, 0x01:
				g.subBlockRemaining = 0
				g.stage = stageExtDiscard
			default:
				return false, ErrBadExtensionLabel
			}

		case stageGCELen:
			if st := g.fixed.read(src); st != StatusOK {
				return false, st
			}
			if int(g.fixed.bytes()[0]) != 4 {
				return false, ErrBadBlockTerminator
			}
			g.fixed.start(4)
			g.stage = stageGCEData

		case stageGCEData:
			if st := g.fixed.read(src); st != StatusOK {
				return false, st
			}
			b := g.fixed.bytes()
			g.haveGCE = true
			g.gceDisposalMethod = (b[0] >> 2) & 0x07
			g.gceUserInput = b[0]&0x02 != 0
			g.gceTransparentColorFlag = b[0]&0x01 != 0
			g.gceDelayTime = le16(b[1:3])
			g.gceTransparentColorIndex = b[3]
			g.subBlockRemaining = 0
			g.stage = stageExtDiscard

		case stageExtDiscard:
			if st := g.discardSubBlocks(src); st != StatusOK {
				return false, st
			}
			g.stage = stageBlockIntro

		case stageImageDescriptor:
			if st := g.fixed.read(src); st != StatusOK {
				return false, st
			}
			b := g.fixed.bytes()
			g.imgLeft = le16(b[0:2])
			g.imgTop = le16(b[2:4])
			g.imgWidth = le16(b[4:6])
			g.imgHeight = le16(b[6:8])
			packed := b[8]
			g.imgInterlace = packed&0x40 != 0
			if uint32(g.imgLeft)+uint32(g.imgWidth) > uint32(g.screenWidth) ||
				uint32(g.imgTop)+uint32(g.imgHeight) > uint32(g.screenHeight) {
				return false, ErrBadImageDescriptor
			}
			if packed&0x80 != 0 {
				n := packed & 0x07
				g.colorTable = make([]byte, 3*(1<<(n+1)))
				g.colorTablePos = 0
				g.stage = stageLCT
			} else {
				g.imgLocalColorTable = nil
				g.fixed.start(1)
				g.stage = stageMinCodeSize
			}

		case stageLCT:
			if st := g.readColorTable(src); st != StatusOK {
				return false, st
			}
			g.imgLocalColorTable = g.colorTable
			g.colorTable = nil
			g.fixed.start(1)
			g.stage = stageMinCodeSize

		case stageMinCodeSize:
			if st := g.fixed.read(src); st != StatusOK {
				return false, st
			}
			mcs := int(g.fixed.bytes()[0])
			if st := g.lzw.SetLiteralWidth(mcs); st != StatusOK {
				return false, st
			}
			g.subBlockRemaining = 0
			g.imageDataDone = false
			g.lzwBuf.Reset()
			g.stage = stageImageData

		case stageImageData:
			if st := g.decodeImageData(dst, src); st != StatusOK {
				return false, st
			}
			g.currentFrame = Frame{
				Left:                  g.imgLeft,
				Top:                   g.imgTop,
				Width:                 g.imgWidth,
				Height:                g.imgHeight,
				Interlaced:            g.imgInterlace,
				ColorTable:            g.currentColorTable(),
				HasGraphicControl:     g.haveGCE,
				DisposalMethod:        g.gceDisposalMethod,
				UserInput:             g.gceUserInput,
				TransparentColorFlag:  g.gceTransparentColorFlag,
				DelayTime:             g.gceDelayTime,
				TransparentColorIndex: g.gceTransparentColorIndex,
			}
			g.haveGCE = false
			g.imgLocalColorTable = nil
			g.stage = stageBlockIntro
			if stopAfterImage {
				return true, StatusOK
			}

		case stageDone:
			return false, StatusOK

		default:
			panic("gif: unreachable stage")
		}
	}
}

func (g *Decoder) currentColorTable() []byte {
	if g.imgLocalColorTable != nil {
		return g.imgLocalColorTable
	}
	return g.globalColorTable
}

func (g *Decoder) readColorTable(src *Buffer) Status {
	for g.colorTablePos < len(g.colorTable) {
		b, st := readByte(src)
		if st != StatusOK {
			return st
		}
		g.colorTable[g.colorTablePos] = b
		g.colorTablePos++
	}
	return StatusOK
}

// discardSubBlocks walks a length-prefixed sub-block chain (extension data
// this core does not interpret) to the zero-length terminator, without
// retaining any of it.
func (g *Decoder) discardSubBlocks(src *Buffer) Status {
	for {
		if g.subBlockRemaining == 0 {
			b, st := readByte(src)
			if st != StatusOK {
				return st
			}
			if b == 0 {
				return StatusOK
			}
			g.subBlockRemaining = int(b)
			continue
		}
		if _, st := readByte(src); st != StatusOK {
			return st
		}
		g.subBlockRemaining--
	}
}

// destuff tops up g.lzwBuf with the current image's LZW bitstream bytes,
// transparently stripping sub-block length-prefix bytes and crossing
// sub-block boundaries as needed. It sets g.lzwBuf.Closed once the
// zero-length terminator sub-block has been seen, so the embedded LZW
// decoder can tell "this image's data is exhausted" (ErrUnexpectedEOF, if
// it still wanted more bits) apart from "not yet, but more may arrive"
// (StatusShortRead).
func (g *Decoder) destuff(src *Buffer) Status {
	if g.lzwBuf.ReadIndex > 0 {
		n := copy(g.lzwBuf.Bytes, g.lzwBuf.Bytes[g.lzwBuf.ReadIndex:g.lzwBuf.WriteIndex])
		g.lzwBuf.ReadIndex = 0
		g.lzwBuf.WriteIndex = n
	}
	for !g.imageDataDone {
		if g.subBlockRemaining == 0 {
			b, st := readByte(src)
			if st != StatusOK {
				return st
			}
			if b == 0 {
				g.imageDataDone = true
				break
			}
			g.subBlockRemaining = int(b)
			continue
		}
		if g.lzwBuf.WriteIndex >= len(g.lzwBuf.Bytes) {
			break
		}
		b, st := readByte(src)
		if st != StatusOK {
			return st
		}
		g.lzwBuf.Bytes[g.lzwBuf.WriteIndex] = b
		g.lzwBuf.WriteIndex++
		g.subBlockRemaining--
	}
	g.lzwBuf.Closed = g.imageDataDone
	return StatusOK
}

// decodeImageData alternates destuffing more bitstream bytes into g.lzwBuf
// with handing them to the embedded LZW decoder, until that decoder
// reaches its end code (StatusOK), dst fills up (StatusShortWrite), or
// something goes wrong. A StatusShortRead from the LZW decoder means only
// that g.lzwBuf ran dry, not that src did -- the next destuff call may
// cross into the next sub-block, or may itself report the real suspension.
func (g *Decoder) decodeImageData(dst, src *Buffer) Status {
	for {
		if st := g.destuff(src); st != StatusOK {
			return st
		}
		switch st := g.lzw.Decode(dst, &g.lzwBuf); st {
		case StatusOK:
			return StatusOK
		case StatusShortRead:
			continue
		case StatusShortWrite:
			return StatusShortWrite
		default:
			return st
		}
	}
}
