/*
NAME
  frame.go

DESCRIPTION
  frame.go defines Frame, the owned pixel grid that flows between
  pipeline stages, and the pixel format tags it can carry (spec.md §3).

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package frame defines Frame, the owned image type that every pipeline
// stage consumes and produces. A Frame pairs a packed pixel buffer with
// a format tag, an optional color map and an optional tile-map
// indirection, matching spec.md §3's data model.
package frame

import (
	"github.com/pkg/errors"

	"github.com/ausocean/dxtv/codec/color"
	"github.com/ausocean/dxtv/dxtverr"
)

// Format identifies how a Frame's (or color map's) bytes are packed.
type Format int

// The pixel formats named in spec.md §3.
const (
	Paletted1 Format = iota
	Paletted2
	Paletted4
	Paletted8
	RGB555
	RGB565
	RGB888
)

// BitsPerPixel returns the number of bits one pixel (or, for a color map
// format, one entry) occupies, matching the file header's bitsPerPixel/
// bitsPerColor fields (spec.md §6).
func (f Format) BitsPerPixel() int {
	switch f {
	case Paletted1:
		return 1
	case Paletted2:
		return 2
	case Paletted4:
		return 4
	case Paletted8:
		return 8
	case RGB555, RGB565:
		return 16
	case RGB888:
		return 24
	default:
		return 0
	}
}

// IsPaletted reports whether f addresses pixels via a color map index.
func (f Format) IsPaletted() bool {
	switch f {
	case Paletted1, Paletted2, Paletted4, Paletted8:
		return true
	default:
		return false
	}
}

// Frame is an owned pixel grid. Width and height are always multiples
// of 8 (multiples of 16 for anything DXTV touches). Pixels holds packed
// bytes in Format; for paletted formats, indices are packed
// most-significant-bit-first within each byte, row-major.
type Frame struct {
	Width, Height int
	Format        Format
	Pixels        []byte

	// ColorMap is the frame's palette, present iff ColorMap != nil.
	// Entries are packed RGB555 by convention (§3's "ordered sequence of
	// colors"); callers needing RGB888 map entries convert at the edges.
	ColorMap []uint16

	// TileMap is the optional tile-map indirection (§3); present iff
	// non-nil. Each entry is a tile index into an implicit tile table
	// built by the Tiles stage.
	TileMap []uint16
}

// New allocates a Frame of the given dimensions and format with a
// zeroed pixel buffer sized for a fully packed, unpadded row layout.
func New(width, height int, format Format) (*Frame, error) {
	if width <= 0 || height <= 0 || width%8 != 0 || height%8 != 0 {
		return nil, errors.Wrapf(dxtverr.InvalidInput, "frame: dimensions %dx%d not multiples of 8", width, height)
	}
	bits := width * height * format.BitsPerPixel()
	return &Frame{
		Width:  width,
		Height: height,
		Format: format,
		Pixels: make([]byte, (bits+7)/8),
	}, nil
}

// RGB555Pixels returns the frame's pixels as a flat, row-major []uint16
// of RGB555 values. The frame must be in RGB555 format.
func (f *Frame) RGB555Pixels() ([]uint16, error) {
	if f.Format != RGB555 {
		return nil, errors.Wrapf(dxtverr.InvalidInput, "frame: RGB555Pixels called on format %v", f.Format)
	}
	out := make([]uint16, f.Width*f.Height)
	for i := range out {
		out[i] = uint16(f.Pixels[2*i]) | uint16(f.Pixels[2*i+1])<<8
	}
	return out, nil
}

// SetRGB555Pixels replaces the frame's pixel buffer with the given
// row-major RGB555 values, switching Format to RGB555.
func (f *Frame) SetRGB555Pixels(px []uint16) error {
	if len(px) != f.Width*f.Height {
		return errors.Wrapf(dxtverr.InvalidInput, "frame: got %d pixels, want %d", len(px), f.Width*f.Height)
	}
	f.Format = RGB555
	f.Pixels = make([]byte, 2*len(px))
	for i, c := range px {
		f.Pixels[2*i] = byte(c)
		f.Pixels[2*i+1] = byte(c >> 8)
	}
	return nil
}

// YCgCoRPixels returns the frame's pixels converted to the YCgCoR
// working space, regardless of source format (RGB555 or RGB888).
func (f *Frame) YCgCoRPixels() ([]color.YCgCoR, error) {
	switch f.Format {
	case RGB555:
		px, err := f.RGB555Pixels()
		if err != nil {
			return nil, err
		}
		out := make([]color.YCgCoR, len(px))
		for i, c := range px {
			out[i] = color.YCgCoRFromRGB555(c)
		}
		return out, nil
	case RGB888:
		out := make([]color.YCgCoR, f.Width*f.Height)
		for i := range out {
			off := i * 3
			rgb888 := uint32(f.Pixels[off])<<16 | uint32(f.Pixels[off+1])<<8 | uint32(f.Pixels[off+2])
			out[i] = color.YCgCoRFromRGB888(rgb888)
		}
		return out, nil
	default:
		return nil, errors.Wrapf(dxtverr.InvalidInput, "frame: YCgCoRPixels called on format %v", f.Format)
	}
}

// Clone returns a deep copy of f.
func (f *Frame) Clone() *Frame {
	out := &Frame{Width: f.Width, Height: f.Height, Format: f.Format}
	out.Pixels = append([]byte(nil), f.Pixels...)
	if f.ColorMap != nil {
		out.ColorMap = append([]uint16(nil), f.ColorMap...)
	}
	if f.TileMap != nil {
		out.TileMap = append([]uint16(nil), f.TileMap...)
	}
	return out
}

// PaletteIndex returns the index stored at pixel (x,y) for a paletted
// frame, unpacking bits MSB-first within each byte per spec.md §3.
func (f *Frame) PaletteIndex(x, y int) (int, error) {
	bpp := f.Format.BitsPerPixel()
	if !f.Format.IsPaletted() {
		return 0, errors.Wrapf(dxtverr.InvalidInput, "frame: PaletteIndex called on non-paletted format %v", f.Format)
	}
	bitPos := (y*f.Width + x) * bpp
	bytePos := bitPos / 8
	shift := 8 - bpp - bitPos%8
	mask := (1 << uint(bpp)) - 1
	return int(f.Pixels[bytePos]>>uint(shift)) & mask, nil
}

// SetPaletteIndex writes idx into pixel (x,y) of a paletted frame.
func (f *Frame) SetPaletteIndex(x, y, idx int) error {
	bpp := f.Format.BitsPerPixel()
	if !f.Format.IsPaletted() {
		return errors.Wrapf(dxtverr.InvalidInput, "frame: SetPaletteIndex called on non-paletted format %v", f.Format)
	}
	if idx < 0 || idx >= 1<<uint(bpp) {
		return errors.Wrapf(dxtverr.OutOfRange, "frame: index %d does not fit in %d bits", idx, bpp)
	}
	bitPos := (y*f.Width + x) * bpp
	bytePos := bitPos / 8
	shift := uint(8 - bpp - bitPos%8)
	mask := byte((1 << uint(bpp)) - 1)
	f.Pixels[bytePos] = f.Pixels[bytePos]&^(mask<<shift) | byte(idx)<<shift
	return nil
}
