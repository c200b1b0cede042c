/*
NAME
  dxtvfile.go

DESCRIPTION
  dxtvfile.go writes the container file format of spec.md §6: a
  24-byte FileHeader followed by one record per frame (`frameSize:u32`
  + frame bytes + optional color-map bytes), everything 4-byte aligned.
  Grounded on original_source/src/imageio.cpp's writeFileHeader/
  writeFrame. Write takes the complete frame list in one call, like the
  original; Read parses a file back into its header and frames.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package dxtvfile writes the bespoke container format that pairs
// pipeline-encoded frame chunks with a file header describing frame
// count, dimensions, pixel/color formats and decoder scratch memory.
package dxtvfile

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/ausocean/dxtv/dxtverr"
)

// fileHeaderSize is the on-disk size of FileHeader (spec.md §6: "24
// bytes"). The explicit field list sums to 16 bytes; the remaining 8
// are reserved padding, kept zeroed, so the header stays a stated,
// stable size even though nothing in this implementation needs the
// extra room yet.
const fileHeaderSize = 24

// FileHeader is the container's fixed-size leading record.
type FileHeader struct {
	NrOfFrames      uint32
	Width           uint16
	Height          uint16
	FPS             uint8
	BitsPerPixel    uint8
	BitsPerColor    uint8
	ColorMapEntries uint8
	MaxMemoryNeeded uint32
}

// Frame is one frame record to be written: Data is the already
// pipeline-encoded stack of processing-type chunks, ColorMap is the
// frame's palette (RGB555-packed), present iff non-empty.
type Frame struct {
	Data     []byte
	ColorMap []uint16
}

func (h FileHeader) marshal() []byte {
	b := make([]byte, fileHeaderSize)
	binary.LittleEndian.PutUint32(b[0:4], h.NrOfFrames)
	binary.LittleEndian.PutUint16(b[4:6], h.Width)
	binary.LittleEndian.PutUint16(b[6:8], h.Height)
	b[8] = h.FPS
	b[9] = h.BitsPerPixel
	b[10] = h.BitsPerColor
	b[11] = h.ColorMapEntries
	binary.LittleEndian.PutUint32(b[12:16], h.MaxMemoryNeeded)
	return b
}

// Write serializes a complete set of frames to w: the FileHeader
// (width, height, fps, bitsPerPixel and maxMemoryNeeded from the
// arguments, the color-map fields from the first frame that carries a
// color map) followed by every frame record in order. All frames must
// share the same dimensions and color format.
func Write(w io.Writer, frames []Frame, width, height int, fps, bitsPerPixel uint8, maxMemoryNeeded uint32) error {
	if len(frames) == 0 {
		return errors.Wrap(dxtverr.InvalidInput, "dxtvfile: no frames to write")
	}

	bitsPerColor, colorMapEntries := uint8(0), uint8(0)
	for _, f := range frames {
		if len(f.ColorMap) > 0 {
			bitsPerColor = 15
			if len(f.ColorMap) > 255 {
				return errors.Wrap(dxtverr.OutOfRange, "dxtvfile: color map exceeds 255 entries")
			}
			colorMapEntries = uint8(len(f.ColorMap))
			break
		}
	}

	header := FileHeader{
		NrOfFrames:      uint32(len(frames)),
		Width:           uint16(width),
		Height:          uint16(height),
		FPS:             fps,
		BitsPerPixel:    bitsPerPixel,
		BitsPerColor:    bitsPerColor,
		ColorMapEntries: colorMapEntries,
		MaxMemoryNeeded: maxMemoryNeeded,
	}
	if _, err := w.Write(header.marshal()); err != nil {
		return errors.Wrap(err, "dxtvfile: write header")
	}

	for i, f := range frames {
		if err := writeFrame(w, f); err != nil {
			return errors.Wrapf(err, "dxtvfile: frame %d", i)
		}
	}
	return nil
}

// writeFrame writes one frame record: frameSize + frame bytes +
// optional color map, all already 4-byte aligned by the caller (the
// pipeline pads every chunk to a multiple of 4; this function pads
// the color map the same way).
func writeFrame(w io.Writer, f Frame) error {
	if len(f.Data)%4 != 0 {
		return errors.Wrap(dxtverr.InvalidInput, "dxtvfile: frame data is not 4-byte aligned")
	}
	cm := colorMapBytes(f.ColorMap)

	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(f.Data)))
	if _, err := w.Write(size[:]); err != nil {
		return err
	}
	if _, err := w.Write(f.Data); err != nil {
		return err
	}
	if len(cm) > 0 {
		if _, err := w.Write(cm); err != nil {
			return err
		}
	}
	return nil
}

// colorMapBytes packs a palette as RGB555 little-endian entries,
// padded to a multiple of 4 bytes.
func colorMapBytes(cm []uint16) []byte {
	if len(cm) == 0 {
		return nil
	}
	buf := &bytes.Buffer{}
	for _, c := range cm {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], c)
		buf.Write(b[:])
	}
	out := buf.Bytes()
	if r := len(out) % 4; r != 0 {
		out = append(out, make([]byte, 4-r)...)
	}
	return out
}

// Read parses a container file, returning the header and every frame
// record (with color-map padding stripped back to ColorMapEntries
// entries).
func Read(r io.Reader) (FileHeader, []Frame, error) {
	hb := make([]byte, fileHeaderSize)
	if _, err := io.ReadFull(r, hb); err != nil {
		return FileHeader{}, nil, errors.Wrap(err, "dxtvfile: read header")
	}
	h := FileHeader{
		NrOfFrames:      binary.LittleEndian.Uint32(hb[0:4]),
		Width:           binary.LittleEndian.Uint16(hb[4:6]),
		Height:          binary.LittleEndian.Uint16(hb[6:8]),
		FPS:             hb[8],
		BitsPerPixel:    hb[9],
		BitsPerColor:    hb[10],
		ColorMapEntries: hb[11],
		MaxMemoryNeeded: binary.LittleEndian.Uint32(hb[12:16]),
	}

	colorMapSize := 0
	if h.BitsPerColor > 0 {
		colorMapSize = int(h.ColorMapEntries) * ((int(h.BitsPerColor) + 7) / 8)
		if r := colorMapSize % 4; r != 0 {
			colorMapSize += 4 - r
		}
	}

	frames := make([]Frame, 0, h.NrOfFrames)
	for i := uint32(0); i < h.NrOfFrames; i++ {
		var sizeBuf [4]byte
		if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
			return FileHeader{}, nil, errors.Wrapf(err, "dxtvfile: read frame %d size", i)
		}
		frameSize := binary.LittleEndian.Uint32(sizeBuf[:])

		data := make([]byte, frameSize)
		if _, err := io.ReadFull(r, data); err != nil {
			return FileHeader{}, nil, errors.Wrapf(err, "dxtvfile: read frame %d data", i)
		}

		var cm []uint16
		if colorMapSize > 0 {
			cmb := make([]byte, colorMapSize)
			if _, err := io.ReadFull(r, cmb); err != nil {
				return FileHeader{}, nil, errors.Wrapf(err, "dxtvfile: read frame %d color map", i)
			}
			cm = make([]uint16, h.ColorMapEntries)
			for j := range cm {
				cm[j] = binary.LittleEndian.Uint16(cmb[2*j : 2*j+2])
			}
		}

		frames = append(frames, Frame{Data: data, ColorMap: cm})
	}
	return h, frames, nil
}
