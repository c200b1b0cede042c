/*
NAME
  dxt.go

DESCRIPTION
  dxt.go implements the DXT1-style block codec: a 4x4 block is encoded
  as two RGB555 endpoints plus 16 2-bit per-pixel indices, chosen by
  range fit (principal-axis projection).

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package dxt implements the fixed-point DXT1-style palette-of-four
// block codec used both standalone (the DXT processing-type tag) and as
// the leaf codec inside DXTV. Endpoint selection follows the "range
// fit" method: http://www.sjbrown.co.uk/2006/01/19/dxt-compression-techniques/
package dxt

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/ausocean/dxtv/codec/color"
)

// BlockPixels is the number of pixels in a DXT1 block (4x4).
const BlockPixels = 16

// EncodedSize is the size in bytes of an encoded block: two 16-bit
// endpoints plus a 32-bit packed index field.
const EncodedSize = 8

// Block is an encoded 4x4 DXT1-style block.
type Block struct {
	C0, C1  uint16
	Indices uint32 // 16 two-bit indices, pixel 0 in the low two bits
}

// ToBytes serializes b to its 8-byte wire layout: c0:u16, c1:u16,
// indices:u32, all little-endian.
func (b Block) ToBytes() [EncodedSize]byte {
	var out [EncodedSize]byte
	binary.LittleEndian.PutUint16(out[0:2], b.C0)
	binary.LittleEndian.PutUint16(out[2:4], b.C1)
	binary.LittleEndian.PutUint32(out[4:8], b.Indices)
	return out
}

// BlockFromBytes deserializes an 8-byte wire layout into a Block.
func BlockFromBytes(data []byte) (Block, error) {
	if len(data) < EncodedSize {
		return Block{}, errors.Errorf("dxt: need %d bytes, got %d", EncodedSize, len(data))
	}
	return Block{
		C0:      binary.LittleEndian.Uint16(data[0:2]),
		C1:      binary.LittleEndian.Uint16(data[2:4]),
		Indices: binary.LittleEndian.Uint32(data[4:8]),
	}, nil
}

// index returns the 2-bit index for pixel i.
func (b Block) index(i int) uint8 { return uint8((b.Indices >> uint(2*i)) & 0x3) }

// withIndex returns b with pixel i's index set to idx.
func (b Block) withIndex(i int, idx uint8) Block {
	mask := uint32(0x3) << uint(2*i)
	b.Indices = (b.Indices &^ mask) | (uint32(idx&0x3) << uint(2*i))
	return b
}

// Encode DXT1-encodes a 16-pixel (4x4, row-major) block of YCgCoR colors.
func Encode(colors [BlockPixels]color.YCgCoR) Block {
	axis := lineFitAxis(colors[:])

	// Project every pixel onto the axis; the two extremes become c0, c1.
	minIdx, maxIdx := 0, 0
	minProj, maxProj := colors[0].Dot(axis), colors[0].Dot(axis)
	for i := 1; i < len(colors); i++ {
		p := colors[i].Dot(axis)
		if p < minProj {
			minProj, minIdx = p, i
		}
		if p > maxProj {
			maxProj, maxIdx = p, i
		}
	}

	c0 := color.RoundToRGB555(colors[minIdx])
	c1 := color.RoundToRGB555(colors[maxIdx])

	endpoints := [4]color.YCgCoR{
		c0,
		c1,
		color.RoundToRGB555(c0.Scale(2).Add(c1).Scale(1.0 / 3)),
		color.RoundToRGB555(c0.Add(c1.Scale(2)).Scale(1.0 / 3)),
	}

	var block Block
	block.C0 = c0.ToRGB555()
	block.C1 = c1.ToRGB555()
	for i, c := range colors {
		best := 0
		bestDist := c.Distance(endpoints[0])
		for e := 1; e < 4; e++ {
			if d := c.Distance(endpoints[e]); d < bestDist {
				bestDist, best = d, e
			}
		}
		block = block.withIndex(i, uint8(best))
	}
	return block
}

// Decode reconstructs the 16 YCgCoR colors represented by block.
func Decode(block Block) [BlockPixels]color.YCgCoR {
	c0 := color.YCgCoRFromRGB555(block.C0)
	c1 := color.YCgCoRFromRGB555(block.C1)
	endpoints := [4]color.YCgCoR{
		c0,
		c1,
		color.RoundToRGB555(c0.Scale(2).Add(c1).Scale(1.0 / 3)),
		color.RoundToRGB555(c0.Add(c1.Scale(2)).Scale(1.0 / 3)),
	}
	var out [BlockPixels]color.YCgCoR
	for i := range out {
		out[i] = endpoints[block.index(i)]
	}
	return out
}

// lineFitAxis fits a line through the given colors (mean-centered, via
// the dominant eigenvector of the 3x3 scatter matrix) and returns its
// axis. This replaces the original implementation's full SVD with a
// symmetric eigendecomposition, since only the dominant eigenvector is
// needed (see the project's DESIGN NOTES).
func lineFitAxis(colors []color.YCgCoR) color.YCgCoR {
	mean := color.Mean(colors)

	// Build the 3x3 scatter matrix sum((p-mean)(p-mean)^T).
	var scatter [3][3]float64
	for _, c := range colors {
		d := c.Add(mean.Scale(-1)).Vec3()
		for r := 0; r < 3; r++ {
			for col := 0; col < 3; col++ {
				scatter[r][col] += d[r] * d[col]
			}
		}
	}
	sym := mat.NewSymDense(3, []float64{
		scatter[0][0], scatter[0][1], scatter[0][2],
		scatter[1][0], scatter[1][1], scatter[1][2],
		scatter[2][0], scatter[2][1], scatter[2][2],
	})

	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		// Factorization failed: fall back to the Y axis. Identical colors
		// do not reach this branch (their zero scatter matrix factorizes),
		// and for them every projection ties whichever axis is returned.
		return color.YCgCoR{Y: 1}
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	// Values() is ascending; the dominant eigenvector is the last column.
	dominant := len(values) - 1
	axis := color.YCgCoR{
		Y:  vectors.At(0, dominant),
		Cg: vectors.At(1, dominant),
		Co: vectors.At(2, dominant),
	}
	norm := axis.Dot(axis)
	if norm == 0 {
		return color.YCgCoR{Y: 1}
	}
	return axis
}
