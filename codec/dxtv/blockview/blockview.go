/*
NAME
  blockview.go

DESCRIPTION
  blockview.go provides a non-owning, strided logical view of a W×H
  sub-rectangle of a frame's pixel buffer, with recursive half-width
  child views for DXTV's hierarchical block splitter.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package blockview provides BlockView, a non-owning reference into a
// rectangular region of a codebook's pixel buffer. It is the Go
// translation of the C++ template `BlockView<T,W,H,MIN_W>` (see
// original_source/src/colorblock.h): rather than a generic type per
// width, a BlockView carries its Width as a plain field and stores its
// (at most two) children inline, per the project's DESIGN NOTES on
// avoiding per-view heap allocation and deep generic recursion.
package blockview

import "github.com/ausocean/dxtv/codec/color"

// MinWidth is the smallest block width DXTV ever splits down to.
const MinWidth = 4

// Height is the fixed block height used at every DXTV level.
const Height = 4

// BlockView is a non-owning view of a Width×Height sub-rectangle of a
// parent pixel buffer. A BlockView never owns its pixels: reads and
// writes go through to the parent, and are visible through any other
// view over the same pixels.
type BlockView struct {
	colors      []color.YCgCoR // shared with the parent codebook; never reallocated by this type
	imageWidth  int
	imageHeight int
	x, y        int
	width       int
	index       uint32
	offsets     []int // precomputed width*height linear offsets into colors
	children    [2]*BlockView
}

// New constructs a BlockView over the given width×Height rectangle of an
// imageWidth×imageHeight pixel buffer, with its origin at (x,y). Width
// must be 16, 8 or 4. Child views (for width > MinWidth) are constructed
// eagerly, matching the original's eager m_subblocks.
func New(colors []color.YCgCoR, imageWidth, imageHeight, width, x, y int) *BlockView {
	b := &BlockView{
		colors:      colors,
		imageWidth:  imageWidth,
		imageHeight: imageHeight,
		x:           x,
		y:           y,
		width:       width,
		index:       uint32(y/Height*(imageWidth/width) + x/width),
		offsets:     make([]int, width*Height),
	}
	offset := y*imageWidth + x
	pos := 0
	for row := 0; row < Height; row++ {
		for col := 0; col < width; col++ {
			b.offsets[pos] = offset + col
			pos++
		}
		offset += imageWidth
	}
	if width > MinWidth {
		b.children[0] = New(colors, imageWidth, imageHeight, width/2, x, y)
		b.children[1] = New(colors, imageWidth, imageHeight, width/2, x+width/2, y)
	}
	return b
}

// Width returns the view's block width (16, 8 or 4).
func (b *BlockView) Width() int { return b.width }

// Index returns the block's row-major index within its level. Each
// level (width 16, 8, 4) enumerates its blocks independently, so two
// views of different widths covering the same pixels generally have
// different indices.
func (b *BlockView) Index() uint32 { return b.index }

// Len returns the number of pixels in the view (Width*Height).
func (b *BlockView) Len() int { return len(b.offsets) }

// At returns the pixel at linear index i (row-major within the block).
func (b *BlockView) At(i int) color.YCgCoR { return b.colors[b.offsets[i]] }

// Set writes c to pixel i, visible immediately through the parent and
// any other view sharing these pixels.
func (b *BlockView) Set(i int, c color.YCgCoR) { b.colors[b.offsets[i]] = c }

// Colors returns an owned copy of the view's pixels as a flat,
// row-major slice of length Len().
func (b *BlockView) Colors() []color.YCgCoR {
	out := make([]color.YCgCoR, len(b.offsets))
	for i, off := range b.offsets {
		out[i] = b.colors[off]
	}
	return out
}

// CopyColorsFrom deep-copies another same-sized view's pixels into b.
func (b *BlockView) CopyColorsFrom(other *BlockView) {
	for i, off := range b.offsets {
		b.colors[off] = other.colors[other.offsets[i]]
	}
}

// CopyColorsFromSlice deep-copies a flat length-Len() color array into b.
func (b *BlockView) CopyColorsFromSlice(colors []color.YCgCoR) {
	for i, off := range b.offsets {
		b.colors[off] = colors[i]
	}
}

// Block returns child 0 (left half) or child 1 (right half) of a view
// wider than MinWidth. It panics if b.Width() == MinWidth, since a 4x4
// block cannot be split further; callers must check Width() first, per
// the recursive encoder's "W = 4 (cannot split further)" terminal case.
func (b *BlockView) Block(i int) *BlockView {
	if b.width <= MinWidth {
		panic("blockview: Block called on a view at MinWidth")
	}
	return b.children[i]
}
