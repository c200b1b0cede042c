/*
NAME
  codebook.go

DESCRIPTION
  codebook.go builds the three parallel block-view sequences (widths 16,
  8, 4) that DXTV's encoder and decoder address by index during
  same-frame and previous-frame block search (spec.md §3, §4.3).

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dxtv

import (
	"github.com/ausocean/dxtv/codec/color"
	"github.com/ausocean/dxtv/codec/dxtv/blockview"
)

// levelWidths are the three block widths DXTV addresses, widest first.
var levelWidths = [3]int{16, 8, 4}

// Codebook is the image's YCgCoR pixel array plus three parallel,
// independently row-major-indexed sequences of block views at widths
// 16, 8 and 4. It serves both as addressable storage for reconstructed
// pixels and as the lookup space for block-match search.
type Codebook struct {
	Width, Height int
	pixels        []color.YCgCoR
	levels        map[int][]*blockview.BlockView
}

// NewCodebook builds a Codebook over pixels, a row-major width*height
// YCgCoR buffer. pixels is shared, not copied: writes through any block
// view mutate it in place, which is how the encoder builds up the
// reconstructed frame as it commits blocks (spec.md §4.3).
func NewCodebook(pixels []color.YCgCoR, width, height int) *Codebook {
	cb := &Codebook{
		Width:  width,
		Height: height,
		pixels: pixels,
		levels: make(map[int][]*blockview.BlockView, len(levelWidths)),
	}
	for _, w := range levelWidths {
		cols := width / w
		rows := height / blockview.Height
		views := make([]*blockview.BlockView, 0, cols*rows)
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				views = append(views, blockview.New(pixels, width, height, w, x*w, y*blockview.Height))
			}
		}
		cb.levels[w] = views
	}
	return cb
}

// Pixels returns the codebook's underlying pixel buffer.
func (cb *Codebook) Pixels() []color.YCgCoR { return cb.pixels }

// TopLevel returns the width-16 block views in row-major order, the
// sequence the frame encoder and decoder both iterate over.
func (cb *Codebook) TopLevel() []*blockview.BlockView { return cb.levels[16] }

// BlockCount returns the number of blocks at the given level width.
func (cb *Codebook) BlockCount(width int) int { return len(cb.levels[width]) }

// BlockAt returns the block view at the given level width and row-major
// index, or nil if idx is out of range for that level.
func (cb *Codebook) BlockAt(width, idx int) *blockview.BlockView {
	views := cb.levels[width]
	if idx < 0 || idx >= len(views) {
		return nil
	}
	return views[idx]
}
