/*
NAME
  quantize.go

DESCRIPTION
  quantize.go defines the external black-box quantizer collaborator
  (spec.md §1 Non-goals: "truecolor→paletted remapping... treated as a
  black-box quantizer") and a deterministic median-cut reference
  implementation used by default and by tests. Orchestration —
  choosing when a frame is quantized to a shared vs per-frame palette —
  lives in pipeline/stages' CommonPalette/Paletted stages.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package quantize defines the swappable Quantizer interface used for
// paletted/common-palette output, and a median-cut reference
// implementation.
package quantize

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/ausocean/dxtv/codec/color"
	"github.com/ausocean/dxtv/dxtverr"
)

// Quantizer reduces a set of RGB555 pixels to at most maxColors palette
// entries and maps every pixel to a palette index. Implementations are
// free to use any algorithm; the Paletted and CommonPalette stages in
// pipeline/stages only depend on the interface.
type Quantizer interface {
	Quantize(pixels []uint16, maxColors int) (palette []uint16, indices []uint8, err error)
}

// MedianCut is a reference Quantizer using median-cut color-space
// partitioning over YCgCoR.
type MedianCut struct{}

type medianCutBox struct {
	pixels []color.YCgCoR
	lo     color.YCgCoR
	hi     color.YCgCoR
}

func (b *medianCutBox) bounds() {
	if len(b.pixels) == 0 {
		return
	}
	b.lo, b.hi = b.pixels[0], b.pixels[0]
	for _, p := range b.pixels[1:] {
		b.lo.Y, b.hi.Y = minF(b.lo.Y, p.Y), maxF(b.hi.Y, p.Y)
		b.lo.Cg, b.hi.Cg = minF(b.lo.Cg, p.Cg), maxF(b.hi.Cg, p.Cg)
		b.lo.Co, b.hi.Co = minF(b.lo.Co, p.Co), maxF(b.hi.Co, p.Co)
	}
}

func (b *medianCutBox) widestAxis() int {
	dy := b.hi.Y - b.lo.Y
	dcg := b.hi.Cg - b.lo.Cg
	dco := b.hi.Co - b.lo.Co
	switch {
	case dy >= dcg && dy >= dco:
		return 0
	case dcg >= dco:
		return 1
	default:
		return 2
	}
}

func axisOf(c color.YCgCoR, axis int) float64 {
	switch axis {
	case 0:
		return c.Y
	case 1:
		return c.Cg
	default:
		return c.Co
	}
}

func (b *medianCutBox) split() (*medianCutBox, *medianCutBox) {
	axis := b.widestAxis()
	sort.Slice(b.pixels, func(i, j int) bool { return axisOf(b.pixels[i], axis) < axisOf(b.pixels[j], axis) })
	mid := len(b.pixels) / 2
	a := &medianCutBox{pixels: append([]color.YCgCoR(nil), b.pixels[:mid]...)}
	c := &medianCutBox{pixels: append([]color.YCgCoR(nil), b.pixels[mid:]...)}
	a.bounds()
	c.bounds()
	return a, c
}

func (b *medianCutBox) average() color.YCgCoR {
	return color.Mean(b.pixels)
}

// Quantize implements Quantizer using median-cut partitioning.
func (MedianCut) Quantize(pixels []uint16, maxColors int) ([]uint16, []uint8, error) {
	if maxColors <= 0 || maxColors > 256 {
		return nil, nil, errors.Wrap(dxtverr.InvalidInput, "quantize: maxColors must be in (0,256]")
	}
	if len(pixels) == 0 {
		return nil, nil, nil
	}

	ycc := make([]color.YCgCoR, len(pixels))
	for i, px := range pixels {
		ycc[i] = color.YCgCoRFromRGB555(px)
	}

	root := &medianCutBox{pixels: ycc}
	root.bounds()
	boxes := []*medianCutBox{root}
	for len(boxes) < maxColors {
		// Split the box with the most pixels; stop if none can split.
		widest := -1
		for i, b := range boxes {
			if len(b.pixels) > 1 && (widest < 0 || len(b.pixels) > len(boxes[widest].pixels)) {
				widest = i
			}
		}
		if widest < 0 {
			break
		}
		a, c := boxes[widest].split()
		boxes = append(boxes[:widest], boxes[widest+1:]...)
		boxes = append(boxes, a, c)
	}

	palette := make([]uint16, len(boxes))
	paletteYCC := make([]color.YCgCoR, len(boxes))
	for i, b := range boxes {
		avg := b.average()
		paletteYCC[i] = avg
		palette[i] = avg.ToRGB555()
	}

	indices := make([]uint8, len(pixels))
	for i, p := range ycc {
		best, bestDist := 0, -1.0
		for j, pc := range paletteYCC {
			d := p.Distance(pc)
			if bestDist < 0 || d < bestDist {
				bestDist, best = d, j
			}
		}
		indices[i] = uint8(best)
	}
	return palette, indices, nil
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
