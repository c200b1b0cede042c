/*
NAME
  blockview_test.go

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package blockview

import (
	"testing"

	"github.com/ausocean/dxtv/codec/color"
)

// makeGradient builds a w*h image where each pixel's luma encodes its
// linear index, for easy inspection.
func makeGradient(w, h int) []color.YCgCoR {
	colors := make([]color.YCgCoR, w*h)
	for i := range colors {
		colors[i] = color.YCgCoR{Y: float64(i) / float64(w*h)}
	}
	return colors
}

// TestWriteThroughVisibleToParent checks that a write through one view is
// immediately visible through a second view over the same pixels.
func TestWriteThroughVisibleToParent(t *testing.T) {
	colors := makeGradient(16, 4)
	a := New(colors, 16, 4, 16, 0, 0)
	b := New(colors, 16, 4, 4, 0, 0)

	newColor := color.YCgCoR{Y: 0.5, Cg: 0.1, Co: -0.1}
	a.Set(0, newColor)
	if got := b.At(0); got != newColor {
		t.Errorf("write through a not visible through b: got %+v, want %+v", got, newColor)
	}
}

// TestIndexRowMajorPerLevel checks that index() enumerates blocks
// row-by-row independently per level, per spec.md §4.1.
func TestIndexRowMajorPerLevel(t *testing.T) {
	colors := makeGradient(32, 8)
	// Level width=16: 2 blocks per row, 2 rows -> indices 0..3.
	wantIdx := map[[2]int]uint32{
		{0, 0}:  0,
		{16, 0}: 1,
		{0, 4}:  2,
		{16, 4}: 3,
	}
	for xy, want := range wantIdx {
		v := New(colors, 32, 8, 16, xy[0], xy[1])
		if v.Index() != want {
			t.Errorf("Index() for (%d,%d) = %d, want %d", xy[0], xy[1], v.Index(), want)
		}
	}
}

// TestChildrenCoverHalves checks that a width-16 view's two children
// cover its left and right halves.
func TestChildrenCoverHalves(t *testing.T) {
	colors := makeGradient(16, 4)
	v := New(colors, 16, 4, 16, 0, 0)
	left := v.Block(0)
	right := v.Block(1)
	if left.Width() != 8 || right.Width() != 8 {
		t.Fatalf("children width = %d, %d, want 8, 8", left.Width(), right.Width())
	}
	// Pixel 0 of left should equal pixel 0 of parent; pixel 0 of right
	// should equal parent pixel at column 8.
	if left.At(0) != v.At(0) {
		t.Error("left child pixel 0 does not match parent pixel 0")
	}
	if right.At(0) != v.At(8) {
		t.Error("right child pixel 0 does not match parent pixel 8")
	}
}

// TestBlockPanicsAtMinWidth checks that Block panics once a view can no
// longer be split, matching the recursive encoder's terminal case.
func TestBlockPanicsAtMinWidth(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Block on a MinWidth view did not panic")
		}
	}()
	colors := makeGradient(4, 4)
	v := New(colors, 4, 4, 4, 0, 0)
	v.Block(0)
}

// TestColorsAndCopyColorsFrom checks the deep-copy accessors round trip.
func TestColorsAndCopyColorsFrom(t *testing.T) {
	colors := makeGradient(8, 4)
	src := New(colors, 8, 4, 4, 0, 0)
	dstColors := makeGradient(8, 4)
	dst := New(dstColors, 8, 4, 4, 4, 0)

	dst.CopyColorsFrom(src)
	if !equalColors(dst.Colors(), src.Colors()) {
		t.Error("CopyColorsFrom did not copy source pixels")
	}
}

func equalColors(a, b []color.YCgCoR) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
