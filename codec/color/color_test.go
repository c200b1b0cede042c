/*
NAME
  color_test.go

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package color

import "testing"

// TestRGB555RoundTrip checks that converting every RGB555 grid point to
// YCgCoR and back is the identity once re-rounded to the grid.
func TestRGB555RoundTrip(t *testing.T) {
	for _, v := range []uint16{0x0000, 0x7FFF, 0x1234, 0x5AD6, 0x0421} {
		got := YCgCoRFromRGB555(v).ToRGB555()
		if got != v {
			t.Errorf("RGB555(0x%04X) round trip = 0x%04X, want 0x%04X", v, got, v)
		}
	}
}

// TestDistanceZeroForEqualColors checks that identical colors have zero
// perceptual distance.
func TestDistanceZeroForEqualColors(t *testing.T) {
	c := FromRGB555(0x1234)
	if d := Distance(c, c); d != 0 {
		t.Errorf("Distance(c, c) = %v, want 0", d)
	}
}

// TestDistanceBounded checks the distance metric stays within [0,1] for
// maximally different colors, per spec.md §3.
func TestDistanceBounded(t *testing.T) {
	black := RGB{0, 0, 0}
	white := RGB{1, 1, 1}
	d := Distance(black, white)
	if d < 0 || d > 1 {
		t.Errorf("Distance(black, white) = %v, want value in [0,1]", d)
	}
}

// TestRoundToRGB555Grid checks that rounding a color already on the grid
// is a no-op.
func TestRoundToRGB555Grid(t *testing.T) {
	c := FromRGB555(0x5AD6)
	rounded := RoundToRGB555Grid(c)
	if rounded.ToRGB555() != 0x5AD6 {
		t.Errorf("RoundToRGB555Grid(grid point) changed value: got 0x%04X, want 0x5AD6", rounded.ToRGB555())
	}
}

// TestMeanEmpty checks Mean returns the zero value for an empty slice.
func TestMeanEmpty(t *testing.T) {
	if got := Mean(nil); got != (YCgCoR{}) {
		t.Errorf("Mean(nil) = %+v, want zero value", got)
	}
}
