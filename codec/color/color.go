/*
NAME
  color.go

DESCRIPTION
  color.go provides the RGB888/RGB555/YCgCoR color primitives and the
  perceptual distance metric used by the DXT1 and DXTV codecs.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package color provides normalized truecolor primitives (RGB888, RGB555
// and an intermediate YCgCoR basis), their lossless conversions, RGB555
// grid rounding, and the perceptual color distance used to score block
// matches during DXT1/DXTV encoding.
package color


// RGB is a normalized floating-point RGB color with components in [0,1].
type RGB struct {
	R, G, B float64
}

// clamp01 clamps v to [0,1].
func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// FromRGB888 unpacks a 24-bit RGB888 value (0xRRGGBB) into an RGB.
func FromRGB888(rgb888 uint32) RGB {
	return RGB{
		R: float64((rgb888>>16)&0xFF) / 255,
		G: float64((rgb888>>8)&0xFF) / 255,
		B: float64(rgb888&0xFF) / 255,
	}
}

// ToRGB888 packs c into a 24-bit RGB888 value, rounding and clamping each
// channel to [0,255].
func (c RGB) ToRGB888() uint32 {
	r := uint32(clamp01(c.R)*255 + 0.5)
	g := uint32(clamp01(c.G)*255 + 0.5)
	b := uint32(clamp01(c.B)*255 + 0.5)
	return r<<16 | g<<8 | b
}

// FromRGB555 unpacks a 16-bit little-endian 5-5-5 RGB555 value into an RGB.
func FromRGB555(rgb555 uint16) RGB {
	return RGB{
		R: float64((rgb555>>10)&0x1F) / 31,
		G: float64((rgb555>>5)&0x1F) / 31,
		B: float64(rgb555&0x1F) / 31,
	}
}

// ToRGB555 packs c into a 16-bit RGB555 value, rounding and clamping each
// channel to the 5-bit grid.
func (c RGB) ToRGB555() uint16 {
	r := uint16(clamp01(c.R)*31 + 0.5)
	g := uint16(clamp01(c.G)*31 + 0.5)
	b := uint16(clamp01(c.B)*31 + 0.5)
	return r<<10 | g<<5 | b
}

// RoundToRGB555Grid rounds c to the nearest RGB555 grid point, returning
// the result as a normalized RGB rather than a packed value.
func RoundToRGB555Grid(c RGB) RGB {
	return FromRGB555(c.ToRGB555())
}

// Distance returns the perceptual distance between two RGB colors, a
// value in [0,1]:
//
//	((2+r̄)·dR² + 4·dG² + (3−r̄)·dB²) / 9
//
// with r̄ the mean of the two colors' red channels.
func Distance(a, b RGB) float64 {
	dR := a.R - b.R
	dG := a.G - b.G
	dB := a.B - b.B
	rMean := 0.5 * (a.R + b.R)
	return ((2+rMean)*dR*dR + 4*dG*dG + (3-rMean)*dB*dB) / 9
}

// DistanceBelowThreshold reports whether dist(a,b) < threshold along with
// the distance itself, avoiding a second pass over the colors at call
// sites that need both.
func DistanceBelowThreshold(a, b RGB, threshold float64) (bool, float64) {
	d := Distance(a, b)
	return d < threshold, d
}

// YCgCoR is the lossless luma/chroma basis used as the working space for
// block matching (see https://en.wikipedia.org/wiki/YCoCg#The_lifting-based_YCoCg-R_variation).
// Y is in [0,1], Cg and Co are in [-1,1].
type YCgCoR struct {
	Y, Cg, Co float64
}

// FromRGBColor converts a normalized RGB color to YCgCoR.
func FromRGBColor(c RGB) YCgCoR {
	co := c.R - c.B
	tmp := c.B + co/2
	cg := c.G - tmp
	y := tmp + cg/2
	return YCgCoR{Y: y, Cg: cg, Co: co}
}

// ToRGBColor converts a YCgCoR color back to normalized RGB. This is the
// exact inverse of FromRGBColor.
func (c YCgCoR) ToRGBColor() RGB {
	tmp := c.Y - c.Cg/2
	g := c.Cg + tmp
	b := tmp - c.Co/2
	r := b + c.Co
	return RGB{R: r, G: g, B: b}
}

// YCgCoRFromRGB888 converts a packed RGB888 value to YCgCoR.
func YCgCoRFromRGB888(rgb888 uint32) YCgCoR { return FromRGBColor(FromRGB888(rgb888)) }

// YCgCoRFromRGB555 converts a packed RGB555 value to YCgCoR.
func YCgCoRFromRGB555(rgb555 uint16) YCgCoR { return FromRGBColor(FromRGB555(rgb555)) }

// ToRGB555 converts c to a packed RGB555 value by rounding and clamping
// each channel to the 5-bit grid.
func (c YCgCoR) ToRGB555() uint16 { return c.ToRGBColor().ToRGB555() }

// RoundToRGB555 rounds a YCgCoR color's underlying RGB representation to
// the RGB555 grid, returning the result re-expressed in YCgCoR. The
// YCgCoR fields stay in their normal ranges; only the implied RGB moves
// to grid positions.
func RoundToRGB555(c YCgCoR) YCgCoR {
	return FromRGBColor(RoundToRGB555Grid(c.ToRGBColor()))
}

// Distance returns the perceptual distance between two YCgCoR colors by
// converting both back to RGB and applying the RGB distance formula.
// Lossless round-tripping (FromRGBColor/ToRGBColor are exact inverses)
// means this is equivalent to measuring distance directly in RGB.
func (c YCgCoR) Distance(other YCgCoR) float64 {
	return Distance(c.ToRGBColor(), other.ToRGBColor())
}

// DistanceBelowThreshold reports whether the distance between c and other
// is below threshold, returning both the verdict and the distance.
func (c YCgCoR) DistanceBelowThreshold(other YCgCoR, threshold float64) (bool, float64) {
	d := c.Distance(other)
	return d < threshold, d
}

// Add returns the component-wise sum of c and other.
func (c YCgCoR) Add(other YCgCoR) YCgCoR {
	return YCgCoR{Y: c.Y + other.Y, Cg: c.Cg + other.Cg, Co: c.Co + other.Co}
}

// Scale returns c with every component multiplied by s.
func (c YCgCoR) Scale(s float64) YCgCoR {
	return YCgCoR{Y: c.Y * s, Cg: c.Cg * s, Co: c.Co * s}
}

// Dot returns the dot product of c and other, treating both as vectors in
// YCgCoR space.
func (c YCgCoR) Dot(other YCgCoR) float64 {
	return c.Y*other.Y + c.Cg*other.Cg + c.Co*other.Co
}

// Mean returns the component-wise mean of colors. It returns the zero
// value for an empty slice.
func Mean(colors []YCgCoR) YCgCoR {
	if len(colors) == 0 {
		return YCgCoR{}
	}
	var sum YCgCoR
	for _, c := range colors {
		sum = sum.Add(c)
	}
	return sum.Scale(1 / float64(len(colors)))
}

// Vec3 returns c as a plain 3-element array, the shape codec/dxt needs to
// feed into gonum's matrix types for the line-fit eigendecomposition.
func (c YCgCoR) Vec3() [3]float64 { return [3]float64{c.Y, c.Cg, c.Co} }
