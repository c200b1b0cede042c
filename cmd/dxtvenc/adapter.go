/*
NAME
  adapter.go

DESCRIPTION
  adapter.go decodes an ordered list of image files into frame.Frame
  values using the standard library's image package — this command's
  one use of an external image-decoding collaborator, left out of the
  core library per spec.md's "image file I/O... assumed provided by an
  image library" non-goal.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/pkg/errors"

	"github.com/ausocean/dxtv/codec/color"
	"github.com/ausocean/dxtv/dxtverr"
	"github.com/ausocean/dxtv/frame"
)

// loadFrames decodes every path in order into an RGB555 frame.Frame.
// All images must share the same dimensions.
func loadFrames(paths []string) ([]*frame.Frame, error) {
	out := make([]*frame.Frame, 0, len(paths))
	var width, height int
	for i, p := range paths {
		f, err := decodeImageFile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "dxtvenc: decode %s", p)
		}
		if i == 0 {
			width, height = f.Width, f.Height
		} else if f.Width != width || f.Height != height {
			return nil, errors.Wrapf(dxtverr.InvalidInput, "dxtvenc: %s is %dx%d, want %dx%d", p, f.Width, f.Height, width, height)
		}
		out = append(out, f)
	}
	return out, nil
}

// decodeImageFile reads and decodes a single image, converting it to
// an RGB555 frame.Frame.
func decodeImageFile(path string) (*frame.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	f, err := frame.New(width, height, frame.RGB555)
	if err != nil {
		return nil, err
	}

	px := make([]uint16, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			rgb888 := uint32(r>>8)<<16 | uint32(g>>8)<<8 | uint32(b>>8)
			px[y*width+x] = color.FromRGB888(rgb888).ToRGB555()
		}
	}
	if err := f.SetRGB555Pixels(px); err != nil {
		return nil, err
	}
	return f, nil
}
