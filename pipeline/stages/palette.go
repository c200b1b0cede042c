/*
NAME
  palette.go

DESCRIPTION
  palette.go wraps quantize.Quantizer as the Paletted/Truecolor/
  CommonPalette pipeline stages, plus the color-map post-processing
  stages AddColor0, MoveColor0, ReorderColors, ShiftIndices and
  PruneIndices (SPEC_FULL.md §3a). These stages reshape a Frame's
  pixel/color-map representation in place and stay frame-shaped —
  unlike the stream transforms in transform.go, their output is still
  structured pixel data consumed by the next stage, not an
  independently decodable byte chunk, so they do not prepend a
  processing-type chunk header of their own; the terminal codec stage
  (DXT/DXTV) is what finally serializes the frame into the container's
  chunk stack.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package stages

import (
	"github.com/pkg/errors"

	"github.com/ausocean/dxtv/dxtverr"
	"github.com/ausocean/dxtv/frame"
	"github.com/ausocean/dxtv/pipeline"
	"github.com/ausocean/dxtv/pipeline/config"
	"github.com/ausocean/dxtv/quantize"
)

// paletteFormatFor returns the narrowest paletted Format that can hold
// maxColors distinct indices.
func paletteFormatFor(maxColors int) (frame.Format, error) {
	switch {
	case maxColors <= 2:
		return frame.Paletted1, nil
	case maxColors <= 4:
		return frame.Paletted2, nil
	case maxColors <= 16:
		return frame.Paletted4, nil
	case maxColors <= 256:
		return frame.Paletted8, nil
	default:
		return 0, errors.Wrap(dxtverr.OutOfRange, "stages: maxColors exceeds 256")
	}
}

// packIndices packs row-major indices into a Frame's Paletted* pixel
// buffer, most-significant-bit-first within each byte, matching
// frame.Frame's documented packing convention.
func packIndices(width, height int, format frame.Format, indices []uint8) ([]byte, error) {
	f, err := frame.New(width, height, format)
	if err != nil {
		return nil, err
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if err := f.SetPaletteIndex(x, y, int(indices[y*width+x])); err != nil {
				return nil, err
			}
		}
	}
	return f.Pixels, nil
}

// NewPaletted constructs the Paletted stage: quantizes a single frame's
// truecolor pixels to at most maxColors palette entries using q (or
// quantize.MedianCut{} if q is nil).
func NewPaletted(maxColors int, q quantize.Quantizer, decodeRelevant bool) *pipeline.Stage {
	if q == nil {
		q = quantize.MedianCut{}
	}
	return &pipeline.Stage{
		Tag:            config.Paletted,
		Shape:          pipeline.ShapeConvert,
		DecodeRelevant: decodeRelevant,
		ScratchSize:    func() uint32 { return 0 },
		ConvertFn: func(in pipeline.Payload) (pipeline.Payload, error) {
			if in.Frame == nil {
				return pipeline.Payload{}, errors.Wrap(dxtverr.InvalidInput, "paletted stage: expected a frame payload")
			}
			px, err := in.Frame.RGB555Pixels()
			if err != nil {
				return pipeline.Payload{}, errors.Wrap(err, "paletted stage")
			}
			palette, indices, err := q.Quantize(px, maxColors)
			if err != nil {
				return pipeline.Payload{}, errors.Wrap(err, "paletted stage: quantize")
			}
			format, err := paletteFormatFor(maxColors)
			if err != nil {
				return pipeline.Payload{}, err
			}
			pixels, err := packIndices(in.Frame.Width, in.Frame.Height, format, indices)
			if err != nil {
				return pipeline.Payload{}, errors.Wrap(err, "paletted stage")
			}
			return pipeline.Payload{Frame: &frame.Frame{
				Width:    in.Frame.Width,
				Height:   in.Frame.Height,
				Format:   format,
				Pixels:   pixels,
				ColorMap: palette,
			}}, nil
		},
	}
}

// NewTruecolor constructs the Truecolor stage: an explicit marker that
// a frame passes through the pipeline without palette quantization.
// Refuses frames already reduced to a paletted format.
func NewTruecolor(decodeRelevant bool) *pipeline.Stage {
	return &pipeline.Stage{
		Tag:            config.Truecolor,
		Shape:          pipeline.ShapeConvert,
		DecodeRelevant: decodeRelevant,
		ScratchSize:    func() uint32 { return 0 },
		ConvertFn: func(in pipeline.Payload) (pipeline.Payload, error) {
			if in.Frame == nil {
				return pipeline.Payload{}, errors.Wrap(dxtverr.InvalidInput, "truecolor stage: expected a frame payload")
			}
			if in.Frame.Format.IsPaletted() {
				return pipeline.Payload{}, errors.Wrap(dxtverr.InvalidInput, "truecolor stage: frame is already paletted")
			}
			return in, nil
		},
	}
}

// NewCommonPalette constructs the CommonPalette stage: a BatchConvert
// stage that quantizes the combined pixels of every frame in the batch
// to one shared palette of at most maxColors entries, then remaps each
// frame independently against that shared palette (SPEC_FULL.md §3a).
func NewCommonPalette(maxColors int, q quantize.Quantizer, decodeRelevant bool) *pipeline.Stage {
	if q == nil {
		q = quantize.MedianCut{}
	}
	return &pipeline.Stage{
		Tag:            config.CommonPalette,
		Shape:          pipeline.ShapeBatchConvert,
		DecodeRelevant: decodeRelevant,
		ScratchSize:    func() uint32 { return 0 },
		BatchConvertFn: func(in []pipeline.Payload) ([]pipeline.Payload, error) {
			if len(in) == 0 {
				return in, nil
			}
			var combined []uint16
			sizes := make([]int, len(in))
			for i, pl := range in {
				if pl.Frame == nil {
					return nil, errors.Wrap(dxtverr.InvalidInput, "commonpalette stage: expected frame payloads")
				}
				px, err := pl.Frame.RGB555Pixels()
				if err != nil {
					return nil, errors.Wrap(err, "commonpalette stage")
				}
				combined = append(combined, px...)
				sizes[i] = len(px)
			}
			palette, indices, err := q.Quantize(combined, maxColors)
			if err != nil {
				return nil, errors.Wrap(err, "commonpalette stage: quantize")
			}
			format, err := paletteFormatFor(maxColors)
			if err != nil {
				return nil, err
			}

			out := make([]pipeline.Payload, len(in))
			off := 0
			for i, pl := range in {
				n := sizes[i]
				pixels, err := packIndices(pl.Frame.Width, pl.Frame.Height, format, indices[off:off+n])
				if err != nil {
					return nil, errors.Wrap(err, "commonpalette stage")
				}
				off += n
				out[i] = pipeline.Payload{Frame: &frame.Frame{
					Width:    pl.Frame.Width,
					Height:   pl.Frame.Height,
					Format:   format,
					Pixels:   pixels,
					ColorMap: palette,
				}}
			}
			return out, nil
		},
	}
}

// requirePaletted returns an error if f is not in a paletted format,
// matching the boundary behavior that color-reorder/add-color-0/
// move-color-0-style stages refuse non-paletted inputs (spec.md §8).
func requirePaletted(name string, f *frame.Frame) error {
	if f == nil {
		return errors.Wrapf(dxtverr.InvalidInput, "%s stage: expected a frame payload", name)
	}
	if !f.Format.IsPaletted() {
		return errors.Wrapf(dxtverr.InvalidInput, "%s stage: frame is not paletted", name)
	}
	return nil
}

// remapIndices rebuilds a paletted Frame's pixel buffer by applying
// remap to every existing index (remap[old] = new), keeping the same
// pixel Format.
func remapIndices(f *frame.Frame, remap []uint8) (*frame.Frame, error) {
	out, err := frame.New(f.Width, f.Height, f.Format)
	if err != nil {
		return nil, err
	}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			idx, err := f.PaletteIndex(x, y)
			if err != nil {
				return nil, err
			}
			if err := out.SetPaletteIndex(x, y, int(remap[idx])); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// NewAddColor0 constructs the AddColor0 stage: prepends c to the
// frame's color map at index 0, shifting every existing index up by
// one (original_source/src/image/imageprocessing.h).
func NewAddColor0(c uint16, decodeRelevant bool) *pipeline.Stage {
	return &pipeline.Stage{
		Tag:            config.AddColor0,
		Shape:          pipeline.ShapeConvert,
		DecodeRelevant: decodeRelevant,
		ScratchSize:    func() uint32 { return 0 },
		ConvertFn: func(in pipeline.Payload) (pipeline.Payload, error) {
			if err := requirePaletted("addcolor0", in.Frame); err != nil {
				return pipeline.Payload{}, err
			}
			if len(in.Frame.ColorMap)+1 > 1<<uint(in.Frame.Format.BitsPerPixel()) {
				return pipeline.Payload{}, errors.Wrap(dxtverr.OutOfRange, "addcolor0 stage: color map would overflow index width")
			}
			remap := make([]uint8, len(in.Frame.ColorMap))
			for i := range remap {
				remap[i] = uint8(i + 1)
			}
			out, err := remapIndices(in.Frame, remap)
			if err != nil {
				return pipeline.Payload{}, errors.Wrap(err, "addcolor0 stage")
			}
			out.ColorMap = append([]uint16{c}, in.Frame.ColorMap...)
			return pipeline.Payload{Frame: out}, nil
		},
	}
}

// NewMoveColor0 constructs the MoveColor0 stage: moves the color map
// entry currently at index to index 0, shifting the intervening
// entries up by one and remapping every pixel index accordingly.
func NewMoveColor0(index int, decodeRelevant bool) *pipeline.Stage {
	return &pipeline.Stage{
		Tag:            config.MoveColor0,
		Shape:          pipeline.ShapeConvert,
		DecodeRelevant: decodeRelevant,
		ScratchSize:    func() uint32 { return 0 },
		ConvertFn: func(in pipeline.Payload) (pipeline.Payload, error) {
			if err := requirePaletted("movecolor0", in.Frame); err != nil {
				return pipeline.Payload{}, err
			}
			if index < 0 || index >= len(in.Frame.ColorMap) {
				return pipeline.Payload{}, errors.Wrap(dxtverr.OutOfRange, "movecolor0 stage: index out of range")
			}
			newMap := make([]uint16, len(in.Frame.ColorMap))
			newMap[0] = in.Frame.ColorMap[index]
			remap := make([]uint8, len(in.Frame.ColorMap))
			remap[index] = 0
			pos := 1
			for i, c := range in.Frame.ColorMap {
				if i == index {
					continue
				}
				newMap[pos] = c
				remap[i] = uint8(pos)
				pos++
			}
			out, err := remapIndices(in.Frame, remap)
			if err != nil {
				return pipeline.Payload{}, errors.Wrap(err, "movecolor0 stage")
			}
			out.ColorMap = newMap
			return pipeline.Payload{Frame: out}, nil
		},
	}
}

// NewReorderColors constructs the ReorderColors stage: applies a
// caller-supplied permutation to the color map, where perm[newIndex]
// gives the old index that should occupy newIndex.
func NewReorderColors(perm []uint8, decodeRelevant bool) *pipeline.Stage {
	return &pipeline.Stage{
		Tag:            config.ReorderColors,
		Shape:          pipeline.ShapeConvert,
		DecodeRelevant: decodeRelevant,
		ScratchSize:    func() uint32 { return 0 },
		ConvertFn: func(in pipeline.Payload) (pipeline.Payload, error) {
			if err := requirePaletted("reordercolors", in.Frame); err != nil {
				return pipeline.Payload{}, err
			}
			if len(perm) != len(in.Frame.ColorMap) {
				return pipeline.Payload{}, errors.Wrap(dxtverr.InvalidInput, "reordercolors stage: permutation length mismatch")
			}
			newMap := make([]uint16, len(perm))
			remap := make([]uint8, len(perm))
			for newIdx, oldIdx := range perm {
				if int(oldIdx) >= len(in.Frame.ColorMap) {
					return pipeline.Payload{}, errors.Wrap(dxtverr.OutOfRange, "reordercolors stage: permutation entry out of range")
				}
				newMap[newIdx] = in.Frame.ColorMap[oldIdx]
				remap[oldIdx] = uint8(newIdx)
			}
			out, err := remapIndices(in.Frame, remap)
			if err != nil {
				return pipeline.Payload{}, errors.Wrap(err, "reordercolors stage")
			}
			out.ColorMap = newMap
			return pipeline.Payload{Frame: out}, nil
		},
	}
}

// NewShiftIndices constructs the ShiftIndices stage: adds shift to
// every pixel index modulo the palette size, rotating the color map
// to match so the visible colors are unchanged.
func NewShiftIndices(shift int, decodeRelevant bool) *pipeline.Stage {
	return &pipeline.Stage{
		Tag:            config.ShiftIndices,
		Shape:          pipeline.ShapeConvert,
		DecodeRelevant: decodeRelevant,
		ScratchSize:    func() uint32 { return 0 },
		ConvertFn: func(in pipeline.Payload) (pipeline.Payload, error) {
			if err := requirePaletted("shiftindices", in.Frame); err != nil {
				return pipeline.Payload{}, err
			}
			n := len(in.Frame.ColorMap)
			if n == 0 {
				return pipeline.Payload{}, errors.Wrap(dxtverr.InvalidInput, "shiftindices stage: empty color map")
			}
			remap := make([]uint8, n)
			for i := range remap {
				remap[i] = uint8(((i+shift)%n + n) % n)
			}
			out, err := remapIndices(in.Frame, remap)
			if err != nil {
				return pipeline.Payload{}, errors.Wrap(err, "shiftindices stage")
			}
			rotated := make([]uint16, n)
			for i, c := range in.Frame.ColorMap {
				rotated[((i+shift)%n+n)%n] = c
			}
			out.ColorMap = rotated
			return pipeline.Payload{Frame: out}, nil
		},
	}
}

// NewPruneIndices constructs the PruneIndices stage: drops color map
// entries no pixel references and remaps the remaining indices to a
// dense range starting at 0, narrowing the pixel format if possible.
func NewPruneIndices(decodeRelevant bool) *pipeline.Stage {
	return &pipeline.Stage{
		Tag:            config.PruneIndices,
		Shape:          pipeline.ShapeConvert,
		DecodeRelevant: decodeRelevant,
		ScratchSize:    func() uint32 { return 0 },
		ConvertFn: func(in pipeline.Payload) (pipeline.Payload, error) {
			if err := requirePaletted("pruneindices", in.Frame); err != nil {
				return pipeline.Payload{}, err
			}
			f := in.Frame
			used := make([]bool, len(f.ColorMap))
			for y := 0; y < f.Height; y++ {
				for x := 0; x < f.Width; x++ {
					idx, err := f.PaletteIndex(x, y)
					if err != nil {
						return pipeline.Payload{}, errors.Wrap(err, "pruneindices stage")
					}
					used[idx] = true
				}
			}
			remap := make([]uint8, len(f.ColorMap))
			var newMap []uint16
			for i, u := range used {
				if u {
					remap[i] = uint8(len(newMap))
					newMap = append(newMap, f.ColorMap[i])
				}
			}
			format, err := paletteFormatFor(len(newMap))
			if err != nil {
				return pipeline.Payload{}, err
			}
			indices := make([]uint8, f.Width*f.Height)
			for y := 0; y < f.Height; y++ {
				for x := 0; x < f.Width; x++ {
					idx, _ := f.PaletteIndex(x, y)
					indices[y*f.Width+x] = remap[idx]
				}
			}
			pixels, err := packIndices(f.Width, f.Height, format, indices)
			if err != nil {
				return pipeline.Payload{}, errors.Wrap(err, "pruneindices stage")
			}
			return pipeline.Payload{Frame: &frame.Frame{
				Width:    f.Width,
				Height:   f.Height,
				Format:   format,
				Pixels:   pixels,
				ColorMap: newMap,
			}}, nil
		},
	}
}
