/*
NAME
  tiles.go

DESCRIPTION
  tiles.go implements the Tiles, Sprites and TileMap stages
  (SPEC_FULL.md §3a), grounded on the GBA target's tile-based VRAM
  layout (original_source/gba/videostructs.h): a frame is sliced into
  fixed-size tiles emitted in raster tile order, with an optional
  index-per-tile-position map recording which tile occupies each grid
  cell, feeding frame.Frame's TileMap indirection (spec.md §3).

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
)

// sliceTiles cuts f into tileW x tileH tiles, raster order, returning
// the distinct tile pixel buffers (in bpp-packed bytes) in first-seen
// order and the per-grid-cell index into that list.
func sliceTiles(f *frame.Frame, tileW, tileH int) ([][]byte, []uint16, error) {
	if tileW <= 0 || tileH <= 0 || f.Width%tileW != 0 || f.Height%tileH != 0 {
		return nil, nil, errors.Wrapf(dxtverr.InvalidInput, "tiles stage: frame %dx%d not divisible by tile %dx%d", f.Width, f.Height, tileW, tileH)
	}
	bpp := f.Format.BitsPerPixel()
	gridW, gridH := f.Width/tileW, f.Height/tileH

	seen := make(map[string]uint16)
	var tiles [][]byte
	tileMap := make([]uint16, gridW*gridH)

	for gy := 0; gy < gridH; gy++ {
		for gx := 0; gx < gridW; gx++ {
			tile := extractTile(f, gx*tileW, gy*tileH, tileW, tileH, bpp)
			key := string(tile)
			idx, ok := seen[key]
			if !ok {
				idx = uint16(len(tiles))
				seen[key] = idx
				tiles = append(tiles, tile)
			}
			tileMap[gy*gridW+gx] = idx
		}
	}
	return tiles, tileMap, nil
}

// extractTile copies one tile's pixels out of f's packed buffer,
// working in whole index/pixel units so it applies to any bpp.
func extractTile(f *frame.Frame, ox, oy, tileW, tileH, bpp int) []byte {
	bits := tileW * tileH * bpp
	out := make([]byte, (bits+7)/8)
	bitPos := 0
	for y := 0; y < tileH; y++ {
		for x := 0; x < tileW; x++ {
			srcBit := ((oy+y)*f.Width + (ox + x)) * bpp
			for b := 0; b < bpp; b++ {
				srcByte := (srcBit + b) / 8
				srcShift := 7 - (srcBit+b)%8
				bit := (f.Pixels[srcByte] >> uint(srcShift)) & 1
				dstByte := bitPos / 8
				dstShift := uint(7 - bitPos%8)
				out[dstByte] |= bit << dstShift
				bitPos++
			}
		}
	}
	return out
}

// NewTiles constructs the Tiles stage: slices the frame into tileW x
// tileH tiles and emits the deduplicated tile table as the frame's
// pixel buffer (tiles concatenated in first-seen order), attaching the
// per-position tile map.
func NewTiles(tileW, tileH int, decodeRelevant bool) *pipeline.Stage {
	return &pipeline.Stage{
		Tag:            config.Tiles,
		Shape:          pipeline.ShapeConvert,
		DecodeRelevant: decodeRelevant,
		ScratchSize:    func() uint32 { return 0 },
		ConvertFn: func(in pipeline.Payload) (pipeline.Payload, error) {
			if in.Frame == nil {
				return pipeline.Payload{}, errors.Wrap(dxtverr.InvalidInput, "tiles stage: expected a frame payload")
			}
			tiles, tileMap, err := sliceTiles(in.Frame, tileW, tileH)
			if err != nil {
				return pipeline.Payload{}, err
			}
			var pixels []byte
			for _, t := range tiles {
				pixels = append(pixels, t...)
			}
			out := in.Frame.Clone()
			out.Pixels = pixels
			out.TileMap = tileMap
			return pipeline.Payload{Frame: out}, nil
		},
	}
}

// NewSprites constructs the Sprites stage: Tiles restricted to a
// caller-declared sprite size grid, so the whole frame is treated as a
// single sprite sheet of spriteW x spriteH cells rather than 8x8 tiles.
func NewSprites(spriteW, spriteH int, decodeRelevant bool) *pipeline.Stage {
	return &pipeline.Stage{
		Tag:            config.Sprites,
		Shape:          pipeline.ShapeConvert,
		DecodeRelevant: decodeRelevant,
		ScratchSize:    func() uint32 { return 0 },
		ConvertFn: func(in pipeline.Payload) (pipeline.Payload, error) {
			if in.Frame == nil {
				return pipeline.Payload{}, errors.Wrap(dxtverr.InvalidInput, "sprites stage: expected a frame payload")
			}
			tiles, tileMap, err := sliceTiles(in.Frame, spriteW, spriteH)
			if err != nil {
				return pipeline.Payload{}, err
			}
			var pixels []byte
			for _, t := range tiles {
				pixels = append(pixels, t...)
			}
			out := in.Frame.Clone()
			out.Pixels = pixels
			out.TileMap = tileMap
			return pipeline.Payload{Frame: out}, nil
		},
	}
}

// NewTileMap constructs the TileMap stage: a no-op over pixel data that
// asserts a frame already carries a tile-map indirection (produced by
// a prior Tiles/Sprites stage), matching the processing-type
// enumeration's separate TileMap tag. It does not serialize the tile
// map, and the container writer has no tile-map field.
func NewTileMap(decodeRelevant bool) *pipeline.Stage {
	return &pipeline.Stage{
		Tag:            config.TileMap,
		Shape:          pipeline.ShapeConvert,
		DecodeRelevant: decodeRelevant,
		ScratchSize:    func() uint32 { return 0 },
		ConvertFn: func(in pipeline.Payload) (pipeline.Payload, error) {
			if in.Frame == nil || in.Frame.TileMap == nil {
				return pipeline.Payload{}, errors.Wrap(dxtverr.InvalidInput, "tilemap stage: frame has no tile-map indirection")
			}
			return in, nil
		},
	}
}
