/*
NAME
  factory.go

DESCRIPTION
  factory.go builds a concrete pipeline.Stage from a
  config.StageDescriptor — the "processing-type tag, bag of input
  parameters, decodeRelevant flag, addStatistics flag" pipeline stage
  record of spec.md §3 — so a Config's declarative Stages list can
  drive the same constructors cmd/dxtvenc wires directly from flags.

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
	"github.com/ausocean/dxtv/pipeline"
	"github.com/ausocean/dxtv/pipeline/config"
	"github.com/ausocean/dxtv/quantize"
)

func intParam(params map[string]interface{}, key string, def int) int {
	if v, ok := params[key]; ok {
		if n, ok := v.(int); ok {
			return n
		}
	}
	return def
}

func floatParam(params map[string]interface{}, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return def
}

func uint16Param(params map[string]interface{}, key string, def uint16) uint16 {
	if v, ok := params[key]; ok {
		if n, ok := v.(uint16); ok {
			return n
		}
	}
	return def
}

func uint8SliceParam(params map[string]interface{}, key string) []uint8 {
	if v, ok := params[key]; ok {
		if s, ok := v.([]uint8); ok {
			return s
		}
	}
	return nil
}

// New builds the pipeline.Stage named by d.Tag, pulling parameters out
// of d.Params by convention (see each Tag's case below for the keys it
// reads). width/height size any stage that needs a frame's dimensions
// up front (currently only DXTV); q is the Quantizer used by Paletted/
// CommonPalette (nil selects quantize.MedianCut{}).
func New(d config.StageDescriptor, width, height int, q quantize.Quantizer) (*pipeline.Stage, error) {
	switch d.Tag {
	case config.DXTV:
		return NewDXTV(width, height, floatParam(d.Params, "maxBlockError", 0.1), d.DecodeRelevant), nil
	case config.DXT:
		return NewDXT(d.DecodeRelevant), nil
	case config.LZ10:
		return NewLZ10(d.DecodeRelevant), nil
	case config.RLE:
		return NewRLE(d.DecodeRelevant), nil
	case config.Delta8:
		return NewDelta8(d.DecodeRelevant), nil
	case config.Delta16:
		return NewDelta16(d.DecodeRelevant), nil
	case config.Paletted:
		return NewPaletted(intParam(d.Params, "maxColors", 16), q, d.DecodeRelevant), nil
	case config.Truecolor:
		return NewTruecolor(d.DecodeRelevant), nil
	case config.CommonPalette:
		return NewCommonPalette(intParam(d.Params, "maxColors", 16), q, d.DecodeRelevant), nil
	case config.AddColor0:
		return NewAddColor0(uint16Param(d.Params, "color", 0), d.DecodeRelevant), nil
	case config.MoveColor0:
		return NewMoveColor0(intParam(d.Params, "index", 0), d.DecodeRelevant), nil
	case config.ReorderColors:
		return NewReorderColors(uint8SliceParam(d.Params, "perm"), d.DecodeRelevant), nil
	case config.ShiftIndices:
		return NewShiftIndices(intParam(d.Params, "shift", 0), d.DecodeRelevant), nil
	case config.PruneIndices:
		return NewPruneIndices(d.DecodeRelevant), nil
	case config.Tiles:
		return NewTiles(intParam(d.Params, "tileWidth", 8), intParam(d.Params, "tileHeight", 8), d.DecodeRelevant), nil
	case config.Sprites:
		return NewSprites(intParam(d.Params, "spriteWidth", 16), intParam(d.Params, "spriteHeight", 16), d.DecodeRelevant), nil
	case config.TileMap:
		return NewTileMap(d.DecodeRelevant), nil
	default:
		return nil, errors.Wrapf(dxtverr.InvalidInput, "stages: unknown processing-type tag %d", d.Tag)
	}
}

// FromConfig builds the full ordered stage list from cfg.Stages.
func FromConfig(cfg *config.Config, width, height int, q quantize.Quantizer) ([]*pipeline.Stage, error) {
	out := make([]*pipeline.Stage, 0, len(cfg.Stages))
	for i, d := range cfg.Stages {
		st, err := New(d, width, height, q)
		if err != nil {
			return nil, errors.Wrapf(err, "stages: descriptor %d", i)
		}
		st.AddStatistics = d.AddStatistics
		out = append(out, st)
	}
	return out, nil
}
