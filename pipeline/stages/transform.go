/*
NAME
  transform.go

DESCRIPTION
  transform.go wraps codec/transform's LZ10, RLE, Delta8 and Delta16
  stream transforms as Convert-shaped stages. Each takes whatever bytes
  the previous stage produced — or, if no byte-producing stage has run
  yet, the frame's raw pixel buffer — compresses/filters it, and
  prepends its own chunk header (spec.md §4.5: "each transform writes
  its output preceded by a one-word tag").

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

	"github.com/ausocean/dxtv/codec/transform"
	"github.com/ausocean/dxtv/dxtverr"
	"github.com/ausocean/dxtv/pipeline"
	"github.com/ausocean/dxtv/pipeline/config"
)

// inputBytes returns the bytes a transform stage should operate on:
// the prior stage's byte output if present, otherwise the frame's raw
// pixel buffer.
func inputBytes(in pipeline.Payload) ([]byte, error) {
	if in.Bytes != nil {
		return in.Bytes, nil
	}
	if in.Frame != nil {
		return in.Frame.Pixels, nil
	}
	return nil, errors.Wrap(dxtverr.InvalidInput, "stages: empty payload")
}

// NewLZ10 constructs the LZ10 stream-transform stage.
func NewLZ10(decodeRelevant bool) *pipeline.Stage {
	return &pipeline.Stage{
		Tag:            config.LZ10,
		Shape:          pipeline.ShapeConvert,
		DecodeRelevant: decodeRelevant,
		ScratchSize:    func() uint32 { return 0 },
		ConvertFn: func(in pipeline.Payload) (pipeline.Payload, error) {
			data, err := inputBytes(in)
			if err != nil {
				return pipeline.Payload{}, err
			}
			out, err := writeChunk(config.LZ10, transform.LZ10Encode(data))
			if err != nil {
				return pipeline.Payload{}, err
			}
			return pipeline.Payload{Bytes: out}, nil
		},
	}
}

// NewRLE constructs the RLE stream-transform stage.
func NewRLE(decodeRelevant bool) *pipeline.Stage {
	return &pipeline.Stage{
		Tag:            config.RLE,
		Shape:          pipeline.ShapeConvert,
		DecodeRelevant: decodeRelevant,
		ScratchSize:    func() uint32 { return 0 },
		ConvertFn: func(in pipeline.Payload) (pipeline.Payload, error) {
			data, err := inputBytes(in)
			if err != nil {
				return pipeline.Payload{}, err
			}
			out, err := writeChunk(config.RLE, transform.RLEEncode(data))
			if err != nil {
				return pipeline.Payload{}, err
			}
			return pipeline.Payload{Bytes: out}, nil
		},
	}
}

// NewDelta8 constructs the Delta8 stream-transform stage.
func NewDelta8(decodeRelevant bool) *pipeline.Stage {
	return &pipeline.Stage{
		Tag:            config.Delta8,
		Shape:          pipeline.ShapeConvert,
		DecodeRelevant: decodeRelevant,
		ScratchSize:    func() uint32 { return 0 },
		ConvertFn: func(in pipeline.Payload) (pipeline.Payload, error) {
			data, err := inputBytes(in)
			if err != nil {
				return pipeline.Payload{}, err
			}
			out, err := writeChunk(config.Delta8, transform.Delta8Encode(data))
			if err != nil {
				return pipeline.Payload{}, err
			}
			return pipeline.Payload{Bytes: out}, nil
		},
	}
}

// NewDelta16 constructs the Delta16 stream-transform stage.
func NewDelta16(decodeRelevant bool) *pipeline.Stage {
	return &pipeline.Stage{
		Tag:            config.Delta16,
		Shape:          pipeline.ShapeConvert,
		DecodeRelevant: decodeRelevant,
		ScratchSize:    func() uint32 { return 0 },
		ConvertFn: func(in pipeline.Payload) (pipeline.Payload, error) {
			data, err := inputBytes(in)
			if err != nil {
				return pipeline.Payload{}, err
			}
			enc, err := transform.Delta16Encode(data)
			if err != nil {
				return pipeline.Payload{}, errors.Wrap(err, "delta16 stage")
			}
			out, err := writeChunk(config.Delta16, enc)
			if err != nil {
				return pipeline.Payload{}, err
			}
			return pipeline.Payload{Bytes: out}, nil
		},
	}
}
