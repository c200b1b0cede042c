/*
NAME
  dxt.go

DESCRIPTION
  dxt.go wraps codec/dxt as a whole-frame Convert-shaped stage: every
  4x4 block of the frame (row-major) is independently DXT1-encoded and
  concatenated, for use without DXTV's motion compensation.

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

	"github.com/ausocean/dxtv/codec/color"
	"github.com/ausocean/dxtv/codec/dxt"
	"github.com/ausocean/dxtv/dxtverr"
	"github.com/ausocean/dxtv/pipeline"
	"github.com/ausocean/dxtv/pipeline/config"
)

// NewDXT constructs the whole-frame DXT1 pipeline stage.
func NewDXT(decodeRelevant bool) *pipeline.Stage {
	return &pipeline.Stage{
		Tag:            config.DXT,
		Shape:          pipeline.ShapeConvert,
		DecodeRelevant: decodeRelevant,
		ScratchSize:    func() uint32 { return 0 },
		ConvertFn:      dxtConvert,
	}
}

func dxtConvert(in pipeline.Payload) (pipeline.Payload, error) {
	if in.Frame == nil {
		return pipeline.Payload{}, errors.Wrap(dxtverr.InvalidInput, "dxt stage: expected a frame payload")
	}
	f := in.Frame
	if f.Width%4 != 0 || f.Height%4 != 0 {
		return pipeline.Payload{}, errors.Wrap(dxtverr.InvalidInput, "dxt stage: frame dimensions must be multiples of 4")
	}
	ycc, err := f.YCgCoRPixels()
	if err != nil {
		return pipeline.Payload{}, errors.Wrap(err, "dxt stage")
	}

	blocksX, blocksY := f.Width/4, f.Height/4
	payload := make([]byte, 0, blocksX*blocksY*dxt.EncodedSize)
	var block [dxt.BlockPixels]color.YCgCoR
	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			for row := 0; row < 4; row++ {
				srcRow := (by*4+row)*f.Width + bx*4
				copy(block[row*4:row*4+4], ycc[srcRow:srcRow+4])
			}
			enc := dxt.Encode(block)
			encBytes := enc.ToBytes()
			payload = append(payload, encBytes[:]...)
		}
	}

	out, err := writeChunk(config.DXT, payload)
	if err != nil {
		return pipeline.Payload{}, err
	}
	return pipeline.Payload{Bytes: out}, nil
}
