/*
NAME
  dxtv.go

DESCRIPTION
  dxtv.go wraps codec/dxtv as a ConvertState-shaped pipeline stage: the
  only stateful stage in this pipeline, since DXTV must remember the
  previous reconstructed frame across calls (spec.md §9, "Stateful
  pipeline stages").

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
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/ausocean/dxtv/codec/dxtv"
	"github.com/ausocean/dxtv/dxtverr"
	"github.com/ausocean/dxtv/pipeline"
	"github.com/ausocean/dxtv/pipeline/config"
)

// NewDXTV constructs the DXTV pipeline stage. The first frame it sees
// is encoded as a key frame (no previous-frame state yet); every
// subsequent call is a P-frame referencing the retained reconstructed
// pixels. width and height size the retained previous-frame buffer
// reported by ScratchSize.
func NewDXTV(width, height int, maxBlockError float64, decodeRelevant bool) *pipeline.Stage {
	return &pipeline.Stage{
		Tag:            config.DXTV,
		Shape:          pipeline.ShapeConvertState,
		DecodeRelevant: decodeRelevant,
		ScratchSize: func() uint32 {
			return uint32(width * height * 2)
		},
		ConvertStateFn: func(in pipeline.Payload, state []byte) (pipeline.Payload, []byte, error) {
			return dxtvConvert(in, state, maxBlockError)
		},
	}
}

func dxtvConvert(in pipeline.Payload, state []byte, maxBlockError float64) (pipeline.Payload, []byte, error) {
	if in.Frame == nil {
		return pipeline.Payload{}, state, errors.Wrap(dxtverr.InvalidInput, "dxtv stage: expected a frame payload")
	}
	px, err := in.Frame.RGB555Pixels()
	if err != nil {
		return pipeline.Payload{}, state, errors.Wrap(err, "dxtv stage")
	}

	previous := bytesToUint16(state)
	keyFrame := previous == nil

	encoded, recon, err := dxtv.Encode(px, previous, in.Frame.Width, in.Frame.Height, keyFrame, maxBlockError)
	if err != nil {
		return pipeline.Payload{}, state, errors.Wrap(err, "dxtv stage: encode")
	}

	out, err := writeChunk(config.DXTV, encoded)
	if err != nil {
		return pipeline.Payload{}, state, err
	}
	return pipeline.Payload{Bytes: out}, uint16ToBytes(recon), nil
}

func bytesToUint16(b []byte) []uint16 {
	if len(b) == 0 {
		return nil
	}
	out := make([]uint16, len(b)/2)
	for i := range out {
		out[i] = binary.LittleEndian.Uint16(b[2*i : 2*i+2])
	}
	return out
}

func uint16ToBytes(px []uint16) []byte {
	out := make([]byte, len(px)*2)
	for i, v := range px {
		binary.LittleEndian.PutUint16(out[2*i:2*i+2], v)
	}
	return out
}
