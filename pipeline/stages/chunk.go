/*
NAME
  chunk.go

DESCRIPTION
  chunk.go implements the processing-type chunk header (spec.md §4.5,
  §6): a 4-byte little-endian word packing a 24-bit uncompressed size
  and an 8-bit processing-type tag, and the padding-to-4-bytes
  invariant (I4) every stage output must satisfy.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package stages implements the concrete pipeline stages composed by
// the processing pipeline: the DXTV/DXT codecs, the LZ10/RLE/Delta
// stream transforms, palette quantization, color-map post-processing,
// and tiling, each wrapped as a pipeline.Stage.
package stages

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/ausocean/dxtv/dxtverr"
	"github.com/ausocean/dxtv/pipeline/config"
)

const chunkHeaderSize = 4

// writeChunk prepends the processing-type chunk header to payload and
// pads the result to a multiple of 4 bytes.
func writeChunk(tag config.Tag, payload []byte) ([]byte, error) {
	if len(payload) >= 1<<24 {
		return nil, errors.Wrap(dxtverr.OutOfRange, "stages: chunk payload exceeds 24-bit size field")
	}
	word := uint32(len(payload)) | uint32(tag)<<24

	out := make([]byte, chunkHeaderSize+len(payload))
	binary.LittleEndian.PutUint32(out[:chunkHeaderSize], word)
	copy(out[chunkHeaderSize:], payload)
	return padTo4(out), nil
}

// readChunk parses a chunk header, returning the tag, the declared
// uncompressed payload size, and the bytes following the header (which
// may include trailing alignment padding beyond size).
func readChunk(data []byte) (tag config.Tag, size int, rest []byte, err error) {
	if len(data) < chunkHeaderSize {
		return 0, 0, nil, errors.Wrap(dxtverr.CodecFailure, "stages: chunk shorter than header")
	}
	word := binary.LittleEndian.Uint32(data[:chunkHeaderSize])
	tag = config.Tag(word >> 24)
	size = int(word & 0xFFFFFF)
	rest = data[chunkHeaderSize:]
	return tag, size, rest, nil
}

// padTo4 right-pads b with zero bytes to the next multiple of 4.
func padTo4(b []byte) []byte {
	if r := len(b) % 4; r != 0 {
		b = append(b, make([]byte, 4-r)...)
	}
	return b
}
