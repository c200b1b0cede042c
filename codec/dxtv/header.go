/*
NAME
  header.go

DESCRIPTION
  header.go implements the 8-byte DXTV frame header and flag bit
  packing (spec.md §3, §4.3, §6).

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dxtv

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// HeaderSize is the size in bytes of a DXTV frame header.
const HeaderSize = 8

// Flag bits of Header.Flags (spec.md §6).
const (
	flagIsPFrame uint16 = 0x80
	flagKeep     uint16 = 0x40
)

// Header is the 8-byte DXTV frame header.
type Header struct {
	Flags              uint16
	NrOfBlockFlagPairs uint16
	NrOfRefBlocks      uint16
	Reserved           uint16
}

// IsPFrame reports whether the frame is permitted to reference the
// previous reconstructed frame.
func (h Header) IsPFrame() bool { return h.Flags&flagIsPFrame != 0 }

// IsKeep reports whether this is a KEEP frame: an empty P-frame whose
// payload is the previous reconstruction, verbatim.
func (h Header) IsKeep() bool { return h.Flags&flagKeep != 0 }

// Bytes serializes h to its 8-byte little-endian wire layout.
func (h Header) Bytes() []byte {
	out := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint16(out[0:2], h.Flags)
	binary.LittleEndian.PutUint16(out[2:4], h.NrOfBlockFlagPairs)
	binary.LittleEndian.PutUint16(out[4:6], h.NrOfRefBlocks)
	binary.LittleEndian.PutUint16(out[6:8], h.Reserved)
	return out
}

// HeaderFromBytes deserializes an 8-byte wire layout into a Header.
func HeaderFromBytes(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, errors.Errorf("dxtv: header needs %d bytes, got %d", HeaderSize, len(b))
	}
	return Header{
		Flags:              binary.LittleEndian.Uint16(b[0:2]),
		NrOfBlockFlagPairs: binary.LittleEndian.Uint16(b[2:4]),
		NrOfRefBlocks:      binary.LittleEndian.Uint16(b[4:6]),
		Reserved:           binary.LittleEndian.Uint16(b[6:8]),
	}, nil
}

// align4 rounds n up to the next multiple of 4.
func align4(n int) int { return (n + 3) &^ 3 }

// padTo4 returns b padded with trailing zero bytes to a multiple of 4.
func padTo4(b []byte) []byte {
	out := make([]byte, align4(len(b)))
	copy(out, b)
	return out
}

// packFlags packs a depth-first sequence of (isRef, isSplit) flag bits
// into 32-bit little-endian groups: bit i of group g holds flags[32*g+i],
// so the last flag bit assembled into a (possibly partial) final group
// occupies that group's highest set bit position, matching spec.md
// §4.3's packing note. Unused high bits of a partial final group are 0.
func packFlags(flags []bool) []byte {
	nWords := (len(flags) + 31) / 32
	out := make([]byte, nWords*4)
	for i, f := range flags {
		if !f {
			continue
		}
		word := i / 32
		bit := uint(i % 32)
		v := binary.LittleEndian.Uint32(out[word*4 : word*4+4])
		v |= 1 << bit
		binary.LittleEndian.PutUint32(out[word*4:word*4+4], v)
	}
	return out
}

// flagReader reads back a packFlags bitstream in original emission order.
type flagReader struct {
	data []byte
	pos  int
}

// next reads and returns the next flag bit.
func (r *flagReader) next() bool {
	word := binary.LittleEndian.Uint32(r.data[(r.pos/32)*4 : (r.pos/32)*4+4])
	bit := (word >> uint(r.pos%32)) & 1
	r.pos++
	return bit == 1
}
