/*
NAME
  delta.go

DESCRIPTION
  delta.go implements the Delta-8 and Delta-16 prefix-difference
  filters (spec.md §4.5): each sample is replaced by its difference
  from the previous sample, modulo 2^8 or 2^16, inverted by prefix sum.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package transform

import "encoding/binary"

// Delta8Encode replaces each byte of data with its difference from the
// previous byte, modulo 256. The first byte passes through unchanged.
func Delta8Encode(data []byte) []byte {
	out := make([]byte, len(data))
	var prev byte
	for i, b := range data {
		out[i] = b - prev
		prev = b
	}
	return out
}

// Delta8Decode reverses Delta8Encode via prefix sum modulo 256.
func Delta8Decode(data []byte) []byte {
	out := make([]byte, len(data))
	var prev byte
	for i, d := range data {
		prev += d
		out[i] = prev
	}
	return out
}

// Delta16Encode replaces each little-endian uint16 sample of data with
// its difference from the previous sample, modulo 65536. data must have
// an even length; the first sample passes through unchanged.
func Delta16Encode(data []byte) ([]byte, error) {
	if len(data)%2 != 0 {
		return nil, errDelta16OddLength
	}
	out := make([]byte, len(data))
	var prev uint16
	for i := 0; i < len(data); i += 2 {
		cur := binary.LittleEndian.Uint16(data[i : i+2])
		binary.LittleEndian.PutUint16(out[i:i+2], cur-prev)
		prev = cur
	}
	return out, nil
}

// Delta16Decode reverses Delta16Encode via prefix sum modulo 65536.
func Delta16Decode(data []byte) ([]byte, error) {
	if len(data)%2 != 0 {
		return nil, errDelta16OddLength
	}
	out := make([]byte, len(data))
	var prev uint16
	for i := 0; i < len(data); i += 2 {
		prev += binary.LittleEndian.Uint16(data[i : i+2])
		binary.LittleEndian.PutUint16(out[i:i+2], prev)
	}
	return out, nil
}
