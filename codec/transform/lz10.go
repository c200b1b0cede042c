/*
NAME
  lz10.go

DESCRIPTION
  lz10.go implements the LZ10 stream transform: an LZSS variant with a
  4-bit length / 12-bit offset token format, matching the GBA BIOS
  LZ77UnCompWrite{8,16}bit decompressor token layout (spec.md §4.5).

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package transform implements the byte/halfword-oriented stream
// transforms composed by the processing pipeline: LZ10 (LZSS),
// byte-oriented RLE, and Delta-8/Delta-16 prefix-difference filters
// (spec.md §4.5). Each function operates on a raw payload; the
// uncompressedSize+processingType tag header that precedes a stage's
// output in the container (spec.md §4.5, §6) is the pipeline stage's
// concern, not this package's.
package transform

const (
	lz10MinMatch = 3
	lz10MaxMatch = 18
	lz10MaxDisp  = 4096
)

// LZ10Encode compresses data using the LZ10 token format: a flag byte
// every 8 tokens (MSB first; 1 = a 2-byte back-reference token follows,
// 0 = a literal byte follows), a back-reference token encoding
// length-3 in its high nibble and (disp-1) in the remaining 12 bits.
func LZ10Encode(data []byte) []byte {
	var out []byte
	var flagByte byte
	var flagBits int
	var tokens []byte

	flush := func() {
		if flagBits == 0 {
			return
		}
		out = append(out, flagByte)
		out = append(out, tokens...)
		flagByte = 0
		flagBits = 0
		tokens = tokens[:0]
	}

	pos := 0
	for pos < len(data) {
		length, disp := lz10FindMatch(data, pos)
		flagByte <<= 1
		if length >= lz10MinMatch {
			flagByte |= 1
			b0 := byte((length-lz10MinMatch)<<4) | byte((disp-1)>>8)
			b1 := byte((disp - 1) & 0xFF)
			tokens = append(tokens, b0, b1)
			pos += length
		} else {
			tokens = append(tokens, data[pos])
			pos++
		}
		flagBits++
		if flagBits == 8 {
			flush()
		}
	}
	if flagBits > 0 {
		flagByte <<= uint(8 - flagBits)
		flush()
	}
	return out
}

// lz10FindMatch finds the longest back-reference at pos within the
// preceding lz10MaxDisp bytes, returning (length, disp) with length < 3
// if no usable match exists.
func lz10FindMatch(data []byte, pos int) (length, disp int) {
	start := pos - lz10MaxDisp
	if start < 0 {
		start = 0
	}
	maxLen := len(data) - pos
	if maxLen > lz10MaxMatch {
		maxLen = lz10MaxMatch
	}
	if maxLen < lz10MinMatch {
		return 0, 0
	}
	bestLen, bestDisp := 0, 0
	for cand := start; cand < pos; cand++ {
		l := 0
		for l < maxLen && data[cand+l] == data[pos+l] {
			l++
		}
		if l > bestLen {
			bestLen, bestDisp = l, pos-cand
			if bestLen == maxLen {
				break
			}
		}
	}
	return bestLen, bestDisp
}

// LZ10Decode reverses LZ10Encode, stopping once size output bytes have
// been produced.
func LZ10Decode(data []byte, size int) ([]byte, error) {
	out := make([]byte, 0, size)
	pos := 0
	for len(out) < size {
		if pos >= len(data) {
			return nil, errLZ10Truncated
		}
		flagByte := data[pos]
		pos++
		for bit := 7; bit >= 0 && len(out) < size; bit-- {
			if flagByte&(1<<uint(bit)) == 0 {
				if pos >= len(data) {
					return nil, errLZ10Truncated
				}
				out = append(out, data[pos])
				pos++
				continue
			}
			if pos+1 >= len(data) {
				return nil, errLZ10Truncated
			}
			b0, b1 := data[pos], data[pos+1]
			pos += 2
			length := int(b0>>4) + lz10MinMatch
			disp := (int(b0&0xF)<<8 | int(b1)) + 1
			if disp > len(out) {
				return nil, errLZ10BadOffset
			}
			start := len(out) - disp
			for i := 0; i < length && len(out) < size; i++ {
				out = append(out, out[start+i])
			}
		}
	}
	return out, nil
}
