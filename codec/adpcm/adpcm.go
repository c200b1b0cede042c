/*
NAME
  adpcm.go

DESCRIPTION
  adpcm.go implements the 4-bit IMA-style per-channel ADPCM codec
  (spec.md §4.4): a 4-byte bit-packed frame header followed by one
  independently decodable channel block per channel. Samples are
  16-bit signed PCM; 1 or 2 channels are supported; the encoder
  searches a short lookahead window to choose each nibble instead of
  committing to the single-step greedy choice.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package adpcm provides functions to transcode between PCM and ADPCM.
package adpcm

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/ausocean/dxtv/dxtverr"
)

const (
	// DefaultLookahead is the number of samples the encoder simulates
	// ahead of the current position when choosing a nibble.
	DefaultLookahead = 3

	// adpcmBits is the only nibble width this codec's tables and bit
	// arithmetic support, even though the frame header's adpcmBits
	// field is wide enough to describe 3..5 bit variants.
	adpcmBits = 4

	// preambleSize is the per-channel block preamble: initial
	// predictor (int16 LE) and initial step index (uint8), padded to
	// a 4-byte boundary with a reserved byte.
	preambleSize = 4
)

// indexTable is the table of step-index adjustments, keyed by nibble.
var indexTable = []int16{
	-1, -1, -1, -1, 2, 4, 6, 8,
	-1, -1, -1, -1, 2, 4, 6, 8,
}

// stepTable is the quantizer step-size table, keyed by step index.
var stepTable = []int16{
	7, 8, 9, 10, 11, 12, 13, 14,
	16, 17, 19, 21, 23, 25, 28, 31,
	34, 37, 41, 45, 50, 55, 60, 66,
	73, 80, 88, 97, 107, 118, 130, 143,
	157, 173, 190, 209, 230, 253, 279, 307,
	337, 371, 408, 449, 494, 544, 598, 658,
	724, 796, 876, 963, 1060, 1166, 1282, 1411,
	1552, 1707, 1878, 2066, 2272, 2499, 2749, 3024,
	3327, 3660, 4026, 4428, 4871, 5358, 5894, 6484,
	7132, 7845, 8630, 9493, 10442, 11487, 12635, 13899,
	15289, 16818, 18500, 20350, 22385, 24623, 27086, 29794,
	32767,
}

// Header is the 4-byte frame header preceding the per-channel ADPCM
// blocks.
type Header struct {
	Flags              uint8  // Must be 0; reserved for future use.
	NrOfChannels       uint8  // 1 (mono) or 2 (stereo).
	PCMBitsPerSample   uint8  // Bit depth of the source PCM, 1..32.
	ADPCMBitsPerSample uint8  // Bit depth of the ADPCM codes, 3..5.
	UncompressedSize   uint16 // Size in bytes of the source PCM, < 2^16.
}

// PackHeader validates h and packs it into the 4-byte little-endian
// bit layout from spec.md §4.4:
//
//	flags:5 | nrOfChannels:2 | pcmBitsPerSample:6 | adpcmBitsPerSample:3 | uncompressedSize:16
//
// adpcmBitsPerSample is stored as an offset from 4 (the codec's fixed
// nibble width) rather than its raw value, matching the literal byte
// sequence in spec.md §8 scenario 4.
func PackHeader(h Header) ([4]byte, error) {
	var out [4]byte
	if h.Flags != 0 {
		return out, errors.Wrap(dxtverr.InvalidInput, "adpcm: flags must be 0")
	}
	if h.NrOfChannels != 1 && h.NrOfChannels != 2 {
		return out, errors.Wrap(dxtverr.InvalidInput, "adpcm: nrOfChannels must be 1 or 2")
	}
	if h.PCMBitsPerSample < 1 || h.PCMBitsPerSample > 32 {
		return out, errors.Wrap(dxtverr.InvalidInput, "adpcm: pcmBitsPerSample out of [1,32]")
	}
	if h.ADPCMBitsPerSample < 3 || h.ADPCMBitsPerSample > 5 {
		return out, errors.Wrap(dxtverr.InvalidInput, "adpcm: adpcmBitsPerSample out of [3,5]")
	}
	if h.ADPCMBitsPerSample != adpcmBits {
		return out, errors.Wrap(dxtverr.CodecFailure, "adpcm: only 4-bit ADPCM codes are implemented")
	}

	var word uint32
	word |= uint32(h.Flags) & 0x1F
	word |= (uint32(h.NrOfChannels) & 0x3) << 5
	word |= (uint32(h.PCMBitsPerSample) & 0x3F) << 7
	adpcmField := uint32(int8(h.ADPCMBitsPerSample)-4) & 0x7
	word |= adpcmField << 13
	word |= uint32(h.UncompressedSize) << 16

	binary.LittleEndian.PutUint32(out[:], word)
	return out, nil
}

// UnpackHeader reverses PackHeader.
func UnpackHeader(b []byte) (Header, error) {
	if len(b) < 4 {
		return Header{}, errors.Wrap(dxtverr.InvalidInput, "adpcm: header requires 4 bytes")
	}
	word := binary.LittleEndian.Uint32(b[:4])

	var h Header
	h.Flags = uint8(word & 0x1F)
	h.NrOfChannels = uint8((word >> 5) & 0x3)
	h.PCMBitsPerSample = uint8((word >> 7) & 0x3F)
	adpcmField := int8((word >> 13) & 0x7)
	if adpcmField >= 4 { // Sign-extend the 3-bit two's complement field.
		adpcmField -= 8
	}
	h.ADPCMBitsPerSample = uint8(adpcmField + 4)
	h.UncompressedSize = uint16(word >> 16)

	if h.Flags != 0 {
		return h, errors.Wrap(dxtverr.OutOfRange, "adpcm: non-zero reserved flags")
	}
	if h.NrOfChannels != 1 && h.NrOfChannels != 2 {
		return h, errors.Wrap(dxtverr.OutOfRange, "adpcm: nrOfChannels out of {1,2}")
	}
	if h.ADPCMBitsPerSample != adpcmBits {
		return h, errors.Wrap(dxtverr.CodecFailure, "adpcm: only 4-bit ADPCM codes are implemented")
	}
	return h, nil
}

// HeaderSize is the size in bytes of a packed Header.
const HeaderSize = 4

// applyNibble applies the decoder's reconstruction step for nibble
// against the estimate/index pair (est, idx), returning the updated
// pair. This is the inverse half of encodeSample, shared by the
// decoder and by the encoder's lookahead search.
func applyNibble(est, idx int16, nib byte) (int16, int16) {
	step := stepTable[idx]
	var diff int16
	if nib&4 != 0 {
		diff = capAdd16(diff, step)
	}
	if nib&2 != 0 {
		diff = capAdd16(diff, step>>1)
	}
	if nib&1 != 0 {
		diff = capAdd16(diff, step>>2)
	}
	diff = capAdd16(diff, step>>3)
	if nib&8 != 0 {
		diff = -diff
	}

	newEst := capAdd16(est, diff)
	newIdx := idx + indexTable[nib&7]
	if newIdx < 0 {
		newIdx = 0
	} else if int(newIdx) > len(stepTable)-1 {
		newIdx = int16(len(stepTable) - 1)
	}
	return newEst, newIdx
}

// greedyNibble is the single-step greedy nibble choice for sample
// given current estimate/index, used as the forward-simulation step
// inside chooseNibble's lookahead search.
func greedyNibble(est, idx, sample int16) byte {
	delta := capAdd16(sample, -est)

	var nib byte
	if delta < 0 {
		nib = 8
		delta = -delta
	}

	step := stepTable[idx]
	var mask byte = 4
	for i := 0; i < 3; i++ {
		if delta > step {
			nib |= mask
			delta = capAdd16(delta, -step)
		}
		mask >>= 1
		step >>= 1
	}
	return nib
}

// chooseNibble picks the nibble for samples[pos] that minimizes
// cumulative squared error over up to lookahead samples starting at
// pos, searching all 16 candidate nibbles and continuing each
// candidate's trajectory with greedyNibble.
func chooseNibble(est, idx int16, samples []int16, pos, lookahead int) (nib byte, newEst, newIdx int16) {
	bestNib := byte(0)
	bestErr := int64(-1)
	var bestEst, bestIdx int16

	for cand := byte(0); cand < 16; cand++ {
		simEst, simIdx := applyNibble(est, idx, cand)
		d := int64(samples[pos]) - int64(simEst)
		errSum := d * d

		fEst, fIdx := simEst, simIdx
		for k := 1; k < lookahead && pos+k < len(samples); k++ {
			n := greedyNibble(fEst, fIdx, samples[pos+k])
			fEst, fIdx = applyNibble(fEst, fIdx, n)
			d := int64(samples[pos+k]) - int64(fEst)
			errSum += d * d
		}

		if bestErr < 0 || errSum < bestErr {
			bestErr = errSum
			bestNib = cand
			bestEst, bestIdx = simEst, simIdx
		}
	}
	return bestNib, bestEst, bestIdx
}

// EncodeChannel encodes one channel's worth of 16-bit PCM samples into
// an independently decodable ADPCM block: a 4-byte preamble (initial
// predictor, which is the first sample itself, initial step index,
// reserved) followed by one nibble per remaining sample, packed two per
// byte, low nibble first: len(samples)/2 bytes.
func EncodeChannel(samples []int16, lookahead int) []byte {
	if lookahead < 1 {
		lookahead = 1
	}
	if len(samples) == 0 {
		out := make([]byte, preambleSize)
		return out
	}

	est := samples[0]
	idx := initialIndex(samples)

	nibbleBytes := (len(samples) - 1 + 1) / 2
	out := make([]byte, preambleSize+nibbleBytes)
	binary.LittleEndian.PutUint16(out[0:2], uint16(est))
	out[2] = byte(idx)
	out[3] = 0

	pos := 1
	bi := 0
	for pos < len(samples) {
		lowNib, nEst, nIdx := chooseNibble(est, idx, samples, pos, lookahead)
		est, idx = nEst, nIdx
		pos++

		var hiNib byte
		if pos < len(samples) {
			hiNib, est, idx = chooseNibble(est, idx, samples, pos, lookahead)
			pos++
		}
		out[preambleSize+bi] = lowNib | hiNib<<4
		bi++
	}
	return out
}

// initialIndex picks the step-table index whose step is closest to
// | |samples[0]| - |samples[1]|/2 |, matching the teacher's original
// initialization heuristic.
func initialIndex(samples []int16) int16 {
	if len(samples) < 2 {
		return 0
	}
	halfDiff := math.Abs(math.Abs(float64(samples[0])) - math.Abs(float64(samples[1]))/2)
	closest := math.Abs(float64(stepTable[0]) - halfDiff)
	var cInd int16
	for i, step := range stepTable {
		if d := math.Abs(float64(step) - halfDiff); d < closest {
			closest = d
			cInd = int16(i)
		}
	}
	return cInd
}

// DecodeChannel reverses EncodeChannel, producing exactly n PCM
// samples (n is known from the frame header's UncompressedSize, not
// stored redundantly in the channel block).
func DecodeChannel(block []byte, n int) ([]int16, error) {
	if len(block) < preambleSize {
		return nil, errors.Wrap(dxtverr.CodecFailure, "adpcm: channel block shorter than preamble")
	}
	if n == 0 {
		return nil, nil
	}

	est := int16(binary.LittleEndian.Uint16(block[0:2]))
	idx := int16(int8(block[2]))
	if idx < 0 || int(idx) > len(stepTable)-1 {
		return nil, errors.Wrap(dxtverr.CodecFailure, "adpcm: initial step index out of range")
	}

	want := preambleSize + (n-1+1)/2
	if len(block) < want {
		return nil, errors.Wrapf(dxtverr.CodecFailure, "adpcm: channel block too short: have %d bytes, want %d", len(block), want)
	}

	out := make([]int16, n)
	out[0] = est

	pos := 1
	bi := 0
	for pos < n {
		b := block[preambleSize+bi]
		bi++

		est, idx = applyNibble(est, idx, b&0xF)
		out[pos] = est
		pos++

		if pos < n {
			est, idx = applyNibble(est, idx, b>>4)
			out[pos] = est
			pos++
		}
	}
	return out, nil
}

// Encode interleaves and encodes a multi-channel 16-bit PCM stream
// into a full ADPCM frame: header followed by one channel block per
// channel. samples is interleaved (ch0,ch1,ch0,ch1,... for stereo) and
// must have a sample count that divides evenly by channels.
func Encode(samples []int16, channels int, lookahead int) ([]byte, error) {
	if channels != 1 && channels != 2 {
		return nil, errors.Wrap(dxtverr.InvalidInput, "adpcm: channels must be 1 or 2")
	}
	if channels == 2 && len(samples)%2 != 0 {
		return nil, errors.Wrap(dxtverr.InvalidInput, "adpcm: stereo input requires an even sample count")
	}
	perChannel := len(samples) / channels
	uncompressedSize := len(samples) * 2
	if uncompressedSize >= 1<<16 {
		return nil, errors.Wrap(dxtverr.OutOfRange, "adpcm: uncompressed size overflows 16 bits")
	}

	hdr, err := PackHeader(Header{
		NrOfChannels:       uint8(channels),
		PCMBitsPerSample:   16,
		ADPCMBitsPerSample: adpcmBits,
		UncompressedSize:   uint16(uncompressedSize),
	})
	if err != nil {
		return nil, err
	}

	deinterleaved := make([][]int16, channels)
	for c := range deinterleaved {
		deinterleaved[c] = make([]int16, perChannel)
	}
	for i, s := range samples {
		deinterleaved[i%channels][i/channels] = s
	}

	out := append([]byte(nil), hdr[:]...)
	for _, ch := range deinterleaved {
		out = append(out, EncodeChannel(ch, lookahead)...)
	}
	return out, nil
}

// Decode reverses Encode, returning an interleaved 16-bit PCM stream.
func Decode(data []byte) ([]int16, error) {
	hdr, err := UnpackHeader(data)
	if err != nil {
		return nil, err
	}
	channels := int(hdr.NrOfChannels)
	perChannel := int(hdr.UncompressedSize) / 2 / channels

	pos := HeaderSize
	deinterleaved := make([][]int16, channels)
	for c := 0; c < channels; c++ {
		blockSize := preambleSize + (perChannel-1+1)/2
		if perChannel == 0 {
			blockSize = preambleSize
		}
		if pos+blockSize > len(data) {
			return nil, errors.Wrapf(dxtverr.CodecFailure, "adpcm: truncated channel %d block", c)
		}
		ch, err := DecodeChannel(data[pos:pos+blockSize], perChannel)
		if err != nil {
			return nil, errors.Wrapf(err, "adpcm: decoding channel %d", c)
		}
		deinterleaved[c] = ch
		pos += blockSize
	}

	out := make([]int16, perChannel*channels)
	for c := 0; c < channels; c++ {
		for i, s := range deinterleaved[c] {
			out[i*channels+c] = s
		}
	}
	return out, nil
}

// capAdd16 adds two int16s together and caps at max/min int16 instead
// of overflowing.
func capAdd16(a, b int16) int16 {
	c := int32(a) + int32(b)
	switch {
	case c < math.MinInt16:
		return math.MinInt16
	case c > math.MaxInt16:
		return math.MaxInt16
	default:
		return int16(c)
	}
}
