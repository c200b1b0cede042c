/*
NAME
  dxtv.go

DESCRIPTION
  dxtv.go implements the DXTV frame codec: a hierarchical block
  splitter with motion-compensated references into the current and
  previous reconstructed frames, falling back to a verbatim DXT1 block
  at the 4x4 leaf (spec.md §4.3). This implementation commits to Layout
  A of the two documented block grammars (see spec.md §9, SPEC_FULL.md
  §4): three levels (16x4, 8x4, 4x4), 2 flag bits per visited block,
  1-byte references, 8-byte verbatim DXT blocks at the leaf level only.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package dxtv implements the DXTV intra+inter-frame block video codec.
package dxtv

import (
	"github.com/pkg/errors"

	"github.com/ausocean/dxtv/codec/color"
	"github.com/ausocean/dxtv/codec/dxt"
	"github.com/ausocean/dxtv/codec/dxtv/blockview"
	"github.com/ausocean/dxtv/dxtverr"
)

// keepThreshold is the mean per-pixel perceptual distance below which a
// non-key frame is considered indistinguishable from its predecessor
// and emitted as a KEEP frame (spec.md §4.3, point 2).
const keepThreshold = 1e-3

// prevOffsetLo, prevOffsetHi bound the previous-frame search window
// relative to a block's own index (spec.md §4.3, point 1).
const prevOffsetLo, prevOffsetHi = -63, 64

// curOffsetLo, curOffsetHi bound the same-frame search window: strictly
// earlier blocks only (spec.md §4.3, point 2), and no further back than
// the 64 blocks that emitRef's +64 rebase can carry in 7 bits.
const curOffsetLo, curOffsetHi = -64, -1

// encState accumulates one frame's flags, reference descriptors and
// verbatim DXT bytes during encoding (spec.md §3, "Compression state").
type encState struct {
	flags            []bool
	refs             []byte
	dxtBytes         []byte
	minBlocksEncoded int
}

// decState tracks the read cursors into a frame's reference-descriptor
// and verbatim-DXT sections during decoding.
type decState struct {
	refs   []byte
	refPos int
	dxt    []byte
	dxtPos int
}

// prevSearchOffsets and curSearchOffsets are precomputed once: each is
// the full legal offset range for its search, ordered by absolute value
// ascending so that a linear scan naturally implements the "closest
// offset wins a tie" rule (spec.md §4.3, "Tie-breaks").
var prevSearchOffsets = buildOffsets(prevOffsetLo, prevOffsetHi)
var curSearchOffsets = buildOffsets(curOffsetLo, curOffsetHi)

func buildOffsets(lo, hi int) []int {
	type pair struct{ off, abs int }
	var pairs []pair
	for o := lo; o <= hi; o++ {
		abs := o
		if abs < 0 {
			abs = -abs
		}
		pairs = append(pairs, pair{o, abs})
	}
	// Stable insertion sort by abs value; ranges are tiny (<=192 entries).
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0 && pairs[j].abs < pairs[j-1].abs; j-- {
			pairs[j], pairs[j-1] = pairs[j-1], pairs[j]
		}
	}
	out := make([]int, len(pairs))
	for i, p := range pairs {
		out[i] = p.off
	}
	return out
}

// Encode DXTV-encodes one frame. current and previous are row-major
// RGB555 pixel buffers of width*height entries; previous is ignored
// when keyFrame is true (and may be nil). maxBlockError is the
// user-facing threshold in [0.01, 1.0], internally divided by 1000
// before comparison with per-pixel perceptual distances (spec.md §4.3).
//
// It returns the encoded frame bytes and the reconstructed RGB555
// frame a decoder would produce, which becomes the "previous frame"
// input to the next call.
func Encode(current, previous []uint16, width, height int, keyFrame bool, maxBlockError float64) ([]byte, []uint16, error) {
	if width <= 0 || height <= 0 || width%16 != 0 || height%16 != 0 {
		return nil, nil, errors.Wrapf(dxtverr.InvalidInput, "dxtv: dimensions %dx%d are not multiples of 16", width, height)
	}
	if len(current) != width*height {
		return nil, nil, errors.Wrapf(dxtverr.InvalidInput, "dxtv: got %d pixels, want %d", len(current), width*height)
	}
	if maxBlockError < 0.01 || maxBlockError > 1.0 {
		return nil, nil, errors.Wrapf(dxtverr.InvalidInput, "dxtv: maxBlockError %v outside [0.01,1.0]", maxBlockError)
	}
	threshold := maxBlockError / 1000

	curPixels := toYCgCoR(current)
	curCb := NewCodebook(curPixels, width, height)

	var prevCb *Codebook
	var prevPixels []color.YCgCoR
	if !keyFrame && len(previous) == width*height {
		prevPixels = toYCgCoR(previous)
		prevCb = NewCodebook(prevPixels, width, height)
	}

	if prevCb != nil {
		var sum float64
		for i := range curPixels {
			sum += curPixels[i].Distance(prevPixels[i])
		}
		if sum/float64(len(curPixels)) < keepThreshold {
			hdr := Header{Flags: flagKeep}
			return hdr.Bytes(), append([]uint16(nil), previous...), nil
		}
	}

	state := &encState{}
	for _, top := range curCb.TopLevel() {
		if err := encodeBlock(curCb, prevCb, top, state, threshold); err != nil {
			return nil, nil, err
		}
	}

	var flags uint16
	if !keyFrame {
		flags = flagIsPFrame
	}
	hdr := Header{
		Flags:              flags,
		NrOfBlockFlagPairs: uint16(len(state.flags) / 2),
		NrOfRefBlocks:      uint16(len(state.refs)),
	}

	out := hdr.Bytes()
	out = append(out, packFlags(state.flags)...)
	out = append(out, padTo4(state.refs)...)
	out = append(out, state.dxtBytes...)

	return out, fromYCgCoR(curPixels), nil
}

// Decode reverses Encode. previous is the prior call's reconstructed
// frame (ignored for a key frame, required for a P-frame).
func Decode(data []byte, previous []uint16, width, height int) ([]uint16, error) {
	if width <= 0 || height <= 0 || width%16 != 0 || height%16 != 0 {
		return nil, errors.Wrapf(dxtverr.InvalidInput, "dxtv: dimensions %dx%d are not multiples of 16", width, height)
	}
	if len(data) < HeaderSize {
		return nil, errors.Wrapf(dxtverr.CodecFailure, "dxtv: frame of %d bytes shorter than header", len(data))
	}
	hdr, err := HeaderFromBytes(data[:HeaderSize])
	if err != nil {
		return nil, errors.Wrap(dxtverr.CodecFailure, err.Error())
	}
	if hdr.IsKeep() {
		if len(previous) != width*height {
			return nil, errors.Wrap(dxtverr.InvalidInput, "dxtv: KEEP frame with no previous frame")
		}
		return append([]uint16(nil), previous...), nil
	}

	outPixels := make([]color.YCgCoR, width*height)
	curCb := NewCodebook(outPixels, width, height)

	var prevCb *Codebook
	if hdr.IsPFrame() {
		if len(previous) != width*height {
			return nil, errors.Wrap(dxtverr.InvalidInput, "dxtv: P-frame with no previous frame")
		}
		prevCb = NewCodebook(toYCgCoR(previous), width, height)
	}

	off := HeaderSize
	flagWordsLen := align4((int(hdr.NrOfBlockFlagPairs)*2 + 31) / 32 * 4)
	if off+flagWordsLen > len(data) {
		return nil, errors.Wrap(dxtverr.CodecFailure, "dxtv: truncated flag section")
	}
	fr := &flagReader{data: data[off : off+flagWordsLen]}
	off += flagWordsLen

	refsLen := align4(int(hdr.NrOfRefBlocks))
	if off+refsLen > len(data) {
		return nil, errors.Wrap(dxtverr.CodecFailure, "dxtv: truncated reference section")
	}
	ds := &decState{refs: data[off : off+int(hdr.NrOfRefBlocks)], dxt: data[off+refsLen:]}

	for _, top := range curCb.TopLevel() {
		if err := decodeBlock(curCb, prevCb, top, fr, ds); err != nil {
			return nil, err
		}
	}

	return fromYCgCoR(outPixels), nil
}

// encodeBlock is the recursive per-block encoder of spec.md §4.3.
func encodeBlock(curCb, prevCb *Codebook, block *blockview.BlockView, state *encState, threshold float64) error {
	w := block.Width()
	target := block.Colors()

	var prevMatch, curMatch matchResult
	if prevCb != nil {
		prevMatch = findMatch(prevCb, w, block.Index(), prevSearchOffsets, prevCb.BlockCount(w), threshold, target)
	}
	effectiveCount := state.minBlocksEncoded * 4 / w
	curMatch = findMatch(curCb, w, block.Index(), curSearchOffsets, effectiveCount, threshold, target)

	switch {
	case prevMatch.found && curMatch.found:
		if curMatch.score < prevMatch.score {
			return emitRef(state, curCb, block, curMatch, false)
		}
		return emitRef(state, prevCb, block, prevMatch, true)
	case prevMatch.found:
		return emitRef(state, prevCb, block, prevMatch, true)
	case curMatch.found:
		return emitRef(state, curCb, block, curMatch, false)
	}

	if w == blockview.MinWidth {
		var colors [dxt.BlockPixels]color.YCgCoR
		copy(colors[:], target)
		enc := dxt.Encode(colors)
		state.flags = append(state.flags, false, false)
		encBytes := enc.ToBytes()
		state.dxtBytes = append(state.dxtBytes, encBytes[:]...)
		decoded := dxt.Decode(enc)
		block.CopyColorsFromSlice(decoded[:])
		state.minBlocksEncoded++
		return nil
	}

	state.flags = append(state.flags, false, true)
	if err := encodeBlock(curCb, prevCb, block.Block(0), state, threshold); err != nil {
		return err
	}
	return encodeBlock(curCb, prevCb, block.Block(1), state, threshold)
}

// emitRef appends the flag pair and reference descriptor for a matched
// block, then copies the matched pixels into block.
func emitRef(state *encState, srcCb *Codebook, block *blockview.BlockView, m matchResult, fromPrevious bool) error {
	state.flags = append(state.flags, true, false)

	var rebased int
	var hiBit byte
	if fromPrevious {
		rebased = m.offset - prevOffsetLo // offset - (-63)
		hiBit = 0x80
	} else {
		rebased = m.offset + 64
	}
	if rebased < 0 || rebased > 0x7F {
		return errors.Wrapf(dxtverr.InternalInvariant, "dxtv: offset rebase %d out of [0,127]", rebased)
	}
	state.refs = append(state.refs, byte(rebased)|hiBit)

	src := srcCb.BlockAt(block.Width(), int(m.idx))
	block.CopyColorsFrom(src)
	state.minBlocksEncoded += block.Width() / 4
	return nil
}

// decodeBlock is the recursive per-block decoder, the inverse of encodeBlock.
func decodeBlock(curCb, prevCb *Codebook, block *blockview.BlockView, fr *flagReader, ds *decState) error {
	isRef := fr.next()
	isSplit := fr.next()

	if isSplit {
		if err := decodeBlock(curCb, prevCb, block.Block(0), fr, ds); err != nil {
			return err
		}
		return decodeBlock(curCb, prevCb, block.Block(1), fr, ds)
	}

	w := block.Width()
	if isRef {
		if ds.refPos >= len(ds.refs) {
			return errors.Wrap(dxtverr.CodecFailure, "dxtv: reference section exhausted")
		}
		b := ds.refs[ds.refPos]
		ds.refPos++
		low7 := int(b & 0x7F)

		var src *blockview.BlockView
		if b&0x80 != 0 {
			if prevCb == nil {
				return errors.Wrap(dxtverr.InternalInvariant, "dxtv: previous-frame reference with no previous codebook")
			}
			srcIdx := int(block.Index()) + (low7 + prevOffsetLo)
			src = prevCb.BlockAt(w, srcIdx)
		} else {
			srcIdx := int(block.Index()) + (low7 - 64)
			src = curCb.BlockAt(w, srcIdx)
		}
		if src == nil {
			return errors.Wrap(dxtverr.InternalInvariant, "dxtv: reference resolves out of range")
		}
		block.CopyColorsFrom(src)
		return nil
	}

	if ds.dxtPos+dxt.EncodedSize > len(ds.dxt) {
		return errors.Wrap(dxtverr.CodecFailure, "dxtv: verbatim DXT section exhausted")
	}
	blk, err := dxt.BlockFromBytes(ds.dxt[ds.dxtPos : ds.dxtPos+dxt.EncodedSize])
	if err != nil {
		return errors.Wrap(dxtverr.CodecFailure, err.Error())
	}
	ds.dxtPos += dxt.EncodedSize
	decoded := dxt.Decode(blk)
	block.CopyColorsFromSlice(decoded[:])
	return nil
}

// matchResult is a candidate block-match search result.
type matchResult struct {
	idx    uint32
	offset int
	score  float64
	found  bool
}

// findMatch searches cb's level-width blocks within curIndex+offsets,
// restricted to indices below maxIdxExclusive, for the best match
// against target: every pixel's distance to the candidate must be
// below threshold, and the winning candidate is the one with the
// lowest mean distance (spec.md §4.3, points 1-2).
func findMatch(cb *Codebook, width int, curIndex uint32, offsets []int, maxIdxExclusive int, threshold float64, target []color.YCgCoR) matchResult {
	best := matchResult{score: -1}
	for _, off := range offsets {
		cand := int(curIndex) + off
		if cand < 0 || cand >= maxIdxExclusive {
			continue
		}
		view := cb.BlockAt(width, cand)
		if view == nil {
			continue
		}
		var sum float64
		ok := true
		for i := 0; i < view.Len(); i++ {
			d := target[i].Distance(view.At(i))
			if d >= threshold {
				ok = false
				break
			}
			sum += d
		}
		if !ok {
			continue
		}
		mean := sum / float64(view.Len())
		if !best.found || mean < best.score {
			best = matchResult{idx: uint32(cand), offset: off, score: mean, found: true}
		}
	}
	return best
}

func toYCgCoR(px []uint16) []color.YCgCoR {
	out := make([]color.YCgCoR, len(px))
	for i, c := range px {
		out[i] = color.YCgCoRFromRGB555(c)
	}
	return out
}

func fromYCgCoR(px []color.YCgCoR) []uint16 {
	out := make([]uint16, len(px))
	for i, c := range px {
		out[i] = c.ToRGB555()
	}
	return out
}
