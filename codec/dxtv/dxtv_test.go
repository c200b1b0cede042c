/*
NAME
  dxtv_test.go

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
	"testing"
)

func solidFrame(w, h int, c uint16) []uint16 {
	px := make([]uint16, w*h)
	for i := range px {
		px[i] = c
	}
	return px
}

// TestDuplicateFrameKeep implements spec.md §8 scenario 1: a solid
// 16x16 frame encoded as a key frame, then re-encoded as a non-key
// frame; the second frame must collapse to an 8-byte KEEP header.
func TestDuplicateFrameKeep(t *testing.T) {
	img := solidFrame(16, 16, 0x1234)

	_, recon1, err := Encode(img, nil, 16, 16, true, 0.5)
	if err != nil {
		t.Fatalf("key frame encode: %v", err)
	}

	data2, recon2, err := Encode(img, recon1, 16, 16, false, 0.5)
	if err != nil {
		t.Fatalf("p-frame encode: %v", err)
	}
	if len(data2) != HeaderSize {
		t.Fatalf("expected KEEP frame of %d bytes, got %d", HeaderSize, len(data2))
	}
	hdr, err := HeaderFromBytes(data2)
	if err != nil {
		t.Fatal(err)
	}
	if hdr.Flags != flagKeep {
		t.Errorf("header flags = 0x%x, want 0x%x", hdr.Flags, flagKeep)
	}
	for i, c := range recon2 {
		if c != recon1[i] {
			t.Fatalf("KEEP reconstruction differs from previous at pixel %d", i)
			break
		}
	}
}

// TestKeyFrameRoundTrip implements spec.md §8's round-trip property for
// a single-frame key-frame-only stream at maxBlockError=1.0: the
// decoded image equals the reconstruction the encoder itself produced.
func TestKeyFrameRoundTrip(t *testing.T) {
	img := make([]uint16, 32*16)
	for i := range img {
		img[i] = uint16(i*37) & 0x7FFF
	}

	data, recon, err := Encode(img, nil, 32, 16, true, 1.0)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(data)%4 != 0 {
		t.Errorf("frame length %d is not a multiple of 4", len(data))
	}

	decoded, err := Decode(data, nil, 32, 16)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != len(recon) {
		t.Fatalf("decoded length %d != reconstructed length %d", len(decoded), len(recon))
	}
	for i := range recon {
		if decoded[i] != recon[i] {
			t.Fatalf("pixel %d: decoded %x != encoder reconstruction %x", i, decoded[i], recon[i])
		}
	}
}

// TestPFrameRoundTrip exercises a two-frame P-frame sequence so that
// both previous- and current-frame reference paths are taken.
func TestPFrameRoundTrip(t *testing.T) {
	img1 := make([]uint16, 32*16)
	for i := range img1 {
		img1[i] = uint16(i*13) & 0x7FFF
	}
	img2 := append([]uint16(nil), img1...)
	// Perturb a region so the second frame isn't trivially a KEEP.
	for y := 4; y < 8; y++ {
		for x := 4; x < 12; x++ {
			img2[y*32+x] = 0x7FFF
		}
	}

	data1, recon1, err := Encode(img1, nil, 32, 16, true, 1.0)
	if err != nil {
		t.Fatalf("frame 1 encode: %v", err)
	}
	decoded1, err := Decode(data1, nil, 32, 16)
	if err != nil {
		t.Fatalf("frame 1 decode: %v", err)
	}
	for i := range recon1 {
		if decoded1[i] != recon1[i] {
			t.Fatalf("frame 1 pixel %d mismatch", i)
		}
	}

	data2, recon2, err := Encode(img2, recon1, 32, 16, false, 1.0)
	if err != nil {
		t.Fatalf("frame 2 encode: %v", err)
	}
	decoded2, err := Decode(data2, decoded1, 32, 16)
	if err != nil {
		t.Fatalf("frame 2 decode: %v", err)
	}
	for i := range recon2 {
		if decoded2[i] != recon2[i] {
			t.Fatalf("frame 2 pixel %d mismatch", i)
		}
	}
}

// TestRejectsNonMultipleOf16 covers spec.md §8's boundary behavior:
// DXTV rejects widths or heights not divisible by 16.
func TestRejectsNonMultipleOf16(t *testing.T) {
	img := make([]uint16, 24*16)
	if _, _, err := Encode(img, nil, 24, 16, true, 1.0); err == nil {
		t.Error("expected an error for width not divisible by 16")
	}
}
