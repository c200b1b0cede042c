/*
NAME
  adpcm_test.go

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package adpcm

import (
	"math"
	"testing"
)

// TestHeaderPackingLiteral implements spec.md §8 scenario 4: mono
// 16-bit PCM, 1024 samples, packs to 0x20, 0x08, 0x00, 0x08.
func TestHeaderPackingLiteral(t *testing.T) {
	h := Header{
		NrOfChannels:       1,
		PCMBitsPerSample:   16,
		ADPCMBitsPerSample: 4,
		UncompressedSize:   2048,
	}
	got, err := PackHeader(h)
	if err != nil {
		t.Fatal(err)
	}
	want := [4]byte{0x20, 0x08, 0x00, 0x08}
	if got != want {
		t.Fatalf("PackHeader(%+v) = %v, want %v", h, got, want)
	}

	back, err := UnpackHeader(got[:])
	if err != nil {
		t.Fatal(err)
	}
	if back != h {
		t.Fatalf("UnpackHeader(PackHeader(%+v)) = %+v", h, back)
	}
}

func TestPackHeaderRejectsBadChannels(t *testing.T) {
	_, err := PackHeader(Header{NrOfChannels: 3, PCMBitsPerSample: 16, ADPCMBitsPerSample: 4})
	if err == nil {
		t.Error("expected error for nrOfChannels=3")
	}
}

func TestPackHeaderRejectsBadADPCMBits(t *testing.T) {
	_, err := PackHeader(Header{NrOfChannels: 1, PCMBitsPerSample: 16, ADPCMBitsPerSample: 6})
	if err == nil {
		t.Error("expected error for adpcmBits=6")
	}
}

// sineSamples generates a synthetic 16-bit PCM waveform, used in place
// of on-disk fixtures.
func sineSamples(n int, freq float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(16000 * math.Sin(2*math.Pi*freq*float64(i)/float64(n)))
	}
	return out
}

func TestEncodeDecodeMonoRoundTrip(t *testing.T) {
	samples := sineSamples(256, 7)
	data, err := Encode(samples, 1, DefaultLookahead)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(samples) {
		t.Fatalf("decoded length = %d, want %d", len(out), len(samples))
	}
	if rms(samples, out) > 2000 {
		t.Fatalf("RMS error too large: %v", rms(samples, out))
	}
}

func TestEncodeDecodeStereoRoundTrip(t *testing.T) {
	n := 512
	samples := make([]int16, n)
	left := sineSamples(n/2, 5)
	right := sineSamples(n/2, 11)
	for i := 0; i < n/2; i++ {
		samples[2*i] = left[i]
		samples[2*i+1] = right[i]
	}

	data, err := Encode(samples, 2, DefaultLookahead)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(samples) {
		t.Fatalf("decoded length = %d, want %d", len(out), len(samples))
	}
}

func TestEncodeRejectsOddStereoSampleCount(t *testing.T) {
	_, err := Encode(make([]int16, 5), 2, DefaultLookahead)
	if err == nil {
		t.Error("expected error for odd sample count with stereo channels")
	}
}

// TestLookaheadMonotonicRMS checks that increasing lookahead does not
// increase RMS error, per spec.md §8's invariant.
func TestLookaheadMonotonicRMS(t *testing.T) {
	samples := sineSamples(300, 13)
	var prev float64 = math.MaxFloat64
	for _, la := range []int{1, 2, 3, 4} {
		data, err := Encode(samples, 1, la)
		if err != nil {
			t.Fatal(err)
		}
		out, err := Decode(data)
		if err != nil {
			t.Fatal(err)
		}
		e := rms(samples, out)
		if e > prev+1e-6 {
			t.Errorf("lookahead %d: RMS error %v increased from previous %v", la, e, prev)
		}
		prev = e
	}
}

func TestEncodeChannelEmpty(t *testing.T) {
	block := EncodeChannel(nil, DefaultLookahead)
	if len(block) != preambleSize {
		t.Fatalf("len(block) = %d, want %d", len(block), preambleSize)
	}
	out, err := DecodeChannel(block, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("len(out) = %d, want 0", len(out))
	}
}

func TestDecodeRejectsTruncatedBlock(t *testing.T) {
	data, err := Encode(sineSamples(64, 3), 1, DefaultLookahead)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Decode(data[:len(data)-1])
	if err == nil {
		t.Error("expected error decoding a truncated frame")
	}
}

func rms(a, b []int16) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(a)))
}
