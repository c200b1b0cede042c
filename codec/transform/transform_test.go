/*
NAME
  transform_test.go

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

import (
	"bytes"
	"math/rand"
	"testing"
)

// TestDelta8RoundTripLiteral implements spec.md §8's concrete Delta8
// scenario: input [10,12,11,250] encodes to [10,2,255,239].
func TestDelta8RoundTripLiteral(t *testing.T) {
	in := []byte{10, 12, 11, 250}
	want := []byte{10, 2, 255, 239}
	got := Delta8Encode(in)
	if !bytes.Equal(got, want) {
		t.Fatalf("Delta8Encode(%v) = %v, want %v", in, got, want)
	}
	back := Delta8Decode(got)
	if !bytes.Equal(back, in) {
		t.Errorf("Delta8Decode(Delta8Encode(%v)) = %v, want %v", in, back, in)
	}
}

func TestLZ10RoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		{1},
		bytes.Repeat([]byte{0x42}, 200),
		[]byte("the quick brown fox the quick brown fox the quick brown fox"),
	}
	r := rand.New(rand.NewSource(1))
	random := make([]byte, 4096)
	r.Read(random)
	cases = append(cases, random)

	for i, in := range cases {
		enc := LZ10Encode(in)
		out, err := LZ10Decode(enc, len(in))
		if err != nil {
			t.Fatalf("case %d: decode error: %v", i, err)
		}
		if !bytes.Equal(out, in) {
			t.Fatalf("case %d: round trip mismatch", i)
		}
	}
}

func TestRLERoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		{1},
		bytes.Repeat([]byte{0x7}, 300),
		[]byte("aaaaaaaaaabcabcabcabcddddddddddddddddddddd"),
	}
	r := rand.New(rand.NewSource(2))
	random := make([]byte, 2048)
	r.Read(random)
	cases = append(cases, random)

	for i, in := range cases {
		enc := RLEEncode(in)
		out, err := RLEDecode(enc, len(in))
		if err != nil {
			t.Fatalf("case %d: decode error: %v", i, err)
		}
		if !bytes.Equal(out, in) {
			t.Fatalf("case %d: round trip mismatch", i)
		}
	}
}

func TestDelta16RoundTrip(t *testing.T) {
	in := []byte{0x00, 0x00, 0x05, 0x00, 0x02, 0x00, 0xFF, 0xFF}
	enc, err := Delta16Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Delta16Decode(enc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, in) {
		t.Fatalf("Delta16 round trip = %v, want %v", out, in)
	}
}

func TestDelta16RejectsOddLength(t *testing.T) {
	if _, err := Delta16Encode([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for odd-length input")
	}
}
