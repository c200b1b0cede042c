/*
NAME
  pcmsource_test.go

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pcmsource

import (
	"bytes"
	"io"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// memRWS is a minimal in-memory io.ReadWriteSeeker, used so tests
// don't depend on fixture files on disk.
type memRWS struct {
	buf []byte
	pos int
}

func (m *memRWS) Write(p []byte) (int, error) {
	minCap := m.pos + len(p)
	if minCap > len(m.buf) {
		grown := make([]byte, minCap)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[m.pos:], p)
	m.pos += len(p)
	return len(p), nil
}

func (m *memRWS) Read(p []byte) (int, error) {
	if m.pos >= len(m.buf) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += n
	return n, nil
}

func (m *memRWS) Seek(offset int64, whence int) (int64, error) {
	var newPos int
	switch whence {
	case io.SeekStart:
		newPos = int(offset)
	case io.SeekCurrent:
		newPos = m.pos + int(offset)
	case io.SeekEnd:
		newPos = len(m.buf) + int(offset)
	}
	m.pos = newPos
	return int64(newPos), nil
}

func encodeTestWAV(t *testing.T, samples []int, channels, sampleRate int) []byte {
	t.Helper()
	m := &memRWS{}
	enc := wav.NewEncoder(m, sampleRate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encoding test WAV: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("closing test WAV encoder: %v", err)
	}
	return m.buf
}

func TestDecodeMono(t *testing.T) {
	samples := []int{100, -200, 300, -400, 32000, -32000}
	raw := encodeTestWAV(t, samples, 1, 8000)

	src, err := Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	if src.Channels != 1 {
		t.Errorf("Channels = %d, want 1", src.Channels)
	}
	if src.SampleRate != 8000 {
		t.Errorf("SampleRate = %d, want 8000", src.SampleRate)
	}
	if len(src.Samples) != len(samples) {
		t.Fatalf("len(Samples) = %d, want %d", len(src.Samples), len(samples))
	}
	for i, s := range samples {
		if int(src.Samples[i]) != s {
			t.Errorf("Samples[%d] = %d, want %d", i, src.Samples[i], s)
		}
	}
}

func TestDecodeStereoInterleaved(t *testing.T) {
	samples := []int{1, -1, 2, -2, 3, -3}
	raw := encodeTestWAV(t, samples, 2, 44100)

	src, err := Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	if src.Channels != 2 {
		t.Errorf("Channels = %d, want 2", src.Channels)
	}
	if len(src.Samples) != len(samples) {
		t.Fatalf("len(Samples) = %d, want %d", len(src.Samples), len(samples))
	}
}
