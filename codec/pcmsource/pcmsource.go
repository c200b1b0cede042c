/*
NAME
  pcmsource.go

DESCRIPTION
  pcmsource.go reads interleaved 16-bit PCM samples out of a WAV file,
  the shape codec/adpcm.Encode expects, grounded on exp/flac/decode.go's
  use of the go-audio WAV/audio packages.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pcmsource reads WAV files into the interleaved []int16 PCM
// shape consumed by codec/adpcm.
package pcmsource

import (
	"io"
	"os"

	"github.com/go-audio/wav"
	"github.com/pkg/errors"

	"github.com/ausocean/dxtv/dxtverr"
)

// Source is a decoded PCM stream ready for ADPCM encoding.
type Source struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Samples    []int16 // Interleaved: ch0,ch1,ch0,ch1,... for stereo.
}

// Load reads the WAV file at path into a Source.
func Load(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(dxtverr.InvalidInput, "pcmsource: opening %q: %v", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a WAV stream from r into a Source. Only 16-bit PCM is
// supported, matching codec/adpcm's fixed sample width.
func Decode(r io.ReadSeeker) (*Source, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.Wrap(dxtverr.InvalidInput, "pcmsource: not a valid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "pcmsource: reading PCM buffer")
	}
	if buf.SourceBitDepth != 16 {
		return nil, errors.Wrapf(dxtverr.InvalidInput, "pcmsource: unsupported bit depth %d, want 16", buf.SourceBitDepth)
	}

	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = int16(v)
	}

	return &Source{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
		Samples:    samples,
	}, nil
}
