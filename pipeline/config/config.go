/*
NAME
  config.go

DESCRIPTION
  config.go holds the configuration for a pipeline run: global encode
  parameters and the ordered list of stage descriptors, grounded on
  revid/config/config.go's Config+Validate shape.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config holds the configuration settings for a pipeline run.
package config

import (
	"github.com/pkg/errors"

	"github.com/ausocean/dxtv/dxtverr"
	"github.com/ausocean/utils/logging"
)

// Tag is a processing-type tag from the fixed enumeration of spec §6.
type Tag uint8

// Processing-type tag enumeration (spec.md §6).
const (
	Uncompressed Tag = 0
	BlackWhite   Tag = 10
	Paletted     Tag = 11
	Truecolor    Tag = 12
	CommonPalette Tag = 14
	Tiles        Tag = 20
	Sprites      Tag = 21
	TileMap      Tag = 22
	AddColor0    Tag = 30
	MoveColor0   Tag = 31
	ReorderColors Tag = 32
	ShiftIndices Tag = 40
	PruneIndices Tag = 41
	Delta8       Tag = 50
	Delta16      Tag = 51
	DeltaImage   Tag = 55
	LZ10         Tag = 60
	RLE          Tag = 65
	DXT          Tag = 70
	DXTV         Tag = 71
	GVID         Tag = 72
)

// StageDescriptor describes one stage to be instantiated in a pipeline.
type StageDescriptor struct {
	Tag            Tag
	Params         map[string]interface{}
	DecodeRelevant bool
	AddStatistics  bool
}

// Config holds global pipeline parameters and the ordered stage list.
type Config struct {
	Stages []StageDescriptor

	Width  uint
	Height uint
	FPS    uint8

	// MaxBlockError is DXTV's user-facing error threshold, [0.01,1.0].
	MaxBlockError float64

	// ADPCM settings.
	Channels   uint8
	SampleRate uint
	Lookahead  int

	Logger   logging.Logger
	LogLevel int8
	Suppress bool
}

// Validate checks Config for obviously invalid parameter combinations.
func (c *Config) Validate() error {
	if c.Width == 0 || c.Width%8 != 0 {
		return errors.Wrap(dxtverr.InvalidInput, "config: Width must be a non-zero multiple of 8")
	}
	if c.Height == 0 || c.Height%8 != 0 {
		return errors.Wrap(dxtverr.InvalidInput, "config: Height must be a non-zero multiple of 8")
	}
	if c.MaxBlockError != 0 && (c.MaxBlockError < 0.01 || c.MaxBlockError > 1.0) {
		return errors.Wrap(dxtverr.InvalidInput, "config: MaxBlockError must be in [0.01,1.0]")
	}
	if c.Channels != 0 && c.Channels != 1 && c.Channels != 2 {
		return errors.Wrap(dxtverr.InvalidInput, "config: Channels must be 1 or 2")
	}
	for _, sd := range c.Stages {
		if sd.Tag == DXTV && (c.Width%16 != 0 || c.Height%16 != 0) {
			return errors.Wrap(dxtverr.InvalidInput, "config: DXTV requires Width and Height to be multiples of 16")
		}
	}
	return nil
}
