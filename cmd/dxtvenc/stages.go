/*
NAME
  stages.go

DESCRIPTION
  stages.go translates dxtvenc's per-stage command-line flags into an
  ordered pipeline.Stage list (spec.md §6: "per-stage flags... mapping
  one-to-one to pipeline stages").

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"github.com/pkg/errors"

	"github.com/ausocean/dxtv/dxtverr"
	"github.com/ausocean/dxtv/pipeline"
	"github.com/ausocean/dxtv/pipeline/config"
	"github.com/ausocean/dxtv/pipeline/stages"
)

// stageDescriptors translates opts into the ordered stage-descriptor
// list config.Config.Stages expects, in the fixed order: palette
// reduction, Delta8 pre-filter, the chosen frame codec, then the
// LZ10/RLE stream transforms.
func stageDescriptors(opts stageOptions) ([]config.StageDescriptor, error) {
	if opts.useDXTV && opts.useDXT {
		return nil, errors.Wrap(dxtverr.InvalidInput, "dxtvenc: -dxtv and -dxt are mutually exclusive")
	}
	if !opts.useDXTV && !opts.useDXT {
		return nil, errors.Wrap(dxtverr.InvalidInput, "dxtvenc: one of -dxtv or -dxt must be set")
	}

	var list []config.StageDescriptor

	switch {
	case opts.useCommon:
		list = append(list, config.StageDescriptor{
			Tag:            config.CommonPalette,
			Params:         map[string]interface{}{"maxColors": opts.maxColors},
			DecodeRelevant: true,
		})
	case opts.usePaletted:
		list = append(list, config.StageDescriptor{
			Tag:            config.Paletted,
			Params:         map[string]interface{}{"maxColors": opts.maxColors},
			DecodeRelevant: true,
		})
	}

	if opts.useDelta8 {
		list = append(list, config.StageDescriptor{Tag: config.Delta8, DecodeRelevant: true})
	}

	if opts.useDXTV {
		list = append(list, config.StageDescriptor{
			Tag:            config.DXTV,
			Params:         map[string]interface{}{"maxBlockError": opts.maxError},
			DecodeRelevant: true,
		})
	} else {
		list = append(list, config.StageDescriptor{Tag: config.DXT, DecodeRelevant: true})
	}

	if opts.useLZ10 {
		list = append(list, config.StageDescriptor{Tag: config.LZ10, DecodeRelevant: true})
	}
	if opts.useRLE {
		list = append(list, config.StageDescriptor{Tag: config.RLE, DecodeRelevant: true})
	}

	return list, nil
}

// buildStages instantiates cfg.Stages (already populated by the caller
// from stageDescriptors, so Config.Validate saw the real stage list)
// via stages.FromConfig — the same declarative construction path a
// caller loading a JSON config would use.
func buildStages(width, height int, cfg *config.Config) ([]*pipeline.Stage, error) {
	return stages.FromConfig(cfg, width, height, nil)
}
