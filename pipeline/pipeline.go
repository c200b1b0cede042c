/*
NAME
  pipeline.go

DESCRIPTION
  pipeline.go implements the ordered, composable stage pipeline of
  spec.md §4.6: four stage shapes (Convert, ConvertState, BatchConvert,
  Reduce), a processBatch driver for whole image sequences and a
  processStream driver for one frame at a time, and getDecodingSteps
  for recovering the on-device decode order. Grounded on
  revid/pipeline.go's stage-chaining and switch-based dispatch over
  config enums.

AUTHOR
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pipeline implements the processing-stage pipeline that
// composes per-frame transforms into an ordered sequence.
package pipeline

import (
	"github.com/pkg/errors"

	"github.com/ausocean/dxtv/dxtverr"
	"github.com/ausocean/dxtv/frame"
	"github.com/ausocean/dxtv/pipeline/config"
	"github.com/ausocean/utils/logging"
)

// Payload is what flows between stages. A stage that still has
// structured pixel data to offer sets Frame; once a stage has
// serialized its output into an opaque, already chunk-tagged byte
// stream (spec.md §4.5's transform wrappers, or a terminal codec like
// DXTV/DXT), it sets Bytes and clears Frame, signalling that no
// further frame-shaped stage may run.
type Payload struct {
	Frame *frame.Frame
	Bytes []byte
}

// Shape identifies which of the four stage operation shapes (spec.md
// §4.6) a Stage implements. Exactly one of the corresponding function
// fields on Stage is used, matching Shape.
type Shape int

const (
	ShapeConvert Shape = iota
	ShapeConvertState
	ShapeBatchConvert
	ShapeReduce
)

// Stage is one entry in a Pipeline. Exactly one of ConvertFn,
// ConvertStateFn, BatchConvertFn, ReduceFn is used, selected by Shape.
type Stage struct {
	Tag            config.Tag
	Shape          Shape
	DecodeRelevant bool
	AddStatistics  bool

	// ScratchSize reports the stage's worst-case retained-state size in
	// bytes, used to compute the container's maxMemoryNeeded field.
	ScratchSize func() uint32

	ConvertFn      func(Payload) (Payload, error)
	ConvertStateFn func(Payload, []byte) (Payload, []byte, error)
	BatchConvertFn func([]Payload) ([]Payload, error)
	ReduceFn       func([]Payload) (Payload, error)

	// state is the stage's retained byte buffer (spec.md §3's "opaque
	// per-stage byte buffer of retained state"), carried across calls.
	// Never process-global: each Stage instance owns its own.
	state []byte
}

// Stats accumulates per-stage and per-frame statistics when a stage's
// AddStatistics flag is set (spec.md §3a).
type Stats struct {
	// StageBytes sums output byte counts per stage tag across all
	// frames processed so far.
	StageBytes map[config.Tag]int64

	// FrameRatios holds one entry per frame for every AddStatistics stage
	// run: the ratio of that stage's output bytes to the frame's original
	// uncompressed pixel byte count.
	FrameRatios []float64
}

// Pipeline runs an ordered list of Stages over frames.
type Pipeline struct {
	Stages []*Stage
	Logger logging.Logger
	Stats  Stats
}

// New constructs a Pipeline from stages, initializing Stats.
func New(stages []*Stage, logger logging.Logger) *Pipeline {
	return &Pipeline{
		Stages: stages,
		Logger: logger,
		Stats: Stats{
			StageBytes: make(map[config.Tag]int64),
		},
	}
}

func logf(l logging.Logger, level int8, msg string, params ...interface{}) {
	if l == nil {
		return
	}
	l.Log(level, msg, params...)
}

// runOne passes a single Payload through one Convert or ConvertState
// stage, recording statistics if requested.
func (p *Pipeline) runOne(st *Stage, in Payload, origSize int) (Payload, error) {
	var out Payload
	var err error
	switch st.Shape {
	case ShapeConvert:
		out, err = st.ConvertFn(in)
	case ShapeConvertState:
		out, st.state, err = st.ConvertStateFn(in, st.state)
	default:
		return Payload{}, errors.Errorf("pipeline: runOne called on non-frame-shaped stage tag %d", st.Tag)
	}
	if err != nil {
		logf(p.Logger, logging.Error, "stage failed", "tag", st.Tag, "error", err)
		if errors.Is(err, dxtverr.InternalInvariant) {
			// Internal-invariant violations are programming bugs, not
			// recoverable encode failures (spec.md §7).
			panic(errors.Wrapf(err, "pipeline: stage %d", st.Tag))
		}
		return Payload{}, errors.Wrapf(err, "pipeline: stage %d", st.Tag)
	}
	if st.AddStatistics {
		n := len(out.Bytes)
		if out.Frame != nil {
			n = len(out.Frame.Pixels)
		}
		p.Stats.StageBytes[st.Tag] += int64(n)
		if origSize > 0 {
			p.Stats.FrameRatios = append(p.Stats.FrameRatios, float64(n)/float64(origSize))
		}
	}
	logf(p.Logger, logging.Debug, "stage complete", "tag", st.Tag)
	return out, nil
}

// ProcessStream processes a single frame through every Convert and
// ConvertState stage in order, silently ignoring BatchConvert and
// Reduce stages (spec.md §4.6), and returns the final byte payload.
func (p *Pipeline) ProcessStream(f *frame.Frame) ([]byte, error) {
	origSize := len(f.Pixels)
	payload := Payload{Frame: f}
	for _, st := range p.Stages {
		if st.Shape == ShapeBatchConvert || st.Shape == ShapeReduce {
			continue
		}
		var err error
		payload, err = p.runOne(st, payload, origSize)
		if err != nil {
			return nil, err
		}
	}
	if payload.Bytes == nil {
		panic(errors.Wrap(dxtverr.InternalInvariant, "pipeline: stream did not terminate in a byte chunk"))
	}
	return payload.Bytes, nil
}

// ProcessBatch runs the entire pipeline, including BatchConvert and
// Reduce stages, over every frame. Reduce stages collapse the working
// set to a single payload; subsequent stages then run on that one
// payload only, and the returned slice will have fewer elements than
// frames. Logs a Stats summary at Info level once complete.
func (p *Pipeline) ProcessBatch(frames []*frame.Frame) ([][]byte, error) {
	origSizes := make([]int, len(frames))
	payloads := make([]Payload, len(frames))
	for i, f := range frames {
		payloads[i] = Payload{Frame: f}
		origSizes[i] = len(f.Pixels)
	}

	for _, st := range p.Stages {
		switch st.Shape {
		case ShapeConvert, ShapeConvertState:
			for i, pl := range payloads {
				var err error
				orig := 0
				if i < len(origSizes) {
					orig = origSizes[i]
				}
				payloads[i], err = p.runOne(st, pl, orig)
				if err != nil {
					return nil, err
				}
			}
		case ShapeBatchConvert:
			out, err := st.BatchConvertFn(payloads)
			if err != nil {
				logf(p.Logger, logging.Error, "batch stage failed", "tag", st.Tag, "error", err)
				return nil, errors.Wrapf(err, "pipeline: batch stage %d", st.Tag)
			}
			payloads = out
			logf(p.Logger, logging.Debug, "batch stage complete", "tag", st.Tag, "frames", len(payloads))
		case ShapeReduce:
			reduced, err := st.ReduceFn(payloads)
			if err != nil {
				logf(p.Logger, logging.Error, "reduce stage failed", "tag", st.Tag, "error", err)
				return nil, errors.Wrapf(err, "pipeline: reduce stage %d", st.Tag)
			}
			if len(payloads) > 1 {
				logf(p.Logger, logging.Warning, "reduce stage collapsed frames", "tag", st.Tag, "from", len(payloads), "to", 1)
			}
			payloads = []Payload{reduced}
		}
	}

	out := make([][]byte, len(payloads))
	for i, pl := range payloads {
		if pl.Bytes == nil {
			panic(errors.Wrap(dxtverr.InternalInvariant, "pipeline: batch did not terminate in byte chunks"))
		}
		out[i] = pl.Bytes
	}

	logf(p.Logger, logging.Info, "pipeline batch complete", "frames", len(out), "stageBytes", p.Stats.StageBytes)
	return out, nil
}

// GetDecodingSteps returns, in reverse order, the subset of stages
// whose DecodeRelevant flag is set — the sequence an on-device decoder
// must execute to reverse this pipeline's encoding.
func (p *Pipeline) GetDecodingSteps() []*Stage {
	var out []*Stage
	for i := len(p.Stages) - 1; i >= 0; i-- {
		if p.Stages[i].DecodeRelevant {
			out = append(out, p.Stages[i])
		}
	}
	return out
}
