package pipeline

import (
	"testing"

	"github.com/ausocean/dxtv/frame"
	"github.com/ausocean/dxtv/pipeline/config"
)

// upperStage returns a Convert-shaped stage that uppercases the byte
// payload it's given, falling back to the frame's pixel buffer.
func upperStage(tag config.Tag) *Stage {
	return &Stage{
		Tag:         tag,
		Shape:       ShapeConvert,
		ScratchSize: func() uint32 { return 0 },
		ConvertFn: func(in Payload) (Payload, error) {
			var b []byte
			if in.Bytes != nil {
				b = in.Bytes
			} else {
				b = in.Frame.Pixels
			}
			out := make([]byte, len(b))
			for i, c := range b {
				if c >= 'a' && c <= 'z' {
					c -= 'a' - 'A'
				}
				out[i] = c
			}
			return Payload{Bytes: out}, nil
		},
	}
}

// countingStateStage counts how many times it's invoked, using its
// retained state to carry the running count.
func countingStateStage(tag config.Tag) *Stage {
	return &Stage{
		Tag:         tag,
		Shape:       ShapeConvertState,
		ScratchSize: func() uint32 { return 1 },
		ConvertStateFn: func(in Payload, state []byte) (Payload, []byte, error) {
			n := byte(0)
			if len(state) == 1 {
				n = state[0]
			}
			n++
			return in, []byte{n}, nil
		},
	}
}

func newTestFrame(pixels string) *frame.Frame {
	return &frame.Frame{Width: len(pixels), Height: 1, Format: frame.RGB888, Pixels: []byte(pixels)}
}

func TestProcessStreamRunsConvertStages(t *testing.T) {
	p := New([]*Stage{upperStage(config.LZ10)}, nil)
	out, err := p.ProcessStream(newTestFrame("hello"))
	if err != nil {
		t.Fatalf("ProcessStream: %v", err)
	}
	if string(out) != "HELLO" {
		t.Fatalf("got %q, want %q", out, "HELLO")
	}
}

func TestProcessStreamIgnoresBatchAndReduceStages(t *testing.T) {
	called := false
	batch := &Stage{
		Tag:   config.CommonPalette,
		Shape: ShapeBatchConvert,
		BatchConvertFn: func(in []Payload) ([]Payload, error) {
			called = true
			return in, nil
		},
		ScratchSize: func() uint32 { return 0 },
	}
	p := New([]*Stage{batch, upperStage(config.LZ10)}, nil)
	if _, err := p.ProcessStream(newTestFrame("hi")); err != nil {
		t.Fatalf("ProcessStream: %v", err)
	}
	if called {
		t.Fatal("ProcessStream must not run BatchConvert stages")
	}
}

func TestProcessStreamPanicsWhenNoByteChunkProduced(t *testing.T) {
	noop := &Stage{
		Tag:         config.Uncompressed,
		Shape:       ShapeConvert,
		ScratchSize: func() uint32 { return 0 },
		ConvertFn:   func(in Payload) (Payload, error) { return in, nil },
	}
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when pipeline never produces a byte chunk")
		}
	}()
	p := New([]*Stage{noop}, nil)
	p.ProcessStream(newTestFrame("hi"))
}

func TestProcessBatchRunsReduceAndCollapses(t *testing.T) {
	reduce := &Stage{
		Tag:   config.CommonPalette,
		Shape: ShapeReduce,
		ReduceFn: func(in []Payload) (Payload, error) {
			var b []byte
			for _, pl := range in {
				b = append(b, pl.Frame.Pixels...)
			}
			return Payload{Frame: &frame.Frame{Width: len(b), Height: 1, Format: frame.RGB888, Pixels: b}}, nil
		},
		ScratchSize: func() uint32 { return 0 },
	}
	p := New([]*Stage{reduce, upperStage(config.LZ10)}, nil)
	out, err := p.ProcessBatch([]*frame.Frame{newTestFrame("ab"), newTestFrame("cd")})
	if err != nil {
		t.Fatalf("ProcessBatch: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d outputs, want 1 after reduce", len(out))
	}
	if string(out[0]) != "ABCD" {
		t.Fatalf("got %q, want %q", out[0], "ABCD")
	}
}

func TestGetDecodingStepsReversesDecodeRelevantOnly(t *testing.T) {
	a := upperStage(config.LZ10)
	a.DecodeRelevant = true
	b := upperStage(config.RLE)
	b.DecodeRelevant = false
	c := upperStage(config.Delta8)
	c.DecodeRelevant = true

	p := New([]*Stage{a, b, c}, nil)
	steps := p.GetDecodingSteps()
	if len(steps) != 2 {
		t.Fatalf("got %d decode-relevant steps, want 2", len(steps))
	}
	if steps[0].Tag != config.Delta8 || steps[1].Tag != config.LZ10 {
		t.Fatalf("got steps in order %v, %v; want reversed", steps[0].Tag, steps[1].Tag)
	}
}

func TestStatefulStageRetainsStateAcrossCalls(t *testing.T) {
	st := countingStateStage(config.DXTV)
	p := New([]*Stage{st}, nil)
	for i := 1; i <= 3; i++ {
		payload := Payload{Frame: newTestFrame("x")}
		var err error
		payload, err = p.runOne(st, payload, 0)
		if err != nil {
			t.Fatalf("runOne call %d: %v", i, err)
		}
		_ = payload
		if len(st.state) != 1 || int(st.state[0]) != i {
			t.Fatalf("call %d: state = %v, want [%d]", i, st.state, i)
		}
	}
}
