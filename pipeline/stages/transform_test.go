package stages

import (
	"bytes"
	"testing"

	"github.com/ausocean/dxtv/codec/transform"
	"github.com/ausocean/dxtv/frame"
	"github.com/ausocean/dxtv/pipeline"
	"github.com/ausocean/dxtv/pipeline/config"
)

func testFrame(pixels []byte) *frame.Frame {
	return &frame.Frame{Width: len(pixels), Height: 1, Format: frame.RGB888, Pixels: pixels}
}

func TestNewLZ10WrapsEncodedBytes(t *testing.T) {
	raw := bytes.Repeat([]byte{0xAB}, 20)
	st := NewLZ10(true)
	out, err := st.ConvertFn(pipeline.Payload{Frame: testFrame(raw)})
	if err != nil {
		t.Fatalf("ConvertFn: %v", err)
	}
	tag, size, rest, err := readChunk(out.Bytes)
	if err != nil {
		t.Fatalf("readChunk: %v", err)
	}
	if tag != config.LZ10 {
		t.Fatalf("tag = %v, want LZ10", tag)
	}
	want := transform.LZ10Encode(raw)
	if size != len(want) || !bytes.Equal(rest[:size], want) {
		t.Fatalf("payload mismatch")
	}
}

func TestNewRLEFallsBackToPriorBytes(t *testing.T) {
	prior, err := writeChunk(config.LZ10, []byte{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("writeChunk: %v", err)
	}
	st := NewRLE(true)
	out, err := st.ConvertFn(pipeline.Payload{Bytes: prior})
	if err != nil {
		t.Fatalf("ConvertFn: %v", err)
	}
	tag, _, _, err := readChunk(out.Bytes)
	if err != nil {
		t.Fatalf("readChunk: %v", err)
	}
	if tag != config.RLE {
		t.Fatalf("tag = %v, want RLE", tag)
	}
}

func TestNewDelta16RejectsOddLength(t *testing.T) {
	st := NewDelta16(true)
	_, err := st.ConvertFn(pipeline.Payload{Frame: testFrame([]byte{1, 2, 3})})
	if err == nil {
		t.Fatal("expected error for odd-length Delta16 input")
	}
}

func TestInputBytesRejectsEmptyPayload(t *testing.T) {
	if _, err := inputBytes(pipeline.Payload{}); err == nil {
		t.Fatal("expected error for empty payload")
	}
}
