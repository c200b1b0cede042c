package stages

import (
	"testing"

	"github.com/ausocean/dxtv/frame"
	"github.com/ausocean/dxtv/pipeline"
	"github.com/ausocean/dxtv/pipeline/config"
)

func solidRGB555Frame(t *testing.T, width, height int, color uint16) *frame.Frame {
	t.Helper()
	f, err := frame.New(width, height, frame.RGB555)
	if err != nil {
		t.Fatalf("frame.New: %v", err)
	}
	px := make([]uint16, width*height)
	for i := range px {
		px[i] = color
	}
	if err := f.SetRGB555Pixels(px); err != nil {
		t.Fatalf("SetRGB555Pixels: %v", err)
	}
	return f
}

func TestDXTStageEncodesWholeFrame(t *testing.T) {
	f := solidRGB555Frame(t, 8, 8, 0x1234)
	st := NewDXT(true)
	out, err := st.ConvertFn(pipeline.Payload{Frame: f})
	if err != nil {
		t.Fatalf("ConvertFn: %v", err)
	}
	tag, size, rest, err := readChunk(out.Bytes)
	if err != nil {
		t.Fatalf("readChunk: %v", err)
	}
	if tag != config.DXT {
		t.Fatalf("tag = %v, want DXT", tag)
	}
	// 8x8 frame = 4 blocks of 4x4, 8 bytes each.
	if size != 32 || len(rest) < size {
		t.Fatalf("size = %d, want 32", size)
	}
}

func TestDXTStageRejectsNonMultipleOf4(t *testing.T) {
	f := solidRGB555Frame(t, 8, 8, 0)
	f.Width = 6
	st := NewDXT(true)
	if _, err := st.ConvertFn(pipeline.Payload{Frame: f}); err == nil {
		t.Fatal("expected error for non-multiple-of-4 width")
	}
}
