package stages

import (
	"testing"

	"github.com/ausocean/dxtv/pipeline"
)

func TestDXTVStageDetectsDuplicateFrame(t *testing.T) {
	st := NewDXTV(16, 16, 0.5, true)
	f1 := solidRGB555Frame(t, 16, 16, 0x1234)

	out1, state, err := st.ConvertStateFn(pipeline.Payload{Frame: f1}, nil)
	if err != nil {
		t.Fatalf("first ConvertStateFn: %v", err)
	}
	_, size1, _, err := readChunk(out1.Bytes)
	if err != nil {
		t.Fatalf("readChunk frame 1: %v", err)
	}
	if size1 == 0 {
		t.Fatal("expected non-empty key frame payload")
	}

	f2 := solidRGB555Frame(t, 16, 16, 0x1234)
	out2, _, err := st.ConvertStateFn(pipeline.Payload{Frame: f2}, state)
	if err != nil {
		t.Fatalf("second ConvertStateFn: %v", err)
	}
	_, size2, _, err := readChunk(out2.Bytes)
	if err != nil {
		t.Fatalf("readChunk frame 2: %v", err)
	}
	if size2 != 8 {
		t.Fatalf("duplicate-frame payload size = %d, want 8 (KEEP header)", size2)
	}
}

func TestDXTVStageRejectsNonFramePayload(t *testing.T) {
	st := NewDXTV(16, 16, 0.5, true)
	if _, _, err := st.ConvertStateFn(pipeline.Payload{}, nil); err == nil {
		t.Fatal("expected error for payload with no frame")
	}
}
