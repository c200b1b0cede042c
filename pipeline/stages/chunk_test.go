package stages

import (
	"bytes"
	"testing"

	"github.com/ausocean/dxtv/pipeline/config"
)

func TestWriteReadChunkRoundTrip(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	out, err := writeChunk(config.LZ10, payload)
	if err != nil {
		t.Fatalf("writeChunk: %v", err)
	}
	if len(out)%4 != 0 {
		t.Fatalf("chunk length %d is not 4-byte aligned", len(out))
	}
	tag, size, rest, err := readChunk(out)
	if err != nil {
		t.Fatalf("readChunk: %v", err)
	}
	if tag != config.LZ10 {
		t.Fatalf("tag = %v, want %v", tag, config.LZ10)
	}
	if size != len(payload) {
		t.Fatalf("size = %d, want %d", size, len(payload))
	}
	if !bytes.Equal(rest[:size], payload) {
		t.Fatalf("payload = %v, want %v", rest[:size], payload)
	}
}

func TestPadTo4(t *testing.T) {
	for n := 0; n < 10; n++ {
		b := make([]byte, n)
		padded := padTo4(b)
		if len(padded)%4 != 0 {
			t.Fatalf("padTo4(%d bytes) = %d bytes, not aligned", n, len(padded))
		}
	}
}

func TestReadChunkRejectsShortInput(t *testing.T) {
	if _, _, _, err := readChunk([]byte{1, 2}); err == nil {
		t.Fatal("expected error for input shorter than chunk header")
	}
}
