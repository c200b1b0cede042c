package frame

import "testing"

func TestRGB555RoundTrip(t *testing.T) {
	f, err := New(8, 8, RGB555)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	px := make([]uint16, 64)
	for i := range px {
		px[i] = uint16(i * 7 % 32768)
	}
	if err := f.SetRGB555Pixels(px); err != nil {
		t.Fatalf("SetRGB555Pixels: %v", err)
	}
	got, err := f.RGB555Pixels()
	if err != nil {
		t.Fatalf("RGB555Pixels: %v", err)
	}
	for i := range px {
		if got[i] != px[i] {
			t.Fatalf("pixel %d = %v, want %v", i, got[i], px[i])
		}
	}
}

func TestYCgCoRPixelsRejectsPaletted(t *testing.T) {
	f, err := New(8, 8, Paletted8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := f.YCgCoRPixels(); err == nil {
		t.Fatal("expected error converting a paletted frame to YCgCoR")
	}
}

func TestPaletteIndexRoundTrip(t *testing.T) {
	f, err := New(8, 8, Paletted4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			idx := (x + y) % 16
			if err := f.SetPaletteIndex(x, y, idx); err != nil {
				t.Fatalf("SetPaletteIndex(%d,%d): %v", x, y, err)
			}
		}
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := (x + y) % 16
			got, err := f.PaletteIndex(x, y)
			if err != nil {
				t.Fatalf("PaletteIndex(%d,%d): %v", x, y, err)
			}
			if got != want {
				t.Fatalf("PaletteIndex(%d,%d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestSetPaletteIndexRejectsOutOfRange(t *testing.T) {
	f, err := New(8, 8, Paletted1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.SetPaletteIndex(0, 0, 2); err == nil {
		t.Fatal("expected error for index overflowing 1-bit format")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	f, err := New(8, 8, RGB888)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.ColorMap = []uint16{1, 2, 3}
	clone := f.Clone()
	clone.Pixels[0] = 0xFF
	clone.ColorMap[0] = 99
	if f.Pixels[0] == 0xFF {
		t.Fatal("mutating clone's pixels affected the original")
	}
	if f.ColorMap[0] == 99 {
		t.Fatal("mutating clone's color map affected the original")
	}
}

func TestNewRejectsNonMultipleOf8(t *testing.T) {
	if _, err := New(10, 16, RGB555); err == nil {
		t.Fatal("expected error for width not a multiple of 8")
	}
}
