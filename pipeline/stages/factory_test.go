package stages

import (
	"testing"

	"github.com/ausocean/dxtv/pipeline/config"
)

func TestNewBuildsStageForEachKnownTag(t *testing.T) {
	descs := []config.StageDescriptor{
		{Tag: config.DXTV, Params: map[string]interface{}{"maxBlockError": 0.2}},
		{Tag: config.DXT},
		{Tag: config.LZ10},
		{Tag: config.RLE},
		{Tag: config.Delta8},
		{Tag: config.Delta16},
		{Tag: config.Paletted, Params: map[string]interface{}{"maxColors": 8}},
		{Tag: config.Truecolor},
		{Tag: config.CommonPalette, Params: map[string]interface{}{"maxColors": 8}},
		{Tag: config.AddColor0, Params: map[string]interface{}{"color": uint16(0)}},
		{Tag: config.MoveColor0, Params: map[string]interface{}{"index": 1}},
		{Tag: config.ReorderColors, Params: map[string]interface{}{"perm": []uint8{1, 0}}},
		{Tag: config.ShiftIndices, Params: map[string]interface{}{"shift": 1}},
		{Tag: config.PruneIndices},
		{Tag: config.Tiles, Params: map[string]interface{}{"tileWidth": 8, "tileHeight": 8}},
		{Tag: config.Sprites, Params: map[string]interface{}{"spriteWidth": 16, "spriteHeight": 16}},
		{Tag: config.TileMap},
	}
	for _, d := range descs {
		st, err := New(d, 16, 16, nil)
		if err != nil {
			t.Fatalf("New(tag %d): %v", d.Tag, err)
		}
		if st == nil {
			t.Fatalf("New(tag %d): got nil stage", d.Tag)
		}
	}
}

func TestNewRejectsUnknownTag(t *testing.T) {
	if _, err := New(config.StageDescriptor{Tag: config.Tag(255)}, 16, 16, nil); err == nil {
		t.Fatal("expected error for unknown tag")
	}
}

func TestFromConfigBuildsOrderedStagesAndCopiesAddStatistics(t *testing.T) {
	cfg := &config.Config{
		Width:  16,
		Height: 16,
		Stages: []config.StageDescriptor{
			{Tag: config.Delta8, AddStatistics: true},
			{Tag: config.DXTV},
		},
	}
	list, err := FromConfig(cfg, 16, 16, nil)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d stages, want 2", len(list))
	}
	if !list[0].AddStatistics {
		t.Fatal("expected first stage's AddStatistics to carry over from its descriptor")
	}
	if list[1].AddStatistics {
		t.Fatal("expected second stage's AddStatistics to stay false")
	}
}
