package ocr

import "testing"

func TestBuildSearchIndexOrderAndCap(t *testing.T) {
	pages := []*Page{
		{PageNumber: 2, Blocks: []*Block{
			{Text: "p2-b1", PageNumber: 2},
			{Text: "p2-b2", PageNumber: 2},
		}},
		{PageNumber: 1, Blocks: []*Block{
			{Text: "p1-b1", PageNumber: 1, QuadPoints: []float64{1, 2, 3, 4, 5, 6, 7, 8}},
		}},
	}

	entries := BuildSearchIndex(pages, 10)

	want := []string{"p1-b1", "p2-b1", "p2-b2"}
	if len(entries) != len(want) {
		t.Fatalf("entry count = %d, want %d", len(entries), len(want))
	}
	for i, w := range want {
		if entries[i].Text != w {
			t.Errorf("entries[%d].Text = %q, want %q", i, entries[i].Text, w)
		}
	}
	if entries[0].PageNumber != 1 || entries[2].PageNumber != 2 {
		t.Error("page numbers not carried into entries")
	}
}

func TestBuildSearchIndexCap(t *testing.T) {
	var blocks []*Block
	for i := 0; i < 50; i++ {
		blocks = append(blocks, &Block{Text: "b", PageNumber: 1})
	}
	pages := []*Page{{PageNumber: 1, Blocks: blocks}}

	if got := len(BuildSearchIndex(pages, 7)); got != 7 {
		t.Errorf("capped entry count = %d, want 7", got)
	}
	if got := len(BuildSearchIndex(pages, 0)); got != 50 {
		t.Errorf("default cap should not truncate 50 entries, got %d", got)
	}
}

func TestFlattenBlocksPositionalOrder(t *testing.T) {
	pages := []*Page{
		{PageNumber: 1, Blocks: []*Block{{Text: "a"}, {Text: "b"}}},
		{PageNumber: 2, Blocks: []*Block{{Text: "c"}}},
	}

	blocks := FlattenBlocks(pages)
	if len(blocks) != 3 || blocks[2].Text != "c" {
		t.Fatalf("unexpected flatten result: %v", blocks)
	}
}
