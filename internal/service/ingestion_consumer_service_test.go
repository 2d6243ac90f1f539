package service

import (
	"testing"

	"condo-assistant-be/pkg/ocr"
)

func TestDocumentFullTextFromPages(t *testing.T) {
	pages := []*ocr.Page{
		{PageNumber: 1, Blocks: []*ocr.Block{
			{Text: "管理規約 第1条"},
			{Text: "専有部分の範囲"},
		}},
		{PageNumber: 2, Blocks: []*ocr.Block{
			{Text: "共用部分の範囲"},
		}},
	}

	got := documentFullText(pages, "raw shard text")
	want := "管理規約 第1条\n専有部分の範囲\n共用部分の範囲"
	if got != want {
		t.Errorf("documentFullText() = %q, want %q", got, want)
	}
}

// An unrecognized response shape yields no pages; the document must
// still carry the raw text the analysis service extracted.
func TestDocumentFullTextFallsBackToRawText(t *testing.T) {
	if got := documentFullText(nil, "raw shard text"); got != "raw shard text" {
		t.Errorf("expected raw text fallback, got %q", got)
	}

	// Pages whose blocks carry no text also fall back.
	empty := []*ocr.Page{{PageNumber: 1, Blocks: []*ocr.Block{{Text: ""}}}}
	if got := documentFullText(empty, "raw shard text"); got != "raw shard text" {
		t.Errorf("expected raw text fallback for textless pages, got %q", got)
	}

	if got := documentFullText(nil, ""); got != "" {
		t.Errorf("expected empty result when nothing was extracted, got %q", got)
	}
}
