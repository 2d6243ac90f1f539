package ocr

import "testing"

func primaryPage(blocks ...*Block) []*Page {
	return []*Page{{PageNumber: 1, Width: 595, Height: 841, Blocks: blocks}}
}

func TestMergeGeometryExactSamePage(t *testing.T) {
	quad := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	primary := primaryPage(&Block{Text: "ゴミ出しは 火曜日です", PageNumber: 1, QuadPoints: ZeroQuad()})
	secondary := primaryPage(&Block{Text: "ゴミ出しは火曜日です", PageNumber: 1, QuadPoints: quad})

	matched := MergeGeometry(primary, secondary)

	if matched != 1 {
		t.Fatalf("matched = %d, want 1", matched)
	}
	got := primary[0].Blocks[0].QuadPoints
	for i := range quad {
		if got[i] != quad[i] {
			t.Errorf("quad[%d] = %v, want %v", i, got[i], quad[i])
		}
	}
}

func TestMergeGeometryNormalization(t *testing.T) {
	quad := []float64{1, 1, 2, 1, 2, 2, 1, 2}
	// full-width space and case differences must not break matching
	primary := primaryPage(&Block{Text: "管理規約　Ver 2", PageNumber: 1, QuadPoints: ZeroQuad()})
	secondary := primaryPage(&Block{Text: "管理規約VER2", PageNumber: 1, QuadPoints: quad})

	if matched := MergeGeometry(primary, secondary); matched != 1 {
		t.Errorf("matched = %d, want 1", matched)
	}
}

func TestMergeGeometryContainmentFallback(t *testing.T) {
	quad := []float64{9, 9, 9, 1, 1, 1, 1, 9}
	// secondary block covers a longer span than the primary block
	primary := primaryPage(&Block{Text: "駐車場の契約", PageNumber: 1, QuadPoints: ZeroQuad()})
	secondary := primaryPage(&Block{Text: "駐車場の契約について以下に定める", PageNumber: 1, QuadPoints: quad})

	if matched := MergeGeometry(primary, secondary); matched != 1 {
		t.Errorf("containment match failed, matched = %d", matched)
	}
}

func TestMergeGeometrySamePagePreferred(t *testing.T) {
	samePageQuad := []float64{1, 0, 0, 0, 0, 0, 0, 0}
	crossPageQuad := []float64{2, 0, 0, 0, 0, 0, 0, 0}

	primary := primaryPage(&Block{Text: "避難経路図", PageNumber: 1, QuadPoints: ZeroQuad()})
	secondary := []*Page{
		{PageNumber: 2, Blocks: []*Block{
			{Text: "避難経路図を各階に掲示", PageNumber: 2, QuadPoints: crossPageQuad},
		}},
		{PageNumber: 1, Blocks: []*Block{
			{Text: "避難経路図（別紙）", PageNumber: 1, QuadPoints: samePageQuad},
		}},
	}

	MergeGeometry(primary, secondary)

	if got := primary[0].Blocks[0].QuadPoints[0]; got != 1 {
		t.Errorf("same-page candidate must win, got quad[0]=%v", got)
	}
}

func TestMergeGeometryCrossPageOnlyWhenNoSamePage(t *testing.T) {
	crossPageQuad := []float64{2, 0, 0, 0, 0, 0, 0, 0}

	primary := primaryPage(&Block{Text: "避難経路図", PageNumber: 1, QuadPoints: ZeroQuad()})
	secondary := []*Page{
		{PageNumber: 2, Blocks: []*Block{
			{Text: "避難経路図を各階に掲示", PageNumber: 2, QuadPoints: crossPageQuad},
		}},
	}

	if matched := MergeGeometry(primary, secondary); matched != 1 {
		t.Fatalf("cross-page fallback failed, matched = %d", matched)
	}
	if got := primary[0].Blocks[0].QuadPoints[0]; got != 2 {
		t.Errorf("expected cross-page quad, got quad[0]=%v", got)
	}
}

func TestMergeGeometryNoMatchKeepsZero(t *testing.T) {
	primary := primaryPage(&Block{Text: "エレベーター点検", PageNumber: 1, QuadPoints: ZeroQuad()})
	secondary := primaryPage(&Block{Text: "全く関係のない本文", PageNumber: 1, QuadPoints: []float64{1, 2, 3, 4, 5, 6, 7, 8}})

	if matched := MergeGeometry(primary, secondary); matched != 0 {
		t.Errorf("matched = %d, want 0", matched)
	}
	if !IsZeroQuad(primary[0].Blocks[0].QuadPoints) {
		t.Error("unmatched block must keep zero geometry")
	}
}

func TestMergeGeometryDoesNotTouchResolvedBlocks(t *testing.T) {
	existing := []float64{5, 5, 5, 5, 5, 5, 5, 5}
	primary := primaryPage(&Block{Text: "共用部分", PageNumber: 1, QuadPoints: existing})
	secondary := primaryPage(&Block{Text: "共用部分", PageNumber: 1, QuadPoints: []float64{1, 1, 1, 1, 1, 1, 1, 1}})

	MergeGeometry(primary, secondary)

	if primary[0].Blocks[0].QuadPoints[0] != 5 {
		t.Error("blocks that already carry geometry must not be overwritten")
	}
}
