package ocr

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode"
)

func flatFixture() *AnalysisDocument {
	return &AnalysisDocument{
		Text: "管理組合の総会は毎年5月に開催されます。駐輪場の利用料は月300円です。",
		Pages: []*AnalysisPage{
			{
				PageNumber: 1,
				Dimension:  &Dimension{Width: 595, Height: 841},
				Blocks: []*AnalysisBlock{
					{Layout: &BlockLayout{
						TextAnchor: &TextAnchor{TextSegments: []*TextSegment{
							{StartIndex: json.Number("0"), EndIndex: json.Number("58")},
						}},
						BoundingPoly: &BoundingPoly{NormalizedVertices: []*Vertex{
							{X: 0.1, Y: 0.1}, {X: 0.9, Y: 0.1}, {X: 0.9, Y: 0.2}, {X: 0.1, Y: 0.2},
						}},
					}},
					{Layout: &BlockLayout{
						TextAnchor: &TextAnchor{TextSegments: []*TextSegment{
							{StartIndex: json.Number("58"), EndIndex: json.Number("100")},
						}},
						BoundingPoly: &BoundingPoly{NormalizedVertices: []*Vertex{
							{X: 0.1, Y: 0.3}, {X: 0.9, Y: 0.3}, {X: 0.9, Y: 0.4}, {X: 0.1, Y: 0.4},
						}},
					}},
				},
			},
		},
	}
}

func nestedFixture() *AnalysisDocument {
	return &AnalysisDocument{
		Pages: []*AnalysisPage{
			{PageNumber: 1, Dimension: &Dimension{Width: 595, Height: 841}},
		},
		DocumentLayout: &DocumentLayout{
			Blocks: []*LayoutBlock{
				{
					BlockId:  "b1",
					PageSpan: &PageSpan{PageStart: 1, PageEnd: 1},
					TextBlock: &TextBlock{
						Text: "管理組合の総会は毎年5月に開催されます。",
					},
					BoundingPoly: &BoundingPoly{NormalizedVertices: []*Vertex{
						{X: 0.1, Y: 0.1}, {X: 0.9, Y: 0.1}, {X: 0.9, Y: 0.2}, {X: 0.1, Y: 0.2},
					}},
				},
				{
					BlockId:  "b2",
					PageSpan: &PageSpan{PageStart: 1, PageEnd: 1},
					TextBlock: &TextBlock{
						Text: "駐輪場の利用料は月300円です。",
					},
					PageLayouts: []*PageLayout{
						{PageNumber: 1, BoundingPoly: &BoundingPoly{NormalizedVertices: []*Vertex{
							{X: 0.1, Y: 0.3}, {X: 0.9, Y: 0.3}, {X: 0.9, Y: 0.4}, {X: 0.1, Y: 0.4},
						}}},
					},
				},
			},
		},
	}
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Both response shapes encoding the same logical text must extract to
// the same concatenated text, whitespace aside.
func TestExtractShapeAgnostic(t *testing.T) {
	extractor := NewExtractor(GeometryModeDirect, nil)

	flat := extractor.Extract(flatFixture())
	nested := extractor.Extract(nestedFixture())

	if len(flat) != 1 || len(nested) != 1 {
		t.Fatalf("expected 1 page per shape, got flat=%d nested=%d", len(flat), len(nested))
	}

	if got, want := stripSpace(FullText(flat)), stripSpace(FullText(nested)); got != want {
		t.Errorf("flat text %q != nested text %q", got, want)
	}
}

func TestExtractNestedRecursion(t *testing.T) {
	doc := &AnalysisDocument{
		DocumentLayout: &DocumentLayout{
			Blocks: []*LayoutBlock{
				{
					BlockId: "root",
					TextBlock: &TextBlock{
						Text: "修繕積立金",
						Blocks: []*LayoutBlock{
							{TableBlock: &TableBlock{
								BodyRows: []*TableRow{
									{Cells: []*TableCell{
										{Blocks: []*LayoutBlock{{TextBlock: &TextBlock{Text: "一戸あたり"}}}},
										{Blocks: []*LayoutBlock{{TextBlock: &TextBlock{Text: "月12000円"}}}},
									}},
								},
							}},
							{ListBlock: &ListBlock{
								ListEntries: []*ListEntry{
									{Blocks: []*LayoutBlock{{TextBlock: &TextBlock{Text: "値上げは総会決議による"}}}},
								},
							}},
						},
					},
				},
			},
		},
	}

	pages := NewExtractor(GeometryModeDirect, nil).Extract(doc)
	if len(pages) != 1 {
		t.Fatalf("expected 1 synthetic page, got %d", len(pages))
	}

	page := pages[0]
	if page.PageNumber != 1 {
		t.Errorf("page span absent, expected default page 1, got %d", page.PageNumber)
	}
	if page.Width != defaultPageWidth || page.Height != defaultPageHeight {
		t.Errorf("expected default dimensions, got %vx%v", page.Width, page.Height)
	}
	if len(page.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(page.Blocks))
	}

	text := page.Blocks[0].Text
	for _, fragment := range []string{"修繕積立金", "一戸あたり", "月12000円", "値上げは総会決議による"} {
		if !strings.Contains(text, fragment) {
			t.Errorf("assembled text missing %q: %q", fragment, text)
		}
	}

	// No geometry source anywhere in the tree: block is kept with a
	// zero quad, never dropped.
	if !IsZeroQuad(page.Blocks[0].QuadPoints) {
		t.Errorf("expected zero quad, got %v", page.Blocks[0].QuadPoints)
	}
}

func TestExtractGeometryFallbackChain(t *testing.T) {
	base := func() *LayoutBlock {
		return &LayoutBlock{
			TextBlock: &TextBlock{Text: "text"},
			BoundingPoly: &BoundingPoly{NormalizedVertices: []*Vertex{
				{X: 0.1, Y: 0.1}, {X: 0.2, Y: 0.1}, {X: 0.2, Y: 0.2}, {X: 0.1, Y: 0.2},
			}},
			PageLayouts: []*PageLayout{
				{BoundingPoly: &BoundingPoly{NormalizedVertices: []*Vertex{
					{X: 0.3, Y: 0.3}, {X: 0.4, Y: 0.3}, {X: 0.4, Y: 0.4}, {X: 0.3, Y: 0.4},
				}}},
			},
			BoundingBox: &BoundingBox{Left: 0.5, Top: 0.5, Right: 0.6, Bottom: 0.6},
		}
	}

	lb := base()
	if v := resolveGeometry(lb); v[0].X != 0.1 {
		t.Errorf("direct polygon should win first, got %v", v[0])
	}

	lb = base()
	lb.BoundingPoly = nil
	if v := resolveGeometry(lb); v[0].X != 0.3 {
		t.Errorf("page layout polygon should win second, got %v", v[0])
	}

	lb = base()
	lb.BoundingPoly = nil
	lb.PageLayouts = nil
	if v := resolveGeometry(lb); v[0].X != 0.5 {
		t.Errorf("bounding box should win last, got %v", v[0])
	}

	lb = base()
	lb.BoundingPoly = nil
	lb.PageLayouts = nil
	lb.BoundingBox = nil
	if v := resolveGeometry(lb); v != nil {
		t.Errorf("no source should yield nil, got %v", v)
	}

	// A box collapsed in one axis has no area; it must be rejected,
	// not presented as real geometry.
	lb = base()
	lb.BoundingPoly = nil
	lb.PageLayouts = nil
	lb.BoundingBox = &BoundingBox{Left: 0.5, Top: 0.5, Right: 0.6, Bottom: 0.5}
	if v := resolveGeometry(lb); v != nil {
		t.Errorf("height-collapsed box should yield nil, got %v", v)
	}

	lb = base()
	lb.BoundingPoly = nil
	lb.PageLayouts = nil
	lb.BoundingBox = &BoundingBox{Left: 0.5, Top: 0.5, Right: 0.5, Bottom: 0.6}
	if v := resolveGeometry(lb); v != nil {
		t.Errorf("width-collapsed box should yield nil, got %v", v)
	}
}

func TestExtractUnrecognizedShape(t *testing.T) {
	pages := NewExtractor(GeometryModeDirect, nil).Extract(&AnalysisDocument{Text: "raw text only"})
	if len(pages) != 0 {
		t.Errorf("unrecognized shape must produce empty page list, got %d pages", len(pages))
	}
}
