package ocr

import "encoding/json"

// Page is one PDF page in a document's structured tree.
// Dimensions are in pixels of the rendered page.
type Page struct {
	PageNumber int      `json:"page_number"`
	Width      float64  `json:"width"`
	Height     float64  `json:"height"`
	Blocks     []*Block `json:"blocks"`
}

// Block is one layout unit within a page. QuadPoints holds the four
// corner points as 8 pixel coordinates. An all-zero quad means no
// geometry could be resolved for this block; it is still indexed.
type Block struct {
	Text       string    `json:"text"`
	QuadPoints []float64 `json:"quadPoints"`
	PageNumber int       `json:"page_number"`
}

// SearchIndexEntry is the geometry-free projection of a Block. The
// ordered entry list is what retrieval consumes, not the page tree.
type SearchIndexEntry struct {
	Text       string `json:"text"`
	PageNumber int    `json:"page_number"`
}

// ZeroQuad returns the 8-zero quadrilateral used when no geometry is
// available. Callers must treat it as "no highlight", not a rectangle.
func ZeroQuad() []float64 {
	return make([]float64, 8)
}

// IsZeroQuad reports whether q carries no usable geometry.
func IsZeroQuad(q []float64) bool {
	if len(q) != 8 {
		return true
	}
	for _, v := range q {
		if v != 0 {
			return false
		}
	}
	return true
}

// Analysis response structures. These mirror the JSON shards the
// document-analysis service writes to object storage. Two shapes occur:
// a flat page/block model (Pages populated) and a nested layout tree
// (DocumentLayout populated).

type AnalysisDocument struct {
	Text           string          `json:"text"`
	Pages          []*AnalysisPage `json:"pages"`
	DocumentLayout *DocumentLayout `json:"documentLayout"`
}

type AnalysisPage struct {
	PageNumber int              `json:"pageNumber"`
	Dimension  *Dimension       `json:"dimension"`
	Blocks     []*AnalysisBlock `json:"blocks"`
}

type Dimension struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type AnalysisBlock struct {
	Layout *BlockLayout `json:"layout"`
}

type BlockLayout struct {
	TextAnchor   *TextAnchor   `json:"textAnchor"`
	BoundingPoly *BoundingPoly `json:"boundingPoly"`
}

type TextAnchor struct {
	TextSegments []*TextSegment `json:"textSegments"`
}

// TextSegment offsets index into AnalysisDocument.Text. The service
// encodes them as JSON strings, hence json.Number.
type TextSegment struct {
	StartIndex json.Number `json:"startIndex"`
	EndIndex   json.Number `json:"endIndex"`
}

type DocumentLayout struct {
	Blocks []*LayoutBlock `json:"blocks"`
}

// LayoutBlock is one node of the nested layout tree. Exactly one of
// TextBlock, TableBlock or ListBlock is set; all three may nest further
// LayoutBlocks recursively.
type LayoutBlock struct {
	BlockId      string        `json:"blockId"`
	TextBlock    *TextBlock    `json:"textBlock"`
	TableBlock   *TableBlock   `json:"tableBlock"`
	ListBlock    *ListBlock    `json:"listBlock"`
	PageSpan     *PageSpan     `json:"pageSpan"`
	BoundingPoly *BoundingPoly `json:"boundingPoly"`
	PageLayouts  []*PageLayout `json:"pageLayouts"`
	BoundingBox  *BoundingBox  `json:"boundingBox"`
}

type TextBlock struct {
	Text   string         `json:"text"`
	Type   string         `json:"type"`
	Blocks []*LayoutBlock `json:"blocks"`
}

type TableBlock struct {
	HeaderRows []*TableRow `json:"headerRows"`
	BodyRows   []*TableRow `json:"bodyRows"`
}

type TableRow struct {
	Cells []*TableCell `json:"cells"`
}

type TableCell struct {
	Blocks []*LayoutBlock `json:"blocks"`
}

type ListBlock struct {
	ListEntries []*ListEntry `json:"listEntries"`
}

type ListEntry struct {
	Blocks []*LayoutBlock `json:"blocks"`
}

type PageSpan struct {
	PageStart int `json:"pageStart"`
	PageEnd   int `json:"pageEnd"`
}

type PageLayout struct {
	PageNumber   int           `json:"pageNumber"`
	BoundingPoly *BoundingPoly `json:"boundingPoly"`
}

type BoundingPoly struct {
	Vertices           []*Vertex `json:"vertices"`
	NormalizedVertices []*Vertex `json:"normalizedVertices"`
}

// Vertex is a normalized (0..1) coordinate with top-left origin.
type Vertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox is the last-resort geometry source: an axis-aligned
// normalized rectangle.
type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}
