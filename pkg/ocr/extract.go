package ocr

import (
	"log"
	"sort"
	"strings"
)

const (
	defaultPageWidth  = 1000
	defaultPageHeight = 1000
)

// Extractor turns one analysis response document into an ordered page
// list, independent of which response shape the service returned.
type Extractor struct {
	Mode   GeometryMode
	Logger *log.Logger
}

func NewExtractor(mode GeometryMode, logger *log.Logger) *Extractor {
	return &Extractor{Mode: mode, Logger: logger}
}

// Extract detects the response shape once and dispatches. An
// unrecognized shape returns an empty page list; the caller falls back
// to whatever raw text was extracted.
func (e *Extractor) Extract(doc *AnalysisDocument) []*Page {
	if doc == nil {
		return nil
	}
	// Nested responses may still carry a pages list for dimensions
	// only, so the tree root is checked first.
	if doc.DocumentLayout != nil && len(doc.DocumentLayout.Blocks) > 0 {
		return e.extractNested(doc)
	}
	if len(doc.Pages) > 0 {
		return e.extractFlat(doc)
	}
	e.warnf("unrecognized analysis response shape, no structure extracted")
	return nil
}

// extractFlat handles the page/block model: block text is a substring
// of the document's full text keyed by anchor offsets, geometry comes
// straight from the block's bounding polygon.
func (e *Extractor) extractFlat(doc *AnalysisDocument) []*Page {
	pages := make([]*Page, 0, len(doc.Pages))

	for i, ap := range doc.Pages {
		pageNumber := ap.PageNumber
		if pageNumber == 0 {
			pageNumber = i + 1
		}

		width, height := float64(defaultPageWidth), float64(defaultPageHeight)
		if ap.Dimension != nil && ap.Dimension.Width > 0 && ap.Dimension.Height > 0 {
			width = ap.Dimension.Width
			height = ap.Dimension.Height
		}

		page := &Page{
			PageNumber: pageNumber,
			Width:      width,
			Height:     height,
			Blocks:     make([]*Block, 0, len(ap.Blocks)),
		}

		for _, ab := range ap.Blocks {
			if ab == nil || ab.Layout == nil {
				continue
			}
			text := anchorText(doc.Text, ab.Layout.TextAnchor)
			quad := ZeroQuad()
			if ab.Layout.BoundingPoly != nil {
				quad = ConvertQuad(ab.Layout.BoundingPoly.NormalizedVertices, width, height, e.Mode)
			}
			page.Blocks = append(page.Blocks, &Block{
				Text:       text,
				QuadPoints: quad,
				PageNumber: pageNumber,
			})
		}

		pages = append(pages, page)
	}

	return pages
}

// extractNested handles the layout-tree model: every top-level tree
// node becomes one block whose text is the depth-first concatenation of
// its leaf text nodes. Blocks are grouped into synthetic pages by their
// page-span start.
func (e *Extractor) extractNested(doc *AnalysisDocument) []*Page {
	dims := pageDimensions(doc)
	byPage := make(map[int][]*Block)
	var pageOrder []int

	for _, lb := range doc.DocumentLayout.Blocks {
		if lb == nil {
			continue
		}
		text := strings.TrimSpace(collectText(lb))
		if text == "" {
			continue
		}

		pageNumber := 1
		if lb.PageSpan != nil && lb.PageSpan.PageStart > 0 {
			pageNumber = lb.PageSpan.PageStart
		}

		width, height := float64(defaultPageWidth), float64(defaultPageHeight)
		if d, ok := dims[pageNumber]; ok {
			width, height = d.Width, d.Height
		}

		quad := ZeroQuad()
		if vertices := resolveGeometry(lb); vertices != nil {
			quad = ConvertQuad(vertices, width, height, e.Mode)
		} else {
			e.warnf("no geometry resolved for layout block %q on page %d", lb.BlockId, pageNumber)
		}

		if _, seen := byPage[pageNumber]; !seen {
			pageOrder = append(pageOrder, pageNumber)
		}
		byPage[pageNumber] = append(byPage[pageNumber], &Block{
			Text:       text,
			QuadPoints: quad,
			PageNumber: pageNumber,
		})
	}

	sort.Ints(pageOrder)

	pages := make([]*Page, 0, len(pageOrder))
	for _, n := range pageOrder {
		width, height := float64(defaultPageWidth), float64(defaultPageHeight)
		if d, ok := dims[n]; ok {
			width, height = d.Width, d.Height
		}
		pages = append(pages, &Page{
			PageNumber: n,
			Width:      width,
			Height:     height,
			Blocks:     byPage[n],
		})
	}

	return pages
}

// geometryCandidates is the ordered fallback chain for nested-shape
// geometry. First extractor returning vertices wins.
var geometryCandidates = []func(*LayoutBlock) []*Vertex{
	directPolygonVertices,
	pageLayoutVertices,
	boundingBoxVertices,
}

func resolveGeometry(lb *LayoutBlock) []*Vertex {
	for _, candidate := range geometryCandidates {
		if vertices := candidate(lb); len(vertices) >= 4 {
			return vertices
		}
	}
	return nil
}

func directPolygonVertices(lb *LayoutBlock) []*Vertex {
	if lb.BoundingPoly == nil {
		return nil
	}
	return lb.BoundingPoly.NormalizedVertices
}

func pageLayoutVertices(lb *LayoutBlock) []*Vertex {
	for _, pl := range lb.PageLayouts {
		if pl != nil && pl.BoundingPoly != nil && len(pl.BoundingPoly.NormalizedVertices) >= 4 {
			return pl.BoundingPoly.NormalizedVertices
		}
	}
	return nil
}

func boundingBoxVertices(lb *LayoutBlock) []*Vertex {
	bb := lb.BoundingBox
	if bb == nil || bb.Right <= bb.Left || bb.Bottom <= bb.Top {
		return nil
	}
	return []*Vertex{
		{X: bb.Left, Y: bb.Top},
		{X: bb.Right, Y: bb.Top},
		{X: bb.Right, Y: bb.Bottom},
		{X: bb.Left, Y: bb.Bottom},
	}
}

// collectText walks one layout node depth-first in document order and
// concatenates every leaf text node.
func collectText(lb *LayoutBlock) string {
	if lb == nil {
		return ""
	}

	var sb strings.Builder

	appendText := func(s string) {
		if s == "" {
			return
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(s)
	}

	if tb := lb.TextBlock; tb != nil {
		appendText(tb.Text)
		for _, child := range tb.Blocks {
			appendText(collectText(child))
		}
	}

	if tbl := lb.TableBlock; tbl != nil {
		for _, row := range append(tbl.HeaderRows, tbl.BodyRows...) {
			if row == nil {
				continue
			}
			for _, cell := range row.Cells {
				if cell == nil {
					continue
				}
				for _, child := range cell.Blocks {
					appendText(collectText(child))
				}
			}
		}
	}

	if lst := lb.ListBlock; lst != nil {
		for _, entry := range lst.ListEntries {
			if entry == nil {
				continue
			}
			for _, child := range entry.Blocks {
				appendText(collectText(child))
			}
		}
	}

	return sb.String()
}

// anchorText slices the document full text by the anchor's segments,
// concatenated in order. Out-of-range offsets clamp rather than panic.
func anchorText(fullText string, anchor *TextAnchor) string {
	if anchor == nil || len(anchor.TextSegments) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, seg := range anchor.TextSegments {
		if seg == nil {
			continue
		}
		start, _ := seg.StartIndex.Int64()
		end, _ := seg.EndIndex.Int64()
		if start < 0 {
			start = 0
		}
		if end > int64(len(fullText)) {
			end = int64(len(fullText))
		}
		if start >= end {
			continue
		}
		sb.WriteString(fullText[start:end])
	}
	return sb.String()
}

// FullText concatenates all block texts in document order; this is what
// gets written into the document's ocr_text column.
func FullText(pages []*Page) string {
	var sb strings.Builder
	for _, page := range pages {
		for _, block := range page.Blocks {
			if block.Text == "" {
				continue
			}
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

// FlattenBlocks returns all blocks in document order. Citation block
// indexes refer to positions in this sequence.
func FlattenBlocks(pages []*Page) []*Block {
	var blocks []*Block
	for _, page := range pages {
		blocks = append(blocks, page.Blocks...)
	}
	return blocks
}

func pageDimensions(doc *AnalysisDocument) map[int]*Dimension {
	dims := make(map[int]*Dimension)
	for i, ap := range doc.Pages {
		if ap == nil || ap.Dimension == nil {
			continue
		}
		n := ap.PageNumber
		if n == 0 {
			n = i + 1
		}
		dims[n] = ap.Dimension
	}
	return dims
}

func (e *Extractor) warnf(format string, args ...interface{}) {
	if e.Logger != nil {
		e.Logger.Printf("[WARN] "+format, args...)
	}
}
