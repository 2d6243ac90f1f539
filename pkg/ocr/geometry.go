package ocr

// GeometryMode selects the coordinate convention of the rendering
// target. Two conventions exist across the viewers this pipeline has
// fed; both stay selectable until integration settles on one.
type GeometryMode string

const (
	// GeometryModeYFlip converts into a bottom-left-origin space:
	// y' = (1 - y) * height, vertex order preserved.
	GeometryModeYFlip GeometryMode = "yflip"

	// GeometryModeDirect keeps the top-left origin (y' = y * height)
	// but swaps corners 2 and 3 for the viewer's traversal order.
	GeometryModeDirect GeometryMode = "direct"
)

// ConvertQuad maps four normalized vertices into an 8-element pixel
// quadrilateral for the given mode. Fewer than four vertices is treated
// as missing geometry and yields the all-zero quad, so one malformed
// block never fails a whole indexing run.
func ConvertQuad(vertices []*Vertex, width, height float64, mode GeometryMode) []float64 {
	if len(vertices) < 4 {
		return ZeroQuad()
	}

	quad := make([]float64, 8)
	for i := 0; i < 4; i++ {
		v := vertices[i]
		if v == nil {
			return ZeroQuad()
		}
		quad[i*2] = v.X * width
		if mode == GeometryModeYFlip {
			quad[i*2+1] = (1 - v.Y) * height
		} else {
			quad[i*2+1] = v.Y * height
		}
	}

	if mode == GeometryModeDirect {
		// corner order expected by the viewer differs from the
		// analysis service: swap corners 2 and 3
		quad[4], quad[6] = quad[6], quad[4]
		quad[5], quad[7] = quad[7], quad[5]
	}

	return quad
}
