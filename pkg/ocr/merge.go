package ocr

import (
	"strings"
	"unicode"
)

// matchKeyLength bounds the normalized-text prefix used as match key.
// Layout and OCR segmentation rarely agree on block boundaries, so keys
// are prefixes, not whole blocks.
const matchKeyLength = 100

// MergeGeometry backfills zero-geometry blocks in the primary page tree
// (authoritative for text and structure) with quads from a secondary
// OCR pass (authoritative for geometry). Matching: exact same-page key
// lookup first, then a substring-containment scan across every
// secondary block, preferring a same-page hit, accepting a cross-page
// hit only when no same-page candidate exists. Unmatched blocks keep
// their zero quad. Returns the number of blocks that received geometry.
func MergeGeometry(primary []*Page, secondary []*Page) int {
	type secEntry struct {
		page int
		key  string
		quad []float64
	}

	exact := make(map[int]map[string][]float64)
	var entries []secEntry

	for _, page := range secondary {
		for _, block := range page.Blocks {
			if IsZeroQuad(block.QuadPoints) {
				continue
			}
			key := normalizeMatchKey(block.Text)
			if key == "" {
				continue
			}
			if exact[block.PageNumber] == nil {
				exact[block.PageNumber] = make(map[string][]float64)
			}
			if _, dup := exact[block.PageNumber][key]; !dup {
				exact[block.PageNumber][key] = block.QuadPoints
			}
			entries = append(entries, secEntry{page: block.PageNumber, key: key, quad: block.QuadPoints})
		}
	}

	matched := 0
	for _, page := range primary {
		for _, block := range page.Blocks {
			if !IsZeroQuad(block.QuadPoints) {
				continue
			}
			key := normalizeMatchKey(block.Text)
			if key == "" {
				continue
			}

			if quad, ok := exact[block.PageNumber][key]; ok {
				block.QuadPoints = quad
				matched++
				continue
			}

			// Containment scan: segmentation boundaries disagree
			// between the two passes, so either side may be the
			// longer one.
			var crossPage []float64
			found := false
			for _, entry := range entries {
				if !strings.Contains(entry.key, key) && !strings.Contains(key, entry.key) {
					continue
				}
				if entry.page == block.PageNumber {
					block.QuadPoints = entry.quad
					matched++
					found = true
					break
				}
				if crossPage == nil {
					crossPage = entry.quad
				}
			}
			if !found && crossPage != nil {
				block.QuadPoints = crossPage
				matched++
			}
		}
	}

	return matched
}

// normalizeMatchKey strips every whitespace rune (including full-width
// space), lowercases, and truncates to the key prefix length.
func normalizeMatchKey(text string) string {
	var sb strings.Builder
	count := 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		sb.WriteRune(unicode.ToLower(r))
		count++
		if count >= matchKeyLength {
			break
		}
	}
	return sb.String()
}
