package ocr

import "sort"

// DefaultIndexCap bounds the flattened search index. The index is what
// gets embedded or sent as model context, so it must stay small across
// many documents.
const DefaultIndexCap = 5000

// BuildSearchIndex flattens the merged page tree into ordered
// (text, page) entries: pages ascending, blocks within a page in their
// original order, geometry dropped, capped at max entries. A max of
// zero or less falls back to DefaultIndexCap.
func BuildSearchIndex(pages []*Page, max int) []SearchIndexEntry {
	if max <= 0 {
		max = DefaultIndexCap
	}

	ordered := make([]*Page, len(pages))
	copy(ordered, pages)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PageNumber < ordered[j].PageNumber
	})

	entries := make([]SearchIndexEntry, 0, max)
	for _, page := range ordered {
		for _, block := range page.Blocks {
			if len(entries) >= max {
				return entries
			}
			entries = append(entries, SearchIndexEntry{
				Text:       block.Text,
				PageNumber: block.PageNumber,
			})
		}
	}
	return entries
}
