package chatstream

import "testing"

func TestExtractSourceTagsDeduplication(t *testing.T) {
	text := "回答です [SourceID: abc-123, Page: 4, Block: 2] と、" +
		"繰り返しますが [SourceID: abc-123, Page: 4, Block: 2] の通りです。"

	sources := DedupeSources(ExtractSourceTags(text))

	if len(sources) != 1 {
		t.Fatalf("deduplicated count = %d, want 1", len(sources))
	}
	s := sources[0]
	if s.FileId != "abc-123" || s.Page != "4" || s.BlockId != "2" {
		t.Errorf("source = %+v", s)
	}
}

func TestExtractSourceTagsVariants(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Source
	}{
		{
			name: "full tag with brackets",
			text: "[SourceID: 550e8400-e29b-41d4-a716-446655440000, Page: 12, Block: 7]",
			want: Source{FileId: "550e8400-e29b-41d4-a716-446655440000", Page: "12", BlockId: "7"},
		},
		{
			name: "no brackets",
			text: "参考資料: SourceID: doc-1, Page: 3",
			want: Source{FileId: "doc-1", Page: "3"},
		},
		{
			name: "id only",
			text: "(SourceID: doc-2)",
			want: Source{FileId: "doc-2"},
		},
		{
			name: "page without block",
			text: "[SourceID: doc-3, Page: 9]",
			want: Source{FileId: "doc-3", Page: "9"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sources := ExtractSourceTags(tt.text)
			if len(sources) != 1 {
				t.Fatalf("match count = %d, want 1", len(sources))
			}
			if sources[0] != tt.want {
				t.Errorf("source = %+v, want %+v", sources[0], tt.want)
			}
		})
	}
}

func TestDedupeSourcesKeepsFirstOccurrence(t *testing.T) {
	sources := []Source{
		{FileId: "a", Page: "1", Citation: "抜粋", Title: "管理規約"},
		{FileId: "a", Page: "1"},
		{FileId: "a", Page: "2"},
		{FileId: ""},
	}

	out := DedupeSources(sources)
	if len(out) != 2 {
		t.Fatalf("count = %d, want 2", len(out))
	}
	if out[0].Citation != "抜粋" || out[0].Title != "管理規約" {
		t.Error("structured source metadata lost in dedupe")
	}
}

func TestDifferentPagesAreDistinctSources(t *testing.T) {
	text := "[SourceID: doc-1, Page: 1] ... [SourceID: doc-1, Page: 2]"
	if got := len(DedupeSources(ExtractSourceTags(text))); got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
}
