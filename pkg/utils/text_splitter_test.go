package utils

import (
	"strings"
	"testing"
)

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("short text", 100, 10)
	if len(chunks) != 1 || chunks[0] != "short text" {
		t.Fatalf("expected single unchanged chunk, got %v", chunks)
	}
}

func TestSplitTextOverlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 10) // 100 chars
	chunks := SplitText(text, 40, 10)

	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}

	// consecutive chunks share the overlap region
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		tail := string(prev[len(prev)-10:])
		if !strings.HasPrefix(chunks[i], tail) {
			t.Errorf("chunk %d does not start with the previous chunk's tail", i)
		}
	}

	// no content lost: stitching chunks at the step boundary rebuilds the text
	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0])
	for i := 1; i < len(chunks); i++ {
		runes := []rune(chunks[i])
		if len(runes) > 10 {
			rebuilt.WriteString(string(runes[10:]))
		}
	}
	if rebuilt.String() != text {
		t.Error("rejoined chunks do not reproduce the original text")
	}
}

func TestSplitTextOverlapLargerThanChunk(t *testing.T) {
	text := strings.Repeat("x", 50)
	chunks := SplitText(text, 10, 20)

	// degenerate overlap must still terminate and cover the input
	if len(chunks) == 0 {
		t.Fatal("expected chunks, got none")
	}
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	if total < len(text) {
		t.Errorf("chunks cover %d chars, want at least %d", total, len(text))
	}
}

func TestSplitTextMultibyte(t *testing.T) {
	text := strings.Repeat("あ", 30)
	chunks := SplitText(text, 10, 2)

	for i, c := range chunks {
		for _, r := range c {
			if r != 'あ' {
				t.Fatalf("chunk %d contains a mangled rune: %q", i, c)
			}
		}
	}
}
