package chatstream

import (
	"bytes"
	"encoding/json"
	"testing"
)

func buildStructuredStream(t *testing.T, object string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := NewStreamWriter(&buf)

	// fragment the object in uneven pieces, as the producer does
	for i := 0; i < len(object); i += 7 {
		end := i + 7
		if end > len(object) {
			end = len(object)
		}
		if err := w.WriteFragment(object[i:end]); err != nil {
			t.Fatalf("WriteFragment: %v", err)
		}
	}
	if err := w.WriteFinish("stop"); err != nil {
		t.Fatalf("WriteFinish: %v", err)
	}
	return buf.Bytes()
}

const testObject = `{"answer":"ゴミ出しは火曜日です。\n詳しくは規約をご覧ください。","sources":[{"fileId":"abc-123","page":"4","blockId":"2"}]}`

// Feeding the identical byte stream in arbitrary chunk sizes must
// reconstruct the same answer as a single-shot feed, including chunks
// that split lines mid-record.
func TestAccumulatorChunkBoundaryInvariance(t *testing.T) {
	stream := buildStructuredStream(t, testObject)

	oneShot := NewAccumulator(ModeStructured)
	oneShot.Feed(stream)
	oneShot.Close()
	want := oneShot.Finalize()

	for _, chunkSize := range []int{1, 2, 3, 5, 11, 64, len(stream)} {
		acc := NewAccumulator(ModeStructured)
		for i := 0; i < len(stream); i += chunkSize {
			end := i + chunkSize
			if end > len(stream) {
				end = len(stream)
			}
			acc.Feed(stream[i:end])
		}
		acc.Close()
		got := acc.Finalize()

		if got.Answer != want.Answer {
			t.Errorf("chunkSize=%d: answer %q != %q", chunkSize, got.Answer, want.Answer)
		}
		if len(got.Sources) != len(want.Sources) {
			t.Errorf("chunkSize=%d: sources %d != %d", chunkSize, len(got.Sources), len(want.Sources))
		}
	}

	if oneShot.FinishReason() != "stop" {
		t.Errorf("finishReason = %q, want stop", oneShot.FinishReason())
	}
}

func TestAccumulatorPartialAnswer(t *testing.T) {
	acc := NewAccumulator(ModeStructured)

	feedFragment := func(s string) {
		encoded, _ := json.Marshal(s)
		acc.Feed([]byte("0:" + string(encoded) + "\n"))
	}

	feedFragment(`{"answer":"管理費は`)
	if got := acc.PartialAnswer(); got != "管理費は" {
		t.Errorf("partial answer = %q", got)
	}

	feedFragment(`月額15000円\nです`)
	if got := acc.PartialAnswer(); got != "管理費は月額15000円\nです" {
		t.Errorf("partial answer after escape = %q", got)
	}

	// object still unterminated: full parse would fail, regex must not
	feedFragment(`","sources":[`)
	if got := acc.PartialAnswer(); got != "管理費は月額15000円\nです" {
		t.Errorf("partial answer after field close = %q", got)
	}
}

func TestDecodeFragmentFallback(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"valid json string", `"hello\nworld"`, "hello\nworld"},
		{"unterminated string", `"broken \"quote`, `broken "quote`},
		{"bare text", `plain`, `plain`},
		{"escaped tab and cr", `"a\tb\rc`, "a\tb\rc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeFragment(tt.payload); got != tt.want {
				t.Errorf("decodeFragment(%q) = %q, want %q", tt.payload, got, tt.want)
			}
		})
	}
}

func TestAccumulatorErrorRecord(t *testing.T) {
	acc := NewAccumulator(ModeStructured)
	acc.Feed([]byte("e:{\"message\":\"generation failed\"}\n"))

	if acc.ErrMessage() != "generation failed" {
		t.Errorf("errMessage = %q", acc.ErrMessage())
	}
}

func TestFinalizeRepairsBrokenJSON(t *testing.T) {
	acc := NewAccumulator(ModeStructured)
	wrapped := "```json\n" + testObject + "\n```"
	encoded, _ := json.Marshal(wrapped)
	acc.Feed([]byte("0:" + string(encoded) + "\n"))

	res := acc.Finalize()
	if res.Answer == "" {
		t.Fatal("repair parse produced empty answer")
	}
	if len(res.Sources) != 1 || res.Sources[0].FileId != "abc-123" {
		t.Errorf("repair parse lost sources: %+v", res.Sources)
	}
}

func TestFinalizeRegexLastResort(t *testing.T) {
	acc := NewAccumulator(ModeStructured)
	// truncated mid-stream: no closing brace at all
	encoded, _ := json.Marshal(`{"answer":"総会は5月 [SourceID: doc-9, Page: 2]`)
	acc.Feed([]byte("0:" + string(encoded) + "\n"))

	res := acc.Finalize()
	if res.Answer != "総会は5月 [SourceID: doc-9, Page: 2]" {
		t.Errorf("regex fallback answer = %q", res.Answer)
	}
	if len(res.Sources) != 1 || res.Sources[0].FileId != "doc-9" || res.Sources[0].Page != "2" {
		t.Errorf("inline tag not recovered: %+v", res.Sources)
	}
}

func TestFinalizeFreeTextMode(t *testing.T) {
	acc := NewAccumulator(ModeFreeText)
	encoded, _ := json.Marshal("規約によると [SourceID: f-1, Page: 1, Block: 3] の通りです。")
	acc.Feed([]byte("0:" + string(encoded) + "\n"))

	res := acc.Finalize()
	if len(res.Sources) != 1 || res.Sources[0].BlockId != "3" {
		t.Errorf("free-text citation extraction failed: %+v", res.Sources)
	}
}
