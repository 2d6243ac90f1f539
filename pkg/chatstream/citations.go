package chatstream

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Source is one citation attached to an assistant turn.
type Source struct {
	FileId   string `json:"fileId"`
	Page     string `json:"page,omitempty"`
	BlockId  string `json:"blockId,omitempty"`
	Citation string `json:"citation,omitempty"`
	Title    string `json:"title,omitempty"`
}

// FinalResponse is the settled result of one streamed generation.
type FinalResponse struct {
	Answer  string
	Sources []Source
}

// structuredResponse is the schema the structured generation call is
// instructed to emit.
type structuredResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// sourceTagPattern matches the provenance tag the retrieval context
// embeds and the model is told to copy verbatim:
// [SourceID: <id>, Page: <n>, Block: <n>]. Brackets are optional, field
// order is fixed, Page and Block are individually optional.
var sourceTagPattern = regexp.MustCompile(`\[?\s*SourceID:\s*([0-9A-Za-z][0-9A-Za-z\-_]*)(?:\s*,\s*Page:\s*([0-9]+))?(?:\s*,\s*Block:\s*([0-9]+))?\s*\]?`)

// ExtractSourceTags scans text for every provenance tag occurrence.
// The result is not deduplicated; see DedupeSources.
func ExtractSourceTags(text string) []Source {
	matches := sourceTagPattern.FindAllStringSubmatch(text, -1)
	sources := make([]Source, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, Source{
			FileId:  m[1],
			Page:    m[2],
			BlockId: m[3],
		})
	}
	return sources
}

// DedupeSources removes duplicates by (fileId, page, blockId), keeping
// the first occurrence so structured sources (which may carry citation
// text and a title) win over bare inline tags.
func DedupeSources(sources []Source) []Source {
	seen := make(map[string]bool)
	out := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s.FileId == "" {
			continue
		}
		key := s.FileId + "|" + s.Page + "|" + s.BlockId
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

// Finalize settles the accumulated stream into the final answer and
// citation list. Structured mode: full JSON parse, then a brace-trim
// repair retry, then the same regex techniques used for partial
// rendering. Either way the entire answer text is scanned for inline
// provenance tags, because models mention sources inline without
// always repeating them in a structured list.
func (a *Accumulator) Finalize() *FinalResponse {
	body := a.body.String()

	res := &FinalResponse{}
	if a.Mode == ModeFreeText {
		res.Answer = body
	} else {
		res.Answer, res.Sources = parseStructured(body)
	}

	res.Sources = append(res.Sources, ExtractSourceTags(res.Answer)...)
	res.Sources = DedupeSources(res.Sources)
	return res
}

func parseStructured(body string) (string, []Source) {
	var sr structuredResponse
	if err := json.Unmarshal([]byte(body), &sr); err == nil {
		return sr.Answer, sr.Sources
	}

	// repair: models occasionally wrap the object in prose or code
	// fences; trim to the outermost braces and retry
	if start, end := strings.Index(body, "{"), strings.LastIndex(body, "}"); start >= 0 && end > start {
		if err := json.Unmarshal([]byte(body[start:end+1]), &sr); err == nil {
			return sr.Answer, sr.Sources
		}
	}

	// last resort: regex-extract the answer from the broken buffer
	if m := answerPattern.FindStringSubmatch(body); m != nil {
		return unescape(m[1]), nil
	}
	return "", nil
}
