package chatstream

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// answerPattern pulls the in-progress "answer" field value out of an
// accumulating, possibly incomplete JSON buffer. The capture stops at
// the first unescaped quote, so it works on truncated objects too.
var answerPattern = regexp.MustCompile(`"answer"\s*:\s*"((?:[^"\\]|\\.)*)`)

// Accumulator consumes the byte stream of protocol records. Reads are
// not assumed to align with record boundaries: any trailing partial
// line is buffered until the next Feed completes it.
type Accumulator struct {
	Mode GenerationMode

	partial      []byte
	body         strings.Builder
	finishReason string
	errMessage   string
}

func NewAccumulator(mode GenerationMode) *Accumulator {
	return &Accumulator{Mode: mode}
}

// Feed consumes one read's worth of bytes.
func (a *Accumulator) Feed(p []byte) {
	a.partial = append(a.partial, p...)
	for {
		i := bytes.IndexByte(a.partial, '\n')
		if i < 0 {
			return
		}
		line := string(a.partial[:i])
		a.partial = a.partial[i+1:]
		a.processLine(line)
	}
}

// Close flushes a final line that arrived without a trailing newline.
func (a *Accumulator) Close() {
	if len(a.partial) > 0 {
		a.processLine(string(a.partial))
		a.partial = nil
	}
}

func (a *Accumulator) processLine(line string) {
	if len(line) < 2 || line[1] != ':' {
		return
	}
	payload := line[2:]
	switch string(line[0]) {
	case RecordFragment:
		a.body.WriteString(decodeFragment(payload))
	case RecordFinish:
		var meta struct {
			FinishReason string `json:"finishReason"`
		}
		if err := json.Unmarshal([]byte(payload), &meta); err == nil {
			a.finishReason = meta.FinishReason
		}
	case RecordError:
		var meta struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal([]byte(payload), &meta); err == nil {
			a.errMessage = meta.Message
		} else {
			a.errMessage = payload
		}
	}
}

// decodeFragment recovers the fragment text from its payload. The
// payload should be a JSON-encoded string; when that parse fails the
// quotes are stripped and the common escapes undone by hand, so a
// slightly malformed producer still renders.
func decodeFragment(payload string) string {
	var s string
	if err := json.Unmarshal([]byte(payload), &s); err == nil {
		return s
	}
	s = strings.TrimPrefix(payload, `"`)
	s = strings.TrimSuffix(s, `"`)
	return unescape(s)
}

func unescape(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			sb.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '"':
			sb.WriteByte('"')
		case '\\':
			sb.WriteByte('\\')
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// Body returns the raw accumulated fragment text: the JSON object so
// far in structured mode, plain answer text in free-text mode.
func (a *Accumulator) Body() string {
	return a.body.String()
}

func (a *Accumulator) FinishReason() string { return a.finishReason }
func (a *Accumulator) ErrMessage() string   { return a.errMessage }

// PartialAnswer extracts the in-progress answer for progressive
// rendering. In structured mode the accumulated buffer is incomplete
// JSON for most of the stream, so a cheap regex pass runs on every
// fragment instead of a real parse.
func (a *Accumulator) PartialAnswer() string {
	if a.Mode == ModeFreeText {
		return a.body.String()
	}
	m := answerPattern.FindStringSubmatch(a.body.String())
	if m == nil {
		return ""
	}
	return unescape(m[1])
}

