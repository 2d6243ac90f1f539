package chatstream

import (
	"encoding/json"
	"fmt"
	"io"
)

// Line-oriented stream format: every record is one `<type>:<payload>`
// line. Type '0' carries a text/JSON fragment (payload is a
// JSON-encoded string), 'd' the terminal finish metadata, 'e' an error.
const (
	RecordFragment = "0"
	RecordFinish   = "d"
	RecordError    = "e"
)

// GenerationMode names which generation call served a chat turn. The
// value is echoed in the X-Chat-API-Status response header.
type GenerationMode string

const (
	ModeStructured GenerationMode = "success-stream-object"
	ModeFreeText   GenerationMode = "success-stream-text"
)

// StreamWriter emits protocol records onto an output stream.
type StreamWriter struct {
	w io.Writer
}

func NewStreamWriter(w io.Writer) *StreamWriter {
	return &StreamWriter{w: w}
}

// WriteFragment sends one fragment record. The fragment is JSON-string
// encoded so newlines inside it cannot break the line framing.
func (s *StreamWriter) WriteFragment(fragment string) error {
	encoded, err := json.Marshal(fragment)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.w, "%s:%s\n", RecordFragment, encoded)
	return err
}

func (s *StreamWriter) WriteFinish(reason string) error {
	_, err := fmt.Fprintf(s.w, "%s:{\"finishReason\":%q}\n", RecordFinish, reason)
	return err
}

// WriteError sends an error record. Only a generic message goes onto
// the wire; detail stays in server logs.
func (s *StreamWriter) WriteError(message string) error {
	payload, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.w, "%s:%s\n", RecordError, payload)
	return err
}
