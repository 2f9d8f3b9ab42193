package export

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSONExporter pretty-prints values with non-ASCII text and HTML characters left literal.
type JSONExporter struct {
	indent string
}

// NewJSONExporter builds a JSON exporter indenting with two spaces.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{indent: "  "}
}

// Render encodes v.
func (e *JSONExporter) Render(v interface{}) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", e.indent)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
