package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter renders views as indented JSON.
type JSONFormatter struct{}

// Format writes data as two-space indented JSON with a trailing
// newline. HTML escaping is off so item and area identifiers come out
// as written.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(data)
}
