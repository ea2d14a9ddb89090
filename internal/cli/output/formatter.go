package output

import "io"

// Format selects how command results are rendered. It is the value of
// the global --output flag.
type Format string

const (
	// FormatTable is the human-readable default.
	FormatTable Format = "table"

	// FormatJSON renders views as indented JSON for scripting.
	FormatJSON Format = "json"

	// FormatYAML renders nested structures; config show prefers it.
	FormatYAML Format = "yaml"
)

// Formatter renders a command's view to a writer.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter creates a formatter for the given format. Anything
// unrecognized falls back to the table so a typo still shows output;
// wide only affects the table renderer.
func NewFormatter(format Format, wide bool) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{Wide: wide}
	}
}
