package output

import (
	"fmt"
	"io"
	"strconv"
)

// Format represents the output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formatter formats a Result for output.
type Formatter interface {
	Format(w io.Writer, r Result) error
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TextFormatter{}
	}
}

// ValidFormat reports whether format names a known formatter.
func ValidFormat(format string) bool {
	switch Format(format) {
	case FormatText, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// TextFormatter prints one human-readable line per reply.
type TextFormatter struct{}

// Format writes r as a single line.
func (f *TextFormatter) Format(w io.Writer, r Result) error {
	var line string
	switch r.Kind {
	case KindNil:
		line = "(nil)"
	case KindInteger:
		line = "(integer) " + strconv.FormatUint(*r.Integer, 10)
	case KindError:
		line = "(error) " + r.Message
		if r.Code != "" {
			line = "(error) " + r.Code + " " + r.Message
		}
	default:
		line = strconv.Quote(r.Value)
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
