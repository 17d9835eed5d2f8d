// Package display renders classification results into an output element.
package display

import (
	"fmt"

	"github.com/grainlens/uploader/internal/domain/entity"
)

// User facing messages
const (
	SuccessPrefix       = "Predicted Rice Type: "
	ErrorPrefix         = "Error: "
	GenericErrorMessage = "An error occurred while processing the image."
	NoPredictionMessage = "No prediction was returned."
)

// Output is the element results are written into.
// Set replaces the whole content.
type Output interface {
	Set(content string)
}

// Formatter turns a result into element content
type Formatter interface {
	Format(result entity.Result) string
}

// NewFormatter returns the formatter for a configured display format
func NewFormatter(format string) (Formatter, error) {
	switch format {
	case "", "text":
		return NewTextFormatter(), nil
	case "html":
		return HTMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown display format %q", format)
	}
}

// Message returns the plain text shown for a result. Transport failures
// always get the generic message; their detail belongs in the log.
func Message(result entity.Result) string {
	switch result.Kind {
	case entity.ResultSuccess:
		return SuccessPrefix + result.Label
	case entity.ResultApplicationError:
		return ErrorPrefix + result.Message
	case entity.ResultNoPrediction:
		return NoPredictionMessage
	default:
		return GenericErrorMessage
	}
}

// Display binds a formatter to an output element
type Display struct {
	formatter Formatter
	output    Output
}

// New creates a Display
func New(formatter Formatter, output Output) *Display {
	return &Display{formatter: formatter, output: output}
}

// Show overwrites the output element with the rendered result
func (d *Display) Show(result entity.Result) {
	d.output.Set(d.formatter.Format(result))
}
