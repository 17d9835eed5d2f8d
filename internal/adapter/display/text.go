package display

import (
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/grainlens/uploader/internal/domain/entity"
)

// TextFormatter renders plain text, colored when the terminal supports it
type TextFormatter struct {
	success lipgloss.Style
	failure lipgloss.Style
}

// NewTextFormatter creates a TextFormatter with the default palette
func NewTextFormatter() TextFormatter {
	return TextFormatter{
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true), // Green
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),           // Red
	}
}

// Format implements Formatter
func (f TextFormatter) Format(result entity.Result) string {
	msg := Message(result)
	if result.IsOk() {
		return f.success.Render(msg)
	}
	return f.failure.Render(msg)
}

// WriterOutput is an output element backed by a stream, one line per write
type WriterOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterOutput creates a WriterOutput
func NewWriterOutput(w io.Writer) *WriterOutput {
	return &WriterOutput{w: w}
}

// Set implements Output
func (o *WriterOutput) Set(content string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, _ = io.WriteString(o.w, content+"\n")
}
