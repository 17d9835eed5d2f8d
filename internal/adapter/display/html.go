package display

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/grainlens/uploader/internal/domain/entity"
)

// CSS classes set on the rendered paragraph
const (
	ClassSuccess = "result-success"
	ClassError   = "result-error"
)

// HTMLFormatter renders a result as a small escaped HTML fragment
type HTMLFormatter struct{}

// Format implements Formatter
func (HTMLFormatter) Format(result entity.Result) string {
	class := ClassError
	if result.IsOk() {
		class = ClassSuccess
	}

	p := &html.Node{
		Type:     html.ElementNode,
		Data:     "p",
		DataAtom: atom.P,
		Attr:     []html.Attribute{{Key: "class", Val: class}},
	}
	p.AppendChild(&html.Node{Type: html.TextNode, Data: Message(result)})

	var b strings.Builder
	if err := html.Render(&b, p); err != nil {
		// strings.Builder never fails; keep the text.
		return html.EscapeString(Message(result))
	}
	return b.String()
}
