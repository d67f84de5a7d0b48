package format

import (
	"html"
	"strings"
)

// RenderHTML renders blocks as the HTML fragment the web client displays:
// sections as <div class="section"> with an <h4> label, lists as <ul>, and
// paragraphs as <p>. Text is escaped.
func RenderHTML(blocks []Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		switch b.Kind {
		case BlockHeader:
			sb.WriteString(`<div class="section">`)
			writeSpans(&sb, b.Spans)
			sb.WriteString(`</div>`)
		case BlockList:
			sb.WriteString("<ul>")
			for _, item := range b.Items {
				sb.WriteString("<li>")
				writeSpans(&sb, item)
				sb.WriteString("</li>")
			}
			sb.WriteString("</ul>")
		case BlockParagraph:
			sb.WriteString("<p>")
			writeSpans(&sb, b.Spans)
			sb.WriteString("</p>")
		}
	}
	return sb.String()
}

func writeSpans(sb *strings.Builder, spans []Span) {
	for _, s := range spans {
		text := html.EscapeString(s.Text)
		switch s.Kind {
		case SpanHeading:
			sb.WriteString("<h4>" + text + "</h4>")
		case SpanEmphasis:
			sb.WriteString("<strong>" + text + "</strong>")
		default:
			sb.WriteString(text)
		}
	}
}
