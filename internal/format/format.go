// Package format turns raw assistant text into structured display blocks.
//
// The RAG service answers in a light markdown dialect: "**Label:**" introduces a
// section, "**text**" emphasizes, and lines starting with "1. ", "•", "-" or "*"
// are list items. Format recognizes exactly that and nothing more. It must be
// applied once, to raw backend text.
//
// Markers are matched within a single line. A "**" pair split across a line
// break stays literal on both lines.
package format

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// BlockKind identifies a display block.
type BlockKind string

const (
	BlockHeader    BlockKind = "header"
	BlockList      BlockKind = "list"
	BlockParagraph BlockKind = "paragraph"
)

// SpanKind identifies an inline run.
type SpanKind string

const (
	SpanText     SpanKind = "text"
	SpanEmphasis SpanKind = "emphasis"
	SpanHeading  SpanKind = "heading"
)

// Span is an inline run of text.
type Span struct {
	Kind SpanKind `json:"kind"`
	Text string   `json:"text"`
}

// Block is one display element. Header and paragraph blocks carry Spans; list
// blocks carry one span list per item.
type Block struct {
	Kind  BlockKind `json:"kind"`
	Spans []Span    `json:"spans,omitempty"`
	Items [][]Span  `json:"items,omitempty"`
}

// Heading returns the section label of a header block, e.g. "Soil:".
func (b Block) Heading() string {
	var sb strings.Builder
	for _, s := range b.Spans {
		if s.Kind == SpanHeading {
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}

// Text returns the plain text of spans.
func Text(spans []Span) string {
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

type lineKind int

const (
	lineParagraph lineKind = iota
	lineHeader
	lineItem
)

type state int

const (
	stateNone state = iota
	stateInList
)

// Format converts raw text into blocks in textual order. Consecutive list items
// are grouped into one list block; a header or paragraph line closes it.
func Format(raw string) []Block {
	var (
		blocks []Block
		items  [][]Span
		st     = stateNone
	)

	closeList := func() {
		if st == stateInList {
			blocks = append(blocks, Block{Kind: BlockList, Items: items})
			items = nil
			st = stateNone
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		kind, spans := classify(parseInline(trimmed))
		switch kind {
		case lineHeader:
			closeList()
			blocks = append(blocks, Block{Kind: BlockHeader, Spans: spans})
		case lineItem:
			items = append(items, spans)
			st = stateInList
		default:
			closeList()
			blocks = append(blocks, Block{Kind: BlockParagraph, Spans: spans})
		}
	}
	closeList()

	return blocks
}

// classify decides what a parsed line is and strips list markers from items.
func classify(spans []Span) (lineKind, []Span) {
	for _, s := range spans {
		if s.Kind == SpanHeading {
			return lineHeader, spans
		}
	}

	if len(spans) == 0 || spans[0].Kind != SpanText {
		return lineParagraph, spans
	}
	first := spans[0].Text

	if rest, ok := stripNumber(first); ok {
		return lineItem, replaceFirst(spans, rest)
	}

	r, size := utf8.DecodeRuneInString(first)
	if r == '•' || r == '-' || r == '*' {
		return lineItem, replaceFirst(spans, strings.TrimLeftFunc(first[size:], unicode.IsSpace))
	}

	return lineParagraph, spans
}

// stripNumber removes a leading "N. " list marker (digits, a dot, whitespace).
func stripNumber(s string) (string, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(s) || s[i] != '.' {
		return s, false
	}
	rest := s[i+1:]
	trimmed := strings.TrimLeftFunc(rest, unicode.IsSpace)
	if len(trimmed) == len(rest) {
		return s, false
	}
	return trimmed, true
}

func replaceFirst(spans []Span, text string) []Span {
	out := make([]Span, 0, len(spans))
	if text != "" {
		out = append(out, Span{Kind: SpanText, Text: text})
	}
	return append(out, spans[1:]...)
}

// parseInline splits a line into spans. Section labels ("**Label:**") are found
// first, then emphasis ("**text**") inside the remaining text, matching
// leftmost-first without overlap.
func parseInline(line string) []Span {
	var spans []Span
	for _, seg := range splitHeadings(line) {
		if seg.Kind == SpanHeading {
			spans = append(spans, seg)
			continue
		}
		spans = append(spans, splitEmphasis(seg.Text)...)
	}
	return spans
}

// splitHeadings finds "**label:**" where label is non-empty and holds neither
// '*' nor ':'. The heading span keeps the colon.
func splitHeadings(line string) []Span {
	var (
		out  []Span
		text strings.Builder
	)
	i := 0
	for i < len(line) {
		if strings.HasPrefix(line[i:], "**") {
			j := i + 2
			for j < len(line) && line[j] != '*' && line[j] != ':' {
				j++
			}
			if j > i+2 && strings.HasPrefix(line[j:], ":**") {
				out = appendText(out, &text)
				out = append(out, Span{Kind: SpanHeading, Text: line[i+2 : j+1]})
				i = j + 3
				continue
			}
		}
		text.WriteByte(line[i])
		i++
	}
	return appendText(out, &text)
}

// splitEmphasis finds "**text**" where text is non-empty and holds no '*'.
func splitEmphasis(s string) []Span {
	var (
		out  []Span
		text strings.Builder
	)
	i := 0
	for i < len(s) {
		if strings.HasPrefix(s[i:], "**") {
			j := i + 2
			for j < len(s) && s[j] != '*' {
				j++
			}
			if j > i+2 && strings.HasPrefix(s[j:], "**") {
				out = appendText(out, &text)
				out = append(out, Span{Kind: SpanEmphasis, Text: s[i+2 : j]})
				i = j + 2
				continue
			}
		}
		text.WriteByte(s[i])
		i++
	}
	return appendText(out, &text)
}

func appendText(out []Span, text *strings.Builder) []Span {
	if text.Len() == 0 {
		return out
	}
	out = append(out, Span{Kind: SpanText, Text: text.String()})
	text.Reset()
	return out
}
