package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kisaansahayak/sahayak/internal/domain"
)

// ErrUnsupportedFormat is returned for unknown export formats.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Exporter writes an export document in one encoding.
type Exporter interface {
	Export(doc *domain.ExportDocument, w io.Writer) error
	Extension() string
}

// NewExporter returns the exporter for format.
func NewExporter(format domain.ExportFormat) (Exporter, error) {
	switch strings.ToLower(string(format)) {
	case "", "json":
		return JSONExporter{}, nil
	case "yaml", "yml":
		return YAMLExporter{}, nil
	case "md", "markdown":
		return MarkdownExporter{}, nil
	default:
		return nil, fmt.Errorf("%w: %s (supported: json, yaml, markdown)", ErrUnsupportedFormat, format)
	}
}

// Document assembles the export document for the current user.
func (s *Store) Document(ctx context.Context) *domain.ExportDocument {
	messages := s.Load(ctx)
	sessions := Partition(messages, s.rules, s.newID)
	return &domain.ExportDocument{
		User:       s.users.GetCurrentUser(ctx),
		Messages:   messages,
		Sessions:   sessions,
		Stats:      statsOf(messages, sessions),
		ExportedAt: domain.Timestamp(s.now()),
	}
}

// Export writes the current user's history to w in the given format.
func (s *Store) Export(ctx context.Context, format domain.ExportFormat, w io.Writer) error {
	exporter, err := NewExporter(format)
	if err != nil {
		return err
	}
	if err := exporter.Export(s.Document(ctx), w); err != nil {
		return fmt.Errorf("failed to export history as %s: %w", exporter.Extension(), err)
	}
	return nil
}

// Import replaces the current user's history with the messages of a JSON export
// document. It reports false, leaving stored history untouched, when the
// document cannot be parsed or has no message list.
func (s *Store) Import(ctx context.Context, r io.Reader) bool {
	data, err := io.ReadAll(r)
	if err != nil {
		s.logger.Warn("error importing chat history", zap.Error(err))
		return false
	}

	var doc struct {
		Messages json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("error importing chat history", zap.Error(err))
		return false
	}
	raw := bytes.TrimSpace(doc.Messages)
	if len(raw) == 0 || raw[0] != '[' {
		s.logger.Warn("import document has no message list")
		return false
	}

	var messages []domain.Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		s.logger.Warn("error importing chat history", zap.Error(err))
		return false
	}
	return s.Save(ctx, messages)
}

// JSONExporter writes pretty-printed JSON, the format Import reads back.
type JSONExporter struct{}

func (JSONExporter) Export(doc *domain.ExportDocument, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func (JSONExporter) Extension() string { return "json" }

// YAMLExporter writes YAML.
type YAMLExporter struct{}

func (YAMLExporter) Export(doc *domain.ExportDocument, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()
	return enc.Encode(doc)
}

func (YAMLExporter) Extension() string { return "yaml" }

// MarkdownExporter writes a readable transcript grouped by session, oldest first.
type MarkdownExporter struct{}

func (MarkdownExporter) Export(doc *domain.ExportDocument, w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Chat history for %s\n\n", doc.User.Name)
	fmt.Fprintf(&b, "_Exported %s: %d messages in %d sessions._\n",
		doc.ExportedAt.Format("2006-01-02 15:04 MST"), doc.Stats.TotalMessages, doc.Stats.TotalSessions)

	for i := len(doc.Sessions) - 1; i >= 0; i-- {
		sess := doc.Sessions[i]
		fmt.Fprintf(&b, "\n## %s\n\n", sess.Title)
		fmt.Fprintf(&b, "%s to %s\n", sess.StartTime.Format("2006-01-02 15:04"), sess.EndTime.Format("15:04"))
		for _, m := range sess.Messages {
			who := "Assistant"
			if m.IsUser {
				who = doc.User.Name
			}
			fmt.Fprintf(&b, "\n**%s** (%s):\n\n%s\n", who, m.Timestamp.Format("15:04"), m.Text)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (MarkdownExporter) Extension() string { return "md" }
