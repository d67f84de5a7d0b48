package history

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kisaansahayak/sahayak/internal/domain"
	"github.com/kisaansahayak/sahayak/internal/repository"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t, repository.NewMemoryStore())
	messages := []domain.Message{
		msgAt("m1", 0, "How much water for paddy?", true),
		{ID: "m2", Text: "**Water:** 5 cm", IsUser: false, Timestamp: base.Add(time.Minute), Type: domain.MessageTypeResponse, UserID: "u1"},
		msgAt("m3", 5*time.Hour, "thanks", true),
	}
	require.True(t, src.Save(ctx, messages))

	var buf bytes.Buffer
	require.NoError(t, src.Export(ctx, domain.ExportFormatJSON, &buf))

	var doc domain.ExportDocument
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, domain.DefaultUserID, doc.User.ID)
	assert.Len(t, doc.Sessions, 2)
	assert.Equal(t, 3, doc.Stats.TotalMessages)
	assert.False(t, doc.ExportedAt.IsZero())

	dst := newTestStore(t, repository.NewMemoryStore())
	require.Empty(t, dst.Load(ctx))
	require.True(t, dst.Import(ctx, bytes.NewReader(buf.Bytes())))
	assert.Equal(t, messages, dst.Load(ctx))
}

func TestImportRejectsInvalidDocuments(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, repository.NewMemoryStore())
	existing := makeMessages(2)
	require.True(t, s.Save(ctx, existing))

	for _, doc := range []string{
		"",
		"not json",
		`{}`,
		`{"messages": null}`,
		`{"messages": "nope"}`,
		`{"messages": {"0": {}}}`,
		`{"messages": [{"id": 5}]}`,
		`[1, 2, 3]`,
	} {
		assert.False(t, s.Import(ctx, strings.NewReader(doc)), doc)
		assert.Equal(t, existing, s.Load(ctx), doc)
	}
}

func TestImportAppliesCap(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, repository.NewMemoryStore())
	messages := makeMessages(120)
	data, err := json.Marshal(map[string]interface{}{"messages": messages})
	require.NoError(t, err)

	require.True(t, s.Import(ctx, bytes.NewReader(data)))
	assert.Equal(t, messages[20:], s.Load(ctx))
}

func TestExportYAMLAndMarkdown(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, repository.NewMemoryStore())
	require.True(t, s.Save(ctx, []domain.Message{
		msgAt("m1", 0, "Best fertilizer for maize?", true),
		msgAt("m2", time.Minute, "Use urea in splits.", false),
	}))

	var y bytes.Buffer
	require.NoError(t, s.Export(ctx, domain.ExportFormatYAML, &y))
	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(y.Bytes(), &decoded))
	assert.Contains(t, decoded, "messages")
	assert.Contains(t, decoded, "exported_at")

	var md bytes.Buffer
	require.NoError(t, s.Export(ctx, domain.ExportFormatMarkdown, &md))
	out := md.String()
	assert.Contains(t, out, "# Chat history for Farmer")
	assert.Contains(t, out, "## 🧪 Fertilization")
	assert.Contains(t, out, "Use urea in splits.")
}

func TestExportUnsupportedFormat(t *testing.T) {
	s := newTestStore(t, repository.NewMemoryStore())
	err := s.Export(context.Background(), "pdf", &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestNewExporterExtensions(t *testing.T) {
	for format, ext := range map[domain.ExportFormat]string{"": "json", "JSON": "json", "yml": "yaml", "md": "md"} {
		e, err := NewExporter(format)
		require.NoError(t, err)
		assert.Equal(t, ext, e.Extension())
	}
}
