package export

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/bnema/revisionai/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleSession() domain.Session {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return domain.Session{
		ID:         "session-1",
		Title:      "Cell Biology: Week 2",
		CreatedAt:  created,
		UpdatedAt:  created.Add(time.Minute),
		SystemNote: "Student: mitosis",
		Messages: []domain.Message{
			{ID: "user-1", Role: domain.RoleUser, Content: "What is <mitosis>?", CreatedAt: created.Add(time.Second)},
		},
	}
}

func TestMarshalJSONUsesEpochMillisAndTwoSpaceIndent(t *testing.T) {
	t.Parallel()

	data, err := Marshal(sampleSession(), FormatJSON)
	require.NoError(t, err)

	assert.Contains(t, string(data), "\n  \"id\": \"session-1\"")
	assert.Contains(t, string(data), "<mitosis>")

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.EqualValues(t, 1740819600000, doc["createdAt"])
	assert.EqualValues(t, 1740819660000, doc["updatedAt"])
	assert.Equal(t, "Student: mitosis", doc["systemNote"])

	messages := doc["messages"].([]any)
	require.Len(t, messages, 1)
	assert.EqualValues(t, 1740819601000, messages[0].(map[string]any)["createdAt"])
}

func TestMarshalJSONOmitsEmptyNote(t *testing.T) {
	t.Parallel()

	session := sampleSession()
	session.SystemNote = ""

	data, err := Marshal(session, FormatJSON)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "systemNote")
}

func TestMarshalYAML(t *testing.T) {
	t.Parallel()

	data, err := Marshal(sampleSession(), FormatYAML)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, NewDocument(sampleSession()), doc)
	assert.Contains(t, string(data), "createdAt: 1740819600000")
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]Format{"": FormatJSON, "JSON": FormatJSON, "yaml": FormatYAML, "yml": FormatYAML} {
		got, err := ParseFormat(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseFormat("csv")
	require.ErrorContains(t, err, "unsupported export format")
}

func TestFileName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Cell-Biology-Week-2.json", FileName("Cell Biology: Week 2", FormatJSON))
	assert.Equal(t, "Fresh-session.yaml", FileName("Fresh session", FormatYAML))
	assert.Equal(t, "session.json", FileName("", FormatJSON))
	assert.Equal(t, "-.json", FileName("!!!", FormatJSON))
}
