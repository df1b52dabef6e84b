package mdl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validManifest = `{
  "catalog": "wrenai",
  "schema": "public",
  "models": [
    {
      "name": "customers",
      "refSql": "SELECT * FROM customers",
      "properties": {"description": "All registered customers. Includes churned accounts."},
      "columns": [
        {"name": "id", "type": "integer"},
        {"name": "name", "type": "varchar", "properties": {"description": "Full legal name."}},
        {"name": "lifetime_value", "type": "numeric"}
      ]
    },
    {
      "name": "orders",
      "columns": [
        {"name": "id", "type": "integer"},
        {"name": "customer_id", "type": "integer"}
      ]
    }
  ]
}`

func TestParseValidManifest(t *testing.T) {
	m, err := Parse([]byte(validManifest))
	require.NoError(t, err)

	assert.Equal(t, "wrenai", m.Catalog)
	require.Len(t, m.Models, 2)
	assert.Equal(t, "customers", m.Models[0].Name)
	assert.Equal(t, "All registered customers. Includes churned accounts.", m.Models[0].Description())
	assert.Equal(t, "Full legal name.", m.Models[0].Columns[1].Description())
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{"catalog": `))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"missing catalog": `{"schema": "public", "models": []}`,
		"missing models":  `{"catalog": "c", "schema": "public"}`,
		"model no name":   `{"catalog": "c", "schema": "s", "models": [{"columns": []}]}`,
		"column no type":  `{"catalog": "c", "schema": "s", "models": [{"name": "m", "columns": [{"name": "id"}]}]}`,
		"not an object":   `[1, 2, 3]`,
		"empty catalog":   `{"catalog": "", "schema": "s", "models": []}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestDocumentsFlattenManifest(t *testing.T) {
	m, err := Parse([]byte(validManifest))
	require.NoError(t, err)

	docs := m.Documents("project-1")
	require.NotEmpty(t, docs)

	// One schema doc per model, plus description chunks for customers.
	var schemaDocs, descriptionDocs int
	for _, d := range docs {
		assert.Equal(t, "project-1", d.ProjectID)
		switch d.Meta["kind"] {
		case "schema":
			schemaDocs++
		case "description":
			descriptionDocs++
		}
	}
	assert.Equal(t, 2, schemaDocs)
	assert.GreaterOrEqual(t, descriptionDocs, 1)

	// Schema text carries the column inventory the generator relies on.
	assert.Contains(t, docs[0].Content, "customers")
	assert.Contains(t, docs[0].Content, "lifetime_value (numeric)")
}

func TestDocumentIDsAreDeterministic(t *testing.T) {
	m, err := Parse([]byte(validManifest))
	require.NoError(t, err)

	first := m.Documents("project-1")
	second := m.Documents("project-1")
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID, "re-deploys must overwrite, not duplicate")
	}

	other := m.Documents("project-2")
	assert.NotEqual(t, first[0].ID, other[0].ID, "ids are scoped per project")
}

func TestChunkText(t *testing.T) {
	assert.Nil(t, chunkText("   ", 100))
	assert.Equal(t, []string{"short"}, chunkText("short", 100))

	long := strings.Repeat("This is a sentence about revenue. ", 40)
	chunks := chunkText(long, 200)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 200)
		assert.True(t, strings.HasSuffix(c, "revenue."), "chunks break on sentence boundaries")
	}
}
