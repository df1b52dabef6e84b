package mdl

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"kvasir/internal/store"
)

// descriptionChunkChars bounds the size of a single description chunk so
// one sprawling model doc does not dominate retrieval.
const descriptionChunkChars = 600

// Documents flattens the manifest into retrieval documents for the
// project: one per model (schema summary) plus one per description
// chunk. IDs are deterministic so re-deploying the same manifest
// overwrites in place instead of accumulating duplicates.
func (m *Manifest) Documents(projectID string) []store.Document {
	var docs []store.Document
	for _, model := range m.Models {
		docs = append(docs, store.Document{
			ID:        docID(projectID, model.Name, "schema", 0),
			ProjectID: projectID,
			Content:   model.schemaText(m.Catalog, m.Schema),
			Meta: map[string]string{
				"model": model.Name,
				"kind":  "schema",
			},
		})
		for i, chunk := range chunkText(model.Description(), descriptionChunkChars) {
			docs = append(docs, store.Document{
				ID:        docID(projectID, model.Name, "description", i),
				ProjectID: projectID,
				Content:   fmt.Sprintf("Model %s: %s", model.Name, chunk),
				Meta: map[string]string{
					"model": model.Name,
					"kind":  "description",
				},
			})
		}
	}
	return docs
}

// schemaText renders a compact textual view of one model for embedding.
func (m Model) schemaText(catalog, schema string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Model %s in %s.%s.", m.Name, catalog, schema)
	if d := m.Description(); d != "" {
		fmt.Fprintf(&b, " %s.", strings.TrimSuffix(d, "."))
	}
	b.WriteString(" Columns:")
	for _, c := range m.Columns {
		fmt.Fprintf(&b, " %s (%s)", c.Name, c.Type)
		if d := c.Description(); d != "" {
			fmt.Fprintf(&b, ": %s", d)
		}
		b.WriteByte(';')
	}
	return b.String()
}

func docID(projectID, model, kind string, idx int) uuid.UUID {
	name := fmt.Sprintf("%s/%s/%s/%d", projectID, model, kind, idx)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name))
}
