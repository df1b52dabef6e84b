package pipelines

import (
	"context"
	"fmt"

	"kvasir/internal/llm"
	"kvasir/internal/store"
)

// VectorRetriever is the production Retriever: embed the question, then
// similarity-search the project's indexed documents.
type VectorRetriever struct {
	Embedder llm.Embedder
	Store    *store.VectorStore
}

func (r *VectorRetriever) Search(ctx context.Context, projectID, query string, limit int) ([]store.ScoredDocument, error) {
	embedding, err := r.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return r.Store.Search(ctx, projectID, embedding, limit)
}

var _ Retriever = (*VectorRetriever)(nil)
