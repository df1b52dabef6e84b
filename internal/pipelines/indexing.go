package pipelines

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"kvasir/internal/job"
	"kvasir/internal/llm"
	"kvasir/internal/mdl"
	"kvasir/internal/store"
)

// StatusIndexing is the single in-progress status of the indexing
// pipeline. Indexing cannot be stopped once started.
const StatusIndexing job.Status = "indexing"

// ErrIndexing marks failures while embedding or storing the parsed
// manifest, as opposed to parse failures (mdl.ErrParse).
var ErrIndexing = errors.New("indexing failed")

// IndexingRequest deploys a project's MDL manifest into the vector store.
type IndexingRequest struct {
	ProjectID string
	MDL       json.RawMessage
}

// DocumentStore is the slice of the vector store the indexing pipeline
// needs.
type DocumentStore interface {
	Upsert(ctx context.Context, docs []store.Document, embeddings []pgvector.Vector) error
	DeleteProject(ctx context.Context, projectID string) error
}

// Indexing parses, embeds, and stores a manifest, replacing the
// project's previous corpus.
type Indexing struct {
	Embedder llm.Embedder
	Store    DocumentStore
	// BatchSize bounds one embedding request; 0 means everything at once.
	BatchSize int
}

func (p *Indexing) Stages(req IndexingRequest) []job.Stage {
	return []job.Stage{
		{Status: StatusIndexing, Run: func(ctx context.Context, _ job.Outputs) job.Outcome {
			manifest, err := mdl.Parse(req.MDL)
			if err != nil {
				return job.Failed(err)
			}
			docs := manifest.Documents(req.ProjectID)
			if len(docs) == 0 {
				return job.Failed(fmt.Errorf("%w: manifest contains no models", mdl.ErrParse))
			}

			embeddings, err := p.embedAll(ctx, docs)
			if err != nil {
				return job.Failed(fmt.Errorf("%w: %v", ErrIndexing, err))
			}
			if err := p.Store.DeleteProject(ctx, req.ProjectID); err != nil {
				return job.Failed(fmt.Errorf("%w: %v", ErrIndexing, err))
			}
			if err := p.Store.Upsert(ctx, docs, embeddings); err != nil {
				return job.Failed(fmt.Errorf("%w: %v", ErrIndexing, err))
			}
			return job.Ok(job.Outputs{"documents_indexed": len(docs)})
		}},
	}
}

func (p *Indexing) Assemble(out job.Outputs) any {
	return map[string]any{"documents_indexed": out["documents_indexed"]}
}

// IndexingClassifier distinguishes malformed manifests from storage
// failures.
var IndexingClassifier = job.Rules(
	job.Rule{Sentinel: mdl.ErrParse, Code: job.CodeMDLParseError},
	job.Rule{Sentinel: ErrIndexing, Code: job.CodeIndexingFailed},
)

func (p *Indexing) embedAll(ctx context.Context, docs []store.Document) ([]pgvector.Vector, error) {
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	batch := p.BatchSize
	if batch <= 0 || batch >= len(texts) {
		return p.Embedder.EmbedBatch(ctx, texts)
	}
	var vecs []pgvector.Vector
	for start := 0; start < len(texts); start += batch {
		end := start + batch
		if end > len(texts) {
			end = len(texts)
		}
		part, err := p.Embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		vecs = append(vecs, part...)
	}
	return vecs, nil
}
