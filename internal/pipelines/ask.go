// Package pipelines defines the per-kind stage lists executed by the
// generic job engine: ask (NL-to-SQL), chart generation and adjustment,
// question recommendation, SQL correction, and MDL indexing.
package pipelines

import (
	"context"
	"fmt"
	"strings"

	"kvasir/internal/job"
	"kvasir/internal/llm"
	"kvasir/internal/store"
)

// Ask pipeline statuses, in execution order.
const (
	StatusUnderstanding job.Status = "understanding"
	StatusSearching     job.Status = "searching"
	StatusGenerating    job.Status = "generating"
)

// AskRequest is the input of one NL-to-SQL job.
type AskRequest struct {
	Query     string
	ProjectID string
	// ThreadID correlates follow-up questions in a conversation. Opaque
	// here; it only rides along into the result payload.
	ThreadID string
}

// Retriever finds schema documents relevant to a question.
type Retriever interface {
	Search(ctx context.Context, projectID, query string, limit int) ([]store.ScoredDocument, error)
}

// Ask is the NL-to-SQL pipeline: understand the question, retrieve
// schema context, generate SQL candidates.
type Ask struct {
	Completer     llm.Completer
	Retriever     Retriever
	TopK          int
	MaxCandidates int
}

const askIntentPrompt = `You rephrase a user's question about their data into a single, fully self-contained analytical question. Reply with the rephrased question only.`

const askGeneratePrompt = `You translate analytical questions into SQL using the provided schema context. Reply with a JSON array of up to %d objects, each {"sql": "...", "summary": "..."}, ordered best first. Reply with the JSON only.`

// Stages builds the ordered stage list for one submission.
func (p *Ask) Stages(req AskRequest) []job.Stage {
	return []job.Stage{
		{Status: StatusUnderstanding, Run: p.understand(req)},
		{Status: StatusSearching, Run: p.search(req)},
		{Status: StatusGenerating, Run: p.generate(req)},
	}
}

// Assemble builds the final result from the accumulated stage outputs.
func (p *Ask) Assemble(out job.Outputs) any {
	return out["candidates"]
}

// Classify maps ask stage errors; nothing is recognized specially, so
// everything lands on OTHERS.
func (p *Ask) Classify(err error) (job.Code, string) {
	return job.ClassifyOthers(err)
}

func (p *Ask) understand(req AskRequest) job.StageFunc {
	return func(ctx context.Context, _ job.Outputs) job.Outcome {
		reply, err := p.Completer.Complete(ctx, []llm.Message{
			{Role: llm.RoleSystem, Content: askIntentPrompt},
			{Role: llm.RoleUser, Content: req.Query},
		})
		if err != nil {
			return job.Failed(fmt.Errorf("understand question: %w", err))
		}
		intent := strings.TrimSpace(reply)
		if intent == "" {
			intent = req.Query
		}
		return job.Ok(job.Outputs{"intent": intent})
	}
}

func (p *Ask) search(req AskRequest) job.StageFunc {
	return func(ctx context.Context, prior job.Outputs) job.Outcome {
		query, _ := prior["intent"].(string)
		if query == "" {
			query = req.Query
		}
		docs, err := p.Retriever.Search(ctx, req.ProjectID, query, p.topK())
		if err != nil {
			return job.Failed(fmt.Errorf("retrieve schema context: %w", err))
		}
		if len(docs) == 0 {
			return job.EmptyResult(job.CodeNoRelevantData, "no relevant data found for the question")
		}
		return job.Ok(job.Outputs{"documents": docs})
	}
}

func (p *Ask) generate(req AskRequest) job.StageFunc {
	return func(ctx context.Context, prior job.Outputs) job.Outcome {
		docs, _ := prior["documents"].([]store.ScoredDocument)
		intent, _ := prior["intent"].(string)

		var contextText strings.Builder
		for _, d := range docs {
			contextText.WriteString(d.Content)
			contextText.WriteByte('\n')
		}

		reply, err := p.Completer.Complete(ctx, []llm.Message{
			{Role: llm.RoleSystem, Content: fmt.Sprintf(askGeneratePrompt, p.maxCandidates())},
			{Role: llm.RoleUser, Content: "Schema context:\n" + contextText.String() + "\nQuestion: " + intent},
		})
		if err != nil {
			return job.Failed(fmt.Errorf("generate sql: %w", err))
		}

		var candidates []job.Candidate
		if err := decodeReply(reply, &candidates); err != nil {
			return job.Failed(fmt.Errorf("parse generated candidates: %w", err))
		}
		candidates = job.Truncate(job.Dedupe(candidates), p.maxCandidates())
		if len(candidates) == 0 {
			return job.EmptyResult(job.CodeNoRelevantSQL, "no valid sql was generated for the question")
		}
		return job.Ok(job.Outputs{"candidates": candidates})
	}
}

func (p *Ask) topK() int {
	if p.TopK <= 0 {
		return 10
	}
	return p.TopK
}

func (p *Ask) maxCandidates() int {
	if p.MaxCandidates <= 0 {
		return 3
	}
	return p.MaxCandidates
}
