package pipelines

import (
	"context"
	"fmt"
	"strings"

	"kvasir/internal/job"
	"kvasir/internal/llm"
)

// QuestionRecommendationRequest asks for follow-up questions a user
// could explore next.
type QuestionRecommendationRequest struct {
	ProjectID string
	// Previous questions already asked in the session, used to avoid
	// recommending repeats.
	Previous []string
	Max      int
}

// QuestionRecommendation generates candidate questions over the
// project's indexed schema.
type QuestionRecommendation struct {
	Completer llm.Completer
	Retriever Retriever
	TopK      int
}

const questionsPrompt = `You suggest analytical questions a user could ask about the described data. Reply with a JSON array of at most %d question strings. Do not repeat questions the user already asked. Reply with the JSON only.`

func (p *QuestionRecommendation) Stages(req QuestionRecommendationRequest) []job.Stage {
	return []job.Stage{
		{Status: StatusGenerating, Run: func(ctx context.Context, _ job.Outputs) job.Outcome {
			max := req.Max
			if max <= 0 {
				max = 3
			}
			contextText := ""
			if p.Retriever != nil {
				docs, err := p.Retriever.Search(ctx, req.ProjectID, "overview of the available data", p.topK())
				if err != nil {
					return job.Failed(fmt.Errorf("retrieve schema overview: %w", err))
				}
				var b strings.Builder
				for _, d := range docs {
					b.WriteString(d.Content)
					b.WriteByte('\n')
				}
				contextText = b.String()
			}
			user := "Schema context:\n" + contextText
			if len(req.Previous) > 0 {
				user += "\nAlready asked:\n- " + strings.Join(req.Previous, "\n- ")
			}
			reply, err := p.Completer.Complete(ctx, []llm.Message{
				{Role: llm.RoleSystem, Content: fmt.Sprintf(questionsPrompt, max)},
				{Role: llm.RoleUser, Content: user},
			})
			if err != nil {
				return job.Failed(fmt.Errorf("generate questions: %w", err))
			}
			var questions []string
			if err := decodeReply(reply, &questions); err != nil {
				return job.Failed(fmt.Errorf("parse generated questions: %w", err))
			}
			if len(questions) > max {
				questions = questions[:max]
			}
			if len(questions) == 0 {
				return job.EmptyResult(job.CodeOthers, "no questions were generated")
			}
			return job.Ok(job.Outputs{"questions": questions})
		}},
	}
}

func (p *QuestionRecommendation) Assemble(out job.Outputs) any {
	return out["questions"]
}

func (p *QuestionRecommendation) Classify(err error) (job.Code, string) {
	return job.ClassifyOthers(err)
}

func (p *QuestionRecommendation) topK() int {
	if p.TopK <= 0 {
		return 5
	}
	return p.TopK
}
