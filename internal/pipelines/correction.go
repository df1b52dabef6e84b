package pipelines

import (
	"context"
	"fmt"

	"kvasir/internal/job"
	"kvasir/internal/llm"
)

// StatusCorrecting is the single in-progress status of the SQL
// correction pipeline.
const StatusCorrecting job.Status = "correcting"

// SQLCorrectionRequest carries an invalid statement and the engine error
// it produced.
type SQLCorrectionRequest struct {
	SQL   string
	Error string
}

// SQLCorrection repairs SQL that failed to execute.
type SQLCorrection struct {
	Completer llm.Completer
}

const correctionPrompt = `You fix SQL statements that failed to execute, using the error message. Reply with a JSON array of objects {"sql": "...", "summary": "..."} where sql is the corrected statement and summary explains the fix. Reply with an empty array if the statement cannot be repaired. Reply with the JSON only.`

func (p *SQLCorrection) Stages(req SQLCorrectionRequest) []job.Stage {
	return []job.Stage{
		{Status: StatusCorrecting, Run: func(ctx context.Context, _ job.Outputs) job.Outcome {
			reply, err := p.Completer.Complete(ctx, []llm.Message{
				{Role: llm.RoleSystem, Content: correctionPrompt},
				{Role: llm.RoleUser, Content: fmt.Sprintf("SQL:\n%s\nError:\n%s", req.SQL, req.Error)},
			})
			if err != nil {
				return job.Failed(fmt.Errorf("correct sql: %w", err))
			}
			var candidates []job.Candidate
			if err := decodeReply(reply, &candidates); err != nil {
				return job.Failed(fmt.Errorf("parse corrected sql: %w", err))
			}
			candidates = job.Dedupe(candidates)
			if len(candidates) == 0 {
				return job.EmptyResult(job.CodeNoRelevantSQL, "the sql could not be corrected")
			}
			return job.Ok(job.Outputs{"candidates": candidates})
		}},
	}
}

func (p *SQLCorrection) Assemble(out job.Outputs) any {
	return out["candidates"]
}

func (p *SQLCorrection) Classify(err error) (job.Code, string) {
	return job.ClassifyOthers(err)
}
