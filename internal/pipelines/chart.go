package pipelines

import (
	"context"
	"encoding/json"
	"fmt"

	"kvasir/internal/job"
	"kvasir/internal/llm"
)

// StatusFetching is the first chart pipeline status: preparing the data
// sample the model will see.
const StatusFetching job.Status = "fetching"

// ChartRequest is the input of a chart generation job.
type ChartRequest struct {
	Query string
	SQL   string
	// Data is the query result to visualize: a columns/rows-shaped
	// value, passed through to the model as JSON.
	Data any
}

// ChartAdjustmentRequest reshapes an existing chart per a user command.
type ChartAdjustmentRequest struct {
	Query       string
	ChartSchema map[string]any
	Command     string
}

// Chart generates a vega-lite-shaped chart schema for a query result.
type Chart struct {
	Completer llm.Completer
}

const chartGeneratePrompt = `You design a vega-lite chart specification for the given question and data sample. Reply with the vega-lite JSON object only. If no sensible chart exists for the data, reply with an empty JSON object.`

const chartAdjustPrompt = `You adjust an existing vega-lite chart specification according to the user's instruction. Reply with the full adjusted vega-lite JSON object only.`

// maxDataSampleBytes bounds what gets inlined into the prompt.
const maxDataSampleBytes = 4096

func (p *Chart) Stages(req ChartRequest) []job.Stage {
	return []job.Stage{
		{Status: StatusFetching, Run: func(ctx context.Context, _ job.Outputs) job.Outcome {
			sample, err := encodeDataSample(req.Data)
			if err != nil {
				return job.Failed(err)
			}
			return job.Ok(job.Outputs{"data_sample": sample})
		}},
		{Status: StatusGenerating, Run: func(ctx context.Context, prior job.Outputs) job.Outcome {
			sample, _ := prior["data_sample"].(string)
			user := fmt.Sprintf("Question: %s\nSQL: %s\nData sample:\n%s", req.Query, req.SQL, sample)
			return p.generateChart(ctx, chartGeneratePrompt, user)
		}},
	}
}

func (p *Chart) StagesForAdjustment(req ChartAdjustmentRequest) []job.Stage {
	return []job.Stage{
		{Status: StatusFetching, Run: func(ctx context.Context, _ job.Outputs) job.Outcome {
			current, err := json.Marshal(req.ChartSchema)
			if err != nil {
				return job.Failed(fmt.Errorf("encode current chart schema: %w", err))
			}
			return job.Ok(job.Outputs{"current_schema": string(current)})
		}},
		{Status: StatusGenerating, Run: func(ctx context.Context, prior job.Outputs) job.Outcome {
			current, _ := prior["current_schema"].(string)
			user := fmt.Sprintf("Question: %s\nCurrent chart:\n%s\nInstruction: %s", req.Query, current, req.Command)
			return p.generateChart(ctx, chartAdjustPrompt, user)
		}},
	}
}

func (p *Chart) Assemble(out job.Outputs) any {
	return out["chart_schema"]
}

func (p *Chart) Classify(err error) (job.Code, string) {
	return job.ClassifyOthers(err)
}

func (p *Chart) generateChart(ctx context.Context, system, user string) job.Outcome {
	reply, err := p.Completer.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: user},
	})
	if err != nil {
		return job.Failed(fmt.Errorf("generate chart: %w", err))
	}
	var schema map[string]any
	if err := decodeReply(reply, &schema); err != nil {
		return job.Failed(fmt.Errorf("parse chart schema: %w", err))
	}
	// An empty object is the model's "no chart" answer; a schema without a
	// mark cannot render either.
	if len(schema) == 0 || schema["mark"] == nil {
		return job.EmptyResult(job.CodeNoChart, "no chart could be generated for the data")
	}
	return job.Ok(job.Outputs{"chart_schema": schema})
}

func encodeDataSample(data any) (string, error) {
	if data == nil {
		return "", fmt.Errorf("no data provided to chart")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode chart data: %w", err)
	}
	if len(b) > maxDataSampleBytes {
		b = b[:maxDataSampleBytes]
	}
	return string(b), nil
}
