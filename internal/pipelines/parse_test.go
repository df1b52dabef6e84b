package pipelines

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kvasir/internal/job"
)

func TestDecodeReplyPlainJSON(t *testing.T) {
	var candidates []job.Candidate
	err := decodeReply(`[{"sql": "SELECT 1", "summary": "one"}]`, &candidates)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "SELECT 1", candidates[0].Statement)
}

func TestDecodeReplyStripsCodeFences(t *testing.T) {
	reply := "Here you go:\n```json\n{\"mark\": \"bar\"}\n```\nLet me know!"
	var schema map[string]any
	require.NoError(t, decodeReply(reply, &schema))
	assert.Equal(t, "bar", schema["mark"])
}

func TestDecodeReplyBareFences(t *testing.T) {
	var questions []string
	require.NoError(t, decodeReply("```\n[\"q1\"]\n```", &questions))
	assert.Equal(t, []string{"q1"}, questions)
}

func TestDecodeReplyErrors(t *testing.T) {
	var v any
	assert.Error(t, decodeReply("", &v))
	assert.Error(t, decodeReply("``````", &v))
	assert.Error(t, decodeReply("not json at all", &v))
}
