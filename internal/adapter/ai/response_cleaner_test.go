package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/adapter/ai"
)

func TestCleanJSONResponse_MarkdownFence(t *testing.T) {
	t.Parallel()
	rc := ai.NewResponseCleaner()
	in := "```json\n{\"is_clarification\": true}\n```"
	assert.JSONEq(t, `{"is_clarification": true}`, rc.CleanJSONResponse(in))
}

func TestCleanJSONResponse_ProseAroundObject(t *testing.T) {
	t.Parallel()
	rc := ai.NewResponseCleaner()
	in := `Sure, here is the analysis you asked for: {"relevance": 8, "clarity": 7} hope that helps!`
	assert.JSONEq(t, `{"relevance": 8, "clarity": 7}`, rc.CleanJSONResponse(in))
}

func TestCleanJSONResponse_TrailingCommas(t *testing.T) {
	t.Parallel()
	rc := ai.NewResponseCleaner()
	in := `{"strengths": ["clear", "concise",], "score": 9,}`
	out := rc.CleanJSONResponse(in)
	assert.True(t, rc.IsValidJSON(out), "got %q", out)
}

func TestCleanJSONResponse_BareKeys(t *testing.T) {
	t.Parallel()
	rc := ai.NewResponseCleaner()
	in := `{relevance: 8, clarity: 7}`
	assert.JSONEq(t, `{"relevance": 8, "clarity": 7}`, rc.CleanJSONResponse(in))
}

func TestCleanJSONResponse_NestedBracesInStrings(t *testing.T) {
	t.Parallel()
	rc := ai.NewResponseCleaner()
	in := `{"reasoning": "uses {braces} and \"quotes\" inline", "score": 5}`
	out := rc.CleanJSONResponse(in)
	assert.JSONEq(t, in, out)
}

func TestCleanJSONResponse_NoObjectPassesThrough(t *testing.T) {
	t.Parallel()
	rc := ai.NewResponseCleaner()
	assert.Equal(t, "ID: q3", rc.CleanJSONResponse("  ID: q3\n"))
}

func TestCleanAndDecode(t *testing.T) {
	t.Parallel()
	rc := ai.NewResponseCleaner()
	var out struct {
		Relevance int `json:"relevance"`
	}
	require.NoError(t, rc.CleanAndDecode("```json\n{\"relevance\": 6}\n```", &out))
	assert.Equal(t, 6, out.Relevance)

	err := rc.CleanAndDecode("total garbage", &out)
	require.Error(t, err)
	var verr *ai.JSONValidationError
	assert.ErrorAs(t, err, &verr)
}
