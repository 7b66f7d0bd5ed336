package tokencount_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/adapter/ai/tokencount"
)

func TestEstimate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, tokencount.Estimate(""))
	assert.Equal(t, 1, tokencount.Estimate("hi"))
	assert.Equal(t, 5, tokencount.Estimate("twenty chars of text"))
}

func TestCountTokens_NeverZeroForText(t *testing.T) {
	t.Parallel()
	c := tokencount.NewCounter()
	// Encoding data may not be downloadable in the test environment; the
	// counter must still return a usable positive count via the estimate.
	n := c.CountTokens("The quick brown fox jumps over the lazy dog.", "openai/gpt-4o-mini")
	assert.Greater(t, n, 0)
}
