// Package stub provides a deterministic oracle for development and tests.
// It never performs network calls and derives every judgement from the
// inputs alone, so runs are reproducible.
package stub

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/domain"
)

// Client implements domain.OracleClient deterministically.
type Client struct{}

// New constructs a stub oracle client.
func New() *Client { return &Client{} }

// score derives a stable score in [4,9] from the text.
func score(text string) int {
	var h uint32
	for i := 0; i < len(text); i++ {
		h = h*31 + uint32(text[i])
	}
	return 4 + int(h%6)
}

// CheckClarification flags short or question-mark responses as inadequate
// and asks for more detail.
func (c *Client) CheckClarification(_ domain.Context, _ string, response string) (domain.ClarificationCheck, error) {
	r := strings.TrimSpace(response)
	needs := strings.HasSuffix(r, "?") || len(strings.Fields(r)) <= 2
	check := domain.ClarificationCheck{NeedsClarification: needs, Reasoning: "stubbed heuristic"}
	if needs {
		check.ClarificationQuestion = "Could you expand on that with more detail?"
	}
	return check, nil
}

// AnalyzeResponse scores deterministically from the response text.
func (c *Client) AnalyzeResponse(_ domain.Context, _ string, _ string, response string) (domain.ResponseAnalysis, error) {
	s := score(response)
	return domain.ResponseAnalysis{
		Relevance:         s,
		Completeness:      s,
		Clarity:           s,
		TechnicalAccuracy: s,
		ProfessionalTone:  s,
		Grammar:           s,
		Vocabulary:        s,
		Reasoning:         "Stubbed analysis.",
	}.Clamped(), nil
}

// SelectNextUnit always picks the first available unit.
func (c *Client) SelectNextUnit(_ domain.Context, _ []string, available []domain.Unit, _ string) (string, error) {
	if len(available) == 0 {
		return "", fmt.Errorf("%w: no units available", domain.ErrInvalidArgument)
	}
	return available[0].ID, nil
}

// SummarizeExchange truncates the answer.
func (c *Client) SummarizeExchange(_ domain.Context, question string, response string) (string, error) {
	r := response
	if len(r) > 120 {
		r = r[:120]
	}
	return fmt.Sprintf("Q: %s A: %s", question, r), nil
}

// ReduceSummaries joins the documents.
func (c *Client) ReduceSummaries(_ domain.Context, docs []string) (string, error) {
	return strings.Join(docs, " "), nil
}

// EvaluateOverall averages the per-turn scores.
func (c *Client) EvaluateOverall(_ domain.Context, _ string, _ string, turns []domain.TurnRecord) (domain.OverallEvaluation, error) {
	total := 0
	for _, t := range turns {
		total += t.Analysis.Relevance
	}
	avg := 5
	if len(turns) > 0 {
		avg = total / len(turns)
	}
	rec := domain.RecommendNone
	if avg >= 7 {
		rec = domain.Recommend
	}
	return domain.OverallEvaluation{
		TechnicalSkills:      avg,
		Communication:        avg,
		ProblemSolving:       avg,
		DomainKnowledge:      avg,
		Overall:              avg,
		HiringRecommendation: rec,
		Reasoning:            "Stubbed overall evaluation.",
	}.Clamped(), nil
}

// CheckGrammar returns a fixed passing assessment.
func (c *Client) CheckGrammar(_ domain.Context, text string) (domain.GrammarAssessment, error) {
	return domain.GrammarAssessment{Score: score(text), Comments: "Stubbed grammar check."}, nil
}

// ValidateReport approves everything.
func (c *Client) ValidateReport(_ domain.Context, _ domain.Report) (domain.ReportValidation, error) {
	return domain.ReportValidation{
		Comprehensiveness:  true,
		EvidenceBased:      true,
		Consistency:        true,
		ActionableFeedback: true,
		Fairness:           true,
		OverallValidity:    true,
		Comments:           "Stubbed validation.",
	}, nil
}

var _ domain.OracleClient = (*Client)(nil)
