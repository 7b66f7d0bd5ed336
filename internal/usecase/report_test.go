package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/domain"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/domain/mocks"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/usecase"
)

func scoredAnalysis(n int) domain.ResponseAnalysis {
	return domain.ResponseAnalysis{Relevance: n, Completeness: n, Clarity: n, TechnicalAccuracy: n, ProfessionalTone: n, Grammar: n, Vocabulary: n}
}

func analyzedTurns() []domain.TurnRecord {
	return []domain.TurnRecord{
		{SessionID: "sess-1", UnitID: "q1", Seq: 1, Question: "Q1", Response: "A1", Analysis: scoredAnalysis(8)},
		{SessionID: "sess-1", UnitID: "q2", Seq: 2, Question: "Q2", Response: "A2", Analysis: scoredAnalysis(7)},
	}
}

func completedSession() domain.Session {
	end := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	return domain.Session{
		ID:         "sess-1",
		ScenarioID: "golang-backend",
		Status:     domain.SessionCompleted,
		State:      domain.StateCompleted,
		StartTime:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		EndTime:    &end,
	}
}

func goodOverall() domain.OverallEvaluation {
	return domain.OverallEvaluation{
		TechnicalSkills: 8, Communication: 7, ProblemSolving: 8, DomainKnowledge: 7, Overall: 8,
		HiringRecommendation: domain.Recommend,
		Reasoning:            "Solid answers throughout.",
	}
}

func TestReport_Compile_Full(t *testing.T) {
	t.Parallel()
	oracle := &mocks.MockOracleClient{}
	oracle.On("EvaluateOverall", mock.Anything, mock.Anything, "the summary", mock.Anything).
		Return(goodOverall(), nil)
	oracle.On("CheckGrammar", mock.Anything, "the summary").
		Return(domain.GrammarAssessment{Score: 9, Comments: "clean"}, nil)
	oracle.On("ValidateReport", mock.Anything, mock.Anything).
		Return(domain.ReportValidation{OverallValidity: true}, nil)

	c := usecase.NewReportCompiler(oracle)
	r, err := c.Compile(context.Background(), completedSession(), testScenario(), analyzedTurns(), "the summary")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", r.SessionID)
	assert.Equal(t, "golang-backend", r.ScenarioID)
	assert.Equal(t, "the summary", r.Summary)
	require.Len(t, r.PerResponse, 2)
	assert.Equal(t, "q1", r.PerResponse[0].UnitID)
	assert.Equal(t, "Q1", r.PerResponse[0].Question)
	assert.Equal(t, "q2", r.PerResponse[1].UnitID)
	assert.Equal(t, 8, r.PerResponse[0].Analysis.Relevance)
	assert.Equal(t, domain.Recommend, r.Overall.HiringRecommendation)
	require.NotNil(t, r.Grammar)
	assert.Equal(t, 9, r.Grammar.Score)
	require.NotNil(t, r.Validation)
	assert.True(t, r.Validation.OverallValidity)
	assert.Equal(t, 2, r.Metrics.Turns)
	assert.Zero(t, r.Metrics.DegradedTurns)
	assert.InDelta(t, 7.6, r.Metrics.AverageOverall, 0.001)
	assert.InDelta(t, 7.5, r.Metrics.AxisAverages["relevance"], 0.001)
	assert.Equal(t, 30*time.Minute, r.Metrics.Duration)
	oracle.AssertExpectations(t)
}

func TestReport_Compile_OverallFailure_Fatal(t *testing.T) {
	t.Parallel()
	oracle := &mocks.MockOracleClient{}
	oracle.On("EvaluateOverall", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(domain.OverallEvaluation{}, domain.ErrOracleFailure)

	c := usecase.NewReportCompiler(oracle)
	_, err := c.Compile(context.Background(), completedSession(), testScenario(), analyzedTurns(), "s")
	require.ErrorIs(t, err, domain.ErrOracleFailure)
}

func TestReport_Compile_SupplementFailures_NonFatal(t *testing.T) {
	t.Parallel()
	oracle := &mocks.MockOracleClient{}
	oracle.On("EvaluateOverall", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(goodOverall(), nil)
	oracle.On("CheckGrammar", mock.Anything, mock.Anything).
		Return(domain.GrammarAssessment{}, domain.ErrOracleFailure)
	oracle.On("ValidateReport", mock.Anything, mock.Anything).
		Return(domain.ReportValidation{}, domain.ErrOracleFailure)

	c := usecase.NewReportCompiler(oracle)
	r, err := c.Compile(context.Background(), completedSession(), testScenario(), analyzedTurns(), "s")
	require.NoError(t, err)
	require.NotNil(t, r.Grammar)
	assert.Contains(t, r.Grammar.Comments, "Grammar check unavailable")
	require.NotNil(t, r.Validation)
	assert.Contains(t, r.Validation.Comments, "Validation unavailable")
}

func TestReport_Compile_BackfillsMissingAnalysis(t *testing.T) {
	t.Parallel()
	turns := analyzedTurns()
	turns[1].Analysis = domain.ResponseAnalysis{}

	oracle := &mocks.MockOracleClient{}
	oracle.On("AnalyzeResponse", mock.Anything, mock.Anything, "Q2", "A2").
		Return(scoredAnalysis(6), nil)
	oracle.On("EvaluateOverall", mock.Anything, mock.Anything, mock.Anything, mock.MatchedBy(func(ts []domain.TurnRecord) bool {
		return len(ts) == 2 && ts[1].Analysis.Relevance == 6
	})).Return(goodOverall(), nil)
	oracle.On("CheckGrammar", mock.Anything, mock.Anything).
		Return(domain.GrammarAssessment{Score: 8}, nil)
	oracle.On("ValidateReport", mock.Anything, mock.Anything).
		Return(domain.ReportValidation{OverallValidity: true}, nil)

	c := usecase.NewReportCompiler(oracle)
	r, err := c.Compile(context.Background(), completedSession(), testScenario(), turns, "s")
	require.NoError(t, err)
	assert.Equal(t, 6, r.PerResponse[1].Analysis.Relevance)
	oracle.AssertExpectations(t)
}

func TestReport_Compile_BackfillFailure_Neutral(t *testing.T) {
	t.Parallel()
	turns := analyzedTurns()
	turns[0].Analysis = domain.ResponseAnalysis{}

	oracle := &mocks.MockOracleClient{}
	oracle.On("AnalyzeResponse", mock.Anything, mock.Anything, "Q1", "A1").
		Return(domain.ResponseAnalysis{}, domain.ErrOracleFailure)
	oracle.On("EvaluateOverall", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(goodOverall(), nil)
	oracle.On("CheckGrammar", mock.Anything, mock.Anything).
		Return(domain.GrammarAssessment{Score: 8}, nil)
	oracle.On("ValidateReport", mock.Anything, mock.Anything).
		Return(domain.ReportValidation{OverallValidity: true}, nil)

	c := usecase.NewReportCompiler(oracle)
	r, err := c.Compile(context.Background(), completedSession(), testScenario(), turns, "s")
	require.NoError(t, err)
	assert.True(t, r.PerResponse[0].Analysis.Degraded)
	assert.Equal(t, 5, r.PerResponse[0].Analysis.Relevance)
	assert.Equal(t, 1, r.Metrics.DegradedTurns)
}

func TestReport_AnalyzeBatch_MixedResults(t *testing.T) {
	t.Parallel()
	oracle := &mocks.MockOracleClient{}
	oracle.On("AnalyzeResponse", mock.Anything, "ctx", "Q1", "A1").
		Return(scoredAnalysis(8), nil)
	oracle.On("AnalyzeResponse", mock.Anything, "ctx", "Q2", "A2").
		Return(domain.ResponseAnalysis{}, domain.ErrOracleFailure)

	c := usecase.NewReportCompiler(oracle)
	out := c.AnalyzeBatch(context.Background(), "ctx", [][2]string{{"Q1", "A1"}, {"Q2", "A2"}})
	require.Len(t, out, 2)
	assert.Equal(t, 8, out[0].Relevance)
	assert.True(t, out[1].Degraded)
	assert.Equal(t, 5, out[1].Relevance)
}

func TestReport_Compile_ClampsOverall(t *testing.T) {
	t.Parallel()
	oracle := &mocks.MockOracleClient{}
	oracle.On("EvaluateOverall", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(domain.OverallEvaluation{TechnicalSkills: 14, Communication: 0, ProblemSolving: 5, DomainKnowledge: 5, Overall: 12, HiringRecommendation: domain.RecommendNone}, nil)
	oracle.On("CheckGrammar", mock.Anything, mock.Anything).
		Return(domain.GrammarAssessment{Score: 8}, nil)
	oracle.On("ValidateReport", mock.Anything, mock.Anything).
		Return(domain.ReportValidation{}, nil)

	c := usecase.NewReportCompiler(oracle)
	r, err := c.Compile(context.Background(), completedSession(), testScenario(), analyzedTurns(), "s")
	require.NoError(t, err)
	assert.Equal(t, 10, r.Overall.TechnicalSkills)
	assert.Equal(t, 1, r.Overall.Communication)
	assert.Equal(t, 10, r.Overall.Overall)
}

func TestReport_Compile_NormalizesUnknownRecommendation(t *testing.T) {
	t.Parallel()
	oracle := &mocks.MockOracleClient{}
	overall := goodOverall()
	overall.HiringRecommendation = "Hire Immediately"
	oracle.On("EvaluateOverall", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(overall, nil)
	oracle.On("CheckGrammar", mock.Anything, mock.Anything).
		Return(domain.GrammarAssessment{Score: 8}, nil)
	oracle.On("ValidateReport", mock.Anything, mock.Anything).
		Return(domain.ReportValidation{}, nil)

	c := usecase.NewReportCompiler(oracle)
	r, err := c.Compile(context.Background(), completedSession(), testScenario(), analyzedTurns(), "s")
	require.NoError(t, err)
	assert.Equal(t, domain.RecommendNone, r.Overall.HiringRecommendation)
}

func TestReport_Compile_CriteriaReachOverallPrompt(t *testing.T) {
	t.Parallel()
	sc := testScenario()
	sc.EvaluationCriteria = map[string]string{
		"depth": "Did the candidate go beyond surface-level answers?",
	}

	oracle := &mocks.MockOracleClient{}
	oracle.On("EvaluateOverall", mock.Anything, mock.MatchedBy(func(ctx string) bool {
		return strings.Contains(ctx, "Evaluation criteria") &&
			strings.Contains(ctx, "surface-level")
	}), mock.Anything, mock.Anything).Return(goodOverall(), nil)
	oracle.On("CheckGrammar", mock.Anything, mock.Anything).
		Return(domain.GrammarAssessment{Score: 8}, nil)
	oracle.On("ValidateReport", mock.Anything, mock.Anything).
		Return(domain.ReportValidation{}, nil)

	c := usecase.NewReportCompiler(oracle)
	_, err := c.Compile(context.Background(), completedSession(), sc, analyzedTurns(), "s")
	require.NoError(t, err)
	oracle.AssertExpectations(t)
}
