package usecase

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/domain"
)

// ReportCompiler assembles the final report for a completed session.
// The overall evaluation is the one mandatory oracle call; grammar and
// validation checks are supplements whose failures degrade the report
// instead of failing it.
type ReportCompiler struct {
	Oracle domain.OracleClient
}

// NewReportCompiler constructs a ReportCompiler.
func NewReportCompiler(o domain.OracleClient) *ReportCompiler {
	return &ReportCompiler{Oracle: o}
}

// Compile builds the report from the session, its analyzed turns, and
// the collapsed conversation summary. Turns missing an analysis are
// re-analyzed first; a re-analysis failure substitutes neutral scores
// rather than blocking the report.
func (c *ReportCompiler) Compile(ctx domain.Context, sess domain.Session, sc domain.Scenario, turns []domain.TurnRecord, summary string) (domain.Report, error) {
	turns = c.fillMissingAnalyses(ctx, sc, turns)

	overall, err := c.Oracle.EvaluateOverall(ctx, sc.EvaluationContext(), summary, turns)
	if err != nil {
		return domain.Report{}, fmt.Errorf("op=report.overall session=%s: %w", sess.ID, err)
	}
	overall = overall.Clamped()
	if !domain.ValidRecommendation(overall.HiringRecommendation) {
		slog.Warn("unknown hiring recommendation, normalizing",
			slog.String("session_id", sess.ID), slog.String("value", overall.HiringRecommendation))
		overall.HiringRecommendation = domain.RecommendNone
	}

	r := domain.Report{
		SessionID:   sess.ID,
		ScenarioID:  sc.ID,
		GeneratedAt: time.Now().UTC(),
		Summary:     summary,
		PerResponse: perResponse(turns),
		Overall:     overall,
		Metrics:     computeMetrics(sess, sc, turns, overall),
	}

	if g, err := c.Oracle.CheckGrammar(ctx, summary); err != nil {
		slog.Warn("grammar check failed",
			slog.String("session_id", sess.ID), slog.Any("error", err))
		r.Grammar = &domain.GrammarAssessment{Comments: "Grammar check unavailable: " + err.Error()}
	} else {
		r.Grammar = &g
	}

	if v, err := c.Oracle.ValidateReport(ctx, r); err != nil {
		slog.Warn("report validation failed",
			slog.String("session_id", sess.ID), slog.Any("error", err))
		r.Validation = &domain.ReportValidation{Comments: "Validation unavailable: " + err.Error()}
	} else {
		r.Validation = &v
	}

	observability.OverallScoreHistogram.Observe(float64(overall.Overall))
	return r, nil
}

// AnalyzeBatch scores a set of question/response pairs independently.
// A failed analysis yields neutral scores for that pair; the batch
// never fails as a whole.
func (c *ReportCompiler) AnalyzeBatch(ctx domain.Context, scenarioContext string, pairs [][2]string) []domain.ResponseAnalysis {
	out := make([]domain.ResponseAnalysis, len(pairs))
	for i, p := range pairs {
		a, err := c.Oracle.AnalyzeResponse(ctx, scenarioContext, p[0], p[1])
		if err != nil {
			slog.Warn("batch analysis failed, recording neutral scores",
				slog.String("question", p[0]), slog.Any("error", err))
			a = domain.NeutralAnalysis()
			observability.DegradedAnalysesTotal.Inc()
		}
		out[i] = a
	}
	return out
}

// fillMissingAnalyses re-runs analysis on turns whose record carries no
// scores, which happens when a turn was persisted before its analysis
// or after a storage migration.
func (c *ReportCompiler) fillMissingAnalyses(ctx domain.Context, sc domain.Scenario, turns []domain.TurnRecord) []domain.TurnRecord {
	out := make([]domain.TurnRecord, len(turns))
	copy(out, turns)
	var idx []int
	var pairs [][2]string
	for i := range out {
		if hasAnalysis(out[i].Analysis) {
			continue
		}
		idx = append(idx, i)
		pairs = append(pairs, [2]string{out[i].Question, out[i].Response})
	}
	if len(idx) == 0 {
		return out
	}
	analyses := c.AnalyzeBatch(ctx, sc.PromptContext(), pairs)
	for j, i := range idx {
		out[i].Analysis = analyses[j]
	}
	return out
}

func hasAnalysis(a domain.ResponseAnalysis) bool {
	return a.Relevance != 0 || a.Completeness != 0 || a.Clarity != 0 ||
		a.TechnicalAccuracy != 0 || a.ProfessionalTone != 0
}

func perResponse(turns []domain.TurnRecord) []domain.UnitEvaluation {
	out := make([]domain.UnitEvaluation, 0, len(turns))
	for _, t := range turns {
		out = append(out, domain.UnitEvaluation{
			UnitID:   t.UnitID,
			Question: t.Question,
			Analysis: t.Analysis,
		})
	}
	return out
}

func computeMetrics(sess domain.Session, sc domain.Scenario, turns []domain.TurnRecord, overall domain.OverallEvaluation) domain.ReportMetrics {
	m := domain.ReportMetrics{
		Turns:        len(turns),
		ScenarioKind: sc.Kind,
	}
	axes := map[string]int{}
	for _, t := range turns {
		if t.Analysis.Degraded {
			m.DegradedTurns++
		}
		axes["relevance"] += t.Analysis.Relevance
		axes["completeness"] += t.Analysis.Completeness
		axes["clarity"] += t.Analysis.Clarity
		axes["technical_accuracy"] += t.Analysis.TechnicalAccuracy
		axes["professional_tone"] += t.Analysis.ProfessionalTone
		axes["grammar"] += t.Analysis.Grammar
		axes["vocabulary"] += t.Analysis.Vocabulary
	}
	if len(turns) > 0 {
		m.AxisAverages = make(map[string]float64, len(axes))
		for k, v := range axes {
			m.AxisAverages[k] = float64(v) / float64(len(turns))
		}
	}
	sum := overall.TechnicalSkills + overall.Communication + overall.ProblemSolving + overall.DomainKnowledge + overall.Overall
	m.AverageOverall = float64(sum) / 5
	if sess.EndTime != nil {
		m.Duration = sess.EndTime.Sub(sess.StartTime)
	}
	return m
}
