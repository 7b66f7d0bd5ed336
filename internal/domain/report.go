package domain

import "time"

// Per-response analysis axes. Scores are integers clamped to [1,10].

// ResponseAnalysis scores a single answer. Degraded marks analyses that
// fell back to neutral scores because the oracle call failed; downstream
// consumers must treat those as placeholders, not judgements.
type ResponseAnalysis struct {
	Relevance         int      `json:"relevance"`
	Completeness      int      `json:"completeness"`
	Clarity           int      `json:"clarity"`
	TechnicalAccuracy int      `json:"technical_accuracy"`
	ProfessionalTone  int      `json:"professional_tone"`
	Grammar           int      `json:"grammar"`
	Vocabulary        int      `json:"vocabulary"`
	Reasoning         string   `json:"reasoning"`
	Strengths         []string `json:"strengths"`
	Weaknesses        []string `json:"weaknesses"`
	Degraded          bool     `json:"degraded,omitempty"`
}

// NeutralAnalysis is the placeholder substituted when analysis fails.
func NeutralAnalysis() ResponseAnalysis {
	return ResponseAnalysis{
		Relevance:         5,
		Completeness:      5,
		Clarity:           5,
		TechnicalAccuracy: 5,
		ProfessionalTone:  5,
		Grammar:           5,
		Vocabulary:        5,
		Reasoning:         "Analysis failed due to an error.",
		Degraded:          true,
	}
}

// ClampScore forces a score into the valid [1,10] range.
func ClampScore(v int) int {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}

// Clamped returns a copy of the analysis with every axis in range.
func (a ResponseAnalysis) Clamped() ResponseAnalysis {
	a.Relevance = ClampScore(a.Relevance)
	a.Completeness = ClampScore(a.Completeness)
	a.Clarity = ClampScore(a.Clarity)
	a.TechnicalAccuracy = ClampScore(a.TechnicalAccuracy)
	a.ProfessionalTone = ClampScore(a.ProfessionalTone)
	a.Grammar = ClampScore(a.Grammar)
	a.Vocabulary = ClampScore(a.Vocabulary)
	return a
}

// HiringRecommendation values accepted in an overall evaluation.
const (
	RecommendStrong = "Strongly Recommend"
	Recommend       = "Recommend"
	RecommendNone   = "Neutral"
	RecommendNo     = "Do Not Recommend"
)

// ValidRecommendation reports whether v is one of the accepted values.
func ValidRecommendation(v string) bool {
	switch v {
	case RecommendStrong, Recommend, RecommendNone, RecommendNo:
		return true
	}
	return false
}

// OverallEvaluation is the aggregate judgement across the whole session.
type OverallEvaluation struct {
	TechnicalSkills      int      `json:"technical_skills"`
	Communication        int      `json:"communication"`
	ProblemSolving       int      `json:"problem_solving"`
	DomainKnowledge      int      `json:"domain_knowledge"`
	Overall              int      `json:"overall"`
	KeyStrengths         []string `json:"key_strengths"`
	ImprovementAreas     []string `json:"improvement_areas"`
	HiringRecommendation string   `json:"hiring_recommendation"`
	Reasoning            string   `json:"reasoning"`
}

// Clamped returns a copy with every axis in [1,10].
func (o OverallEvaluation) Clamped() OverallEvaluation {
	o.TechnicalSkills = ClampScore(o.TechnicalSkills)
	o.Communication = ClampScore(o.Communication)
	o.ProblemSolving = ClampScore(o.ProblemSolving)
	o.DomainKnowledge = ClampScore(o.DomainKnowledge)
	o.Overall = ClampScore(o.Overall)
	return o
}

// GrammarAssessment is the supplementary language-quality check. Its
// failure never fails report compilation.
type GrammarAssessment struct {
	Score    int      `json:"score"`
	Issues   []string `json:"issues"`
	Comments string   `json:"comments"`
}

// ReportValidation is the oracle's review of a compiled report. Advisory
// only; a failed validation call leaves the report intact.
type ReportValidation struct {
	Comprehensiveness  bool   `json:"comprehensiveness"`
	EvidenceBased      bool   `json:"evidence_based"`
	Consistency        bool   `json:"consistency"`
	ActionableFeedback bool   `json:"actionable_feedback"`
	Fairness           bool   `json:"fairness"`
	OverallValidity    bool   `json:"overall_validity"`
	Comments           string `json:"comments"`
}

// ReportMetrics are the mechanical aggregates computed from turn records.
// AxisAverages maps each per-response axis to its mean across turns.
type ReportMetrics struct {
	Turns          int                `json:"turns"`
	DegradedTurns  int                `json:"degraded_turns"`
	AverageOverall float64            `json:"average_overall"`
	AxisAverages   map[string]float64 `json:"axis_averages,omitempty"`
	Duration       time.Duration      `json:"duration"`
	ScenarioKind   ScenarioKind       `json:"scenario_kind"`
}

// UnitEvaluation ties a per-response analysis back to the unit it scored,
// so report readers can line evaluations up with questions.
type UnitEvaluation struct {
	UnitID   string           `json:"unit_id"`
	Question string           `json:"question"`
	Analysis ResponseAnalysis `json:"analysis"`
}

// Report is the compiled outcome of a completed session.
type Report struct {
	SessionID   string             `json:"session_id"`
	ScenarioID  string             `json:"scenario_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Summary     string             `json:"summary"`
	PerResponse []UnitEvaluation   `json:"detailed_evaluations"`
	Overall     OverallEvaluation  `json:"overall"`
	Grammar     *GrammarAssessment `json:"grammar,omitempty"`
	Validation  *ReportValidation  `json:"validation,omitempty"`
	Metrics     ReportMetrics      `json:"metrics"`
}
