package real

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/domain"
)

// Prompt builders for each oracle operation. System prompts pin the role
// and the exact JSON shape; user prompts carry the conversation material.

const clarificationSystemPrompt = `You are an interview assistant. Judge whether the candidate's response adequately addresses the current question. If the response is unclear, incomplete, or does not fully address the question, formulate a specific follow-up question to ask the candidate.
Respond with JSON only: {"needs_clarification": true|false, "clarification_question": "<the follow-up to ask, empty when not needed>", "reasoning": "<one sentence>"}`

func clarificationUserPrompt(question, response string) string {
	return fmt.Sprintf("Current question:\n%s\n\nCandidate response:\n%s", question, response)
}

const analyzeSystemPrompt = `You are an expert interview evaluator. Score the candidate's answer on each axis from 1 to 10.
Respond with JSON only:
{"relevance": n, "completeness": n, "clarity": n, "technical_accuracy": n, "professional_tone": n, "grammar": n, "vocabulary": n, "reasoning": "<short paragraph>", "strengths": ["..."], "weaknesses": ["..."]}`

func analyzeUserPrompt(scenarioContext, question, response string) string {
	var b strings.Builder
	if scenarioContext != "" {
		fmt.Fprintf(&b, "Interview context:\n%s\n\n", scenarioContext)
	}
	fmt.Fprintf(&b, "Question:\n%s\n\nCandidate answer:\n%s", question, response)
	return b.String()
}

const selectSystemPrompt = `You are orchestrating an interview. Given the questions already asked and the remaining ones, pick the best next question.
Reply with the chosen question's ID only, e.g. "q3". Do not add any other text.`

func selectUserPrompt(askedIDs []string, available []domain.Unit, conversationSummary string) string {
	var b strings.Builder
	if conversationSummary != "" {
		fmt.Fprintf(&b, "Conversation so far:\n%s\n\n", conversationSummary)
	}
	fmt.Fprintf(&b, "Already asked: %s\n\nAvailable questions:\n", strings.Join(askedIDs, ", "))
	for _, u := range available {
		fmt.Fprintf(&b, "ID: %s, %s\n", u.ID, u.Prompt)
	}
	return b.String()
}

const summarizeSystemPrompt = `Summarize this interview exchange in two or three sentences, keeping the technical substance of the answer. Reply with plain text only.`

func summarizeUserPrompt(question, response string) string {
	return fmt.Sprintf("Question:\n%s\n\nAnswer:\n%s", question, response)
}

const reduceSystemPrompt = `Combine the following interview summaries into a single coherent summary. Preserve concrete technical details and drop repetition. Reply with plain text only.`

func reduceUserPrompt(docs []string) string {
	return strings.Join(docs, "\n\n---\n\n")
}

const overallSystemPrompt = `You are an expert hiring evaluator reviewing a full interview transcript with per-answer analyses. Produce the aggregate evaluation.
"hiring_recommendation" must be exactly one of: "Strongly Recommend", "Recommend", "Neutral", "Do Not Recommend".
Respond with JSON only:
{"technical_skills": n, "communication": n, "problem_solving": n, "domain_knowledge": n, "overall": n, "key_strengths": ["..."], "improvement_areas": ["..."], "hiring_recommendation": "...", "reasoning": "<paragraph>"}`

func overallUserPrompt(scenarioContext, summary string, turns []domain.TurnRecord) string {
	var b strings.Builder
	if scenarioContext != "" {
		fmt.Fprintf(&b, "Interview context:\n%s\n\n", scenarioContext)
	}
	if summary != "" {
		fmt.Fprintf(&b, "Conversation summary:\n%s\n\n", summary)
	}
	for i, t := range turns {
		fmt.Fprintf(&b, "Exchange %d\nQuestion: %s\nAnswer: %s\n", i+1, t.Question, t.Response)
		if !t.Analysis.Degraded {
			fmt.Fprintf(&b, "Scores: relevance %d, completeness %d, clarity %d, technical accuracy %d\n",
				t.Analysis.Relevance, t.Analysis.Completeness, t.Analysis.Clarity, t.Analysis.TechnicalAccuracy)
		}
		b.WriteString("\n")
	}
	return b.String()
}

const grammarSystemPrompt = `Assess the language quality of the following interview answers. Score from 1 to 10.
Respond with JSON only: {"score": n, "issues": ["..."], "comments": "<short paragraph>"}`

const validateSystemPrompt = `Review this interview evaluation report for quality. Answer each check with true or false.
Respond with JSON only:
{"comprehensiveness": b, "evidence_based": b, "consistency": b, "actionable_feedback": b, "fairness": b, "overall_validity": b, "comments": "<short paragraph>"}`
