// Package real implements the interview oracle backed by an
// OpenRouter-compatible chat completions API.
package real

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"log/slog"

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/adapter/ai"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/config"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/domain"
)

// Client implements domain.OracleClient over HTTP chat completions.
type Client struct {
	cfg      config.Config
	hc       *http.Client
	cleaner  *ai.ResponseCleaner
	breakers *ai.BreakerSet
}

// New constructs an oracle client with sensible timeouts.
func New(cfg config.Config) *Client {
	timeout := cfg.OracleRequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		cfg:      cfg,
		hc:       &http.Client{Timeout: timeout},
		cleaner:  ai.NewResponseCleaner(),
		breakers: ai.NewBreakerSet(3, 30*time.Second),
	}
}

// getBackoffConfig returns a configured ExponentialBackOff based on the current environment.
func (c *Client) getBackoffConfig() *backoff.ExponentialBackOff {
	expo := backoff.NewExponentialBackOff()
	maxElapsedTime, initialInterval, maxInterval, multiplier := c.cfg.GetAIBackoffConfig()
	expo.MaxElapsedTime = maxElapsedTime
	expo.InitialInterval = initialInterval
	expo.MaxInterval = maxInterval
	expo.Multiplier = multiplier
	return expo
}

// chat performs one guarded chat completion and returns the raw message content.
// 429 and 5xx responses are retried with backoff; other 4xx are permanent.
func (c *Client) chat(ctx domain.Context, op, systemPrompt, userPrompt string) (string, error) {
	if c.cfg.OpenRouterAPIKey == "" {
		return "", fmt.Errorf("%w: OPENROUTER_API_KEY missing", domain.ErrInvalidArgument)
	}
	br := c.breakers.For(op)
	if err := br.Allow(); err != nil {
		return "", err
	}

	body := map[string]any{
		"model":       c.cfg.OpenRouterModel,
		"temperature": c.cfg.OracleTemperature,
		"max_tokens":  c.cfg.OracleMaxTokens,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
	}
	b, _ := json.Marshal(body)

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	attempt := func() error {
		start := time.Now()
		// Recreate the request each attempt to avoid reusing consumed bodies
		r, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OpenRouterBaseURL+"/chat/completions", bytes.NewReader(b))
		r.Header.Set("Authorization", "Bearer "+c.cfg.OpenRouterAPIKey)
		r.Header.Set("Content-Type", "application/json")
		if c.cfg.OpenRouterReferer != "" {
			r.Header.Set("HTTP-Referer", c.cfg.OpenRouterReferer)
		}
		if c.cfg.OpenRouterTitle != "" {
			r.Header.Set("X-Title", c.cfg.OpenRouterTitle)
		}
		resp, err := c.hc.Do(r)
		observability.OracleRequestsTotal.WithLabelValues("openrouter", op).Inc()
		observability.OracleRequestDuration.WithLabelValues("openrouter", op).Observe(time.Since(start).Seconds())
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			slog.Warn("oracle rate limited", slog.String("op", op), slog.Int("status", resp.StatusCode))
			return fmt.Errorf("rate limited: 429")
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			snippet := string(bodyBytes)
			if len(snippet) > 512 {
				snippet = snippet[:512]
			}
			slog.Warn("oracle 4xx", slog.String("op", op), slog.Int("status", resp.StatusCode), slog.String("body", snippet))
			return backoff.Permanent(fmt.Errorf("chat status %d", resp.StatusCode))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			snippet := string(bodyBytes)
			if len(snippet) > 512 {
				snippet = snippet[:512]
			}
			slog.Error("oracle non-2xx", slog.String("op", op), slog.Int("status", resp.StatusCode), slog.String("body", snippet))
			return fmt.Errorf("chat status %d", resp.StatusCode)
		}
		if err := json.Unmarshal(bodyBytes, &out); err != nil {
			slog.Error("oracle decode error", slog.String("op", op), slog.Any("error", err))
			return err
		}
		return nil
	}
	bo := backoff.WithContext(c.getBackoffConfig(), ctx)
	if err := backoff.Retry(attempt, bo); err != nil {
		br.RecordFailure()
		observability.OracleFailuresTotal.WithLabelValues(op).Inc()
		return "", fmt.Errorf("op=oracle.%s: %v: %w", op, err, domain.ErrOracleFailure)
	}
	if len(out.Choices) == 0 {
		br.RecordFailure()
		observability.OracleFailuresTotal.WithLabelValues(op).Inc()
		return "", fmt.Errorf("op=oracle.%s: empty choices: %w", op, domain.ErrOracleFailure)
	}
	br.RecordSuccess()
	return out.Choices[0].Message.Content, nil
}

// chatJSON runs chat and decodes the cleaned JSON payload into out.
func (c *Client) chatJSON(ctx domain.Context, op, systemPrompt, userPrompt string, out any) error {
	raw, err := c.chat(ctx, op, systemPrompt, userPrompt)
	if err != nil {
		return err
	}
	if err := c.cleaner.CleanAndDecode(raw, out); err != nil {
		slog.Warn("oracle returned undecodable JSON", slog.String("op", op), slog.Any("error", err))
		return fmt.Errorf("op=oracle.%s: %v: %w", op, err, domain.ErrOracleFailure)
	}
	return nil
}

// CheckClarification judges whether the response adequately addresses the
// question, supplying the follow-up to ask when it does not.
func (c *Client) CheckClarification(ctx domain.Context, question, response string) (domain.ClarificationCheck, error) {
	var out domain.ClarificationCheck
	if err := c.chatJSON(ctx, "check_clarification", clarificationSystemPrompt, clarificationUserPrompt(question, response), &out); err != nil {
		return domain.ClarificationCheck{}, err
	}
	return out, nil
}

// AnalyzeResponse scores one answer on the per-response axes.
func (c *Client) AnalyzeResponse(ctx domain.Context, scenarioContext, question, response string) (domain.ResponseAnalysis, error) {
	var out domain.ResponseAnalysis
	if err := c.chatJSON(ctx, "analyze_response", analyzeSystemPrompt, analyzeUserPrompt(scenarioContext, question, response), &out); err != nil {
		return domain.ResponseAnalysis{}, err
	}
	return out.Clamped(), nil
}

// SelectNextUnit asks the oracle to pick the next unit id. The reply is
// returned verbatim apart from whitespace; id cleanup belongs to the caller.
func (c *Client) SelectNextUnit(ctx domain.Context, askedIDs []string, available []domain.Unit, conversationSummary string) (string, error) {
	raw, err := c.chat(ctx, "select_next", selectSystemPrompt, selectUserPrompt(askedIDs, available, conversationSummary))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// SummarizeExchange condenses one question/answer pair.
func (c *Client) SummarizeExchange(ctx domain.Context, question, response string) (string, error) {
	raw, err := c.chat(ctx, "summarize_exchange", summarizeSystemPrompt, summarizeUserPrompt(question, response))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// ReduceSummaries collapses several summaries into one.
func (c *Client) ReduceSummaries(ctx domain.Context, docs []string) (string, error) {
	if len(docs) == 0 {
		return "", fmt.Errorf("%w: no documents to reduce", domain.ErrInvalidArgument)
	}
	raw, err := c.chat(ctx, "reduce_summaries", reduceSystemPrompt, reduceUserPrompt(docs))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// EvaluateOverall produces the aggregate evaluation for a finished session.
func (c *Client) EvaluateOverall(ctx domain.Context, scenarioContext, summary string, turns []domain.TurnRecord) (domain.OverallEvaluation, error) {
	var out domain.OverallEvaluation
	if err := c.chatJSON(ctx, "evaluate_overall", overallSystemPrompt, overallUserPrompt(scenarioContext, summary, turns), &out); err != nil {
		return domain.OverallEvaluation{}, err
	}
	if !domain.ValidRecommendation(out.HiringRecommendation) {
		slog.Warn("oracle returned unknown recommendation, normalizing",
			slog.String("recommendation", out.HiringRecommendation))
		out.HiringRecommendation = domain.RecommendNone
	}
	return out.Clamped(), nil
}

// CheckGrammar assesses language quality across the candidate's answers.
func (c *Client) CheckGrammar(ctx domain.Context, text string) (domain.GrammarAssessment, error) {
	var out domain.GrammarAssessment
	if err := c.chatJSON(ctx, "check_grammar", grammarSystemPrompt, text, &out); err != nil {
		return domain.GrammarAssessment{}, err
	}
	out.Score = domain.ClampScore(out.Score)
	return out, nil
}

// ValidateReport reviews a compiled report for internal consistency.
func (c *Client) ValidateReport(ctx domain.Context, r domain.Report) (domain.ReportValidation, error) {
	rendered, err := json.Marshal(r)
	if err != nil {
		return domain.ReportValidation{}, fmt.Errorf("op=oracle.validate_report: %w", err)
	}
	var out domain.ReportValidation
	if err := c.chatJSON(ctx, "validate_report", validateSystemPrompt, string(rendered), &out); err != nil {
		return domain.ReportValidation{}, err
	}
	return out, nil
}

var _ domain.OracleClient = (*Client)(nil)
