// Package usecase contains application business logic services.
package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/domain"
)

const (
	systemPrompt = "You are an HR interviewer conducting a technical assessment interview. " +
		"Your goal is to evaluate the candidate's responses to technical questions. " +
		"Be professional, courteous, and thorough in your interactions."
	openingPreamble = "Let's begin the interview. "
	closingMessage  = "Thank you for completing this interview. We'll now evaluate your responses."
)

// TurnEngine drives one session through its question units: it judges
// each candidate response for adequacy, analyzes answers, records turns,
// and decides what the agent says next.
type TurnEngine struct {
	Oracle domain.OracleClient
	Turns  domain.TurnRepository
}

// NewTurnEngine constructs a TurnEngine with its dependencies.
func NewTurnEngine(o domain.OracleClient, t domain.TurnRepository) *TurnEngine {
	return &TurnEngine{Oracle: o, Turns: t}
}

// Opening returns the agent's opening message and the id of the
// first unit to ask. The first unit is always the first in declared
// order; the oracle is not consulted for the opener.
func (e *TurnEngine) Opening(sc domain.Scenario) (string, string, error) {
	units := sc.Units()
	if len(units) == 0 {
		return "", "", fmt.Errorf("op=turn.opening: scenario %s has no units: %w", sc.ID, domain.ErrInvalidArgument)
	}
	return openingPreamble + units[0].Prompt, units[0].ID, nil
}

// ProcessMessage advances the session by one candidate message. It
// mutates sess in place (state, current unit, asked units) and persists
// a turn record for accepted answers. Responses that need clarification
// leave the session on the same unit and produce no record.
func (e *TurnEngine) ProcessMessage(ctx domain.Context, sess *domain.Session, sc domain.Scenario, transcript []domain.Message, response string) (domain.TurnOutcome, error) {
	if sess.State == domain.StateCompleted || sess.Status != domain.SessionActive {
		return domain.TurnOutcome{}, fmt.Errorf("op=turn.process: session %s: %w", sess.ID, domain.ErrSessionClosed)
	}
	unit, ok := sc.UnitByID(sess.CurrentUnitID)
	if !ok {
		return domain.TurnOutcome{}, fmt.Errorf("op=turn.process: unit %s not in scenario %s: %w", sess.CurrentUnitID, sc.ID, domain.ErrInternal)
	}

	// The adequacy check fails open: if the oracle cannot decide, the
	// response is accepted as an answer so the interview keeps moving.
	check, err := e.Oracle.CheckClarification(ctx, unit.Prompt, response)
	if err != nil {
		slog.Warn("clarification check failed, accepting response as answer",
			slog.String("session_id", sess.ID), slog.Any("error", err))
		check = domain.ClarificationCheck{}
	}
	if check.NeedsClarification {
		return e.handleClarification(sess, unit, check), nil
	}
	return e.handleAnswer(ctx, sess, sc, transcript, unit, response)
}

func (e *TurnEngine) handleClarification(sess *domain.Session, unit domain.Unit, check domain.ClarificationCheck) domain.TurnOutcome {
	reply := strings.TrimSpace(check.ClarificationQuestion)
	if reply == "" {
		slog.Warn("oracle flagged response without a follow-up, restating question",
			slog.String("session_id", sess.ID), slog.String("unit_id", unit.ID))
		reply = unit.Prompt
	}
	sess.State = domain.StateAwaitingClarification
	observability.TurnsProcessedTotal.WithLabelValues("clarification").Inc()
	return domain.TurnOutcome{Reply: reply, Clarified: true}
}

func (e *TurnEngine) handleAnswer(ctx domain.Context, sess *domain.Session, sc domain.Scenario, transcript []domain.Message, unit domain.Unit, response string) (domain.TurnOutcome, error) {
	analysis, err := e.Oracle.AnalyzeResponse(ctx, sc.PromptContext(), unit.Prompt, response)
	if err != nil {
		slog.Error("response analysis failed, recording neutral scores",
			slog.String("session_id", sess.ID), slog.String("unit_id", unit.ID), slog.Any("error", err))
		analysis = domain.NeutralAnalysis()
		observability.DegradedAnalysesTotal.Inc()
	}

	rec := domain.TurnRecord{
		SessionID: sess.ID,
		UnitID:    unit.ID,
		Seq:       len(sess.AskedUnitIDs) + 1,
		Question:  unit.Prompt,
		Response:  response,
		Analysis:  analysis,
		CreatedAt: time.Now().UTC(),
	}
	id, err := e.Turns.Create(ctx, rec)
	if err != nil {
		return domain.TurnOutcome{}, fmt.Errorf("op=turn.record: %w", err)
	}
	rec.ID = id
	sess.AskedUnitIDs = append(sess.AskedUnitIDs, unit.ID)
	observability.TurnsProcessedTotal.WithLabelValues("answer").Inc()

	remaining := remainingUnits(sc, sess.AskedUnitIDs)
	if len(remaining) == 0 {
		sess.State = domain.StateCompleted
		sess.CurrentUnitID = ""
		return domain.TurnOutcome{Reply: closingMessage, Record: &rec, Done: true}, nil
	}

	next := e.selectNext(ctx, sess, transcript, remaining)
	sess.CurrentUnitID = next.ID
	sess.State = domain.StateAwaitingResponse
	return domain.TurnOutcome{Reply: next.Prompt, Record: &rec}, nil
}

// selectNext picks the next unit to ask. With exactly one unit left the
// choice is deterministic and the oracle is skipped. Otherwise the
// oracle ranks the remaining units; an unmatched or failed reply falls
// back to the first remaining unit in declared order.
func (e *TurnEngine) selectNext(ctx domain.Context, sess *domain.Session, transcript []domain.Message, remaining []domain.Unit) domain.Unit {
	if len(remaining) == 1 {
		return remaining[0]
	}
	reply, err := e.Oracle.SelectNextUnit(ctx, sess.AskedUnitIDs, remaining, renderTranscript(transcript))
	if err != nil {
		slog.Warn("next unit selection failed, falling back to declared order",
			slog.String("session_id", sess.ID), slog.Any("error", err))
		return remaining[0]
	}
	id := cleanUnitID(reply)
	for _, u := range remaining {
		if u.ID == id {
			return u
		}
	}
	slog.Warn("next unit selection returned unknown id, falling back to declared order",
		slog.String("session_id", sess.ID), slog.String("reply", reply))
	return remaining[0]
}

// cleanUnitID extracts a unit id from an oracle reply that may carry a
// label prefix or trailing commentary, e.g. "ID: q3, it builds on q1".
func cleanUnitID(reply string) string {
	id := strings.TrimSpace(reply)
	if i := strings.Index(id, ","); i >= 0 {
		id = id[:i]
	}
	id = strings.TrimSpace(strings.TrimPrefix(id, "ID:"))
	return id
}

func remainingUnits(sc domain.Scenario, asked []string) []domain.Unit {
	seen := make(map[string]bool, len(asked))
	for _, id := range asked {
		seen[id] = true
	}
	var out []domain.Unit
	for _, u := range sc.Units() {
		if !seen[u.ID] {
			out = append(out, u)
		}
	}
	return out
}

func renderTranscript(msgs []domain.Message) string {
	var b strings.Builder
	for _, m := range msgs {
		b.WriteString(string(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}
