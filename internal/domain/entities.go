package domain

import (
	"context"
	"errors"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrRateLimited     = errors.New("rate limited")
	ErrSessionClosed   = errors.New("session closed")
	ErrOracleFailure   = errors.New("oracle failure")
	ErrSummaryBudget   = errors.New("summary budget exceeded")
	ErrUpstreamTimeout = errors.New("upstream timeout")
	ErrInternal        = errors.New("internal error")
)

//go:generate mockery --name=SessionRepository --with-expecter --filename=session_repository_mock.go
//go:generate mockery --name=TurnRepository --with-expecter --filename=turn_repository_mock.go
//go:generate mockery --name=ReportRepository --with-expecter --filename=report_repository_mock.go
//go:generate mockery --name=ScenarioStore --with-expecter --filename=scenario_store_mock.go
//go:generate mockery --name=OracleClient --with-expecter --filename=oracle_client_mock.go

// SessionStatus enumerates the lifecycle states of an interview session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionError     SessionStatus = "error"
)

// TurnState enumerates the states of the per-session turn machine.
// A session always sits in exactly one of these between requests.
type TurnState string

const (
	StateAwaitingResponse      TurnState = "awaiting_response"
	StateAwaitingClarification TurnState = "awaiting_clarification"
	StateCompleted             TurnState = "completed"
)

// MessageRole identifies who produced a conversation message.
type MessageRole string

const (
	RoleSystem      MessageRole = "system"
	RoleAgent       MessageRole = "agent"
	RoleParticipant MessageRole = "participant"
)

// Message is a single conversation utterance, kept in transcript order.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
	At      time.Time   `json:"at"`
}

// Session is the durable record of one interview run.
// CurrentUnitID and AskedUnitIDs carry the turn machine position so a
// session can be rebuilt from storage after a restart.
type Session struct {
	ID            string            `json:"id"`
	ScenarioID    string            `json:"scenario_id"`
	Status        SessionStatus     `json:"status"`
	State         TurnState         `json:"state"`
	CurrentUnitID string            `json:"current_unit_id,omitempty"`
	AskedUnitIDs  []string          `json:"asked_unit_ids,omitempty"`
	StartTime     time.Time         `json:"start_time"`
	EndTime       *time.Time        `json:"end_time,omitempty"`
	Error         string            `json:"error,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// TurnRecord is one answered question with its per-response analysis.
// Clarification exchanges do not produce turn records; only substantive
// answers do, so Seq counts answered units.
type TurnRecord struct {
	ID        string           `json:"id"`
	SessionID string           `json:"session_id"`
	UnitID    string           `json:"unit_id"`
	Seq       int              `json:"seq"`
	Question  string           `json:"question"`
	Response  string           `json:"response"`
	Analysis  ResponseAnalysis `json:"analysis"`
	CreatedAt time.Time        `json:"created_at"`
}

// ClarificationCheck is the oracle verdict on whether a candidate response
// adequately addresses the question. When it does not, ClarificationQuestion
// carries the follow-up the agent should ask before moving on.
type ClarificationCheck struct {
	NeedsClarification    bool   `json:"needs_clarification"`
	ClarificationQuestion string `json:"clarification_question"`
	Reasoning             string `json:"reasoning"`
}

// TurnOutcome is what the turn machine hands back to the caller after a
// candidate message has been processed.
type TurnOutcome struct {
	// Reply is the agent's next utterance (a clarification question,
	// the next question, or the closing message).
	Reply string
	// Record is non-nil when the response was accepted as an answer.
	Record *TurnRecord
	// Clarified is true when the response needed clarification and the
	// session stayed on the same unit.
	Clarified bool
	// Done is true when the interview has no more units to ask.
	Done bool
}

// SessionSummary is the listing/search projection of a session.
type SessionSummary struct {
	ID         string        `json:"session_id"`
	ScenarioID string        `json:"scenario_id"`
	Status     SessionStatus `json:"status"`
	StartTime  time.Time     `json:"start_time"`
	EndTime    *time.Time    `json:"end_time,omitempty"`
	Turns      int           `json:"turns"`
}

// SessionExport is the full dump of a session used by the export endpoint.
type SessionExport struct {
	Session    Session      `json:"session"`
	ScenarioID string       `json:"scenario_id"`
	Turns      []TurnRecord `json:"turns"`
	Report     *Report      `json:"report,omitempty"`
	ExportedAt time.Time    `json:"exported_at"`
}

// Repositories (ports)

type SessionRepository interface {
	Create(ctx Context, s Session) error
	Get(ctx Context, id string) (Session, error)
	Update(ctx Context, s Session) error
	SetStatus(ctx Context, id string, status SessionStatus, errMsg string, endTime *time.Time) error
	List(ctx Context, limit, offset int) ([]SessionSummary, error)
	Search(ctx Context, query string, status SessionStatus, limit, offset int) ([]SessionSummary, error)
	// MarkStale flips sessions inactive for longer than cutoff into error
	// status and reports how many were affected.
	MarkStale(ctx Context, cutoff time.Time) (int64, error)
}

type TurnRepository interface {
	Create(ctx Context, t TurnRecord) (string, error)
	ListBySession(ctx Context, sessionID string) ([]TurnRecord, error)
}

type ReportRepository interface {
	Upsert(ctx Context, r Report) error
	GetBySession(ctx Context, sessionID string) (Report, error)
}

// ScenarioStore (port)

// ScenarioFilter narrows scenario selection. Zero value matches everything.
type ScenarioFilter struct {
	Tags       []string
	Difficulty string
	Kind       ScenarioKind
}

type ScenarioStore interface {
	GetByID(id string) (Scenario, error)
	SelectRandom(filter ScenarioFilter) (Scenario, error)
	List() []Scenario
	Reload() error
}

// Exporter (port)
// Writes a session export artifact and returns the path it was written to.

type Exporter interface {
	Export(ctx Context, exp SessionExport) (string, error)
}

// SessionCache (port)
// A read-through cache for session lookups; storage remains the source
// of truth and cache misses are never errors.

type SessionCache interface {
	Put(ctx Context, s Session) error
	Get(ctx Context, id string) (Session, bool, error)
	Invalidate(ctx Context, id string) error
}

// OracleClient (port)
// The conversational oracle behind every judgement call the engine makes.
// Implementations must return ErrOracleFailure-wrapped errors only for
// terminal failures; transient retries are their own concern.

type OracleClient interface {
	// CheckClarification judges whether the candidate response adequately
	// addresses the question, and supplies the follow-up to ask when not.
	CheckClarification(ctx Context, question, response string) (ClarificationCheck, error)
	// AnalyzeResponse scores one answer on the per-response axes.
	AnalyzeResponse(ctx Context, scenarioContext, question, response string) (ResponseAnalysis, error)
	// SelectNextUnit picks the id of the next unit to ask from the
	// available set, given what was already asked.
	SelectNextUnit(ctx Context, askedIDs []string, available []Unit, conversationSummary string) (string, error)
	// SummarizeExchange condenses one question/answer pair.
	SummarizeExchange(ctx Context, question, response string) (string, error)
	// ReduceSummaries collapses several summaries into one.
	ReduceSummaries(ctx Context, docs []string) (string, error)
	// EvaluateOverall produces the aggregate evaluation for a finished
	// session from the scenario context, the collapsed conversation
	// summary, and the analyzed turns.
	EvaluateOverall(ctx Context, scenarioContext, summary string, turns []TurnRecord) (OverallEvaluation, error)
	// CheckGrammar assesses language quality across the candidate's answers.
	CheckGrammar(ctx Context, text string) (GrammarAssessment, error)
	// ValidateReport reviews a compiled report for internal consistency.
	ValidateReport(ctx Context, r Report) (ReportValidation, error)
}

// Context is an alias so that domain signatures stay decoupled from the
// std context package at the import-graph level.
type Context = context.Context
