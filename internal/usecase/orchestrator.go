package usecase

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/adapter/observability"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/domain"
)

const summaryFallback = "Error generating summary."

// SessionInfo is the caller-facing view of a session after Start or Submit.
type SessionInfo struct {
	SessionID        string               `json:"session_id"`
	ScenarioID       string               `json:"scenario_id"`
	ScenarioTitle    string               `json:"scenario_title"`
	Status           domain.SessionStatus `json:"status"`
	State            domain.TurnState     `json:"state"`
	CurrentQuestion  string               `json:"current_question,omitempty"`
	Reply            string               `json:"reply,omitempty"`
	AwaitingResponse bool                 `json:"awaiting_response"`
	History          []domain.Message     `json:"history"`
}

// SessionDetail is the full read-path projection of a session.
type SessionDetail struct {
	Session domain.Session      `json:"session"`
	Turns   []domain.TurnRecord `json:"turns"`
}

// liveSession is the in-memory working state of one active session.
type liveSession struct {
	sess       domain.Session
	sc         domain.Scenario
	transcript []domain.Message
}

// Orchestrator owns the session lifecycle: admission, strict per-session
// serialization, the live state map, and the completion pipeline that
// turns a finished conversation into a persisted, exported report.
type Orchestrator struct {
	Sessions  domain.SessionRepository
	Turns     domain.TurnRepository
	Reports   domain.ReportRepository
	Scenarios domain.ScenarioStore
	Cache     domain.SessionCache
	Exporter  domain.Exporter

	Engine     *TurnEngine
	Summarizer *Summarizer
	Compiler   *ReportCompiler

	sem *semaphore.Weighted

	mu    sync.Mutex
	live  map[string]*liveSession
	locks map[string]*sync.Mutex
}

// NewOrchestrator constructs an Orchestrator. concurrency caps how many
// Submit calls run at once across all sessions; callers past the cap block.
func NewOrchestrator(
	sessions domain.SessionRepository,
	turns domain.TurnRepository,
	reports domain.ReportRepository,
	scenarios domain.ScenarioStore,
	cache domain.SessionCache,
	exporter domain.Exporter,
	engine *TurnEngine,
	summarizer *Summarizer,
	compiler *ReportCompiler,
	concurrency int64,
) *Orchestrator {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Orchestrator{
		Sessions:   sessions,
		Turns:      turns,
		Reports:    reports,
		Scenarios:  scenarios,
		Cache:      cache,
		Exporter:   exporter,
		Engine:     engine,
		Summarizer: summarizer,
		Compiler:   compiler,
		sem:        semaphore.NewWeighted(concurrency),
		live:       make(map[string]*liveSession),
		locks:      make(map[string]*sync.Mutex),
	}
}

// Start creates a new session. An empty scenarioID selects a random
// scenario; an unknown id yields ErrNotFound.
func (o *Orchestrator) Start(ctx domain.Context, scenarioID string, metadata map[string]string) (SessionInfo, error) {
	var sc domain.Scenario
	var err error
	if scenarioID == "" {
		sc, err = o.Scenarios.SelectRandom(domain.ScenarioFilter{})
	} else {
		sc, err = o.Scenarios.GetByID(scenarioID)
	}
	if err != nil {
		return SessionInfo{}, fmt.Errorf("op=orchestrator.start: %w", err)
	}

	opening, firstUnit, err := o.Engine.Opening(sc)
	if err != nil {
		return SessionInfo{}, err
	}

	now := time.Now().UTC()
	sess := domain.Session{
		ID:            uuid.NewString(),
		ScenarioID:    sc.ID,
		Status:        domain.SessionActive,
		State:         domain.StateAwaitingResponse,
		CurrentUnitID: firstUnit,
		StartTime:     now,
		Metadata:      metadata,
	}
	if err := o.Sessions.Create(ctx, sess); err != nil {
		return SessionInfo{}, fmt.Errorf("op=orchestrator.start: %w", err)
	}

	ls := &liveSession{
		sess: sess,
		sc:   sc,
		transcript: []domain.Message{
			{Role: domain.RoleSystem, Content: systemPrompt, At: now},
			{Role: domain.RoleAgent, Content: opening, At: now},
		},
	}
	o.mu.Lock()
	o.live[sess.ID] = ls
	o.mu.Unlock()
	o.cachePut(ctx, sess)

	observability.SessionsStartedTotal.WithLabelValues(string(sc.Kind)).Inc()
	observability.SessionsActive.Inc()
	return o.info(ls, opening), nil
}

// Submit feeds one candidate message into the session. Calls are
// serialized per session id and admitted through the global semaphore.
func (o *Orchestrator) Submit(ctx domain.Context, sessionID, text string) (SessionInfo, error) {
	if err := o.sem.Acquire(ctx, 1); err != nil {
		return SessionInfo{}, fmt.Errorf("op=orchestrator.submit: %w", err)
	}
	defer o.sem.Release(1)

	lock := o.lockFor(sessionID)
	lock.Lock()
	defer lock.Unlock()

	ls, err := o.loadLive(ctx, sessionID)
	if err != nil {
		return SessionInfo{}, err
	}

	now := time.Now().UTC()
	ls.transcript = append(ls.transcript, domain.Message{Role: domain.RoleParticipant, Content: text, At: now})

	out, err := o.Engine.ProcessMessage(ctx, &ls.sess, ls.sc, ls.transcript, text)
	if err != nil {
		return SessionInfo{}, err
	}
	ls.transcript = append(ls.transcript, domain.Message{Role: domain.RoleAgent, Content: out.Reply, At: time.Now().UTC()})

	if err := o.Sessions.Update(ctx, ls.sess); err != nil {
		return SessionInfo{}, fmt.Errorf("op=orchestrator.submit: %w", err)
	}
	if err := o.Cache.Invalidate(ctx, sessionID); err != nil {
		slog.Warn("session cache invalidate failed", slog.String("session_id", sessionID), slog.Any("error", err))
	}

	if out.Done {
		o.finalize(ctx, ls)
	} else {
		o.cachePut(ctx, ls.sess)
	}
	return o.info(ls, out.Reply), nil
}

// finalize runs the completion pipeline: summarize, compile, persist,
// export, and only then flip the session to completed. Failures in
// report compilation or persistence leave the session in error status.
func (o *Orchestrator) finalize(ctx domain.Context, ls *liveSession) {
	sessionID := ls.sess.ID
	turns, err := o.Turns.ListBySession(ctx, sessionID)
	if err != nil {
		o.fail(ctx, ls, fmt.Errorf("op=orchestrator.finalize: %w", err))
		return
	}

	summary, err := o.Summarizer.Summarize(ctx, turns)
	if err != nil {
		slog.Error("summarization failed, using placeholder",
			slog.String("session_id", sessionID), slog.Any("error", err))
		summary = summaryFallback
	}

	end := time.Now().UTC()
	ls.sess.EndTime = &end

	report, err := o.Compiler.Compile(ctx, ls.sess, ls.sc, turns, summary)
	if err != nil {
		o.fail(ctx, ls, err)
		return
	}
	if err := o.Reports.Upsert(ctx, report); err != nil {
		o.fail(ctx, ls, fmt.Errorf("op=orchestrator.finalize: %w", err))
		return
	}

	exp := domain.SessionExport{
		Session:    ls.sess,
		ScenarioID: ls.sc.ID,
		Turns:      turns,
		Report:     &report,
		ExportedAt: end,
	}
	if _, err := o.Exporter.Export(ctx, exp); err != nil {
		slog.Warn("report export failed, session still completes",
			slog.String("session_id", sessionID), slog.Any("error", err))
	}

	if err := o.Sessions.SetStatus(ctx, sessionID, domain.SessionCompleted, "", &end); err != nil {
		o.fail(ctx, ls, fmt.Errorf("op=orchestrator.finalize: %w", err))
		return
	}
	ls.sess.Status = domain.SessionCompleted
	o.close(ctx, ls, domain.SessionCompleted)
}

func (o *Orchestrator) fail(ctx domain.Context, ls *liveSession, cause error) {
	slog.Error("session pipeline failed",
		slog.String("session_id", ls.sess.ID), slog.Any("error", cause))
	end := time.Now().UTC()
	if err := o.Sessions.SetStatus(ctx, ls.sess.ID, domain.SessionError, cause.Error(), &end); err != nil {
		slog.Error("session status update failed",
			slog.String("session_id", ls.sess.ID), slog.Any("error", err))
	}
	ls.sess.Status = domain.SessionError
	ls.sess.Error = cause.Error()
	o.close(ctx, ls, domain.SessionError)
}

func (o *Orchestrator) close(ctx domain.Context, ls *liveSession, status domain.SessionStatus) {
	o.mu.Lock()
	delete(o.live, ls.sess.ID)
	delete(o.locks, ls.sess.ID)
	o.mu.Unlock()
	if err := o.Cache.Invalidate(ctx, ls.sess.ID); err != nil {
		slog.Warn("session cache invalidate failed", slog.String("session_id", ls.sess.ID), slog.Any("error", err))
	}
	observability.SessionsActive.Dec()
	observability.SessionsCompletedTotal.WithLabelValues(string(status)).Inc()
}

// Get returns the stored session with its turns.
func (o *Orchestrator) Get(ctx domain.Context, sessionID string) (SessionDetail, error) {
	sess, err := o.getSession(ctx, sessionID)
	if err != nil {
		return SessionDetail{}, err
	}
	turns, err := o.Turns.ListBySession(ctx, sessionID)
	if err != nil {
		return SessionDetail{}, fmt.Errorf("op=orchestrator.get: %w", err)
	}
	return SessionDetail{Session: sess, Turns: turns}, nil
}

// List returns session summaries, newest first.
func (o *Orchestrator) List(ctx domain.Context, limit, offset int) ([]domain.SessionSummary, error) {
	return o.Sessions.List(ctx, limit, offset)
}

// Search returns session summaries matching the query and status filter.
func (o *Orchestrator) Search(ctx domain.Context, query string, status domain.SessionStatus, limit, offset int) ([]domain.SessionSummary, error) {
	return o.Sessions.Search(ctx, query, status, limit, offset)
}

// GetReport returns the compiled report for a completed session.
func (o *Orchestrator) GetReport(ctx domain.Context, sessionID string) (domain.Report, error) {
	return o.Reports.GetBySession(ctx, sessionID)
}

// Export writes the session's export artifact and returns its path.
// Only completed sessions export; repeated exports of the same session
// produce identical content.
func (o *Orchestrator) Export(ctx domain.Context, sessionID string) (string, error) {
	sess, err := o.getSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if sess.Status != domain.SessionCompleted {
		return "", fmt.Errorf("op=orchestrator.export: session %s is %s: %w", sessionID, sess.Status, domain.ErrConflict)
	}
	turns, err := o.Turns.ListBySession(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("op=orchestrator.export: %w", err)
	}
	report, err := o.Reports.GetBySession(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("op=orchestrator.export: %w", err)
	}
	exportedAt := sess.StartTime
	if sess.EndTime != nil {
		exportedAt = *sess.EndTime
	}
	exp := domain.SessionExport{
		Session:    sess,
		ScenarioID: sess.ScenarioID,
		Turns:      turns,
		Report:     &report,
		ExportedAt: exportedAt,
	}
	path, err := o.Exporter.Export(ctx, exp)
	if err != nil {
		return "", fmt.Errorf("op=orchestrator.export: %w", err)
	}
	return path, nil
}

// SweepStale flips sessions inactive past the cutoff into error status.
func (o *Orchestrator) SweepStale(ctx domain.Context, cutoff time.Time) (int64, error) {
	n, err := o.Sessions.MarkStale(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("op=orchestrator.sweep: %w", err)
	}
	if n > 0 {
		slog.Info("stale sessions swept", slog.Int64("count", n))
		observability.SessionsActive.Sub(float64(n))
	}
	return n, nil
}

func (o *Orchestrator) lockFor(sessionID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		o.locks[sessionID] = l
	}
	return l
}

// loadLive returns the in-memory state for a session, rebuilding it
// from the scenario and the ordered turn records after a restart.
func (o *Orchestrator) loadLive(ctx domain.Context, sessionID string) (*liveSession, error) {
	o.mu.Lock()
	ls, ok := o.live[sessionID]
	o.mu.Unlock()
	if ok {
		return ls, nil
	}

	sess, err := o.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != domain.SessionActive {
		return nil, fmt.Errorf("op=orchestrator.load: session %s is %s: %w", sessionID, sess.Status, domain.ErrSessionClosed)
	}
	sc, err := o.Scenarios.GetByID(sess.ScenarioID)
	if err != nil {
		return nil, fmt.Errorf("op=orchestrator.load: %w", err)
	}
	turns, err := o.Turns.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("op=orchestrator.load: %w", err)
	}

	ls = &liveSession{sess: rebuildSession(sess, sc, turns), sc: sc}
	ls.transcript = rebuildTranscript(ls.sess, sc, turns)
	o.mu.Lock()
	o.live[sessionID] = ls
	o.mu.Unlock()
	return ls, nil
}

// rebuildSession recomputes the turn machine position from the ordered
// turn records so the session row and the records can never disagree.
func rebuildSession(sess domain.Session, sc domain.Scenario, turns []domain.TurnRecord) domain.Session {
	asked := make([]string, 0, len(turns))
	seen := make(map[string]bool, len(turns))
	for _, t := range turns {
		asked = append(asked, t.UnitID)
		seen[t.UnitID] = true
	}
	sess.AskedUnitIDs = asked

	if sess.CurrentUnitID == "" || seen[sess.CurrentUnitID] {
		for _, u := range sc.Units() {
			if !seen[u.ID] {
				sess.CurrentUnitID = u.ID
				break
			}
		}
	}
	return sess
}

// rebuildTranscript reconstructs the message history from the turn
// records. The system message always comes first, matching Start.
func rebuildTranscript(sess domain.Session, sc domain.Scenario, turns []domain.TurnRecord) []domain.Message {
	msgs := []domain.Message{
		{Role: domain.RoleSystem, Content: systemPrompt, At: sess.StartTime},
	}
	if len(turns) == 0 {
		if u, ok := sc.UnitByID(sess.CurrentUnitID); ok {
			msgs = append(msgs, domain.Message{Role: domain.RoleAgent, Content: openingPreamble + u.Prompt, At: sess.StartTime})
		}
		return msgs
	}
	msgs = append(msgs, domain.Message{Role: domain.RoleAgent, Content: openingPreamble + turns[0].Question, At: sess.StartTime})
	for i, t := range turns {
		msgs = append(msgs, domain.Message{Role: domain.RoleParticipant, Content: t.Response, At: t.CreatedAt})
		if i+1 < len(turns) {
			msgs = append(msgs, domain.Message{Role: domain.RoleAgent, Content: turns[i+1].Question, At: turns[i+1].CreatedAt})
		}
	}
	if u, ok := sc.UnitByID(sess.CurrentUnitID); ok {
		msgs = append(msgs, domain.Message{Role: domain.RoleAgent, Content: u.Prompt, At: turns[len(turns)-1].CreatedAt})
	}
	return msgs
}

// getSession reads through the cache; storage stays the source of truth.
func (o *Orchestrator) getSession(ctx domain.Context, sessionID string) (domain.Session, error) {
	if s, ok, err := o.Cache.Get(ctx, sessionID); err == nil && ok {
		return s, nil
	} else if err != nil {
		slog.Warn("session cache read failed", slog.String("session_id", sessionID), slog.Any("error", err))
	}
	sess, err := o.Sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("op=orchestrator.get: %w", err)
	}
	o.cachePut(ctx, sess)
	return sess, nil
}

func (o *Orchestrator) cachePut(ctx domain.Context, sess domain.Session) {
	if err := o.Cache.Put(ctx, sess); err != nil {
		slog.Warn("session cache write failed", slog.String("session_id", sess.ID), slog.Any("error", err))
	}
}

func (o *Orchestrator) info(ls *liveSession, reply string) SessionInfo {
	info := SessionInfo{
		SessionID:        ls.sess.ID,
		ScenarioID:       ls.sc.ID,
		ScenarioTitle:    ls.sc.Title,
		Status:           ls.sess.Status,
		State:            ls.sess.State,
		Reply:            reply,
		AwaitingResponse: ls.sess.Status == domain.SessionActive && ls.sess.State != domain.StateCompleted,
		History:          append([]domain.Message(nil), ls.transcript...),
	}
	if u, ok := ls.sc.UnitByID(ls.sess.CurrentUnitID); ok {
		info.CurrentQuestion = u.Prompt
	}
	return info
}
