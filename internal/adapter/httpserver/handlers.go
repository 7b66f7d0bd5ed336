package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/config"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/domain"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/usecase"
)

// SessionService is the orchestrator surface the HTTP layer depends on.
type SessionService interface {
	Start(ctx context.Context, scenarioID string, metadata map[string]string) (usecase.SessionInfo, error)
	Submit(ctx context.Context, sessionID, text string) (usecase.SessionInfo, error)
	Get(ctx context.Context, sessionID string) (usecase.SessionDetail, error)
	List(ctx context.Context, limit, offset int) ([]domain.SessionSummary, error)
	Search(ctx context.Context, query string, status domain.SessionStatus, limit, offset int) ([]domain.SessionSummary, error)
	GetReport(ctx context.Context, sessionID string) (domain.Report, error)
	Export(ctx context.Context, sessionID string) (string, error)
}

// Server aggregates handlers dependencies.
type Server struct {
	Cfg        config.Config
	Sessions   SessionService
	Scenarios  domain.ScenarioStore
	DBCheck    func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error
}

// NewServer constructs an HTTP server with all handlers and checks wired.
func NewServer(cfg config.Config, sessions SessionService, scenarios domain.ScenarioStore, dbCheck, redisCheck func(context.Context) error) *Server {
	return &Server{Cfg: cfg, Sessions: sessions, Scenarios: scenarios, DBCheck: dbCheck, RedisCheck: redisCheck}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

// acceptsJSON rejects clients that only negotiate non-JSON responses.
func acceptsJSON(w http.ResponseWriter, r *http.Request) bool {
	a := r.Header.Get("Accept")
	if a == "" || a == "*/*" || strings.Contains(a, "application/json") {
		return true
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusNotAcceptable)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": "INVALID_ARGUMENT", "message": "not acceptable", "details": map[string]any{"accept": a}}})
	return false
}

func sessionIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := SanitizeSessionID(chi.URLParam(r, "id"))
	if res := ValidateSessionID(id); !res.Valid {
		writeError(w, r, fmt.Errorf("%w: invalid session id", domain.ErrInvalidArgument), res.Errors)
		return "", false
	}
	return id, true
}

func pagination(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")
	if res := ValidatePagination(limitStr, offsetStr); !res.Valid {
		writeError(w, r, fmt.Errorf("%w: invalid pagination", domain.ErrInvalidArgument), res.Errors)
		return 0, 0, false
	}
	limit = 20
	if limitStr != "" {
		limit, _ = strconv.Atoi(limitStr)
	}
	if offsetStr != "" {
		offset, _ = strconv.Atoi(offsetStr)
	}
	return limit, offset, true
}

// CreateSessionHandler starts a new interview session.
func (s *Server) CreateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
		var req struct {
			ScenarioID string            `json:"scenario_id" validate:"omitempty,max=100"`
			Metadata   map[string]string `json:"metadata" validate:"omitempty,max=20"`
		}
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
				return
			}
		}
		if err := getValidator().Struct(req); err != nil {
			verrs := map[string]string{}
			if ve, ok := err.(validator.ValidationErrors); ok {
				for _, fe := range ve {
					verrs[strings.ToLower(fe.Field())] = fe.Tag()
				}
			}
			writeError(w, r, fmt.Errorf("%w: validation failed", domain.ErrInvalidArgument), verrs)
			return
		}
		info, err := s.Sessions.Start(r.Context(), SanitizeString(req.ScenarioID), req.Metadata)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, info)
	}
}

// SubmitResponseHandler feeds a candidate message into a session.
func (s *Server) SubmitResponseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		id, ok := sessionIDParam(w, r)
		if !ok {
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
		var req struct {
			Text string `json:"text" validate:"required,max=10000"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidArgument), nil)
			return
		}
		req.Text = SanitizeString(req.Text)
		if err := getValidator().Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: text required (max 10000 chars)", domain.ErrInvalidArgument), nil)
			return
		}
		info, err := s.Sessions.Submit(r.Context(), id, req.Text)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

// GetSessionHandler returns the stored session with its turns.
func (s *Server) GetSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		id, ok := sessionIDParam(w, r)
		if !ok {
			return
		}
		detail, err := s.Sessions.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

// ListSessionsHandler returns paginated session summaries.
func (s *Server) ListSessionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		limit, offset, ok := pagination(w, r)
		if !ok {
			return
		}
		out, err := s.Sessions.List(r.Context(), limit, offset)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"sessions": out, "limit": limit, "offset": offset})
	}
}

// SearchSessionsHandler returns summaries matching a query and status filter.
func (s *Server) SearchSessionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		q := SanitizeString(r.URL.Query().Get("q"))
		if res := ValidateSearchQuery(q); !res.Valid {
			writeError(w, r, fmt.Errorf("%w: invalid query", domain.ErrInvalidArgument), res.Errors)
			return
		}
		status := r.URL.Query().Get("status")
		if res := ValidateStatus(status); !res.Valid {
			writeError(w, r, fmt.Errorf("%w: invalid status", domain.ErrInvalidArgument), res.Errors)
			return
		}
		limit, offset, ok := pagination(w, r)
		if !ok {
			return
		}
		out, err := s.Sessions.Search(r.Context(), q, domain.SessionStatus(status), limit, offset)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"sessions": out, "limit": limit, "offset": offset})
	}
}

// GetReportHandler returns the compiled report for a completed session.
func (s *Server) GetReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		id, ok := sessionIDParam(w, r)
		if !ok {
			return
		}
		report, err := s.Sessions.GetReport(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// ExportSessionHandler writes the export artifact and returns its path.
func (s *Server) ExportSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		id, ok := sessionIDParam(w, r)
		if !ok {
			return
		}
		path, err := s.Sessions.Export(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"session_id": id, "path": path})
	}
}

// ListScenariosHandler returns the loaded scenarios.
func (s *Server) ListScenariosHandler() http.HandlerFunc {
	type scenarioView struct {
		ID         string              `json:"id"`
		Title      string              `json:"title"`
		Kind       domain.ScenarioKind `json:"kind"`
		Difficulty string              `json:"difficulty,omitempty"`
		Tags       []string            `json:"tags,omitempty"`
		Units      int                 `json:"units"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		all := s.Scenarios.List()
		out := make([]scenarioView, 0, len(all))
		for _, sc := range all {
			out = append(out, scenarioView{
				ID:         sc.ID,
				Title:      sc.Title,
				Kind:       sc.Kind,
				Difficulty: sc.Difficulty,
				Tags:       sc.Tags,
				Units:      len(sc.Units()),
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"scenarios": out})
	}
}

// ReadyzHandler returns a readiness handler that probes DB and Redis.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, 2)
		if s.DBCheck != nil {
			if err := s.DBCheck(ctx); err != nil {
				checks = append(checks, check{Name: "db", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "db", OK: true})
			}
		}
		if s.RedisCheck != nil {
			if err := s.RedisCheck(ctx); err != nil {
				checks = append(checks, check{Name: "redis", OK: false, Details: err.Error()})
			} else {
				checks = append(checks, check{Name: "redis", OK: true})
			}
		}
		ok := true
		for _, c := range checks {
			if !c.OK {
				ok = false
				break
			}
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
