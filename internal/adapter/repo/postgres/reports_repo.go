package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/domain"
)

// ReportRepo persists compiled reports as JSON payloads keyed by session.
type ReportRepo struct{ Pool PgxPool }

// NewReportRepo constructs a ReportRepo with the given pool.
func NewReportRepo(p PgxPool) *ReportRepo { return &ReportRepo{Pool: p} }

// Upsert writes the report, replacing any previous one for the session.
func (r *ReportRepo) Upsert(ctx domain.Context, rep domain.Report) error {
	tracer := otel.Tracer("repo.reports")
	ctx, span := tracer.Start(ctx, "reports.Upsert")
	defer span.End()
	payload, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("op=report.upsert: %w", err)
	}
	q := `INSERT INTO reports (id, session_id, payload, created_at) VALUES ($1,$2,$3,$4)
	      ON CONFLICT (session_id) DO UPDATE SET payload = EXCLUDED.payload`
	if _, err := r.Pool.Exec(ctx, q, uuid.New().String(), rep.SessionID, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("op=report.upsert: %w", err)
	}
	return nil
}

// GetBySession loads the report for a session.
func (r *ReportRepo) GetBySession(ctx domain.Context, sessionID string) (domain.Report, error) {
	tracer := otel.Tracer("repo.reports")
	ctx, span := tracer.Start(ctx, "reports.GetBySession")
	defer span.End()
	row := r.Pool.QueryRow(ctx, `SELECT payload FROM reports WHERE session_id=$1`, sessionID)
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if err == pgx.ErrNoRows {
			return domain.Report{}, fmt.Errorf("op=report.get: %w", domain.ErrNotFound)
		}
		return domain.Report{}, fmt.Errorf("op=report.get: %w", err)
	}
	var rep domain.Report
	if err := json.Unmarshal(payload, &rep); err != nil {
		return domain.Report{}, fmt.Errorf("op=report.get: %w", err)
	}
	return rep, nil
}

var _ domain.ReportRepository = (*ReportRepo)(nil)
