// Package postgres provides PostgreSQL persistence for sessions, turns,
// and reports.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/domain"
)

// PgxPool is a minimal subset of pgxpool used by the repos for easy testing.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// SessionRepo persists and loads sessions using a minimal pgx pool.
type SessionRepo struct{ Pool PgxPool }

// NewSessionRepo constructs a SessionRepo with the given pool.
func NewSessionRepo(p PgxPool) *SessionRepo { return &SessionRepo{Pool: p} }

// Create inserts a new session row.
func (r *SessionRepo) Create(ctx domain.Context, s domain.Session) error {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Create")
	defer span.End()
	asked, meta, err := encodeSessionJSON(s)
	if err != nil {
		return fmt.Errorf("op=session.create: %w", err)
	}
	q := `INSERT INTO sessions (id, scenario_id, status, state, current_unit_id, asked_unit_ids, metadata, error, started_at, completed_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err = r.Pool.Exec(ctx, q, s.ID, s.ScenarioID, s.Status, s.State, s.CurrentUnitID, asked, meta, s.Error, s.StartTime, s.EndTime)
	if err != nil {
		return fmt.Errorf("op=session.create: %w", err)
	}
	return nil
}

// Get loads a session by id.
func (r *SessionRepo) Get(ctx domain.Context, id string) (domain.Session, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Get")
	defer span.End()
	q := `SELECT id, scenario_id, status, state, current_unit_id, asked_unit_ids, metadata, COALESCE(error,''), started_at, completed_at
	      FROM sessions WHERE id=$1`
	row := r.Pool.QueryRow(ctx, q, id)
	s, err := scanSession(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Session{}, fmt.Errorf("op=session.get: %w", domain.ErrNotFound)
		}
		return domain.Session{}, fmt.Errorf("op=session.get: %w", err)
	}
	return s, nil
}

// Update rewrites the mutable session fields.
func (r *SessionRepo) Update(ctx domain.Context, s domain.Session) error {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Update")
	defer span.End()
	asked, meta, err := encodeSessionJSON(s)
	if err != nil {
		return fmt.Errorf("op=session.update: %w", err)
	}
	q := `UPDATE sessions SET status=$2, state=$3, current_unit_id=$4, asked_unit_ids=$5, metadata=$6, error=$7, completed_at=$8 WHERE id=$1`
	_, err = r.Pool.Exec(ctx, q, s.ID, s.Status, s.State, s.CurrentUnitID, asked, meta, s.Error, s.EndTime)
	if err != nil {
		return fmt.Errorf("op=session.update: %w", err)
	}
	return nil
}

// SetStatus updates the session status, error message, and end time.
func (r *SessionRepo) SetStatus(ctx domain.Context, id string, status domain.SessionStatus, errMsg string, endTime *time.Time) error {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.SetStatus")
	defer span.End()
	q := `UPDATE sessions SET status=$2, error=$3, completed_at=$4 WHERE id=$1`
	if _, err := r.Pool.Exec(ctx, q, id, status, errMsg, endTime); err != nil {
		return fmt.Errorf("op=session.set_status: %w", err)
	}
	return nil
}

// List returns session summaries, newest first.
func (r *SessionRepo) List(ctx domain.Context, limit, offset int) ([]domain.SessionSummary, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.List")
	defer span.End()
	q := `SELECT s.id, s.scenario_id, s.status, s.started_at, s.completed_at, COUNT(r.id)
	      FROM sessions s LEFT JOIN responses r ON r.session_id = s.id
	      GROUP BY s.id ORDER BY s.started_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.Pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("op=session.list: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows, "op=session.list")
}

// Search returns session summaries whose id or scenario id matches the
// query, optionally filtered by status.
func (r *SessionRepo) Search(ctx domain.Context, query string, status domain.SessionStatus, limit, offset int) ([]domain.SessionSummary, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.Search")
	defer span.End()
	q := `SELECT s.id, s.scenario_id, s.status, s.started_at, s.completed_at, COUNT(r.id)
	      FROM sessions s LEFT JOIN responses r ON r.session_id = s.id
	      WHERE (s.id ILIKE '%' || $1 || '%' OR s.scenario_id ILIKE '%' || $1 || '%')
	        AND ($2 = '' OR s.status = $2)
	      GROUP BY s.id ORDER BY s.started_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.Pool.Query(ctx, q, query, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("op=session.search: %w", err)
	}
	defer rows.Close()
	return scanSummaries(rows, "op=session.search")
}

// MarkStale flips active sessions started before the cutoff into error
// status and returns how many rows changed.
func (r *SessionRepo) MarkStale(ctx domain.Context, cutoff time.Time) (int64, error) {
	tracer := otel.Tracer("repo.sessions")
	ctx, span := tracer.Start(ctx, "sessions.MarkStale")
	defer span.End()
	q := `UPDATE sessions SET status=$1, error=$2, completed_at=$3 WHERE status=$4 AND started_at < $5`
	tag, err := r.Pool.Exec(ctx, q, domain.SessionError, "session timed out", time.Now().UTC(), domain.SessionActive, cutoff)
	if err != nil {
		return 0, fmt.Errorf("op=session.mark_stale: %w", err)
	}
	return tag.RowsAffected(), nil
}

func encodeSessionJSON(s domain.Session) ([]byte, []byte, error) {
	asked, err := json.Marshal(s.AskedUnitIDs)
	if err != nil {
		return nil, nil, err
	}
	meta, err := json.Marshal(s.Metadata)
	if err != nil {
		return nil, nil, err
	}
	return asked, meta, nil
}

func scanSession(row pgx.Row) (domain.Session, error) {
	var s domain.Session
	var asked, meta []byte
	if err := row.Scan(&s.ID, &s.ScenarioID, &s.Status, &s.State, &s.CurrentUnitID, &asked, &meta, &s.Error, &s.StartTime, &s.EndTime); err != nil {
		return domain.Session{}, err
	}
	if len(asked) > 0 {
		if err := json.Unmarshal(asked, &s.AskedUnitIDs); err != nil {
			return domain.Session{}, err
		}
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &s.Metadata); err != nil {
			return domain.Session{}, err
		}
	}
	return s, nil
}

func scanSummaries(rows pgx.Rows, op string) ([]domain.SessionSummary, error) {
	var out []domain.SessionSummary
	for rows.Next() {
		var s domain.SessionSummary
		if err := rows.Scan(&s.ID, &s.ScenarioID, &s.Status, &s.StartTime, &s.EndTime, &s.Turns); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

var _ domain.SessionRepository = (*SessionRepo)(nil)
