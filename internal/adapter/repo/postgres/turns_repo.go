package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/domain"
)

// TurnRepo persists answered turns across the responses and analyses
// tables. Responses are append-only; ULID ids keep them sortable in
// insertion order.
type TurnRepo struct{ Pool PgxPool }

// NewTurnRepo constructs a TurnRepo with the given pool.
func NewTurnRepo(p PgxPool) *TurnRepo { return &TurnRepo{Pool: p} }

// Create writes the response row and its analysis row in one transaction
// and returns the response id.
func (r *TurnRepo) Create(ctx domain.Context, t domain.TurnRecord) (string, error) {
	tracer := otel.Tracer("repo.turns")
	ctx, span := tracer.Start(ctx, "turns.Create")
	defer span.End()

	id := t.ID
	if id == "" {
		id = ulid.Make().String()
	}
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	payload, err := json.Marshal(t.Analysis)
	if err != nil {
		return "", fmt.Errorf("op=turn.create: %w", err)
	}

	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", fmt.Errorf("op=turn.create: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `INSERT INTO responses (id, session_id, question_id, response_text, created_at) VALUES ($1,$2,$3,$4,$5)`,
		id, t.SessionID, t.UnitID, t.Response, createdAt)
	if err != nil {
		return "", fmt.Errorf("op=turn.create: %w", err)
	}
	_, err = tx.Exec(ctx, `INSERT INTO analyses (id, session_id, question_id, question, response, payload, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		uuid.New().String(), t.SessionID, t.UnitID, t.Question, t.Response, payload, createdAt)
	if err != nil {
		return "", fmt.Errorf("op=turn.create: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("op=turn.create: %w", err)
	}
	return id, nil
}

// ListBySession returns a session's turns in insertion order.
func (r *TurnRepo) ListBySession(ctx domain.Context, sessionID string) ([]domain.TurnRecord, error) {
	tracer := otel.Tracer("repo.turns")
	ctx, span := tracer.Start(ctx, "turns.ListBySession")
	defer span.End()
	q := `SELECT r.id, r.session_id, r.question_id, r.response_text, r.created_at, COALESCE(a.question,''), a.payload
	      FROM responses r
	      LEFT JOIN analyses a ON a.session_id = r.session_id AND a.question_id = r.question_id
	      WHERE r.session_id = $1 ORDER BY r.id`
	rows, err := r.Pool.Query(ctx, q, sessionID)
	if err != nil {
		return nil, fmt.Errorf("op=turn.list: %w", err)
	}
	defer rows.Close()

	var out []domain.TurnRecord
	for rows.Next() {
		var t domain.TurnRecord
		var payload []byte
		if err := rows.Scan(&t.ID, &t.SessionID, &t.UnitID, &t.Response, &t.CreatedAt, &t.Question, &payload); err != nil {
			return nil, fmt.Errorf("op=turn.list: %w", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &t.Analysis); err != nil {
				return nil, fmt.Errorf("op=turn.list: %w", err)
			}
		}
		t.Seq = len(out) + 1
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=turn.list: %w", err)
	}
	return out, nil
}

var _ domain.TurnRepository = (*TurnRepo)(nil)
