package postgres_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/domain"
)

func TestSessionRepo_Create(t *testing.T) {
	t.Parallel()
	pool := &poolStub{}
	repo := postgres.NewSessionRepo(pool)

	err := repo.Create(context.Background(), domain.Session{
		ID:            "sess-1",
		ScenarioID:    "golang-backend",
		Status:        domain.SessionActive,
		State:         domain.StateAwaitingResponse,
		CurrentUnitID: "q1",
		StartTime:     time.Now().UTC(),
		Metadata:      map[string]string{"candidate": "ada"},
	})
	require.NoError(t, err)
	require.Len(t, pool.execSQL, 1)
	assert.Contains(t, pool.execSQL[0], "INSERT INTO sessions")
	assert.Equal(t, "sess-1", pool.execArgs[0][0])
}

func TestSessionRepo_Create_ExecError(t *testing.T) {
	t.Parallel()
	pool := &poolStub{execErr: errors.New("db down")}
	repo := postgres.NewSessionRepo(pool)
	err := repo.Create(context.Background(), domain.Session{ID: "sess-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "op=session.create")
}

func TestSessionRepo_Get_RoundTrip(t *testing.T) {
	t.Parallel()
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	asked, _ := json.Marshal([]string{"q1", "q2"})
	meta, _ := json.Marshal(map[string]string{"candidate": "ada"})

	pool := &poolStub{row: rowStub{scan: func(dest ...any) error {
		*(dest[0].(*string)) = "sess-1"
		*(dest[1].(*string)) = "golang-backend"
		*(dest[2].(*domain.SessionStatus)) = domain.SessionActive
		*(dest[3].(*domain.TurnState)) = domain.StateAwaitingResponse
		*(dest[4].(*string)) = "q3"
		*(dest[5].(*[]byte)) = asked
		*(dest[6].(*[]byte)) = meta
		*(dest[7].(*string)) = ""
		*(dest[8].(*time.Time)) = started
		*(dest[9].(**time.Time)) = nil
		return nil
	}}}
	repo := postgres.NewSessionRepo(pool)

	s, err := repo.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "q3", s.CurrentUnitID)
	assert.Equal(t, []string{"q1", "q2"}, s.AskedUnitIDs)
	assert.Equal(t, "ada", s.Metadata["candidate"])
	assert.Nil(t, s.EndTime)
}

func TestSessionRepo_Get_NotFound(t *testing.T) {
	t.Parallel()
	pool := &poolStub{row: rowStub{scan: func(_ ...any) error { return pgx.ErrNoRows }}}
	repo := postgres.NewSessionRepo(pool)
	_, err := repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionRepo_SetStatus(t *testing.T) {
	t.Parallel()
	pool := &poolStub{}
	repo := postgres.NewSessionRepo(pool)
	end := time.Now().UTC()
	require.NoError(t, repo.SetStatus(context.Background(), "sess-1", domain.SessionCompleted, "", &end))
	require.Len(t, pool.execSQL, 1)
	assert.Contains(t, pool.execSQL[0], "UPDATE sessions SET status")
}

func TestSessionRepo_MarkStale(t *testing.T) {
	t.Parallel()
	pool := &poolStub{}
	repo := postgres.NewSessionRepo(pool)
	n, err := repo.MarkStale(context.Background(), time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Contains(t, pool.execSQL[0], "started_at <")
}

func TestSessionRepo_List(t *testing.T) {
	t.Parallel()
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	pool := &poolStub{rows: &rowsStub{scans: []func(dest ...any) error{
		func(dest ...any) error {
			*(dest[0].(*string)) = "sess-1"
			*(dest[1].(*string)) = "golang-backend"
			*(dest[2].(*domain.SessionStatus)) = domain.SessionCompleted
			*(dest[3].(*time.Time)) = started
			*(dest[4].(**time.Time)) = nil
			*(dest[5].(*int)) = 3
			return nil
		},
	}}}
	repo := postgres.NewSessionRepo(pool)

	out, err := repo.List(context.Background(), 20, 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 3, out[0].Turns)
}

func TestSessionRepo_Search_QueryError(t *testing.T) {
	t.Parallel()
	pool := &poolStub{queryErr: errors.New("bad query")}
	repo := postgres.NewSessionRepo(pool)
	_, err := repo.Search(context.Background(), "golang", domain.SessionCompleted, 20, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "op=session.search")
}
