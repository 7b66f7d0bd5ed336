package exportfile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/adapter/exportfile"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/domain"
)

func sampleExport() domain.SessionExport {
	end := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	return domain.SessionExport{
		Session: domain.Session{
			ID:         "sess-1",
			ScenarioID: "golang-backend",
			Status:     domain.SessionCompleted,
			StartTime:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			EndTime:    &end,
		},
		ScenarioID: "golang-backend",
		Turns: []domain.TurnRecord{
			{ID: "01A", SessionID: "sess-1", UnitID: "q1", Seq: 1, Question: "Q", Response: "A"},
		},
		Report:     &domain.Report{SessionID: "sess-1", Summary: "a summary"},
		ExportedAt: end,
	}
}

func TestExporter_WritesFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	e := exportfile.New(dir)

	path, err := e.Export(context.Background(), sampleExport())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report_sess-1_20260301_103000.json"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"session_id": "sess-1"`)
}

func TestExporter_ReExportIsByteIdentical(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	e := exportfile.New(dir)
	exp := sampleExport()

	p1, err := e.Export(context.Background(), exp)
	require.NoError(t, err)
	b1, err := os.ReadFile(p1)
	require.NoError(t, err)

	p2, err := e.Export(context.Background(), exp)
	require.NoError(t, err)
	b2, err := os.ReadFile(p2)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, b1, b2)
}

func TestExporter_MissingSessionID(t *testing.T) {
	t.Parallel()
	e := exportfile.New(t.TempDir())
	_, err := e.Export(context.Background(), domain.SessionExport{})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}
