package scenariofile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/adapter/scenariofile"
	"github.com/fairyhunter13/ai-interview-orchestrator/internal/domain"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

const questionnaireJSON = `{
  "id": "golang-backend",
  "title": "Go Backend Interview",
  "difficulty": "senior",
  "tags": ["backend", "golang"],
  "questions": [
    {"id": "q1", "text": "Explain goroutines."},
    {"id": "q2", "text": "What is a channel?"}
  ]
}`

const stagedYAML = `id: support-escalation
title: Support Escalation
description: A frustrated customer calls about a failed deployment.
context:
  situation: Production deployment failed an hour ago
customer_profile:
  company: Mid-size SaaS operator
  contact: Non-technical account owner
conversation_flow:
  - name: greeting
    description: Open the call
  - name: discovery
    description: Find the root cause
    agent_goals:
      - Ask what changed before the failure
evaluation_criteria:
  empathy: Did the agent acknowledge the customer's frustration?
`

func TestStore_LoadsJSONAndYAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "backend.json", questionnaireJSON)
	writeFile(t, dir, "escalation.yaml", stagedYAML)

	st, err := scenariofile.New(dir)
	require.NoError(t, err)

	sc, err := st.GetByID("golang-backend")
	require.NoError(t, err)
	assert.Equal(t, domain.KindQuestionnaire, sc.Kind)
	assert.Len(t, sc.Questions, 2)

	sc, err = st.GetByID("support-escalation")
	require.NoError(t, err)
	assert.Equal(t, domain.KindStaged, sc.Kind)
	require.Len(t, sc.Stages, 2)
	assert.Equal(t, "greeting", sc.Stages[0].Name)
	assert.Equal(t, []string{"Ask what changed before the failure"}, sc.Stages[1].AgentGoals)
	assert.Equal(t, "Production deployment failed an hour ago", sc.Context["situation"])
	assert.Equal(t, "Mid-size SaaS operator", sc.CustomerProfile["company"])
	assert.Equal(t, "Did the agent acknowledge the customer's frustration?", sc.EvaluationCriteria["empathy"])
}

func TestStore_StagedDetectionRequiresAllThreeFields(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	// Has a flow but no customer profile: stays a questionnaire and is
	// dropped for having no askable units.
	writeFile(t, dir, "partial.yaml", `id: partial
context:
  situation: Some context.
conversation_flow:
  - name: greeting
`)
	writeFile(t, dir, "ok.json", questionnaireJSON)

	st, err := scenariofile.New(dir)
	require.NoError(t, err)
	_, err = st.GetByID("partial")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_SkipsMalformedFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "broken.json", `{"id": "broken",`)
	writeFile(t, dir, "notes.txt", "not a scenario")
	writeFile(t, dir, "ok.json", questionnaireJSON)

	st, err := scenariofile.New(dir)
	require.NoError(t, err)
	assert.Len(t, st.List(), 1)
}

func TestStore_MissingIDDerivedFromFilename(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "anonymous.json", `{"questions": [{"id": "q1", "text": "Hi?"}]}`)

	st, err := scenariofile.New(dir)
	require.NoError(t, err)
	sc, err := st.GetByID("anonymous")
	require.NoError(t, err)
	assert.Equal(t, "anonymous", sc.ID)
}

func TestStore_EmptyDirErrors(t *testing.T) {
	t.Parallel()
	_, err := scenariofile.New(t.TempDir())
	require.Error(t, err)
}

func TestStore_SelectRandomHonorsFilter(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "backend.json", questionnaireJSON)
	writeFile(t, dir, "escalation.yaml", stagedYAML)

	st, err := scenariofile.New(dir)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		sc, err := st.SelectRandom(domain.ScenarioFilter{Tags: []string{"golang"}})
		require.NoError(t, err)
		assert.Equal(t, "golang-backend", sc.ID)
	}

	_, err = st.SelectRandom(domain.ScenarioFilter{Difficulty: "intern"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ScenariosCollectionFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "bundle.yaml", `scenarios:
  - id: one
    questions:
      - id: q1
        text: First?
  - id: two
    questions:
      - id: q1
        text: Second?
`)

	st, err := scenariofile.New(dir)
	require.NoError(t, err)
	assert.Len(t, st.List(), 2)

	sc, err := st.GetByID("two")
	require.NoError(t, err)
	assert.Equal(t, "1.0", sc.Version, "missing version defaults")
	assert.False(t, sc.LastUpdated.IsZero(), "missing last_updated defaults to load time")
}

func TestStore_ReloadPicksUpNewFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "backend.json", questionnaireJSON)

	st, err := scenariofile.New(dir)
	require.NoError(t, err)
	assert.Len(t, st.List(), 1)

	writeFile(t, dir, "escalation.yaml", stagedYAML)
	require.NoError(t, st.Reload())
	assert.Len(t, st.List(), 2)
}
