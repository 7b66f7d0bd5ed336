package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ScenarioKind discriminates the two scenario shapes at load time so the
// rest of the engine never re-inspects raw fields.
type ScenarioKind string

const (
	// KindQuestionnaire is a flat list of pre-written questions.
	KindQuestionnaire ScenarioKind = "questionnaire"
	// KindStaged is a free-form conversation walked through named stages.
	KindStaged ScenarioKind = "staged"
)

// Question is one pre-written questionnaire item.
type Question struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// Stage is one named step of a staged conversation flow, in declared order.
// AgentGoals are what the agent should accomplish during the stage.
type Stage struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	AgentGoals  []string `json:"agent_goals" yaml:"agent_goals"`
}

// Unit is the uniform view the turn machine works with: a questionnaire
// question, or a pseudo-question derived from a stage.
type Unit struct {
	ID     string
	Prompt string
}

// Scenario is a tagged union: Kind decides which of Questions or Stages
// is populated. Construction happens once at load; consumers switch on
// Kind and never see a half-filled value.
type Scenario struct {
	ID                 string            `json:"id" yaml:"id"`
	Title              string            `json:"title" yaml:"title"`
	Kind               ScenarioKind      `json:"-" yaml:"-"`
	Version            string            `json:"version" yaml:"version"`
	Description        string            `json:"description" yaml:"description"`
	Context            map[string]string `json:"context" yaml:"context"`
	CustomerProfile    map[string]string `json:"customer_profile" yaml:"customer_profile"`
	Difficulty         string            `json:"difficulty" yaml:"difficulty"`
	Tags               []string          `json:"tags" yaml:"tags"`
	Questions          []Question        `json:"questions" yaml:"questions"`
	Stages             []Stage           `json:"conversation_flow" yaml:"conversation_flow"`
	EvaluationCriteria map[string]string `json:"evaluation_criteria" yaml:"evaluation_criteria"`
	LastUpdated        time.Time         `json:"last_updated" yaml:"last_updated"`
}

// StageUnitID returns the pseudo-question id for a stage name.
func StageUnitID(name string) string { return "stage_" + name }

// Units returns the askable units of the scenario in declared order.
// For staged scenarios each stage becomes a pseudo-question.
func (s Scenario) Units() []Unit {
	switch s.Kind {
	case KindStaged:
		out := make([]Unit, 0, len(s.Stages))
		for _, st := range s.Stages {
			prompt := fmt.Sprintf("Handle the %s stage of the conversation", st.Name)
			if len(st.AgentGoals) > 0 {
				prompt += ". Goals: " + strings.Join(st.AgentGoals, "; ")
			}
			out = append(out, Unit{
				ID:     StageUnitID(st.Name),
				Prompt: prompt,
			})
		}
		return out
	default:
		out := make([]Unit, 0, len(s.Questions))
		for _, q := range s.Questions {
			out = append(out, Unit{ID: q.ID, Prompt: q.Text})
		}
		return out
	}
}

// PromptContext renders the scenario background as prompt text: title,
// description, then the context and customer profile key/value pairs in
// sorted key order so the output is stable across runs.
func (s Scenario) PromptContext() string {
	var b strings.Builder
	b.WriteString(s.Title)
	if s.Description != "" {
		b.WriteString("\n")
		b.WriteString(s.Description)
	}
	writeKV(&b, "Context", s.Context)
	writeKV(&b, "Customer profile", s.CustomerProfile)
	return b.String()
}

// EvaluationContext is PromptContext plus the evaluation criteria, for
// prompts that score the whole session.
func (s Scenario) EvaluationContext() string {
	var b strings.Builder
	b.WriteString(s.PromptContext())
	writeKV(&b, "Evaluation criteria", s.EvaluationCriteria)
	return b.String()
}

func writeKV(b *strings.Builder, label string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.WriteString("\n")
	b.WriteString(label)
	b.WriteString(":")
	for _, k := range keys {
		fmt.Fprintf(b, "\n- %s: %s", k, m[k])
	}
}

// UnitByID looks up a unit by id.
func (s Scenario) UnitByID(id string) (Unit, bool) {
	for _, u := range s.Units() {
		if u.ID == id {
			return u, true
		}
	}
	return Unit{}, false
}

// NextStage returns the stage following the named one in declared order.
// An empty name yields the first stage. It returns false after the last
// stage or when the name is unknown.
func (s Scenario) NextStage(name string) (Stage, bool) {
	if name == "" {
		if len(s.Stages) == 0 {
			return Stage{}, false
		}
		return s.Stages[0], true
	}
	for i, st := range s.Stages {
		if st.Name == name {
			if i+1 < len(s.Stages) {
				return s.Stages[i+1], true
			}
			return Stage{}, false
		}
	}
	return Stage{}, false
}

// HasTag reports whether the scenario carries the given tag.
func (s Scenario) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Matches reports whether the scenario satisfies the filter.
func (s Scenario) Matches(f ScenarioFilter) bool {
	if f.Kind != "" && s.Kind != f.Kind {
		return false
	}
	if f.Difficulty != "" && s.Difficulty != f.Difficulty {
		return false
	}
	for _, tag := range f.Tags {
		if !s.HasTag(tag) {
			return false
		}
	}
	return true
}
