// Package scenariofile loads interview scenarios from a directory of
// JSON and YAML files and serves them through the domain.ScenarioStore port.
package scenariofile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/domain"
)

// Store is a reloadable in-memory scenario catalog backed by files.
type Store struct {
	dir string

	mu    sync.RWMutex
	byID  map[string]domain.Scenario
	order []string
}

// New creates a Store and performs the initial load. A directory with no
// usable scenarios is an error; individual malformed files are skipped.
func New(dir string) (*Store, error) {
	s := &Store{dir: dir, byID: map[string]domain.Scenario{}}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload rescans the directory, replacing the catalog atomically.
func (s *Store) Reload() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("op=scenariofile.Reload: %w", err)
	}
	byID := map[string]domain.Scenario{}
	var order []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		scenarios, err := loadFile(path, ext)
		if err != nil {
			slog.Warn("skipping malformed scenario file", slog.String("path", path), slog.Any("error", err))
			continue
		}
		for i, sc := range scenarios {
			if sc.ID == "" {
				base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
				if len(scenarios) == 1 {
					sc.ID = base
				} else {
					sc.ID = fmt.Sprintf("%s-%d", base, i+1)
				}
			}
			if len(sc.Units()) == 0 {
				slog.Warn("skipping scenario with no askable units", slog.String("path", path), slog.String("id", sc.ID))
				continue
			}
			if _, dup := byID[sc.ID]; dup {
				slog.Warn("skipping duplicate scenario id", slog.String("path", path), slog.String("id", sc.ID))
				continue
			}
			byID[sc.ID] = sc
			order = append(order, sc.ID)
		}
	}
	if len(byID) == 0 {
		return fmt.Errorf("op=scenariofile.Reload: no usable scenarios in %s", s.dir)
	}
	sort.Strings(order)

	s.mu.Lock()
	s.byID = byID
	s.order = order
	s.mu.Unlock()
	slog.Info("scenario catalog loaded", slog.String("dir", s.dir), slog.Int("count", len(order)))
	return nil
}

// scenarioDoc is the on-disk file shape: either a {"scenarios": [...]}
// collection or a single bare scenario.
type scenarioDoc struct {
	Scenarios []domain.Scenario `json:"scenarios" yaml:"scenarios"`
}

func loadFile(path, ext string) ([]domain.Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	unmarshal := yaml.Unmarshal
	if ext == ".json" {
		unmarshal = json.Unmarshal
	}
	var doc scenarioDoc
	if err := unmarshal(data, &doc); err != nil {
		return nil, err
	}
	scenarios := doc.Scenarios
	if len(scenarios) == 0 {
		var single domain.Scenario
		if err := unmarshal(data, &single); err != nil {
			return nil, err
		}
		scenarios = []domain.Scenario{single}
	}
	now := time.Now().UTC()
	for i := range scenarios {
		scenarios[i].Kind = detectKind(scenarios[i])
		if scenarios[i].Version == "" {
			scenarios[i].Version = "1.0"
		}
		if scenarios[i].LastUpdated.IsZero() {
			scenarios[i].LastUpdated = now
		}
	}
	return scenarios, nil
}

// detectKind classifies the scenario once at load. A staged scenario must
// carry context, a customer profile, and a conversation flow; anything
// else is treated as a questionnaire.
func detectKind(sc domain.Scenario) domain.ScenarioKind {
	if len(sc.Context) > 0 && len(sc.CustomerProfile) > 0 && len(sc.Stages) > 0 {
		return domain.KindStaged
	}
	return domain.KindQuestionnaire
}

// GetByID returns the scenario with the given id.
func (s *Store) GetByID(id string) (domain.Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.byID[id]
	if !ok {
		return domain.Scenario{}, fmt.Errorf("op=scenariofile.GetByID: scenario %q: %w", id, domain.ErrNotFound)
	}
	return sc, nil
}

// SelectRandom picks a uniformly random scenario among those matching the filter.
func (s *Store) SelectRandom(filter domain.ScenarioFilter) (domain.Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var candidates []domain.Scenario
	for _, id := range s.order {
		if sc := s.byID[id]; sc.Matches(filter) {
			candidates = append(candidates, sc)
		}
	}
	if len(candidates) == 0 {
		return domain.Scenario{}, fmt.Errorf("op=scenariofile.SelectRandom: no scenario matches filter: %w", domain.ErrNotFound)
	}
	return candidates[rand.Intn(len(candidates))], nil //nolint:gosec // Selection does not need crypto randomness.
}

// List returns all scenarios in stable id order.
func (s *Store) List() []domain.Scenario {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Scenario, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Filter returns the scenarios matching the filter, in stable id order.
func (s *Store) Filter(filter domain.ScenarioFilter) []domain.Scenario {
	var out []domain.Scenario
	for _, sc := range s.List() {
		if sc.Matches(filter) {
			out = append(out, sc)
		}
	}
	return out
}
