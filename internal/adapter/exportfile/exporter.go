// Package exportfile writes session export artifacts to the local
// filesystem. Content is derived only from stored data, so exporting
// the same completed session twice produces identical bytes.
package exportfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/domain"
)

// Exporter writes export files under a configured directory.
type Exporter struct {
	Dir string
}

// New constructs an Exporter rooted at dir.
func New(dir string) *Exporter {
	if dir == "" {
		dir = "./exports"
	}
	return &Exporter{Dir: dir}
}

// Export writes the session export as indented JSON and returns the
// file path. The filename timestamp comes from the export's own time,
// so re-exports overwrite the same file.
func (e *Exporter) Export(_ domain.Context, exp domain.SessionExport) (string, error) {
	if exp.Session.ID == "" {
		return "", fmt.Errorf("op=export.write: session id required: %w", domain.ErrInvalidArgument)
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return "", fmt.Errorf("op=export.write: %w", err)
	}
	b, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("op=export.write: %w", err)
	}
	name := fmt.Sprintf("report_%s_%s.json", exp.Session.ID, exp.ExportedAt.UTC().Format("20060102_150405"))
	path := filepath.Join(e.Dir, name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("op=export.write: %w", err)
	}
	return path, nil
}

var _ domain.Exporter = (*Exporter)(nil)
