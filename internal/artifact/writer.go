package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Writer persists plan and report documents under a project tree.
//
// Writes are atomic: the document is marshaled to a temporary file next to
// the target and renamed into place, so a crashed invocation never leaves a
// half-written artifact for the next one to parse.
//
// Create instances with [NewWriter] or [NewWriterWithPath]. The zero value
// writes to [Dir] under the working directory.
type Writer struct {
	basePath string
	planPath string
}

// NewWriter creates a Writer rooted at basePath. Pass an empty basePath for
// the working directory.
func NewWriter(basePath string) *Writer {
	return &Writer{basePath: basePath}
}

// NewWriterWithPath creates a Writer with an explicit plan file location.
// The [PlanPathEnv] environment variable still takes precedence.
func NewWriterWithPath(basePath, planPath string) *Writer {
	return &Writer{basePath: basePath, planPath: planPath}
}

// PlanPath returns the plan file location this writer targets.
func (w *Writer) PlanPath() string {
	return ResolvePlanPath(w.basePath, w.planPath)
}

// ReportPath returns the report location for a phase under this writer's root.
func (w *Writer) ReportPath(phase string) string {
	return ReportPath(w.basePath, phase)
}

// WritePlan writes the plan document to [PlanPath], creating parent
// directories as needed.
func (w *Writer) WritePlan(p *Plan) error {
	if err := writeJSON(w.PlanPath(), p); err != nil {
		return errors.Wrap(err, "failed to write plan")
	}
	return nil
}

// WriteReport writes a verification report to qr-<phase>.json under this
// writer's root. The phase is taken from the report itself.
func (w *Writer) WriteReport(r *Report) error {
	if r.Phase == "" {
		return errors.New("report phase is empty")
	}
	if err := writeJSON(w.ReportPath(r.Phase), r); err != nil {
		return errors.Wrapf(err, "failed to write %s report", r.Phase)
	}
	return nil
}

// writeJSON marshals v with indentation and writes it to path via a
// temporary file and rename.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal document")
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create artifact directory")
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write temporary file")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrap(err, "failed to move document into place")
	}
	return nil
}
