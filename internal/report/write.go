package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xab-mack/devstatus/internal/util"
)

// WriteDocuments writes both documents into dir. Each is staged to a temp
// file first and nothing is renamed into place until both are staged, so a
// failed write leaves the previous pair untouched.
func WriteDocuments(dir, statusName, checklistName string, docs Documents) error {
	targets := []struct {
		path    string
		content string
	}{
		{filepath.Join(dir, statusName), docs.Status},
		{filepath.Join(dir, checklistName), docs.Checklist},
	}
	staged := make([]string, 0, len(targets))
	cleanup := func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}
	for _, t := range targets {
		tmp, err := util.Stage(t.path, []byte(t.content), 0o644)
		if err != nil {
			cleanup()
			return err
		}
		staged = append(staged, tmp)
	}
	for i, t := range targets {
		if err := os.Rename(staged[i], t.path); err != nil {
			cleanup()
			return fmt.Errorf("finalize %s: %w", t.path, err)
		}
	}
	return nil
}
