package engine

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/xab-mack/devstatus/internal/config"
	"github.com/xab-mack/devstatus/internal/model"
)

// applyIgnores filters findings based on config ignore rules and inline suppression markers
func applyIgnores(findings []model.SecurityFinding, cfg config.Config, root string) []model.SecurityFinding {
	var out []model.SecurityFinding
	for _, f := range findings {
		if isIgnored(f, cfg, root) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func isIgnored(f model.SecurityFinding, cfg config.Config, root string) bool {
	for _, ig := range cfg.Ignore {
		if ig.Check != "" && !strings.EqualFold(ig.Check, f.Check) {
			continue
		}
		if ig.Path != "" {
			if !strings.HasPrefix(filepath.ToSlash(f.File), filepath.ToSlash(ig.Path)) {
				continue
			}
		}
		return true
	}
	if f.File == "" {
		return false
	}
	path := f.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	return hasInlineSuppression(path, f.Check, f.Line)
}

// hasInlineSuppression looks around the finding location for a suppression comment
// Format: // devstatus:ignore CHECK reason
func hasInlineSuppression(filePath, check string, line int) bool {
	f, err := os.Open(filePath)
	if err != nil {
		return false
	}
	defer f.Close()
	var lines []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if len(lines) == 0 || line <= 0 {
		return false
	}
	// five lines above through the line after, 0-based
	from := line - 1 - 5
	if from < 0 {
		from = 0
	}
	to := line
	if to >= len(lines) {
		to = len(lines) - 1
	}
	needle := "devstatus:ignore " + check
	for i := from; i <= to; i++ {
		if strings.Contains(lines[i], needle) {
			return true
		}
	}
	return false
}
