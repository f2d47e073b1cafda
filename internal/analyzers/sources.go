package analyzers

import (
	"os"

	"github.com/xab-mack/devstatus/internal/model"
)

// Source is the text of one contract file. Present is false when the file
// could not be located or read; analyzers then report Unknown.
type Source struct {
	Path    string
	Text    string
	Present bool
}

// Sources holds the read-only source texts shared by every analyzer.
type Sources map[model.ContractName]Source

func (s Sources) Get(name model.ContractName) Source { return s[name] }

// Locator resolves a contract to its source file.
type Locator interface {
	Locate(name model.ContractName) (string, bool)
}

// LoadSources reads each named contract once. Unreadable files are treated
// like missing ones.
func LoadSources(l Locator, names []model.ContractName) Sources {
	out := make(Sources, len(names))
	for _, n := range names {
		path, ok := l.Locate(n)
		if !ok {
			out[n] = Source{}
			continue
		}
		b, err := os.ReadFile(path)
		if err != nil {
			out[n] = Source{Path: path}
			continue
		}
		out[n] = Source{Path: path, Text: string(b), Present: true}
	}
	return out
}
