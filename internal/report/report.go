// Package report renders a pipeline result into the status narrative and
// the expectations checklist. Rendering is a pure function of the result:
// every traversal follows the contract enumeration order or a sorted order.
package report

import (
	"fmt"
	"strings"

	"github.com/xab-mack/devstatus/internal/engine"
)

// Documents holds both rendered artifacts.
type Documents struct {
	Status    string
	Checklist string
}

func Render(res *engine.Result) Documents {
	return Documents{
		Status:    RenderStatus(res),
		Checklist: RenderChecklist(Checklist(res)),
	}
}

// page accumulates markdown lines.
type page struct {
	b strings.Builder
}

func (p *page) line(format string, args ...any) {
	if len(args) == 0 {
		p.b.WriteString(format)
	} else {
		fmt.Fprintf(&p.b, format, args...)
	}
	p.b.WriteByte('\n')
}

func (p *page) blank() { p.b.WriteByte('\n') }

func (p *page) section(title string) { p.line("## %s", title) }

func (p *page) String() string { return p.b.String() }

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
