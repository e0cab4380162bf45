// Package console renders a session to the terminal: output channel
// messages, rejected events and setup summaries.
package console

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/vk/tracegraph/internal/dispatch"
	"github.com/vk/tracegraph/internal/model"
)

// Printer writes to one terminal stream. It is safe for concurrent use.
type Printer struct {
	mu sync.Mutex
	w  io.Writer

	brand  *color.Color
	subtle *color.Color
	good   *color.Color
	warn   *color.Color
	bad    *color.Color
}

// New creates a printer. With plain set no escape codes are written.
func New(w io.Writer, plain bool) *Printer {
	p := &Printer{
		w:      w,
		brand:  color.New(color.FgHiGreen, color.Bold),
		subtle: color.New(color.FgHiBlack),
		good:   color.New(color.FgGreen),
		warn:   color.New(color.FgYellow),
		bad:    color.New(color.FgRed),
	}
	if plain {
		for _, c := range []*color.Color{p.brand, p.subtle, p.good, p.warn, p.bad} {
			c.DisableColor()
		}
	}
	return p
}

// Committed implements model.Subscriber. Only the output channel is printed;
// graph changes are left to graphical renderers.
func (p *Printer) Committed(_ *model.Model, b model.Batch) {
	if b.Output == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s %s\n", p.brand.Sprint("▶"), *b.Output)
}

// Rejected reports an event the dispatcher refused.
func (p *Printer) Rejected(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var derr *dispatch.Error
	if !errors.As(err, &derr) {
		fmt.Fprintf(p.w, "%s %v\n", p.bad.Sprint("✗"), err)
		return
	}
	action := string(derr.Action)
	if action == "" {
		action = "?"
	}
	fmt.Fprintf(p.w, "%s %s %s %v\n",
		p.warn.Sprint("✗"), p.warn.Sprint(action), p.subtle.Sprintf("(%s)", derr.Kind), derr.Err)
}

// Summary describes a session that is ready to receive events.
type Summary struct {
	Kind      model.Kind
	Graph     string
	Nodes     int
	Edges     int
	Layout    string
	Source    string
	Handlers  int
	ViewerURL string
}

// PrintSummary prints s as an aligned block.
func (p *Printer) PrintSummary(s Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "%s %s\n", p.brand.Sprint("tracegraph"), p.subtle.Sprintf("(%s session)", s.Kind))
	rows := [][2]string{
		{"graph", fmt.Sprintf("%s (%d nodes, %d edges)", s.Graph, s.Nodes, s.Edges)},
		{"layout", s.Layout},
		{"source", s.Source},
		{"handlers", fmt.Sprintf("%d", s.Handlers)},
	}
	if s.ViewerURL != "" {
		rows = append(rows, [2]string{"viewer", s.ViewerURL})
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}
	for _, r := range rows {
		fmt.Fprintf(p.w, "  %s  %s\n", p.subtle.Sprint(r[0]+strings.Repeat(" ", width-len(r[0]))), r[1])
	}
	fmt.Fprintf(p.w, "  %s\n", p.good.Sprint("✓ ready"))
}

// Finished reports the end of a session.
func (p *Printer) Finished(applied, rejected int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := p.good.Sprint("✓")
	if rejected > 0 {
		status = p.warn.Sprint("⚠")
	}
	fmt.Fprintf(p.w, "%s %d event(s) applied, %d rejected\n", status, applied, rejected)
}
