package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	checkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
)

const spinnerGlyph = "⠿"

type item struct {
	content string
	done    bool
}

// Printer is a single-writer status board. Items keep their insertion
// order across updates; each update repaints the whole board in place.
// One Printer serves one request and must be closed with End on every
// exit path.
type Printer struct {
	mu        sync.Mutex
	w         io.Writer
	order     []string
	items     map[string]*item
	hideCheck map[string]bool
	lastLines int
	ended     bool
}

func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = io.Discard
	}
	return &Printer{
		w:         w,
		items:     make(map[string]*item),
		hideCheck: make(map[string]bool),
	}
}

// UpdateItem upserts an item and repaints. Re-updating an existing id
// keeps its position on the board.
func (p *Printer) UpdateItem(id, content string, done, hideCheckmark bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ended {
		return
	}
	if it, ok := p.items[id]; ok {
		it.content = content
		it.done = done
	} else {
		p.items[id] = &item{content: content, done: done}
		p.order = append(p.order, id)
	}
	if hideCheckmark {
		p.hideCheck[id] = true
	}
	p.flush()
}

// MarkDone flips the done flag for an existing item. Unknown ids are a no-op.
func (p *Printer) MarkDone(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ended {
		return
	}
	it, ok := p.items[id]
	if !ok {
		return
	}
	it.done = true
	p.flush()
}

// End repaints one last time and releases the board. Safe to call more
// than once.
func (p *Printer) End() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ended {
		return
	}
	p.flush()
	p.ended = true
}

// Render returns the current board as plain lines, without repaint
// control codes.
func (p *Printer) Render() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.render()
}

func (p *Printer) render() string {
	var b strings.Builder
	for _, id := range p.order {
		it := p.items[id]
		switch {
		case it.done && !p.hideCheck[id]:
			b.WriteString(checkStyle.Render("✓") + " " + it.content)
		case it.done:
			b.WriteString(it.content)
		default:
			b.WriteString(spinnerStyle.Render(spinnerGlyph) + " " + it.content)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// flush repaints the board over the previous frame. Callers hold p.mu.
func (p *Printer) flush() {
	frame := p.render()
	if p.lastLines > 0 {
		fmt.Fprintf(p.w, "\x1b[%dA\x1b[J", p.lastLines)
	}
	io.WriteString(p.w, frame)
	p.lastLines = strings.Count(frame, "\n")
}
