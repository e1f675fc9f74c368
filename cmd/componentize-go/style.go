package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// printer writes command output, styled only when stdout is a terminal.
type printer struct {
	w      io.Writer
	styled bool
}

func newPrinter(w io.Writer) *printer {
	p := &printer{w: w}
	if f, ok := w.(*os.File); ok {
		p.styled = term.IsTerminal(int(f.Fd()))
	}
	return p
}

func (p *printer) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p *printer) title(text string) {
	fmt.Fprintln(p.w, p.render(titleStyle, text))
}

func (p *printer) success(msg, path string) {
	fmt.Fprintf(p.w, "%s %s\n", p.render(successStyle, msg), p.render(pathStyle, path))
}

func (p *printer) item(label, value string) {
	fmt.Fprintf(p.w, "  %s %s\n", p.render(hintStyle, label), p.render(itemStyle, value))
}

func (p *printer) text(s string) {
	fmt.Fprintln(p.w, s)
}

func (p *printer) fail(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", p.render(errorStyle, "error:"), err)
}
