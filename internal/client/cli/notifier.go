package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// ToastNotifier prints session notifications as coloured one-liners.
type ToastNotifier struct {
	mu  sync.Mutex
	w   io.Writer
	ok  lipgloss.Style
	bad lipgloss.Style
}

func NewToastNotifier(w io.Writer) *ToastNotifier {
	return &ToastNotifier{
		w: w,
		ok: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80")).
			Bold(true),
		bad: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f87171")).
			Bold(true),
	}
}

func (n *ToastNotifier) Success(msg string) {
	n.print(n.ok.Render("✓ " + msg))
}

func (n *ToastNotifier) Error(msg string) {
	n.print(n.bad.Render("✗ " + msg))
}

func (n *ToastNotifier) print(line string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.w, line)
}
