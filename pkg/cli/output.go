package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/harrisonrobin/trackersync/pkg/model"
	"github.com/harrisonrobin/trackersync/pkg/reconcile"
)

const ruleWidth = 70

// narrator prints sync progress. Colours are dropped automatically when
// w is not a terminal.
type narrator struct {
	w      io.Writer
	header lipgloss.Style
	phase  lipgloss.Style
	warn   lipgloss.Style
	muted  lipgloss.Style
}

func newNarrator(w io.Writer) *narrator {
	r := lipgloss.NewRenderer(w)
	return &narrator{
		w:      w,
		header: r.NewStyle().Bold(true),
		phase:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("62")),
		warn:   r.NewStyle().Foreground(lipgloss.Color("214")),
		muted:  r.NewStyle().Foreground(lipgloss.Color("244")),
	}
}

func (n *narrator) Banner(title string) {
	rule := n.muted.Render(strings.Repeat("=", ruleWidth))
	fmt.Fprintln(n.w, rule)
	fmt.Fprintln(n.w, n.header.Render(title))
	fmt.Fprintln(n.w, rule)
}

func (n *narrator) Phase(num int, title string) {
	fmt.Fprintf(n.w, "\n%s\n", n.phase.Render(fmt.Sprintf("Phase %d: %s...", num, title)))
}

func (n *narrator) Step(format string, args ...interface{}) {
	fmt.Fprintf(n.w, "  %s\n", fmt.Sprintf(format, args...))
}

func (n *narrator) Warn(w model.Warning) {
	fmt.Fprintf(n.w, "  %s\n", n.warn.Render(fmt.Sprintf("warning [%s] %s", w.Kind, w)))
}

// Summary prints the closing block of a sync.
func (n *narrator) Summary(r *reconcile.Report) {
	title := "Sync complete"
	if r.DryRun {
		title = "Dry run complete, nothing was changed"
	}
	fmt.Fprintln(n.w)
	n.Banner(title)
	fmt.Fprintf(n.w, "  created %d, updated %d, pulled %d, warnings %d\n", r.Created, r.Updated, r.Pulled, len(r.Warnings))
}
