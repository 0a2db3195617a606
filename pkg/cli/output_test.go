package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/harrisonrobin/trackersync/pkg/model"
	"github.com/harrisonrobin/trackersync/pkg/reconcile"
)

func TestNarrator(t *testing.T) {
	var buf bytes.Buffer
	n := newNarrator(&buf)

	n.Phase(3, "Calculating changes")
	n.Step("%d changes", 2)
	n.Warn(model.Warning{Kind: model.WarnMissingID, Title: "Loose task", Message: "no id, skipping"})
	n.Summary(&reconcile.Report{Created: 1, Updated: 2, Pulled: 3})

	out := buf.String()
	for _, want := range []string{
		"Phase 3: Calculating changes...",
		"  2 changes\n",
		`warning [missing_id] "Loose task": no id, skipping`,
		"Sync complete",
		"created 1, updated 2, pulled 3, warnings 0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("Expected no colour codes when writing to a buffer, got %q", out)
	}
}
