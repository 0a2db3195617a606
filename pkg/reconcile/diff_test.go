package reconcile

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/harrisonrobin/trackersync/pkg/markdown"
	"github.com/harrisonrobin/trackersync/pkg/model"
)

func snapshotOf(issues ...model.RemoteIssue) *Snapshot {
	snap := &Snapshot{ByTrackerID: make(map[string]model.RemoteIssue)}
	for _, i := range issues {
		snap.ByTrackerID[i.TrackerID] = i
		snap.TotalIssues++
	}
	return snap
}

var excluded = []string{"IDEAS"}

func TestDiffCreatesUnlinkedTask(t *testing.T) {
	tasks := markdown.Parse("- [ ] Write parser\n  id: T1\n")

	res := Diff(tasks, snapshotOf(), excluded)

	if len(res.Changes) != 1 {
		t.Fatalf("Expected 1 change, got %d", len(res.Changes))
	}
	ch := res.Changes[0]
	if ch.Action != model.ActionCreate || ch.TrackerID != "T1" || ch.Task.Title != "Write parser" {
		t.Errorf("Expected create of T1, got %s", ch)
	}
}

func TestDiffLabelUpdate(t *testing.T) {
	tasks := markdown.Parse("- [ ] Polish\n  id: T2\n  github: 42\n  labels: ui, bug\n")
	snap := snapshotOf(model.RemoteIssue{Number: 42, Title: "Polish", State: "open", Labels: []string{"bug"}, TrackerID: "T2"})

	res := Diff(tasks, snap, excluded)

	if len(res.Changes) != 1 {
		t.Fatalf("Expected 1 change, got %d", len(res.Changes))
	}
	want := model.FieldSet{Labels: []string{"bug", "ui"}}
	if diff := cmp.Diff(want, res.Changes[0].Fields); diff != "" {
		t.Errorf("Fields mismatch (-want +got):\n%s", diff)
	}
	if res.Changes[0].Number != 42 {
		t.Errorf("Expected update of #42, got #%d", res.Changes[0].Number)
	}
}

func TestDiffLabelsCompareAsSets(t *testing.T) {
	tasks := markdown.Parse("- [ ] Polish\n  id: T2\n  github: 42\n  labels: ui,bug,ui\n")
	snap := snapshotOf(model.RemoteIssue{Number: 42, Title: "Polish", State: "open", Labels: []string{"bug", "ui"}, TrackerID: "T2"})

	if res := Diff(tasks, snap, excluded); len(res.Changes) != 0 {
		t.Errorf("Expected no change for reordered labels, got %v", res.Changes)
	}
}

func TestDiffLabelsIgnoreCase(t *testing.T) {
	tasks := markdown.Parse("- [ ] Polish\n  id: T2\n  github: 42\n  labels: bug\n")
	snap := snapshotOf(model.RemoteIssue{Number: 42, Title: "Polish", State: "open", Labels: []string{"Bug"}, TrackerID: "T2"})

	if res := Diff(tasks, snap, excluded); len(res.Changes) != 0 {
		t.Errorf("Expected no change for differently cased label, got %v", res.Changes)
	}
}

func TestDiffRemovesAllLabels(t *testing.T) {
	tasks := markdown.Parse("- [ ] Polish\n  id: T2\n  github: 42\n")
	snap := snapshotOf(model.RemoteIssue{Number: 42, Title: "Polish", State: "open", Labels: []string{"bug"}, TrackerID: "T2"})

	res := Diff(tasks, snap, excluded)
	if len(res.Changes) != 1 {
		t.Fatalf("Expected 1 change, got %d", len(res.Changes))
	}
	if got := res.Changes[0].Fields.Labels; got == nil || len(got) != 0 {
		t.Errorf("Expected an empty, non-nil label set, got %#v", got)
	}
}

func TestDiffStateTitleAndMilestone(t *testing.T) {
	tasks := markdown.Parse("- [x] New title\n  id: T3\n  github: 7\n  milestone: v2\n")
	snap := snapshotOf(model.RemoteIssue{Number: 7, Title: "Old title", State: "open", Milestone: "v1", HasMilestone: true, TrackerID: "T3"})

	res := Diff(tasks, snap, excluded)
	if len(res.Changes) != 1 {
		t.Fatalf("Expected 1 change, got %d", len(res.Changes))
	}
	title, milestone, state := "New title", "v2", "closed"
	want := model.FieldSet{Title: &title, Milestone: &milestone, State: &state}
	if diff := cmp.Diff(want, res.Changes[0].Fields); diff != "" {
		t.Errorf("Fields mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffAbsentMilestoneEqualsEmpty(t *testing.T) {
	tasks := markdown.Parse("- [ ] Quiet\n  id: T4\n  github: 8\n  milestone:\n")
	snap := snapshotOf(model.RemoteIssue{Number: 8, Title: "Quiet", State: "open", TrackerID: "T4"})

	if res := Diff(tasks, snap, excluded); len(res.Changes) != 0 {
		t.Errorf("Expected no change, got %v", res.Changes)
	}
}

func TestDiffClearsMilestone(t *testing.T) {
	tasks := markdown.Parse("- [ ] Quiet\n  id: T4\n  github: 8\n")
	snap := snapshotOf(model.RemoteIssue{Number: 8, Title: "Quiet", State: "open", Milestone: "v1", HasMilestone: true, TrackerID: "T4"})

	res := Diff(tasks, snap, excluded)
	if len(res.Changes) != 1 || res.Changes[0].Fields.Milestone == nil || *res.Changes[0].Fields.Milestone != "" {
		t.Fatalf("Expected a milestone clear, got %v", res.Changes)
	}
}

func TestDiffSkipsExcludedSection(t *testing.T) {
	content := "## ideas\n- [ ] Moonshot\n  id: T9\n- [ ] Linked idea\n  id: T10\n  github: 3\n"
	tasks := markdown.Parse(content)
	snap := snapshotOf(model.RemoteIssue{Number: 3, Title: "Other", State: "closed", TrackerID: "T10"})

	res := Diff(tasks, snap, excluded)
	if len(res.Changes) != 0 || len(res.Warnings) != 0 {
		t.Errorf("Expected excluded section to be ignored, got %v %v", res.Changes, res.Warnings)
	}
}

func TestDiffWarnings(t *testing.T) {
	content := `- [ ] No id
- [ ] Gone
  id: T5
  github: 99
- [ ] Moved
  id: T6
  github: 10
`
	tasks := markdown.Parse(content)
	snap := snapshotOf(model.RemoteIssue{Number: 11, Title: "Moved", State: "open", TrackerID: "T6"})

	res := Diff(tasks, snap, excluded)

	kinds := make([]model.WarningKind, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		kinds = append(kinds, w.Kind)
	}
	want := []model.WarningKind{model.WarnMissingID, model.WarnMissingRemote, model.WarnNumberMismatch}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("Warnings mismatch (-want +got):\n%s", diff)
	}
	if len(res.Changes) != 0 {
		t.Errorf("Expected mismatched task with equal fields to produce no change, got %v", res.Changes)
	}
}

func TestDiffNumberMismatchStillUpdates(t *testing.T) {
	tasks := markdown.Parse("- [x] Moved\n  id: T6\n  github: 10\n")
	snap := snapshotOf(model.RemoteIssue{Number: 11, Title: "Moved", State: "open", TrackerID: "T6"})

	res := Diff(tasks, snap, excluded)
	if len(res.Changes) != 1 || res.Changes[0].Number != 11 {
		t.Fatalf("Expected update against #11, got %v", res.Changes)
	}
}

func TestDiffSkipsDuplicateIDs(t *testing.T) {
	content := "- [ ] One\n  id: T1\n- [ ] Two\n  id: T1\n- [ ] Three\n  id: T2\n"
	tasks := markdown.Parse(content)

	res := Diff(tasks, snapshotOf(), excluded)
	if len(res.Changes) != 1 || res.Changes[0].TrackerID != "T2" {
		t.Errorf("Expected only T2 to be created, got %v", res.Changes)
	}
}

func TestDiffDocumentOrder(t *testing.T) {
	content := "- [ ] C\n  id: T3\n- [x] A\n  id: T1\n  github: 1\n- [ ] B\n  id: T2\n"
	tasks := markdown.Parse(content)
	snap := snapshotOf(model.RemoteIssue{Number: 1, Title: "A", State: "open", TrackerID: "T1"})

	res := Diff(tasks, snap, excluded)
	var ids []string
	for _, ch := range res.Changes {
		ids = append(ids, ch.TrackerID)
	}
	if diff := cmp.Diff([]string{"T3", "T1", "T2"}, ids); diff != "" {
		t.Errorf("Order mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffIsIdempotentAgainstMatchingRemote(t *testing.T) {
	content := "- [x] Done\n  id: T1\n  github: 1\n  labels: b,a\n  milestone: v1\n"
	tasks := markdown.Parse(content)
	snap := snapshotOf(model.RemoteIssue{Number: 1, Title: "Done", State: "closed", Labels: []string{"a", "b"}, Milestone: "v1", HasMilestone: true, TrackerID: "T1"})

	res := Diff(tasks, snap, excluded)
	if diff := cmp.Diff(DiffResult{}, res, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Expected empty diff (-want +got):\n%s", diff)
	}
}

func TestDiffStateUsesLastSyncedState(t *testing.T) {
	tasks := markdown.Parse("- [ ] Closed remotely\n  id: T1\n  github: 1\n- [x] Closed locally\n  id: T2\n  github: 2\n")
	snap := snapshotOf(
		model.RemoteIssue{Number: 1, Title: "Closed remotely", State: "closed", TrackerID: "T1"},
		model.RemoteIssue{Number: 2, Title: "Closed locally", State: "open", TrackerID: "T2"},
	)
	snap.Synced = map[string]string{"T1": "open", "T2": "open"}

	res := Diff(tasks, snap, excluded)

	if len(res.Changes) != 1 || res.Changes[0].TrackerID != "T2" {
		t.Fatalf("Expected only T2 to be pushed, got %v", res.Changes)
	}
	if got := res.Changes[0].Fields.State; got == nil || *got != "closed" {
		t.Errorf("Expected T2 to be closed, got %v", got)
	}
}
