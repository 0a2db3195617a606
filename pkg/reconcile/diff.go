package reconcile

import (
	"fmt"

	"github.com/harrisonrobin/trackersync/pkg/markdown"
	"github.com/harrisonrobin/trackersync/pkg/model"
)

// DiffResult is the ordered change list plus the faults found on the way.
type DiffResult struct {
	Changes  []model.Change
	Warnings []model.Warning
}

// Diff computes the changes that bring the remote in line with tasks.
// Changes follow document order. Diff performs no I/O.
func Diff(tasks []model.Task, snap *Snapshot, excluded []string) DiffResult {
	var res DiffResult
	dups := duplicateSet(tasks)

	for i := range tasks {
		task := &tasks[i]
		if task.InSection(excluded) {
			continue
		}
		id := task.ID()
		if id == "" {
			res.Warnings = append(res.Warnings, model.Warning{
				Kind:    model.WarnMissingID,
				Title:   task.Title,
				Message: "no id, skipping",
			})
			continue
		}
		if dups[id] {
			continue
		}

		if !task.Linked() {
			res.Changes = append(res.Changes, model.Change{
				Action:    model.ActionCreate,
				TrackerID: id,
				Task:      task,
			})
			continue
		}

		remote, ok := snap.Lookup(id)
		if !ok {
			res.Warnings = append(res.Warnings, model.Warning{
				Kind:      model.WarnMissingRemote,
				TrackerID: id,
				Title:     task.Title,
				Message:   fmt.Sprintf("github: %s set but no issue carries this id", task.Field(model.FieldGithub)),
			})
			continue
		}
		if n, ok := task.GithubNumber(); !ok || n != remote.Number {
			res.Warnings = append(res.Warnings, model.Warning{
				Kind:      model.WarnNumberMismatch,
				TrackerID: id,
				Title:     task.Title,
				Message:   fmt.Sprintf("github: %s but the issue carrying this id is #%d", task.Field(model.FieldGithub), remote.Number),
			})
		}

		fields := CompareFields(task, remote)
		fields.State = compareState(task, remote, snap.Synced)
		if fields.Empty() {
			continue
		}
		res.Changes = append(res.Changes, model.Change{
			Action:    model.ActionUpdate,
			TrackerID: id,
			Task:      task,
			Number:    remote.Number,
			Fields:    fields,
		})
	}
	return res
}

// CompareFields returns the title, labels and milestone of remote that
// differ from task. State is compared separately.
func CompareFields(task *model.Task, remote model.RemoteIssue) model.FieldSet {
	var fields model.FieldSet

	// 1. Title
	if task.Title != remote.Title {
		title := task.Title
		fields.Title = &title
	}

	// 2. Labels, as sets
	local := task.Labels()
	if !model.SameLabels(local, remote.Labels) {
		fields.Labels = model.SortedLabels(local)
		if fields.Labels == nil {
			fields.Labels = []string{}
		}
	}

	// 3. Milestone, "" when none
	milestone := task.Field(model.FieldMilestone)
	if milestone != remote.MilestoneTitle() {
		fields.Milestone = &milestone
	}

	return fields
}

// compareState returns the state to push, or nil when local and remote
// agree or only the remote side moved since the last run.
func compareState(task *model.Task, remote model.RemoteIssue, synced map[string]string) *string {
	state := model.StateFor(task.Checked)
	if state == remote.State {
		return nil
	}
	if last, ok := synced[remote.TrackerID]; ok && last == state {
		return nil
	}
	return &state
}

func duplicateSet(tasks []model.Task) map[string]bool {
	set := make(map[string]bool)
	for _, id := range markdown.DuplicateIDs(tasks) {
		set[id] = true
	}
	return set
}
