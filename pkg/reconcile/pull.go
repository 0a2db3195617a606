package reconcile

import "github.com/harrisonrobin/trackersync/pkg/model"

// DetectPull finds linked tasks whose issue was closed or reopened remotely.
func DetectPull(tasks []model.Task, snap *Snapshot, excluded []string) []model.PullAction {
	var actions []model.PullAction
	dups := duplicateSet(tasks)

	for i := range tasks {
		task := &tasks[i]
		if !task.Managed(excluded) || !task.Linked() || dups[task.ID()] {
			continue
		}
		remote, ok := snap.Lookup(task.ID())
		if !ok {
			continue
		}

		switch {
		case remote.State == model.StateClosed && !task.Checked:
			actions = append(actions, model.PullAction{TrackerID: task.ID(), Title: task.Title, Action: model.MarkDone})
		case remote.State == model.StateOpen && task.Checked:
			actions = append(actions, model.PullAction{TrackerID: task.ID(), Title: task.Title, Action: model.MarkTodo})
		}
	}
	return actions
}
