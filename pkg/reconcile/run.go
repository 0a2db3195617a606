package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/harrisonrobin/trackersync/pkg/markdown"
	"github.com/harrisonrobin/trackersync/pkg/model"
)

// Report summarises one run.
type Report struct {
	TotalIssues int
	Tracked     int
	Tasks       int
	Created     int
	Updated     int
	Pulled      int
	Warnings    []model.Warning
	DryRun      bool

	// TrackerWritten is the modification time of the tracker file after
	// the run's last rewrite of it. Zero when the run did not write it.
	TrackerWritten time.Time
}

// Run performs one full sync. Phases run once, in order, and any remote
// or file error aborts the run.
func Run(ctx context.Context, s *Session) (*Report, error) {
	report := &Report{DryRun: s.DryRun}
	defer func() { report.TrackerWritten = s.lastWrite }()
	warn := func(ws ...model.Warning) {
		for _, w := range ws {
			report.Warnings = append(report.Warnings, w)
			s.Narrator.Warn(w)
		}
	}

	// Phase 1
	s.Narrator.Phase(1, "Pulling GitHub state")
	snap, err := TakeSnapshot(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	report.TotalIssues = snap.TotalIssues
	report.Tracked = len(snap.ByTrackerID)
	s.Narrator.Step("Found %d issues, %d tracked", snap.TotalIssues, len(snap.ByTrackerID))

	// Phase 2
	s.Narrator.Phase(2, "Parsing "+s.TrackerPath)
	tasks, err := markdown.ParseFile(s.TrackerPath)
	if err != nil {
		return nil, err
	}
	report.Tasks = len(tasks)
	s.Narrator.Step("Found %d tasks", len(tasks))
	warn(markdown.Validate(tasks)...)
	if err := s.settleLedger(tasks); err != nil {
		return nil, err
	}

	// Phase 3
	s.Narrator.Phase(3, "Calculating changes")
	diff := Diff(tasks, snap, s.ExcludeSections)
	warn(diff.Warnings...)
	s.Narrator.Step("%d changes", len(diff.Changes))

	// Phase 4
	s.Narrator.Phase(4, "Pushing to GitHub")
	pushed, err := Push(ctx, s, diff.Changes, snap)
	report.Created = pushed.Created
	report.Updated = pushed.Updated
	report.Warnings = append(report.Warnings, pushed.Warnings...)
	if err != nil {
		return report, err
	}

	// Phase 5
	s.Narrator.Phase(5, "Checking for remote state changes")
	actions := DetectPull(tasks, snap, s.ExcludeSections)
	s.Narrator.Step("%d tasks to update locally", len(actions))

	// Phase 6
	s.Narrator.Phase(6, "Updating "+s.TrackerPath)
	for _, a := range actions {
		if s.DryRun {
			s.Narrator.Step("Would %s %s (%s)", a.Action, a.TrackerID, a.Title)
			continue
		}
		if err := markdown.SetChecked(s.TrackerPath, a.TrackerID, a.Checked()); err != nil {
			return report, fmt.Errorf("pulling %s: %w", a.TrackerID, err)
		}
		s.noteWrite()
		report.Pulled++
		s.Narrator.Step("%s %s (%s)", a.Action, a.TrackerID, a.Title)
	}

	if s.DryRun {
		return report, nil
	}
	s.Ledger.RecordStates(syncedStates(tasks, snap, s.ExcludeSections))
	if err := s.Ledger.Save(); err != nil {
		return report, err
	}
	return report, nil
}

// syncedStates collects the state every managed task is left in. After
// push and pull, local and remote agree for each of them.
func syncedStates(tasks []model.Task, snap *Snapshot, excluded []string) map[string]string {
	dups := duplicateSet(tasks)
	states := make(map[string]string)
	for i := range tasks {
		id := tasks[i].ID()
		if !tasks[i].Managed(excluded) || dups[id] {
			continue
		}
		if remote, ok := snap.Lookup(id); ok {
			states[id] = remote.State
		}
	}
	return states
}

// settleLedger drops ledger entries the tracker file has made obsolete and
// reports those whose task vanished.
func (s *Session) settleLedger(tasks []model.Task) error {
	pending := s.Ledger.Pending()
	if len(pending) == 0 {
		return nil
	}
	sort.Strings(pending)

	byID := make(map[string]*model.Task, len(tasks))
	for i := range tasks {
		if id := tasks[i].ID(); id != "" {
			byID[id] = &tasks[i]
		}
	}

	for _, id := range pending {
		task, ok := byID[id]
		switch {
		case !ok:
			entry, _ := s.Ledger.Get(id)
			slog.Warn("issue created for a task no longer in the tracker", "id", id, "issue", entry.Number)
		case task.Linked():
			s.Ledger.Remove(id)
		default:
			slog.Info("resuming interrupted create", "id", id)
		}
	}

	if s.DryRun {
		return nil
	}
	return s.Ledger.Save()
}
