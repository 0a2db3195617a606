package reconcile

import (
	"context"
	"log/slog"

	"github.com/harrisonrobin/trackersync/pkg/model"
	"github.com/harrisonrobin/trackersync/pkg/palette"
)

// Snapshot is the remote state a run diffs against.
type Snapshot struct {
	// TotalIssues counts every issue fetched, with or without a marker.
	TotalIssues int
	ByTrackerID map[string]model.RemoteIssue
	LabelColors map[string]string
	// Synced holds the state each task had when the previous run ended.
	// Without an entry, local state wins.
	Synced map[string]string
}

// Lookup resolves a tracker id to its remote issue.
func (s *Snapshot) Lookup(id string) (model.RemoteIssue, bool) {
	issue, ok := s.ByTrackerID[id]
	return issue, ok
}

// TakeSnapshot fetches all issues, milestones and labels. It fills the
// session's milestone map and label palette as a side effect.
func TakeSnapshot(ctx context.Context, s *Session) (*Snapshot, error) {
	issues, err := s.Remote.ListIssues(ctx, "all")
	if err != nil {
		return nil, err
	}
	milestones, err := s.Remote.ListMilestones(ctx)
	if err != nil {
		return nil, err
	}
	labels, err := s.Remote.ListLabels(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		TotalIssues: len(issues),
		ByTrackerID: make(map[string]model.RemoteIssue),
		LabelColors: make(map[string]string, len(labels)),
		Synced:      s.Ledger.SyncedStates(),
	}

	for _, issue := range issues {
		id, ok := TrackerIDFromBody(issue.Body)
		if !ok {
			continue
		}
		if prev, dup := snap.ByTrackerID[id]; dup {
			slog.Warn("tracker id carried by more than one issue", "id", id, "issues", []int{prev.Number, issue.Number})
			if prev.Number < issue.Number {
				continue
			}
		}
		snap.ByTrackerID[id] = model.RemoteIssue{
			Number:       issue.Number,
			Title:        issue.Title,
			State:        issue.State,
			Labels:       issue.Labels,
			Milestone:    issue.Milestone,
			HasMilestone: issue.HasMilestone,
			NodeID:       issue.NodeID,
			TrackerID:    id,
		}
	}

	s.Milestones = make(map[string]int, len(milestones))
	for _, m := range milestones {
		s.Milestones[m.Title] = m.Number
	}

	for _, l := range labels {
		snap.LabelColors[l.Name] = l.Color
	}
	s.Palette = palette.New(snap.LabelColors)

	slog.Debug("snapshot taken", "issues", snap.TotalIssues, "tracked", len(snap.ByTrackerID), "milestones", len(milestones), "labels", len(labels))
	return snap, nil
}
