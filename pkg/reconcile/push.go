package reconcile

import (
	"context"
	"fmt"

	"github.com/harrisonrobin/trackersync/pkg/github"
	"github.com/harrisonrobin/trackersync/pkg/ledger"
	"github.com/harrisonrobin/trackersync/pkg/markdown"
	"github.com/harrisonrobin/trackersync/pkg/model"
)

// PushResult summarises what Push applied.
type PushResult struct {
	Created  int
	Updated  int
	Warnings []model.Warning
}

// Push applies changes in order, one remote call at a time. Every applied
// patch is written back into snap. The first remote error aborts; changes
// already applied are not rolled back.
func Push(ctx context.Context, s *Session, changes []model.Change, snap *Snapshot) (PushResult, error) {
	var res PushResult

	for _, ch := range changes {
		if s.DryRun {
			s.Narrator.Step("Would %s", ch)
			if ch.Action == model.ActionUpdate {
				applyToSnapshot(snap, ch.TrackerID, ch.Fields)
			}
			continue
		}
		if err := s.ensureProject(ctx); err != nil {
			return res, fmt.Errorf("ensuring project: %w", err)
		}

		switch ch.Action {
		case model.ActionCreate:
			if err := s.create(ctx, ch, snap, &res); err != nil {
				return res, fmt.Errorf("creating %s: %w", ch.TrackerID, err)
			}
			res.Created++
		case model.ActionUpdate:
			applied, err := s.update(ctx, ch, snap, &res)
			if err != nil {
				return res, fmt.Errorf("updating %s: %w", ch.TrackerID, err)
			}
			if applied {
				res.Updated++
			}
		}
	}
	return res, nil
}

func (s *Session) warn(res *PushResult, w model.Warning) {
	res.Warnings = append(res.Warnings, w)
	s.Narrator.Warn(w)
}

// milestoneNumber resolves a milestone title, warning when it is unknown.
func (s *Session) milestoneNumber(task *model.Task, title string, res *PushResult) (int, bool) {
	n, ok := s.Milestones[title]
	if !ok {
		s.warn(res, model.Warning{
			Kind:      model.WarnUnknownMilestone,
			TrackerID: task.ID(),
			Title:     task.Title,
			Message:   fmt.Sprintf("milestone %q does not exist, leaving it unset", title),
		})
	}
	return n, ok
}

// ensureLabels creates labels the repository does not have yet.
func (s *Session) ensureLabels(ctx context.Context, labels []string) error {
	for _, l := range labels {
		if s.Palette.Has(l) {
			continue
		}
		color := s.Palette.ColorFor(l)
		err := s.mutate(ctx, func() error {
			return s.Remote.CreateLabel(ctx, l, color)
		})
		if err != nil {
			return err
		}
		s.Narrator.Step("Created label %s (#%s)", l, color)
	}
	return nil
}

func (s *Session) create(ctx context.Context, ch model.Change, snap *Snapshot, res *PushResult) error {
	task := ch.Task
	id := ch.TrackerID
	labels := task.Labels()

	var number int
	var nodeID string
	milestone := task.Field(model.FieldMilestone)
	hasMilestone := false

	if entry, ok := s.Ledger.Get(id); ok && entry.Has(ledger.StepCreate) {
		number, nodeID = entry.Number, entry.NodeID
		s.Narrator.Step("Resuming %s: issue #%d already created", id, number)
	} else {
		if err := s.ensureLabels(ctx, labels); err != nil {
			return err
		}
		req := github.IssueRequest{
			Title:  task.Title,
			Body:   IssueBody(task),
			Labels: labels,
		}
		if milestone != "" {
			if n, ok := s.milestoneNumber(task, milestone, res); ok {
				req.Milestone = &n
				hasMilestone = true
			}
		}

		var issue github.Issue
		err := s.mutate(ctx, func() error {
			var err error
			issue, err = s.Remote.CreateIssue(ctx, req)
			return err
		})
		if err != nil {
			return err
		}
		number, nodeID = issue.Number, issue.NodeID
		s.Ledger.RecordCreate(id, number, nodeID)
		if err := s.Ledger.Save(); err != nil {
			return err
		}
		s.Narrator.Step("Created #%d %s", number, task.Title)
	}

	if !s.Ledger.Done(id, ledger.StepLink) {
		err := s.mutate(ctx, func() error {
			_, err := s.Remote.AddProjectItem(ctx, s.projectID, nodeID)
			return err
		})
		if err != nil {
			return err
		}
		s.Ledger.Mark(id, ledger.StepLink)
		if err := s.Ledger.Save(); err != nil {
			return err
		}
	}

	if !s.Ledger.Done(id, ledger.StepWriteLocal) {
		if err := markdown.SetGithub(s.TrackerPath, id, number); err != nil {
			return err
		}
		s.noteWrite()
		s.Ledger.Mark(id, ledger.StepWriteLocal)
		if err := s.Ledger.Save(); err != nil {
			return err
		}
	}

	snap.ByTrackerID[id] = model.RemoteIssue{
		Number:       number,
		Title:        task.Title,
		State:        model.StateOpen,
		Labels:       labels,
		Milestone:    milestone,
		HasMilestone: hasMilestone,
		NodeID:       nodeID,
		TrackerID:    id,
	}
	return nil
}

func (s *Session) update(ctx context.Context, ch model.Change, snap *Snapshot, res *PushResult) (bool, error) {
	f := ch.Fields
	patch := github.IssuePatch{Title: f.Title, State: f.State}

	if f.Labels != nil {
		if err := s.ensureLabels(ctx, f.Labels); err != nil {
			return false, err
		}
		labels := f.Labels
		patch.Labels = &labels
	}

	if f.Milestone != nil {
		if *f.Milestone == "" {
			patch.ClearMilestone = true
		} else if n, ok := s.milestoneNumber(ch.Task, *f.Milestone, res); ok {
			patch.Milestone = &n
		} else {
			f.Milestone = nil
		}
	}

	if f.Empty() {
		return false, nil
	}

	err := s.mutate(ctx, func() error {
		return s.Remote.UpdateIssue(ctx, ch.Number, patch)
	})
	if err != nil {
		return false, err
	}
	s.Narrator.Step("Updated #%d %v", ch.Number, f.Names())
	applyToSnapshot(snap, ch.TrackerID, f)
	return true, nil
}

// applyToSnapshot records an applied patch so later phases see the
// remote as it is now.
func applyToSnapshot(snap *Snapshot, id string, f model.FieldSet) {
	remote, ok := snap.ByTrackerID[id]
	if !ok {
		return
	}
	if f.Title != nil {
		remote.Title = *f.Title
	}
	if f.State != nil {
		remote.State = *f.State
	}
	if f.Labels != nil {
		remote.Labels = f.Labels
	}
	if f.Milestone != nil {
		remote.Milestone = *f.Milestone
		remote.HasMilestone = *f.Milestone != ""
	}
	snap.ByTrackerID[id] = remote
}
