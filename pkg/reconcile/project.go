package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harrisonrobin/trackersync/pkg/github"
	"github.com/harrisonrobin/trackersync/pkg/ledger"
)

// BootstrapResult reports what BootstrapProject did.
type BootstrapResult struct {
	Project github.Project
	Added   int
	Failed  int
}

// BootstrapProject creates a new project for the authenticated user and
// adds every issue of the repository to it. Issues that fail to link are
// logged and skipped. The project becomes the one later syncs link into.
func BootstrapProject(ctx context.Context, s *Session) (BootstrapResult, error) {
	var res BootstrapResult

	viewer, err := s.Remote.Viewer(ctx)
	if err != nil {
		return res, err
	}
	s.Narrator.Step("User: %s", viewer.Login)

	if s.DryRun {
		s.Narrator.Step("Would create project %q", s.ProjectName)
		return res, nil
	}

	err = s.mutate(ctx, func() error {
		var err error
		res.Project, err = s.Remote.CreateProject(ctx, viewer.ID, s.ProjectName)
		return err
	})
	if err != nil {
		return res, err
	}
	s.projectID = res.Project.ID
	s.Ledger.SetProject(ledger.Project{ID: res.Project.ID, Number: res.Project.Number, URL: res.Project.URL})
	if err := s.Ledger.Save(); err != nil {
		return res, fmt.Errorf("recording project: %w", err)
	}
	s.Narrator.Step("Created project #%d %s", res.Project.Number, res.Project.URL)

	issues, err := s.Remote.ListIssues(ctx, "all")
	if err != nil {
		return res, err
	}
	s.Narrator.Step("Found %d issues", len(issues))

	for _, issue := range issues {
		err := s.mutate(ctx, func() error {
			_, err := s.Remote.AddProjectItem(ctx, res.Project.ID, issue.NodeID)
			return err
		})
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if err != nil {
			res.Failed++
			slog.Warn("failed to add issue to project", "issue", issue.Number, "err", err)
			continue
		}
		res.Added++
		s.Narrator.Step("Added #%d: %s", issue.Number, issue.Title)
	}
	return res, nil
}
