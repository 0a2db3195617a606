package reconcile

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/harrisonrobin/trackersync/pkg/github"
	"github.com/harrisonrobin/trackersync/pkg/ledger"
	"github.com/harrisonrobin/trackersync/pkg/model"
	"github.com/harrisonrobin/trackersync/pkg/palette"
)

// Remote is the subset of the GitHub client a sync needs.
type Remote interface {
	ListIssues(ctx context.Context, state string) ([]github.Issue, error)
	ListMilestones(ctx context.Context) ([]github.Milestone, error)
	ListLabels(ctx context.Context) ([]github.Label, error)
	CreateLabel(ctx context.Context, name, color string) error
	CreateIssue(ctx context.Context, req github.IssueRequest) (github.Issue, error)
	UpdateIssue(ctx context.Context, number int, patch github.IssuePatch) error
	Viewer(ctx context.Context) (github.Viewer, error)
	CreateProject(ctx context.Context, ownerID, title string) (github.Project, error)
	AddProjectItem(ctx context.Context, projectID, contentID string) (string, error)
}

var _ Remote = (*github.Client)(nil)

// Narrator receives human readable progress.
type Narrator interface {
	Phase(n int, title string)
	Step(format string, args ...interface{})
	Warn(w model.Warning)
}

type nopNarrator struct{}

func (nopNarrator) Phase(int, string) {}
func (nopNarrator) Step(string, ...interface{}) {}
func (nopNarrator) Warn(model.Warning) {}

// Options configures a Session.
type Options struct {
	TrackerPath     string
	ProjectName     string
	ProjectID       string
	ExcludeSections []string
	Delay           time.Duration
	DryRun          bool
	Ledger          *ledger.Ledger
	Narrator        Narrator
}

// Session holds the state of one sync run. Nothing in it outlives the run
// except what the ledger persists.
type Session struct {
	Remote          Remote
	TrackerPath     string
	ProjectName     string
	ExcludeSections []string
	Delay           time.Duration
	DryRun          bool
	Ledger          *ledger.Ledger
	Narrator        Narrator

	// Milestones maps milestone title to number, filled by TakeSnapshot.
	Milestones map[string]int
	// Palette knows existing labels and colours new ones.
	Palette *palette.Palette

	// Sleep waits between mutating calls. Replaced in tests.
	Sleep func(ctx context.Context, d time.Duration) error

	projectID string
	mutations int
	lastWrite time.Time
}

// NewSession creates a session for one run.
func NewSession(remote Remote, opts Options) *Session {
	s := &Session{
		Remote:          remote,
		TrackerPath:     opts.TrackerPath,
		ProjectName:     opts.ProjectName,
		ExcludeSections: opts.ExcludeSections,
		Delay:           opts.Delay,
		DryRun:          opts.DryRun,
		Ledger:          opts.Ledger,
		Narrator:        opts.Narrator,
		Milestones:      make(map[string]int),
		Palette:         palette.New(nil),
		Sleep:           sleepContext,
		projectID:       opts.ProjectID,
	}
	if s.Narrator == nil {
		s.Narrator = nopNarrator{}
	}
	if s.Ledger == nil {
		s.Ledger, _ = ledger.Open("")
	}
	return s
}

// ProjectID returns the project issues are linked into, once known.
func (s *Session) ProjectID() string {
	return s.projectID
}

// noteWrite records the modification time the tracker file was left with
// by this run's latest rewrite.
func (s *Session) noteWrite() {
	if fi, err := os.Stat(s.TrackerPath); err == nil {
		s.lastWrite = fi.ModTime()
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// mutate runs one remote mutation, pausing for the configured delay
// before every mutation but the first of the run.
func (s *Session) mutate(ctx context.Context, fn func() error) error {
	if s.mutations > 0 {
		if err := s.Sleep(ctx, s.Delay); err != nil {
			return err
		}
	}
	s.mutations++
	return fn()
}

// ensureProject makes sure a project id is known, creating the project at
// most once per run.
func (s *Session) ensureProject(ctx context.Context) error {
	if s.projectID != "" {
		return nil
	}
	if p, ok := s.Ledger.ProjectInfo(); ok && p.ID != "" {
		s.projectID = p.ID
		s.Narrator.Step("Using project #%d", p.Number)
		return nil
	}

	s.Narrator.Step("Creating new project %q...", s.ProjectName)
	viewer, err := s.Remote.Viewer(ctx)
	if err != nil {
		return err
	}
	var project github.Project
	err = s.mutate(ctx, func() error {
		var err error
		project, err = s.Remote.CreateProject(ctx, viewer.ID, s.ProjectName)
		return err
	})
	if err != nil {
		return err
	}
	s.projectID = project.ID
	s.Ledger.SetProject(ledger.Project{ID: project.ID, Number: project.Number, URL: project.URL})
	if err := s.Ledger.Save(); err != nil {
		return fmt.Errorf("recording project: %w", err)
	}
	s.Narrator.Step("Created project #%d %s", project.Number, project.URL)
	return nil
}
