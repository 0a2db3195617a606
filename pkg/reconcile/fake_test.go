package reconcile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harrisonrobin/trackersync/pkg/github"
	"github.com/harrisonrobin/trackersync/pkg/ledger"
	"github.com/harrisonrobin/trackersync/pkg/model"
)

var errBoom = errors.New("boom")

// fakeRemote is an in-memory repository.
type fakeRemote struct {
	issues     []github.Issue
	milestones []github.Milestone
	labels     []github.Label
	next       int

	calls   []string
	created []github.IssueRequest
	patches map[int][]github.IssuePatch
	items   []string

	// failOn makes the named method return errBoom.
	failOn string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{next: 100, patches: make(map[int][]github.IssuePatch)}
}

func (f *fakeRemote) call(name string) error {
	f.calls = append(f.calls, name)
	if f.failOn == name {
		return errBoom
	}
	return nil
}

func (f *fakeRemote) count(name string) int {
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeRemote) issue(number int) *github.Issue {
	for i := range f.issues {
		if f.issues[i].Number == number {
			return &f.issues[i]
		}
	}
	return nil
}

func (f *fakeRemote) addIssue(number int, id, title, state string, labels ...string) {
	f.issues = append(f.issues, github.Issue{
		Number: number,
		Title:  title,
		State:  state,
		Body:   Marker(id) + "\n\nbody",
		NodeID: fmt.Sprintf("I_%d", number),
		Labels: labels,
	})
}

func (f *fakeRemote) ListIssues(ctx context.Context, state string) ([]github.Issue, error) {
	if err := f.call("ListIssues"); err != nil {
		return nil, err
	}
	return append([]github.Issue(nil), f.issues...), nil
}

func (f *fakeRemote) ListMilestones(ctx context.Context) ([]github.Milestone, error) {
	if err := f.call("ListMilestones"); err != nil {
		return nil, err
	}
	return f.milestones, nil
}

func (f *fakeRemote) ListLabels(ctx context.Context) ([]github.Label, error) {
	if err := f.call("ListLabels"); err != nil {
		return nil, err
	}
	return f.labels, nil
}

func (f *fakeRemote) CreateLabel(ctx context.Context, name, color string) error {
	if err := f.call("CreateLabel"); err != nil {
		return err
	}
	f.labels = append(f.labels, github.Label{Name: name, Color: color})
	return nil
}

func (f *fakeRemote) CreateIssue(ctx context.Context, req github.IssueRequest) (github.Issue, error) {
	if err := f.call("CreateIssue"); err != nil {
		return github.Issue{}, err
	}
	f.created = append(f.created, req)
	f.next++
	issue := github.Issue{
		Number: f.next,
		Title:  req.Title,
		State:  model.StateOpen,
		Body:   req.Body,
		NodeID: fmt.Sprintf("I_%d", f.next),
		Labels: req.Labels,
	}
	if req.Milestone != nil {
		for _, m := range f.milestones {
			if m.Number == *req.Milestone {
				issue.Milestone, issue.HasMilestone = m.Title, true
			}
		}
	}
	f.issues = append(f.issues, issue)
	return issue, nil
}

func (f *fakeRemote) UpdateIssue(ctx context.Context, number int, patch github.IssuePatch) error {
	if err := f.call("UpdateIssue"); err != nil {
		return err
	}
	f.patches[number] = append(f.patches[number], patch)
	issue := f.issue(number)
	if issue == nil {
		return fmt.Errorf("no issue #%d", number)
	}
	if patch.Title != nil {
		issue.Title = *patch.Title
	}
	if patch.State != nil {
		issue.State = *patch.State
	}
	if patch.Labels != nil {
		issue.Labels = *patch.Labels
	}
	if patch.ClearMilestone {
		issue.Milestone, issue.HasMilestone = "", false
	}
	if patch.Milestone != nil {
		for _, m := range f.milestones {
			if m.Number == *patch.Milestone {
				issue.Milestone, issue.HasMilestone = m.Title, true
			}
		}
	}
	return nil
}

func (f *fakeRemote) Viewer(ctx context.Context) (github.Viewer, error) {
	if err := f.call("Viewer"); err != nil {
		return github.Viewer{}, err
	}
	return github.Viewer{ID: "U_1", Login: "octo"}, nil
}

func (f *fakeRemote) CreateProject(ctx context.Context, ownerID, title string) (github.Project, error) {
	if err := f.call("CreateProject"); err != nil {
		return github.Project{}, err
	}
	return github.Project{ID: "PVT_1", Number: 1, URL: "https://github.com/users/octo/projects/1"}, nil
}

func (f *fakeRemote) AddProjectItem(ctx context.Context, projectID, contentID string) (string, error) {
	if err := f.call("AddProjectItem"); err != nil {
		return "", err
	}
	f.items = append(f.items, contentID)
	return "PVTI_" + contentID, nil
}

// testSession writes content to a tracker file and returns a session over
// it. Sleeps are counted instead of taken.
func testSession(t *testing.T, remote *fakeRemote, content string) (*Session, *int) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tracker.md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing tracker: %v", err)
	}
	l, err := ledger.Open(ledger.PathFor(path))
	if err != nil {
		t.Fatalf("opening ledger: %v", err)
	}

	s := NewSession(remote, Options{
		TrackerPath:     path,
		ProjectName:     "Roadmap",
		ExcludeSections: []string{"IDEAS"},
		Delay:           time.Millisecond,
		Ledger:          l,
	})
	sleeps := new(int)
	s.Sleep = func(ctx context.Context, d time.Duration) error {
		*sleeps++
		return nil
	}
	return s, sleeps
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(b)
}
