package github

import (
	"context"

	gh "github.com/google/go-github/v66/github"
)

// Issue is the transport view of a repository issue.
type Issue struct {
	Number       int
	Title        string
	State        string
	Body         string
	NodeID       string
	Labels       []string
	Milestone    string
	HasMilestone bool
}

type Milestone struct {
	Title  string
	Number int
	State  string
}

type Label struct {
	Name  string
	Color string
}

// IssueRequest describes a new issue.
type IssueRequest struct {
	Title     string
	Body      string
	Labels    []string
	Milestone *int
}

// IssuePatch is a partial update. Nil fields are left untouched remotely.
type IssuePatch struct {
	Title     *string
	Body      *string
	Labels    *[]string
	Milestone *int
	// ClearMilestone removes the milestone; Milestone is ignored.
	ClearMilestone bool
	State          *string
}

func fromGitHub(i *gh.Issue) Issue {
	issue := Issue{
		Number: i.GetNumber(),
		Title:  i.GetTitle(),
		State:  i.GetState(),
		Body:   i.GetBody(),
		NodeID: i.GetNodeID(),
	}
	for _, l := range i.Labels {
		issue.Labels = append(issue.Labels, l.GetName())
	}
	if i.Milestone != nil {
		issue.Milestone = i.Milestone.GetTitle()
		issue.HasMilestone = true
	}
	return issue
}

// ListIssues fetches every issue in the given state ("all", "open",
// "closed"), following pagination. Pull requests are skipped.
func (c *Client) ListIssues(ctx context.Context, state string) ([]Issue, error) {
	opts := &gh.IssueListByRepoOptions{
		State:       state,
		ListOptions: gh.ListOptions{PerPage: perPage},
	}
	var issues []Issue
	for {
		batch, resp, err := c.rest.Issues.ListByRepo(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, wrap(err, "list issues of %s (page %d)", c.Repo(), opts.Page)
		}
		for _, i := range batch {
			if i.IsPullRequest() {
				continue
			}
			issues = append(issues, fromGitHub(i))
		}
		if resp.NextPage == 0 {
			return issues, nil
		}
		opts.Page = resp.NextPage
	}
}

// ListMilestones fetches milestones in any state.
func (c *Client) ListMilestones(ctx context.Context) ([]Milestone, error) {
	opts := &gh.MilestoneListOptions{
		State:       "all",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}
	var milestones []Milestone
	for {
		batch, resp, err := c.rest.Issues.ListMilestones(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, wrap(err, "list milestones of %s", c.Repo())
		}
		for _, m := range batch {
			milestones = append(milestones, Milestone{Title: m.GetTitle(), Number: m.GetNumber(), State: m.GetState()})
		}
		if resp.NextPage == 0 {
			return milestones, nil
		}
		opts.Page = resp.NextPage
	}
}

// ListLabels fetches the repository labels.
func (c *Client) ListLabels(ctx context.Context) ([]Label, error) {
	opts := &gh.ListOptions{PerPage: perPage}
	var labels []Label
	for {
		batch, resp, err := c.rest.Issues.ListLabels(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, wrap(err, "list labels of %s", c.Repo())
		}
		for _, l := range batch {
			labels = append(labels, Label{Name: l.GetName(), Color: l.GetColor()})
		}
		if resp.NextPage == 0 {
			return labels, nil
		}
		opts.Page = resp.NextPage
	}
}

// CreateLabel adds a label with a hex colour (no leading #).
func (c *Client) CreateLabel(ctx context.Context, name, color string) error {
	_, _, err := c.rest.Issues.CreateLabel(ctx, c.owner, c.repo, &gh.Label{
		Name:  gh.String(name),
		Color: gh.String(color),
	})
	return wrap(err, "create label %q", name)
}

// CreateIssue opens a new issue.
func (c *Client) CreateIssue(ctx context.Context, req IssueRequest) (Issue, error) {
	labels := req.Labels
	if labels == nil {
		labels = []string{}
	}
	created, _, err := c.rest.Issues.Create(ctx, c.owner, c.repo, &gh.IssueRequest{
		Title:     gh.String(req.Title),
		Body:      gh.String(req.Body),
		Labels:    &labels,
		Milestone: req.Milestone,
	})
	if err != nil {
		return Issue{}, wrap(err, "create issue %q", req.Title)
	}
	return fromGitHub(created), nil
}

// UpdateIssue applies a partial patch to issue number.
func (c *Client) UpdateIssue(ctx context.Context, number int, patch IssuePatch) error {
	req := &gh.IssueRequest{
		Title:  patch.Title,
		Body:   patch.Body,
		Labels: patch.Labels,
		State:  patch.State,
	}
	if !patch.ClearMilestone {
		req.Milestone = patch.Milestone
	}

	if req.Title != nil || req.Body != nil || req.Labels != nil || req.State != nil || req.Milestone != nil {
		if _, _, err := c.rest.Issues.Edit(ctx, c.owner, c.repo, number, req); err != nil {
			return wrap(err, "update issue #%d", number)
		}
	}
	if patch.ClearMilestone {
		if _, _, err := c.rest.Issues.RemoveMilestone(ctx, c.owner, c.repo, number); err != nil {
			return wrap(err, "remove milestone from issue #%d", number)
		}
	}
	return nil
}
