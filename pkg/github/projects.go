package github

import (
	"context"
	"fmt"

	"github.com/shurcooL/githubv4"
)

// Viewer is the user the token belongs to.
type Viewer struct {
	ID    string
	Login string
}

// Project is a ProjectV2 board.
type Project struct {
	ID     string
	Number int
	URL    string
}

func idString(id githubv4.ID) string {
	if s, ok := id.(string); ok {
		return s
	}
	if id == nil {
		return ""
	}
	return fmt.Sprint(id)
}

// Viewer looks up the authenticated user.
func (c *Client) Viewer(ctx context.Context) (Viewer, error) {
	var q struct {
		Viewer struct {
			ID    githubv4.ID
			Login githubv4.String
		}
	}
	if err := c.gql.Query(ctx, &q, nil); err != nil {
		return Viewer{}, wrap(err, "query viewer")
	}
	return Viewer{ID: idString(q.Viewer.ID), Login: string(q.Viewer.Login)}, nil
}

// CreateProject creates a ProjectV2 owned by ownerID.
func (c *Client) CreateProject(ctx context.Context, ownerID, title string) (Project, error) {
	var m struct {
		CreateProjectV2 struct {
			ProjectV2 struct {
				ID     githubv4.ID
				Number githubv4.Int
				URL    githubv4.String
			}
		} `graphql:"createProjectV2(input: $input)"`
	}
	input := githubv4.CreateProjectV2Input{
		OwnerID: githubv4.ID(ownerID),
		Title:   githubv4.String(title),
	}
	if err := c.gql.Mutate(ctx, &m, input, nil); err != nil {
		return Project{}, wrap(err, "create project %q", title)
	}
	p := m.CreateProjectV2.ProjectV2
	return Project{ID: idString(p.ID), Number: int(p.Number), URL: string(p.URL)}, nil
}

// AddProjectItem links an issue (by node id) into a project and returns
// the project item id.
func (c *Client) AddProjectItem(ctx context.Context, projectID, contentID string) (string, error) {
	var m struct {
		AddProjectV2ItemByID struct {
			Item struct {
				ID githubv4.ID
			}
		} `graphql:"addProjectV2ItemById(input: $input)"`
	}
	input := githubv4.AddProjectV2ItemByIdInput{
		ProjectID: githubv4.ID(projectID),
		ContentID: githubv4.ID(contentID),
	}
	if err := c.gql.Mutate(ctx, &m, input, nil); err != nil {
		return "", wrap(err, "add %s to project %s", contentID, projectID)
	}
	return idString(m.AddProjectV2ItemByID.Item.ID), nil
}
