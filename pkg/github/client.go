package github

import (
	"context"
	"net/http"
	"strings"

	gh "github.com/google/go-github/v66/github"
	"github.com/pkg/errors"
	"github.com/shurcooL/githubv4"

	"github.com/harrisonrobin/trackersync/pkg/auth"
)

const perPage = 100

// Client talks to one GitHub repository: issues, labels and milestones
// over REST, projects over GraphQL.
type Client struct {
	rest  *gh.Client
	gql   *githubv4.Client
	owner string
	repo  string
}

// NewClient creates a client authenticated with token. apiURL selects a
// GitHub Enterprise host; empty means github.com.
func NewClient(ctx context.Context, token, owner, repo, apiURL string) (*Client, error) {
	httpClient := auth.GetClient(ctx, token)
	if apiURL == "" {
		return NewClientWithHTTP(httpClient, owner, repo)
	}

	base := strings.TrimRight(apiURL, "/")
	rest, err := gh.NewClient(httpClient).WithEnterpriseURLs(base+"/", base+"/")
	if err != nil {
		return nil, errors.Wrapf(err, "invalid api_url %q", apiURL)
	}
	return &Client{
		rest:  rest,
		gql:   githubv4.NewEnterpriseClient(base+"/graphql", httpClient),
		owner: owner,
		repo:  repo,
	}, nil
}

// NewClientWithHTTP creates a github.com client over an already
// authenticated http.Client.
func NewClientWithHTTP(httpClient *http.Client, owner, repo string) (*Client, error) {
	if owner == "" || repo == "" {
		return nil, errors.New("repository owner and name are required")
	}
	return &Client{
		rest:  gh.NewClient(httpClient),
		gql:   githubv4.NewClient(httpClient),
		owner: owner,
		repo:  repo,
	}, nil
}

// Repo returns owner/name.
func (c *Client) Repo() string {
	return c.owner + "/" + c.repo
}

func wrap(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "github: "+format, args...)
}
