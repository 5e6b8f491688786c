// Package github creates pull requests via the GitHub API.
package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v57/github"
	"github.com/tracklet/trackd/internal/domain"
	"golang.org/x/oauth2"
)

// Client implements domain.PullRequests against a single repository.
type Client struct {
	prs   pullRequestsService
	owner string
	repo  string
}

// pullRequestsService is the slice of go-github used here, extracted so
// tests can stub the API.
type pullRequestsService interface {
	Create(ctx context.Context, owner, repo string, pull *gh.NewPullRequest) (*gh.PullRequest, *gh.Response, error)
}

// NewClient creates a client authenticated with the given token.
func NewClient(token, owner, repo string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), ts)
	return &Client{
		prs:   gh.NewClient(httpClient).PullRequests,
		owner: owner,
		repo:  repo,
	}
}

// Ensure Client implements domain.PullRequests interface.
var _ domain.PullRequests = (*Client)(nil)

// Create opens a pull request. Callers bound the call with a context
// deadline; no retries are attempted here.
func (c *Client) Create(ctx context.Context, opts domain.CreatePROptions) (*domain.PullRequest, error) {
	newPR := &gh.NewPullRequest{
		Title: gh.String(opts.Title),
		Body:  gh.String(opts.Body),
		Head:  gh.String(opts.Head),
		Base:  gh.String(opts.Base),
		Draft: gh.Bool(opts.Draft),
	}

	pr, _, err := c.prs.Create(ctx, c.owner, c.repo, newPR)
	if err != nil {
		return nil, fmt.Errorf("create pull request: %w", err)
	}

	status := pr.GetState()
	if pr.GetDraft() {
		status = "draft"
	}
	return &domain.PullRequest{
		Number: pr.GetNumber(),
		URL:    pr.GetHTMLURL(),
		Status: status,
	}, nil
}
