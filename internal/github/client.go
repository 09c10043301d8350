package github

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v57/github"
	"github.com/rohankatakam/insightify/internal/activity"
	"github.com/rohankatakam/insightify/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Options configures the GitHub client.
type Options struct {
	Token          string
	Username       string
	RateLimit      int  // requests per second
	IncludePrivate bool // list via the authenticated user instead of the public profile
	BaseURL        string
}

// Client wraps the GitHub API client with rate limiting. It implements
// activity.Source for the configured user.
type Client struct {
	client         *github.Client
	rateLimiter    *rate.Limiter
	username       string
	includePrivate bool
	logger         logrus.FieldLogger
}

// NewClient creates a new GitHub client with rate limiting
func NewClient(opts Options, logger logrus.FieldLogger) (*Client, error) {
	client := github.NewClient(nil)
	if opts.Token != "" {
		client = client.WithAuthToken(opts.Token)
	}
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL: %w", err)
		}
		client.BaseURL = u
	}

	limit := opts.RateLimit
	if limit <= 0 {
		limit = 1
	}

	return &Client{
		client:         client,
		rateLimiter:    rate.NewLimiter(rate.Limit(limit), 1),
		username:       opts.Username,
		includePrivate: opts.IncludePrivate,
		logger:         logger.WithField("component", "github"),
	}, nil
}

// Repositories lists every repository owned by the user.
func (c *Client) Repositories(ctx context.Context) ([]models.Repository, error) {
	var repos []models.Repository
	page := 1

	for {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		var (
			batch []*github.Repository
			resp  *github.Response
			err   error
		)
		listOpts := github.ListOptions{PerPage: 100, Page: page}
		if c.includePrivate {
			batch, resp, err = c.client.Repositories.ListByAuthenticatedUser(ctx, &github.RepositoryListByAuthenticatedUserOptions{
				Affiliation: "owner",
				ListOptions: listOpts,
			})
		} else {
			batch, resp, err = c.client.Repositories.ListByUser(ctx, c.username, &github.RepositoryListByUserOptions{
				Type:        "owner",
				ListOptions: listOpts,
			})
		}
		if err != nil {
			return nil, fmt.Errorf("list repositories: %w", err)
		}
		c.logRateLimit(resp)

		for _, r := range batch {
			repos = append(repos, models.Repository{
				Name:     r.GetName(),
				Owner:    r.GetOwner().GetLogin(),
				URL:      r.GetHTMLURL(),
				Language: r.GetLanguage(),
				Private:  r.GetPrivate(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}

	return repos, nil
}

// Commits lists the user's commits in repo between window.Start and
// window.End. An empty repository yields no commits rather than an error.
func (c *Client) Commits(ctx context.Context, repo models.Repository, window activity.Window) ([]models.Commit, error) {
	opts := &github.CommitsListOptions{
		Author: c.username,
		Since:  window.Start,
		Until:  window.End,
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	}

	var commits []models.Commit
	for {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		batch, resp, err := c.client.Repositories.ListCommits(ctx, c.owner(repo), repo.Name, opts)
		if err != nil {
			if isEmptyRepository(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("fetch commits: %w", err)
		}
		c.logRateLimit(resp)

		for _, rc := range batch {
			commits = append(commits, models.Commit{
				Repo:      repo.Name,
				SHA:       rc.GetSHA(),
				Message:   firstLine(rc.GetCommit().GetMessage()),
				Timestamp: rc.GetCommit().GetAuthor().GetDate().Time,
				URL:       rc.GetHTMLURL(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return commits, nil
}

// ChangedFiles fetches the full commit to read its file list.
func (c *Client) ChangedFiles(ctx context.Context, repo models.Repository, sha string) ([]string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	commit, resp, err := c.client.Repositories.GetCommit(ctx, c.owner(repo), repo.Name, sha, nil)
	if err != nil {
		return nil, fmt.Errorf("get commit failed: %w", err)
	}
	c.logRateLimit(resp)

	files := make([]string, 0, len(commit.Files))
	for _, f := range commit.Files {
		files = append(files, f.GetFilename())
	}
	return files, nil
}

// UserProfile fetches the public profile of the configured user.
func (c *Client) UserProfile(ctx context.Context) (*models.UserProfile, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	user, resp, err := c.client.Users.Get(ctx, c.username)
	if err != nil {
		return nil, fmt.Errorf("fetch user %s: %w", c.username, err)
	}
	c.logRateLimit(resp)

	return &models.UserProfile{
		Login:       user.GetLogin(),
		Name:        user.GetName(),
		Bio:         user.GetBio(),
		AvatarURL:   user.GetAvatarURL(),
		HTMLURL:     user.GetHTMLURL(),
		PublicRepos: user.GetPublicRepos(),
		Followers:   user.GetFollowers(),
		Following:   user.GetFollowing(),
	}, nil
}

func (c *Client) owner(repo models.Repository) string {
	if repo.Owner != "" {
		return repo.Owner
	}
	return c.username
}

// logRateLimit logs GitHub API rate limit info
func (c *Client) logRateLimit(resp *github.Response) {
	if resp == nil {
		return
	}

	// Warn if getting low
	if resp.Rate.Remaining < 100 && resp.Rate.Limit > 0 {
		c.logger.WithFields(logrus.Fields{
			"remaining": resp.Rate.Remaining,
			"limit":     resp.Rate.Limit,
			"reset":     resp.Rate.Reset.Time,
		}).Warn("rate limit low")
	}
}

// isEmptyRepository matches the 409 GitHub returns when listing commits of
// a repository with no history.
func isEmptyRepository(err error) bool {
	var errResp *github.ErrorResponse
	if stderrors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode == http.StatusConflict
	}
	return false
}

func firstLine(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return strings.TrimRight(line, "\r")
}
