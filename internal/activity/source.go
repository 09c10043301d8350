package activity

import (
	"context"
	"time"

	"github.com/rohankatakam/insightify/internal/errors"
	"github.com/rohankatakam/insightify/internal/models"
	"github.com/sirupsen/logrus"
)

// Window is the closed collection interval [Start, End].
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowEnding returns the window of the given length ending at end.
func WindowEnding(end time.Time, hours int) Window {
	return Window{Start: end.Add(-time.Duration(hours) * time.Hour), End: end}
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Source yields the tracked user's repositories and commits.
type Source interface {
	// Repositories lists every repository to scan. An error here aborts
	// the run.
	Repositories(ctx context.Context) ([]models.Repository, error)

	// Commits lists the tracked author's commits in repo within window.
	// Commits may come back with Files already populated.
	Commits(ctx context.Context, repo models.Repository, window Window) ([]models.Commit, error)

	// ChangedFiles returns the paths touched by one commit.
	ChangedFiles(ctx context.Context, repo models.Repository, sha string) ([]string, error)
}

// RepositoryActivity pairs a repository with its commits for one window.
type RepositoryActivity struct {
	Repo    models.Repository
	Commits []models.Commit
}

// Collect walks every repository of src, in the order the source lists
// them, and gathers commits inside window. A repository that fails is
// skipped with a warning; a commit whose file detail fails keeps nil Files.
// Only a failure to enumerate repositories is returned.
func Collect(ctx context.Context, src Source, window Window, logger logrus.FieldLogger) ([]RepositoryActivity, error) {
	repos, err := src.Repositories(ctx)
	if err != nil {
		return nil, errors.SourceError(err, "failed to list repositories")
	}
	logger.WithField("repositories", len(repos)).Info("scanning repositories")

	var out []RepositoryActivity
	for _, repo := range repos {
		if err := ctx.Err(); err != nil {
			return out, errors.Wrap(err, errors.ErrorTypeInternal, errors.SeverityHigh, "collection cancelled")
		}

		commits, err := src.Commits(ctx, repo, window)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"repo":  repo.Name,
				"error": errors.UpstreamError(err, repo.Name),
			}).Warn("skipping repository")
			continue
		}
		if len(commits) == 0 {
			continue
		}

		for i := range commits {
			if commits[i].Files != nil {
				continue
			}
			files, err := src.ChangedFiles(ctx, repo, commits[i].SHA)
			if err != nil {
				logger.WithFields(logrus.Fields{
					"repo":  repo.Name,
					"sha":   ShortSHA(commits[i].SHA),
					"error": err,
				}).Warn("commit detail unavailable, skipping its languages")
				continue
			}
			if files == nil {
				files = []string{}
			}
			commits[i].Files = files
		}

		logger.WithFields(logrus.Fields{"repo": repo.Name, "commits": len(commits)}).Debug("repository collected")
		out = append(out, RepositoryActivity{Repo: repo, Commits: commits})
	}
	return out, nil
}

// ShortSHA abbreviates a commit id to seven characters.
func ShortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
