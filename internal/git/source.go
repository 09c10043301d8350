package git

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rohankatakam/insightify/internal/activity"
	"github.com/rohankatakam/insightify/internal/models"
	"github.com/sirupsen/logrus"
)

// LocalSource reads activity from local clones instead of the GitHub API.
// Commits are matched on author email.
type LocalSource struct {
	paths       []string
	authorEmail string
	logger      logrus.FieldLogger

	repos map[string]*git.Repository
}

func NewLocalSource(paths []string, authorEmail string, logger logrus.FieldLogger) *LocalSource {
	return &LocalSource{
		paths:       paths,
		authorEmail: strings.ToLower(strings.TrimSpace(authorEmail)),
		logger:      logger.WithField("component", "local-git"),
		repos:       make(map[string]*git.Repository),
	}
}

// Repositories opens every configured path. Paths that are not
// repositories are skipped; it is an error only when none open. Each
// clone gets a distinct name even when directory basenames repeat.
func (s *LocalSource) Repositories(ctx context.Context) ([]models.Repository, error) {
	var out []models.Repository
	var lastErr error
	s.repos = make(map[string]*git.Repository)
	opened := make(map[string]bool)

	for _, path := range s.paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if opened[abs] {
			continue
		}

		repo, err := git.PlainOpen(abs)
		if err != nil {
			lastErr = fmt.Errorf("open %s: %w", abs, err)
			s.logger.WithFields(logrus.Fields{"path": abs, "error": err}).Warn("not a git repository, skipping")
			continue
		}

		opened[abs] = true
		name := s.uniqueName(abs)
		s.repos[name] = repo

		web := ""
		owner := ""
		if remote, err := repo.Remote("origin"); err == nil && len(remote.Config().URLs) > 0 {
			web = WebURL(remote.Config().URLs[0])
			if _, o, _, err := ParseRepoURL(remote.Config().URLs[0]); err == nil {
				owner = o
			}
		}

		out = append(out, models.Repository{
			Name:     name,
			Owner:    owner,
			URL:      web,
			Language: DominantLanguage(repo, s.logger),
		})
	}

	if len(out) == 0 && len(s.paths) > 0 {
		return nil, fmt.Errorf("no readable repositories: %w", lastErr)
	}
	return out, nil
}

// uniqueName is the directory basename, qualified by its parent directory
// and then numbered when an earlier clone already holds it.
func (s *LocalSource) uniqueName(abs string) string {
	base := filepath.Base(abs)
	if _, taken := s.repos[base]; !taken {
		return base
	}
	name := filepath.Base(filepath.Dir(abs)) + "/" + base
	for i := 2; ; i++ {
		if _, taken := s.repos[name]; !taken {
			return name
		}
		name = fmt.Sprintf("%s/%s-%d", filepath.Base(filepath.Dir(abs)), base, i)
	}
}

// Commits walks every ref for commits by the configured author in window.
// Changed files are filled in directly.
func (s *LocalSource) Commits(ctx context.Context, repo models.Repository, window activity.Window) ([]models.Commit, error) {
	r, ok := s.repos[repo.Name]
	if !ok {
		return nil, fmt.Errorf("repository %s was not opened", repo.Name)
	}

	if _, err := r.Head(); err != nil {
		if stderrors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	since, until := window.Start, window.End
	iter, err := r.Log(&git.LogOptions{All: true, Since: &since, Until: &until})
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}
	defer iter.Close()

	var commits []models.Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.authorEmail != "" && strings.ToLower(c.Author.Email) != s.authorEmail {
			return nil
		}
		if !window.Contains(c.Author.When) {
			return nil
		}

		commit := models.Commit{
			Repo:      repo.Name,
			SHA:       c.Hash.String(),
			Message:   firstLine(c.Message),
			Timestamp: c.Author.When,
			URL:       CommitURL(repo.URL, c.Hash.String()),
		}
		if files, err := changedFiles(c); err == nil {
			commit.Files = files
		} else {
			s.logger.WithFields(logrus.Fields{"repo": repo.Name, "sha": c.Hash.String()[:7], "error": err}).Debug("no file stats")
		}
		commits = append(commits, commit)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk commits: %w", err)
	}
	return commits, nil
}

// ChangedFiles reads the file list of one commit.
func (s *LocalSource) ChangedFiles(ctx context.Context, repo models.Repository, sha string) ([]string, error) {
	r, ok := s.repos[repo.Name]
	if !ok {
		return nil, fmt.Errorf("repository %s was not opened", repo.Name)
	}
	c, err := r.CommitObject(plumbing.NewHash(sha))
	if err != nil {
		return nil, fmt.Errorf("load commit %s: %w", sha, err)
	}
	return changedFiles(c)
}

func changedFiles(c *object.Commit) ([]string, error) {
	stats, err := c.Stats()
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(stats))
	for _, st := range stats {
		files = append(files, st.Name)
	}
	return files, nil
}

// DominantLanguage picks the language with the most files in the HEAD tree,
// "" when nothing is recognised.
func DominantLanguage(repo *git.Repository, logger logrus.FieldLogger) string {
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return ""
	}
	tree, err := commit.Tree()
	if err != nil {
		return ""
	}

	counts := models.NewTally[string]()
	err = tree.Files().ForEach(func(f *object.File) error {
		if lang, ok := activity.DetectLanguage(f.Name); ok {
			counts.Inc(lang)
		}
		return nil
	})
	if err != nil {
		logger.WithFields(logrus.Fields{"head": head.Hash().String()[:7], "error": err}).Debug("incomplete tree walk")
	}

	if top := counts.Top(1); len(top) == 1 {
		return top[0]
	}
	return ""
}

func firstLine(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(line)
}
