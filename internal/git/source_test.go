package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rohankatakam/insightify/internal/activity"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	t    *testing.T
	dir  string
	repo *git.Repository
	wt   *git.Worktree
}

func newTestRepo(t *testing.T, name string) *testRepo {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return &testRepo{t: t, dir: dir, repo: repo, wt: wt}
}

func (r *testRepo) commit(msg, email string, when time.Time, files ...string) string {
	r.t.Helper()
	for _, f := range files {
		path := filepath.Join(r.dir, f)
		require.NoError(r.t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(r.t, os.WriteFile(path, []byte(msg+f), 0644))
		_, err := r.wt.Add(f)
		require.NoError(r.t, err)
	}
	hash, err := r.wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "dev", Email: email, When: when},
	})
	require.NoError(r.t, err)
	return hash.String()
}

func TestLocalSource(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	r := newTestRepo(t, "hello")
	_, err := r.repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{"git@github.com:octocat/hello.git"}})
	require.NoError(t, err)

	r.commit("old work", "dev@example.com", day.Add(-72*time.Hour), "main.go")
	first := r.commit("Add parser\n\ndetails", "dev@example.com", day.Add(10*time.Hour), "parser.go", "parser_test.go")
	r.commit("teammate change", "someone@example.com", day.Add(11*time.Hour), "util.py")
	r.commit("Docs", "DEV@example.com", day.Add(12*time.Hour), "README.md")

	logger, _ := test.NewNullLogger()
	src := NewLocalSource([]string{r.dir}, "dev@example.com", logger)
	ctx := context.Background()

	repos, err := src.Repositories(ctx)
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "hello", repos[0].Name)
	assert.Equal(t, "octocat", repos[0].Owner)
	assert.Equal(t, "https://github.com/octocat/hello", repos[0].URL)
	assert.Equal(t, "Go", repos[0].Language)

	window := activity.WindowEnding(day.Add(24*time.Hour), 24)
	commits, err := src.Commits(ctx, repos[0], window)
	require.NoError(t, err)
	require.Len(t, commits, 2, "other authors and commits outside the window are excluded")

	byMessage := map[string][]string{}
	for _, c := range commits {
		byMessage[c.Message] = c.Files
	}
	assert.ElementsMatch(t, []string{"parser.go", "parser_test.go"}, byMessage["Add parser"])
	assert.Equal(t, []string{"README.md"}, byMessage["Docs"])

	files, err := src.ChangedFiles(ctx, repos[0], first)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"parser.go", "parser_test.go"}, files)

	collected, err := activity.Collect(ctx, src, window, logger)
	require.NoError(t, err)
	record := activity.AggregateDay(collected, window, time.UTC)
	assert.Equal(t, 2, record.TotalCommits)
	assert.Equal(t, map[string]int{"Go": 1, "Markdown": 1}, record.Languages)
	var urls []string
	for _, c := range record.Repositories["hello"].Commits {
		urls = append(urls, c.URL)
	}
	assert.Contains(t, urls, "https://github.com/octocat/hello/commit/"+first)
}

func TestLocalSource_SkipsBadPaths(t *testing.T) {
	logger, hook := test.NewNullLogger()
	good := newTestRepo(t, "good")
	good.commit("init", "dev@example.com", time.Now(), "app.rb")

	src := NewLocalSource([]string{filepath.Join(t.TempDir(), "missing"), good.dir}, "dev@example.com", logger)
	repos, err := src.Repositories(context.Background())
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Equal(t, "Ruby", repos[0].Language)
	assert.Len(t, hook.AllEntries(), 1)

	_, err = NewLocalSource([]string{filepath.Join(t.TempDir(), "missing")}, "", logger).Repositories(context.Background())
	assert.Error(t, err)
}

func TestLocalSource_EmptyRepository(t *testing.T) {
	r := newTestRepo(t, "empty")
	logger, _ := test.NewNullLogger()
	src := NewLocalSource([]string{r.dir}, "dev@example.com", logger)

	repos, err := src.Repositories(context.Background())
	require.NoError(t, err)
	require.Len(t, repos, 1)
	assert.Empty(t, repos[0].Language)
	assert.Empty(t, repos[0].URL)

	commits, err := src.Commits(context.Background(), repos[0], activity.WindowEnding(time.Now(), 24))
	require.NoError(t, err)
	assert.Empty(t, commits)
}

func TestLocalSource_SameBasenameClones(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	parent := t.TempDir()
	var dirs []string
	for i, owner := range []string{"work", "personal"} {
		dir := filepath.Join(parent, owner, "app")
		repo, err := git.PlainInit(dir, false)
		require.NoError(t, err)
		wt, err := repo.Worktree()
		require.NoError(t, err)
		r := &testRepo{t: t, dir: dir, repo: repo, wt: wt}
		r.commit(owner+" change", "dev@example.com", day.Add(time.Duration(10+i)*time.Hour), "main.go")
		dirs = append(dirs, dir)
	}

	logger, _ := test.NewNullLogger()
	src := NewLocalSource(append(dirs, dirs[0]), "dev@example.com", logger)
	ctx := context.Background()

	repos, err := src.Repositories(ctx)
	require.NoError(t, err)
	require.Len(t, repos, 2, "a path listed twice is opened once")
	assert.Equal(t, "app", repos[0].Name)
	assert.Equal(t, "personal/app", repos[1].Name)

	window := activity.WindowEnding(day.Add(24*time.Hour), 24)
	collected, err := activity.Collect(ctx, src, window, logger)
	require.NoError(t, err)
	record := activity.AggregateDay(collected, window, time.UTC)

	assert.Equal(t, 2, record.TotalCommits)
	assert.Equal(t, record.TotalCommits, record.RepositoryCommits())
	require.Len(t, record.Repositories, 2)
	var messages []string
	for _, m := range record.CommitMessages {
		messages = append(messages, m.Message)
	}
	assert.ElementsMatch(t, []string{"work change", "personal change"}, messages)

	again, err := src.Repositories(ctx)
	require.NoError(t, err)
	assert.Equal(t, repos, again, "names are stable across calls")
}

func TestDominantLanguage_LogsIncompleteTree(t *testing.T) {
	r := newTestRepo(t, "broken")
	hash := r.commit("init", "dev@example.com", time.Now(), "main.go", "tool.py")

	commit, err := r.repo.CommitObject(plumbing.NewHash(hash))
	require.NoError(t, err)
	tree, err := commit.Tree()
	require.NoError(t, err)
	entry, err := tree.FindEntry("tool.py")
	require.NoError(t, err)
	blob := entry.Hash.String()
	loose := filepath.Join(r.dir, ".git", "objects", blob[:2], blob[2:])
	require.FileExists(t, loose)
	require.NoError(t, os.Remove(loose))

	reopened, err := git.PlainOpen(r.dir)
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	assert.Equal(t, "Go", DominantLanguage(reopened, logger), "files read before the failure still count")

	entries := hook.AllEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, logrus.DebugLevel, entries[0].Level)
	assert.Equal(t, "incomplete tree walk", entries[0].Message)
	assert.Contains(t, entries[0].Data, "error")
}
