package git

import (
	"testing"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantHost  string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{"https with .git", "https://github.com/octocat/hello.git", "github.com", "octocat", "hello", false},
		{"https without .git", "https://github.com/octocat/hello", "github.com", "octocat", "hello", false},
		{"https with credentials", "https://token@github.com/octocat/hello.git", "github.com", "octocat", "hello", false},
		{"ssh scp form", "git@github.com:octocat/hello.git", "github.com", "octocat", "hello", false},
		{"ssh url form", "ssh://git@gitlab.com/team/tool", "gitlab.com", "team", "tool", false},
		{"git protocol", "git://github.com/octocat/hello.git", "github.com", "octocat", "hello", false},
		{"trailing slash", "https://github.com/octocat/hello/", "github.com", "octocat", "hello", false},
		{"local path", "/srv/git/hello.git", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, owner, repo, err := ParseRepoURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRepoURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if host != tt.wantHost || owner != tt.wantOwner || repo != tt.wantRepo {
				t.Errorf("ParseRepoURL(%q) = %s, %s, %s; want %s, %s, %s",
					tt.url, host, owner, repo, tt.wantHost, tt.wantOwner, tt.wantRepo)
			}
		})
	}
}

func TestWebURL(t *testing.T) {
	if got := WebURL("git@github.com:octocat/hello.git"); got != "https://github.com/octocat/hello" {
		t.Errorf("WebURL = %q", got)
	}
	if got := WebURL("/srv/git/hello.git"); got != "" {
		t.Errorf("WebURL for local path = %q, want empty", got)
	}
	if got := CommitURL("https://github.com/octocat/hello", "abc"); got != "https://github.com/octocat/hello/commit/abc" {
		t.Errorf("CommitURL = %q", got)
	}
	if got := CommitURL("", "abc"); got != "" {
		t.Errorf("CommitURL without web URL = %q", got)
	}
}
